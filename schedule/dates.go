package schedule

import (
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/linesmerrill/school-board-api/models"
)

const dateLayout = "2006-01-02"

// DaysLeft counts calendar days from now's date to date (YYYY-MM-DD). It is 0 for today
// and negative for past dates; the time of day of now does not matter.
func DaysLeft(date string, now time.Time) (int, error) {
	target, err := time.Parse(dateLayout, strings.TrimSpace(date))
	if err != nil {
		return 0, errors.Wrapf(err, "invalid date %q", date)
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return int(target.Sub(today).Hours() / 24), nil
}

// CountdownView is a countdown with its days left
type CountdownView struct {
	models.Countdown
	DaysLeft int    `json:"daysLeft"`
	Label    string `json:"label,omitempty"`
}

// ActiveCountdowns drops past and undated countdowns and orders the rest by days left
func ActiveCountdowns(countdowns []models.Countdown, now time.Time) []CountdownView {
	active := []CountdownView{}
	for _, c := range countdowns {
		days, err := DaysLeft(c.Date, now)
		if err != nil || days < 0 {
			continue
		}
		active = append(active, CountdownView{Countdown: c, DaysLeft: days})
	}
	sort.SliceStable(active, func(i, j int) bool { return active[i].DaysLeft < active[j].DaysLeft })
	return active
}

// ActiveSlides keeps the slides whose schedule window contains now, ordered by priority.
// A slide without a schedule, or with an open end, is always shown on that side.
func ActiveSlides(slides []models.Slide, now time.Time) []models.Slide {
	active := []models.Slide{}
	for _, s := range slides {
		if s.Schedule != nil && !inWindow(*s.Schedule, now) {
			continue
		}
		active = append(active, s)
	}
	sort.SliceStable(active, func(i, j int) bool { return active[i].Priority < active[j].Priority })
	return active
}

func inWindow(w models.SlideSchedule, now time.Time) bool {
	if start, ok := parseInstant(w.Start, now.Location(), false); ok && now.Before(start) {
		return false
	}
	if end, ok := parseInstant(w.End, now.Location(), true); ok && !now.Before(end) {
		return false
	}
	return true
}

// parseInstant reads an RFC 3339 timestamp or a date. A date used as the end of a window
// covers that whole day.
func parseInstant(s string, loc *time.Location, end bool) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04", s, loc); err == nil {
		return t, true
	}
	t, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return time.Time{}, false
	}
	if end {
		t = t.AddDate(0, 0, 1)
	}
	return t, true
}

// TodaysBirthdays returns the birthdays whose month and day match now. Dates are
// YYYY-MM-DD or MM-DD.
func TodaysBirthdays(birthdays []models.Birthday, now time.Time) []models.Birthday {
	today := []models.Birthday{}
	for _, b := range birthdays {
		m, d, ok := monthDay(b.Date)
		if ok && m == now.Month() && d == now.Day() {
			today = append(today, b)
		}
	}
	return today
}

func monthDay(s string) (time.Month, int, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t.Month(), t.Day(), true
	}
	// leap year so that 02-29 parses
	if t, err := time.Parse(dateLayout, "2000-"+s); err == nil {
		return t.Month(), t.Day(), true
	}
	return 0, 0, false
}

var marqueeRank = map[string]int{"critical": 0, "urgent": 1, "normal": 2}

// SortedMarquee orders marquee texts critical first, then urgent, then normal
func SortedMarquee(texts []models.MarqueeText) []models.MarqueeText {
	sorted := append([]models.MarqueeText{}, texts...)
	rank := func(p string) int {
		if r, ok := marqueeRank[p]; ok {
			return r
		}
		return marqueeRank["normal"]
	}
	sort.SliceStable(sorted, func(i, j int) bool { return rank(sorted[i].Priority) < rank(sorted[j].Priority) })
	return sorted
}
