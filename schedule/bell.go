package schedule

import (
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/linesmerrill/school-board-api/models"
)

const minutesPerDay = 24 * 60

// State is where the current time falls relative to the lessons
type State string

const (
	// InLesson means a lesson is running; Minutes counts down to its end
	InLesson State = "in_lesson"
	// BeforeLesson means another lesson starts later today; Minutes counts down to its start
	BeforeLesson State = "before_lesson"
	// NextDay means today's lessons are over; Minutes counts down to the first lesson of the next school day
	NextDay State = "next_day"
	// NoLessons means no school day has any lesson
	NoLessons State = "none"
)

// Status is the bell state at a point in time
type Status struct {
	State   State              `json:"state"`
	Minutes int                `json:"minutes"`
	Period  *models.BellPeriod `json:"period,omitempty"`
	Day     string             `json:"day,omitempty"`
}

type lesson struct {
	period     models.BellPeriod
	start, end int
}

// LessonsFor returns the periods that apply on day. A schedule for the weekday itself wins,
// then the "all" schedule, then the flat bell schedule. Weekends only have lessons when
// they are scheduled by name.
func LessonsFor(schedules []models.DaySchedule, flat []models.BellPeriod, day time.Weekday) []models.BellPeriod {
	name := DayName(day)
	for _, ds := range schedules {
		if strings.EqualFold(ds.Day, name) {
			return ds.Schedule
		}
	}
	if day == time.Saturday || day == time.Sunday {
		return nil
	}
	for _, ds := range schedules {
		if strings.EqualFold(ds.Day, models.AllDays) {
			return ds.Schedule
		}
	}
	return flat
}

// DayName is the DaySchedule.Day key for a weekday
func DayName(day time.Weekday) string {
	return strings.ToLower(day.String())
}

// BellStatus computes the bell state for now. Minutes are whole minutes of wall-clock time
// in now's location; seconds are ignored. Overlapping lessons resolve to the one that
// starts first.
func BellStatus(schedules []models.DaySchedule, flat []models.BellPeriod, now time.Time) Status {
	minute := now.Hour()*60 + now.Minute()

	today := lessonsOn(schedules, flat, now.Weekday())
	for _, l := range today {
		if l.start <= minute && minute < l.end {
			p := l.period
			return Status{State: InLesson, Minutes: l.end - minute, Period: &p, Day: DayName(now.Weekday())}
		}
	}
	for _, l := range today {
		if l.start > minute {
			p := l.period
			return Status{State: BeforeLesson, Minutes: l.start - minute, Period: &p, Day: DayName(now.Weekday())}
		}
	}

	for offset := 1; offset <= 7; offset++ {
		day := (now.Weekday() + time.Weekday(offset)) % 7
		if day == time.Saturday || day == time.Sunday {
			continue
		}
		lessons := lessonsOn(schedules, flat, day)
		if len(lessons) == 0 {
			continue
		}
		first := lessons[0]
		minutes := (minutesPerDay - minute) + (offset-1)*minutesPerDay + first.start
		p := first.period
		return Status{State: NextDay, Minutes: minutes, Period: &p, Day: DayName(day)}
	}
	return Status{State: NoLessons}
}

// lessonsOn returns the lesson periods of a day with parseable times, ordered by start
func lessonsOn(schedules []models.DaySchedule, flat []models.BellPeriod, day time.Weekday) []lesson {
	var lessons []lesson
	for _, p := range LessonsFor(schedules, flat, day) {
		if p.Type != "" && p.Type != "lesson" {
			continue
		}
		start, err := ParseClock(p.StartTime)
		if err != nil {
			continue
		}
		end, err := ParseClock(p.EndTime)
		if err != nil || end <= start {
			continue
		}
		lessons = append(lessons, lesson{period: p, start: start, end: end})
	}
	sort.SliceStable(lessons, func(i, j int) bool {
		if lessons[i].start != lessons[j].start {
			return lessons[i].start < lessons[j].start
		}
		return lessons[i].period.Order < lessons[j].period.Order
	})
	return lessons
}

// ParseClock turns "HH:MM" into minutes after midnight
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, errors.Wrapf(err, "invalid time %q", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}
