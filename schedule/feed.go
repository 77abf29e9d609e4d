package schedule

import (
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"
	"golang.org/x/text/message"

	"github.com/linesmerrill/school-board-api/models"
)

// Feed is everything a display renders at one moment, with labels in the display language
type Feed struct {
	GeneratedAt time.Time            `json:"generatedAt"`
	SchoolName  string               `json:"schoolName"`
	Config      models.BoardConfig   `json:"config"`
	Bell        Status               `json:"bell"`
	BellLabel   string               `json:"bellLabel"`
	Slides      []models.Slide       `json:"slides"`
	Countdowns  []CountdownView      `json:"countdowns"`
	Birthdays   []BirthdayView       `json:"birthdays"`
	Marquee     []models.MarqueeText `json:"marquee"`
	Quote       *models.Quote        `json:"quote,omitempty"`
	Duty        *models.Duty         `json:"duty,omitempty"`
}

// BirthdayView is a birthday with its greeting
type BirthdayView struct {
	models.Birthday
	Greeting string `json:"greeting"`
}

// Location returns the board's time zone, UTC when it is unknown
func Location(config models.BoardConfig) *time.Location {
	name := config.Timezone
	if name == "" {
		name = models.DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		zap.S().Warnw("unknown board timezone, using UTC", "timezone", name, "error", err)
		return time.UTC
	}
	return loc
}

// BuildFeed evaluates the board at now in the board's time zone
func BuildFeed(board models.BoardData, now time.Time, p *message.Printer) Feed {
	now = now.In(Location(board.Config))

	bell := BellStatus(board.DaySchedules, board.BellSchedule, now)
	feed := Feed{
		GeneratedAt: now,
		SchoolName:  board.Config.SchoolName,
		Config:      board.Config,
		Bell:        bell,
		BellLabel:   BellLabel(bell, p),
		Slides:      ActiveSlides(board.Slides, now),
		Countdowns:  ActiveCountdowns(board.Countdowns, now),
		Birthdays:   []BirthdayView{},
		Marquee:     SortedMarquee(board.MarqueeTexts),
		Duty:        board.Duty,
	}
	for i := range feed.Countdowns {
		feed.Countdowns[i].Label = p.Sprintf("countdown.days", feed.Countdowns[i].DaysLeft)
	}
	for _, b := range TodaysBirthdays(board.Birthdays, now) {
		feed.Birthdays = append(feed.Birthdays, BirthdayView{Birthday: b, Greeting: p.Sprintf("birthday.greeting", b.Name)})
	}
	if len(board.Quotes) > 0 {
		q := board.Quotes[now.YearDay()%len(board.Quotes)]
		feed.Quote = &q
	}
	return feed
}

// BellLabel renders a bell status as a sentence
func BellLabel(s Status, p *message.Printer) string {
	switch s.State {
	case InLesson:
		return p.Sprintf("bell.in_lesson", s.Minutes)
	case BeforeLesson:
		return p.Sprintf("bell.before_lesson", s.Minutes)
	case NextDay:
		start := ""
		if s.Period != nil {
			start = s.Period.StartTime
		}
		return p.Sprintf("bell.next_day", p.Sprintf("weekday."+s.Day), start)
	default:
		return p.Sprintf("bell.none")
	}
}
