package models

import (
	"encoding/json"
	"time"
)

// BoardData holds the whole board document. Every top-level field is written as a unit.
type BoardData struct {
	Slides       []Slide       `json:"slides" bson:"slides"`
	Duty         *Duty         `json:"duty" bson:"duty"`
	Birthdays    []Birthday    `json:"birthdays" bson:"birthdays"`
	Countdowns   []Countdown   `json:"countdowns" bson:"countdowns"`
	MarqueeTexts []MarqueeText `json:"marqueeTexts" bson:"marqueeTexts"`
	Quotes       []Quote       `json:"quotes" bson:"quotes"`
	BellSchedule []BellPeriod  `json:"bellSchedule" bson:"bellSchedule"`
	DaySchedules []DaySchedule `json:"daySchedules" bson:"daySchedules"`
	Config       BoardConfig   `json:"config" bson:"config"`
}

// Slide holds an announcement or news item shown in the slide rotation
type Slide struct {
	ID        string         `json:"id" bson:"id"`
	Type      string         `json:"type" bson:"type"` // 'text', 'image', 'video', 'news'
	Title     string         `json:"title" bson:"title"`
	Body      string         `json:"body" bson:"body"`
	Media     string         `json:"media,omitempty" bson:"media,omitempty"`
	Animation string         `json:"animation" bson:"animation"`
	Duration  int            `json:"duration" bson:"duration"` // seconds
	Priority  int            `json:"priority" bson:"priority"`
	Schedule  *SlideSchedule `json:"schedule,omitempty" bson:"schedule,omitempty"`
}

// SlideSchedule limits a slide to a time window. Both ends are RFC 3339 timestamps or YYYY-MM-DD dates.
type SlideSchedule struct {
	Start string `json:"start" bson:"start"`
	End   string `json:"end" bson:"end"`
}

// Duty holds the current duty roster
type Duty struct {
	Date     string   `json:"date" bson:"date"`
	Teachers []Person `json:"teachers" bson:"teachers"`
	Students []Person `json:"students" bson:"students"`
}

// Person is a member of a duty roster
type Person struct {
	Name string `json:"name" bson:"name"`
	Area string `json:"area,omitempty" bson:"area,omitempty"`
}

// Birthday holds a student or teacher birthday. Date is YYYY-MM-DD or MM-DD.
type Birthday struct {
	Name  string `json:"name" bson:"name"`
	Date  string `json:"date" bson:"date"`
	Class string `json:"class" bson:"class"`
	Type  string `json:"type" bson:"type"` // 'student', 'teacher'
}

// Countdown holds a dated event counted down on the display
type Countdown struct {
	ID   string `json:"id" bson:"id"`
	Name string `json:"name" bson:"name"`
	Date string `json:"date" bson:"date"`
	Type string `json:"type" bson:"type"` // 'exam', 'event', 'holiday'
	Icon string `json:"icon,omitempty" bson:"icon,omitempty"`
}

// MarqueeText holds a line of the scrolling ticker
type MarqueeText struct {
	ID       string `json:"id" bson:"id"`
	Text     string `json:"text" bson:"text"`
	Priority string `json:"priority" bson:"priority"` // 'normal', 'urgent', 'critical'
}

// Quote holds a verse, hadith or quote of the day
type Quote struct {
	ID     string `json:"id" bson:"id"`
	Type   string `json:"type" bson:"type"` // 'verse', 'hadith', 'quote'
	Text   string `json:"text" bson:"text"`
	Source string `json:"source,omitempty" bson:"source,omitempty"`
}

// BellPeriod is one lesson or break. Times are HH:MM.
type BellPeriod struct {
	ID        string `json:"id" bson:"id"`
	Type      string `json:"type" bson:"type"` // 'lesson', 'break'
	Name      string `json:"name" bson:"name"`
	StartTime string `json:"startTime" bson:"startTime"`
	EndTime   string `json:"endTime" bson:"endTime"`
	Order     int    `json:"order" bson:"order"`
}

// DaySchedule is the bell schedule for one weekday, or for every day when Day is "all"
type DaySchedule struct {
	ID       string       `json:"id" bson:"id"`
	Day      string       `json:"day" bson:"day"`
	Schedule []BellPeriod `json:"schedule" bson:"schedule"`
}

// BoardConfig holds school-wide display settings
type BoardConfig struct {
	SchoolName     string `json:"schoolName" bson:"schoolName"`
	LogoURL        string `json:"logoUrl,omitempty" bson:"logoUrl,omitempty"`
	PrimaryColor   string `json:"primaryColor,omitempty" bson:"primaryColor,omitempty"`
	SecondaryColor string `json:"secondaryColor,omitempty" bson:"secondaryColor,omitempty"`
	Timezone       string `json:"timezone" bson:"timezone"`
}

// Clone returns a deep copy of the board. Nil and empty collections keep their distinction.
func (b BoardData) Clone() BoardData {
	raw, err := json.Marshal(b)
	if err != nil {
		return b
	}
	var c BoardData
	if err := json.Unmarshal(raw, &c); err != nil {
		return b
	}
	return c
}

// CacheEntry is a cached board snapshot and the time it was stored
type CacheEntry struct {
	Data     BoardData `json:"data"`
	StoredAt time.Time `json:"storedAt"`
}
