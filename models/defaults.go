package models

import (
	"github.com/google/uuid"
)

// DefaultTimezone is used when the board config does not name one
const DefaultTimezone = "Europe/Istanbul"

// DefaultBoard returns the seed document served when no backend holds one yet
func DefaultBoard() BoardData {
	lessons := []BellPeriod{
		{ID: "p1", Type: "lesson", Name: "1. Ders", StartTime: "08:30", EndTime: "09:10", Order: 1},
		{ID: "b1", Type: "break", Name: "Teneffüs", StartTime: "09:10", EndTime: "09:20", Order: 2},
		{ID: "p2", Type: "lesson", Name: "2. Ders", StartTime: "09:20", EndTime: "10:00", Order: 3},
		{ID: "b2", Type: "break", Name: "Teneffüs", StartTime: "10:00", EndTime: "10:10", Order: 4},
		{ID: "p3", Type: "lesson", Name: "3. Ders", StartTime: "10:10", EndTime: "10:50", Order: 5},
		{ID: "b3", Type: "break", Name: "Öğle Arası", StartTime: "10:50", EndTime: "11:30", Order: 6},
		{ID: "p4", Type: "lesson", Name: "4. Ders", StartTime: "11:30", EndTime: "12:10", Order: 7},
	}

	return BoardData{
		Slides: []Slide{
			{
				ID:        "welcome",
				Type:      "text",
				Title:     "Hoş Geldiniz",
				Body:      "Okulumuzun bilgi ekranına hoş geldiniz.",
				Animation: "fade",
				Duration:  10,
				Priority:  1,
			},
		},
		Duty: &Duty{
			Teachers: []Person{},
			Students: []Person{},
		},
		Birthdays:  []Birthday{},
		Countdowns: []Countdown{},
		MarqueeTexts: []MarqueeText{
			{ID: "m1", Text: "Bilgi ekranına hoş geldiniz", Priority: "normal"},
		},
		Quotes:       []Quote{},
		BellSchedule: []BellPeriod{},
		DaySchedules: []DaySchedule{
			{ID: "all", Day: AllDays, Schedule: lessons},
		},
		Config: BoardConfig{
			SchoolName:     "Okul Bilgi Ekranı",
			PrimaryColor:   "#1e3a8a",
			SecondaryColor: "#f59e0b",
			Timezone:       DefaultTimezone,
		},
	}
}

// FillDefaults merges the seed into a stored document. A top-level field that was absent
// from the stored JSON takes the seed value; present fields, even empty lists, are kept.
func FillDefaults(b BoardData) BoardData {
	d := DefaultBoard()
	if b.Slides == nil {
		b.Slides = d.Slides
	}
	if b.Duty == nil {
		b.Duty = d.Duty
	}
	if b.Birthdays == nil {
		b.Birthdays = d.Birthdays
	}
	if b.Countdowns == nil {
		b.Countdowns = d.Countdowns
	}
	if b.MarqueeTexts == nil {
		b.MarqueeTexts = d.MarqueeTexts
	}
	if b.Quotes == nil {
		b.Quotes = d.Quotes
	}
	if b.BellSchedule == nil {
		b.BellSchedule = d.BellSchedule
	}
	if b.DaySchedules == nil {
		b.DaySchedules = d.DaySchedules
	}
	if b.Config.SchoolName == "" {
		b.Config.SchoolName = d.Config.SchoolName
	}
	if b.Config.Timezone == "" {
		b.Config.Timezone = d.Config.Timezone
	}
	return b
}

// AssignMissingIDs gives every list item without an id a fresh one
func AssignMissingIDs(b *BoardData) {
	for i := range b.Slides {
		if b.Slides[i].ID == "" {
			b.Slides[i].ID = uuid.NewString()
		}
	}
	for i := range b.Countdowns {
		if b.Countdowns[i].ID == "" {
			b.Countdowns[i].ID = uuid.NewString()
		}
	}
	for i := range b.MarqueeTexts {
		if b.MarqueeTexts[i].ID == "" {
			b.MarqueeTexts[i].ID = uuid.NewString()
		}
	}
	for i := range b.Quotes {
		if b.Quotes[i].ID == "" {
			b.Quotes[i].ID = uuid.NewString()
		}
	}
	for i := range b.BellSchedule {
		if b.BellSchedule[i].ID == "" {
			b.BellSchedule[i].ID = uuid.NewString()
		}
	}
	for i := range b.DaySchedules {
		if b.DaySchedules[i].ID == "" {
			b.DaySchedules[i].ID = uuid.NewString()
		}
		for j := range b.DaySchedules[i].Schedule {
			if b.DaySchedules[i].Schedule[j].ID == "" {
				b.DaySchedules[i].Schedule[j].ID = uuid.NewString()
			}
		}
	}
}
