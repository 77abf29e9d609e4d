package schedule

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/linesmerrill/school-board-api/models"
)

func TestBuildFeed(t *testing.T) {
	board := models.DefaultBoard()
	board.Countdowns = []models.Countdown{{ID: "exam", Name: "YKS", Date: "2024-03-11"}}
	board.Birthdays = []models.Birthday{{Name: "Ayşe", Date: "03-04"}}
	board.Quotes = []models.Quote{{ID: "q1", Text: "first"}, {ID: "q2", Text: "second"}}

	// 06:00 UTC is 09:00 in Istanbul
	now := time.Date(2024, 3, 4, 6, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		tag       language.Tag
		bell      string
		countdown string
		greeting  string
	}{
		{"turkish", language.Turkish, "Dersin bitmesine 10 dakika", "7 gün kaldı", "İyi ki doğdun Ayşe!"},
		{"english", language.English, "10 minutes until the lesson ends", "7 days left", "Happy birthday, Ayşe!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feed := BuildFeed(board, now, Printer(tt.tag))

			assert.Equal(t, "Europe/Istanbul", feed.GeneratedAt.Location().String())
			assert.Equal(t, board.Config.SchoolName, feed.SchoolName)
			assert.Equal(t, InLesson, feed.Bell.State)
			assert.Equal(t, 10, feed.Bell.Minutes)
			assert.Equal(t, tt.bell, feed.BellLabel)

			require.Len(t, feed.Countdowns, 1)
			assert.Equal(t, tt.countdown, feed.Countdowns[0].Label)

			require.Len(t, feed.Birthdays, 1)
			assert.Equal(t, tt.greeting, feed.Birthdays[0].Greeting)

			require.NotNil(t, feed.Quote)
			// day 64 of 2024
			assert.Equal(t, "q1", feed.Quote.ID)
			assert.Len(t, feed.Slides, 1)
			assert.Len(t, feed.Marquee, 1)
		})
	}
}

func TestBuildFeed_UnknownTimezone(t *testing.T) {
	board := models.DefaultBoard()
	board.Config.Timezone = "Mars/Olympus"
	feed := BuildFeed(board, time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC), Printer(language.English))
	assert.Equal(t, time.UTC, feed.GeneratedAt.Location())
	assert.Equal(t, InLesson, feed.Bell.State)
	assert.Nil(t, feed.Quote)
	assert.NotNil(t, feed.Birthdays)
}

func TestBellLabel(t *testing.T) {
	en := Printer(language.English)
	tr := Printer(language.Turkish)
	monday := &models.BellPeriod{StartTime: "08:30"}

	assert.Equal(t, "5 minutes until the next lesson", BellLabel(Status{State: BeforeLesson, Minutes: 5}, en))
	assert.Equal(t, "Sonraki derse 5 dakika", BellLabel(Status{State: BeforeLesson, Minutes: 5}, tr))
	assert.Equal(t, "Next lesson Monday at 08:30", BellLabel(Status{State: NextDay, Period: monday, Day: "monday"}, en))
	assert.Equal(t, "Sonraki ders Pazartesi 08:30", BellLabel(Status{State: NextDay, Period: monday, Day: "monday"}, tr))
	assert.Equal(t, "No lessons scheduled", BellLabel(Status{State: NoLessons}, en))
}

func TestCountdownPlurals(t *testing.T) {
	en := Printer(language.English)
	assert.Equal(t, "Today", en.Sprintf("countdown.days", 0))
	assert.Equal(t, "Tomorrow", en.Sprintf("countdown.days", 1))
	assert.Equal(t, "12 days left", en.Sprintf("countdown.days", 12))
	assert.Equal(t, "Yarın", Printer(language.Turkish).Sprintf("countdown.days", 1))
}

func TestResolveTag(t *testing.T) {
	tests := []struct {
		name   string
		target string
		accept string
		want   language.Tag
	}{
		{"query parameter", "/api/display?lang=en", "tr", language.English},
		{"accept language", "/api/display", "en-US,en;q=0.9", language.English},
		{"turkish accept language", "/api/display", "tr-TR", language.Turkish},
		{"nothing asked", "/api/display", "", language.Turkish},
		{"unsupported", "/api/display?lang=xx-invalid-tag-!!", "", language.Turkish},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.target, nil)
			if tt.accept != "" {
				r.Header.Set("Accept-Language", tt.accept)
			}
			assert.Equal(t, tt.want, ResolveTag(r))
		})
	}
	assert.Equal(t, language.Turkish, ResolveTag(nil))
}
