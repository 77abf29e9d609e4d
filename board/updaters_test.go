package board_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/school-board-api/board"
	"github.com/linesmerrill/school-board-api/models"
)

func TestUpdatersReplaceOnlyTheirField(t *testing.T) {
	ctx := context.Background()
	base := sampleBoard()

	tests := []struct {
		name   string
		update func(s *board.Store) error
		want   func(b *models.BoardData)
	}{
		{
			name:   "slides",
			update: func(s *board.Store) error { return s.UpdateSlides(ctx, []models.Slide{{ID: "s9", Type: "image", Media: "server://afis.png"}}) },
			want:   func(b *models.BoardData) { b.Slides = []models.Slide{{ID: "s9", Type: "image", Media: "server://afis.png"}} },
		},
		{
			name: "duty",
			update: func(s *board.Store) error {
				return s.UpdateDuty(ctx, models.Duty{Date: "2024-03-04", Teachers: []models.Person{{Name: "Mehmet Bey", Area: "Kantin"}}, Students: []models.Person{}})
			},
			want: func(b *models.BoardData) {
				b.Duty = &models.Duty{Date: "2024-03-04", Teachers: []models.Person{{Name: "Mehmet Bey", Area: "Kantin"}}, Students: []models.Person{}}
			},
		},
		{
			name:   "birthdays",
			update: func(s *board.Store) error { return s.UpdateBirthdays(ctx, []models.Birthday{}) },
			want:   func(b *models.BoardData) { b.Birthdays = []models.Birthday{} },
		},
		{
			name:   "countdowns",
			update: func(s *board.Store) error { return s.UpdateCountdowns(ctx, []models.Countdown{{ID: "c2", Name: "Karne", Date: "2024-06-14", Type: "event"}}) },
			want:   func(b *models.BoardData) { b.Countdowns = []models.Countdown{{ID: "c2", Name: "Karne", Date: "2024-06-14", Type: "event"}} },
		},
		{
			name:   "marquee texts",
			update: func(s *board.Store) error { return s.UpdateMarqueeTexts(ctx, []models.MarqueeText{{ID: "m2", Text: "Yarın tatil", Priority: "urgent"}}) },
			want:   func(b *models.BoardData) { b.MarqueeTexts = []models.MarqueeText{{ID: "m2", Text: "Yarın tatil", Priority: "urgent"}} },
		},
		{
			name:   "quotes",
			update: func(s *board.Store) error { return s.UpdateQuotes(ctx, []models.Quote{{ID: "q2", Type: "quote", Text: "Hayatta en hakiki mürşit ilimdir"}}) },
			want:   func(b *models.BoardData) { b.Quotes = []models.Quote{{ID: "q2", Type: "quote", Text: "Hayatta en hakiki mürşit ilimdir"}} },
		},
		{
			name:   "bell schedule",
			update: func(s *board.Store) error { return s.UpdateBellSchedule(ctx, []models.BellPeriod{{ID: "x", Type: "lesson", StartTime: "08:00", EndTime: "08:40"}}) },
			want:   func(b *models.BoardData) { b.BellSchedule = []models.BellPeriod{{ID: "x", Type: "lesson", StartTime: "08:00", EndTime: "08:40"}} },
		},
		{
			name:   "day schedules",
			update: func(s *board.Store) error { return s.UpdateDaySchedules(ctx, []models.DaySchedule{{ID: "fri", Day: "friday"}}) },
			want:   func(b *models.BoardData) { b.DaySchedules = []models.DaySchedule{{ID: "fri", Day: "friday"}} },
		},
		{
			name:   "config",
			update: func(s *board.Store) error { return s.UpdateConfig(ctx, models.BoardConfig{SchoolName: "Fen Lisesi", Timezone: "UTC"}) },
			want:   func(b *models.BoardData) { b.Config = models.BoardConfig{SchoolName: "Fen Lisesi", Timezone: "UTC"} },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newFakeBackend()
			store, _ := newTestStore(backend)
			require.NoError(t, store.Save(ctx, base))

			require.NoError(t, tt.update(store))

			want := base.Clone()
			tt.want(&want)
			assert.Equal(t, want, store.Load(ctx))
			assert.Equal(t, want, *backend.stored())
		})
	}
}

// Two updaters that start from the same snapshot overwrite each other: the last write wins
// and the other change is lost.
func TestUpdatersRaceLosesOneUpdate(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend()
	store, _ := newTestStore(backend)
	base := sampleBoard()
	require.NoError(t, store.Save(ctx, base))

	secondArrived := make(chan struct{})
	backend.set(func(f *fakeBackend) {
		f.beforeStore = func(call int) {
			// call 1 was the seed Save above
			switch call {
			case 2:
				<-secondArrived
			case 3:
				close(secondArrived)
			}
		}
	})

	newQuotes := []models.Quote{{ID: "q-new", Type: "verse", Text: "İkra"}}
	newSlides := []models.Slide{{ID: "s-new", Type: "text", Title: "Veli toplantısı"}}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		assert.NoError(t, store.UpdateQuotes(ctx, newQuotes))
	}()
	go func() {
		defer wg.Done()
		assert.NoError(t, store.UpdateSlides(ctx, newSlides))
	}()
	wg.Wait()

	final := backend.stored()
	require.NotNil(t, final)
	quotesKept := assert.ObjectsAreEqual(newQuotes, final.Quotes)
	slidesKept := assert.ObjectsAreEqual(newSlides, final.Slides)
	assert.True(t, quotesKept != slidesKept, "exactly one of the concurrent updates survives")
	if quotesKept {
		assert.Equal(t, base.Slides, final.Slides)
	} else {
		assert.Equal(t, base.Quotes, final.Quotes)
	}
}

func TestUpdateSection(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend()
	store, _ := newTestStore(backend)
	require.NoError(t, store.Save(ctx, sampleBoard()))

	require.NoError(t, store.UpdateSection(ctx, models.SectionMarqueeTexts, []byte(`[{"text":"Kayıtlar başladı","priority":"critical"}]`)))
	got := store.Load(ctx)
	require.Len(t, got.MarqueeTexts, 1)
	assert.NotEmpty(t, got.MarqueeTexts[0].ID)
	assert.Equal(t, "critical", got.MarqueeTexts[0].Priority)

	require.NoError(t, store.UpdateSection(ctx, models.SectionDuty, []byte(`{"date":"2024-03-05","teachers":[{"name":"Ali"}],"students":[]}`)))
	assert.Equal(t, "Ali", store.Load(ctx).Duty.Teachers[0].Name)

	require.NoError(t, store.UpdateSection(ctx, models.SectionConfig, []byte(`{"schoolName":"Yeni Ad","timezone":"Europe/Istanbul"}`)))
	assert.Equal(t, "Yeni Ad", store.Load(ctx).Config.SchoolName)

	assert.ErrorIs(t, store.UpdateSection(ctx, "weather", []byte(`[]`)), board.ErrUnknownSection)
	assert.ErrorIs(t, store.UpdateSection(ctx, models.SectionQuotes, []byte(`{"not":"a list"}`)), board.ErrInvalidSection)
	assert.ErrorIs(t, store.UpdateSection(ctx, models.SectionDuty, []byte(`null`)), board.ErrInvalidSection)
	assert.ErrorIs(t, store.UpdateSection(ctx, models.SectionSlides, []byte(`[{`)), board.ErrInvalidSection)
}
