package board

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/linesmerrill/school-board-api/models"
)

var (
	// ErrUnknownSection is returned by UpdateSection for a name that is not a board field
	ErrUnknownSection = errors.New("unknown board section")
	// ErrInvalidSection is returned by UpdateSection when the payload does not decode
	ErrInvalidSection = errors.New("invalid section payload")
)

// The updaters below read the current board, replace one field and write the whole board
// back. Two updaters racing each other can lose one of the writes.

// UpdateSlides replaces the slides
func (s *Store) UpdateSlides(ctx context.Context, slides []models.Slide) error {
	return s.update(ctx, func(b *models.BoardData) { b.Slides = slides })
}

// UpdateDuty replaces the duty roster
func (s *Store) UpdateDuty(ctx context.Context, duty models.Duty) error {
	return s.update(ctx, func(b *models.BoardData) { b.Duty = &duty })
}

// UpdateBirthdays replaces the birthdays
func (s *Store) UpdateBirthdays(ctx context.Context, birthdays []models.Birthday) error {
	return s.update(ctx, func(b *models.BoardData) { b.Birthdays = birthdays })
}

// UpdateCountdowns replaces the countdowns
func (s *Store) UpdateCountdowns(ctx context.Context, countdowns []models.Countdown) error {
	return s.update(ctx, func(b *models.BoardData) { b.Countdowns = countdowns })
}

// UpdateMarqueeTexts replaces the marquee texts
func (s *Store) UpdateMarqueeTexts(ctx context.Context, texts []models.MarqueeText) error {
	return s.update(ctx, func(b *models.BoardData) { b.MarqueeTexts = texts })
}

// UpdateQuotes replaces the quotes
func (s *Store) UpdateQuotes(ctx context.Context, quotes []models.Quote) error {
	return s.update(ctx, func(b *models.BoardData) { b.Quotes = quotes })
}

// UpdateBellSchedule replaces the flat bell schedule
func (s *Store) UpdateBellSchedule(ctx context.Context, periods []models.BellPeriod) error {
	return s.update(ctx, func(b *models.BoardData) { b.BellSchedule = periods })
}

// UpdateDaySchedules replaces the per-day bell schedules
func (s *Store) UpdateDaySchedules(ctx context.Context, schedules []models.DaySchedule) error {
	return s.update(ctx, func(b *models.BoardData) { b.DaySchedules = schedules })
}

// UpdateConfig replaces the board config
func (s *Store) UpdateConfig(ctx context.Context, config models.BoardConfig) error {
	return s.update(ctx, func(b *models.BoardData) { b.Config = config })
}

func (s *Store) update(ctx context.Context, apply func(*models.BoardData)) error {
	data := s.Load(ctx)
	apply(&data)
	return s.Save(ctx, data)
}

// UpdateSection decodes raw as the named section and runs its updater. Items without an
// id get one.
func (s *Store) UpdateSection(ctx context.Context, section string, raw []byte) error {
	if _, ok := sectionNames[section]; !ok {
		return errors.Wrap(ErrUnknownSection, section)
	}
	wrapped := make([]byte, 0, len(raw)+len(section)+5)
	wrapped = append(wrapped, `{"`+section+`":`...)
	wrapped = append(wrapped, raw...)
	wrapped = append(wrapped, '}')

	var patch models.BoardData
	if err := json.Unmarshal(wrapped, &patch); err != nil {
		return errors.Wrap(ErrInvalidSection, err.Error())
	}
	models.AssignMissingIDs(&patch)

	switch section {
	case models.SectionSlides:
		return s.UpdateSlides(ctx, patch.Slides)
	case models.SectionDuty:
		if patch.Duty == nil {
			return errors.Wrap(ErrInvalidSection, "duty must be an object")
		}
		return s.UpdateDuty(ctx, *patch.Duty)
	case models.SectionBirthdays:
		return s.UpdateBirthdays(ctx, patch.Birthdays)
	case models.SectionCountdowns:
		return s.UpdateCountdowns(ctx, patch.Countdowns)
	case models.SectionMarqueeTexts:
		return s.UpdateMarqueeTexts(ctx, patch.MarqueeTexts)
	case models.SectionQuotes:
		return s.UpdateQuotes(ctx, patch.Quotes)
	case models.SectionBellSchedule:
		return s.UpdateBellSchedule(ctx, patch.BellSchedule)
	case models.SectionDaySchedules:
		return s.UpdateDaySchedules(ctx, patch.DaySchedules)
	default:
		return s.UpdateConfig(ctx, patch.Config)
	}
}

var sectionNames = map[string]struct{}{
	models.SectionSlides:       {},
	models.SectionDuty:         {},
	models.SectionBirthdays:    {},
	models.SectionCountdowns:   {},
	models.SectionMarqueeTexts: {},
	models.SectionQuotes:       {},
	models.SectionBellSchedule: {},
	models.SectionDaySchedules: {},
	models.SectionConfig:       {},
}
