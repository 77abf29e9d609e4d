package schedule

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// LangParam is the query parameter used to select a language
const LangParam = "lang"

var supportedTags = []language.Tag{
	language.Turkish,
	language.English,
}

var tagMatcher = language.NewMatcher(supportedTags)

func init() {
	en := language.English
	message.SetString(en, "bell.in_lesson", "%d minutes until the lesson ends")
	message.SetString(en, "bell.before_lesson", "%d minutes until the next lesson")
	message.SetString(en, "bell.next_day", "Next lesson %s at %s")
	message.SetString(en, "bell.none", "No lessons scheduled")
	message.SetString(en, "birthday.greeting", "Happy birthday, %s!")
	_ = message.Set(en, "countdown.days", plural.Selectf(1, "%d",
		"=0", "Today",
		"=1", "Tomorrow",
		plural.Other, "%d days left"))

	tr := language.Turkish
	message.SetString(tr, "bell.in_lesson", "Dersin bitmesine %d dakika")
	message.SetString(tr, "bell.before_lesson", "Sonraki derse %d dakika")
	message.SetString(tr, "bell.next_day", "Sonraki ders %s %s")
	message.SetString(tr, "bell.none", "Ders programı yok")
	message.SetString(tr, "birthday.greeting", "İyi ki doğdun %s!")
	_ = message.Set(tr, "countdown.days", plural.Selectf(1, "%d",
		"=0", "Bugün",
		"=1", "Yarın",
		plural.Other, "%d gün kaldı"))

	for day, name := range trWeekdays {
		message.SetString(tr, "weekday."+DayName(day), name)
		message.SetString(en, "weekday."+DayName(day), day.String())
	}
}

var trWeekdays = map[time.Weekday]string{
	time.Monday:    "Pazartesi",
	time.Tuesday:   "Salı",
	time.Wednesday: "Çarşamba",
	time.Thursday:  "Perşembe",
	time.Friday:    "Cuma",
	time.Saturday:  "Cumartesi",
	time.Sunday:    "Pazar",
}

// DefaultTag is the display language when nothing else is asked for
func DefaultTag() language.Tag {
	return language.Turkish
}

// Printer returns a message printer for the supplied tag
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// ResolveTag picks the display language from the lang query parameter, then Accept-Language
func ResolveTag(r *http.Request) language.Tag {
	if r == nil {
		return DefaultTag()
	}
	if lang := strings.TrimSpace(r.URL.Query().Get(LangParam)); lang != "" {
		return MatchTag(lang)
	}
	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			return match(tags...)
		}
	}
	return DefaultTag()
}

// MatchTag maps a language name onto a supported tag, DefaultTag when it is unknown
func MatchTag(lang string) language.Tag {
	tag, err := language.Parse(strings.TrimSpace(lang))
	if err != nil {
		return DefaultTag()
	}
	return match(tag)
}

func match(tags ...language.Tag) language.Tag {
	_, index, confidence := tagMatcher.Match(tags...)
	if confidence == language.No {
		return DefaultTag()
	}
	return supportedTags[index]
}
