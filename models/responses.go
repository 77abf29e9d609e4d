package models

import "time"

// AllDays is the DaySchedule.Day value that applies to every weekday
const AllDays = "all"

// Sections that can be replaced on their own through the sub-collection updaters
const (
	SectionSlides       = "slides"
	SectionDuty         = "duty"
	SectionBirthdays    = "birthdays"
	SectionCountdowns   = "countdowns"
	SectionMarqueeTexts = "marqueeTexts"
	SectionQuotes       = "quotes"
	SectionBellSchedule = "bellSchedule"
	SectionDaySchedules = "daySchedules"
	SectionConfig       = "config"
)

// HealthCheckResponse returns the health check response
type HealthCheckResponse struct {
	Alive   bool   `json:"alive"`
	Backend string `json:"backend,omitempty"`
}

// SuccessResponse is returned by write endpoints that have nothing else to say
type SuccessResponse struct {
	Success  bool   `json:"success"`
	Revision string `json:"revision,omitempty"`
}

// BackupSnapshot is the envelope written by a board backup
type BackupSnapshot struct {
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	Board     BoardData `json:"board"`
}

// AppMetaRequest sets one app metadata value
type AppMetaRequest struct {
	Key   string `json:"key" validate:"required,max=100"`
	Value string `json:"value"`
}

// UpdateInfo describes the result of an update check
type UpdateInfo struct {
	CurrentVersion string `json:"currentVersion"`
	LatestVersion  string `json:"latestVersion,omitempty"`
	Available      bool   `json:"available"`
	DownloadURL    string `json:"downloadUrl,omitempty"`
	Notes          string `json:"notes,omitempty"`
}
