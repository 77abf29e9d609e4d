package board

import "github.com/linesmerrill/school-board-api/models"

// Event names pushed to connected displays and editors
const (
	EventBoardSaved    = "board:saved"
	EventMediaUploaded = "media:uploaded"
)

// Notifier receives events after a write succeeded
type Notifier interface {
	Notify(event string, payload interface{})
}

// Notifiers fans an event out to every notifier in the list
type Notifiers []Notifier

// Notify implements Notifier
func (n Notifiers) Notify(event string, payload interface{}) {
	for _, notifier := range n {
		if notifier != nil {
			notifier.Notify(event, payload)
		}
	}
}

// BoardSavedPayload is sent with EventBoardSaved
type BoardSavedPayload struct {
	Revision string `json:"revision"`
}

// MediaUploadedPayload is sent with EventMediaUploaded
type MediaUploadedPayload struct {
	Reference string             `json:"reference"`
	Backend   models.BackendKind `json:"backend"`
	URL       string             `json:"url"`
}
