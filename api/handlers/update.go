package handlers

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/linesmerrill/school-board-api/board"
	"github.com/linesmerrill/school-board-api/config"
	"github.com/linesmerrill/school-board-api/updates"
)

// Update exported for testing purposes
type Update struct {
	Checker  *updates.Checker
	Notifier board.Notifier
}

// CheckHandler checks the release feed for a newer version and pushes the result to
// connected clients
func (u Update) CheckHandler(w http.ResponseWriter, r *http.Request) {
	info, err := u.Checker.CheckAndNotify(r.Context(), u.Notifier)
	if errors.Is(err, updates.ErrNoFeed) {
		writeJSON(w, http.StatusOK, info)
		return
	}
	if err != nil {
		config.ErrorStatus("failed to check for updates", http.StatusBadGateway, w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}
