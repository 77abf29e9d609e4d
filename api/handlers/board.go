package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/linesmerrill/school-board-api/board"
	"github.com/linesmerrill/school-board-api/config"
	"github.com/linesmerrill/school-board-api/models"
	"github.com/linesmerrill/school-board-api/schedule"
)

// maxBoardSize bounds board, section and restore request bodies
const maxBoardSize = 8 << 20

// Board exported for testing purposes
type Board struct {
	Store *board.Store
}

// BoardHandler returns the whole board. It never fails: a missing or unreadable document
// is served as the default board.
func (b Board) BoardHandler(w http.ResponseWriter, r *http.Request) {
	data := b.Store.Load(r.Context())
	w.Header().Set("ETag", etag(board.Revision(data)))
	writeJSON(w, http.StatusOK, data)
}

// SaveBoardHandler replaces the whole board. A stale If-Match revision is rejected so that
// two editors do not silently overwrite each other.
func (b Board) SaveBoardHandler(w http.ResponseWriter, r *http.Request) {
	var data models.BoardData
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBoardSize)).Decode(&data); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	if match := r.Header.Get("If-Match"); match != "" && match != "*" {
		current := board.Revision(b.Store.Load(r.Context()))
		if !revisionMatches(match, current) {
			w.Header().Set("ETag", etag(current))
			config.ErrorStatus("board was changed by someone else", http.StatusConflict, w,
				errors.Errorf("revision %s does not match %s", match, current))
			return
		}
	}

	models.AssignMissingIDs(&data)
	if err := b.Store.Save(r.Context(), data); err != nil {
		config.ErrorStatus("failed to save board", storeErrorStatus(err), w, err)
		return
	}
	revision := board.Revision(data)
	w.Header().Set("ETag", etag(revision))
	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true, Revision: revision})
}

// SectionHandler replaces one top-level section of the board
func (b Board) SectionHandler(w http.ResponseWriter, r *http.Request) {
	section := mux.Vars(r)["section"]

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBoardSize))
	if err != nil {
		config.ErrorStatus("failed to read request", http.StatusBadRequest, w, err)
		return
	}

	err = b.Store.UpdateSection(r.Context(), section, raw)
	switch {
	case errors.Is(err, board.ErrUnknownSection):
		config.ErrorStatus("unknown board section", http.StatusNotFound, w, err)
		return
	case errors.Is(err, board.ErrInvalidSection):
		config.ErrorStatus("failed to decode section", http.StatusBadRequest, w, err)
		return
	case err != nil:
		config.ErrorStatus("failed to save board", storeErrorStatus(err), w, err)
		return
	}
	revision := board.Revision(b.Store.Load(r.Context()))
	w.Header().Set("ETag", etag(revision))
	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true, Revision: revision})
}

// DisplayHandler returns the board evaluated for the current moment, labelled in the
// language asked for by ?lang or Accept-Language
func (b Board) DisplayHandler(w http.ResponseWriter, r *http.Request) {
	tag := schedule.ResolveTag(r)
	feed := schedule.BuildFeed(b.Store.Load(r.Context()), time.Now(), schedule.Printer(tag))
	for i := range feed.Slides {
		feed.Slides[i].Media = b.resolve(r.Context(), feed.Slides[i].Media)
	}
	feed.Config.LogoURL = b.resolve(r.Context(), feed.Config.LogoURL)

	w.Header().Set("Content-Language", tag.String())
	writeJSON(w, http.StatusOK, feed)
}

// resolve keeps the reference when it cannot be resolved so the display can still try it
func (b Board) resolve(ctx context.Context, ref string) string {
	if ref == "" {
		return ref
	}
	url, err := b.Store.ResolveMedia(ctx, ref)
	if err != nil {
		zap.S().Warnw("failed to resolve media reference", "reference", ref, "error", err)
		return ref
	}
	return url
}

// BackupHandler downloads the board as a snapshot file
func (b Board) BackupHandler(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := b.Store.Backup(r.Context(), &buf); err != nil {
		config.ErrorStatus("failed to create backup", http.StatusInternalServerError, w, err)
		return
	}
	name := fmt.Sprintf("school-board-%s.json", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// RestoreHandler replaces the board with an uploaded snapshot
func (b Board) RestoreHandler(w http.ResponseWriter, r *http.Request) {
	err := b.Store.Restore(r.Context(), http.MaxBytesReader(w, r.Body, maxBoardSize))
	if errors.Is(err, board.ErrInvalidBackup) {
		config.ErrorStatus("invalid backup", http.StatusBadRequest, w, err)
		return
	}
	if err != nil {
		config.ErrorStatus("failed to restore backup", storeErrorStatus(err), w, err)
		return
	}
	revision := board.Revision(b.Store.Load(r.Context()))
	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true, Revision: revision})
}

// MetaHandler returns the app metadata
func (b Board) MetaHandler(w http.ResponseWriter, r *http.Request) {
	meta, err := b.Store.AppMeta(r.Context())
	if err != nil {
		config.ErrorStatus("failed to get app meta", storeErrorStatus(err), w, err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

// SetMetaHandler sets one app metadata value
func (b Board) SetMetaHandler(w http.ResponseWriter, r *http.Request) {
	var req models.AppMetaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("invalid app meta", http.StatusBadRequest, w, err)
		return
	}
	if err := b.Store.SetAppMeta(r.Context(), req.Key, req.Value); err != nil {
		config.ErrorStatus("failed to set app meta", storeErrorStatus(err), w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true})
}

func etag(revision string) string {
	return `"` + revision + `"`
}

// revisionMatches compares an If-Match header, which may list several entity tags, with revision
func revisionMatches(header, revision string) bool {
	for _, tag := range strings.Split(header, ",") {
		tag = strings.TrimPrefix(strings.TrimSpace(tag), "W/")
		if strings.Trim(tag, `"`) == revision {
			return true
		}
	}
	return false
}
