package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/linesmerrill/school-board-api/board"
	"github.com/linesmerrill/school-board-api/config"
	"github.com/linesmerrill/school-board-api/databases"
	"github.com/linesmerrill/school-board-api/models"
)

// maxUploadSize bounds the upload request body, base64 overhead included
const maxUploadSize = 64 << 20

// errInvalidDataURL is returned for upload payloads that are not base64 data URIs
var errInvalidDataURL = errors.New("invalid data url")

// Media exported for testing purposes
type Media struct {
	Store *board.Store
}

// UploadHandler stores a base64 data URI and returns its reference
func (m Media) UploadHandler(w http.ResponseWriter, r *http.Request) {
	var req models.UploadMediaRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUploadSize)).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("invalid upload", http.StatusBadRequest, w, err)
		return
	}
	data, contentType, err := decodeDataURL(req.DataURL)
	if err != nil {
		config.ErrorStatus("invalid upload", http.StatusBadRequest, w, err)
		return
	}

	resp, err := upload(r.Context(), m.Store, data, contentType, req.Filename)
	if err != nil {
		config.ErrorStatus("failed to upload media", storeErrorStatus(err), w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// MediaHandler streams a media item served by the active backend
func (m Media) MediaHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["filename"]

	media, err := m.Store.MediaByName(r.Context(), name)
	if err != nil {
		status := storeErrorStatus(err)
		if status == http.StatusBadRequest {
			status = http.StatusNotFound
		}
		config.ErrorStatus("failed to get media", status, w, err)
		return
	}

	contentType := media.ContentType
	if contentType == "" {
		contentType = databases.ContentTypeForName(name)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(media.Data)))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(media.Data)
}

// ResolveHandler turns a stored media reference into a renderable URL
func (m Media) ResolveHandler(w http.ResponseWriter, r *http.Request) {
	ref := r.URL.Query().Get("ref")
	if ref == "" {
		config.ErrorStatus("ref is required", http.StatusBadRequest, w, nil)
		return
	}
	url, err := m.Store.ResolveMedia(r.Context(), ref)
	if err != nil {
		config.ErrorStatus("failed to resolve media", storeErrorStatus(err), w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.ResolveMediaResponse{Reference: ref, URL: url})
}

func upload(ctx context.Context, store *board.Store, data []byte, contentType, name string) (models.UploadMediaResponse, error) {
	ref, err := store.UploadMedia(ctx, data, contentType, name)
	if err != nil {
		return models.UploadMediaResponse{}, err
	}
	url, err := store.ResolveMedia(ctx, ref.String())
	if err != nil {
		return models.UploadMediaResponse{}, err
	}
	return models.UploadMediaResponse{Reference: ref.String(), URL: url}, nil
}

// decodeDataURL splits "data:<type>;base64,<payload>" into its bytes and content type
func decodeDataURL(s string) ([]byte, string, error) {
	meta, payload, found := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !found || !strings.HasPrefix(s, "data:") {
		return nil, "", errInvalidDataURL
	}
	params := strings.Split(meta, ";")
	if len(params) < 2 || !strings.EqualFold(params[len(params)-1], "base64") {
		return nil, "", errors.Wrap(errInvalidDataURL, "only base64 payloads are supported")
	}
	contentType := strings.TrimSpace(params[0])
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, "", errors.Wrap(errInvalidDataURL, err.Error())
	}
	if len(data) == 0 {
		return nil, "", errors.Wrap(errInvalidDataURL, "empty payload")
	}
	return data, contentType, nil
}

func encodeDataURL(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
