package models

import (
	"strings"
	"time"
)

// BackendKind names a persistence backend. It doubles as the scheme of media references.
type BackendKind string

const (
	// BackendDesktop is the SQLite store used by the desktop shell
	BackendDesktop BackendKind = "desktop"
	// BackendLocal is the embedded key/value store standing in for browser storage
	BackendLocal BackendKind = "local"
	// BackendServer is the flat JSON file plus media directory
	BackendServer BackendKind = "server"
	// BackendMongo is the MongoDB document store
	BackendMongo BackendKind = "mongo"
	// BackendCloudinary only stores media
	BackendCloudinary BackendKind = "cloudinary"
)

// Valid reports whether k is one of the known backend kinds
func (k BackendKind) Valid() bool {
	switch k {
	case BackendDesktop, BackendLocal, BackendServer, BackendMongo, BackendCloudinary:
		return true
	}
	return false
}

// MediaRef identifies an uploaded asset inside the backend that minted it
type MediaRef struct {
	Backend BackendKind `json:"backend" bson:"backend"`
	ID      string      `json:"id" bson:"id"`
}

// String renders the reference as "<backend>://<id>"
func (r MediaRef) String() string {
	return string(r.Backend) + "://" + r.ID
}

// ParseMediaRef splits a stored reference. ok is false for anything that is not
// "<known backend>://<id>", such as a plain URL.
func ParseMediaRef(s string) (MediaRef, bool) {
	scheme, id, found := strings.Cut(s, "://")
	if !found || id == "" {
		return MediaRef{}, false
	}
	kind := BackendKind(scheme)
	if !kind.Valid() {
		return MediaRef{}, false
	}
	return MediaRef{Backend: kind, ID: id}, true
}

// Media is a stored binary asset
type Media struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	ContentType string    `json:"contentType" bson:"contentType"`
	Data        []byte    `json:"-" bson:"data"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}

// UploadMediaRequest holds the structure for uploading a base64 data URI
type UploadMediaRequest struct {
	DataURL  string `json:"dataUrl" validate:"required,startswith=data:"`
	Filename string `json:"filename,omitempty" validate:"omitempty,max=200"`
}

// UploadMediaResponse holds the reference minted for an upload and a renderable URL for it
type UploadMediaResponse struct {
	Reference string `json:"reference"`
	URL       string `json:"url"`
}

// ResolveMediaResponse holds a renderable URL for a media reference
type ResolveMediaResponse struct {
	Reference string `json:"reference"`
	URL       string `json:"url"`
}
