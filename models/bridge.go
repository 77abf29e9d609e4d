package models

import "encoding/json"

// BridgeRequest is a desktop bridge call. ID is echoed back so a client can match responses.
type BridgeRequest struct {
	ID      string          `json:"id"`
	Channel string          `json:"channel"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// BridgeResponse answers a BridgeRequest. Pushed notifications have no ID.
type BridgeResponse struct {
	ID      string      `json:"id,omitempty"`
	Channel string      `json:"channel"`
	OK      bool        `json:"ok"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// MediaRefRequest names a media item by reference or served path
type MediaRefRequest struct {
	Ref string `json:"ref" validate:"required"`
}

// MediaPayload carries a media item inline as a data URI
type MediaPayload struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	DataURL     string `json:"dataUrl"`
}
