// Package docs School Board API.
//
// Documentation of the School Board API.
//
//     Schemes: http, https
//     BasePath: /
//     Version: 1.0.0
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
// swagger:meta
package docs

import (
	"github.com/linesmerrill/school-board-api/models"
	"github.com/linesmerrill/school-board-api/schedule"
)

// swagger:route GET /health health healthEndpointID
// Lists the healthchex of the web service api.
// responses:
//   200: healthResponse

// Shows the current health of the api and the storage backend it runs on.
// swagger:response healthResponse
type healthResponseWrapper struct {
	// in:body
	Body models.HealthCheckResponse
}

// swagger:route GET /api/board board boardGet
// Gets the whole board. The ETag header carries the board revision.
// responses:
//   200: boardResponse

// swagger:route PUT /api/board board boardSave
// Replaces the whole board. An If-Match header that does not match the current revision is rejected.
// responses:
//   200: successResponse
//   409: errorResponse

// swagger:route PUT /api/board/{section} board boardSection
// Replaces one section of the board, e.g. slides or bellSchedule.
// responses:
//   200: successResponse
//   400: errorResponse
//   404: errorResponse

// The stored board with every section filled in.
// swagger:response boardResponse
type boardResponseWrapper struct {
	// in:body
	Body models.BoardData
}

// swagger:route GET /api/display display displayFeed
// Gets what a display shows right now, with labels in the language asked for by ?lang or Accept-Language.
// responses:
//   200: displayResponse

// swagger:response displayResponse
type displayResponseWrapper struct {
	// in:body
	Body schedule.Feed
}

// swagger:route POST /api/upload media mediaUpload
// Stores a data URL on the active media backend.
// responses:
//   200: uploadResponse
//   400: errorResponse

// swagger:parameters mediaUpload
type uploadRequestWrapper struct {
	// in:body
	Body models.UploadMediaRequest
}

// swagger:response uploadResponse
type uploadResponseWrapper struct {
	// in:body
	Body models.UploadMediaResponse
}

// swagger:route GET /api/media/resolve media mediaResolve
// Resolves a media reference to a displayable URL.
// responses:
//   200: resolveResponse
//   404: errorResponse

// swagger:response resolveResponse
type resolveResponseWrapper struct {
	// in:body
	Body models.ResolveMediaResponse
}

// swagger:route GET /api/backup backup backupDownload
// Downloads a snapshot of the board.
// responses:
//   200: backupResponse

// swagger:response backupResponse
type backupResponseWrapper struct {
	// in:body
	Body models.BackupSnapshot
}

// swagger:route GET /api/update update updateCheck
// Checks the release feed for a newer version.
// responses:
//   200: updateResponse
//   502: errorResponse

// swagger:response updateResponse
type updateResponseWrapper struct {
	// in:body
	Body models.UpdateInfo
}

// swagger:response successResponse
type successResponseWrapper struct {
	// in:body
	Body models.SuccessResponse
}

// swagger:response errorResponse
type errorResponseWrapper struct {
	// in:body
	Body models.ErrorMessageResponse
}
