package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/linesmerrill/school-board-api/board"
	"github.com/linesmerrill/school-board-api/config"
	"github.com/linesmerrill/school-board-api/databases"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report json field names in validation errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

// storeErrorStatus maps a storage error to its HTTP status
func storeErrorStatus(err error) int {
	switch {
	case errors.Is(err, databases.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, databases.ErrMalformed):
		return http.StatusBadRequest
	case errors.Is(err, board.ErrMediaUnresolvable):
		return http.StatusNotFound
	case errors.Is(err, databases.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
