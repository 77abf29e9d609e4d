package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/school-board-api/api/testhelpers"
	"github.com/linesmerrill/school-board-api/config"
	"github.com/linesmerrill/school-board-api/models"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	store, _ := testhelpers.NewFileStore(t)
	a := &App{
		Config: config.Config{RequestTimeout: 5 * time.Second, AppVersion: "v0.1.0"},
		Store:  store,
	}
	a.Router = a.New()
	return a
}

func executeRequest(a *App, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	a.Router.ServeHTTP(rr, req)
	return rr
}

func checkResponseCode(t *testing.T, expected, actual int) {
	if expected != actual {
		t.Errorf("Expected response code %d. Got %d\n", expected, actual)
	}
}

func TestUnknownRoute(t *testing.T) {
	a := newTestApp(t)
	req, _ := http.NewRequest("GET", "/asdf", nil)
	response := executeRequest(a, req)

	checkResponseCode(t, http.StatusNotFound, response.Code)
}

func TestHealthCheckRoute(t *testing.T) {
	a := newTestApp(t)
	req, _ := http.NewRequest("GET", "/health", nil)
	response := executeRequest(a, req)

	checkResponseCode(t, http.StatusOK, response.Code)

	var health models.HealthCheckResponse
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &health))
	assert.True(t, health.Alive)
	assert.Equal(t, string(models.BackendServer), health.Backend)
}

func TestMetricsRoute(t *testing.T) {
	a := newTestApp(t)
	executeRequest(a, httptest.NewRequest("GET", "/api/board", nil))

	response := executeRequest(a, httptest.NewRequest("GET", "/metrics", nil))
	checkResponseCode(t, http.StatusOK, response.Code)
	assert.Contains(t, response.Body.String(), "school_board_http_requests_total")
	assert.Contains(t, response.Body.String(), `route="/api/board"`)
}

func TestApp_WrongMethod(t *testing.T) {
	a := newTestApp(t)
	response := executeRequest(a, httptest.NewRequest("DELETE", "/api/board", nil))
	checkResponseCode(t, http.StatusMethodNotAllowed, response.Code)
}

func TestApp_BoardRoundTripWithETag(t *testing.T) {
	a := newTestApp(t)

	get := executeRequest(a, httptest.NewRequest("GET", "/api/board", nil))
	checkResponseCode(t, http.StatusOK, get.Code)
	tag := get.Header().Get("ETag")
	require.NotEmpty(t, tag)

	var data models.BoardData
	require.NoError(t, json.Unmarshal(get.Body.Bytes(), &data))
	data.Config.SchoolName = "Anadolu Lisesi"
	body, _ := json.Marshal(data)

	put := httptest.NewRequest("PUT", "/api/board", bytes.NewReader(body))
	put.Header.Set("If-Match", tag)
	response := executeRequest(a, put)
	checkResponseCode(t, http.StatusOK, response.Code)
	newTag := response.Header().Get("ETag")
	assert.NotEqual(t, tag, newTag)

	// a second editor still holding the first revision loses
	put = httptest.NewRequest("PUT", "/api/board", bytes.NewReader(body))
	put.Header.Set("If-Match", tag)
	response = executeRequest(a, put)
	checkResponseCode(t, http.StatusConflict, response.Code)

	get = executeRequest(a, httptest.NewRequest("GET", "/api/board", nil))
	assert.Equal(t, newTag, get.Header().Get("ETag"))
	assert.True(t, strings.Contains(get.Body.String(), "Anadolu Lisesi"))
}

func TestApp_SectionRoute(t *testing.T) {
	a := newTestApp(t)

	req := httptest.NewRequest("PUT", "/api/board/countdowns", bytes.NewBufferString(`[{"name":"LGS","date":"2030-06-15","type":"exam"}]`))
	response := executeRequest(a, req)
	checkResponseCode(t, http.StatusOK, response.Code)

	response = executeRequest(a, httptest.NewRequest("PUT", "/api/board/nope", bytes.NewBufferString(`[]`)))
	checkResponseCode(t, http.StatusNotFound, response.Code)
}

func TestApp_SaveNotifies(t *testing.T) {
	a := newTestApp(t)
	rec := &testhelpers.Recorder{}
	a.Store.SetNotifier(rec)

	body, _ := json.Marshal(models.DefaultBoard())
	response := executeRequest(a, httptest.NewRequest("PUT", "/api/board", bytes.NewReader(body)))
	checkResponseCode(t, http.StatusOK, response.Code)
	assert.Equal(t, []string{"board:saved"}, rec.Names())
}

func TestApp_Close(t *testing.T) {
	a := newTestApp(t)
	assert.NoError(t, a.Close())
}
