package hints

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hintwise/hintgate/internal/db/models"
)

// mockHintRepository implements repository.HintRepository in memory.
type mockHintRepository struct {
	createErr error
	updateErr error
	deleteErr error

	nextID   int64
	affected int64

	lastHint     *models.Hint
	lastID       int64
	lastQuestion string
	lastReply    string
}

func (m *mockHintRepository) Create(_ context.Context, hint *models.Hint) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	hint.ID = m.nextID
	m.lastHint = hint
	return nil
}

func (m *mockHintRepository) Update(_ context.Context, id int64, question, reply string) (int64, error) {
	if m.updateErr != nil {
		return 0, m.updateErr
	}
	m.lastID, m.lastQuestion, m.lastReply = id, question, reply
	return m.affected, nil
}

func (m *mockHintRepository) Delete(_ context.Context, id int64) (int64, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	m.lastID = id
	return m.affected, nil
}

func serveJSON(t *testing.T, mode Mode, repo *mockHintRepository, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	NewServer(mode, repo).Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestParseMode(t *testing.T) {
	for _, raw := range []string{"create", "update", "delete"} {
		mode, err := ParseMode(raw)
		require.NoError(t, err)
		assert.Equal(t, Mode(raw), mode)
	}

	_, err := ParseMode("read")
	assert.Error(t, err)
}

func TestHealthReportsMode(t *testing.T) {
	rec := serveJSON(t, ModeUpdate, &mockHintRepository{}, http.MethodGet, "/update/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "update", body["service"])
}

func TestCreateHint(t *testing.T) {
	repo := &mockHintRepository{}
	rec := serveJSON(t, ModeCreate, repo, http.MethodPost, "/create",
		`{"question":"What are office hours?","reply":"Tuesdays 2-4pm"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(1), body["insertId"])
	assert.Equal(t, "Chatbot hint created successfully", body["message"])
	require.NotNil(t, repo.lastHint)
	assert.Equal(t, "What are office hours?", repo.lastHint.Question)
}

func TestCreateHintValidation(t *testing.T) {
	long := strings.Repeat("a", models.MaxHintFieldLength+1)

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{
			name:    "missing reply",
			body:    `{"question":"q"}`,
			message: "Both question and reply are required",
		},
		{
			name:    "missing question",
			body:    `{"reply":"r"}`,
			message: "Both question and reply are required",
		},
		{
			name:    "malformed json",
			body:    `{"question":`,
			message: "Both question and reply are required",
		},
		{
			name:    "question too long",
			body:    `{"question":"` + long + `","reply":"r"}`,
			message: "Question and reply must be 100 characters or less",
		},
		{
			name:    "reply too long",
			body:    `{"question":"q","reply":"` + long + `"}`,
			message: "Question and reply must be 100 characters or less",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockHintRepository{}
			rec := serveJSON(t, ModeCreate, repo, http.MethodPost, "/create", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.message, body["error"])
			assert.Nil(t, repo.lastHint)
		})
	}
}

func TestCreateHintRepositoryFailure(t *testing.T) {
	repo := &mockHintRepository{createErr: errors.New("connection refused")}
	rec := serveJSON(t, ModeCreate, repo, http.MethodPost, "/create",
		`{"question":"q","reply":"r"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decodeBody(t, rec)["error"])
}

func TestUpdateHint(t *testing.T) {
	repo := &mockHintRepository{affected: 1}

	for _, target := range []string{"/update/api/hints/5", "/api/hints/5"} {
		t.Run(target, func(t *testing.T) {
			rec := serveJSON(t, ModeUpdate, repo, http.MethodPut, target,
				`{"question":"new q","reply":"new r"}`)

			assert.Equal(t, http.StatusOK, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, true, body["success"])
			assert.Equal(t, float64(1), body["affectedRows"])
			assert.Equal(t, "Hint updated successfully", body["message"])
			assert.Equal(t, int64(5), repo.lastID)
			assert.Equal(t, "new q", repo.lastQuestion)
		})
	}
}

func TestUpdateHintNotFound(t *testing.T) {
	repo := &mockHintRepository{affected: 0}
	rec := serveJSON(t, ModeUpdate, repo, http.MethodPut, "/update/api/hints/99",
		`{"question":"q","reply":"r"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Hint not found", decodeBody(t, rec)["error"])
}

func TestUpdateHintValidation(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
		status int
		errMsg string
	}{
		{
			name:   "empty fields",
			target: "/update/api/hints/5",
			body:   `{"question":"","reply":""}`,
			status: http.StatusBadRequest,
			errMsg: "Question and reply are required",
		},
		{
			name:   "non-integer id",
			target: "/update/api/hints/abc",
			body:   `{"question":"q","reply":"r"}`,
			status: http.StatusBadRequest,
			errMsg: "Invalid ID format, must be an integer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveJSON(t, ModeUpdate, &mockHintRepository{affected: 1}, http.MethodPut, tt.target, tt.body)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.errMsg, decodeBody(t, rec)["error"])
		})
	}
}

func TestDeleteHint(t *testing.T) {
	repo := &mockHintRepository{affected: 1}
	rec := serveJSON(t, ModeDelete, repo, http.MethodDelete, "/delete/api/hints/9", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Hint deleted successfully", body["message"])
	assert.Equal(t, float64(1), body["affectedRows"])
	assert.Equal(t, int64(9), repo.lastID)
}

func TestDeleteHintNotFound(t *testing.T) {
	repo := &mockHintRepository{affected: 0}
	rec := serveJSON(t, ModeDelete, repo, http.MethodDelete, "/delete/api/hints/42", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Hint not found", decodeBody(t, rec)["error"])
}

func TestDeleteHintInvalidID(t *testing.T) {
	rec := serveJSON(t, ModeDelete, &mockHintRepository{affected: 1}, http.MethodDelete, "/delete/api/hints/not-a-number", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid ID format, must be an integer", decodeBody(t, rec)["error"])
}

func TestModesExposeOnlyTheirRoutes(t *testing.T) {
	tests := []struct {
		name   string
		mode   Mode
		method string
		target string
	}{
		{name: "create service has no delete route", mode: ModeCreate, method: http.MethodDelete, target: "/delete/api/hints/1"},
		{name: "delete service has no create route", mode: ModeDelete, method: http.MethodPost, target: "/create"},
		{name: "update service has no create route", mode: ModeUpdate, method: http.MethodPost, target: "/create"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveJSON(t, tt.mode, &mockHintRepository{}, tt.method, tt.target, "{}")
			assert.Equal(t, http.StatusNotFound, rec.Code)
		})
	}
}
