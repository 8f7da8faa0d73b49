package chat

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
)

type stubTurnService struct {
	reply       string
	resetErr    error
	lastSession string
	lastMessage string
	resets      []string
}

func (s *stubTurnService) HandleTurn(ctx context.Context, sessionID, userMessage string) string {
	s.lastSession = sessionID
	s.lastMessage = userMessage
	return s.reply
}

func (s *stubTurnService) ResetSession(ctx context.Context, sessionID string) error {
	s.resets = append(s.resets, sessionID)
	return s.resetErr
}

func postJSON(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func TestHandleTurnReturnsReplyAndSession(t *testing.T) {
	svc := &stubTurnService{reply: "What date works for you?"}
	handler := NewHandler(svc, nil)

	rr := postJSON(t, handler.HandleTurn, `{"message": "I need a dentist", "session_id": "s-123"}`)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp turnResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "What date works for you?", resp.Response)
	assert.Equal(t, "s-123", resp.SessionID)
	assert.Equal(t, "s-123", svc.lastSession)
	assert.Equal(t, "I need a dentist", svc.lastMessage)
}

func TestHandleTurnMintsSessionWhenMissing(t *testing.T) {
	svc := &stubTurnService{reply: "hello"}
	handler := NewHandler(svc, nil)

	rr := postJSON(t, handler.HandleTurn, `{"message": "hi"}`)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp turnResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)
	assert.Len(t, resp.SessionID, 32) // 16 bytes = 32 hex chars
	assert.Equal(t, resp.SessionID, svc.lastSession, "minted session must be passed through to the service")
}

func TestHandleTurnRejectsBadRequests(t *testing.T) {
	handler := NewHandler(&stubTurnService{}, nil)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"message": `},
		{"missing message", `{"session_id": "s-1"}`},
		{"empty message", `{"message": ""}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postJSON(t, handler.HandleTurn, tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestHandleTurnAlwaysOKOnServiceMessages(t *testing.T) {
	// Oracle/store trouble comes back as a message, never a status code.
	svc := &stubTurnService{reply: "Please try again."}
	handler := NewHandler(svc, nil)

	rr := postJSON(t, handler.HandleTurn, `{"message": "book it", "session_id": "s-1"}`)
	assert.Equal(t, http.StatusOK, rr.Code, "failure text must still ride a 200")
}

func TestHandleReset(t *testing.T) {
	svc := &stubTurnService{}
	handler := NewHandler(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/chat/reset", strings.NewReader(`{"session_id": "s-9"}`))
	rr := httptest.NewRecorder()
	handler.HandleReset(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, svc.resets, 1)
	assert.Equal(t, "s-9", svc.resets[0])

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "reset", resp["status"])
}

func TestHandleResetRequiresSession(t *testing.T) {
	handler := NewHandler(&stubTurnService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/chat/reset", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	handler.HandleReset(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleResetStoreFailure(t *testing.T) {
	svc := &stubTurnService{resetErr: errors.New("redis down")}
	handler := NewHandler(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/chat/reset", strings.NewReader(`{"session_id": "s-9"}`))
	rr := httptest.NewRecorder()
	handler.HandleReset(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestHealthCheck(t *testing.T) {
	handler := NewHandler(&stubTurnService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	handler.HealthCheck(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestGenerateSessionIDUnique(t *testing.T) {
	s1 := generateSessionID()
	s2 := generateSessionID()
	assert.NotEmpty(t, s1)
	assert.NotEqual(t, s1, s2)
}
