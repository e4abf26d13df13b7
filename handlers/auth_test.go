package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"laundrybook/models"
	"laundrybook/services/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSession scripts SessionService responses per call.
type stubSession struct {
	sendErr    error
	verifyErr  error
	logoutErr  error
	identity   *models.Identity
	loggedOut  []string
	lastResend string
}

func (s *stubSession) SendCode(_ context.Context, phone string) (string, error) {
	if s.sendErr != nil {
		return "", s.sendErr
	}
	return "challenge-1", nil
}

func (s *stubSession) ResendCode(_ context.Context, challenge string) error {
	s.lastResend = challenge
	return s.sendErr
}

func (s *stubSession) ChangeNumber(_ context.Context, challenge string) error { return nil }

func (s *stubSession) VerifyCode(_ context.Context, challenge, code string) (*models.Identity, error) {
	if s.verifyErr != nil {
		return nil, s.verifyErr
	}
	return s.identity, nil
}

func (s *stubSession) Logout(_ context.Context, token string) error {
	if s.logoutErr != nil {
		return s.logoutErr
	}
	s.loggedOut = append(s.loggedOut, token)
	return nil
}

func authRouter(svc session.SessionService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(svc)
	r := gin.New()
	r.POST("/api/auth/send-code", h.SendCodeHandler)
	r.POST("/api/auth/resend-code", h.ResendCodeHandler)
	r.POST("/api/auth/change-number", h.ChangeNumberHandler)
	r.POST("/api/auth/verify", h.VerifyCodeHandler)
	r.POST("/api/auth/logout", h.LogoutHandler)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestSendCodeHandler(t *testing.T) {
	r := authRouter(&stubSession{})

	w := postJSON(t, r, "/api/auth/send-code", gin.H{"phone": "9876543210"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "challenge-1", decodeBody(t, w)["challenge"])
}

func TestSendCodeHandlerMissingBody(t *testing.T) {
	r := authRouter(&stubSession{})

	w := postJSON(t, r, "/api/auth/send-code", gin.H{}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation-error", decodeBody(t, w)["kind"])
}

func TestAuthErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		kind   string
	}{
		{session.ErrInvalidPhone, http.StatusBadRequest, "validation-error"},
		{session.ErrRateLimited, http.StatusTooManyRequests, "rate-limited"},
		{context.DeadlineExceeded, http.StatusBadGateway, "transport-error"},
	}
	for _, tc := range cases {
		r := authRouter(&stubSession{sendErr: tc.err})
		w := postJSON(t, r, "/api/auth/send-code", gin.H{"phone": "9876543210"}, nil)
		assert.Equal(t, tc.status, w.Code, "error %v", tc.err)
		assert.Equal(t, tc.kind, decodeBody(t, w)["kind"], "error %v", tc.err)
	}
}

func TestVerifyCodeHandler(t *testing.T) {
	stub := &stubSession{identity: &models.Identity{
		Name: "Rahul Kumar", Phone: "9876543210", Room: "A-204", Token: "jwt-value",
	}}
	r := authRouter(stub)

	w := postJSON(t, r, "/api/auth/verify", gin.H{"challenge": "challenge-1", "code": "123456"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "A-204", body["room"])
	assert.Equal(t, "jwt-value", body["token"])
}

func TestVerifyCodeHandlerErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		kind   string
	}{
		{session.ErrMalformedCode, http.StatusBadRequest, "validation-error"},
		{session.ErrInvalidCode, http.StatusUnauthorized, "invalid-code"},
		{session.ErrCodeExpired, http.StatusUnauthorized, "code-expired"},
		{session.ErrProfileMissing, http.StatusForbidden, "profile-missing"},
	}
	for _, tc := range cases {
		r := authRouter(&stubSession{verifyErr: tc.err})
		w := postJSON(t, r, "/api/auth/verify", gin.H{"challenge": "challenge-1", "code": "000000"}, nil)
		assert.Equal(t, tc.status, w.Code, "error %v", tc.err)
		assert.Equal(t, tc.kind, decodeBody(t, w)["kind"], "error %v", tc.err)
	}
}

func TestResendCodeHandler(t *testing.T) {
	stub := &stubSession{}
	r := authRouter(stub)

	w := postJSON(t, r, "/api/auth/resend-code", gin.H{"challenge": "challenge-1"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "challenge-1", stub.lastResend)
}

func TestLogoutHandler(t *testing.T) {
	stub := &stubSession{}
	r := authRouter(stub)

	w := postJSON(t, r, "/api/auth/logout", gin.H{}, map[string]string{
		"Authorization": "Bearer jwt-value",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"jwt-value"}, stub.loggedOut)
}

func TestLogoutHandlerMissingToken(t *testing.T) {
	r := authRouter(&stubSession{})

	w := postJSON(t, r, "/api/auth/logout", gin.H{}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
