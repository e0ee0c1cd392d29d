package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mealbuddy/server/internal/auth/emailotp"
	"github.com/mealbuddy/server/internal/config"
	"github.com/mealbuddy/server/internal/storage/memory"
)

type nullSender struct{}

func (nullSender) Send(to, subject, textBody string) error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		Env:                 "local",
		AuthRequired:        true,
		JWTSecret:           "test-secret",
		OTPSecret:           "test-otp-secret",
		JWTIssuer:           "mealbuddy-test",
		JWTTTLMinutes:       60,
		OTPTTLSeconds:       600,
		OTPMaxAttempts:      5,
		OTPResendMinSeconds: 0,
		OTPMaxSendPerHour:   100,
		OTPDebugReturnCode:  true,
	}
}

func newTestHandlers(t *testing.T) (*Handlers, *Service) {
	t.Helper()

	cfg := testConfig()
	mem := memory.New()
	otp := emailotp.NewService(cfg, mem, nullSender{})
	svc := NewService(cfg, mem, otp)
	return NewHandlers(svc), svc
}

func postJSON(t *testing.T, handler http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func registerAndVerify(t *testing.T, h *Handlers, email, password string) TokenResponse {
	t.Helper()

	rec := postJSON(t, h.HandleRegister, RegisterRequest{
		Email:    email,
		Username: "tester",
		Password: password,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body.String())
	}
	var reg RegisterResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &reg); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	if reg.Status != "verification_sent" {
		t.Fatalf("register status = %q", reg.Status)
	}
	if reg.DebugCode == nil {
		t.Fatal("expected debug code in local env")
	}

	rec = postJSON(t, h.HandleVerifyEmail, VerifyEmailRequest{Email: email, Code: *reg.DebugCode})
	if rec.Code != http.StatusOK {
		t.Fatalf("verify-email status = %d, body %s", rec.Code, rec.Body.String())
	}
	var token TokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &token); err != nil {
		t.Fatalf("decode token response: %v", err)
	}
	return token
}

func TestRegisterVerifyLoginFlow(t *testing.T) {
	h, svc := newTestHandlers(t)

	token := registerAndVerify(t, h, "cook@example.com", "hunter2hunter2")
	if token.AccessToken == "" || token.TokenType != "Bearer" {
		t.Fatalf("unexpected token response: %+v", token)
	}

	sub, err := svc.VerifyJWT(token.AccessToken)
	if err != nil {
		t.Fatalf("issued token must verify: %v", err)
	}
	if sub != token.UserID {
		t.Fatalf("token sub = %q, want %q", sub, token.UserID)
	}

	rec := postJSON(t, h.HandleLogin, LoginRequest{Email: "cook@example.com", Password: "hunter2hunter2"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}
	var login TokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &login); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if login.AccessToken == "" {
		t.Fatal("expected access token from login")
	}
}

func TestLoginBeforeVerificationIsForbidden(t *testing.T) {
	h, _ := newTestHandlers(t)

	rec := postJSON(t, h.HandleRegister, RegisterRequest{
		Email:    "new@example.com",
		Password: "hunter2hunter2",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d", rec.Code)
	}

	rec = postJSON(t, h.HandleLogin, LoginRequest{Email: "new@example.com", Password: "hunter2hunter2"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("login status = %d, want 403", rec.Code)
	}
	var errResp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errResp.Error.Code != "email_not_verified" {
		t.Fatalf("error code = %q", errResp.Error.Code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	h, _ := newTestHandlers(t)
	registerAndVerify(t, h, "cook@example.com", "hunter2hunter2")

	rec := postJSON(t, h.HandleLogin, LoginRequest{Email: "cook@example.com", Password: "wrong-password"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("login status = %d, want 401", rec.Code)
	}
}

func TestDuplicateRegistrationConflicts(t *testing.T) {
	h, _ := newTestHandlers(t)
	registerAndVerify(t, h, "cook@example.com", "hunter2hunter2")

	rec := postJSON(t, h.HandleRegister, RegisterRequest{
		Email:    "cook@example.com",
		Password: "anotherpassword",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("register status = %d, want 409", rec.Code)
	}
}

func TestTwoFactorLoginFlow(t *testing.T) {
	h, svc := newTestHandlers(t)
	token := registerAndVerify(t, h, "cook@example.com", "hunter2hunter2")

	user, err := svc.storage.GetUserByID(context.Background(), token.UserID)
	if err != nil || user == nil {
		t.Fatalf("load user: %v", err)
	}
	user.TwoFactorEnabled = true
	user.UpdatedAt = time.Now()
	if err := svc.storage.UpdateUser(context.Background(), user); err != nil {
		t.Fatalf("update user: %v", err)
	}

	rec := postJSON(t, h.HandleLogin, LoginRequest{Email: "cook@example.com", Password: "hunter2hunter2"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}
	var challenge LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &challenge); err != nil {
		t.Fatalf("decode challenge: %v", err)
	}
	if challenge.Status != "2fa_required" {
		t.Fatalf("login status field = %q, want 2fa_required", challenge.Status)
	}
	if challenge.DebugCode == nil {
		t.Fatal("expected debug code in local env")
	}

	rec = postJSON(t, h.HandleTwoFactorVerify, TwoFactorVerifyRequest{
		Email: "cook@example.com",
		Code:  *challenge.DebugCode,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("2fa verify status = %d, body %s", rec.Code, rec.Body.String())
	}
	var final TokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &final); err != nil {
		t.Fatalf("decode token: %v", err)
	}
	if final.AccessToken == "" {
		t.Fatal("expected access token after 2fa")
	}
}

func TestMiddlewareRequireAuth(t *testing.T) {
	h, svc := newTestHandlers(t)
	token := registerAndVerify(t, h, "cook@example.com", "hunter2hunter2")

	mw := NewMiddleware(testConfig(), svc)
	var seenUserID string
	protected := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUserID = GetUserID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/recipes", nil)
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/recipes", nil)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("valid token status = %d, want 204", rec.Code)
	}
	if seenUserID != token.UserID {
		t.Fatalf("context user = %q, want %q", seenUserID, token.UserID)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("public path status = %d, want 204", rec.Code)
	}
}
