package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mealbuddy/server/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:               "local",
		Port:              8080,
		JWTSecret:         "test-jwt-secret",
		OTPSecret:         "test-otp-secret",
		JWTIssuer:         "mealbuddy",
		JWTTTLMinutes:     60,
		OTPTTLSeconds:     600,
		OTPMaxAttempts:    5,
		OTPMaxSendPerHour: 5,
		UploadMaxMB:       10,
		UploadAllowedMime: "image/jpeg,image/png",
	}
}

func TestHealthz(t *testing.T) {
	srv := New(testConfig())
	defer srv.Close()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	srv.mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status=ok, got %s", resp["status"])
	}
}

func TestHealthzMethodNotAllowed(t *testing.T) {
	srv := New(testConfig())
	defer srv.Close()

	req := httptest.NewRequest(http.MethodPost, "/healthz", nil)
	w := httptest.NewRecorder()
	srv.mux.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

// With auth disabled every request runs as the demo user, so the seeded
// sample data is reachable without a token.
func TestDemoModeServesSeededData(t *testing.T) {
	cfg := testConfig()
	cfg.AuthRequired = false
	cfg.SeedSampleData = true

	srv := New(cfg)
	defer srv.Close()
	handler := srv.Handler()

	req := httptest.NewRequest(http.MethodGet, "/v1/recipes", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var list struct {
		Total int `json:"total"`
	}
	json.Unmarshal(w.Body.Bytes(), &list)
	if list.Total == 0 {
		t.Fatal("expected seeded recipes in demo mode")
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/shopping/summary", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("summary: expected 200, got %d", w.Code)
	}
	var summary struct {
		Stats struct {
			Total int `json:"total"`
		} `json:"stats"`
	}
	json.Unmarshal(w.Body.Bytes(), &summary)
	if summary.Stats.Total == 0 {
		t.Fatal("expected seeded shopping items in demo mode")
	}
}

func TestAuthRequiredGuardsAPI(t *testing.T) {
	cfg := testConfig()
	cfg.AuthRequired = true

	srv := New(cfg)
	defer srv.Close()
	handler := srv.Handler()

	req := httptest.NewRequest(http.MethodGet, "/v1/recipes", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	// Health and auth endpoints stay public.
	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("healthz must stay public, got %d", w.Code)
	}
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	cfg := testConfig()
	cfg.AuthRequired = true
	cfg.OTPDebugReturnCode = true

	srv := New(cfg)
	defer srv.Close()
	handler := srv.Handler()

	post := func(path string, payload any) *httptest.ResponseRecorder {
		body, _ := json.Marshal(payload)
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	w := post("/v1/auth/register", map[string]string{
		"email":    "cook@example.com",
		"username": "cook",
		"password": "secretpass",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var reg struct {
		DebugCode *string `json:"debug_code"`
	}
	json.Unmarshal(w.Body.Bytes(), &reg)
	if reg.DebugCode == nil {
		t.Fatal("expected debug code in local env")
	}

	w = post("/v1/auth/verify-email", map[string]string{
		"email": "cook@example.com",
		"code":  *reg.DebugCode,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("verify-email: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var verified struct {
		AccessToken string `json:"access_token"`
	}
	json.Unmarshal(w.Body.Bytes(), &verified)
	if verified.AccessToken == "" {
		t.Fatal("expected access token after verification")
	}

	// The token opens the guarded API.
	req := httptest.NewRequest(http.MethodGet, "/v1/recipes", nil)
	req.Header.Set("Authorization", "Bearer "+verified.AccessToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestWeekPlanEndToEnd(t *testing.T) {
	cfg := testConfig()
	cfg.SeedSampleData = true

	srv := New(cfg)
	defer srv.Close()
	handler := srv.Handler()

	req := httptest.NewRequest(http.MethodGet, "/v1/mealplan/week", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var week struct {
		Days  []json.RawMessage `json:"days"`
		Label string            `json:"label"`
		Stats struct {
			TotalMeals int `json:"total_meals"`
		} `json:"stats"`
	}
	json.Unmarshal(w.Body.Bytes(), &week)
	if len(week.Days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(week.Days))
	}
	if week.Label == "" {
		t.Fatal("expected a week label")
	}
	if week.Stats.TotalMeals == 0 {
		t.Fatal("expected seeded meals for the current week")
	}
}

func TestUnknownRouteReturns404(t *testing.T) {
	srv := New(testConfig())
	defer srv.Close()

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/v1/%s", "nope"), nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
