package emailotp

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mealbuddy/server/internal/config"
	"github.com/mealbuddy/server/internal/storage"
	"github.com/mealbuddy/server/internal/storage/memory"
)

type mockSender struct {
	to      string
	subject string
	body    string
	calls   int
}

func (m *mockSender) Send(to, subject, textBody string) error {
	m.to = to
	m.subject = subject
	m.body = textBody
	m.calls++
	return nil
}

type testHarness struct {
	service *Service
	store   storage.EmailOTPStorage
	sender  *mockSender
	now     *time.Time
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()

	mem := memory.New()
	sender := &mockSender{}
	cfg := &config.Config{
		Env:                 "local",
		JWTSecret:           "test-jwt-secret",
		OTPSecret:           "test-otp-secret",
		JWTIssuer:           "mealbuddy-test",
		OTPTTLSeconds:       600,
		OTPMaxAttempts:      2,
		OTPResendMinSeconds: 60,
		OTPMaxSendPerHour:   5,
		OTPDebugReturnCode:  true,
	}

	now := time.Date(2026, 2, 13, 12, 0, 0, 0, time.UTC)
	svc := NewService(cfg, mem, sender)
	svc.now = func() time.Time { return now }
	svc.generateCode = func() (string, error) { return "123456", nil }

	return &testHarness{
		service: svc,
		store:   mem,
		sender:  sender,
		now:     &now,
	}
}

func TestSendCreatesOTPAndEmailsCode(t *testing.T) {
	h := newHarness(t)

	result, err := h.service.Send(context.Background(), " User@Example.com ", PurposeVerify)
	if err != nil {
		t.Fatalf("send otp failed: %v", err)
	}
	if result.Status != "ok" {
		t.Fatalf("expected status=ok, got %q", result.Status)
	}
	if result.DebugCode == nil || *result.DebugCode != "123456" {
		t.Fatalf("expected debug_code=123456, got %v", result.DebugCode)
	}
	if h.sender.calls != 1 {
		t.Fatalf("expected sender calls=1, got %d", h.sender.calls)
	}
	if h.sender.to != "user@example.com" {
		t.Fatalf("expected normalized email, got %q", h.sender.to)
	}
	if !strings.Contains(h.sender.body, "123456") {
		t.Fatalf("expected code in body, got %q", h.sender.body)
	}

	otp, err := h.store.GetLatestActive(context.Background(), "user@example.com", PurposeVerify, *h.now)
	if err != nil {
		t.Fatalf("get active otp failed: %v", err)
	}
	if otp == nil {
		t.Fatal("expected active otp")
	}
}

func TestCheckCorrectCodeConsumesOTP(t *testing.T) {
	h := newHarness(t)

	if _, err := h.service.Send(context.Background(), "user@example.com", PurposeVerify); err != nil {
		t.Fatalf("send otp failed: %v", err)
	}

	if err := h.service.Check(context.Background(), "user@example.com", PurposeVerify, "123456"); err != nil {
		t.Fatalf("check failed: %v", err)
	}

	otp, err := h.store.GetLatestActive(context.Background(), "user@example.com", PurposeVerify, *h.now)
	if err != nil {
		t.Fatalf("get active otp failed: %v", err)
	}
	if otp != nil {
		t.Fatal("expected otp to be consumed")
	}
}

func TestCheckWrongCodeIncrementsAttempts(t *testing.T) {
	h := newHarness(t)

	if _, err := h.service.Send(context.Background(), "user@example.com", PurposeVerify); err != nil {
		t.Fatalf("send otp failed: %v", err)
	}

	err := h.service.Check(context.Background(), "user@example.com", PurposeVerify, "000000")
	if err == nil {
		t.Fatal("expected error for wrong code")
	}

	serviceErr, ok := AsServiceError(err)
	if !ok || serviceErr.Code != "otp_invalid_code" {
		t.Fatalf("expected otp_invalid_code, got %v", err)
	}

	otp, err := h.store.GetLatestActive(context.Background(), "user@example.com", PurposeVerify, *h.now)
	if err != nil {
		t.Fatalf("get active otp failed: %v", err)
	}
	if otp == nil {
		t.Fatal("expected active otp")
	}
	if otp.Attempts != 1 {
		t.Fatalf("expected attempts=1, got %d", otp.Attempts)
	}
}

func TestCheckLocksAfterMaxAttempts(t *testing.T) {
	h := newHarness(t)

	if _, err := h.service.Send(context.Background(), "user@example.com", PurposeVerify); err != nil {
		t.Fatalf("send otp failed: %v", err)
	}

	_ = h.service.Check(context.Background(), "user@example.com", PurposeVerify, "000000")
	_ = h.service.Check(context.Background(), "user@example.com", PurposeVerify, "000000")
	err := h.service.Check(context.Background(), "user@example.com", PurposeVerify, "123456")
	if err == nil {
		t.Fatal("expected locked error")
	}

	serviceErr, ok := AsServiceError(err)
	if !ok || serviceErr.Code != "otp_locked" {
		t.Fatalf("expected otp_locked, got %v", err)
	}
}

func TestSendResendTooSoon(t *testing.T) {
	h := newHarness(t)

	if _, err := h.service.Send(context.Background(), "user@example.com", PurposeVerify); err != nil {
		t.Fatalf("send otp failed: %v", err)
	}

	_, err := h.service.Send(context.Background(), "user@example.com", PurposeVerify)
	if err == nil {
		t.Fatal("expected resend rate limit")
	}

	serviceErr, ok := AsServiceError(err)
	if !ok || serviceErr.Code != "otp_resend_too_soon" {
		t.Fatalf("expected otp_resend_too_soon, got %v", err)
	}
}

func TestSendRateLimitedByHourlyQuota(t *testing.T) {
	h := newHarness(t)
	h.service.cfg.OTPResendMinSeconds = 1
	h.service.cfg.OTPMaxSendPerHour = 2

	if _, err := h.service.Send(context.Background(), "user@example.com", PurposeVerify); err != nil {
		t.Fatalf("first send failed: %v", err)
	}

	*h.now = h.now.Add(2 * time.Second)
	if _, err := h.service.Send(context.Background(), "user@example.com", PurposeVerify); err != nil {
		t.Fatalf("second send failed: %v", err)
	}

	*h.now = h.now.Add(2 * time.Second)
	_, err := h.service.Send(context.Background(), "user@example.com", PurposeVerify)
	if err == nil {
		t.Fatal("expected otp_rate_limited")
	}

	serviceErr, ok := AsServiceError(err)
	if !ok || serviceErr.Code != "otp_rate_limited" {
		t.Fatalf("expected otp_rate_limited, got %v", err)
	}
}

func TestPurposesAreIsolated(t *testing.T) {
	h := newHarness(t)

	if _, err := h.service.Send(context.Background(), "user@example.com", PurposeVerify); err != nil {
		t.Fatalf("send otp failed: %v", err)
	}

	err := h.service.Check(context.Background(), "user@example.com", PurposeTwoFactor, "123456")
	if err == nil {
		t.Fatal("a verify code must not pass a 2fa check")
	}

	serviceErr, ok := AsServiceError(err)
	if !ok || serviceErr.Code != "otp_expired_or_not_found" {
		t.Fatalf("expected otp_expired_or_not_found, got %v", err)
	}
}

func TestHashCodeStable(t *testing.T) {
	hash1 := HashCode("user@example.com", "123456", "secret")
	hash2 := HashCode(" User@Example.com ", "123456", "secret")
	if hash1 != hash2 {
		t.Fatalf("expected stable hash for normalized email")
	}

	hash3 := HashCode("user@example.com", "654321", "secret")
	if hash1 == hash3 {
		t.Fatal("expected different hashes for different code")
	}
}
