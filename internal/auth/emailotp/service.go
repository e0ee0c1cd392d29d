package emailotp

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mealbuddy/server/internal/config"
	"github.com/mealbuddy/server/internal/mailer"
	"github.com/mealbuddy/server/internal/storage"
)

// Service issues and checks 6-digit email codes. It does not mint tokens;
// the auth service decides what a successful check unlocks.
type Service struct {
	cfg     *config.Config
	storage storage.EmailOTPStorage
	sender  mailer.Sender

	now          func() time.Time
	generateCode func() (string, error)
}

func NewService(cfg *config.Config, otpStorage storage.EmailOTPStorage, sender mailer.Sender) *Service {
	return &Service{
		cfg:          cfg,
		storage:      otpStorage,
		sender:       sender,
		now:          time.Now,
		generateCode: GenerateCode,
	}
}

// Send issues a fresh code for the email+purpose pair, replacing any active
// one, and emails it. Resend throttling and the hourly cap apply per pair.
func (s *Service) Send(ctx context.Context, emailRaw, purpose string) (*SendResult, error) {
	if s.storage == nil || s.sender == nil {
		return nil, errors.New("email otp service is not initialized")
	}

	email := NormalizeEmail(emailRaw)
	if !IsValidEmail(email) {
		return nil, &ServiceError{
			Status:  http.StatusBadRequest,
			Code:    "invalid_email",
			Message: "Invalid email format",
		}
	}
	if purpose != PurposeVerify && purpose != PurposeTwoFactor {
		return nil, fmt.Errorf("unknown otp purpose %q", purpose)
	}

	now := s.now()
	latest, err := s.storage.GetLatestActive(ctx, email, purpose, now)
	if err != nil {
		return nil, err
	}

	sendCount := 1
	if latest != nil {
		if now.Sub(latest.LastSentAt) < time.Duration(s.cfg.OTPResendMinSeconds)*time.Second {
			return nil, &ServiceError{
				Status:  http.StatusTooManyRequests,
				Code:    "otp_resend_too_soon",
				Message: "Code was sent too recently, please wait before retrying",
			}
		}

		sendCount = latest.SendCount
		if now.Sub(latest.LastSentAt) > time.Hour {
			sendCount = 0
		}
		if sendCount >= s.cfg.OTPMaxSendPerHour {
			return nil, &ServiceError{
				Status:  http.StatusTooManyRequests,
				Code:    "otp_rate_limited",
				Message: "Too many code requests for this email",
			}
		}
		sendCount++
	}

	code, err := s.generateCode()
	if err != nil {
		return nil, err
	}

	expiresAt := now.Add(time.Duration(s.cfg.OTPTTLSeconds) * time.Second)
	codeHash := HashCode(email, code, s.cfg.OTPSecret)

	otpID, err := s.storage.CreateOrReplace(ctx, email, purpose, codeHash, expiresAt, now, s.cfg.OTPMaxAttempts)
	if err != nil {
		return nil, err
	}
	if err := s.storage.UpdateResendMeta(ctx, otpID, now, sendCount); err != nil {
		return nil, err
	}

	subject, body := composeMessage(purpose, code, s.cfg.OTPTTLSeconds/60)
	if err := s.sender.Send(email, subject, body); err != nil {
		_ = s.storage.MarkUsedOrDelete(ctx, otpID)
		return nil, err
	}

	result := &SendResult{Status: "ok"}
	if s.cfg.Env == "local" && s.cfg.OTPDebugReturnCode {
		result.DebugCode = &code
	}
	return result, nil
}

// Check validates a submitted code for the email+purpose pair. A successful
// check consumes the code; a failed one burns an attempt.
func (s *Service) Check(ctx context.Context, emailRaw, purpose, codeRaw string) error {
	if s.storage == nil {
		return errors.New("email otp storage is not initialized")
	}

	email := NormalizeEmail(emailRaw)
	code := strings.TrimSpace(codeRaw)
	if !IsValidEmail(email) {
		return &ServiceError{
			Status:  http.StatusBadRequest,
			Code:    "invalid_email",
			Message: "Invalid email format",
		}
	}
	if !isSixDigitCode(code) {
		return &ServiceError{
			Status:  http.StatusBadRequest,
			Code:    "invalid_code_format",
			Message: "Code must contain exactly 6 digits",
		}
	}

	now := s.now()
	otp, err := s.storage.GetLatestActive(ctx, email, purpose, now)
	if err != nil {
		return err
	}
	if otp == nil {
		return &ServiceError{
			Status:  http.StatusUnauthorized,
			Code:    "otp_expired_or_not_found",
			Message: "Code not found or expired",
		}
	}

	maxAttempts := otp.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = s.cfg.OTPMaxAttempts
	}
	if otp.Attempts >= maxAttempts {
		return &ServiceError{
			Status:  http.StatusUnauthorized,
			Code:    "otp_locked",
			Message: "Code is locked due to too many failed attempts",
		}
	}

	expectedHash := HashCode(email, code, s.cfg.OTPSecret)
	if !hmac.Equal([]byte(otp.CodeHash), []byte(expectedHash)) {
		if err := s.storage.IncrementAttempts(ctx, otp.ID); err != nil {
			return err
		}
		return &ServiceError{
			Status:  http.StatusUnauthorized,
			Code:    "otp_invalid_code",
			Message: "Invalid code",
		}
	}

	return s.storage.MarkUsedOrDelete(ctx, otp.ID)
}

func composeMessage(purpose, code string, ttlMinutes int) (subject, body string) {
	switch purpose {
	case PurposeTwoFactor:
		subject = "Your MealBuddy login code"
	default:
		subject = "Confirm your MealBuddy email"
	}
	body = fmt.Sprintf("Your code: %s. It expires in %d minutes.", code, ttlMinutes)
	return subject, body
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func IsValidEmail(email string) bool {
	if email == "" || strings.Contains(email, " ") {
		return false
	}
	at := strings.Index(email, "@")
	dot := strings.LastIndex(email, ".")
	return at > 0 && dot > at+1 && dot < len(email)-1
}

func isSixDigitCode(code string) bool {
	if len(code) != 6 {
		return false
	}
	_, err := strconv.Atoi(code)
	return err == nil
}

func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func HashCode(email, code, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.ToLower(strings.TrimSpace(email))))
	mac.Write([]byte(":"))
	mac.Write([]byte(strings.TrimSpace(code)))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
