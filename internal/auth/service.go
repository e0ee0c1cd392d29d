package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mealbuddy/server/internal/auth/emailotp"
	"github.com/mealbuddy/server/internal/config"
	"github.com/mealbuddy/server/internal/storage"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrEmailNotVerified   = errors.New("email is not verified")
	ErrUserNotFound       = errors.New("user not found")
)

// Service implements the password + email-code sign-in flows and mints the
// access tokens the rest of the API checks.
type Service struct {
	config  *config.Config
	storage storage.Storage
	otp     *emailotp.Service

	now func() time.Time
}

func NewService(cfg *config.Config, store storage.Storage, otp *emailotp.Service) *Service {
	return &Service{
		config:  cfg,
		storage: store,
		otp:     otp,
		now:     time.Now,
	}
}

// Register creates an account and emails a verification code. The account
// cannot sign in until the email is verified.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	email := emailotp.NormalizeEmail(req.Email)
	if !emailotp.IsValidEmail(email) {
		return nil, fmt.Errorf("invalid email format")
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		username = email[:strings.Index(email, "@")]
	}
	if len(req.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}

	existing, err := s.storage.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := &storage.User{
		ID:           uuid.New().String(),
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.storage.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	sent, err := s.otp.Send(ctx, email, emailotp.PurposeVerify)
	if err != nil {
		return nil, err
	}

	return &RegisterResponse{
		Status:    "verification_sent",
		UserID:    user.ID,
		DebugCode: sent.DebugCode,
	}, nil
}

// VerifyEmail checks the emailed code, marks the account verified and signs
// the user in.
func (s *Service) VerifyEmail(ctx context.Context, req *VerifyEmailRequest) (*TokenResponse, error) {
	email := emailotp.NormalizeEmail(req.Email)

	user, err := s.storage.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if err := s.otp.Check(ctx, email, emailotp.PurposeVerify, req.Code); err != nil {
		return nil, err
	}

	if !user.EmailVerified {
		user.EmailVerified = true
		user.UpdatedAt = s.now()
		if err := s.storage.UpdateUser(ctx, user); err != nil {
			return nil, err
		}
	}

	return s.issueToken(user)
}

// Login checks the password. With two-factor auth enabled it emails a code
// and reports 2fa_required; the token comes from VerifyTwoFactor.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*TokenResponse, *LoginResponse, error) {
	email := emailotp.NormalizeEmail(req.Email)

	user, err := s.storage.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if !user.EmailVerified {
		return nil, nil, ErrEmailNotVerified
	}

	if user.TwoFactorEnabled {
		sent, err := s.otp.Send(ctx, email, emailotp.PurposeTwoFactor)
		if err != nil {
			return nil, nil, err
		}
		return nil, &LoginResponse{Status: "2fa_required", DebugCode: sent.DebugCode}, nil
	}

	token, err := s.issueToken(user)
	return token, nil, err
}

// VerifyTwoFactor completes a login for an account with two-factor auth.
func (s *Service) VerifyTwoFactor(ctx context.Context, req *TwoFactorVerifyRequest) (*TokenResponse, error) {
	email := emailotp.NormalizeEmail(req.Email)

	user, err := s.storage.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if err := s.otp.Check(ctx, email, emailotp.PurposeTwoFactor, req.Code); err != nil {
		return nil, err
	}

	return s.issueToken(user)
}

func (s *Service) issueToken(user *storage.User) (*TokenResponse, error) {
	ttl := time.Duration(s.config.JWTTTLMinutes) * time.Minute

	accessToken, err := s.generateJWT(user.ID, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to generate JWT: %w", err)
	}

	return &TokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(ttl.Seconds()),
		UserID:      user.ID,
		Username:    user.Username,
	}, nil
}

func (s *Service) generateJWT(userID string, ttl time.Duration) (string, error) {
	now := s.now()
	exp := now.Add(ttl)

	claims := jwt.MapClaims{
		"sub": userID,
		"iss": s.config.JWTIssuer,
		"exp": exp.Unix(),
		"iat": now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// VerifyJWT validates a token and returns its subject (the user id).
func (s *Service) VerifyJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	})

	if err != nil {
		return "", ErrInvalidToken
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		sub, ok := claims["sub"].(string)
		if !ok {
			return "", ErrInvalidToken
		}
		return sub, nil
	}

	return "", ErrInvalidToken
}
