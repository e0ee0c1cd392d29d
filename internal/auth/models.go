package auth

// RegisterRequest creates a new account. The password is stored as a bcrypt
// hash; a verification code is emailed before the account can sign in.
type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	Status    string  `json:"status"` // verification_sent
	UserID    string  `json:"user_id"`
	DebugCode *string `json:"debug_code,omitempty"`
}

type VerifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned when two-factor auth is enabled: the password
// was accepted and a code is on its way.
type LoginResponse struct {
	Status    string  `json:"status"` // 2fa_required
	DebugCode *string `json:"debug_code,omitempty"`
}

type TwoFactorVerifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// TokenResponse is the final successful outcome of any sign-in flow.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
}

// ErrorResponse is the wire format of every API error.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
