package emailotp

// OTP purposes. A verify code confirms ownership of a new account's email;
// a 2fa code completes a login when two-factor auth is enabled.
const (
	PurposeVerify    = "verify"
	PurposeTwoFactor = "2fa"
)

// SendResult reports a successfully issued code. DebugCode is populated only
// in local environments with OTP_DEBUG_RETURN_CODE on.
type SendResult struct {
	Status    string  `json:"status"`
	DebugCode *string `json:"debug_code,omitempty"`
}
