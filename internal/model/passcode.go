package model

import "time"

const (
	// PasscodeLength is the number of digits in a one-time passcode.
	PasscodeLength = 6
	// PasscodeTTL is the default lifetime of an issued passcode.
	PasscodeTTL = 5 * time.Minute
	// MaxPasscodeAttempts is the default number of wrong codes a pending
	// passcode survives. The attempt that reaches it discards the passcode.
	MaxPasscodeAttempts = 5
)

// PendingPasscode is a one-time passcode waiting to be verified.
// At most one exists per phone number.
type PendingPasscode struct {
	Phone     string    `json:"phone"`
	Code      string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	Attempts  int       `json:"attempts"` // Wrong codes submitted so far
}

// IsExpired reports whether the passcode is past its expiry at now.
func (p *PendingPasscode) IsExpired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}
