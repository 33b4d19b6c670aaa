package domain

import "time"

// VerificationEntry is the pending one-time code for a single email.
// It is replaced wholesale on reissue and removed once consumed.
type VerificationEntry struct {
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
}
