// Package quota meters searches per user.
// The search core consumes the Gate interface; RedisGate is the shipped
// implementation and keeps counters in Redis so every server instance sees
// the same usage.
package quota

import (
	"errors"
	"fmt"
)

// Redis key layout for per-user quota state.
const (
	KeyPrefix = "bizsearch:quota:"

	usedSuffix  = ":used"
	totalSuffix = ":total"
)

// LowRemainingRatio is the share of the total below which a user's
// remaining quota is reported as low.
const LowRemainingRatio = 0.2

var (
	// ErrQuotaExceeded indicates the user has no searches left.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrInvalidAmount indicates a non-positive deduction.
	ErrInvalidAmount = errors.New("invalid quota amount")
)

// UsedKey returns the Redis key counting a user's consumed searches.
func UsedKey(userID string) string {
	return KeyPrefix + userID + usedSuffix
}

// TotalKey returns the Redis key holding a user's total allowance.
// When absent the gate's default applies.
func TotalKey(userID string) string {
	return KeyPrefix + userID + totalSuffix
}

// Status is a user's quota as seen by CheckQuota.
type Status struct {
	Allowed   bool `json:"allowed"`
	Remaining int  `json:"remaining"`
	Total     int  `json:"total"`
}

// newStatus derives a Status from raw counters.
func newStatus(used, total int) Status {
	remaining := total - used
	if remaining < 0 {
		remaining = 0
	}
	return Status{
		Allowed:   remaining > 0,
		Remaining: remaining,
		Total:     total,
	}
}

// Used returns the consumed part of the allowance.
func (s Status) Used() int {
	return s.Total - s.Remaining
}

// IsLow returns true when less than LowRemainingRatio of the total is left.
func (s Status) IsLow() bool {
	if s.Total <= 0 {
		return true
	}
	return float64(s.Remaining) < float64(s.Total)*LowRemainingRatio
}

// QuotaExceededError carries the numbers a caller needs to offer an upgrade.
type QuotaExceededError struct {
	UserID    string
	Remaining int
	Total     int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded for user %s: %d of %d remaining", e.UserID, e.Remaining, e.Total)
}

// Unwrap returns ErrQuotaExceeded.
func (e *QuotaExceededError) Unwrap() error {
	return ErrQuotaExceeded
}
