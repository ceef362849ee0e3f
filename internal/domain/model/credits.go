package model

import "time"

// UserCredits is the cumulative entitlement ledger for one user.
// TotalCredits only ever grows (verified completions add to it) and
// RemainingCredits must equal TotalCredits - UsedCredits at all times.
type UserCredits struct {
	UserID           string
	TotalCredits     int64
	UsedCredits      int64
	RemainingCredits int64
	LastPurchaseAt   *time.Time
	UpdatedAt        time.Time
}

// ZeroCredits is the ledger state for a user who has never purchased.
// A missing row is read as this, not as an error.
func ZeroCredits(userID string) *UserCredits {
	return &UserCredits{UserID: userID}
}

// Consistent reports whether the denormalized remaining column matches
// total - used.
func (c *UserCredits) Consistent() bool {
	return c.RemainingCredits == c.TotalCredits-c.UsedCredits
}
