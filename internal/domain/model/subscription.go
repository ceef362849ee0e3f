package model

import "time"

// Subscription is the read-only view the purchase UI gates on. It is derived
// from the credits ledger plus the most recent completed order and re-built
// in full on every refresh; there is no incremental-update path.
type Subscription struct {
	HasActiveSubscription bool
	ActivePlan            string // only set while credits remain
	TotalCredits          int64
	UsedCredits           int64
	RemainingCredits      int64
	LastPurchaseAt        *time.Time
	IsLoading             bool
	Error                 string
	LastUpdated           time.Time
}
