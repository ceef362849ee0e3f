package model

import "kundli-ai-payments/internal/domain"

// Plan is a purchasable credit pack. Prices are whole rupees; fractional
// amounts are not supported anywhere in the product.
type Plan struct {
	ID          string
	Name        string
	PriceRupees int64
	Credits     int64
}

// RupeesToPaise converts a major-unit price to the minor units the gateway
// expects. The x100 conversion is a hard contract with the order service and
// must stay in this one place.
func RupeesToPaise(rupees int64) int64 { return rupees * 100 }

// AmountPaise returns the plan price in minor units.
func (p Plan) AmountPaise() int64 { return RupeesToPaise(p.PriceRupees) }

// NewPlan validates and constructs a plan.
func NewPlan(id, name string, priceRupees, credits int64) (Plan, error) {
	if id == "" || name == "" || priceRupees <= 0 || credits < 0 {
		return Plan{}, domain.ErrInvalidArgument
	}
	return Plan{ID: id, Name: name, PriceRupees: priceRupees, Credits: credits}, nil
}

// DonationPlan wraps a custom donation amount in the same order contract the
// subscription plans use. Credits stay zero here; the ledger minimum is
// applied at order persistence.
func DonationPlan(amountRupees int64) (Plan, error) {
	if amountRupees <= 0 {
		return Plan{}, domain.ErrInvalidArgument
	}
	return Plan{ID: "donation", Name: "Donation", PriceRupees: amountRupees, Credits: 0}, nil
}
