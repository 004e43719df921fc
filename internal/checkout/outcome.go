package checkout

import (
	"github.com/nikolayk812/storefront-checkout/internal/domain"
	"github.com/nikolayk812/storefront-checkout/internal/fraud"
)

type Status string

const (
	StatusApproved Status = "approved"
	StatusFlagged  Status = "flagged"
	StatusFailed   Status = "failed"
)

// Outcome is what the checkout screen renders. Flagged and Failed must stay distinguishable:
// the first is declined for risk, the second could not be completed.
type Outcome struct {
	Status        Status
	TransactionID string
	Totals        domain.PricingResult

	// Approved
	OrderRef string

	// Flagged
	Reasons   []string
	RiskScore float64

	// Failed
	ErrorKind fraud.ErrorKind
	Err       error
}

func (o Outcome) Message() string {
	switch o.Status {
	case StatusApproved:
		return "Order placed. Your order number is " + o.OrderRef + "."
	case StatusFlagged:
		return "Payment declined by our risk checks. Please contact support."
	case StatusFailed:
		return "We could not complete your checkout. Your cart was kept, please try again."
	default:
		return ""
	}
}
