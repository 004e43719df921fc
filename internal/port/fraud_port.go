package port

import (
	"context"

	"github.com/nikolayk812/storefront-checkout/internal/domain"
)

// FraudChecker evaluates a single transaction. Implementations make exactly one attempt per call.
type FraudChecker interface {
	CheckTransaction(ctx context.Context, req domain.TransactionRequest) (domain.FraudVerdict, error)
}
