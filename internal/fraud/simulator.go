package fraud

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/nikolayk812/storefront-checkout/internal/domain"
	"github.com/nikolayk812/storefront-checkout/internal/port"
	"github.com/shopspring/decimal"
)

// RuleSimulator flags transactions with a handful of static rules instead of calling a backend.
type RuleSimulator struct {
	Rules RuleConfig
}

type RuleConfig struct {
	// BlockedCardSuffix flags cards whose last digits match.
	BlockedCardSuffix string
	// AmountLimit flags any transaction strictly above it.
	AmountLimit decimal.Decimal
	// BulkItemCount and BulkAmountLimit flag large baskets: more than BulkItemCount
	// items and an amount strictly above BulkAmountLimit.
	BulkItemCount   int
	BulkAmountLimit decimal.Decimal
}

func DefaultRuleConfig() RuleConfig {
	return RuleConfig{
		BlockedCardSuffix: "1111",
		AmountLimit:       decimal.NewFromInt(250000),
		BulkItemCount:     5,
		BulkAmountLimit:   decimal.NewFromInt(100000),
	}
}

func NewRuleSimulator(rules RuleConfig) *RuleSimulator {
	return &RuleSimulator{Rules: rules}
}

func (s *RuleSimulator) CheckTransaction(ctx context.Context, req domain.TransactionRequest) (domain.FraudVerdict, error) {
	if err := ctx.Err(); err != nil {
		return domain.FraudVerdict{}, &TransportError{Err: err}
	}

	reasons := []string{}
	amount := req.Amount.Amount

	if suffix := s.Rules.BlockedCardSuffix; suffix != "" && strings.HasSuffix(cardDigits(req), suffix) {
		reasons = append(reasons, fmt.Sprintf("card ending in %s is blocked", suffix))
	}
	if !s.Rules.AmountLimit.IsZero() && amount.GreaterThan(s.Rules.AmountLimit) {
		reasons = append(reasons, fmt.Sprintf("amount %s exceeds limit %s", amount.StringFixed(2), s.Rules.AmountLimit))
	}
	if s.Rules.BulkItemCount > 0 && req.ItemCount > s.Rules.BulkItemCount && amount.GreaterThan(s.Rules.BulkAmountLimit) {
		reasons = append(reasons, fmt.Sprintf("%d items with amount above %s", req.ItemCount, s.Rules.BulkAmountLimit))
	}

	if len(reasons) == 0 {
		return domain.FraudVerdict{RiskScore: 0.05, Reasons: reasons}, nil
	}
	return domain.FraudVerdict{
		IsFraudulent: true,
		RiskScore:    math.Min(1, 0.1+0.35*float64(len(reasons))),
		Reasons:      reasons,
	}, nil
}

func cardDigits(req domain.TransactionRequest) string {
	if req.CardLast4 != "" {
		return req.CardLast4
	}
	return domain.DigitsOnly(req.CardToken)
}

// RandomSimulator flags a fixed share of transactions at random.
type RandomSimulator struct {
	mu          sync.Mutex
	rng         *rand.Rand
	probability float64
}

const randomFraudReason = "Unusual transaction amount"

// NewRandomSimulator flags roughly probability of calls; a nil rng uses a randomly seeded source.
func NewRandomSimulator(probability float64, rng *rand.Rand) *RandomSimulator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &RandomSimulator{rng: rng, probability: probability}
}

func (s *RandomSimulator) CheckTransaction(ctx context.Context, _ domain.TransactionRequest) (domain.FraudVerdict, error) {
	if err := ctx.Err(); err != nil {
		return domain.FraudVerdict{}, &TransportError{Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	verdict := domain.FraudVerdict{
		IsFraudulent: s.rng.Float64() < s.probability,
		RiskScore:    s.rng.Float64(),
		Reasons:      []string{},
	}
	if verdict.IsFraudulent {
		verdict.Reasons = append(verdict.Reasons, randomFraudReason)
	}
	return verdict, nil
}

var (
	_ port.FraudChecker = (*RuleSimulator)(nil)
	_ port.FraudChecker = (*RandomSimulator)(nil)
)
