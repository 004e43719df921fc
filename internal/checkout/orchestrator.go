package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront-checkout/internal/cart"
	"github.com/nikolayk812/storefront-checkout/internal/domain"
	"github.com/nikolayk812/storefront-checkout/internal/fraud"
	"github.com/nikolayk812/storefront-checkout/internal/metrics"
	"github.com/nikolayk812/storefront-checkout/internal/port"
	"github.com/nikolayk812/storefront-checkout/internal/pricing"
	"go.uber.org/zap"
)

const orderRefPrefix = "NM-"

var (
	ErrCheckoutInFlight = errors.New("checkout already in progress")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrAbandoned        = errors.New("checkout abandoned")
)

type Merchant struct {
	ID              string
	Name            string
	Category        string
	TransactionType string
}

// Orchestrator sequences one cart's checkout. At most one submission is in flight at a time.
type Orchestrator struct {
	store    *cart.Store
	checker  port.FraudChecker
	pricing  domain.PricingConfig
	merchant Merchant

	logger  *zap.Logger
	metrics *metrics.Checkout
	now     func() time.Time
	newID   func() string
	timeout time.Duration

	mu     sync.Mutex
	state  State
	token  uint64
	cancel context.CancelFunc
}

type Option func(*Orchestrator)

func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics records attempts, rejections and fraud-check latency.
func WithMetrics(m *metrics.Checkout) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(o *Orchestrator) {
		if newID != nil {
			o.newID = newID
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func NewOrchestrator(store *cart.Store, checker port.FraudChecker, cfg domain.PricingConfig, merchant Merchant, opts ...Option) (*Orchestrator, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store is nil")
	}
	if checker == nil {
		return nil, fmt.Errorf("fraud checker is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("cfg.Validate: %w", err)
	}

	o := &Orchestrator{
		store:    store,
		checker:  checker,
		pricing:  cfg,
		merchant: merchant,
		logger:   zap.NewNop(),
		now:      time.Now,
		newID:    uuid.NewString,
		timeout:  fraud.DefaultTimeout,
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(o)
	}

	return o, nil
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.state
}

// Totals prices the current cart.
func (o *Orchestrator) Totals() domain.PricingResult {
	return pricing.ComputeTotals(o.store.Cart(), o.pricing)
}

// Submit runs one checkout attempt. Fraud-check failures never come back as an error;
// they produce a Failed outcome. Errors are reserved for a rejected submission: invalid
// form, empty cart, a concurrent attempt, or an abandoned one.
func (o *Orchestrator) Submit(ctx context.Context, form Form) (Outcome, error) {
	token, err := o.begin()
	if err != nil {
		o.metrics.ObserveRejection("in_flight")
		return Outcome{}, err
	}

	if err := form.Validate(); err != nil {
		o.finish(token, StateIdle)
		o.metrics.ObserveRejection("invalid_form")
		return Outcome{}, err
	}

	snapshot, version := o.store.Snapshot()
	if snapshot.Len() == 0 {
		o.finish(token, StateIdle)
		o.metrics.ObserveRejection("empty_cart")
		return Outcome{}, ErrEmptyCart
	}

	totals := pricing.ComputeTotals(snapshot, o.pricing)
	req := o.buildRequest(form, totals)
	logger := o.logger.With(
		zap.String("transactionID", req.TransactionID),
		zap.Stringer("total", totals.Total),
		zap.Int("itemCount", totals.ItemCount),
	)

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	if !o.submitting(token, cancel) {
		logger.Info("checkout abandoned before submission")
		o.metrics.ObserveRejection("abandoned")
		return Outcome{}, ErrAbandoned
	}
	logger.Info("checkout submitting")

	started := time.Now()
	verdict, checkErr := o.checker.CheckTransaction(callCtx, req)
	o.metrics.ObserveFraudCheck(fraudCheckResult(verdict, checkErr), time.Since(started))

	o.mu.Lock()
	defer o.mu.Unlock()

	if token != o.token {
		logger.Info("discarding verdict of abandoned checkout", zap.Error(checkErr))
		o.metrics.ObserveRejection("abandoned")
		return Outcome{}, ErrAbandoned
	}
	o.cancel = nil

	outcome := Outcome{TransactionID: req.TransactionID, Totals: totals}

	switch {
	case checkErr != nil:
		o.state = StateFailed
		outcome.Status = StatusFailed
		outcome.ErrorKind = fraud.KindOf(checkErr)
		outcome.Err = checkErr
		logger.Warn("checkout failed", zap.String("kind", string(outcome.ErrorKind)), zap.Error(checkErr))

	case verdict.IsFraudulent:
		o.state = StateFlagged
		outcome.Status = StatusFlagged
		outcome.Reasons = verdict.Reasons
		outcome.RiskScore = verdict.RiskScore
		logger.Info("checkout flagged", zap.Float64("riskScore", verdict.RiskScore), zap.Strings("reasons", verdict.Reasons))

	default:
		o.store.Settle(snapshot, version)
		o.state = StateApproved
		outcome.Status = StatusApproved
		outcome.RiskScore = verdict.RiskScore
		outcome.OrderRef = o.orderRef()
		logger.Info("checkout approved", zap.String("orderRef", outcome.OrderRef))
		o.metrics.ObserveApprovedTotal(totals.Total.Amount.InexactFloat64())
	}
	o.metrics.ObserveOutcome(string(outcome.Status))

	return outcome, nil
}

func fraudCheckResult(verdict domain.FraudVerdict, err error) string {
	switch {
	case err != nil:
		return string(fraud.KindOf(err))
	case verdict.IsFraudulent:
		return "fraud"
	default:
		return "clean"
	}
}

// Abandon invalidates the in-flight attempt; its verdict is dropped when it arrives.
func (o *Orchestrator) Abandon() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.token++
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.state = StateIdle
}

// begin moves Idle (or a terminal state) to Validating and returns the attempt's token.
func (o *Orchestrator) begin() (uint64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state.InFlight() {
		return 0, ErrCheckoutInFlight
	}
	o.state = StateValidating

	return o.token, nil
}

func (o *Orchestrator) submitting(token uint64, cancel context.CancelFunc) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if token != o.token {
		return false
	}
	o.state = StateSubmitting
	o.cancel = cancel

	return true
}

func (o *Orchestrator) finish(token uint64, state State) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if token == o.token {
		o.state = state
	}
}

func (o *Orchestrator) buildRequest(form Form, totals domain.PricingResult) domain.TransactionRequest {
	token, last4 := domain.MaskCardNumber(form.CardNumber)

	return domain.TransactionRequest{
		TransactionID:     o.newID(),
		CardToken:         token,
		CardLast4:         last4,
		CardHolderName:    strings.TrimSpace(form.CardholderName),
		Amount:            totals.Total,
		Timestamp:         o.now().UTC(),
		MerchantID:        o.merchant.ID,
		MerchantName:      o.merchant.Name,
		MerchantCategory:  o.merchant.Category,
		TransactionType:   o.merchant.TransactionType,
		UserID:            form.UserID,
		Location:          form.Location,
		DeviceFingerprint: form.DeviceFingerprint,
		ItemCount:         totals.ItemCount,
		Metadata: map[string]string{
			"city":     strings.TrimSpace(form.City),
			"state":    strings.TrimSpace(form.State),
			"zip_code": strings.TrimSpace(form.ZipCode),
		},
	}
}

func (o *Orchestrator) orderRef() string {
	id := strings.ToUpper(strings.ReplaceAll(o.newID(), "-", ""))
	if len(id) > 8 {
		id = id[:8]
	}
	return orderRefPrefix + id
}
