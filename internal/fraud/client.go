package fraud

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront-checkout/internal/domain"
	"github.com/nikolayk812/storefront-checkout/internal/port"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	DefaultTimeout = 15 * time.Second

	correlationHeader = "X-Correlation-ID"
	maxResponseBytes  = 1 << 20
	tracerName        = "github.com/nikolayk812/storefront-checkout/internal/fraud"
)

// Client calls a remote risk-evaluation endpoint. It never retries; one call is one POST.
type Client struct {
	endpoint      string
	http          *http.Client
	timeout       time.Duration
	shape         ResponseShape
	format        RequestFormat
	token         string
	logger        *zap.Logger
	tracer        trace.Tracer
	correlationID func() string
}

type Option func(*Client)

// WithHTTPClient replaces the transport. Its own Timeout is left untouched; the
// per-call deadline comes from WithTimeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithResponseShape(shape ResponseShape) Option {
	return func(c *Client) { c.shape = shape }
}

func WithRequestFormat(format RequestFormat) Option {
	return func(c *Client) { c.format = format }
}

func WithBearerToken(token string) Option {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

func NewClient(endpoint string, opts ...Option) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("endpoint is empty")
	}
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("url.Parse: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("endpoint scheme[%s] is not http(s)", parsed.Scheme)
	}

	c := &Client{
		endpoint: parsed.String(),
		http: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        16,
				MaxIdleConnsPerHost: 16,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		timeout:       DefaultTimeout,
		shape:         ShapeNested,
		format:        FormatPredict,
		logger:        zap.NewNop(),
		tracer:        otel.Tracer(tracerName),
		correlationID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}

	if _, err := ParseResponseShape(string(c.shape)); err != nil {
		return nil, err
	}
	if _, err := ParseRequestFormat(string(c.format)); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Client) CheckTransaction(ctx context.Context, req domain.TransactionRequest) (domain.FraudVerdict, error) {
	if req.TransactionID == "" {
		req.TransactionID = uuid.NewString()
	}
	correlationID := c.correlationID()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ctx, span := c.tracer.Start(ctx, "fraud.CheckTransaction", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("http.url", c.endpoint),
		attribute.String("http.method", http.MethodPost),
		attribute.String("fraud.transaction_id", req.TransactionID),
		attribute.String("fraud.correlation_id", correlationID),
	)

	logger := c.logger.With(
		zap.String("transactionID", req.TransactionID),
		zap.String("correlationID", correlationID),
		zap.String("card", req.CardToken),
		zap.Stringer("amount", req.Amount),
	)

	verdict, err := c.do(ctx, req, correlationID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Warn("fraud check failed", zap.String("kind", string(KindOf(err))), zap.Error(err))
		return domain.FraudVerdict{}, err
	}

	span.SetAttributes(
		attribute.Bool("fraud.is_fraudulent", verdict.IsFraudulent),
		attribute.Float64("fraud.risk_score", verdict.RiskScore),
	)
	logger.Info("fraud check completed",
		zap.Bool("isFraudulent", verdict.IsFraudulent),
		zap.Float64("riskScore", verdict.RiskScore),
		zap.Strings("reasons", verdict.Reasons),
	)

	return verdict, nil
}

func (c *Client) do(ctx context.Context, req domain.TransactionRequest, correlationID string) (domain.FraudVerdict, error) {
	payload, err := encodeRequest(c.format, req)
	if err != nil {
		return domain.FraudVerdict{}, fmt.Errorf("encodeRequest: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return domain.FraudVerdict{}, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(correlationHeader, correlationID)
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return domain.FraudVerdict{}, transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return domain.FraudVerdict{}, transportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.FraudVerdict{}, interpretFailure(resp, body)
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return domain.FraudVerdict{}, ErrEmptyResponse
	}

	return decodeVerdict(c.shape, body)
}

func transportError(err error) *TransportError {
	var netErr net.Error
	timeout := errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout())
	return &TransportError{Timeout: timeout, Err: err}
}

var _ port.FraudChecker = (*Client)(nil)
