package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront-checkout/internal/cart"
	"github.com/nikolayk812/storefront-checkout/internal/catalog"
	"github.com/nikolayk812/storefront-checkout/internal/checkout"
	"github.com/nikolayk812/storefront-checkout/internal/config"
	"github.com/nikolayk812/storefront-checkout/internal/fraud"
	"github.com/nikolayk812/storefront-checkout/internal/logging"
	"github.com/nikolayk812/storefront-checkout/internal/metrics"
	"github.com/nikolayk812/storefront-checkout/internal/port"
	"github.com/nikolayk812/storefront-checkout/internal/pricing"
	"github.com/nikolayk812/storefront-checkout/internal/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

const (
	exitApproved = 0
	exitFailed   = 1
	exitFlagged  = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type itemFlags []cartItem

type cartItem struct {
	productID string
	quantity  int
}

func (f *itemFlags) String() string {
	parts := make([]string, 0, len(*f))
	for _, it := range *f {
		parts = append(parts, it.productID+":"+strconv.Itoa(it.quantity))
	}
	return strings.Join(parts, ",")
}

func (f *itemFlags) Set(value string) error {
	item, err := parseItem(value)
	if err != nil {
		return err
	}
	*f = append(*f, item)
	return nil
}

// parseItem accepts "id" or "id:qty".
func parseItem(value string) (cartItem, error) {
	id, qty, found := strings.Cut(strings.TrimSpace(value), ":")
	if id == "" {
		return cartItem{}, fmt.Errorf("item[%s] has no product id", value)
	}
	if !found {
		return cartItem{productID: id, quantity: 1}, nil
	}

	n, err := strconv.Atoi(qty)
	if err != nil {
		return cartItem{}, fmt.Errorf("item[%s] quantity is not a number: %w", value, err)
	}
	return cartItem{productID: id, quantity: n}, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("storefront", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		items itemFlags
		form  checkout.Form
	)
	configPath := fs.String("config", "", "path to the YAML config file")
	metricsAddr := fs.String("metrics-addr", "", "serve /metrics on this address after checkout until interrupted")
	fs.Var(&items, "item", "cart item as id[:qty], repeatable")
	fs.StringVar(&form.FullName, "name", "Asha Verma", "shopper full name")
	fs.StringVar(&form.Email, "email", "asha@example.com", "shopper email")
	fs.StringVar(&form.Address, "address", "12 MG Road", "street address")
	fs.StringVar(&form.City, "city", "Bengaluru", "city")
	fs.StringVar(&form.State, "state", "KA", "state")
	fs.StringVar(&form.ZipCode, "zip", "560001", "zip code")
	fs.StringVar(&form.CardholderName, "cardholder", "", "cardholder name, defaults to -name")
	fs.StringVar(&form.CardNumber, "card", "4242 4242 4242 4242", "card number")
	fs.StringVar(&form.ExpiryDate, "expiry", "12/30", "card expiry MM/YY")
	fs.StringVar(&form.CVV, "cvv", "123", "card CVV")
	fs.StringVar(&form.UserID, "user", "", "user id forwarded to the fraud check")
	fs.StringVar(&form.Location, "location", "", "shopper location forwarded to the fraud check")
	fs.StringVar(&form.DeviceFingerprint, "device", "", "device fingerprint forwarded to the fraud check")

	if err := fs.Parse(args); err != nil {
		return exitFailed
	}
	if form.CardholderName == "" {
		form.CardholderName = form.FullName
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "config.Load: %v\n", err)
		return exitFailed
	}

	logger, err := logging.NewLogger(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(stderr, "logging.NewLogger: %v\n", err)
		return exitFailed
	}
	defer func() { _ = logger.Sync() }()

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	products, closeCatalog, err := buildCatalog(ctx, cfg.Catalog, logger)
	if err != nil {
		logger.Error("failed to build catalog", zap.Error(err))
		return exitFailed
	}
	defer closeCatalog()

	checker, err := buildChecker(cfg.Fraud, logger)
	if err != nil {
		logger.Error("failed to build fraud checker", zap.Error(err))
		return exitFailed
	}

	store := cart.NewStore(products)
	if len(items) == 0 {
		items = itemFlags{{productID: "1", quantity: 1}}
	}
	for _, it := range items {
		if err := store.AddItem(it.productID, it.quantity); err != nil {
			fmt.Fprintf(stderr, "store.AddItem: %v\n", err)
			return exitFailed
		}
	}

	registry := prometheus.NewRegistry()
	checkoutMetrics, err := metrics.NewCheckout(registry)
	if err != nil {
		logger.Error("failed to register metrics", zap.Error(err))
		return exitFailed
	}

	orchestrator, err := checkout.NewOrchestrator(store, checker, cfg.Pricing, cfg.Merchant,
		checkout.WithLogger(logger),
		checkout.WithTimeout(cfg.Fraud.Timeout),
		checkout.WithMetrics(checkoutMetrics),
	)
	if err != nil {
		logger.Error("failed to build orchestrator", zap.Error(err))
		return exitFailed
	}

	printCart(stdout, store, cfg)

	outcome, err := orchestrator.Submit(ctx, form)
	if err != nil {
		fmt.Fprintf(stderr, "checkout rejected: %v\n", err)
		return exitFailed
	}

	code := printOutcome(stdout, outcome)

	if *metricsAddr != "" {
		if err := serveMetrics(ctx, *metricsAddr, registry, logger); err != nil {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}

	return code
}

// serveMetrics blocks until ctx is done.
func serveMetrics(ctx context.Context, addr string, gatherer prometheus.Gatherer, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving metrics", zap.String("addr", addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server.ListenAndServe: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func buildCatalog(ctx context.Context, cfg config.CatalogConfig, logger *zap.Logger) (*catalog.Static, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Info("using seed catalog")
		return catalog.Seed(), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	repo, err := repository.NewCatalog(pool)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("repository.NewCatalog: %w", err)
	}

	static, err := loadOrSeed(ctx, repo)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	logger.Info("loaded catalog from database", zap.Strings("categories", static.Categories()))

	return static, pool.Close, nil
}

// loadOrSeed snapshots the repository, seeding it first when it is empty.
func loadOrSeed(ctx context.Context, repo port.CatalogRepository) (*catalog.Static, error) {
	existing, err := repo.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("repo.ListProducts: %w", err)
	}
	if len(existing) > 0 {
		return catalog.New(existing...), nil
	}

	if err := repo.UpsertProducts(ctx, catalog.SeedProducts()); err != nil {
		return nil, fmt.Errorf("repo.UpsertProducts: %w", err)
	}

	static, err := catalog.Load(ctx, repo)
	if err != nil {
		return nil, fmt.Errorf("catalog.Load: %w", err)
	}
	return static, nil
}

func buildChecker(cfg config.FraudConfig, logger *zap.Logger) (port.FraudChecker, error) {
	switch cfg.Mode {
	case config.FraudModeHTTP:
		client, err := fraud.NewClient(cfg.Endpoint,
			fraud.WithTimeout(cfg.Timeout),
			fraud.WithRequestFormat(cfg.RequestFormat),
			fraud.WithResponseShape(cfg.ResponseShape),
			fraud.WithBearerToken(cfg.BearerToken),
			fraud.WithLogger(logger),
			fraud.WithTracer(otel.Tracer("storefront/fraud")),
		)
		if err != nil {
			return nil, fmt.Errorf("fraud.NewClient: %w", err)
		}
		return client, nil
	case config.FraudModeRules:
		return fraud.NewRuleSimulator(fraud.DefaultRuleConfig()), nil
	case config.FraudModeRandom:
		return fraud.NewRandomSimulator(cfg.RandomProbability, nil), nil
	default:
		return nil, fmt.Errorf("fraud mode[%s] is not supported", cfg.Mode)
	}
}

func printCart(w io.Writer, store *cart.Store, cfg config.Config) {
	fmt.Fprintln(w, "Cart:")
	for _, item := range store.Items() {
		line := pricing.LineTotal(item, cfg.Pricing)
		fmt.Fprintf(w, "  %-28s x%d  %s\n", item.Product.Name, item.Quantity, line)
	}

	totals := pricing.ComputeTotals(store.Cart(), cfg.Pricing)
	fmt.Fprintf(w, "Items:    %d\n", totals.ItemCount)
	fmt.Fprintf(w, "Subtotal: %s\n", totals.Subtotal)
	fmt.Fprintf(w, "Tax:      %s\n", totals.Tax)
	fmt.Fprintf(w, "Shipping: %s\n", totals.Shipping)
	fmt.Fprintf(w, "Total:    %s\n", totals.Total)
}

func printOutcome(w io.Writer, outcome checkout.Outcome) int {
	fmt.Fprintln(w, outcome.Message())

	switch outcome.Status {
	case checkout.StatusApproved:
		return exitApproved
	case checkout.StatusFlagged:
		for _, reason := range outcome.Reasons {
			fmt.Fprintf(w, "  - %s\n", reason)
		}
		return exitFlagged
	default:
		fmt.Fprintf(w, "  error kind: %s\n", outcome.ErrorKind)
		return exitFailed
	}
}
