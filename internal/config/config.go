package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nikolayk812/storefront-checkout/internal/checkout"
	"github.com/nikolayk812/storefront-checkout/internal/domain"
	"github.com/nikolayk812/storefront-checkout/internal/fraud"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"gopkg.in/yaml.v3"
)

const envPrefix = "STOREFRONT_"

type FraudMode string

const (
	FraudModeHTTP   FraudMode = "http"
	FraudModeRules  FraudMode = "rules"
	FraudModeRandom FraudMode = "random"
)

type Config struct {
	Pricing  domain.PricingConfig
	Fraud    FraudConfig
	Merchant checkout.Merchant
	Catalog  CatalogConfig
	Log      LogConfig
}

type FraudConfig struct {
	Mode          FraudMode
	Endpoint      string
	RequestFormat fraud.RequestFormat
	ResponseShape fraud.ResponseShape
	BearerToken   string
	Timeout       time.Duration
	// RandomProbability is the share of transactions flagged in random mode.
	RandomProbability float64
}

type CatalogConfig struct {
	// DatabaseURL selects the Postgres catalog; empty means the built-in seed catalog.
	DatabaseURL string
}

type LogConfig struct {
	Level string
}

// fileConfig is the YAML document. Amounts are strings to keep them exact.
type fileConfig struct {
	Pricing struct {
		Currency              string `yaml:"currency"`
		TaxRate               string `yaml:"tax_rate"`
		FreeShippingThreshold string `yaml:"free_shipping_threshold"`
		FlatShippingFee       string `yaml:"flat_shipping_fee"`
	} `yaml:"pricing"`
	Fraud struct {
		Mode              string `yaml:"mode"`
		Endpoint          string `yaml:"endpoint"`
		RequestFormat     string `yaml:"request_format"`
		ResponseShape     string `yaml:"response_shape"`
		BearerToken       string `yaml:"bearer_token"`
		Timeout           string `yaml:"timeout"`
		RandomProbability string `yaml:"random_probability"`
	} `yaml:"fraud"`
	Merchant struct {
		ID              string `yaml:"id"`
		Name            string `yaml:"name"`
		Category        string `yaml:"category"`
		TransactionType string `yaml:"transaction_type"`
	} `yaml:"merchant"`
	Catalog struct {
		DatabaseURL string `yaml:"database_url"`
	} `yaml:"catalog"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

func Default() Config {
	return Config{
		Pricing: domain.DefaultPricingConfig(),
		Fraud: FraudConfig{
			Mode:              FraudModeRules,
			RequestFormat:     fraud.FormatPredict,
			ResponseShape:     fraud.ShapeNested,
			Timeout:           fraud.DefaultTimeout,
			RandomProbability: 0.1,
		},
		Merchant: checkout.Merchant{
			ID:              "nm-store",
			Name:            "NM Store",
			Category:        "retail",
			TransactionType: "card",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads the optional YAML file at path, then applies STOREFRONT_* environment overrides.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Config, error) {
	var fc fileConfig

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("os.ReadFile: %w", err)
		}
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return Config{}, fmt.Errorf("yaml.Unmarshal: %w", err)
		}
	}

	applyEnv(&fc, lookup)

	cfg, err := fc.resolve(Default())
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("cfg.Validate: %w", err)
	}

	return cfg, nil
}

func applyEnv(fc *fileConfig, lookup func(string) (string, bool)) {
	overrides := map[string]*string{
		"CURRENCY":                  &fc.Pricing.Currency,
		"TAX_RATE":                  &fc.Pricing.TaxRate,
		"FREE_SHIPPING_THRESHOLD":   &fc.Pricing.FreeShippingThreshold,
		"FLAT_SHIPPING_FEE":         &fc.Pricing.FlatShippingFee,
		"FRAUD_MODE":                &fc.Fraud.Mode,
		"FRAUD_ENDPOINT":            &fc.Fraud.Endpoint,
		"FRAUD_REQUEST_FORMAT":      &fc.Fraud.RequestFormat,
		"FRAUD_RESPONSE_SHAPE":      &fc.Fraud.ResponseShape,
		"FRAUD_BEARER_TOKEN":        &fc.Fraud.BearerToken,
		"FRAUD_TIMEOUT":             &fc.Fraud.Timeout,
		"MERCHANT_ID":               &fc.Merchant.ID,
		"MERCHANT_NAME":             &fc.Merchant.Name,
		"MERCHANT_CATEGORY":         &fc.Merchant.Category,
		"MERCHANT_TRANSACTION_TYPE": &fc.Merchant.TransactionType,
		"FRAUD_RANDOM_PROBABILITY":  &fc.Fraud.RandomProbability,
		"DATABASE_URL":              &fc.Catalog.DatabaseURL,
		"LOG_LEVEL":                 &fc.Log.Level,
	}
	for key, target := range overrides {
		if v, ok := lookup(envPrefix + key); ok {
			*target = strings.TrimSpace(v)
		}
	}
}

func (fc fileConfig) resolve(cfg Config) (Config, error) {
	var errs []error

	if v := fc.Pricing.Currency; v != "" {
		unit, err := currency.ParseISO(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("currency[%s] is not valid: %w", v, err))
		}
		cfg.Pricing.Currency = unit
	}
	setDecimal(&cfg.Pricing.TaxRate, "tax_rate", fc.Pricing.TaxRate, &errs)
	setDecimal(&cfg.Pricing.FreeShippingThreshold, "free_shipping_threshold", fc.Pricing.FreeShippingThreshold, &errs)
	setDecimal(&cfg.Pricing.FlatShippingFee, "flat_shipping_fee", fc.Pricing.FlatShippingFee, &errs)

	if v := fc.Fraud.Mode; v != "" {
		cfg.Fraud.Mode = FraudMode(strings.ToLower(v))
	}
	if v := fc.Fraud.Endpoint; v != "" {
		cfg.Fraud.Endpoint = v
	}
	if v := fc.Fraud.RequestFormat; v != "" {
		format, err := fraud.ParseRequestFormat(strings.ToLower(v))
		if err != nil {
			errs = append(errs, err)
		}
		cfg.Fraud.RequestFormat = format
	}
	if v := fc.Fraud.ResponseShape; v != "" {
		shape, err := fraud.ParseResponseShape(strings.ToLower(v))
		if err != nil {
			errs = append(errs, err)
		}
		cfg.Fraud.ResponseShape = shape
	}
	if v := fc.Fraud.BearerToken; v != "" {
		cfg.Fraud.BearerToken = v
	}
	if v := fc.Fraud.Timeout; v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("fraud timeout[%s] is not valid: %w", v, err))
		}
		cfg.Fraud.Timeout = d
	}
	if v := fc.Fraud.RandomProbability; v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("random probability[%s] is not a number: %w", v, err))
		}
		cfg.Fraud.RandomProbability = p
	}

	if v := fc.Merchant.ID; v != "" {
		cfg.Merchant.ID = v
	}
	if v := fc.Merchant.Name; v != "" {
		cfg.Merchant.Name = v
	}
	if v := fc.Merchant.Category; v != "" {
		cfg.Merchant.Category = v
	}
	if v := fc.Merchant.TransactionType; v != "" {
		cfg.Merchant.TransactionType = v
	}

	if v := fc.Catalog.DatabaseURL; v != "" {
		cfg.Catalog.DatabaseURL = v
	}
	if v := fc.Log.Level; v != "" {
		cfg.Log.Level = v
	}

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

func setDecimal(target *decimal.Decimal, name, value string, errs *[]error) {
	if value == "" {
		return
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s[%s] is not a decimal: %w", name, value, err))
		return
	}
	*target = d
}

func (c Config) Validate() error {
	if err := c.Pricing.Validate(); err != nil {
		return err
	}

	switch c.Fraud.Mode {
	case FraudModeHTTP:
		if c.Fraud.Endpoint == "" {
			return fmt.Errorf("fraud endpoint is required in %s mode", c.Fraud.Mode)
		}
	case FraudModeRules, FraudModeRandom:
	default:
		return fmt.Errorf("fraud mode[%s] is not supported", c.Fraud.Mode)
	}

	if c.Fraud.Timeout <= 0 {
		return fmt.Errorf("fraud timeout[%s] must be positive", c.Fraud.Timeout)
	}
	if c.Fraud.RandomProbability < 0 || c.Fraud.RandomProbability > 1 {
		return fmt.Errorf("random probability[%v] is out of range [0, 1]", c.Fraud.RandomProbability)
	}
	if c.Merchant.ID == "" {
		return fmt.Errorf("merchant id is empty")
	}

	return nil
}
