package checkout

import (
	"fmt"
	"net/mail"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/nikolayk812/storefront-checkout/internal/domain"
)

// Form is the checkout form as submitted by the shopper.
type Form struct {
	FullName string
	Email    string
	Address  string
	City     string
	State    string
	ZipCode  string

	CardholderName string
	CardNumber     string
	ExpiryDate     string
	CVV            string

	// Optional signals forwarded to the fraud check.
	UserID            string
	Location          string
	DeviceFingerprint string
}

var (
	expiryPattern = regexp.MustCompile(`^(\d{2})/(\d{2})$`)
	cardPattern   = regexp.MustCompile(`^[0-9 -]+$`)
	cvvPattern    = regexp.MustCompile(`^\d{3,4}$`)
)

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return "checkout form is invalid: " + strings.Join(parts, "; ")
}

func (f Form) Validate() error {
	fields := map[string]string{}

	minLen := func(name, value string, n int, msg string) {
		if utf8.RuneCountInString(strings.TrimSpace(value)) < n {
			fields[name] = msg
		}
	}

	minLen("fullName", f.FullName, 3, "Full name is required")
	minLen("address", f.Address, 5, "Address is required")
	minLen("city", f.City, 2, "City is required")
	minLen("state", f.State, 2, "State is required")
	minLen("zipCode", f.ZipCode, 5, "Zip code is required")
	minLen("cardholderName", f.CardholderName, 3, "Cardholder name is required")

	if !validEmail(f.Email) {
		fields["email"] = "Please enter a valid email"
	}

	digits := domain.DigitsOnly(f.CardNumber)
	if !cardPattern.MatchString(f.CardNumber) || len(digits) < 16 || len(digits) > 19 {
		fields["cardNumber"] = "Please enter a valid card number"
	}

	if !validExpiry(f.ExpiryDate) {
		fields["expiryDate"] = "Please enter a valid expiry date (MM/YY)"
	}

	if !cvvPattern.MatchString(f.CVV) {
		fields["cvv"] = "Please enter a valid CVV"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func validEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func validExpiry(expiry string) bool {
	m := expiryPattern.FindStringSubmatch(strings.TrimSpace(expiry))
	if m == nil {
		return false
	}
	month, err := strconv.Atoi(m[1])
	return err == nil && month >= 1 && month <= 12
}
