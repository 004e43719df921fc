package domain

import (
	"strings"
	"time"
)

// TransactionRequest is built fresh for every checkout attempt and never persisted.
type TransactionRequest struct {
	TransactionID string

	// CardToken is the masked card number; the raw number never leaves the checkout form.
	CardToken      string
	CardLast4      string
	CardHolderName string

	Amount    Money
	Timestamp time.Time

	MerchantID       string
	MerchantName     string
	MerchantCategory string
	TransactionType  string

	UserID            string
	Location          string
	DeviceFingerprint string
	ItemCount         int

	Metadata map[string]string
}

type FraudVerdict struct {
	IsFraudulent bool
	RiskScore    float64
	Reasons      []string
}

// MaskCardNumber keeps the last four digits and replaces the rest with '*'.
// Separators such as spaces and dashes are dropped.
func MaskCardNumber(number string) (masked, last4 string) {
	digits := DigitsOnly(number)
	if len(digits) <= 4 {
		return digits, digits
	}
	last4 = digits[len(digits)-4:]
	return strings.Repeat("*", len(digits)-4) + last4, last4
}

func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
