package fraud

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/nikolayk812/storefront-checkout/internal/domain"
)

// RequestFormat selects the field names sent to the endpoint.
type RequestFormat string

const (
	// FormatPredict targets the /api/predict style endpoint.
	FormatPredict RequestFormat = "predict"
	// FormatCheck targets the /check-transaction style endpoint.
	FormatCheck RequestFormat = "check"
)

func ParseRequestFormat(s string) (RequestFormat, error) {
	switch format := RequestFormat(s); format {
	case FormatPredict, FormatCheck:
		return format, nil
	default:
		return "", fmt.Errorf("request format[%s] is not supported", s)
	}
}

type predictPayload struct {
	Amount           json.Number `json:"amount"`
	Time             string      `json:"time"`
	CardNumber       string      `json:"card_number"`
	CardHolderName   string      `json:"card_holder_name,omitempty"`
	MerchantID       string      `json:"merchant_id"`
	MerchantName     string      `json:"merchant_name,omitempty"`
	MerchantCategory string      `json:"merchant_category,omitempty"`
	CardType         string      `json:"card_type"`
	Location         string      `json:"location,omitempty"`
	UserID           string      `json:"user_id,omitempty"`
	TransactionID    string      `json:"transaction_id"`
}

type checkPayload struct {
	CardID            string            `json:"card_id"`
	Amount            json.Number       `json:"amount"`
	MerchantID        string            `json:"merchant_id"`
	Timestamp         string            `json:"timestamp"`
	Location          map[string]string `json:"location"`
	DeviceFingerprint string            `json:"device_fingerprint,omitempty"`
	Metadata          map[string]string `json:"metadata"`
}

func encodeRequest(format RequestFormat, req domain.TransactionRequest) ([]byte, error) {
	amount := json.Number(req.Amount.Amount.StringFixed(2))
	timestamp := req.Timestamp.UTC().Format(time.RFC3339)

	switch format {
	case FormatPredict:
		return json.Marshal(predictPayload{
			Amount:           amount,
			Time:             timestamp,
			CardNumber:       req.CardToken,
			CardHolderName:   req.CardHolderName,
			MerchantID:       req.MerchantID,
			MerchantName:     req.MerchantName,
			MerchantCategory: req.MerchantCategory,
			CardType:         req.TransactionType,
			Location:         req.Location,
			UserID:           req.UserID,
			TransactionID:    req.TransactionID,
		})
	case FormatCheck:
		metadata := make(map[string]string, len(req.Metadata)+4)
		for k, v := range req.Metadata {
			metadata[k] = v
		}
		metadata["transaction_id"] = req.TransactionID
		metadata["currency"] = req.Amount.Currency.String()
		metadata["item_count"] = strconv.Itoa(req.ItemCount)
		if req.UserID != "" {
			metadata["user_id"] = req.UserID
		}

		location := map[string]string{}
		if req.Location != "" {
			location["label"] = req.Location
		}

		return json.Marshal(checkPayload{
			CardID:            req.CardToken,
			Amount:            amount,
			MerchantID:        req.MerchantID,
			Timestamp:         timestamp,
			Location:          location,
			DeviceFingerprint: req.DeviceFingerprint,
			Metadata:          metadata,
		})
	default:
		return nil, fmt.Errorf("request format[%s] is not supported", format)
	}
}
