package fraud

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/nikolayk812/storefront-checkout/internal/domain"
)

// ResponseShape selects which wire contract the endpoint answers with.
type ResponseShape string

const (
	// ShapeFlag is {"isFraudulent": bool, "score": number, "reason"?: string}.
	ShapeFlag ResponseShape = "flag"
	// ShapeNested is {"data": {"fraud_prediction": 0|1, "fraud_probability": number}}.
	ShapeNested ResponseShape = "nested"
	// ShapeFlat is {"fraud_prediction": 0|1, "fraud_probability": number}.
	ShapeFlat ResponseShape = "flat"
	// ShapeRisk is {"is_fraud": bool, "risk_score": number, "reasons": [string]}.
	ShapeRisk ResponseShape = "risk"
	// ShapeAuto picks the first shape whose discriminating field is present.
	ShapeAuto ResponseShape = "auto"
)

const fraudPredictionReason = "model prediction: fraud"

func ParseResponseShape(s string) (ResponseShape, error) {
	switch shape := ResponseShape(s); shape {
	case ShapeFlag, ShapeNested, ShapeFlat, ShapeRisk, ShapeAuto:
		return shape, nil
	default:
		return "", fmt.Errorf("response shape[%s] is not supported", s)
	}
}

type flagResponse struct {
	IsFraudulent *bool    `json:"isFraudulent"`
	Score        *float64 `json:"score"`
	Reason       *string  `json:"reason"`
}

type predictionResponse struct {
	FraudPrediction  *float64 `json:"fraud_prediction"`
	FraudProbability *float64 `json:"fraud_probability"`
}

type nestedPredictionResponse struct {
	Data *predictionResponse `json:"data"`
}

type riskResponse struct {
	TransactionID string   `json:"transaction_id"`
	IsFraud       *bool    `json:"is_fraud"`
	RiskScore     *float64 `json:"risk_score"`
	Reasons       []string `json:"reasons"`
}

func decodeVerdict(shape ResponseShape, body []byte) (domain.FraudVerdict, error) {
	switch shape {
	case ShapeFlag:
		return decodeFlag(body)
	case ShapeNested:
		return decodeNested(body)
	case ShapeFlat:
		return decodeFlat(body)
	case ShapeRisk:
		return decodeRisk(body)
	case ShapeAuto:
		return decodeAuto(body)
	default:
		return domain.FraudVerdict{}, fmt.Errorf("response shape[%s] is not supported", shape)
	}
}

// decodeAuto checks discriminating fields in a fixed order: nested, flat, flag, risk.
func decodeAuto(body []byte) (domain.FraudVerdict, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return domain.FraudVerdict{}, malformed("body is not a JSON object", err)
	}

	switch {
	case has(fields, "data"):
		return decodeNested(body)
	case has(fields, "fraud_prediction"):
		return decodeFlat(body)
	case has(fields, "isFraudulent"):
		return decodeFlag(body)
	case has(fields, "is_fraud"):
		return decodeRisk(body)
	default:
		return domain.FraudVerdict{}, malformed("no known response shape", nil)
	}
}

func decodeFlag(body []byte) (domain.FraudVerdict, error) {
	var resp flagResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.FraudVerdict{}, malformed("decode flag response", err)
	}
	if resp.IsFraudulent == nil {
		return domain.FraudVerdict{}, malformed("missing field isFraudulent", nil)
	}
	if resp.Score == nil {
		return domain.FraudVerdict{}, malformed("missing field score", nil)
	}
	if err := checkScore("score", *resp.Score); err != nil {
		return domain.FraudVerdict{}, err
	}

	verdict := domain.FraudVerdict{
		IsFraudulent: *resp.IsFraudulent,
		RiskScore:    *resp.Score,
		Reasons:      []string{},
	}
	if resp.Reason != nil && *resp.Reason != "" {
		verdict.Reasons = append(verdict.Reasons, *resp.Reason)
	}
	return verdict, nil
}

func decodeNested(body []byte) (domain.FraudVerdict, error) {
	var resp nestedPredictionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.FraudVerdict{}, malformed("decode nested prediction response", err)
	}
	if resp.Data == nil {
		return domain.FraudVerdict{}, malformed("missing field data", nil)
	}
	return resp.Data.verdict()
}

func decodeFlat(body []byte) (domain.FraudVerdict, error) {
	var resp predictionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.FraudVerdict{}, malformed("decode prediction response", err)
	}
	return resp.verdict()
}

func (p predictionResponse) verdict() (domain.FraudVerdict, error) {
	if p.FraudPrediction == nil {
		return domain.FraudVerdict{}, malformed("missing field fraud_prediction", nil)
	}
	if p.FraudProbability == nil {
		return domain.FraudVerdict{}, malformed("missing field fraud_probability", nil)
	}
	if err := checkScore("fraud_probability", *p.FraudProbability); err != nil {
		return domain.FraudVerdict{}, err
	}

	verdict := domain.FraudVerdict{
		RiskScore: *p.FraudProbability,
		Reasons:   []string{},
	}
	switch *p.FraudPrediction {
	case 1:
		verdict.IsFraudulent = true
		verdict.Reasons = append(verdict.Reasons, fraudPredictionReason)
	case 0:
	default:
		return domain.FraudVerdict{}, malformed(fmt.Sprintf("fraud_prediction[%v] is not 0 or 1", *p.FraudPrediction), nil)
	}
	return verdict, nil
}

func decodeRisk(body []byte) (domain.FraudVerdict, error) {
	var resp riskResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.FraudVerdict{}, malformed("decode risk response", err)
	}
	if resp.IsFraud == nil {
		return domain.FraudVerdict{}, malformed("missing field is_fraud", nil)
	}
	if resp.RiskScore == nil {
		return domain.FraudVerdict{}, malformed("missing field risk_score", nil)
	}
	if err := checkScore("risk_score", *resp.RiskScore); err != nil {
		return domain.FraudVerdict{}, err
	}

	reasons := resp.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	return domain.FraudVerdict{
		IsFraudulent: *resp.IsFraud,
		RiskScore:    *resp.RiskScore,
		Reasons:      reasons,
	}, nil
}

func checkScore(field string, score float64) error {
	if math.IsNaN(score) || score < 0 || score > 1 {
		return malformed(fmt.Sprintf("%s[%v] is out of range [0, 1]", field, score), nil)
	}
	return nil
}

func has(fields map[string]json.RawMessage, key string) bool {
	_, ok := fields[key]
	return ok
}

func malformed(reason string, err error) *MalformedResponseError {
	return &MalformedResponseError{Reason: reason, Err: err}
}
