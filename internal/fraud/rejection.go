package fraud

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
)

// errorBody covers the FastAPI ({"detail": ...}) and Flask ({"error_code", "message"}) error envelopes.
type errorBody struct {
	Detail    json.RawMessage `json:"detail"`
	ErrorCode string          `json:"error_code"`
	Message   string          `json:"message"`
	Error     string          `json:"error"`
}

// interpretFailure maps a non-2xx answer to RemoteRejection when the body is a known
// structured error, and to ProtocolError otherwise.
func interpretFailure(resp *http.Response, body []byte) error {
	protocolErr := &ProtocolError{StatusCode: resp.StatusCode, Status: resp.Status}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return protocolErr
	}

	var parsed errorBody
	if err := json.Unmarshal(trimmed, &parsed); err != nil {
		return protocolErr
	}

	message := detailMessage(parsed.Detail)
	if message == "" {
		message = strings.TrimSpace(parsed.Message)
	}
	if message == "" {
		message = strings.TrimSpace(parsed.Error)
	}
	if message == "" && parsed.ErrorCode == "" {
		return protocolErr
	}

	return &RemoteRejection{
		StatusCode: resp.StatusCode,
		Code:       strings.TrimSpace(parsed.ErrorCode),
		Message:    message,
	}
}

// detailMessage accepts a plain string detail or keeps structured validation details as raw JSON.
func detailMessage(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return string(raw)
}
