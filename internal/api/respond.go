package api

import (
	"net/http"

	gojson "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/ecochain/ecochain/pkg/ecoerrors"
	"github.com/ecochain/ecochain/pkg/logger"
)

// envelope is the uniform JSON response shape.
type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := gojson.NewEncoder(w).Encode(v); err != nil {
		logger.Get().Error("failed to encode response", zap.Error(err))
	}
}

// respondData writes a success envelope carrying data.
func respondData(w http.ResponseWriter, code int, data any) {
	writeJSON(w, code, envelope{Status: "success", Data: data})
}

// respondMessage writes a success envelope with only a message.
func respondMessage(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, envelope{Status: "success", Message: message})
}

// respondError maps an error's category to an HTTP status and writes the
// error envelope. Internal failures are masked with a generic message.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	message := err.Error()
	if code == http.StatusInternalServerError {
		logger.WithContext(r.Context()).Error("request failed", zap.Error(err))
		message = "Internal server error"
	}
	writeJSON(w, code, envelope{Status: "error", Message: message})
}

func statusFor(err error) int {
	switch ecoerrors.TypeOf(err) {
	case ecoerrors.ErrorTypeValidation, ecoerrors.ErrorTypeConfig:
		return http.StatusBadRequest
	case ecoerrors.ErrorTypeAuthentication:
		return http.StatusUnauthorized
	case ecoerrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case ecoerrors.ErrorTypeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody deserializes a JSON request body into dst.
func decodeBody(r *http.Request, dst any) error {
	if err := gojson.NewDecoder(r.Body).Decode(dst); err != nil {
		return ecoerrors.Wrap(err, ecoerrors.ErrorTypeValidation, "invalid request body")
	}
	return nil
}
