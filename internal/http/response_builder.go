package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"carteira/internal/auth"
	"carteira/internal/services"
	"carteira/internal/store"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       any
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write sends the built response. A nil body writes no content.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if err := json.NewEncoder(w).Encode(b.body); err != nil {
		slog.Warn("Failed to encode response body", "error", err)
	}
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error      string  `json:"error"`
	Kind       string  `json:"kind,omitempty"`
	Unrestored []int64 `json:"unrestored,omitempty"`
}

// StatusFor maps an error to its HTTP status. Consistency errors are
// checked first since they also wrap the store error that caused them.
func StatusFor(err error) int {
	switch {
	case services.IsConsistencyError(err):
		return http.StatusConflict
	case errors.Is(err, auth.ErrMissingToken), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	}

	switch store.KindOf(err) {
	case store.KindNotFound:
		return http.StatusNotFound
	case store.KindUnauthorized:
		return http.StatusForbidden
	case store.KindValidation:
		return http.StatusUnprocessableEntity
	case store.KindNetwork:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse builds the response for err.
func ErrorResponse(err error) *JSONResponseBuilder {
	status := StatusFor(err)
	body := errorBody{}

	switch status {
	case http.StatusConflict:
		var ce *services.ConsistencyError
		errors.As(err, &ce)
		body.Error = "Não foi possível restaurar o estado anterior. Recarregue os dados."
		body.Kind = "CONSISTENCY"
		body.Unrestored = ce.Unrestored
	case http.StatusUnauthorized:
		body.Error = "Sessão inválida. Entre novamente."
		body.Kind = "UNAUTHENTICATED"
	case http.StatusBadRequest:
		body.Error = err.Error()
		body.Kind = "BAD_REQUEST"
	default:
		body.Error = store.UserMessage(err)
		body.Kind = string(store.KindOf(err))
	}

	b := NewJSONResponse().Status(status).Body(body)
	if status == http.StatusUnauthorized {
		b.Header("WWW-Authenticate", `Bearer realm="carteira"`)
	}
	return b
}

// TooManyRequestsError is written when the rate limiter rejects a request.
func TooManyRequestsError() *JSONResponseBuilder {
	return NewJSONResponse().Status(http.StatusTooManyRequests).Body(errorBody{
		Error: "Muitas requisições. Tente novamente em instantes.",
		Kind:  "RATE_LIMITED",
	})
}
