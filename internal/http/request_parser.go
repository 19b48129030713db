package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"carteira/internal/core"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// MonthParams holds parsed year/month values from request parameters.
type MonthParams struct {
	Year  int
	Month time.Month
}

// ParseMonthParams extracts year and month from query parameters, using now
// as the default. Present but malformed values are rejected.
func ParseMonthParams(query url.Values, now time.Time) (MonthParams, error) {
	year, err := ParseYear(query, now)
	if err != nil {
		return MonthParams{}, err
	}
	params := MonthParams{Year: year, Month: now.Month()}

	if v := strings.TrimSpace(query.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return MonthParams{}, badRequest("invalid month %q", v)
		}
		params.Month = time.Month(m)
	}
	return params, nil
}

// ParseYear extracts the year query parameter, defaulting to now.
func ParseYear(query url.Values, now time.Time) (int, error) {
	v := strings.TrimSpace(query.Get("year"))
	if v == "" {
		return now.Year(), nil
	}
	y, err := strconv.Atoi(v)
	if err != nil || y < 1900 || y > 9999 {
		return 0, badRequest("invalid year %q", v)
	}
	return y, nil
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (int64, error) {
	v := r.PathValue("id")
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("invalid id %q", v)
	}
	return id, nil
}

// amountFields are the JSON keys holding money. Their string values are
// read with core.ToNumber, so "1234,56" is accepted wherever a number is.
var amountFields = map[string]bool{
	"amount":         true,
	"credit_limit":   true,
	"target_amount":  true,
	"current_amount": true,
	"alert":          true,
	"critical":       true,
	"positive":       true,
}

// decodeJSON reads one JSON value from the body into v, normalizing
// amounts first. Unknown fields and trailing data are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("empty request body")
		}
		return badRequest("malformed JSON: %v", err)
	}
	if dec.More() {
		return badRequest("unexpected data after JSON body")
	}

	body, err := json.Marshal(normalizeAmounts(raw))
	if err != nil {
		return badRequest("malformed JSON: %v", err)
	}
	strict := json.NewDecoder(bytes.NewReader(body))
	strict.DisallowUnknownFields()
	if err := strict.Decode(v); err != nil {
		return badRequest("malformed JSON: %v", err)
	}
	return nil
}

// normalizeAmounts rewrites string amounts in v, at any depth, as JSON numbers.
func normalizeAmounts(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, val := range x {
			if s, ok := val.(string); ok && amountFields[k] {
				x[k] = json.Number(core.ToNumber(s).String())
				continue
			}
			x[k] = normalizeAmounts(val)
		}
	case []any:
		for i := range x {
			x[i] = normalizeAmounts(x[i])
		}
	}
	return v
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
