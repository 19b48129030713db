package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"carteira/internal/core"
)

func TestParseMonthParams(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		query     url.Values
		wantYear  int
		wantMonth time.Month
		wantErr   bool
	}{
		{
			name:      "both values provided",
			query:     url.Values{"year": {"2024"}, "month": {"12"}},
			wantYear:  2024,
			wantMonth: time.December,
		},
		{
			name:      "only year",
			query:     url.Values{"year": {"2023"}},
			wantYear:  2023,
			wantMonth: time.March,
		},
		{
			name:      "only month",
			query:     url.Values{"month": {"5"}},
			wantYear:  2025,
			wantMonth: time.May,
		},
		{
			name:      "defaults",
			query:     url.Values{},
			wantYear:  2025,
			wantMonth: time.March,
		},
		{name: "month out of range", query: url.Values{"month": {"13"}}, wantErr: true},
		{name: "month not a number", query: url.Values{"month": {"mar"}}, wantErr: true},
		{name: "year too small", query: url.Values{"year": {"99"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMonthParams(tt.query, now)
			if tt.wantErr {
				if !errors.Is(err, errBadRequest) {
					t.Fatalf("error = %v, want bad request", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMonthParams() error = %v", err)
			}
			if got.Year != tt.wantYear || got.Month != tt.wantMonth {
				t.Errorf("got %d-%02d, want %d-%02d", got.Year, got.Month, tt.wantYear, tt.wantMonth)
			}
		})
	}
}

func TestPathID(t *testing.T) {
	tests := []struct {
		value   string
		want    int64
		wantErr bool
	}{
		{"42", 42, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/cards/x", nil)
			req.SetPathValue("id", tt.value)

			got, err := pathID(req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("pathID() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("pathID() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{name: "valid", body: `{"name":"Nubank"}`, want: "Nubank"},
		{name: "empty body", body: ``, wantErr: true},
		{name: "unknown field", body: `{"name":"x","extra":1}`, wantErr: true},
		{name: "trailing data", body: `{"name":"x"}{"name":"y"}`, wantErr: true},
		{name: "malformed", body: `{"name":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var p payload
			err := decodeJSON(httptest.NewRecorder(), req, &p)
			if tt.wantErr {
				if !errors.Is(err, errBadRequest) {
					t.Fatalf("error = %v, want bad request", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeJSON() error = %v", err)
			}
			if p.Name != tt.want {
				t.Errorf("Name = %q, want %q", p.Name, tt.want)
			}
		})
	}
}

func TestDecodeJSONAmounts(t *testing.T) {
	body := `{"name":"Inter","credit_limit":"1.500,00","credit_thresholds":{"alert":"30,5","critical":10,"positive":"abc"},"note":"12,5"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

	var p struct {
		Name        string          `json:"name"`
		CreditLimit decimal.Decimal `json:"credit_limit"`
		Thresholds  core.Thresholds `json:"credit_thresholds"`
		Note        string          `json:"note"`
	}
	if err := decodeJSON(httptest.NewRecorder(), req, &p); err != nil {
		t.Fatalf("decodeJSON() error = %v", err)
	}

	for _, tc := range []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"credit_limit", p.CreditLimit, "1.5"},
		{"alert", p.Thresholds.Alert, "30.5"},
		{"critical", p.Thresholds.Critical, "10"},
		{"positive", p.Thresholds.Positive, "0"},
	} {
		if !tc.got.Equal(decimal.RequireFromString(tc.want)) {
			t.Errorf("%s = %s, want %s", tc.name, tc.got, tc.want)
		}
	}
	if p.Note != "12,5" {
		t.Errorf("non-amount string changed: %q", p.Note)
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Mercado  ", "Mercado"},
		{"a\x00b\x07c", "abc"},
		{"linha\nnova", "linha\nnova"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
