package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"kharcha/internal/core"
)

func TestOptionalDate(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    string
		wantErr bool
	}{
		{"absent", "", "", false},
		{"valid", "2025-01-31", "2025-01-31", false},
		{"padded", " 2025-01-31 ", "2025-01-31", false},
		{"bad month", "2025-13-01", "", true},
		{"not leap", "2023-02-29", "", true},
		{"words", "today", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := url.Values{}
			if tt.value != "" {
				q.Set("startDate", tt.value)
			}
			got, err := optionalDate(q, "startDate")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if statusFor(err) != http.StatusBadRequest {
					t.Errorf("status = %d", statusFor(err))
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if tt.want == "" && got != nil {
				t.Errorf("got %v, want nil", got)
			}
			if tt.want != "" && (got == nil || got.String() != tt.want) {
				t.Errorf("got %v, want %s", got, tt.want)
			}
		})
	}
}

func TestParseMonth(t *testing.T) {
	year, month, err := parseMonth(url.Values{"year": {"2024"}, "month": {"2"}})
	if err != nil || *year != 2024 || *month != 2 {
		t.Fatalf("parseMonth = %v, %v, %v", year, month, err)
	}

	year, month, err = parseMonth(url.Values{})
	if err != nil || year != nil || month != nil {
		t.Fatal("absent parameters should be nil")
	}

	if _, _, err := parseMonth(url.Values{"month": {"feb"}}); err == nil {
		t.Error("expected error for non-numeric month")
	}
}

func TestParseTransactionFilter(t *testing.T) {
	f, err := parseTransactionFilter(url.Values{"endDate": {"2025-01-31"}, "type": {"expense"}, "categoryId": {"4"}})
	if err != nil {
		t.Fatal(err)
	}
	if f.Range == nil || f.Range.Start.String() != "0001-01-01" || f.Range.End.String() != "2025-01-31" {
		t.Errorf("range = %+v", f.Range)
	}
	if f.Type != core.Expense || f.CategoryID != 4 {
		t.Errorf("filter = %+v", f)
	}

	f, err = parseTransactionFilter(url.Values{})
	if err != nil || f.Range != nil {
		t.Errorf("empty query should not filter by date: %+v %v", f, err)
	}

	if _, err := parseTransactionFilter(url.Values{"categoryId": {"-1"}}); err == nil {
		t.Error("expected error for negative category")
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"name":"x"}`, false},
		{"empty", ``, true},
		{"unknown field", `{"name":"x","other":1}`, true},
		{"trailing object", `{"name":"x"}{"name":"y"}`, true},
		{"malformed", `{"name":`, true},
		{"too large", `{"name":"` + strings.Repeat("a", maxBodyBytes) + `"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var p payload
			err := decodeJSON(httptest.NewRecorder(), r, &p)
			if tt.wantErr != (err != nil) {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && statusFor(err) != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", statusFor(err))
			}
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  Chai\x00 & snacks\n "); got != "Chai & snacks" {
		t.Errorf("sanitizeInput = %q", got)
	}
}
