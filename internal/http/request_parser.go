package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"kharcha/internal/core"
)

const maxBodyBytes = 64 << 10

var (
	rangeFloor   = core.NewDate(1, 1, 1)
	rangeCeiling = core.NewDate(9999, 12, 31)
)

// optionalDate parses key as YYYY-MM-DD. Absent yields nil; malformed is an invalid argument.
func optionalDate(q url.Values, key string) (*core.Date, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return nil, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return nil, core.InvalidArgument("%s must be YYYY-MM-DD", key)
	}
	return &d, nil
}

// optionalInt parses key as a base-10 integer. Absent yields nil.
func optionalInt(q url.Values, key string) (*int, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, core.InvalidArgument("%s must be an integer", key)
	}
	return &n, nil
}

// parseDateRange reads startDate/endDate for the summary endpoint.
func parseDateRange(q url.Values) (start, end *core.Date, err error) {
	if start, err = optionalDate(q, "startDate"); err != nil {
		return nil, nil, err
	}
	if end, err = optionalDate(q, "endDate"); err != nil {
		return nil, nil, err
	}
	return start, end, nil
}

// parseMonth reads year/month for the monthly summary endpoint.
func parseMonth(q url.Values) (year, month *int, err error) {
	if year, err = optionalInt(q, "year"); err != nil {
		return nil, nil, err
	}
	if month, err = optionalInt(q, "month"); err != nil {
		return nil, nil, err
	}
	return year, month, nil
}

// parseTransactionFilter reads the transaction list filters. A single bound leaves the other side open.
func parseTransactionFilter(q url.Values) (core.TransactionFilter, error) {
	var f core.TransactionFilter

	start, end, err := parseDateRange(q)
	if err != nil {
		return f, err
	}
	if start != nil || end != nil {
		rng := core.DateRange{Start: rangeFloor, End: rangeCeiling}
		if start != nil {
			rng.Start = *start
		}
		if end != nil {
			rng.End = *end
		}
		f.Range = &rng
	}

	f.Type = core.TransactionType(strings.TrimSpace(q.Get("type")))
	f.PaymentMode = core.PaymentMode(strings.TrimSpace(q.Get("paymentMode")))

	if v := strings.TrimSpace(q.Get("categoryId")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return f, core.InvalidArgument("categoryId must be a positive integer")
		}
		f.CategoryID = id
	}
	return f, nil
}

func parseCategoryFilter(q url.Values) core.CategoryFilter {
	return core.CategoryFilter{
		Group: core.CategoryGroup(strings.TrimSpace(q.Get("group"))),
		Type:  core.CategoryType(strings.TrimSpace(q.Get("type"))),
	}
}

// pathID reads a positive integer path value.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, core.InvalidArgument("%s must be a positive integer", name)
	}
	return id, nil
}

// decodeJSON reads a single JSON object into dst, rejecting unknown fields and oversized bodies.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return core.InvalidArgument("request body is empty")
		case errors.As(err, &maxErr):
			return core.InvalidArgument("request body exceeds %d bytes", maxBodyBytes)
		case errors.Is(err, core.ErrInvalidArgument):
			return err
		default:
			return core.InvalidArgument("malformed JSON: %v", err)
		}
	}
	if dec.More() {
		return core.InvalidArgument("request body must be a single JSON object")
	}
	return nil
}

// sanitizeInput drops control characters other than tab and newlines, then trims.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s))
}
