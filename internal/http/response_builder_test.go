package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"kharcha/internal/core"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.InvalidArgument("bad"), http.StatusBadRequest},
		{fmt.Errorf("wrap: %w", core.ErrUnauthorized), http.StatusUnauthorized},
		{core.ErrNotFound, http.StatusNotFound},
		{core.NewStorageError("q", errors.New("disk")), http.StatusInternalServerError},
		{errors.New("anything"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	writeError(rec, req, core.NewStorageError("sum", errors.New("database is locked")))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := rec.Body.String(); body != "{\"error\":\"internal server error\"}\n" {
		t.Errorf("body = %q", body)
	}
}

func TestJSONResponseBuilder(t *testing.T) {
	rec := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusCreated).Header("Location", "/x/1").Body(map[string]int{"id": 1}).Write(rec)

	if rec.Code != http.StatusCreated || rec.Header().Get("Location") != "/x/1" {
		t.Errorf("unexpected response %d %v", rec.Code, rec.Header())
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Error("missing content type")
	}

	rec = httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).Write(rec)
	if rec.Body.Len() != 0 {
		t.Error("nil body should write nothing")
	}
}
