package security

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func okHandler(t *testing.T, captured *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("unexpected read error: %v", err)
		}
		*captured = string(data)
		w.WriteHeader(http.StatusOK)
	})
}

func TestBodyLimitPassesSmallBodies(t *testing.T) {
	var captured string
	handler := BodyLimit{Max: 16}.Middleware(okHandler(t, &captured))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/preview/cart", strings.NewReader(`{"rows":[]}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if captured != `{"rows":[]}` {
		t.Fatalf("expected body to pass through, got %q", captured)
	}
}

func TestBodyLimitRejectsStreamedOversize(t *testing.T) {
	var captured string
	handler := BodyLimit{Max: 5}.Middleware(okHandler(t, &captured))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/preview/cart", strings.NewReader("excessive"))
	req.ContentLength = -1
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rr.Code)
	}
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "PAYLOAD_TOO_LARGE" {
		t.Fatalf("unexpected error code %q", body.Error.Code)
	}
	if captured != "" {
		t.Fatalf("handler should not run, saw %q", captured)
	}
}

func TestBodyLimitRejectsDeclaredLength(t *testing.T) {
	var captured string
	handler := BodyLimit{Max: 5}.Middleware(okHandler(t, &captured))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/preview/cart", strings.NewReader("tiny"))
	req.ContentLength = 100
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 for declared oversized body, got %d", rr.Code)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestBodyLimitReportsReadFailure(t *testing.T) {
	var captured string
	handler := BodyLimit{Max: 5}.Middleware(okHandler(t, &captured))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/preview/cart", failingReader{})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestBodyLimitDisabledWhenZero(t *testing.T) {
	var captured string
	handler := BodyLimit{}.Middleware(okHandler(t, &captured))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 1024)))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK || len(captured) != 1024 {
		t.Fatalf("expected passthrough, got %d with %d bytes", rr.Code, len(captured))
	}
}
