package page

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetchSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "Mozilla") {
			t.Errorf("User-Agent = %q, want browser-like agent", ua)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body>hello</body></html>"))
	}))
	defer server.Close()

	f := NewFetcher(5 * time.Second)
	body, fetchErr := f.Fetch(context.Background(), server.URL)
	if fetchErr != nil {
		t.Fatalf("Fetch error: %v", fetchErr)
	}
	if !strings.Contains(body, "hello") {
		t.Errorf("body = %q", body)
	}
}

func TestFetchStatusClassification(t *testing.T) {
	tests := []struct {
		status          int
		wantRecoverable bool
	}{
		{http.StatusNotFound, false},
		{http.StatusForbidden, false},
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusBadGateway, true},
	}

	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))

		f := NewFetcher(5 * time.Second)
		_, fetchErr := f.Fetch(context.Background(), server.URL)
		server.Close()

		if fetchErr == nil {
			t.Errorf("status %d: expected error", tt.status)
			continue
		}
		if fetchErr.Recoverable != tt.wantRecoverable {
			t.Errorf("status %d: recoverable = %v, want %v", tt.status, fetchErr.Recoverable, tt.wantRecoverable)
		}
		if fetchErr.StatusCode != tt.status {
			t.Errorf("status %d: StatusCode = %d", tt.status, fetchErr.StatusCode)
		}
	}
}

func TestFetchTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	f := NewFetcher(50 * time.Millisecond)
	_, fetchErr := f.Fetch(context.Background(), server.URL)
	if fetchErr == nil {
		t.Fatal("expected timeout error")
	}
	if fetchErr.Message != "Request timed out" {
		t.Errorf("Message = %q, want timeout classification", fetchErr.Message)
	}
	if !fetchErr.Recoverable {
		t.Error("timeouts must be recoverable")
	}
}

func TestFetchCharsetDecoding(t *testing.T) {
	// ISO-8859-1 body: "café" with 0xE9 for é.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		w.Write([]byte{'c', 'a', 'f', 0xE9})
	}))
	defer server.Close()

	f := NewFetcher(5 * time.Second)
	body, fetchErr := f.Fetch(context.Background(), server.URL)
	if fetchErr != nil {
		t.Fatalf("Fetch error: %v", fetchErr)
	}
	if body != "café" {
		t.Errorf("body = %q, want decoded UTF-8", body)
	}
}

func TestRecoverableStatus(t *testing.T) {
	for code, want := range map[int]bool{
		400: false, 401: false, 404: false, 410: false,
		429: true, 500: true, 503: true, 599: true,
	} {
		if got := RecoverableStatus(code); got != want {
			t.Errorf("RecoverableStatus(%d) = %v, want %v", code, got, want)
		}
	}
}
