package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jcolasacco/folio/pkg/errors"
)

func init() {
	backoffDelay = time.Millisecond
}

func TestClientFetch(t *testing.T) {
	var gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("User-Agent")
		w.Write([]byte("0123456789"))
	}))
	defer server.Close()

	client := NewClient(map[string]string{"User-Agent": "folio-test"}).WithHTTPClient(server.Client())

	tests := []struct {
		name  string
		limit int64
		want  string
	}{
		{"whole body", 0, "0123456789"},
		{"limited", 4, "0123"},
		{"limit beyond body", 100, "0123456789"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := client.Fetch(context.Background(), server.URL, tt.limit)
			if err != nil {
				t.Fatalf("Fetch() error: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("Fetch() = %q, want %q", data, tt.want)
			}
		})
	}

	if gotHeader != "folio-test" {
		t.Errorf("User-Agent = %q, want folio-test", gotHeader)
	}
}

func TestClientStatusCodes(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantCode errors.Code
		wantHits int32
	}{
		{"not found", http.StatusNotFound, errors.ErrCodeNotFound, 1},
		{"forbidden", http.StatusForbidden, errors.ErrCodeNetwork, 1},
		{"server error retried", http.StatusBadGateway, errors.ErrCodeNetwork, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := NewClient(nil).WithHTTPClient(server.Client())
			_, err := client.Fetch(context.Background(), server.URL, 0)
			if err == nil {
				t.Fatal("expected error")
			}
			if code := errors.GetCode(err); code != tt.wantCode {
				t.Errorf("code = %s, want %s", code, tt.wantCode)
			}
			if got := hits.Load(); got != tt.wantHits {
				t.Errorf("requests = %d, want %d", got, tt.wantHits)
			}
		})
	}
}

func TestClientRecoversAfterTransientFailure(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := NewClient(nil).WithHTTPClient(server.Client())
	data, err := client.Fetch(context.Background(), server.URL, 0)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if string(data) != "ok" {
		t.Errorf("Fetch() = %q, want ok", data)
	}
}

func TestClientRejectsBadURL(t *testing.T) {
	_, err := NewClient(nil).Open(context.Background(), "ftp://example.com/a.jpg")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Open() error = %v, want INVALID_INPUT", err)
	}
}

func TestRetry(t *testing.T) {
	t.Run("non-retryable returns immediately", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), 5, time.Millisecond, func() error {
			calls++
			return errors.New(errors.ErrCodeInvalidInput, "bad")
		})
		if err == nil || calls != 1 {
			t.Errorf("calls = %d, err = %v", calls, err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := Retry(ctx, 3, time.Hour, func() error {
			return &RetryableError{Err: errors.New(errors.ErrCodeNetwork, "down")}
		})
		if err != context.Canceled {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	})

	t.Run("exhausted", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), 3, time.Millisecond, func() error {
			calls++
			return &RetryableError{Err: errors.New(errors.ErrCodeNetwork, "down")}
		})
		if calls != 3 || !strings.Contains(err.Error(), "down") {
			t.Errorf("calls = %d, err = %v", calls, err)
		}
	})
}
