package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/caravel-cli/caravel/pkg/cache"
)

func TestGetBytesCaches(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("<project/>"))
	}))
	defer server.Close()

	c := NewClient(cache.NewMemoryCache(), time.Hour)
	ctx := context.Background()

	for range 3 {
		data, err := c.GetBytes(ctx, server.URL+"/a.pom", false)
		if err != nil {
			t.Fatalf("GetBytes() error: %v", err)
		}
		if string(data) != "<project/>" {
			t.Errorf("GetBytes() = %q", data)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("expected 1 origin request, got %d", hits.Load())
	}
}

func TestGetBytesRefreshBypassesCache(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("x"))
	}))
	defer server.Close()

	c := NewClient(cache.NewMemoryCache(), time.Hour)
	ctx := context.Background()

	_, _ = c.GetBytes(ctx, server.URL, false)
	_, _ = c.GetBytes(ctx, server.URL, true)
	if hits.Load() != 2 {
		t.Errorf("expected 2 origin requests, got %d", hits.Load())
	}
}

func TestGetBytesNotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	c := NewClient(nil, 0)
	_, err := c.GetBytes(context.Background(), server.URL+"/missing.pom", false)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetBytesRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	c := NewClient(nil, 0)
	data, err := c.GetBytes(context.Background(), server.URL, false)
	if err != nil {
		t.Fatalf("GetBytes() error: %v", err)
	}
	if string(data) != "ok" {
		t.Errorf("GetBytes() = %q", data)
	}
	if hits.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", hits.Load())
	}
}

func TestExists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/present.pom" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	c := NewClient(nil, 0)
	ctx := context.Background()

	ok, err := c.Exists(ctx, server.URL+"/present.pom")
	if err != nil || !ok {
		t.Errorf("Exists(present) = %v, %v", ok, err)
	}
	ok, err = c.Exists(ctx, server.URL+"/absent.pom")
	if err != nil || ok {
		t.Errorf("Exists(absent) = %v, %v", ok, err)
	}
}

func TestExistsFallsBackToGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := NewClient(nil, 0)
	ok, err := c.Exists(context.Background(), server.URL+"/a.pom")
	if err != nil || !ok {
		t.Errorf("Exists() = %v, %v; want true via GET fallback", ok, err)
	}
}

func TestGetXML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<metadata><versioning><latest>2.0</latest></versioning></metadata>`))
	}))
	defer server.Close()

	var meta struct {
		Latest string `xml:"versioning>latest"`
	}
	c := NewClient(nil, 0)
	if err := c.GetXML(context.Background(), server.URL, false, &meta); err != nil {
		t.Fatalf("GetXML() error: %v", err)
	}
	if meta.Latest != "2.0" {
		t.Errorf("Latest = %q, want 2.0", meta.Latest)
	}
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return errors.New("permanent")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("permanent errors should not retry; calls = %d", calls)
	}
}

func TestRetryHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, 3, time.Minute, func() error {
		return Retryable(errors.New("transient"))
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
