package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewLimitedTransportDisabled(t *testing.T) {
	base := &http.Transport{}

	for _, rps := range []float64{0, -1} {
		if got := NewLimitedTransport(base, rps); got != base {
			t.Errorf("NewLimitedTransport(base, %v) wrapped the transport", rps)
		}
	}
}

func TestLimitedTransportPacesRequests(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	client := NewClient(NewLimitedTransport(server.Client().Transport, 20), time.Second)

	start := time.Now()
	for i := 0; i < 3; i++ {
		resp, err := client.Get(server.URL)
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		resp.Body.Close()
	}

	if hits.Load() != 3 {
		t.Errorf("server saw %d requests, want 3", hits.Load())
	}
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Errorf("3 requests at 20/s took %v, want at least 100ms", elapsed)
	}
}

func TestLimitedTransportHonorsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	transport := NewLimitedTransport(server.Client().Transport, 0.001)
	client := &http.Client{Transport: transport}

	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatalf("first Get() error: %v", err)
	}
	resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)

	_, err = client.Do(req)
	if err == nil {
		t.Fatal("second request went through without a token")
	}
}
