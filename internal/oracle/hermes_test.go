package oracle

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHermesClientQueryPrice(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.RawQuery
		w.Write([]byte(`[{"id":"abc123","price":{"price":"2374050000","conf":"1250000","expo":-8,"publish_time":1700000000}}]`))
	}))
	defer srv.Close()

	c := NewHermesClient(srv.URL, time.Millisecond, 0)
	p, err := c.QueryPrice(context.Background(), FeedRef("abc123"))
	if err != nil {
		t.Fatalf("QueryPrice error: %v", err)
	}

	if p.Mantissa != 2374050000 {
		t.Errorf("Mantissa = %d, want 2374050000", p.Mantissa)
	}
	if p.Expo != -8 {
		t.Errorf("Expo = %d, want -8", p.Expo)
	}
	if p.Conf != 1250000 {
		t.Errorf("Conf = %d, want 1250000", p.Conf)
	}
	if p.PublishTime != 1700000000 {
		t.Errorf("PublishTime = %d, want 1700000000", p.PublishTime)
	}
	if gotPath != "ids[]=abc123" && gotPath != "ids%5B%5D=abc123" {
		t.Errorf("query = %q, want ids[]=abc123", gotPath)
	}
}

func TestHermesClientNoSample(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewHermesClient(srv.URL, time.Millisecond, 0)
	if _, err := c.QueryPrice(context.Background(), FeedRef("missing")); !errors.Is(err, ErrNoPrice) {
		t.Errorf("QueryPrice error = %v, want ErrNoPrice", err)
	}
}

func TestHermesClientRetriesServerErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`[{"id":"abc","price":{"price":"100","conf":"1","expo":-6,"publish_time":1}}]`))
	}))
	defer srv.Close()

	c := NewHermesClient(srv.URL, time.Millisecond, 5)
	p, err := c.QueryPrice(context.Background(), FeedRef("abc"))
	if err != nil {
		t.Fatalf("QueryPrice error: %v", err)
	}
	if p.Mantissa != 100 {
		t.Errorf("Mantissa = %d, want 100", p.Mantissa)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestHermesClientDoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewHermesClient(srv.URL, time.Millisecond, 5)
	if _, err := c.QueryPrice(context.Background(), FeedRef("abc")); err == nil {
		t.Error("QueryPrice succeeded on HTTP 400")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (no retry on 4xx)", attempts)
	}
}

func TestHermesClientStubShortCircuit(t *testing.T) {
	// Stub refs never touch the network.
	c := NewHermesClient("http://127.0.0.1:0", time.Millisecond, 0)
	p, err := c.QueryPrice(context.Background(), StubRef(42, -6))
	if err != nil {
		t.Fatalf("QueryPrice error: %v", err)
	}
	if p.Mantissa != 42 || p.Expo != -6 {
		t.Errorf("stub price = {%d, %d}, want {42, -6}", p.Mantissa, p.Expo)
	}
}
