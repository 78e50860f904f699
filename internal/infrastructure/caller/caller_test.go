package caller

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nerrad567/hearth-core/internal/infrastructure/logging"
	"github.com/nerrad567/hearth-core/internal/trace"
)

// newTestClient builds a caller with short delays suitable for tests.
func newTestClient(retryDelay time.Duration) *Client {
	return &Client{
		http:       &http.Client{},
		accessKey:  "test-access-key",
		instanceID: "test-instance",
		timeout:    2 * time.Second,
		retryDelay: retryDelay,
		logger:     logging.Default(),
	}
}

// refusedAddr returns an address guaranteed to refuse connections.
func refusedAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserving port: %v", err)
	}
	addr := l.Addr().String()
	l.Close()
	return addr
}

func TestGetSendsAuthAndTraceHeaders(t *testing.T) {
	var gotKey, gotInstance, gotCall string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("Client-Access-Key")
		gotInstance = r.Header.Get(trace.HeaderInstance)
		gotCall = r.Header.Get(trace.HeaderCall)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"status":"ok"}}`))
	}))
	defer server.Close()

	client := newTestClient(time.Millisecond)

	ctx := trace.NewContext(context.Background(), trace.Trace{
		Instance: "test-instance",
		Call:     "call-42",
	})

	var out struct {
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := client.Get(ctx, server.URL, &out); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if out.Data.Status != "ok" {
		t.Errorf("decoded status = %q, want ok", out.Data.Status)
	}
	if gotKey != "test-access-key" {
		t.Errorf("Client-Access-Key = %q, want test-access-key", gotKey)
	}
	if gotInstance != "test-instance" {
		t.Errorf("%s = %q, want test-instance", trace.HeaderInstance, gotInstance)
	}
	if gotCall != "call-42" {
		t.Errorf("%s = %q, want propagated call-42", trace.HeaderCall, gotCall)
	}
}

func TestGetGeneratesCallIDWithoutTrace(t *testing.T) {
	var gotCall string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCall = r.Header.Get(trace.HeaderCall)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(time.Millisecond)
	if err := client.Get(context.Background(), server.URL, nil); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if gotCall == "" {
		t.Error("Call-Trace-ID missing on traceless call, want generated ID")
	}
}

func TestNon2xxIsTerminal(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(time.Millisecond)

	err := client.Get(context.Background(), server.URL, nil)
	if err == nil {
		t.Fatal("Get() = nil, want status error")
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error type = %T, want *StatusError", err)
	}
	if statusErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", statusErr.StatusCode)
	}
	if got := attempts.Load(); got != 1 {
		t.Errorf("attempts = %d, want exactly 1 (5xx is never retried)", got)
	}
}

func TestNoRetryReturnsRefusedSynchronously(t *testing.T) {
	client := newTestClient(time.Minute) // would stall the test if retried

	start := time.Now()
	err := client.Get(context.Background(), "http://"+refusedAddr(t), nil, NoRetry())
	if err == nil {
		t.Fatal("Get() = nil, want refused error")
	}
	if !errors.Is(err, ErrRefused) {
		t.Errorf("error = %v, want ErrRefused", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("no-retry call took %v, want synchronous failure", elapsed)
	}
}

func TestRefusedIsRetriedUntilPeerReturns(t *testing.T) {
	addr := refusedAddr(t)
	client := newTestClient(25 * time.Millisecond)

	// Bring the "restarting peer" up shortly after the first refusal.
	var served atomic.Int32
	go func() {
		time.Sleep(75 * time.Millisecond)
		l, err := net.Listen("tcp", addr)
		if err != nil {
			return
		}
		server := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			served.Add(1)
			_, _ = w.Write([]byte(`{"data":"hello"}`))
		})}
		go server.Serve(l) //nolint:errcheck // Closed via test end
		defer server.Close()
		time.Sleep(2 * time.Second)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var out struct {
		Data string `json:"data"`
	}
	if err := client.Get(ctx, "http://"+addr, &out); err != nil {
		t.Fatalf("Get() error = %v, want eventual success", err)
	}
	if out.Data != "hello" {
		t.Errorf("decoded body = %q, want hello", out.Data)
	}
	if served.Load() == 0 {
		t.Error("server never saw the retried request")
	}
}

func TestRetryWaitIsCancellable(t *testing.T) {
	client := newTestClient(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := client.Get(ctx, "http://"+refusedAddr(t), nil)
	if err == nil {
		t.Fatal("Get() = nil, want cancellation error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("cancelled call took %v, want prompt return", elapsed)
	}
}

func TestMalformedBodyIsTerminal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := newTestClient(time.Millisecond)

	var out map[string]any
	err := client.Get(context.Background(), server.URL, &out)
	if !errors.Is(err, ErrMalformedBody) {
		t.Errorf("error = %v, want ErrMalformedBody", err)
	}
}

func TestPutSendsJSONBody(t *testing.T) {
	var gotContentType string
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		buf := make([]byte, 256)
		n, _ := r.Body.Read(buf)
		gotBody = buf[:n]
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(time.Millisecond)

	in := map[string]string{"location": "Bedroom"}
	if err := client.Put(context.Background(), server.URL, in, nil); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotContentType)
	}
	if string(gotBody) != `{"location":"Bedroom"}` {
		t.Errorf("body = %s, want JSON-encoded input", gotBody)
	}
}
