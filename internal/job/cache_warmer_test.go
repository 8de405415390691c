package job

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"stockscope/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

type stubSymbols struct {
	symbols []string
	err     error
}

func (s *stubSymbols) WatchedSymbols(ctx context.Context) ([]string, error) {
	return s.symbols, s.err
}

type stubQuotes struct {
	mu      sync.Mutex
	fetched []string
	failOn  string
}

func (s *stubQuotes) GetQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetched = append(s.fetched, symbol)
	if symbol == s.failOn {
		return nil, errors.New("rate limited")
	}
	return &domain.Quote{Symbol: symbol}, nil
}

func (s *stubQuotes) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fetched)
}

func TestNewCacheWarmerInterval(t *testing.T) {
	w := NewCacheWarmer(testTracer, &stubSymbols{}, &stubQuotes{}, 2)
	if w.pollInterval != 2*time.Second || !w.Enabled() {
		t.Fatalf("expected 2s interval, got %v", w.pollInterval)
	}
	if NewCacheWarmer(testTracer, &stubSymbols{}, &stubQuotes{}, 0).Enabled() {
		t.Fatal("zero interval should disable the warmer")
	}
}

func TestCacheWarmerWarm(t *testing.T) {
	quotes := &stubQuotes{failOn: "MSFT"}
	w := NewCacheWarmer(testTracer, &stubSymbols{symbols: []string{"AAPL", "MSFT", "TSLA"}}, quotes, 60)

	if got := w.warm(context.Background()); got != 2 {
		t.Fatalf("expected 2 warmed quotes, got %d", got)
	}
	if quotes.count() != 3 {
		t.Fatalf("a failed symbol must not stop the run, fetched %v", quotes.fetched)
	}
}

func TestCacheWarmerSymbolError(t *testing.T) {
	quotes := &stubQuotes{}
	w := NewCacheWarmer(testTracer, &stubSymbols{err: errors.New("db down")}, quotes, 60)

	if got := w.warm(context.Background()); got != 0 {
		t.Fatalf("expected nothing warmed, got %d", got)
	}
	if quotes.count() != 0 {
		t.Fatal("no quotes should be fetched without symbols")
	}
}

func TestCacheWarmerStart(t *testing.T) {
	t.Parallel()

	quotes := &stubQuotes{}
	w := NewCacheWarmer(testTracer, &stubSymbols{symbols: []string{"AAPL"}}, quotes, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	eventually(t, func() bool { return quotes.count() > 0 })
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("warmer did not stop after cancel")
	}
}

func TestCacheWarmerStartDisabledReturns(t *testing.T) {
	w := NewCacheWarmer(testTracer, &stubSymbols{symbols: []string{"AAPL"}}, &stubQuotes{}, 0)
	w.Start(context.Background())
	if w.runs.Load() != 0 {
		t.Fatal("disabled warmer must not run")
	}
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met")
}
