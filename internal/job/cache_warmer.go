package job

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"stockscope/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type SymbolSource interface {
	WatchedSymbols(ctx context.Context) ([]string, error)
}

type QuoteFetcher interface {
	GetQuote(ctx context.Context, symbol string) (*domain.Quote, error)
}

// CacheWarmer periodically requests quotes for every watched symbol so
// that user-facing reads are served from the provider cache.
type CacheWarmer struct {
	tracer       trace.Tracer
	symbols      SymbolSource
	quotes       QuoteFetcher
	pollInterval time.Duration
	runs         atomic.Int64
}

func NewCacheWarmer(tracer trace.Tracer, symbols SymbolSource, quotes QuoteFetcher, pollIntervalSecs int) *CacheWarmer {
	return &CacheWarmer{
		tracer:       tracer,
		symbols:      symbols,
		quotes:       quotes,
		pollInterval: time.Duration(pollIntervalSecs) * time.Second,
	}
}

// Enabled reports whether a positive poll interval was configured.
func (w *CacheWarmer) Enabled() bool { return w.pollInterval > 0 }

// Start warms immediately and then on every tick. Blocks until ctx is
// cancelled; returns at once when disabled.
func (w *CacheWarmer) Start(ctx context.Context) {
	if !w.Enabled() {
		log.Println("Cache warmer disabled")
		return
	}
	log.Printf("Cache warmer starting (every %s)", w.pollInterval)

	w.warm(ctx)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("Cache warmer stopped")
			return
		case <-ticker.C:
			w.warm(ctx)
		}
	}
}

// warm fetches one quote per watched symbol and returns how many succeeded.
func (w *CacheWarmer) warm(ctx context.Context) int {
	ctx, span := w.tracer.Start(ctx, "cache-warmer.warm")
	defer span.End()
	w.runs.Add(1)

	symbols, err := w.symbols.WatchedSymbols(ctx)
	if err != nil {
		log.Printf("cache warmer: list watched symbols: %v", err)
		return 0
	}

	ok := 0
	for _, symbol := range symbols {
		if ctx.Err() != nil {
			break
		}
		if _, err := w.quotes.GetQuote(ctx, symbol); err != nil {
			log.Printf("cache warmer: quote %s: %v", symbol, err)
			continue
		}
		ok++
	}
	span.SetAttributes(attribute.Int("symbols", len(symbols)), attribute.Int("warmed", ok))
	return ok
}
