package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"stockscope/internal/cache"
	"stockscope/internal/domain"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultTimeout = 10 * time.Second

// Client fetches quotes, daily series and profiles from one Source, serving
// repeat requests from a cache.Store while entries are younger than the TTL.
// All failures are returned as *Error.
type Client struct {
	http    *resty.Client
	source  Source
	apiKey  string
	store   cache.Store
	ttl     time.Duration
	now     func() time.Time
	limiter *RateLimiter
	tracer  trace.Tracer
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.SetTimeout(d)
		}
	}
}

// WithTransport swaps the HTTP transport, mainly for tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.http.SetTransport(rt)
	}
}

func WithLimiter(l *RateLimiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithClock overrides the time source used for cache validity checks.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

func WithTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.ttl = ttl
	}
}

func NewClient(tracer trace.Tracer, source Source, apiKey string, store cache.Store, opts ...Option) *Client {
	hc := resty.New().
		SetTimeout(defaultTimeout).
		SetHeader("Accept", "application/json")

	c := &Client{
		http:   hc,
		source: source,
		apiKey: apiKey,
		store:  store,
		ttl:    cache.TTL,
		now:    time.Now,
		tracer: tracer,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SourceName reports which provider family the client talks to.
func (c *Client) SourceName() string { return c.source.Name() }

func (c *Client) FetchQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	return fetchCached(ctx, c, cache.KindQuote, symbol, c.source.ParseQuote)
}

func (c *Client) FetchDailySeries(ctx context.Context, symbol string) (domain.PriceSeries, error) {
	return fetchCached(ctx, c, cache.KindDaily, symbol, c.source.ParseSeries)
}

func (c *Client) FetchProfile(ctx context.Context, symbol string) (*domain.CompanyProfile, error) {
	return fetchCached(ctx, c, cache.KindProfile, symbol, c.source.ParseProfile)
}

func fetchCached[T any](ctx context.Context, c *Client, kind cache.Kind, symbol string, parse func(string, any) (T, error)) (T, error) {
	ctx, span := c.tracer.Start(ctx, "provider.fetch-"+string(kind))
	defer span.End()
	span.SetAttributes(
		attribute.String("provider", c.source.Name()),
		attribute.String("symbol", symbol),
	)

	var zero T
	key := cache.Key{Kind: kind, Symbol: symbol}

	if cached, ok := c.readCache(ctx, key); ok {
		var out T
		err := json.Unmarshal(cached, &out)
		if err == nil {
			span.SetAttributes(attribute.Bool("cache_hit", true))
			return out, nil
		}
		log.Printf("discarding undecodable cache entry %s: %v", key, err)
	}
	span.SetAttributes(attribute.Bool("cache_hit", false))

	body, err := c.get(ctx, kind, symbol)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return zero, err
	}

	if perr := classify(symbol, body); perr != nil {
		span.SetStatus(codes.Error, perr.Error())
		return zero, perr
	}

	out, err := parse(symbol, body)
	if err != nil {
		var perr *Error
		if errors.As(err, &perr) && perr.Kind == KindUnexpectedShape {
			if text, ok := providerMessage(body); ok {
				perr.Message += " (provider said: " + text + ")"
			}
		}
		span.SetStatus(codes.Error, err.Error())
		return zero, err
	}

	c.writeCache(ctx, key, out)
	return out, nil
}

func (c *Client) readCache(ctx context.Context, key cache.Key) ([]byte, bool) {
	if c.store == nil {
		return nil, false
	}
	entry, err := c.store.Get(ctx, key)
	if err != nil {
		log.Printf("cache read error for %s: %v", key, err)
		return nil, false
	}
	if !cache.IsValid(entry, c.now(), c.ttl) {
		return nil, false
	}
	return entry.Payload, true
}

func (c *Client) writeCache(ctx context.Context, key cache.Key, v any) {
	if c.store == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("cache encode error for %s: %v", key, err)
		return
	}
	if err := c.store.Put(ctx, key, data); err != nil {
		log.Printf("cache write error for %s: %v", key, err)
	}
}

// get performs the single upstream call for a resource and decodes the body.
// Failure statuses are network failures unless the body itself signals a
// rate limit.
func (c *Client) get(ctx context.Context, kind cache.Kind, symbol string) (any, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, networkFailure(symbol, "rate limit wait", err)
	}

	endpoint := c.source.Endpoint(kind, symbol)
	resp, err := c.http.R().
		SetContext(ctx).
		Get(withAPIKey(endpoint, c.apiKey))
	if err != nil {
		return nil, networkFailure(symbol, fmt.Sprintf("failed to fetch %s data", kind), err)
	}

	if resp.IsError() {
		if resp.StatusCode() == http.StatusTooManyRequests {
			return nil, rateLimited(symbol, resp.Status())
		}
		if body, derr := decodeBody(symbol, resp.Body()); derr == nil {
			if perr := classify(symbol, body); perr != nil && perr.Kind == KindRateLimited {
				return nil, perr
			}
		}
		return nil, networkFailure(symbol,
			fmt.Sprintf("%s API error %d: %s", c.source.Name(), resp.StatusCode(), resp.String()), nil)
	}

	return decodeBody(symbol, resp.Body())
}
