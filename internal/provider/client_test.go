package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"stockscope/internal/cache"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// upstream is a scripted provider that records every request it serves.
type upstream struct {
	mu       sync.Mutex
	status   int
	body     string
	err      error
	requests []*http.Request
}

func (u *upstream) RoundTrip(req *http.Request) (*http.Response, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.requests = append(u.requests, req)
	if u.err != nil {
		return nil, u.err
	}
	status := u.status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(bytes.NewReader([]byte(u.body))),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Request:    req,
	}, nil
}

func (u *upstream) calls() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.requests)
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestClient(t *testing.T, source Source, up *upstream, clock *fakeClock) (*Client, *cache.MemoryStore) {
	t.Helper()
	store := cache.NewMemoryStore(cache.WithClock(clock.Now))
	c := NewClient(testTracer, source, "secret", store,
		WithTransport(up),
		WithClock(clock.Now),
	)
	return c, store
}

const fmpQuoteBody = `[{"symbol":"AAPL","price":189.25,"changesPercentage":1.23456,"change":2.31,
	"dayLow":187.1,"dayHigh":190.05,"open":188,"previousClose":186.94,"volume":51234567,"timestamp":1704412800}]`

func TestFetchQuoteCachesWithinTTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	up := &upstream{body: fmpQuoteBody}
	c, store := newTestClient(t, NewFMPSource("http://fmp.test/api/v3"), up, clock)
	ctx := context.Background()

	first, err := c.FetchQuote(ctx, "AAPL")
	require.NoError(t, err)
	require.Equal(t, 1, up.calls())
	require.Equal(t, 1, store.Len())

	clock.t = clock.t.Add(cache.TTL - time.Second)
	second, err := c.FetchQuote(ctx, "AAPL")
	require.NoError(t, err)
	require.Equal(t, 1, up.calls(), "second fetch within TTL must not hit upstream")

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	require.Equal(t, string(a), string(b))

	clock.t = clock.t.Add(2 * time.Second)
	_, err = c.FetchQuote(ctx, "AAPL")
	require.NoError(t, err)
	require.Equal(t, 2, up.calls(), "fetch after TTL must refresh")
}

func TestFetchQuoteAppendsAPIKey(t *testing.T) {
	clock := &fakeClock{t: time.Now()}

	up := &upstream{body: fmpQuoteBody}
	c, _ := newTestClient(t, NewFMPSource("http://fmp.test/api/v3"), up, clock)
	_, err := c.FetchQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Equal(t, "/api/v3/quote/AAPL", up.requests[0].URL.Path)
	require.Equal(t, "secret", up.requests[0].URL.Query().Get("apikey"))

	avUp := &upstream{body: `{"Global Quote":{"01. symbol":"IBM","05. price":"180.00"}}`}
	av, _ := newTestClient(t, NewAlphaVantageSource("http://av.test/query"), avUp, clock)
	_, err = av.FetchQuote(context.Background(), "IBM")
	require.NoError(t, err)
	q := avUp.requests[0].URL.Query()
	require.Equal(t, "GLOBAL_QUOTE", q.Get("function"))
	require.Equal(t, "IBM", q.Get("symbol"))
	require.Equal(t, "secret", q.Get("apikey"))
}

func TestFetchRateLimitedIsNotCached(t *testing.T) {
	bodies := []string{
		`{"message": "limit exceeded, please upgrade"}`,
		`[]`,
		`{"Error Message": "Limit Reach . Please upgrade your plan"}`,
		`{"Note": "Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute."}`,
	}
	for _, body := range bodies {
		clock := &fakeClock{t: time.Now()}
		up := &upstream{body: body}
		c, store := newTestClient(t, NewFMPSource("http://fmp.test"), up, clock)

		_, err := c.FetchQuote(context.Background(), "AAPL")
		require.Error(t, err, body)
		kind, ok := KindOf(err)
		require.True(t, ok)
		require.Equalf(t, KindRateLimited, kind, "body %s", body)
		require.Contains(t, err.Error(), "try again later")
		require.Equal(t, 0, store.Len(), "rate-limited responses must not be cached")
	}
}

func TestFetchUpstreamError(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	up := &upstream{body: `{"Error Message": "Invalid API call. Please retry or visit the documentation for TIME_SERIES_DAILY."}`}
	c, store := newTestClient(t, NewAlphaVantageSource("http://av.test/query"), up, clock)

	_, err := c.FetchDailySeries(context.Background(), "NOPE")
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, KindUpstream, kind)
	require.Contains(t, err.Error(), "Invalid API call")
	require.Equal(t, 0, store.Len())
}

func TestFetchUnexpectedShape(t *testing.T) {
	tests := map[string]string{
		"quote without symbol": `[{"price": 1}]`,
		"not json":             `<html>oops</html>`,
		"object":               `{"foo": "bar"}`,
	}
	for name, body := range tests {
		clock := &fakeClock{t: time.Now()}
		up := &upstream{body: body}
		c, store := newTestClient(t, NewFMPSource("http://fmp.test"), up, clock)

		_, err := c.FetchQuote(context.Background(), "AAPL")
		kind, ok := KindOf(err)
		require.Truef(t, ok, "%s: expected provider error, got %v", name, err)
		require.Equalf(t, KindUnexpectedShape, kind, name)
		require.Equal(t, 0, store.Len())
	}
}

func TestFetchNetworkFailures(t *testing.T) {
	clock := &fakeClock{t: time.Now()}

	up := &upstream{err: errors.New("dial tcp: connection refused")}
	c, _ := newTestClient(t, NewFMPSource("http://fmp.test"), up, clock)
	_, err := c.FetchProfile(context.Background(), "AAPL")
	kind, _ := KindOf(err)
	require.Equal(t, KindNetwork, kind)
	require.Contains(t, err.Error(), "connection refused")

	up = &upstream{status: http.StatusInternalServerError, body: `internal`}
	c, _ = newTestClient(t, NewFMPSource("http://fmp.test"), up, clock)
	_, err = c.FetchProfile(context.Background(), "AAPL")
	kind, _ = KindOf(err)
	require.Equal(t, KindNetwork, kind)
	require.Contains(t, err.Error(), "500")
}

func TestFetchFailureStatusWithRateLimitBody(t *testing.T) {
	clock := &fakeClock{t: time.Now()}

	up := &upstream{status: http.StatusForbidden, body: `{"Error Message":"Limit Reach. Please upgrade your plan"}`}
	c, _ := newTestClient(t, NewFMPSource("http://fmp.test"), up, clock)
	_, err := c.FetchQuote(context.Background(), "AAPL")
	kind, _ := KindOf(err)
	require.Equal(t, KindRateLimited, kind)

	up = &upstream{status: http.StatusTooManyRequests, body: ``}
	c, _ = newTestClient(t, NewFMPSource("http://fmp.test"), up, clock)
	_, err = c.FetchQuote(context.Background(), "AAPL")
	kind, _ = KindOf(err)
	require.Equal(t, KindRateLimited, kind)
}

func TestFetchTimeoutIsNetworkFailure(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	store := cache.NewMemoryStore()
	slow := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		<-req.Context().Done()
		return nil, req.Context().Err()
	})
	c := NewClient(testTracer, NewFMPSource("http://fmp.test"), "k", store,
		WithTransport(slow),
		WithTimeout(20*time.Millisecond),
		WithClock(clock.Now),
	)

	start := time.Now()
	_, err := c.FetchQuote(context.Background(), "AAPL")
	require.Less(t, time.Since(start), 2*time.Second)
	kind, _ := KindOf(err)
	require.Equal(t, KindNetwork, kind)
}

func TestFetchDailySeriesSkipsMalformedRows(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	up := &upstream{body: `{"symbol":"AAPL","historical":[
		{"date":"2024-01-05","open":181.9,"high":182.7,"low":180.1,"close":181.2,"volume":62303300},
		{"date":"2024-01-04","open":182.1,"high":183.0,"low":180.8,"volume":71983600},
		{"date":"2024-01-03","open":184.2,"high":185.8,"low":183.4,"close":"184.25","volume":"58414500"}
	]}`}
	c, _ := newTestClient(t, NewFMPSource("http://fmp.test"), up, clock)

	series, err := c.FetchDailySeries(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Len(t, series, 2)
	require.Equal(t, "2024-01-05", series[0].Date)
	require.Equal(t, "2024-01-03", series[1].Date)
	require.Equal(t, 184.25, series[1].Close)
	require.Equal(t, int64(58414500), series[1].Volume)
}

func TestFetchWithoutStore(t *testing.T) {
	up := &upstream{body: fmpQuoteBody}
	c := NewClient(testTracer, NewFMPSource("http://fmp.test"), "k", nil, WithTransport(up))

	for i := 0; i < 2; i++ {
		_, err := c.FetchQuote(context.Background(), "AAPL")
		require.NoError(t, err)
	}
	require.Equal(t, 2, up.calls())
}

func TestCorruptCacheEntryFallsBackToUpstream(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	up := &upstream{body: fmpQuoteBody}
	c, store := newTestClient(t, NewFMPSource("http://fmp.test"), up, clock)
	require.NoError(t, store.Put(context.Background(), cache.Key{Kind: cache.KindQuote, Symbol: "AAPL"}, []byte("{broken")))

	q, err := c.FetchQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Equal(t, "AAPL", q.Symbol)
	require.Equal(t, 1, up.calls())
}

func TestWithAPIKey(t *testing.T) {
	require.Equal(t, "http://x/quote/AAPL?apikey=k", withAPIKey("http://x/quote/AAPL", "k"))
	require.Equal(t, "http://x/query?function=F&apikey=k", withAPIKey("http://x/query?function=F", "k"))
	require.Equal(t, "http://x/quote/AAPL?apikey=a%26b%2Bc%3D", withAPIKey("http://x/quote/AAPL", "a&b+c="))
}

func TestFetchSendsEscapedAPIKey(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	up := &upstream{body: fmpQuoteBody}
	store := cache.NewMemoryStore(cache.WithClock(clock.Now))
	c := NewClient(testTracer, NewFMPSource("http://fmp.test/api/v3"), "a&b+c=", store,
		WithTransport(up),
		WithClock(clock.Now),
	)

	_, err := c.FetchQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	q := up.requests[0].URL.Query()
	require.Equal(t, "a&b+c=", q.Get("apikey"))
	require.Len(t, q, 1)
}

func TestUnexpectedShapeRepeatsProviderMessage(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	up := &upstream{body: `{"message":"Invalid API KEY. Feel free to create a Free API Key"}`}
	c, store := newTestClient(t, NewFMPSource("http://fmp.test"), up, clock)

	_, err := c.FetchQuote(context.Background(), "AAPL")
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, KindUnexpectedShape, kind)
	require.Contains(t, err.Error(), "Invalid API KEY")
	require.Equal(t, 0, store.Len())
}

func TestInformationNoticeIsUpstreamError(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	up := &upstream{body: `{"Information":"This is a premium endpoint."}`}
	c, _ := newTestClient(t, NewAlphaVantageSource("http://av.test/query"), up, clock)

	_, err := c.FetchProfile(context.Background(), "IBM")
	kind, _ := KindOf(err)
	require.Equal(t, KindUpstream, kind)
	require.Contains(t, err.Error(), "premium endpoint")
}

func TestNewSource(t *testing.T) {
	for _, name := range []string{"", "fmp", "FMP"} {
		s, err := NewSource(name, "")
		require.NoError(t, err)
		require.Equal(t, "fmp", s.Name())
	}
	s, err := NewSource("alphavantage", "")
	require.NoError(t, err)
	require.Equal(t, "alphavantage", s.Name())
	require.True(t, strings.HasPrefix(s.Endpoint(cache.KindDaily, "IBM"), alphaVantageBaseURL+"?"))

	_, err = NewSource("yahoo", "")
	require.Error(t, err)
}
