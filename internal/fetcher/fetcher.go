// Package fetcher downloads recipe pages while rotating through fetch
// strategies and request fingerprints to get past bot mitigation.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"bonchef/internal/domain"
	"bonchef/internal/infra"
)

const (
	StrategyDirect = "direct"
	StrategyProxy  = "proxy"

	defaultMaxRetries     = 3
	defaultAttemptTimeout = 30 * time.Second
	defaultMinDelay       = time.Second
	defaultMaxDelay       = 3 * time.Second
	defaultMaxBodyBytes   = 5 << 20
)

// challengeMarkers identify bot-challenge interstitials.
var challengeMarkers = []string{"Just a moment", "Cloudflare", "cf-chl-opt", "challenge-platform"}

var errChallenge = errors.New("bot challenge detected")

// Options configures a Fetcher.
type Options struct {
	ProxyURL       string
	MaxRetries     int
	AttemptTimeout time.Duration
	MinDelay       time.Duration
	MaxDelay       time.Duration
	MaxBodyBytes   int64
	// Transport overrides the base transport of every strategy.
	Transport http.RoundTripper
	Logger    *infra.Logger
	Metrics   *infra.Metrics
	Rand      *rand.Rand
	Sleep     func(context.Context, time.Duration) error
}

// Response is a fetched page.
type Response struct {
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
	Strategy   string
}

type strategy struct {
	name    string
	client  *http.Client
	spoofIP bool
}

// Fetcher tries each strategy in order, retrying sequentially within a
// strategy. Attempts for one URL never run concurrently.
type Fetcher struct {
	strategies   []strategy
	maxRetries   int
	timeout      time.Duration
	minDelay     time.Duration
	maxDelay     time.Duration
	maxBodyBytes int64
	logger       *infra.Logger
	metrics      *infra.Metrics
	sleep        func(context.Context, time.Duration) error

	mu  sync.Mutex
	rng *rand.Rand
}

// New builds a Fetcher. The proxy strategy is only added when ProxyURL is set.
func New(opts Options) (*Fetcher, error) {
	f := &Fetcher{
		maxRetries:   opts.MaxRetries,
		timeout:      opts.AttemptTimeout,
		minDelay:     opts.MinDelay,
		maxDelay:     opts.MaxDelay,
		maxBodyBytes: opts.MaxBodyBytes,
		logger:       infra.LoggerOrDiscard(opts.Logger),
		metrics:      opts.Metrics,
		sleep:        opts.Sleep,
		rng:          opts.Rand,
	}
	if f.maxRetries <= 0 {
		f.maxRetries = defaultMaxRetries
	}
	if f.timeout <= 0 {
		f.timeout = defaultAttemptTimeout
	}
	if f.minDelay <= 0 && f.maxDelay <= 0 {
		f.minDelay, f.maxDelay = defaultMinDelay, defaultMaxDelay
	}
	if f.maxDelay < f.minDelay {
		f.maxDelay = f.minDelay
	}
	if f.maxBodyBytes <= 0 {
		f.maxBodyBytes = defaultMaxBodyBytes
	}
	if f.sleep == nil {
		f.sleep = sleepContext
	}
	if f.rng == nil {
		f.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15))
	}

	direct := opts.Transport
	if direct == nil {
		direct = http.DefaultTransport.(*http.Transport).Clone()
	}
	f.strategies = append(f.strategies, strategy{
		name:   StrategyDirect,
		client: &http.Client{Transport: otelhttp.NewTransport(direct)},
	})

	if proxy := strings.TrimSpace(opts.ProxyURL); proxy != "" {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			return nil, fmt.Errorf("fetcher: parse proxy url: %w", err)
		}
		transport := opts.Transport
		if transport == nil {
			t := http.DefaultTransport.(*http.Transport).Clone()
			t.Proxy = http.ProxyURL(proxyURL)
			transport = t
		}
		f.strategies = append(f.strategies, strategy{
			name:    StrategyProxy,
			client:  &http.Client{Transport: otelhttp.NewTransport(transport)},
			spoofIP: true,
		})
	}

	return f, nil
}

// Strategies returns the strategy names in the order they are tried.
func (f *Fetcher) Strategies() []string {
	names := make([]string, len(f.strategies))
	for i, s := range f.strategies {
		names[i] = s.name
	}
	return names
}

// Fetch downloads rawURL. It returns an error wrapping
// domain.ErrFetchExhausted once every attempt of every strategy failed.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	var lastErr error
	attempts := 0
	for _, s := range f.strategies {
		for attempt := 1; attempt <= f.maxRetries; attempt++ {
			if attempts > 0 {
				if err := f.sleep(ctx, f.delay()); err != nil {
					return nil, err
				}
			}
			attempts++

			resp, err := f.attempt(ctx, s, rawURL)
			if err == nil {
				f.metrics.ObserveFetch(s.name, "ok")
				f.logger.Debug().
					Str("url", rawURL).
					Str("strategy", s.name).
					Int("attempt", attempt).
					Msg("fetcher: fetched")
				return resp, nil
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}

			lastErr = err
			outcome := "error"
			if errors.Is(err, errChallenge) {
				outcome = "challenge"
			}
			f.metrics.ObserveFetch(s.name, outcome)
			f.logger.Warn().
				Err(err).
				Str("url", rawURL).
				Str("strategy", s.name).
				Int("attempt", attempt).
				Msg("fetcher: attempt failed")
		}
	}
	return nil, fmt.Errorf("%w: %s after %d attempts: %v", domain.ErrFetchExhausted, rawURL, attempts, lastErr)
}

func (f *Fetcher) attempt(ctx context.Context, s strategy, rawURL string) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	f.applyHeaders(req, s.spoofIP)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if isChallenge(body) {
			return nil, fmt.Errorf("status %d: %w", resp.StatusCode, errChallenge)
		}
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if isChallenge(body) {
		return nil, errChallenge
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	return &Response{
		URL:        finalURL,
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
		Strategy:   s.name,
	}, nil
}

// IsChallenge reports whether body looks like a bot-challenge page.
func IsChallenge(body []byte) bool {
	return isChallenge(body)
}

func isChallenge(body []byte) bool {
	text := string(body)
	for _, marker := range challengeMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

func (f *Fetcher) delay() time.Duration {
	span := f.maxDelay - f.minDelay
	if span <= 0 {
		return f.minDelay
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.minDelay + time.Duration(f.rng.Int64N(int64(span)+1))
}

func (f *Fetcher) intn(n int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rng.IntN(n)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
