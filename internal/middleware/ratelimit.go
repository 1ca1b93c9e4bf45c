package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimitMessage is returned once a caller exhausts its window.
const RateLimitMessage = "Je hebt te veel verzoeken gedaan. Wacht even en probeer het opnieuw."

type bucket struct {
	count int
	until time.Time
}

// RateLimit allows limit requests per window for each user, or for each
// client IP when the request carries no user. A limit of zero disables it.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	return rateLimit(limit, per, time.Now)
}

func rateLimit(limit int, per time.Duration, now func() time.Time) func(http.Handler) http.Handler {
	var mu sync.Mutex
	buckets := make(map[string]*bucket)
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := rateLimitKey(r)
			t := now()
			mu.Lock()
			b, ok := buckets[key]
			if !ok || t.After(b.until) {
				b = &bucket{until: t.Add(per)}
				buckets[key] = b
				sweep(buckets, t)
			}
			if b.count >= limit {
				retry := int(b.until.Sub(t).Seconds()) + 1
				mu.Unlock()
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				writeError(w, http.StatusTooManyRequests, RateLimitMessage)
				return
			}
			b.count++
			mu.Unlock()
			next.ServeHTTP(w, r)
		})
	}
}

// sweep drops expired buckets so idle callers do not accumulate.
func sweep(buckets map[string]*bucket, now time.Time) {
	if len(buckets) < 1024 {
		return
	}
	for key, b := range buckets {
		if now.After(b.until) {
			delete(buckets, key)
		}
	}
}

func rateLimitKey(r *http.Request) string {
	if user := UserIDFromContext(r.Context()); user != "" {
		return "user:" + user
	}
	return "ip:" + clientIPForRateLimit(r)
}

// clientIPForRateLimit keys on the connection peer. Forwarding headers are
// only trusted once RealIP has rewritten RemoteAddr for a known proxy.
func clientIPForRateLimit(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && net.ParseIP(host) != nil {
		return host
	}
	return r.RemoteAddr
}
