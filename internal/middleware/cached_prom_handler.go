package middleware

import (
	"bytes"
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

// CachedPromHandler wraps promhttp.HandlerFor with a caching layer.
//
// Prometheus scrapes /metrics frequently, and every scrape triggers metric
// gathering and text serialization. CachedPromHandler precomputes the
// exposition at a fixed interval (ttl) and serves that cached result to
// all clients, keeping scrape latency predictable even when several
// Prometheus servers scrape at once.
type CachedPromHandler struct {
	mu    sync.RWMutex  // Guards concurrent access to cache
	cache []byte        // Holds the precomputed metrics exposition
	ttl   time.Duration // Refresh interval for the cache
	h     http.Handler  // Underlying promhttp handler used for actual gathering
}

// NewCachedPromHandler creates a new CachedPromHandler and starts its
// background refresh loop. The ttl should be at most the scrape interval;
// the loop stops when ctx is cancelled.
func NewCachedPromHandler(ctx context.Context, gatherer prometheus.Gatherer, ttl time.Duration) *CachedPromHandler {
	c := &CachedPromHandler{
		ttl: ttl,
		h:   promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
	}

	go c.refreshLoop(ctx)
	return c
}

func (c *CachedPromHandler) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var buf bytes.Buffer
			rec := &responseRecorder{buf: &buf}
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, "/metrics", nil)
			if err != nil {
				continue
			}
			c.h.ServeHTTP(rec, req)

			c.mu.Lock()
			c.cache = buf.Bytes()
			c.mu.Unlock()
		}
	}
}

// ServeHTTP implements http.Handler by serving cached metrics. If the
// cache is still empty right after startup, it falls back to the live
// promhttp handler.
func (c *CachedPromHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.cache) == 0 {
		c.h.ServeHTTP(w, r)
		return
	}
	// Prometheus-provided constant for the text exposition format (version=0.0.4)
	w.Header().Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
	_, _ = w.Write(c.cache)
}

// responseRecorder is a minimal http.ResponseWriter that redirects the
// promhttp output into a bytes.Buffer so it can be cached. Status codes
// are ignored: a successful gather is always a 200.
type responseRecorder struct {
	buf *bytes.Buffer
}

func (rr *responseRecorder) Write(b []byte) (int, error) { return rr.buf.Write(b) }

func (rr *responseRecorder) Header() http.Header        { return http.Header{} }
func (rr *responseRecorder) WriteHeader(statusCode int) {}
