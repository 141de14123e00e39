// Package proxy implements the byte-authorization unit: a separate
// execution context that intercepts requests for protected binary
// media, resolves the content identifier's token from the durable
// cache, and forwards the request upstream with authorization and
// share headers attached.
package proxy

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hsa00000/urocissa/internal/config"
	"github.com/hsa00000/urocissa/internal/metrics"
	"github.com/hsa00000/urocissa/internal/tokencache"
)

// shareRefererPattern matches /share/{albumId}-{shareId} in a referrer
// path; the share id may not contain a slash.
var shareRefererPattern = regexp.MustCompile(`/share/([^-/]+)-([^/]+)`)

// MediaProxy authorizes and forwards protected media requests
type MediaProxy struct {
	cache    tokencache.Cache
	upstream *httputil.ReverseProxy
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// NewMediaProxy creates a proxy forwarding to upstreamURL
func NewMediaProxy(upstreamURL string, cache tokencache.Cache, m *metrics.Metrics, logger *zap.Logger) (*MediaProxy, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.NewNopMetrics()
	}
	target, err := url.Parse(upstreamURL)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream url %q: %w", upstreamURL, err)
	}
	return &MediaProxy{
		cache:    cache,
		upstream: httputil.NewSingleHostReverseProxy(target),
		logger:   logger,
		metrics:  m,
	}, nil
}

// Router builds the HTTP router: protected media paths plus the
// metrics endpoint.
func (p *MediaProxy) Router(metricsCfg config.MetricsConfig, registry *prometheus.Registry) *mux.Router {
	r := mux.NewRouter()
	if metricsCfg.Enabled {
		r.Handle(metricsCfg.Path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}
	r.PathPrefix("/imported/").HandlerFunc(p.ServeMedia)
	r.PathPrefix("/").MatcherFunc(func(req *http.Request, _ *mux.RouteMatch) bool {
		return strings.HasSuffix(req.URL.Path, ".mp4")
	}).HandlerFunc(p.ServeMedia)
	return r
}

// ServeMedia handles one protected media request. Returns 401 when no
// token is cached for the content identifier.
func (p *MediaProxy) ServeMedia(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	hash := contentIdentifier(r.URL.Path)
	if hash == "" {
		p.finish(w, r, http.StatusNotFound, started)
		return
	}

	token, ok := p.cache.Get(hash)
	if !ok || strings.TrimSpace(token) == "" {
		p.metrics.TokenCacheMissesTotal.Inc()
		p.metrics.ProxyUnauthorizedTotal.Inc()
		p.logger.Debug("No token for media request", zap.String("hash", hash))
		p.finish(w, r, http.StatusUnauthorized, started)
		return
	}
	p.metrics.TokenCacheHitsTotal.Inc()

	// Only headers are overridden; everything else the caller set
	// (Range in particular) is preserved.
	r.Header.Set("Authorization", "Bearer "+token)
	p.attachShareHeaders(r)

	p.metrics.ProxyRequestsTotal.WithLabelValues("forwarded").Inc()
	p.upstream.ServeHTTP(w, r)
	p.metrics.ProxyRequestDuration.Observe(time.Since(started).Seconds())
}

// attachShareHeaders derives the share context from the referrer URL
// and attaches the persisted share descriptor's headers, when any.
func (p *MediaProxy) attachShareHeaders(r *http.Request) {
	albumId, shareId := extractShareIds(r.Referer())
	if albumId == "" || shareId == "" {
		return
	}
	info, ok := p.cache.GetShare(albumId, shareId)
	if !ok {
		return
	}
	if info.AlbumId != "" {
		r.Header.Set("x-album-id", info.AlbumId)
	}
	if info.ShareId != "" {
		r.Header.Set("x-share-id", info.ShareId)
	}
	if info.Password != "" {
		r.Header.Set("x-share-password", info.Password)
	}
}

func (p *MediaProxy) finish(w http.ResponseWriter, r *http.Request, status int, started time.Time) {
	p.metrics.ProxyRequestsTotal.WithLabelValues(fmt.Sprintf("%d", status)).Inc()
	p.metrics.ProxyRequestDuration.Observe(time.Since(started).Seconds())
	http.Error(w, http.StatusText(status), status)
}

// contentIdentifier extracts the content hash from a media path: the
// final path segment with its extension stripped.
func contentIdentifier(urlPath string) string {
	filename := path.Base(urlPath)
	if filename == "." || filename == "/" {
		return ""
	}
	if ext := path.Ext(filename); ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	return filename
}

// extractShareIds parses /share/{albumId}-{shareId} out of a referrer
// URL. Returns empty strings when the referrer carries no share path.
func extractShareIds(referer string) (string, string) {
	if referer == "" {
		return "", ""
	}
	u, err := url.Parse(referer)
	if err != nil {
		return "", ""
	}
	match := shareRefererPattern.FindStringSubmatch(u.Path)
	if match == nil {
		return "", ""
	}
	return match[1], match[2]
}
