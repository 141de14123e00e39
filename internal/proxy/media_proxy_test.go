package proxy

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hsa00000/urocissa/internal/config"
	"github.com/hsa00000/urocissa/internal/tokencache"
)

func newTestProxy(t *testing.T, upstream http.Handler) (*MediaProxy, tokencache.Cache, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(upstream)
	t.Cleanup(server.Close)

	cache := tokencache.NewMemoryCache()
	p, err := NewMediaProxy(server.URL, cache, nil, zap.NewNop())
	require.NoError(t, err)
	return p, cache, server
}

func TestContentIdentifier(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"/imported/3f2a9b.jpg", "3f2a9b"},
		{"/imported/3f2a9b.webp", "3f2a9b"},
		{"/object/compressed/9c1d.mp4", "9c1d"},
		{"/imported/noext", "noext"},
		{"/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, contentIdentifier(tt.path))
		})
	}
}

func TestExtractShareIds(t *testing.T) {
	tests := []struct {
		name    string
		referer string
		albumId string
		shareId string
	}{
		{"share path", "http://gallery.example/share/alb1-sh9", "alb1", "sh9"},
		{"share subpath", "http://gallery.example/share/alb1-sh9/view/3f2a", "alb1", "sh9"},
		{"no share segment", "http://gallery.example/favorite", "", ""},
		{"empty referer", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			albumId, shareId := extractShareIds(tt.referer)
			assert.Equal(t, tt.albumId, albumId)
			assert.Equal(t, tt.shareId, shareId)
		})
	}
}

func TestServeMedia_UnauthorizedWithoutToken(t *testing.T) {
	p, _, _ := newTestProxy(t, http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		t.Error("request must not reach upstream without a token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/imported/3f2a9b.jpg", nil)
	rec := httptest.NewRecorder()
	p.ServeMedia(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServeMedia_InjectsBearerToken(t *testing.T) {
	var gotAuth string
	p, cache, _ := newTestProxy(t, http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		rw.Write([]byte("media-bytes"))
	}))
	require.NoError(t, cache.Put("3f2a9b", "tok-a"))

	req := httptest.NewRequest(http.MethodGet, "/imported/3f2a9b.jpg", nil)
	rec := httptest.NewRecorder()
	p.ServeMedia(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bearer tok-a", gotAuth)
	assert.Equal(t, "media-bytes", rec.Body.String())
}

func TestServeMedia_PreservesRangeHeader(t *testing.T) {
	var gotRange string
	p, cache, _ := newTestProxy(t, http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		gotRange = r.Header.Get("Range")
		rw.WriteHeader(http.StatusPartialContent)
	}))
	require.NoError(t, cache.Put("9c1d", "tok-v"))

	req := httptest.NewRequest(http.MethodGet, "/object/compressed/9c1d.mp4", nil)
	req.Header.Set("Range", "bytes=1024-2047")
	rec := httptest.NewRecorder()
	p.ServeMedia(rec, req)

	assert.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "bytes=1024-2047", gotRange)
}

func TestServeMedia_AttachesShareHeaders(t *testing.T) {
	var gotAlbum, gotShare, gotPassword string
	p, cache, _ := newTestProxy(t, http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		gotAlbum = r.Header.Get("x-album-id")
		gotShare = r.Header.Get("x-share-id")
		gotPassword = r.Header.Get("x-share-password")
	}))
	require.NoError(t, cache.Put("3f2a9b", "tok-a"))
	require.NoError(t, cache.PutShare(tokencache.ShareInfo{
		AlbumId: "alb1", ShareId: "sh9", Password: "pw",
	}))

	req := httptest.NewRequest(http.MethodGet, "/imported/3f2a9b.jpg", nil)
	req.Header.Set("Referer", "http://gallery.example/share/alb1-sh9/view")
	rec := httptest.NewRecorder()
	p.ServeMedia(rec, req)

	assert.Equal(t, "alb1", gotAlbum)
	assert.Equal(t, "sh9", gotShare)
	assert.Equal(t, "pw", gotPassword)
}

func TestServeMedia_UnknownShareRefererForwardsWithoutHeaders(t *testing.T) {
	var gotAlbum string
	p, cache, _ := newTestProxy(t, http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		gotAlbum = r.Header.Get("x-album-id")
	}))
	require.NoError(t, cache.Put("3f2a9b", "tok-a"))

	req := httptest.NewRequest(http.MethodGet, "/imported/3f2a9b.jpg", nil)
	req.Header.Set("Referer", "http://gallery.example/share/unknown-share")
	rec := httptest.NewRecorder()
	p.ServeMedia(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, gotAlbum)
}

func TestRouter_RoutesProtectedPaths(t *testing.T) {
	p, cache, _ := newTestProxy(t, http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.Write([]byte("ok"))
	}))
	require.NoError(t, cache.Put("3f2a9b", "tok-a"))
	require.NoError(t, cache.Put("9c1d", "tok-v"))

	registry := prometheus.NewRegistry()
	router := p.Router(config.MetricsConfig{Enabled: true, Path: "/metrics"}, registry)

	for _, path := range []string{"/imported/3f2a9b.jpg", "/object/compressed/9c1d.mp4"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
