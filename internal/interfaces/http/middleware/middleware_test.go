package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/paypoint/internal/shared/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	req.RemoteAddr = "198.51.100.7:5000"
	engine.ServeHTTP(w, req)
	return w
}

func TestRecovery(t *testing.T) {
	engine := gin.New()
	engine.Use(Recovery(logger.NewNopLogger(), map[string]gin.HandlerFunc{
		"/callback": nil,
		"/return": func(c *gin.Context) {
			c.Data(http.StatusOK, "text/html; charset=utf-8", []byte("<html><body><p>Order not found</p></body></html>"))
		},
	}))
	engine.POST("/callback", func(c *gin.Context) { panic("boom") })
	engine.GET("/return", func(c *gin.Context) { panic("boom") })
	engine.GET("/page", func(c *gin.Context) { panic("boom") })

	tests := []struct {
		name        string
		method      string
		target      string
		wantStatus  int
		wantBody    string
		wantEmpty   bool
		contentType string
	}{
		{name: "acknowledged path answers empty 200", method: http.MethodPost, target: "/callback", wantStatus: http.StatusOK, wantEmpty: true},
		{name: "acknowledged path with responder", method: http.MethodGet, target: "/return", wantStatus: http.StatusOK, wantBody: "Order not found", contentType: "text/html"},
		{name: "other paths answer 500", method: http.MethodGet, target: "/page", wantStatus: http.StatusInternalServerError, wantBody: "Internal server error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(engine, tt.method, tt.target)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantEmpty {
				assert.Empty(t, w.Body.String())
			}
			if tt.wantBody != "" {
				assert.Contains(t, w.Body.String(), tt.wantBody)
			}
			if tt.contentType != "" {
				assert.Contains(t, w.Header().Get("Content-Type"), tt.contentType)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	t.Run("generated", func(t *testing.T) {
		w := serve(engine, http.MethodGet, "/")
		id := w.Header().Get(HeaderXRequestID)
		assert.Len(t, id, 36)
		assert.Equal(t, id, w.Body.String())
	})

	t.Run("propagated", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderXRequestID, "req-1")
		engine.ServeHTTP(w, req)
		assert.Equal(t, "req-1", w.Header().Get(HeaderXRequestID))
		assert.Equal(t, "req-1", w.Body.String())
	})
}

func TestRedactQuery(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", ""},
		{"valid=true&trans_id=1", "valid=true&trans_id=1"},
		{"token=secret", "token=%2A%2A%2A"},
		{"a=1&token=secret", "a=1&token=%2A%2A%2A"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, redactQuery(tt.raw))
		})
	}
}

type recordedRequest struct {
	method, path, status string
}

type fakeHTTPMetrics struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (f *fakeHTTPMetrics) ObserveHTTPRequest(method, path, status string, elapsed time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, recordedRequest{method, path, status})
}

func TestMetrics_UsesRouteTemplate(t *testing.T) {
	m := &fakeHTTPMetrics{}
	engine := gin.New()
	engine.Use(Metrics(m))
	engine.GET("/Redirect/:orderGuid", func(c *gin.Context) { c.Status(http.StatusFound) })

	serve(engine, http.MethodGet, "/Redirect/0b8d6f5e-5a57-4d0b-9f3c-1f6d2a4c9e11")
	serve(engine, http.MethodGet, "/missing")

	require.Len(t, m.requests, 2)
	assert.Equal(t, recordedRequest{"GET", "/Redirect/:orderGuid", "302"}, m.requests[0])
	assert.Equal(t, recordedRequest{"GET", "unmatched", "404"}, m.requests[1])
}

func TestRateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	rl := NewRateLimiter(client, "redirect", 2, time.Hour, logger.NewNopLogger())
	engine := gin.New()
	engine.GET("/", rl.Limit(), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/").Code)

	w := serve(engine, http.MethodGet, "/")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "3600", w.Header().Get("Retry-After"))
}

func TestRateLimiter_AllowsWhenRedisIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	rl := NewRateLimiter(client, "redirect", 1, time.Minute, logger.NewNopLogger())
	engine := gin.New()
	engine.GET("/", rl.Limit(), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/").Code)
}

func TestCORS(t *testing.T) {
	engine := gin.New()
	group := engine.Group("/fee", CORS([]string{"https://shop.example.com"}))
	group.GET("", func(c *gin.Context) { c.Status(http.StatusOK) })
	group.OPTIONS("", func(*gin.Context) {})

	request := func(method, origin string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(method, "/fee", nil)
		req.Header.Set("Origin", origin)
		engine.ServeHTTP(w, req)
		return w
	}

	t.Run("allowed origin is echoed", func(t *testing.T) {
		w := request(http.MethodGet, "https://shop.example.com")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://shop.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("other origin gets no grant", func(t *testing.T) {
		w := request(http.MethodGet, "https://evil.example.com")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		w := request(http.MethodOptions, "https://shop.example.com")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "GET, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	})
}

func TestSecurityHeaders(t *testing.T) {
	engine := gin.New()
	engine.Use(SecurityHeaders())
	engine.GET("/page", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(engine, http.MethodGet, "/page")

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}
