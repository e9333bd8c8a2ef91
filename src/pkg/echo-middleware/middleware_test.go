package echomw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func newServer(middlewares ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.Use(middlewares...)
	e.GET("/v1/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	})
	return e
}

func serve(e *echo.Echo, authorization string, remoteAddr string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodGet, "/v1/ping", nil)
	if authorization != "" {
		request.Header.Set(echo.HeaderAuthorization, authorization)
	}
	if remoteAddr != "" {
		request.RemoteAddr = remoteAddr
	}
	recorder := httptest.NewRecorder()
	e.ServeHTTP(recorder, request)
	return recorder
}

func TestRequireBearerToken(t *testing.T) {
	tests := []struct {
		name          string
		expected      string
		authorization string
		status        int
	}{
		{"valid token", "s3cret", "Bearer s3cret", http.StatusOK},
		{"scheme is case-insensitive", "s3cret", "bearer   s3cret ", http.StatusOK},
		{"wrong token", "s3cret", "Bearer nope", http.StatusUnauthorized},
		{"missing header", "s3cret", "", http.StatusUnauthorized},
		{"basic scheme", "s3cret", "Basic czNjcmV0", http.StatusUnauthorized},
		{"empty bearer", "s3cret", "Bearer ", http.StatusUnauthorized},
		{"token not configured", "", "Bearer anything", http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			recorder := serve(newServer(RequireBearerToken(tc.expected)), tc.authorization, "")
			if recorder.Code != tc.status {
				t.Fatalf("status = %d, want %d", recorder.Code, tc.status)
			}
			if tc.status == http.StatusUnauthorized && recorder.Header().Get(echo.HeaderWWWAuthenticate) == "" {
				t.Fatalf("401 must carry WWW-Authenticate")
			}
		})
	}
}

func TestIPRateLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(1, 2)
	clock := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return clock }
	e := newServer(limiter.Middleware)

	for i := 0; i < 2; i++ {
		if code := serve(e, "", "10.0.0.1:4000").Code; code != http.StatusOK {
			t.Fatalf("request %d within burst got %d", i, code)
		}
	}
	blocked := serve(e, "", "10.0.0.1:4000")
	if blocked.Code != http.StatusTooManyRequests || blocked.Header().Get(echo.HeaderRetryAfter) != "1" {
		t.Fatalf("over burst: status %d, Retry-After %q", blocked.Code, blocked.Header().Get(echo.HeaderRetryAfter))
	}
	if code := serve(e, "", "10.0.0.2:4000").Code; code != http.StatusOK {
		t.Fatalf("another IP must have its own bucket, got %d", code)
	}

	clock = clock.Add(time.Second)
	if code := serve(e, "", "10.0.0.1:4000").Code; code != http.StatusOK {
		t.Fatalf("a token must refill after a second, got %d", code)
	}

	clock = clock.Add(2 * time.Minute)
	serve(e, "", "10.0.0.3:4000")
	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	if _, kept := limiter.visitors["10.0.0.1"]; kept || len(limiter.visitors) != 1 {
		t.Fatalf("idle visitors must be swept, have %d", len(limiter.visitors))
	}
}

func TestUnlimitedRateLimiter(t *testing.T) {
	e := newServer(NewIPRateLimiter(0, 0).Middleware)
	for i := 0; i < 20; i++ {
		if code := serve(e, "", "10.0.0.1:4000").Code; code != http.StatusOK {
			t.Fatalf("request %d got %d", i, code)
		}
	}
}

func TestRouteAccessLoggerKeepsStatus(t *testing.T) {
	e := newServer(RouteAccessLoggerMiddleware)
	e.GET("/v1/fail", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "short and stout")
	})

	request := httptest.NewRequest(http.MethodGet, "/v1/fail", nil)
	recorder := httptest.NewRecorder()
	e.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusTeapot {
		t.Fatalf("status = %d", recorder.Code)
	}
	if code := serve(e, "", "").Code; code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
}
