package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestRequestID(t *testing.T) {
	e := echo.New()
	e.Use(RequestID())
	e.GET("/", func(c echo.Context) error {
		id, _ := c.Get("request_id").(string)
		return c.String(http.StatusOK, id)
	})

	t.Run("Generated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		if rec.Body.String() == "" {
			t.Error("expected a generated request id")
		}
		if rec.Header().Get(RequestIDHeader) != rec.Body.String() {
			t.Error("response header does not match context value")
		}
	})

	t.Run("ClientProvided", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "client-id-123")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		if rec.Body.String() != "client-id-123" {
			t.Errorf("request id = %q, want client-id-123", rec.Body.String())
		}
	})
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	e := echo.New()
	e.Use(Logger(logger))
	e.POST("/invoke", func(c echo.Context) error {
		c.Set("tool", "getPatient")
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	t.Run("ToolField", func(t *testing.T) {
		buf.Reset()
		req := httptest.NewRequest(http.MethodPost, "/invoke", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		if !strings.Contains(buf.String(), `"tool":"getPatient"`) {
			t.Errorf("log line missing tool field: %s", buf.String())
		}
	})

	t.Run("NoToolField", func(t *testing.T) {
		buf.Reset()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		if strings.Contains(buf.String(), `"tool"`) {
			t.Errorf("unexpected tool field: %s", buf.String())
		}
	})
}

func TestRecovery(t *testing.T) {
	e := echo.New()
	e.Use(Recovery(zerolog.Nop()))
	e.GET("/panic", func(c echo.Context) error {
		panic("boom")
	})

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	e := echo.New()
	e.Use(RateLimit(RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 2}))
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	hit := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	if rec := hit(); rec.Code != http.StatusOK {
		t.Fatalf("first request: status = %d", rec.Code)
	}
	if rec := hit(); rec.Code != http.StatusOK {
		t.Fatalf("second request: status = %d", rec.Code)
	}

	rec := hit()
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request: status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("X-RateLimit-Remaining = %q", rec.Header().Get("X-RateLimit-Remaining"))
	}
}
