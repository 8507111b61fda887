package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func serve(mw echo.MiddlewareFunc, header string) *httptest.ResponseRecorder {
	e := echo.New()
	e.GET("/", okHandler, mw)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestDevMiddleware(t *testing.T) {
	e := echo.New()
	e.GET("/", func(c echo.Context) error {
		role, _ := c.Get("role").(string)
		return c.String(http.StatusOK, role)
	}, DevMiddleware())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != "admin" {
		t.Errorf("status = %d, role = %q", rec.Code, rec.Body.String())
	}
}

func TestBearerMiddleware(t *testing.T) {
	mw := BearerMiddleware("sekret")

	t.Run("Missing", func(t *testing.T) {
		if rec := serve(mw, ""); rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("Wrong", func(t *testing.T) {
		if rec := serve(mw, "Bearer nope"); rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("Valid", func(t *testing.T) {
		if rec := serve(mw, "Bearer sekret"); rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("NotBearerScheme", func(t *testing.T) {
		if rec := serve(mw, "Basic sekret"); rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestJWTMiddleware(t *testing.T) {
	mw := JWTMiddleware(JWTConfig{Secret: "sekret"})

	t.Run("Valid", func(t *testing.T) {
		raw := signToken(t, "sekret", jwt.MapClaims{
			"sub":  "user-1",
			"role": "clinician",
			"exp":  time.Now().Add(time.Hour).Unix(),
		})
		if rec := serve(mw, "Bearer "+raw); rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("WrongSecret", func(t *testing.T) {
		raw := signToken(t, "other", jwt.MapClaims{"sub": "user-1"})
		if rec := serve(mw, "Bearer "+raw); rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("Expired", func(t *testing.T) {
		raw := signToken(t, "sekret", jwt.MapClaims{
			"sub": "user-1",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})
		if rec := serve(mw, "Bearer "+raw); rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("RoleDefaultsToUser", func(t *testing.T) {
		e := echo.New()
		e.GET("/", func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			return c.String(http.StatusOK, role)
		}, mw)

		raw := signToken(t, "sekret", jwt.MapClaims{
			"sub": "user-1",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+raw)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		if rec.Body.String() != "user" {
			t.Errorf("role = %q, want user", rec.Body.String())
		}
	})
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	e.GET("/", okHandler, DevMiddleware(), RequireRole("admin", "clinician"))
	e.GET("/narrow", okHandler, DevMiddleware(), RequireRole("clinician"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/narrow", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}
