package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/medkit/medkit/internal/platform/middleware"
	"github.com/medkit/medkit/internal/registry"
)

func newTestShim(t *testing.T) *echo.Echo {
	t.Helper()
	reg := registry.New()
	reg.MustRegister("ping", "reply with pong",
		func(_ context.Context, _ json.RawMessage) (interface{}, error) {
			return map[string]string{"reply": "pong"}, nil
		})
	reg.MustRegister("strict", "requires a name",
		func(_ context.Context, args json.RawMessage) (interface{}, error) {
			var req struct {
				Name string `json:"name"`
			}
			if err := registry.Decode(args, &req); err != nil {
				return nil, err
			}
			if req.Name == "" {
				return nil, registry.InvalidArgsf("name is required")
			}
			return req.Name, nil
		})
	reg.MustRegister("missing", "always not found",
		func(_ context.Context, _ json.RawMessage) (interface{}, error) {
			return nil, registry.ErrNotFound
		})

	e := echo.New()
	e.Use(middleware.RequestID())
	NewShim(reg).RegisterRoutes(e)
	return e
}

func TestHealth(t *testing.T) {
	e := newTestShim(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Errorf("body = %q, want ok", rec.Body.String())
	}
}

func TestListTools(t *testing.T) {
	e := newTestShim(t)
	req := httptest.NewRequest(http.MethodGet, "/tools", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Tools []struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		} `json:"tools"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body.Tools) != 3 {
		t.Fatalf("tools = %d, want 3", len(body.Tools))
	}
	// Sorted by name.
	if body.Tools[0].Name != "missing" || body.Tools[2].Name != "strict" {
		t.Errorf("tools = %+v", body.Tools)
	}
}

func TestSchema(t *testing.T) {
	e := newTestShim(t)
	req := httptest.NewRequest(http.MethodGet, "/schema", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var schema map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &schema); err != nil {
		t.Fatalf("schema is not valid JSON: %v", err)
	}
	if _, ok := schema["$defs"]; !ok {
		t.Error("schema missing $defs")
	}
}

func postInvoke(e *echo.Echo, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/invoke", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestInvoke(t *testing.T) {
	e := newTestShim(t)

	t.Run("Success", func(t *testing.T) {
		rec := postInvoke(e, `{"tool":"ping","args":{}}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		var body struct {
			OK     bool              `json:"ok"`
			Tool   string            `json:"tool"`
			Result map[string]string `json:"result"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if !body.OK || body.Tool != "ping" || body.Result["reply"] != "pong" {
			t.Errorf("body = %+v", body)
		}
	})

	t.Run("MissingTool", func(t *testing.T) {
		rec := postInvoke(e, `{"args":{}}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("ArgsNotObject", func(t *testing.T) {
		rec := postInvoke(e, `{"tool":"ping","args":[1,2]}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("UnknownTool", func(t *testing.T) {
		rec := postInvoke(e, `{"tool":"nope","args":{}}`)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
		var body map[string]interface{}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if body["code"] != "unknown_tool" {
			t.Errorf("code = %v", body["code"])
		}
		if body["request_id"] == "" {
			t.Error("expected a request_id")
		}
	})

	t.Run("InvalidArgs", func(t *testing.T) {
		rec := postInvoke(e, `{"tool":"strict","args":{}}`)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", rec.Code)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		rec := postInvoke(e, `{"tool":"missing","args":{}}`)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("OmittedArgsDefaultsToEmptyObject", func(t *testing.T) {
		rec := postInvoke(e, `{"tool":"ping"}`)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})
}
