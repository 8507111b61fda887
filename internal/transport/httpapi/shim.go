package httpapi

import (
	_ "embed"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medkit/medkit/internal/platform/middleware"
	"github.com/medkit/medkit/internal/registry"
)

//go:embed components.schema.json
var componentsSchema []byte

// Shim exposes the tool registry over plain HTTP for clients that do not
// speak MCP: list tools, fetch the schema, invoke by name.
type Shim struct {
	reg *registry.Registry
}

func NewShim(reg *registry.Registry) *Shim {
	return &Shim{reg: reg}
}

func (s *Shim) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.Health)
	e.GET("/tools", s.ListTools)
	e.GET("/schema", s.Schema)
	e.POST("/invoke", s.Invoke)
}

func (s *Shim) Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

type toolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Shim) ListTools(c echo.Context) error {
	tools := s.reg.Tools()
	out := make([]toolInfo, 0, len(tools))
	for _, t := range tools {
		out = append(out, toolInfo{Name: t.Name, Description: t.Description})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"tools": out})
}

func (s *Shim) Schema(c echo.Context) error {
	return c.JSONBlob(http.StatusOK, componentsSchema)
}

type invokeRequest struct {
	Tool string          `json:"tool"`
	Args json.RawMessage `json:"args"`
}

func (s *Shim) Invoke(c echo.Context) error {
	var req invokeRequest
	if err := c.Bind(&req); err != nil {
		return s.errorJSON(c, http.StatusBadRequest, "bad_request", "body must be a JSON object", err.Error())
	}
	if req.Tool == "" {
		return s.errorJSON(c, http.StatusBadRequest, "bad_request", "tool must be a non-empty string", nil)
	}
	c.Set("tool", req.Tool)
	if len(req.Args) > 0 && !isJSONObject(req.Args) {
		return s.errorJSON(c, http.StatusBadRequest, "bad_request", "args must be a JSON object", nil)
	}

	result, err := s.reg.Invoke(c.Request().Context(), req.Tool, req.Args)
	if err != nil {
		return s.toolError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"ok":     true,
		"tool":   req.Tool,
		"result": result,
	})
}

func isJSONObject(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}

func (s *Shim) toolError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, registry.ErrUnknownTool):
		return s.errorJSON(c, http.StatusNotFound, "unknown_tool", err.Error(), nil)
	case errors.Is(err, registry.ErrNotFound):
		return s.errorJSON(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, registry.ErrInvalidArgs):
		return s.errorJSON(c, http.StatusUnprocessableEntity, "invalid_args", err.Error(), nil)
	default:
		return s.errorJSON(c, http.StatusInternalServerError, "internal", "internal error", nil)
	}
}

func (s *Shim) errorJSON(c echo.Context, status int, code, message string, details interface{}) error {
	requestID, _ := c.Get("request_id").(string)
	if requestID == "" {
		requestID = c.Response().Header().Get(middleware.RequestIDHeader)
	}
	body := map[string]interface{}{
		"code":       code,
		"message":    message,
		"request_id": requestID,
	}
	if details != nil {
		body["details"] = details
	}
	return c.JSON(status, body)
}
