package triage

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/medkit/medkit/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "clinician", "user"))
	readGroup.POST("/triage", h.Triage)
	readGroup.GET("/kb/search", h.Search)

	writeGroup := api.Group("", auth.RequireRole("admin", "clinician"))
	writeGroup.PUT("/kb/docs", h.UpsertDoc)
}

type triageRequest struct {
	Symptoms []string `json:"symptoms"`
}

func (h *Handler) Triage(c echo.Context) error {
	var req triageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	assessment, err := Assess(req.Symptoms)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, assessment)
}

func (h *Handler) Search(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = n
	}
	hits, err := h.svc.Search(c.Request().Context(), c.QueryParam("q"), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"hits": hits})
}

func (h *Handler) UpsertDoc(c echo.Context) error {
	var d Doc
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if d.Title == "" || d.URL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title and url are required")
	}
	if err := h.svc.docs.Upsert(c.Request().Context(), &d); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, d)
}
