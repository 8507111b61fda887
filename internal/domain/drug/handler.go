package drug

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medkit/medkit/internal/platform/auth"
	"github.com/medkit/medkit/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	readGroup := api.Group("", auth.RequireRole("admin", "clinician", "user"))
	readGroup.GET("/drugs", h.ListDrugs)
	readGroup.GET("/drugs/:name", h.GetDrug)
	readGroup.GET("/drugs/:name/alternatives", h.GetAlternatives)
	readGroup.GET("/drug-interactions", h.ListInteractions)
	readGroup.POST("/drug-interactions/check", h.CheckInteractions)
	readGroup.GET("/patients/:id/contraindications/:drug", h.GetContraindications)

	writeGroup := api.Group("", auth.RequireRole("admin", "clinician"))
	writeGroup.PUT("/drugs", h.UpsertDrug)
}

func (h *Handler) GetDrug(c echo.Context) error {
	d, err := h.svc.GetInfo(c.Request().Context(), c.Param("name"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) ListDrugs(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListDrugs(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpsertDrug(c echo.Context) error {
	var d Drug
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.UpsertDrug(c.Request().Context(), &d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, d)
}

type checkRequest struct {
	Drugs []string `json:"drugs"`
}

func (h *Handler) CheckInteractions(c echo.Context) error {
	var req checkRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	set, err := h.svc.CheckInteractions(c.Request().Context(), req.Drugs)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, set)
}

func (h *Handler) ListInteractions(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListInteractions(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetContraindications(c echo.Context) error {
	report, err := h.svc.Contraindications(c.Request().Context(), c.Param("drug"), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) GetAlternatives(c echo.Context) error {
	alts, err := h.svc.Alternatives(c.Request().Context(), c.Param("name"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, alts)
}
