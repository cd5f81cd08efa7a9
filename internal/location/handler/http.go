package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/location"
	"github.com/fekuna/omnipos-inventory-service/internal/location/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/middleware"
	"github.com/gin-gonic/gin"
)

// HTTPHandler exposes the location registry on the admin REST API.
type HTTPHandler struct {
	uc location.UseCase
}

func NewHTTPHandler(uc location.UseCase) *HTTPHandler {
	return &HTTPHandler{uc: uc}
}

func (h *HTTPHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/locations")
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

func (h *HTTPHandler) create(c *gin.Context) {
	var input dto.CreateLocationInput
	if !middleware.BindJSON(c, &input) {
		return
	}
	loc, err := h.uc.CreateLocation(c.Request.Context(), &input)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, loc)
}

func (h *HTTPHandler) list(c *gin.Context) {
	var filters dto.LocationFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		middleware.AbortWithError(c, apperror.New(apperror.KindValidation, "malformed query", err))
		return
	}
	locs, total, err := h.uc.ListLocations(c.Request.Context(), &filters)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse{Locations: locs, Total: total})
}

func (h *HTTPHandler) get(c *gin.Context) {
	loc, err := h.uc.GetLocation(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, loc)
}

func (h *HTTPHandler) update(c *gin.Context) {
	var input dto.UpdateLocationInput
	if !middleware.BindJSON(c, &input) {
		return
	}
	input.ID = c.Param("id")
	loc, err := h.uc.UpdateLocation(c.Request.Context(), &input)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, loc)
}

func (h *HTTPHandler) delete(c *gin.Context) {
	if err := h.uc.DeleteLocation(c.Request.Context(), c.Param("id")); err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
