package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"anchorstock/internal/core/apperror"
	"anchorstock/internal/domain/catalogs/handler"
	"anchorstock/internal/domain/catalogs/location"
	"anchorstock/internal/infrastructure/http/v1/dto"
)

// CatalogHandler serves the location and handler catalogs. These are simple
// enough that the handler talks to the repositories directly.
type CatalogHandler struct {
	locations location.Repository
	handlers  handler.Repository
}

func NewCatalogHandler(locations location.Repository, handlers handler.Repository) *CatalogHandler {
	return &CatalogHandler{locations: locations, handlers: handlers}
}

// CreateLocation adds a warehouse or live room.
// POST /bases/:baseId/locations
func (h *CatalogHandler) CreateLocation(c *gin.Context) {
	base, ok := baseID(c)
	if !ok {
		return
	}

	var req dto.CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.NewValidation("invalid request body").WithCause(err))
		return
	}

	loc := location.New(base, req.Code, req.Name, location.Type(req.Type))
	if err := loc.Validate(c.Request.Context()); err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.locations.Create(c.Request.Context(), loc); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, loc)
}

// ListLocations returns the base's active locations.
// GET /bases/:baseId/locations
func (h *CatalogHandler) ListLocations(c *gin.Context) {
	base, ok := baseID(c)
	if !ok {
		return
	}

	locations, err := h.locations.ListActive(c.Request.Context(), base)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": locations})
}

// DeleteLocation deactivates a location.
// DELETE /bases/:baseId/locations/:locationId
func (h *CatalogHandler) DeleteLocation(c *gin.Context) {
	base, ok := baseID(c)
	if !ok {
		return
	}
	locationID, ok := pathID(c, "locationId")
	if !ok {
		return
	}

	if err := h.locations.Delete(c.Request.Context(), base, locationID); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CreateHandler adds a stock handler.
// POST /bases/:baseId/handlers
func (h *CatalogHandler) CreateHandler(c *gin.Context) {
	base, ok := baseID(c)
	if !ok {
		return
	}

	var req dto.CreateHandlerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.NewValidation("invalid request body").WithCause(err))
		return
	}

	hd := handler.New(base, req.Code, req.Name)
	hd.Phone = req.Phone
	if err := hd.Validate(c.Request.Context()); err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.handlers.Create(c.Request.Context(), hd); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, hd)
}

// ListHandlers returns the base's active handlers.
// GET /bases/:baseId/handlers
func (h *CatalogHandler) ListHandlers(c *gin.Context) {
	base, ok := baseID(c)
	if !ok {
		return
	}

	result, err := h.handlers.ListActive(c.Request.Context(), base)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

// DeleteHandler deactivates a handler.
// DELETE /bases/:baseId/handlers/:handlerId
func (h *CatalogHandler) DeleteHandler(c *gin.Context) {
	base, ok := baseID(c)
	if !ok {
		return
	}
	handlerID, ok := pathID(c, "handlerId")
	if !ok {
		return
	}

	if err := h.handlers.Delete(c.Request.Context(), base, handlerID); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
