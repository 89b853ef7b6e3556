package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rebooked/campus-service/internal/services"
	"github.com/rebooked/campus-service/internal/utils"
)

type CatalogHandler struct {
	BaseHandler
	catalogService services.CatalogService
}

func NewCatalogHandler(catalogService services.CatalogService, logger utils.Logger) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler:    NewBaseHandler(logger),
		catalogService: catalogService,
	}
}

// ListUniversities lists catalog universities
// @Summary List universities
// @Tags catalog
// @Param province query string false "Province"
// @Param type query string false "University type"
// @Param search query string false "Name, abbreviation or location"
// @Param open_only query bool false "Only universities accepting applications"
// @Router /universities [get]
func (h *CatalogHandler) ListUniversities(c *gin.Context) {
	var query services.UniversityQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid query parameters", err, err.Error())
		return
	}

	universities, err := h.catalogService.ListUniversities(requestContext(c), &query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"universities": universities,
		"total":        len(universities),
	})
}

// GetUniversity returns one university with its faculties and degrees
// @Summary Get university
// @Tags catalog
// @Param id path string true "University ID"
// @Router /universities/{id} [get]
func (h *CatalogHandler) GetUniversity(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	university, err := h.catalogService.GetUniversity(requestContext(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, university)
}

// ListDegrees browses programmes, optionally scored against an APS
// @Summary List degrees
// @Tags catalog
// @Param aps query int false "APS to evaluate against"
// @Param search query string false "Free text search"
// @Param sort_by query string false "aps, name or university"
// @Router /degrees [get]
func (h *CatalogHandler) ListDegrees(c *gin.Context) {
	var query services.DegreeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid query parameters", err, err.Error())
		return
	}

	result, err := h.catalogService.ListDegrees(requestContext(c), &query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetDegree returns one programme with its university
// @Summary Get degree
// @Tags catalog
// @Param id path string true "Degree ID"
// @Router /degrees/{id} [get]
func (h *CatalogHandler) GetDegree(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	degree, err := h.catalogService.GetDegree(requestContext(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, degree)
}

// DegreeStatistics summarises the programmes matching a browse query
// @Summary Degree statistics
// @Tags catalog
// @Router /degrees/stats [get]
func (h *CatalogHandler) DegreeStatistics(c *gin.Context) {
	var query services.DegreeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid query parameters", err, err.Error())
		return
	}

	stats, err := h.catalogService.DegreeStatistics(requestContext(c), &query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// CatalogDiagnostics lists records skipped while building the catalog
// @Summary Catalog diagnostics
// @Tags catalog
// @Router /catalog/diagnostics [get]
func (h *CatalogHandler) CatalogDiagnostics(c *gin.Context) {
	diagnostics := h.catalogService.Diagnostics()
	catalog := h.catalogService.Catalog()
	c.JSON(http.StatusOK, gin.H{
		"universities":       len(catalog.Universities),
		"degrees":            catalog.DegreeCount(),
		"generated_programs": catalog.GeneratedPrograms,
		"diagnostics":        diagnostics,
	})
}
