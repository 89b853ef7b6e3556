package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rebooked/campus-service/internal/services"
	"github.com/rebooked/campus-service/internal/utils"
)

type CalculationHandler struct {
	BaseHandler
	savedService  services.SavedCalculationService
	exportService services.ExportService
}

func NewCalculationHandler(savedService services.SavedCalculationService, exportService services.ExportService, logger utils.Logger) *CalculationHandler {
	return &CalculationHandler{
		BaseHandler:   NewBaseHandler(logger),
		savedService:  savedService,
		exportService: exportService,
	}
}

// ListCalculations returns the caller's saved calculations, newest first
// @Summary List saved calculations
// @Tags calculations
// @Param X-Guest-ID header string false "Guest identifier when not signed in"
// @Router /calculations [get]
func (h *CalculationHandler) ListCalculations(c *gin.Context) {
	saved, err := h.savedService.List(requestContext(c), ownerKey(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"calculations": saved,
		"total":        len(saved),
	})
}

// SaveCalculation stores a snapshot of the caller's subjects and score
// @Summary Save calculation
// @Tags calculations
// @Param request body services.SaveCalculationRequest true "Snapshot"
// @Router /calculations [post]
func (h *CalculationHandler) SaveCalculation(c *gin.Context) {
	var req services.SaveCalculationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	h.LogRequest(c, "Saving calculation", "subject_count", len(req.Subjects))

	saved, err := h.savedService.Save(requestContext(c), ownerKey(c), &req)
	if err != nil {
		if services.IsPersistence(err) && saved != nil {
			h.LogError(c, err, "Calculation computed but not persisted", "calculation_id", saved.ID)
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{
				Message: "Calculation computed but could not be saved",
				Details: saved,
				Code:    "persistence_failed",
			})
			return
		}
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Calculation saved", saved)
}

// GetCalculation returns one saved calculation
// @Summary Get saved calculation
// @Tags calculations
// @Router /calculations/{id} [get]
func (h *CalculationHandler) GetCalculation(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	saved, err := h.savedService.Get(requestContext(c), ownerKey(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, saved)
}

// DeleteCalculation removes one saved calculation
// @Summary Delete saved calculation
// @Tags calculations
// @Router /calculations/{id} [delete]
func (h *CalculationHandler) DeleteCalculation(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	if err := h.savedService.Delete(requestContext(c), ownerKey(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ExportCalculation downloads a saved calculation as csv or xlsx
// @Summary Export saved calculation
// @Tags calculations
// @Param format query string false "csv or xlsx (default)"
// @Router /calculations/{id}/export [get]
func (h *CalculationHandler) ExportCalculation(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	file, err := h.exportService.ExportCalculation(requestContext(c), ownerKey(c), id, c.Query("format"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
