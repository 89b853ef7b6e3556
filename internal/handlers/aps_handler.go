package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rebooked/campus-service/internal/services"
	"github.com/rebooked/campus-service/internal/utils"
)

type APSHandler struct {
	BaseHandler
	apsService services.APSService
}

func NewAPSHandler(apsService services.APSService, logger utils.Logger) *APSHandler {
	return &APSHandler{
		BaseHandler: NewBaseHandler(logger),
		apsService:  apsService,
	}
}

type PointsRequest struct {
	Marks *float64 `json:"marks"`
}

// Calculate scores a subject list and matches it against the catalog
// @Summary Calculate APS
// @Tags aps
// @Accept json
// @Produce json
// @Param request body services.CalculateRequest true "Subjects and optional result filter"
// @Success 200 {object} services.CalculationResponse
// @Failure 400 {object} ErrorResponse
// @Router /aps/calculate [post]
func (h *APSHandler) Calculate(c *gin.Context) {
	var req services.CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	h.LogRequest(c, "Calculating APS", "subject_count", len(req.Subjects))

	result, err := h.apsService.Calculate(requestContext(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Points converts a single mark to APS points and NSC level
// @Summary Points for a mark
// @Tags aps
// @Router /aps/points [post]
func (h *APSHandler) Points(c *gin.Context) {
	var req PointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}
	if req.Marks == nil {
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", nil,
			services.ValidationErrors{*services.NewValidationError("marks", "is required", nil)})
		return
	}

	result, err := h.apsService.PointsFor(*req.Marks)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
