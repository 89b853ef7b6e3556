package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rebooked/campus-service/internal/services"
	"github.com/rebooked/campus-service/internal/utils"
)

type HandlerManager struct {
	apsHandler         *APSHandler
	catalogHandler     *CatalogHandler
	calculationHandler *CalculationHandler
	tokenParser        TokenParser
}

// NewHandlerManager wires handlers to services. tokenParser may be nil when sign-in is disabled.
func NewHandlerManager(serviceManager services.ServiceManager, tokenParser TokenParser, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		apsHandler:         NewAPSHandler(serviceManager.APS(), logger),
		catalogHandler:     NewCatalogHandler(serviceManager.Catalog(), logger),
		calculationHandler: NewCalculationHandler(serviceManager.SavedCalculations(), serviceManager.Export(), logger),
		tokenParser:        tokenParser,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")
	{
		aps := v1.Group("/aps")
		{
			aps.POST("/calculate", hm.apsHandler.Calculate)
			aps.POST("/points", hm.apsHandler.Points)
		}

		universities := v1.Group("/universities")
		{
			universities.GET("", hm.catalogHandler.ListUniversities)
			universities.GET("/:id", hm.catalogHandler.GetUniversity)
		}

		degrees := v1.Group("/degrees")
		{
			degrees.GET("", hm.catalogHandler.ListDegrees)
			degrees.GET("/stats", hm.catalogHandler.DegreeStatistics)
			degrees.GET("/:id", hm.catalogHandler.GetDegree)
		}

		v1.GET("/catalog/diagnostics", hm.catalogHandler.CatalogDiagnostics)

		calculations := v1.Group("/calculations", Authenticate(hm.tokenParser))
		{
			calculations.GET("", hm.calculationHandler.ListCalculations)
			calculations.POST("", hm.calculationHandler.SaveCalculation)
			calculations.GET("/:id", hm.calculationHandler.GetCalculation)
			calculations.DELETE("/:id", hm.calculationHandler.DeleteCalculation)
			calculations.GET("/:id/export", hm.calculationHandler.ExportCalculation)
		}
	}
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "campus-service",
	})
}
