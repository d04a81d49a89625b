package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vaxtrackhq/vaxtrack-backend/internal/response"
	"github.com/vaxtrackhq/vaxtrack-backend/internal/service"
)

// AnalyticsHandler serves the dashboard summary.
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// GetAnalytics godoc
// GET /api/v1/analytics
func (h *AnalyticsHandler) GetAnalytics(c *gin.Context) {
	summary, err := h.analyticsService.Summary(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"analytics": summary})
}
