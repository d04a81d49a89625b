package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vaxtrackhq/vaxtrack-backend/internal/export"
	"github.com/vaxtrackhq/vaxtrack-backend/internal/model"
	"github.com/vaxtrackhq/vaxtrack-backend/internal/response"
	"github.com/vaxtrackhq/vaxtrack-backend/internal/service"
)

// dateParamLayouts are the accepted formats for date_from/date_to query
// parameters: full RFC 3339 or a bare date.
var dateParamLayouts = []string{time.RFC3339, "2006-01-02"}

// ReportHandler handles the vaccination report endpoint, in paginated JSON
// and CSV attachment modes.
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// GetReport godoc
// GET /api/v1/reports?vaccine_name=&status=&date_from=&date_to=&page=&per_page=&format=
// With format=csv the full (unpaginated) result set is returned as an
// attachment; otherwise rows are paginated for display.
func (h *ReportHandler) GetReport(c *gin.Context) {
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}

	rows, err := h.reportService.Generate(c.Request.Context(), filter)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if c.Query("format") == "csv" {
		data, err := export.CSV(rows, export.Options{})
		if err != nil {
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
			return
		}
		c.Header("Content-Disposition", `attachment; filename=`+export.Filename)
		c.Data(http.StatusOK, "text/csv", data)
		return
	}

	page := intQuery(c, "page", 1)
	perPage := intQuery(c, "per_page", 20)
	if perPage > 100 {
		perPage = 100
	}

	visible, pagination := service.Paginate(rows, page, perPage)
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"rows": visible}, pagination)
}

// parseFilter validates the query parameters into a ReportFilter. It writes
// the error response itself and returns ok=false on bad input.
func (h *ReportHandler) parseFilter(c *gin.Context) (model.ReportFilter, bool) {
	filter := model.ReportFilter{
		VaccineName: c.Query("vaccine_name"),
		Status:      model.ReportStatus(c.DefaultQuery("status", string(model.ReportStatusAll))),
	}

	if !filter.Status.Valid() {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"status": "must be one of all, vaccinated, unvaccinated"})
		return filter, false
	}

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{
		{"date_from", &filter.DateFrom},
		{"date_to", &filter.DateTo},
	} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		t, err := parseDateParam(raw)
		if err != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{p.name: "must be an RFC 3339 timestamp or YYYY-MM-DD date"})
			return filter, false
		}
		*p.dst = &t
	}

	return filter, true
}

func parseDateParam(raw string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateParamLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
