package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vaxtrackhq/vaxtrack-backend/internal/model"
	"github.com/vaxtrackhq/vaxtrack-backend/internal/repository"
	"github.com/vaxtrackhq/vaxtrack-backend/internal/response"
	"github.com/vaxtrackhq/vaxtrack-backend/internal/service"
	"github.com/vaxtrackhq/vaxtrack-backend/internal/validator"
)

// DriveHandler handles vaccination drive scheduling endpoints.
type DriveHandler struct {
	driveService *service.DriveService
}

// NewDriveHandler creates a new DriveHandler.
func NewDriveHandler(driveService *service.DriveService) *DriveHandler {
	return &DriveHandler{driveService: driveService}
}

// ListDrives godoc
// GET /api/v1/drives
// Lists all drives, date ascending.
func (h *DriveHandler) ListDrives(c *gin.Context) {
	drives, err := h.driveService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"drives": drives})
}

// GetDrive godoc
// GET /api/v1/drives/:id
func (h *DriveHandler) GetDrive(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	drive, err := h.driveService.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrDriveNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"drive": drive})
}

// CreateDrive godoc
// POST /api/v1/drives
// Schedules a new drive, enforcing lead time and slot conflict rules.
func (h *DriveHandler) CreateDrive(c *gin.Context) {
	var req model.CreateDriveRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	drive, err := h.driveService.Create(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLeadTime):
			response.Fail(c, http.StatusBadRequest, response.ErrLeadTimeViolation)
		case errors.Is(err, service.ErrScheduleConflict):
			response.Fail(c, http.StatusBadRequest, response.ErrScheduleConflict)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"drive": drive})
}

// UpdateDrive godoc
// PUT /api/v1/drives/:id
// Merges the patch into an existing, still-future drive.
func (h *DriveHandler) UpdateDrive(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpdateDriveRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	drive, err := h.driveService.Update(c.Request.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDriveNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrPastDriveImmutable):
			response.Fail(c, http.StatusBadRequest, response.ErrPastDriveImmutable)
		case errors.Is(err, service.ErrScheduleConflict):
			response.Fail(c, http.StatusBadRequest, response.ErrScheduleConflict)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"drive": drive})
}

// DeleteDrive godoc
// DELETE /api/v1/drives/:id
// Deletion is refused while recorded vaccinations still reference the drive.
func (h *DriveHandler) DeleteDrive(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.driveService.Delete(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, service.ErrDriveNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, repository.ErrDriveReferenced):
			response.Fail(c, http.StatusConflict, response.ErrDependencyExists)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "drive deleted successfully"})
}
