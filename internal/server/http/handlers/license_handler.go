package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/packlab/packstore/internal/domain/errors"
	"github.com/packlab/packstore/internal/server/http/dto"
	"github.com/packlab/packstore/internal/usecase"
)

// LicenseHandler manages redemption and lookup endpoints.
type LicenseHandler struct {
	facade LicenseFacade
}

// NewLicenseHandler constructs LicenseHandler.
func NewLicenseHandler(facade LicenseFacade) *LicenseHandler {
	return &LicenseHandler{facade: facade}
}

// Activate handles POST /activate-license.
func (h *LicenseHandler) Activate(c *gin.Context) {
	var req dto.ActivateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.LicenseKey == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "licenseKey is required"})
		return
	}

	license, err := h.facade.ActivateLicense(c.Request.Context(), req.LicenseKey, req.DeviceID)
	if err != nil {
		writeLicenseError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ActivateResponse{Success: true, ExpiresAt: license.ExpiresAt})
}

// Bind handles POST /bind-device.
func (h *LicenseHandler) Bind(c *gin.Context) {
	var req dto.BindDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.LicenseKey == "" || req.DeviceID == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "licenseKey and deviceId are required"})
		return
	}

	if err := h.facade.BindDevice(c.Request.Context(), req.LicenseKey, req.DeviceID); err != nil {
		writeLicenseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Check handles POST /check-license.
func (h *LicenseHandler) Check(c *gin.Context) {
	var req dto.CheckLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.LicenseKey == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "licenseKey is required"})
		return
	}

	check, err := h.facade.CheckLicense(c.Request.Context(), req.LicenseKey)
	if err != nil {
		writeLicenseError(c, err)
		return
	}

	c.JSON(http.StatusOK, toCheckResponse(check))
}

// CheckDevice handles POST /check-device-license.
func (h *LicenseHandler) CheckDevice(c *gin.Context) {
	var req dto.CheckDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.DeviceID == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "deviceId is required"})
		return
	}

	check, err := h.facade.DeviceLicense(c.Request.Context(), req.DeviceID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "no license bound to this device"})
			return
		}
		writeLicenseError(c, err)
		return
	}

	c.JSON(http.StatusOK, toCheckResponse(check))
}

func toCheckResponse(check *usecase.LicenseCheck) dto.CheckResponse {
	return dto.CheckResponse{
		LicenseKey: check.License.Key,
		Valid:      check.Valid,
		ExpiresAt:  check.License.ExpiresAt,
		DaysLeft:   check.DaysLeft,
	}
}

func writeLicenseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainErrors.ErrValidation):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request"})
	case errors.Is(err, domainErrors.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "license not found"})
	case errors.Is(err, domainErrors.ErrExpired):
		c.JSON(http.StatusGone, dto.ErrorResponse{Error: "license expired"})
	case errors.Is(err, domainErrors.ErrDeviceMismatch):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: "license is bound to another device"})
	case errors.Is(err, domainErrors.ErrAlreadyActivated):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: "license already activated"})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
	}
}
