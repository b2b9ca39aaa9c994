package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/packlab/packstore/internal/domain/errors"
	"github.com/packlab/packstore/internal/domain/model"
	"github.com/packlab/packstore/internal/pkg/keygen"
	"github.com/packlab/packstore/internal/server/http/dto"
	"github.com/packlab/packstore/internal/server/http/middleware"
)

// AdminHandler manages the authenticated introspection endpoints.
type AdminHandler struct {
	facade AdminFacade
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(facade AdminFacade) *AdminHandler {
	return &AdminHandler{facade: facade}
}

// Login handles POST /admin/login.
func (h *AdminHandler) Login(c *gin.Context) {
	var req dto.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Password == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "password is required"})
		return
	}

	token, err := h.facade.AdminLogin(req.Password)
	if err != nil {
		if errors.Is(err, domainErrors.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
		return
	}

	middleware.SetAuthCookie(c, token)
	c.JSON(http.StatusOK, dto.AdminLoginResponse{Token: token})
}

// Orders handles GET /admin/orders.
func (h *AdminHandler) Orders(c *gin.Context) {
	orders, err := h.facade.AdminOrders(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
		return
	}

	response := make([]dto.AdminOrder, 0, len(orders))
	for _, o := range orders {
		response = append(response, toAdminOrder(o))
	}
	c.JSON(http.StatusOK, response)
}

// Licenses handles GET /admin/licenses.
func (h *AdminHandler) Licenses(c *gin.Context) {
	licenses, err := h.facade.AdminLicenses(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
		return
	}

	response := make([]dto.AdminLicense, 0, len(licenses))
	for _, l := range licenses {
		response = append(response, toAdminLicense(l))
	}
	c.JSON(http.StatusOK, response)
}

func toAdminOrder(order model.Order) dto.AdminOrder {
	return dto.AdminOrder{
		Code:        order.Code,
		Status:      string(order.Status),
		Amount:      order.Amount,
		Description: order.Description,
		LicenseKey:  order.LicenseKey,
		CreatedAt:   order.CreatedAt,
		CompletedAt: order.CompletedAt,
	}
}

func toAdminLicense(license model.License) dto.AdminLicense {
	return dto.AdminLicense{
		Key:         license.Key,
		OrderCode:   license.OrderCode,
		Status:      string(license.Status),
		Device:      keygen.ShortHash(license.DeviceHash),
		ExpiresAt:   license.ExpiresAt,
		CreatedAt:   license.CreatedAt,
		ActivatedAt: license.ActivatedAt,
	}
}
