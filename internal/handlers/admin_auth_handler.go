package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/novocode/novocode-api/internal/middleware"
	"github.com/novocode/novocode-api/internal/models"
	"github.com/novocode/novocode-api/internal/services"
)

// AdminAuthHandler handles back-office authentication endpoints.
type AdminAuthHandler struct {
	service services.AdminAuthServiceInterface
}

func NewAdminAuthHandler(service services.AdminAuthServiceInterface) *AdminAuthHandler {
	return &AdminAuthHandler{service: service}
}

func (h *AdminAuthHandler) Login(c *gin.Context) {
	var req models.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	session, jwtToken, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err, "Invalid credentials")
		return
	}

	middleware.SetAdminSessionCookie(
		c,
		jwtToken,
		h.service.GetSessionTTL(),
		h.service.GetCookieDomain(),
		h.service.GetCookieSecure(),
	)

	c.JSON(http.StatusOK, models.AdminLoginResponse{
		Success: true,
		Session: session,
	})
}

func (h *AdminAuthHandler) Logout(c *gin.Context) {
	middleware.ClearAdminSessionCookie(
		c,
		h.service.GetCookieDomain(),
		h.service.GetCookieSecure(),
	)

	c.JSON(http.StatusOK, models.AdminLogoutResponse{Success: true})
}

func (h *AdminAuthHandler) GetSession(c *gin.Context) {
	session, err := middleware.GetAdminSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Not authenticated", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": session,
	})
}
