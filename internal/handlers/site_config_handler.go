package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/novocode/novocode-api/internal/services"
)

type SiteConfigHandler struct {
	service services.SiteConfigServiceInterface
}

func NewSiteConfigHandler(service services.SiteConfigServiceInterface) *SiteConfigHandler {
	return &SiteConfigHandler{service: service}
}

// Get always answers 200; defaults are served when no store is reachable.
func (h *SiteConfigHandler) Get(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=60")
	c.JSON(http.StatusOK, h.service.Get(c.Request.Context()))
}
