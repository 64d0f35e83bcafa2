package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/novocode/novocode-api/internal/models"
	"github.com/novocode/novocode-api/internal/services"
)

type LeadHandler struct {
	service services.LeadServiceInterface
}

func NewLeadHandler(service services.LeadServiceInterface) *LeadHandler {
	return &LeadHandler{service: service}
}

// CreateLead accepts the contact and budget forms.
func (h *LeadHandler) CreateLead(c *gin.Context) {
	var req models.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	lead, err := h.service.CreateLead(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err, "Not found")
		return
	}

	c.JSON(http.StatusCreated, models.CreateLeadResponse{
		Success: true,
		LeadID:  lead.ID,
	})
}
