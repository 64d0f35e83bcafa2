package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/novocode/novocode-api/internal/models"
	"github.com/novocode/novocode-api/internal/services"
)

type AdminLeadsHandler struct {
	leads        services.LeadServiceInterface
	testimonials services.TestimonialServiceInterface
}

func NewAdminLeadsHandler(leads services.LeadServiceInterface, testimonials services.TestimonialServiceInterface) *AdminLeadsHandler {
	return &AdminLeadsHandler{
		leads:        leads,
		testimonials: testimonials,
	}
}

func (h *AdminLeadsHandler) List(c *gin.Context) {
	leads := h.leads.ListLeads(c.Request.Context())
	c.JSON(http.StatusOK, models.LeadsListResponse{
		Leads: leads,
		Total: len(leads),
	})
}

// RequestTestimonial asks the lead's client for a testimonial. The response
// carries the form link so staff can share it by hand when the email fails.
func (h *AdminLeadsHandler) RequestTestimonial(c *gin.Context) {
	resp, err := h.testimonials.RequestFromLead(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Lead not found")
		return
	}

	c.JSON(http.StatusOK, resp)
}
