package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/novocode/novocode-api/internal/middleware"
	"github.com/novocode/novocode-api/internal/models"
	"github.com/novocode/novocode-api/internal/services"
	"github.com/novocode/novocode-api/pkg/logger"
	"go.uber.org/zap"
)

// AdminTestimonialsHandler serves testimonial moderation for staff.
type AdminTestimonialsHandler struct {
	service services.TestimonialServiceInterface
}

func NewAdminTestimonialsHandler(service services.TestimonialServiceInterface) *AdminTestimonialsHandler {
	return &AdminTestimonialsHandler{service: service}
}

// List supports optional status and publicationStatus query filters.
func (h *AdminTestimonialsHandler) List(c *gin.Context) {
	filter, err := parseTestimonialFilter(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid filter", err)
		return
	}

	testimonials := h.service.List(c.Request.Context(), filter)
	c.JSON(http.StatusOK, models.AdminTestimonialsListResponse{
		Testimonials: testimonials,
		Total:        len(testimonials),
	})
}

func (h *AdminTestimonialsHandler) Moderate(c *gin.Context) {
	var req models.ModerateTestimonialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	testimonialID := c.Param("id")
	testimonial, err := h.service.Moderate(c.Request.Context(), testimonialID, req.Action)
	if err != nil {
		respondServiceError(c, err, "Testimonial not found")
		return
	}

	if session, err := middleware.GetAdminSession(c); err == nil {
		logger.Info("Testimonial moderation by admin",
			zap.String("admin_user_id", session.UserID),
			zap.String("testimonial_id", testimonialID),
			zap.String("action", string(req.Action)))
	}

	c.JSON(http.StatusOK, models.AdminTestimonialResponse{Testimonial: testimonial})
}

func (h *AdminTestimonialsHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err, "Testimonial not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func parseTestimonialFilter(c *gin.Context) (models.TestimonialFilter, error) {
	var filter models.TestimonialFilter

	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := models.TestimonialStatus(strings.ToUpper(raw))
		if !status.IsValid() {
			return filter, fmt.Errorf("invalid status filter %q", raw)
		}
		filter.Status = status
	}

	if raw := strings.TrimSpace(c.Query("publicationStatus")); raw != "" {
		publication := models.PublicationStatus(strings.ToUpper(raw))
		if publication != models.PublicationStatusDraft && publication != models.PublicationStatusPublished {
			return filter, fmt.Errorf("invalid publicationStatus filter %q", raw)
		}
		filter.PublicationStatus = publication
	}

	return filter, nil
}
