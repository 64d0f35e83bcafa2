package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/novocode/novocode-api/internal/models"
	"github.com/novocode/novocode-api/internal/services"
)

// TestimonialHandler serves the public testimonial endpoints.
type TestimonialHandler struct {
	service services.TestimonialServiceInterface
}

func NewTestimonialHandler(service services.TestimonialServiceInterface) *TestimonialHandler {
	return &TestimonialHandler{service: service}
}

// ListPublished returns approved and published testimonials.
func (h *TestimonialHandler) ListPublished(c *gin.Context) {
	testimonials := h.service.ListPublished(c.Request.Context())

	c.Header("Cache-Control", "public, max-age=60, stale-while-revalidate=300")
	c.JSON(http.StatusOK, models.PublishedTestimonialsResponse{Testimonials: testimonials})
}

// Resolve looks up the testimonial behind an emailed request link.
func (h *TestimonialHandler) Resolve(c *gin.Context) {
	testimonial, err := h.service.Resolve(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondServiceError(c, err, "Testimonial not found")
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, models.ResolveTestimonialResponse{
		CanSubmit:   testimonial.CanSubmit(),
		Testimonial: testimonial.ToPublic(),
	})
}

func (h *TestimonialHandler) Submit(c *gin.Context) {
	var req models.SubmitTestimonialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	testimonial, err := h.service.Submit(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err, "Testimonial not found")
		return
	}

	c.JSON(http.StatusOK, models.SubmitTestimonialResponse{
		Success:     true,
		Testimonial: testimonial.ToPublic(),
	})
}
