package models

import "time"

// SubmitTestimonialRequest is the public submission payload.
type SubmitTestimonialRequest struct {
	Token          string `json:"token" binding:"required,max=200"`
	Content        string `json:"content" binding:"required,max=1000"`
	Rating         int    `json:"rating" binding:"required,min=1,max=5"`
	ClientPosition string `json:"clientPosition" binding:"omitempty,max=100"`
	ClientCompany  string `json:"clientCompany" binding:"omitempty,max=100"`
}

type SubmitTestimonialResponse struct {
	Success     bool               `json:"success"`
	Testimonial *PublicTestimonial `json:"testimonial,omitempty"`
	Error       string             `json:"error,omitempty"`
}

// PublicTestimonial is the subset of a testimonial that may leave the API
// without an admin session.
type PublicTestimonial struct {
	ClientName     string            `json:"clientName"`
	ClientPosition *string           `json:"clientPosition,omitempty"`
	ClientCompany  *string           `json:"clientCompany,omitempty"`
	Content        *string           `json:"content,omitempty"`
	Rating         *int              `json:"rating,omitempty"`
	Status         TestimonialStatus `json:"status"`
	SubmittedAt    *time.Time        `json:"submittedAt,omitempty"`
}

// ToPublic strips contact details and internal references.
func (t *Testimonial) ToPublic() *PublicTestimonial {
	return &PublicTestimonial{
		ClientName:     t.ClientName,
		ClientPosition: t.ClientPosition,
		ClientCompany:  t.ClientCompany,
		Content:        t.Content,
		Rating:         t.Rating,
		Status:         t.Status,
		SubmittedAt:    t.SubmittedAt,
	}
}

// ResolveTestimonialResponse tells the public page whether to render the form
// or the thank-you view.
type ResolveTestimonialResponse struct {
	CanSubmit   bool               `json:"canSubmit"`
	Testimonial *PublicTestimonial `json:"testimonial"`
}

type PublishedTestimonialsResponse struct {
	Testimonials []*PublicTestimonial `json:"testimonials"`
}

type ModerateTestimonialRequest struct {
	Action TestimonialAction `json:"action" binding:"required,oneof=approve reject publish"`
}

type AdminTestimonialResponse struct {
	Testimonial *Testimonial `json:"testimonial"`
}

type AdminTestimonialsListResponse struct {
	Testimonials []*Testimonial `json:"testimonials"`
	Total        int            `json:"total"`
}

// TestimonialRequestResponse is returned when staff asks a lead for a testimonial.
type TestimonialRequestResponse struct {
	Success     bool         `json:"success"`
	Testimonial *Testimonial `json:"testimonial"`
	Link        string       `json:"link"`
	EmailSent   bool         `json:"emailSent"`
}
