package models

import "time"

// LeadStatus tracks a sales inquiry through the pipeline.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "NEW"
	LeadStatusContacted LeadStatus = "CONTACTED"
	LeadStatusConverted LeadStatus = "CONVERTED"
	LeadStatusLost      LeadStatus = "LOST"
)

// LeadSource identifies which public form produced the lead.
type LeadSource string

const (
	LeadSourceContact LeadSource = "contact"
	LeadSourceBudget  LeadSource = "budget"
)

// Lead is a sales inquiry captured by the contact or budget form.
type Lead struct {
	ID                     string     `json:"id"`
	Name                   string     `json:"name"`
	Email                  string     `json:"email"`
	Phone                  *string    `json:"phone,omitempty"`
	Company                *string    `json:"company,omitempty"`
	Service                *string    `json:"service,omitempty"`
	Budget                 *string    `json:"budget,omitempty"`
	Message                string     `json:"message"`
	Source                 LeadSource `json:"source"`
	Status                 LeadStatus `json:"status"`
	TestimonialToken       *string    `json:"testimonialToken,omitempty"`
	TestimonialEmailSentAt *time.Time `json:"testimonialEmailSentAt,omitempty"`
	CreatedAt              time.Time  `json:"createdAt"`
	UpdatedAt              time.Time  `json:"updatedAt"`
}

// CreateLeadRequest is the public contact/budget form payload.
type CreateLeadRequest struct {
	Name           string `json:"name" binding:"required,min=2,max=100"`
	Email          string `json:"email" binding:"required,email,max=255"`
	Phone          string `json:"phone" binding:"omitempty,max=30"`
	Company        string `json:"company" binding:"omitempty,max=100"`
	Service        string `json:"service" binding:"omitempty,max=100"`
	Budget         string `json:"budget" binding:"omitempty,max=50"`
	Message        string `json:"message" binding:"required,min=10,max=5000"`
	Source         string `json:"source" binding:"omitempty,oneof=contact budget"`
	RecaptchaToken string `json:"recaptchaToken" binding:"required"`
}

// CreateLeadResponse is returned after the form is accepted.
type CreateLeadResponse struct {
	Success bool   `json:"success"`
	LeadID  string `json:"leadId,omitempty"`
	Error   string `json:"error,omitempty"`
}

// LeadsListResponse is the admin lead listing.
type LeadsListResponse struct {
	Leads []*Lead `json:"leads"`
	Total int     `json:"total"`
}
