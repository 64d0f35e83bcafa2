package rest

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/novocode/novocode-api/internal/models"
	apperrors "github.com/novocode/novocode-api/pkg/errors"
)

const leadsTable = "leads"

type leadRow struct {
	ID                     string            `json:"id"`
	Name                   string            `json:"name"`
	Email                  string            `json:"email"`
	Phone                  *string           `json:"phone"`
	Company                *string           `json:"company"`
	Service                *string           `json:"service"`
	Budget                 *string           `json:"budget"`
	Message                string            `json:"message"`
	Source                 models.LeadSource `json:"source"`
	Status                 models.LeadStatus `json:"status"`
	TestimonialToken       *string           `json:"testimonial_token"`
	TestimonialEmailSentAt *time.Time        `json:"testimonial_email_sent_at"`
	CreatedAt              time.Time         `json:"created_at"`
	UpdatedAt              time.Time         `json:"updated_at"`
}

func (r *leadRow) toModel() *models.Lead {
	return &models.Lead{
		ID:                     r.ID,
		Name:                   r.Name,
		Email:                  r.Email,
		Phone:                  r.Phone,
		Company:                r.Company,
		Service:                r.Service,
		Budget:                 r.Budget,
		Message:                r.Message,
		Source:                 r.Source,
		Status:                 r.Status,
		TestimonialToken:       r.TestimonialToken,
		TestimonialEmailSentAt: r.TestimonialEmailSentAt,
		CreatedAt:              r.CreatedAt,
		UpdatedAt:              r.UpdatedAt,
	}
}

func (c *Client) getLead(ctx context.Context, operation, column, value string) (*models.Lead, error) {
	rows, err := execute[leadRow](ctx, c, request{
		operation: operation,
		method:    http.MethodGet,
		table:     leadsTable,
		query:     url.Values{"select": {"*"}, column: {eq(value)}, "limit": {"1"}},
	})
	if err != nil {
		return nil, err
	}
	if row := firstOrNil(rows); row != nil {
		return row.toModel(), nil
	}
	return nil, nil
}

// GetLeadByID returns (nil, nil) when the lead does not exist.
func (c *Client) GetLeadByID(ctx context.Context, id string) (*models.Lead, error) {
	return c.getLead(ctx, "getLeadByID", "id", id)
}

// GetLeadByTestimonialToken returns (nil, nil) when no lead carries token.
func (c *Client) GetLeadByTestimonialToken(ctx context.Context, token string) (*models.Lead, error) {
	return c.getLead(ctx, "getLeadByTestimonialToken", "testimonial_token", token)
}

// ListLeads returns all leads, newest first.
func (c *Client) ListLeads(ctx context.Context) ([]*models.Lead, error) {
	rows, err := execute[leadRow](ctx, c, request{
		operation: "listLeads",
		method:    http.MethodGet,
		table:     leadsTable,
		query:     url.Values{"select": {"*"}, "order": {"created_at.desc"}},
	})
	if err != nil {
		return nil, err
	}

	leads := make([]*models.Lead, 0, len(rows))
	for i := range rows {
		leads = append(leads, rows[i].toModel())
	}
	return leads, nil
}

type leadInsert struct {
	Name    string            `json:"name"`
	Email   string            `json:"email"`
	Phone   *string           `json:"phone,omitempty"`
	Company *string           `json:"company,omitempty"`
	Service *string           `json:"service,omitempty"`
	Budget  *string           `json:"budget,omitempty"`
	Message string            `json:"message"`
	Source  models.LeadSource `json:"source"`
	Status  models.LeadStatus `json:"status"`
}

// CreateLead inserts a new lead in status NEW.
func (c *Client) CreateLead(ctx context.Context, lead *models.Lead) (*models.Lead, error) {
	rows, err := execute[leadRow](ctx, c, request{
		operation: "createLead",
		method:    http.MethodPost,
		table:     leadsTable,
		body: leadInsert{
			Name:    lead.Name,
			Email:   lead.Email,
			Phone:   lead.Phone,
			Company: lead.Company,
			Service: lead.Service,
			Budget:  lead.Budget,
			Message: lead.Message,
			Source:  lead.Source,
			Status:  models.LeadStatusNew,
		},
	})
	if err != nil {
		return nil, err
	}
	row := firstOrNil(rows)
	if row == nil {
		return nil, apperrors.InternalError("insert returned no lead")
	}
	return row.toModel(), nil
}

// SetLeadTestimonialRequest records the testimonial token issued for a lead.
// An existing token is never replaced; sentAt is only written when non-nil.
func (c *Client) SetLeadTestimonialRequest(ctx context.Context, id, token string, sentAt *time.Time) (*models.Lead, error) {
	current, err := c.GetLeadByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, apperrors.NotFoundError("lead")
	}

	patch := map[string]interface{}{"updated_at": c.now().UTC()}
	query := url.Values{"id": {eq(id)}}
	if current.TestimonialToken == nil {
		patch["testimonial_token"] = token
		// Guards against a concurrent writer issuing a different token.
		query.Set("testimonial_token", "is.null")
	}
	if sentAt != nil {
		patch["testimonial_email_sent_at"] = sentAt.UTC()
	}

	rows, err := execute[leadRow](ctx, c, request{
		operation: "setLeadTestimonialRequest",
		method:    http.MethodPatch,
		table:     leadsTable,
		query:     query,
		body:      patch,
	})
	if err != nil {
		return nil, err
	}
	row := firstOrNil(rows)
	if row == nil {
		return nil, apperrors.ConflictError("lead testimonial token was set concurrently")
	}
	return row.toModel(), nil
}
