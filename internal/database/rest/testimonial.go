package rest

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/novocode/novocode-api/internal/models"
	apperrors "github.com/novocode/novocode-api/pkg/errors"
)

const testimonialsTable = "testimonials"

type testimonialRow struct {
	ID                string                   `json:"id"`
	ClientName        string                   `json:"client_name"`
	ClientEmail       string                   `json:"client_email"`
	ClientPosition    *string                  `json:"client_position"`
	ClientCompany     *string                  `json:"client_company"`
	Content           *string                  `json:"content"`
	Rating            *int                     `json:"rating"`
	RequestToken      string                   `json:"request_token"`
	Status            models.TestimonialStatus `json:"status"`
	PublicationStatus models.PublicationStatus `json:"publication_status"`
	LeadID            *string                  `json:"lead_id"`
	RequestSentAt     *time.Time               `json:"request_sent_at"`
	SubmittedAt       *time.Time               `json:"submitted_at"`
	CreatedAt         time.Time                `json:"created_at"`
	UpdatedAt         time.Time                `json:"updated_at"`
}

func (r *testimonialRow) toModel() *models.Testimonial {
	return &models.Testimonial{
		ID:                r.ID,
		ClientName:        r.ClientName,
		ClientEmail:       r.ClientEmail,
		ClientPosition:    r.ClientPosition,
		ClientCompany:     r.ClientCompany,
		Content:           r.Content,
		Rating:            r.Rating,
		RequestToken:      r.RequestToken,
		Status:            r.Status,
		PublicationStatus: r.PublicationStatus,
		LeadID:            r.LeadID,
		RequestSentAt:     r.RequestSentAt,
		SubmittedAt:       r.SubmittedAt,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func toTestimonials(rows []testimonialRow) []*models.Testimonial {
	out := make([]*models.Testimonial, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toModel())
	}
	return out
}

func (c *Client) getTestimonial(ctx context.Context, operation, column, value string) (*models.Testimonial, error) {
	rows, err := execute[testimonialRow](ctx, c, request{
		operation: operation,
		method:    http.MethodGet,
		table:     testimonialsTable,
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

// GetTestimonialByToken returns (nil, nil) when no testimonial carries token.
func (c *Client) GetTestimonialByToken(ctx context.Context, token string) (*models.Testimonial, error) {
	return c.getTestimonial(ctx, "getTestimonialByToken", "request_token", token)
}

// GetTestimonialByID returns (nil, nil) when the testimonial does not exist.
func (c *Client) GetTestimonialByID(ctx context.Context, id string) (*models.Testimonial, error) {
	return c.getTestimonial(ctx, "getTestimonialByID", "id", id)
}

// ListTestimonials returns testimonials matching filter, newest first.
func (c *Client) ListTestimonials(ctx context.Context, filter models.TestimonialFilter) ([]*models.Testimonial, error) {
	query := url.Values{
		"select": {"*"},
		"order":  {"submitted_at.desc.nullslast,created_at.desc"},
	}
	if filter.Status != "" {
		query.Set("status", eq(string(filter.Status)))
	}
	if filter.PublicationStatus != "" {
		query.Set("publication_status", eq(string(filter.PublicationStatus)))
	}

	rows, err := execute[testimonialRow](ctx, c, request{
		operation: "listTestimonials",
		method:    http.MethodGet,
		table:     testimonialsTable,
		query:     query,
	})
	if err != nil {
		return nil, err
	}
	return toTestimonials(rows), nil
}

type testimonialInsert struct {
	ClientName        string                   `json:"client_name"`
	ClientEmail       string                   `json:"client_email"`
	ClientPosition    *string                  `json:"client_position,omitempty"`
	ClientCompany     *string                  `json:"client_company,omitempty"`
	RequestToken      string                   `json:"request_token"`
	Status            models.TestimonialStatus `json:"status"`
	PublicationStatus models.PublicationStatus `json:"publication_status"`
	LeadID            *string                  `json:"lead_id,omitempty"`
	RequestSentAt     *time.Time               `json:"request_sent_at,omitempty"`
}

// CreateTestimonial inserts t. A duplicate request token yields ErrConflict.
func (c *Client) CreateTestimonial(ctx context.Context, t *models.Testimonial) (*models.Testimonial, error) {
	rows, err := execute[testimonialRow](ctx, c, request{
		operation: "createTestimonial",
		method:    http.MethodPost,
		table:     testimonialsTable,
		body: testimonialInsert{
			ClientName:        t.ClientName,
			ClientEmail:       t.ClientEmail,
			ClientPosition:    t.ClientPosition,
			ClientCompany:     t.ClientCompany,
			RequestToken:      t.RequestToken,
			Status:            t.Status,
			PublicationStatus: t.PublicationStatus,
			LeadID:            t.LeadID,
			RequestSentAt:     t.RequestSentAt,
		},
	})
	if err != nil {
		return nil, err
	}
	row := firstOrNil(rows)
	if row == nil {
		return nil, apperrors.InternalError("insert returned no testimonial")
	}
	return row.toModel(), nil
}

type testimonialSubmitPatch struct {
	Content        string                   `json:"content"`
	Rating         int                      `json:"rating"`
	ClientPosition *string                  `json:"client_position,omitempty"`
	ClientCompany  *string                  `json:"client_company,omitempty"`
	Status         models.TestimonialStatus `json:"status"`
	SubmittedAt    time.Time                `json:"submitted_at"`
	UpdatedAt      time.Time                `json:"updated_at"`
}

// SubmitTestimonial stores the client's content and rating. The patch is
// filtered on status PENDING so it cannot overwrite an earlier submission.
func (c *Client) SubmitTestimonial(ctx context.Context, token string, sub models.TestimonialSubmission) (*models.Testimonial, error) {
	rows, err := execute[testimonialRow](ctx, c, request{
		operation: "submitTestimonial",
		method:    http.MethodPatch,
		table:     testimonialsTable,
		query: url.Values{
			"request_token": {eq(token)},
			"status":        {eq(string(models.TestimonialStatusPending))},
		},
		body: testimonialSubmitPatch{
			Content:        sub.Content,
			Rating:         sub.Rating,
			ClientPosition: sub.ClientPosition,
			ClientCompany:  sub.ClientCompany,
			Status:         models.TestimonialStatusSubmitted,
			SubmittedAt:    sub.SubmittedAt,
			UpdatedAt:      c.now().UTC(),
		},
	})
	if err != nil {
		return nil, err
	}
	row := firstOrNil(rows)
	if row == nil {
		return nil, models.ErrTestimonialAlreadySubmitted
	}
	return row.toModel(), nil
}

type testimonialStatePatch struct {
	Status            models.TestimonialStatus `json:"status"`
	PublicationStatus models.PublicationStatus `json:"publication_status"`
	UpdatedAt         time.Time                `json:"updated_at"`
}

// UpdateTestimonialState moves a testimonial from one state to another. The
// patch only applies if the stored state still equals from.
func (c *Client) UpdateTestimonialState(ctx context.Context, id string, from, to models.TestimonialState) (*models.Testimonial, error) {
	rows, err := execute[testimonialRow](ctx, c, request{
		operation: "updateTestimonialState",
		method:    http.MethodPatch,
		table:     testimonialsTable,
		query: url.Values{
			"id":                 {eq(id)},
			"status":             {eq(string(from.Status))},
			"publication_status": {eq(string(from.Publication))},
		},
		body: testimonialStatePatch{
			Status:            to.Status,
			PublicationStatus: to.Publication,
			UpdatedAt:         c.now().UTC(),
		},
	})
	if err != nil {
		return nil, err
	}
	row := firstOrNil(rows)
	if row == nil {
		return nil, apperrors.ConflictError("testimonial was modified concurrently")
	}
	return row.toModel(), nil
}

// MarkTestimonialRequestSent stamps when the request email went out.
func (c *Client) MarkTestimonialRequestSent(ctx context.Context, id string, sentAt time.Time) (*models.Testimonial, error) {
	rows, err := execute[testimonialRow](ctx, c, request{
		operation: "markTestimonialRequestSent",
		method:    http.MethodPatch,
		table:     testimonialsTable,
		query:     url.Values{"id": {eq(id)}},
		body: map[string]time.Time{
			"request_sent_at": sentAt,
			"updated_at":      c.now().UTC(),
		},
	})
	if err != nil {
		return nil, err
	}
	row := firstOrNil(rows)
	if row == nil {
		return nil, apperrors.NotFoundError("testimonial")
	}
	return row.toModel(), nil
}

// DeleteTestimonial removes a testimonial regardless of its state.
func (c *Client) DeleteTestimonial(ctx context.Context, id string) error {
	rows, err := execute[testimonialRow](ctx, c, request{
		operation: "deleteTestimonial",
		method:    http.MethodDelete,
		table:     testimonialsTable,
		query:     url.Values{"id": {eq(id)}},
	})
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return apperrors.NotFoundError("testimonial")
	}
	return nil
}
