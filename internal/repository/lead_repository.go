package repository

import (
	"context"
	"time"

	"github.com/novocode/novocode-api/internal/models"
)

// LeadRepository reads and writes leads through the resilient access combinator.
type LeadRepository struct {
	gate     *HealthGate
	primary  LeadDataSource
	fallback LeadDataSource
}

// NewLeadRepository creates a new lead repository
func NewLeadRepository(gate *HealthGate, primary, fallback LeadDataSource) *LeadRepository {
	return &LeadRepository{gate: gate, primary: primary, fallback: fallback}
}

// GetByTestimonialToken returns nil when no lead carries token or when no
// store can be reached.
func (r *LeadRepository) GetByTestimonialToken(ctx context.Context, token string) *models.Lead {
	return Read(ctx, r.gate, "lead.getByTestimonialToken",
		func(ctx context.Context) (*models.Lead, error) {
			return r.primary.GetLeadByTestimonialToken(ctx, token)
		},
		func(ctx context.Context) (*models.Lead, error) {
			return r.fallback.GetLeadByTestimonialToken(ctx, token)
		},
		nil)
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*models.Lead, error) {
	return Exec(ctx, r.gate, "lead.findByID",
		func(ctx context.Context) (*models.Lead, error) { return r.primary.GetLeadByID(ctx, id) },
		func(ctx context.Context) (*models.Lead, error) { return r.fallback.GetLeadByID(ctx, id) })
}

// List returns an empty slice when no store can be reached.
func (r *LeadRepository) List(ctx context.Context) []*models.Lead {
	return Read(ctx, r.gate, "lead.list",
		func(ctx context.Context) ([]*models.Lead, error) { return r.primary.ListLeads(ctx) },
		func(ctx context.Context) ([]*models.Lead, error) { return r.fallback.ListLeads(ctx) },
		[]*models.Lead{})
}

func (r *LeadRepository) Create(ctx context.Context, lead *models.Lead) (*models.Lead, error) {
	return Exec(ctx, r.gate, "lead.create",
		func(ctx context.Context) (*models.Lead, error) { return r.primary.CreateLead(ctx, lead) },
		func(ctx context.Context) (*models.Lead, error) { return r.fallback.CreateLead(ctx, lead) })
}

func (r *LeadRepository) SetTestimonialRequest(ctx context.Context, id, token string, sentAt *time.Time) (*models.Lead, error) {
	return Exec(ctx, r.gate, "lead.setTestimonialRequest",
		func(ctx context.Context) (*models.Lead, error) {
			return r.primary.SetLeadTestimonialRequest(ctx, id, token, sentAt)
		},
		func(ctx context.Context) (*models.Lead, error) {
			return r.fallback.SetLeadTestimonialRequest(ctx, id, token, sentAt)
		})
}
