package repository

import (
	"context"
	"time"

	"github.com/novocode/novocode-api/internal/models"
)

// TestimonialRepository reads and writes testimonials through the resilient
// access combinator.
type TestimonialRepository struct {
	gate     *HealthGate
	primary  TestimonialDataSource
	fallback TestimonialDataSource
}

// NewTestimonialRepository creates a new testimonial repository
func NewTestimonialRepository(gate *HealthGate, primary, fallback TestimonialDataSource) *TestimonialRepository {
	return &TestimonialRepository{gate: gate, primary: primary, fallback: fallback}
}

// GetByToken returns nil when no testimonial exists for token or when no
// store can be reached.
func (r *TestimonialRepository) GetByToken(ctx context.Context, token string) *models.Testimonial {
	return Read(ctx, r.gate, "testimonial.getByToken",
		func(ctx context.Context) (*models.Testimonial, error) {
			return r.primary.GetTestimonialByToken(ctx, token)
		},
		func(ctx context.Context) (*models.Testimonial, error) {
			return r.fallback.GetTestimonialByToken(ctx, token)
		},
		nil)
}

// FindByToken is GetByToken for callers that must tell "absent" from
// "unreachable".
func (r *TestimonialRepository) FindByToken(ctx context.Context, token string) (*models.Testimonial, error) {
	return Exec(ctx, r.gate, "testimonial.findByToken",
		func(ctx context.Context) (*models.Testimonial, error) {
			return r.primary.GetTestimonialByToken(ctx, token)
		},
		func(ctx context.Context) (*models.Testimonial, error) {
			return r.fallback.GetTestimonialByToken(ctx, token)
		})
}

func (r *TestimonialRepository) FindByID(ctx context.Context, id string) (*models.Testimonial, error) {
	return Exec(ctx, r.gate, "testimonial.findByID",
		func(ctx context.Context) (*models.Testimonial, error) { return r.primary.GetTestimonialByID(ctx, id) },
		func(ctx context.Context) (*models.Testimonial, error) { return r.fallback.GetTestimonialByID(ctx, id) })
}

// List returns an empty slice when no store can be reached.
func (r *TestimonialRepository) List(ctx context.Context, filter models.TestimonialFilter) []*models.Testimonial {
	return Read(ctx, r.gate, "testimonial.list",
		func(ctx context.Context) ([]*models.Testimonial, error) {
			return r.primary.ListTestimonials(ctx, filter)
		},
		func(ctx context.Context) ([]*models.Testimonial, error) {
			return r.fallback.ListTestimonials(ctx, filter)
		},
		[]*models.Testimonial{})
}

func (r *TestimonialRepository) Create(ctx context.Context, t *models.Testimonial) (*models.Testimonial, error) {
	return Exec(ctx, r.gate, "testimonial.create",
		func(ctx context.Context) (*models.Testimonial, error) { return r.primary.CreateTestimonial(ctx, t) },
		func(ctx context.Context) (*models.Testimonial, error) { return r.fallback.CreateTestimonial(ctx, t) })
}

func (r *TestimonialRepository) Submit(ctx context.Context, token string, sub models.TestimonialSubmission) (*models.Testimonial, error) {
	return Exec(ctx, r.gate, "testimonial.submit",
		func(ctx context.Context) (*models.Testimonial, error) {
			return r.primary.SubmitTestimonial(ctx, token, sub)
		},
		func(ctx context.Context) (*models.Testimonial, error) {
			return r.fallback.SubmitTestimonial(ctx, token, sub)
		})
}

func (r *TestimonialRepository) UpdateState(ctx context.Context, id string, from, to models.TestimonialState) (*models.Testimonial, error) {
	return Exec(ctx, r.gate, "testimonial.updateState",
		func(ctx context.Context) (*models.Testimonial, error) {
			return r.primary.UpdateTestimonialState(ctx, id, from, to)
		},
		func(ctx context.Context) (*models.Testimonial, error) {
			return r.fallback.UpdateTestimonialState(ctx, id, from, to)
		})
}

func (r *TestimonialRepository) MarkRequestSent(ctx context.Context, id string, sentAt time.Time) (*models.Testimonial, error) {
	return Exec(ctx, r.gate, "testimonial.markRequestSent",
		func(ctx context.Context) (*models.Testimonial, error) {
			return r.primary.MarkTestimonialRequestSent(ctx, id, sentAt)
		},
		func(ctx context.Context) (*models.Testimonial, error) {
			return r.fallback.MarkTestimonialRequestSent(ctx, id, sentAt)
		})
}

func (r *TestimonialRepository) Delete(ctx context.Context, id string) error {
	return ExecErr(ctx, r.gate, "testimonial.delete",
		func(ctx context.Context) error { return r.primary.DeleteTestimonial(ctx, id) },
		func(ctx context.Context) error { return r.fallback.DeleteTestimonial(ctx, id) })
}
