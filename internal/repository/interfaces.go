package repository

import (
	"context"
	"time"

	"github.com/novocode/novocode-api/internal/models"
)

// The data source interfaces below are implemented twice: by the primary
// PostgreSQL client and by the REST fallback client. Lookups return (nil, nil)
// when nothing matches so that "not found" is never mistaken for a failing
// store. Writes return pkg/errors sentinels (ErrNotFound, ErrConflict,
// ErrInvalidInput) for answers that must not be retried on the other path.

// TestimonialDataSource defines testimonial persistence.
type TestimonialDataSource interface {
	GetTestimonialByToken(ctx context.Context, token string) (*models.Testimonial, error)
	GetTestimonialByID(ctx context.Context, id string) (*models.Testimonial, error)
	ListTestimonials(ctx context.Context, filter models.TestimonialFilter) ([]*models.Testimonial, error)

	// CreateTestimonial fails with ErrConflict when the request token is taken.
	CreateTestimonial(ctx context.Context, t *models.Testimonial) (*models.Testimonial, error)

	// SubmitTestimonial applies only to a PENDING record and otherwise fails
	// with models.ErrTestimonialAlreadySubmitted.
	SubmitTestimonial(ctx context.Context, token string, sub models.TestimonialSubmission) (*models.Testimonial, error)

	// UpdateTestimonialState applies only if the stored state equals from and
	// otherwise fails with ErrConflict.
	UpdateTestimonialState(ctx context.Context, id string, from, to models.TestimonialState) (*models.Testimonial, error)

	MarkTestimonialRequestSent(ctx context.Context, id string, sentAt time.Time) (*models.Testimonial, error)
	DeleteTestimonial(ctx context.Context, id string) error
}

// LeadDataSource defines lead persistence.
type LeadDataSource interface {
	GetLeadByID(ctx context.Context, id string) (*models.Lead, error)
	GetLeadByTestimonialToken(ctx context.Context, token string) (*models.Lead, error)
	ListLeads(ctx context.Context) ([]*models.Lead, error)
	CreateLead(ctx context.Context, lead *models.Lead) (*models.Lead, error)

	// SetLeadTestimonialRequest never replaces an existing token.
	SetLeadTestimonialRequest(ctx context.Context, id, token string, sentAt *time.Time) (*models.Lead, error)
}

// SiteConfigDataSource reads the singleton site configuration.
type SiteConfigDataSource interface {
	GetSiteConfig(ctx context.Context) (*models.SiteConfig, error)
}

// UserDataSource reads back-office accounts.
type UserDataSource interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// DataSource is everything one access path to the database provides.
type DataSource interface {
	TestimonialDataSource
	LeadDataSource
	SiteConfigDataSource
	UserDataSource
}
