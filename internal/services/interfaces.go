package services

import (
	"context"
	"time"

	"github.com/novocode/novocode-api/internal/models"
	"github.com/novocode/novocode-api/pkg/jwt"
)

// TestimonialStore is the testimonial persistence used by the services.
// Get* lookups never fail and return nil when nothing could be read;
// Find* lookups report store failures.
type TestimonialStore interface {
	GetByToken(ctx context.Context, token string) *models.Testimonial
	FindByToken(ctx context.Context, token string) (*models.Testimonial, error)
	FindByID(ctx context.Context, id string) (*models.Testimonial, error)
	List(ctx context.Context, filter models.TestimonialFilter) []*models.Testimonial
	Create(ctx context.Context, t *models.Testimonial) (*models.Testimonial, error)
	Submit(ctx context.Context, token string, sub models.TestimonialSubmission) (*models.Testimonial, error)
	UpdateState(ctx context.Context, id string, from, to models.TestimonialState) (*models.Testimonial, error)
	MarkRequestSent(ctx context.Context, id string, sentAt time.Time) (*models.Testimonial, error)
	Delete(ctx context.Context, id string) error
}

// LeadStore is the lead persistence used by the services.
type LeadStore interface {
	GetByTestimonialToken(ctx context.Context, token string) *models.Lead
	FindByID(ctx context.Context, id string) (*models.Lead, error)
	List(ctx context.Context) []*models.Lead
	Create(ctx context.Context, lead *models.Lead) (*models.Lead, error)
	SetTestimonialRequest(ctx context.Context, id, token string, sentAt *time.Time) (*models.Lead, error)
}

type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// SiteConfigSource always yields a configuration, falling back to defaults.
type SiteConfigSource interface {
	Get(ctx context.Context) *models.SiteConfig
}

// TestimonialMailer sends the "leave a testimonial" email.
type TestimonialMailer interface {
	SendTestimonialRequest(ctx context.Context, name, email, link string) error
}

// CaptchaVerifier checks a reCAPTCHA token.
type CaptchaVerifier interface {
	Verify(token string) error
}

// TestimonialServiceInterface defines testimonial workflow operations
type TestimonialServiceInterface interface {
	Resolve(ctx context.Context, token string) (*models.Testimonial, error)
	Submit(ctx context.Context, req *models.SubmitTestimonialRequest) (*models.Testimonial, error)
	Moderate(ctx context.Context, id string, action models.TestimonialAction) (*models.Testimonial, error)
	Delete(ctx context.Context, id string) error
	RequestFromLead(ctx context.Context, leadID string) (*models.TestimonialRequestResponse, error)
	ListPublished(ctx context.Context) []*models.PublicTestimonial
	List(ctx context.Context, filter models.TestimonialFilter) []*models.Testimonial
}

// LeadServiceInterface defines lead capture and listing
type LeadServiceInterface interface {
	CreateLead(ctx context.Context, req *models.CreateLeadRequest) (*models.Lead, error)
	ListLeads(ctx context.Context) []*models.Lead
}

type SiteConfigServiceInterface interface {
	Get(ctx context.Context) *models.SiteConfig
}

// AdminAuthServiceInterface defines the password login flow for staff.
type AdminAuthServiceInterface interface {
	Login(ctx context.Context, email, password string) (*models.AdminSession, string, error)
	GetSessionTTL() int
	GetCookieDomain() string
	GetCookieSecure() bool
	GetTokenManager() *jwt.TokenManager
}

// Ensure services implement their interfaces
var _ TestimonialServiceInterface = (*TestimonialService)(nil)
var _ LeadServiceInterface = (*LeadService)(nil)
var _ SiteConfigServiceInterface = (*SiteConfigService)(nil)
var _ AdminAuthServiceInterface = (*AdminAuthService)(nil)
