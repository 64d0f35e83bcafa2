package handlers

import (
	"context"

	"github.com/novocode/novocode-api/internal/models"
	"github.com/novocode/novocode-api/internal/services"
	"github.com/novocode/novocode-api/pkg/jwt"
	"github.com/stretchr/testify/mock"
)

type MockTestimonialService struct {
	mock.Mock
}

var _ services.TestimonialServiceInterface = (*MockTestimonialService)(nil)

func (m *MockTestimonialService) Resolve(ctx context.Context, token string) (*models.Testimonial, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Testimonial), args.Error(1)
}

func (m *MockTestimonialService) Submit(ctx context.Context, req *models.SubmitTestimonialRequest) (*models.Testimonial, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Testimonial), args.Error(1)
}

func (m *MockTestimonialService) Moderate(ctx context.Context, id string, action models.TestimonialAction) (*models.Testimonial, error) {
	args := m.Called(ctx, id, action)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Testimonial), args.Error(1)
}

func (m *MockTestimonialService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTestimonialService) RequestFromLead(ctx context.Context, leadID string) (*models.TestimonialRequestResponse, error) {
	args := m.Called(ctx, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TestimonialRequestResponse), args.Error(1)
}

func (m *MockTestimonialService) ListPublished(ctx context.Context) []*models.PublicTestimonial {
	return m.Called(ctx).Get(0).([]*models.PublicTestimonial)
}

func (m *MockTestimonialService) List(ctx context.Context, filter models.TestimonialFilter) []*models.Testimonial {
	return m.Called(ctx, filter).Get(0).([]*models.Testimonial)
}

type MockLeadService struct {
	mock.Mock
}

var _ services.LeadServiceInterface = (*MockLeadService)(nil)

func (m *MockLeadService) CreateLead(ctx context.Context, req *models.CreateLeadRequest) (*models.Lead, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lead), args.Error(1)
}

func (m *MockLeadService) ListLeads(ctx context.Context) []*models.Lead {
	return m.Called(ctx).Get(0).([]*models.Lead)
}

type MockSiteConfigService struct {
	mock.Mock
}

func (m *MockSiteConfigService) Get(ctx context.Context) *models.SiteConfig {
	return m.Called(ctx).Get(0).(*models.SiteConfig)
}

type MockAdminAuthService struct {
	mock.Mock
}

var _ services.AdminAuthServiceInterface = (*MockAdminAuthService)(nil)

func (m *MockAdminAuthService) Login(ctx context.Context, email, password string) (*models.AdminSession, string, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*models.AdminSession), args.String(1), args.Error(2)
}

func (m *MockAdminAuthService) GetSessionTTL() int { return 12 * 3600 }

func (m *MockAdminAuthService) GetCookieDomain() string { return "novocode.com.br" }

func (m *MockAdminAuthService) GetCookieSecure() bool { return true }

func (m *MockAdminAuthService) GetTokenManager() *jwt.TokenManager { return nil }
