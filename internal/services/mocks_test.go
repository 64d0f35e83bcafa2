package services_test

import (
	"context"
	"time"

	"github.com/novocode/novocode-api/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockTestimonialStore is a mock implementation of services.TestimonialStore
type MockTestimonialStore struct {
	mock.Mock
}

func (m *MockTestimonialStore) GetByToken(ctx context.Context, token string) *models.Testimonial {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*models.Testimonial)
}

func (m *MockTestimonialStore) FindByToken(ctx context.Context, token string) (*models.Testimonial, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Testimonial), args.Error(1)
}

func (m *MockTestimonialStore) FindByID(ctx context.Context, id string) (*models.Testimonial, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Testimonial), args.Error(1)
}

func (m *MockTestimonialStore) List(ctx context.Context, filter models.TestimonialFilter) []*models.Testimonial {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*models.Testimonial)
}

func (m *MockTestimonialStore) Create(ctx context.Context, t *models.Testimonial) (*models.Testimonial, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Testimonial), args.Error(1)
}

func (m *MockTestimonialStore) Submit(ctx context.Context, token string, sub models.TestimonialSubmission) (*models.Testimonial, error) {
	args := m.Called(ctx, token, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Testimonial), args.Error(1)
}

func (m *MockTestimonialStore) UpdateState(ctx context.Context, id string, from, to models.TestimonialState) (*models.Testimonial, error) {
	args := m.Called(ctx, id, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Testimonial), args.Error(1)
}

func (m *MockTestimonialStore) MarkRequestSent(ctx context.Context, id string, sentAt time.Time) (*models.Testimonial, error) {
	args := m.Called(ctx, id, sentAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Testimonial), args.Error(1)
}

func (m *MockTestimonialStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockLeadStore is a mock implementation of services.LeadStore
type MockLeadStore struct {
	mock.Mock
}

func (m *MockLeadStore) GetByTestimonialToken(ctx context.Context, token string) *models.Lead {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*models.Lead)
}

func (m *MockLeadStore) FindByID(ctx context.Context, id string) (*models.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lead), args.Error(1)
}

func (m *MockLeadStore) List(ctx context.Context) []*models.Lead {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Lead)
}

func (m *MockLeadStore) Create(ctx context.Context, lead *models.Lead) (*models.Lead, error) {
	args := m.Called(ctx, lead)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lead), args.Error(1)
}

func (m *MockLeadStore) SetTestimonialRequest(ctx context.Context, id, token string, sentAt *time.Time) (*models.Lead, error) {
	args := m.Called(ctx, id, token, sentAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lead), args.Error(1)
}

// MockUserStore is a mock implementation of services.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockMailer is a mock implementation of services.TestimonialMailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendTestimonialRequest(ctx context.Context, name, email, link string) error {
	args := m.Called(ctx, name, email, link)
	return args.Error(0)
}

// MockCaptcha is a mock implementation of services.CaptchaVerifier
type MockCaptcha struct {
	mock.Mock
}

func (m *MockCaptcha) Verify(token string) error {
	args := m.Called(token)
	return args.Error(0)
}

// MockSiteConfigSource is a mock implementation of services.SiteConfigSource
type MockSiteConfigSource struct {
	mock.Mock
}

func (m *MockSiteConfigSource) Get(ctx context.Context) *models.SiteConfig {
	args := m.Called(ctx)
	return args.Get(0).(*models.SiteConfig)
}
