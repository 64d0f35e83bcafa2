package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/novocode/novocode-api/config"
	"github.com/novocode/novocode-api/internal/models"
	apperrors "github.com/novocode/novocode-api/pkg/errors"
	"github.com/novocode/novocode-api/pkg/httpclient"
	"github.com/novocode/novocode-api/pkg/logger"
	"github.com/novocode/novocode-api/pkg/metrics"
	"github.com/novocode/novocode-api/pkg/trigger"
	"go.uber.org/zap"
)

var ErrCaptchaFailed = fmt.Errorf("captcha verification failed: %w", apperrors.ErrInvalidInput)

// LeadService handles contact and budget form submissions
type LeadService struct {
	leads      LeadStore
	captcha    CaptchaVerifier
	config     *config.Config
	httpClient httpclient.Client
}

// NewLeadService creates a new lead service instance
func NewLeadService(leads LeadStore, captcha CaptchaVerifier, cfg *config.Config, httpClient httpclient.Client) *LeadService {
	return &LeadService{
		leads:      leads,
		captcha:    captcha,
		config:     cfg,
		httpClient: httpClient,
	}
}

func (s *LeadService) CreateLead(ctx context.Context, req *models.CreateLeadRequest) (*models.Lead, error) {
	if err := s.captcha.Verify(req.RecaptchaToken); err != nil {
		metrics.LeadSubmissions.WithLabelValues("captcha_failed").Inc()
		logger.Warn("ReCAPTCHA verification failed", zap.Error(err))
		return nil, ErrCaptchaFailed
	}

	source := models.LeadSource(req.Source)
	if source == "" {
		source = models.LeadSourceContact
	}

	lead, err := s.leads.Create(ctx, &models.Lead{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:   optional(req.Phone),
		Company: optional(req.Company),
		Service: optional(req.Service),
		Budget:  optional(req.Budget),
		Message: strings.TrimSpace(req.Message),
		Source:  source,
		Status:  models.LeadStatusNew,
	})
	if err != nil {
		metrics.LeadSubmissions.WithLabelValues("error").Inc()
		logger.Error("Failed to create lead", zap.String("source", string(source)), zap.Error(err))
		return nil, err
	}

	metrics.LeadSubmissions.WithLabelValues("success").Inc()
	logger.Info("Lead created", zap.String("lead_id", lead.ID), zap.String("source", string(source)))

	// Non-blocking
	trigger.CallAsync(s.config.EventTriggers.LeadCreatedTriggerURL, lead.ID, s.httpClient)

	return lead, nil
}

func (s *LeadService) ListLeads(ctx context.Context) []*models.Lead {
	return s.leads.List(ctx)
}
