package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/novocode/novocode-api/config"
	"github.com/novocode/novocode-api/internal/models"
	apperrors "github.com/novocode/novocode-api/pkg/errors"
	"github.com/novocode/novocode-api/pkg/httpclient"
	"github.com/novocode/novocode-api/pkg/logger"
	"github.com/novocode/novocode-api/pkg/mailer"
	"github.com/novocode/novocode-api/pkg/metrics"
	"github.com/novocode/novocode-api/pkg/trigger"
	"go.uber.org/zap"
)

var (
	ErrTestimonialNotFound = fmt.Errorf("testimonial %w", apperrors.ErrNotFound)
	ErrLeadNotFound        = fmt.Errorf("lead %w", apperrors.ErrNotFound)
)

// Paths of the public site that render published testimonials.
var publicTestimonialPaths = []string{"/", "/depoimentos"}

const testimonialFormPath = "/depoimento/"

// TestimonialService runs the testimonial request and moderation workflow.
type TestimonialService struct {
	testimonials TestimonialStore
	leads        LeadStore
	mailer       TestimonialMailer
	config       *config.Config
	httpClient   httpclient.Client
	now          func() time.Time
}

// NewTestimonialService creates a new testimonial service instance
func NewTestimonialService(
	testimonials TestimonialStore,
	leads LeadStore,
	mailer TestimonialMailer,
	cfg *config.Config,
	httpClient httpclient.Client,
) *TestimonialService {
	return &TestimonialService{
		testimonials: testimonials,
		leads:        leads,
		mailer:       mailer,
		config:       cfg,
		httpClient:   httpClient,
		now:          time.Now,
	}
}

// Resolve returns the testimonial behind a request token. When only the lead
// carries the token, a PENDING testimonial is created from it first.
func (s *TestimonialService) Resolve(ctx context.Context, token string) (*models.Testimonial, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTestimonialNotFound
	}

	if t := s.testimonials.GetByToken(ctx, token); t != nil {
		return t, nil
	}

	lead := s.leads.GetByTestimonialToken(ctx, token)
	if lead == nil {
		return nil, ErrTestimonialNotFound
	}

	return s.materialize(ctx, lead, token)
}

// Submit stores the client's testimonial. Validation runs before any read.
func (s *TestimonialService) Submit(ctx context.Context, req *models.SubmitTestimonialRequest) (*models.Testimonial, error) {
	if err := models.ValidateSubmission(req.Content, req.Rating); err != nil {
		metrics.TestimonialTransitions.WithLabelValues(string(models.TestimonialActionSubmit), "invalid").Inc()
		return nil, err
	}

	token := strings.TrimSpace(req.Token)
	current, err := s.testimonials.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrTestimonialNotFound
	}

	if _, err := models.NextTestimonialState(current.State(), models.TestimonialActionSubmit); err != nil {
		metrics.TestimonialTransitions.WithLabelValues(string(models.TestimonialActionSubmit), "rejected").Inc()
		return nil, err
	}

	updated, err := s.testimonials.Submit(ctx, token, models.TestimonialSubmission{
		Content:        strings.TrimSpace(req.Content),
		Rating:         req.Rating,
		ClientPosition: optional(req.ClientPosition),
		ClientCompany:  optional(req.ClientCompany),
		SubmittedAt:    s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrTestimonialNotFound
		}
		status := "error"
		if models.IsPreconditionError(err) {
			status = "rejected"
		}
		metrics.TestimonialTransitions.WithLabelValues(string(models.TestimonialActionSubmit), status).Inc()
		return nil, err
	}

	metrics.TestimonialTransitions.WithLabelValues(string(models.TestimonialActionSubmit), "success").Inc()
	logger.Info("Testimonial submitted",
		zap.String("testimonial_id", updated.ID),
		zap.Int("rating", req.Rating))

	trigger.CallAsync(s.config.EventTriggers.TestimonialSubmittedTriggerURL, updated.ID, s.httpClient)

	return updated, nil
}

// Moderate applies an approve, reject or publish action to a testimonial.
func (s *TestimonialService) Moderate(ctx context.Context, id string, action models.TestimonialAction) (*models.Testimonial, error) {
	if !action.IsModeration() {
		return nil, fmt.Errorf("action %q is not a moderation action: %w", action, models.ErrInvalidTransition)
	}
	if !isUUID(id) {
		return nil, ErrTestimonialNotFound
	}

	current, err := s.testimonials.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrTestimonialNotFound
	}

	next, err := models.NextTestimonialState(current.State(), action)
	if err != nil {
		metrics.TestimonialTransitions.WithLabelValues(string(action), "rejected").Inc()
		return nil, err
	}

	updated, err := s.testimonials.UpdateState(ctx, id, current.State(), next)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrTestimonialNotFound
		}
		metrics.TestimonialTransitions.WithLabelValues(string(action), "error").Inc()
		return nil, err
	}

	metrics.TestimonialTransitions.WithLabelValues(string(action), "success").Inc()
	logger.Info("Testimonial moderated",
		zap.String("testimonial_id", id),
		zap.String("action", string(action)),
		zap.String("status", string(next.Status)),
		zap.String("publication_status", string(next.Publication)))

	if current.PublicationStatus == models.PublicationStatusPublished || next.Publication == models.PublicationStatusPublished {
		s.revalidatePublicPages()
	}

	return updated, nil
}

// Delete removes a testimonial regardless of its state.
func (s *TestimonialService) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return ErrTestimonialNotFound
	}

	if err := s.testimonials.Delete(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return ErrTestimonialNotFound
		}
		return err
	}

	logger.Info("Testimonial deleted", zap.String("testimonial_id", id))
	s.revalidatePublicPages()
	return nil
}

// RequestFromLead issues (or reuses) the lead's request token, creates the
// PENDING testimonial and emails the client. A failed email is reported in
// the response and never undoes the stored state.
func (s *TestimonialService) RequestFromLead(ctx context.Context, leadID string) (*models.TestimonialRequestResponse, error) {
	if !isUUID(leadID) {
		return nil, ErrLeadNotFound
	}

	lead, err := s.leads.FindByID(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, ErrLeadNotFound
	}

	// The lead owns the token. It is stamped before any testimonial exists so
	// concurrent requests converge on one token and one testimonial.
	if lead, err = s.ensureLeadToken(ctx, lead); err != nil {
		return nil, err
	}
	token := *lead.TestimonialToken

	testimonial, err := s.testimonials.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if testimonial == nil {
		if testimonial, err = s.materialize(ctx, lead, token); err != nil {
			return nil, err
		}
	}
	if !testimonial.CanSubmit() {
		return nil, models.ErrTestimonialAlreadySubmitted
	}

	link := s.testimonialLink(token)
	emailSent := s.sendRequestEmail(ctx, lead, link)

	if emailSent {
		sentAt := s.now().UTC()
		if updated, err := s.testimonials.MarkRequestSent(ctx, testimonial.ID, sentAt); err != nil {
			logger.Error("Failed to stamp testimonial request time",
				zap.String("testimonial_id", testimonial.ID), zap.Error(err))
		} else {
			testimonial = updated
		}
		if _, err := s.leads.SetTestimonialRequest(ctx, lead.ID, token, &sentAt); err != nil {
			logger.Error("Failed to stamp lead testimonial email time",
				zap.String("lead_id", lead.ID), zap.Error(err))
		}
	}

	return &models.TestimonialRequestResponse{
		Success:     true,
		Testimonial: testimonial,
		Link:        link,
		EmailSent:   emailSent,
	}, nil
}

// ensureLeadToken returns lead carrying a testimonial token, issuing one if
// it has none. The store keeps an existing token, so the returned lead holds
// whichever token won.
func (s *TestimonialService) ensureLeadToken(ctx context.Context, lead *models.Lead) (*models.Lead, error) {
	if lead.TestimonialToken != nil && *lead.TestimonialToken != "" {
		return lead, nil
	}

	updated, err := s.leads.SetTestimonialRequest(ctx, lead.ID, uuid.NewString(), nil)
	if errors.Is(err, apperrors.ErrConflict) {
		// Another request stamped the lead between our read and write
		updated, err = s.leads.FindByID(ctx, lead.ID)
		if err == nil && updated == nil {
			return nil, ErrLeadNotFound
		}
	}
	if err != nil {
		return nil, err
	}
	if updated.TestimonialToken == nil || *updated.TestimonialToken == "" {
		return nil, fmt.Errorf("lead %s has no testimonial token after update: %w", lead.ID, apperrors.ErrInternal)
	}
	return updated, nil
}

// ListPublished returns approved and published testimonials for the public site.
func (s *TestimonialService) ListPublished(ctx context.Context) []*models.PublicTestimonial {
	testimonials := s.testimonials.List(ctx, models.TestimonialFilter{
		Status:            models.TestimonialStatusApproved,
		PublicationStatus: models.PublicationStatusPublished,
	})

	public := make([]*models.PublicTestimonial, 0, len(testimonials))
	for _, t := range testimonials {
		public = append(public, t.ToPublic())
	}
	return public
}

func (s *TestimonialService) List(ctx context.Context, filter models.TestimonialFilter) []*models.Testimonial {
	return s.testimonials.List(ctx, filter)
}

// materialize creates the PENDING testimonial for a lead's token. Losing the
// create race to a concurrent request is not an error: the winner is returned.
func (s *TestimonialService) materialize(ctx context.Context, lead *models.Lead, token string) (*models.Testimonial, error) {
	leadID := lead.ID
	created, err := s.testimonials.Create(ctx, &models.Testimonial{
		ClientName:        lead.Name,
		ClientEmail:       lead.Email,
		ClientCompany:     lead.Company,
		RequestToken:      token,
		Status:            models.TestimonialStatusPending,
		PublicationStatus: models.PublicationStatusDraft,
		LeadID:            &leadID,
		RequestSentAt:     lead.TestimonialEmailSentAt,
	})
	if err == nil {
		logger.Info("Testimonial materialized from lead",
			zap.String("testimonial_id", created.ID),
			zap.String("lead_id", lead.ID))
		return created, nil
	}
	if !errors.Is(err, apperrors.ErrConflict) {
		return nil, err
	}

	existing, err := s.testimonials.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrTestimonialNotFound
	}
	return existing, nil
}

func (s *TestimonialService) sendRequestEmail(ctx context.Context, lead *models.Lead, link string) bool {
	err := s.mailer.SendTestimonialRequest(ctx, lead.Name, lead.Email, link)
	switch {
	case err == nil:
		metrics.TestimonialRequestsSent.WithLabelValues("sent").Inc()
		return true
	case errors.Is(err, mailer.ErrDisabled):
		metrics.TestimonialRequestsSent.WithLabelValues("disabled").Inc()
		logger.Warn("Testimonial request email not sent, SMTP disabled", zap.String("lead_id", lead.ID))
	default:
		metrics.TestimonialRequestsSent.WithLabelValues("failed").Inc()
		logger.Error("Failed to send testimonial request email",
			zap.String("lead_id", lead.ID), zap.Error(err))
	}
	return false
}

func (s *TestimonialService) testimonialLink(token string) string {
	return s.config.Site.BaseURL + testimonialFormPath + token
}

func (s *TestimonialService) revalidatePublicPages() {
	trigger.RevalidateAsync(s.config.Site.RevalidateURL, s.config.Site.RevalidateSecret, publicTestimonialPaths, s.httpClient)
}

func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
