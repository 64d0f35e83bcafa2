package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/novocode/novocode-api/internal/models"
	apperrors "github.com/novocode/novocode-api/pkg/errors"
	"github.com/novocode/novocode-api/pkg/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testimonialJSON = `{
	"id": "7f1c2b9e-0000-4000-8000-000000000001",
	"client_name": "Maria",
	"client_email": "maria@x.com",
	"client_position": null,
	"client_company": "Acme",
	"content": null,
	"rating": null,
	"request_token": "tok-123",
	"status": "PENDING",
	"publication_status": "DRAFT",
	"lead_id": "7f1c2b9e-0000-4000-8000-000000000002",
	"request_sent_at": "2026-03-01T10:00:00+00:00",
	"submitted_at": null,
	"created_at": "2026-03-02T10:00:00.123456+00:00",
	"updated_at": "2026-03-02T10:00:00.123456+00:00"
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := NewClient(Config{BaseURL: server.URL, APIKey: "service-key", Timeout: time.Second}, httpclient.NewStandardClient())
	c.now = func() time.Time { return time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC) }
	return c
}

func TestGetTestimonialByToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/v1/testimonials", r.URL.Path)
		assert.Equal(t, "eq.tok-123", r.URL.Query().Get("request_token"))
		assert.Equal(t, "service-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))
		assert.Empty(t, r.Header.Get("Prefer"))

		_, _ = io.WriteString(w, "["+testimonialJSON+"]")
	})

	got, err := c.GetTestimonialByToken(context.Background(), "tok-123")

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Maria", got.ClientName)
	assert.Equal(t, models.TestimonialStatusPending, got.Status)
	assert.Equal(t, models.PublicationStatusDraft, got.PublicationStatus)
	require.NotNil(t, got.ClientCompany)
	assert.Equal(t, "Acme", *got.ClientCompany)
	assert.Nil(t, got.Rating)
	require.NotNil(t, got.RequestSentAt)
	assert.True(t, got.RequestSentAt.Equal(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)))
}

func TestGetTestimonialByToken_NoRows(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "[]")
	})

	got, err := c.GetTestimonialByToken(context.Background(), "missing")

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCreateTestimonial_DuplicateTokenIsConflict(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "tok-123", body["request_token"])
		assert.NotContains(t, body, "client_position")

		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"code":"23505","message":"duplicate key value violates unique constraint"}`)
	})

	_, err := c.CreateTestimonial(context.Background(), &models.Testimonial{
		ClientName:        "Maria",
		ClientEmail:       "maria@x.com",
		RequestToken:      "tok-123",
		Status:            models.TestimonialStatusPending,
		PublicationStatus: models.PublicationStatusDraft,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestSubmitTestimonial_FiltersOnPending(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "eq.tok-123", r.URL.Query().Get("request_token"))
		assert.Equal(t, "eq.PENDING", r.URL.Query().Get("status"))

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "SUBMITTED", body["status"])
		assert.Equal(t, "Great work", body["content"])
		assert.EqualValues(t, 5, body["rating"])

		// Nothing matched: already submitted by someone else.
		_, _ = io.WriteString(w, "[]")
	})

	_, err := c.SubmitTestimonial(context.Background(), "tok-123", models.TestimonialSubmission{
		Content:     "Great work",
		Rating:      5,
		SubmittedAt: time.Now(),
	})

	assert.ErrorIs(t, err, models.ErrTestimonialAlreadySubmitted)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestUpdateTestimonialState_StaleStateIsConflict(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "eq.SUBMITTED", r.URL.Query().Get("status"))
		assert.Equal(t, "eq.DRAFT", r.URL.Query().Get("publication_status"))
		_, _ = io.WriteString(w, "[]")
	})

	_, err := c.UpdateTestimonialState(context.Background(), "id-1",
		models.TestimonialState{Status: models.TestimonialStatusSubmitted, Publication: models.PublicationStatusDraft},
		models.TestimonialState{Status: models.TestimonialStatusApproved, Publication: models.PublicationStatusDraft},
	)

	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestDeleteTestimonial_NothingDeletedIsNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		_, _ = io.WriteString(w, "[]")
	})

	err := c.DeleteTestimonial(context.Background(), "id-1")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestServerErrorIsNotDefinitive(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"message":"database unavailable"}`)
	})

	_, err := c.ListLeads(context.Background())

	require.Error(t, err)
	assert.False(t, apperrors.IsDefinitive(err))
	assert.Contains(t, err.Error(), "status 503")
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})

	for i := 0; i < 3; i++ {
		_, err := c.GetSiteConfig(context.Background())
		require.Error(t, err)
	}
	_, err := c.GetSiteConfig(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "is open")
	assert.Equal(t, 3, calls)
	assert.Equal(t, "open", c.BreakerState())
}

func TestNotConfigured(t *testing.T) {
	c := NewClient(Config{}, httpclient.NewStandardClient())

	_, err := c.GetUserByEmail(context.Background(), "admin@novocode.com.br")

	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
}

func TestSetLeadTestimonialRequest_KeepsExistingToken(t *testing.T) {
	const leadJSON = `[{"id":"lead-1","name":"Maria","email":"maria@x.com","message":"hi",
		"source":"contact","status":"NEW","testimonial_token":"tok-123",
		"created_at":"2026-03-01T10:00:00Z","updated_at":"2026-03-01T10:00:00Z"}]`

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPatch {
			assert.Empty(t, r.URL.Query().Get("testimonial_token"))

			var body map[string]interface{}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.NotContains(t, body, "testimonial_token")
			assert.Contains(t, body, "testimonial_email_sent_at")
		}
		_, _ = io.WriteString(w, leadJSON)
	})

	sentAt := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)
	lead, err := c.SetLeadTestimonialRequest(context.Background(), "lead-1", "other-token", &sentAt)

	require.NoError(t, err)
	require.NotNil(t, lead.TestimonialToken)
	assert.Equal(t, "tok-123", *lead.TestimonialToken)
}
