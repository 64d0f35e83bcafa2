package models

import (
	"strings"
	"testing"

	apperrors "github.com/novocode/novocode-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func state(s TestimonialStatus, p PublicationStatus) TestimonialState {
	return TestimonialState{Status: s, Publication: p}
}

func TestNextTestimonialState(t *testing.T) {
	tests := []struct {
		name    string
		current TestimonialState
		action  TestimonialAction
		want    TestimonialState
		wantErr error
	}{
		{"submit pending", state(TestimonialStatusPending, PublicationStatusDraft), TestimonialActionSubmit,
			state(TestimonialStatusSubmitted, PublicationStatusDraft), nil},
		{"submit twice", state(TestimonialStatusSubmitted, PublicationStatusDraft), TestimonialActionSubmit,
			TestimonialState{}, ErrTestimonialAlreadySubmitted},
		{"approve submitted", state(TestimonialStatusSubmitted, PublicationStatusDraft), TestimonialActionApprove,
			state(TestimonialStatusApproved, PublicationStatusDraft), nil},
		{"approve pending", state(TestimonialStatusPending, PublicationStatusDraft), TestimonialActionApprove,
			TestimonialState{}, ErrInvalidTransition},
		{"approve rejected", state(TestimonialStatusRejected, PublicationStatusDraft), TestimonialActionApprove,
			TestimonialState{}, ErrInvalidTransition},
		{"reject submitted", state(TestimonialStatusSubmitted, PublicationStatusDraft), TestimonialActionReject,
			state(TestimonialStatusRejected, PublicationStatusDraft), nil},
		{"reject published unpublishes", state(TestimonialStatusApproved, PublicationStatusPublished), TestimonialActionReject,
			state(TestimonialStatusRejected, PublicationStatusDraft), nil},
		{"reject pending", state(TestimonialStatusPending, PublicationStatusDraft), TestimonialActionReject,
			TestimonialState{}, ErrInvalidTransition},
		{"publish approved", state(TestimonialStatusApproved, PublicationStatusDraft), TestimonialActionPublish,
			state(TestimonialStatusApproved, PublicationStatusPublished), nil},
		{"publish submitted", state(TestimonialStatusSubmitted, PublicationStatusDraft), TestimonialActionPublish,
			TestimonialState{}, ErrOnlyApprovedCanBePublished},
		{"publish twice", state(TestimonialStatusApproved, PublicationStatusPublished), TestimonialActionPublish,
			TestimonialState{}, ErrInvalidTransition},
		{"unknown action", state(TestimonialStatusSubmitted, PublicationStatusDraft), TestimonialAction("archive"),
			TestimonialState{}, ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextTestimonialState(tt.current, tt.action)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.True(t, IsPreconditionError(err))
				assert.Equal(t, tt.current, got, "a refused transition leaves the state untouched")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextTestimonialState_PublishedImpliesApproved(t *testing.T) {
	statuses := []TestimonialStatus{TestimonialStatusPending, TestimonialStatusSubmitted, TestimonialStatusApproved, TestimonialStatusRejected}
	publications := []PublicationStatus{PublicationStatusDraft, PublicationStatusPublished}
	actions := []TestimonialAction{TestimonialActionSubmit, TestimonialActionApprove, TestimonialActionReject, TestimonialActionPublish}

	for _, s := range statuses {
		for _, p := range publications {
			for _, a := range actions {
				next, err := NextTestimonialState(state(s, p), a)
				if err != nil {
					continue
				}
				if next.Publication == PublicationStatusPublished {
					assert.Equal(t, TestimonialStatusApproved, next.Status, "%s/%s + %s", s, p, a)
				}
			}
		}
	}
}

func TestValidateSubmission(t *testing.T) {
	tests := []struct {
		name    string
		content string
		rating  int
		wantErr bool
	}{
		{"valid lower bound", "Ótimo trabalho", 1, false},
		{"valid upper bound", "Ótimo trabalho", 5, false},
		{"rating zero", "Ótimo trabalho", 0, true},
		{"rating six", "Ótimo trabalho", 6, true},
		{"blank content", "   ", 5, true},
		{"content at limit in runes", strings.Repeat("é", MaxTestimonialContentLength), 5, false},
		{"content over limit", strings.Repeat("a", MaxTestimonialContentLength+1), 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSubmission(tt.content, tt.rating)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestTestimonial_ToPublicHidesContactDetails(t *testing.T) {
	lead := "lead-1"
	tm := &Testimonial{
		ID:           "id-1",
		ClientName:   "Maria",
		ClientEmail:  "maria@x.com",
		RequestToken: "tok-123",
		LeadID:       &lead,
		Status:       TestimonialStatusPending,
	}

	public := tm.ToPublic()

	assert.Equal(t, "Maria", public.ClientName)
	assert.True(t, tm.CanSubmit())
}
