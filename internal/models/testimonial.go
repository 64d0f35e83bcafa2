package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/novocode/novocode-api/pkg/errors"
)

// TestimonialStatus is the review axis of a testimonial.
type TestimonialStatus string

const (
	TestimonialStatusPending   TestimonialStatus = "PENDING"
	TestimonialStatusSubmitted TestimonialStatus = "SUBMITTED"
	TestimonialStatusApproved  TestimonialStatus = "APPROVED"
	TestimonialStatusRejected  TestimonialStatus = "REJECTED"
)

func (s TestimonialStatus) IsValid() bool {
	switch s {
	case TestimonialStatusPending, TestimonialStatusSubmitted, TestimonialStatusApproved, TestimonialStatusRejected:
		return true
	}
	return false
}

// PublicationStatus is the publication axis, orthogonal to TestimonialStatus.
type PublicationStatus string

const (
	PublicationStatusDraft     PublicationStatus = "DRAFT"
	PublicationStatusPublished PublicationStatus = "PUBLISHED"
)

// TestimonialAction is an input to the testimonial state machine.
type TestimonialAction string

const (
	TestimonialActionSubmit  TestimonialAction = "submit"
	TestimonialActionApprove TestimonialAction = "approve"
	TestimonialActionReject  TestimonialAction = "reject"
	TestimonialActionPublish TestimonialAction = "publish"
)

// IsModeration reports whether the action is reserved for staff.
func (a TestimonialAction) IsModeration() bool {
	return a == TestimonialActionApprove || a == TestimonialActionReject || a == TestimonialActionPublish
}

const (
	MinTestimonialRating        = 1
	MaxTestimonialRating        = 5
	MaxTestimonialContentLength = 1000
)

var (
	ErrTestimonialAlreadySubmitted = fmt.Errorf("testimonial already submitted: %w", apperrors.ErrInvalidInput)
	ErrOnlyApprovedCanBePublished  = fmt.Errorf("only approved testimonials may be published: %w", apperrors.ErrInvalidInput)
	ErrInvalidTransition           = fmt.Errorf("transition not allowed: %w", apperrors.ErrInvalidInput)
)

// Testimonial is one solicited or submitted client review.
type Testimonial struct {
	ID                string            `json:"id"`
	ClientName        string            `json:"clientName"`
	ClientEmail       string            `json:"clientEmail"`
	ClientPosition    *string           `json:"clientPosition,omitempty"`
	ClientCompany     *string           `json:"clientCompany,omitempty"`
	Content           *string           `json:"content,omitempty"`
	Rating            *int              `json:"rating,omitempty"`
	RequestToken      string            `json:"requestToken"`
	Status            TestimonialStatus `json:"status"`
	PublicationStatus PublicationStatus `json:"publicationStatus"`
	LeadID            *string           `json:"leadId,omitempty"`
	RequestSentAt     *time.Time        `json:"requestSentAt,omitempty"`
	SubmittedAt       *time.Time        `json:"submittedAt,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// TestimonialState is the pair of axes the state machine operates on.
type TestimonialState struct {
	Status      TestimonialStatus
	Publication PublicationStatus
}

// State returns the current position of t in the state machine.
func (t *Testimonial) State() TestimonialState {
	return TestimonialState{Status: t.Status, Publication: t.PublicationStatus}
}

// CanSubmit reports whether the public form may still be shown.
func (t *Testimonial) CanSubmit() bool {
	return t.Status == TestimonialStatusPending
}

// NextTestimonialState validates action against the current state and returns
// the resulting state. Every mutation of a testimonial goes through here.
func NextTestimonialState(current TestimonialState, action TestimonialAction) (TestimonialState, error) {
	switch action {
	case TestimonialActionSubmit:
		if current.Status != TestimonialStatusPending {
			return current, ErrTestimonialAlreadySubmitted
		}
		return TestimonialState{Status: TestimonialStatusSubmitted, Publication: PublicationStatusDraft}, nil

	case TestimonialActionApprove:
		if current.Status != TestimonialStatusSubmitted {
			return current, fmt.Errorf("approve requires status %s, got %s: %w",
				TestimonialStatusSubmitted, current.Status, ErrInvalidTransition)
		}
		return TestimonialState{Status: TestimonialStatusApproved, Publication: PublicationStatusDraft}, nil

	case TestimonialActionReject:
		if current.Status != TestimonialStatusSubmitted && current.Status != TestimonialStatusApproved {
			return current, fmt.Errorf("reject requires status %s or %s, got %s: %w",
				TestimonialStatusSubmitted, TestimonialStatusApproved, current.Status, ErrInvalidTransition)
		}
		// A rejected testimonial can never stay published.
		return TestimonialState{Status: TestimonialStatusRejected, Publication: PublicationStatusDraft}, nil

	case TestimonialActionPublish:
		if current.Status != TestimonialStatusApproved {
			return current, ErrOnlyApprovedCanBePublished
		}
		if current.Publication == PublicationStatusPublished {
			return current, fmt.Errorf("testimonial is already published: %w", ErrInvalidTransition)
		}
		return TestimonialState{Status: TestimonialStatusApproved, Publication: PublicationStatusPublished}, nil
	}

	return current, fmt.Errorf("unknown action %q: %w", action, ErrInvalidTransition)
}

// ValidateSubmission checks the client-provided fields of a submission.
func ValidateSubmission(content string, rating int) error {
	if rating < MinTestimonialRating || rating > MaxTestimonialRating {
		return apperrors.InvalidInputError("rating",
			fmt.Sprintf("must be between %d and %d", MinTestimonialRating, MaxTestimonialRating))
	}
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return apperrors.InvalidInputError("content", "is required")
	}
	if utf8.RuneCountInString(trimmed) > MaxTestimonialContentLength {
		return apperrors.InvalidInputError("content",
			fmt.Sprintf("must not exceed %d characters", MaxTestimonialContentLength))
	}
	return nil
}

// TestimonialSubmission carries the fields written by the public submit path.
type TestimonialSubmission struct {
	Content        string
	Rating         int
	ClientPosition *string
	ClientCompany  *string
	SubmittedAt    time.Time
}

// TestimonialFilter narrows admin listings. Empty fields match everything.
type TestimonialFilter struct {
	Status            TestimonialStatus
	PublicationStatus PublicationStatus
}

// IsPreconditionError reports whether err came from the state machine or
// submission validation.
func IsPreconditionError(err error) bool {
	return errors.Is(err, apperrors.ErrInvalidInput)
}
