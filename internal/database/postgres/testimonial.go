package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/novocode/novocode-api/internal/models"
	apperrors "github.com/novocode/novocode-api/pkg/errors"
)

const testimonialColumns = `
	id::text, client_name, client_email, client_position, client_company,
	content, rating, request_token, status, publication_status, lead_id::text,
	request_sent_at, submitted_at, created_at, updated_at`

func scanTestimonial(row pgx.Row) (*models.Testimonial, error) {
	var t models.Testimonial
	err := row.Scan(
		&t.ID, &t.ClientName, &t.ClientEmail, &t.ClientPosition, &t.ClientCompany,
		&t.Content, &t.Rating, &t.RequestToken, &t.Status, &t.PublicationStatus, &t.LeadID,
		&t.RequestSentAt, &t.SubmittedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// queryTestimonial returns (nil, nil) when no row matches.
func (c *Client) queryTestimonial(ctx context.Context, operation, where string, args ...interface{}) (*models.Testimonial, error) {
	var result *models.Testimonial

	err := c.withConn(ctx, operation, func(ctx context.Context, conn *pgxpool.Conn) error {
		t, err := scanTestimonial(conn.QueryRow(ctx,
			"SELECT "+testimonialColumns+" FROM testimonials WHERE "+where, args...))
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to query testimonial: %w", err)
		}
		result = t
		return nil
	})

	return result, err
}

// GetTestimonialByToken fetches a testimonial by its request token.
func (c *Client) GetTestimonialByToken(ctx context.Context, token string) (*models.Testimonial, error) {
	return c.queryTestimonial(ctx, "getTestimonialByToken", "request_token = $1", token)
}

// GetTestimonialByID fetches a testimonial by id.
func (c *Client) GetTestimonialByID(ctx context.Context, id string) (*models.Testimonial, error) {
	return c.queryTestimonial(ctx, "getTestimonialByID", "id = $1::uuid", id)
}

// ListTestimonials returns testimonials matching filter, newest first.
func (c *Client) ListTestimonials(ctx context.Context, filter models.TestimonialFilter) ([]*models.Testimonial, error) {
	conditions := make([]string, 0, 2)
	args := make([]interface{}, 0, 2)
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.PublicationStatus != "" {
		args = append(args, filter.PublicationStatus)
		conditions = append(conditions, fmt.Sprintf("publication_status = $%d", len(args)))
	}

	query := "SELECT " + testimonialColumns + " FROM testimonials"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY COALESCE(submitted_at, created_at) DESC"

	testimonials := make([]*models.Testimonial, 0)

	err := c.withConn(ctx, "listTestimonials", func(ctx context.Context, conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to query testimonials: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			t, err := scanTestimonial(rows)
			if err != nil {
				return fmt.Errorf("failed to scan testimonial: %w", err)
			}
			testimonials = append(testimonials, t)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return testimonials, nil
}

// CreateTestimonial inserts t. A duplicate request token yields ErrConflict.
func (c *Client) CreateTestimonial(ctx context.Context, t *models.Testimonial) (*models.Testimonial, error) {
	var created *models.Testimonial

	err := c.withConn(ctx, "createTestimonial", func(ctx context.Context, conn *pgxpool.Conn) error {
		row := conn.QueryRow(ctx, `
			INSERT INTO testimonials (
				client_name, client_email, client_position, client_company,
				request_token, status, publication_status, lead_id, request_sent_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8::uuid, $9)
			RETURNING `+testimonialColumns,
			t.ClientName, t.ClientEmail, t.ClientPosition, t.ClientCompany,
			t.RequestToken, t.Status, t.PublicationStatus, t.LeadID, t.RequestSentAt,
		)

		var err error
		created, err = scanTestimonial(row)
		if err != nil {
			return mapWriteError(err, "testimonial request token")
		}
		return nil
	})

	return created, err
}

// SubmitTestimonial stores the client's content and rating. The update only
// applies while the record is still PENDING.
func (c *Client) SubmitTestimonial(ctx context.Context, token string, sub models.TestimonialSubmission) (*models.Testimonial, error) {
	var updated *models.Testimonial

	err := c.withConn(ctx, "submitTestimonial", func(ctx context.Context, conn *pgxpool.Conn) error {
		row := conn.QueryRow(ctx, `
			UPDATE testimonials
			SET content = $2,
			    rating = $3,
			    client_position = COALESCE($4, client_position),
			    client_company = COALESCE($5, client_company),
			    status = $6,
			    submitted_at = $7,
			    updated_at = NOW()
			WHERE request_token = $1 AND status = $8
			RETURNING `+testimonialColumns,
			token, sub.Content, sub.Rating, sub.ClientPosition, sub.ClientCompany,
			models.TestimonialStatusSubmitted, sub.SubmittedAt, models.TestimonialStatusPending,
		)

		var err error
		updated, err = scanTestimonial(row)
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrTestimonialAlreadySubmitted
		}
		if err != nil {
			return fmt.Errorf("failed to submit testimonial: %w", err)
		}
		return nil
	})

	return updated, err
}

// UpdateTestimonialState moves a testimonial from one state to another. The
// update only applies if the stored state still equals from.
func (c *Client) UpdateTestimonialState(ctx context.Context, id string, from, to models.TestimonialState) (*models.Testimonial, error) {
	var updated *models.Testimonial

	err := c.withConn(ctx, "updateTestimonialState", func(ctx context.Context, conn *pgxpool.Conn) error {
		row := conn.QueryRow(ctx, `
			UPDATE testimonials
			SET status = $2, publication_status = $3, updated_at = NOW()
			WHERE id = $1::uuid AND status = $4 AND publication_status = $5
			RETURNING `+testimonialColumns,
			id, to.Status, to.Publication, from.Status, from.Publication,
		)

		var err error
		updated, err = scanTestimonial(row)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ConflictError("testimonial was modified concurrently")
		}
		if err != nil {
			return fmt.Errorf("failed to update testimonial state: %w", err)
		}
		return nil
	})

	return updated, err
}

// MarkTestimonialRequestSent stamps when the request email went out.
func (c *Client) MarkTestimonialRequestSent(ctx context.Context, id string, sentAt time.Time) (*models.Testimonial, error) {
	var updated *models.Testimonial

	err := c.withConn(ctx, "markTestimonialRequestSent", func(ctx context.Context, conn *pgxpool.Conn) error {
		row := conn.QueryRow(ctx, `
			UPDATE testimonials
			SET request_sent_at = $2, updated_at = NOW()
			WHERE id = $1::uuid
			RETURNING `+testimonialColumns,
			id, sentAt,
		)

		var err error
		updated, err = scanTestimonial(row)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NotFoundError("testimonial")
		}
		if err != nil {
			return fmt.Errorf("failed to mark testimonial request sent: %w", err)
		}
		return nil
	})

	return updated, err
}

// DeleteTestimonial removes a testimonial regardless of its state.
func (c *Client) DeleteTestimonial(ctx context.Context, id string) error {
	return c.withConn(ctx, "deleteTestimonial", func(ctx context.Context, conn *pgxpool.Conn) error {
		tag, err := conn.Exec(ctx, "DELETE FROM testimonials WHERE id = $1::uuid", id)
		if err != nil {
			return fmt.Errorf("failed to delete testimonial: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NotFoundError("testimonial")
		}
		return nil
	})
}
