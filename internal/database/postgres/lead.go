package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/novocode/novocode-api/internal/models"
	apperrors "github.com/novocode/novocode-api/pkg/errors"
)

const leadColumns = `
	id::text, name, email, phone, company, service, budget, message, source, status,
	testimonial_token, testimonial_email_sent_at, created_at, updated_at`

func scanLead(row pgx.Row) (*models.Lead, error) {
	var l models.Lead
	err := row.Scan(
		&l.ID, &l.Name, &l.Email, &l.Phone, &l.Company, &l.Service, &l.Budget,
		&l.Message, &l.Source, &l.Status,
		&l.TestimonialToken, &l.TestimonialEmailSentAt, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (c *Client) queryLead(ctx context.Context, operation, where string, arg interface{}) (*models.Lead, error) {
	var result *models.Lead

	err := c.withConn(ctx, operation, func(ctx context.Context, conn *pgxpool.Conn) error {
		l, err := scanLead(conn.QueryRow(ctx, "SELECT "+leadColumns+" FROM leads WHERE "+where, arg))
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to query lead: %w", err)
		}
		result = l
		return nil
	})

	return result, err
}

// GetLeadByID returns (nil, nil) when the lead does not exist.
func (c *Client) GetLeadByID(ctx context.Context, id string) (*models.Lead, error) {
	return c.queryLead(ctx, "getLeadByID", "id = $1::uuid", id)
}

// GetLeadByTestimonialToken returns (nil, nil) when no lead carries token.
func (c *Client) GetLeadByTestimonialToken(ctx context.Context, token string) (*models.Lead, error) {
	return c.queryLead(ctx, "getLeadByTestimonialToken", "testimonial_token = $1", token)
}

// ListLeads returns all leads, newest first.
func (c *Client) ListLeads(ctx context.Context) ([]*models.Lead, error) {
	leads := make([]*models.Lead, 0)

	err := c.withConn(ctx, "listLeads", func(ctx context.Context, conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, "SELECT "+leadColumns+" FROM leads ORDER BY created_at DESC")
		if err != nil {
			return fmt.Errorf("failed to query leads: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			l, err := scanLead(rows)
			if err != nil {
				return fmt.Errorf("failed to scan lead: %w", err)
			}
			leads = append(leads, l)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return leads, nil
}

// CreateLead inserts a new lead in status NEW.
func (c *Client) CreateLead(ctx context.Context, lead *models.Lead) (*models.Lead, error) {
	var created *models.Lead

	err := c.withConn(ctx, "createLead", func(ctx context.Context, conn *pgxpool.Conn) error {
		row := conn.QueryRow(ctx, `
			INSERT INTO leads (name, email, phone, company, service, budget, message, source, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING `+leadColumns,
			lead.Name, lead.Email, lead.Phone, lead.Company, lead.Service, lead.Budget,
			lead.Message, lead.Source, models.LeadStatusNew,
		)

		var err error
		created, err = scanLead(row)
		if err != nil {
			return mapWriteError(fmt.Errorf("failed to create lead: %w", err), "lead")
		}
		return nil
	})

	return created, err
}

// SetLeadTestimonialRequest records the testimonial token issued for a lead.
// An existing token is never replaced; sentAt is only written when non-nil.
func (c *Client) SetLeadTestimonialRequest(ctx context.Context, id, token string, sentAt *time.Time) (*models.Lead, error) {
	var updated *models.Lead

	err := c.withConn(ctx, "setLeadTestimonialRequest", func(ctx context.Context, conn *pgxpool.Conn) error {
		row := conn.QueryRow(ctx, `
			UPDATE leads
			SET testimonial_token = COALESCE(testimonial_token, $2),
			    testimonial_email_sent_at = COALESCE($3, testimonial_email_sent_at),
			    updated_at = NOW()
			WHERE id = $1::uuid
			RETURNING `+leadColumns,
			id, token, sentAt,
		)

		var err error
		updated, err = scanLead(row)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NotFoundError("lead")
		}
		if err != nil {
			return mapWriteError(fmt.Errorf("failed to update lead: %w", err), "lead testimonial token")
		}
		return nil
	})

	return updated, err
}
