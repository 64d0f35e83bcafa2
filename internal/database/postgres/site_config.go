package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/novocode/novocode-api/internal/models"
)

// GetSiteConfig fetches the singleton configuration row. Returns (nil, nil)
// when it has not been seeded.
func (c *Client) GetSiteConfig(ctx context.Context) (*models.SiteConfig, error) {
	var result *models.SiteConfig

	err := c.withConn(ctx, "getSiteConfig", func(ctx context.Context, conn *pgxpool.Conn) error {
		var sc models.SiteConfig
		err := conn.QueryRow(ctx, `
			SELECT company_name, email, phone, whatsapp, address,
			       instagram_url, linkedin_url, github_url,
			       show_testimonials, show_blog, updated_at
			FROM site_config
			WHERE id = 1
		`).Scan(
			&sc.CompanyName, &sc.Email, &sc.Phone, &sc.WhatsApp, &sc.Address,
			&sc.InstagramURL, &sc.LinkedInURL, &sc.GitHubURL,
			&sc.ShowTestimonials, &sc.ShowBlog, &sc.UpdatedAt,
		)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to query site config: %w", err)
		}
		result = &sc
		return nil
	})

	return result, err
}
