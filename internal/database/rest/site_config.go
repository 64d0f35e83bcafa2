package rest

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/novocode/novocode-api/internal/models"
)

type siteConfigRow struct {
	CompanyName      string    `json:"company_name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	WhatsApp         string    `json:"whatsapp"`
	Address          string    `json:"address"`
	InstagramURL     string    `json:"instagram_url"`
	LinkedInURL      string    `json:"linkedin_url"`
	GitHubURL        string    `json:"github_url"`
	ShowTestimonials bool      `json:"show_testimonials"`
	ShowBlog         bool      `json:"show_blog"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// GetSiteConfig fetches the singleton configuration row. Returns (nil, nil)
// when it has not been seeded.
func (c *Client) GetSiteConfig(ctx context.Context) (*models.SiteConfig, error) {
	rows, err := execute[siteConfigRow](ctx, c, request{
		operation: "getSiteConfig",
		method:    http.MethodGet,
		table:     "site_config",
		query:     url.Values{"select": {"*"}, "id": {eq("1")}},
	})
	if err != nil {
		return nil, err
	}

	row := firstOrNil(rows)
	if row == nil {
		return nil, nil
	}
	sc := models.SiteConfig(*row)
	return &sc, nil
}
