package models

import "time"

// SiteConfig is the singleton record of company, contact and feature-flag
// settings rendered by the public site.
type SiteConfig struct {
	CompanyName      string    `json:"companyName"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	WhatsApp         string    `json:"whatsapp"`
	Address          string    `json:"address"`
	InstagramURL     string    `json:"instagramUrl"`
	LinkedInURL      string    `json:"linkedinUrl"`
	GitHubURL        string    `json:"githubUrl"`
	ShowTestimonials bool      `json:"showTestimonials"`
	ShowBlog         bool      `json:"showBlog"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// DefaultSiteConfig is served when neither data store can be reached.
func DefaultSiteConfig() *SiteConfig {
	return &SiteConfig{
		CompanyName:      "NOVOCODE",
		Email:            "contato@novocode.com.br",
		Phone:            "",
		WhatsApp:         "",
		Address:          "",
		ShowTestimonials: true,
		ShowBlog:         true,
	}
}
