package rest

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/novocode/novocode-api/internal/models"
)

type userRow struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"password_hash"`
	Role         models.UserRole `json:"role"`
}

// GetUserByEmail fetches a back-office account. Returns (nil, nil) when no
// account matches. Emails are stored lower-cased.
func (c *Client) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	rows, err := execute[userRow](ctx, c, request{
		operation: "getUserByEmail",
		method:    http.MethodGet,
		table:     "users",
		query: url.Values{
			"select": {"id,name,email,password_hash,role"},
			"email":  {eq(strings.ToLower(strings.TrimSpace(email)))},
			"limit":  {"1"},
		},
	})
	if err != nil {
		return nil, err
	}

	row := firstOrNil(rows)
	if row == nil {
		return nil, nil
	}
	u := models.User(*row)
	return &u, nil
}
