package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/novocode/novocode-api/internal/models"
)

// GetUserByEmail fetches a back-office account. Returns (nil, nil) when no
// account matches.
func (c *Client) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var result *models.User

	err := c.withConn(ctx, "getUserByEmail", func(ctx context.Context, conn *pgxpool.Conn) error {
		var u models.User
		err := conn.QueryRow(ctx, `
			SELECT id::text, name, email, password_hash, role
			FROM users
			WHERE LOWER(email) = $1
		`, strings.ToLower(strings.TrimSpace(email))).Scan(
			&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to query user: %w", err)
		}
		result = &u
		return nil
	})

	return result, err
}
