package repository

import (
	"context"

	"github.com/novocode/novocode-api/internal/models"
)

type UserRepository struct {
	gate     *HealthGate
	primary  UserDataSource
	fallback UserDataSource
}

func NewUserRepository(gate *HealthGate, primary, fallback UserDataSource) *UserRepository {
	return &UserRepository{gate: gate, primary: primary, fallback: fallback}
}

// FindByEmail returns (nil, nil) for an unknown email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return Exec(ctx, r.gate, "user.findByEmail",
		func(ctx context.Context) (*models.User, error) { return r.primary.GetUserByEmail(ctx, email) },
		func(ctx context.Context) (*models.User, error) { return r.fallback.GetUserByEmail(ctx, email) })
}
