package auth

import (
	"context"
	"time"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/staff"
)

// Repository is the slice of user storage the session flows need.
// staff.Repository satisfies it.
//
//go:generate mockgen -source=auth_repo.go -destination=mock/auth_repo_mock.go -package=mock
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*staff.User, error)
	FindByUserID(ctx context.Context, id string) (*staff.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string, activate bool) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

// InviteConsumer redeems one-time invite tokens. staff.InviteStore satisfies it.
type InviteConsumer interface {
	Consume(ctx context.Context, token string) (string, error)
}
