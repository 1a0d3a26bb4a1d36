package auth

import (
	"context"

	"github.com/yanqian/dreamvision/internal/domain/dream"
)

// Repository abstracts user persistence.
type Repository interface {
	Create(ctx context.Context, user NewUser) (User, error)
	GetByEmail(ctx context.Context, email string) (User, bool, error)
	GetByID(ctx context.Context, id int64) (User, bool, error)
	UpdateProfile(ctx context.Context, id int64, profile dream.ProfileInput) (User, bool, error)
}
