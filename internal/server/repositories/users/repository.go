package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/userhub/internal/server/models"
)

// Repository is the credential-store abstraction. The PostgreSQL
// implementation is the production one; tests use fakes.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, offset, limit int) ([]*models.User, error)
	Count(ctx context.Context) (int64, error)
	UpdateProfile(ctx context.Context, id, fullName, bio string) error
	UpdateAccount(ctx context.Context, id string, role *string, isActive, isVerified *bool) error
	SetAvatarKey(ctx context.Context, id, key string) error

	// IncrementFailedLogin atomically bumps the failed-login counter and
	// returns the new value, so concurrent attempts cannot lose updates.
	IncrementFailedLogin(ctx context.Context, id string) (int, error)
	SetLock(ctx context.Context, id string, until time.Time) error

	// RecordLoginSuccess resets the failure counter, clears any lock, and
	// stamps last_login_at / last_login_ip.
	RecordLoginSuccess(ctx context.Context, id, ip string) error
	Deactivate(ctx context.Context, id string) error
}
