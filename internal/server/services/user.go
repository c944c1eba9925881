// Package services contains server-side business logic. This file implements
// UserService, which handles registration, authentication with failed-attempt
// lockout, issuing/refreshing JWTs plus server-stored refresh tokens, and the
// account queries used by the profile and admin endpoints.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/userhub/internal/common"
	"github.com/dmitrijs2005/userhub/internal/dbx"
	"github.com/dmitrijs2005/userhub/internal/logging"
	"github.com/dmitrijs2005/userhub/internal/server/auth"
	"github.com/dmitrijs2005/userhub/internal/server/config"
	"github.com/dmitrijs2005/userhub/internal/server/models"
	"github.com/dmitrijs2005/userhub/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RegisterParams carries the validated registration input.
type RegisterParams struct {
	Username string
	Email    string
	Password string
	FullName string
}

// ClientMeta identifies the caller for audit purposes.
type ClientMeta struct {
	IP        string
	UserAgent string
}

// AuthResult is returned by a successful Authenticate call.
type AuthResult struct {
	User      *models.User
	Tokens    *TokenPair
	ExpiresIn time.Duration
}

// UserService provides the authentication and account operations:
//   - Register: create users after uniqueness and password-policy checks
//   - Authenticate: verify credentials, drive the lockout counter, mint tokens
//   - RefreshToken / Logout: rotate and revoke server-stored sessions
//   - profile and admin queries
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	logger                       logging.Logger
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	lockoutThreshold             int
	lockoutDuration              time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		logger:                       logger.With("module", "user_service"),
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		lockoutThreshold:             cfg.LockoutThreshold,
		lockoutDuration:              cfg.LockoutDuration,
	}
}

// AccessTokenTTL returns the configured access token lifetime.
func (s *UserService) AccessTokenTTL() time.Duration {
	return s.accessTokenValidityDuration
}

// Register creates a new user. Username and email must be unique
// (case-insensitive); the password must satisfy the strength policy.
// The existence check and the insert run in one transaction so two
// concurrent registrations cannot both pass the check.
func (s *UserService) Register(ctx context.Context, params RegisterParams, meta ClientMeta) (*models.User, error) {
	if err := auth.ValidatePasswordStrength(params.Password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: hash,
		FullName:     params.FullName,
		Role:         models.RoleUser,
		IsActive:     true,
		IsVerified:   false,
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		exists, err := repo.ExistsByUsernameOrEmail(ctx, params.Username, params.Email)
		if err != nil {
			return err
		}
		if exists {
			return common.ErrDuplicateUser
		}

		user, err = repo.Create(ctx, user)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateUser) {
			return nil, common.ErrDuplicateUser
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.audit(ctx, &models.AuditEvent{
		UserID:    user.ID,
		Action:    models.AuditUserRegistered,
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
		Success:   true,
	})

	return user, nil
}

// Authenticate verifies the login/password pair and returns the user and a
// fresh token pair. The login may be a username or an email; the error is
// the same either way so the response does not reveal which part was wrong.
//
// A locked account is rejected before the hash check. On a password
// mismatch the failure counter is bumped atomically and, once it reaches
// the threshold, the account is locked for the configured duration.
func (s *UserService) Authenticate(ctx context.Context, login, password string, meta ClientMeta) (*AuthResult, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.audit(ctx, &models.AuditEvent{
				Action:    models.AuditLoginFailed,
				IPAddress: meta.IP,
				UserAgent: meta.UserAgent,
				Detail:    "unknown login",
			})
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrorInternal
	}

	if !user.IsActive {
		s.audit(ctx, &models.AuditEvent{
			UserID:    user.ID,
			Action:    models.AuditLoginFailed,
			IPAddress: meta.IP,
			UserAgent: meta.UserAgent,
			Detail:    "account inactive",
		})
		return nil, common.ErrInvalidCredentials
	}

	if user.IsLocked(time.Now()) {
		s.audit(ctx, &models.AuditEvent{
			UserID:    user.ID,
			Action:    models.AuditLoginRejected,
			IPAddress: meta.IP,
			UserAgent: meta.UserAgent,
			Detail:    "account locked",
		})
		return nil, common.ErrAccountLocked
	}

	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		locked, failErr := s.recordFailure(ctx, user.ID)
		if failErr != nil {
			s.logger.Error(ctx, "recording login failure", "error", failErr.Error(), "user_id", user.ID)
		}
		s.audit(ctx, &models.AuditEvent{
			UserID:    user.ID,
			Action:    models.AuditLoginFailed,
			IPAddress: meta.IP,
			UserAgent: meta.UserAgent,
			Detail:    "bad password",
		})
		if locked {
			s.audit(ctx, &models.AuditEvent{
				UserID:    user.ID,
				Action:    models.AuditAccountLocked,
				IPAddress: meta.IP,
				UserAgent: meta.UserAgent,
				Detail:    fmt.Sprintf("locked for %s after %d failed attempts", s.lockoutDuration, s.lockoutThreshold),
			})
			s.logger.Warn(ctx, "account locked after repeated failures", "user_id", user.ID, "ip", meta.IP)
		}
		return nil, common.ErrInvalidCredentials
	}

	if err := repo.RecordLoginSuccess(ctx, user.ID, meta.IP); err != nil {
		return nil, common.ErrorInternal
	}
	user.FailedLoginCount = 0
	user.LockedUntil = nil
	now := time.Now()
	user.LastLoginAt = &now
	user.LastLoginIP = meta.IP

	pair, err := s.generateTokenPair(ctx, user, s.db)
	if err != nil {
		return nil, common.ErrorInternal
	}

	s.audit(ctx, &models.AuditEvent{
		UserID:    user.ID,
		Action:    models.AuditLoginSucceeded,
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
		Success:   true,
	})

	return &AuthResult{User: user, Tokens: pair, ExpiresIn: s.accessTokenValidityDuration}, nil
}

// recordFailure bumps the failure counter and applies the lock when the
// threshold is reached, all inside one transaction. It reports whether the
// account transitioned to locked.
func (s *UserService) recordFailure(ctx context.Context, userID string) (bool, error) {
	var locked bool
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.Users(tx)
		count, err := repoTx.IncrementFailedLogin(ctx, userID)
		if err != nil {
			return err
		}
		if count >= s.lockoutThreshold {
			if err := repoTx.SetLock(ctx, userID, time.Now().Add(s.lockoutDuration)); err != nil {
				return err
			}
			locked = true
		}
		return nil
	})
	return locked, err
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh TokenPair. Expired tokens yield ErrRefreshTokenExpired.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, common.ErrorInternal
	}
	if token.Expires.Before(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, token.UserID)
	if err != nil || !user.IsActive {
		return nil, common.ErrInvalidToken
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.RefreshTokens(tx)
		if err := repoTx.Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, user, tx)
		return genErr
	}); err != nil {
		return nil, common.ErrorInternal
	}
	return pair, nil
}

// Logout revokes the presented refresh token server-side. Unknown tokens are
// treated as already logged out.
func (s *UserService) Logout(ctx context.Context, refreshToken string, meta ClientMeta) error {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return common.ErrorInternal
	}

	if err := repo.Delete(ctx, refreshToken); err != nil {
		return common.ErrorInternal
	}

	s.audit(ctx, &models.AuditEvent{
		UserID:    token.UserID,
		Action:    models.AuditLogout,
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
		Success:   true,
	})

	return nil
}

// GetByID returns the user with the given id or common.ErrorNotFound.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

// List returns one page of users plus the total count.
func (s *UserService) List(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	repo := s.repomanager.Users(s.db)

	users, err := repo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// UpdateProfile changes the caller-editable fields and returns the updated user.
func (s *UserService) UpdateProfile(ctx context.Context, id, fullName, bio string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)
	if err := repo.UpdateProfile(ctx, id, fullName, bio); err != nil {
		return nil, err
	}
	return repo.GetByID(ctx, id)
}

// AccountUpdate carries the admin-editable fields; nil means "keep".
type AccountUpdate struct {
	Role       *string
	IsActive   *bool
	IsVerified *bool
}

// UpdateAccount applies an admin change to a user. Deactivating an account
// also revokes all of its refresh tokens so no live session survives.
func (s *UserService) UpdateAccount(ctx context.Context, id string, update AccountUpdate, meta ClientMeta) (*models.User, error) {
	if update.Role != nil && *update.Role != models.RoleUser && *update.Role != models.RoleAdmin {
		return nil, fmt.Errorf("unknown role %q: %w", *update.Role, common.ErrorNotFound)
	}

	repo := s.repomanager.Users(s.db)
	if err := repo.UpdateAccount(ctx, id, update.Role, update.IsActive, update.IsVerified); err != nil {
		return nil, err
	}

	if update.IsActive != nil && !*update.IsActive {
		if err := s.repomanager.RefreshTokens(s.db).DeleteForUser(ctx, id); err != nil {
			s.logger.Error(ctx, "revoking sessions for deactivated account", "error", err.Error(), "user_id", id)
		}
	}

	s.audit(ctx, &models.AuditEvent{
		UserID:    id,
		Action:    models.AuditAccountUpdated,
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
		Success:   true,
	})

	return repo.GetByID(ctx, id)
}

// Deactivate soft-deletes a user account and revokes its sessions.
func (s *UserService) Deactivate(ctx context.Context, id string, meta ClientMeta) error {
	repo := s.repomanager.Users(s.db)
	if err := repo.Deactivate(ctx, id); err != nil {
		return err
	}
	if err := s.repomanager.RefreshTokens(s.db).DeleteForUser(ctx, id); err != nil {
		s.logger.Error(ctx, "revoking sessions for deactivated account", "error", err.Error(), "user_id", id)
	}

	s.audit(ctx, &models.AuditEvent{
		UserID:    id,
		Action:    models.AuditAccountDisabled,
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
		Success:   true,
	})

	return nil
}

// ListAuditEvents returns the newest audit rows, optionally for one user.
func (s *UserService) ListAuditEvents(ctx context.Context, userID string, limit int) ([]*models.AuditEvent, error) {
	return s.repomanager.AuditEvents(s.db).ListRecent(ctx, userID, limit)
}

// --- helpers below ---

// audit writes one event row. Audit failures are logged and dropped: they
// must never fail the authentication flow itself.
func (s *UserService) audit(ctx context.Context, event *models.AuditEvent) {
	if err := s.repomanager.AuditEvents(s.db).Create(ctx, event); err != nil {
		s.logger.Error(ctx, "writing audit event", "error", err.Error(), "action", event.Action)
	}
}

func (s *UserService) generateAccessToken(user *models.User) (string, error) {
	return auth.GenerateToken(user.ID, user.Role, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *UserService) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

func (s *UserService) generateTokenPair(ctx context.Context, user *models.User, tx dbx.DBTX) (*TokenPair, error) {
	access, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.generateRefreshToken()
	if err != nil {
		return nil, err
	}
	refreshRepo := s.repomanager.RefreshTokens(tx)
	if err := refreshRepo.Create(ctx, user.ID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
