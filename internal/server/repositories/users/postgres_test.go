package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/userhub/internal/common"
	"github.com/dmitrijs2005/userhub/internal/server/models"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func userRows(u *models.User) *sqlmock.Rows {
	var lockedUntil, lastLoginAt any
	if u.LockedUntil != nil {
		lockedUntil = *u.LockedUntil
	}
	if u.LastLoginAt != nil {
		lastLoginAt = *u.LastLoginAt
	}
	return sqlmock.NewRows([]string{
		"id", "username", "email", "password_hash", "full_name", "bio", "avatar_key", "role",
		"is_active", "is_verified", "failed_login_count", "locked_until",
		"created_at", "updated_at", "last_login_at", "last_login_ip",
	}).AddRow(u.ID, u.Username, u.Email, u.PasswordHash, u.FullName, u.Bio, u.AvatarKey, u.Role,
		u.IsActive, u.IsVerified, u.FailedLoginCount, lockedUntil,
		u.CreatedAt, u.UpdatedAt, lastLoginAt, u.LastLoginIP)
}

func TestCreate_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("alice", "alice@example.com", "hash", "Alice", models.RoleUser, true, false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow("id-1", time.Now(), time.Now()))

	repo := NewPostgresRepository(db)
	u, err := repo.Create(context.Background(), &models.User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		FullName:     "Alice",
		Role:         models.RoleUser,
		IsActive:     true,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if u.ID != "id-1" {
		t.Fatalf("id mismatch: got %q", u.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestExistsByUsernameOrEmail(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("alice", "alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	repo := NewPostgresRepository(db)
	exists, err := repo.ExistsByUsernameOrEmail(context.Background(), "alice", "alice@example.com")
	if err != nil {
		t.Fatalf("ExistsByUsernameOrEmail error: %v", err)
	}
	if !exists {
		t.Fatalf("expected exists=true")
	}
}

func TestGetByLogin_NotFound(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	repo := NewPostgresRepository(db)
	_, err := repo.GetByLogin(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestGetByLogin_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	locked := time.Now().Add(10 * time.Minute)
	want := &models.User{
		ID: "id-1", Username: "alice", Email: "alice@example.com",
		PasswordHash: "hash", Role: models.RoleUser, IsActive: true,
		FailedLoginCount: 2, LockedUntil: &locked,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}

	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs("alice").
		WillReturnRows(userRows(want))

	repo := NewPostgresRepository(db)
	got, err := repo.GetByLogin(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetByLogin error: %v", err)
	}
	if got.Username != "alice" || got.FailedLoginCount != 2 {
		t.Fatalf("unexpected user: %+v", got)
	}
	if got.LockedUntil == nil {
		t.Fatalf("expected locked_until to be set")
	}
}

func TestIncrementFailedLogin(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	mock.ExpectQuery("UPDATE users SET failed_login_count").
		WithArgs("id-1").
		WillReturnRows(sqlmock.NewRows([]string{"failed_login_count"}).AddRow(5))

	repo := NewPostgresRepository(db)
	count, err := repo.IncrementFailedLogin(context.Background(), "id-1")
	if err != nil {
		t.Fatalf("IncrementFailedLogin error: %v", err)
	}
	if count != 5 {
		t.Fatalf("count mismatch: got %d want 5", count)
	}
}

func TestRecordLoginSuccess(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	mock.ExpectExec("UPDATE users").
		WithArgs("id-1", "192.0.2.1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewPostgresRepository(db)
	if err := repo.RecordLoginSuccess(context.Background(), "id-1", "192.0.2.1"); err != nil {
		t.Fatalf("RecordLoginSuccess error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestUpdateProfile_NotFound(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	mock.ExpectExec("UPDATE users").
		WithArgs("missing", "Name", "Bio").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewPostgresRepository(db)
	err := repo.UpdateProfile(context.Background(), "missing", "Name", "Bio")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestDeactivate(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	mock.ExpectExec("UPDATE users SET is_active").
		WithArgs("id-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewPostgresRepository(db)
	if err := repo.Deactivate(context.Background(), "id-1"); err != nil {
		t.Fatalf("Deactivate error: %v", err)
	}
}
