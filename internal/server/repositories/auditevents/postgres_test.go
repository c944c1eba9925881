package auditevents

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
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

func TestCreate_WithUser(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	mock.ExpectExec("INSERT INTO audit_events").
		WithArgs("u1", models.AuditLoginFailed, "192.0.2.1", "curl/8", false, "bad password").
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewPostgresRepository(db)
	err := repo.Create(context.Background(), &models.AuditEvent{
		UserID:    "u1",
		Action:    models.AuditLoginFailed,
		IPAddress: "192.0.2.1",
		UserAgent: "curl/8",
		Success:   false,
		Detail:    "bad password",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestCreate_UnknownUserInsertsNull(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	mock.ExpectExec("INSERT INTO audit_events").
		WithArgs(nil, models.AuditLoginFailed, "192.0.2.1", "", false, "unknown login").
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewPostgresRepository(db)
	err := repo.Create(context.Background(), &models.AuditEvent{
		Action:    models.AuditLoginFailed,
		IPAddress: "192.0.2.1",
		Detail:    "unknown login",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestListRecent(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("SELECT id, ts").
		WithArgs("u1", 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "ts", "user_id", "action", "ip_address", "user_agent", "success", "detail"}).
			AddRow(2, now, "u1", models.AuditLoginSucceeded, "192.0.2.1", "", true, "").
			AddRow(1, now.Add(-time.Minute), "u1", models.AuditLoginFailed, "192.0.2.1", "", false, "bad password"))

	repo := NewPostgresRepository(db)
	events, err := repo.ListRecent(context.Background(), "u1", 10)
	if err != nil {
		t.Fatalf("ListRecent error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Action != models.AuditLoginSucceeded {
		t.Fatalf("unexpected first event: %+v", events[0])
	}
}
