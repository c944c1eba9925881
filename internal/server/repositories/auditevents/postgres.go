package auditevents

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/userhub/internal/dbx"
	"github.com/dmitrijs2005/userhub/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, event *models.AuditEvent) error {
	query := `
		INSERT INTO audit_events (user_id, action, ip_address, user_agent, success, detail)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	// user_id column is a nullable UUID; an empty string is not a valid value.
	var userID any
	if event.UserID != "" {
		userID = event.UserID
	}

	if _, err := r.db.ExecContext(ctx, query,
		userID, event.Action, event.IPAddress, event.UserAgent, event.Success, event.Detail); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListRecent(ctx context.Context, userID string, limit int) ([]*models.AuditEvent, error) {
	query := `
		SELECT id, ts, COALESCE(user_id::text, ''), action, ip_address, user_agent, success, detail
		FROM audit_events
		WHERE $1 = '' OR user_id::text = $1
		ORDER BY ts DESC, id DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.AuditEvent
	for rows.Next() {
		event := &models.AuditEvent{}
		if err := rows.Scan(&event.ID, &event.Timestamp, &event.UserID, &event.Action,
			&event.IPAddress, &event.UserAgent, &event.Success, &event.Detail); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
