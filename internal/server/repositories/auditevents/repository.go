// Package auditevents persists the security audit trail: one row per
// authentication attempt or account-state change.
package auditevents

import (
	"context"

	"github.com/dmitrijs2005/userhub/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, event *models.AuditEvent) error

	// ListRecent returns the newest events first. When userID is non-empty,
	// only that user's events are returned.
	ListRecent(ctx context.Context, userID string, limit int) ([]*models.AuditEvent, error)
}
