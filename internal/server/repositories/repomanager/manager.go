// Package repomanager defines the RepositoryManager abstraction that vends
// repositories bound to a specific database handle (plain connection or
// transaction) and owns schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/userhub/internal/dbx"
	"github.com/dmitrijs2005/userhub/internal/server/repositories/auditevents"
	"github.com/dmitrijs2005/userhub/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/userhub/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	AuditEvents(db dbx.DBTX) auditevents.Repository
}
