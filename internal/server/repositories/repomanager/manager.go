package repomanager

import (
	"context"
	"database/sql"

	"github.com/yuwenwww/membervault/internal/dbx"
	"github.com/yuwenwww/membervault/internal/server/repositories/keys"
	"github.com/yuwenwww/membervault/internal/server/repositories/members"
)

// RepositoryManager hands out repositories bound to a DBTX, so services can
// run the same repository code against the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Keys(db dbx.DBTX) keys.Repository
	Members(db dbx.DBTX) members.Repository
}
