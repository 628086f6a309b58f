package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/foldershare/internal/dbx"
	"github.com/dmitrijs2005/foldershare/internal/server/repositories/shares"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Shares(db dbx.DBTX) shares.Repository
}
