package shares

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/foldershare/internal/common"
	"github.com/dmitrijs2005/foldershare/internal/dbx"
	"github.com/dmitrijs2005/foldershare/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, share *models.Share) error {

	query :=
		`INSERT INTO folders (id, hmac, name, expiration)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query, share.ID, share.HMAC, share.Name, share.ExpiresAt).Scan(&share.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Share, error) {
	query :=
		`SELECT id, hmac, name, expiration, created_at FROM folders
		 WHERE id = $1
		 LIMIT 1
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) FindActiveByHMAC(ctx context.Context, hmac string, now time.Time) (*models.Share, error) {
	query :=
		`SELECT id, hmac, name, expiration, created_at FROM folders
		 WHERE hmac = $1 AND expiration > $2
		 ORDER BY expiration DESC
		 LIMIT 1
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, hmac, now))
}

func (r *PostgresRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]string, error) {
	query :=
		`SELECT id FROM folders
		 WHERE expiration <= $1
		 ORDER BY expiration
		 LIMIT $2
		 `

	rows, err := r.db.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select expired folders: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM folders WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete folder: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	var one int
	if err := r.db.QueryRowContext(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	return nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Share, error) {
	share := &models.Share{}
	err := row.Scan(&share.ID, &share.HMAC, &share.Name, &share.ExpiresAt, &share.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return share, nil
}
