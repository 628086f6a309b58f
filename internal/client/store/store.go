// Package store keeps folders imported from shares in a local SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/foldershare/internal/client/migrations"
	"github.com/dmitrijs2005/foldershare/internal/dbx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// maxNameAttempts bounds the " (n)" suffix search.
const maxNameAttempts = 1000

// Folder is an imported folder as listed locally.
type Folder struct {
	Name       string
	ShareID    string
	ImportedAt time.Time
	WorldCount int
}

type Store struct {
	db  *sql.DB
	now func() time.Time
}

var openDB = sql.Open

// runMigrations is a seam for tests.
var runMigrations = func(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if needed) the database at path and migrates it.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one writer; avoids SQLITE_BUSY between pooled connections
	db.SetMaxOpenConns(1)

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveImportedFolder stores the worlds under name, or under "name (2)",
// "name (3)" and so on if name is taken. It returns the name used.
func (s *Store) SaveImportedFolder(ctx context.Context, shareID, name string, worlds []json.RawMessage) (string, error) {
	var saved string

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		free, err := freeName(ctx, tx, name)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO folders (name, share_id, imported_at) VALUES (?, ?, ?)`,
			free, shareID, s.now().UTC().Unix()); err != nil {
			return fmt.Errorf("insert folder: %w", err)
		}

		for i, w := range worlds {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO worlds (folder_name, position, world_id, data) VALUES (?, ?, ?, ?)`,
				free, i, worldID(w), []byte(w)); err != nil {
				return fmt.Errorf("insert world %d: %w", i, err)
			}
		}

		saved = free
		return nil
	})
	if err != nil {
		return "", err
	}
	return saved, nil
}

func freeName(ctx context.Context, tx dbx.DBTX, name string) (string, error) {
	candidate := name
	for n := 2; n <= maxNameAttempts+1; n++ {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM folders WHERE name = ?`, candidate).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("check folder name: %w", err)
		}
		candidate = fmt.Sprintf("%s (%d)", name, n)
	}
	return "", fmt.Errorf("no free folder name for %q", name)
}

func worldID(raw json.RawMessage) string {
	var v struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(raw, &v)
	return v.ID
}

// ListFolders returns imported folders, most recent first.
func (s *Store) ListFolders(ctx context.Context) ([]Folder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.name, f.share_id, f.imported_at, COUNT(w.position)
		FROM folders f
		LEFT JOIN worlds w ON w.folder_name = f.name
		GROUP BY f.name, f.share_id, f.imported_at
		ORDER BY f.imported_at DESC, f.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	defer rows.Close()

	var out []Folder
	for rows.Next() {
		var f Folder
		var ts int64
		if err := rows.Scan(&f.Name, &f.ShareID, &ts, &f.WorldCount); err != nil {
			return nil, fmt.Errorf("failed to scan folder row: %w", err)
		}
		f.ImportedAt = time.Unix(ts, 0).UTC()
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate folder rows: %w", err)
	}
	return out, nil
}

// FolderWorlds returns the worlds of a folder in their original order.
func (s *Store) FolderWorlds(ctx context.Context, name string) ([]json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM worlds WHERE folder_name = ? ORDER BY position`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to list worlds: %w", err)
	}
	defer rows.Close()

	out := []json.RawMessage{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan world row: %w", err)
		}
		out = append(out, json.RawMessage(data))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate world rows: %w", err)
	}
	return out, nil
}
