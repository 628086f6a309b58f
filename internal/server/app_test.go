package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/foldershare/internal/dbx"
	"github.com/dmitrijs2005/foldershare/internal/integrity"
	"github.com/dmitrijs2005/foldershare/internal/logging"
	"github.com/dmitrijs2005/foldershare/internal/server/blobstore"
	"github.com/dmitrijs2005/foldershare/internal/server/config"
	"github.com/dmitrijs2005/foldershare/internal/server/ratelimit"
	"github.com/dmitrijs2005/foldershare/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/foldershare/internal/server/repositories/shares"
	"github.com/dmitrijs2005/foldershare/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.HMACSecret = "app-secret"
	c.MetadataBackend = config.BackendMemory
	c.BlobBackend = config.BackendMemory
	c.HTTPAddr = "127.0.0.1:0"
	c.AdminAddr = "127.0.0.1:0"
	c.ShutdownTimeout = time.Second
	return c
}

func TestNewApp_MemoryBackends(t *testing.T) {
	app, err := NewApp(context.Background(), memoryConfig(), logging.Nop())
	require.NoError(t, err)
	defer app.Close()

	assert.Nil(t, app.db)
	assert.IsType(t, &shares.MemoryRepository{}, app.repo)
	assert.IsType(t, &blobstore.MemoryStore{}, app.blobs)
	assert.IsType(t, ratelimit.Noop{}, app.limiter)

	signer, err := integrity.NewSigner([]byte("app-secret"))
	require.NoError(t, err)
	_, code, err := signer.SignFolder(integrity.Folder{Name: "n", Worlds: []json.RawMessage{}})
	require.NoError(t, err)

	id, err := app.Shares().Publish(context.Background(), &services.PublishRequest{Name: "n", Worlds: []json.RawMessage{}, HMAC: code})
	require.NoError(t, err)
	body, err := app.Shares().Fetch(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"n","worlds":[]}`, string(body))
}

func TestNewApp_EmptySecret(t *testing.T) {
	c := memoryConfig()
	c.HMACSecret = ""
	_, err := NewApp(context.Background(), c, logging.Nop())
	require.ErrorIs(t, err, integrity.ErrEmptySecret)
}

type fakeManager struct {
	migrated bool
	err      error
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error {
	m.migrated = true
	return m.err
}

func (m *fakeManager) Shares(db dbx.DBTX) shares.Repository {
	return shares.NewPostgresRepository(db)
}

func TestNewApp_PostgresAndS3(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing()
	mock.ExpectClose()

	mgr := &fakeManager{}
	origOpen, origMgr, origS3 := openDB, newRepoManager, newS3Store
	t.Cleanup(func() { openDB, newRepoManager, newS3Store = origOpen, origMgr, origS3 })

	openDB = func(driver, dsn string) (*sql.DB, error) {
		assert.Equal(t, "pgx", driver)
		assert.Equal(t, "postgres://dsn", dsn)
		return db, nil
	}
	newRepoManager = func() repomanager.RepositoryManager { return mgr }
	var gotOpts blobstore.S3Options
	newS3Store = func(_ context.Context, opts blobstore.S3Options) (blobstore.Store, error) {
		gotOpts = opts
		return blobstore.NewMemoryStore(), nil
	}

	c := memoryConfig()
	c.MetadataBackend = config.BackendPostgres
	c.BlobBackend = config.BackendS3
	c.DatabaseDSN = "postgres://dsn"
	c.S3Bucket = "bucket"

	app, err := NewApp(context.Background(), c, logging.Nop())
	require.NoError(t, err)
	assert.True(t, mgr.migrated)
	assert.IsType(t, &shares.PostgresRepository{}, app.repo)
	assert.Equal(t, "bucket", gotOpts.Bucket)
	assert.True(t, gotOpts.UsePathStyle)

	require.NoError(t, app.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewApp_MigrationFailure(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing()
	mock.ExpectClose()

	origOpen, origMgr := openDB, newRepoManager
	t.Cleanup(func() { openDB, newRepoManager = origOpen, origMgr })
	openDB = func(string, string) (*sql.DB, error) { return db, nil }
	newRepoManager = func() repomanager.RepositoryManager { return &fakeManager{err: errors.New("dirty")} }

	c := memoryConfig()
	c.MetadataBackend = config.BackendPostgres

	_, err = NewApp(context.Background(), c, logging.Nop())
	require.ErrorContains(t, err, "dirty")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewApp_S3Failure(t *testing.T) {
	origS3 := newS3Store
	t.Cleanup(func() { newS3Store = origS3 })
	newS3Store = func(context.Context, blobstore.S3Options) (blobstore.Store, error) {
		return nil, errors.New("no region")
	}

	c := memoryConfig()
	c.BlobBackend = config.BackendS3
	_, err := NewApp(context.Background(), c, logging.Nop())
	require.ErrorContains(t, err, "no region")
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), memoryConfig(), logging.Nop())
	require.NoError(t, err)
	defer app.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestApp_RunReportsListenError(t *testing.T) {
	c := memoryConfig()
	c.HTTPAddr = "256.0.0.1:bad"
	app, err := NewApp(context.Background(), c, logging.Nop())
	require.NoError(t, err)
	defer app.Close()

	require.Error(t, app.Run(context.Background()))
}
