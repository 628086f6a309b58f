package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/foldershare/internal/client/config"
	"github.com/dmitrijs2005/foldershare/internal/client/share"
	"github.com/dmitrijs2005/foldershare/internal/integrity"
	"github.com/dmitrijs2005/foldershare/internal/logging"
	"github.com/dmitrijs2005/foldershare/internal/server/blobstore"
	"github.com/dmitrijs2005/foldershare/internal/server/httpapi"
	"github.com/dmitrijs2005/foldershare/internal/server/repositories/shares"
	"github.com/dmitrijs2005/foldershare/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const worldsJSON = `[
  {"id":"wrld_1","name":"One","capacity":8,"favorites":1},
  {"id":"wrld_2","name":"Two","capacity":4,"favorites":0,"tags":["a"]}
]`

func newTestApp(t *testing.T, input string) (*App, *bytes.Buffer) {
	t.Helper()

	signer, err := integrity.NewSigner([]byte("secret"))
	require.NoError(t, err)

	svc := services.NewShareService(shares.NewMemoryRepository(), blobstore.NewMemoryStore(), signer, logging.Nop())
	srv := httptest.NewServer(httpapi.NewRouter(httpapi.NewHandler(svc, nil, 0, logging.Nop()), logging.Nop()))
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.ServerURL = srv.URL
	cfg.DataDir = filepath.Join(t.TempDir(), "data")

	out := &bytes.Buffer{}
	return &App{
		config: cfg,
		client: share.NewClient(srv.URL, signer, 5*time.Second),
		reader: rdr(input),
		out:    out,
	}, out
}

func writeWorlds(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "worlds.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestShareFetchImportList(t *testing.T) {
	app, out := newTestApp(t, "")
	ctx := context.Background()
	path := writeWorlds(t, worldsJSON)

	require.NoError(t, app.Run(ctx, []string{"share", "Fav", path}))
	id := strings.TrimSpace(out.String())
	require.NotEmpty(t, id)

	out.Reset()
	require.NoError(t, app.Run(ctx, []string{"fetch", id}))
	var f integrity.Folder
	require.NoError(t, json.Unmarshal(out.Bytes(), &f))
	assert.Equal(t, "Fav", f.Name)
	assert.Len(t, f.Worlds, 2)

	out.Reset()
	require.NoError(t, app.Run(ctx, []string{"import", id}))
	assert.Contains(t, out.String(), `Imported 2 worlds into "Fav"`)

	out.Reset()
	require.NoError(t, app.Run(ctx, []string{"import", id}))
	assert.Contains(t, out.String(), `"Fav (2)"`)

	out.Reset()
	require.NoError(t, app.Run(ctx, []string{"list"}))
	assert.Contains(t, out.String(), "NAME")
	assert.Contains(t, out.String(), "Fav (2)")
	assert.Contains(t, out.String(), id)
}

func TestShare_PromptsForName(t *testing.T) {
	app, out := newTestApp(t, "Prompted\n")
	path := writeWorlds(t, `[]`)

	require.NoError(t, app.Run(context.Background(), []string{"share", path}))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	id := strings.TrimSpace(strings.TrimPrefix(lines[len(lines)-1], "> "))

	out.Reset()
	require.NoError(t, app.Run(context.Background(), []string{"fetch", id}))
	assert.Contains(t, out.String(), `"Prompted"`)
}

func TestShare_InvalidWorldsFile(t *testing.T) {
	app, _ := newTestApp(t, "")

	err := app.Run(context.Background(), []string{"share", "x", writeWorlds(t, `{"not":"array"}`)})
	require.Error(t, err)

	err = app.Run(context.Background(), []string{"share", "x", writeWorlds(t, `[{"id":"bad","name":"n","capacity":1,"favorites":1}]`)})
	require.Error(t, err)

	err = app.Run(context.Background(), []string{"share", "x", filepath.Join(t.TempDir(), "missing.json")})
	require.Error(t, err)
}

func TestFetch_Unknown(t *testing.T) {
	app, _ := newTestApp(t, "")

	err := app.Run(context.Background(), []string{"fetch", "nope"})
	require.ErrorIs(t, err, share.ErrNotFound)

	err = app.Run(context.Background(), []string{"import", "nope"})
	require.ErrorIs(t, err, share.ErrNotFound)
}

func TestList_Empty(t *testing.T) {
	app, out := newTestApp(t, "")

	require.NoError(t, app.Run(context.Background(), []string{"list"}))
	assert.Equal(t, "No imported folders\n", out.String())
}

func TestRun_Usage(t *testing.T) {
	app, out := newTestApp(t, "")
	ctx := context.Background()

	require.ErrorIs(t, app.Run(ctx, nil), ErrUsage)
	require.ErrorIs(t, app.Run(ctx, []string{"bogus"}), ErrUsage)
	require.ErrorIs(t, app.Run(ctx, []string{"fetch"}), ErrUsage)
	require.ErrorIs(t, app.Run(ctx, []string{"import", "a", "b"}), ErrUsage)
	require.ErrorIs(t, app.Run(ctx, []string{"share"}), ErrUsage)
	require.NoError(t, app.Run(ctx, []string{"help"}))
	assert.Contains(t, out.String(), "Unknown command: bogus")
}

func TestNewApp_PromptsForSecret(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()

	called := false
	readPassword = func(int) ([]byte, error) {
		called = true
		return []byte("typed"), nil
	}

	cfg := &config.Config{}
	cfg.LoadDefaults()

	var out bytes.Buffer
	app, err := NewApp(cfg, &out)
	require.NoError(t, err)
	require.NotNil(t, app)
	assert.True(t, called)
	assert.Contains(t, out.String(), "HMAC secret")
}

func TestNewApp_SecretFromConfig(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()
	readPassword = func(int) ([]byte, error) { return nil, errors.New("should not prompt") }

	cfg := &config.Config{HMACSecret: "x"}
	_, err := NewApp(cfg, &bytes.Buffer{})
	require.NoError(t, err)
}

func TestNewApp_EmptyPromptedSecret(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()
	readPassword = func(int) ([]byte, error) { return []byte{}, nil }

	_, err := NewApp(&config.Config{}, &bytes.Buffer{})
	require.ErrorIs(t, err, integrity.ErrEmptySecret)
}
