package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/foldershare/internal/client/config"
	"github.com/dmitrijs2005/foldershare/internal/client/share"
	"github.com/dmitrijs2005/foldershare/internal/client/store"
	"github.com/dmitrijs2005/foldershare/internal/common"
	"github.com/dmitrijs2005/foldershare/internal/filex"
	"github.com/dmitrijs2005/foldershare/internal/integrity"
)

const dbFileName = "folders.db"

var ErrUsage = errors.New("usage")

// ShareClient is the part of share.Client the commands use.
type ShareClient interface {
	Publish(ctx context.Context, name string, worlds []json.RawMessage) (string, error)
	Fetch(ctx context.Context, id string) (*integrity.Folder, error)
}

type App struct {
	config *config.Config
	client ShareClient
	reader *bufio.Reader
	out    io.Writer
}

// NewApp builds the client. When cfg has no HMAC secret it is read from the
// terminal.
func NewApp(cfg *config.Config, out io.Writer) (*App, error) {
	secret := []byte(cfg.HMACSecret)
	if len(secret) == 0 {
		s, err := GetSecret(out, "HMAC secret: ")
		if err != nil {
			return nil, fmt.Errorf("read secret: %w", err)
		}
		defer common.WipeByteArray(s)
		secret = s
	}

	signer, err := integrity.NewSigner(secret)
	if err != nil {
		return nil, err
	}

	return &App{
		config: cfg,
		client: share.NewClient(cfg.ServerURL, signer, cfg.RequestTimeout),
		reader: bufio.NewReader(os.Stdin),
		out:    out,
	}, nil
}

// Run executes the command named by args[0].
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.usage()
		return ErrUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "share":
		return a.share(ctx, rest)
	case "fetch":
		return a.fetch(ctx, rest)
	case "import":
		return a.importShare(ctx, rest)
	case "list":
		return a.list(ctx)
	case "help":
		a.usage()
		return nil
	default:
		fmt.Fprintln(a.out, "Unknown command:", cmd)
		a.usage()
		return ErrUsage
	}
}

func (a *App) usage() {
	fmt.Fprintln(a.out, "Usage: foldershare [flags] share <name> <worlds.json> | fetch <id> | import <id> | list")
}

func (a *App) openStore(ctx context.Context) (*store.Store, error) {
	path, err := filex.FileInDir(a.config.DataDir, dbFileName)
	if err != nil {
		return nil, err
	}
	return store.Open(ctx, path)
}
