package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dmitrijs2005/foldershare/internal/worlds"
)

func (a *App) share(ctx context.Context, args []string) error {
	var name, path string
	switch len(args) {
	case 1:
		path = args[0]
		n, err := GetSimpleText(a.reader, "Folder name", a.out)
		if err != nil {
			return err
		}
		name = n
	case 2:
		name, path = args[0], args[1]
	default:
		fmt.Fprintln(a.out, "Usage: share <name> <worlds.json>")
		return ErrUsage
	}

	list, err := readWorlds(path)
	if err != nil {
		return err
	}

	id, err := a.client.Publish(ctx, name, list)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, id)
	return nil
}

func (a *App) fetch(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: fetch <id>")
		return ErrUsage
	}

	f, err := a.client.Fetch(ctx, args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(f)
}

func (a *App) importShare(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: import <id>")
		return ErrUsage
	}
	id := args[0]

	f, err := a.client.Fetch(ctx, id)
	if err != nil {
		return err
	}

	s, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	name, err := s.SaveImportedFolder(ctx, id, f.Name, f.Worlds)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Imported %d worlds into %q\n", len(f.Worlds), name)
	return nil
}

func (a *App) list(ctx context.Context) error {
	s, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	folders, err := s.ListFolders(ctx)
	if err != nil {
		return err
	}
	if len(folders) == 0 {
		fmt.Fprintln(a.out, "No imported folders")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tWORLDS\tSHARE\tIMPORTED")
	for _, f := range folders {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", f.Name, f.WorldCount, f.ShareID, f.ImportedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

// readWorlds loads a JSON array of world records and checks them the way
// the server will.
func readWorlds(path string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("%s: expected a JSON array of worlds: %w", path, err)
	}
	if list == nil {
		list = []json.RawMessage{}
	}
	if err := worlds.ValidateAll(list); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return list, nil
}
