// Package tables imports table bundles into a sqlite catalog the game server
// can serve instead of its embedded tables.
package tables

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/louisbranch/tableroll/internal/content"
	catalogsqlite "github.com/louisbranch/tableroll/internal/content/storage/sqlite"
)

// Config holds importer configuration.
type Config struct {
	// Dir holds a tables/ directory of YAML bundles. Empty imports the
	// embedded bundles.
	Dir    string
	DBPath string
	DryRun bool
}

// ParseConfig parses CLI flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{
		DBPath: filepath.Join("data", "tables.db"),
	}

	fs.StringVar(&cfg.Dir, "dir", "", "directory containing tables/*.yaml (default: embedded tables)")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "catalog database path")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "validate without writing to the database")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if !cfg.DryRun && strings.TrimSpace(cfg.DBPath) == "" {
		return Config{}, errors.New("db-path is required")
	}
	return cfg, nil
}

// Run validates every bundle as one catalog and, unless DryRun is set,
// replaces each system's tables in the database.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if out == nil {
		out = io.Discard
	}

	bundles, err := content.LoadBundles(sourceFS(cfg.Dir))
	if err != nil {
		return err
	}
	catalog, err := content.NewCatalog(bundles...)
	if err != nil {
		return err
	}

	if cfg.DryRun {
		for _, bundle := range bundles {
			fmt.Fprintf(out, "validated %s: %d tables\n", bundle.System, len(bundle.Tables))
		}
		fmt.Fprintf(out, "dry run: %d tables valid, nothing written\n", catalog.Len())
		return nil
	}

	dbPath := strings.TrimSpace(cfg.DBPath)
	if dbPath == "" {
		return errors.New("db-path is required")
	}
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create catalog directory: %w", err)
		}
	}
	store, err := catalogsqlite.Open(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("open catalog store: %w", err)
	}
	defer store.Close()

	for _, bundle := range bundles {
		if err := store.ReplaceBundle(ctx, bundle); err != nil {
			return fmt.Errorf("import %s: %w", bundle.System, err)
		}
		fmt.Fprintf(out, "imported %s: %d tables\n", bundle.System, len(bundle.Tables))
	}
	fmt.Fprintf(out, "catalog %s holds %d tables\n", dbPath, catalog.Len())
	return nil
}

func sourceFS(dir string) fs.FS {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return content.FS()
	}
	return os.DirFS(dir)
}
