package dice

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/louisbranch/tableroll/internal/content"
	catalogsqlite "github.com/louisbranch/tableroll/internal/content/storage/sqlite"
	"github.com/louisbranch/tableroll/internal/core/table"
	"github.com/louisbranch/tableroll/internal/systems/builtin"
)

// LoadTables returns the embedded tables, or the tables stored in the SQLite
// catalog at catalogPath when it is set.
func LoadTables(ctx context.Context, catalogPath string) (*table.Catalog, error) {
	catalogPath = strings.TrimSpace(catalogPath)
	if catalogPath == "" {
		tables, err := content.Load()
		if err != nil {
			return nil, fmt.Errorf("load embedded tables: %w", err)
		}
		return tables, nil
	}

	store, err := catalogsqlite.Open(ctx, catalogPath)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", catalogPath, err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("close catalog %s: %v", catalogPath, err)
		}
	}()
	tables, err := store.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", catalogPath, err)
	}
	return tables, nil
}

// Open builds a Service over the built-in game systems and the tables chosen
// by LoadTables.
func Open(ctx context.Context, catalogPath string, opts ...Option) (*Service, error) {
	tables, err := LoadTables(ctx, catalogPath)
	if err != nil {
		return nil, err
	}
	registry, err := builtin.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("register game systems: %w", err)
	}
	service, err := NewService(registry, tables, opts...)
	if err != nil {
		return nil, err
	}
	log.Printf("dice service ready systems=%d tables=%d", len(registry.List()), tables.Len())
	return service, nil
}
