// Package sqlite stores validated table bundles in SQLite so a deployment can
// ship table data separately from the binary.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/louisbranch/tableroll/internal/content"
	"github.com/louisbranch/tableroll/internal/content/storage/sqlite/migrations"
	"github.com/louisbranch/tableroll/internal/core/dice"
	"github.com/louisbranch/tableroll/internal/core/table"
	sqlitemigrate "github.com/louisbranch/tableroll/internal/platform/storage/sqlitemigrate"
)

// Store persists table bundles in SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens a SQLite catalog store and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(ctx, sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// ReplaceBundle swaps every table of bundle.System for the bundle's tables in
// one transaction.
func (s *Store) ReplaceBundle(ctx context.Context, bundle content.Bundle) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	system := strings.TrimSpace(bundle.System)
	if system == "" {
		return fmt.Errorf("system is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace %s: %w", system, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM table_rows WHERE table_id IN (SELECT id FROM table_defs WHERE system = ?)`, system,
	); err != nil {
		return fmt.Errorf("clear rows for %s: %w", system, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM table_defs WHERE system = ?`, system); err != nil {
		return fmt.Errorf("clear tables for %s: %w", system, err)
	}

	importedAt := s.now().UTC().UnixMilli()
	for position, t := range bundle.Tables {
		if err := insertTable(ctx, tx, system, position, t, importedAt); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace %s: %w", system, err)
	}
	return nil
}

func insertTable(ctx context.Context, tx *sql.Tx, system string, position int, t table.Table, importedAt int64) error {
	markers, err := json.Marshal(t.Markers)
	if err != nil {
		return fmt.Errorf("encode markers for %s: %w", t.ID, err)
	}
	bands, err := json.Marshal(t.Bands)
	if err != nil {
		return fmt.Errorf("encode bands for %s: %w", t.ID, err)
	}
	sortText, err := t.Sort.MarshalText()
	if err != nil {
		return fmt.Errorf("encode sort for %s: %w", t.ID, err)
	}
	independent := 0
	if t.Independent {
		independent = 1
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO table_defs (
		   id, system, position, name, space, sort, lookup, layout, arithmetic,
		   independent, markers_json, bands_json, imported_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, system, position, t.Name, string(t.Space), string(sortText), string(t.Lookup),
		t.Layout, t.Arithmetic, independent, string(markers), string(bands), importedAt,
	); err != nil {
		return fmt.Errorf("insert table %s: %w", t.ID, err)
	}

	for i, row := range t.Rows {
		cells, err := json.Marshal(row.Cells)
		if err != nil {
			return fmt.Errorf("encode row %d of %s: %w", i, t.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO table_rows (table_id, position, key, cells_json) VALUES (?, ?, ?, ?)`,
			t.ID, i, row.Key, string(cells),
		); err != nil {
			return fmt.Errorf("insert row %d of %s: %w", i, t.ID, err)
		}
	}
	return nil
}

// Bundles reads every stored bundle, grouped by system in import order.
func (s *Store) Bundles(ctx context.Context) ([]content.Bundle, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, system, name, space, sort, lookup, layout, arithmetic, independent, markers_json, bands_json
		   FROM table_defs
		  ORDER BY system, position`,
	)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var bundles []content.Bundle
	for rows.Next() {
		var (
			t           table.Table
			system      string
			space       string
			sortText    string
			lookup      string
			independent int
			markersJSON string
			bandsJSON   string
		)
		if err := rows.Scan(&t.ID, &system, &t.Name, &space, &sortText, &lookup, &t.Layout, &t.Arithmetic,
			&independent, &markersJSON, &bandsJSON); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		t.Space = table.Space(space)
		t.Lookup = table.Lookup(lookup)
		t.Independent = independent == 1
		var policy dice.SortPolicy
		if err := policy.UnmarshalText([]byte(sortText)); err != nil {
			return nil, fmt.Errorf("decode sort for %s: %w", t.ID, err)
		}
		t.Sort = policy
		if err := json.Unmarshal([]byte(markersJSON), &t.Markers); err != nil {
			return nil, fmt.Errorf("decode markers for %s: %w", t.ID, err)
		}
		if err := json.Unmarshal([]byte(bandsJSON), &t.Bands); err != nil {
			return nil, fmt.Errorf("decode bands for %s: %w", t.ID, err)
		}

		if len(bundles) == 0 || bundles[len(bundles)-1].System != system {
			bundles = append(bundles, content.Bundle{System: system})
		}
		last := &bundles[len(bundles)-1]
		last.Tables = append(last.Tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	rows.Close()

	for b := range bundles {
		for i := range bundles[b].Tables {
			if err := s.loadRows(ctx, &bundles[b].Tables[i]); err != nil {
				return nil, err
			}
		}
	}
	return bundles, nil
}

func (s *Store) loadRows(ctx context.Context, t *table.Table) error {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT key, cells_json FROM table_rows WHERE table_id = ? ORDER BY position`, t.ID)
	if err != nil {
		return fmt.Errorf("list rows of %s: %w", t.ID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			row       table.Row
			cellsJSON string
		)
		if err := rows.Scan(&row.Key, &cellsJSON); err != nil {
			return fmt.Errorf("scan row of %s: %w", t.ID, err)
		}
		if err := json.Unmarshal([]byte(cellsJSON), &row.Cells); err != nil {
			return fmt.Errorf("decode row of %s: %w", t.ID, err)
		}
		t.Rows = append(t.Rows, row)
	}
	return rows.Err()
}

// Catalog loads and validates every stored table.
func (s *Store) Catalog(ctx context.Context) (*table.Catalog, error) {
	bundles, err := s.Bundles(ctx)
	if err != nil {
		return nil, err
	}
	if len(bundles) == 0 {
		return nil, fmt.Errorf("catalog store is empty")
	}
	return content.NewCatalog(bundles...)
}
