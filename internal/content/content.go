// Package content holds the static table data shipped with tableroll.
//
// Tables are YAML bundles under tables/, one per game system, embedded in the
// binary and validated into a table.Catalog at startup. A catalog can also be
// read back from a sqlite file written by cmd/catalog-importer.
package content

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/louisbranch/tableroll/internal/core/table"
)

//go:embed tables/*.yaml
var embeddedTables embed.FS

// Bundle is the set of tables one game system ships.
type Bundle struct {
	System string        `yaml:"system"`
	Tables []table.Table `yaml:"tables"`
}

// FS returns the embedded table files.
func FS() fs.FS {
	return embeddedTables
}

// LoadBundles decodes every tables/*.yaml file in fsys, sorted by path.
func LoadBundles(fsys fs.FS) ([]Bundle, error) {
	paths, err := fs.Glob(fsys, "tables/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob table bundles: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no table bundles found")
	}
	sort.Strings(paths)

	bundles := make([]Bundle, 0, len(paths))
	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("read table bundle %s: %w", path, err)
		}
		bundle, err := DecodeBundle(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("parse table bundle %s: %w", path, err)
		}
		bundles = append(bundles, bundle)
	}
	return bundles, nil
}

// DecodeBundle reads one YAML bundle. Unknown fields are rejected.
func DecodeBundle(r io.Reader) (Bundle, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var bundle Bundle
	if err := decoder.Decode(&bundle); err != nil {
		if errors.Is(err, io.EOF) {
			return Bundle{}, fmt.Errorf("empty bundle")
		}
		return Bundle{}, err
	}
	if strings.TrimSpace(bundle.System) == "" {
		return Bundle{}, fmt.Errorf("system is required")
	}
	if len(bundle.Tables) == 0 {
		return Bundle{}, fmt.Errorf("bundle %s has no tables", bundle.System)
	}
	return bundle, nil
}

// NewCatalog validates the tables of every bundle as one catalog.
func NewCatalog(bundles ...Bundle) (*table.Catalog, error) {
	var tables []table.Table
	for _, bundle := range bundles {
		tables = append(tables, bundle.Tables...)
	}
	catalog, err := table.NewCatalog(tables...)
	if err != nil {
		return nil, fmt.Errorf("validate tables: %w", err)
	}
	return catalog, nil
}

// Load returns the catalog of embedded tables.
func Load() (*table.Catalog, error) {
	bundles, err := LoadBundles(embeddedTables)
	if err != nil {
		return nil, err
	}
	return NewCatalog(bundles...)
}

// MustLoad is Load for tests and package-level fixtures.
func MustLoad() *table.Catalog {
	catalog, err := Load()
	if err != nil {
		panic(err)
	}
	return catalog
}
