package repo

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Chative-core-poc-v1/orderbot/internal/agent/model"
)

// menuFile is the YAML layout of a file-backed catalog.
type menuFile struct {
	Items []model.CatalogRecord `yaml:"items"`
}

// FileCatalogStore reads the catalog from a YAML file on every load, so
// edits show up at the next cache refresh.
type FileCatalogStore struct {
	path string
}

var _ model.CatalogStore = (*FileCatalogStore)(nil)

func NewFileCatalogStore(path string) *FileCatalogStore {
	return &FileCatalogStore{path: path}
}

func (f *FileCatalogStore) LoadCatalog(ctx context.Context) ([]model.CatalogRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read menu file: %w", err)
	}
	var doc menuFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode menu file %s: %w", f.path, err)
	}
	return doc.Items, nil
}
