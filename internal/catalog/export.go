// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/storefront/pkg/types"
)

// SeedFile is the document layout for catalog seed and export files.
type SeedFile struct {
	Products []types.Product `yaml:"products"`
}

// LoadYAML upserts every product listed in the seed file at path and
// returns how many were loaded.
func (s *Store) LoadYAML(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading seed file: %w", err)
	}
	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return 0, fmt.Errorf("parsing seed file %s: %w", path, err)
	}
	if err := s.Upsert(ctx, seed.Products); err != nil {
		return 0, err
	}
	return len(seed.Products), nil
}

// Seed upserts the built-in sample products.
func (s *Store) Seed(ctx context.Context) (int, error) {
	products := Fixture()
	if err := s.Upsert(ctx, products); err != nil {
		return 0, err
	}
	return len(products), nil
}

// ExportYAML writes the full catalog to path in seed file layout.
func (s *Store) ExportYAML(ctx context.Context, path string) (int, error) {
	products, err := s.All(ctx)
	if err != nil {
		return 0, err
	}
	data, err := yaml.Marshal(SeedFile{Products: products})
	if err != nil {
		return 0, fmt.Errorf("marshaling YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, fmt.Errorf("writing %s: %w", path, err)
	}
	return len(products), nil
}
