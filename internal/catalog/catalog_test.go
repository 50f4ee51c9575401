// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/storefront/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(types.CatalogConfig{DataDir: filepath.Join(t.TempDir(), "data")})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seededStore(t *testing.T) *Store {
	t.Helper()
	store := testStore(t)
	n, err := store.Seed(context.Background())
	require.NoError(t, err)
	require.Equal(t, 5, n)
	return store
}

func ids(products []types.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestNewStoreCreatesDBFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	store, err := NewStore(types.CatalogConfig{DataDir: dir})
	require.NoError(t, err)
	defer store.Close()

	_, err = os.Stat(filepath.Join(dir, dbFile))
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, dbFile), store.Path())
}

func TestNewStoreReopens(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(types.CatalogConfig{DataDir: dir})
	require.NoError(t, err)
	_, err = store.Seed(context.Background())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = NewStore(types.CatalogConfig{DataDir: dir})
	require.NoError(t, err)
	defer store.Close()
	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestFindByID(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	p, err := store.FindByID(ctx, "item2")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Smart Fitness Watch", p.Name)
	assert.Equal(t, "Wearables", p.Category)
	assert.InDelta(t, 199.95, p.Price, 1e-9)
	assert.Equal(t, []string{"fitness", "smartwatch", "health"}, p.Tags)
	assert.NotNil(t, p.ImageURLs)

	p, err = store.FindByID(ctx, "item99")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestSearch(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		term string
		want []string
	}{
		{"empty returns all", "", []string{"item0", "item1", "item2", "item3", "item4"}},
		{"by tag", "gaming", []string{"item0", "item4"}},
		{"by category ignoring case", "  WEARABLES ", []string{"item2"}},
		{"by name", "chair", []string{"item3"}},
		{"no match", "zzz", []string{}},
		{"wildcards are literal", "100%", []string{}},
		{"underscore is literal", "item_", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Search(ctx, tt.term)
			require.NoError(t, err)
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestUpsertReplaces(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	err := store.Upsert(ctx, []types.Product{{ID: "item2", Name: "Fitness Watch v2", Price: 179, Category: "Wearables"}})
	require.NoError(t, err)

	p, err := store.FindByID(ctx, "item2")
	require.NoError(t, err)
	assert.Equal(t, "Fitness Watch v2", p.Name)
	assert.Empty(t, p.Tags)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestUpsertRejectsMissingID(t *testing.T) {
	store := testStore(t)
	err := store.Upsert(context.Background(), []types.Product{
		{ID: "a", Name: "ok"},
		{Name: "no id"},
	})
	require.Error(t, err)

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "failed batch must not be partially applied")
}

func TestLoadYAML(t *testing.T) {
	store := testStore(t)
	path := filepath.Join(t.TempDir(), "seed.yaml")
	doc := `products:
  - id: sku-1
    name: Trail Running Shoe
    price: 89.5
    category: Apparel
    tags: [running, outdoor]
    image_urls:
      - https://img.example/shoe.png
  - id: sku-2
    name: Water Bottle
    price: 12
    category: Outdoor
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	n, err := store.LoadYAML(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	p, err := store.FindByID(context.Background(), "sku-1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, []string{"https://img.example/shoe.png"}, p.ImageURLs)

	got, err := store.Search(context.Background(), "outdoor")
	require.NoError(t, err)
	assert.Equal(t, []string{"sku-1", "sku-2"}, ids(got))
}

func TestLoadYAMLErrors(t *testing.T) {
	store := testStore(t)

	_, err := store.LoadYAML(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("products: [unclosed"), 0o644))
	_, err = store.LoadYAML(context.Background(), bad)
	assert.Error(t, err)
}

func TestExportYAMLRoundTrip(t *testing.T) {
	store := seededStore(t)
	path := filepath.Join(t.TempDir(), "export.yaml")

	n, err := store.ExportYAML(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var seed SeedFile
	require.NoError(t, yaml.Unmarshal(data, &seed))
	require.Len(t, seed.Products, 5)
	for i, want := range Fixture() {
		assert.Equal(t, want.ID, seed.Products[i].ID)
		assert.Equal(t, want.Name, seed.Products[i].Name)
		assert.InDelta(t, want.Price, seed.Products[i].Price, 1e-9)
		assert.Equal(t, want.Tags, seed.Products[i].Tags)
	}

	other := testStore(t)
	n, err = other.LoadYAML(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}
