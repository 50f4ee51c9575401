// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/storefront/internal/catalog"
	"github.com/pdiddy/storefront/internal/projector"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the local product catalog (seed, list, export)",
	Long: `Catalog manages the local SQLite product catalog. Recommended item ids are
resolved against it before falling back to the backend.`,
}

var catalogSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load products into the local catalog",
	Long: `Seed upserts products from a YAML file (--file) into the catalog. Without
--file the built-in sample products item0 through item4 are loaded.`,
	Args: cobra.NoArgs,
	RunE: runCatalogSeed,
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products in the local catalog",
	Args:  cobra.NoArgs,
	RunE:  runCatalogList,
}

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the local catalog to a YAML seed file",
	Args:  cobra.NoArgs,
	RunE:  runCatalogExport,
}

func init() {
	catalogCmd.PersistentFlags().String("data-dir", "", "directory holding catalog.db (default: catalog.data_dir from config)")

	catalogSeedCmd.Flags().String("file", "", "YAML seed file with a top-level products list")
	catalogListCmd.Flags().String("query", "", "only list products matching this term")
	catalogListCmd.Flags().Bool("json", false, "output results as JSON")
	catalogExportCmd.Flags().String("out", "catalog-export.yaml", "output file")

	catalogCmd.AddCommand(catalogSeedCmd)
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogExportCmd)

	rootCmd.AddCommand(catalogCmd)
}

func openCatalog(cmd *cobra.Command) (*catalog.Store, error) {
	cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return nil, err
	}
	if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
		cfg.Catalog.DataDir = dir
	}
	return catalog.NewStore(cfg.Catalog)
}

func runCatalogSeed(cmd *cobra.Command, args []string) error {
	store, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	file, _ := cmd.Flags().GetString("file")
	var n int
	if file != "" {
		n, err = store.LoadYAML(cmd.Context(), file)
	} else {
		n, err = store.Seed(cmd.Context())
	}
	if err != nil {
		return err
	}

	fmt.Printf("Seeded %d products into %s\n", n, store.Path())
	return nil
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	store, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	query, _ := cmd.Flags().GetString("query")
	products, err := store.Search(cmd.Context(), query)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return writeProducts(os.Stdout, projector.ProjectProducts(products), jsonOutput)
}

func runCatalogExport(cmd *cobra.Command, args []string) error {
	store, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	out, _ := cmd.Flags().GetString("out")
	n, err := store.ExportYAML(cmd.Context(), out)
	if err != nil {
		return err
	}
	fmt.Printf("Exported %d products to %s\n", n, out)
	return nil
}
