//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Catalog groups targets for the local product catalog.
type Catalog mg.Namespace

// Seed builds the CLI and loads the sample products into data/catalog.db.
func (Catalog) Seed() error {
	mg.Deps(Build)
	return sh.RunV("./"+binDir+"/"+binName, "catalog", "seed", "--data-dir", dataDir)
}

// Export writes the local catalog to catalog-export.yaml.
func (Catalog) Export() error {
	mg.Deps(Build)
	return sh.RunV("./"+binDir+"/"+binName, "catalog", "export", "--data-dir", dataDir, "--out", "catalog-export.yaml")
}
