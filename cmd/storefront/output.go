// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/storefront/internal/controller"
	"github.com/pdiddy/storefront/pkg/types"
)

// truncate shortens s to at most n runes, ending in "..." when cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n-3]) + "..."
	}
	return s
}

// writeProducts prints products as a table, or as indented JSON.
func writeProducts(w io.Writer, products []types.DisplayProduct, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(products)
	}

	if len(products) == 0 {
		fmt.Fprintln(w, "No products found.")
		return nil
	}

	fmt.Fprintf(w, "%-4s  %-10s  %-32s  %-12s  %10s  %s\n",
		"Rank", "ID", "Name", "Category", "Price", "Tags")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for i, p := range products {
		fmt.Fprintf(w, "%-4d  %-10s  %-32s  %-12s  %10.2f  %s\n",
			i+1,
			truncate(p.ID, 10),
			truncate(p.Name, 32),
			truncate(p.Category, 12),
			p.Price,
			truncate(strings.Join(p.Tags, ", "), 30))
	}

	fmt.Fprintf(w, "\n%d products\n", len(products))
	return nil
}

// writeView prints the controller state followed by its products.
func writeView(w io.Writer, v controller.View) {
	header := fmt.Sprintf("[%s] query=%q", v.Mode, v.Query)
	if v.Mode == types.ModeRecommendation {
		header = fmt.Sprintf("[%s] for %q", v.Mode, v.SubmittedQuery)
	}
	fmt.Fprintln(w, header)

	switch {
	case v.Loading:
		fmt.Fprintln(w, "Loading...")
	case v.Err != nil && v.Retryable:
		fmt.Fprintf(w, "Error: %v (type :retry to try again)\n", v.Err)
	case v.Err != nil:
		fmt.Fprintf(w, "Error: %v\n", v.Err)
	default:
		writeProducts(w, v.Products, false)
	}
}
