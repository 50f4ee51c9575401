// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/storefront/internal/controller"
	"github.com/pdiddy/storefront/internal/projector"
	"github.com/pdiddy/storefront/pkg/types"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "List the full product catalog from the backend",
	Long: `Browse fetches the full catalog (a search with an empty query). The result
is cached for the catalog TTL (5 minutes by default).`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Live product search",
	Long: `Search sends the query to the backend search endpoint, exactly as a
keystroke in the search box would. With --local the local catalog is searched
instead (case-insensitive match on name, category and tags).`,
	RunE: runSearch,
}

var recommendCmd = &cobra.Command{
	Use:   "recommend <query>",
	Short: "Personalized recommendations for a submitted query",
	Long: `Recommend submits the query and prints the ranked recommendations in the
order the backend returned them. Items missing from the catalog are shown with
placeholder details derived from their score.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRecommend,
}

func init() {
	searchCmd.Flags().Bool("local", false, "search the local catalog instead of the backend")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	browseCmd.Flags().Bool("json", false, "output results as JSON")
	recommendCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(recommendCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	a, err := appFromViper()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	entry, err := a.cache.Get(ctx, types.ModeSearch, types.NewQuery(""))
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return writeProducts(os.Stdout, a.projector.Project(ctx, types.ModeSearch, entry.Payload), jsonOutput)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	local, _ := cmd.Flags().GetBool("local")

	if !local && strings.TrimSpace(query) == "" {
		return runBrowse(cmd, nil)
	}

	a, err := appFromViper()
	if err != nil {
		return err
	}
	defer a.Close()

	if local {
		if a.catalog == nil {
			return fmt.Errorf("local catalog unavailable: run 'storefront catalog seed' first")
		}
		products, err := a.catalog.Search(cmd.Context(), query)
		if err != nil {
			return err
		}
		return writeProducts(os.Stdout, projector.ProjectProducts(products), jsonOutput)
	}

	ctl := a.newController("")
	return settleAndPrint(cmd.Context(), ctl, ctl.Keystroke(cmd.Context(), query), jsonOutput)
}

func runRecommend(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	a, err := appFromViper()
	if err != nil {
		return err
	}
	defer a.Close()

	ctl := a.newController("")
	return settleAndPrint(cmd.Context(), ctl, ctl.Submit(cmd.Context(), strings.Join(args, " ")), jsonOutput)
}

// settleAndPrint waits for a one-shot fetch and prints the resulting view.
func settleAndPrint(ctx context.Context, ctl *controller.Controller, p *controller.Pending, jsonOutput bool) error {
	if _, err := p.Wait(ctx); err != nil {
		return err
	}
	v := ctl.View()
	if v.Err != nil {
		return v.Err
	}
	return writeProducts(os.Stdout, v.Products, jsonOutput)
}
