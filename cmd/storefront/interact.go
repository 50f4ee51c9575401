// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/storefront/pkg/types"
)

var interactCmd = &cobra.Command{
	Use:   "interact <tap|cart> <item-id>",
	Short: "Report a product interaction to the backend",
	Long: `Interact sends one interaction event (tap = product opened, cart = added to
cart) to the backend telemetry endpoint. Delivery is best effort: a failed send
is logged and never changes the exit status.`,
	Args: cobra.ExactArgs(2),
	RunE: runInteract,
}

func init() {
	interactCmd.Flags().String("user", "", "user id (default: gateway.user_id from config)")
	rootCmd.AddCommand(interactCmd)
}

func runInteract(cmd *cobra.Command, args []string) error {
	kind, err := types.ParseInteractionKind(args[0])
	if err != nil {
		return err
	}

	a, err := appFromViper()
	if err != nil {
		return err
	}
	defer a.Close()

	user, _ := cmd.Flags().GetString("user")
	if user == "" {
		user = a.gateway.UserID()
	}

	ev := a.reporter.Report(user, args[1], kind)
	fmt.Printf("Reported %s on %s for %s (event %s)\n", ev.Kind, ev.ItemID, ev.UserID, ev.ID)
	return nil
}
