// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/storefront/internal/controller"
	"github.com/pdiddy/storefront/pkg/types"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Interactive search and recommendation session",
	Long: `Session reads input events from stdin, one per line, and prints the view
after each event settles.

  <text>           the search box now contains <text> (live search)
  :submit          submit the current text for recommendations
  :submit <text>   type <text> and submit it
  :clear           empty the search box
  :open <id>       open a product (reports a tap)
  :cart <id>       add a product to the cart (reports a cart event)
  :retry           retry the last failed fetch
  :quit            end the session`,
	Args: cobra.NoArgs,
	RunE: runSessionCmd,
}

func init() {
	sessionCmd.Flags().String("initial-query", "", "start in recommendation mode for this query")
	rootCmd.AddCommand(sessionCmd)
}

func runSessionCmd(cmd *cobra.Command, args []string) error {
	initial, _ := cmd.Flags().GetString("initial-query")

	a, err := appFromViper()
	if err != nil {
		return err
	}
	defer a.Close()

	s := &session{
		ctl:    a.newController(initial),
		rep:    a.reporter,
		userID: a.gateway.UserID(),
		out:    os.Stdout,
	}
	return s.run(cmd.Context(), os.Stdin)
}

// interactionReporter is the reporter method a session needs.
type interactionReporter interface {
	Report(userID, itemID string, kind types.InteractionKind) types.InteractionEvent
}

type eventKind int

const (
	eventKeystroke eventKind = iota
	eventSubmit
	eventClear
	eventOpen
	eventCart
	eventRetry
	eventQuit
	eventInvalid
)

type sessionEvent struct {
	kind eventKind
	arg  string
	// typed is set for ":submit <text>", which types before submitting.
	typed bool
}

// parseSessionLine maps one input line to an event. Lines not starting
// with ':' are the new search box contents.
func parseSessionLine(line string) sessionEvent {
	if !strings.HasPrefix(line, ":") {
		return sessionEvent{kind: eventKeystroke, arg: line}
	}

	name, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "submit":
		return sessionEvent{kind: eventSubmit, arg: arg, typed: arg != ""}
	case "clear":
		return sessionEvent{kind: eventClear}
	case "open":
		return sessionEvent{kind: eventOpen, arg: arg}
	case "cart":
		return sessionEvent{kind: eventCart, arg: arg}
	case "retry":
		return sessionEvent{kind: eventRetry}
	case "quit", "q":
		return sessionEvent{kind: eventQuit}
	default:
		return sessionEvent{kind: eventInvalid, arg: line}
	}
}

type session struct {
	ctl    *controller.Controller
	rep    interactionReporter
	userID string
	out    io.Writer
}

// run processes events from in until :quit, end of input, or ctx is done.
func (s *session) run(ctx context.Context, in io.Reader) error {
	if p := s.ctl.Start(ctx); p.Outcome() != controller.OutcomeSkipped {
		writeView(s.out, s.ctl.View())
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		ev := parseSessionLine(scanner.Text())
		if ev.kind == eventQuit {
			return nil
		}
		s.handle(ctx, ev)
	}
	return scanner.Err()
}

func (s *session) handle(ctx context.Context, ev sessionEvent) {
	var p *controller.Pending

	switch ev.kind {
	case eventKeystroke:
		p = s.ctl.Keystroke(ctx, ev.arg)
	case eventSubmit:
		text := s.ctl.View().Query
		if ev.typed {
			text = ev.arg
		}
		p = s.ctl.Submit(ctx, text)
	case eventClear:
		p = s.ctl.Keystroke(ctx, "")
	case eventOpen:
		s.interact(ev.arg, types.InteractionTap)
		return
	case eventCart:
		s.interact(ev.arg, types.InteractionCart)
		return
	case eventRetry:
		p = s.ctl.Retry(ctx)
	default:
		fmt.Fprintf(s.out, "Unknown command %q\n", ev.arg)
		return
	}

	select {
	case <-p.Done():
	case <-ctx.Done():
		return
	}
	writeView(s.out, s.ctl.View())
}

func (s *session) interact(itemID string, kind types.InteractionKind) {
	if itemID == "" {
		fmt.Fprintf(s.out, "Usage: :%s <item-id>\n", kind)
		return
	}

	s.rep.Report(s.userID, itemID, kind)

	for _, p := range s.ctl.View().Products {
		if p.ID != itemID {
			continue
		}
		if kind == types.InteractionCart {
			fmt.Fprintf(s.out, "Added %s to cart\n", p.Name)
			return
		}
		fmt.Fprintf(s.out, "%s\n  %s  $%.2f\n  %s\n", p.Name, p.Category, p.Price, strings.Join(p.Tags, ", "))
		return
	}
	fmt.Fprintf(s.out, "Reported %s on %s\n", kind, itemID)
}
