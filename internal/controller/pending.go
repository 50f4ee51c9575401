// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package controller

import (
	"context"
	"fmt"

	"github.com/pdiddy/storefront/internal/querycache"
)

// Outcome says what happened to a fetch issued by the controller.
type Outcome int

const (
	// OutcomeApplied means the result replaced the displayed products.
	OutcomeApplied Outcome = iota
	// OutcomeFailed means the fetch failed and the error is now displayed.
	OutcomeFailed
	// OutcomeDiscarded means a newer event superseded the fetch before it
	// finished. The result, if any, still went into the cache.
	OutcomeDiscarded
	// OutcomeSkipped means the event required no fetch.
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeFailed:
		return "failed"
	case OutcomeDiscarded:
		return "discarded"
	case OutcomeSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Pending is the future for one controller fetch. Outcome and Err are
// valid once Done is closed.
type Pending struct {
	Key querycache.Key

	done    chan struct{}
	outcome Outcome
	err     error
}

func newPending(key querycache.Key) *Pending {
	return &Pending{Key: key, done: make(chan struct{})}
}

func skipped(key querycache.Key) *Pending {
	p := newPending(key)
	p.finish(OutcomeSkipped, nil)
	return p
}

func (p *Pending) finish(o Outcome, err error) {
	p.outcome = o
	p.err = err
	close(p.done)
}

// Done is closed when the fetch has been applied, failed, or discarded.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Outcome returns the result kind. It blocks until Done is closed.
func (p *Pending) Outcome() Outcome {
	<-p.done
	return p.outcome
}

// Err returns the fetch error. It blocks until Done is closed.
func (p *Pending) Err() error {
	<-p.done
	return p.err
}

// Wait blocks until the fetch settles or ctx is done.
func (p *Pending) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-p.done:
		return p.outcome, p.err
	case <-ctx.Done():
		return OutcomeDiscarded, ctx.Err()
	}
}
