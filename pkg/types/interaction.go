// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// InteractionKind is the type of product-level user action.
type InteractionKind string

const (
	// InteractionTap records opening a product.
	InteractionTap InteractionKind = "tap"

	// InteractionCart records adding a product to the cart.
	InteractionCart InteractionKind = "cart"
)

// ParseInteractionKind validates s as an interaction kind.
func ParseInteractionKind(s string) (InteractionKind, error) {
	switch k := InteractionKind(s); k {
	case InteractionTap, InteractionCart:
		return k, nil
	default:
		return "", fmt.Errorf("unknown interaction kind %q: want tap or cart", s)
	}
}

// InteractionEvent is created when the user acts on a product and handed to
// the reporter exactly once.
type InteractionEvent struct {
	ID        string          `json:"-" yaml:"id"`
	UserID    string          `json:"user_id" yaml:"user_id"`
	ItemID    string          `json:"item_id" yaml:"item_id"`
	Kind      InteractionKind `json:"type" yaml:"type"`
	Timestamp time.Time       `json:"-" yaml:"timestamp"`
}
