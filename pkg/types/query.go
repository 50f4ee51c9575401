// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the storefront client.
// Products and recommendations as returned by the gateway, the unified
// display model, interaction events, queries, modes, and configuration.
package types

import (
	"fmt"
	"strings"
)

// Mode selects which query pipeline drives the displayed results.
type Mode int

const (
	// ModeSearch is live catalog search driven by keystrokes.
	ModeSearch Mode = iota

	// ModeRecommendation is personalized ranking driven by an explicit submit.
	ModeRecommendation
)

// String returns the lowercase mode name.
func (m Mode) String() string {
	switch m {
	case ModeSearch:
		return "search"
	case ModeRecommendation:
		return "recommendation"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Query is a single piece of user input. Normalized is always derived from
// Raw; construct queries with NewQuery.
type Query struct {
	Raw        string `json:"raw" yaml:"raw"`
	Normalized string `json:"normalized" yaml:"normalized"`
}

// NewQuery builds a Query from raw input.
func NewQuery(raw string) Query {
	return Query{Raw: raw, Normalized: Normalize(raw)}
}

// IsEmpty reports whether the query has no searchable text.
func (q Query) IsEmpty() bool {
	return q.Normalized == ""
}

// Normalize trims surrounding whitespace and lowercases s. It is idempotent.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
