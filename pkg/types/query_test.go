// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already normal", "shoe", "shoe"},
		{"trims and lowercases", "  Running SHOES \t", "running shoes"},
		{"inner whitespace kept", "Smart  Watch", "smart  watch"},
		{"whitespace only", " \n\t ", ""},
		{"empty", "", ""},
		{"unicode", " ÉCLAIR ", "éclair"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"", " ", "Shoe", "  SHOE  ", "Gaming Laptop\n", "\tÜber Kit ", "item99", "ZZZ"}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "Normalize(%q) not idempotent", in)
	}
}

func TestNewQuery(t *testing.T) {
	q := NewQuery("  Shoe ")
	assert.Equal(t, "  Shoe ", q.Raw)
	assert.Equal(t, "shoe", q.Normalized)
	assert.False(t, q.IsEmpty())
	assert.True(t, NewQuery("   ").IsEmpty())
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "search", ModeSearch.String())
	assert.Equal(t, "recommendation", ModeRecommendation.String())
	assert.Equal(t, "mode(7)", Mode(7).String())
}

func TestParseInteractionKind(t *testing.T) {
	k, err := ParseInteractionKind("tap")
	require.NoError(t, err)
	assert.Equal(t, InteractionTap, k)

	k, err = ParseInteractionKind("cart")
	require.NoError(t, err)
	assert.Equal(t, InteractionCart, k)

	_, err = ParseInteractionKind("purchase")
	assert.Error(t, err)
}
