package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsableCode(t *testing.T) {
	tests := []struct {
		name string
		code string
		want bool
	}{
		{"plain code", "A100", true},
		{"code with whitespace", "  A100  ", true},
		{"empty", "", false},
		{"only whitespace", "   ", false},
		{"sentinel", "NO CODE", false},
		{"sentinel lowercase", "no code", false},
		{"sentinel mixed case with whitespace", "  No Code ", false},
		{"sentinel-like but different", "NO CODES", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UsableCode(tt.code))
		})
	}
}

func TestResolveKey_CodeWins(t *testing.T) {
	key, ok := ResolveKey(" A100 ", "Widget Deluxe")

	require.True(t, ok)
	assert.Equal(t, KeyCode, key.Kind)
	assert.Equal(t, "A100", key.Value)
}

func TestResolveKey_NameFallback(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"empty code", ""},
		{"whitespace code", "  "},
		{"sentinel code", "NO CODE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := ResolveKey(tt.code, "  Widget Deluxe ")

			require.True(t, ok)
			assert.Equal(t, KeyName, key.Kind)
			assert.Equal(t, "Widget Deluxe", key.Value)
		})
	}
}

func TestResolveKey_NoIdentity(t *testing.T) {
	tests := []struct {
		name string
		code string
		text string
	}{
		{"both empty", "", ""},
		{"sentinel and blank name", "NO CODE", "   "},
		{"whitespace only", " ", " "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ResolveKey(tt.code, tt.text)
			assert.False(t, ok)
		})
	}
}

func TestProductKey_OneEqualityAcrossKinds(t *testing.T) {
	// The same value under different kinds must be two different keys.
	byCode := ProductKey{Kind: KeyCode, Value: "Widget"}
	byName := ProductKey{Kind: KeyName, Value: "Widget"}

	assert.NotEqual(t, byCode, byName)

	index := map[ProductKey]int{byCode: 1, byName: 2}
	assert.Len(t, index, 2)
}

func TestProductKey_FromProductTag(t *testing.T) {
	codeTagged := Product{Code: "A1", DisplayName: "Widget", Tag: KeyCode}
	nameTagged := Product{DisplayName: "Widget", Tag: KeyName}

	assert.Equal(t, ProductKey{Kind: KeyCode, Value: "A1"}, codeTagged.Key())
	assert.Equal(t, ProductKey{Kind: KeyName, Value: "Widget"}, nameTagged.Key())
}

func TestAdjustPrice(t *testing.T) {
	assert.Equal(t, 110.0, AdjustPrice(100, 10))
	assert.Equal(t, 0.0, AdjustPrice(0, 10))
	assert.Equal(t, 0.0, AdjustPrice(-5, 10))
}

func TestSortPriceFor(t *testing.T) {
	assert.Equal(t, 42.5, SortPriceFor(42.5))
	assert.Equal(t, InvalidSortPrice, SortPriceFor(0))
	assert.Equal(t, InvalidSortPrice, SortPriceFor(-1))
}
