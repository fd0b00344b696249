package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractName(t *testing.T) {
	cases := []struct {
		canonical string
		want      string
	}{
		{"add Luigi's Pizza to my wishlist", "Luigi's Pizza"},
		{"remove Joe's from my list in Chicago", "Joe's"},
		{"save Ramen House to my saved list", "Ramen House"},
		{"forget The Golden Spoon from my wishlist", "The Golden Spoon"},
		// Fallback path: no (to|from) preposition for the primary pattern.
		{"delete Blue Bottle", "Blue Bottle"},
		{"add Pho Corner in Seattle to my wishlist", "Pho Corner"},
		{"", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ExtractName(tc.canonical), "canonical %q", tc.canonical)
	}
}

func TestExtractNameNeverPanics(t *testing.T) {
	for _, in := range []string{
		"to from wishlist",
		"add to my list",
		"in in in",
		"!!!",
	} {
		assert.NotPanics(t, func() { ExtractName(in) }, "input %q", in)
	}
}

func TestExtractNote(t *testing.T) {
	assert.Equal(t, "best ramen", ExtractNote(`update the note for Ramen House to say "best ramen"`))
	assert.Equal(t, "date night spot", ExtractNote(`add Luigi's to my wishlist to say 'date night spot'`))
	assert.Empty(t, ExtractNote("add Luigi's to my wishlist"))
}
