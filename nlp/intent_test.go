package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchIntent(t *testing.T) {
	cases := []struct {
		text    string
		intent  Intent
		matched bool
	}{
		{"please add Luigi's to my wishlist", IntentWishlistAdd, true},
		{"save this one to my list", IntentWishlistAdd, true},
		{"remember Joe's Diner for my saved places", IntentWishlistAdd, true},
		{"delete Joe's from my wishlist", IntentWishlistDelete, true},
		{"take off that place from my list", IntentWishlistDelete, true},
		{"update the note for Luigi's", IntentWishlistUpdate, true},
		{"what's on my wishlist?", IntentWishlistView, true},
		{"show me my saved restaurants", IntentWishlistView, true},
		{"heyyy", IntentSmalltalk, true},
		{"hellooo there", IntentSmalltalk, true},
		{"sup", IntentSmalltalk, true},
		{"find me sushi in LA", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		intent, ok := MatchIntent(tc.text)
		assert.Equal(t, tc.matched, ok, "text %q", tc.text)
		assert.Equal(t, tc.intent, intent, "text %q", tc.text)
	}
}

func TestMatchIntentPriority(t *testing.T) {
	// Both the add and delete verb groups appear; add is tested first.
	intent, ok := MatchIntent("add the one I said to remove to my wishlist")
	assert.True(t, ok)
	assert.Equal(t, IntentWishlistAdd, intent)
}

func TestIntentValid(t *testing.T) {
	for _, i := range []Intent{
		IntentSearch, IntentWishlistAdd, IntentWishlistDelete, IntentWishlistUpdate,
		IntentWishlistView, IntentChatHistory, IntentSmalltalk, IntentClarification,
	} {
		assert.True(t, i.Valid(), "intent %q", i)
	}

	assert.False(t, Intent("command").Valid())
	assert.False(t, Intent("").Valid())
}

func TestIntentIsWishlist(t *testing.T) {
	assert.True(t, IntentWishlistAdd.IsWishlist())
	assert.True(t, IntentWishlistView.IsWishlist())
	assert.False(t, IntentSearch.IsWishlist())
	assert.False(t, IntentSmalltalk.IsWishlist())
}
