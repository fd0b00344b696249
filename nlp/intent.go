package nlp

import (
	"regexp"
	"strings"
)

// Intent is the closed-set classification of what the user wants.
type Intent string

const (
	IntentSearch         Intent = "search"
	IntentWishlistAdd    Intent = "wishlist_add"
	IntentWishlistDelete Intent = "wishlist_delete"
	IntentWishlistUpdate Intent = "wishlist_update"
	IntentWishlistView   Intent = "wishlist_view"
	IntentChatHistory    Intent = "chat_history"
	IntentSmalltalk      Intent = "smalltalk"
	IntentClarification  Intent = "clarification"
)

var validIntents = map[Intent]struct{}{
	IntentSearch:         {},
	IntentWishlistAdd:    {},
	IntentWishlistDelete: {},
	IntentWishlistUpdate: {},
	IntentWishlistView:   {},
	IntentChatHistory:    {},
	IntentSmalltalk:      {},
	IntentClarification:  {},
}

func (i Intent) Valid() bool {
	_, ok := validIntents[i]
	return ok
}

func (i Intent) IsWishlist() bool {
	return strings.HasPrefix(string(i), "wishlist")
}

// Rule-based fast path. Patterns are tested in priority order and the
// first match wins.
var intentRules = []struct {
	re     *regexp.Regexp
	intent Intent
}{
	{regexp.MustCompile(`(?i)\b(add|save|remember|put)\b.*\b(wishlist|my ?list|saved)\b`), IntentWishlistAdd},
	{regexp.MustCompile(`(?i)\b(delete|remove|take off)\b.*\b(wishlist|my ?list|saved)\b`), IntentWishlistDelete},
	{regexp.MustCompile(`(?i)\bupdate\b.*\bnote\b`), IntentWishlistUpdate},
	{regexp.MustCompile(`(?i)\b(what|show|view)\b.*\b(wishlist|saved)\b`), IntentWishlistView},
	{regexp.MustCompile(`(?i)^(hi+|hello+|hey+|yo+|sup)\b.*$`), IntentSmalltalk},
}

// MatchIntent runs the regex fast path over text. It is pure and free; a
// false second return means no rule matched and the classifier must fall
// back to the language model.
func MatchIntent(text string) (Intent, bool) {
	t := strings.ToLower(strings.TrimSpace(text))
	for _, rule := range intentRules {
		if rule.re.MatchString(t) {
			return rule.intent, true
		}
	}

	return "", false
}
