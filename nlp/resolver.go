package nlp

import (
	"regexp"
	"strings"
)

var (
	namePattern = regexp.MustCompile(`(?i)\b(add|save|remember|remove|delete|forget|update)\s+(.*?)\s+(to|from)\s+(my\s+)?(wishlist|list|saved list)`)

	trailingPlaceRe  = regexp.MustCompile(`(?i)\s+in\s+[\w\s]+$`)
	wishlistClauseRe = regexp.MustCompile(`(?i)(to|from)\s+(my\s+)?(wishlist|list|saved list)`)
	leadingVerbRe    = regexp.MustCompile(`(?i)^(add|save|remove|delete|update|remember)\s+`)

	notePattern = regexp.MustCompile(`(?i)to say ['"](.+?)['"]`)
)

// ExtractName pulls the restaurant name out of a canonical wishlist
// command. Total over any input; a miss on the primary pattern falls back
// to stripping rules, worst case returning an empty string which downstream
// treats as not found.
func ExtractName(canonical string) string {
	if m := namePattern.FindStringSubmatch(canonical); m != nil {
		name := strings.TrimSpace(m[2])
		name = trailingPlaceRe.ReplaceAllString(name, "")
		return strings.TrimSpace(name)
	}

	name := wishlistClauseRe.ReplaceAllString(canonical, "")
	name = leadingVerbRe.ReplaceAllString(strings.TrimSpace(name), "")
	name = trailingPlaceRe.ReplaceAllString(name, "")

	return strings.TrimSpace(name)
}

// ExtractNote pulls the note portion from text like `... to say "best ramen"`.
func ExtractNote(text string) string {
	if m := notePattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}

	return ""
}
