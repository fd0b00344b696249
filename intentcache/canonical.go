package intentcache

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"strings"
)

// numberToken replaces runs of digits so that "table for 2" and "table for 4"
// share one cache entry. It is a plain word so canonicalization stays
// idempotent.
const numberToken = "num"

var (
	nonWordRe = regexp.MustCompile(`[^\w\s]`)
	digitsRe  = regexp.MustCompile(`\d+`)

	stopWords = map[string]struct{}{
		"please": {},
		"kindly": {},
		"just":   {},
	}
)

// Canonicalize normalizes free text into the stable form used as the cache
// key source: lower-case, punctuation stripped, digit runs collapsed to a
// placeholder, stop-words removed, single-space joined.
func Canonicalize(text string) string {
	text = strings.ToLower(text)
	text = nonWordRe.ReplaceAllString(text, " ")
	text = digitsRe.ReplaceAllString(text, numberToken)

	fields := strings.Fields(text)
	words := make([]string, 0, len(fields))
	for _, w := range fields {
		if _, skip := stopWords[w]; skip {
			continue
		}
		words = append(words, w)
	}

	return strings.Join(words, " ")
}

// Key returns the stable cache key for text: the SHA-1 hex digest of the
// UTF-8 bytes of its canonical form.
func Key(text string) string {
	sum := sha1.Sum([]byte(Canonicalize(text)))
	return hex.EncodeToString(sum[:])
}
