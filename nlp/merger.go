package nlp

import "github.com/imkonsowa/restaurants-chat/models"

// MergeContext inherits structured fields from an earlier turn of the same
// session. prior is the parsed query of the most recent turn that carried a
// location; the caller obtains it from the conversation log. Fields already
// set on the current query are never overwritten. Returns parsed unchanged
// when prior is nil.
func MergeContext(parsed models.ParsedQuery, prior *models.ParsedQuery) models.ParsedQuery {
	if prior == nil {
		return parsed
	}

	if parsed.Location == "" {
		parsed.Location = prior.Location
	}
	if parsed.Categories == "" {
		parsed.Categories = prior.Categories
	}
	if parsed.Rating == 0 {
		parsed.Rating = prior.Rating
	}
	if parsed.Price == "" {
		parsed.Price = prior.Price
	}

	return parsed
}
