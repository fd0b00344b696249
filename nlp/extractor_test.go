package nlp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCompleteQuery(t *testing.T) {
	llm := &stubModel{responses: []string{
		`{"location": "Los Angeles", "categories": "sushi"}`,
	}}
	extractor := NewExtractor(llm, "Los Angeles")

	result := extractor.Extract(context.Background(), "sushi in Los Angeles")
	require.NotNil(t, result)
	assert.Empty(t, result.Missing)
	assert.Empty(t, result.Followup)
	assert.Equal(t, "Los Angeles", result.Parsed.Location)
	assert.Equal(t, "sushi", result.Parsed.Categories)
	assert.Equal(t, 1, llm.calls)
}

func TestExtractMissingFieldsGeneratesFollowup(t *testing.T) {
	llm := &stubModel{responses: []string{
		`{}`,
		`Which city are you in, and what kind of food are you craving?`,
	}}
	extractor := NewExtractor(llm, "Los Angeles")

	result := extractor.Extract(context.Background(), "find me something good")
	assert.ElementsMatch(t, []string{"location", "categories"}, result.Missing)
	assert.Equal(t, "Which city are you in, and what kind of food are you craving?", result.Followup)
	assert.Equal(t, 2, llm.calls)
}

func TestExtractFollowupFailureFallsBack(t *testing.T) {
	// First call parses, second (follow-up) returns empty content.
	llm := &stubModel{responses: []string{
		`{"categories": "bbq"}`,
		``,
	}}
	extractor := NewExtractor(llm, "Los Angeles")

	result := extractor.Extract(context.Background(), "some bbq would be great")
	assert.Equal(t, []string{"location"}, result.Missing)
	assert.Equal(t, GenericFollowup, result.Followup)
}

func TestExtractFailureDegrades(t *testing.T) {
	llm := &stubModel{err: errors.New("timeout")}
	extractor := NewExtractor(llm, "Los Angeles")

	result := extractor.Extract(context.Background(), "anything really")
	assert.ElementsMatch(t, []string{"location", "categories"}, result.Missing)
	assert.Equal(t, GenericFollowup, result.Followup)
	assert.Equal(t, "anything really", result.Original)
}

func TestExtractMalformedOutputDegrades(t *testing.T) {
	llm := &stubModel{responses: []string{`oops, not json`}}
	extractor := NewExtractor(llm, "Los Angeles")

	result := extractor.Extract(context.Background(), "tacos?")
	assert.ElementsMatch(t, []string{"location", "categories"}, result.Missing)
	assert.Equal(t, GenericFollowup, result.Followup)
}

func TestExtractVagueLocationDefaults(t *testing.T) {
	cases := []struct {
		name     string
		response string
		text     string
	}{
		{"model echoes vague phrase", `{"location": "near me", "categories": "pizza"}`, "pizza near me"},
		{"model omits vague location", `{"categories": "pizza"}`, "pizza around here"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			llm := &stubModel{responses: []string{tc.response}}
			extractor := NewExtractor(llm, "Los Angeles")

			result := extractor.Extract(context.Background(), tc.text)
			assert.Equal(t, "Los Angeles", result.Parsed.Location)
			assert.Empty(t, result.Missing)
		})
	}
}
