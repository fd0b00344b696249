package nlp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/imkonsowa/restaurants-chat/models"
	"github.com/tmc/langchaingo/llms"
)

// GenericFollowup is the fallback clarification question used when the
// follow-up model call is unavailable.
const GenericFollowup = "Sorry, I couldn't understand. Could you tell me which city and cuisine you're looking for?"

var vagueLocations = []string{
	"near me",
	"current location",
	"nearby",
	"around here",
}

// ParseResult is what structured extraction produced for one turn.
type ParseResult struct {
	Parsed   models.ParsedQuery `json:"parsed"`
	Missing  []string           `json:"missing"`
	Followup string             `json:"followup,omitempty"`
	Original string             `json:"original"`
}

// Extractor turns freeform search text into structured query fields. It
// never returns an error: extraction failures degrade to an all-missing
// result with the generic follow-up.
type Extractor struct {
	llm             Model
	defaultLocation string
}

func NewExtractor(llm Model, defaultLocation string) *Extractor {
	return &Extractor{
		llm:             llm,
		defaultLocation: defaultLocation,
	}
}

func (e *Extractor) Extract(ctx context.Context, text string) *ParseResult {
	parsed, err := e.parse(ctx, text)
	if err != nil {
		slog.Warn("structured parse failed", "error", err)

		return &ParseResult{
			Missing:  []string{"location", "categories"},
			Followup: GenericFollowup,
			Original: text,
		}
	}

	e.applyDefaultLocation(parsed, text)

	result := &ParseResult{
		Parsed:   *parsed,
		Missing:  parsed.Missing(),
		Original: text,
	}

	if len(result.Missing) > 0 {
		result.Followup = e.followup(ctx, text, result)
	}

	return result
}

func (e *Extractor) parse(ctx context.Context, text string) (*models.ParsedQuery, error) {
	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(ExtractorSysPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(text)},
		},
	}

	content, err := e.llm.GenerateContent(
		ctx,
		messages,
		llms.WithJSONMode(),
		llms.WithTemperature(0.2),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	if len(content.Choices) == 0 {
		return nil, fmt.Errorf("empty model response")
	}

	var parsed models.ParsedQuery
	if err := json.Unmarshal([]byte(content.Choices[0].Content), &parsed); err != nil {
		return nil, fmt.Errorf("malformed model output: %w", err)
	}

	return &parsed, nil
}

// applyDefaultLocation substitutes the configured fallback city for vague
// location phrases. Done in code rather than in the prompt so the rule is
// deterministic and testable.
func (e *Extractor) applyDefaultLocation(parsed *models.ParsedQuery, text string) {
	loc := strings.ToLower(strings.TrimSpace(parsed.Location))
	lowered := strings.ToLower(text)

	for _, vague := range vagueLocations {
		if loc == vague {
			parsed.Location = e.defaultLocation
			return
		}
		if loc == "" && strings.Contains(lowered, vague) {
			parsed.Location = e.defaultLocation
			return
		}
	}
}

// followup asks the model for a clarification question referencing the
// already-known fields. Its failure never fails the extraction.
func (e *Extractor) followup(ctx context.Context, text string, result *ParseResult) string {
	known, err := json.Marshal(result.Parsed)
	if err != nil {
		return GenericFollowup
	}

	prompt := fmt.Sprintf(
		"The user said: %q\nWe extracted this: %s\nThe following fields are missing: %s.\n\n"+
			"Please generate a friendly English follow-up question to ask for the missing information. Output only the question.",
		text, known, strings.Join(result.Missing, ", "),
	)

	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(FollowupSysPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(prompt)},
		},
	}

	content, err := e.llm.GenerateContent(
		ctx,
		messages,
		llms.WithTemperature(0.7),
		llms.WithMaxTokens(100),
	)
	if err != nil || len(content.Choices) == 0 {
		slog.Warn("followup generation failed", "error", err)
		return GenericFollowup
	}

	followup := strings.TrimSpace(content.Choices[0].Content)
	if followup == "" {
		return GenericFollowup
	}

	return followup
}
