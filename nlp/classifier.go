package nlp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/imkonsowa/restaurants-chat/intentcache"
	"github.com/tmc/langchaingo/llms"
)

// Model is the narrow slice of the langchaingo LLM surface the pipeline
// needs, so tests can inject deterministic stubs.
type Model interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// ClassifierError reports that intent classification failed: the model was
// unreachable, returned malformed JSON, or produced an intent outside the
// closed set. It is distinct from a legitimate "clarification" intent and
// must never be collapsed into a default guess.
type ClassifierError struct {
	Reason string
	Err    error
}

func (e *ClassifierError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("intent classification failed: %s: %v", e.Reason, e.Err)
	}

	return fmt.Sprintf("intent classification failed: %s", e.Reason)
}

func (e *ClassifierError) Unwrap() error {
	return e.Err
}

// Classification is a resolved intent with its canonical command form.
type Classification struct {
	Canonical string `json:"canonical"`
	Intent    Intent `json:"intent"`
	Analysis  string `json:"analysis"`
}

// Classifier resolves raw text to an intent: cache first, then the regex
// fast path, then the language model. Both regex and model resolutions are
// written through to the cache.
type Classifier struct {
	llm   Model
	cache *intentcache.Cache
}

func NewClassifier(llm Model, cache *intentcache.Cache) *Classifier {
	return &Classifier{
		llm:   llm,
		cache: cache,
	}
}

func (c *Classifier) Classify(ctx context.Context, text string) (*Classification, error) {
	cached, err := c.cache.Lookup(text)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return &Classification{
			Canonical: cached.Canonical,
			Intent:    Intent(cached.Intent),
			Analysis:  cached.Analysis,
		}, nil
	}

	if intent, ok := MatchIntent(text); ok {
		if err := c.cache.Insert(text, text, "matched_by_regex", string(intent)); err != nil {
			return nil, err
		}

		return &Classification{
			Canonical: text,
			Intent:    intent,
			Analysis:  "matched_by_regex",
		}, nil
	}

	classification, err := c.classifyWithModel(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Insert(text, classification.Canonical, classification.Analysis, string(classification.Intent)); err != nil {
		return nil, err
	}

	return classification, nil
}

func (c *Classifier) classifyWithModel(ctx context.Context, text string) (*Classification, error) {
	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(ClassifierSysPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(fmt.Sprintf("User: %q", text))},
		},
	}

	content, err := c.llm.GenerateContent(
		ctx,
		messages,
		llms.WithJSONMode(),
		llms.WithTemperature(0),
	)
	if err != nil {
		return nil, &ClassifierError{Reason: "model call", Err: err}
	}
	if len(content.Choices) == 0 {
		return nil, &ClassifierError{Reason: "empty model response"}
	}

	var classification Classification
	if err := json.Unmarshal([]byte(content.Choices[0].Content), &classification); err != nil {
		return nil, &ClassifierError{Reason: "malformed model output", Err: err}
	}

	if !classification.Intent.Valid() {
		return nil, &ClassifierError{Reason: fmt.Sprintf("intent %q outside the known set", classification.Intent)}
	}
	if classification.Canonical == "" {
		classification.Canonical = text
	}

	return &classification, nil
}
