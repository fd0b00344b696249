package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"

	"github.com/imkonsowa/restaurants-chat/intentcache"
	"github.com/imkonsowa/restaurants-chat/models"
	"github.com/imkonsowa/restaurants-chat/nlp"
	"github.com/imkonsowa/restaurants-chat/wishlist"
	"github.com/imkonsowa/restaurants-chat/yelp"
)

const (
	smalltalkReply  = "Hi there! How can I help you with food today?"
	classifierReply = "I had trouble working out what you meant. Could you rephrase that?"
	defaultUserID   = "default"
)

type Handler struct {
	pg         *Pg
	classifier *nlp.Classifier
	extractor  *nlp.Extractor
	chatLLM    nlp.Model
	search     *yelp.Client
	wishlist   *wishlist.Service
	publisher  *Publisher

	llmTimeout   time.Duration
	resultLimit  int
	historyLimit int
}

func NewHandler(
	pg *Pg,
	classifier *nlp.Classifier,
	extractor *nlp.Extractor,
	chatLLM nlp.Model,
	search *yelp.Client,
	publisher *Publisher,
	llmTimeout time.Duration,
	resultLimit, historyLimit int,
) *Handler {
	return &Handler{
		pg:           pg,
		classifier:   classifier,
		extractor:    extractor,
		chatLLM:      chatLLM,
		search:       search,
		wishlist:     wishlist.NewService(pg),
		publisher:    publisher,
		llmTimeout:   llmTimeout,
		resultLimit:  resultLimit,
		historyLimit: historyLimit,
	}
}

// Respond runs one turn of the conversation pipeline. stream, when
// non-nil, receives summary chunks as the model produces them. The
// returned error is reserved for storage-layer failures; everything else
// degrades to a conversational response.
func (h *Handler) Respond(ctx context.Context, req ChatRequest, stream func(chunk []byte) error) (*ChatResponse, error) {
	text := strings.TrimSpace(req.Query)
	userID := req.UserID
	if userID == "" {
		userID = defaultUserID
	}

	llmCtx, cancel := context.WithTimeout(ctx, h.llmTimeout)
	classification, err := h.classifier.Classify(llmCtx, text)
	cancel()
	if err != nil {
		var storageErr *intentcache.StorageError
		if errors.As(err, &storageErr) {
			return nil, err
		}

		// Classifier failures are surfaced as their own state, never
		// silently mapped onto a guessed intent.
		slog.Error("intent classification failed", "error", err)
		h.logTurn(ctx, req.SessionID, text, classifierReply, models.ParsedQuery{}, "classifier_error", nil)

		return &ChatResponse{
			Status:    "error",
			SessionID: req.SessionID,
			Msg:       classifierReply,
		}, nil
	}

	switch classification.Intent {
	case nlp.IntentChatHistory:
		return h.respondHistory(ctx, req)

	case nlp.IntentSmalltalk:
		return &ChatResponse{Status: "chat", SessionID: req.SessionID, Msg: smalltalkReply}, nil

	case nlp.IntentWishlistView:
		rendered, err := h.wishlist.List(ctx, userID)
		if err != nil {
			return nil, err
		}

		return &ChatResponse{Status: "wishlist", SessionID: req.SessionID, Msg: rendered}, nil

	case nlp.IntentWishlistAdd, nlp.IntentWishlistDelete, nlp.IntentWishlistUpdate:
		return h.respondWishlist(ctx, req, userID, classification)

	default:
		// search and clarification both go through extraction; an unclear
		// turn comes back as an incomplete query with a follow-up.
		return h.respondSearch(ctx, req, text, stream)
	}
}

func (h *Handler) respondHistory(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	turns, err := h.pg.History(ctx, req.SessionID, h.historyLimit)
	if err != nil {
		return nil, err
	}

	if len(turns) == 0 {
		return &ChatResponse{Status: "history", SessionID: req.SessionID, Msg: "No conversation history yet."}, nil
	}

	// History reads newest-first; render oldest-first.
	lines := make([]string, 0, len(turns))
	for i := len(turns) - 1; i >= 0; i-- {
		lines = append(lines, turns[i].Summary())
	}

	return &ChatResponse{
		Status:    "history",
		SessionID: req.SessionID,
		Msg:       strings.Join(lines, "\n"),
	}, nil
}

func (h *Handler) respondWishlist(ctx context.Context, req ChatRequest, userID string, classification *nlp.Classification) (*ChatResponse, error) {
	name := nlp.ExtractName(classification.Canonical)
	note := nlp.ExtractNote(req.Query)

	parsed := models.ParsedQuery{}
	prior, err := h.pg.LastParsedWithLocation(ctx, req.SessionID)
	if err != nil {
		slog.Warn("failed to load session context", "error", err)
	} else if prior != nil {
		parsed.Location = prior.Location
	}

	var result *wishlist.Result
	switch classification.Intent {
	case nlp.IntentWishlistAdd:
		result, err = h.wishlist.Add(ctx, userID, name, note)
	case nlp.IntentWishlistDelete:
		result, err = h.wishlist.Delete(ctx, userID, name)
	default:
		result, err = h.wishlist.UpdateNote(ctx, userID, name, note)
	}
	if err != nil {
		return nil, err
	}

	status := "wishlist"
	if result.Ambiguous {
		status = "ambiguous"
	}

	h.logTurn(ctx, req.SessionID, req.Query, result.Message, parsed, string(classification.Intent), nil)

	return &ChatResponse{
		Status:     status,
		SessionID:  req.SessionID,
		Msg:        result.Message,
		Candidates: result.Candidates,
	}, nil
}

func (h *Handler) respondSearch(ctx context.Context, req ChatRequest, text string, stream func(chunk []byte) error) (*ChatResponse, error) {
	llmCtx, cancel := context.WithTimeout(ctx, h.llmTimeout)
	parseResult := h.extractor.Extract(llmCtx, text)
	cancel()

	prior, err := h.pg.LastParsedWithLocation(ctx, req.SessionID)
	if err != nil {
		slog.Warn("failed to load session context", "error", err)
		prior = nil
	}

	merged := nlp.MergeContext(parseResult.Parsed, prior)
	if missing := merged.Missing(); len(missing) > 0 {
		h.logTurn(ctx, req.SessionID, text, parseResult.Followup, merged, string(nlp.IntentClarification), nil)

		return &ChatResponse{
			Status:    "incomplete",
			SessionID: req.SessionID,
			Followup:  parseResult.Followup,
		}, nil
	}

	results, err := h.pg.SearchRestaurants(ctx, merged, h.resultLimit)
	if err != nil {
		return nil, err
	}

	source := "db"
	if len(results) == 0 {
		results, err = h.searchUpstream(ctx, merged)
		if err != nil {
			slog.Error("business search failed", "error", err)

			return &ChatResponse{
				Status:    "error",
				SessionID: req.SessionID,
				Msg:       "Restaurant search is unavailable right now. Please try again in a moment.",
			}, nil
		}
		source = "yelp"
	}

	if len(results) == 0 {
		summary := "Sorry, I couldn't find any matching restaurants."
		h.logTurn(ctx, req.SessionID, text, summary, merged, string(nlp.IntentSearch), nil)

		return &ChatResponse{Status: "complete", SessionID: req.SessionID, Summary: summary}, nil
	}

	summary := h.summarize(ctx, results, stream)
	h.logTurn(ctx, req.SessionID, text, summary, merged, string(nlp.IntentSearch), results)

	return &ChatResponse{
		Status:    "complete",
		SessionID: req.SessionID,
		Source:    source,
		Summary:   summary,
		Results:   results,
	}, nil
}

// searchUpstream falls back to the business-search API, publishes what it
// found for async ingestion, and filters by rating locally since the API
// cannot.
func (h *Handler) searchUpstream(ctx context.Context, query models.ParsedQuery) ([]models.Restaurant, error) {
	businesses, err := h.search.Search(ctx, query.Categories, query.Location, h.resultLimit)
	if err != nil {
		return nil, err
	}

	results := make([]models.Restaurant, 0, len(businesses))
	for _, biz := range businesses {
		if query.Rating > 0 && biz.Rating < query.Rating {
			continue
		}

		restaurant := models.Restaurant{
			YelpID:       biz.ID,
			Name:         biz.Name,
			Location:     query.Location,
			Categories:   query.Categories,
			Rating:       biz.Rating,
			Price:        biz.Price,
			Address:      strings.Join(biz.Location.DisplayAddress, ", "),
			AddressParts: biz.Location.DisplayAddress,
			ImageURL:     biz.ImageURL,
			URL:          biz.URL,
			Coordinates:  models.NewGeoPoint(biz.Coordinates.Longitude, biz.Coordinates.Latitude),
		}

		if h.publisher != nil {
			if err := h.publisher.PublishRestaurant(restaurant); err != nil {
				slog.Warn("failed to publish restaurant for ingestion", "yelp_id", biz.ID, "error", err)
			}
		}

		results = append(results, restaurant)
	}

	return results, nil
}

func (h *Handler) summarize(ctx context.Context, results []models.Restaurant, stream func(chunk []byte) error) string {
	var b strings.Builder
	b.WriteString("Write a short friendly recommendation based on these restaurants:\n\n")
	for _, r := range results {
		b.WriteString("- " + r.Stringify() + "\n")
	}

	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(nlp.SummarySysPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(b.String())},
		},
	}

	options := []llms.CallOption{
		llms.WithTemperature(0.7),
		llms.WithMaxTokens(120),
	}
	if stream != nil {
		options = append(options, llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			return stream(chunk)
		}))
	}

	llmCtx, cancel := context.WithTimeout(ctx, h.llmTimeout)
	defer cancel()

	content, err := h.chatLLM.GenerateContent(llmCtx, messages, options...)
	if err != nil || len(content.Choices) == 0 {
		slog.Warn("summary generation failed", "error", err)
		return fmt.Sprintf("I found %d places you might like.", len(results))
	}

	return strings.TrimSpace(content.Choices[0].Content)
}

func (h *Handler) logTurn(
	ctx context.Context,
	sessionID, userInput, response string,
	parsed models.ParsedQuery,
	intent string,
	results []models.Restaurant,
) {
	turn := &models.Conversation{
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
		UserInput: userInput,
		Response:  response,
		Intent:    intent,
		Parsed:    parsed,
		Results:   results,
	}
	if err := h.pg.LogConversation(ctx, turn); err != nil {
		slog.Error("failed to log conversation turn", "session", sessionID, "error", err)
	}
}

// ChatStream runs Respond and feeds the websocket pipeline, the summary
// streamed chunk by chunk followed by the full response and io.EOF. Every
// send is guarded on ctx so an abandoned connection never strands the
// producer goroutine.
func (h *Handler) ChatStream(ctx context.Context, req ChatRequest) chan *ProcessingResult {
	resultChan := make(chan *ProcessingResult)

	send := func(result *ProcessingResult) bool {
		select {
		case resultChan <- result:
			return true
		case <-ctx.Done():
			return false
		}
	}

	go func() {
		defer close(resultChan)

		resp, err := h.Respond(ctx, req, func(chunk []byte) error {
			if !send(&ProcessingResult{Msg: WebSocketsMessage{Type: "chat", Data: string(chunk)}}) {
				return ctx.Err()
			}

			return nil
		})
		if err != nil {
			send(&ProcessingResult{Err: err})
			return
		}

		if !send(&ProcessingResult{Msg: WebSocketsMessage{Type: "response", Data: resp}}) {
			return
		}
		send(&ProcessingResult{Err: io.EOF})
	}()

	return resultChan
}
