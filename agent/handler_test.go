package main

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imkonsowa/restaurants-chat/intentcache"
	"github.com/imkonsowa/restaurants-chat/nlp"
)

// newStreamHandler wires only what a regex-matched turn touches: the
// classifier's cache fast path never reaches Postgres or a model.
func newStreamHandler(t *testing.T) *Handler {
	t.Helper()

	cache, err := intentcache.New(filepath.Join(t.TempDir(), "cache.jsonl"))
	require.NoError(t, err)

	return NewHandler(nil, nlp.NewClassifier(nil, cache), nil, nil, nil, nil, time.Second, 5, 10)
}

func TestChatStreamClosesWhenConnectionAbandoned(t *testing.T) {
	h := newStreamHandler(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch := h.ChatStream(ctx, ChatRequest{Query: "hi", SessionID: "s1"})

	// Nobody reads. The producer must bail out on the dead context and
	// close the channel instead of blocking on its sends.
	time.Sleep(100 * time.Millisecond)

	select {
	case result, ok := <-ch:
		assert.False(t, ok, "expected a closed channel, got a queued send: %+v", result)
	case <-time.After(2 * time.Second):
		t.Fatal("stream goroutine still running after context cancellation")
	}
}

func TestChatStreamDeliversResponseAndEOF(t *testing.T) {
	h := newStreamHandler(t)

	ch := h.ChatStream(context.Background(), ChatRequest{Query: "hi", SessionID: "s2"})

	first := <-ch
	require.NotNil(t, first)
	require.NoError(t, first.Err)
	assert.Equal(t, "response", first.Msg.Type)

	resp, ok := first.Msg.Data.(*ChatResponse)
	require.True(t, ok)
	assert.Equal(t, "chat", resp.Status)

	second := <-ch
	require.NotNil(t, second)
	assert.ErrorIs(t, second.Err, io.EOF)

	_, open := <-ch
	assert.False(t, open)
}
