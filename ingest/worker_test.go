package main

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPoolProcessesMessages(t *testing.T) {
	var mu sync.Mutex
	var got []string

	pool := NewWorkerPool(context.Background(), 2, 4, func(ctx context.Context, msg []byte) error {
		mu.Lock()
		got = append(got, string(msg))
		mu.Unlock()

		return nil
	})
	defer func() {
		pool.Stop()
		pool.Wait()
	}()

	assert.True(t, pool.Submit(context.Background(), &nats.Msg{Data: []byte("a")}))
	assert.True(t, pool.Submit(context.Background(), &nats.Msg{Data: []byte("b")}))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, time.Second, 10*time.Millisecond)
}

func TestWorkerPoolSubmitAfterStop(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 2, 4, func(ctx context.Context, msg []byte) error {
		return nil
	})

	pool.Stop()
	pool.Wait()

	// A fetch loop racing the shutdown may still call Submit; it must
	// refuse cleanly rather than panic.
	assert.NotPanics(t, func() {
		for i := 0; i < 100; i++ {
			assert.False(t, pool.Submit(context.Background(), &nats.Msg{Data: []byte("late")}))
		}
	})
}

func TestWorkerPoolSubmitRespectsCallerContext(t *testing.T) {
	block := make(chan struct{})
	pool := NewWorkerPool(context.Background(), 1, 1, func(ctx context.Context, msg []byte) error {
		<-block
		return nil
	})
	defer func() {
		close(block)
		pool.Stop()
		pool.Wait()
	}()

	// Fill the worker and the queue so the next Submit must block.
	require.True(t, pool.Submit(context.Background(), &nats.Msg{Data: []byte("busy")}))
	require.True(t, pool.Submit(context.Background(), &nats.Msg{Data: []byte("queued")}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.False(t, pool.Submit(ctx, &nats.Msg{Data: []byte("overflow")}))
}
