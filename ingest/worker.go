package main

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// WorkerPool drains discovery messages with a fixed number of workers and
// a bounded queue. A failed upsert naks the message with a delay so the
// stream redelivers it once Postgres is back.
type WorkerPool struct {
	queue   chan *nats.Msg
	handler func(ctx context.Context, msg []byte) error
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewWorkerPool(ctx context.Context, workers, queueSize int, handler func(ctx context.Context, msg []byte) error) *WorkerPool {
	if workers < 1 {
		workers = 2
	}
	if queueSize < 1 {
		queueSize = 100
	}

	poolCtx, cancel := context.WithCancel(ctx)
	pool := &WorkerPool{
		queue:   make(chan *nats.Msg, queueSize),
		handler: handler,
		ctx:     poolCtx,
		cancel:  cancel,
	}

	pool.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go pool.run()
	}

	return pool
}

func (p *WorkerPool) run() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case msg := <-p.queue:
			p.handle(msg)
		}
	}
}

func (p *WorkerPool) handle(msg *nats.Msg) {
	if err := p.handler(p.ctx, msg.Data); err != nil {
		slog.Error("failed to ingest message", "subject", msg.Subject, "err", err)
		if err := msg.NakWithDelay(5 * time.Second); err != nil {
			slog.Error("failed to nak message", "err", err)
		}
		return
	}

	if err := msg.Ack(); err != nil {
		slog.Error("failed to ack message", "err", err)
	}
}

// Submit enqueues a fetched message for processing, blocking when the
// queue is full so the fetch loop backs off instead of piling up work.
// Returns false once either context is cancelled.
func (p *WorkerPool) Submit(ctx context.Context, msg *nats.Msg) bool {
	select {
	case p.queue <- msg:
		return true
	case <-ctx.Done():
		return false
	case <-p.ctx.Done():
		return false
	}
}

// Stop cancels the workers. The queue channel is deliberately left open
// so a Submit racing the shutdown cannot send on a closed channel; unacked
// messages are redelivered by the stream.
func (p *WorkerPool) Stop() {
	p.cancel()
}

func (p *WorkerPool) Wait() {
	p.wg.Wait()
}
