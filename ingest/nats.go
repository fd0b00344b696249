package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/imkonsowa/restaurants-chat/config"
)

const (
	fetchBatch   = 8
	fetchMaxWait = 250 * time.Millisecond
)

type Nats struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

func NewNats(cfg *config.Config) (*Nats, error) {
	nc, err := nats.Connect(cfg.Nats.ConnStr())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to get jetstream context: %w", err)
	}

	return &Nats{conn: nc, js: js}, nil
}

func (n *Nats) Close() {
	n.conn.Close()
}

// Subscribe pulls messages from subject on a durable consumer and feeds
// them to the pool until ctx is cancelled. The pull fetch itself provides
// the polling rhythm; Submit blocks when the pool queue is full.
func (n *Nats) Subscribe(ctx context.Context, subject string, pool *WorkerPool) error {
	durable := strings.ReplaceAll(subject, ".", "-") + "-ingest"
	sub, err := n.js.PullSubscribe(subject, durable, nats.ManualAck())
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}

	for {
		select {
		case <-ctx.Done():
			if err := sub.Unsubscribe(); err != nil {
				slog.Warn("failed to unsubscribe", "subject", subject, "error", err)
			}

			return nil
		default:
		}

		msgs, err := sub.Fetch(fetchBatch, nats.MaxWait(fetchMaxWait))
		if errors.Is(err, nats.ErrTimeout) {
			continue
		}
		if err != nil {
			return fmt.Errorf("fetch on %s failed: %w", subject, err)
		}

		for _, msg := range msgs {
			if !pool.Submit(ctx, msg) {
				return nil
			}
		}
	}
}
