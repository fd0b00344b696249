package main

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/imkonsowa/restaurants-chat/config"
	"github.com/imkonsowa/restaurants-chat/models"
)

// Publisher pushes discovered restaurants onto the ingest stream. The
// ingest service consumes them and upserts into Postgres.
type Publisher struct {
	conn    *nats.Conn
	js      nats.JetStreamContext
	subject string
}

func NewPublisher(cfg *config.Config) (*Publisher, error) {
	nc, err := nats.Connect(cfg.Nats.ConnStr())
	if err != nil {
		return nil, err
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, err
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:      cfg.Nats.Stream,
		Subjects:  []string{cfg.Nats.RestaurantsSubject},
		Storage:   nats.FileStorage,
		Retention: nats.LimitsPolicy,
		MaxAge:    time.Hour * 24 * 7,
	})
	if err != nil && !errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
		nc.Close()
		return nil, err
	}

	return &Publisher{
		conn:    nc,
		js:      js,
		subject: cfg.Nats.RestaurantsSubject,
	}, nil
}

func (p *Publisher) Close() {
	p.conn.Close()
}

func (p *Publisher) PublishRestaurant(restaurant models.Restaurant) error {
	data, err := json.Marshal(restaurant)
	if err != nil {
		return err
	}

	_, err = p.js.Publish(p.subject, data)

	return err
}
