package main

import (
	"encoding/json"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/imkonsowa/restaurants-chat/config"
	"github.com/imkonsowa/restaurants-chat/models"
)

// seed publishes restaurants from a JSON dump file onto the discovery
// subject so the ingest service can load them into Postgres.
func main() {
	file := flag.String("file", "restaurants.json", "path to a JSON array of restaurants")
	flag.Parse()

	cfg := config.LoadConfig()

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal("failed to read dump file:", err)
	}

	var restaurants []models.Restaurant
	if err := json.Unmarshal(data, &restaurants); err != nil {
		log.Fatal("failed to parse dump file:", err)
	}
	slog.Info("loaded restaurants from dump", "count", len(restaurants))

	nc, err := nats.Connect(cfg.Nats.ConnStr())
	if err != nil {
		log.Fatal("failed to connect to nats:", err)
	}
	defer nc.Close()

	js, err := nc.JetStream()
	if err != nil {
		log.Fatal("failed to get jetstream context:", err)
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:      cfg.Nats.Stream,
		Subjects:  []string{cfg.Nats.RestaurantsSubject},
		Storage:   nats.FileStorage,
		Retention: nats.LimitsPolicy,
		MaxAge:    time.Hour * 24 * 7,
	})
	if err != nil && !errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
		log.Fatal("failed to create stream:", err)
	}

	published := 0
	for _, restaurant := range restaurants {
		payload, err := json.Marshal(restaurant)
		if err != nil {
			slog.Error("failed to marshal restaurant", "name", restaurant.Name, "err", err)
			continue
		}
		if _, err := js.Publish(cfg.Nats.RestaurantsSubject, payload); err != nil {
			slog.Error("failed to publish restaurant", "name", restaurant.Name, "err", err)
			continue
		}
		published++
	}

	slog.Info("seed complete", "published", published, "total", len(restaurants))
}
