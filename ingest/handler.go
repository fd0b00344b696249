package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/imkonsowa/restaurants-chat/models"
)

type Handler struct {
	pg *Pg
}

func NewHandler(pg *Pg) *Handler {
	return &Handler{
		pg: pg,
	}
}

func (h *Handler) HandleMessage(ctx context.Context, data []byte) error {
	var restaurant models.Restaurant
	if err := json.Unmarshal(data, &restaurant); err != nil {
		return fmt.Errorf("failed to unmarshal restaurant: %w", err)
	}

	if restaurant.Name == "" {
		return fmt.Errorf("restaurant payload missing name")
	}

	if err := h.pg.UpsertRestaurant(ctx, &restaurant); err != nil {
		return fmt.Errorf("failed to upsert restaurant %q: %w", restaurant.Name, err)
	}

	slog.Info("stored restaurant", "name", restaurant.Name, "yelp_id", restaurant.YelpID)

	return nil
}
