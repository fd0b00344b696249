package main

import (
	"fmt"

	"github.com/imkonsowa/restaurants-chat/models"
	"github.com/imkonsowa/restaurants-chat/wishlist"
)

type ProcessingResult struct {
	Err error
	Msg WebSocketsMessage
}

type WebSocketsMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type ChatRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
}

type ChatResponse struct {
	Status     string               `json:"status"`
	SessionID  string               `json:"session_id"`
	Msg        string               `json:"msg,omitempty"`
	Followup   string               `json:"followup,omitempty"`
	Summary    string               `json:"summary,omitempty"`
	Source     string               `json:"source,omitempty"`
	Results    []models.Restaurant  `json:"results,omitempty"`
	Candidates []wishlist.Candidate `json:"candidates,omitempty"`
}

type ConfirmRequest struct {
	UserID string `json:"user_id"`
	Note   string `json:"note,omitempty"`
}

type CreateRestaurantsRequest struct {
	Restaurants []struct {
		Name       string  `json:"name"`
		Location   string  `json:"location"`
		Categories string  `json:"categories"`
		Rating     float64 `json:"rating"`
		Price      string  `json:"price"`
		Address    string  `json:"address"`
		Coordinates struct {
			Lat  float64 `json:"lat"`
			Long float64 `json:"long"`
		} `json:"coordinates"`
	} `json:"restaurants"`
}

func (c *CreateRestaurantsRequest) Validate() error {
	if len(c.Restaurants) == 0 {
		return fmt.Errorf("no restaurants provided")
	}

	for _, r := range c.Restaurants {
		if r.Name == "" || r.Location == "" {
			return fmt.Errorf("restaurant name and location are required")
		}
	}

	return nil
}

func (c *CreateRestaurantsRequest) ToModels() []models.Restaurant {
	restaurants := make([]models.Restaurant, len(c.Restaurants))
	for i, r := range c.Restaurants {
		restaurants[i] = models.Restaurant{
			Name:        r.Name,
			Location:    r.Location,
			Categories:  r.Categories,
			Rating:      r.Rating,
			Price:       r.Price,
			Address:     r.Address,
			Coordinates: models.NewGeoPoint(r.Coordinates.Long, r.Coordinates.Lat),
		}
	}

	return restaurants
}
