package main

import (
	"context"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/imkonsowa/restaurants-chat/models"
)

type Pg struct {
	db *gorm.DB
}

func NewPg(connString string) (*Pg, error) {
	db, err := gorm.Open(postgres.Open(connString), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return &Pg{
		db: db,
	}, nil
}

// UpsertRestaurant writes a discovered restaurant keyed by its upstream
// id, refreshing mutable fields on conflict. Internal restaurants carry no
// yelp_id and are inserted as-is.
func (p *Pg) UpsertRestaurant(ctx context.Context, restaurant *models.Restaurant) error {
	if restaurant.YelpID == "" {
		return p.db.WithContext(ctx).Create(restaurant).Error
	}

	// The conflict target carries the predicate of the partial unique index
	// on yelp_id so Postgres can match it.
	return p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:     []clause.Column{{Name: "yelp_id"}},
		TargetWhere: clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "yelp_id <> ''"}}},
		DoUpdates:   clause.AssignmentColumns([]string{
			"name", "location", "categories", "rating", "price",
			"address", "address_parts", "image_url", "url",
		}),
	}).Create(restaurant).Error
}
