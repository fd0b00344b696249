package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/imkonsowa/restaurants-chat/models"
)

type Pg struct {
	db *gorm.DB
}

func NewPg(connStr string) (*Pg, error) {
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Silent,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.Open(connStr), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, err
	}

	return &Pg{db: db}, nil
}

// The ingest upsert conflicts on yelp_id, which needs a unique index to
// back it. It is partial so rows created through the admin endpoint, which
// carry an empty yelp_id, stay insertable in any number.
const restaurantsYelpIDIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_restaurants_yelp_id ON restaurants (yelp_id) WHERE yelp_id <> ''`

func (p *Pg) Migrate() error {
	if err := p.db.AutoMigrate(
		&models.Restaurant{},
		&models.WishlistItem{},
		&models.Conversation{},
	); err != nil {
		return err
	}

	return p.ensureIndexes()
}

func (p *Pg) ensureIndexes() error {
	return p.db.Exec(restaurantsYelpIDIndex).Error
}

// ---- restaurants ----

func (p *Pg) CreateRestaurants(ctx context.Context, restaurants []models.Restaurant) error {
	if err := p.db.WithContext(ctx).Create(&restaurants).Error; err != nil {
		return fmt.Errorf("failed to create restaurants: %w", err)
	}

	return nil
}

func (p *Pg) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	var restaurants []models.Restaurant
	if err := p.db.WithContext(ctx).Find(&restaurants).Error; err != nil {
		return nil, fmt.Errorf("failed to list restaurants: %w", err)
	}

	return restaurants, nil
}

func (p *Pg) FindRestaurantsByNamePattern(ctx context.Context, pattern string, limit int) ([]models.Restaurant, error) {
	var restaurants []models.Restaurant
	err := p.db.WithContext(ctx).
		Where("name ILIKE ?", "%"+pattern+"%").
		Limit(limit).
		Find(&restaurants).Error
	if err != nil {
		return nil, fmt.Errorf("failed to match restaurants by name: %w", err)
	}

	return restaurants, nil
}

func (p *Pg) GetRestaurant(ctx context.Context, id uint64) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	err := p.db.WithContext(ctx).First(&restaurant, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load restaurant: %w", err)
	}

	return &restaurant, nil
}

func (p *Pg) SearchRestaurants(ctx context.Context, query models.ParsedQuery, limit int) ([]models.Restaurant, error) {
	q := p.db.WithContext(ctx).
		Where("location ILIKE ?", query.Location).
		Where("categories ILIKE ?", "%"+query.Categories+"%").
		Limit(limit)

	if query.Rating > 0 {
		q = q.Where("rating >= ?", query.Rating)
	}
	if query.Price != "" {
		q = q.Where("price = ?", query.Price)
	}

	var restaurants []models.Restaurant
	if err := q.Find(&restaurants).Error; err != nil {
		return nil, fmt.Errorf("failed to search restaurants: %w", err)
	}

	return restaurants, nil
}

// ---- conversations ----

func (p *Pg) LogConversation(ctx context.Context, turn *models.Conversation) error {
	if err := p.db.WithContext(ctx).Create(turn).Error; err != nil {
		return fmt.Errorf("failed to log conversation: %w", err)
	}

	return nil
}

// LastParsedWithLocation returns the parsed query of the most recent turn
// in the session that carried a location, or nil when no such turn exists.
func (p *Pg) LastParsedWithLocation(ctx context.Context, sessionID string) (*models.ParsedQuery, error) {
	var turn models.Conversation
	err := p.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Where("parsed->>'location' IS NOT NULL AND parsed->>'location' <> ''").
		Order("timestamp DESC").
		First(&turn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session context: %w", err)
	}

	return &turn.Parsed, nil
}

func (p *Pg) History(ctx context.Context, sessionID string, limit int) ([]models.Conversation, error) {
	var turns []models.Conversation
	err := p.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&turns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	return turns, nil
}

// ---- wishlist ----

func (p *Pg) FindWishlistItem(ctx context.Context, userID string, restaurantID uint64) (*models.WishlistItem, error) {
	var item models.WishlistItem
	err := p.db.WithContext(ctx).
		First(&item, "user_id = ? AND restaurant_id = ?", userID, restaurantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load wishlist item: %w", err)
	}

	return &item, nil
}

func (p *Pg) InsertWishlistItem(ctx context.Context, item *models.WishlistItem) error {
	if err := p.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("failed to insert wishlist item: %w", err)
	}

	return nil
}

func (p *Pg) DeleteWishlistItem(ctx context.Context, userID string, restaurantID uint64) (bool, error) {
	res := p.db.WithContext(ctx).
		Where("user_id = ? AND restaurant_id = ?", userID, restaurantID).
		Delete(&models.WishlistItem{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete wishlist item: %w", res.Error)
	}

	return res.RowsAffected > 0, nil
}

func (p *Pg) UpdateWishlistNote(ctx context.Context, userID string, restaurantID uint64, note string) (bool, error) {
	res := p.db.WithContext(ctx).
		Model(&models.WishlistItem{}).
		Where("user_id = ? AND restaurant_id = ?", userID, restaurantID).
		Update("note", note)
	if res.Error != nil {
		return false, fmt.Errorf("failed to update wishlist note: %w", res.Error)
	}

	return res.RowsAffected > 0, nil
}

func (p *Pg) ListWishlistItems(ctx context.Context, userID string) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	err := p.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("added_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist items: %w", err)
	}

	return items, nil
}
