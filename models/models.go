package models

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Location struct {
	Lon, Lat float64
}

func NewGeoPoint(lng, lat float64) Location {
	return Location{
		Lon: lng,
		Lat: lat,
	}
}

func (g *Location) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case string:
		var err error
		data, err = hex.DecodeString(v)
		if err != nil {
			return err
		}
	case []byte:
		data = v
	default:
		return fmt.Errorf("expected string or []byte, got %T", value)
	}

	t, err := ewkb.Unmarshal(data)
	if err != nil {
		return err
	}

	if point, ok := t.(*geom.Point); ok {
		g.Lon = point.X()
		g.Lat = point.Y()

		return nil
	}

	return fmt.Errorf("expected Point, got %T", t)
}

func (loc Location) GormDataType() string {
	return "geometry"
}

func (loc Location) GormValue(ctx context.Context, db *gorm.DB) clause.Expr {
	return clause.Expr{
		SQL:  "ST_PointFromText(?)",
		Vars: []interface{}{fmt.Sprintf("POINT(%f %f)", loc.Lon, loc.Lat)},
	}
}

// ParsedQuery holds the structured search fields extracted from a user turn.
// Location and Categories are required for a complete search.
type ParsedQuery struct {
	Location   string  `json:"location,omitempty"`
	Categories string  `json:"categories,omitempty"`
	Rating     float64 `json:"rating,omitempty"`
	Price      string  `json:"price,omitempty"`
}

// Missing returns the required fields still unset, in a fixed order.
func (p ParsedQuery) Missing() []string {
	var missing []string
	if p.Location == "" {
		missing = append(missing, "location")
	}
	if p.Categories == "" {
		missing = append(missing, "categories")
	}

	return missing
}

func (p ParsedQuery) Complete() bool {
	return len(p.Missing()) == 0
}

type Restaurant struct {
	ID           uint64         `gorm:"primaryKey" json:"id"`
	// Uniqueness is enforced by a partial index for non-empty values only,
	// so admin-created rows without an upstream id can coexist.
	YelpID       string         `json:"yelp_id,omitempty"`
	Name         string         `json:"name"`
	Location     string         `json:"location"`
	Categories   string         `json:"categories"`
	Rating       float64        `json:"rating"`
	Price        string         `json:"price,omitempty"`
	Address      string         `json:"address"`
	AddressParts pq.StringArray `gorm:"type:text[]" json:"address_parts,omitempty"`
	ImageURL     string         `json:"img,omitempty"`
	URL          string         `json:"url,omitempty"`
	Coordinates  Location       `json:"coordinates"`
}

func (r *Restaurant) TableName() string {
	return "restaurants"
}

func (r *Restaurant) Stringify() string {
	return fmt.Sprintf("Restaurant: %s (%.1f stars) at %s", r.Name, r.Rating, r.Address)
}

// WishlistItem references a stored restaurant. At most one item may exist
// per (user, restaurant) pair, enforced by a check before insert.
type WishlistItem struct {
	ID             uint64    `gorm:"primaryKey" json:"id"`
	UserID         string    `gorm:"index" json:"user_id"`
	RestaurantID   uint64    `gorm:"index" json:"restaurant_id"`
	RestaurantName string    `json:"restaurant_name"`
	Note           string    `json:"note,omitempty"`
	AddedAt        time.Time `json:"added_at"`
}

func (w *WishlistItem) TableName() string {
	return "wishlists"
}

// Conversation is one logged turn of a session. The ordered sequence of
// turns per session id is the only durable trace of a session.
type Conversation struct {
	ID        uint64       `gorm:"primaryKey" json:"id"`
	SessionID string       `gorm:"index" json:"session_id"`
	Timestamp time.Time    `gorm:"index" json:"timestamp"`
	UserInput string       `json:"user_input"`
	Response  string       `json:"response"`
	Intent    string       `json:"intent"`
	Parsed    ParsedQuery  `gorm:"type:jsonb;serializer:json" json:"parsed"`
	Results   []Restaurant `gorm:"type:jsonb;serializer:json" json:"results,omitempty"`
}

func (c *Conversation) TableName() string {
	return "conversations"
}

func (c *Conversation) Summary() string {
	resp := c.Response
	if len(resp) > 120 {
		resp = resp[:120] + "..."
	}

	return strings.TrimSpace(fmt.Sprintf("%s: %s", c.UserInput, resp))
}
