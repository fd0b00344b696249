package wishlist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/imkonsowa/restaurants-chat/models"
)

// MaxCandidates bounds how many partial name matches a resolution may
// surface for disambiguation.
const MaxCandidates = 5

// Store is the slice of the document store the wishlist flow needs.
type Store interface {
	FindRestaurantsByNamePattern(ctx context.Context, pattern string, limit int) ([]models.Restaurant, error)
	GetRestaurant(ctx context.Context, id uint64) (*models.Restaurant, error)

	FindWishlistItem(ctx context.Context, userID string, restaurantID uint64) (*models.WishlistItem, error)
	InsertWishlistItem(ctx context.Context, item *models.WishlistItem) error
	DeleteWishlistItem(ctx context.Context, userID string, restaurantID uint64) (bool, error)
	UpdateWishlistNote(ctx context.Context, userID string, restaurantID uint64, note string) (bool, error)
	ListWishlistItems(ctx context.Context, userID string) ([]models.WishlistItem, error)
}

// Candidate is one restaurant a user-supplied name may refer to.
type Candidate struct {
	ID      uint64 `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Resolution is the outcome of matching a name against the stored
// restaurants: not found, resolved to exactly one, or ambiguous with a
// bounded candidate list. No mutation happens on an ambiguous outcome.
type Resolution struct {
	Restaurant *models.Restaurant
	Candidates []Candidate
}

func (r *Resolution) Resolved() bool {
	return r.Restaurant != nil
}

func (r *Resolution) Ambiguous() bool {
	return len(r.Candidates) > 1
}

func (r *Resolution) NotFound() bool {
	return r.Restaurant == nil && len(r.Candidates) == 0
}

// Result is what a wishlist operation hands back to the conversation
// layer: a user-facing message, plus candidates when disambiguation is
// required.
type Result struct {
	Message    string      `json:"msg"`
	Ambiguous  bool        `json:"ambiguous,omitempty"`
	Candidates []Candidate `json:"candidates,omitempty"`
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Resolve matches name against the restaurant collection,
// case-insensitively, bounded at MaxCandidates.
func (s *Service) Resolve(ctx context.Context, name string) (*Resolution, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return &Resolution{}, nil
	}

	matches, err := s.store.FindRestaurantsByNamePattern(ctx, name, MaxCandidates)
	if err != nil {
		return nil, fmt.Errorf("failed to search restaurants: %w", err)
	}

	switch len(matches) {
	case 0:
		return &Resolution{}, nil
	case 1:
		return &Resolution{Restaurant: &matches[0]}, nil
	default:
		candidates := make([]Candidate, len(matches))
		for i, m := range matches {
			candidates[i] = Candidate{ID: m.ID, Name: m.Name, Address: m.Address}
		}

		return &Resolution{Candidates: candidates}, nil
	}
}

// Add puts the named restaurant on the user's wishlist. An ambiguous name
// returns the candidate list instead of mutating anything; the caller is
// expected to come back through Confirm with an explicit id.
func (s *Service) Add(ctx context.Context, userID, name, note string) (*Result, error) {
	resolution, err := s.Resolve(ctx, name)
	if err != nil {
		return nil, err
	}

	if resolution.NotFound() {
		return &Result{Message: fmt.Sprintf("Can't find a restaurant named **%s**.", name)}, nil
	}

	if resolution.Ambiguous() {
		var b strings.Builder
		fmt.Fprintf(&b, "I found these matches for **%s**. Which one did you mean?\n", name)
		for i, c := range resolution.Candidates {
			fmt.Fprintf(&b, "%d. **%s** - %s\n", i+1, c.Name, c.Address)
		}

		return &Result{
			Message:    b.String(),
			Ambiguous:  true,
			Candidates: resolution.Candidates,
		}, nil
	}

	return s.Confirm(ctx, userID, resolution.Restaurant.ID, note)
}

// Confirm adds a specific restaurant by id, used both for unambiguous
// resolutions and for the explicit candidate pick after an ambiguous one.
// The existence check makes repeated adds effectively idempotent.
func (s *Service) Confirm(ctx context.Context, userID string, restaurantID uint64, note string) (*Result, error) {
	restaurant, err := s.store.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load restaurant: %w", err)
	}
	if restaurant == nil {
		return &Result{Message: "Restaurant not found."}, nil
	}

	existing, err := s.store.FindWishlistItem(ctx, userID, restaurant.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check wishlist: %w", err)
	}
	if existing != nil {
		return &Result{Message: fmt.Sprintf("**%s** is already in your wishlist.", restaurant.Name)}, nil
	}

	item := &models.WishlistItem{
		UserID:         userID,
		RestaurantID:   restaurant.ID,
		RestaurantName: restaurant.Name,
		Note:           note,
		AddedAt:        time.Now().UTC(),
	}
	if err := s.store.InsertWishlistItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to insert wishlist item: %w", err)
	}

	return &Result{Message: fmt.Sprintf("**%s** has been added to your wishlist.", restaurant.Name)}, nil
}

func (s *Service) Delete(ctx context.Context, userID, name string) (*Result, error) {
	resolution, err := s.Resolve(ctx, name)
	if err != nil {
		return nil, err
	}

	if resolution.NotFound() {
		return &Result{Message: fmt.Sprintf("I couldn't find **%s**.", name)}, nil
	}

	if resolution.Ambiguous() {
		return &Result{
			Message:    fmt.Sprintf("Several places match **%s**. Which one should I remove?", name),
			Ambiguous:  true,
			Candidates: resolution.Candidates,
		}, nil
	}

	deleted, err := s.store.DeleteWishlistItem(ctx, userID, resolution.Restaurant.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete wishlist item: %w", err)
	}
	if !deleted {
		return &Result{Message: fmt.Sprintf("**%s** was not in your wishlist.", resolution.Restaurant.Name)}, nil
	}

	return &Result{Message: fmt.Sprintf("**%s** has been removed from your wishlist.", resolution.Restaurant.Name)}, nil
}

func (s *Service) UpdateNote(ctx context.Context, userID, name, note string) (*Result, error) {
	resolution, err := s.Resolve(ctx, name)
	if err != nil {
		return nil, err
	}

	if resolution.NotFound() {
		return &Result{Message: fmt.Sprintf("I couldn't find **%s**.", name)}, nil
	}

	if resolution.Ambiguous() {
		return &Result{
			Message:    fmt.Sprintf("Several places match **%s**. Which note should I update?", name),
			Ambiguous:  true,
			Candidates: resolution.Candidates,
		}, nil
	}

	updated, err := s.store.UpdateWishlistNote(ctx, userID, resolution.Restaurant.ID, note)
	if err != nil {
		return nil, fmt.Errorf("failed to update wishlist note: %w", err)
	}
	if !updated {
		return &Result{Message: fmt.Sprintf("**%s** is not in your wishlist.", resolution.Restaurant.Name)}, nil
	}

	return &Result{Message: fmt.Sprintf("Note for **%s** updated to: %s", resolution.Restaurant.Name, note)}, nil
}

// List renders the user's wishlist as a numbered listing.
func (s *Service) List(ctx context.Context, userID string) (string, error) {
	items, err := s.store.ListWishlistItems(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to list wishlist items: %w", err)
	}

	if len(items) == 0 {
		return "Your wishlist is currently empty.", nil
	}

	var b strings.Builder
	b.WriteString("Here's your wishlist:\n")
	for i, item := range items {
		fmt.Fprintf(&b, "%d. **%s**", i+1, item.RestaurantName)
		if item.Note != "" {
			fmt.Fprintf(&b, " - _%s_", item.Note)
		}
		b.WriteString("\n")
	}

	return strings.TrimSpace(b.String()), nil
}
