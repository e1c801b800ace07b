// Package catalog holds the built-in place data and the Explore filters.
package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/naveenspark/roam/pkg/domain"
)

// Places is the built-in catalog used when no remote catalog is configured.
var Places = []domain.Place{
	{ID: "1", Name: "Central Park", Category: domain.CategoryAttractions, Rating: 4.8, Price: 2,
		Coordinate: domain.Coordinate{Latitude: 40.7829, Longitude: -73.9654}},
	{ID: "2", Name: "Joe's Pizza", Category: domain.CategoryRestaurants, Rating: 4.5, Price: 1,
		Coordinate: domain.Coordinate{Latitude: 40.7306, Longitude: -74.0021}},
	{ID: "3", Name: "Sushi Nakazawa", Category: domain.CategoryRestaurants, Rating: 4.7, Price: 4,
		Coordinate: domain.Coordinate{Latitude: 40.7317, Longitude: -74.0052}},
	{ID: "4", Name: "The Metropolitan Museum of Art", Category: domain.CategoryAttractions, Rating: 4.9, Price: 3,
		Coordinate: domain.Coordinate{Latitude: 40.7794, Longitude: -73.9632}},
	{ID: "5", Name: "Brooklyn Bridge Walk", Category: domain.CategoryActivities, Rating: 4.7, Price: 0,
		Coordinate: domain.Coordinate{Latitude: 40.7061, Longitude: -73.9969}},
	{ID: "6", Name: "Chelsea Piers Climbing", Category: domain.CategoryActivities, Rating: 4.3, Price: 3,
		Coordinate: domain.Coordinate{Latitude: 40.7465, Longitude: -74.0086}},
	{ID: "7", Name: "Blue Note Jazz Club", Category: domain.CategoryNightlife, Rating: 4.6, Price: 3,
		Coordinate: domain.Coordinate{Latitude: 40.7309, Longitude: -74.0006}},
	{ID: "8", Name: "Trattoria Trecolori", Category: domain.CategoryRestaurants, Rating: 4.4, Price: 2,
		Coordinate: domain.Coordinate{Latitude: 40.7600, Longitude: -73.9860}},
}

// Filter narrows the catalog. Zero values match everything except
// MaxPrice, where zero means "no limit".
type Filter struct {
	Query     string
	Category  string
	MaxPrice  int
	MinRating float64
}

// Match reports whether p satisfies f.
func (f Filter) Match(p domain.Place) bool {
	if f.Category != "" && f.Category != domain.CategoryAll && p.Category != f.Category {
		return false
	}
	if f.MaxPrice > 0 && p.Price > f.MaxPrice {
		return false
	}
	if p.Rating < f.MinRating {
		return false
	}
	if q := strings.TrimSpace(strings.ToLower(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Category), q) {
			return false
		}
	}
	return true
}

// Search returns the places matching f, preserving catalog order.
func Search(places []domain.Place, f Filter) []domain.Place {
	out := make([]domain.Place, 0, len(places))
	for _, p := range places {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// TopRated returns up to n places of category sorted by rating, best first.
func TopRated(places []domain.Place, category string, n int) []domain.Place {
	matches := Search(places, Filter{Category: category})
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Rating > matches[j].Rating
	})
	if n > 0 && len(matches) > n {
		matches = matches[:n]
	}
	return matches
}

// ByID returns the place with the given ID.
func ByID(places []domain.Place, id string) (domain.Place, bool) {
	for _, p := range places {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Place{}, false
}

// Static serves a fixed place list with the same method set as the HTTP
// client, so the UI can use either.
type Static []domain.Place

// ListPlaces returns the places in category; All or empty returns every place.
func (s Static) ListPlaces(ctx context.Context, category string) ([]domain.Place, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Search(s, Filter{Category: category}), nil
}
