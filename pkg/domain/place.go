package domain

import (
	"fmt"
	"strings"
)

// Coordinate is a WGS84 position.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// String formats the coordinate as "lat,lon" with 4 decimals.
func (c Coordinate) String() string {
	return fmt.Sprintf("%.4f,%.4f", c.Latitude, c.Longitude)
}

// Place is a discoverable location. Bookmarks store full snapshots of it.
type Place struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Category   string     `json:"category"`
	Rating     float64    `json:"rating"`
	Price      int        `json:"price"` // 0-4
	Coordinate Coordinate `json:"coordinate"`
}

// MaxPriceLevel is the most expensive price level.
const MaxPriceLevel = 4

// Place categories. CategoryAll matches every place.
const (
	CategoryAll         = "All"
	CategoryRestaurants = "Restaurants"
	CategoryAttractions = "Attractions"
	CategoryActivities  = "Activities"
	CategoryNightlife   = "Nightlife"
)

// Categories lists the browseable categories in display order.
var Categories = []string{
	CategoryAll,
	CategoryRestaurants,
	CategoryAttractions,
	CategoryActivities,
	CategoryNightlife,
}

// ValidCategory returns true if the given name is a known category.
func ValidCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

// PriceLabel renders a price level as dollar signs ("$" for 0 and 1).
func PriceLabel(level int) string {
	if level < 1 {
		level = 1
	}
	if level > MaxPriceLevel {
		level = MaxPriceLevel
	}
	return strings.Repeat("$", level)
}
