package domain

// Review is a user's rating and comment for a place.
type Review struct {
	ID      string `json:"id"`
	PlaceID string `json:"placeId"`
	User    string `json:"user"`
	Rating  int    `json:"rating"` // 1-5
	Comment string `json:"comment"`
	Date    string `json:"date"` // YYYY-MM-DD
}
