// Package reviews holds place reviews in memory for the session. Every
// place starts with one sample review.
package reviews

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/naveenspark/roam/pkg/domain"
)

const DateLayout = "2006-01-02"

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

var (
	ErrRating  = errors.New("rating must be between 1 and 5")
	ErrComment = errors.New("comment is required")
	ErrPlace   = errors.New("place id is required")
)

var seedNamespace = uuid.MustParse("8f0d4b8e-3c55-4f8e-9a57-2d8a1b2f6c10")

func seed(placeID string) domain.Review {
	return domain.Review{
		ID:      uuid.NewSHA1(seedNamespace, []byte(placeID)).String(),
		PlaceID: placeID,
		User:    "John Doe",
		Rating:  4,
		Comment: "Great place! Highly recommend.",
		Date:    "2024-02-10",
	}
}

// Board is safe for concurrent use.
type Board struct {
	mu      sync.Mutex
	byPlace map[string][]domain.Review
	now     func() time.Time
}

func NewBoard() *Board {
	return &Board{byPlace: make(map[string][]domain.Review), now: time.Now}
}

// List returns the place's reviews, newest first.
func (b *Board) List(placeID string) []domain.Review {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.Review(nil), b.reviews(placeID)...)
}

// Add validates and prepends a review.
func (b *Board) Add(placeID, user string, rating int, comment string) (domain.Review, error) {
	comment = strings.TrimSpace(comment)
	switch {
	case placeID == "":
		return domain.Review{}, ErrPlace
	case rating < MinRating || rating > MaxRating:
		return domain.Review{}, ErrRating
	case comment == "":
		return domain.Review{}, ErrComment
	}
	if user == "" {
		user = "Current User"
	}

	r := domain.Review{
		ID:      uuid.NewString(),
		PlaceID: placeID,
		User:    user,
		Rating:  rating,
		Comment: comment,
		Date:    b.now().Format(DateLayout),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.byPlace[placeID] = append([]domain.Review{r}, b.reviews(placeID)...)
	return r, nil
}

// Average returns the mean rating, or 0 with no reviews.
func Average(rs []domain.Review) float64 {
	if len(rs) == 0 {
		return 0
	}
	sum := 0
	for _, r := range rs {
		sum += r.Rating
	}
	return float64(sum) / float64(len(rs))
}

func (b *Board) reviews(placeID string) []domain.Review {
	rs, ok := b.byPlace[placeID]
	if !ok {
		rs = []domain.Review{seed(placeID)}
		b.byPlace[placeID] = rs
	}
	return rs
}
