package domain

// User is the profile returned by the auth endpoint.
type User struct {
	ID          int64       `json:"id"`
	Email       string      `json:"email"`
	Name        string      `json:"name"`
	Preferences Preferences `json:"preferences"`
}

// Preferences holds the user's discovery preferences.
type Preferences struct {
	CuisineTypes []string `json:"cuisineTypes,omitempty"`
	BudgetRange  string   `json:"budgetRange,omitempty"` // "low", "medium", "high"
}

// DisplayName returns the user's name, or "Traveler" when unknown.
func (u *User) DisplayName() string {
	if u == nil || u.Name == "" {
		return "Traveler"
	}
	return u.Name
}
