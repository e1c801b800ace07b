package validate

import "regexp"

// MaxStrength is the highest score PasswordStrength returns.
const MaxStrength = 6

// PasswordStrength scores a password from 0 to MaxStrength: one point
// each for reaching 8 and 12 characters, and one per character class.
func PasswordStrength(password string) int {
	if password == "" {
		return 0
	}
	score := 0
	if len(password) >= 8 {
		score++
	}
	if len(password) >= 12 {
		score++
	}
	for _, re := range []*regexp.Regexp{hasNumber, hasUpper, hasLower, hasSpecial} {
		if re.MatchString(password) {
			score++
		}
	}
	return score
}

// StrengthLabel buckets a score.
func StrengthLabel(score int) string {
	switch {
	case score < 2:
		return "Weak"
	case score < 4:
		return "Medium"
	default:
		return "Strong"
	}
}
