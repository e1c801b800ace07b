package tui

import (
	"fmt"
	"unicode/utf8"

	"github.com/naveenspark/roam/pkg/domain"
)

// truncStr truncates a string to maxLen runes, appending an ellipsis if needed.
func truncStr(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-1]) + "…"
}

// placeLine renders a one-line summary: name, category, rating, price.
func placeLine(p domain.Place, nameWidth int) string {
	name := fmt.Sprintf("%-*s", nameWidth, truncStr(p.Name, nameWidth))
	return normalStyle.Render(name) + "  " +
		CategoryStyle(p.Category).Render(fmt.Sprintf("%-11s", p.Category)) + "  " +
		starStyle.Render(fmt.Sprintf("★ %.1f", p.Rating)) + "  " +
		priceStyle.Render(domain.PriceLabel(p.Price))
}

// maskPassword hides all but the length of a password.
func maskPassword(s string) string {
	n := utf8.RuneCountInString(s)
	out := make([]rune, n)
	for i := range out {
		out[i] = '•'
	}
	return string(out)
}
