package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/roam/internal/validate"
	"github.com/naveenspark/roam/pkg/domain"
)

// Shimmer animation for the ROAM logo.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmerLogo renders "R O A M" as a wave of light moving from deep
// teal (#0f3a40) to bright cyan (#5eead4).
func renderShimmerLogo(frame int) string {
	const text = "ROAM"
	n := len(text)

	var out string
	t := float64(frame)

	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)

		phase := t*0.1 - x*3.0
		phase += math.Sin(t*0.023) * 2.0

		b := math.Sin(phase)*0.5 + 0.5
		b = math.Pow(b, 1.3)

		tide := math.Sin(t*0.035) * 0.12
		b = b*0.75 + tide + 0.18

		if b > 1.0 {
			b = 1.0
		} else if b < 0.05 {
			b = 0.05
		}

		// Deep:   (15, 58, 64)   #0f3a40
		// Bright: (94, 234, 212) #5eead4
		r := clampByte(15 + b*(94-15))
		g := clampByte(58 + b*(234-58))
		bl := clampByte(64 + b*(212-64))

		color := fmt.Sprintf("#%02X%02X%02X", r, g, bl)

		s := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(color))
		out += s.Render(string(text[i]))

		if i < n-1 {
			out += "  "
		}
	}

	return out
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Help bar
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	searchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5eead4")).
			Bold(true)

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#2dd4bf"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e06060"))

	starStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffd700"))

	priceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#34d474"))

	savedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f59e0b")).
			Bold(true)

	selectedRowBg = lipgloss.NewStyle().Background(lipgloss.Color("#1e1e2a"))

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#606878"))

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#2dd4bf")).
				Bold(true)

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#343c4a"))

	categoryColors = map[string]lipgloss.Color{
		domain.CategoryRestaurants: lipgloss.Color("#f0944a"),
		domain.CategoryAttractions: lipgloss.Color("#60a0e0"),
		domain.CategoryActivities:  lipgloss.Color("#43e88c"),
		domain.CategoryNightlife:   lipgloss.Color("#c084e0"),
	}

	// Password strength colors, matching the Weak/Medium/Strong buckets.
	strengthColors = map[string]lipgloss.Color{
		"Weak":   lipgloss.Color("#ff4444"),
		"Medium": lipgloss.Color("#ffbb33"),
		"Strong": lipgloss.Color("#00c851"),
	}
)

// CategoryStyle returns a bold style colored for the given category.
func CategoryStyle(category string) lipgloss.Style {
	if c, ok := categoryColors[category]; ok {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#606878")).Bold(true)
}

// renderStars draws a 0..5 rating as filled and empty stars.
func renderStars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	return starStyle.Render(strings.Repeat("★", rating)) + metaStyle.Render(strings.Repeat("☆", 5-rating))
}

// renderStrength draws the password strength meter.
func renderStrength(password string, width int) string {
	score := validate.PasswordStrength(password)
	label := validate.StrengthLabel(score)
	if width < validate.MaxStrength {
		width = validate.MaxStrength
	}
	filled := score * width / validate.MaxStrength
	style := lipgloss.NewStyle().Foreground(strengthColors[label])
	return style.Render(strings.Repeat("█", filled)) +
		metaStyle.Render(strings.Repeat("░", width-filled)) + " " + style.Render(label)
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// helpView renders the help overlay.
func helpView(version string) string {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#5eead4")).
		Bold(true).
		Render("R O A M")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)

	commands := []struct{ cmd, desc string }{
		{"roam", "Browse places (interactive TUI)"},
		{"roam login EMAIL PASSWORD", "Sign in without the TUI"},
		{"roam logout", "Clear your session"},
		{"roam whoami", "Show the signed-in user"},
		{"roam version", "Show version"},
	}
	keys := []struct{ key, desc string }{
		{"1 2 3", "Home, Explore, Saved"},
		{"enter", "Open place"},
		{"s", "Save or unsave place"},
		{"c", "Copy coordinates"},
		{"d", "Directions in browser"},
		{"a", "Write a review"},
		{"o", "Sign out"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s  %s\n\n", title, metaStyle.Render(version))

	fmt.Fprintf(&b, "  %s\n", sectionStyle.Render("Commands"))
	for _, c := range commands {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-26s", c.cmd)), descStyle.Render(c.desc))
	}
	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Keys"))
	for _, k := range keys {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-26s", k.key)), descStyle.Render(k.desc))
	}
	return b.String()
}
