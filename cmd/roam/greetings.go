package main

import (
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/lipgloss"
)

var welcomeLines = [...]string{
	"The map is open. Pick a corner of it.",
	"Somewhere nearby, a table by the window is free.",
	"Good places are rarely more than a short walk away.",
	"The best rooftop in town does not advertise. Go look.",
	"A park, a bridge and a late dinner. Start with any of them.",
	"Your saved list is waiting to get longer.",
	"Tonight's plan: something you have not tried yet.",
	"The city rewards the curious. Press 2 to explore.",
}

var (
	brandColor = lipgloss.Color("#2dd4bf")
	mutedColor = lipgloss.Color("245")
)

func printHelp(out io.Writer) {
	title := lipgloss.NewStyle().
		Foreground(brandColor).
		Bold(true).
		Render("R O A M")

	tagline := lipgloss.NewStyle().
		Foreground(mutedColor).
		Italic(true).
		Render("Discover places worth the trip.")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(mutedColor)
	commands := []struct{ cmd, desc string }{
		{"roam", "Browse places (interactive TUI)"},
		{"roam login <email> <pw>", "Sign in and remember the session"},
		{"roam logout", "Clear the stored session"},
		{"roam whoami", "Show the signed-in user"},
		{"roam --version", "Show version"},
		{"roam help", "You are here"},
	}

	fmt.Fprintf(out, "\n  %s\n\n  %s\n\n  Commands:\n", title, tagline)
	for _, c := range commands {
		fmt.Fprintf(out, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-24s", c.cmd)), descStyle.Render(c.desc))
	}
	env := lipgloss.NewStyle().Foreground(mutedColor).Render("Settings: ROAM_API_URL, ROAM_STORE, ROAM_LOG_LEVEL (see .env)")
	fmt.Fprintf(out, "\n  %s\n\n", env)
}

func printWelcome(out io.Writer, name string) {
	msg := welcomeLines[rand.IntN(len(welcomeLines))]

	title := lipgloss.NewStyle().
		Foreground(brandColor).
		Bold(true).
		Render("Signed in as " + name)

	quote := lipgloss.NewStyle().
		Foreground(mutedColor).
		Italic(true).
		Render(msg)

	hint := lipgloss.NewStyle().
		Foreground(mutedColor).
		Render("To browse: roam")

	fmt.Fprintf(out, "\n%s\n\n%s\n\n%s\n\n", title, quote, hint)
}
