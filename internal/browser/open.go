package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"

	"github.com/naveenspark/roam/pkg/domain"
)

// command returns the OS launcher for url.
func command(goos, url string) (*exec.Cmd, error) {
	switch goos {
	case "darwin":
		return exec.Command("open", url), nil
	case "linux":
		return exec.Command("xdg-open", url), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url), nil
	default:
		return nil, fmt.Errorf("unsupported OS: %s", goos)
	}
}

// Open opens the specified URL in the user's default browser.
func Open(url string) error {
	cmd, err := command(runtime.GOOS, url)
	if err != nil {
		return err
	}
	return cmd.Start()
}

// DirectionsURL returns a Google Maps link routing to c.
func DirectionsURL(c domain.Coordinate) string {
	q := url.Values{}
	q.Set("api", "1")
	q.Set("destination", c.String())
	return "https://www.google.com/maps/dir/?" + q.Encode()
}

// Directions opens DirectionsURL for the place.
func Directions(p domain.Place) error {
	return Open(DirectionsURL(p.Coordinate))
}
