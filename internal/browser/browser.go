package browser

import (
	"fmt"
	"net/url"

	pkgbrowser "github.com/pkg/browser"
)

// opener is swapped out in tests so no real browser is launched.
var opener = pkgbrowser.OpenURL

// Open launches the system browser on rawURL. Only http and https URLs are
// accepted; story URLs come from a third-party API.
func Open(rawURL string) error {
	if err := Validate(rawURL); err != nil {
		return err
	}
	return opener(rawURL)
}

// Validate reports whether rawURL is safe to hand to the system browser.
func Validate(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("story has no URL")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open URL with scheme %q (only http/https allowed)", u.Scheme)
	}
	return nil
}
