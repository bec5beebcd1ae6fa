package render

import (
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
)

const defaultBodyWidth = 100

// ColorsEnabled reports whether styled output should be used. NO_COLOR (any
// value) or TERM=dumb turns styling off.
func ColorsEnabled() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

// RenderBody renders a post body for the terminal, wrapped at width columns.
// Line breaks in the body are kept. Without colors the body is returned as
// stored so directives can be copied exactly.
func RenderBody(body string, width int) (string, error) {
	if body == "" || !ColorsEnabled() {
		return body, nil
	}
	if width <= 0 {
		width = defaultBodyWidth
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithEnvironmentConfig(),
		glamour.WithWordWrap(width),
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		return body, err
	}
	rendered, err := r.Render(body)
	if err != nil {
		return body, err
	}
	return strings.TrimSpace(rendered), nil
}
