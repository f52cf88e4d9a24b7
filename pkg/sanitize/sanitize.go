package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Text strips every HTML tag from user supplied text and trims whitespace.
func Text(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}
