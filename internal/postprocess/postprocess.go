// Package postprocess optionally cleans translated text from a remote service
// before it is shown.
//
// Translation memories return segments that were often harvested from web
// pages, so the text can carry HTML entities or stray tags. By default the
// text is kept exactly as the service sent it.
package postprocess

import (
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// Mode selects how much cleanup Apply performs.
type Mode string

const (
	// ModeNone keeps the text verbatim.
	ModeNone Mode = "none"
	// ModeEntities decodes HTML entities and leaves everything else alone.
	ModeEntities Mode = "entities"
	// ModeStrip removes markup, then decodes entities. Any "<" that starts
	// something tag-like is lost along with what follows it.
	ModeStrip Mode = "strip"
)

var (
	strictPolicy *bluemonday.Policy
	initOnce     sync.Once
)

func policy() *bluemonday.Policy {
	initOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strictPolicy
}

// ParseMode accepts the config spelling of a mode. Empty means ModeNone.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeNone, nil
	case ModeNone, ModeEntities, ModeStrip:
		return m, nil
	default:
		return "", fmt.Errorf("unknown cleanup mode %q (want none, entities or strip)", s)
	}
}

// Apply cleans text according to mode. Whitespace is never touched and an
// unknown mode behaves like ModeNone.
func Apply(mode Mode, text string) string {
	switch mode {
	case ModeEntities:
		return html.UnescapeString(text)
	case ModeStrip:
		// bluemonday escapes the text it keeps, so one unescape gives plain
		// text back.
		return html.UnescapeString(policy().Sanitize(text))
	default:
		return text
	}
}
