// Package catalog holds the fixed set of languages offered by the selectors.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// ErrUnsupported is returned for codes outside the catalog.
var ErrUnsupported = errors.New("unsupported language")

const (
	DefaultSource = "pt"
	DefaultTarget = "en"
)

// Language is a single catalog entry.
type Language struct {
	Code string
	Name string
}

var languages = []Language{
	{Code: "en", Name: "Inglês"},
	{Code: "es", Name: "Espanhol"},
	{Code: "fr", Name: "Francês"},
	{Code: "de", Name: "Alemão"},
	{Code: "it", Name: "Italiano"},
	{Code: "pt", Name: "Português"},
}

// All returns a copy of the catalog in display order.
func All() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}

// Codes returns the catalog codes in display order.
func Codes() []string {
	codes := make([]string, len(languages))
	for i, l := range languages {
		codes[i] = l.Code
	}
	return codes
}

// Lookup finds an entry by its exact code.
func Lookup(code string) (Language, bool) {
	for _, l := range languages {
		if l.Code == code {
			return l, true
		}
	}
	return Language{}, false
}

// Cycle steps through the catalog from code, wrapping at either end. An
// unknown code starts from the first entry.
func Cycle(code string, step int) string {
	i := 0
	for j, l := range languages {
		if l.Code == code {
			i = j
			break
		}
	}
	n := len(languages)
	return languages[((i+step)%n+n)%n].Code
}

// Normalize maps user input such as "PT", "pt-BR" or "pt_PT" onto a catalog
// code. Only the base language of the tag is considered.
func Normalize(code string) (string, error) {
	raw := strings.TrimSpace(code)
	if raw == "" {
		return "", fmt.Errorf("%w: empty code", ErrUnsupported)
	}

	tag, err := language.Parse(strings.ReplaceAll(raw, "_", "-"))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupported, raw)
	}

	base, _ := tag.Base()
	if _, ok := Lookup(base.String()); !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupported, raw)
	}
	return base.String(), nil
}

// Validate reports whether code is an exact catalog code.
func Validate(code string) error {
	if _, ok := Lookup(code); !ok {
		return fmt.Errorf("%w: %q", ErrUnsupported, code)
	}
	return nil
}

// Tag returns the BCP 47 tag of the entry.
func (l Language) Tag() language.Tag {
	return language.Make(l.Code)
}

// NativeName is the language's name written in that language, e.g. "Deutsch".
func (l Language) NativeName() string {
	return display.Self.Name(l.Tag())
}

func (l Language) String() string {
	return fmt.Sprintf("%s (%s)", l.Name, l.Code)
}
