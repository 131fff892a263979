package detector

import (
	"fmt"
	"strings"

	lingua "github.com/pemistahl/lingua-go"
)

var linguaByCode = map[string]lingua.Language{
	"en": lingua.English,
	"es": lingua.Spanish,
	"fr": lingua.French,
	"de": lingua.German,
	"it": lingua.Italian,
	"pt": lingua.Portuguese,
}

// Detector guesses the language of a text among a fixed set of candidates.
// Building one is expensive; reuse the instance.
type Detector struct {
	detector lingua.LanguageDetector
}

// New builds a detector restricted to the given ISO 639-1 codes. At least two
// known codes are required.
func New(codes []string) (*Detector, error) {
	langs := make([]lingua.Language, 0, len(codes))
	for _, code := range codes {
		l, ok := linguaByCode[strings.ToLower(code)]
		if !ok {
			return nil, fmt.Errorf("no detection model for language %q", code)
		}
		langs = append(langs, l)
	}
	if len(langs) < 2 {
		return nil, fmt.Errorf("need at least two candidate languages, got %d", len(langs))
	}

	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(langs...).
		Build()

	return &Detector{detector: detector}, nil
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	if strings.TrimSpace(text) == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

// DetectISO returns the lower-case ISO 639-1 code of the detected language.
func (d *Detector) DetectISO(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}
