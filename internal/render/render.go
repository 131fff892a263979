// Package render lays out a translation session as a terminal page: the
// language selectors, the input area, the output box with its loading
// indicator and the error banner.
package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/valpere/tradutor/internal/catalog"
	"github.com/valpere/tradutor/internal/coordinator"
)

const (
	Title       = "Tradutor Dev"
	LoadingText = "Traduzindo..."

	defaultWidth = 80
	minWidth     = 24
)

type Styles struct {
	Title    lipgloss.Style
	Language lipgloss.Style
	Swap     lipgloss.Style
	Label    lipgloss.Style
	Box      lipgloss.Style
	Loading  lipgloss.Style
	Error    lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("6")).
			Padding(0, 1),
		Language: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("4")),
		Swap: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			Padding(0, 2),
		Label: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("2")),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1),
		Loading: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Italic(true),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true).
			Padding(0, 1),
	}
}

// Page is one frame. Editor, Spinner and Help are already rendered by their
// components; an empty Editor shows State.SourceText in a plain box.
type Page struct {
	State   coordinator.State
	Editor  string
	Spinner string
	Help    string
	Width   int
}

func (st Styles) Render(p Page) string {
	width := p.Width
	if width <= 0 {
		width = defaultWidth
	}
	width = max(width, minWidth)
	// Box width excludes the border.
	boxWidth := width - 2

	var s strings.Builder

	s.WriteString(st.Title.Render(Title))
	s.WriteString("\n")
	s.WriteString(strings.Repeat("─", width))
	s.WriteString("\n")
	s.WriteString(st.Selectors(p.State))
	s.WriteString("\n\n")

	if p.Editor != "" {
		s.WriteString(p.Editor)
	} else {
		s.WriteString(st.Box.Width(boxWidth).Render(p.State.SourceText))
	}
	s.WriteString("\n\n")

	s.WriteString(st.Label.Render("Tradução"))
	s.WriteString("\n")
	s.WriteString(st.Box.Width(boxWidth).Render(st.output(p)))
	s.WriteString("\n")

	if p.State.Error != "" {
		s.WriteString(st.Error.Width(width).Render("✗ " + p.State.Error))
		s.WriteString("\n")
	}

	if p.Help != "" {
		s.WriteString("\n")
		s.WriteString(p.Help)
	}
	return s.String()
}

// Selectors renders "source ⇄ target".
func (st Styles) Selectors(s coordinator.State) string {
	return lipgloss.JoinHorizontal(lipgloss.Center,
		st.Language.Render(languageLabel(s.SourceLang)),
		st.Swap.Render("⇄"),
		st.Language.Render(languageLabel(s.TargetLang)),
	)
}

// output hides the previous translation while an attempt is in flight.
func (st Styles) output(p Page) string {
	if !p.State.Loading {
		return p.State.TranslatedText
	}
	loading := st.Loading.Render(LoadingText)
	if p.Spinner == "" {
		return loading
	}
	return p.Spinner + " " + loading
}

func languageLabel(code string) string {
	if l, ok := catalog.Lookup(code); ok {
		return l.String()
	}
	return code
}
