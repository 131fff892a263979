package render

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/valpere/tradutor/internal/coordinator"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name    string
		page    Page
		want    []string
		notWant []string
	}{
		{
			name: "translation shown",
			page: Page{State: coordinator.State{
				SourceLang: "pt", TargetLang: "en",
				SourceText: "bom dia", TranslatedText: "good morning",
			}},
			want:    []string{Title, "Português (pt)", "⇄", "Inglês (en)", "bom dia", "good morning"},
			notWant: []string{"✗", LoadingText},
		},
		{
			name: "loading hides translation",
			page: Page{
				State: coordinator.State{
					SourceLang: "pt", TargetLang: "en",
					SourceText: "bom dia", TranslatedText: "old", Loading: true,
				},
				Spinner: "*",
			},
			want:    []string{"* " + LoadingText},
			notWant: []string{"old"},
		},
		{
			name: "error banner keeps translation",
			page: Page{State: coordinator.State{
				SourceLang: "en", TargetLang: "fr",
				SourceText: "hello", TranslatedText: "bonjour", Error: coordinator.MsgCouldNotTranslate,
			}},
			want: []string{"✗ " + coordinator.MsgCouldNotTranslate, "bonjour", "Francês (fr)"},
		},
		{
			name: "editor replaces source box",
			page: Page{
				State:  coordinator.State{SourceLang: "pt", TargetLang: "en", SourceText: "hidden"},
				Editor: "[editor]",
			},
			want:    []string{"[editor]"},
			notWant: []string{"hidden"},
		},
		{
			name: "help appended",
			page: Page{State: coordinator.State{SourceLang: "pt", TargetLang: "en"}, Help: "esc sair"},
			want: []string{"esc sair"},
		},
		{
			name: "unknown code printed raw",
			page: Page{State: coordinator.State{SourceLang: "xx", TargetLang: "en"}},
			want: []string{"xx"},
		},
	}

	st := DefaultStyles()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := st.Render(tt.page)
			for _, s := range tt.want {
				if !strings.Contains(out, s) {
					t.Errorf("expected %q in output:\n%s", s, out)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(out, s) {
					t.Errorf("did not expect %q in output:\n%s", s, out)
				}
			}
		})
	}
}

func TestRender_FitsWidth(t *testing.T) {
	out := DefaultStyles().Render(Page{
		State: coordinator.State{
			SourceLang: "pt", TargetLang: "en",
			SourceText:     strings.Repeat("palavra ", 30),
			TranslatedText: strings.Repeat("word ", 40),
		},
		Width: 40,
	})

	for _, line := range strings.Split(out, "\n") {
		if w := lipgloss.Width(line); w > 40 {
			t.Errorf("line wider than 40 cells (%d): %q", w, line)
		}
	}
}
