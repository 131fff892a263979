/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/valpere/tradutor/internal/catalog"
	"github.com/valpere/tradutor/internal/config"
	"github.com/valpere/tradutor/internal/coordinator"
	"github.com/valpere/tradutor/internal/render"
)

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Interactive translation as you type",
	Long: `Open the translator screen. Every keystroke edits the source text; the
translation is requested once typing has been quiet for the debounce period.

Keys:
  f2            next source language
  f3            next target language
  ctrl+s        swap languages and texts
  ctrl+l        clear the text
  esc, ctrl+c   quit`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Source == config.AutoSource {
			return fmt.Errorf("live mode needs an explicit --source language")
		}

		svc, err := buildService(cfg)
		if err != nil {
			return err
		}

		feed := newStateFeed()
		session, err := coordinator.New(svc, cfg.CoordinatorConfig(),
			coordinator.WithLogger(logger),
			coordinator.WithObserver(feed.publish),
		)
		if err != nil {
			return err
		}

		return runLive(cmd.Context(), session, feed, tea.WithAltScreen())
	},
}

// stateFeed hands coordinator snapshots to the program. publish runs under
// the coordinator lock and never blocks; intermediate snapshots may be
// skipped but the latest one is always delivered.
type stateFeed struct {
	mu    sync.Mutex
	state coordinator.State
	dirty chan struct{}
	done  chan struct{}
	once  sync.Once
}

func newStateFeed() *stateFeed {
	return &stateFeed{
		dirty: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

func (f *stateFeed) publish(s coordinator.State) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()

	select {
	case f.dirty <- struct{}{}:
	default:
	}
}

func (f *stateFeed) latest() coordinator.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// wait returns a command that delivers the next snapshot as a stateMsg, or
// nil once the feed is closed.
func (f *stateFeed) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-f.dirty:
			return stateMsg(f.latest())
		case <-f.done:
			return nil
		}
	}
}

func (f *stateFeed) close() {
	f.once.Do(func() { close(f.done) })
}

type stateMsg coordinator.State

type liveKeyMap struct {
	NextSource key.Binding
	NextTarget key.Binding
	Swap       key.Binding
	Clear      key.Binding
	Quit       key.Binding
}

func (k liveKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextSource, k.NextTarget, k.Swap, k.Clear, k.Quit}
}

func (k liveKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextSource, k.NextTarget},
		{k.Swap, k.Clear, k.Quit},
	}
}

var liveKeys = liveKeyMap{
	NextSource: key.NewBinding(key.WithKeys("f2"), key.WithHelp("f2", "idioma de origem")),
	NextTarget: key.NewBinding(key.WithKeys("f3"), key.WithHelp("f3", "idioma de destino")),
	Swap:       key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "inverter")),
	Clear:      key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "limpar")),
	Quit:       key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "sair")),
}

type liveModel struct {
	session *coordinator.Coordinator
	feed    *stateFeed
	keys    liveKeyMap
	styles  render.Styles

	editor  textarea.Model
	spinner spinner.Model
	help    help.Model

	state coordinator.State
	width int
}

func newLiveModel(session *coordinator.Coordinator, feed *stateFeed) liveModel {
	state := session.State()

	editor := textarea.New()
	editor.Placeholder = "Digite seu texto"
	editor.CharLimit = 0
	editor.ShowLineNumbers = false
	editor.SetWidth(76)
	editor.SetHeight(6)
	editor.SetValue(state.SourceText)
	editor.Focus()

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("11"))),
	)

	return liveModel{
		session: session,
		feed:    feed,
		keys:    liveKeys,
		styles:  render.DefaultStyles(),
		editor:  editor,
		spinner: sp,
		help:    help.New(),
		state:   state,
	}
}

func (m liveModel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick, m.feed.wait())
}

func (m liveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.editor.SetWidth(max(msg.Width-2, 20))
		m.help.Width = msg.Width
		return m, nil

	case stateMsg:
		m.state = coordinator.State(msg)
		return m, m.feed.wait()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Swap):
			m.session.Swap()
			m.state = m.session.State()
			m.editor.SetValue(m.state.SourceText)
			return m, nil
		case key.Matches(msg, m.keys.Clear):
			m.editor.Reset()
			m.session.SetSourceText("")
			m.state = m.session.State()
			return m, nil
		case key.Matches(msg, m.keys.NextSource):
			m.setLanguage(m.session.SetSourceLang, catalog.Cycle(m.state.SourceLang, 1))
			return m, nil
		case key.Matches(msg, m.keys.NextTarget):
			m.setLanguage(m.session.SetTargetLang, catalog.Cycle(m.state.TargetLang, 1))
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	// Unchanged text is a no-op for the session, so every message can sync.
	m.session.SetSourceText(m.editor.Value())
	m.state = m.session.State()
	return m, cmd
}

// setLanguage applies code and shows a rejected code in the error line.
func (m *liveModel) setLanguage(set func(string) error, code string) {
	if err := set(code); err != nil {
		m.state.Error = err.Error()
		return
	}
	m.state = m.session.State()
}

func (m liveModel) View() string {
	return m.styles.Render(render.Page{
		State:   m.state,
		Editor:  m.editor.View(),
		Spinner: m.spinner.View(),
		Help:    m.help.View(m.keys),
		Width:   m.width,
	})
}

// runLive runs the translator screen until the user quits or ctx is
// cancelled, then closes the session.
func runLive(ctx context.Context, session *coordinator.Coordinator, feed *stateFeed, opts ...tea.ProgramOption) error {
	defer session.Close()
	defer feed.close()

	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(newLiveModel(session, feed), opts...)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("terminal session failed: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(liveCmd)
}
