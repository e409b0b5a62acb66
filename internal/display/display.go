// Package display provides the recipe search screen using Bubble Tea.
//
// All screen state lives in [Model] and changes only in Update. Slow
// work (searches, cache reads, voice start/stop) runs inside tea.Cmds
// and reports back as messages. Voice results arrive from the engine's
// goroutine through a channel that a re-arming Cmd drains.
package display

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/recipebot/internal/conversation"
	"github.com/hammamikhairi/recipebot/internal/domain"
	"github.com/hammamikhairi/recipebot/internal/logger"
	"github.com/hammamikhairi/recipebot/internal/speech"
)

// ── Styles ───────────────────────────────────────────────────────

var (
	barBg = lipgloss.NewStyle().
		Background(lipgloss.Color("#27272a")).
		Foreground(lipgloss.Color("#a1a1aa"))

	listeningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5")).
			Bold(true)

	idleVoiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	// BannerStyle is muted slate for the title banner.
	BannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd")).
			Bold(true)

	stepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0"))

	primaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	secondaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	placeholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#71717a")).
				Italic(true)

	alertStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5"))

	inputTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a1a1aa"))
)

// Labels of the voice control.
const (
	LabelUseVoice      = "Use Voice"
	LabelStopListening = "Stop Listening"
)

// AlertEmptyQuery is shown when a search is submitted with no text.
const AlertEmptyQuery = "Please provide input for the search."

// ── Ports ────────────────────────────────────────────────────────

// Searcher runs the recipe pipeline.
type Searcher interface {
	Search(ctx context.Context, query string) ([]domain.HydratedRecipe, error)
	LoadSaved(ctx context.Context) ([]domain.HydratedRecipe, bool)
}

// VoiceControl is the voice adapter as the screen sees it.
type VoiceControl interface {
	Start(ctx context.Context, locale string) error
	Stop() error
	Listening() bool
	Subscribe(onResult func(string), onError func(error)) *speech.Subscription
}

// ── Messages ─────────────────────────────────────────────────────

type searchDoneMsg struct {
	query   string
	recipes []domain.HydratedRecipe
	err     error
}

type savedLoadedMsg struct {
	recipes []domain.HydratedRecipe
	ok      bool
}

type voiceStartedMsg struct{ err error }

type voiceStoppedMsg struct{ err error }

type voiceResultMsg struct{ text string }

type voiceErrorMsg struct{ err error }

// ── Model ────────────────────────────────────────────────────────

// Option configures the Model.
type Option func(*Model)

// WithVoice enables voice input through v, listening in locale.
func WithVoice(v VoiceControl, locale string) Option {
	return func(m *Model) {
		m.voice = v
		m.locale = locale
	}
}

// WithRecipes seeds the list shown at startup.
func WithRecipes(recipes []domain.HydratedRecipe) Option {
	return func(m *Model) { m.recipes = recipes }
}

// Model is the recipe screen.
type Model struct {
	ctx    context.Context
	search Searcher
	voice  VoiceControl
	locale string
	parser *conversation.Parser
	log    *logger.Logger

	input textinput.Model
	list  viewport.Model
	help  help.Model
	keys  keyMap

	recipes   []domain.HydratedRecipe
	listening bool
	searching bool
	alert     string
	status    string
	width     int
	height    int

	events chan tea.Msg
	sub    *speech.Subscription
}

// New creates the screen. When voice is enabled it subscribes to the
// adapter immediately; call Close once the program has exited.
func New(ctx context.Context, search Searcher, log *logger.Logger, opts ...Option) Model {
	ti := textinput.New()
	// Plain-text prompt keeps the textinput width math correct.
	ti.Prompt = "recipe> "
	ti.Placeholder = "Enter a recipe search query"
	ti.PromptStyle = promptStyle
	ti.TextStyle = inputTextStyle
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
	ti.CharLimit = 200
	ti.Width = 60 // updated on first WindowSizeMsg
	ti.Focus()

	m := Model{
		ctx:    ctx,
		search: search,
		parser: conversation.NewParser(log.Named("parser")),
		log:    log,
		input:  ti,
		list:   viewport.New(80, 10),
		help:   help.New(),
		keys:   defaultKeys(),
	}
	for _, opt := range opts {
		opt(&m)
	}

	if m.voice != nil {
		events := make(chan tea.Msg, 8)
		m.events = events
		m.sub = m.voice.Subscribe(
			func(text string) { deliver(events, voiceResultMsg{text: text}) },
			func(err error) { deliver(events, voiceErrorMsg{err: err}) },
		)
	}

	m.refreshList()
	return m
}

// deliver never blocks the engine's goroutine.
func deliver(ch chan tea.Msg, msg tea.Msg) {
	select {
	case ch <- msg:
	default:
	}
}

// Close unregisters the voice subscription.
func (m Model) Close() {
	if m.sub != nil {
		m.sub.Close()
	}
}

// Recipes returns the list on screen.
func (m Model) Recipes() []domain.HydratedRecipe { return m.recipes }

// Listening reports the voice control state.
func (m Model) Listening() bool { return m.listening }

// Alert returns the validation alert, if any.
func (m Model) Alert() string { return m.alert }

// Status returns the status line.
func (m Model) Status() string { return m.status }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tea.SetWindowTitle("recipebot"),
		waitVoice(m.events),
	)
}

func waitVoice(ch <-chan tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg { return <-ch }
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Search):
			return m.submit()
		case key.Matches(msg, m.keys.Voice):
			return m.toggleVoice()
		case key.Matches(msg, m.keys.Load):
			return m, m.loadSaved()
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.resize()
			return m, nil
		case key.Matches(msg, m.keys.ScrollUp), key.Matches(msg, m.keys.ScrollDown):
			var cmd tea.Cmd
			m.list, cmd = m.list.Update(msg)
			return m, cmd
		}

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if w := msg.Width - len(m.input.Prompt) - 1; w > 0 {
			m.input.Width = w
		}
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case searchDoneMsg:
		m.searching = false
		if msg.err != nil {
			// The list stays as it was.
			m.status = "Search failed. Check the log for details."
			return m, nil
		}
		m.recipes = msg.recipes
		m.status = fmt.Sprintf("%d recipes for %q", len(msg.recipes), msg.query)
		m.refreshList()
		return m, nil

	case savedLoadedMsg:
		if !msg.ok {
			m.status = "No saved recipes."
			return m, nil
		}
		m.recipes = msg.recipes
		m.status = fmt.Sprintf("Loaded %d saved recipes.", len(msg.recipes))
		m.refreshList()
		return m, nil

	case voiceStartedMsg:
		if msg.err != nil {
			m.listening = m.voiceActive()
			m.status = "Voice input unavailable."
			return m, nil
		}
		m.listening = true
		m.status = "Listening..."
		return m, nil

	case voiceStoppedMsg:
		m.listening = m.voiceActive()
		if m.status == "Listening..." {
			m.status = ""
		}
		return m, nil

	case voiceResultMsg:
		// The result may belong to a session that was already replaced.
		m.listening = m.voiceActive()
		m.input.SetValue(msg.text)
		m.input.CursorEnd()
		m.status = fmt.Sprintf("Heard %q. Press enter to search.", msg.text)
		return m, waitVoice(m.events)

	case voiceErrorMsg:
		m.listening = m.voiceActive()
		m.status = "Didn't catch that."
		if errors.Is(msg.err, speech.ErrNoSpeech) {
			m.status = "No speech heard."
		}
		return m, waitVoice(m.events)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit handles enter in the query field.
func (m Model) submit() (tea.Model, tea.Cmd) {
	cmd := m.parser.Parse(m.input.Value())

	switch cmd.Type {
	case conversation.CommandNone:
		m.alert = AlertEmptyQuery
		return m, nil
	case conversation.CommandSearch:
		m.alert = ""
		m.searching = true
		m.status = fmt.Sprintf("Searching for %q...", cmd.Query)
		return m, tea.Sequence(m.stopVoice(), m.runSearch(cmd.Query))
	}

	m.alert = ""
	m.input.Reset()

	switch cmd.Type {
	case conversation.CommandVoiceToggle:
		return m.toggleVoice()
	case conversation.CommandVoiceStart:
		return m.listen()
	case conversation.CommandVoiceStop:
		return m, m.stopVoice()
	case conversation.CommandLoadSaved:
		return m, m.loadSaved()
	case conversation.CommandHelp:
		m.status = strings.Join(conversation.Help(), " · ")
		return m, nil
	case conversation.CommandQuit:
		return m, tea.Quit
	default:
		m.status = fmt.Sprintf("Unknown command %s. Try /help.", cmd.Query)
		return m, nil
	}
}

// toggleVoice stops a running session or starts a new one.
func (m Model) toggleVoice() (tea.Model, tea.Cmd) {
	if m.voice != nil && m.listening {
		return m, m.stopVoice()
	}
	return m.listen()
}

// listen starts a session. It always issues a stop first, so a session
// that is already running is replaced.
func (m Model) listen() (tea.Model, tea.Cmd) {
	if m.voice == nil {
		m.status = "Voice input is disabled."
		return m, nil
	}
	m.status = ""
	return m, tea.Sequence(m.stopVoice(), m.startVoice())
}

// voiceActive reports whether the adapter has a capture running.
func (m Model) voiceActive() bool {
	return m.voice != nil && m.voice.Listening()
}

func (m Model) startVoice() tea.Cmd {
	v, ctx, locale := m.voice, m.ctx, m.locale
	return func() tea.Msg {
		return voiceStartedMsg{err: v.Start(ctx, locale)}
	}
}

func (m Model) stopVoice() tea.Cmd {
	if m.voice == nil {
		return nil
	}
	v := m.voice
	return func() tea.Msg {
		return voiceStoppedMsg{err: v.Stop()}
	}
}

func (m Model) runSearch(query string) tea.Cmd {
	s, ctx := m.search, m.ctx
	return func() tea.Msg {
		recipes, err := s.Search(ctx, query)
		return searchDoneMsg{query: query, recipes: recipes, err: err}
	}
}

func (m Model) loadSaved() tea.Cmd {
	s, ctx := m.search, m.ctx
	return func() tea.Msg {
		recipes, ok := s.LoadSaved(ctx)
		return savedLoadedMsg{recipes: recipes, ok: ok}
	}
}

// ── View ─────────────────────────────────────────────────────────

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString(m.list.View())
	b.WriteByte('\n')
	b.WriteString(m.footerView())
	return b.String()
}

func (m Model) headerView() string {
	var b strings.Builder
	b.WriteString(RenderBanner(m.width))
	b.WriteByte('\n')
	b.WriteString(m.input.View())
	b.WriteByte('\n')
	b.WriteString(m.voiceLabel())
	if m.alert != "" {
		b.WriteString("  " + alertStyle.Render(m.alert))
	}
	b.WriteString("\n\n")
	return b.String()
}

func (m Model) voiceLabel() string {
	if m.voice == nil {
		return ""
	}
	if m.listening {
		return listeningStyle.Render("[ " + LabelStopListening + " ]")
	}
	return idleVoiceStyle.Render("[ " + LabelUseVoice + " ]")
}

func (m Model) footerView() string {
	w := m.width
	if w <= 0 {
		w = 80
	}
	status := m.status
	if status == "" && m.searching {
		status = "Searching..."
	}
	bar := barBg.Width(w).Render(" " + status)
	return bar + "\n" + m.help.View(m.keys)
}

// resize fits the list between the header and the footer.
func (m *Model) resize() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	h := m.height - lipgloss.Height(m.headerView()) - lipgloss.Height(m.footerView()) - 1
	if h < 3 {
		h = 3
	}
	m.list.Width = m.width
	m.list.Height = h
	m.refreshList()
}

func (m *Model) refreshList() {
	if len(m.recipes) == 0 {
		m.list.SetContent(secondaryStyle.Render("No recipes yet. Type a dish and press enter."))
		return
	}
	m.list.SetContent(RenderRecipes(m.recipes, m.list.Width))
	m.list.GotoTop()
}
