package display

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hammamikhairi/recipebot/internal/domain"
	"github.com/hammamikhairi/recipebot/internal/logger"
	"github.com/hammamikhairi/recipebot/internal/speech"
)

type fakeSearcher struct {
	mu       sync.Mutex
	queries  []string
	recipes  []domain.HydratedRecipe
	err      error
	saved    []domain.HydratedRecipe
	hasSaved bool
}

func (f *fakeSearcher) Search(_ context.Context, query string) ([]domain.HydratedRecipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.recipes, nil
}

func (f *fakeSearcher) LoadSaved(context.Context) ([]domain.HydratedRecipe, bool) {
	return f.saved, f.hasSaved
}

// scriptedEngine returns a fixed transcript when a capture stops.
type scriptedEngine struct{ text string }

type scriptedCapture struct {
	text   string
	onText func(string, error)
}

func (e *scriptedEngine) Capture(_ string, onText func(string, error)) (speech.Capture, error) {
	return &scriptedCapture{text: e.text, onText: onText}, nil
}

func (c *scriptedCapture) Stop() error {
	c.onText(c.text, nil)
	return nil
}

// callLog records voice and search calls in the order they happen.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(call string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call)
}

func (l *callLog) take() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	calls := l.calls
	l.calls = nil
	return calls
}

// loggedVoice is a VoiceControl that records Start and Stop.
type loggedVoice struct {
	log       *callLog
	mu        sync.Mutex
	listening bool
}

func (v *loggedVoice) Start(context.Context, string) error {
	v.log.add("start")
	v.mu.Lock()
	defer v.mu.Unlock()
	v.listening = true
	return nil
}

func (v *loggedVoice) Stop() error {
	v.log.add("stop")
	v.mu.Lock()
	defer v.mu.Unlock()
	v.listening = false
	return nil
}

func (v *loggedVoice) Listening() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.listening
}

func (v *loggedVoice) Subscribe(func(string), func(error)) *speech.Subscription { return nil }

// loggedSearcher records searches in the shared call log.
type loggedSearcher struct {
	fakeSearcher
	log *callLog
}

func (s *loggedSearcher) Search(ctx context.Context, query string) ([]domain.HydratedRecipe, error) {
	s.log.add("search")
	return s.fakeSearcher.Search(ctx, query)
}

// runCmd executes cmd the way the program would: a tea.Sequence runs
// its commands one after another. It returns the leaf messages in order.
func runCmd(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if v := reflect.ValueOf(msg); v.Kind() == reflect.Slice {
		var msgs []tea.Msg
		for i := 0; i < v.Len(); i++ {
			sub, ok := v.Index(i).Interface().(tea.Cmd)
			if !ok {
				t.Fatalf("unexpected %T in command list", v.Index(i).Interface())
			}
			msgs = append(msgs, runCmd(t, sub)...)
		}
		return msgs
	}
	return []tea.Msg{msg}
}

func newLoggedModel(listening bool) (Model, *loggedVoice, *callLog) {
	log := &callLog{}
	v := &loggedVoice{log: log, listening: listening}
	m := newTestModel(&loggedSearcher{log: log}, WithVoice(v, "en-US"))
	m.listening = listening
	return m, v, log
}

var pasta = []domain.HydratedRecipe{
	{ID: 1, Title: "Pasta Carbonara", Instructions: domain.StepList([]domain.InstructionStep{
		{Number: 1, Instruction: "Boil water"},
		{Number: 2, Instruction: "Cook pasta"},
	})},
	{ID: 2, Title: "Pasta Salad", Instructions: domain.Placeholder(domain.NoteNoInstructions)},
}

func newTestModel(s Searcher, opts ...Option) Model {
	log := logger.New(logger.LevelOff, nil)
	m := New(context.Background(), s, log, opts...)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(Model)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func typeQuery(t *testing.T, m Model, q string) Model {
	t.Helper()
	m.input.SetValue(q)
	return m
}

func TestEmptyQueryAlerts(t *testing.T) {
	s := &fakeSearcher{}
	m := newTestModel(s, WithRecipes(pasta))

	for _, q := range []string{"", "   "} {
		m = typeQuery(t, m, q)
		var cmd tea.Cmd
		m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

		if m.Alert() != AlertEmptyQuery {
			t.Fatalf("alert = %q, want %q", m.Alert(), AlertEmptyQuery)
		}
		if cmd != nil {
			t.Fatal("empty query must not issue any command")
		}
	}
	if len(s.queries) != 0 {
		t.Fatalf("searcher called %d times", len(s.queries))
	}
	if len(m.Recipes()) != len(pasta) {
		t.Fatal("list must be unchanged")
	}
}

func TestSearchReplacesList(t *testing.T) {
	s := &fakeSearcher{recipes: pasta}
	m := newTestModel(s)

	m = typeQuery(t, m, "  pasta ")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a search command")
	}
	if m.Alert() != "" {
		t.Fatalf("unexpected alert %q", m.Alert())
	}

	m, _ = update(t, m, m.runSearch("pasta")())
	if len(s.queries) != 1 || s.queries[0] != "pasta" {
		t.Fatalf("queries = %q", s.queries)
	}
	if got := m.Recipes(); len(got) != 2 || got[0].Title != "Pasta Carbonara" {
		t.Fatalf("recipes = %+v", got)
	}

	view := m.View()
	for _, want := range []string{"Pasta Carbonara", "Boil water", "No instructions available."} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestSearchFailureKeepsList(t *testing.T) {
	s := &fakeSearcher{err: errors.New("boom")}
	m := newTestModel(s, WithRecipes(pasta))

	m, _ = update(t, m, m.runSearch("soup")())

	if len(m.Recipes()) != len(pasta) {
		t.Fatal("failed search must keep the previous list")
	}
	if m.Status() == "" {
		t.Fatal("expected a status line after failure")
	}
	if m.Alert() != "" {
		t.Fatal("remote failures are not alerts")
	}
}

func TestLoadSaved(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		s := &fakeSearcher{saved: pasta, hasSaved: true}
		m := newTestModel(s)

		m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
		if cmd == nil {
			t.Fatal("expected load command")
		}
		m, _ = update(t, m, cmd())
		if len(m.Recipes()) != 2 {
			t.Fatalf("recipes = %d, want 2", len(m.Recipes()))
		}
	})

	t.Run("absent", func(t *testing.T) {
		s := &fakeSearcher{}
		m := newTestModel(s, WithRecipes(pasta[:1]))

		m = typeQuery(t, m, "/load")
		m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		m, _ = update(t, m, cmd())
		if len(m.Recipes()) != 1 {
			t.Fatal("list must be unchanged when nothing is saved")
		}
		if m.Status() != "No saved recipes." {
			t.Fatalf("status = %q", m.Status())
		}
	})
}

func TestVoiceToggleAndResult(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	v := speech.New(&scriptedEngine{text: "chicken curry."}, log)
	s := &fakeSearcher{}
	m := newTestModel(s, WithVoice(v, "en-US"))
	defer m.Close()

	if !strings.Contains(m.View(), LabelUseVoice) {
		t.Fatal("idle view must offer voice")
	}

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	if cmd == nil {
		t.Fatal("expected start command")
	}
	m, _ = update(t, m, m.startVoice()())
	if !m.Listening() || !v.Listening() {
		t.Fatal("expected listening after start")
	}
	if !strings.Contains(m.View(), LabelStopListening) {
		t.Fatal("listening view must offer stop")
	}

	// Toggle again stops; the transcript arrives on the subscription.
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	if cmd == nil {
		t.Fatal("expected stop command")
	}
	m, _ = update(t, m, cmd())
	if m.Listening() {
		t.Fatal("expected idle after stop")
	}

	m, _ = update(t, m, waitVoice(m.events)())
	if got := m.input.Value(); got != "chicken curry" {
		t.Fatalf("query field = %q, want transcript", got)
	}
	if len(s.queries) != 0 {
		t.Fatal("a transcript must not search by itself")
	}
}

func TestVoiceErrorReturnsToIdle(t *testing.T) {
	m := newTestModel(&fakeSearcher{})
	m.listening = true

	m, _ = update(t, m, voiceErrorMsg{err: speech.ErrNoSpeech})
	if m.Listening() {
		t.Fatal("error must end listening")
	}
}

func TestSearchStopsVoiceFirst(t *testing.T) {
	for _, listening := range []bool{true, false} {
		m, v, log := newLoggedModel(listening)

		m = typeQuery(t, m, "pasta")
		m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		for _, msg := range runCmd(t, cmd) {
			m, _ = update(t, m, msg)
		}

		if got := log.take(); !reflect.DeepEqual(got, []string{"stop", "search"}) {
			t.Fatalf("listening=%v: calls = %q, want [stop search]", listening, got)
		}
		if m.Listening() || v.Listening() {
			t.Fatalf("listening=%v: voice still active after search", listening)
		}
	}
}

func TestListenStopsBeforeStart(t *testing.T) {
	tests := []struct {
		name      string
		listening bool
		input     string
		key       tea.KeyType
		want      []string
	}{
		{"listen while listening", true, "/listen", tea.KeyEnter, []string{"stop", "start"}},
		{"listen while idle", false, "/listen", tea.KeyEnter, []string{"stop", "start"}},
		{"toggle from idle", false, "", tea.KeyCtrlT, []string{"stop", "start"}},
		{"toggle while listening", true, "", tea.KeyCtrlT, []string{"stop"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, v, log := newLoggedModel(tt.listening)

			m = typeQuery(t, m, tt.input)
			m, cmd := update(t, m, tea.KeyMsg{Type: tt.key})
			for _, msg := range runCmd(t, cmd) {
				m, _ = update(t, m, msg)
			}

			if got := log.take(); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("calls = %q, want %q", got, tt.want)
			}
			wantListening := tt.want[len(tt.want)-1] == "start"
			if m.Listening() != wantListening || v.Listening() != wantListening {
				t.Fatalf("listening = %v (adapter %v), want %v", m.Listening(), v.Listening(), wantListening)
			}
		})
	}
}

func TestLateTranscriptKeepsListening(t *testing.T) {
	m, _, _ := newLoggedModel(true)

	// A transcript from the replaced session arrives after the restart.
	m, _ = update(t, m, voiceResultMsg{text: "old soup"})
	if !m.Listening() {
		t.Fatal("a late transcript must not end the running session")
	}
	if !strings.Contains(m.View(), LabelStopListening) {
		t.Fatal("view must still offer stop")
	}
	if got := m.input.Value(); got != "old soup" {
		t.Fatalf("query field = %q", got)
	}

	m, _ = update(t, m, voiceErrorMsg{err: speech.ErrNoSpeech})
	if !m.Listening() {
		t.Fatal("a late error must not end the running session")
	}
}

func TestVoiceDisabled(t *testing.T) {
	m := newTestModel(&fakeSearcher{})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	if cmd != nil {
		t.Fatal("no command without voice")
	}
	if m.Status() != "Voice input is disabled." {
		t.Fatalf("status = %q", m.Status())
	}
	if strings.Contains(m.View(), LabelUseVoice) {
		t.Fatal("voice label shown while disabled")
	}
}

func TestUnknownCommand(t *testing.T) {
	m := newTestModel(&fakeSearcher{})

	m = typeQuery(t, m, "/dance")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.Contains(m.Status(), "/dance") {
		t.Fatalf("status = %q", m.Status())
	}
	if m.input.Value() != "" {
		t.Fatal("commands clear the query field")
	}
}

func TestQuitKeys(t *testing.T) {
	m := newTestModel(&fakeSearcher{})

	for _, k := range []tea.KeyMsg{{Type: tea.KeyCtrlC}, {Type: tea.KeyEsc}} {
		_, cmd := update(t, m, k)
		if cmd == nil {
			t.Fatalf("%s: expected quit", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("%s: expected tea.QuitMsg", k)
		}
	}
}

func TestRenderRecipes(t *testing.T) {
	out := RenderRecipes(pasta, 80)

	iCarb := strings.Index(out, "Pasta Carbonara")
	iBoil := strings.Index(out, "Boil water")
	iCook := strings.Index(out, "Cook pasta")
	iSalad := strings.Index(out, "Pasta Salad")
	if iCarb < 0 || iBoil < iCarb || iCook < iBoil || iSalad < iCook {
		t.Fatalf("unexpected order in:\n%s", out)
	}
	if !strings.Contains(out, "1. ") || !strings.Contains(out, "2. ") {
		t.Fatalf("missing step numbers in:\n%s", out)
	}
	if !strings.Contains(out, domain.NoteNoInstructions) {
		t.Fatal("missing placeholder text")
	}
}
