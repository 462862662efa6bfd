package tui

import (
	"context"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sunoctl/sunoctl/internal/generation"
	"github.com/sunoctl/sunoctl/internal/monitor"
	"github.com/sunoctl/sunoctl/internal/tui/render"
)

type fakeCore struct {
	mu        sync.Mutex
	conn      monitor.Snapshot
	simulated bool
	busy      bool
	submitted []generation.Request
	result    generation.Result
	err       error
	history   []generation.Result
	refreshes int
}

func (f *fakeCore) Connection() monitor.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.conn
}

func (f *fakeCore) RefreshConnection(context.Context) (monitor.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.refreshes++
	f.conn = monitor.Snapshot{State: monitor.Offline, Message: "Backend did not respond in time"}

	return f.conn, nil
}

func (f *fakeCore) Simulation() bool { return f.simulated }

func (f *fakeCore) ToggleSimulation() bool {
	f.simulated = !f.simulated
	return f.simulated
}

func (f *fakeCore) Submit(_ context.Context, req generation.Request) (generation.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.submitted = append(f.submitted, req)

	if f.err == nil && f.result.Succeeded() {
		f.history = append([]generation.Result{f.result}, f.history...)
	}

	return f.result, f.err
}

func (f *fakeCore) Busy() bool { return f.busy }

func (f *fakeCore) History() []generation.Result {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]generation.Result(nil), f.history...)
}

func readyCore() *fakeCore {
	return &fakeCore{conn: monitor.Snapshot{
		State:   monitor.ConnectedWithSession,
		Message: "Successfully connected and logged into Suno.ai",
	}}
}

func newModel(core Core) Model {
	return New(context.Background(), core, Options{
		Defaults:   generation.Request{Instrumental: true, AutoDownload: true},
		BackendURL: "http://localhost:8000",
	})
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()

	next, cmd := m.Update(msg)

	got, ok := next.(Model)
	if !ok {
		t.Fatalf("Update() returned %T, want Model", next)
	}

	return got, cmd
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})

	return m
}

func press(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func TestModel_SubmitBlankPromptShowsNoticeWithoutCallingCore(t *testing.T) {
	core := readyCore()
	m := newModel(core)

	m = typeText(t, m, "   ")

	m, cmd := update(t, m, press(tea.KeyCtrlS))
	if cmd != nil {
		t.Fatal("blank prompt should not start a submission")
	}

	if m.notice != "Please enter a prompt" {
		t.Fatalf("notice = %q", m.notice)
	}

	if len(core.submitted) != 0 {
		t.Fatalf("core received %d submissions", len(core.submitted))
	}
}

func TestModel_SubmitSuccessResetsFormAndShowsHistory(t *testing.T) {
	core := readyCore()

	res, err := generation.NewSuccess(
		generation.Request{Prompt: "a happy techno song about robots", Title: "Robots"},
		generation.Song{URL: "https://suno.com/song/abc", FilePath: "/music/robots.mp3"},
	)
	if err != nil {
		t.Fatal(err)
	}

	core.result = res

	m := newModel(core)
	m = typeText(t, m, "a happy techno song about robots")

	m, _ = update(t, m, press(tea.KeyTab))
	m, _ = update(t, m, press(tea.KeyTab))
	m = typeText(t, m, "Robots")

	m, cmd := update(t, m, press(tea.KeyCtrlS))
	if cmd == nil || !m.submitting {
		t.Fatal("submit should start a command")
	}

	if !strings.Contains(m.View(), "Generating song") {
		t.Error("view should show progress while submitting")
	}

	// Typing is ignored while locked.
	m = typeText(t, m, "zzz")

	m, _ = update(t, m, cmd())

	if m.submitting {
		t.Fatal("submission should be finished")
	}

	got := core.submitted[0]
	want := generation.Request{Prompt: "a happy techno song about robots", Title: "Robots", Instrumental: true, AutoDownload: true}

	if got != want {
		t.Fatalf("submitted %+v, want %+v", got, want)
	}

	if m.prompt.Value() != "" || m.title.Value() != "" || m.focus != fieldPrompt {
		t.Errorf("form not reset: prompt=%q title=%q focus=%d", m.prompt.Value(), m.title.Value(), m.focus)
	}

	view := render.Plain(m.View())
	for _, want := range []string{"Song generated: https://suno.com/song/abc", "Saved to /music/robots.mp3", "History (1)", "Robots"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModel_FailureKeepsFormAndStaysOutOfHistory(t *testing.T) {
	core := readyCore()
	core.result = generation.NewFailure(
		generation.Request{Prompt: "x"},
		generation.Failure{Kind: generation.FailureSubmission, Reason: "Captcha required"},
	)

	m := newModel(core)
	m = typeText(t, m, "x")

	m, cmd := update(t, m, press(tea.KeyCtrlS))
	m, _ = update(t, m, cmd())

	if m.prompt.Value() != "x" {
		t.Errorf("prompt = %q, want kept after failure", m.prompt.Value())
	}

	view := render.Plain(m.View())
	if !strings.Contains(view, "Generation failed: Captcha required") {
		t.Errorf("view missing failure reason:\n%s", view)
	}

	if !strings.Contains(view, "No songs generated yet") {
		t.Error("failure should not appear in history")
	}
}

func TestModel_BusyCoreRejectsSubmit(t *testing.T) {
	core := readyCore()
	core.busy = true

	m := newModel(core)
	m = typeText(t, m, "hello")

	m, cmd := update(t, m, press(tea.KeyCtrlS))
	if cmd != nil || m.notice != "A generation request is already in progress" {
		t.Fatalf("cmd=%v notice=%q", cmd != nil, m.notice)
	}
}

func TestModel_ToggleSimulationAndOptions(t *testing.T) {
	core := readyCore()
	m := newModel(core)

	m, _ = update(t, m, press(tea.KeyCtrlT))
	if !m.simulated || !core.simulated {
		t.Fatal("ctrl+t should enable simulation")
	}

	if !strings.Contains(render.Plain(m.View()), "SIMULATION") {
		t.Error("view should show the simulation badge")
	}

	m, _ = update(t, m, press(tea.KeyCtrlN))
	if m.instrumental {
		t.Error("ctrl+n should toggle instrumental off")
	}

	for range 4 {
		m, _ = update(t, m, press(tea.KeyTab))
	}

	if m.focus != fieldDownload {
		t.Fatalf("focus = %d, want download", m.focus)
	}

	m, _ = update(t, m, press(tea.KeySpace))
	if m.download {
		t.Error("space on the download field should toggle it off")
	}

	m, _ = update(t, m, press(tea.KeyShiftTab))
	if m.focus != fieldInstrumental {
		t.Fatalf("focus = %d, want instrumental", m.focus)
	}
}

func TestModel_RefreshAndTick(t *testing.T) {
	core := readyCore()
	m := newModel(core)

	if !strings.Contains(render.Plain(m.View()), "Connected and logged in") {
		t.Fatal("initial view should show the connection badge")
	}

	m, cmd := update(t, m, press(tea.KeyCtrlR))
	if cmd == nil || !m.refreshing {
		t.Fatal("ctrl+r should start a refresh")
	}

	m, again := update(t, m, press(tea.KeyCtrlR))
	if again != nil {
		t.Fatal("refresh should not overlap")
	}

	m, _ = update(t, m, cmd())

	if m.refreshing || m.conn.State != monitor.Offline || core.refreshes != 1 {
		t.Fatalf("after refresh: refreshing=%v state=%v refreshes=%d", m.refreshing, m.conn.State, core.refreshes)
	}

	core.mu.Lock()
	core.conn = monitor.Snapshot{State: monitor.ConnectedNoSession, Message: "Connected to browser but not logged into Suno.ai"}
	core.mu.Unlock()

	m, next := update(t, m, tickMsg{})
	if next == nil {
		t.Fatal("tick should schedule the next tick")
	}

	if !strings.Contains(render.Plain(m.View()), "not logged into Suno.ai") {
		t.Error("tick should pull the latest connection snapshot")
	}
}

func TestModel_QuitAndResize(t *testing.T) {
	m := newModel(readyCore())

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	if m.width != 120 || m.help.Width != 120 {
		t.Fatalf("width = %d, help width = %d", m.width, m.help.Width)
	}

	_, cmd := update(t, m, press(tea.KeyEsc))
	if cmd == nil {
		t.Fatal("esc should quit")
	}

	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("esc should produce tea.QuitMsg")
	}
}
