// Package tui is the interactive terminal front end. It renders the
// orchestration core and forwards user intents to it; all generation and
// connectivity logic stays in the core.
package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sunoctl/sunoctl/internal/generation"
	"github.com/sunoctl/sunoctl/internal/monitor"
)

// DefaultRefresh is how often the view re-reads the core.
const DefaultRefresh = 500 * time.Millisecond

// Core is the orchestration surface the UI drives.
type Core interface {
	Connection() monitor.Snapshot
	RefreshConnection(ctx context.Context) (monitor.Snapshot, error)
	Simulation() bool
	ToggleSimulation() bool
	Submit(ctx context.Context, req generation.Request) (generation.Result, error)
	Busy() bool
	History() []generation.Result
}

// Options configures the initial form state.
type Options struct {
	Defaults generation.Request
	Refresh  time.Duration
	// BackendURL is shown in the header.
	BackendURL string
}

type field int

const (
	fieldPrompt field = iota
	fieldStyle
	fieldTitle
	fieldInstrumental
	fieldDownload
	fieldCount
)

type (
	tickMsg       time.Time
	submitDoneMsg struct {
		result generation.Result
		err    error
	}
	refreshDoneMsg struct {
		snap monitor.Snapshot
		err  error
	}
)

// Model is the bubbletea model for the generator screen.
type Model struct {
	ctx  context.Context
	core Core
	opts Options

	keys    keyMap
	help    help.Model
	styles  styles
	spinner spinner.Model

	prompt       textarea.Model
	style        textinput.Model
	title        textinput.Model
	instrumental bool
	download     bool
	focus        field

	conn       monitor.Snapshot
	simulated  bool
	history    []generation.Result
	last       *generation.Result
	notice     string
	submitting bool
	refreshing bool

	width  int
	height int
}

// New builds the model. ctx bounds every core call made from the UI.
func New(ctx context.Context, core Core, opts Options) Model {
	if opts.Refresh <= 0 {
		opts.Refresh = DefaultRefresh
	}

	prompt := textarea.New()
	prompt.Placeholder = "Describe the song, e.g. a happy techno song about robots"
	prompt.CharLimit = generation.MaxPromptLength
	prompt.ShowLineNumbers = false
	prompt.SetHeight(3)
	prompt.Focus()

	style := textinput.New()
	style.Placeholder = "Electronic, dance, techno"
	style.CharLimit = generation.MaxStyleLength

	title := textinput.New()
	title.Placeholder = "Song title"
	title.CharLimit = generation.MaxTitleLength

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	st := newStyles()
	sp.Style = st.title

	m := Model{
		ctx:          ctx,
		core:         core,
		opts:         opts,
		keys:         defaultKeyMap(),
		help:         help.New(),
		styles:       st,
		spinner:      sp,
		prompt:       prompt,
		style:        style,
		title:        title,
		instrumental: opts.Defaults.Instrumental,
		download:     opts.Defaults.AutoDownload,
		width:        80,
		height:       24,
	}

	m.prompt.SetValue(opts.Defaults.Prompt)
	m.style.SetValue(opts.Defaults.Style)
	m.title.SetValue(opts.Defaults.Title)
	m.sync()
	m.resize()

	return m
}

// Init starts the spinner and the refresh loop.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick, tick(m.opts.Refresh))
}

func tick(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resize()

		return m, nil

	case tickMsg:
		m.sync()
		return m, tick(m.opts.Refresh)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case refreshDoneMsg:
		m.refreshing = false
		m.conn = msg.snap

		return m, nil

	case submitDoneMsg:
		return m.finishSubmit(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateFocused(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.ToggleSimulation):
		m.simulated = m.core.ToggleSimulation()
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m.startRefresh()
	case key.Matches(msg, m.keys.Submit):
		return m.startSubmit()
	case key.Matches(msg, m.keys.Next):
		return m.moveFocus(1), nil
	case key.Matches(msg, m.keys.Prev):
		return m.moveFocus(-1), nil
	case m.submitting:
		// The form is locked while a request is in flight.
		return m, nil
	case key.Matches(msg, m.keys.ToggleInstrumental):
		m.instrumental = !m.instrumental
		return m, nil
	case key.Matches(msg, m.keys.ToggleDownload):
		m.download = !m.download
		return m, nil
	case key.Matches(msg, m.keys.Toggle) && m.focus == fieldInstrumental:
		m.instrumental = !m.instrumental
		return m, nil
	case key.Matches(msg, m.keys.Toggle) && m.focus == fieldDownload:
		m.download = !m.download
		return m, nil
	}

	return m.updateFocused(msg)
}

func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}

	var cmd tea.Cmd

	switch m.focus {
	case fieldPrompt:
		m.prompt, cmd = m.prompt.Update(msg)
	case fieldStyle:
		m.style, cmd = m.style.Update(msg)
	case fieldTitle:
		m.title, cmd = m.title.Update(msg)
	}

	return m, cmd
}

func (m Model) moveFocus(delta int) Model {
	m.focus = (m.focus + field(delta) + fieldCount) % fieldCount

	m.prompt.Blur()
	m.style.Blur()
	m.title.Blur()

	switch m.focus {
	case fieldPrompt:
		m.prompt.Focus()
	case fieldStyle:
		m.style.Focus()
	case fieldTitle:
		m.title.Focus()
	}

	return m
}

func (m Model) request() generation.Request {
	return generation.Request{
		Prompt:       m.prompt.Value(),
		Style:        m.style.Value(),
		Title:        m.title.Value(),
		Instrumental: m.instrumental,
		AutoDownload: m.download,
	}
}

func (m Model) startSubmit() (tea.Model, tea.Cmd) {
	if m.submitting || m.core.Busy() {
		m.notice = "A generation request is already in progress"
		return m, nil
	}

	req := m.request()
	if err := req.Validate(); err != nil {
		m.notice = noticeFor(err)
		return m, nil
	}

	m.submitting = true
	m.notice = ""
	m.last = nil

	ctx, core := m.ctx, m.core

	return m, func() tea.Msg {
		res, err := core.Submit(ctx, req)
		return submitDoneMsg{result: res, err: err}
	}
}

func (m Model) finishSubmit(msg submitDoneMsg) Model {
	m.submitting = false

	if msg.err != nil {
		m.notice = noticeFor(msg.err)
		return m
	}

	res := msg.result
	m.last = &res

	if res.Succeeded() {
		m = m.resetForm()
	}

	m.sync()

	return m
}

func (m Model) resetForm() Model {
	m.prompt.Reset()
	m.style.Reset()
	m.title.Reset()
	m.instrumental = m.opts.Defaults.Instrumental
	m.download = m.opts.Defaults.AutoDownload

	return m.moveFocus(int(fieldPrompt - m.focus))
}

func (m Model) startRefresh() (tea.Model, tea.Cmd) {
	if m.refreshing {
		return m, nil
	}

	m.refreshing = true
	ctx, core := m.ctx, m.core

	return m, func() tea.Msg {
		snap, err := core.RefreshConnection(ctx)
		return refreshDoneMsg{snap: snap, err: err}
	}
}

// sync copies the core's current readings into the model.
func (m *Model) sync() {
	m.conn = m.core.Connection()
	m.simulated = m.core.Simulation()
	m.history = m.core.History()
}

func (m *Model) resize() {
	inner := max(m.width-4, 20)

	m.prompt.SetWidth(inner)
	m.style.Width = inner - 8
	m.title.Width = inner - 8
}

func noticeFor(err error) string {
	var verr *generation.ValidationError

	switch {
	case errors.As(err, &verr):
		if verr.Field == "prompt" && verr.Reason == "must not be empty" {
			return "Please enter a prompt"
		}

		return "Invalid " + verr.Error()
	case errors.Is(err, generation.ErrBusy):
		return "A generation request is already in progress"
	default:
		return err.Error()
	}
}
