package tui

import (
	"fmt"
	"strings"

	"github.com/sunoctl/sunoctl/internal/generation"
	"github.com/sunoctl/sunoctl/internal/tui/render"
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.headerView())
	b.WriteString("\n\n")
	b.WriteString(m.formView())
	b.WriteString("\n")
	b.WriteString(m.statusView())
	b.WriteString("\n")

	if res := m.resultView(); res != "" {
		b.WriteString(res)
		b.WriteString("\n")
	}

	b.WriteString(m.historyView())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

func (m Model) headerView() string {
	line := m.styles.title.Render("sunoctl") + "  " + m.styles.badge(m.conn.State)
	if m.simulated {
		line += " " + m.styles.simulation.Render("SIMULATION")
	}

	diag := m.conn.Message
	if m.refreshing {
		diag = "Refreshing... " + diag
	}

	lines := []string{line, m.styles.muted.Render(render.Fit(diag, m.width))}

	if m.opts.BackendURL != "" {
		meta := "backend " + m.opts.BackendURL
		if !m.conn.CheckedAt.IsZero() {
			meta += " · checked " + m.conn.CheckedAt.Format("15:04:05")
		}

		lines = append(lines, m.styles.muted.Render(render.Fit(meta, m.width)))
	}

	return strings.Join(lines, "\n")
}

func (m Model) label(f field, text string) string {
	if m.focus == f {
		return m.styles.focused.Render("› " + text)
	}

	return m.styles.label.Render("  " + text)
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}

	return "[ ]"
}

func (m Model) formView() string {
	toggles := m.label(fieldInstrumental, checkbox(m.instrumental)+" Instrumental (no vocals)") +
		"   " +
		m.label(fieldDownload, checkbox(m.download)+" Download automatically")

	return strings.Join([]string{
		m.label(fieldPrompt, fmt.Sprintf("Prompt (%d/%d)", len([]rune(m.prompt.Value())), generation.MaxPromptLength)),
		m.prompt.View(),
		m.label(fieldStyle, "Style"),
		"  " + m.style.View(),
		m.label(fieldTitle, "Title"),
		"  " + m.title.View(),
		"",
		toggles,
	}, "\n")
}

func (m Model) statusView() string {
	switch {
	case m.submitting && m.simulated:
		return m.spinner.View() + " Simulating generation..."
	case m.submitting:
		return m.spinner.View() + " Generating song, this can take a few minutes..."
	case m.notice != "":
		return m.styles.warning.Render(m.notice)
	default:
		return ""
	}
}

func (m Model) resultView() string {
	if m.last == nil {
		return ""
	}

	res := *m.last

	if song, ok := res.Song(); ok {
		lines := []string{m.styles.success.Render("Song generated: " + song.URL)}

		if song.FilePath != "" {
			lines = append(lines, m.styles.muted.Render("Saved to "+song.FilePath))
		}

		if song.DownloadError != "" {
			lines = append(lines, m.styles.warning.Render("Download failed: "+song.DownloadError))
		}

		return strings.Join(lines, "\n")
	}

	failure, _ := res.Failure()

	return m.styles.failure.Render("Generation failed: " + failure.Reason)
}

func (m Model) historyView() string {
	if len(m.history) == 0 {
		return m.styles.muted.Render("No songs generated yet")
	}

	lines := []string{m.styles.label.Render(fmt.Sprintf("History (%d)", len(m.history)))}

	for i, res := range m.history {
		name := res.Title
		if name == "" {
			name = res.Prompt
		}

		if res.Simulated {
			name += " (simulated)"
		}

		song, _ := res.Song()
		entry := fmt.Sprintf("%2d. %s  %s", i+1, name, m.styles.muted.Render(song.URL))
		lines = append(lines, render.Fit(entry, m.width-4))
	}

	return m.styles.panel.Render(strings.Join(lines, "\n"))
}
