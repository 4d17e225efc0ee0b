// Package tui is the interactive search terminal. Session callbacks arrive
// on a channel and re-enter the Bubble Tea loop as messages, so the model
// itself stays single-threaded.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/helio-search/helio"
)

type (
	snapshotMsg helio.Snapshot
	outcomeMsg  helio.Outcome
	gateMsg     helio.GateDecision
	sendErrMsg  struct{ err error }
)

// Model is the Bubble Tea model for the search TUI.
type Model struct {
	session *helio.Session
	msgs    chan tea.Msg

	input    textinput.Model
	viewport viewport.Model
	spin     spinner.Model

	results   []helio.Result
	answer    string
	status    string
	gateNote  string
	lastQuery string
	cursor    int
	searching bool
	ready     bool
}

// New creates the TUI model and binds a fresh session to it.
func New(client *helio.Client) Model {
	msgs := make(chan tea.Msg, 32)

	sess := client.NewSession(helio.SessionObservers{
		OnSnapshot: func(s helio.Snapshot) { msgs <- snapshotMsg(s) },
		OnOutcome:  func(o helio.Outcome) { msgs <- outcomeMsg(o) },
		OnGate:     func(d helio.GateDecision) { msgs <- gateMsg(d) },
	})

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type query and press Enter"
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return Model{
		session:  sess,
		msgs:     msgs,
		input:    ti,
		viewport: viewport.New(0, 0),
		spin:     sp,
		status:   "Ready. Type to search, Esc cancels, Ctrl+C quits.",
	}
}

// Init starts the cursor blink and the session message pump.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForSession())
}

// waitForSession relays the next session callback into the update loop.
func (m Model) waitForSession() tea.Cmd {
	return func() tea.Msg { return <-m.msgs }
}

// Update handles key, window, and session events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header+gate, status, query box, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderResults())
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			m.session.Cancel()
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q == "" {
				return m, nil
			}
			m.lastQuery = q
			m.searching = true
			m.results = nil
			m.answer = ""
			m.cursor = 0
			m.status = "Searching..."
			m.viewport.SetContent(m.renderResults())
			return m, tea.Batch(m.send(q), m.spin.Tick)
		case "esc":
			if m.searching {
				m.session.Cancel()
			}
			return m, nil
		case "down":
			if len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.viewport.SetContent(m.renderResults())
			}
			return m, nil
		case "up":
			if len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.viewport.SetContent(m.renderResults())
			}
			return m, nil
		}

	case spinner.TickMsg:
		if !m.searching {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case snapshotMsg:
		snap := helio.Snapshot(msg)
		m.results = snap.Results
		m.answer = snap.AnswerText
		switch snap.Phase {
		case helio.PhaseSearching:
			m.status = fmt.Sprintf("Searching %q...", m.lastQuery)
		case helio.PhaseAnswering:
			m.status = "Generating answer..."
		}
		if m.cursor >= len(m.results) {
			m.cursor = 0
		}
		m.viewport.SetContent(m.renderResults())
		return m, m.waitForSession()

	case outcomeMsg:
		out := helio.Outcome(msg)
		m.searching = false
		switch out.Phase {
		case helio.PhaseDone:
			m.status = fmt.Sprintf("Done: %d results in %s", len(out.Results), out.Elapsed.Round(time.Millisecond))
		case helio.PhaseCancelled:
			m.status = "Cancelled."
		case helio.PhaseError:
			m.status = errorStyle.Render("Error: " + out.Err.Error())
		}
		return m, m.waitForSession()

	case gateMsg:
		dec := helio.GateDecision(msg)
		if dec.Allowed {
			m.gateNote = ""
		} else {
			m.gateNote = errorStyle.Render("searches blocked: " + dec.Reason)
		}
		return m, m.waitForSession()

	case sendErrMsg:
		m.searching = false
		m.status = errorStyle.Render("Error: " + msg.err.Error())
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// send issues the search off the update loop; gate checks may block briefly.
func (m Model) send(query string) tea.Cmd {
	return func() tea.Msg {
		err := m.session.Send(context.Background(), helio.SearchRequest{
			Query:          query,
			GenerateAnswer: true,
		})
		if err != nil {
			return sendErrMsg{err: err}
		}
		return nil
	}
}

// View renders the TUI layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("Helio Search")
	if m.gateNote != "" {
		header += "  " + m.gateNote
	}
	status := m.status
	if m.searching {
		status = m.spin.View() + " " + status
	}
	results := resultBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	return header + "\n" + results + "\n" + input + "\n" + statusStyle.Render(status)
}

func (m Model) renderResults() string {
	if len(m.results) == 0 && m.answer == "" {
		return "No results yet."
	}
	var b strings.Builder
	if m.answer != "" {
		b.WriteString(answerStyle.Render(m.answer))
		b.WriteString("\n\n")
	}
	for i, r := range m.results {
		line := fmt.Sprintf("%d. %s", i+1, r.Title)
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
		if i == m.cursor && r.Snippet != "" {
			b.WriteString(snippetStyle.Render(r.Snippet))
			b.WriteString("\n")
		}
	}
	return b.String()
}

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	answerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	selectedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	snippetStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).PaddingLeft(3)
	spinnerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
