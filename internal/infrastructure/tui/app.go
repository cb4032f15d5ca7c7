// Package tui is the terminal view of the session. It renders snapshots and
// turns typed input into session intents; it never mutates state itself.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/0xcro3dile/docqa-go/internal/domain/entities"
	"github.com/0xcro3dile/docqa-go/internal/domain/ports"
	"github.com/0xcro3dile/docqa-go/internal/domain/usecases"
)

// ExcerptRunes is how much of a source passage is shown when expanded.
const ExcerptRunes = entities.ExcerptRunes

const emptyPlaceholder = "Upload a document with /upload <path>, then ask a question about it."

// Session is the subset of the session controller the terminal view drives.
type Session interface {
	Snapshot() entities.Snapshot
	SubmitQuestion(ctx context.Context, text string) (<-chan struct{}, error)
	SubmitUpload(ctx context.Context, file entities.FileUpload) (<-chan struct{}, error)
	ToggleSources(ctx context.Context, messageID string) (bool, error)
}

type snapshotMsg entities.Snapshot

type subscriptionClosedMsg struct{}

type noticeMsg string

type Model struct {
	ctx      context.Context
	session  Session
	loader   ports.FileLoader
	updates  <-chan entities.Snapshot
	snap     entities.Snapshot
	input    textinput.Model
	thread   viewport.Model
	spinner  spinner.Model
	notice   string
	width    int
	height   int
	quitting bool
}

// NewModel builds the view. updates is a subscription to published snapshots.
func NewModel(ctx context.Context, session Session, loader ports.FileLoader, updates <-chan entities.Snapshot) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask a question, or /upload <path>"
	ti.CharLimit = 2000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:     ctx,
		session: session,
		loader:  loader,
		updates: updates,
		snap:    session.Snapshot(),
		input:   ti,
		thread:  viewport.New(120, 26),
		spinner: sp,
		width:   120,
		height:  30,
	}
	m.refresh()
	return m
}

func waitForSnapshot(updates <-chan entities.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-updates
		if !ok {
			return subscriptionClosedMsg{}
		}
		return snapshotMsg(snap)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, waitForSnapshot(m.updates))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.thread.Width = msg.Width
		m.thread.Height = max(1, msg.Height-4) // title, input, notice, help
		m.input.Width = max(10, msg.Width-4)
		m.refresh()
		return m, nil

	case snapshotMsg:
		snap := entities.Snapshot(msg)
		if snap.Version > m.snap.Version {
			m.snap = snap
			m.refresh()
		}
		return m, waitForSnapshot(m.updates)

	case subscriptionClosedMsg:
		return m, nil

	case noticeMsg:
		m.notice = string(msg)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.snap.QueryInFlight || m.snap.UploadInFlight {
			m.refresh()
		}
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			return m.submit()
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.thread, cmd = m.thread.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit interprets the input line. Slash commands are handled here;
// anything else is a question.
func (m Model) submit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	m.notice = ""

	switch {
	case line == "/quit":
		m.quitting = true
		return m, tea.Quit

	case line == "/upload" || strings.HasPrefix(line, "/upload "):
		path := strings.TrimSpace(strings.TrimPrefix(line, "/upload"))
		if path == "" {
			m.notice = "Usage: /upload <path>"
			return m, nil
		}
		m.input.Reset()
		return m, m.upload(path)

	case line == "/toggle" || strings.HasPrefix(line, "/toggle "):
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "/toggle")))
		if err != nil {
			m.notice = "Usage: /toggle <n>"
			return m, nil
		}
		id, ok := sourceMessageID(m.snap, n)
		if !ok {
			m.notice = fmt.Sprintf("No answer #%d with sources", n)
			return m, nil
		}
		if _, err := m.session.ToggleSources(m.ctx, id); err != nil {
			m.notice = err.Error()
			return m, nil
		}
		m.input.Reset()
		return m, nil
	}

	if _, err := m.session.SubmitQuestion(m.ctx, line); err != nil {
		switch {
		case errors.Is(err, usecases.ErrEmptyQuestion):
		case errors.Is(err, usecases.ErrQueryInFlight):
			m.notice = "Still waiting for the previous answer"
		default:
			m.notice = err.Error()
		}
		return m, nil
	}
	m.input.Reset()
	return m, nil
}

// upload reads the file off the UI goroutine and hands it to the session.
func (m Model) upload(path string) tea.Cmd {
	ctx, session, loader := m.ctx, m.session, m.loader
	return func() tea.Msg {
		file, err := loader.Load(ctx, path)
		if err != nil {
			return noticeMsg(fmt.Sprintf("Cannot upload %s: %v", path, err))
		}
		if _, err := session.SubmitUpload(ctx, *file); err != nil {
			if errors.Is(err, usecases.ErrUploadInFlight) {
				return noticeMsg("An upload is already in progress")
			}
			return noticeMsg(err.Error())
		}
		return nil
	}
}

func (m *Model) refresh() {
	m.thread.SetContent(renderThread(m.snap, m.width, m.spinner.View()))
	m.thread.GotoBottom()
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Document QA") + " " + docStyle.Render(renderDocument(m.snap.Upload)) + "\n")
	b.WriteString(m.thread.View() + "\n")
	b.WriteString(m.input.View() + "\n")
	if m.notice != "" {
		b.WriteString(noticeStyle.Render("  "+m.notice) + "\n")
	}
	b.WriteString(helpStyle.Render("  Enter: send  /upload <path>  /toggle <n>  PgUp/PgDn: scroll  Esc: quit"))
	return b.String()
}

func renderDocument(u entities.UploadSession) string {
	if !u.HasDocument() {
		if u.Status == entities.UploadFailed {
			return "No document (upload failed)"
		}
		return "No document"
	}
	s := fmt.Sprintf("%s · %d chunks · %d vectors", u.FileName, u.ChunksCreated, u.VectorsStored)
	if u.Status == entities.UploadFailed {
		s += " (last upload failed)"
	}
	return s
}

// renderThread draws every entry in order. Answers with sources are numbered
// so /toggle can address them.
func renderThread(snap entities.Snapshot, width int, spin string) string {
	if snap.IsEmpty() && !snap.QueryInFlight && !snap.UploadInFlight {
		return dimStyle.Render("  " + emptyPlaceholder)
	}

	body := lipgloss.NewStyle().Width(max(20, width-2)).PaddingLeft(1)

	var b strings.Builder
	n := 0
	for _, e := range snap.Entries {
		msg := e.Message
		b.WriteString(renderLabel(msg.Kind) + "\n")
		b.WriteString(body.Render(msg.Content) + "\n")

		if msg.HasSources() {
			n++
			arrow := "▼"
			if e.Expanded {
				arrow = "▲"
			}
			b.WriteString(sourcesToggleStyle.Render(fmt.Sprintf(" [#%d] %d Sources %s", n, len(msg.Sources), arrow)) + "\n")
			if e.Expanded {
				for _, src := range msg.Sources {
					b.WriteString(" " + matchStyle.Render(fmt.Sprintf("%d%% match", src.DisplayPercent())) + "\n")
					b.WriteString(sourceBodyStyle.Width(max(20, width-4)).Render(src.Excerpt(ExcerptRunes)) + "\n")
				}
			}
		}
		b.WriteString("\n")
	}

	if snap.UploadInFlight {
		b.WriteString(pendingStyle.Render(" "+spin+" Uploading...") + "\n")
	}
	if snap.QueryInFlight {
		b.WriteString(pendingStyle.Render(" "+spin+" Thinking...") + "\n")
	}
	return b.String()
}

func renderLabel(kind entities.MessageKind) string {
	switch kind {
	case entities.KindUser:
		return userRoleStyle.Render(" You ")
	case entities.KindAssistant:
		return assistantRoleStyle.Render(" Assistant ")
	case entities.KindSystem:
		return systemRoleStyle.Render(" System ")
	case entities.KindError:
		return errorRoleStyle.Render(" Error ")
	}
	return dimStyle.Render(" " + kind.String() + " ")
}

// sourceMessageID maps the n-th answer with sources (1-based) to its ID.
func sourceMessageID(snap entities.Snapshot, n int) (string, bool) {
	if n < 1 {
		return "", false
	}
	seen := 0
	for _, e := range snap.Entries {
		if !e.Message.HasSources() {
			continue
		}
		seen++
		if seen == n {
			return e.Message.ID, true
		}
	}
	return "", false
}
