// Package ui provides the interactive task page.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"todo/internal/controller"
	"todo/internal/output"
	"todo/internal/service"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	doneStyle   = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle   = lipgloss.NewStyle().Faint(true)
)

const (
	helpList  = "a add • j/k move • space toggle • d delete • r refresh • q quit"
	helpDraft = "enter save • esc back"
)

// Run shows the task page until the user quits or ctx is cancelled.
func Run(ctx context.Context, ctrl *controller.Controller, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	program := tea.NewProgram(newModel(ctx, ctrl), opts...)
	_, err := program.Run()
	return err
}

// syncedMsg reports that a controller call finished; the model re-reads the snapshot.
type syncedMsg struct {
	err error
}

// submittedMsg is syncedMsg for draft submission, which may also clear the draft.
type submittedMsg struct {
	err error
}

type model struct {
	ctx   context.Context
	ctrl  *controller.Controller
	input textinput.Model
	tasks []service.Task
	err   error

	cursor     int
	pending    int  // controller calls in flight
	submitting bool // enter is ignored until submittedMsg
}

func newModel(ctx context.Context, ctrl *controller.Controller) model {
	ti := textinput.New()
	ti.Placeholder = "What needs to be done?"
	ti.CharLimit = 256
	ti.Width = 40
	ti.Prompt = "> "
	ti.SetValue(ctrl.Draft())

	return model{
		ctx:     ctx,
		ctrl:    ctrl,
		input:   ti,
		tasks:   ctrl.Tasks(),
		pending: 1, // Init
	}
}

func (m model) Init() tea.Cmd {
	return m.sync(m.ctrl.Initialize)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case syncedMsg:
		m.pending--
		m.refreshView(msg.err)
		return m, nil
	case submittedMsg:
		m.pending--
		m.submitting = false
		m.input.SetValue(m.ctrl.Draft())
		m.input.CursorEnd()
		m.refreshView(msg.err)
		return m, nil
	case tea.WindowSizeMsg:
		m.input.Width = max(msg.Width-10, 10)
		return m, nil
	case tea.KeyMsg:
		if m.input.Focused() {
			return m.updateDraft(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m model) updateDraft(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.input.Blur()
		return m, nil
	case "enter":
		if m.submitting {
			return m, nil
		}
		m.submitting = true
		m.pending++
		return m, m.submit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.ctrl.SetDraft(m.input.Value())
	return m, cmd
}

func (m model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "a", "tab":
		cmd := m.input.Focus()
		return m, cmd
	case "j", "down":
		m.cursor = clampCursor(m.cursor+1, len(m.tasks))
	case "k", "up":
		m.cursor = clampCursor(m.cursor-1, len(m.tasks))
	case "r":
		m.pending++
		return m, m.sync(m.ctrl.Refresh)
	case " ", "space", "x":
		if len(m.tasks) == 0 {
			return m, nil
		}
		task := m.tasks[m.cursor]
		m.pending++
		return m, m.sync(func(ctx context.Context) error {
			return m.ctrl.ToggleTask(ctx, task)
		})
	case "d":
		if len(m.tasks) == 0 {
			return m, nil
		}
		id := m.tasks[m.cursor].ID
		m.pending++
		return m, m.sync(func(ctx context.Context) error {
			return m.ctrl.RemoveTask(ctx, id)
		})
	}
	return m, nil
}

func (m model) sync(fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return syncedMsg{err: fn(ctx)}
	}
}

func (m model) submit() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		_, err := ctrl.SubmitDraft(ctx)
		return submittedMsg{err: err}
	}
}

// refreshView copies the controller snapshot into the model.
func (m *model) refreshView(err error) {
	m.tasks = m.ctrl.Tasks()
	m.err = err
	m.cursor = clampCursor(m.cursor, len(m.tasks))
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Todo"))
	if m.pending > 0 {
		b.WriteString(helpStyle.Render("  syncing..."))
	}
	b.WriteString("\n\n")

	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if len(m.tasks) == 0 {
		b.WriteString("No tasks yet. Press 'a' to add one.\n")
	} else {
		b.WriteString(m.renderTaskList())
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.input.Focused() {
		b.WriteString(helpStyle.Render(helpDraft))
	} else {
		b.WriteString(helpStyle.Render(helpList))
	}
	b.WriteString("\n")
	return b.String()
}

func (m model) renderTaskList() string {
	var b strings.Builder
	for i, t := range m.tasks {
		cursor := "  "
		if i == m.cursor && !m.input.Focused() {
			cursor = cursorStyle.Render("> ")
		}
		title := output.NormalizeTitle(t.Title)
		if t.Completed {
			title = doneStyle.Render(title)
		}
		fmt.Fprintf(&b, "%s%s %s\n", cursor, output.Mark(t.Completed), title)
	}
	return b.String()
}

func clampCursor(cursor, n int) int {
	if n == 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
