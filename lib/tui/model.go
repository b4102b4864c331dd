package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-i2p/logger"
	"github.com/qdu-future/paramtune/lib/params"
	"github.com/qdu-future/paramtune/lib/paramsync"
	"github.com/qdu-future/paramtune/lib/session"
)

var log = logger.GetGoI2PLogger()

// Model is the editor state.
type Model struct {
	session *session.Session
	keys    KeyMap
	help    help.Model
	input   textinput.Model

	active  int
	cursor  int
	editing bool

	status    string
	statusErr bool

	width  int
	height int
}

// New returns an editor over s, positioned on the first module.
func New(s *session.Session) Model {
	input := textinput.New()
	input.Prompt = ""
	return Model{
		session: s,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		input:   input,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Abort) {
			return m, tea.Quit
		}
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateBrowsing(msg)
	}

	if m.editing {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.bindings())-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.NextTab):
		m.switchTab(1)

	case key.Matches(msg, m.keys.PrevTab):
		m.switchTab(-1)

	case key.Matches(msg, m.keys.Edit):
		b := m.selected()
		if b == nil {
			return m, nil
		}
		m.editing = true
		m.input.SetValue(b.Text())
		m.input.CursorEnd()
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Save):
		m.save()

	case key.Matches(msg, m.keys.Show):
		m.show()
	}
	return m, nil
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.stopEditing()
		m.setStatus("edit cancelled", false)
		return m, nil

	case key.Matches(msg, m.keys.Edit):
		m.apply()
		return m, nil

	case key.Matches(msg, m.keys.Save):
		if b := m.selected(); b != nil {
			m.session.Engine().SetText(b, m.input.Value())
		}
		m.stopEditing()
		m.save()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) apply() {
	b := m.selected()
	if b == nil {
		m.stopEditing()
		return
	}
	raw := m.input.Value()
	v, err := m.session.Engine().Apply(b, raw)

	var ve *params.ValidationError
	switch {
	case err == nil:
		m.stopEditing()
		m.setStatus(fmt.Sprintf("%s %s = %s", b.Tag, b.Command, v), false)
	case errors.As(err, &ve):
		m.setStatus(fmt.Sprintf("invalid %s value %q for %s", b.Type(), raw, b.Path()), true)
	case errors.Is(err, paramsync.ErrNotConnected):
		m.session.Engine().SetText(b, raw)
		m.stopEditing()
		m.setStatus(fmt.Sprintf("%s is offline: %s kept for saving only", b.Tag, b.Path()), true)
	default:
		m.setStatus(err.Error(), true)
	}
}

func (m *Model) save() {
	report, err := m.session.Save()
	if err != nil {
		log.WithField("at", "tui.Model.save").WithError(err).Warn("save_failed")
		m.setStatus("save failed: "+err.Error(), true)
		return
	}
	msg := fmt.Sprintf("saved %s: %d changed", m.session.Path(), len(report.Changed))
	if n := len(report.Skipped); n > 0 {
		paths := make([]string, 0, n)
		for _, s := range report.Skipped {
			paths = append(paths, s.Tag+":"+s.Path.String())
		}
		m.setStatus(fmt.Sprintf("%s, %d skipped (%s)", msg, n, strings.Join(paths, ", ")), true)
		return
	}
	m.setStatus(msg, false)
}

func (m *Model) show() {
	mod := m.module()
	if mod == nil {
		return
	}
	if err := m.session.Show(mod.Tag); err != nil {
		m.setStatus(fmt.Sprintf("%s show: %v", mod.Tag, err), true)
		return
	}
	m.setStatus(mod.Tag+" show sent", false)
}

func (m *Model) switchTab(delta int) {
	n := len(m.session.Modules())
	if n == 0 {
		return
	}
	m.active = (m.active + delta + n) % n
	m.cursor = 0
}

func (m *Model) stopEditing() {
	m.editing = false
	m.input.Blur()
	m.input.Reset()
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m Model) module() *session.Module {
	mods := m.session.Modules()
	if m.active >= len(mods) {
		return nil
	}
	return mods[m.active]
}

func (m Model) bindings() []*paramsync.Binding {
	if mod := m.module(); mod != nil {
		return mod.Bindings
	}
	return nil
}

func (m Model) selected() *paramsync.Binding {
	bs := m.bindings()
	if m.cursor < 0 || m.cursor >= len(bs) {
		return nil
	}
	return bs[m.cursor]
}

// Status returns the last status line and whether it reports a problem.
func (m Model) Status() (string, bool) { return m.status, m.statusErr }

// Editing reports whether a value is being edited.
func (m Model) Editing() bool { return m.editing }

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("paramtune") + "  " + m.session.Path() + "\n\n")
	b.WriteString(m.viewTabs() + "\n\n")

	if mod := m.module(); mod != nil {
		b.WriteString(m.viewModule(mod))
	}

	if m.status != "" {
		style := statusStyle
		if m.statusErr {
			style = statusErrorStyle
		}
		b.WriteString(style.Render(m.status) + "\n")
	}
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, mod := range m.session.Modules() {
		label := mod.Name
		if label == "" {
			label = mod.Tag
		}
		if mod.Connected() {
			label += " " + onlineStyle.Render("●")
		} else {
			label += " " + offlineStyle.Render("○")
		}
		if i == m.active {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewModule(mod *session.Module) string {
	var b strings.Builder
	if !mod.Linked {
		b.WriteString(disabledStyle.Render(fmt.Sprintf("  module %s not found in document", mod.ID)) + "\n")
	}
	if mod.DialErr != nil {
		b.WriteString(offlineStyle.Render("  "+mod.DialErr.Error()) + "\n")
	}

	for i, bind := range mod.Bindings {
		value := bind.Text()
		if m.editing && i == m.cursor {
			value = m.input.View()
		}
		row := pathStyle.Render(bind.Path().String()) + typeStyle.Render(bind.Type().String()) + value
		if i == m.cursor {
			row = selectedStyle.Render("> " + row)
		} else {
			row = "  " + row
		}
		b.WriteString(row + "\n")
	}
	for _, s := range mod.Skipped {
		row := pathStyle.Render(s.Path.String()) + typeStyle.Render(string(s.Kind)) + "not editable"
		b.WriteString(disabledStyle.Render("  "+row) + "\n")
	}
	return b.String()
}

// Run starts the editor on the terminal and blocks until the user quits.
func Run(s *session.Session) error {
	_, err := tea.NewProgram(New(s), tea.WithAltScreen()).Run()
	return err
}
