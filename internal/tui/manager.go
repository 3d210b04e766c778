package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"pmp-reports/internal/domain"
	"pmp-reports/internal/manager"
)

const managerHelp = "↑/↓ move  enter expand/present  / filter  s share  d delete  r reload  q quit"

type loadedMsg struct{ err error }

type deletedMsg struct{ err error }

type sharedMsg struct {
	link string
	err  error
}

type copiedExpiredMsg struct{}

// row one line of the list: a project group header or one of its reports
type row struct {
	group  *domain.ReportGroup
	report *domain.StoredReport
}

// ManagerModel reports manager screen over a manager.Manager
type ManagerModel struct {
	ctx       context.Context
	mgr       *manager.Manager
	styles    Styles
	filter    textinput.Model
	filtering bool
	cursor    int
	loading   bool
	status    string
	err       error
	selected  string
}

func NewManagerModel(ctx context.Context, mgr *manager.Manager) ManagerModel {
	ti := textinput.New()
	ti.Placeholder = "project code or name"
	ti.Prompt = "/ "
	ti.CharLimit = 80
	return ManagerModel{
		ctx:     ctx,
		mgr:     mgr,
		styles:  DefaultStyles(),
		filter:  ti,
		loading: true,
	}
}

// Selected report chosen for presenting, "" when the user just quit
func (m ManagerModel) Selected() string { return m.selected }

func (m ManagerModel) Init() tea.Cmd { return m.load() }

func (m ManagerModel) load() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{err: m.mgr.Load(m.ctx)}
	}
}

func (m ManagerModel) confirmDelete() tea.Cmd {
	return func() tea.Msg {
		return deletedMsg{err: m.mgr.ConfirmDelete(m.ctx)}
	}
}

func (m ManagerModel) share(reportID string) tea.Cmd {
	return func() tea.Msg {
		link, err := m.mgr.Share(reportID)
		return sharedMsg{link: link, err: err}
	}
}

func (m ManagerModel) rows() []row {
	var out []row
	groups := m.mgr.Groups()
	for i := range groups {
		g := &groups[i]
		out = append(out, row{group: g})
		if m.mgr.Expanded(g.ProjectID) {
			for _, r := range g.Reports {
				out = append(out, row{group: g, report: r})
			}
		}
	}
	return out
}

func (m *ManagerModel) clampCursor() {
	n := len(m.rows())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m ManagerModel) current() (row, bool) {
	rows := m.rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return row{}, false
	}
	return rows[m.cursor], true
}

func (m ManagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		m.clampCursor()
		return m, nil

	case deletedMsg:
		m.err = msg.err
		m.status = ""
		if msg.err == nil {
			m.status = "Report deleted"
		}
		m.clampCursor()
		return m, nil

	case sharedMsg:
		m.err = msg.err
		m.status = msg.link
		if msg.link == "" {
			return m, nil
		}
		if msg.err != nil {
			return m, nil
		}
		return m, tea.Tick(manager.CopiedWindow, func(time.Time) tea.Msg { return copiedExpiredMsg{} })

	case copiedExpiredMsg:
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		if m.mgr.PendingDelete() != "" {
			return m.updateConfirm(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m ManagerModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.filtering = false
		m.filter.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.mgr.SetFilter(m.filter.Value())
	m.cursor = 0
	return m, cmd
}

func (m ManagerModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		return m, m.confirmDelete()
	case "n", "N", "esc", "q":
		m.mgr.CancelDelete()
		m.status = "Delete cancelled"
	}
	return m, nil
}

func (m ManagerModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		m.cursor--
		m.clampCursor()
	case "down", "j":
		m.cursor++
		m.clampCursor()
	case "/":
		m.filtering = true
		return m, m.filter.Focus()
	case "r":
		m.loading = true
		m.err = nil
		return m, m.load()
	case "enter", " ":
		r, ok := m.current()
		if !ok {
			return m, nil
		}
		if r.report == nil {
			m.mgr.Toggle(r.group.ProjectID)
			return m, nil
		}
		m.selected = r.report.ReportID
		return m, tea.Quit
	case "d":
		if r, ok := m.current(); ok && r.report != nil {
			m.err = m.mgr.RequestDelete(r.report.ReportID)
		}
	case "s":
		if r, ok := m.current(); ok && r.report != nil {
			return m, m.share(r.report.ReportID)
		}
	}
	return m, nil
}

func (m ManagerModel) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render("Project Reports"))
	b.WriteString("\n")
	if m.filtering || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	rows := m.rows()
	switch {
	case m.loading:
		b.WriteString(m.styles.Muted.Render("Loading reports..."))
		b.WriteString("\n")
	case len(rows) == 0:
		b.WriteString(m.styles.Muted.Render("No reports found."))
		b.WriteString("\n")
	}

	for i, r := range rows {
		line := m.rowText(r)
		if i == m.cursor {
			line = m.styles.Selected.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if id := m.mgr.PendingDelete(); id != "" {
		b.WriteString(m.styles.Confirm.Render(fmt.Sprintf("Delete report %s? This cannot be undone. (y/n)", id)))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(m.styles.Error.Render(m.err.Error()))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(m.styles.Status.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.Muted.Render(managerHelp))
	return b.String()
}

func (m ManagerModel) rowText(r row) string {
	if r.report == nil {
		marker := "▸"
		if m.mgr.Expanded(r.group.ProjectID) {
			marker = "▾"
		}
		return m.styles.Group.Render(fmt.Sprintf("%s %s  %s (%d)", marker, r.group.ProjectCode, r.group.ProjectName, len(r.group.Reports)))
	}

	rep := r.report
	text := fmt.Sprintf("    %s  v%d  %s", rep.Period().Label(), rep.Version, rep.CreatedAt.Format("2006-01-02 15:04"))
	if rep.Latest {
		text += "  latest"
	}
	if rep.ShareToken != nil && m.mgr.Copied(*rep.ShareToken) {
		text += "  " + m.styles.Copied.Render("Copied!")
	}
	return text
}
