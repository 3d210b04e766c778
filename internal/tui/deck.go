package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pmp-reports/internal/render"
	"pmp-reports/internal/slides"
)

const deckHelp = "←/→ slide  ↑/↓ scroll  home/end first/last  1-9 jump  q close"

// DeckModel full-screen presenter over a Navigator. Slides only change on a key.
type DeckModel struct {
	title    string
	nav      *render.Navigator
	views    []render.View
	styles   Styles
	viewport viewport.Model
	width    int
	height   int
}

// NewDeckModel starts on slide start, clamped to the deck
func NewDeckModel(title string, deck []slides.Slide, start int) DeckModel {
	nav := render.NewNavigator(deck)
	if start >= nav.Len() {
		start = nav.Len() - 1
	}
	if start > 0 {
		_ = nav.JumpTo(start)
	}
	m := DeckModel{
		title:    title,
		nav:      nav,
		views:    render.LayoutDeck(deck),
		styles:   DefaultStyles(),
		viewport: viewport.New(80, 20),
		width:    80,
		height:   24,
	}
	m.refresh()
	return m
}

func (m DeckModel) Index() int   { return m.nav.Index() }
func (m DeckModel) Closed() bool { return m.nav.Closed() }

func (m DeckModel) Init() tea.Cmd { return nil }

func (m DeckModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-3, 1) // header, status and help lines
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		key := msg.String()
		if n, ok := digit(key); ok {
			if n <= m.nav.Len() && m.nav.JumpTo(n-1) == nil {
				m.refresh()
			}
			return m, nil
		}
		if cmd := render.KeyCommand(key); cmd != render.CmdNone {
			changed := m.nav.Apply(cmd)
			if m.nav.Closed() {
				return m, tea.Quit
			}
			if changed {
				m.refresh()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func digit(key string) (int, bool) {
	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		return int(key[0] - '0'), true
	}
	return 0, false
}

func (m *DeckModel) refresh() {
	if m.nav.Len() == 0 {
		m.viewport.SetContent(m.styles.Muted.Render("This report has no slides."))
		return
	}
	m.viewport.SetContent(renderView(m.views[m.nav.Index()], m.width, m.styles))
	m.viewport.GotoTop()
}

func (m DeckModel) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render(m.title))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.styles.Status.Render(fmt.Sprintf("%d / %d", m.nav.Index()+1, m.nav.Len())))
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render(deckHelp))
	return b.String()
}

// renderView lays one slide out as terminal text
func renderView(v render.View, width int, s Styles) string {
	var b strings.Builder
	b.WriteString(s.CardHead.Render(v.Title))
	b.WriteString("\n")
	if v.Subtitle != "" {
		b.WriteString(s.Subtitle.Render(v.Subtitle))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if v.Hero != nil {
		b.WriteString(s.Label.Render("Image: "))
		b.WriteString(v.Hero.ImageURL)
		if v.Hero.Caption != "" {
			b.WriteString(s.Muted.Render(" (" + v.Hero.Caption + ")"))
		}
		b.WriteString("\n\n")
	}

	writeFields(&b, v.Summary, s)
	if len(v.Summary) > 0 {
		b.WriteString("\n")
	}

	card := s.Card
	if width > 6 {
		card = card.Width(width - 4)
	}
	for _, c := range v.Cards {
		var cb strings.Builder
		head := s.CardHead.Render(c.Title)
		if c.Badge != nil {
			head = lipgloss.JoinHorizontal(lipgloss.Top, head, " ", s.Badge(c.Badge))
		}
		cb.WriteString(head)
		if c.Subtitle != "" {
			cb.WriteString("\n")
			cb.WriteString(s.Muted.Render(c.Subtitle))
		}
		if len(c.Fields) > 0 {
			cb.WriteString("\n")
			writeFields(&cb, c.Fields, s)
		}
		if c.ImageURL != "" {
			cb.WriteString("\n")
			cb.WriteString(s.Label.Render("Image: ") + c.ImageURL)
		}
		b.WriteString(card.Render(strings.TrimRight(cb.String(), "\n")))
		b.WriteString("\n")
	}

	if v.Empty != "" {
		b.WriteString(s.Muted.Render(v.Empty))
		b.WriteString("\n")
	}

	if len(v.Footer) > 0 {
		b.WriteString("\n")
		writeFields(&b, v.Footer, s)
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeFields(b *strings.Builder, fields []slides.Field, s Styles) {
	for _, f := range fields {
		if f.Value == "" {
			continue
		}
		b.WriteString(s.Label.Render(f.Label + ": "))
		b.WriteString(s.Value.Render(f.Value))
		b.WriteString("\n")
	}
}
