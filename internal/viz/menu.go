package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/massspring/internal/scenes"
	"github.com/san-kum/massspring/internal/sim"
)

// Menu picks a built-in scenario and then hands over to the live view.
type Menu struct {
	names  []string
	cursor int
	opts   []sim.Option
	live   *Model
	err    error
	styles Styles
}

func NewMenu(opts ...sim.Option) Menu {
	return Menu{names: scenes.Names(), opts: opts, styles: NewStyles(Themes[0])}
}

func (m Menu) Init() tea.Cmd { return nil }

func (m Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.live != nil {
		next, cmd := m.live.Update(msg)
		live := next.(Model)
		m.live = &live
		return m, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.names)-1 {
			m.cursor++
		}
	case "enter", " ":
		sc, err := scenes.Get(m.names[m.cursor])
		if err != nil {
			m.err = err
			return m, nil
		}
		s, err := sim.New(sc, m.opts...)
		if err != nil {
			m.err = err
			return m, nil
		}
		live := NewModel(s, sc.DefaultDt)
		m.live = &live
		return m, live.Init()
	}
	return m, nil
}

func (m Menu) View() string {
	if m.live != nil {
		return m.live.View()
	}

	st := m.styles
	var b strings.Builder
	b.WriteString("\n  " + st.Header.Render("MASS-SPRING") + "\n")
	for i, name := range m.names {
		sc, _ := scenes.Get(name)
		line := fmt.Sprintf("%-10s %s", name, sc.Description)
		if i == m.cursor {
			b.WriteString("  " + st.Active.Render("▸ "+line) + "\n")
		} else {
			b.WriteString("    " + st.Label.UnsetWidth().Render(line) + "\n")
		}
		if sc.Recommended != nil && i == m.cursor {
			r := sc.Recommended
			b.WriteString("    " + st.Help.UnsetMargins().Render(fmt.Sprintf("recommended: gravity %.2g, wind %.2g, stiffness %.4g", r.Gravity, r.Wind, r.Stiffness)) + "\n")
		}
	}
	if m.err != nil {
		b.WriteString("\n  " + st.Error.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n  " + lipgloss.NewStyle().Foreground(Themes[0].Muted).Render("j/k navigate  enter select  q quit") + "\n")
	return b.String()
}

// RunMenu runs the scenario picker and live view.
func RunMenu(opts ...sim.Option) error {
	_, err := tea.NewProgram(NewMenu(opts...), tea.WithAltScreen()).Run()
	return err
}
