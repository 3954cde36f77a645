package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	subStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	descStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	idleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

// PresetInfo is one entry of the picker menu.
type PresetInfo struct {
	Name        string
	Description string
}

// BuildFunc builds the live view for the chosen preset.
type BuildFunc func(preset string) (Model, error)

const (
	stateMenu = iota
	stateSim
)

// Picker lists presets and hands over to the live view once one is chosen.
type Picker struct {
	state   int
	cursor  int
	presets []PresetInfo
	build   BuildFunc
	live    Model
	err     error
}

func NewPicker(presets []PresetInfo, build BuildFunc) *Picker {
	return &Picker{presets: presets, build: build}
}

func (p *Picker) Init() tea.Cmd { return nil }

func (p *Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p.state == stateSim {
		next, cmd := p.live.Update(msg)
		p.live = next.(Model)
		return p, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.presets)-1 {
			p.cursor++
		}
	case "enter", " ":
		if len(p.presets) == 0 {
			return p, nil
		}
		live, err := p.build(p.presets[p.cursor].Name)
		if err != nil {
			p.err = err
			return p, nil
		}
		p.live, p.state, p.err = live, stateSim, nil
		return p, p.live.Init()
	}
	return p, nil
}

func (p *Picker) View() string {
	if p.state == stateSim {
		return p.live.View()
	}

	var b strings.Builder
	b.WriteString("\n\n    " + titleStyle.Render("DRIFTSIM") + "\n    " + subStyle.Render("drifting particles and ghosts") + "\n    " + subStyle.Render("─────────────────────────") + "\n\n")
	for i, pr := range p.presets {
		if i == p.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", cursorStyle.Render("▸"), activeStyle.Render(fmt.Sprintf("%-10s", pr.Name)), descStyle.Render(pr.Description)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", idleStyle.Render(fmt.Sprintf("  %-10s", pr.Name)), idleStyle.Render(pr.Description)))
		}
	}
	if p.err != nil {
		b.WriteString("\n    " + descStyle.Render(p.err.Error()) + "\n")
	}
	b.WriteString("\n    " + keyStyle.Render("j/k") + idleStyle.Render(" navigate  ") + keyStyle.Render("enter") + idleStyle.Render(" select  ") + keyStyle.Render("q") + idleStyle.Render(" quit") + "\n")
	return b.String()
}

// RunPicker shows the preset menu in the alternate screen.
func RunPicker(presets []PresetInfo, build BuildFunc) error {
	_, err := tea.NewProgram(NewPicker(presets, build), tea.WithAltScreen()).Run()
	return err
}
