// Package tui is the terminal editor: a live plot of the response curve
// and the analyzer, and a keyboard driven parameter panel.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cwbudde/algo-eq/eq/geom"
	"github.com/cwbudde/algo-eq/eq/params"
	"github.com/cwbudde/algo-eq/eq/response"
)

const (
	fineStep    = 0.01
	coarseStep  = 0.1
	panelCols   = 3
	minPlotRows = 4
)

// TickMsg drives one UI refresh.
type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/response.RefreshRate, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Model is the bubbletea model of the editor.
type Model struct {
	engine *response.Engine
	store  *params.Store
	params []*params.Parameter

	Title    string
	Selected int
	Width    int
	Height   int

	frame response.Frame
	err   error
}

// NewModel returns an editor for the parameters in store, drawing what
// engine computes.
func NewModel(engine *response.Engine, store *params.Store) Model {
	return Model{
		engine: engine,
		store:  store,
		params: store.Parameters(),
		Title:  "3-Band EQ",
	}
}

// Init starts the refresh ticker.
func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles key presses, resizes and refresh ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.Selected = (m.Selected - 1 + len(m.params)) % len(m.params)
		case "down", "j", "tab":
			m.Selected = (m.Selected + 1) % len(m.params)
		case "left", "h":
			m.err = nudge(m.store, m.params[m.Selected], -1, fineStep)
		case "right", "l":
			m.err = nudge(m.store, m.params[m.Selected], 1, fineStep)
		case "shift+left", "H":
			m.err = nudge(m.store, m.params[m.Selected], -1, coarseStep)
		case "shift+right", "L":
			m.err = nudge(m.store, m.params[m.Selected], 1, coarseStep)
		case " ", "space", "enter":
			m.err = toggle(m.store, m.params[m.Selected])
		case "a":
			p, _ := m.store.Lookup(params.AnalyzerBypass)
			m.err = toggle(m.store, p)
		case "r":
			m.store.Reset()
			m.err = nil
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case TickMsg:
		bounds := m.plotBounds()
		m.engine.Tick(bounds)
		m.frame = m.engine.Frame(bounds)
		return m, tick()
	}

	return m, nil
}

// View renders the editor.
func (m Model) View() string {
	if m.Width == 0 {
		return "Initializing...\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.Title))
	b.WriteString("  ")
	b.WriteString(subtitleStyle.Render(m.status()))
	b.WriteString("\n")
	b.WriteString(m.renderPlot())
	b.WriteString("\n")
	b.WriteString(m.renderFrequencyAxis())
	b.WriteString("\n\n")
	b.WriteString(m.renderPanel())
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(bypassedStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("↑/↓ select  ←/→ adjust  shift+←/→ coarse  space toggle  a analyzer  r reset  q quit"))
	return b.String()
}

func (m Model) status() string {
	if m.frame.AnalyzerEnabled {
		return "analyzer on"
	}
	return "analyzer off"
}

func (m Model) panelRows() int {
	return (len(m.params) + panelCols - 1) / panelCols
}

// plotBounds is the path space of the plot: one unit per terminal cell.
func (m Model) plotBounds() geom.Rect {
	rows := m.Height - m.panelRows() - 6
	rows = max(rows, minPlotRows)
	return geom.NewRect(0, 0, float64(max(m.Width, 1)), float64(rows-1))
}

func (m Model) renderPlot() string {
	bounds := m.plotBounds()
	c := newCanvas(int(bounds.Width), int(bounds.Height)+1)

	for _, line := range response.FrequencyGrid(bounds) {
		c.vline(line.Pos)
	}
	for _, line := range response.GainGrid(bounds) {
		c.hline(line.Pos)
	}
	c.path(m.frame.Left, cellLeft)
	c.path(m.frame.Right, cellRight)
	c.path(m.frame.Response, cellResponse)

	return c.render()
}

func (m Model) renderFrequencyAxis() string {
	axis := []rune(strings.Repeat(" ", max(m.Width, 1)))
	next := 0
	for _, line := range response.FrequencyGrid(m.plotBounds()) {
		label := []rune(line.Label)
		at := int(line.Pos) - len(label)/2
		at = max(at, next)
		at = min(at, len(axis)-len(label))
		if at < next || at < 0 {
			continue
		}
		copy(axis[at:], label)
		next = at + len(label) + 1
	}
	return labelStyle.Render(string(axis))
}

func (m Model) renderPanel() string {
	colWidth := max(m.Width/panelCols, 24)
	cell := lipgloss.NewStyle().Width(colWidth)

	var rows []string
	for r := 0; r < m.panelRows(); r++ {
		var cols []string
		for c := 0; c < panelCols; c++ {
			i := r*panelCols + c
			if i >= len(m.params) {
				break
			}
			cols = append(cols, cell.Render(m.renderParam(i)))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cols...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) renderParam(i int) string {
	p := m.params[i]
	name := p.Name()
	if i == m.Selected {
		name = selectedStyle.Render(name)
	} else {
		name = labelStyle.Render(name)
	}

	value := valueStyle.Render(FormatValue(p))
	if p.Kind() == params.KindBool && p.Bool() {
		value = bypassedStyle.Render(FormatValue(p))
	}
	return name + " " + value
}

// FormatValue renders the current value of p with its unit.
func FormatValue(p *params.Parameter) string {
	switch p.Kind() {
	case params.KindBool:
		if p.Bool() {
			return "on"
		}
		return "off"
	case params.KindChoice:
		choices := p.Choices()
		if i := p.Index(); i >= 0 && i < len(choices) {
			return choices[i]
		}
		return fmt.Sprint(p.Index())
	}

	v := p.Value()
	switch p.ID() {
	case params.LowCutFreq, params.HighCutFreq, params.PeakFreq:
		if v >= 1000 {
			return fmt.Sprintf("%.2f kHz", v/1000)
		}
		return fmt.Sprintf("%.0f Hz", v)
	case params.PeakGain:
		return fmt.Sprintf("%+.1f dB", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

// nudge moves p by delta of its normalised travel in direction dir, or by
// at least one step. Choice parameters move one entry and bools toggle.
func nudge(s *params.Store, p *params.Parameter, dir int, delta float64) error {
	switch p.Kind() {
	case params.KindBool:
		return toggle(s, p)
	case params.KindChoice:
		return s.Set(p.ID(), float64(p.Index()+dir))
	}

	rng := p.Range()
	old := p.Value()
	target := rng.FromNormalized(p.Normalized() + float64(dir)*delta)
	if rng.Step > 0 && rng.Snap(target) == old {
		target = old + float64(dir)*rng.Step
	}
	return s.Set(p.ID(), target)
}

func toggle(s *params.Store, p *params.Parameter) error {
	switch p.Kind() {
	case params.KindBool:
		return s.SetBool(p.ID(), !p.Bool())
	case params.KindChoice:
		return s.Set(p.ID(), float64((p.Index()+1)%len(p.Choices())))
	}
	return nil
}
