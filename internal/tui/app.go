// Package tui hosts a playback controller in a bubbletea program.
package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/san-kum/cooldown/internal/chart"
	"github.com/san-kum/cooldown/internal/config"
	"github.com/san-kum/cooldown/internal/playback"
	"github.com/san-kum/cooldown/internal/thermal"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

// rows above the chart: title, status, live line, progress
const chartTop = 4

var stepSizes = []float64{1, 2, 5, 10, 20, 30, 60, 120, 300}

type tickMsg time.Time

type Model struct {
	ctrl  *playback.Controller
	form  *config.Form
	chart *chart.Chart
	log   logrus.FieldLogger

	frame   time.Duration
	ticking bool
	frames  int
	err     error

	editing     bool
	paramCursor int
	editBuf     string
	typing      bool

	width  int
	height int
}

// New wires a controller, its form and a chart together. The chart is
// registered as the controller's renderer.
func New(form *config.Form, fps float64, log logrus.FieldLogger, opts ...playback.Option) *Model {
	if fps <= 0 {
		fps = config.DefaultFPS
	}
	ch := chart.New(chart.DefaultWidth, chart.DefaultHeight)
	opts = append(opts, playback.WithRenderer(ch), playback.WithLogger(log))
	return &Model{
		ctrl:   playback.New(form, opts...),
		form:   form,
		chart:  ch,
		log:    log,
		frame:  time.Duration(float64(time.Second) / fps),
		width:  80,
		height: 24,
	}
}

func (m *Model) Controller() *playback.Controller { return m.ctrl }

func (m *Model) Init() tea.Cmd {
	m.err = m.ctrl.Reset()
	return nil
}

// tick is the next-frame primitive: one controller Tick per message.
func (m *Model) tick() tea.Cmd {
	if m.ticking {
		return nil
	}
	m.ticking = true
	return tea.Tick(m.frame, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.chart.Resize(msg.Width-12, msg.Height-chartTop-8)
		m.rerender()
		return m, nil
	case tickMsg:
		m.ticking = false
		if m.ctrl.Phase() != playback.Running {
			return m, nil
		}
		m.frames++
		if err := m.ctrl.Tick(); err != nil {
			m.err = err
		}
		if m.ctrl.Phase() == playback.Running {
			return m, m.tick()
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) rerender() {
	if log := m.ctrl.Log(); log != nil {
		m.chart.Render(log, m.ctrl.Snapshot().Cursor)
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.editing {
		return m.formKey(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.ctrl.Pause()
		return tea.Quit
	case " ", "p":
		return m.togglePlay()
	case "r":
		m.err = m.ctrl.Reset()
	case "+", "=":
		m.ctrl.SetSpeed(m.ctrl.Speed() + 0.5)
	case "-", "_":
		m.ctrl.SetSpeed(m.ctrl.Speed() - 0.5)
	case "0":
		m.ctrl.SetSpeed(playback.DefaultSpeed)
	case "right", "l":
		m.err = m.ctrl.SetStepSize(nextStep(m.ctrl.StepSize(), 1))
	case "left", "h":
		m.err = m.ctrl.SetStepSize(nextStep(m.ctrl.StepSize(), -1))
	case "[":
		m.scrub(-1)
	case "]":
		m.scrub(1)
	case "{":
		m.scrub(-10)
	case "}":
		m.scrub(10)
	case "e":
		m.ctrl.Pause()
		m.editing = true
	}
	return nil
}

func (m *Model) togglePlay() tea.Cmd {
	if m.ctrl.Phase() == playback.Running {
		m.ctrl.Pause()
		return nil
	}
	if _, err := m.ctrl.Play(); err != nil {
		m.err = err
		return nil
	}
	m.err = nil
	return m.tick()
}

func (m *Model) scrub(delta int) {
	log := m.ctrl.Log()
	if log == nil {
		return
	}
	i := m.ctrl.Snapshot().Cursor + delta
	i = max(0, min(log.Len()-1, i))
	m.err = m.ctrl.Seek(i)
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return
	}
	if msg.Y < chartTop || msg.Y >= chartTop+m.chart.Lines() || msg.X <= m.chart.Origin() {
		return
	}
	if i, ok := m.chart.IndexAt(msg.X); ok {
		m.err = m.ctrl.Seek(i)
	}
}

func nextStep(cur float64, dir int) float64 {
	for i, s := range stepSizes {
		if s >= cur {
			j := i + dir
			if s > cur && dir > 0 {
				j = i
			}
			return stepSizes[max(0, min(len(stepSizes)-1, j))]
		}
	}
	if dir < 0 {
		return stepSizes[len(stepSizes)-1]
	}
	return cur
}

func (m *Model) formKey(msg tea.KeyMsg) tea.Cmd {
	if m.typing {
		switch msg.String() {
		case "enter":
			v, err := strconv.ParseFloat(m.editBuf, 64)
			if err != nil {
				m.err = fmt.Errorf("%s: %w", config.Params[m.paramCursor].Label, err)
			} else {
				_ = m.form.Set(config.Params[m.paramCursor].Name, v)
				m.err = nil
			}
			m.typing = false
			m.editBuf = ""
		case "esc":
			m.typing = false
			m.editBuf = ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if s := msg.String(); len(s) == 1 {
				c := s[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == 'e' {
					m.editBuf += s
				}
			}
		}
		return nil
	}

	switch msg.String() {
	case "esc", "e", "q":
		m.editing = false
		// new values take effect on reset
		m.err = m.ctrl.Reset()
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(config.Params)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		m.typing = true
		m.editBuf = strconv.FormatFloat(config.Params[m.paramCursor].Get(m.form.Raw()), 'g', -1, 64)
	}
	return nil
}

func (m *Model) View() string {
	var b strings.Builder
	snap := m.ctrl.Snapshot()

	status := dim.Render("○ idle")
	switch snap.Phase {
	case playback.Running:
		status = green.Render(Spinner(m.frames) + " running")
	case playback.Paused:
		status = yellow.Render("○ paused")
	}

	b.WriteString(cyan.Render("cooldown") + "  " + dim.Render("lumped-mass pipe cooldown") + "\n")
	b.WriteString(fmt.Sprintf("%s  speed %s  step %s  %s\n",
		status,
		white.Render(fmt.Sprintf("%.1f×", snap.Speed)),
		white.Render(fmt.Sprintf("%.0f s", snap.StepSize)),
		dim.Render(fmt.Sprintf("%d steps/tick", snap.StepsPerTick))))
	if m.ctrl.HasRun() {
		b.WriteString(fmt.Sprintf("time %s  temp %s  target %s  Qnet %s  net %s  gas %s\n",
			magenta.Render(fmt.Sprintf("%.2f h", snap.Hours())),
			magenta.Render(fmt.Sprintf("%.1f °C", snap.Celsius())),
			dim.Render(fmt.Sprintf("%.1f °C", snap.TargetK-thermal.KelvinOffset)),
			white.Render(fmt.Sprintf("%.0f W", snap.NetPower)),
			white.Render(fmt.Sprintf("%.2f MJ", snap.NetMJ)),
			white.Render(fmt.Sprintf("%.0f kg", snap.GasKg))))
	} else {
		b.WriteString(dim.Render("no run: fix the inputs (e) and reset (r)") + "\n")
	}
	if m.ctrl.HasRun() {
		b.WriteString(ProgressBar(snap.Progress(), max(20, m.width-10)) + dim.Render(fmt.Sprintf(" %3.0f%%", 100*snap.Progress())) + "\n")
	} else {
		b.WriteString(dimmer.Render(strings.Repeat("─", max(20, m.width-2))) + "\n")
	}

	if plot := m.chart.String(); plot != "" && m.ctrl.HasRun() {
		b.WriteString(plot + "\n")
	}

	if np := m.ctrl.NetPower(); len(np) > 1 {
		b.WriteString(dim.Render("Qnet ") + cyan.Render(sparkline(np[1:], 40)) + "\n")
	}

	if m.err != nil {
		b.WriteString("\n" + m.errorLine() + "\n")
	}

	if m.editing {
		b.WriteString("\n" + m.viewForm())
		b.WriteString(dim.Render("↑↓ select  enter edit  esc apply & reset") + "\n")
	} else {
		b.WriteString("\n" + dim.Render("space play/pause  r reset  ±speed  ←→ step  [ ] scrub  click seek  e inputs  q quit") + "\n")
	}
	return b.String()
}

func (m *Model) errorLine() string {
	var se *thermal.StallError
	if errors.As(m.err, &se) {
		return red.Render("stall: ") + white.Render(se.Error())
	}
	return red.Render("error: ") + white.Render(m.err.Error())
}

func (m *Model) viewForm() string {
	var b strings.Builder
	raw := m.form.Raw()
	for i, p := range config.Params {
		val := fmt.Sprintf("%10.3f", p.Get(raw))
		if m.typing && i == m.paramCursor {
			val = fmt.Sprintf("%10s", m.editBuf+"▋")
		}
		label := fmt.Sprintf("%-26s", p.Label)
		unit := dim.Render(" " + p.Unit)
		if i == m.paramCursor {
			b.WriteString(cyan.Render("▸ ") + white.Render(label) + magenta.Render(val) + unit + "\n")
		} else {
			b.WriteString("  " + dim.Render(label) + dim.Render(val) + unit + "\n")
		}
	}
	return b.String()
}

// Run starts the program on the alternate screen with mouse reporting.
func Run(m *Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
