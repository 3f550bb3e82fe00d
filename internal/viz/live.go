package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/rebound/internal/dynamo"
	"github.com/san-kum/rebound/internal/sim"
)

const (
	frameInterval   = time.Second / 60
	historyCapacity = 600
)

type TickMsg time.Time

// reboundCounter is attached to the world so the panel can show hits.
type reboundCounter struct{ n int }

func (c *reboundCounter) OnStep(dynamo.Snapshot, float64) {}
func (c *reboundCounter) OnRebound(int, dynamo.Plane)     { c.n++ }

// Model drives a World from Bubble Tea ticks. The world clock only moves by
// the wall time between ticks while running, so pausing does not produce a
// large step on resume.
type Model struct {
	scene    sim.Scene
	world    *sim.World
	clock    *sim.ManualClock
	rebounds *reboundCounter
	logger   *log.Logger

	running  bool
	lastTick time.Time
	elapsed  time.Duration
	steps    int

	heightHistory []float64
	vyHistory     []float64
}

// NewModel builds a world for scene using integ. A nil logger discards.
func NewModel(scene sim.Scene, integ dynamo.Integrator, logger *log.Logger) (Model, error) {
	clock := sim.NewManualClock(time.Now())
	counter := &reboundCounter{}

	opts := []sim.Option{
		sim.WithClock(clock),
		sim.WithDefaultGravity(scene.DefaultGravity),
		sim.WithObserver(counter),
	}
	if integ != nil {
		opts = append(opts, sim.WithIntegrator(integ))
	}
	if logger != nil {
		opts = append(opts, sim.WithLogger(logger))
	}

	w := sim.New(opts...)
	if err := scene.Populate(w); err != nil {
		return Model{}, err
	}

	return Model{
		scene:         scene,
		world:         w,
		clock:         clock,
		rebounds:      counter,
		logger:        logger,
		running:       true,
		heightHistory: make([]float64, 0, historyCapacity),
		vyHistory:     make([]float64, 0, historyCapacity),
	}, nil
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the world.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "up", "down", "left", "right":
			m.redirectGravity(msg.String())
		}
	case TickMsg:
		m.advance(time.Time(msg))
		return m, tick()
	}
	return m, nil
}

// advance moves the world clock by the time since the previous tick.
func (m *Model) advance(now time.Time) {
	var delta time.Duration
	if !m.lastTick.IsZero() {
		delta = now.Sub(m.lastTick)
	}
	m.lastTick = now

	if !m.running {
		return
	}
	if delta > 0 {
		m.clock.Advance(delta)
		m.elapsed += delta
	}
	m.world.Step()
	m.steps++
	m.record()
}

func (m *Model) record() {
	snap := m.world.Snapshot()
	if len(snap.Bodies) == 0 {
		return
	}
	b := snap.Bodies[0]
	m.heightHistory = appendCapped(m.heightHistory, b.Pos[1])
	m.vyHistory = appendCapped(m.vyHistory, b.Vel[1])
}

// appendCapped keeps the newest historyCapacity samples, shifting in place
// once full.
func appendCapped(s []float64, v float64) []float64 {
	if len(s) < historyCapacity {
		return append(s, v)
	}
	copy(s, s[1:])
	s[len(s)-1] = v
	return s
}

// redirectGravity points gravity along an arrow key, keeping the default
// magnitude.
func (m *Model) redirectGravity(key string) {
	mag := m.scene.DefaultGravity.Len()
	switch key {
	case "up":
		m.world.SetGravity(0, mag)
	case "down":
		m.world.SetGravity(0, -mag)
	case "left":
		m.world.SetGravity(-mag, 0)
	case "right":
		m.world.SetGravity(mag, 0)
	}
	if m.logger != nil {
		g := m.world.Gravity()
		m.logger.Debug("gravity redirected", "key", key, "x", g[0], "y", g[1])
	}
}

// reset reloads the scenario. The world keeps its previous tick, so the next
// step is a normal frame.
func (m *Model) reset() {
	if err := m.scene.Populate(m.world); err != nil && m.logger != nil {
		m.logger.Error("reset failed", "err", err)
	}
	m.rebounds.n = 0
	m.steps = 0
	m.elapsed = 0
	m.heightHistory = m.heightHistory[:0]
	m.vyHistory = m.vyHistory[:0]
}

func (m Model) Running() bool { return m.running }

func (m Model) World() *sim.World { return m.world }

// View renders the telemetry panel.
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(headerStyle.Render(strings.ToUpper(m.scene.Name)) + "\n")
	if m.running {
		s.WriteString(statusRunning.Render("RUNNING") + "\n\n")
	} else {
		s.WriteString(statusPaused.Render("PAUSED") + "\n\n")
	}

	g := m.world.Gravity()
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2fs", m.elapsed.Seconds())) + "\n")
	s.WriteString(labelStyle.Render("Steps") + valueStyle.Render(fmt.Sprintf("%d", m.steps)) + "\n")
	s.WriteString(labelStyle.Render("Rebounds") + valueStyle.Render(fmt.Sprintf("%d", m.rebounds.n)) + "\n")
	s.WriteString(labelStyle.Render("Gravity") + valueStyle.Render(fmt.Sprintf("(%.1e, %.1e)", g[0], g[1])) + "\n\n")

	s.WriteString(panelStyle.Render(m.table()) + "\n")

	if len(m.heightHistory) > 1 {
		chart := asciigraph.Plot(m.heightHistory, asciigraph.Height(8), asciigraph.Width(60), asciigraph.Caption("body 0 height"))
		s.WriteString(graphStyle.Render(chart) + "\n")
		s.WriteString(labelStyle.Render("vy") + Sparkline(m.vyHistory, 60) + "\n")
	}

	s.WriteString(helpStyle.Render("SP:Pause R:Reset Q:Quit  ←↑↓→:Gravity"))
	return s.String()
}

func (m Model) table() string {
	var b strings.Builder
	for _, h := range []string{"body", "x", "y", "vx", "vy"} {
		b.WriteString(columnStyle.Render(h))
	}
	b.WriteString("\n")

	for i, body := range m.world.Snapshot().Bodies {
		b.WriteString(cellStyle.Render(fmt.Sprintf("%d", i)))
		for _, v := range []float64{body.Pos[0], body.Pos[1], body.Vel[0], body.Vel[1]} {
			b.WriteString(cellStyle.Render(fmt.Sprintf("%.3f", v)))
		}
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run starts the program in the alternate screen and blocks until quit.
func Run(scene sim.Scene, integ dynamo.Integrator, logger *log.Logger) error {
	m, err := NewModel(scene, integ, logger)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
