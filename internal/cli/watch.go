package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/render"
	"github.com/matzehuels/forcegraph/pkg/sim"
)

const (
	// cellWidth and cellHeight are the simulation units covered by one
	// terminal cell. Cells are about twice as tall as they are wide.
	cellWidth  = 8.0
	cellHeight = 16.0

	// dragStep is how far one arrow key moves the selected node.
	dragStep = 10.0

	statusLines = 2
	defaultFPS  = 30
)

const (
	glyphNode   = '●'
	glyphPinned = '◆'
	glyphLink   = '·'
)

var (
	watchLinkStyle     = lipgloss.NewStyle().Foreground(colorDim)
	watchSelectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	watchPausedStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
)

// watchCommand creates the watch command for animating a simulation.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		fps   int
		flags simFlags
	)

	cmd := &cobra.Command{
		Use:   "watch [graph.json]",
		Short: "Animate the simulation in the terminal",
		Long: `Animate the simulation in the terminal.

Keys:
  tab / shift+tab   select next / previous node
  arrows or hjkl    drag the selected node (pins it and reheats)
  u / enter         release the selected node
  space             pause or resume
  r                 restart from the initial placement
  q / esc           quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, simCfg, err := c.resolve(cmd, &flags)
			if err != nil {
				return err
			}
			if fps <= 0 {
				return fmt.Errorf("--fps must be positive (got %d)", fps)
			}
			return c.runWatch(cmd.Context(), args[0], simCfg, time.Second/time.Duration(fps))
		},
	}

	cmd.Flags().IntVar(&fps, "fps", defaultFPS, "frames (and ticks) per second")
	flags.register(cmd)

	return cmd
}

func (c *CLI) runWatch(ctx context.Context, input string, simCfg sim.Config, interval time.Duration) error {
	g, err := loadGraph(ctx, input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	// Debug logs would tear the alt screen.
	simCfg.Logger = nil
	s, err := sim.New(g, simCfg)
	if err != nil {
		return fmt.Errorf("create simulation: %w", err)
	}
	defer s.Dispose()

	m, err := newWatchModel(s, interval)
	if err != nil {
		return err
	}
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	if wm, ok := final.(watchModel); ok && wm.err != nil {
		return wm.err
	}
	return nil
}

// =============================================================================
// watchModel - Live simulation view
// =============================================================================

type frameMsg time.Time

// watchModel is the bubbletea model driving a simulation from the keyboard.
type watchModel struct {
	sim      *sim.Simulation
	interval time.Duration
	palette  *render.Palette
	layout   graph.Layout

	ids      []string
	selected int // index into ids, -1 for none
	paused   bool
	cols     int
	rows     int
	err      error
}

func newWatchModel(s *sim.Simulation, interval time.Duration) (watchModel, error) {
	l, err := s.Snapshot()
	if err != nil {
		return watchModel{}, err
	}
	ids := make([]string, len(l.Nodes))
	for i, n := range l.Nodes {
		ids[i] = n.ID
	}
	return watchModel{
		sim:      s,
		interval: interval,
		palette:  render.NewPalette(l),
		layout:   l,
		ids:      ids,
		selected: -1,
	}, nil
}

func (m watchModel) frame() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m watchModel) Init() tea.Cmd {
	return m.frame()
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		if !m.paused && m.sim.State() != sim.StateSettled {
			if _, err := m.sim.Tick(); err != nil {
				return m.fail(err)
			}
		}
		return m.refresh(), m.frame()

	case tea.WindowSizeMsg:
		m.cols, m.rows = msg.Width, msg.Height-statusLines
		if m.cols > 0 && m.rows > 0 {
			if err := m.sim.Resize(float64(m.cols)*cellWidth, float64(m.rows)*cellHeight); err != nil {
				return m.fail(err)
			}
		}
		return m.refresh(), nil

	case tea.KeyMsg:
		return m.handleKey(msg.String())
	}
	return m, nil
}

func (m watchModel) handleKey(key string) (tea.Model, tea.Cmd) {
	var err error
	switch key {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case "tab":
		if len(m.ids) > 0 {
			m.selected = (m.selected + 1) % len(m.ids)
		}
	case "shift+tab":
		if len(m.ids) > 0 {
			m.selected = (m.selected - 1 + len(m.ids)) % len(m.ids)
		}
	case "left", "h":
		err = m.drag(-dragStep, 0)
	case "right", "l":
		err = m.drag(dragStep, 0)
	case "up", "k":
		err = m.drag(0, -dragStep)
	case "down", "j":
		err = m.drag(0, dragStep)
	case "u", "enter":
		err = m.release()
	case " ", "space":
		m.paused = !m.paused
	case "r":
		err = m.sim.Restart()
	}
	if err != nil {
		return m.fail(err)
	}
	return m.refresh(), nil
}

// drag pins the selected node one step away from where it is and keeps the
// simulation warm while the node is held.
func (m watchModel) drag(dx, dy float64) error {
	if m.selected < 0 {
		return nil
	}
	id := m.ids[m.selected]
	n, err := m.sim.Node(id)
	if err != nil {
		return err
	}
	if err := m.sim.Pin(id, n.X+dx, n.Y+dy); err != nil {
		return err
	}
	return m.sim.Reheat(sim.DefaultDragAlpha)
}

// release unpins the selected node and lets the simulation cool.
func (m watchModel) release() error {
	if m.selected < 0 {
		return nil
	}
	if err := m.sim.Unpin(m.ids[m.selected]); err != nil {
		return err
	}
	return m.sim.Reheat(0)
}

func (m watchModel) refresh() watchModel {
	if l, err := m.sim.Snapshot(); err == nil {
		m.layout = l
	}
	return m
}

func (m watchModel) fail(err error) (tea.Model, tea.Cmd) {
	m.err = err
	return m, tea.Quit
}

func (m watchModel) View() string {
	if m.cols <= 0 || m.rows <= 0 {
		return "starting..."
	}
	selected := ""
	if m.selected >= 0 {
		selected = m.ids[m.selected]
	}

	var b strings.Builder
	for _, line := range rasterize(m.layout, m.cols, m.rows, selected).lines(m.palette) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString(m.status(selected))
	b.WriteByte('\n')
	b.WriteString(StyleDim.Render("tab select · arrows drag · u release · space pause · r restart · q quit"))
	return b.String()
}

func (m watchModel) status(selected string) string {
	sep := StyleDim.Render(" · ")
	parts := []string{
		StyleNumber.Render(fmt.Sprintf("tick %d", m.sim.Ticks())),
		StyleDim.Render(fmt.Sprintf("alpha %.4f", m.sim.Alpha())),
		StyleValue.Render(m.sim.State().String()),
	}
	if m.paused {
		parts = append(parts, watchPausedStyle.Render("paused"))
	}
	if selected != "" {
		parts = append(parts, StyleTitle.Render(selected))
	}
	return strings.Join(parts, sep)
}

// =============================================================================
// Canvas - Terminal rasterization
// =============================================================================

// canvas is a grid of glyphs with the node each cell belongs to.
type canvas struct {
	cols, rows int
	glyphs     []rune
	owners     []int // node index per cell, -1 for links and blanks
	layout     graph.Layout
	selected   string
}

// rasterize maps l's viewport onto a cols×rows grid, drawing links first and
// nodes on top.
func rasterize(l graph.Layout, cols, rows int, selected string) *canvas {
	c := &canvas{
		cols:     cols,
		rows:     rows,
		glyphs:   make([]rune, cols*rows),
		owners:   make([]int, cols*rows),
		layout:   l,
		selected: selected,
	}
	for i := range c.glyphs {
		c.glyphs[i] = ' '
		c.owners[i] = -1
	}
	if l.Width <= 0 || l.Height <= 0 {
		return c
	}

	for _, s := range l.Links {
		x0, y0 := c.cell(l, s.X1, s.Y1)
		x1, y1 := c.cell(l, s.X2, s.Y2)
		c.line(x0, y0, x1, y1)
	}
	for i, n := range l.Nodes {
		x, y := c.cell(l, n.X, n.Y)
		glyph := glyphNode
		if n.Pinned {
			glyph = glyphPinned
		}
		c.set(x, y, glyph, i)
	}
	return c
}

// cell converts simulation coordinates to a grid cell.
func (c *canvas) cell(l graph.Layout, x, y float64) (int, int) {
	col := int((x + l.Width/2) / l.Width * float64(c.cols))
	row := int((y + l.Height/2) / l.Height * float64(c.rows))
	return col, row
}

func (c *canvas) set(x, y int, glyph rune, owner int) {
	if x < 0 || y < 0 || x >= c.cols || y >= c.rows {
		return
	}
	c.glyphs[y*c.cols+x] = glyph
	c.owners[y*c.cols+x] = owner
}

// line draws a Bresenham line of link glyphs.
func (c *canvas) line(x0, y0, x1, y1 int) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		c.set(x0, y0, glyphLink, -1)
		e2 := 2 * err
		if e2 >= dy {
			if x0 == x1 {
				return
			}
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			if y0 == y1 {
				return
			}
			err += dx
			y0 += sy
		}
	}
}

func (c *canvas) at(x, y int) rune { return c.glyphs[y*c.cols+x] }

// lines renders the grid, colouring nodes by group.
func (c *canvas) lines(palette *render.Palette) []string {
	out := make([]string, c.rows)
	for y := range c.rows {
		var b strings.Builder
		for x := range c.cols {
			i := y*c.cols + x
			glyph := string(c.glyphs[i])
			switch owner := c.owners[i]; {
			case owner >= 0:
				n := c.layout.Nodes[owner]
				style := lipgloss.NewStyle().Foreground(lipgloss.Color(palette.Color(n.Group)))
				if n.ID == c.selected {
					style = style.Inherit(watchSelectedStyle)
				}
				b.WriteString(style.Render(glyph))
			case c.glyphs[i] == glyphLink:
				b.WriteString(watchLinkStyle.Render(glyph))
			default:
				b.WriteString(glyph)
			}
		}
		out[y] = b.String()
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
