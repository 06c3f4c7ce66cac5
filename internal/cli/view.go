package cli

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stitchgrid/pkg/pattern"
	"github.com/matzehuels/stitchgrid/pkg/pipeline"
	"github.com/matzehuels/stitchgrid/pkg/viewport"
)

// viewCommand creates the interactive terminal viewer.
func (c *CLI) viewCommand() *cobra.Command {
	var noCache bool
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "view [image]",
		Short: "Explore a pattern in the terminal",
		Long: `Generate a pattern and explore it in the terminal.

Each stitch is drawn as a colored block. Zoom with the mouse wheel (the
stitch under the pointer stays in place) or with +/-, pan with the arrow
keys or by dragging with the left button. Thread IDs are printed inside
the stitches once zoomed in far enough.

Keys:
  + -        zoom in / out
  arrows     pan (also h j k l)
  0          reset zoom and pan
  o          toggle thread ID overlay
  c          toggle color key
  q          quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			applyConfig(cmd, c.Config.Generate, &opts)
			if err := opts.ValidateForGenerate(); err != nil {
				return err
			}
			opts.Logger = c.Logger
			return c.runView(cmd.Context(), args[0], opts, noCache)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	addGenerationFlags(cmd, &opts)

	return cmd
}

// runView generates the pattern, then hands it to the viewer.
func (c *CLI) runView(ctx context.Context, input string, opts pipeline.Options, noCache bool) error {
	data, err := readImage(input)
	if err != nil {
		return err
	}
	opts.Image = data
	opts.ImageName = filepath.Base(input)

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Generating %s...", opts.String()))
	spinner.Start()
	img, cat, err := pipeline.Parse(opts)
	if err != nil {
		spinner.StopWithError("Generation failed")
		return err
	}
	gen, err := runner.Generate(ctx, img, cat, opts)
	if err != nil {
		spinner.StopWithError("Generation failed")
		return err
	}
	spinner.Stop()

	p := tea.NewProgram(newViewModel(gen, opts.ImageName),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("viewer: %w", err)
	}
	return nil
}

// =============================================================================
// viewModel - Interactive pattern viewer
// =============================================================================

const (
	// colsPerUnit is the number of terminal columns per surface unit. A
	// terminal row is one unit tall, so a stitch at scale 1 is two columns
	// wide and one row high, which looks roughly square.
	colsPerUnit = 2

	// panStep is the surface distance of one pan key press.
	panStep = 4

	// statusLines is the height of the status bar below the canvas.
	statusLines = 2
)

// viewModel is the bubbletea model for the pattern viewer. It owns the
// viewport state; the update loop is its only writer.
type viewModel struct {
	grid   *pattern.Grid
	key    pattern.ColorKey
	title  string
	styles []lipgloss.Style // by label

	state      viewport.State
	pointer    viewport.Point
	hasPointer bool
	dragging   bool
	anchor     viewport.Point // last drag position
	overlay    bool // requested; drawn only above the threshold
	showKey    bool
	err        error

	width, height int
}

func newViewModel(gen *pipeline.Generation, title string) viewModel {
	styles := make([]lipgloss.Style, len(gen.Grid.Threads))
	for i, t := range gen.Grid.Threads {
		styles[i] = lipgloss.NewStyle().
			Background(lipgloss.Color(t.Hex())).
			Foreground(lipgloss.Color(t.RGB.TextColor().Hex()))
	}
	return viewModel{
		grid:    gen.Grid,
		key:     gen.Key,
		title:   title,
		styles:  styles,
		state:   viewport.Reset(),
		overlay: true,
		width:   80,
		height:  24,
	}
}

func (m viewModel) Init() tea.Cmd {
	return nil
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case tea.MouseMsg:
		m.pointer = surfacePoint(msg.X, msg.Y)
		m.hasPointer = true
		switch msg.Action {
		case tea.MouseActionPress:
			switch msg.Button {
			case tea.MouseButtonWheelUp:
				m = m.zoom(viewport.In)
			case tea.MouseButtonWheelDown:
				m = m.zoom(viewport.Out)
			case tea.MouseButtonLeft:
				m.dragging, m.anchor = true, m.pointer
			}
		case tea.MouseActionMotion:
			if m.dragging {
				delta := viewport.Point{X: m.pointer.X - m.anchor.X, Y: m.pointer.Y - m.anchor.Y}
				m.state.Offset = viewport.PanBy(m.state.Offset, delta)
				m.anchor = m.pointer
			}
		case tea.MouseActionRelease:
			m.dragging = false
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "+", "=":
			m = m.zoom(viewport.In)
		case "-", "_":
			m = m.zoom(viewport.Out)
		case "0":
			m.state = viewport.Reset()
			m.err = nil
		case "left", "h":
			m.state.Offset = viewport.PanBy(m.state.Offset, viewport.Point{X: panStep})
		case "right", "l":
			m.state.Offset = viewport.PanBy(m.state.Offset, viewport.Point{X: -panStep})
		case "up", "k":
			m.state.Offset = viewport.PanBy(m.state.Offset, viewport.Point{Y: panStep})
		case "down", "j":
			m.state.Offset = viewport.PanBy(m.state.Offset, viewport.Point{Y: -panStep})
		case "o":
			m.overlay = !m.overlay
		case "c":
			m.showKey = !m.showKey
		}
	}
	return m, nil
}

// zoom applies one zoom step around the pointer, or around the canvas
// center before the mouse has moved. A failed step leaves the state as is.
func (m viewModel) zoom(dir viewport.Direction) viewModel {
	p := m.pointer
	if !m.hasPointer {
		p = viewport.Point{X: float64(m.width) / colsPerUnit / 2, Y: float64(m.canvasRows()) / 2}
	}
	next, err := viewport.ZoomAt(m.state, p, dir, m.extent())
	if err != nil {
		m.err = err
		return m
	}
	m.state, m.err = next, nil
	return m
}

func (m viewModel) extent() viewport.Extent {
	return viewport.Extent{Width: float64(m.grid.Width), Height: float64(m.grid.Height)}
}

func (m viewModel) canvasRows() int {
	return max(1, m.height-statusLines)
}

// surfacePoint maps a terminal cell to the surface point at its center.
func surfacePoint(x, y int) viewport.Point {
	return viewport.Point{X: (float64(x) + 0.5) / colsPerUnit, Y: float64(y) + 0.5}
}

func (m viewModel) View() string {
	var b strings.Builder
	if m.showKey {
		b.WriteString(m.renderKey())
	} else {
		b.WriteString(m.renderCanvas())
	}
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	return b.String()
}

// renderCanvas draws the visible part of the grid, one run of equally
// styled characters at a time.
func (m viewModel) renderCanvas() string {
	ext := m.extent()
	labels := viewport.ShouldShowOverlay(m.state.Scale, m.overlay)
	rows := m.canvasRows()

	var b strings.Builder
	for r := 0; r < rows; r++ {
		if r > 0 {
			b.WriteByte('\n')
		}
		var run strings.Builder
		runLabel := -2 // -1 is outside the grid
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runLabel >= 0 {
				b.WriteString(m.styles[runLabel].Render(run.String()))
			} else {
				b.WriteString(run.String())
			}
			run.Reset()
		}

		for tc := 0; tc < m.width; tc++ {
			col, row, ok := m.state.CellAt(surfacePoint(tc, r), ext, 1)
			label := -1
			ch := byte(' ')
			if ok {
				label = m.grid.Label(col, row)
				if labels {
					ch = m.labelChar(col, row, tc, r)
				}
			}
			if label != runLabel {
				flush()
				runLabel = label
			}
			run.WriteByte(ch)
		}
		flush()
	}
	return b.String()
}

// labelChar returns the overlay character at terminal cell (tc, r) inside
// stitch (col, row). The thread ID is written on the stitch's middle row,
// one column in from its left edge.
func (m viewModel) labelChar(col, row, tc, r int) byte {
	s := m.state
	midY := s.Offset.Y + (float64(row)+0.5)*s.Scale
	if int(math.Floor(midY)) != r {
		return ' '
	}
	left := (s.Offset.X + float64(col)*s.Scale) * colsPerUnit
	span := int(s.Scale*colsPerUnit) - 2
	i := tc - (int(math.Ceil(left)) + 1)
	id := m.grid.At(col, row).ID
	if i < 0 || i >= len(id) || i >= span {
		return ' '
	}
	return id[i]
}

// renderKey draws the color key as a table with swatches.
func (m viewModel) renderKey() string {
	rows := make([][]string, len(m.key))
	for i, e := range m.key {
		rows[i] = []string{"", e.Thread.ID, e.Thread.Name, strconv.Itoa(e.Stitches)}
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("", "ID", "Name", "Stitches").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			if col == 0 && row >= 0 && row < len(m.key) {
				return lipgloss.NewStyle().Width(4).
					Background(lipgloss.Color(m.key[row].Thread.Hex()))
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})
	return StyleTitle.Render(fmt.Sprintf("Color key (%d threads)", len(m.key))) + "\n" + t.Render()
}

// statusLine describes the view state and the stitch under the pointer.
func (m viewModel) statusLine() string {
	parts := []string{
		StyleTitle.Render(m.title),
		fmt.Sprintf("%dx%d", m.grid.Width, m.grid.Height),
		fmt.Sprintf("scale %.2f", m.state.Scale),
	}
	if m.hasPointer {
		if col, row, ok := m.state.CellAt(m.pointer, m.extent(), 1); ok {
			t := m.grid.At(col, row)
			parts = append(parts, fmt.Sprintf("(%d, %d) %s %s", col, row, swatch(t.RGB, " "+t.ID+" "), t.Name))
		}
	}
	switch {
	case !m.overlay:
		parts = append(parts, "ids off")
	case viewport.ShouldShowOverlay(m.state.Scale, true):
		parts = append(parts, "ids on")
	default:
		parts = append(parts, fmt.Sprintf("ids above %.2fx", viewport.OverlayThreshold))
	}
	if m.err != nil {
		parts = append(parts, StyleWarning.Render(displayError(m.err)))
	}
	help := StyleDim.Render("+/- zoom · arrows pan · 0 reset · o ids · c key · q quit")
	return strings.Join(parts, StyleDim.Render(" · ")) + "\n" + help
}
