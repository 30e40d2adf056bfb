package display

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

const (
	termWidth  = 48
	termHeight = 18
)

// Voxels fainter than this alpha are not drawn on the dot grid.
const termMinAlpha = 26

var shades = []rune(" .:-=+*#%@")

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	panelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	dotStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	shadeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	graphStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("49"))
)

// TermCanvas prints the four panels as text to Out.
type TermCanvas struct {
	Out    io.Writer
	Camera *Camera

	title  string
	axes   map[Panel]Axes
	volume *dotCanvas
	panels map[Panel]string
	tracks []string
}

func NewTermCanvas(out io.Writer) *TermCanvas {
	c := &TermCanvas{Out: out, Camera: NewCamera(), axes: map[Panel]Axes{}}
	c.reset()
	return c
}

func (c *TermCanvas) reset() {
	c.volume = newDotCanvas(termWidth, termHeight)
	c.panels = map[Panel]string{}
	c.tracks = nil
}

func (c *TermCanvas) Begin(id int64, title string) { c.title = title }

func (c *TermCanvas) SetAxes(panel Panel, axes Axes) { c.axes[panel] = axes }

// dot maps a unit-box point onto the dot grid.
func (c *TermCanvas) dot(v Vec3) (int, int) {
	u, w, _ := c.Camera.Project(v)
	x := (u + 1) / 2 * float64(c.volume.Width*2-1)
	y := (1 - (w+1)/2) * float64(c.volume.Height*4-1)
	return int(math.Round(x)), int(math.Round(y))
}

func (c *TermCanvas) points3D(panel Panel, points []Point3D, colors []color.NRGBA) {
	box := unitBox{axes: c.axes[panel]}
	for i, p := range points {
		if colors[i].A < termMinAlpha {
			continue
		}
		c.volume.Set(c.dot(box.Vec(p)))
	}
}

func (c *TermCanvas) Voxels(panel Panel, h *Histogram3D, colors []color.NRGBA) error {
	var points []Point3D
	var cs []color.NRGBA
	for i := 0; i < h.X.Bins(); i++ {
		for j := 0; j < h.Y.Bins(); j++ {
			for k := 0; k < h.T.Bins(); k++ {
				col := colors[h.index(i, j, k)]
				if col.A == 0 {
					continue
				}
				points = append(points, Point3D{X: h.X.Center(i), Y: h.Y.Center(j), T: h.T.Center(k)})
				cs = append(cs, col)
			}
		}
	}
	c.points3D(panel, points, cs)
	return nil
}

func (c *TermCanvas) Scatter3D(panel Panel, cloud PointCloud) error {
	c.points3D(panel, cloud.Points, cloud.Colors)
	return nil
}

func (c *TermCanvas) Line3D(panel Panel, segment Segment3D) error {
	from, to, ok := unitBox{axes: c.axes[panel]}.Segment(segment)
	if !ok {
		return nil
	}
	x0, y0 := c.dot(from)
	x1, y1 := c.dot(to)
	c.volume.DrawLine(x0, y0, x1, y1)
	return nil
}

// Line2D is recorded as a caption; the shaded grid is too coarse for lines.
func (c *TermCanvas) Line2D(panel Panel, x, y []float64) error {
	if err := checkLengths(len(x), y); err != nil {
		return err
	}
	if len(x) < 2 {
		return nil
	}
	c.tracks = append(c.tracks, labelStyle.Render(fmt.Sprintf("track (%.1f, %.1f) -> (%.1f, %.1f)", x[0], y[0], x[len(x)-1], y[len(y)-1])))
	return nil
}

// shadeGrid downsamples h onto a cols x rows character grid, y up.
func shadeGrid(h *Histogram2D, cols, rows int) string {
	cells := make([]float64, cols*rows)
	for i := 0; i < h.X.Bins(); i++ {
		ci := i * cols / h.X.Bins()
		for j := 0; j < h.Y.Bins(); j++ {
			rj := j * rows / h.Y.Bins()
			cells[rj*cols+ci] += h.At(i, j)
		}
	}
	hi := 0.0
	for _, v := range cells {
		hi = math.Max(hi, v)
	}
	var b strings.Builder
	for r := rows - 1; r >= 0; r-- {
		for col := 0; col < cols; col++ {
			v := cells[r*cols+col]
			if v < ProjectionCMin || hi <= 0 {
				b.WriteRune(' ')
				continue
			}
			s := int(v / hi * float64(len(shades)-1))
			if s < 1 {
				s = 1
			}
			b.WriteRune(shades[s])
		}
		if r > 0 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (c *TermCanvas) Hist2D(panel Panel, h *Histogram2D, label string) error {
	grid := shadeGrid(h, termWidth, termHeight)
	c.panels[panel] = shadeStyle.Render(grid) + "\n" + labelStyle.Render(fmt.Sprintf("%s: %.3g", label, h.Total()))
	return nil
}

func (c *TermCanvas) graph(data []float64, caption string) string {
	if len(data) == 0 {
		return labelStyle.Render(caption + ": empty")
	}
	return graphStyle.Render(asciigraph.Plot(data,
		asciigraph.Height(termHeight-4),
		asciigraph.Width(termWidth-8),
		asciigraph.Caption(caption)))
}

func (c *TermCanvas) Hist1D(panel Panel, h *Histogram1D, label string) error {
	a := c.axes[panel]
	c.panels[panel] = c.graph(h.Data, fmt.Sprintf("%s, %s vs %s", label, a.YLabel, a.XLabel))
	return nil
}

// columnMax bins the (x, y) samples onto cols columns spanning [lo, hi) and
// keeps the largest y of each column.
func columnMax(x, y []float64, lo, hi float64, cols int) []float64 {
	out := make([]float64, cols)
	width := (hi - lo) / float64(cols)
	for i := range x {
		if !(x[i] >= lo && x[i] < hi) {
			continue
		}
		col := min(int((x[i]-lo)/width), cols-1)
		out[col] = math.Max(out[col], y[i])
	}
	return out
}

// Scatter2D plots the largest y per column of the panel's x range.
func (c *TermCanvas) Scatter2D(panel Panel, x, y []float64, label string) error {
	if err := checkLengths(len(x), y); err != nil {
		return err
	}
	a := c.axes[panel]
	caption := fmt.Sprintf("%s (%d), max %s by %s in [%.4g, %.4g)", label, len(y), a.YLabel, a.XLabel, a.XMin, a.XMax)
	if len(y) == 0 || !(a.XMax > a.XMin) {
		c.panels[panel] = c.graph(y, caption)
		return nil
	}
	c.panels[panel] = c.graph(columnMax(x, y, a.XMin, a.XMax, termWidth-8), caption)
	return nil
}

func (c *TermCanvas) render() string {
	box := unitBox{axes: c.axes[PanelVolume]}
	for _, e := range box.Edges() {
		x0, y0 := c.dot(e[0])
		x1, y1 := c.dot(e[1])
		c.volume.DrawLine(x0, y0, x1, y1)
	}
	a := c.axes[PanelVolume]
	volume := dotStyle.Render(c.volume.String()) + "\n" +
		labelStyle.Render(fmt.Sprintf("%s, %s, %s", a.XLabel, a.YLabel, a.ZLabel))

	panel := func(p Panel, body string) string {
		head := labelStyle.Render(p.String())
		return panelStyle.Render(head + "\n" + body)
	}
	top := lipgloss.JoinHorizontal(lipgloss.Top,
		panel(PanelProjection, strings.Join(append([]string{c.panels[PanelProjection]}, c.tracks...), "\n")),
		panel(PanelVolume, volume))
	bottom := lipgloss.JoinHorizontal(lipgloss.Top,
		panel(PanelProfile, c.panels[PanelProfile]),
		panel(PanelHitTimes, c.panels[PanelHitTimes]))
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(c.title), top, bottom)
}

func (c *TermCanvas) Present() error {
	if _, err := fmt.Fprintln(c.Out, c.render()); err != nil {
		return fmt.Errorf("error writing terminal view: %w", err)
	}
	return nil
}

func (c *TermCanvas) Clear() error {
	c.reset()
	return nil
}
