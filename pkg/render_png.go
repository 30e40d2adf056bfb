package display

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// ProjectionCMin is the lowest projected charge that gets a color; smaller
// cells are left blank.
const ProjectionCMin = 1e-4

var (
	trackColor = color.NRGBA{R: 214, G: 39, B: 40, A: 255}
	boxColor   = color.NRGBA{R: 160, G: 160, B: 160, A: 255}
	hitColor   = color.NRGBA{R: 214, G: 39, B: 40, A: 255}
)

// PNGCanvas renders the four panels as a 2x2 image written to OutDir every
// time an event is presented.
type PNGCanvas struct {
	OutDir string
	Width  vg.Length
	Height vg.Length
	Camera *Camera

	id    int64
	title string
	axes  map[Panel]Axes
	plots map[Panel]*plot.Plot
	// Files lists the images written so far.
	Files []string
}

func NewPNGCanvas(outDir string) *PNGCanvas {
	return &PNGCanvas{
		OutDir: outDir,
		Width:  14 * vg.Inch,
		Height: 10 * vg.Inch,
		Camera: NewCamera(),
		axes:   map[Panel]Axes{},
		plots:  map[Panel]*plot.Plot{},
	}
}

func (c *PNGCanvas) Begin(id int64, title string) { c.id, c.title = id, title }

func (c *PNGCanvas) SetAxes(panel Panel, axes Axes) { c.axes[panel] = axes }

func (c *PNGCanvas) plot(panel Panel) *plot.Plot {
	if p, ok := c.plots[panel]; ok {
		return p
	}
	p := plot.New()
	a := c.axes[panel]
	if panel == PanelVolume {
		p.HideAxes()
	} else {
		p.X.Label.Text = a.XLabel
		p.Y.Label.Text = a.YLabel
	}
	p.Legend.Top = true
	c.plots[panel] = p
	return p
}

func (c *PNGCanvas) box(panel Panel) unitBox { return unitBox{axes: c.axes[panel]} }

func (c *PNGCanvas) scatter3D(panel Panel, points []Point3D, colors []color.NRGBA, shape draw.GlyphDrawer) error {
	box := c.box(panel)
	vs := make([]Vec3, 0, len(points))
	cs := make([]color.NRGBA, 0, len(points))
	for i, p := range points {
		if colors[i].A == 0 {
			continue
		}
		vs = append(vs, box.Vec(p))
		cs = append(cs, colors[i])
	}
	if len(vs) == 0 {
		return nil
	}
	proj := c.Camera.projectSorted(vs)
	xys := make(plotter.XYs, len(proj))
	for i, pr := range proj {
		xys[i] = plotter.XY{X: pr.U, Y: pr.V}
	}
	s, err := plotter.NewScatter(xys)
	if err != nil {
		return fmt.Errorf("error creating %v scatter: %w", panel, err)
	}
	s.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return draw.GlyphStyle{Color: cs[proj[i].Index], Radius: vg.Points(2), Shape: shape}
	}
	c.plot(panel).Add(s)
	return nil
}

func (c *PNGCanvas) Voxels(panel Panel, h *Histogram3D, colors []color.NRGBA) error {
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
	return c.scatter3D(panel, points, cs, draw.BoxGlyph{})
}

func (c *PNGCanvas) Scatter3D(panel Panel, cloud PointCloud) error {
	return c.scatter3D(panel, cloud.Points, cloud.Colors, draw.CircleGlyph{})
}

func (c *PNGCanvas) line(panel Panel, xys plotter.XYs, col color.Color) error {
	l, err := plotter.NewLine(xys)
	if err != nil {
		return fmt.Errorf("error creating %v line: %w", panel, err)
	}
	l.LineStyle.Color = col
	l.LineStyle.Width = vg.Points(1.5)
	c.plot(panel).Add(l)
	return nil
}

func (c *PNGCanvas) Line3D(panel Panel, segment Segment3D) error {
	from, to, ok := c.box(panel).Segment(segment)
	if !ok {
		return nil
	}
	u0, v0, _ := c.Camera.Project(from)
	u1, v1, _ := c.Camera.Project(to)
	return c.line(panel, plotter.XYs{{X: u0, Y: v0}, {X: u1, Y: v1}}, trackColor)
}

func (c *PNGCanvas) Line2D(panel Panel, x, y []float64) error {
	if err := checkLengths(len(x), y); err != nil {
		return err
	}
	xys := make(plotter.XYs, len(x))
	for i := range x {
		xys[i] = plotter.XY{X: x[i], Y: y[i]}
	}
	return c.line(panel, xys, trackColor)
}

// chargeGrid adapts a Histogram2D to plotter.GridXYZ. Cells below
// ProjectionCMin read as NaN so the heat map leaves them blank.
type chargeGrid struct {
	h        *Histogram2D
	min, max float64
}

func newChargeGrid(h *Histogram2D) (chargeGrid, bool) {
	g := chargeGrid{h: h, min: math.Inf(1), max: math.Inf(-1)}
	for _, v := range h.Data {
		if v < ProjectionCMin {
			continue
		}
		g.min = math.Min(g.min, v)
		g.max = math.Max(g.max, v)
	}
	return g, g.max >= g.min
}

func (g chargeGrid) Dims() (c, r int) { return g.h.X.Bins(), g.h.Y.Bins() }
func (g chargeGrid) X(c int) float64 { return g.h.X.Center(c) }
func (g chargeGrid) Y(r int) float64 { return g.h.Y.Center(r) }
func (g chargeGrid) Min() float64 { return g.min }
func (g chargeGrid) Max() float64 { return g.max }

func (g chargeGrid) Z(c, r int) float64 {
	v := g.h.At(c, r)
	if v < ProjectionCMin {
		return math.NaN()
	}
	return v
}

func (c *PNGCanvas) Hist2D(panel Panel, h *Histogram2D, label string) error {
	p := c.plot(panel)
	grid, ok := newChargeGrid(h)
	if !ok {
		return nil
	}
	hm := plotter.NewHeatMap(grid, ChargeColorMap().Palette(255))
	hm.NaN = color.Transparent
	if grid.max == grid.min {
		hm.Max = grid.min + 1
	}
	p.Add(hm)
	p.Title.Text = fmt.Sprintf("%s %.3g-%.3g", label, grid.min, grid.max)
	return nil
}

func (c *PNGCanvas) Hist1D(panel Panel, h *Histogram1D, label string) error {
	bins := make([]plotter.HistogramBin, h.Axis.Bins())
	for i := range bins {
		bins[i] = plotter.HistogramBin{Min: h.Axis.Edges[i], Max: h.Axis.Edges[i+1], Weight: h.Data[i]}
	}
	hist := &plotter.Histogram{
		Bins:      bins,
		Width:     h.Axis.Width(),
		LineStyle: plotter.DefaultLineStyle,
	}
	p := c.plot(panel)
	p.Add(hist)
	p.Legend.Add(label, hist)
	return nil
}

func (c *PNGCanvas) Scatter2D(panel Panel, x, y []float64, label string) error {
	if err := checkLengths(len(x), y); err != nil {
		return err
	}
	p := c.plot(panel)
	if len(x) == 0 {
		return nil
	}
	xys := make(plotter.XYs, len(x))
	for i := range x {
		xys[i] = plotter.XY{X: x[i], Y: y[i]}
	}
	s, err := plotter.NewScatter(xys)
	if err != nil {
		return fmt.Errorf("error creating %v scatter: %w", panel, err)
	}
	s.GlyphStyle.Color = hitColor
	s.GlyphStyle.Radius = vg.Points(1.5)
	p.Add(s)
	p.Legend.Add(label, s)
	return nil
}

// finish applies the fixed axis bounds and draws the 3D box outline.
func (c *PNGCanvas) finish() error {
	for panel := PanelVolume; panel < NumPanels; panel++ {
		p := c.plot(panel)
		a := c.axes[panel]
		if panel == PanelVolume {
			p.Title.Text = c.title
			if err := c.outline(p, a); err != nil {
				return err
			}
			continue
		}
		if a.XMax > a.XMin {
			p.X.Min, p.X.Max = a.XMin, a.XMax
		}
		if a.YMax > a.YMin {
			p.Y.Min, p.Y.Max = a.YMin, a.YMax
		}
	}
	return nil
}

func (c *PNGCanvas) outline(p *plot.Plot, a Axes) error {
	box := unitBox{axes: a}
	for _, e := range box.Edges() {
		u0, v0, _ := c.Camera.Project(e[0])
		u1, v1, _ := c.Camera.Project(e[1])
		l, err := plotter.NewLine(plotter.XYs{{X: u0, Y: v0}, {X: u1, Y: v1}})
		if err != nil {
			return err
		}
		l.LineStyle.Color = boxColor
		l.LineStyle.Width = vg.Points(0.5)
		p.Add(l)
	}
	tips := map[string]Vec3{
		a.XLabel: {X: 0.55, Y: -0.5, Z: -0.5},
		a.YLabel: {X: 0.5, Y: 0.55, Z: -0.5},
		a.ZLabel: {X: -0.5, Y: -0.5, Z: 0.55},
	}
	var labels plotter.XYLabels
	for text, v := range tips {
		if text == "" {
			continue
		}
		u, w, _ := c.Camera.Project(v)
		labels.XYs = append(labels.XYs, plotter.XY{X: u, Y: w})
		labels.Labels = append(labels.Labels, text)
	}
	if len(labels.Labels) == 0 {
		return nil
	}
	l, err := plotter.NewLabels(labels)
	if err != nil {
		return err
	}
	p.Add(l)
	return nil
}

func (c *PNGCanvas) Present() error {
	if err := c.finish(); err != nil {
		return fmt.Errorf("error finishing plots: %w", err)
	}
	img := vgimg.New(c.Width, c.Height)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      2,
		Cols:      2,
		PadX:      vg.Millimeter * 8,
		PadY:      vg.Millimeter * 8,
		PadTop:    vg.Millimeter * 4,
		PadBottom: vg.Millimeter * 4,
		PadLeft:   vg.Millimeter * 4,
		PadRight:  vg.Millimeter * 4,
	}
	plots := [][]*plot.Plot{
		{c.plots[PanelProjection], c.plots[PanelVolume]},
		{c.plots[PanelProfile], c.plots[PanelHitTimes]},
	}
	canvases := plot.Align(plots, tiles, dc)
	for j := range plots {
		for i := range plots[j] {
			plots[j][i].Draw(canvases[j][i])
		}
	}

	if err := os.MkdirAll(c.OutDir, 0o755); err != nil {
		return &ErrOpenFile{Filename: c.OutDir, Err: err}
	}
	filename := filepath.Join(c.OutDir, fmt.Sprintf("event_%d.png", c.id))
	f, err := os.Create(filename)
	if err != nil {
		return &ErrOpenFile{Filename: filename, Err: err}
	}
	_, werr := vgimg.PngCanvas{Canvas: img}.WriteTo(f)
	cerr := f.Close()
	if werr != nil || cerr != nil {
		return fmt.Errorf("error writing %s: %w", filename, errors.Join(werr, cerr))
	}
	c.Files = append(c.Files, filename)
	logger.Info(fmt.Sprintf("wrote %s", filename), "png")
	return nil
}

func (c *PNGCanvas) Clear() error {
	c.plots = map[Panel]*plot.Plot{}
	c.title = ""
	return nil
}
