package display

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// Number of points used to draw a straight track in the 3D scatter.
const trackSamples = 32

// Number of colormap stops handed to the projection's visual map.
const chargeStops = 9

// chargeScale samples ChargeColorMap into n opaque hex stops.
func chargeScale(n int) []string {
	cm := ChargeColorMap()
	stops := make([]string, n)
	for i := range stops {
		c, err := cm.At(float64(i) / float64(n-1))
		if err != nil {
			c = color.Black
		}
		nc := color.NRGBAModel.Convert(c).(color.NRGBA)
		stops[i] = fmt.Sprintf("#%02x%02x%02x", nc.R, nc.G, nc.B)
	}
	return stops
}

// HTMLCanvas writes one interactive go-echarts page per event.
type HTMLCanvas struct {
	OutDir string
	// Files lists the pages written so far.
	Files []string

	id    int64
	title string
	axes  map[Panel]Axes

	volume     *charts.Scatter3D
	projection *charts.Scatter
	tracks     *charts.Line
	profile    *charts.Bar
	hits       *charts.Scatter
	qmin, qmax float64
}

func NewHTMLCanvas(outDir string) *HTMLCanvas {
	c := &HTMLCanvas{OutDir: outDir, axes: map[Panel]Axes{}}
	c.reset()
	return c
}

func (c *HTMLCanvas) reset() {
	c.volume = charts.NewScatter3D()
	c.projection = charts.NewScatter()
	c.tracks = nil
	c.profile = charts.NewBar()
	c.hits = charts.NewScatter()
	c.qmin, c.qmax = 0, 1
}

func (c *HTMLCanvas) Begin(id int64, title string) {
	c.id, c.title = id, title
}

func (c *HTMLCanvas) SetAxes(panel Panel, axes Axes) { c.axes[panel] = axes }

func rgba(col color.NRGBA) string {
	return fmt.Sprintf("rgba(%d,%d,%d,%.3f)", col.R, col.G, col.B, float64(col.A)/255)
}

func (c *HTMLCanvas) add3D(name string, points []Point3D, colors []color.NRGBA) {
	data := make([]opts.Chart3DData, 0, len(points))
	for i, p := range points {
		if colors[i].A == 0 {
			continue
		}
		data = append(data, opts.Chart3DData{
			Value:     []interface{}{p.X, p.Y, p.T},
			ItemStyle: &opts.ItemStyle{Color: rgba(colors[i])},
		})
	}
	if len(data) > 0 {
		c.volume.AddSeries(name, data)
	}
}

func (c *HTMLCanvas) Voxels(panel Panel, h *Histogram3D, colors []color.NRGBA) error {
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
	c.add3D("voxels", points, cs)
	return nil
}

func (c *HTMLCanvas) Scatter3D(panel Panel, cloud PointCloud) error {
	c.add3D("hits", cloud.Points, cloud.Colors)
	return nil
}

// Line3D samples the segment since the 3D scatter has no line series.
func (c *HTMLCanvas) Line3D(panel Panel, segment Segment3D) error {
	points := make([]Point3D, trackSamples)
	colors := make([]color.NRGBA, trackSamples)
	for i := range points {
		f := float64(i) / float64(trackSamples-1)
		points[i] = Point3D{
			X: segment.From.X + f*(segment.To.X-segment.From.X),
			Y: segment.From.Y + f*(segment.To.Y-segment.From.Y),
			T: segment.From.T + f*(segment.To.T-segment.From.T),
		}
		colors[i] = trackColor
	}
	c.add3D("track", points, colors)
	return nil
}

func (c *HTMLCanvas) Line2D(panel Panel, x, y []float64) error {
	if err := checkLengths(len(x), y); err != nil {
		return err
	}
	if c.tracks == nil {
		c.tracks = charts.NewLine()
	}
	data := make([]opts.LineData, len(x))
	for i := range x {
		data[i] = opts.LineData{Value: []interface{}{x[i], y[i]}}
	}
	c.tracks.AddSeries("track", data, charts.WithItemStyleOpts(opts.ItemStyle{Color: rgba(trackColor)}))
	return nil
}

func (c *HTMLCanvas) Hist2D(panel Panel, h *Histogram2D, label string) error {
	grid, ok := newChargeGrid(h)
	if !ok {
		return nil
	}
	var data []opts.ScatterData
	cols, rows := grid.Dims()
	for i := 0; i < cols; i++ {
		for j := 0; j < rows; j++ {
			if v := grid.Z(i, j); !math.IsNaN(v) {
				data = append(data, opts.ScatterData{Value: []interface{}{grid.X(i), grid.Y(j), v}})
			}
		}
	}
	c.qmin, c.qmax = grid.min, grid.max
	c.projection.AddSeries(label, data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))
	return nil
}

func (c *HTMLCanvas) Hist1D(panel Panel, h *Histogram1D, label string) error {
	centers := make([]string, h.Axis.Bins())
	data := make([]opts.BarData, h.Axis.Bins())
	for i := range centers {
		centers[i] = fmt.Sprintf("%.4g", h.Axis.Center(i))
		data[i] = opts.BarData{Value: h.Data[i]}
	}
	c.profile.SetXAxis(centers).AddSeries(label, data)
	return nil
}

func (c *HTMLCanvas) Scatter2D(panel Panel, x, y []float64, label string) error {
	if err := checkLengths(len(x), y); err != nil {
		return err
	}
	data := make([]opts.ScatterData, len(x))
	for i := range x {
		data[i] = opts.ScatterData{Value: []interface{}{x[i], y[i]}}
	}
	c.hits.AddSeries(label, data,
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: rgba(hitColor)}))
	return nil
}

func (c *HTMLCanvas) decorate() {
	size := opts.Initialization{Width: "900px", Height: "700px"}
	tooltip := charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)})
	legend := charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)})

	a := c.axes[PanelVolume]
	c.volume.SetGlobalOptions(
		charts.WithInitializationOpts(size),
		charts.WithTitleOpts(opts.Title{Title: c.title}),
		charts.WithXAxis3DOpts(opts.XAxis3D{Name: a.XLabel, Min: a.XMin, Max: a.XMax}),
		charts.WithYAxis3DOpts(opts.YAxis3D{Name: a.YLabel, Min: a.YMin, Max: a.YMax}),
		charts.WithZAxis3DOpts(opts.ZAxis3D{Name: a.ZLabel, Min: a.ZMin, Max: a.ZMax}),
		tooltip,
	)

	a = c.axes[PanelProjection]
	c.projection.SetGlobalOptions(
		charts.WithInitializationOpts(size),
		charts.WithTitleOpts(opts.Title{Title: PanelProjection.String()}),
		charts.WithXAxisOpts(opts.XAxis{Name: a.XLabel, Min: a.XMin, Max: a.XMax}),
		charts.WithYAxisOpts(opts.YAxis{Name: a.YLabel, Min: a.YMin, Max: a.YMax}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(c.qmin),
			Max:        float32(c.qmax),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: chargeScale(chargeStops)},
		}),
		tooltip,
	)
	if c.tracks != nil {
		c.projection.Overlap(c.tracks)
	}

	a = c.axes[PanelProfile]
	c.profile.SetGlobalOptions(
		charts.WithInitializationOpts(size),
		charts.WithTitleOpts(opts.Title{Title: PanelProfile.String()}),
		charts.WithXAxisOpts(opts.XAxis{Name: a.XLabel}),
		charts.WithYAxisOpts(opts.YAxis{Name: a.YLabel}),
		tooltip,
		legend,
	)

	a = c.axes[PanelHitTimes]
	c.hits.SetGlobalOptions(
		charts.WithInitializationOpts(size),
		charts.WithTitleOpts(opts.Title{Title: PanelHitTimes.String()}),
		charts.WithXAxisOpts(opts.XAxis{Name: a.XLabel, Min: a.XMin, Max: a.XMax}),
		charts.WithYAxisOpts(opts.YAxis{Name: a.YLabel}),
		tooltip,
		legend,
	)
}

func (c *HTMLCanvas) Present() error {
	c.decorate()
	page := components.NewPage()
	page.PageTitle = c.title
	page.AddCharts(c.volume, c.projection, c.profile, c.hits)

	if err := os.MkdirAll(c.OutDir, 0o755); err != nil {
		return &ErrOpenFile{Filename: c.OutDir, Err: err}
	}
	filename := filepath.Join(c.OutDir, fmt.Sprintf("event_%d.html", c.id))
	f, err := os.Create(filename)
	if err != nil {
		return &ErrOpenFile{Filename: filename, Err: err}
	}
	rerr := page.Render(f)
	cerr := f.Close()
	if rerr != nil || cerr != nil {
		return fmt.Errorf("error writing %s: %w", filename, errors.Join(rerr, cerr))
	}
	c.Files = append(c.Files, filename)
	logger.Info(fmt.Sprintf("wrote %s", filename), "html")
	return nil
}

func (c *HTMLCanvas) Clear() error {
	c.reset()
	return nil
}
