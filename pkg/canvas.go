package display

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"sort"
	"strings"

	"golang.org/x/exp/maps"
)

// Panel names one slot of the fixed event layout.
type Panel int

const (
	PanelVolume Panel = iota
	PanelProjection
	PanelProfile
	PanelHitTimes
	NumPanels
)

func (p Panel) String() string {
	switch p {
	case PanelVolume:
		return "volume"
	case PanelProjection:
		return "xy projection"
	case PanelProfile:
		return "time profile"
	case PanelHitTimes:
		return "hit times"
	default:
		return "unknown"
	}
}

// Axes are the bounds and labels of one panel. Z is only used by the 3D panel.
type Axes struct {
	XLabel, YLabel, ZLabel string
	XMin, XMax             float64
	YMin, YMax             float64
	ZMin, ZMax             float64
}

// Segment3D is a straight track line in (x, y, t).
type Segment3D struct {
	From, To Point3D
}

// Canvas is the presentation backend. The composer draws one event into it;
// the session presents it and clears it before the next event.
type Canvas interface {
	// Begin starts a new frame for the event with the given id.
	Begin(id int64, title string)
	SetAxes(panel Panel, axes Axes)
	Voxels(panel Panel, h *Histogram3D, colors []color.NRGBA) error
	Line3D(panel Panel, segment Segment3D) error
	Scatter3D(panel Panel, cloud PointCloud) error
	Line2D(panel Panel, x, y []float64) error
	Hist2D(panel Panel, h *Histogram2D, label string) error
	Hist1D(panel Panel, h *Histogram1D, label string) error
	Scatter2D(panel Panel, x, y []float64, label string) error
	Present() error
	Clear() error
}

// MultiCanvas draws into several backends at once.
type MultiCanvas []Canvas

func (m MultiCanvas) Begin(id int64, title string) {
	for _, c := range m {
		c.Begin(id, title)
	}
}

func (m MultiCanvas) SetAxes(panel Panel, axes Axes) {
	for _, c := range m {
		c.SetAxes(panel, axes)
	}
}

func (m MultiCanvas) each(f func(Canvas) error) error {
	var errs []error
	for _, c := range m {
		if err := f(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m MultiCanvas) Voxels(panel Panel, h *Histogram3D, colors []color.NRGBA) error {
	return m.each(func(c Canvas) error { return c.Voxels(panel, h, colors) })
}

func (m MultiCanvas) Line3D(panel Panel, segment Segment3D) error {
	return m.each(func(c Canvas) error { return c.Line3D(panel, segment) })
}

func (m MultiCanvas) Scatter3D(panel Panel, cloud PointCloud) error {
	return m.each(func(c Canvas) error { return c.Scatter3D(panel, cloud) })
}

func (m MultiCanvas) Line2D(panel Panel, x, y []float64) error {
	return m.each(func(c Canvas) error { return c.Line2D(panel, x, y) })
}

func (m MultiCanvas) Hist2D(panel Panel, h *Histogram2D, label string) error {
	return m.each(func(c Canvas) error { return c.Hist2D(panel, h, label) })
}

func (m MultiCanvas) Hist1D(panel Panel, h *Histogram1D, label string) error {
	return m.each(func(c Canvas) error { return c.Hist1D(panel, h, label) })
}

func (m MultiCanvas) Scatter2D(panel Panel, x, y []float64, label string) error {
	return m.each(func(c Canvas) error { return c.Scatter2D(panel, x, y, label) })
}

func (m MultiCanvas) Present() error {
	return m.each(func(c Canvas) error { return c.Present() })
}

func (m MultiCanvas) Clear() error {
	return m.each(func(c Canvas) error { return c.Clear() })
}

var backends = map[string]func(outDir string, out io.Writer) Canvas{
	"term": func(_ string, out io.Writer) Canvas { return NewTermCanvas(out) },
	"png":  func(outDir string, _ io.Writer) Canvas { return NewPNGCanvas(outDir) },
	"html": func(outDir string, _ io.Writer) Canvas { return NewHTMLCanvas(outDir) },
}

// Backends lists the backend names NewCanvas accepts.
func Backends() []string {
	names := maps.Keys(backends)
	sort.Strings(names)
	return names
}

// NewCanvas builds the named backends. Terminal output goes to out; files
// go to outDir.
func NewCanvas(names []string, outDir string, out io.Writer) (Canvas, error) {
	var m MultiCanvas
	for _, name := range names {
		build, ok := backends[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, &ConfigurationError{Field: "backend",
				Reason: fmt.Sprintf("unknown backend %q, want one of %s", name, strings.Join(Backends(), ", "))}
		}
		m = append(m, build(outDir, out))
	}
	switch len(m) {
	case 0:
		return nil, &ConfigurationError{Field: "backend", Reason: "at least one backend is required"}
	case 1:
		return m[0], nil
	}
	return m, nil
}
