package display

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Geometry holds the detector bounds and bin pitches shared by every view.
// Times are in detector ticks (0.1 us), lengths in mm.
type Geometry struct {
	XMin       float64
	XMax       float64
	YMin       float64
	YMax       float64
	TMin       float64
	TMax       float64
	PixelPitch float64
	TimeVoxel  float64
}

// Tolerance applied before rounding the bin count up, so spans that are an
// exact multiple of the pitch do not gain a spurious extra bin.
const binCountTolerance = 1e-9

// NewGeometry builds a Geometry from the eight-value limits vector
// (x_min, x_max, y_min, y_max, t_min, t_max, pixel_pitch, time_voxel).
func NewGeometry(limits []float64) (Geometry, error) {
	if len(limits) != 8 {
		return Geometry{}, &ConfigurationError{
			Field:  "geom_limits",
			Reason: fmt.Sprintf("expected 8 values, got %d", len(limits)),
		}
	}
	g := Geometry{
		XMin:       limits[0],
		XMax:       limits[1],
		YMin:       limits[2],
		YMax:       limits[3],
		TMin:       limits[4],
		TMax:       limits[5],
		PixelPitch: limits[6],
		TimeVoxel:  limits[7],
	}
	if err := g.Validate(); err != nil {
		return Geometry{}, err
	}
	return g, nil
}

func (g Geometry) Validate() error {
	for _, v := range []float64{g.XMin, g.XMax, g.YMin, g.YMax, g.TMin, g.TMax, g.PixelPitch, g.TimeVoxel} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &ConfigurationError{Field: "geom_limits", Reason: "values must be finite"}
		}
	}
	if g.PixelPitch <= 0 {
		return &ConfigurationError{Field: "pixel_pitch", Reason: fmt.Sprintf("must be > 0, got %g", g.PixelPitch)}
	}
	if g.TimeVoxel <= 0 {
		return &ConfigurationError{Field: "time_voxel", Reason: fmt.Sprintf("must be > 0, got %g", g.TimeVoxel)}
	}
	if g.XMax <= g.XMin {
		return &ConfigurationError{Field: "x", Reason: fmt.Sprintf("max %g must exceed min %g", g.XMax, g.XMin)}
	}
	if g.YMax <= g.YMin {
		return &ConfigurationError{Field: "y", Reason: fmt.Sprintf("max %g must exceed min %g", g.YMax, g.YMin)}
	}
	if g.TMax <= g.TMin {
		return &ConfigurationError{Field: "t", Reason: fmt.Sprintf("max %g must exceed min %g", g.TMax, g.TMin)}
	}
	return nil
}

// Limits returns the geometry as the eight-value limits vector.
func (g Geometry) Limits() []float64 {
	return []float64{g.XMin, g.XMax, g.YMin, g.YMax, g.TMin, g.TMax, g.PixelPitch, g.TimeVoxel}
}

// Edges returns N+1 evenly spaced bin boundaries from min to max, where
// N = ceil((max-min)/pitch).
func Edges(min, max, pitch float64) ([]float64, error) {
	if pitch <= 0 || math.IsNaN(pitch) {
		return nil, &ConfigurationError{Field: "pitch", Reason: fmt.Sprintf("must be > 0, got %g", pitch)}
	}
	if max <= min {
		return nil, &ConfigurationError{Field: "range", Reason: fmt.Sprintf("max %g must exceed min %g", max, min)}
	}
	n := int(math.Ceil((max-min)/pitch - binCountTolerance))
	if n < 1 {
		n = 1
	}
	return floats.Span(make([]float64, n+1), min, max), nil
}

// Axis is one uniformly binned coordinate.
type Axis struct {
	Edges []float64
}

func newAxis(min, max, pitch float64) (Axis, error) {
	edges, err := Edges(min, max, pitch)
	if err != nil {
		return Axis{}, err
	}
	return Axis{Edges: edges}, nil
}

func (a Axis) Bins() int { return len(a.Edges) - 1 }
func (a Axis) Min() float64 { return a.Edges[0] }
func (a Axis) Max() float64 { return a.Edges[len(a.Edges)-1] }
func (a Axis) Width() float64 { return (a.Max() - a.Min()) / float64(a.Bins()) }

// Center returns the midpoint of bin i.
func (a Axis) Center(i int) float64 {
	return (a.Edges[i] + a.Edges[i+1]) / 2
}

// Index returns the bin holding v. Values outside [min, max] are rejected; v
// equal to max falls in the last bin.
func (a Axis) Index(v float64) (int, bool) {
	if math.IsNaN(v) || v < a.Min() || v > a.Max() {
		return 0, false
	}
	i := int((v - a.Min()) / a.Width())
	if i >= a.Bins() {
		i = a.Bins() - 1
	}
	// Guard against rounding placing v one bin off its edges.
	if i > 0 && v < a.Edges[i] {
		i--
	} else if i < a.Bins()-1 && v >= a.Edges[i+1] {
		i++
	}
	return i, true
}

func (g Geometry) XAxis() (Axis, error) { return newAxis(g.XMin, g.XMax, g.PixelPitch) }
func (g Geometry) YAxis() (Axis, error) { return newAxis(g.YMin, g.YMax, g.PixelPitch) }
func (g Geometry) TAxis() (Axis, error) { return newAxis(g.TMin, g.TMax, g.TimeVoxel) }
