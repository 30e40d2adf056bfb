package display

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ChargeEpsilon is added to every charge before weighting so that zero-charge
// hits still mark their bin as occupied.
const ChargeEpsilon = 1e-9

// Histogram3D accumulates weight on the (x, y, t) voxel grid. Data is stored
// flat with x as the slowest and t as the fastest varying index.
type Histogram3D struct {
	X, Y, T Axis
	Data    []float64
}

func (h *Histogram3D) index(i, j, k int) int {
	return (i*h.Y.Bins()+j)*h.T.Bins() + k
}

func (h *Histogram3D) At(i, j, k int) float64 { return h.Data[h.index(i, j, k)] }

// Histogram2D accumulates weight on the (x, y) pixel grid, x-major.
type Histogram2D struct {
	X, Y Axis
	Data []float64
}

func (h *Histogram2D) At(i, j int) float64 { return h.Data[i*h.Y.Bins()+j] }

// Histogram1D accumulates weight along one axis.
type Histogram1D struct {
	Axis Axis
	Data []float64
}

func (h *Histogram1D) At(i int) float64 { return h.Data[i] }

// Total returns the summed weight of all bins.
func (h *Histogram1D) Total() float64 { return floats.Sum(h.Data) }

func (h *Histogram2D) Total() float64 { return floats.Sum(h.Data) }

func (h *Histogram3D) Total() float64 { return floats.Sum(h.Data) }

// Point3D is one sample in (x, y, event-relative time).
type Point3D struct {
	X, Y, T float64
}

func checkLengths(n int, columns ...[]float64) error {
	for _, c := range columns {
		if len(c) != n {
			return fmt.Errorf("column length mismatch: %d != %d", len(c), n)
		}
	}
	return nil
}

// NewHistogram3D returns an empty voxel grid for the geometry.
func NewHistogram3D(geom Geometry) (*Histogram3D, error) {
	x, err := geom.XAxis()
	if err != nil {
		return nil, err
	}
	y, err := geom.YAxis()
	if err != nil {
		return nil, err
	}
	t, err := geom.TAxis()
	if err != nil {
		return nil, err
	}
	return &Histogram3D{X: x, Y: y, T: t, Data: make([]float64, x.Bins()*y.Bins()*t.Bins())}, nil
}

// Fill adds weights[n] to the voxel holding points[n]. Points outside the
// geometry are dropped.
func (h *Histogram3D) Fill(points []Point3D, weights []float64) error {
	if len(points) != len(weights) {
		return fmt.Errorf("column length mismatch: %d points, %d weights", len(points), len(weights))
	}
	for n, p := range points {
		i, okX := h.X.Index(p.X)
		j, okY := h.Y.Index(p.Y)
		k, okT := h.T.Index(p.T)
		if !okX || !okY || !okT {
			continue
		}
		h.Data[h.index(i, j, k)] += weights[n]
	}
	return nil
}

// VolumeHistogram bins the points on the geometry's voxel grid.
func VolumeHistogram(points []Point3D, weights []float64, geom Geometry) (*Histogram3D, error) {
	h, err := NewHistogram3D(geom)
	if err != nil {
		return nil, err
	}
	if err := h.Fill(points, weights); err != nil {
		return nil, err
	}
	return h, nil
}

// NewHistogram2D returns an empty x-y grid. Each axis is binned over its own
// span.
func NewHistogram2D(geom Geometry) (*Histogram2D, error) {
	x, err := geom.XAxis()
	if err != nil {
		return nil, err
	}
	y, err := geom.YAxis()
	if err != nil {
		return nil, err
	}
	return &Histogram2D{X: x, Y: y, Data: make([]float64, x.Bins()*y.Bins())}, nil
}

func (h *Histogram2D) Fill(x, y, weights []float64) error {
	if err := checkLengths(len(weights), x, y); err != nil {
		return err
	}
	for n := range weights {
		i, okX := h.X.Index(x[n])
		j, okY := h.Y.Index(y[n])
		if !okX || !okY {
			continue
		}
		h.Data[i*h.Y.Bins()+j] += weights[n]
	}
	return nil
}

// ProjectionHistogram collapses the samples over time onto the x-y grid.
func ProjectionHistogram(x, y, weights []float64, geom Geometry) (*Histogram2D, error) {
	h, err := NewHistogram2D(geom)
	if err != nil {
		return nil, err
	}
	if err := h.Fill(x, y, weights); err != nil {
		return nil, err
	}
	return h, nil
}

func NewHistogram1D(axis Axis) *Histogram1D {
	return &Histogram1D{Axis: axis, Data: make([]float64, axis.Bins())}
}

func (h *Histogram1D) Fill(v, weights []float64) error {
	if err := checkLengths(len(weights), v); err != nil {
		return err
	}
	for n := range weights {
		i, ok := h.Axis.Index(v[n])
		if !ok {
			continue
		}
		h.Data[i] += weights[n]
	}
	return nil
}

// TimeProfile collapses the samples over x and y onto the time axis.
func TimeProfile(t, weights []float64, geom Geometry) (*Histogram1D, error) {
	axis, err := geom.TAxis()
	if err != nil {
		return nil, err
	}
	h := NewHistogram1D(axis)
	if err := h.Fill(t, weights); err != nil {
		return nil, err
	}
	return h, nil
}

// NormFloor is the lower clamp applied to the minimum in Normalize.
const NormFloor = 0.001

// Normalize maps values into [0, 1] as
// clip((v - max(min(v), NormFloor)) / (max(v) - max(min(v), NormFloor)), 0, 1).
// A degenerate range (zero, negative or non-finite denominator) maps every
// value to 0.
func Normalize(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	lo := math.Max(floats.Min(values), NormFloor)
	hi := floats.Max(values)
	denom := hi - lo
	if !(denom > 0) || math.IsInf(denom, 0) {
		return out
	}
	for i, v := range values {
		n := (v - lo) / denom
		switch {
		case math.IsNaN(n) || n < 0:
			n = 0
		case n > 1:
			n = 1
		}
		out[i] = n
	}
	return out
}

// ChargeWeights converts raw hit charges into weights: the epsilon-shifted
// charge used by every histogram.
func ChargeWeights(charges []float64) []float64 {
	w := make([]float64, len(charges))
	for i, q := range charges {
		w[i] = q + ChargeEpsilon
	}
	return w
}
