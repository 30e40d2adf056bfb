package display

import (
	"math"
	"sort"
)

type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Camera is an orthographic view of the unit detector box, rotated by
// azimuth around the time axis and tilted by elevation.
type Camera struct {
	Azimuth   float64
	Elevation float64
}

// NewCamera uses the customary -60°/30° oblique view.
func NewCamera() *Camera {
	return &Camera{Azimuth: -60 * math.Pi / 180, Elevation: 30 * math.Pi / 180}
}

// Project returns screen coordinates (u, v) and the depth of p; larger depth
// is further from the viewer.
func (c *Camera) Project(p Vec3) (u, v, depth float64) {
	ca, sa := math.Cos(c.Azimuth), math.Sin(c.Azimuth)
	x := p.X*ca - p.Y*sa
	y := p.X*sa + p.Y*ca
	ce, se := math.Cos(c.Elevation), math.Sin(c.Elevation)
	return x, p.Z*ce - y*se, y*ce + p.Z*se
}

// unitBox maps detector coordinates into the [-0.5, 0.5] cube.
type unitBox struct {
	axes Axes
}

func span(min, max float64) float64 {
	if max > min {
		return max - min
	}
	return 1
}

func (b unitBox) Vec(p Point3D) Vec3 {
	a := b.axes
	return Vec3{
		X: (p.X-a.XMin)/span(a.XMin, a.XMax) - 0.5,
		Y: (p.Y-a.YMin)/span(a.YMin, a.YMax) - 0.5,
		Z: (p.T-a.ZMin)/span(a.ZMin, a.ZMax) - 0.5,
	}
}

// Edges returns the 12 edges of the cube as pairs of corners.
func (b unitBox) Edges() [][2]Vec3 {
	var corners []Vec3
	for _, x := range []float64{-0.5, 0.5} {
		for _, y := range []float64{-0.5, 0.5} {
			for _, z := range []float64{-0.5, 0.5} {
				corners = append(corners, Vec3{x, y, z})
			}
		}
	}
	var edges [][2]Vec3
	for i := range corners {
		for j := i + 1; j < len(corners); j++ {
			d := corners[j].Sub(corners[i])
			nonZero := 0
			for _, c := range []float64{d.X, d.Y, d.Z} {
				if c != 0 {
					nonZero++
				}
			}
			if nonZero == 1 {
				edges = append(edges, [2]Vec3{corners[i], corners[j]})
			}
		}
	}
	return edges
}

// Segment maps s into the cube and clips it to the cube faces. ok is false
// when nothing of the segment lies inside or an endpoint is not finite.
func (b unitBox) Segment(s Segment3D) (from, to Vec3, ok bool) {
	p, q := b.Vec(s.From), b.Vec(s.To)
	for _, c := range []float64{p.X, p.Y, p.Z, q.X, q.Y, q.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return Vec3{}, Vec3{}, false
		}
	}
	// Liang-Barsky on the parametric segment p + f*(q-p), f in [0, 1].
	lo, hi := 0.0, 1.0
	d := q.Sub(p)
	for _, a := range [][2]float64{{p.X, d.X}, {p.Y, d.Y}, {p.Z, d.Z}} {
		start, delta := a[0], a[1]
		if delta == 0 {
			if start < -0.5 || start > 0.5 {
				return Vec3{}, Vec3{}, false
			}
			continue
		}
		f0, f1 := (-0.5-start)/delta, (0.5-start)/delta
		if f0 > f1 {
			f0, f1 = f1, f0
		}
		lo, hi = math.Max(lo, f0), math.Min(hi, f1)
		if lo > hi {
			return Vec3{}, Vec3{}, false
		}
	}
	at := func(f float64) Vec3 {
		return Vec3{p.X + f*d.X, p.Y + f*d.Y, p.Z + f*d.Z}
	}
	return at(lo), at(hi), true
}

type projected struct {
	U, V, Depth float64
	Index       int
}

// projectSorted projects the points and orders them back to front.
func (c *Camera) projectSorted(vs []Vec3) []projected {
	out := make([]projected, len(vs))
	for i, v := range vs {
		u, w, d := c.Project(v)
		out[i] = projected{U: u, V: w, Depth: d, Index: i}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Depth > out[j].Depth })
	return out
}
