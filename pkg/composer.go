package display

import "fmt"

// Composer lays one event out on the four panels. Axis bounds come only from
// the geometry so that every event is drawn on the same frame.
type Composer struct {
	Geometry Geometry
	// Points draws the hits as a point cloud instead of voxels.
	Points bool
}

// Frame is the binned content of one event, kept for inspection after
// drawing.
type Frame struct {
	Title      string
	Volume     *Histogram3D
	Cloud      PointCloud
	Projection *Histogram2D
	Profile    *Histogram1D
	HitT       []float64
	HitQ       []float64
}

// Title follows the "Event <evid>/<n events> (<file>)" convention.
func Title(event Event, nEvents int, source string) string {
	return fmt.Sprintf("Event %d/%d (%s)", event.ID, nEvents, source)
}

func (c *Composer) axes() map[Panel]Axes {
	g := c.Geometry
	return map[Panel]Axes{
		PanelVolume: {
			XLabel: "x [mm]", YLabel: "y [mm]", ZLabel: "t [0.1us]",
			XMin: g.XMin, XMax: g.XMax, YMin: g.YMin, YMax: g.YMax, ZMin: g.TMin, ZMax: g.TMax,
		},
		PanelProjection: {
			XLabel: "x [mm]", YLabel: "y [mm]",
			XMin: g.XMin, XMax: g.XMax, YMin: g.YMin, YMax: g.YMax,
		},
		PanelProfile: {
			XLabel: "timestamp [0.1us]", YLabel: "charge [ke]",
			XMin: g.TMin, XMax: g.TMax,
		},
		PanelHitTimes: {
			XLabel: "timestamp [0.1us]", YLabel: "charge [ke]",
			XMin: g.TMin, XMax: g.TMax,
		},
	}
}

// Compose bins the event and draws it into the canvas.
func (c *Composer) Compose(canvas Canvas, data EventData, title string) (*Frame, error) {
	frame := &Frame{Title: title}
	canvas.Begin(data.Event.ID, title)
	for panel, axes := range c.axes() {
		canvas.SetAxes(panel, axes)
	}

	x, y, t, q := Samples(data.Hits, data.Event.TsStart)
	weights := ChargeWeights(q)
	points := Points(x, y, t)

	var err error
	if c.Points {
		frame.Cloud = NewPointCloud(points, weights)
		if err := canvas.Scatter3D(PanelVolume, frame.Cloud); err != nil {
			return nil, err
		}
	} else {
		frame.Volume, err = VolumeHistogram(points, weights, c.Geometry)
		if err != nil {
			return nil, err
		}
		if err := canvas.Voxels(PanelVolume, frame.Volume, VoxelColors(frame.Volume)); err != nil {
			return nil, err
		}
	}

	for i, track := range data.Tracks {
		if err := canvas.Line3D(PanelVolume, Segment3D{From: track.Start, To: track.End}); err != nil {
			return nil, err
		}
		if i < len(data.TrackHits) && len(data.TrackHits[i]) > 0 {
			tx, ty, tt, tq := Samples(data.TrackHits[i], data.Event.TsStart)
			cloud := NewPointCloud(Points(tx, ty, tt), ChargeWeights(tq))
			if err := canvas.Scatter3D(PanelVolume, cloud); err != nil {
				return nil, err
			}
		}
	}

	frame.Projection, err = ProjectionHistogram(x, y, weights, c.Geometry)
	if err != nil {
		return nil, err
	}
	if err := canvas.Hist2D(PanelProjection, frame.Projection, "charge [ke]"); err != nil {
		return nil, err
	}
	for _, track := range data.Tracks {
		xs := []float64{track.Start.X, track.End.X}
		ys := []float64{track.Start.Y, track.End.Y}
		if err := canvas.Line2D(PanelProjection, xs, ys); err != nil {
			return nil, err
		}
	}

	frame.Profile, err = TimeProfile(t, weights, c.Geometry)
	if err != nil {
		return nil, err
	}
	if err := canvas.Hist1D(PanelProfile, frame.Profile, "binned"); err != nil {
		return nil, err
	}

	frame.HitT, frame.HitQ = HitTimes(t, weights, c.Geometry.TMax)
	if err := canvas.Scatter2D(PanelHitTimes, frame.HitT, frame.HitQ, "hits"); err != nil {
		return nil, err
	}
	return frame, nil
}
