package display

import (
	"errors"
	"fmt"
	"image/color"
)

// memStore is an in-memory Store over flat tables, laid out like the files.
type memStore struct {
	events    []Event
	hits      []Hit
	tracks    []Track
	hasTracks bool
	trackErr  error
	hitErr    error
	closed    bool
}

func (s *memStore) Name() string    { return "memory" }
func (s *memStore) Events() []Event { return s.events }
func (s *memStore) HasTracks() bool { return s.hasTracks }

func (s *memStore) ReadHits(start, stop int64) ([]Hit, error) {
	if s.hitErr != nil {
		return nil, s.hitErr
	}
	if start < 0 || stop > int64(len(s.hits)) || stop < start {
		return nil, &DataAccessError{Table: HitsTable, Err: fmt.Errorf("range [%d:%d]", start, stop)}
	}
	return s.hits[start:stop], nil
}

func (s *memStore) ReadTracks(start, stop int64) ([]Track, error) {
	if s.trackErr != nil {
		return nil, s.trackErr
	}
	if start < 0 || stop > int64(len(s.tracks)) || stop < start {
		return nil, &DataAccessError{Table: TracksTable, Err: fmt.Errorf("range [%d:%d]", start, stop)}
	}
	return s.tracks[start:stop], nil
}

func (s *memStore) HitsByIndex(index []int64) ([]Hit, error) {
	out := make([]Hit, len(index))
	for i, idx := range index {
		if idx < 0 || idx >= int64(len(s.hits)) {
			return nil, &DataAccessError{Table: HitsTable, Field: "hid", Err: errors.New("out of range")}
		}
		out[i] = s.hits[idx]
	}
	return out, nil
}

func (s *memStore) Close() error {
	s.closed = true
	return nil
}

// newMemStore builds one event per hit count, each hit at the origin with
// unit charge.
func newMemStore(counts ...int64) *memStore {
	s := &memStore{}
	var offset int64
	for i, n := range counts {
		s.events = append(s.events, Event{
			ID: int64(100 + i), NHit: n, HitStart: offset, HitStop: offset + n, TsStart: 1000,
		})
		for j := int64(0); j < n; j++ {
			s.hits = append(s.hits, Hit{X: 0, Y: 0, Timestamp: 1000 + 10*j, Charge: 4})
		}
		offset += n
	}
	return s
}

type canvasCall struct {
	Method string
	Panel  Panel
	Label  string
}

// recordingCanvas remembers every primitive drawn.
type recordingCanvas struct {
	ids      []int64
	titles   []string
	axes     map[Panel]Axes
	calls    []canvasCall
	presents int
	clears   int
	colors   []color.NRGBA
}

func newRecordingCanvas() *recordingCanvas {
	return &recordingCanvas{axes: map[Panel]Axes{}}
}

func (c *recordingCanvas) record(method string, panel Panel, label string) {
	c.calls = append(c.calls, canvasCall{Method: method, Panel: panel, Label: label})
}

func (c *recordingCanvas) Begin(id int64, title string) {
	c.ids = append(c.ids, id)
	c.titles = append(c.titles, title)
}

func (c *recordingCanvas) SetAxes(panel Panel, axes Axes) { c.axes[panel] = axes }

func (c *recordingCanvas) Voxels(panel Panel, h *Histogram3D, colors []color.NRGBA) error {
	c.colors = colors
	c.record("Voxels", panel, "")
	return nil
}

func (c *recordingCanvas) Line3D(panel Panel, segment Segment3D) error {
	c.record("Line3D", panel, "")
	return nil
}

func (c *recordingCanvas) Scatter3D(panel Panel, cloud PointCloud) error {
	c.record("Scatter3D", panel, "")
	return nil
}

func (c *recordingCanvas) Line2D(panel Panel, x, y []float64) error {
	c.record("Line2D", panel, "")
	return nil
}

func (c *recordingCanvas) Hist2D(panel Panel, h *Histogram2D, label string) error {
	c.record("Hist2D", panel, label)
	return nil
}

func (c *recordingCanvas) Hist1D(panel Panel, h *Histogram1D, label string) error {
	c.record("Hist1D", panel, label)
	return nil
}

func (c *recordingCanvas) Scatter2D(panel Panel, x, y []float64, label string) error {
	c.record("Scatter2D", panel, label)
	return nil
}

func (c *recordingCanvas) Present() error {
	c.presents++
	return nil
}

func (c *recordingCanvas) Clear() error {
	c.clears++
	return nil
}

func testGeometry() Geometry {
	return Geometry{XMin: -10, XMax: 10, YMin: -10, YMax: 10, TMin: 0, TMax: 100, PixelPitch: 1, TimeVoxel: 10}
}
