package display

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func composeEvent(t *testing.T, points bool) (*Frame, *recordingCanvas) {
	t.Helper()
	store := withTracks(newMemStore(3))
	data, err := LoadEvent(store, store.events[0])
	require.NoError(t, err)

	canvas := newRecordingCanvas()
	c := &Composer{Geometry: testGeometry(), Points: points}
	frame, err := c.Compose(canvas, data, "Event 100/1 (memory)")
	require.NoError(t, err)
	return frame, canvas
}

func TestComposeVoxels(t *testing.T) {
	frame, canvas := composeEvent(t, false)

	want := []canvasCall{
		{Method: "Voxels", Panel: PanelVolume},
		{Method: "Line3D", Panel: PanelVolume},
		{Method: "Scatter3D", Panel: PanelVolume},
		{Method: "Line3D", Panel: PanelVolume},
		{Method: "Scatter3D", Panel: PanelVolume},
		{Method: "Hist2D", Panel: PanelProjection, Label: "charge [ke]"},
		{Method: "Line2D", Panel: PanelProjection},
		{Method: "Line2D", Panel: PanelProjection},
		{Method: "Hist1D", Panel: PanelProfile, Label: "binned"},
		{Method: "Scatter2D", Panel: PanelHitTimes, Label: "hits"},
	}
	if diff := cmp.Diff(want, canvas.calls); diff != "" {
		t.Errorf("draw calls mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []int64{100}, canvas.ids)
	assert.Equal(t, []string{"Event 100/1 (memory)"}, canvas.titles)
	assert.Len(t, canvas.axes, int(NumPanels))

	require.NotNil(t, frame.Volume)
	assert.Len(t, canvas.colors, len(frame.Volume.Data))
	// three hits of 1 ke each at the origin
	assert.InDelta(t, 3, frame.Projection.Total(), 1e-6)
	assert.InDelta(t, 3, frame.Profile.Total(), 1e-6)
	assert.Equal(t, []float64{0, 10, 20}, frame.HitT)
}

func TestComposePoints(t *testing.T) {
	frame, canvas := composeEvent(t, true)
	require.NotEmpty(t, canvas.calls)
	assert.Equal(t, "Scatter3D", canvas.calls[0].Method)
	assert.Nil(t, frame.Volume)
	assert.Len(t, frame.Cloud.Points, 3)
}

func TestComposeAxesFromGeometry(t *testing.T) {
	_, canvas := composeEvent(t, false)
	g := testGeometry()
	vol := canvas.axes[PanelVolume]
	assert.Equal(t, g.XMin, vol.XMin)
	assert.Equal(t, g.TMax, vol.ZMax)
	assert.Equal(t, "t [0.1us]", vol.ZLabel)
	assert.Equal(t, g.TMax, canvas.axes[PanelHitTimes].XMax)
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Event 12/40 (run.h5)", Title(Event{ID: 12}, 40, "run.h5"))
}
