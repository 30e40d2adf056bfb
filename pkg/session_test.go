package display

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runSession(t *testing.T, store *memStore, input string) (*Session, *recordingCanvas, error) {
	t.Helper()
	canvas := newRecordingCanvas()
	prompter := NewLinePrompter(strings.NewReader(input), io.Discard)
	s, err := NewSession(store, canvas, prompter, testGeometry(), 5, false)
	require.NoError(t, err)
	return s, canvas, s.Run()
}

func TestSessionRun(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantIDs   []int64
		wantClear int
	}{
		{"advance to the end", "\n\n", []int64{101, 103}, 2},
		{"quit", "q\n", []int64{101}, 1},
		{"invalid input re-prompts", "abc\n\n\n", []int64{101, 103}, 2},
		{"closed input quits", "", []int64{101}, 1},
		{"jump", "1\n7\n", []int64{101, 103}, 2},
		{"jump back", "1\n0\nq\n", []int64{101, 103, 101}, 3},
		{"negative jump exits", "-1\n", []int64{101}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, canvas, err := runSession(t, newMemStore(2, 7, 1, 9), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantIDs, canvas.ids)
			assert.Equal(t, len(tt.wantIDs), s.Shown)
			assert.Equal(t, len(tt.wantIDs), canvas.presents)
			assert.Equal(t, tt.wantClear, canvas.clears)
			assert.Equal(t, Exited, s.Nav.State())
		})
	}
}

func TestSessionTitle(t *testing.T) {
	_, canvas, err := runSession(t, newMemStore(2, 7, 1, 9), "q\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"Event 101/4 (memory)"}, canvas.titles)
}

func TestSessionNoSelectedEvents(t *testing.T) {
	s, canvas, err := runSession(t, newMemStore(1, 2), "\n")
	require.NoError(t, err)
	assert.Zero(t, s.Shown)
	assert.Empty(t, canvas.ids)
}

func TestSessionTrackErrorStillDisplays(t *testing.T) {
	store := withTracks(newMemStore(7))
	store.trackErr = errors.New("corrupt track table")
	s, canvas, err := runSession(t, store, "q\n")
	require.NoError(t, err)
	assert.Equal(t, 1, s.Shown)
	for _, call := range canvas.calls {
		assert.NotEqual(t, "Line3D", call.Method)
	}
}

func TestSessionHitErrorFails(t *testing.T) {
	store := newMemStore(7)
	store.hitErr = errors.New("read failure")
	s, _, err := runSession(t, store, "q\n")
	require.Error(t, err)
	assert.Zero(t, s.Shown)
}

func TestNewSessionRejectsGeometry(t *testing.T) {
	geom := testGeometry()
	geom.PixelPitch = 0
	_, err := NewSession(newMemStore(7), newRecordingCanvas(), NewLinePrompter(strings.NewReader(""), io.Discard), geom, 5, false)
	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}
