package display

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterRoundTrip(t *testing.T) {
	src := withTracks(newMemStore(3, 2))
	// members refer to rows of the source hits table
	src.tracks[0].MemberHits = []int64{0, 2}
	src.tracks[1].MemberHits = []int64{1, 4}

	filename := filepath.Join(t.TempDir(), "out.h5")
	w, err := NewWriter(filename)
	require.NoError(t, err)
	for _, ev := range src.events {
		data, err := LoadEvent(src, ev)
		require.NoError(t, err)
		require.NoError(t, w.WriteEvent(data))
	}
	// the second event's hit 4 is not a member of the first event
	assert.Equal(t, 1, w.DroppedMembers)
	require.NoError(t, w.Close())

	store, err := OpenStore(filename)
	require.NoError(t, err)
	defer store.Close()

	events := store.Events()
	require.Len(t, events, 2)
	assert.Equal(t, int64(100), events[0].ID)
	assert.Equal(t, int64(3), events[0].NHit)
	assert.Equal(t, int64(2), events[0].NTracks)
	assert.Equal(t, int64(3), events[1].HitStart)
	assert.Equal(t, int64(5), events[1].HitStop)
	assert.True(t, store.HasTracks())

	data, err := LoadEvent(store, events[0])
	require.NoError(t, err)
	assert.Equal(t, src.hits[:3], data.Hits)
	require.Len(t, data.Tracks, 2)
	assert.Equal(t, src.tracks[0].Start, data.Tracks[0].Start)
	assert.Equal(t, src.tracks[0].End, data.Tracks[0].End)
	assert.Equal(t, []int64{0, 2}, data.Tracks[0].MemberHits)
	assert.Equal(t, []int64{1}, data.Tracks[1].MemberHits)
	require.Len(t, data.TrackHits[1], 1)
	assert.Equal(t, src.hits[1], data.TrackHits[1][0])

	data, err = LoadEvent(store, events[1])
	require.NoError(t, err)
	assert.Equal(t, src.hits[3:5], data.Hits)
	assert.Empty(t, data.Tracks)
}

func TestOpenHDF5StoreMissingFile(t *testing.T) {
	_, err := OpenStore(filepath.Join(t.TempDir(), "missing.h5"))
	var openErr *ErrOpenFile
	assert.ErrorAs(t, err, &openErr)
}

func TestOpenHDF5StoreMissingTable(t *testing.T) {
	tests := []struct {
		name    string
		present []string
		missing string
	}{
		{"empty file", nil, EventsTable},
		{"no events", []string{HitsTable}, EventsTable},
		{"no hits", []string{EventsTable}, HitsTable},
	}
	dtypes := map[string]interface{}{EventsTable: EventHDF5{}, HitsTable: HitHDF5{}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filename := filepath.Join(t.TempDir(), "partial.h5")
			f, err := openFile(filename)
			require.NoError(t, err)
			for _, name := range tt.present {
				dset, err := createTable(&f.CommonFG, name, dtypes[name])
				require.NoError(t, err)
				require.NoError(t, dset.Close())
			}
			require.NoError(t, f.Close())

			_, err = OpenStore(filename)
			var dataErr *DataAccessError
			require.ErrorAs(t, err, &dataErr)
			assert.Equal(t, tt.missing, dataErr.Table)
		})
	}
}
