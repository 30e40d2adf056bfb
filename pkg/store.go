package display

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Store is a read-only, indexable collection of the events, hits and
// (optional) tracks tables.
type Store interface {
	Name() string
	Events() []Event
	HasTracks() bool
	ReadHits(start, stop int64) ([]Hit, error)
	ReadTracks(start, stop int64) ([]Track, error)
	HitsByIndex(index []int64) ([]Hit, error)
	Close() error
}

// OpenStore picks the store implementation from the source: HDF5 files by
// extension, SQL databases by URL scheme or SQLite file extension.
func OpenStore(source string) (Store, error) {
	if source == "" {
		return nil, &ConfigurationError{Field: "input", Reason: "an input file is required"}
	}
	if driver, dsn, ok := sqlSource(source); ok {
		return OpenSQLStore(driver, dsn)
	}
	switch strings.ToLower(filepath.Ext(source)) {
	case ".h5", ".hdf5":
		return OpenHDF5Store(source)
	}
	return nil, &ErrOpenFile{Filename: source, Err: errors.New("unknown input format")}
}

// LoadEvent reads the hits of one event and, when available, its tracks and
// their member hits. Hit errors are fatal; track errors drop the tracks of
// this event only.
func LoadEvent(store Store, event Event) (EventData, error) {
	data := EventData{Event: event}
	hits, err := store.ReadHits(event.HitStart, event.HitStop)
	if err != nil {
		return data, err
	}
	data.Hits = hits

	if !store.HasTracks() || event.NTracks == 0 {
		return data, nil
	}
	tracks, trackHits, err := loadTracks(store, event)
	if err != nil {
		message := fmt.Errorf("event %d displayed without tracks: %w", event.ID, err)
		logger.Error(message.Error())
		return data, nil
	}
	data.Tracks = tracks
	data.TrackHits = trackHits
	return data, nil
}

func loadTracks(store Store, event Event) ([]Track, [][]Hit, error) {
	tracks, err := store.ReadTracks(event.TrackStart, event.TrackStop)
	if err != nil {
		return nil, nil, err
	}
	trackHits := make([][]Hit, len(tracks))
	for i, track := range tracks {
		hits, err := store.HitsByIndex(track.MemberHits)
		if err != nil {
			return nil, nil, err
		}
		trackHits[i] = hits
	}
	return tracks, trackHits, nil
}
