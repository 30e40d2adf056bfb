package display

import (
	"errors"
	"fmt"
	"sort"

	hdf5 "github.com/jmbenlloch/go-hdf5"
)

// HDF5Store reads an event display file. The events table is loaded once at
// open; hits and tracks are read on demand by row range.
type HDF5Store struct {
	File      *hdf5.File
	Filename  string
	Hits      *hdf5.Dataset
	TracksSet *hdf5.Dataset
	TrackHits *hdf5.Dataset
	events    []Event
	nHits     int64
	nTracks   int64
}

func OpenHDF5Store(filename string) (*HDF5Store, error) {
	f, err := openFileReadOnly(filename)
	if err != nil {
		return nil, err
	}
	s := &HDF5Store{File: f, Filename: filename}
	if err := s.load(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *HDF5Store) load() error {
	for _, name := range []string{EventsTable, HitsTable} {
		if !s.File.LinkExists(name) {
			return &DataAccessError{Table: name, Err: errors.New("table not found")}
		}
	}

	eventsTable, err := s.File.OpenDataset(EventsTable)
	if err != nil {
		return &DataAccessError{Table: EventsTable, Err: err}
	}
	defer eventsTable.Close()
	rows, err := readTable[EventHDF5](eventsTable)
	if err != nil {
		return &DataAccessError{Table: EventsTable, Err: err}
	}

	s.Hits, err = s.File.OpenDataset(HitsTable)
	if err != nil {
		return &DataAccessError{Table: HitsTable, Err: err}
	}
	s.nHits, err = tableLength(s.Hits)
	if err != nil {
		return &DataAccessError{Table: HitsTable, Err: err}
	}

	if s.File.LinkExists(TracksTable) {
		s.TracksSet, err = s.File.OpenDataset(TracksTable)
		if err != nil {
			return &DataAccessError{Table: TracksTable, Err: err}
		}
		s.nTracks, err = tableLength(s.TracksSet)
		if err != nil {
			return &DataAccessError{Table: TracksTable, Err: err}
		}
		if s.File.LinkExists(TrackHitsTable) {
			s.TrackHits, err = s.File.OpenDataset(TrackHitsTable)
			if err != nil {
				return &DataAccessError{Table: TrackHitsTable, Err: err}
			}
		}
	}

	s.events = make([]Event, len(rows))
	for i, row := range rows {
		event := row.toEvent()
		if err := event.validate(s.nHits); err != nil {
			return err
		}
		s.events[i] = event
	}
	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Opened %s: %d events, %d hits, tracks=%t", s.Filename, len(s.events), s.nHits, s.HasTracks())
		logger.Info(message, "hdf5")
	}
	return nil
}

func (s *HDF5Store) Name() string { return s.Filename }

func (s *HDF5Store) Events() []Event { return s.events }

func (s *HDF5Store) HasTracks() bool { return s.TracksSet != nil }

func (s *HDF5Store) ReadHits(start, stop int64) ([]Hit, error) {
	if start < 0 || stop < start || stop > s.nHits {
		return nil, &DataAccessError{Table: HitsTable, Err: fmt.Errorf("range [%d:%d] outside %d rows", start, stop, s.nHits)}
	}
	rows, err := readTableRange[HitHDF5](s.Hits, start, stop)
	if err != nil {
		return nil, &DataAccessError{Table: HitsTable, Err: err}
	}
	hits := make([]Hit, len(rows))
	for i, row := range rows {
		hits[i] = row.toHit()
	}
	return hits, nil
}

func (s *HDF5Store) ReadTracks(start, stop int64) ([]Track, error) {
	if !s.HasTracks() {
		return nil, &DataAccessError{Table: TracksTable, Err: errors.New("table not found")}
	}
	if start < 0 || stop < start || stop > s.nTracks {
		return nil, &DataAccessError{Table: TracksTable, Err: fmt.Errorf("range [%d:%d] outside %d rows", start, stop, s.nTracks)}
	}
	rows, err := readTableRange[TrackHDF5](s.TracksSet, start, stop)
	if err != nil {
		return nil, &DataAccessError{Table: TracksTable, Err: err}
	}
	tracks := make([]Track, len(rows))
	for i, row := range rows {
		var members []int64
		if s.TrackHits != nil && row.HitStop > row.HitStart {
			ids, err := readTableRange[uint32](s.TrackHits, row.HitStart, row.HitStop)
			if err != nil {
				return nil, &DataAccessError{Table: TrackHitsTable, Err: err}
			}
			members = make([]int64, len(ids))
			for j, id := range ids {
				members[j] = int64(id)
			}
		}
		tracks[i] = row.toTrack(members)
	}
	return tracks, nil
}

// HitsByIndex reads the covering row range once and picks the requested rows.
func (s *HDF5Store) HitsByIndex(index []int64) ([]Hit, error) {
	if len(index) == 0 {
		return nil, nil
	}
	sorted := append([]int64(nil), index...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	first, last := sorted[0], sorted[len(sorted)-1]
	block, err := s.ReadHits(first, last+1)
	if err != nil {
		return nil, err
	}
	hits := make([]Hit, len(index))
	for i, idx := range index {
		hits[i] = block[idx-first]
	}
	return hits, nil
}

func (s *HDF5Store) Close() error {
	var errs []error
	if s.TrackHits != nil {
		if err := s.TrackHits.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing track hits table: %w", err))
		}
	}
	if s.TracksSet != nil {
		if err := s.TracksSet.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing tracks table: %w", err))
		}
	}
	if s.Hits != nil {
		if err := s.Hits.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing hits table: %w", err))
		}
	}
	if s.File != nil {
		if err := s.File.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing file: %w", err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
