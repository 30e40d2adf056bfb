package display

import (
	"errors"
	"fmt"

	"github.com/jmbenlloch/go-hdf5"
)

// Writer appends events in the layout read by HDF5Store. Hit and track
// references are rewritten to the row numbers of the new file.
type Writer struct {
	File           *hdf5.File
	Filename       string
	EventTable     *hdf5.Dataset
	HitTable       *hdf5.Dataset
	TrackTable     *hdf5.Dataset
	TrackHitsTable *hdf5.Dataset
	EvtCounter     int
	HitCounter     int
	TrackCounter   int
	MemberCounter  int
	// DroppedMembers counts track members that pointed outside their event.
	DroppedMembers int
}

func NewWriter(filename string) (*Writer, error) {
	logger.Info(fmt.Sprintf("Creating file: %s", filename), "writer")
	file, err := openFile(filename)
	if err != nil {
		return nil, err
	}
	w := &Writer{File: file, Filename: filename}
	tables := []struct {
		dst   **hdf5.Dataset
		name  string
		dtype interface{}
	}{
		{&w.EventTable, EventsTable, EventHDF5{}},
		{&w.HitTable, HitsTable, HitHDF5{}},
		{&w.TrackTable, TracksTable, TrackHDF5{}},
		{&w.TrackHitsTable, TrackHitsTable, uint32(0)},
	}
	for _, t := range tables {
		dset, err := createTable(&file.CommonFG, t.name, t.dtype)
		if err != nil {
			return nil, errors.Join(err, w.Close())
		}
		*t.dst = dset
	}
	return w, nil
}

func hitToHDF5(h Hit) HitHDF5 {
	return HitHDF5{Px: h.X, Py: h.Y, Ts: h.Timestamp, Q: h.Charge}
}

func trackToHDF5(t Track, hitStart, hitStop int64) TrackHDF5 {
	return TrackHDF5{
		Start:    [4]float64{t.Start.X, t.Start.Y, 0, t.Start.T},
		End:      [4]float64{t.End.X, t.End.Y, 0, t.End.T},
		HitStart: hitStart,
		HitStop:  hitStop,
	}
}

// WriteEvent appends one event with its hits and tracks.
func (w *Writer) WriteEvent(data EventData) error {
	ev := data.Event

	hits := make([]HitHDF5, len(data.Hits))
	for i, h := range data.Hits {
		hits[i] = hitToHDF5(h)
	}
	hitOffset := int64(w.HitCounter)

	var tracks []TrackHDF5
	var members []uint32
	for _, t := range data.Tracks {
		start := int64(w.MemberCounter + len(members))
		for _, m := range t.MemberHits {
			if m < ev.HitStart || m >= ev.HitStart+int64(len(data.Hits)) {
				w.DroppedMembers++
				continue
			}
			members = append(members, uint32(hitOffset+m-ev.HitStart))
		}
		tracks = append(tracks, trackToHDF5(t, start, int64(w.MemberCounter+len(members))))
	}

	row := eventToHDF5(Event{
		ID:         ev.ID,
		NHit:       int64(len(hits)),
		NTracks:    int64(len(tracks)),
		HitStart:   hitOffset,
		HitStop:    hitOffset + int64(len(hits)),
		TrackStart: int64(w.TrackCounter),
		TrackStop:  int64(w.TrackCounter + len(tracks)),
		TsStart:    ev.TsStart,
	})
	rows := []EventHDF5{row}

	if err := writeArrayToTable(w.HitTable, &hits, w.HitCounter); err != nil {
		return fmt.Errorf("error writing hits of event %d: %w", ev.ID, err)
	}
	if err := writeArrayToTable(w.TrackHitsTable, &members, w.MemberCounter); err != nil {
		return fmt.Errorf("error writing track hits of event %d: %w", ev.ID, err)
	}
	if err := writeArrayToTable(w.TrackTable, &tracks, w.TrackCounter); err != nil {
		return fmt.Errorf("error writing tracks of event %d: %w", ev.ID, err)
	}
	if err := writeArrayToTable(w.EventTable, &rows, w.EvtCounter); err != nil {
		return fmt.Errorf("error writing event %d: %w", ev.ID, err)
	}
	w.HitCounter += len(hits)
	w.MemberCounter += len(members)
	w.TrackCounter += len(tracks)
	w.EvtCounter++
	return nil
}

func (w *Writer) Close() error {
	logger.Info(fmt.Sprintf("Closing file %s", w.Filename), "writer")
	var errs []error

	closers := []struct {
		name string
		dset *hdf5.Dataset
	}{
		{"event table", w.EventTable},
		{"hit table", w.HitTable},
		{"track table", w.TrackTable},
		{"track hits table", w.TrackHitsTable},
	}
	for _, c := range closers {
		if c.dset == nil {
			continue
		}
		if err := c.dset.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing %s: %w", c.name, err))
		}
	}
	if w.File != nil {
		if err := w.File.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing file: %w", err))
		}
	}
	return errors.Join(errs...)
}
