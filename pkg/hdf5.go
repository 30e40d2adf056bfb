package display

import (
	"fmt"

	"github.com/jmbenlloch/go-hdf5"
)

// Row layouts of the event display tables. Field names follow the columns
// written by the LArPix event builder.

type EventHDF5 struct {
	Evid       int64 `hdf5:"evid"`
	NHit       int64 `hdf5:"nhit"`
	NTracks    int64 `hdf5:"ntracks"`
	HitStart   int64 `hdf5:"hit_start"`
	HitStop    int64 `hdf5:"hit_stop"`
	TrackStart int64 `hdf5:"track_start"`
	TrackStop  int64 `hdf5:"track_stop"`
	TsStart    int64 `hdf5:"ts_start"`
}

type HitHDF5 struct {
	Px float64 `hdf5:"px"`
	Py float64 `hdf5:"py"`
	Ts int64   `hdf5:"ts"`
	Q  float64 `hdf5:"q"`
}

// TrackHDF5 start/end are (x, y, z, t); the display uses x, y and t.
type TrackHDF5 struct {
	Start    [4]float64 `hdf5:"start"`
	End      [4]float64 `hdf5:"end"`
	HitStart int64      `hdf5:"hit_start"`
	HitStop  int64      `hdf5:"hit_stop"`
}

const (
	EventsTable    = "events"
	HitsTable      = "hits"
	TracksTable    = "tracks"
	TrackHitsTable = "track_hits"
)

func (r EventHDF5) toEvent() Event {
	return Event{
		ID:         r.Evid,
		NHit:       r.NHit,
		NTracks:    r.NTracks,
		HitStart:   r.HitStart,
		HitStop:    r.HitStop,
		TrackStart: r.TrackStart,
		TrackStop:  r.TrackStop,
		TsStart:    r.TsStart,
	}
}

func eventToHDF5(e Event) EventHDF5 {
	return EventHDF5{
		Evid:       e.ID,
		NHit:       e.NHit,
		NTracks:    e.NTracks,
		HitStart:   e.HitStart,
		HitStop:    e.HitStop,
		TrackStart: e.TrackStart,
		TrackStop:  e.TrackStop,
		TsStart:    e.TsStart,
	}
}

func (r HitHDF5) toHit() Hit {
	return Hit{X: r.Px, Y: r.Py, Timestamp: r.Ts, Charge: r.Q}
}

func (r TrackHDF5) toTrack(members []int64) Track {
	return Track{
		Start:      Point3D{X: r.Start[0], Y: r.Start[1], T: r.Start[3]},
		End:        Point3D{X: r.End[0], Y: r.End[1], T: r.End[3]},
		MemberHits: members,
	}
}

func openFile(fname string) (*hdf5.File, error) {
	f, err := hdf5.CreateFile(fname, hdf5.F_ACC_TRUNC)
	if err != nil {
		return nil, &ErrOpenFile{Filename: fname, Err: err}
	}
	return f, nil
}

func openFileReadOnly(fname string) (*hdf5.File, error) {
	f, err := hdf5.OpenFile(fname, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, &ErrOpenFile{Filename: fname, Err: err}
	}
	return f, nil
}

func createTable(group *hdf5.CommonFG, name string, datatype interface{}) (*hdf5.Dataset, error) {
	dims := []uint{0}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDims := []uint{uint(unlimitedDims)}
	file_space, err := hdf5.CreateSimpleDataspace(dims, maxDims)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	defer file_space.Close()

	// create property list
	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	defer plist.Close()

	chunks := []uint{32768}
	plist.SetChunk(chunks)
	plist.SetDeflate(configuration.CompressionLevel)

	// create the memory data type
	dtype, err := hdf5.NewDatatypeFromValue(datatype)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}

	dset, err := group.CreateDatasetWith(name, dtype, file_space, plist)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	return dset, nil
}

func writeArrayToTable[T any](dataset *hdf5.Dataset, data *[]T, rowsInTable int) error {
	length := uint(len(*data))
	if length == 0 {
		return nil
	}
	dims := []uint{length}
	dataspace, err := hdf5.CreateSimpleDataspace(dims, nil)
	if err != nil {
		return err
	}
	defer dataspace.Close()

	// extend
	rows := uint(rowsInTable)
	newsize := []uint{rows + length}
	if err := dataset.Resize(newsize); err != nil {
		return err
	}
	filespace := dataset.Space()
	defer filespace.Close()

	start := []uint{rows}
	count := []uint{length}
	if err := filespace.SelectHyperslab(start, nil, count, nil); err != nil {
		return err
	}
	return dataset.WriteSubset(data, dataspace, filespace)
}

func tableLength(dataset *hdf5.Dataset) (int64, error) {
	space := dataset.Space()
	defer space.Close()
	dims, _, err := space.SimpleExtentDims()
	if err != nil {
		return 0, err
	}
	if len(dims) != 1 {
		return 0, fmt.Errorf("expected a 1-d table, got %d dimensions", len(dims))
	}
	return int64(dims[0]), nil
}

func readTable[T any](dataset *hdf5.Dataset) ([]T, error) {
	n, err := tableLength(dataset)
	if err != nil {
		return nil, err
	}
	data := make([]T, n)
	if n == 0 {
		return data, nil
	}
	if err := dataset.Read(&data); err != nil {
		return nil, err
	}
	return data, nil
}

// readTableRange reads rows [start, stop) with a hyperslab selection.
func readTableRange[T any](dataset *hdf5.Dataset, start, stop int64) ([]T, error) {
	count := stop - start
	// The array MUST be allocated before reading, HDF5 writes into it in place
	data := make([]T, count)
	if count <= 0 {
		return data, nil
	}
	memspace, err := hdf5.CreateSimpleDataspace([]uint{uint(count)}, nil)
	if err != nil {
		return nil, err
	}
	defer memspace.Close()

	filespace := dataset.Space()
	defer filespace.Close()
	if err := filespace.SelectHyperslab([]uint{uint(start)}, nil, []uint{uint(count)}, nil); err != nil {
		return nil, err
	}
	if err := dataset.ReadSubset(&data, memspace, filespace); err != nil {
		return nil, err
	}
	return data, nil
}
