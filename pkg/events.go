package display

import (
	"fmt"
	"sort"
)

// ChargeScale converts raw ADC charge units into ke.
const ChargeScale = 0.250

type Event struct {
	ID         int64
	NHit       int64
	NTracks    int64
	HitStart   int64
	HitStop    int64
	TrackStart int64
	TrackStop  int64
	TsStart    int64
}

type Hit struct {
	X         float64
	Y         float64
	Timestamp int64
	Charge    float64
}

type Track struct {
	// Start and End are (x, y, t) with t relative to the event start.
	Start      Point3D
	End        Point3D
	MemberHits []int64
}

// EventData is everything the display needs for one event.
type EventData struct {
	Event     Event
	Hits      []Hit
	Tracks    []Track
	TrackHits [][]Hit
}

func (e Event) String() string {
	return fmt.Sprintf("evid=%d nhit=%d ntracks=%d ts_start=%d hits=[%d:%d] tracks=[%d:%d]",
		e.ID, e.NHit, e.NTracks, e.TsStart, e.HitStart, e.HitStop, e.TrackStart, e.TrackStop)
}

// validate checks the event's hit range against the size of the hits table.
func (e Event) validate(nHits int64) error {
	if e.HitStart < 0 || e.HitStop < e.HitStart || e.HitStop > nHits {
		return &DataAccessError{Table: "events", Field: "hit_ref",
			Err: fmt.Errorf("event %d hit range [%d:%d] outside hits table of %d rows", e.ID, e.HitStart, e.HitStop, nHits)}
	}
	return nil
}

// Samples returns the hit columns in display units: positions in mm, time
// relative to the event start and charge in ke.
func Samples(hits []Hit, tsStart int64) (x, y, t, q []float64) {
	x = make([]float64, len(hits))
	y = make([]float64, len(hits))
	t = make([]float64, len(hits))
	q = make([]float64, len(hits))
	for i, h := range hits {
		x[i] = h.X
		y[i] = h.Y
		t[i] = float64(h.Timestamp - tsStart)
		q[i] = h.Charge * ChargeScale
	}
	return x, y, t, q
}

// Points zips the position and time columns.
func Points(x, y, t []float64) []Point3D {
	pts := make([]Point3D, len(x))
	for i := range x {
		pts[i] = Point3D{X: x[i], Y: y[i], T: t[i]}
	}
	return pts
}

// HitTimes returns the (t, q) pairs with t < tMax, sorted by time then charge.
func HitTimes(t, q []float64, tMax float64) ([]float64, []float64) {
	type pair struct{ t, q float64 }
	pairs := make([]pair, 0, len(t))
	for i := range t {
		if t[i] < tMax {
			pairs = append(pairs, pair{t[i], q[i]})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].t != pairs[j].t {
			return pairs[i].t < pairs[j].t
		}
		return pairs[i].q < pairs[j].q
	})
	ts := make([]float64, len(pairs))
	qs := make([]float64, len(pairs))
	for i, p := range pairs {
		ts[i] = p.t
		qs[i] = p.q
	}
	return ts, qs
}

// HitCounts returns the nhit column of the events.
func HitCounts(events []Event) []int64 {
	counts := make([]int64, len(events))
	for i, e := range events {
		counts[i] = e.NHit
	}
	return counts
}
