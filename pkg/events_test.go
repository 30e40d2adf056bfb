package display

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestSamples(t *testing.T) {
	hits := []Hit{
		{X: 1.5, Y: -2, Timestamp: 1010, Charge: 4},
		{X: 0, Y: 3, Timestamp: 1000, Charge: 10},
	}
	x, y, ts, q := Samples(hits, 1000)
	assert.Equal(t, []float64{1.5, 0}, x)
	assert.Equal(t, []float64{-2, 3}, y)
	assert.Equal(t, []float64{10, 0}, ts)
	assert.Equal(t, []float64{1, 2.5}, q)
}

func TestSamplesEmpty(t *testing.T) {
	x, y, ts, q := Samples(nil, 0)
	assert.Empty(t, x)
	assert.Empty(t, y)
	assert.Empty(t, ts)
	assert.Empty(t, q)
}

func TestHitTimes(t *testing.T) {
	ts, qs := HitTimes(
		[]float64{50, 5, 200, 5, 99.9},
		[]float64{1, 3, 7, 2, 4},
		100,
	)
	if diff := cmp.Diff([]float64{5, 5, 50, 99.9}, ts); diff != "" {
		t.Errorf("times mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{2, 3, 1, 4}, qs); diff != "" {
		t.Errorf("charges mismatch (-want +got):\n%s", diff)
	}
}

func TestEventValidate(t *testing.T) {
	tests := []struct {
		name    string
		event   Event
		wantErr bool
	}{
		{"whole table", Event{HitStart: 0, HitStop: 10}, false},
		{"empty range", Event{HitStart: 4, HitStop: 4}, false},
		{"past end", Event{HitStart: 5, HitStop: 11}, true},
		{"negative start", Event{HitStart: -1, HitStop: 2}, true},
		{"inverted", Event{HitStart: 6, HitStop: 2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.validate(10)
			if tt.wantErr {
				var dataErr *DataAccessError
				assert.ErrorAs(t, err, &dataErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHitCounts(t *testing.T) {
	s := newMemStore(2, 7, 1, 9)
	assert.Equal(t, []int64{2, 7, 1, 9}, HitCounts(s.Events()))
}
