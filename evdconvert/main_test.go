package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	display "github.com/larpix/evd_go/pkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestConvertSQLiteToHDF5(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "events.db")
	db, err := sqlx.Connect("sqlite", input)
	require.NoError(t, err)
	for _, stmt := range strings.Split(display.Schema, ";") {
		if strings.TrimSpace(stmt) != "" {
			db.MustExec(stmt)
		}
	}
	db.MustExec(`INSERT INTO events VALUES (1, 1, 0, 0, 1, 0, 0, 0), (2, 3, 1, 1, 4, 0, 1, 100)`)
	db.MustExec(`INSERT INTO hits VALUES (0, 0, 0, 5, 1), (1, 1, 1, 110, 2), (2, 2, 2, 120, 3), (3, 3, 3, 130, 4)`)
	db.MustExec(`INSERT INTO tracks VALUES (0, 1, 1, 0, 10, 3, 3, 0, 30, 0, 2)`)
	db.MustExec(`INSERT INTO track_hits VALUES (0, 1), (1, 3)`)
	require.NoError(t, db.Close())

	output := filepath.Join(dir, "events.h5")
	cmd := newRootCmd()
	cmd.SetArgs([]string{input, output, "--nhit-sel", "2"})
	require.NoError(t, cmd.Execute())

	store, err := display.OpenStore(output)
	require.NoError(t, err)
	defer store.Close()

	events := store.Events()
	require.Len(t, events, 1)
	assert.Equal(t, int64(2), events[0].ID)
	assert.Equal(t, int64(0), events[0].HitStart)
	assert.Equal(t, int64(3), events[0].HitStop)

	data, err := display.LoadEvent(store, events[0])
	require.NoError(t, err)
	require.Len(t, data.Tracks, 1)
	// members are renumbered to the rows of the new hits table
	assert.Equal(t, []int64{0, 2}, data.Tracks[0].MemberHits)
	assert.Equal(t, int64(130), data.TrackHits[0][1].Timestamp)
}

func TestConvertArgs(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"only-one.h5"})
	assert.Error(t, cmd.Execute())
}
