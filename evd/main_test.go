package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	display "github.com/larpix/evd_go/pkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func parse(t *testing.T, args ...string) display.Configuration {
	t.Helper()
	opts := &options{}
	cmd := newRootCmd(opts)
	require.NoError(t, cmd.ParseFlags(args))
	config, err := opts.configuration(cmd)
	require.NoError(t, err)
	return config
}

func TestConfigurationDefaults(t *testing.T) {
	config := parse(t)
	assert.Equal(t, display.DefaultGeomLimits, config.GeomLimits)
	assert.Equal(t, []string{"term", "png"}, config.Backends)
	assert.Equal(t, 0, config.NHitSel)
	assert.False(t, config.Points)
}

func TestConfigurationFlags(t *testing.T) {
	config := parse(t,
		"-i", "run.h5",
		"--nhit-sel", "25",
		"--geom-limits", "0,10,0,10,0,100,1,10",
		"--backend", "html",
		"--points",
		"--batch",
		"--workers", "4",
		"-v", "2",
	)
	assert.Equal(t, "run.h5", config.Input)
	assert.Equal(t, 25, config.NHitSel)
	assert.Equal(t, []float64{0, 10, 0, 10, 0, 100, 1, 10}, config.GeomLimits)
	assert.Equal(t, []string{"html"}, config.Backends)
	assert.True(t, config.Points)
	assert.True(t, config.Batch)
	assert.Equal(t, 4, config.NumWorkers)
	assert.Equal(t, 2, config.Verbosity)
}

func TestConfigurationFileAndFlags(t *testing.T) {
	file := filepath.Join(t.TempDir(), "evd.yaml")
	require.NoError(t, os.WriteFile(file, []byte("nhit_sel: 40\nout_dir: plots\nbackends: [png]\n"), 0o644))

	config := parse(t, "--config", file, "--nhit-sel", "3")
	// flags win only when set
	assert.Equal(t, 3, config.NHitSel)
	assert.Equal(t, "plots", config.OutDir)
	assert.Equal(t, []string{"png"}, config.Backends)
}

func TestConfigurationEnvironment(t *testing.T) {
	t.Setenv(display.EnvDBUser, "shifter")
	t.Setenv(display.EnvDBPass, "secret")
	config := parse(t)
	assert.Equal(t, "shifter", config.User)
	assert.Equal(t, "secret", config.Passwd)
}

func TestRootCmdArgs(t *testing.T) {
	cmd := newRootCmd(&options{})
	cmd.SetArgs([]string{"a.h5", "b.h5"})
	assert.Error(t, cmd.Execute())
}

func TestRunBatch(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "events.db")
	db, err := sqlx.Connect("sqlite", input)
	require.NoError(t, err)
	for _, stmt := range strings.Split(display.Schema, ";") {
		if strings.TrimSpace(stmt) != "" {
			db.MustExec(stmt)
		}
	}
	db.MustExec(`INSERT INTO events VALUES (4, 2, 0, 0, 2, 0, 0, 0)`)
	db.MustExec(`INSERT INTO hits VALUES (0, 0, 0, 5, 10), (1, 20, -20, 300, 20)`)
	require.NoError(t, db.Close())

	cmd := newRootCmd(&options{})
	cmd.SetArgs([]string{input, "--batch", "--workers", "2", "--backend", "png,html", "--out-dir", dir})
	require.NoError(t, cmd.Execute())
	assert.FileExists(t, filepath.Join(dir, "event_4.png"))
	assert.FileExists(t, filepath.Join(dir, "event_4.html"))
}
