package display

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigurationDefaults(t *testing.T) {
	config, err := LoadConfiguration("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfiguration(), config)
	assert.Equal(t, DefaultGeomLimits, config.GeomLimits)

	// defaults must not alias the package limits
	config.GeomLimits[0] = 0
	assert.Equal(t, -159.624, DefaultGeomLimits[0])
}

func TestLoadConfigurationFile(t *testing.T) {
	dir := t.TempDir()
	yamlFile := filepath.Join(dir, "evd.yaml")
	require.NoError(t, os.WriteFile(yamlFile, []byte(`
input: run.h5
nhit_sel: 20
backends: [html]
points: true
`), 0o644))
	config, err := LoadConfiguration(yamlFile)
	require.NoError(t, err)
	assert.Equal(t, "run.h5", config.Input)
	assert.Equal(t, 20, config.NHitSel)
	assert.Equal(t, []string{"html"}, config.Backends)
	assert.True(t, config.Points)
	assert.Equal(t, DefaultGeomLimits, config.GeomLimits)

	jsonFile := filepath.Join(dir, "evd.json")
	require.NoError(t, os.WriteFile(jsonFile, []byte(`{"geom_limits": [0, 1, 0, 1, 0, 10, 0.1, 1], "verbosity": 2}`), 0o644))
	config, err = LoadConfiguration(jsonFile)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 0, 1, 0, 10, 0.1, 1}, config.GeomLimits)
	assert.Equal(t, 2, config.Verbosity)
}

func TestLoadConfigurationErrors(t *testing.T) {
	_, err := LoadConfiguration(filepath.Join(t.TempDir(), "missing.yaml"))
	var openErr *ErrOpenFile
	assert.ErrorAs(t, err, &openErr)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("nhit_sel: [1"), 0o644))
	_, err = LoadConfiguration(bad)
	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestApplyEnvironment(t *testing.T) {
	env := map[string]string{EnvDBUser: "shifter", EnvDBHost: "db.example:3307"}
	config := ApplyEnvironment(DefaultConfiguration(), func(k string) string { return env[k] })
	assert.Equal(t, "shifter", config.User)
	assert.Equal(t, "db.example:3307", config.Host)
	assert.Equal(t, "larpix", config.DBName)
	assert.Empty(t, config.Passwd)
}
