package display

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Configuration struct {
	Input            string    `yaml:"input" json:"input"`
	Output           string    `yaml:"output" json:"output"`
	NHitSel          int       `yaml:"nhit_sel" json:"nhit_sel"`
	GeomLimits       []float64 `yaml:"geom_limits" json:"geom_limits"`
	Backends         []string  `yaml:"backends" json:"backends"`
	OutDir           string    `yaml:"out_dir" json:"out_dir"`
	Points           bool      `yaml:"points" json:"points"`
	TUI              bool      `yaml:"tui" json:"tui"`
	Batch            bool      `yaml:"batch" json:"batch"`
	NumWorkers       int       `yaml:"num_workers" json:"num_workers"`
	Verbosity        int       `yaml:"verbosity" json:"verbosity"`
	Host             string    `yaml:"host" json:"host"`
	User             string    `yaml:"user" json:"user"`
	Passwd           string    `yaml:"pass" json:"pass"`
	DBName           string    `yaml:"dbname" json:"dbname"`
	CompressionLevel int       `yaml:"compression_level" json:"compression_level"`
}

// DefaultGeomLimits are x_min, x_max, y_min, y_max, t_min, t_max, pixel pitch
// and time voxel size of the single-tile LArPix anode.
var DefaultGeomLimits = []float64{-159.624, 159.624, -159.624, 159.624, 0, 1900, 4.434, 23}

var configuration Configuration

func GetConfiguration() Configuration {
	return configuration
}

func SetConfiguration(config Configuration) {
	configuration = config
}

// Database credentials may come from the environment (or a .env file).
const (
	EnvDBUser = "EVD_DB_USER"
	EnvDBPass = "EVD_DB_PASS"
	EnvDBHost = "EVD_DB_HOST"
	EnvDBName = "EVD_DB_NAME"
)

// DefaultConfiguration returns the values used when neither the
// configuration file nor the command line sets a field.
func DefaultConfiguration() Configuration {
	return Configuration{
		NHitSel:          0,
		GeomLimits:       append([]float64(nil), DefaultGeomLimits...),
		Backends:         []string{"term", "png"},
		OutDir:           ".",
		NumWorkers:       1,
		Verbosity:        0,
		Host:             "localhost",
		User:             "larpix",
		DBName:           "larpix",
		CompressionLevel: 4,
	}
}

// LoadConfiguration reads a YAML (or JSON) configuration file on top of the
// defaults. An empty filename returns the defaults.
func LoadConfiguration(filename string) (Configuration, error) {
	config := DefaultConfiguration()
	if filename == "" {
		return config, nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return config, &ErrOpenFile{Filename: filename, Err: err}
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, &ConfigurationError{Field: filename, Reason: err.Error()}
	}
	return config, nil
}

// ApplyEnvironment overrides the database credentials with the EVD_DB_*
// variables that are set.
func ApplyEnvironment(config Configuration, getenv func(string) string) Configuration {
	if v := getenv(EnvDBUser); v != "" {
		config.User = v
	}
	if v := getenv(EnvDBPass); v != "" {
		config.Passwd = v
	}
	if v := getenv(EnvDBHost); v != "" {
		config.Host = v
	}
	if v := getenv(EnvDBName); v != "" {
		config.DBName = v
	}
	return config
}

func PrintConfiguration(config Configuration) {
	logger.Info(fmt.Sprintf("Input: %s", config.Input), "config")
	logger.Info(fmt.Sprintf("Output: %s", config.Output), "config")
	logger.Info(fmt.Sprintf("nhit_sel: %d", config.NHitSel), "config")
	logger.Info(fmt.Sprintf("Geometry limits: %v", config.GeomLimits), "config")
	logger.Info(fmt.Sprintf("Backends: %v", config.Backends), "config")
	logger.Info(fmt.Sprintf("Output directory: %s", config.OutDir), "config")
	logger.Info(fmt.Sprintf("Points: %t", config.Points), "config")
	logger.Info(fmt.Sprintf("TUI: %t", config.TUI), "config")
	logger.Info(fmt.Sprintf("Batch: %t", config.Batch), "config")
	logger.Info(fmt.Sprintf("Number of workers: %d", config.NumWorkers), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
	logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
	logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	logger.Info(fmt.Sprintf("Compression level: %d", config.CompressionLevel), "config")
}
