// Package conf handles the application configuration. Settings are loaded
// once from a key=value file and injected into constructors; there is no
// package-level mutable state.
package conf

import (
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/aquasense/shrimpscale/internal/errors"
)

// DefaultConfigPath is where the kiosk image places the environment file.
const DefaultConfigPath = "config/config.env"

// DetectorSettings holds the object-detection model configuration.
type DetectorSettings struct {
	ModelPath string        // Path to the TFLite model file
	Threshold float64       // Confidence threshold for detections
	InputSize int           // Square model input size in pixels
	Interval  time.Duration // Sampling cadence of the measurement session
}

// SQLiteSettings contains the local database configuration.
type SQLiteSettings struct {
	Path string // Path to the SQLite database file
}

// OutputSettings wraps local storage configuration.
type OutputSettings struct {
	SQLite SQLiteSettings
}

// RemoteSettings holds the MongoDB mirror configuration. An empty URI is a
// valid state meaning the remote store is unreachable.
type RemoteSettings struct {
	URI           string
	Database      string
	AuthTimeout   time.Duration // Server selection timeout for credential lookups
	SyncTimeout   time.Duration // Server selection timeout for record sync
	DeleteTimeout time.Duration // Server selection timeout for remote deletes
}

// Configured reports whether a remote store has been configured at all.
func (r *RemoteSettings) Configured() bool {
	return r.URI != ""
}

// Settings contains all application runtime configuration.
type Settings struct {
	Debug    bool
	Detector DetectorSettings
	Output   OutputSettings
	Remote   RemoteSettings
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("sqlite_path", "local.db")
	v.SetDefault("model_path", "models/YOLOshrimp.tflite")
	v.SetDefault("conf_threshold", 0.25)
	v.SetDefault("input_size", 416)
	v.SetDefault("sample_interval_ms", 100)
	v.SetDefault("mongo_uri", "")
	v.SetDefault("mongo_db_name", "test")
	v.SetDefault("auth_timeout_sec", 20)
	v.SetDefault("sync_timeout_sec", 20)
	v.SetDefault("delete_timeout_sec", 4)
}

// Load reads settings from the given key=value file. A missing file is not
// an error; the kiosk then runs with defaults and no remote store.
func Load(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, errors.New(err).
					Component("conf").
					Category(errors.CategoryConfiguration).
					Context("config_file", path).
					Build()
			}
		}
	}

	settings := &Settings{
		Debug: v.GetBool("debug"),
		Detector: DetectorSettings{
			ModelPath: v.GetString("model_path"),
			Threshold: v.GetFloat64("conf_threshold"),
			InputSize: v.GetInt("input_size"),
			Interval:  time.Duration(v.GetInt("sample_interval_ms")) * time.Millisecond,
		},
		Output: OutputSettings{
			SQLite: SQLiteSettings{Path: v.GetString("sqlite_path")},
		},
		Remote: RemoteSettings{
			URI:           v.GetString("mongo_uri"),
			Database:      v.GetString("mongo_db_name"),
			AuthTimeout:   time.Duration(v.GetInt("auth_timeout_sec")) * time.Second,
			SyncTimeout:   time.Duration(v.GetInt("sync_timeout_sec")) * time.Second,
			DeleteTimeout: time.Duration(v.GetInt("delete_timeout_sec")) * time.Second,
		},
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Validate checks the loaded settings for values the pipeline cannot work with.
func (s *Settings) Validate() error {
	if s.Detector.Threshold <= 0 || s.Detector.Threshold > 1 {
		return errors.Newf("confidence threshold %.2f outside (0, 1]", s.Detector.Threshold).
			Component("conf").
			Category(errors.CategoryValidation).
			Context("field", "conf_threshold").
			Build()
	}
	if s.Detector.InputSize <= 0 {
		return errors.Newf("input size must be positive, got %d", s.Detector.InputSize).
			Component("conf").
			Category(errors.CategoryValidation).
			Context("field", "input_size").
			Build()
	}
	if s.Detector.Interval <= 0 {
		return errors.Newf("sample interval must be positive, got %s", s.Detector.Interval).
			Component("conf").
			Category(errors.CategoryValidation).
			Context("field", "sample_interval_ms").
			Build()
	}
	return nil
}
