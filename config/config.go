package config

import (
	"os"
	"time"

	"emperror.dev/errors"
	"github.com/creasty/defaults"
	"github.com/pelletier/go-toml/v2"
)

// Config is the resolved configuration handed to the harness. The harness
// treats it as read-only.
type Config struct {
	Features  FeaturesConfig
	Settings  SettingsConfig
	DummyAuth DummyAuthConfig
}

// SettingsConfig holds adjustable settings of the filesystem under test.
type SettingsConfig struct {
	// Naptime is the sleep, in seconds, inserted between metadata
	// snapshots and the operation under test. It must exceed the
	// timestamp granularity of the filesystem, otherwise "unchanged"
	// assertions can pass vacuously.
	Naptime float64 `toml:"naptime" default:"1.0"`

	// AllowRemount permits tests that remount the filesystem under test
	// with different options (read-only and the like).
	AllowRemount bool `toml:"allow_remount"`

	// CaseTimeout, in seconds, aborts a stalled test body. Zero disables
	// the watchdog.
	CaseTimeout float64 `toml:"case_timeout"`
}

// NaptimeDuration returns the naptime as a duration.
func (s SettingsConfig) NaptimeDuration() time.Duration {
	return time.Duration(s.Naptime * float64(time.Second))
}

// CaseTimeoutDuration returns the per-case watchdog duration, zero when
// disabled.
func (s SettingsConfig) CaseTimeoutDuration() time.Duration {
	return time.Duration(s.CaseTimeout * float64(time.Second))
}

// fileConfig is the on-disk TOML shape. The [features] table mixes typed
// keys (file_flags, secondary_fs) with free-form sub-tables naming enabled
// features, so it is decoded into a generic map and shaped afterwards.
type fileConfig struct {
	Features  map[string]interface{} `toml:"features"`
	Settings  SettingsConfig         `toml:"settings"`
	DummyAuth DummyAuthConfig        `toml:"dummy_auth"`
}

// Default returns a configuration with every default applied and no
// features enabled. Tests that need privilege switching will be skipped
// until dummy_auth entries are configured.
func Default() *Config {
	c := &Config{
		Features: FeaturesConfig{Enabled: map[Feature]struct{}{}},
	}
	if err := defaults.Set(&c.Settings); err != nil {
		panic(err)
	}
	return c
}

// Load reads and resolves a TOML configuration file. Dummy auth entries
// are looked up against the system user database at load time so that a
// typo fails the run before any test executes.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading configuration file")
	}
	return Parse(b)
}

// Parse resolves configuration from raw TOML content.
func Parse(b []byte) (*Config, error) {
	var fc fileConfig
	if err := defaults.Set(&fc.Settings); err != nil {
		return nil, errors.Wrap(err, "applying setting defaults")
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return nil, errors.Wrap(err, "parsing configuration file")
	}

	features, err := shapeFeatures(fc.Features)
	if err != nil {
		return nil, err
	}
	if fc.Settings.Naptime <= 0 {
		return nil, errors.New("settings.naptime must be positive")
	}
	if err := fc.DummyAuth.resolve(); err != nil {
		return nil, err
	}

	return &Config{
		Features:  features,
		Settings:  fc.Settings,
		DummyAuth: fc.DummyAuth,
	}, nil
}

func shapeFeatures(raw map[string]interface{}) (FeaturesConfig, error) {
	fc := FeaturesConfig{Enabled: map[Feature]struct{}{}}
	for key, value := range raw {
		switch key {
		case "file_flags":
			flags, ok := value.([]interface{})
			if !ok {
				return fc, errors.New("features.file_flags must be an array of strings")
			}
			for _, f := range flags {
				s, ok := f.(string)
				if !ok {
					return fc, errors.New("features.file_flags must be an array of strings")
				}
				fc.FileFlags = append(fc.FileFlags, s)
			}
		case "secondary_fs":
			s, ok := value.(string)
			if !ok {
				return fc, errors.New("features.secondary_fs must be a path string")
			}
			fc.SecondaryFS = s
		default:
			if !IsKnownFeature(Feature(key)) {
				return fc, errors.Errorf("unknown feature %q", key)
			}
			fc.Enabled[Feature(key)] = struct{}{}
		}
	}
	return fc, nil
}
