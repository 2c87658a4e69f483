package campaign

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"github.com/calvinalkan/bughunt/pkg/bytestream"
)

// Config holds every campaign setting.
type Config struct {
	// Target names a registered target, see [TargetNames].
	Target string `json:"target" yaml:"target"`

	// Policy is the stream exhaustion policy: "bounded" or "cyclic".
	Policy string `json:"policy" yaml:"policy"`

	// MaxBytes caps how much of each input a bounded stream reads. The
	// repeat target also uses it as the output cap.
	MaxBytes int `json:"max_bytes" yaml:"max_bytes"` //nolint:tagliatelle // snake_case for config file

	// Hasher selects the hash of the map under test: "awful" or "xxhash".
	Hasher string `json:"hasher" yaml:"hasher"`

	// HashModulus reduces awful hashes. 0 disables reduction.
	HashModulus uint8 `json:"hash_modulus" yaml:"hash_modulus"` //nolint:tagliatelle // snake_case for config file

	// Runs is the number of random inputs a fuzz campaign executes.
	Runs int `json:"runs" yaml:"runs"`

	// InputSize is the length of each random input.
	InputSize int `json:"input_size" yaml:"input_size"` //nolint:tagliatelle // snake_case for config file

	// Seed makes campaigns reproducible: run i always sees the same input.
	Seed uint64 `json:"seed" yaml:"seed"`

	Workers      int  `json:"workers" yaml:"workers"`
	ContentCheck bool `json:"content_check" yaml:"content_check"` //nolint:tagliatelle // snake_case for config file

	Memory MemoryPolicy `json:"memory" yaml:"memory"`
	Log    LogConfig    `json:"log" yaml:"log"`

	// ReportPath receives a JSON report when non-empty.
	ReportPath string `json:"report_path,omitempty" yaml:"report_path,omitempty"` //nolint:tagliatelle // snake_case for config file
}

// LogConfig configures the campaign logger.
type LogConfig struct {
	Level string `json:"level" yaml:"level"`

	// File, when set, receives JSON logs with rotation in addition to stderr.
	File       string `json:"file,omitempty" yaml:"file,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty" yaml:"max_size_mb,omitempty"`  //nolint:tagliatelle // snake_case for config file
	MaxBackups int    `json:"max_backups,omitempty" yaml:"max_backups,omitempty"` //nolint:tagliatelle // snake_case for config file
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Target:       "hashmap",
		Policy:       bytestream.Bounded.String(),
		MaxBytes:     16_384,
		Hasher:       HasherAwful,
		HashModulus:  8,
		Runs:         1000,
		InputSize:    512,
		Seed:         1,
		Workers:      runtime.GOMAXPROCS(0),
		ContentCheck: true,
		Memory:       MemoryPolicy{GCPercent: -1},
		Log:          LogConfig{Level: "info"},
	}
}

// ConfigFileNames are the project config files probed in order when no
// explicit path is given.
var ConfigFileNames = []string{".bughunt.json", ".bughunt.jsonc", ".bughunt.yaml", ".bughunt.yml"}

// LoadConfig resolves the configuration with the following precedence
// (highest wins):
//  1. Defaults
//  2. Project config file in workDir (first of [ConfigFileNames])
//  3. Explicit config file via configPath (if non-empty, replaces 2)
//
// Flag overrides are applied by the caller, followed by [Config.Validate].
// The returned path is the loaded file, or empty for defaults only.
func LoadConfig(workDir, configPath string) (Config, string, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		path := configPath
		if !filepath.IsAbs(path) {
			path = filepath.Join(workDir, path)
		}

		_, statErr := os.Stat(path)
		if statErr != nil {
			return Config{}, "", fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}

		err := loadConfigFile(path, &cfg)
		if err != nil {
			return Config{}, "", err
		}

		return cfg, path, nil
	}

	for _, name := range ConfigFileNames {
		path := filepath.Join(workDir, name)

		_, statErr := os.Stat(path)
		if statErr != nil {
			continue
		}

		err := loadConfigFile(path, &cfg)
		if err != nil {
			return Config{}, "", err
		}

		return cfg, path, nil
	}

	return cfg, "", nil
}

// loadConfigFile decodes path on top of cfg. Fields absent from the file keep
// their current values.
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is intentionally user-controlled
	if err != nil {
		return fmt.Errorf("%w: %s", ErrConfigRead, path)
	}

	err = ParseConfig(data, filepath.Ext(path), cfg)
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	return nil
}

// ParseConfig decodes data on top of cfg. ext selects the format: ".yaml"
// and ".yml" are YAML, anything else is JSON with comments and trailing
// commas allowed. Unknown fields are rejected.
func ParseConfig(data []byte, ext string, cfg *Config) error {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)

		err := dec.Decode(cfg)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("invalid YAML: %w", err)
		}

		return nil
	default:
		standardized, err := hujson.Standardize(data)
		if err != nil {
			return fmt.Errorf("invalid JSONC: %w", err)
		}

		dec := json.NewDecoder(bytes.NewReader(standardized))
		dec.DisallowUnknownFields()

		err = dec.Decode(cfg)
		if err != nil {
			return fmt.Errorf("invalid JSON: %w", err)
		}

		return nil
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if !knownTarget(c.Target) {
		return fmt.Errorf("%w %q (known: %s)", ErrUnknownTarget, c.Target, strings.Join(TargetNames(), ", "))
	}

	_, err := bytestream.ParsePolicy(c.Policy)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfigInvalid, err)
	}

	if c.Hasher != HasherAwful && c.Hasher != HasherXXHash {
		return fmt.Errorf("%w %q", ErrUnknownHasher, c.Hasher)
	}

	_, err = ParseLevel(c.Log.Level)
	if err != nil {
		return err
	}

	switch {
	case c.MaxBytes <= 0:
		return fmt.Errorf("%w: max_bytes must be positive, got %d", ErrConfigInvalid, c.MaxBytes)
	case c.Runs <= 0:
		return fmt.Errorf("%w: runs must be positive, got %d", ErrConfigInvalid, c.Runs)
	case c.InputSize <= 0:
		return fmt.Errorf("%w: input_size must be positive, got %d", ErrConfigInvalid, c.InputSize)
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive, got %d", ErrConfigInvalid, c.Workers)
	case c.Memory.LimitBytes < 0:
		return fmt.Errorf("%w: memory.limit_bytes must not be negative", ErrConfigInvalid)
	}

	return nil
}

// StreamPolicy returns the parsed exhaustion policy. Call after Validate.
func (c Config) StreamPolicy() bytestream.Policy {
	policy, err := bytestream.ParsePolicy(c.Policy)
	if err != nil {
		return bytestream.Bounded
	}

	return policy
}

// FormatConfig returns the config as indented JSON.
func FormatConfig(cfg Config) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format config: %w", err)
	}

	return string(data), nil
}
