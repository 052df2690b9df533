package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Images controls which directory entries are collated and how their
// canonical names are spelled.
type Images struct {
	Extensions    []string `toml:"extensions"`
	ExtensionCase string   `toml:"extension_case"`
}

// Archive controls the output container.
type Archive struct {
	Format           string `toml:"format"`
	AutoThresholdMiB int    `toml:"auto_threshold_mib"`
	SkipExisting     bool   `toml:"skip_existing"`
	Verify           bool   `toml:"verify"`
}

// Compression controls the per-member trial compression.
type Compression struct {
	Workers int               `toml:"workers"`
	Policy  map[string]string `toml:"policy"`
}

// SevenZip configures the external 7-Zip executable used for cb7 output.
type SevenZip struct {
	Binary         string `toml:"binary"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Workflow controls scheduling across directories.
type Workflow struct {
	ParallelDirectories int  `toml:"parallel_directories"`
	Lock                bool `toml:"lock"`
}

// History configures the run ledger.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Config encapsulates all configuration values for comicpack.
//
// Configuration sections by subsystem:
//   - Images: recognized extensions and canonical extension casing
//   - Archive: container format, skip/verify behaviour
//   - Compression: worker count and per-extension store/deflate policy
//   - SevenZip: external compressor for cb7 containers
//   - Workflow: directory-level parallelism and locking
//   - History: SQLite run ledger
//   - Logging: log format, level, and optional file
type Config struct {
	Images      Images      `toml:"images"`
	Archive     Archive     `toml:"archive"`
	Compression Compression `toml:"compression"`
	SevenZip    SevenZip    `toml:"sevenzip"`
	Workflow    Workflow    `toml:"workflow"`
	History     History     `toml:"history"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return nil, "", false, fmt.Errorf("parse config: %s", strict.String())
			}
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		info, err := os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", false, fmt.Errorf("config file %s does not exist", expanded)
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		if info.IsDir() {
			return "", false, fmt.Errorf("config path %s is a directory", expanded)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("comicpack.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories holding the history database and
// log file when those features are enabled.
func (c *Config) EnsureDirectories() error {
	if c.History.Enabled && c.History.Path != "" {
		dir := filepath.Dir(c.History.Path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}
	if c.Logging.File != "" {
		dir := filepath.Dir(c.Logging.File)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create log directory %q: %w", dir, err)
		}
	}
	return nil
}

// UpperExtensions reports whether canonical names use upper-case extensions.
func (c *Config) UpperExtensions() bool {
	return c.Images.ExtensionCase == ExtensionCaseUpper
}

// Workers returns the encode worker limit, resolving zero to the CPU count.
func (c *Config) Workers() int {
	if c.Compression.Workers > 0 {
		return c.Compression.Workers
	}
	return defaultWorkers()
}

// AutoThresholdBytes returns the total source size above which the auto format
// chooses cbz over cb7.
func (c *Config) AutoThresholdBytes() int64 {
	return int64(c.Archive.AutoThresholdMiB) << 20
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
