package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	defaultConfigPath          = "~/.config/comicpack/config.toml"
	defaultExtensionCase       = ExtensionCaseLower
	defaultArchiveFormat       = FormatCBZ
	defaultAutoThresholdMiB    = 16
	defaultSevenZipTimeout     = 1800
	defaultParallelDirectories = 1
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Extension casing for canonical names.
const (
	ExtensionCaseLower = "lower"
	ExtensionCaseUpper = "upper"
)

// Container formats.
const (
	FormatCBZ  = "cbz"
	FormatCB7  = "cb7"
	FormatAuto = "auto"
)

// Compression modes accepted in [compression.policy].
const (
	ModeStore   = "store"
	ModeFast    = "fast"
	ModeDefault = "default"
	ModeMax     = "max"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Images: Images{
			Extensions:    []string{"avif", "gif", "heic", "jpg", "jpeg", "png", "tif", "tiff", "webp"},
			ExtensionCase: defaultExtensionCase,
		},
		Archive: Archive{
			Format:           defaultArchiveFormat,
			AutoThresholdMiB: defaultAutoThresholdMiB,
			SkipExisting:     true,
		},
		Compression: Compression{
			Policy: defaultPolicy(),
		},
		SevenZip: SevenZip{
			TimeoutSeconds: defaultSevenZipTimeout,
		},
		Workflow: Workflow{
			ParallelDirectories: defaultParallelDirectories,
			Lock:                true,
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath(),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

// defaultPolicy skips the trial for formats that are already entropy coded
// and tries maximum effort everywhere else.
func defaultPolicy() map[string]string {
	return map[string]string{
		"avif": ModeStore,
		"heic": ModeStore,
		"webp": ModeStore,
		"gif":  ModeMax,
		"jpg":  ModeMax,
		"png":  ModeMax,
		"tif":  ModeMax,
	}
}

func defaultHistoryPath() string {
	if base, ok := os.LookupEnv("XDG_DATA_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "comicpack", "history.db")
	}
	return "~/.local/share/comicpack/history.db"
}

func defaultWorkers() int {
	return max(1, runtime.NumCPU())
}
