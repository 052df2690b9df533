package encoder

import (
	"fmt"
	"strings"

	"github.com/klauspost/compress/flate"

	"comicpack/internal/imagext"
)

// Mode is the effort spent compressing one member.
type Mode string

const (
	// ModeStore skips the trial and stores the bytes as they are.
	ModeStore Mode = "store"
	// ModeFast tries DEFLATE at the fastest level.
	ModeFast Mode = "fast"
	// ModeDefault tries DEFLATE at the library's default level.
	ModeDefault Mode = "default"
	// ModeMax tries DEFLATE at the best level.
	ModeMax Mode = "max"
)

// Level returns the DEFLATE level of m, or flate.NoCompression for ModeStore.
func (m Mode) Level() int {
	switch m {
	case ModeFast:
		return flate.BestSpeed
	case ModeDefault:
		return flate.DefaultCompression
	case ModeMax:
		return flate.BestCompression
	default:
		return flate.NoCompression
	}
}

// ParseMode converts a configuration string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeStore, ModeFast, ModeDefault, ModeMax:
		return m, nil
	default:
		return "", fmt.Errorf("unknown compression mode %q", s)
	}
}

// Policy maps a canonical extension to the mode used for its members.
type Policy map[string]Mode

// DefaultPolicy stores formats that carry their own entropy coding and tries
// the best DEFLATE level on everything else.
func DefaultPolicy() Policy {
	return Policy{
		"avif": ModeStore,
		"heic": ModeStore,
		"webp": ModeStore,
		"gif":  ModeMax,
		"jpg":  ModeMax,
		"png":  ModeMax,
		"tif":  ModeMax,
	}
}

// ParsePolicy builds a Policy from configuration, folding keys onto
// canonical extensions.
func ParsePolicy(raw map[string]string) (Policy, error) {
	policy := make(Policy, len(raw))
	for ext, value := range raw {
		mode, err := ParseMode(value)
		if err != nil {
			return nil, fmt.Errorf("policy for %q: %w", ext, err)
		}
		policy[imagext.Canonical(ext)] = mode
	}
	return policy, nil
}

// ModeFor returns the mode for ext. Extensions without an entry get
// ModeDefault.
func (p Policy) ModeFor(ext string) Mode {
	if mode, ok := p[imagext.Canonical(ext)]; ok {
		return mode
	}
	return ModeDefault
}
