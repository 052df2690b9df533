package config

import (
	"fmt"
	"os"
	"strings"

	"comicpack/internal/imagext"
)

func (c *Config) normalize() error {
	c.normalizeImages()
	c.normalizeArchive()
	if err := c.normalizeCompression(); err != nil {
		return err
	}
	c.normalizeSevenZip()
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func (c *Config) normalizeImages() {
	if len(c.Images.Extensions) == 0 {
		c.Images.Extensions = Default().Images.Extensions
	}
	exts := make([]string, 0, len(c.Images.Extensions))
	seen := make(map[string]struct{}, len(c.Images.Extensions))
	for _, ext := range c.Images.Extensions {
		normalized := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	c.Images.Extensions = exts
	c.Images.ExtensionCase = strings.ToLower(strings.TrimSpace(c.Images.ExtensionCase))
	if c.Images.ExtensionCase == "" {
		c.Images.ExtensionCase = defaultExtensionCase
	}
}

func (c *Config) normalizeArchive() {
	c.Archive.Format = strings.ToLower(strings.TrimSpace(c.Archive.Format))
	if c.Archive.Format == "" {
		c.Archive.Format = defaultArchiveFormat
	}
	if c.Archive.AutoThresholdMiB <= 0 {
		c.Archive.AutoThresholdMiB = defaultAutoThresholdMiB
	}
}

// normalizeCompression folds policy keys onto canonical extensions and fills
// in defaults for any recognized extension the file left unspecified.
func (c *Config) normalizeCompression() error {
	policy := make(map[string]string, len(c.Compression.Policy))
	for ext, mode := range c.Compression.Policy {
		key := imagext.Canonical(ext)
		if key == "" {
			return fmt.Errorf("compression.policy: empty extension key")
		}
		policy[key] = strings.ToLower(strings.TrimSpace(mode))
	}
	for ext, mode := range defaultPolicy() {
		if _, ok := policy[ext]; !ok {
			policy[ext] = mode
		}
	}
	c.Compression.Policy = policy
	return nil
}

func (c *Config) normalizeSevenZip() {
	c.SevenZip.Binary = strings.TrimSpace(c.SevenZip.Binary)
	if c.SevenZip.Binary == "" {
		if value, ok := os.LookupEnv("COMICPACK_7Z"); ok {
			c.SevenZip.Binary = strings.TrimSpace(value)
		}
	}
	if c.SevenZip.TimeoutSeconds <= 0 {
		c.SevenZip.TimeoutSeconds = defaultSevenZipTimeout
	}
}

func (c *Config) normalizeHistory() error {
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = defaultHistoryPath()
	}
	var err error
	if c.History.Path, err = expandPath(c.History.Path); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	if value, ok := os.LookupEnv("COMICPACK_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if strings.TrimSpace(c.Logging.File) != "" {
		var err error
		if c.Logging.File, err = expandPath(c.Logging.File); err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
	}
	return nil
}
