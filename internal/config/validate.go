package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateImages(); err != nil {
		return err
	}
	if err := c.validateArchive(); err != nil {
		return err
	}
	if err := c.validateCompression(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateImages() error {
	if len(c.Images.Extensions) == 0 {
		return errors.New("images.extensions must list at least one extension")
	}
	for _, ext := range c.Images.Extensions {
		if strings.ContainsAny(ext, `/\. `) {
			return fmt.Errorf("images.extensions: invalid extension %q", ext)
		}
	}
	switch c.Images.ExtensionCase {
	case ExtensionCaseLower, ExtensionCaseUpper:
		return nil
	default:
		return fmt.Errorf("images.extension_case must be %q or %q, got %q", ExtensionCaseLower, ExtensionCaseUpper, c.Images.ExtensionCase)
	}
}

func (c *Config) validateArchive() error {
	switch c.Archive.Format {
	case FormatCBZ, FormatCB7, FormatAuto:
		return nil
	default:
		return fmt.Errorf("archive.format must be one of cbz, cb7, auto; got %q", c.Archive.Format)
	}
}

func (c *Config) validateCompression() error {
	if c.Compression.Workers < 0 {
		return errors.New("compression.workers must be zero (auto) or positive")
	}
	modes := []string{ModeStore, ModeFast, ModeDefault, ModeMax}
	for ext, mode := range c.Compression.Policy {
		if !slices.Contains(modes, mode) {
			return fmt.Errorf("compression.policy.%s must be one of %s; got %q", ext, strings.Join(modes, ", "), mode)
		}
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.ParallelDirectories <= 0 {
		return errors.New("workflow.parallel_directories must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json; got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error; got %q", c.Logging.Level)
	}
}
