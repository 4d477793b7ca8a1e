package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dendrascience/csv2saf/saf"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateArchive(); err != nil {
		return err
	}
	if err := c.validateLicense(); err != nil {
		return err
	}
	if err := c.validateAccess(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.Input == "" {
		return errors.New("paths.input must be set")
	}
	if c.Paths.PayloadDir == "" {
		return errors.New("paths.payload_dir must be set")
	}
	if c.Paths.ArchiveDir == "" {
		return errors.New("paths.archive_dir must be set")
	}
	return nil
}

func (c *Config) validateArchive() error {
	if !c.Archive.Split {
		return nil
	}
	if c.Archive.SplitSize <= 0 {
		return errors.New("archive.split_size must be greater than zero when archive.split is true")
	}
	return nil
}

func (c *Config) validateLicense() error {
	if !c.License.Enabled {
		return nil
	}
	if c.License.FileName == "" {
		return errors.New("license.file_name must be set when license.enabled is true")
	}
	if strings.ContainsAny(c.License.FileName, `/\`) {
		return fmt.Errorf("license.file_name %q must be a plain file name", c.License.FileName)
	}
	if saf.ReservedName(c.License.FileName) {
		return fmt.Errorf("license.file_name %q is reserved for item metadata", c.License.FileName)
	}
	if c.License.Bundle == "" {
		return errors.New("license.bundle must be set when license.enabled is true")
	}
	return nil
}

func (c *Config) validateAccess() error {
	if c.Access.Restrict && c.Access.Group == "" {
		return errors.New("access.group must be set when access.restrict is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "text", "json", "logfmt":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
