package config

import "strings"

// Normalize canonicalizes enumerated and free-text values. It leaves path
// fields alone and is safe to call more than once, so commands run it again
// after overriding fields from the command line.
func (c *Config) Normalize() {
	c.Paths.Sheet = strings.TrimSpace(c.Paths.Sheet)
	c.Archive.SplitUnit = strings.ToUpper(strings.TrimSpace(c.Archive.SplitUnit))
	c.Access.Group = strings.TrimSpace(c.Access.Group)
	c.License.FileName = strings.TrimSpace(c.License.FileName)
	c.License.Bundle = strings.TrimSpace(c.License.Bundle)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
}
