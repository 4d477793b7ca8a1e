package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths locates the source table, the payload tree and the output root.
type Paths struct {
	Input      string `toml:"input"`
	Sheet      string `toml:"sheet"`
	PayloadDir string `toml:"payload_dir"`
	ArchiveDir string `toml:"archive_dir"`
}

// Archive controls bundle splitting and zip packaging.
type Archive struct {
	Zip       bool   `toml:"zip"`
	Split     bool   `toml:"split"`
	SplitSize int64  `toml:"split_size"`
	SplitUnit string `toml:"split_unit"`
}

// License controls the license bitstream added to every item.
type License struct {
	Enabled  bool   `toml:"enabled"`
	FileName string `toml:"file_name"`
	Bundle   string `toml:"bundle"`
	Text     string `toml:"text"`
}

// Access controls the group restriction written next to every payload file.
type Access struct {
	Restrict bool   `toml:"restrict"`
	Group    string `toml:"group"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config encapsulates all configuration values for csv2saf.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Archive Archive `toml:"archive"`
	License License `toml:"license"`
	Access  Access  `toml:"access"`
	Logging Logging `toml:"logging"`
}

// Default returns the configuration used when no file sets a value.
func Default() Config {
	return Config{
		Paths: Paths{
			Input:      "metadata.csv",
			PayloadDir: "files",
			ArchiveDir: "archive",
		},
		Archive: Archive{
			SplitSize: 500,
			SplitUnit: "MB",
		},
		License: License{
			FileName: "license.txt",
			Bundle:   "LICENSE",
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// DefaultConfigPath returns the absolute path of the per-user configuration file.
func DefaultConfigPath() (string, error) {
	return AbsPath("~/.config/csv2saf/config.toml")
}

// LoadEnv reads a .env file from the working directory into the process
// environment, so config paths can reference ${VARS} kept out of version control.
// A missing file is not an error.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// Load locates and parses a configuration file, falling back to defaults when
// none exists. The returned config is normalized but not validated, so command
// line flags can still fill in missing values before Validate runs.
//
// Path values from the file are expanded for ${VARS} and ~ exactly once, and
// relative ones are resolved against the directory holding the file. Defaults
// for paths the file leaves unset are resolved against the working directory.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()
	defaults := cfg.Paths

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

		cfg.Paths = Paths{}
		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	base := filepath.Dir(resolvedPath)
	fields := []struct {
		value    *string
		fallback string
	}{
		{&cfg.Paths.Input, defaults.Input},
		{&cfg.Paths.PayloadDir, defaults.PayloadDir},
		{&cfg.Paths.ArchiveDir, defaults.ArchiveDir},
	}
	for _, f := range fields {
		var resolved string
		if strings.TrimSpace(*f.value) == "" {
			resolved, err = AbsPath(f.fallback)
		} else {
			resolved, err = resolvePath(os.ExpandEnv(*f.value), base)
		}
		if err != nil {
			return nil, "", false, err
		}
		*f.value = resolved
	}

	cfg.Normalize()
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := AbsPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", false, fmt.Errorf("config file %s does not exist", expanded)
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	projectPath, err := filepath.Abs("csv2saf.toml")
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// CreateSample writes a sample configuration file to the specified location.
// An existing file is never overwritten.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(sampleConfig); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return f.Close()
}

// resolvePath expands a leading ~ and makes pathValue absolute, resolving a
// relative path against base. It never expands environment variables.
func resolvePath(pathValue, base string) (string, error) {
	pathValue = strings.TrimSpace(pathValue)
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
	if !filepath.IsAbs(pathValue) && base != "" {
		pathValue = filepath.Join(base, pathValue)
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// AbsPath expands a leading ~ and resolves pathValue against the working
// directory. Use it for paths given on the command line, which the shell has
// already expanded.
func AbsPath(pathValue string) (string, error) {
	return resolvePath(pathValue, "")
}
