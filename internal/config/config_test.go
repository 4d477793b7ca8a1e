package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)

	cfg, path, exists, err := Load("")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, filepath.Join(dir, ".config", "csv2saf", "config.toml"), path)
	assert.Equal(t, filepath.Join(dir, "metadata.csv"), cfg.Paths.Input)
	assert.Equal(t, filepath.Join(dir, "archive"), cfg.Paths.ArchiveDir)
	assert.Equal(t, int64(500), cfg.Archive.SplitSize)
	assert.Equal(t, "MB", cfg.Archive.SplitUnit)
	assert.Equal(t, "license.txt", cfg.License.FileName)
	assert.NoError(t, cfg.Validate())
}

func TestLoadProjectFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("SAF_ROOT", filepath.Join(dir, "out"))

	content := `
[paths]
input = "rows.xlsx"
sheet = " Items "
archive_dir = "${SAF_ROOT}"

[archive]
split = true
split_size = 2
split_unit = "gb"

[access]
restrict = true
group = "staff"

[logging]
level = "DEBUG"
format = "JSON"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "csv2saf.toml"), []byte(content), 0o644))

	cfg, path, exists, err := Load("")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, filepath.Join(dir, "csv2saf.toml"), path)
	assert.Equal(t, filepath.Join(dir, "rows.xlsx"), cfg.Paths.Input)
	assert.Equal(t, "Items", cfg.Paths.Sheet)
	assert.Equal(t, filepath.Join(dir, "out"), cfg.Paths.ArchiveDir)
	assert.Equal(t, filepath.Join(dir, "files"), cfg.Paths.PayloadDir)
	assert.True(t, cfg.Archive.Split)
	assert.Equal(t, "GB", cfg.Archive.SplitUnit)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoadExplicitPath(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	_, _, _, err := Load(filepath.Join(dir, "missing.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")

	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[archive]\nzip = true\n"), 0o644))
	cfg, resolved, exists, err := Load(path)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, path, resolved)
	assert.True(t, cfg.Archive.Zip)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[archive]\nsplits = true\n"), 0o644))

	_, _, _, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"empty input", func(c *Config) { c.Paths.Input = "" }, "paths.input"},
		{"empty payload", func(c *Config) { c.Paths.PayloadDir = "" }, "paths.payload_dir"},
		{"empty archive", func(c *Config) { c.Paths.ArchiveDir = "" }, "paths.archive_dir"},
		{"split without size", func(c *Config) { c.Archive.Split = true; c.Archive.SplitSize = 0 }, "archive.split_size"},
		{"size ignored without split", func(c *Config) { c.Archive.SplitSize = -1 }, ""},
		{"license nested name", func(c *Config) { c.License.Enabled = true; c.License.FileName = "a/b.txt" }, "plain file name"},
		{"license named contents", func(c *Config) { c.License.Enabled = true; c.License.FileName = "contents" }, "reserved"},
		{"license named like a schema file", func(c *Config) { c.License.Enabled = true; c.License.FileName = "metadata_dc.xml" }, "reserved"},
		{"license without bundle", func(c *Config) { c.License.Enabled = true; c.License.Bundle = "" }, "license.bundle"},
		{"restrict without group", func(c *Config) { c.Access.Restrict = true }, "access.group"},
		{"bad level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCreateSample(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")

	require.NoError(t, CreateSample(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# csv2saf configuration"))

	// The sample must load cleanly and must not be overwritten.
	_, _, exists, err := Load(path)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Error(t, CreateSample(path))
}

func TestAbsPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("CSV2SAF_TEST_DIR", "data")
	cwd := t.TempDir()
	t.Chdir(cwd)

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~", home},
		{"~/saf", filepath.Join(home, "saf")},
		{"rel/out", filepath.Join(cwd, "rel", "out")},
		// Shell-expanded values are taken literally.
		{"/tmp/${CSV2SAF_TEST_DIR}/x", "/tmp/${CSV2SAF_TEST_DIR}/x"},
	}
	for _, tt := range tests {
		got, err := AbsPath(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestLoadResolvesPathsAgainstConfigDir(t *testing.T) {
	dir := t.TempDir()
	cwd := filepath.Join(dir, "elsewhere")
	require.NoError(t, os.MkdirAll(cwd, 0o755))
	t.Chdir(cwd)
	t.Setenv("HOME", dir)

	confDir := filepath.Join(dir, "project", "conf")
	require.NoError(t, os.MkdirAll(confDir, 0o755))
	path := filepath.Join(confDir, "csv2saf.toml")
	content := "[paths]\ninput = \"rows.csv\"\npayload_dir = \"../files\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, _, exists, err := Load(path)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, filepath.Join(confDir, "rows.csv"), cfg.Paths.Input)
	assert.Equal(t, filepath.Join(dir, "project", "files"), cfg.Paths.PayloadDir)
	// Unset paths keep their defaults, relative to the working directory.
	assert.Equal(t, filepath.Join(cwd, "archive"), cfg.Paths.ArchiveDir)
}

func TestLoadExpandsEnvOnce(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("SAF_OUT", "/tmp/a$b")
	t.Setenv("b", "MANGLED")

	path := filepath.Join(dir, "csv2saf.toml")
	require.NoError(t, os.WriteFile(path, []byte("[paths]\narchive_dir = \"${SAF_OUT}\"\n"), 0o644))

	cfg, _, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/a$b", cfg.Paths.ArchiveDir)

	// Running Normalize again after flag overrides leaves paths untouched.
	cfg.Normalize()
	assert.Equal(t, "/tmp/a$b", cfg.Paths.ArchiveDir)
}

func TestNormalize(t *testing.T) {
	cfg := Default()
	cfg.Archive.SplitUnit = " kb "
	cfg.Logging.Level = "WARN"
	cfg.Access.Group = " staff\t"
	cfg.Paths.Input = "relative.csv"

	cfg.Normalize()
	cfg.Normalize()
	assert.Equal(t, "KB", cfg.Archive.SplitUnit)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "staff", cfg.Access.Group)
	assert.Equal(t, "relative.csv", cfg.Paths.Input)
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	// No .env file is fine.
	require.NoError(t, LoadEnv())

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CSV2SAF_ENV_CHECK=present\n"), 0o644))
	t.Setenv("CSV2SAF_ENV_CHECK", "")
	require.NoError(t, os.Unsetenv("CSV2SAF_ENV_CHECK"))
	require.NoError(t, LoadEnv())
	assert.Equal(t, "present", os.Getenv("CSV2SAF_ENV_CHECK"))
}
