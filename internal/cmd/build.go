package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/dendrascience/csv2saf/internal/config"
	"github.com/dendrascience/csv2saf/saf"
	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
)

const lockFileName = ".csv2saf.lock"

type buildOptions struct {
	configPath    string
	input         string
	sheet         string
	payload       string
	output        string
	zip           bool
	split         bool
	splitSize     int64
	splitUnit     string
	license       bool
	licenseFile   string
	licenseBundle string
	licenseText   string
	restrict      bool
	group         string
}

// NewBuildCmd creates and returns the build subcommand.
// It converts a metadata table into one or more SAF bundles.
func NewBuildCmd(global *globalOptions) *cobra.Command {
	opts := &buildOptions{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Convert a metadata table into SAF bundles",
		Long: `Convert a metadata table into DSpace Simple Archive Format bundles.

Every row of the table becomes one item directory. Columns named filename
list the payload files of the item (separate several with ||); every other
column is written as a metadata value of its schema.element[.qualifier].

With --split, items are distributed over numbered bundles
(SimpleArchiveFormat1, SimpleArchiveFormat2, ...) of at most --split-size
--split-unit each. With --zip, every bundle is packaged after the build.
A saf_manifest.json describing the run is written into the output directory.

Flags override the values of the configuration file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, global, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "Path to configuration file")
	f.StringVarP(&opts.input, "input", "i", "", "Metadata table (.csv or .xlsx)")
	f.StringVar(&opts.sheet, "sheet", "", "Worksheet to read from an .xlsx table (default first)")
	f.StringVarP(&opts.payload, "payload", "p", "", "Directory searched for payload files")
	f.StringVarP(&opts.output, "output", "o", "", "Archive directory the bundles are written to")
	f.BoolVar(&opts.zip, "zip", false, "Zip every bundle after the build")
	f.BoolVar(&opts.split, "split", false, "Split items over several bundles by size")
	f.Int64Var(&opts.splitSize, "split-size", 0, "Bundle size threshold, in --split-unit")
	f.StringVar(&opts.splitUnit, "split-unit", "", "Threshold unit: MB, anything else means GB")
	f.BoolVar(&opts.license, "license", false, "Add a license file to every item")
	f.StringVar(&opts.licenseFile, "license-file", "", "File name of the license bitstream")
	f.StringVar(&opts.licenseBundle, "license-bundle", "", "Bundle the license bitstream is assigned to")
	f.StringVar(&opts.licenseText, "license-text", "", "Text written into the license file")
	f.BoolVar(&opts.restrict, "restrict", false, "Restrict every payload file to --group")
	f.StringVar(&opts.group, "group", "", "Group name used by --restrict")

	return cmd
}

// apply copies the flags the user set onto cfg.
func (o *buildOptions) apply(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	paths := []struct {
		flag  string
		value string
		dst   *string
	}{
		{"input", o.input, &cfg.Paths.Input},
		{"payload", o.payload, &cfg.Paths.PayloadDir},
		{"output", o.output, &cfg.Paths.ArchiveDir},
	}
	for _, p := range paths {
		if !f.Changed(p.flag) {
			continue
		}
		abs, err := config.AbsPath(p.value)
		if err != nil {
			return err
		}
		*p.dst = abs
	}
	if f.Changed("sheet") {
		cfg.Paths.Sheet = o.sheet
	}
	if f.Changed("zip") {
		cfg.Archive.Zip = o.zip
	}
	if f.Changed("split") {
		cfg.Archive.Split = o.split
	}
	if f.Changed("split-size") {
		cfg.Archive.SplitSize = o.splitSize
	}
	if f.Changed("split-unit") {
		cfg.Archive.SplitUnit = o.splitUnit
	}
	if f.Changed("license") {
		cfg.License.Enabled = o.license
	}
	if f.Changed("license-file") {
		cfg.License.FileName = o.licenseFile
	}
	if f.Changed("license-bundle") {
		cfg.License.Bundle = o.licenseBundle
	}
	if f.Changed("license-text") {
		cfg.License.Text = o.licenseText
	}
	if f.Changed("restrict") {
		cfg.Access.Restrict = o.restrict
	}
	if f.Changed("group") {
		cfg.Access.Group = o.group
	}
	cfg.Normalize()
	return cfg.Validate()
}

func runBuild(cmd *cobra.Command, global *globalOptions, opts *buildOptions) error {
	cfg, cfgPath, cfgExists, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if err := opts.apply(cmd, cfg); err != nil {
		return err
	}
	logger, err := newLogger(cmd, global, cfg)
	if err != nil {
		return err
	}
	if cfgExists {
		logger.Debug("loaded configuration", "path", cfgPath)
	}

	archiveDir := cfg.Paths.ArchiveDir
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return fmt.Errorf("create archive directory: %w", err)
	}
	lock := flock.New(filepath.Join(archiveDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock archive directory: %w", err)
	}
	if !locked {
		return fmt.Errorf("archive directory %s is in use by another csv2saf run", archiveDir)
	}
	defer lock.Unlock()

	manifest, err := build(cfg, logger)
	if err != nil {
		return err
	}

	if cfg.Archive.Zip {
		zips, err := saf.Package(archiveDir, manifest.BundleNames())
		if err != nil {
			return err
		}
		if err := manifest.RecordZips(archiveDir, zips); err != nil {
			return err
		}
		logger.Info("packaged bundles", "zips", len(zips))
	}
	if err := manifest.Save(archiveDir); err != nil {
		return err
	}

	if len(manifest.Missing) > 0 {
		logger.Warn("some payload files were not found", "missing", len(manifest.Missing))
	}
	logger.Info("build complete", "items", manifest.Items, "bundles", len(manifest.Bundles), "run", manifest.RunID)
	fmt.Fprintln(cmd.OutOrStdout(), bundleTable(manifest.Bundles))
	return nil
}

// build writes the bundles described by cfg and returns the manifest of the run.
func build(cfg *config.Config, logger *log.Logger) (*saf.Manifest, error) {
	tbl, err := saf.OpenTable(cfg.Paths.Input, cfg.Paths.Sheet)
	if err != nil {
		return nil, err
	}
	defer tbl.Close()

	bopts := saf.Options{
		ArchiveDir: cfg.Paths.ArchiveDir,
		PayloadDir: cfg.Paths.PayloadDir,
		Restrict:   cfg.Access.Restrict,
		Group:      cfg.Access.Group,
		Logger:     logger,
	}
	if cfg.License.Enabled {
		bopts.License = &saf.License{
			FileName: cfg.License.FileName,
			Bundle:   cfg.License.Bundle,
			Text:     cfg.License.Text,
		}
	}
	builder, err := saf.NewBuilder(bopts)
	if err != nil {
		return nil, err
	}

	var (
		res       *saf.Result
		threshold int64
	)
	if cfg.Archive.Split {
		threshold, err = saf.Threshold(cfg.Archive.SplitSize, cfg.Archive.SplitUnit)
		if err != nil {
			return nil, err
		}
		logger.Info("building split bundles", "input", tbl.Source, "threshold", humanize.Bytes(uint64(threshold)))
		res, err = builder.BuildSplit(tbl, threshold)
	} else {
		logger.Info("building bundle", "input", tbl.Source)
		res, err = builder.Build(tbl)
	}
	if err != nil {
		return nil, err
	}

	manifest := saf.NewManifest(tbl.Source, threshold, res)
	return &manifest, nil
}

func bundleTable(bundles []saf.BundleSummary) string {
	rows := make([][]string, 0, len(bundles))
	for _, b := range bundles {
		rows = append(rows, []string{
			b.Name,
			strconv.Itoa(b.Items),
			humanize.Bytes(uint64(b.Bytes)),
			b.Zip,
		})
	}
	return renderTable([]string{"Bundle", "Items", "Size", "Zip"}, rows, 2, 3)
}
