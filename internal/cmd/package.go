package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dendrascience/csv2saf/internal/config"
	"github.com/dendrascience/csv2saf/saf"
	"github.com/spf13/cobra"
)

type archiveOptions struct {
	configPath string
	output     string
}

func (o *archiveOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.configPath, "config", "c", "", "Path to configuration file")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "Archive directory holding the bundles")
}

// resolve returns the config and the archive directory the command works on.
func (o *archiveOptions) resolve(cmd *cobra.Command) (*config.Config, string, error) {
	cfg, _, _, err := config.Load(o.configPath)
	if err != nil {
		return nil, "", err
	}
	if cmd.Flags().Changed("output") {
		if cfg.Paths.ArchiveDir, err = config.AbsPath(o.output); err != nil {
			return nil, "", err
		}
	}
	info, err := os.Stat(cfg.Paths.ArchiveDir)
	if err != nil {
		return nil, "", fmt.Errorf("archive directory: %w", err)
	}
	if !info.IsDir() {
		return nil, "", fmt.Errorf("%s: %w", cfg.Paths.ArchiveDir, saf.ErrExpectedDirectory)
	}
	return cfg, cfg.Paths.ArchiveDir, nil
}

// NewPackageCmd creates and returns the package subcommand.
// It zips the bundles recorded by an earlier build.
func NewPackageCmd(global *globalOptions) *cobra.Command {
	opts := &archiveOptions{}

	cmd := &cobra.Command{
		Use:   "package",
		Short: "Zip the bundles of an earlier build",
		Long: `Zip every bundle recorded in the saf_manifest.json of an archive directory.

Each bundle directory is written to <bundle>.zip next to it; other
directories in the archive are left alone. The manifest is updated with
the path and SHA-256 checksum of every zip.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, root, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd, global, cfg)
			if err != nil {
				return err
			}

			manifest, err := saf.ReadManifest(root)
			if err != nil {
				return err
			}
			zips, err := saf.Package(root, manifest.BundleNames())
			if err != nil {
				return err
			}
			if err := manifest.RecordZips(root, zips); err != nil {
				return err
			}
			if err := manifest.Save(root); err != nil {
				return err
			}
			logger.Info("packaged bundles", "archive", root, "zips", len(zips))
			fmt.Fprintln(cmd.OutOrStdout(), bundleTable(manifest.Bundles))
			return nil
		},
	}
	opts.register(cmd)
	return cmd
}

// bundlesIn returns the bundle names under root: the manifest's when one exists,
// otherwise every directory or zip carrying the bundle prefix.
func bundlesIn(root string) ([]string, error) {
	manifest, err := saf.ReadManifest(root)
	if err == nil {
		return manifest.BundleNames(), nil
	}
	if !errors.Is(err, saf.ErrNoManifest) {
		return nil, err
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var names []string
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".zip")
		if !strings.HasPrefix(name, saf.BundleBaseName) || seen[name] {
			continue
		}
		if !e.IsDir() && filepath.Ext(e.Name()) != ".zip" {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
