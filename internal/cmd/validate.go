package cmd

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dendrascience/csv2saf/saf"
	"github.com/spf13/cobra"
)

// NewValidateCmd creates and returns the validate subcommand.
// It checks bundle directories and bundle zips for structural problems.
func NewValidateCmd(global *globalOptions) *cobra.Command {
	opts := &archiveOptions{}
	var verbose bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check SAF bundles for structural problems",
		Long: `Validate the SAF bundles of an archive directory.

The bundles listed in saf_manifest.json are checked; without a manifest
every SimpleArchiveFormat* directory and zip is. Both the bundle directory
and its zip are validated when both exist. For every item the command
verifies that the contents file exists, that every file it lists is
present, and that every metadata XML file is well formed with the schema
its name implies.

Exits with a non-zero status when any problem is found.`,
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

			bundles, err := bundlesIn(root)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var rows [][]string
			total := 0
			for _, bundle := range bundles {
				checked := false
				for _, target := range bundleTargets(root, bundle) {
					checked = true
					problems, err := target.validate()
					if err != nil {
						return fmt.Errorf("validate %s: %w", target.path, err)
					}
					if verbose || len(problems) > 0 {
						logger.Info("validated", "path", target.path, "problems", len(problems))
					}
					for _, p := range problems {
						fmt.Fprintf(out, "%s: %s\n", target.path, p)
					}
					total += len(problems)
					rows = append(rows, []string{bundle, target.kind, strconv.Itoa(len(problems))})
				}
				if !checked {
					fmt.Fprintf(out, "%s: bundle not found\n", bundle)
					total++
					rows = append(rows, []string{bundle, "missing", "1"})
				}
			}

			fmt.Fprintln(out, renderTable([]string{"Bundle", "Source", "Problems"}, rows, 3))
			if total > 0 {
				return fmt.Errorf("%w: %d", ErrProblemsFound, total)
			}
			logger.Info("all bundles valid", "bundles", len(bundles))
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log every checked bundle")
	return cmd
}

type bundleTarget struct {
	kind string
	path string
}

// bundleTargets returns the directory and zip forms of bundle that exist under root.
func bundleTargets(root, bundle string) []bundleTarget {
	var targets []bundleTarget
	dir := filepath.Join(root, bundle)
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		targets = append(targets, bundleTarget{kind: "directory", path: dir})
	}
	zipPath := dir + ".zip"
	if info, err := os.Stat(zipPath); err == nil && info.Mode().IsRegular() {
		targets = append(targets, bundleTarget{kind: "zip", path: zipPath})
	}
	return targets
}

func (t bundleTarget) validate() ([]saf.Problem, error) {
	if t.kind == "directory" {
		return saf.Validate(os.DirFS(t.path))
	}
	r, err := zip.OpenReader(t.path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return saf.Validate(&r.Reader)
}
