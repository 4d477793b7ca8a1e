package cmd

import (
	"github.com/dendrascience/csv2saf/internal/config"
	"github.com/dendrascience/csv2saf/version"
	"github.com/spf13/cobra"
)

// NewRootCmd creates and returns the root cobra command for the csv2saf CLI.
// It sets up all subcommands, command groups and the global logging flags.
func NewRootCmd() *cobra.Command {
	global := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "csv2saf",
		Short: "csv2saf - Convert metadata tables into DSpace Simple Archive Format",
		Long: `csv2saf converts a metadata table (CSV or XLSX) plus a directory of payload
files into DSpace Simple Archive Format bundles ready for batch import.

Each table row becomes one item directory holding a contents manifest, one
metadata XML file per schema and copies of its payload files. Large imports
can be split into several bundles by size and zipped for upload.

Use subcommands to perform different operations:
  - build: Convert a table into one or more SAF bundles
  - package: Zip the bundles of an earlier build
  - validate: Check bundles for structural problems
  - mount: Browse packaged bundles through a read-only filesystem`,
		Version:       version.GetFullVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadEnv()
		},
	}

	rootCmd.PersistentFlags().StringVar(&global.logLevel, "log-level", "", "Log level: debug, info, warn, error (default from config)")
	rootCmd.PersistentFlags().StringVar(&global.logFormat, "log-format", "", "Log format: text, json, logfmt (default from config)")

	groupArchive := "archive"
	groupFilesystem := "filesystem"
	groupUtilities := "utilities"

	rootCmd.AddGroup(&cobra.Group{
		ID:    groupArchive,
		Title: "Archive Operations",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    groupFilesystem,
		Title: "Filesystem Operations",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    groupUtilities,
		Title: "Utility Commands",
	})

	buildCmd := NewBuildCmd(global)
	packageCmd := NewPackageCmd(global)
	validateCmd := NewValidateCmd(global)
	mountCmd := NewMountCmd(global)
	countCmd := NewCountCmd()
	seedCmd := NewSeedCmd(global)
	configCmd := NewConfigCmd()
	versionCmd := NewVersionCmd()

	buildCmd.GroupID = groupArchive
	packageCmd.GroupID = groupArchive
	validateCmd.GroupID = groupArchive
	mountCmd.GroupID = groupFilesystem
	countCmd.GroupID = groupUtilities
	seedCmd.GroupID = groupUtilities
	configCmd.GroupID = groupUtilities
	versionCmd.GroupID = groupUtilities

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(packageCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(mountCmd)
	rootCmd.AddCommand(countCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}

// NewVersionCmd prints detailed build information.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version, commit and build date",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			version.PrintVersion(cmd.OutOrStdout(), "csv2saf")
		},
	}
}
