// Package cmd provides the command-line interface implementation for csv2saf.
//
// This package contains all the subcommand implementations for the csv2saf CLI tool.
// It uses the Cobra library for command structure and Fang for styling.
//
// The package is organized into the following commands:
//   - root: Main command coordinator, global logging flags and command groups
//   - build: Table to SAF conversion, with optional splitting and packaging
//   - package: Zipping the bundles recorded in a build manifest
//   - validate: Structural checks over bundle directories and zips
//   - mount: Read-only FUSE view of packaged bundles
//   - count, seed, config, version: Utilities
//
// Each command is implemented as a separate file with its own constructor function
// that returns a *cobra.Command. Commands return errors instead of exiting so the
// whole tree can be driven from tests.
//
// The package leverages the saf package for conversion and validation, and the
// internal config, logging and browse packages for everything around it.
package cmd
