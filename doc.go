// Package main provides the csv2saf command-line interface.
//
// csv2saf converts a metadata table (CSV or XLSX) and a directory of payload files
// into DSpace Simple Archive Format bundles for batch import. Large imports can be
// split into several bundles by size and zipped for upload.
//
// The main binary supports multiple subcommands:
//   - build: Convert a table into one or more SAF bundles
//   - package: Zip the bundles of an earlier build
//   - validate: Check bundle directories and zips for structural problems
//   - mount: Browse packaged bundles through a read-only FUSE filesystem
//   - count: Count items and files per bundle
//   - seed: Generate a sample table and payload tree
//   - config: Write or show the configuration file
package main
