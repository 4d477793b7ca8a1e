// Package config loads and validates csv2saf configuration.
//
// Configuration lives in a TOML file resolved from an explicit path, ./csv2saf.toml,
// or ~/.config/csv2saf/config.toml, in that order. Values missing from the file keep
// their defaults. Path values are expanded for ${VARS} and ~ once, after a .env file in
// the working directory has been loaded. A relative path from the file is resolved
// against the file's directory; default paths and command line values are resolved
// against the working directory.
package config
