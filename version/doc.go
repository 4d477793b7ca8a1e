// Package version reports the csv2saf release, commit and build date.
//
// Values come from -ldflags when a release is cut:
//
//	-ldflags "-X github.com/dendrascience/csv2saf/version.Version=v1.0.0 -X github.com/dendrascience/csv2saf/version.Commit=abc123"
//
// and otherwise from the module build info embedded by the Go toolchain. The version
// string is also stamped into every saf_manifest.json so a bundle can be traced back
// to the binary that produced it.
package version
