// Package saf builds DSpace Simple Archive Format (SAF) trees from tabular metadata.
//
// A metadata table has one header row of dotted field names (schema.element[.qualifier])
// and one data row per item. Every row becomes an item directory inside a bundle:
//
//	<archive>/SimpleArchiveFormat[<n>]/item_<ordinal>/
//	    contents               payload listing, one file name per line
//	    dublin_core.xml        values of "dc.*" columns
//	    metadata_<schema>.xml  values of any other schema
//	    <payload files>        copied from the payload-source tree
//	    <license file>         optional
//
// Key Components:
//
// Table Input:
//   - Table streams rows from CSV (encoding/csv) or XLSX (excelize) sources
//   - ParseHeaders validates column names before anything is written
//
// Item Writing:
//   - PayloadIndex resolves payload names to the first matching file in walk order
//   - metadata files are opened once per item and closed with a single root tag
//
// Bundles:
//   - Builder.Build writes every item into a single bundle
//   - Builder.BuildSplit rolls over to a new numbered bundle when a byte threshold is met
//   - Result carries the finalized bundle list, so callers never depend on hidden state
//
// Packaging and Verification:
//   - Package zips finalized bundles next to their directories
//   - Manifest records what a build produced (saf_manifest.json)
//   - Validate checks a bundle, either a directory or an opened zip, for SAF consistency
//
// All operations are single-threaded and use explicit paths; nothing changes the process
// working directory.
package saf
