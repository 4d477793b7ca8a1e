// Package browse implements a read-only FUSE filesystem over packaged SAF bundles.
//
// Mounting an archive root shows each <bundle>.zip as a directory named <bundle>.
// Below it the zip's own tree is exposed as-is, so item directories, contents files
// and metadata XML can be inspected with ordinary tools without unzipping:
//
//	mnt/
//	  SimpleArchiveFormat1/
//	    item_1/
//	      contents
//	      dublin_core.xml
//	  SimpleArchiveFormat2/
//	    ...
//
// Zips are opened lazily on first lookup and kept open until Close.
// The main entry point is NewFS, whose result is served with bazil.org/fuse/fs.
package browse
