package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
	"github.com/dendrascience/csv2saf/internal/browse"
	"github.com/dendrascience/csv2saf/version"
	"github.com/spf13/cobra"
)

// NewMountCmd creates and returns the mount subcommand.
// It serves the packaged bundles of an archive directory through a read-only FUSE mount.
func NewMountCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mount ARCHIVE_PATH MOUNTPOINT",
		Short: "Browse packaged bundles through a read-only filesystem",
		Long: `Mount the bundle zips of an archive directory read-only.

ARCHIVE_PATH is the archive directory written by build --zip or package.
MOUNTPOINT is the directory where the filesystem will be mounted. Every
<bundle>.zip shows up as a directory <bundle> containing the zip's items.

The mount stays up until interrupted.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMount(cmd, global, args[0], args[1])
		},
	}
}

func runMount(cmd *cobra.Command, global *globalOptions, archivePath, mountpoint string) error {
	logger, err := newLogger(cmd, global, nil)
	if err != nil {
		return err
	}

	info, err := os.Stat(archivePath)
	if err != nil {
		return fmt.Errorf("archive directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("archive path %s is not a directory", archivePath)
	}
	if pathsOverlap(archivePath, mountpoint) {
		return fmt.Errorf("mountpoint %s must not overlap archive directory %s", mountpoint, archivePath)
	}

	filesystem := browse.NewFS(archivePath)
	defer filesystem.Close()

	c, err := fuse.Mount(
		mountpoint,
		fuse.FSName("csv2saf"),
		fuse.Subtype("csv2saf"),
		fuse.ReadOnly(),
	)
	if err != nil {
		return fmt.Errorf("mount %s: %w", mountpoint, err)
	}
	defer c.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		logger.Info("unmounting", "mountpoint", mountpoint)
		if err := fuse.Unmount(mountpoint); err != nil {
			logger.Error("unmount failed", "mountpoint", mountpoint, "err", err)
		}
	}()

	logger.Info("mounted", "version", version.GetVersion(), "mountpoint", mountpoint, "archive", archivePath)
	return fusefs.Serve(c, filesystem)
}

// pathsOverlap reports whether one path is equal to or nested inside the other.
func pathsOverlap(path1, path2 string) bool {
	abs1, err := filepath.Abs(path1)
	if err != nil {
		return false
	}
	abs2, err := filepath.Abs(path2)
	if err != nil {
		return false
	}
	return within(abs1, abs2) || within(abs2, abs1)
}

func within(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
