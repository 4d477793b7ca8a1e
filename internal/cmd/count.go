package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dendrascience/csv2saf/saf"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// NewCountCmd creates and returns the count subcommand.
// It reports items, files and bytes per bundle directory.
func NewCountCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "count [PATH]",
		Short: "Count items and files per bundle",
		Long: `Count the items, files and bytes of every bundle directory under an
archive directory.

Only directories named SimpleArchiveFormat or SimpleArchiveFormat<n> are
counted. Useful for a quick look at how a split build distributed items.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				path = args[0]
			}
			counts, err := countBundles(path)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), countTable(counts))
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", "./", "Archive directory to count")

	return cmd
}

type bundleCount struct {
	name  string
	items int
	files int
	bytes int64
}

func countBundles(root string) ([]bundleCount, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read archive directory: %w", err)
	}

	var counts []bundleCount
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), saf.BundleBaseName) {
			continue
		}
		c := bundleCount{name: e.Name()}
		err := filepath.WalkDir(filepath.Join(root, e.Name()), func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if strings.HasPrefix(d.Name(), "item_") {
					c.items++
				}
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			c.files++
			c.bytes += info.Size()
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", e.Name(), err)
		}
		counts = append(counts, c)
	}
	return counts, nil
}

func countTable(counts []bundleCount) string {
	var (
		rows  [][]string
		total bundleCount
	)
	for _, c := range counts {
		rows = append(rows, []string{c.name, strconv.Itoa(c.items), strconv.Itoa(c.files), humanize.Bytes(uint64(c.bytes))})
		total.items += c.items
		total.files += c.files
		total.bytes += c.bytes
	}
	rows = append(rows, []string{"Total", strconv.Itoa(total.items), strconv.Itoa(total.files), humanize.Bytes(uint64(total.bytes))})
	return renderTable([]string{"Bundle", "Items", "Files", "Size"}, rows, 2, 3, 4)
}
