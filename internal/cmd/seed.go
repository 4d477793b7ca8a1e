package cmd

import (
	"crypto/rand"
	"encoding/csv"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var seedHeaders = []string{
	"dc.title",
	"dc.contributor.author",
	"dc.date.issued",
	"dc.subject",
	"local.identifier",
	"filename",
}

var (
	seedAuthors  = []string{"Doe, Jane", "Roe, Richard", "Nakamura, Aiko", "Okafor, Chidi", "Lindqvist, Maja"}
	seedSubjects = []string{"hydrology", "soil moisture", "meteorology", "sensor networks", "field stations"}
)

// NewSeedCmd creates and returns the seed subcommand.
// It generates a sample metadata table with payload files for trying csv2saf.
func NewSeedCmd(global *globalOptions) *cobra.Command {
	var (
		outputPath string
		itemCount  int
		fileSize   int64
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate a sample metadata table and payload files",
		Long: `Generate a sample metadata table and a payload directory for trying csv2saf.

Writes OUTPUT/metadata.csv with dc and local metadata columns and a
filename column, plus OUTPUT/files/ holding the payload files it names.
Every item gets a text file; every third item also gets a binary file of
--size bytes, so split builds have something to split.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd, global, nil)
			if err != nil {
				return err
			}
			table, written, err := runSeed(outputPath, itemCount, fileSize)
			if err != nil {
				return err
			}
			logger.Info("seeded sample data", "table", table, "items", itemCount, "payload", humanize.Bytes(uint64(written)))
			fmt.Fprintf(cmd.OutOrStdout(), "csv2saf build -i %s -p %s\n", table, filepath.Join(outputPath, "files"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Path to output directory (required)")
	cmd.Flags().IntVarP(&itemCount, "count", "n", 20, "Number of items to generate")
	cmd.Flags().Int64Var(&fileSize, "size", 256*1024, "Size in bytes of the binary payload files")

	cmd.MarkFlagRequired("output")

	return cmd
}

// runSeed writes the sample table and payloads. It returns the table path and
// the number of payload bytes written.
func runSeed(outputPath string, itemCount int, fileSize int64) (string, int64, error) {
	if itemCount < 1 {
		return "", 0, fmt.Errorf("item count must be positive, got %d", itemCount)
	}
	if fileSize < 0 {
		return "", 0, fmt.Errorf("file size must not be negative, got %d", fileSize)
	}
	filesDir := filepath.Join(outputPath, "files")
	if err := os.MkdirAll(filesDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create output directory: %w", err)
	}

	tablePath := filepath.Join(outputPath, "metadata.csv")
	f, err := os.Create(tablePath)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(seedHeaders); err != nil {
		return "", 0, err
	}

	var written int64
	for i := 1; i <= itemCount; i++ {
		id := uuid.New().String()
		files := []string{fmt.Sprintf("item-%03d.txt", i)}
		text := fmt.Sprintf("Sample item %d\nidentifier: %s\n", i, id)
		if err := os.WriteFile(filepath.Join(filesDir, files[0]), []byte(text), 0o644); err != nil {
			return "", 0, err
		}
		written += int64(len(text))

		if i%3 == 0 {
			name := fmt.Sprintf("item-%03d-data.bin", i)
			if err := writeRandomFile(filepath.Join(filesDir, name), fileSize); err != nil {
				return "", 0, err
			}
			files = append(files, name)
			written += fileSize
		}

		year, err := rand.Int(rand.Reader, big.NewInt(25))
		if err != nil {
			return "", 0, err
		}
		row := []string{
			fmt.Sprintf("Sample item %d", i),
			strings.Join(pick(seedAuthors, i, 2), "||"),
			fmt.Sprintf("%d", 2000+year.Int64()),
			strings.Join(pick(seedSubjects, i, 1+i%3), "||"),
			id,
			strings.Join(files, "||"),
		}
		if err := w.Write(row); err != nil {
			return "", 0, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", 0, err
	}
	if err := f.Close(); err != nil {
		return "", 0, err
	}
	return tablePath, written, nil
}

// pick returns n consecutive values of pool starting at offset, wrapping around.
func pick(pool []string, offset, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = pool[(offset+i)%len(pool)]
	}
	return out
}

func writeRandomFile(path string, size int64) error {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o644)
}
