package saf

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// rowSource yields raw rows, header row first, and reports the source line of the last row.
type rowSource interface {
	next() ([]string, int, error)
	close() error
}

// Table streams the rows of a metadata table. The first row is the header row;
// Next returns data rows until io.EOF.
type Table struct {
	Source  string
	headers []string
	src     rowSource
	line    int
}

// OpenTable opens a CSV or XLSX table, chosen by file extension. sheet selects the
// worksheet of an XLSX workbook and defaults to the first one.
func OpenTable(path, sheet string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		src, err := openXLSX(path, sheet)
		if err != nil {
			return nil, err
		}
		return newTable(path, src)
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open table: %w", err)
		}
		t, err := newTable(path, newCSVSource(f, f))
		if err != nil {
			f.Close()
			return nil, err
		}
		return t, nil
	}
}

// NewCSVTable reads a CSV table from r.
func NewCSVTable(r io.Reader) (*Table, error) {
	return newTable("", newCSVSource(r, nil))
}

func newTable(source string, src rowSource) (*Table, error) {
	headers, _, err := src.next()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyTable
	}
	if err != nil {
		return nil, fmt.Errorf("read header row: %w", err)
	}
	return &Table{Source: source, headers: headers, src: src}, nil
}

// Headers returns the raw header row.
func (t *Table) Headers() []string {
	return t.headers
}

// Line returns the source line (or worksheet row) of the row last returned by Next.
func (t *Table) Line() int {
	return t.line
}

// Next returns the next data row. Rows must have exactly one cell per header.
func (t *Table) Next() ([]string, error) {
	row, line, err := t.src.next()
	if err != nil {
		return nil, err
	}
	t.line = line
	switch {
	case len(row) == len(t.headers):
		return row, nil
	case len(row) < len(t.headers) && t.padsShortRows():
		padded := make([]string, len(t.headers))
		copy(padded, row)
		return padded, nil
	case len(row) > len(t.headers) && t.padsShortRows() && blank(row[len(t.headers):]):
		return row[:len(t.headers)], nil
	}
	return nil, fmt.Errorf("line %d: %w: got %d cells, want %d", line, ErrRowLength, len(row), len(t.headers))
}

// Close releases the underlying file.
func (t *Table) Close() error {
	return t.src.close()
}

// padsShortRows reports whether the source trims trailing blank cells, as spreadsheets do.
func (t *Table) padsShortRows() bool {
	_, ok := t.src.(*xlsxSource)
	return ok
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

type csvSource struct {
	r      *csv.Reader
	closer io.Closer
}

func newCSVSource(r io.Reader, closer io.Closer) *csvSource {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	return &csvSource{r: cr, closer: closer}
}

func (s *csvSource) next() ([]string, int, error) {
	rec, err := s.r.Read()
	if err != nil {
		return nil, 0, err
	}
	line, _ := s.r.FieldPos(0)
	return rec, line, nil
}

func (s *csvSource) close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

type xlsxSource struct {
	f    *excelize.File
	rows *excelize.Rows
	row  int
}

func openXLSX(path, sheet string) (*xlsxSource, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			f.Close()
			return nil, ErrEmptyTable
		}
		sheet = sheets[0]
	}
	rows, err := f.Rows(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return &xlsxSource{f: f, rows: rows}, nil
}

func (s *xlsxSource) next() ([]string, int, error) {
	for s.rows.Next() {
		s.row++
		cols, err := s.rows.Columns()
		if err != nil {
			return nil, s.row, err
		}
		if blank(cols) {
			continue
		}
		return cols, s.row, nil
	}
	if err := s.rows.Error(); err != nil {
		return nil, s.row, err
	}
	return nil, s.row, io.EOF
}

func (s *xlsxSource) close() error {
	rowsErr := s.rows.Close()
	if err := s.f.Close(); err != nil {
		return err
	}
	return rowsErr
}
