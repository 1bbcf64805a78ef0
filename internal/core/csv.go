package core

// csv.go reads and writes the names CSV.
//
// Input is decoded through golang.org/x/text so a UTF-8 BOM written by
// spreadsheet tools is dropped and invalid byte sequences become U+FFFD
// instead of failing the parse. Output uses CRLF line endings, matching the
// existing names.csv files.

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Reader yields Rows from a names CSV, one record at a time.
type Reader struct {
	csv    *csv.Reader
	header []string
	index  HeaderIndex
	record int
}

// NewReader reads the header row and returns a Reader positioned at the first data row.
func NewReader(r io.Reader) (*Reader, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty file: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("invalid csv header: %w", err)
	}

	return &Reader{
		csv:    cr,
		header: header,
		index:  MakeHeaderIndex(header),
		record: 1,
	}, nil
}

// Header returns the header row as read from the file.
func (r *Reader) Header() []string {
	return r.header
}

// Missing returns the required columns absent from the header.
func (r *Reader) Missing() []string {
	return r.index.Missing()
}

// Extra returns the header cells a Writer would not write back: columns
// outside Columns and repeats of a known column. Blank cells are ignored.
func (r *Reader) Extra() []string {
	known := make(map[string]bool, len(Columns))
	for _, c := range Columns {
		known[strings.ToLower(c)] = true
	}

	var extra []string
	seen := make(map[string]bool, len(r.header))
	for _, h := range r.header {
		name := CleanHeader(h)
		key := strings.ToLower(name)
		if key == "" {
			continue
		}
		if !known[key] || seen[key] {
			extra = append(extra, name)
		}
		seen[key] = true
	}
	return extra
}

// Next returns the next row and its 1-based record number (the header is row 1).
// It returns io.EOF after the last row.
func (r *Reader) Next() (Row, int, error) {
	record, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Row{}, 0, io.EOF
		}
		return Row{}, 0, fmt.Errorf("invalid csv after row %d: %w", r.record, err)
	}
	r.record++
	return r.index.Row(record), r.record, nil
}

// ReadRows reads every row from r. The header must carry the required columns.
func ReadRows(r io.Reader) ([]Row, error) {
	return readRows(r, false)
}

// ReadRewritable reads every row from r like ReadRows, and also fails when the
// header has columns that WriteRows would drop.
func ReadRewritable(r io.Reader) ([]Row, error) {
	return readRows(r, true)
}

func readRows(r io.Reader, rewrite bool) ([]Row, error) {
	cr, err := NewReader(r)
	if err != nil {
		return nil, err
	}
	if _, err := ValidateHeaders(cr.Header()); err != nil {
		return nil, err
	}
	if extra := cr.Extra(); rewrite && len(extra) > 0 {
		return nil, fmt.Errorf("unsupported columns: %s (rewriting would drop them)", strings.Join(extra, ", "))
	}

	var rows []Row
	for {
		row, _, err := cr.Next()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}

// ReadFile reads every row of the CSV file at path.
func ReadFile(path string) ([]Row, error) {
	return readFile(path, ReadRows)
}

// ReadRewritableFile reads the CSV file at path for an in-place rewrite.
// See ReadRewritable.
func ReadRewritableFile(path string) ([]Row, error) {
	return readFile(path, ReadRewritable)
}

func readFile(path string, read func(io.Reader) ([]Row, error)) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

// Writer writes Rows as a names CSV. The header is written on creation.
type Writer struct {
	csv *csv.Writer
}

// NewWriter writes the header row and returns a Writer for data rows.
func NewWriter(w io.Writer) (*Writer, error) {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.Write(Columns); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	return &Writer{csv: cw}, nil
}

// Write writes one row.
func (w *Writer) Write(row Row) error {
	return w.csv.Write(row.Values())
}

// Flush writes buffered data and reports any write error.
func (w *Writer) Flush() error {
	w.csv.Flush()
	return w.csv.Error()
}

// WriteRows writes the header followed by rows.
func WriteRows(w io.Writer, rows []Row) error {
	cw, err := NewWriter(w)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %q: %w", row.Name, err)
		}
	}
	return cw.Flush()
}

// WriteFile writes rows to path, replacing it atomically.
func WriteFile(path string, rows []Row) error {
	return ReplaceFile(path, func(w io.Writer) error {
		return WriteRows(w, rows)
	})
}

// ReplaceFile writes a file through fn into a temporary sibling and renames
// it over path once fn succeeds. On failure the previous file is untouched.
func ReplaceFile(path string, fn func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // No-op once renamed

	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := fn(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
