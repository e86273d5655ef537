package csvutil

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Row is one CSV record addressed by header name.
type Row struct {
	Line    int
	headers map[string]int
	record  []string
}

// Get returns the trimmed value of column name, or "" when the column is
// missing from this file.
func (r Row) Get(name string) string {
	idx, ok := r.headers[name]
	if !ok || idx >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[idx])
}

// Has reports whether the file has a column called name.
func (r Row) Has(name string) bool {
	_, ok := r.headers[name]
	return ok
}

// ProcessorOptions configures CSV processing behavior.
type ProcessorOptions struct {
	// SkipInvalid controls whether to skip invalid records or return an error.
	SkipInvalid bool
}

// ErrSkipRow tells ProcessCSV to drop a record silently.
var ErrSkipRow = errors.New("skip row")

// Headers reads only the header line of a CSV file.
func Headers(filename string) ([]string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = f.Close() }()

	header, err := newReader(f).Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	return cleanHeader(header), nil
}

// ProcessCSV reads a CSV file with a header line and parses each record into
// type T. Parsers may return ErrSkipRow to drop a record.
func ProcessCSV[T any](filename string, parser func(Row) (T, error), opts ProcessorOptions) ([]T, error) {
	csvFile, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = csvFile.Close() }()

	if fi, err := csvFile.Stat(); err != nil || fi.Size() == 0 {
		return nil, fmt.Errorf("CSV file is empty or cannot be read")
	}

	reader := newReader(csvFile)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range cleanHeader(header) {
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	var items []T
	line := 1
	for {
		record, err := reader.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Warn("Error reading record", "line", line, "error", err)
			continue
		}

		item, err := parser(Row{Line: line, headers: index, record: record})
		if errors.Is(err, ErrSkipRow) {
			continue
		}
		if err != nil {
			if opts.SkipInvalid {
				slog.Warn("Skipping invalid record", "line", line, "error", err)
				continue
			}
			return nil, fmt.Errorf("invalid record on line %d: %w", line, err)
		}

		items = append(items, item)
	}

	return items, nil
}

// WriteCSV writes a header and records to filename, creating directories.
func WriteCSV(filename string, header []string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := w.WriteAll(records); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write records: %w", err)
	}
	return f.Close()
}

func newReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader
}

// cleanHeader trims names and drops a UTF-8 byte order mark.
func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "﻿")
		}
		out[i] = strings.TrimSpace(name)
	}
	return out
}
