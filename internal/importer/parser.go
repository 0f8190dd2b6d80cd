// Package importer implements the CSV import pipeline: parsing, lookup-field
// resolution, validation/coercion, duplicate detection, resolution, and
// execution against the record store.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"csv-import-service/internal/domain"
)

// ParseCSV reads a comma-separated file: first line headers, RFC 4180
// quoting, blank lines skipped. Malformed rows are collected as errors
// rather than aborting the parse. Row numbers are 1-based over all data
// rows, malformed ones included, and each surviving row carries its own
// number so later stages report against the source file.
func ParseCSV(r io.Reader) ([]string, []domain.ImportRow, []domain.ImportError, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	rawHeader, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("read header: %w", err)
	}

	headers := make([]string, len(rawHeader))
	for i, h := range rawHeader {
		headers[i] = strings.TrimSpace(h)
	}

	var (
		rows      []domain.ImportRow
		parseErrs []domain.ImportError
	)
	rowNum := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++
		if err != nil {
			parseErrs = append(parseErrs, domain.ImportError{
				Row:     rowNum,
				Message: fmt.Sprintf("malformed row: %v", err),
			})
			continue
		}

		row := make(domain.ImportRecord, len(headers))
		for i, h := range headers {
			if i < len(record) {
				row[h] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, domain.ImportRow{Num: rowNum, Data: row})
	}

	return headers, rows, parseErrs, nil
}
