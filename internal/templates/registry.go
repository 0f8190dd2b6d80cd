// Package templates holds the static import template registry: one
// declarative definition per importable record kind.
package templates

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"csv-import-service/internal/domain"
)

// ErrUnknownDataType is returned when a data type has no registered template.
var ErrUnknownDataType = errors.New("unknown data type")

var byDataType = func() map[string]*domain.CSVTemplate {
	m := make(map[string]*domain.CSVTemplate, len(definitions))
	for i := range definitions {
		m[definitions[i].DataType] = &definitions[i]
	}
	return m
}()

// Lookup returns the template registered for dataType.
func Lookup(dataType string) (*domain.CSVTemplate, error) {
	t, ok := byDataType[dataType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDataType, dataType)
	}
	return t, nil
}

// Summary is the display metadata for one template.
type Summary struct {
	DataType    string `json:"data_type"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	FieldCount  int    `json:"field_count"`
}

// List returns display metadata for all registered templates, in the order
// they are defined.
func List() []Summary {
	out := make([]Summary, 0, len(definitions))
	for _, t := range definitions {
		out = append(out, Summary{
			DataType:    t.DataType,
			DisplayName: t.DisplayName,
			Description: t.Description,
			FieldCount:  len(t.Fields),
		})
	}
	return out
}

// RequiredFields returns only the template's required fields.
func RequiredFields(t *domain.CSVTemplate) []domain.CSVField {
	var out []domain.CSVField
	for _, f := range t.Fields {
		if f.Required {
			out = append(out, f)
		}
	}
	return out
}

// MatchFields returns a copy of the template's duplicate-match field list.
func MatchFields(t *domain.CSVTemplate) []string {
	out := make([]string, len(t.DuplicateMatchFields))
	copy(out, t.DuplicateMatchFields)
	return out
}

// TemplateCSV renders a downloadable starter file for the template: one
// header row of human field names and one example row.
func TemplateCSV(t *domain.CSVTemplate) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, len(t.Fields))
	example := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		header[i] = f.Name
		example[i] = f.Example
	}

	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	if err := w.Write(example); err != nil {
		return nil, fmt.Errorf("write example row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush template csv: %w", err)
	}
	return buf.Bytes(), nil
}

// TemplateFilename derives the download filename from the display name.
func TemplateFilename(t *domain.CSVTemplate) string {
	name := strings.ReplaceAll(strings.ToLower(t.DisplayName), " ", "-")
	return name + "-import-template.csv"
}
