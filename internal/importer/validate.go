package importer

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-ozzo/ozzo-validation/v4/is"

	"csv-import-service/internal/domain"
)

// MaxStringLength caps sanitized string values.
const MaxStringLength = 2000

var (
	scriptRe    = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	tagRe       = regexp.MustCompile(`<[^>]*>`)
	isoDateRe   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	nonPhoneRe  = regexp.MustCompile(`[^0-9+]`)
	moneyChars  = strings.NewReplacer("$", "", ",", "")
	trueStrings = map[string]bool{
		"true": true, "yes": true, "1": true, "y": true, "on": true, "enabled": true,
	}
)

// generic fallbacks tried after the ISO / US / EU formats.
var fallbackDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

// Validate checks rows against the template and coerces each value to its
// declared type. fieldMappings optionally maps source CSV headers to
// canonical db fields for files whose headers differ from the template's
// declared names; value resolution tries the mapping first, then the db
// field, then the declared name.
//
// Errors are batched across the whole input: a row is dropped from
// ValidatedData on its first failing field, but validation always continues
// with the remaining rows.
func Validate(t *domain.CSVTemplate, rows []domain.ImportRow, fieldMappings map[string]string) domain.ValidationResult {
	result := domain.ValidationResult{
		ValidatedData: make([]domain.Record, 0, len(rows)),
	}

	sources := invertMappings(fieldMappings)

	for _, row := range rows {
		rowNum := row.Num
		validated := make(domain.Record)
		rowValid := true

		for _, f := range t.Fields {
			if f.IsLookup() {
				continue // resolved by the lookup pre-pass
			}

			raw := resolveValue(row.Data, f, sources)
			if raw == "" {
				if f.Required {
					result.Errors = append(result.Errors, domain.ImportError{
						Row:     rowNum,
						Field:   f.Name,
						Message: fmt.Sprintf("%s is required", f.Name),
					})
					rowValid = false
					break
				}
				continue
			}

			value, err := coerce(f.Type, raw)
			if err != nil {
				result.Errors = append(result.Errors, domain.ImportError{
					Row:     rowNum,
					Field:   f.Name,
					Message: err.Error(),
					Value:   raw,
				})
				rowValid = false
				break
			}
			validated[f.DBField] = value
		}

		if !rowValid {
			continue
		}

		// carry through foreign keys set by the lookup pre-pass
		for _, f := range t.Fields {
			if f.IsLookup() {
				if id, ok := row.Data[f.Lookup.ForeignKey]; ok && id != "" {
					validated[f.Lookup.ForeignKey] = id
				}
			}
		}

		result.ValidatedData = append(result.ValidatedData, validated)
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

// invertMappings turns the caller's header->dbField mapping into
// dbField->headers, with sources sorted so the same file always resolves the
// same way.
func invertMappings(fieldMappings map[string]string) map[string][]string {
	sources := make(map[string][]string, len(fieldMappings))
	for src, dst := range fieldMappings {
		sources[dst] = append(sources[dst], src)
	}
	for _, s := range sources {
		sort.Strings(s)
	}
	return sources
}

// resolveValue finds the raw value for a field: mapped source headers first,
// then the canonical db field, then the declared human name.
func resolveValue(row domain.ImportRecord, f domain.CSVField, sources map[string][]string) string {
	for _, src := range sources[f.DBField] {
		if v, ok := row[src]; ok && v != "" {
			return v
		}
	}
	if v, ok := row[f.DBField]; ok && v != "" {
		return v
	}
	return row[f.Name]
}

func coerce(ft domain.FieldType, raw string) (any, error) {
	switch ft {
	case domain.FieldString:
		return coerceString(raw, true)
	case domain.FieldNumber:
		return coerceNumber(raw)
	case domain.FieldDate:
		return coerceDate(raw)
	case domain.FieldBoolean:
		return coerceBoolean(raw), nil
	case domain.FieldEmail:
		return coerceEmail(raw)
	case domain.FieldPhone:
		return coercePhone(raw)
	default:
		return coerceString(raw, false)
	}
}

// sanitizeString strips script blocks and any remaining markup.
func sanitizeString(s string) string {
	s = scriptRe.ReplaceAllString(s, "")
	s = tagRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func coerceString(raw string, enforceLength bool) (any, error) {
	s := sanitizeString(raw)
	if enforceLength && len(s) > MaxStringLength {
		return nil, fmt.Errorf("value exceeds %d characters", MaxStringLength)
	}
	return s, nil
}

func coerceNumber(raw string) (any, error) {
	cleaned := strings.TrimSpace(moneyChars.Replace(raw))
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, fmt.Errorf("must be a valid number")
	}
	return n, nil
}

// coerceDate tries ISO (date prefix), US, EU, then generic layouts.
// Output is an ISO-8601 timestamp string.
func coerceDate(raw string) (any, error) {
	s := strings.TrimSpace(raw)
	if isoDateRe.MatchString(s) {
		if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return t.UTC().Format(time.RFC3339), nil
		}
	}
	if t, err := time.Parse("01/02/2006", s); err == nil {
		return t.UTC().Format(time.RFC3339), nil
	}
	if t, err := time.Parse("02.01.2006", s); err == nil {
		return t.UTC().Format(time.RFC3339), nil
	}
	for _, layout := range fallbackDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(time.RFC3339), nil
		}
	}
	return nil, fmt.Errorf("must be a valid date")
}

// coerceBoolean never errors: anything outside the truthy set is false.
func coerceBoolean(raw string) bool {
	return trueStrings[strings.ToLower(strings.TrimSpace(raw))]
}

func coerceEmail(raw string) (any, error) {
	s := strings.TrimSpace(raw)
	if err := is.Email.Validate(s); err != nil {
		return nil, fmt.Errorf("must be a valid email address")
	}
	return strings.ToLower(s), nil
}

// coercePhone validates digit count but stores the value as entered.
func coercePhone(raw string) (any, error) {
	stripped := nonPhoneRe.ReplaceAllString(raw, "")
	if len(stripped) < 7 || len(stripped) > 15 {
		return nil, fmt.Errorf("must be a valid phone number")
	}
	return raw, nil
}
