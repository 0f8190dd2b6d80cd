package importer

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"csv-import-service/internal/domain"
	"csv-import-service/internal/logger"
	"csv-import-service/internal/metrics"
	"csv-import-service/internal/repository"
)

const (
	// MaxExistingFetch bounds the snapshot of existing records one
	// duplicate check compares against.
	MaxExistingFetch = 1000

	// fuzzyThreshold is the minimum Levenshtein similarity for a partial
	// field match.
	fuzzyThreshold = 0.80

	// maxLengthDiffRatio rejects fuzzy comparison outright when the strings
	// differ in length by more than this share of the longer one.
	maxLengthDiffRatio = 0.30

	// prefixLength is how many leading characters count as a shared prefix.
	prefixLength = 5
)

// DuplicateChecker compares validated import records against a tenant's
// existing rows over the template's match fields.
type DuplicateChecker struct {
	store repository.RecordStore
}

// NewDuplicateChecker creates a new DuplicateChecker.
func NewDuplicateChecker(store repository.RecordStore) *DuplicateChecker {
	return &DuplicateChecker{store: store}
}

// Check partitions records into likely duplicates and new records. The
// comparison runs against a snapshot fetched once, ordered newest update
// first, so for a fixed snapshot the result is deterministic and score ties
// resolve to the most recently updated existing record.
func (c *DuplicateChecker) Check(ctx context.Context, t *domain.CSVTemplate, records []domain.Record, tenantID string) (*domain.DuplicateCheckResult, error) {
	result := &domain.DuplicateCheckResult{TotalRecords: len(records)}

	if len(t.DuplicateMatchFields) == 0 {
		for i, rec := range records {
			result.NewRecords = append(result.NewRecords, domain.IndexedRecord{Index: i, Record: rec})
		}
		return result, nil
	}

	columns := append([]string{"id"}, t.DuplicateMatchFields...)
	existing, err := c.store.Select(ctx, t.TableName, columns, tenantID, MaxExistingFetch)
	if err != nil {
		return nil, fmt.Errorf("fetch existing %s: %w", t.DataType, err)
	}

	logger.Debug("Duplicate check snapshot loaded",
		slog.String("data_type", t.DataType),
		slog.Int("existing", len(existing)),
		slog.Int("incoming", len(records)))

	comparisons := 0
	for i, rec := range records {
		var best *domain.DuplicateMatch
		for _, ex := range existing {
			comparisons++
			score, matched := scoreMatch(t, rec, ex)
			if score < domain.MinMatchScore {
				continue
			}
			if best == nil || score > best.MatchScore {
				best = &domain.DuplicateMatch{
					ImportIndex:   i,
					ImportRecord:  rec,
					Existing:      ex,
					MatchedFields: matched,
					MatchScore:    score,
				}
			}
		}
		if best != nil {
			result.Duplicates = append(result.Duplicates, *best)
		} else {
			result.NewRecords = append(result.NewRecords, domain.IndexedRecord{Index: i, Record: rec})
		}
	}

	metrics.ObserveDuplicateCheck(t.DataType, comparisons, len(result.Duplicates))
	return result, nil
}

// scoreMatch computes the 0-100 confidence that rec and existing refer to the
// same entity. An exact normalized match on a field contributes a full unit,
// a fuzzy match half a unit reported as "<field> (partial)".
func scoreMatch(t *domain.CSVTemplate, rec, existing domain.Record) (int, []string) {
	var (
		units   float64
		matched []string
	)
	for _, fieldKey := range t.DuplicateMatchFields {
		iv := importFieldValue(t, rec, fieldKey)
		ev := stringifyValue(existing[fieldKey])
		if iv == "" || ev == "" {
			continue
		}
		a, b := normalizeForMatch(iv), normalizeForMatch(ev)
		switch {
		case a == b:
			units++
			matched = append(matched, fieldKey)
		case fuzzyMatch(a, b):
			units += 0.5
			matched = append(matched, fieldKey+" (partial)")
		}
	}
	score := int(math.Round(units / float64(len(t.DuplicateMatchFields)) * 100))
	return score, matched
}

// importFieldValue resolves the import-side value for a match field: the raw
// field key first, then the template field's declared name.
func importFieldValue(t *domain.CSVTemplate, rec domain.Record, fieldKey string) string {
	if v, ok := rec[fieldKey]; ok {
		if s := stringifyValue(v); s != "" {
			return s
		}
	}
	if f, ok := t.FieldByDBField(fieldKey); ok {
		return stringifyValue(rec[f.Name])
	}
	return ""
}

func stringifyValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// normalizeForMatch lower-cases, trims, and collapses internal whitespace.
func normalizeForMatch(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// fuzzyMatch decides whether two normalized, non-equal strings are close
// enough to count as a partial match: containment, then a shared 5-character
// prefix, then Levenshtein similarity gated by the relative length
// difference. Lengths are counted in runes to line up with the rune-based
// edit distance.
func fuzzyMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	if sharedPrefix(a, b) {
		return true
	}

	lenA, lenB := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longer := lenA
	if lenB > longer {
		longer = lenB
	}
	diff := lenA - lenB
	if diff < 0 {
		diff = -diff
	}
	if float64(diff) > maxLengthDiffRatio*float64(longer) {
		return false
	}

	dist := levenshtein.ComputeDistance(a, b)
	similarity := 1 - float64(dist)/float64(longer)
	return similarity >= fuzzyThreshold
}

func sharedPrefix(a, b string) bool {
	pa := a
	if ra := []rune(a); len(ra) > prefixLength {
		pa = string(ra[:prefixLength])
	}
	pb := b
	if rb := []rune(b); len(rb) > prefixLength {
		pb = string(rb[:prefixLength])
	}
	return strings.HasPrefix(b, pa) || strings.HasPrefix(a, pb)
}
