package importer

import (
	"context"
	"fmt"
	"log/slog"

	"csv-import-service/internal/domain"
	"csv-import-service/internal/logger"
	"csv-import-service/internal/repository"
)

// LookupResolver rewrites human-readable reference columns (such as a
// project's name) into foreign-key ids before validation. It runs as a
// distinct pre-pass: one fetch per lookup field builds a name-to-id cache
// for the whole batch.
type LookupResolver struct {
	store repository.RecordStore
}

// NewLookupResolver creates a new LookupResolver.
func NewLookupResolver(store repository.RecordStore) *LookupResolver {
	return &LookupResolver{store: store}
}

// Resolve rewrites rows in place: each lookup field's textual value is
// replaced by its resolved foreign key and the textual columns are dropped.
// The value is found with the same precedence validation uses: mapped source
// headers first, then the db field, then the declared name. Values with no
// matching row are dropped without the foreign key being set and reported in
// the returned list; an unmatched name is not an error.
func (r *LookupResolver) Resolve(ctx context.Context, t *domain.CSVTemplate, rows []domain.ImportRow, fieldMappings map[string]string, tenantID string) ([]domain.UnresolvedLookup, error) {
	var unresolved []domain.UnresolvedLookup
	sources := invertMappings(fieldMappings)

	for _, f := range t.Fields {
		if !f.IsLookup() {
			continue
		}
		if !anyValue(rows, f, sources) {
			continue
		}

		cache, err := r.loadCache(ctx, f.Lookup, tenantID)
		if err != nil {
			return nil, err
		}

		for _, row := range rows {
			raw := resolveValue(row.Data, f, sources)
			for _, src := range sources[f.DBField] {
				delete(row.Data, src)
			}
			delete(row.Data, f.DBField)
			delete(row.Data, f.Name)
			if raw == "" {
				continue
			}

			if id, ok := cache[normalizeForMatch(raw)]; ok {
				row.Data[f.Lookup.ForeignKey] = id
			} else {
				unresolved = append(unresolved, domain.UnresolvedLookup{
					Row:   row.Num,
					Field: f.Name,
					Value: raw,
				})
			}
		}
	}

	if len(unresolved) > 0 {
		logger.Warn("Unresolved lookup values during import",
			slog.String("data_type", t.DataType),
			slog.Int("count", len(unresolved)))
	}
	return unresolved, nil
}

func (r *LookupResolver) loadCache(ctx context.Context, spec *domain.LookupSpec, tenantID string) (map[string]string, error) {
	candidates, err := r.store.Select(ctx, spec.Table, []string{"id", spec.NameColumn}, tenantID, MaxExistingFetch)
	if err != nil {
		return nil, fmt.Errorf("fetch %s candidates: %w", spec.Table, err)
	}

	cache := make(map[string]string, len(candidates))
	for _, c := range candidates {
		name := normalizeForMatch(stringifyValue(c[spec.NameColumn]))
		if name == "" {
			continue
		}
		// candidates arrive newest first; keep the first occurrence
		if _, ok := cache[name]; !ok {
			cache[name] = stringifyValue(c["id"])
		}
	}
	return cache, nil
}

func anyValue(rows []domain.ImportRow, f domain.CSVField, sources map[string][]string) bool {
	for _, row := range rows {
		if resolveValue(row.Data, f, sources) != "" {
			return true
		}
	}
	return false
}
