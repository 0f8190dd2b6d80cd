package importer

import (
	"time"

	"csv-import-service/internal/domain"
)

// ApplyResolutions partitions a duplicate check into inserts, updates, and
// skips according to the user's per-record decisions. Duplicates with no
// supplied resolution are skipped (default-deny) and reported in
// SkippedNoResolution rather than dropped silently.
func ApplyResolutions(dup *domain.DuplicateCheckResult, resolutions []domain.ResolvedDuplicate, t *domain.CSVTemplate) domain.ResolutionPlan {
	plan := domain.ResolutionPlan{
		ToInsert: make([]domain.Record, 0, len(dup.NewRecords)),
	}

	byIndex := make(map[int]domain.ResolvedDuplicate, len(resolutions))
	for _, r := range resolutions {
		byIndex[r.ImportIndex] = r
	}

	for _, nr := range dup.NewRecords {
		plan.ToInsert = append(plan.ToInsert, nr.Record)
	}

	for _, d := range dup.Duplicates {
		res, ok := byIndex[d.ImportIndex]
		if !ok {
			plan.Skipped++
			plan.SkippedNoResolution = append(plan.SkippedNoResolution, d.ImportIndex)
			continue
		}

		switch res.Action {
		case domain.ActionMerge:
			id := res.ExistingID
			if id == "" {
				id = stringifyValue(d.Existing["id"])
			}
			plan.ToUpdate = append(plan.ToUpdate, domain.RecordUpdate{
				ID:   id,
				Data: mergeRecords(t, d.Existing, d.ImportRecord),
			})
		case domain.ActionCreateNew:
			plan.ToInsert = append(plan.ToInsert, d.ImportRecord)
		default: // skip, or an unrecognized action
			plan.Skipped++
		}
	}

	return plan
}

// mergeRecords starts from the existing record and overwrites every template
// field whose import-side value is non-empty. Empty import values never
// clobber existing data; id and created_at are never touched; updated_at is
// always refreshed.
func mergeRecords(t *domain.CSVTemplate, existing, imported domain.Record) domain.Record {
	merged := existing.Clone()

	for _, f := range t.Fields {
		key := f.DBField
		if f.IsLookup() {
			key = f.Lookup.ForeignKey
		}
		v, ok := imported[key]
		if !ok || stringifyValue(v) == "" {
			continue
		}
		merged[key] = v
	}

	delete(merged, "id")
	delete(merged, "created_at")
	merged["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	return merged
}
