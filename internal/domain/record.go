package domain

// ImportRecord is one raw CSV data row, keyed by header.
type ImportRecord map[string]string

// ImportRow pairs one parsed CSV row with its 1-based position among the
// file's data rows, counting malformed rows, so errors reported by later
// pipeline stages point at the right line of the source file.
type ImportRow struct {
	Num  int          `json:"num"`
	Data ImportRecord `json:"data"`
}

// Record is a validated import row keyed by db field, or a stored row keyed
// by column name. Values are strings, float64s, bools, or ISO timestamps.
type Record map[string]any

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// IndexedRecord pairs a validated record with its position in the import
// batch, so later resolutions can refer back to it.
type IndexedRecord struct {
	Index  int    `json:"index"`
	Record Record `json:"record"`
}

// MinMatchScore is the lowest duplicate confidence that gets reported.
// Pairs below it are treated as "no match".
const MinMatchScore = 50

// DuplicateMatch pairs one import record (by batch index) with the existing
// stored record it most likely refers to.
type DuplicateMatch struct {
	ImportIndex   int      `json:"import_index"`
	ImportRecord  Record   `json:"import_record"`
	Existing      Record   `json:"existing_record"`
	MatchedFields []string `json:"matched_fields"`
	MatchScore    int      `json:"match_score"` // 0-100, always >= MinMatchScore when reported
}

// DuplicateCheckResult partitions an import batch into likely duplicates and
// new records.
type DuplicateCheckResult struct {
	Duplicates   []DuplicateMatch `json:"duplicates"`
	NewRecords   []IndexedRecord  `json:"new_records"`
	TotalRecords int              `json:"total_records"`
}

// ResolutionAction is a user's decision for one detected duplicate.
type ResolutionAction string

const (
	ActionMerge     ResolutionAction = "merge"
	ActionCreateNew ResolutionAction = "create_new"
	ActionSkip      ResolutionAction = "skip"
)

// IsValidResolutionAction checks if a resolution action is valid.
func IsValidResolutionAction(action ResolutionAction) bool {
	switch action {
	case ActionMerge, ActionCreateNew, ActionSkip:
		return true
	}
	return false
}

// ResolvedDuplicate attaches a user decision to one duplicate match by its
// import index.
type ResolvedDuplicate struct {
	ImportIndex int              `json:"import_index"`
	Action      ResolutionAction `json:"action"`
	ExistingID  string           `json:"existing_id,omitempty"`
}

// RecordUpdate is one merged record destined for an update, keyed by the
// existing record's id.
type RecordUpdate struct {
	ID   string `json:"id"`
	Data Record `json:"data"`
}

// ResolutionPlan is the output of applying user resolutions to a duplicate
// check: what to insert, what to update, and what was skipped.
// SkippedNoResolution lists import indices skipped because no resolution was
// supplied (default-deny), so the caller can surface them.
type ResolutionPlan struct {
	ToInsert            []Record       `json:"to_insert"`
	ToUpdate            []RecordUpdate `json:"to_update"`
	Skipped             int            `json:"skipped"`
	SkippedNoResolution []int          `json:"skipped_no_resolution,omitempty"`
}

// UnresolvedLookup records a lookup-field value that could not be matched to
// an existing row. The foreign key is left unset; no error is raised.
type UnresolvedLookup struct {
	Row   int    `json:"row"`
	Field string `json:"field"`
	Value string `json:"value"`
}
