package domain

// ImportError is one structured problem found during parsing, validation, or
// execution. Row numbers are 1-based over data rows (the header is row 0).
type ImportError struct {
	Row     int    `json:"row"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// ValidationResult is the output of validating a parsed batch against a
// template. ValidatedData contains only fully-valid rows, keyed by db field;
// Errors is exhaustive across the whole batch.
type ValidationResult struct {
	IsValid       bool          `json:"is_valid"`
	Errors        []ImportError `json:"errors,omitempty"`
	ValidatedData []Record      `json:"validated_data"`
}

// ImportResult summarizes one completed import execution. Success is true
// only when Errors is empty; Inserted and Updated count rows the store
// confirmed written.
type ImportResult struct {
	Success             bool               `json:"success"`
	Inserted            int                `json:"inserted"`
	Updated             int                `json:"updated"`
	Skipped             int                `json:"skipped"`
	Errors              []ImportError      `json:"errors,omitempty"`
	SkippedNoResolution []int              `json:"skipped_no_resolution,omitempty"`
	UnresolvedLookups   []UnresolvedLookup `json:"unresolved_lookups,omitempty"`
}

// PreviewResult is what the UI gets before committing an import: validation
// errors plus detected duplicates awaiting user resolutions.
type PreviewResult struct {
	DataType          string             `json:"data_type"`
	TotalRows         int                `json:"total_rows"`
	ValidRows         int                `json:"valid_rows"`
	Errors            []ImportError      `json:"errors,omitempty"`
	UnresolvedLookups []UnresolvedLookup `json:"unresolved_lookups,omitempty"`
	Duplicates        []DuplicateMatch   `json:"duplicates,omitempty"`
	NewRecordCount    int                `json:"new_record_count"`
}
