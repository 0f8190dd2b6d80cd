package domain

// FieldType enumerates the value types a CSV column can declare.
type FieldType string

const (
	FieldString  FieldType = "string"
	FieldNumber  FieldType = "number"
	FieldDate    FieldType = "date"
	FieldBoolean FieldType = "boolean"
	FieldEmail   FieldType = "email"
	FieldPhone   FieldType = "phone"
)

// LookupSpec describes a field whose human-readable CSV value must be
// resolved to a foreign-key id before storage. The textual value is matched
// against NameColumn in Table and rewritten to ForeignKey.
type LookupSpec struct {
	Table      string `json:"table"`
	NameColumn string `json:"name_column"`
	ForeignKey string `json:"foreign_key"`
}

// CSVField is one column definition within an import template.
type CSVField struct {
	Name        string      `json:"name"`     // human label, used as the CSV header
	DBField     string      `json:"db_field"` // canonical storage key
	Type        FieldType   `json:"type"`
	Required    bool        `json:"required"`
	Description string      `json:"description,omitempty"`
	Example     string      `json:"example,omitempty"`
	Lookup      *LookupSpec `json:"lookup,omitempty"`
}

// IsLookup reports whether the field is resolved to a foreign key by the
// lookup pre-pass rather than validated and stored directly.
func (f CSVField) IsLookup() bool {
	return f.Lookup != nil
}

// CSVTemplate describes one importable record kind. Templates are defined at
// process start and never mutated.
type CSVTemplate struct {
	DataType             string     `json:"data_type"`
	DisplayName          string     `json:"display_name"`
	TableName            string     `json:"table_name"`
	Description          string     `json:"description"`
	Fields               []CSVField `json:"fields"`
	DuplicateMatchFields []string   `json:"duplicate_match_fields"`
}

// FieldByDBField returns the template field with the given storage key.
func (t *CSVTemplate) FieldByDBField(dbField string) (CSVField, bool) {
	for _, f := range t.Fields {
		if f.DBField == dbField {
			return f, true
		}
	}
	return CSVField{}, false
}
