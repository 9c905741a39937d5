package types

// FieldType is the closed set of value types the structural analyzer can
// infer for a legacy field. It is inferred once during analysis and never
// re-inferred downstream.
type FieldType string

const (
	FieldTypeText    FieldType = "text"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeDate    FieldType = "date"
	FieldTypeJSON    FieldType = "json"
)

// LegacyField is one discovered attribute of an inbound dataset. Immutable
// after structural analysis.
type LegacyField struct {
	Name        string    `json:"name"`
	Type        FieldType `json:"type"`
	SampleValue any       `json:"sample_value,omitempty"`
	IsRequired  bool      `json:"is_required"`
	Description string    `json:"description,omitempty"`
}

// LegacyEntity is a discovered record collection. SampleData keeps at most
// the first few raw records for preview; the full dataset is not retained.
type LegacyEntity struct {
	Name       string           `json:"name"`
	Type       string           `json:"type"`
	Fields     []LegacyField    `json:"fields"`
	SampleData []map[string]any `json:"sample_data"`
}
