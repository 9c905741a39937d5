package types

// HeraTable is the closed set of universal-schema target tables.
type HeraTable string

const (
	TableEntities     HeraTable = "core_entities"
	TableDynamicData  HeraTable = "core_dynamic_data"
	TableMetadata     HeraTable = "core_metadata"
	TableTransactions HeraTable = "universal_transactions"
)

// MappingType is the closed set of ways a legacy field can land in the
// universal schema. "ignore" is itself a valid mapping, not an omission.
type MappingType string

const (
	MappingDirect    MappingType = "direct"
	MappingTransform MappingType = "transform"
	MappingSplit     MappingType = "split"
	MappingCombine   MappingType = "combine"
	MappingIgnore    MappingType = "ignore"
	MappingDynamic   MappingType = "dynamic"
	MappingMetadata  MappingType = "metadata"
)

// HeraMapping is one proposed mapping of a legacy field onto the universal
// schema. LegacyField is a dotted "entity.field" reference. Exactly one
// HeraMapping exists per LegacyField after the rule engine runs.
type HeraMapping struct {
	LegacyField   string      `json:"legacy_field"`
	HeraTable     HeraTable   `json:"hera_table"`
	HeraField     string      `json:"hera_field"`
	MappingType   MappingType `json:"mapping_type"`
	TransformRule string      `json:"transform_rule,omitempty"`
	Confidence    float64     `json:"confidence"`
	Notes         string      `json:"notes,omitempty"`

	// Target-specific annotations.
	EntityType       string    `json:"entity_type,omitempty"`
	FieldType        FieldType `json:"field_type,omitempty"`
	MetadataType     string    `json:"metadata_type,omitempty"`
	MetadataCategory string    `json:"metadata_category,omitempty"`
}
