package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// GeneratedField is one field of an AI- or rule-generated schema proposal.
type GeneratedField struct {
	Name        string    `json:"name"`
	Type        FieldType `json:"type"`
	Required    bool      `json:"required"`
	Label       string    `json:"label"`
	Options     []string  `json:"options,omitempty"`
	Source      string    `json:"source,omitempty"`
	Confidence  float64   `json:"confidence"`
	AIGenerated bool      `json:"ai_generated"`
	Placeholder string    `json:"placeholder,omitempty"`
}

// FieldValidation is the per-field constraint entry of a generated schema.
type FieldValidation struct {
	Required  bool   `json:"required"`
	MinLength int    `json:"min_length,omitempty"`
	MaxLength int    `json:"max_length,omitempty"`
	Pattern   string `json:"pattern,omitempty"`
}

// SchemaMetadata records generation provenance plus any AI insights.
type SchemaMetadata struct {
	GeneratedBy string    `json:"generated_by"`
	Model       string    `json:"model,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
	AIInsights  []string  `json:"ai_insights,omitempty"`
}

// SchemaAuditTrail ties a generated schema back to the requirement that
// produced it.
type SchemaAuditTrail struct {
	Timestamp           time.Time `json:"timestamp"`
	OriginalRequirement string    `json:"original_requirement"`
	Analysis            string    `json:"analysis,omitempty"`
}

// GeneratedSchema is the output envelope of schema generation, whether it
// came from an AI backend or from the rule-based fallback.
type GeneratedSchema struct {
	EntityType      string                     `json:"entity_type"`
	Name            string                     `json:"name"`
	Domain          BusinessDomain             `json:"domain"`
	Fields          []GeneratedField           `json:"fields"`
	Metadata        SchemaMetadata             `json:"metadata"`
	Confidence      float64                    `json:"confidence"`
	Suggestions     []string                   `json:"suggestions"`
	ValidationRules map[string]FieldValidation `json:"validation_rules"`
	BusinessRules   []string                   `json:"business_rules"`
	AuditTrail      SchemaAuditTrail           `json:"audit_trail"`
}

// SchemaRegistryEntry is one registered schema for an organization.
// The registry is append-only: entries are written once and read for
// similarity search; no update or delete path exists.
type SchemaRegistryEntry struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OrganizationID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"organization_id"`
	EntityType       string         `gorm:"column:entity_type;not null;index" json:"entity_type"`
	EntityName       string         `gorm:"column:entity_name;not null" json:"entity_name"`
	SchemaDefinition datatypes.JSON `gorm:"column:schema_definition;not null" json:"schema_definition"`
	AIGenerated      bool           `gorm:"column:ai_generated;not null;default:false" json:"ai_generated"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (SchemaRegistryEntry) TableName() string { return "schema_registry_entry" }

func (e *SchemaRegistryEntry) SetSchema(schema *GeneratedSchema) error {
	raw, err := json.Marshal(schema)
	if err != nil {
		return err
	}
	e.SchemaDefinition = datatypes.JSON(raw)
	return nil
}

func (e *SchemaRegistryEntry) DecodeSchema() (*GeneratedSchema, error) {
	var out GeneratedSchema
	if err := json.Unmarshal(e.SchemaDefinition, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Recommendation values returned by the similarity search.
const (
	RecommendUseExisting = "use_existing"
	RecommendGenerateNew = "generate_new"
)

// SimilarSchema is one ranked result of a registry similarity search.
type SimilarSchema struct {
	Entry           *SchemaRegistryEntry `json:"entry"`
	SimilarityScore float64              `json:"similarity_score"`
	Recommendation  string               `json:"recommendation"`
	Reason          string               `json:"reason"`
}
