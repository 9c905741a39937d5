package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/heraerp/hera-dev-sub007/internal/logger"
	"github.com/heraerp/hera-dev-sub007/internal/types"
)

// TargetTable describes one universal-schema table in the export artifact
// so the downloadable config is self-describing.
type TargetTable struct {
	Table      types.HeraTable `json:"table"`
	Purpose    string          `json:"purpose"`
	KeyColumns []string        `json:"key_columns"`
}

// ExportArtifact is the portable serialization of a mapping session. Pure
// in-memory data; no network call is involved in producing it.
type ExportArtifact struct {
	Session               *types.MappingSession `json:"session"`
	LegacyData            []types.LegacyEntity  `json:"legacy_data"`
	Mappings              []types.HeraMapping   `json:"mappings"`
	TargetSchemaReference []TargetTable         `json:"target_schema_reference"`
	ExportTimestamp       string                `json:"export_timestamp"`
}

// ExportService serializes a mapping session into a downloadable JSON
// artifact named after the session.
type ExportService interface {
	BuildArtifact(session *types.MappingSession) (*ExportArtifact, error)
	Marshal(artifact *ExportArtifact) ([]byte, string, error)
}

type exportService struct {
	log *logger.Logger
}

func NewExportService(baseLog *logger.Logger) ExportService {
	return &exportService{log: baseLog.With("service", "ExportService")}
}

func (s *exportService) BuildArtifact(session *types.MappingSession) (*ExportArtifact, error) {
	entities, err := session.DecodeEntities()
	if err != nil {
		return nil, fmt.Errorf("decode session entities: %w", err)
	}
	mappings, err := session.DecodeMappings()
	if err != nil {
		return nil, fmt.Errorf("decode session mappings: %w", err)
	}

	return &ExportArtifact{
		Session:               session,
		LegacyData:            entities,
		Mappings:              mappings,
		TargetSchemaReference: targetSchemaReference(),
		ExportTimestamp:       time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (s *exportService) Marshal(artifact *ExportArtifact) ([]byte, string, error) {
	raw, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("serialize export artifact: %w", err)
	}
	filename := fmt.Sprintf("hera-mapping-%s.json", slugify(artifact.Session.Name))
	return raw, filename, nil
}

func targetSchemaReference() []TargetTable {
	return []TargetTable{
		{
			Table:      types.TableEntities,
			Purpose:    "Universal store for things (restaurants, customers, products) with a generated id, a type tag and organization scope; no relational foreign keys",
			KeyColumns: []string{"id", "organization_id", "entity_type"},
		},
		{
			Table:      types.TableDynamicData,
			Purpose:    "Key/typed-value store attaching scalar attributes to an entity without schema migration",
			KeyColumns: []string{"entity_id", "field_name", "field_type"},
		},
		{
			Table:      types.TableMetadata,
			Purpose:    "Key/JSON-value store for structured or semi-structured attributes (location, pricing, contact info, free text)",
			KeyColumns: []string{"entity_id", "metadata_type", "metadata_category"},
		},
		{
			Table:      types.TableTransactions,
			Purpose:    "Universal journal of business transactions; debits and credits must balance before any write",
			KeyColumns: []string{"id", "organization_id", "transaction_type"},
		},
	}
}
