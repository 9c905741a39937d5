package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/heraerp/hera-dev-sub007/internal/logger"
	"github.com/heraerp/hera-dev-sub007/internal/repos"
	"github.com/heraerp/hera-dev-sub007/internal/types"
)

// similarityReuseThreshold is the hard cutoff above which a consumer must
// reuse the existing schema instead of generating a new one. Fixed for
// reproducibility, not a tunable.
const similarityReuseThreshold = 0.8

// SchemaSimilarityService is the append-only schema registry plus the
// similarity search over it. All operations are organization-scoped.
type SchemaSimilarityService interface {
	RegisterSchema(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, schema *types.GeneratedSchema, aiGenerated bool) (*types.SchemaRegistryEntry, error)
	FindSimilarSchemas(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, requirement string, entityTypeHint string) ([]types.SimilarSchema, error)
	GetSchemaByType(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, entityType string) (*types.GeneratedSchema, error)
}

type schemaSimilarityService struct {
	db           *gorm.DB
	log          *logger.Logger
	registryRepo repos.SchemaRegistryRepo
}

func NewSchemaSimilarityService(db *gorm.DB, baseLog *logger.Logger, registryRepo repos.SchemaRegistryRepo) SchemaSimilarityService {
	return &schemaSimilarityService{
		db:           db,
		log:          baseLog.With("service", "SchemaSimilarityService"),
		registryRepo: registryRepo,
	}
}

func (s *schemaSimilarityService) RegisterSchema(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, schema *types.GeneratedSchema, aiGenerated bool) (*types.SchemaRegistryEntry, error) {
	entry := &types.SchemaRegistryEntry{
		ID:             uuid.New(),
		OrganizationID: orgID,
		EntityType:     schema.EntityType,
		EntityName:     schema.Name,
		AIGenerated:    aiGenerated,
	}
	if err := entry.SetSchema(schema); err != nil {
		return nil, fmt.Errorf("encode schema definition: %w", err)
	}
	if _, err := s.registryRepo.Create(ctx, tx, []*types.SchemaRegistryEntry{entry}); err != nil {
		return nil, fmt.Errorf("register schema: %w", err)
	}
	s.log.Info("Registered schema", "organization_id", orgID, "entity_type", entry.EntityType, "ai_generated", aiGenerated)
	return entry, nil
}

func (s *schemaSimilarityService) FindSimilarSchemas(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, requirement string, entityTypeHint string) ([]types.SimilarSchema, error) {
	entries, err := s.registryRepo.ListByOrganizationID(ctx, tx, orgID)
	if err != nil {
		return nil, fmt.Errorf("list registered schemas: %w", err)
	}

	results := make([]types.SimilarSchema, 0, len(entries))
	for _, entry := range entries {
		score := similarityScore(requirement, entityTypeHint, entry)
		results = append(results, types.SimilarSchema{
			Entry:           entry,
			SimilarityScore: score,
			Recommendation:  recommendForScore(score),
			Reason:          similarityReason(score, entry),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SimilarityScore > results[j].SimilarityScore
	})
	return results, nil
}

func (s *schemaSimilarityService) GetSchemaByType(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, entityType string) (*types.GeneratedSchema, error) {
	entries, err := s.registryRepo.GetByEntityTypes(ctx, tx, orgID, []string{entityType})
	if err != nil {
		return nil, fmt.Errorf("lookup schema by type: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrSchemaNotFound
	}
	return entries[0].DecodeSchema()
}

// similarityScore compares a requirement against one registered schema.
// The score is the fraction of requirement tokens that loosely match the
// registered schema's vocabulary (entity type, entity name, and field
// names, split on underscores). An exact entity-type-hint match scores at
// least 0.9, which always clears the reuse threshold on its own.
func similarityScore(requirement string, entityTypeHint string, entry *types.SchemaRegistryEntry) float64 {
	vocab := schemaVocabulary(entry)
	tokens := strings.Fields(strings.ToLower(requirement))

	overlap := 0.0
	if len(tokens) > 0 {
		matched := 0
		for _, token := range tokens {
			for _, word := range vocab {
				if strings.Contains(token, word) || strings.Contains(word, token) {
					matched++
					break
				}
			}
		}
		overlap = float64(matched) / float64(len(tokens))
	}

	if entityTypeHint != "" && strings.EqualFold(entityTypeHint, entry.EntityType) {
		if overlap < 0.9 {
			return 0.9
		}
	}
	return overlap
}

func schemaVocabulary(entry *types.SchemaRegistryEntry) []string {
	var vocab []string
	add := func(raw string) {
		for _, part := range strings.Split(strings.ToLower(raw), "_") {
			if part != "" {
				vocab = append(vocab, part)
			}
		}
	}
	add(entry.EntityType)
	add(entry.EntityName)
	if schema, err := entry.DecodeSchema(); err == nil {
		for _, f := range schema.Fields {
			add(f.Name)
		}
	}
	return vocab
}

func recommendForScore(score float64) string {
	if score > similarityReuseThreshold {
		return types.RecommendUseExisting
	}
	return types.RecommendGenerateNew
}

func similarityReason(score float64, entry *types.SchemaRegistryEntry) string {
	if score > similarityReuseThreshold {
		return fmt.Sprintf("Registered %q schema covers this requirement (similarity %.2f); reuse it instead of generating a near-duplicate", entry.EntityType, score)
	}
	return fmt.Sprintf("Registered %q schema overlaps too little (similarity %.2f); generate a new schema", entry.EntityType, score)
}
