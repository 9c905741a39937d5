package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	redisclient "github.com/heraerp/hera-dev-sub007/internal/clients/redis"
	"github.com/heraerp/hera-dev-sub007/internal/logger"
	"github.com/heraerp/hera-dev-sub007/internal/types"
)

// aiConfidenceThreshold is the minimum aggregate confidence an AI-returned
// schema must carry to be accepted before trying the next backend.
const aiConfidenceThreshold = 0.7

// aiReviewAdvisory is appended to every accepted AI schema's insights.
const aiReviewAdvisory = "Schema generated with AI assistance; review field definitions with a human before activating"

// Schema sources reported alongside a generation result.
const (
	SourceExisting  = "existing"
	SourceRuleBased = "rule_based"
)

type GenerateSchemaRequest struct {
	Requirement    string
	EntityTypeHint string
	AIEnabled      bool
}

type GenerateSchemaResult struct {
	Schema         *types.GeneratedSchema `json:"schema"`
	Source         string                 `json:"source"`
	SimilarSchemas []types.SimilarSchema  `json:"similar_schemas,omitempty"`
}

// SchemaGenerationService runs the sequential generation chain: similarity
// short-circuit, then each AI backend in priority order, then the
// deterministic rule-based fallback. It always returns a schema; backend
// failures are logged and swallowed.
type SchemaGenerationService interface {
	GenerateSchema(ctx context.Context, orgID uuid.UUID, req GenerateSchemaRequest) (*GenerateSchemaResult, error)
}

type schemaGenerationService struct {
	log            *logger.Logger
	classifier     DomainClassifierService
	similarity     SchemaSimilarityService
	backends       []AIBackend
	backendTimeout time.Duration
	bus            redisclient.EventBus
}

func NewSchemaGenerationService(
	baseLog *logger.Logger,
	classifier DomainClassifierService,
	similarity SchemaSimilarityService,
	backends []AIBackend,
	backendTimeout time.Duration,
	bus redisclient.EventBus,
) SchemaGenerationService {
	if backendTimeout <= 0 {
		backendTimeout = 60 * time.Second
	}
	return &schemaGenerationService{
		log:            baseLog.With("service", "SchemaGenerationService"),
		classifier:     classifier,
		similarity:     similarity,
		backends:       backends,
		backendTimeout: backendTimeout,
		bus:            bus,
	}
}

func (s *schemaGenerationService) GenerateSchema(ctx context.Context, orgID uuid.UUID, req GenerateSchemaRequest) (*GenerateSchemaResult, error) {
	similar, err := s.similarity.FindSimilarSchemas(ctx, nil, orgID, req.Requirement, req.EntityTypeHint)
	if err != nil {
		// A registry read failure must not block generation.
		s.log.Warn("Similarity search failed, continuing without registry context", "error", err)
		similar = nil
	}

	// Reuse short-circuit: a strong match returns the stored schema verbatim
	// without touching any AI backend.
	if len(similar) > 0 &&
		similar[0].Recommendation == types.RecommendUseExisting &&
		similar[0].SimilarityScore > similarityReuseThreshold {
		existing, decodeErr := similar[0].Entry.DecodeSchema()
		if decodeErr == nil {
			s.log.Info("Reusing registered schema",
				"organization_id", orgID,
				"entity_type", similar[0].Entry.EntityType,
				"similarity", similar[0].SimilarityScore,
			)
			return &GenerateSchemaResult{Schema: existing, Source: SourceExisting, SimilarSchemas: similar}, nil
		}
		s.log.Warn("Registered schema could not be decoded, generating fresh", "error", decodeErr)
	}

	if req.AIEnabled {
		augmented := augmentRequirement(req.Requirement, similar)
		for _, backend := range s.backends {
			schema, attemptErr := s.attemptBackend(ctx, backend, augmented, req.EntityTypeHint)
			if attemptErr != nil {
				s.log.Warn("AI backend attempt failed", "backend", backend.Name(), "error", attemptErr)
				continue
			}

			normalized := s.normalizeSchema(schema, req.Requirement, backend.Name())
			if normalized.Confidence <= aiConfidenceThreshold {
				s.log.Warn("AI schema below confidence threshold",
					"backend", backend.Name(),
					"confidence", normalized.Confidence,
					"threshold", aiConfidenceThreshold,
				)
				continue
			}

			// Best-effort registration: the schema is returned even when it
			// cannot be persisted for future reuse.
			if _, regErr := s.similarity.RegisterSchema(ctx, nil, orgID, normalized, true); regErr != nil {
				s.log.Warn("Failed to register generated schema", "backend", backend.Name(), "error", regErr)
			}
			s.publish(ctx, orgID, normalized, backend.Name())
			return &GenerateSchemaResult{Schema: normalized, Source: backend.Name(), SimilarSchemas: similar}, nil
		}
	}

	// Rule-based fallback is deterministic and reproducible on demand, so it
	// is never written back to the registry.
	schema := s.ruleBasedSchema(req.Requirement, req.EntityTypeHint)
	return &GenerateSchemaResult{Schema: schema, Source: SourceRuleBased, SimilarSchemas: similar}, nil
}

func (s *schemaGenerationService) attemptBackend(ctx context.Context, backend AIBackend, requirement, entityTypeHint string) (*types.GeneratedSchema, error) {
	// A timed-out attempt is treated exactly like a failed one.
	bctx, cancel := context.WithTimeout(ctx, s.backendTimeout)
	defer cancel()
	return backend.GenerateSchema(bctx, requirement, entityTypeHint)
}

// augmentRequirement appends a textual summary of the organization's
// registered schemas so backends can stay consistent with what exists.
func augmentRequirement(requirement string, similar []types.SimilarSchema) string {
	if len(similar) == 0 {
		return requirement
	}
	var sb strings.Builder
	sb.WriteString(requirement)
	sb.WriteString("\n\nSchemas already registered for this organization:\n")
	for _, match := range similar {
		sb.WriteString(fmt.Sprintf("- %s (%q)\n", match.Entry.EntityType, match.Entry.EntityName))
	}
	return sb.String()
}

// normalizeSchema repairs any structural gaps in an AI-returned schema so
// downstream consumers always see a complete envelope.
func (s *schemaGenerationService) normalizeSchema(schema *types.GeneratedSchema, requirement, backendName string) *types.GeneratedSchema {
	now := time.Now().UTC()

	if schema.EntityType == "" {
		schema.EntityType = slugify(schema.Name)
	}
	if schema.Name == "" {
		schema.Name = schema.EntityType
	}
	if schema.Domain.Name == "" {
		schema.Domain = s.classifier.Classify(requirement)
	}
	if schema.Fields == nil {
		schema.Fields = []types.GeneratedField{}
	}
	if schema.Suggestions == nil {
		schema.Suggestions = []string{}
	}
	if schema.BusinessRules == nil {
		schema.BusinessRules = []string{}
	}
	if schema.ValidationRules == nil {
		schema.ValidationRules = map[string]types.FieldValidation{}
	}
	for _, f := range schema.Fields {
		if _, ok := schema.ValidationRules[f.Name]; !ok && f.Required {
			schema.ValidationRules[f.Name] = types.FieldValidation{Required: true}
		}
	}

	schema.Fields = ensureSystemFields(schema.Fields)
	schema.Confidence = clamp01(schema.Confidence)

	schema.Metadata.GeneratedBy = backendName
	schema.Metadata.GeneratedAt = now
	schema.Metadata.AIInsights = append(schema.Metadata.AIInsights, aiReviewAdvisory)

	if schema.AuditTrail.Timestamp.IsZero() {
		schema.AuditTrail.Timestamp = now
	}
	if schema.AuditTrail.OriginalRequirement == "" {
		schema.AuditTrail.OriginalRequirement = requirement
	}
	return schema
}

// ensureSystemFields force-inserts the reserved fields at the front of the
// field list when a response omitted them. They are never AI-generated and
// always carry full confidence.
func ensureSystemFields(fields []types.GeneratedField) []types.GeneratedField {
	reserved := []types.GeneratedField{
		{Name: "id", Type: types.FieldTypeText, Required: true, Label: "ID", Source: "system", Confidence: 1.0},
		{Name: "created_at", Type: types.FieldTypeDate, Required: true, Label: "Created At", Source: "system", Confidence: 1.0},
		{Name: "updated_at", Type: types.FieldTypeDate, Required: true, Label: "Updated At", Source: "system", Confidence: 1.0},
	}

	present := map[string]bool{}
	for _, f := range fields {
		present[strings.ToLower(f.Name)] = true
	}

	var front []types.GeneratedField
	for _, rf := range reserved {
		if !present[rf.Name] {
			front = append(front, rf)
		}
	}
	return append(front, fields...)
}

// ruleBasedSchema builds a schema from the domain classifier's field
// templates. Pure and deterministic; used when AI is disabled or every
// backend failed or scored too low.
func (s *schemaGenerationService) ruleBasedSchema(requirement, entityTypeHint string) *types.GeneratedSchema {
	now := time.Now().UTC()

	domain := s.classifier.Classify(requirement)
	if domain.Confidence == 0 {
		domain = GeneralDomain()
	}

	entityType := entityTypeHint
	if entityType == "" {
		entityType = slugify(domain.Name + "_entity")
	}

	fields := make([]types.GeneratedField, 0, len(domain.CommonFields))
	validation := map[string]types.FieldValidation{}
	for _, tmpl := range domain.CommonFields {
		fields = append(fields, types.GeneratedField{
			Name:       tmpl.Name,
			Type:       tmpl.Type,
			Required:   tmpl.Required,
			Label:      tmpl.Label,
			Source:     SourceRuleBased,
			Confidence: 0.8,
		})
		if tmpl.Required {
			validation[tmpl.Name] = types.FieldValidation{Required: true}
		}
	}

	return &types.GeneratedSchema{
		EntityType: entityType,
		Name:       titleCase(entityType),
		Domain:     domain,
		Fields:     ensureSystemFields(fields),
		Metadata: types.SchemaMetadata{
			GeneratedBy: SourceRuleBased,
			GeneratedAt: now,
		},
		Confidence: 0.6 + 0.3*domain.Confidence,
		Suggestions: []string{
			"Review the domain-template fields and remove any that do not apply",
		},
		ValidationRules: validation,
		BusinessRules:   []string{},
		AuditTrail: types.SchemaAuditTrail{
			Timestamp:           now,
			OriginalRequirement: requirement,
			Analysis:            fmt.Sprintf("rule-based generation from %s domain templates", domain.Name),
		},
	}
}

func (s *schemaGenerationService) publish(ctx context.Context, orgID uuid.UUID, schema *types.GeneratedSchema, source string) {
	if s.bus == nil {
		return
	}
	event := redisclient.Event{
		Type:           redisclient.EventSchemaGenerated,
		OrganizationID: orgID,
		Payload: map[string]any{
			"entity_type": schema.EntityType,
			"source":      source,
			"fields":      len(schema.Fields),
		},
	}
	if err := s.bus.Publish(ctx, event); err != nil {
		s.log.Warn("Failed to publish schema event", "error", err)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func titleCase(snake string) string {
	parts := strings.Split(snake, "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	var sb strings.Builder
	for _, r := range s {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return "entity"
	}
	return sb.String()
}
