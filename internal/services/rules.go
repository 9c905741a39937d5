package services

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/heraerp/hera-dev-sub007/internal/logger"
	"github.com/heraerp/hera-dev-sub007/internal/types"
)

// MappingRuleService proposes, per legacy field, a target in the universal
// schema. The engine is an ordered decision list: the first matching rule
// wins, and every field gets exactly one mapping (there is a catch-all).
// Confidence values are fixed constants per rule.
type MappingRuleService interface {
	SuggestMapping(entity types.LegacyEntity, field types.LegacyField) types.HeraMapping
	GenerateMappings(ctx context.Context, entities []types.LegacyEntity) ([]types.HeraMapping, error)
}

type mappingRuleService struct {
	log   *logger.Logger
	rules []mappingRule
}

func NewMappingRuleService(baseLog *logger.Logger) MappingRuleService {
	return &mappingRuleService{
		log:   baseLog.With("service", "MappingRuleService"),
		rules: mappingRules(),
	}
}

// ruleInput carries the context a rule predicate sees for one field.
type ruleInput struct {
	entity     types.LegacyEntity
	field      types.LegacyField
	entityType string // singular form of the entity name
	name       string // lowercased field name
}

type mappingRule struct {
	name    string
	matches func(in ruleInput) bool
	build   func(in ruleInput) types.HeraMapping
}

func (s *mappingRuleService) SuggestMapping(entity types.LegacyEntity, field types.LegacyField) types.HeraMapping {
	in := ruleInput{
		entity:     entity,
		field:      field,
		entityType: singularize(entity.Name),
		name:       strings.ToLower(field.Name),
	}
	for _, rule := range s.rules {
		if rule.matches(in) {
			mapping := rule.build(in)
			mapping.LegacyField = entity.Name + "." + field.Name
			return mapping
		}
	}
	// Unreachable: the last rule is a catch-all.
	return types.HeraMapping{
		LegacyField: entity.Name + "." + field.Name,
		HeraTable:   types.TableDynamicData,
		HeraField:   field.Name,
		MappingType: types.MappingDynamic,
		FieldType:   field.Type,
		Confidence:  0.70,
	}
}

// GenerateMappings maps every field of every entity. Entities run in a
// bounded group because rules are pure and stateless; results are written
// by index so the output order stays deterministic.
func (s *mappingRuleService) GenerateMappings(ctx context.Context, entities []types.LegacyEntity) ([]types.HeraMapping, error) {
	perEntity := make([][]types.HeraMapping, len(entities))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i := range entities {
		i := i
		g.Go(func() error {
			entity := entities[i]
			mappings := make([]types.HeraMapping, 0, len(entity.Fields))
			for _, field := range entity.Fields {
				mappings = append(mappings, s.SuggestMapping(entity, field))
			}
			perEntity[i] = mappings
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []types.HeraMapping
	for _, mappings := range perEntity {
		out = append(out, mappings...)
	}
	s.log.Debug("Generated mappings", "entities", len(entities), "mappings", len(out))
	return out, nil
}

// mappingRules returns the decision list in priority order. Do not reorder:
// earlier rules deliberately shadow later ones (e.g. the primary-id rule
// must fire before the foreign-key rule).
func mappingRules() []mappingRule {
	return []mappingRule{
		{
			name: "tenant_discriminator",
			matches: func(in ruleInput) bool {
				return in.name == "organization_id"
			},
			build: func(in ruleInput) types.HeraMapping {
				return types.HeraMapping{
					HeraTable:   types.TableEntities,
					HeraField:   "organization_id",
					MappingType: types.MappingDirect,
					Confidence:  1.0,
					Notes:       "Organization discriminator: the one mandatory field in the universal schema; every row is isolated by it",
				}
			},
		},
		{
			name: "primary_identifier",
			matches: func(in ruleInput) bool {
				return in.name == "id" || in.name == in.entityType+"_id"
			},
			build: func(in ruleInput) types.HeraMapping {
				return types.HeraMapping{
					HeraTable:     types.TableEntities,
					HeraField:     "id",
					MappingType:   types.MappingTransform,
					TransformRule: "Generate new surrogate entity id; retain legacy id in core_dynamic_data for traceability",
					Confidence:    0.98,
					EntityType:    in.entityType,
					Notes:         "Primary identifier of the record; legacy value is preserved as a dynamic attribute, not reused as the key",
				}
			},
		},
		{
			name: "foreign_key_reference",
			matches: func(in ruleInput) bool {
				return strings.HasSuffix(in.name, "_id")
			},
			build: func(in ruleInput) types.HeraMapping {
				referenced := strings.TrimSuffix(in.name, "_id")
				return types.HeraMapping{
					HeraTable:        types.TableMetadata,
					HeraField:        in.name,
					MappingType:      types.MappingMetadata,
					MetadataType:     "entity_reference",
					MetadataCategory: "relationship",
					TransformRule:    fmt.Sprintf("Store referenced %s id as metadata payload; resolve via manual joins scoped by organization_id only", referenced),
					Confidence:       0.95,
					Notes:            "The universal schema keeps no relational foreign keys; cross-entity relationships are resolved at query time by organization scope",
				}
			},
		},
		{
			name: "entity_name",
			matches: func(in ruleInput) bool {
				return in.name == "name" || in.name == "title" || in.name == "label"
			},
			build: func(in ruleInput) types.HeraMapping {
				return types.HeraMapping{
					HeraTable:   types.TableEntities,
					HeraField:   in.entityType + "_name",
					MappingType: types.MappingDirect,
					Confidence:  0.98,
					EntityType:  in.entityType,
					Notes:       "Display name of the entity, stored in the type-specific naming column",
				}
			},
		},
		{
			name: "entity_code",
			matches: func(in ruleInput) bool {
				if strings.Contains(in.name, "postal") || strings.Contains(in.name, "zip") {
					return false
				}
				return strings.Contains(in.name, "code") || strings.Contains(in.name, "sku") ||
					in.name == "ref" || in.name == "reference"
			},
			build: func(in ruleInput) types.HeraMapping {
				return types.HeraMapping{
					HeraTable:     types.TableEntities,
					HeraField:     in.entityType + "_code",
					MappingType:   types.MappingTransform,
					TransformRule: "Normalize to an uppercase business code in the type-specific code column",
					Confidence:    0.95,
					EntityType:    in.entityType,
					Notes:         "Business code / SKU / reference identifier of the entity",
				}
			},
		},
		{
			name: "scalar_attribute",
			matches: func(in ruleInput) bool {
				if in.field.Type == types.FieldTypeBoolean {
					// Activation flags are claimed by the active_flag rule below.
					return !containsAny(in.name, "active", "enabled") && in.name != "status"
				}
				return containsAny(in.name, "quantity", "qty", "weight", "size", "dimension", "capacity")
			},
			build: func(in ruleInput) types.HeraMapping {
				return types.HeraMapping{
					HeraTable:   types.TableDynamicData,
					HeraField:   in.field.Name,
					MappingType: types.MappingDynamic,
					FieldType:   inferDynamicFieldType(in.name, in.field.Type),
					Confidence:  0.95,
					EntityType:  in.entityType,
					Notes:       "Simple scalar attribute stored as a typed key/value pair; no schema migration needed",
				}
			},
		},
		{
			name: "rich_text_content",
			matches: func(in ruleInput) bool {
				return containsAny(in.name, "description", "details", "ingredients", "content", "summary")
			},
			build: func(in ruleInput) types.HeraMapping {
				return types.HeraMapping{
					HeraTable:        types.TableMetadata,
					HeraField:        in.field.Name,
					MappingType:      types.MappingMetadata,
					MetadataType:     "text_content",
					MetadataCategory: "content",
					TransformRule:    "Store as structured text flagged searchable",
					Confidence:       0.90,
					Notes:            "Rich free text kept in metadata so it stays queryable without widening the entity table",
				}
			},
		},
		{
			name: "contact_or_configuration",
			matches: func(in ruleInput) bool {
				return containsAny(in.name, "phone", "email", "contact", "website", "rating",
					"settings", "config", "preferences", "social")
			},
			build: func(in ruleInput) types.HeraMapping {
				category := "contact_info"
				if containsAny(in.name, "settings", "config", "preferences") {
					category = "configuration"
				}
				return types.HeraMapping{
					HeraTable:        types.TableMetadata,
					HeraField:        in.field.Name,
					MappingType:      types.MappingMetadata,
					MetadataType:     "structured_value",
					MetadataCategory: category,
					Confidence:       0.90,
					Notes:            "Contact or configuration detail grouped under a metadata category",
				}
			},
		},
		{
			name: "location_component",
			matches: func(in ruleInput) bool {
				return containsAny(in.name, "street", "address", "city", "state", "country",
					"postal", "zip", "district")
			},
			build: func(in ruleInput) types.HeraMapping {
				return types.HeraMapping{
					HeraTable:        types.TableMetadata,
					HeraField:        in.field.Name,
					MappingType:      types.MappingMetadata,
					MetadataType:     "location_component",
					MetadataCategory: "location",
					TransformRule:    "Group location components into a single geographical metadata document",
					Confidence:       0.92,
					Notes:            "Part of the entity's geographical profile",
				}
			},
		},
		{
			name: "pricing",
			matches: func(in ruleInput) bool {
				return containsAny(in.name, "price", "cost", "amount")
			},
			build: func(in ruleInput) types.HeraMapping {
				return types.HeraMapping{
					HeraTable:        types.TableMetadata,
					HeraField:        in.field.Name,
					MappingType:      types.MappingMetadata,
					MetadataType:     "monetary_value",
					MetadataCategory: "financial",
					TransformRule:    "Store as numeric value with auto-detected currency",
					Confidence:       0.95,
					Notes:            "Pricing detail under the financial metadata category",
				}
			},
		},
		{
			name: "active_flag",
			matches: func(in ruleInput) bool {
				return containsAny(in.name, "active", "enabled") || in.name == "status"
			},
			build: func(in ruleInput) types.HeraMapping {
				return types.HeraMapping{
					HeraTable:   types.TableEntities,
					HeraField:   "is_active",
					MappingType: types.MappingDirect,
					Confidence:  0.95,
					Notes:       "Activation state of the entity row",
				}
			},
		},
		{
			name: "timestamps",
			matches: func(in ruleInput) bool {
				if !containsAny(in.name, "created", "added", "updated", "modified") {
					return false
				}
				return in.field.Type == types.FieldTypeDate || containsAny(in.name, "date", "time", "at")
			},
			build: func(in ruleInput) types.HeraMapping {
				target := "created_at"
				if containsAny(in.name, "updated", "modified") {
					target = "updated_at"
				}
				return types.HeraMapping{
					HeraTable:   types.TableEntities,
					HeraField:   target,
					MappingType: types.MappingDirect,
					Confidence:  0.95,
					Notes:       "Lifecycle timestamp of the entity row",
				}
			},
		},
		{
			name: "complex_fallback",
			matches: func(in ruleInput) bool {
				return in.field.Type == types.FieldTypeJSON ||
					strings.Contains(in.name, "info") ||
					len(in.name) > 20
			},
			build: func(in ruleInput) types.HeraMapping {
				return types.HeraMapping{
					HeraTable:        types.TableMetadata,
					HeraField:        in.field.Name,
					MappingType:      types.MappingMetadata,
					MetadataType:     "custom_attribute",
					MetadataCategory: "custom",
					Confidence:       0.75,
					Notes:            "Complex or nested value parked as a custom metadata attribute for later refinement",
				}
			},
		},
		{
			name: "default_dynamic",
			matches: func(in ruleInput) bool {
				return true
			},
			build: func(in ruleInput) types.HeraMapping {
				return types.HeraMapping{
					HeraTable:   types.TableDynamicData,
					HeraField:   in.field.Name,
					MappingType: types.MappingDynamic,
					FieldType:   inferDynamicFieldType(in.name, in.field.Type),
					Confidence:  0.70,
					EntityType:  in.entityType,
					Notes:       "No specific rule matched; stored as a generic typed dynamic attribute",
				}
			},
		},
	}
}

// inferDynamicFieldType picks the stored value type for a dynamic attribute
// from the field's inferred type plus name heuristics.
func inferDynamicFieldType(name string, inferred types.FieldType) types.FieldType {
	switch {
	case inferred == types.FieldTypeNumber || containsAny(name, "price", "rating", "count", "amount", "qty", "quantity"):
		return types.FieldTypeNumber
	case inferred == types.FieldTypeBoolean || containsAny(name, "delivery", "available", "active", "enabled") || strings.HasPrefix(name, "is_"):
		return types.FieldTypeBoolean
	case inferred == types.FieldTypeDate || containsAny(name, "date", "time", "created", "updated"):
		return types.FieldTypeDate
	case inferred == types.FieldTypeJSON || containsAny(name, "settings", "config", "preferences"):
		return types.FieldTypeJSON
	default:
		return types.FieldTypeText
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// singularize derives the entity type label from a collection name:
// "menu_items" -> "menu_item". Naive trailing-s trim, which is what the
// universal schema's naming convention expects.
func singularize(name string) string {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, "ss") {
		return lower
	}
	if strings.HasSuffix(lower, "ies") {
		return strings.TrimSuffix(lower, "ies") + "y"
	}
	return strings.TrimSuffix(lower, "s")
}
