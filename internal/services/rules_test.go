package services

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/heraerp/hera-dev-sub007/internal/logger"
	"github.com/heraerp/hera-dev-sub007/internal/types"
)

func newRuleEngine(t *testing.T) MappingRuleService {
	t.Helper()
	return NewMappingRuleService(logger.NewNop())
}

func suggest(t *testing.T, engine MappingRuleService, entityName, fieldName string, fieldType types.FieldType) types.HeraMapping {
	t.Helper()
	entity := types.LegacyEntity{Name: entityName}
	field := types.LegacyField{Name: fieldName, Type: fieldType}
	return engine.SuggestMapping(entity, field)
}

func TestTenantDiscriminatorConfidenceExactlyOne(t *testing.T) {
	engine := newRuleEngine(t)

	m := suggest(t, engine, "restaurants", "organization_id", types.FieldTypeText)
	if m.HeraTable != types.TableEntities || m.HeraField != "organization_id" {
		t.Fatalf("tenant field mapped to %s.%s", m.HeraTable, m.HeraField)
	}
	if m.Confidence != 1.0 {
		t.Fatalf("tenant mapping confidence: got %v, want exactly 1.0", m.Confidence)
	}
	if m.MappingType != types.MappingDirect {
		t.Fatalf("tenant mapping type: got %s", m.MappingType)
	}
}

func TestPrimaryIdentifierMapping(t *testing.T) {
	engine := newRuleEngine(t)

	for _, name := range []string{"id", "restaurant_id"} {
		m := suggest(t, engine, "restaurants", name, types.FieldTypeNumber)
		if m.HeraTable != types.TableEntities || m.HeraField != "id" {
			t.Fatalf("field %s: mapped to %s.%s", name, m.HeraTable, m.HeraField)
		}
		if m.MappingType != types.MappingTransform {
			t.Fatalf("field %s: mapping type %s", name, m.MappingType)
		}
		if m.Confidence != 0.98 {
			t.Fatalf("field %s: confidence %v", name, m.Confidence)
		}
		if !strings.Contains(m.TransformRule, "surrogate") {
			t.Fatalf("field %s: transform rule missing surrogate id note: %q", name, m.TransformRule)
		}
	}
}

func TestForeignKeyNeverBecomesRelationalReference(t *testing.T) {
	engine := newRuleEngine(t)

	// restaurant_id inside menu_sections is foreign-key shaped, not the
	// section's own key: it must land in metadata, never in a reference.
	m := suggest(t, engine, "menu_sections", "restaurant_id", types.FieldTypeNumber)
	if m.HeraTable != types.TableMetadata {
		t.Fatalf("foreign key mapped to %s, want %s", m.HeraTable, types.TableMetadata)
	}
	if m.MappingType != types.MappingMetadata {
		t.Fatalf("foreign key mapping type: got %s", m.MappingType)
	}
	if m.Confidence != 0.95 {
		t.Fatalf("foreign key confidence: got %v", m.Confidence)
	}
	if !strings.Contains(m.TransformRule, "manual joins") || !strings.Contains(m.TransformRule, "organization_id") {
		t.Fatalf("transform rule must mention manual joins by organization scope: %q", m.TransformRule)
	}
}

func TestNamingAndCodeConventions(t *testing.T) {
	engine := newRuleEngine(t)

	m := suggest(t, engine, "restaurants", "name", types.FieldTypeText)
	if m.HeraField != "restaurant_name" || m.Confidence != 0.98 {
		t.Fatalf("name mapping: %s (%v)", m.HeraField, m.Confidence)
	}

	m = suggest(t, engine, "menu_items", "sku", types.FieldTypeText)
	if m.HeraField != "menu_item_code" || m.Confidence != 0.95 {
		t.Fatalf("sku mapping: %s (%v)", m.HeraField, m.Confidence)
	}
	if m.MappingType != types.MappingTransform {
		t.Fatalf("sku mapping type: %s", m.MappingType)
	}
}

func TestScalarAndContactRules(t *testing.T) {
	engine := newRuleEngine(t)

	m := suggest(t, engine, "restaurants", "delivery", types.FieldTypeBoolean)
	if m.HeraTable != types.TableDynamicData || m.MappingType != types.MappingDynamic {
		t.Fatalf("delivery mapped to %s/%s", m.HeraTable, m.MappingType)
	}
	if m.FieldType != types.FieldTypeBoolean || m.Confidence != 0.95 {
		t.Fatalf("delivery stored type %s confidence %v", m.FieldType, m.Confidence)
	}

	// rating is not a price field: it lands in metadata via the contact/
	// rating rule at 0.90.
	m = suggest(t, engine, "restaurants", "rating", types.FieldTypeNumber)
	if m.HeraTable != types.TableMetadata || m.Confidence != 0.90 {
		t.Fatalf("rating mapped to %s (%v)", m.HeraTable, m.Confidence)
	}

	m = suggest(t, engine, "restaurants", "phone", types.FieldTypeText)
	if m.HeraTable != types.TableMetadata || m.MetadataCategory != "contact_info" {
		t.Fatalf("phone mapped to %s category %s", m.HeraTable, m.MetadataCategory)
	}

	m = suggest(t, engine, "restaurants", "settings", types.FieldTypeJSON)
	if m.MetadataCategory != "configuration" {
		t.Fatalf("settings category: %s", m.MetadataCategory)
	}
}

func TestLocationPricingAndLifecycleRules(t *testing.T) {
	engine := newRuleEngine(t)

	m := suggest(t, engine, "restaurants", "postal_code", types.FieldTypeText)
	if m.HeraTable != types.TableMetadata || m.MetadataCategory != "location" || m.Confidence != 0.92 {
		t.Fatalf("postal_code mapped to %s category %s (%v)", m.HeraTable, m.MetadataCategory, m.Confidence)
	}

	m = suggest(t, engine, "menu_items", "price", types.FieldTypeNumber)
	if m.MetadataCategory != "financial" || m.Confidence != 0.95 {
		t.Fatalf("price mapped to category %s (%v)", m.MetadataCategory, m.Confidence)
	}
	if !strings.Contains(m.TransformRule, "currency") {
		t.Fatalf("price transform rule missing currency note: %q", m.TransformRule)
	}

	m = suggest(t, engine, "restaurants", "active", types.FieldTypeBoolean)
	if m.HeraField != "is_active" || m.Confidence != 0.95 {
		t.Fatalf("active mapped to %s (%v)", m.HeraField, m.Confidence)
	}

	m = suggest(t, engine, "restaurants", "created_at", types.FieldTypeDate)
	if m.HeraField != "created_at" {
		t.Fatalf("created_at mapped to %s", m.HeraField)
	}
	m = suggest(t, engine, "restaurants", "last_modified_date", types.FieldTypeDate)
	if m.HeraField != "updated_at" {
		t.Fatalf("last_modified_date mapped to %s", m.HeraField)
	}
}

func TestFallbackRules(t *testing.T) {
	engine := newRuleEngine(t)

	m := suggest(t, engine, "restaurants", "extra_info", types.FieldTypeText)
	if m.HeraTable != types.TableMetadata || m.Confidence != 0.75 {
		t.Fatalf("extra_info mapped to %s (%v)", m.HeraTable, m.Confidence)
	}

	m = suggest(t, engine, "menu_items", "preparation_time", types.FieldTypeNumber)
	if m.HeraTable != types.TableDynamicData || m.Confidence != 0.70 {
		t.Fatalf("preparation_time mapped to %s (%v)", m.HeraTable, m.Confidence)
	}
	if m.FieldType != types.FieldTypeNumber {
		t.Fatalf("preparation_time stored type: %s", m.FieldType)
	}
}

func sampleEntities(t *testing.T) []types.LegacyEntity {
	t.Helper()
	log := logger.NewNop()
	analyzer := NewStructuralAnalyzerService(log, NewDomainClassifierService(log))
	entities, err := analyzer.AnalyzeJSON(SampleSourceName, SampleDataset())
	if err != nil {
		t.Fatalf("AnalyzeJSON(sample): %v", err)
	}
	if len(entities) == 0 {
		t.Fatalf("sample dataset produced no entities")
	}
	return entities
}

func TestGenerateMappingsCoversEveryField(t *testing.T) {
	engine := newRuleEngine(t)
	entities := sampleEntities(t)

	mappings, err := engine.GenerateMappings(context.Background(), entities)
	if err != nil {
		t.Fatalf("GenerateMappings: %v", err)
	}

	totalFields := 0
	for _, e := range entities {
		totalFields += len(e.Fields)
	}
	if len(mappings) != totalFields {
		t.Fatalf("coverage: %d mappings for %d fields", len(mappings), totalFields)
	}

	seen := map[string]int{}
	for _, m := range mappings {
		seen[m.LegacyField]++
		if m.Confidence < 0 || m.Confidence > 1 {
			t.Fatalf("mapping %s confidence out of range: %v", m.LegacyField, m.Confidence)
		}
	}
	for ref, count := range seen {
		if count != 1 {
			t.Fatalf("legacy field %s mapped %d times", ref, count)
		}
	}
}

func TestGenerateMappingsIdempotent(t *testing.T) {
	engine := newRuleEngine(t)
	entities := sampleEntities(t)

	first, err := engine.GenerateMappings(context.Background(), entities)
	if err != nil {
		t.Fatalf("GenerateMappings: %v", err)
	}
	second, err := engine.GenerateMappings(context.Background(), entities)
	if err != nil {
		t.Fatalf("GenerateMappings: %v", err)
	}

	firstRaw, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal first run: %v", err)
	}
	secondRaw, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal second run: %v", err)
	}
	if string(firstRaw) != string(secondRaw) {
		t.Fatalf("rule engine output is not byte-identical across runs")
	}
}

func TestSingularize(t *testing.T) {
	cases := map[string]string{
		"restaurants":   "restaurant",
		"menu_items":    "menu_item",
		"categories":    "category",
		"address":       "address",
		"menu_sections": "menu_section",
	}
	for in, want := range cases {
		if got := singularize(in); got != want {
			t.Fatalf("singularize(%s): got %s, want %s", in, got, want)
		}
	}
}
