package services

import (
	"testing"

	"github.com/heraerp/hera-dev-sub007/internal/types"
)

func registryEntry(t *testing.T, entityType, entityName string, fieldNames ...string) *types.SchemaRegistryEntry {
	t.Helper()
	schema := &types.GeneratedSchema{
		EntityType: entityType,
		Name:       entityName,
	}
	for _, name := range fieldNames {
		schema.Fields = append(schema.Fields, types.GeneratedField{Name: name, Type: types.FieldTypeText})
	}
	entry := &types.SchemaRegistryEntry{EntityType: entityType, EntityName: entityName}
	if err := entry.SetSchema(schema); err != nil {
		t.Fatalf("SetSchema: %v", err)
	}
	return entry
}

func TestSchemaVocabularySplitsOnUnderscores(t *testing.T) {
	entry := registryEntry(t, "menu_item", "Menu Item", "item_price", "is_available")
	vocab := schemaVocabulary(entry)

	want := map[string]bool{"menu": false, "item": false, "price": false, "available": false}
	for _, word := range vocab {
		if _, ok := want[word]; ok {
			want[word] = true
		}
	}
	for word, found := range want {
		if !found {
			t.Fatalf("vocabulary missing %q: %v", word, vocab)
		}
	}
}

func TestSimilarityScoreTokenOverlap(t *testing.T) {
	entry := registryEntry(t, "customer", "Customer", "customer_name", "email", "phone")

	// 3 of 4 tokens match the vocabulary.
	score := similarityScore("customer name email records", "", entry)
	if score != 0.75 {
		t.Fatalf("similarityScore: got %v, want 0.75", score)
	}
}

func TestSimilarityScoreNoOverlap(t *testing.T) {
	entry := registryEntry(t, "customer", "Customer", "customer_name")
	if score := similarityScore("warehouse shipment tracking", "", entry); score != 0 {
		t.Fatalf("similarityScore: got %v, want 0", score)
	}
}

func TestSimilarityScoreEntityTypeHintFloor(t *testing.T) {
	entry := registryEntry(t, "customer", "Customer", "customer_name")

	score := similarityScore("warehouse shipment tracking", "customer", entry)
	if score != 0.9 {
		t.Fatalf("hint match floor: got %v, want 0.9", score)
	}
	if recommendForScore(score) != types.RecommendUseExisting {
		t.Fatalf("hint match must clear the reuse threshold")
	}
}

func TestRecommendForScoreThresholdIsExclusive(t *testing.T) {
	if got := recommendForScore(0.8); got != types.RecommendGenerateNew {
		t.Fatalf("score exactly at threshold: got %s", got)
	}
	if got := recommendForScore(0.81); got != types.RecommendUseExisting {
		t.Fatalf("score above threshold: got %s", got)
	}
	if got := recommendForScore(0); got != types.RecommendGenerateNew {
		t.Fatalf("zero score: got %s", got)
	}
}
