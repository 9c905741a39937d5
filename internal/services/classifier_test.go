package services

import (
	"testing"

	"github.com/heraerp/hera-dev-sub007/internal/logger"
)

func TestClassifyRestaurantText(t *testing.T) {
	classifier := NewDomainClassifierService(logger.NewNop())

	domain := classifier.Classify("manage menu items and table reservations for my kitchen")
	if domain.Name != "restaurant" {
		t.Fatalf("expected restaurant, got %s (%.2f)", domain.Name, domain.Confidence)
	}
	if domain.Confidence <= 0 || domain.Confidence > 1 {
		t.Fatalf("confidence out of range: %v", domain.Confidence)
	}
	if len(domain.Keywords) == 0 {
		t.Fatalf("expected matched keywords to be reported")
	}
	if len(domain.CommonFields) == 0 {
		t.Fatalf("expected domain field templates")
	}
}

func TestClassifyConfidenceIsMatchDensity(t *testing.T) {
	classifier := NewDomainClassifierService(logger.NewNop())

	// 2 of 4 tokens match restaurant keywords.
	domain := classifier.Classify("menu reservation for tomorrow")
	if domain.Name != "restaurant" {
		t.Fatalf("expected restaurant, got %s", domain.Name)
	}
	if domain.Confidence != 0.5 {
		t.Fatalf("confidence: got %v, want 0.5", domain.Confidence)
	}
}

func TestClassifyNoMatchKeepsZeroConfidence(t *testing.T) {
	classifier := NewDomainClassifierService(logger.NewNop())

	domain := classifier.Classify("zzzz qqqq")
	if domain.Confidence != 0 {
		t.Fatalf("expected zero confidence, got %v", domain.Confidence)
	}
	if domain.Name == "" {
		t.Fatalf("classifier must still name a domain on zero score")
	}
}

func TestClassifyTieFirstDomainWins(t *testing.T) {
	classifier := NewDomainClassifierService(logger.NewNop())

	// "invoice" matches only finance, "customer" only crm: a 1-1 tie.
	// Enumeration order puts finance first, so finance must win.
	domain := classifier.Classify("customer invoice")
	if domain.Name != "finance" {
		t.Fatalf("tie must resolve to the first enumerated domain, got %s", domain.Name)
	}
}

func TestClassifyEmptyInput(t *testing.T) {
	classifier := NewDomainClassifierService(logger.NewNop())

	domain := classifier.Classify("")
	if domain.Confidence != 0 {
		t.Fatalf("empty input must score zero, got %v", domain.Confidence)
	}
}
