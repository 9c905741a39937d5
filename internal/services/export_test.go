package services

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/heraerp/hera-dev-sub007/internal/logger"
	"github.com/heraerp/hera-dev-sub007/internal/types"
)

func exportSession(t *testing.T) *types.MappingSession {
	t.Helper()
	session := &types.MappingSession{
		ID:             uuid.New(),
		OrganizationID: uuid.New(),
		Name:           "Mario's Restaurant Import",
		Status:         types.SessionDraft,
	}
	entities := []types.LegacyEntity{{
		Name: "restaurants",
		Type: "table",
		Fields: []types.LegacyField{
			{Name: "name", Type: types.FieldTypeText, IsRequired: true},
		},
	}}
	mappings := []types.HeraMapping{{
		LegacyField: "restaurants.name",
		HeraTable:   types.TableEntities,
		HeraField:   "restaurant_name",
		MappingType: types.MappingDirect,
		Confidence:  0.98,
	}}
	if err := session.SetEntities(entities); err != nil {
		t.Fatalf("SetEntities: %v", err)
	}
	if err := session.SetMappings(mappings); err != nil {
		t.Fatalf("SetMappings: %v", err)
	}
	return session
}

func TestBuildArtifact(t *testing.T) {
	svc := NewExportService(logger.NewNop())
	session := exportSession(t)

	artifact, err := svc.BuildArtifact(session)
	if err != nil {
		t.Fatalf("BuildArtifact: %v", err)
	}

	if len(artifact.LegacyData) != 1 || artifact.LegacyData[0].Name != "restaurants" {
		t.Fatalf("legacy data: %+v", artifact.LegacyData)
	}
	if len(artifact.Mappings) != 1 || artifact.Mappings[0].HeraField != "restaurant_name" {
		t.Fatalf("mappings: %+v", artifact.Mappings)
	}
	if len(artifact.TargetSchemaReference) != 4 {
		t.Fatalf("target schema reference: %d tables, want 4", len(artifact.TargetSchemaReference))
	}
	if artifact.ExportTimestamp == "" {
		t.Fatalf("export timestamp missing")
	}
}

func TestMarshalArtifactFilename(t *testing.T) {
	svc := NewExportService(logger.NewNop())
	session := exportSession(t)

	artifact, err := svc.BuildArtifact(session)
	if err != nil {
		t.Fatalf("BuildArtifact: %v", err)
	}
	raw, filename, err := svc.Marshal(artifact)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	if filename != "hera-mapping-marios_restaurant_import.json" {
		t.Fatalf("filename: %s", filename)
	}
	if !strings.HasPrefix(string(raw), "{") {
		t.Fatalf("artifact is not a JSON object")
	}

	var decoded ExportArtifact
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if decoded.Session == nil || decoded.Session.Name != session.Name {
		t.Fatalf("session lost in serialization")
	}
}
