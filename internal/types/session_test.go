package types

import "testing"

func TestValidSessionTransition(t *testing.T) {
	valid := [][2]SessionStatus{
		{SessionDraft, SessionValidated},
		{SessionValidated, SessionApproved},
		{SessionApproved, SessionMigrated},
	}
	for _, tc := range valid {
		if !ValidSessionTransition(tc[0], tc[1]) {
			t.Fatalf("transition %s -> %s should be valid", tc[0], tc[1])
		}
	}

	invalid := [][2]SessionStatus{
		{SessionDraft, SessionApproved},
		{SessionDraft, SessionMigrated},
		{SessionValidated, SessionDraft},
		{SessionApproved, SessionValidated},
		{SessionMigrated, SessionDraft},
		{SessionMigrated, SessionMigrated},
		{SessionDraft, SessionDraft},
	}
	for _, tc := range invalid {
		if ValidSessionTransition(tc[0], tc[1]) {
			t.Fatalf("transition %s -> %s should be rejected", tc[0], tc[1])
		}
	}
}

func TestSessionRoundTripsEntitiesAndMappings(t *testing.T) {
	session := &MappingSession{}

	entities := []LegacyEntity{{
		Name: "menu_items",
		Type: "table",
		Fields: []LegacyField{
			{Name: "price", Type: FieldTypeNumber, IsRequired: true},
		},
	}}
	if err := session.SetEntities(entities); err != nil {
		t.Fatalf("SetEntities: %v", err)
	}
	decoded, err := session.DecodeEntities()
	if err != nil {
		t.Fatalf("DecodeEntities: %v", err)
	}
	if len(decoded) != 1 || decoded[0].Fields[0].Name != "price" {
		t.Fatalf("entities round trip: %+v", decoded)
	}

	empty := &MappingSession{}
	mappings, err := empty.DecodeMappings()
	if err != nil {
		t.Fatalf("DecodeMappings on empty session: %v", err)
	}
	if mappings == nil || len(mappings) != 0 {
		t.Fatalf("empty session must decode to an empty slice")
	}
}
