package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SessionStatus string

const (
	SessionDraft     SessionStatus = "draft"
	SessionValidated SessionStatus = "validated"
	SessionApproved  SessionStatus = "approved"
	SessionMigrated  SessionStatus = "migrated"
)

// sessionTransitions is the forward-only state machine
// draft -> validated -> approved -> migrated.
var sessionTransitions = map[SessionStatus]SessionStatus{
	SessionDraft:     SessionValidated,
	SessionValidated: SessionApproved,
	SessionApproved:  SessionMigrated,
}

// ValidSessionTransition reports whether a session may move from one status
// to the next. Only single forward steps are allowed.
func ValidSessionTransition(from, to SessionStatus) bool {
	next, ok := sessionTransitions[from]
	return ok && next == to
}

// MappingSession is the aggregate root of one mapping exercise: the
// discovered legacy structure plus the full proposed mapping list, scoped to
// one organization. Entities and Mappings are stored as JSON documents; the
// universal schema keeps no relational references between them.
type MappingSession struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OrganizationID uuid.UUID      `gorm:"type:uuid;not null;index" json:"organization_id"`
	Name           string         `gorm:"column:name;not null" json:"name"`
	Status         SessionStatus  `gorm:"column:status;not null;default:'draft'" json:"status"`
	Entities       datatypes.JSON `gorm:"column:entities" json:"entities"`
	Mappings       datatypes.JSON `gorm:"column:mappings" json:"mappings"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (MappingSession) TableName() string { return "mapping_session" }

func (s *MappingSession) SetEntities(entities []LegacyEntity) error {
	raw, err := json.Marshal(entities)
	if err != nil {
		return err
	}
	s.Entities = datatypes.JSON(raw)
	return nil
}

func (s *MappingSession) DecodeEntities() ([]LegacyEntity, error) {
	if len(s.Entities) == 0 {
		return []LegacyEntity{}, nil
	}
	var out []LegacyEntity
	if err := json.Unmarshal(s.Entities, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MappingSession) SetMappings(mappings []HeraMapping) error {
	raw, err := json.Marshal(mappings)
	if err != nil {
		return err
	}
	s.Mappings = datatypes.JSON(raw)
	return nil
}

func (s *MappingSession) DecodeMappings() ([]HeraMapping, error) {
	if len(s.Mappings) == 0 {
		return []HeraMapping{}, nil
	}
	var out []HeraMapping
	if err := json.Unmarshal(s.Mappings, &out); err != nil {
		return nil, err
	}
	return out, nil
}
