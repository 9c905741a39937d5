package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	redisclient "github.com/heraerp/hera-dev-sub007/internal/clients/redis"
	"github.com/heraerp/hera-dev-sub007/internal/logger"
	"github.com/heraerp/hera-dev-sub007/internal/repos"
	"github.com/heraerp/hera-dev-sub007/internal/types"
)

// MappingSessionService drives the aggregate lifecycle: create from an
// analyzed upload or the built-in sample, review/edit mappings while draft,
// and walk the status state machine. The terminal migration itself is an
// external collaborator.
type MappingSessionService interface {
	CreateFromEntities(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, name string, entities []types.LegacyEntity) (*types.MappingSession, error)
	CreateFromSample(ctx context.Context, tx *gorm.DB, orgID uuid.UUID) (*types.MappingSession, error)
	GetSession(ctx context.Context, tx *gorm.DB, orgID, sessionID uuid.UUID) (*types.MappingSession, error)
	ListSessions(ctx context.Context, tx *gorm.DB, orgID uuid.UUID) ([]*types.MappingSession, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, orgID, sessionID uuid.UUID, next types.SessionStatus) (*types.MappingSession, error)
	ReplaceMappings(ctx context.Context, tx *gorm.DB, orgID, sessionID uuid.UUID, mappings []types.HeraMapping) (*types.MappingSession, error)
}

type mappingSessionService struct {
	db          *gorm.DB
	log         *logger.Logger
	sessionRepo repos.MappingSessionRepo
	analyzer    StructuralAnalyzerService
	rules       MappingRuleService
	bus         redisclient.EventBus
}

func NewMappingSessionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	sessionRepo repos.MappingSessionRepo,
	analyzer StructuralAnalyzerService,
	rules MappingRuleService,
	bus redisclient.EventBus,
) MappingSessionService {
	return &mappingSessionService{
		db:          db,
		log:         baseLog.With("service", "MappingSessionService"),
		sessionRepo: sessionRepo,
		analyzer:    analyzer,
		rules:       rules,
		bus:         bus,
	}
}

func (s *mappingSessionService) CreateFromEntities(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, name string, entities []types.LegacyEntity) (*types.MappingSession, error) {
	mappings, err := s.rules.GenerateMappings(ctx, entities)
	if err != nil {
		return nil, fmt.Errorf("generate mappings: %w", err)
	}

	session := &types.MappingSession{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Name:           name,
		Status:         types.SessionDraft,
	}
	if err := session.SetEntities(entities); err != nil {
		return nil, fmt.Errorf("encode entities: %w", err)
	}
	if err := session.SetMappings(mappings); err != nil {
		return nil, fmt.Errorf("encode mappings: %w", err)
	}

	if _, err := s.sessionRepo.Create(ctx, tx, []*types.MappingSession{session}); err != nil {
		return nil, fmt.Errorf("create mapping session: %w", err)
	}

	s.log.Info("Created mapping session",
		"session_id", session.ID,
		"organization_id", orgID,
		"entities", len(entities),
		"mappings", len(mappings),
	)
	s.publish(ctx, orgID, redisclient.EventSessionAnalyzed, map[string]any{
		"session_id": session.ID.String(),
		"entities":   len(entities),
		"mappings":   len(mappings),
	})
	return session, nil
}

func (s *mappingSessionService) CreateFromSample(ctx context.Context, tx *gorm.DB, orgID uuid.UUID) (*types.MappingSession, error) {
	entities, err := s.analyzer.AnalyzeJSON(SampleSourceName, SampleDataset())
	if err != nil {
		return nil, fmt.Errorf("analyze sample dataset: %w", err)
	}
	return s.CreateFromEntities(ctx, tx, orgID, SampleSessionName, entities)
}

func (s *mappingSessionService) GetSession(ctx context.Context, tx *gorm.DB, orgID, sessionID uuid.UUID) (*types.MappingSession, error) {
	sessions, err := s.sessionRepo.GetByIDs(ctx, tx, orgID, []uuid.UUID{sessionID})
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, ErrSessionNotFound
	}
	return sessions[0], nil
}

func (s *mappingSessionService) ListSessions(ctx context.Context, tx *gorm.DB, orgID uuid.UUID) ([]*types.MappingSession, error) {
	return s.sessionRepo.ListByOrganizationID(ctx, tx, orgID)
}

func (s *mappingSessionService) UpdateStatus(ctx context.Context, tx *gorm.DB, orgID, sessionID uuid.UUID, next types.SessionStatus) (*types.MappingSession, error) {
	session, err := s.GetSession(ctx, tx, orgID, sessionID)
	if err != nil {
		return nil, err
	}
	if !types.ValidSessionTransition(session.Status, next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, session.Status, next)
	}

	previous := session.Status
	session.Status = next
	if _, err := s.sessionRepo.Update(ctx, tx, session); err != nil {
		return nil, fmt.Errorf("update session status: %w", err)
	}

	s.log.Info("Session status changed", "session_id", sessionID, "from", previous, "to", next)
	s.publish(ctx, orgID, redisclient.EventSessionStatusChanged, map[string]any{
		"session_id": sessionID.String(),
		"from":       string(previous),
		"to":         string(next),
	})
	return session, nil
}

func (s *mappingSessionService) ReplaceMappings(ctx context.Context, tx *gorm.DB, orgID, sessionID uuid.UUID, mappings []types.HeraMapping) (*types.MappingSession, error) {
	session, err := s.GetSession(ctx, tx, orgID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != types.SessionDraft {
		return nil, ErrSessionNotEditable
	}
	if err := validateMappings(mappings); err != nil {
		return nil, err
	}
	if err := session.SetMappings(mappings); err != nil {
		return nil, fmt.Errorf("encode mappings: %w", err)
	}
	if _, err := s.sessionRepo.Update(ctx, tx, session); err != nil {
		return nil, fmt.Errorf("update session mappings: %w", err)
	}
	return session, nil
}

func validateMappings(mappings []types.HeraMapping) error {
	validTables := map[types.HeraTable]bool{
		types.TableEntities:     true,
		types.TableDynamicData:  true,
		types.TableMetadata:     true,
		types.TableTransactions: true,
	}
	for _, m := range mappings {
		if m.LegacyField == "" {
			return fmt.Errorf("mapping is missing a legacy field reference")
		}
		if !validTables[m.HeraTable] {
			return fmt.Errorf("mapping %s targets unknown table %q", m.LegacyField, m.HeraTable)
		}
		if m.Confidence < 0 || m.Confidence > 1 {
			return fmt.Errorf("mapping %s has confidence %v outside [0,1]", m.LegacyField, m.Confidence)
		}
	}
	return nil
}

func (s *mappingSessionService) publish(ctx context.Context, orgID uuid.UUID, eventType string, payload map[string]any) {
	if s.bus == nil {
		return
	}
	event := redisclient.Event{
		Type:           eventType,
		OrganizationID: orgID,
		Payload:        payload,
	}
	if err := s.bus.Publish(ctx, event); err != nil {
		s.log.Warn("Failed to publish session event", "type", eventType, "error", err)
	}
}
