package repos

import (
  "context"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/heraerp/hera-dev-sub007/internal/logger"
  "github.com/heraerp/hera-dev-sub007/internal/types"
)

// MappingSessionRepo persists mapping sessions. Every read is scoped by
// organization id; there is no cross-tenant query path.
type MappingSessionRepo interface {
  Create(ctx context.Context, tx *gorm.DB, sessions []*types.MappingSession) ([]*types.MappingSession, error)
  GetByIDs(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, sessionIDs []uuid.UUID) ([]*types.MappingSession, error)
  ListByOrganizationID(ctx context.Context, tx *gorm.DB, orgID uuid.UUID) ([]*types.MappingSession, error)
  Update(ctx context.Context, tx *gorm.DB, session *types.MappingSession) (*types.MappingSession, error)
}

type mappingSessionRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewMappingSessionRepo(db *gorm.DB, baseLog *logger.Logger) MappingSessionRepo {
  repoLog := baseLog.With("repo", "MappingSessionRepo")
  return &mappingSessionRepo{db: db, log: repoLog}
}

func (r *mappingSessionRepo) Create(ctx context.Context, tx *gorm.DB, sessions []*types.MappingSession) ([]*types.MappingSession, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(sessions) == 0 {
    return []*types.MappingSession{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&sessions).Error; err != nil {
    return nil, err
  }
  return sessions, nil
}

func (r *mappingSessionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, sessionIDs []uuid.UUID) ([]*types.MappingSession, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.MappingSession
  if len(sessionIDs) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("organization_id = ? AND id IN ?", orgID, sessionIDs).
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *mappingSessionRepo) ListByOrganizationID(ctx context.Context, tx *gorm.DB, orgID uuid.UUID) ([]*types.MappingSession, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.MappingSession
  if err := transaction.WithContext(ctx).
    Where("organization_id = ?", orgID).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *mappingSessionRepo) Update(ctx context.Context, tx *gorm.DB, session *types.MappingSession) (*types.MappingSession, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if err := transaction.WithContext(ctx).Save(session).Error; err != nil {
    return nil, err
  }
  return session, nil
}
