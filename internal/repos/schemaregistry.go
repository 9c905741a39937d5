package repos

import (
  "context"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/heraerp/hera-dev-sub007/internal/logger"
  "github.com/heraerp/hera-dev-sub007/internal/types"
)

// SchemaRegistryRepo is the append-only store behind the schema similarity
// registry. Writes never dedup; reads are organization-scoped.
type SchemaRegistryRepo interface {
  Create(ctx context.Context, tx *gorm.DB, entries []*types.SchemaRegistryEntry) ([]*types.SchemaRegistryEntry, error)
  ListByOrganizationID(ctx context.Context, tx *gorm.DB, orgID uuid.UUID) ([]*types.SchemaRegistryEntry, error)
  GetByEntityTypes(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, entityTypes []string) ([]*types.SchemaRegistryEntry, error)
}

type schemaRegistryRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewSchemaRegistryRepo(db *gorm.DB, baseLog *logger.Logger) SchemaRegistryRepo {
  repoLog := baseLog.With("repo", "SchemaRegistryRepo")
  return &schemaRegistryRepo{db: db, log: repoLog}
}

func (r *schemaRegistryRepo) Create(ctx context.Context, tx *gorm.DB, entries []*types.SchemaRegistryEntry) ([]*types.SchemaRegistryEntry, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  if len(entries) == 0 {
    return []*types.SchemaRegistryEntry{}, nil
  }

  if err := transaction.WithContext(ctx).Create(&entries).Error; err != nil {
    return nil, err
  }
  return entries, nil
}

func (r *schemaRegistryRepo) ListByOrganizationID(ctx context.Context, tx *gorm.DB, orgID uuid.UUID) ([]*types.SchemaRegistryEntry, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.SchemaRegistryEntry
  if err := transaction.WithContext(ctx).
    Where("organization_id = ?", orgID).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}

func (r *schemaRegistryRepo) GetByEntityTypes(ctx context.Context, tx *gorm.DB, orgID uuid.UUID, entityTypes []string) ([]*types.SchemaRegistryEntry, error) {
  transaction := tx
  if transaction == nil {
    transaction = r.db
  }

  var results []*types.SchemaRegistryEntry
  if len(entityTypes) == 0 {
    return results, nil
  }

  if err := transaction.WithContext(ctx).
    Where("organization_id = ? AND entity_type IN ?", orgID, entityTypes).
    Order("created_at DESC").
    Find(&results).Error; err != nil {
    return nil, err
  }
  return results, nil
}
