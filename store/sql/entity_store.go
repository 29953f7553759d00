package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-resources/core"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// EntityStore keeps mirrored records in resource_entities, one row per
// (resource, entity_key).
type EntityStore struct {
	db   *bun.DB
	repo repository.Repository[*entityRecord]
}

func NewEntityStore(db *bun.DB) (*EntityStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*entityRecord](db, entityHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid entity repository wiring: %w", err)
		}
	}
	return &EntityStore{
		db:   db,
		repo: repo,
	}, nil
}

// Save inserts the entity or replaces its payload when the key is already
// stored for the resource. The existing row keeps its id and created_at.
func (s *EntityStore) Save(ctx context.Context, resource string, key string, payload core.Record) (core.LocalEntity, error) {
	if s == nil || s.db == nil {
		return core.LocalEntity{}, fmt.Errorf("sqlstore: entity store is not configured")
	}
	resource = strings.TrimSpace(resource)
	key = strings.TrimSpace(key)
	if resource == "" || key == "" {
		return core.LocalEntity{}, fmt.Errorf("sqlstore: resource and entity key are required")
	}
	now := time.Now().UTC()
	record := &entityRecord{
		ID:        uuid.NewString(),
		Resource:  resource,
		EntityKey: key,
		Payload:   copyAnyMap(payload),
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.NewInsert().
		Model(record).
		On("CONFLICT (resource, entity_key) DO UPDATE").
		Set("payload = EXCLUDED.payload").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return core.LocalEntity{}, fmt.Errorf("sqlstore: save %s/%s: %w", resource, key, err)
	}
	return record.toDomain(), nil
}

// FindByKeys returns the stored entities among keys ordered by entity_key.
func (s *EntityStore) FindByKeys(ctx context.Context, resource string, keys []string) ([]core.LocalEntity, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: entity store is not configured")
	}
	if len(keys) == 0 {
		return []core.LocalEntity{}, nil
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("resource", "=", strings.TrimSpace(resource)),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.entity_key IN (?)", bun.In(keys))
		}),
		repository.OrderBy("entity_key ASC"),
	)
	if err != nil {
		return nil, err
	}
	out := make([]core.LocalEntity, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

func (s *EntityStore) Count(ctx context.Context, resource string) (int, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: entity store is not configured")
	}
	return s.db.NewSelect().
		Model((*entityRecord)(nil)).
		Where("?TableAlias.resource = ?", strings.TrimSpace(resource)).
		Count(ctx)
}

var _ core.LocalStore = (*EntityStore)(nil)
