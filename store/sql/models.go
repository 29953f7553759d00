package sqlstore

import (
	"time"

	"github.com/goliatone/go-resources/core"
	"github.com/uptrace/bun"
)

type entityRecord struct {
	bun.BaseModel `bun:"table:resource_entities,alias:re"`

	ID        string         `bun:"id,pk"`
	Resource  string         `bun:"resource,notnull"`
	EntityKey string         `bun:"entity_key,notnull"`
	Payload   map[string]any `bun:"payload,type:jsonb,notnull"`
	CreatedAt time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time      `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func (r *entityRecord) toDomain() core.LocalEntity {
	if r == nil {
		return core.LocalEntity{}
	}
	return core.LocalEntity{
		Resource:  r.Resource,
		Key:       r.EntityKey,
		Data:      copyAnyMap(r.Payload),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func copyAnyMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
