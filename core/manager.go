package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

const DefaultResourceName = "resource"

// DataManager mirrors a batch of remote records into a LocalStore and reads
// them back. The batch order captured at construction is authoritative.
type DataManager struct {
	data          any
	store         LocalStore
	resource      string
	keyField      string
	saveValidator Validator
	logger        Logger
	metrics       MetricsRecorder
}

type ManagerOption func(*DataManager)

func WithKeyField(field string) ManagerOption {
	return func(m *DataManager) {
		if trimmed := strings.TrimSpace(field); trimmed != "" {
			m.keyField = trimmed
		}
	}
}

func WithResourceName(name string) ManagerOption {
	return func(m *DataManager) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			m.resource = trimmed
		}
	}
}

// WithSaveValidator validates each record with ActionSave before it is
// stored. The normalized record is what gets saved.
func WithSaveValidator(validator Validator) ManagerOption {
	return func(m *DataManager) {
		m.saveValidator = validator
	}
}

func WithManagerLogger(logger Logger) ManagerOption {
	return func(m *DataManager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithManagerMetrics(recorder MetricsRecorder) ManagerOption {
	return func(m *DataManager) {
		if recorder != nil {
			m.metrics = recorder
		}
	}
}

// NewDataManager wraps a single record or a list of records. A nil store is
// accepted; operations that need it report a configuration error.
func NewDataManager(data any, store LocalStore, opts ...ManagerOption) *DataManager {
	m := &DataManager{
		data:     data,
		store:    store,
		resource: DefaultResourceName,
		keyField: DefaultPrimaryKeyField,
		logger:   glog.Nop(),
		metrics:  NopMetricsRecorder{},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(m)
	}
	return m
}

func (m *DataManager) Data() any {
	if m == nil {
		return nil
	}
	return m.data
}

func (m *DataManager) Resource() string {
	if m == nil {
		return ""
	}
	return m.resource
}

func (m *DataManager) KeyField() string {
	if m == nil {
		return ""
	}
	return m.keyField
}

// Records returns the batch as an ordered list. A single object is a batch
// of one; nil is an empty batch.
func (m *DataManager) Records() ([]Record, error) {
	if m == nil || m.data == nil {
		return []Record{}, nil
	}
	if record, ok := m.data.(map[string]any); ok {
		return []Record{record}, nil
	}
	records, ok := toRecords(m.data)
	if !ok {
		return nil, newBadInputError("core: mirror data must be an object or a list of objects", map[string]any{
			"resource": m.resource,
			"type":     fmt.Sprintf("%T", m.data),
		})
	}
	return records, nil
}

// Keys returns the primary keys of the batch in batch order, in canonical
// string form.
func (m *DataManager) Keys() ([]string, error) {
	records, err := m.Records()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(records))
	for index, record := range records {
		key, err := m.keyOf(index, record)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// Filter returns the records for which fn reports true, in batch order.
func (m *DataManager) Filter(fn func(Record) bool) []Record {
	records, err := m.Records()
	if err != nil || fn == nil {
		return []Record{}
	}
	out := make([]Record, 0, len(records))
	for _, record := range records {
		if fn(record) {
			out = append(out, record)
		}
	}
	return out
}

// Persist saves each record in order. Saving is an upsert keyed by the
// record's primary key, so persisting the same batch twice leaves the store
// unchanged. The first failure aborts; records saved before it stay saved.
func (m *DataManager) Persist(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	startedAt := time.Now()
	err := m.persist(ctx)
	if m != nil {
		observeOperation(ctx, m.logger, m.metrics, startedAt, "persist", err, map[string]any{
			"resource": m.resource,
		})
	}
	return err
}

func (m *DataManager) persist(ctx context.Context) error {
	if m == nil {
		return NewConfigurationError("core: data manager is nil", nil)
	}
	if m.store == nil {
		return NewConfigurationError("core: data manager local store is required", map[string]any{
			"resource": m.resource,
		})
	}
	records, err := m.Records()
	if err != nil {
		return newPersistError(err, 0, "")
	}
	for index, record := range records {
		key, err := m.keyOf(index, record)
		if err != nil {
			return newPersistError(err, index, "")
		}
		payload := copyAnyMap(record)
		if m.saveValidator != nil {
			normalized, err := m.saveValidator.Validate(ctx, payload, ActionSave)
			if err != nil {
				return newPersistError(WrapValidationError(err, "core: record validation failed"), index, key)
			}
			payload = normalized
		}
		if _, err := m.store.Save(ctx, m.resource, key, payload); err != nil {
			return newPersistError(err, index, key)
		}
	}
	return nil
}

type GetLocalOptions struct {
	// ExactOrder sorts the result by each key's position in the batch.
	// Otherwise the store's natural order is kept.
	ExactOrder bool
	// AsKeyList returns the batch keys only and does not touch the store.
	AsKeyList bool
}

type LocalResult struct {
	Keys     []string
	Entities []LocalEntity
}

// GetLocal reads the persisted subset of the batch. Keys that are not in the
// store are omitted from Entities.
func (m *DataManager) GetLocal(ctx context.Context, opts GetLocalOptions) (LocalResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if m == nil {
		return LocalResult{}, NewConfigurationError("core: data manager is nil", nil)
	}
	keys, err := m.Keys()
	if err != nil {
		return LocalResult{}, err
	}
	if opts.AsKeyList {
		return LocalResult{Keys: keys, Entities: []LocalEntity{}}, nil
	}
	if m.store == nil {
		return LocalResult{}, NewConfigurationError("core: data manager local store is required", map[string]any{
			"resource": m.resource,
		})
	}

	positions := make(map[string]int, len(keys))
	unique := make([]string, 0, len(keys))
	for index, key := range keys {
		if _, seen := positions[key]; seen {
			continue
		}
		positions[key] = index
		unique = append(unique, key)
	}

	entities, err := m.store.FindByKeys(ctx, m.resource, unique)
	if err != nil {
		return LocalResult{}, err
	}
	found := make([]LocalEntity, 0, len(entities))
	for _, entity := range entities {
		if _, ok := positions[entity.Key]; ok {
			found = append(found, entity)
		}
	}
	if opts.ExactOrder {
		sort.SliceStable(found, func(i, j int) bool {
			return positions[found[i].Key] < positions[found[j].Key]
		})
	}
	logWithLevel(ctx, m.logger, "debug", "local read", map[string]any{
		"resource":    m.resource,
		"requested":   len(unique),
		"found":       len(found),
		"exact_order": opts.ExactOrder,
	})
	return LocalResult{Keys: keys, Entities: found}, nil
}

func (m *DataManager) keyOf(index int, record Record) (string, error) {
	key, ok := KeyString(record[m.keyField])
	if !ok {
		return "", NewValidationError("core: record has no usable primary key", map[string][]string{
			fmt.Sprintf("[%d].%s", index, m.keyField): {"This field is required."},
		})
	}
	return key, nil
}
