package core

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

type capturedCounter struct {
	name  string
	value int64
	tags  map[string]string
}

type capturedHistogram struct {
	name  string
	value float64
	tags  map[string]string
}

type captureMetricsRecorder struct {
	mu         sync.Mutex
	counters   []capturedCounter
	histograms []capturedHistogram
}

func (m *captureMetricsRecorder) IncCounter(_ context.Context, name string, value int64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters = append(m.counters, capturedCounter{name: name, value: value, tags: cloneTags(tags)})
}

func (m *captureMetricsRecorder) ObserveHistogram(_ context.Context, name string, value float64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.histograms = append(m.histograms, capturedHistogram{name: name, value: value, tags: cloneTags(tags)})
}

func (m *captureMetricsRecorder) hasCounter(name string, status string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, counter := range m.counters {
		if counter.name == name && counter.tags["status"] == status {
			return true
		}
	}
	return false
}

func (m *captureMetricsRecorder) hasHistogram(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, histogram := range m.histograms {
		if histogram.name == name {
			return true
		}
	}
	return false
}

type capturedLog struct {
	level  string
	msg    string
	fields map[string]any
}

type captureLogger struct {
	mu       *sync.Mutex
	records  *[]capturedLog
	defaults map[string]any
}

func newCaptureLogger() *captureLogger {
	records := []capturedLog{}
	return &captureLogger{mu: &sync.Mutex{}, records: &records, defaults: map[string]any{}}
}

func (l *captureLogger) WithFields(fields map[string]any) Logger {
	merged := cloneFields(l.defaults)
	for key, value := range fields {
		merged[key] = value
	}
	return &captureLogger{mu: l.mu, records: l.records, defaults: merged}
}

func (l *captureLogger) Trace(msg string, args ...any) { l.record("trace", msg, args...) }
func (l *captureLogger) Debug(msg string, args ...any) { l.record("debug", msg, args...) }
func (l *captureLogger) Info(msg string, args ...any)  { l.record("info", msg, args...) }
func (l *captureLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args...) }
func (l *captureLogger) Error(msg string, args ...any) { l.record("error", msg, args...) }
func (l *captureLogger) Fatal(msg string, args ...any) { l.record("fatal", msg, args...) }

func (l *captureLogger) WithContext(context.Context) Logger {
	return &captureLogger{mu: l.mu, records: l.records, defaults: cloneFields(l.defaults)}
}

func (l *captureLogger) record(level string, msg string, args ...any) {
	fields := cloneFields(l.defaults)
	for index := 0; index+1 < len(args); index += 2 {
		key, ok := args[index].(string)
		if !ok {
			continue
		}
		fields[key] = args[index+1]
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.records = append(*l.records, capturedLog{level: level, msg: msg, fields: fields})
}

func (l *captureLogger) find(level string, msg string) (capturedLog, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, entry := range *l.records {
		if entry.level == level && entry.msg == msg {
			return entry, true
		}
	}
	return capturedLog{}, false
}

type stubLogger struct{}

func (stubLogger) Trace(string, ...any) {}
func (stubLogger) Debug(string, ...any) {}
func (stubLogger) Info(string, ...any)  {}
func (stubLogger) Warn(string, ...any)  {}
func (stubLogger) Error(string, ...any) {}
func (stubLogger) Fatal(string, ...any) {}
func (s stubLogger) WithContext(context.Context) Logger {
	return s
}

type stubLoggerProvider struct {
	logger Logger
}

func (s stubLoggerProvider) GetLogger(string) Logger {
	return s.logger
}

// recordingTransport answers every request with the configured response and
// remembers what it was sent.
type recordingTransport struct {
	mu       sync.Mutex
	requests []TransportRequest
	status   int
	body     string
	err      error
}

func newRecordingTransport(status int, body string) *recordingTransport {
	return &recordingTransport{status: status, body: body}
}

func (t *recordingTransport) Send(_ context.Context, req TransportRequest) (TransportResponse, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.requests = append(t.requests, req)
	if t.err != nil {
		return TransportResponse{}, t.err
	}
	return TransportResponse{
		StatusCode: t.status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       []byte(t.body),
	}, nil
}

func (t *recordingTransport) calls() []TransportRequest {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TransportRequest, len(t.requests))
	copy(out, t.requests)
	return out
}

// memoryStore is a LocalStore whose natural order is descending by key, so
// exact-order read-back is observable in tests.
type memoryStore struct {
	mu       sync.Mutex
	entities map[string]map[string]LocalEntity
	saves    int
	failOn   string
	now      func() time.Time
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		entities: map[string]map[string]LocalEntity{},
		now:      func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) },
	}
}

var errStoreUnavailable = errors.New("store unavailable")

func (s *memoryStore) Save(_ context.Context, resource string, key string, payload Record) (LocalEntity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn != "" && key == s.failOn {
		return LocalEntity{}, errStoreUnavailable
	}
	s.saves++
	bucket := s.entities[resource]
	if bucket == nil {
		bucket = map[string]LocalEntity{}
		s.entities[resource] = bucket
	}
	entity, exists := bucket[key]
	if !exists {
		entity = LocalEntity{Resource: resource, Key: key, CreatedAt: s.now()}
	}
	entity.Data = copyAnyMap(payload)
	entity.UpdatedAt = s.now()
	bucket[key] = entity
	return entity, nil
}

func (s *memoryStore) FindByKeys(_ context.Context, resource string, keys []string) ([]LocalEntity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []LocalEntity{}
	for _, key := range keys {
		if entity, ok := s.entities[resource][key]; ok {
			out = append(out, entity)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key > out[j].Key })
	return out, nil
}

func (s *memoryStore) Count(_ context.Context, resource string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entities[resource]), nil
}

func entityKeys(entities []LocalEntity) []string {
	out := make([]string, 0, len(entities))
	for _, entity := range entities {
		out = append(out, entity.Key)
	}
	return out
}
