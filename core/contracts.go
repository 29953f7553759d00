package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// Record is a single JSON object exchanged with the remote API.
type Record = map[string]any

type Action string

const (
	ActionGet           Action = "get"
	ActionCreate        Action = "create"
	ActionUpdate        Action = "update"
	ActionPartialUpdate Action = "partial_update"
	ActionDelete        Action = "delete"
	ActionSave          Action = "save"
)

type TransportRequest struct {
	Method  string
	URL     string
	Headers map[string]string
	Query   map[string]string
	Body    []byte
	Timeout time.Duration
}

type TransportResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Metadata   map[string]any
}

// Transport executes one HTTP round trip. Any status code is a successful
// send; only failures to reach the remote are errors.
type Transport interface {
	Send(ctx context.Context, req TransportRequest) (TransportResponse, error)
}

type TransportFunc func(ctx context.Context, req TransportRequest) (TransportResponse, error)

func (f TransportFunc) Send(ctx context.Context, req TransportRequest) (TransportResponse, error) {
	return f(ctx, req)
}

// Validator returns the normalized payload or a validation error carrying
// field errors.
type Validator interface {
	Validate(ctx context.Context, payload Record, action Action) (Record, error)
}

type ValidatorFunc func(ctx context.Context, payload Record, action Action) (Record, error)

func (f ValidatorFunc) Validate(ctx context.Context, payload Record, action Action) (Record, error) {
	return f(ctx, payload, action)
}

// ValidatorSelector picks a validator for a single call. Returning nil falls
// back to the statically configured validator.
type ValidatorSelector func(ctx context.Context, rc RequestContext) Validator

type Pagination interface {
	Paginate(ctx context.Context, data any) (Page, bool)
}

type ResponseMapper func(ctx context.Context, data any, action Action) any

// ServerErrorHook inspects the raw response before it is mapped. Returning an
// error aborts the call with that error.
type ServerErrorHook func(ctx context.Context, resp TransportResponse) error

type LocalEntity struct {
	Resource  string
	Key       string
	Data      Record
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LocalStore is the durable side of the mirror. Save must upsert by
// (resource, key); FindByKeys returns matches in the store's own order.
type LocalStore interface {
	Save(ctx context.Context, resource string, key string, payload Record) (LocalEntity, error)
	FindByKeys(ctx context.Context, resource string, keys []string) ([]LocalEntity, error)
	Count(ctx context.Context, resource string) (int, error)
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type Lister interface {
	List(ctx context.Context, query map[string]string) (Envelope, error)
}

type Retriever interface {
	Retrieve(ctx context.Context, pk string, query map[string]string) (Envelope, error)
}

type Creator interface {
	Create(ctx context.Context, payload Record, query map[string]string) (Envelope, error)
}

type Updater interface {
	Update(ctx context.Context, pk string, payload Record, query map[string]string, partial bool) (Envelope, error)
}

type Destroyer interface {
	Destroy(ctx context.Context, pk string, query map[string]string) (Envelope, error)
}

type ListCreator interface {
	Lister
	Creator
}

type RetrieveUpdateDestroyer interface {
	Retriever
	Updater
	Destroyer
}

type CRUD interface {
	ListCreator
	RetrieveUpdateDestroyer
}
