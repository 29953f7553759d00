package core

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// RequestContext is read-only metadata about the inbound call that triggered
// a proxy operation.
type RequestContext struct {
	RequestID  string
	Method     string
	Path       string
	PathParams map[string]string
	Query      map[string]string
	RemoteAddr string
	Attributes map[string]any
}

type requestContextKey struct{}

// WithRequestContext stores a copy of rc in ctx, assigning a request id when
// none is set.
func WithRequestContext(ctx context.Context, rc RequestContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	rc = rc.clone()
	if strings.TrimSpace(rc.RequestID) == "" {
		rc.RequestID = uuid.NewString()
	}
	return context.WithValue(ctx, requestContextKey{}, rc)
}

func RequestContextFrom(ctx context.Context) (RequestContext, bool) {
	if ctx == nil {
		return RequestContext{}, false
	}
	rc, ok := ctx.Value(requestContextKey{}).(RequestContext)
	if !ok {
		return RequestContext{}, false
	}
	return rc.clone(), true
}

func (rc RequestContext) Attribute(key string) (any, bool) {
	if rc.Attributes == nil {
		return nil, false
	}
	value, ok := rc.Attributes[key]
	return value, ok
}

func (rc RequestContext) clone() RequestContext {
	out := rc
	out.PathParams = copyStringMap(rc.PathParams)
	out.Query = copyStringMap(rc.Query)
	out.Attributes = copyAnyMap(rc.Attributes)
	return out
}

func copyStringMap(in map[string]string) map[string]string {
	if len(in) == 0 {
		return map[string]string{}
	}
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
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
