// Package view mounts a proxied resource on a chi router: GET and POST on the
// collection, GET, PUT, PATCH and DELETE on a single item.
package view

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-resources/core"
	"github.com/google/uuid"
)

const (
	PKParam             = "pk"
	RequestIDHeader     = "X-Request-ID"
	defaultMaxBodyBytes = 1 << 20
)

// ResourceFactory builds the resource serving one inbound request.
type ResourceFactory func(r *http.Request, token string) (core.CRUD, error)

type Endpoint struct {
	Factory      ResourceFactory
	Tokens       TokenExtractor
	Logger       core.Logger
	MaxBodyBytes int64
}

type handler struct {
	factory      ResourceFactory
	tokens       TokenExtractor
	logger       core.Logger
	maxBodyBytes int64
}

// Mount registers the collection and item routes of endpoint on router.
func Mount(router chi.Router, endpoint Endpoint) {
	h := newHandler(endpoint)
	router.Get("/", h.list)
	router.Post("/", h.create)
	router.Route("/{"+PKParam+"}", func(r chi.Router) {
		r.Get("/", h.retrieve)
		r.Put("/", h.update)
		r.Patch("/", h.partialUpdate)
		r.Delete("/", h.destroy)
	})
}

// NewRouter returns a router with endpoint mounted at its root.
func NewRouter(endpoint Endpoint) chi.Router {
	router := chi.NewRouter()
	Mount(router, endpoint)
	return router
}

func newHandler(endpoint Endpoint) *handler {
	h := &handler{
		factory:      endpoint.Factory,
		tokens:       endpoint.Tokens,
		logger:       endpoint.Logger,
		maxBodyBytes: endpoint.MaxBodyBytes,
	}
	if h.tokens == nil {
		h.tokens = BearerTokenExtractor{}
	}
	if h.logger == nil {
		h.logger = glog.Nop()
	}
	if h.maxBodyBytes <= 0 {
		h.maxBodyBytes = defaultMaxBodyBytes
	}
	return h
}

func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, resource core.CRUD, query map[string]string) (core.Envelope, error) {
		return resource.List(ctx, query)
	})
}

func (h *handler) retrieve(w http.ResponseWriter, r *http.Request) {
	pk := chi.URLParam(r, PKParam)
	h.serve(w, r, func(ctx context.Context, resource core.CRUD, query map[string]string) (core.Envelope, error) {
		return resource.Retrieve(ctx, pk, query)
	})
}

func (h *handler) create(w http.ResponseWriter, r *http.Request) {
	payload, err := h.decodePayload(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.serve(w, r, func(ctx context.Context, resource core.CRUD, query map[string]string) (core.Envelope, error) {
		return resource.Create(ctx, payload, query)
	})
}

func (h *handler) update(w http.ResponseWriter, r *http.Request) {
	h.updateWith(w, r, false)
}

func (h *handler) partialUpdate(w http.ResponseWriter, r *http.Request) {
	h.updateWith(w, r, true)
}

func (h *handler) updateWith(w http.ResponseWriter, r *http.Request, partial bool) {
	pk := chi.URLParam(r, PKParam)
	payload, err := h.decodePayload(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.serve(w, r, func(ctx context.Context, resource core.CRUD, query map[string]string) (core.Envelope, error) {
		return resource.Update(ctx, pk, payload, query, partial)
	})
}

func (h *handler) destroy(w http.ResponseWriter, r *http.Request) {
	pk := chi.URLParam(r, PKParam)
	h.serve(w, r, func(ctx context.Context, resource core.CRUD, query map[string]string) (core.Envelope, error) {
		return resource.Destroy(ctx, pk, query)
	})
}

type operation func(ctx context.Context, resource core.CRUD, query map[string]string) (core.Envelope, error)

func (h *handler) serve(w http.ResponseWriter, r *http.Request, op operation) {
	startedAt := time.Now()
	query := flattenQuery(r)
	requestID := strings.TrimSpace(r.Header.Get(RequestIDHeader))
	if requestID == "" {
		requestID = uuid.NewString()
	}
	w.Header().Set(RequestIDHeader, requestID)
	ctx := core.WithRequestContext(r.Context(), core.RequestContext{
		RequestID:  requestID,
		Method:     r.Method,
		Path:       r.URL.Path,
		PathParams: pathParams(r),
		Query:      query,
		RemoteAddr: r.RemoteAddr,
	})
	r = r.WithContext(ctx)

	if h.factory == nil {
		h.writeError(w, r, core.NewConfigurationError("view: no resource configured", map[string]any{
			"path": r.URL.Path,
		}))
		return
	}
	resource, err := h.factory(r, h.tokens.Token(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if resource == nil {
		h.writeError(w, r, core.NewConfigurationError("view: no resource configured", map[string]any{
			"path": r.URL.Path,
		}))
		return
	}

	env, err := op(ctx, resource, query)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logger.WithContext(ctx).Debug("view request served",
		"method", r.Method,
		"path", r.URL.Path,
		"status", env.Status(),
		"duration_ms", time.Since(startedAt).Milliseconds(),
	)
	writeEnvelope(w, env)
}

func (h *handler) decodePayload(r *http.Request) (core.Record, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, h.maxBodyBytes+1))
	if err != nil {
		return nil, badRequest("view: read request body failed", err)
	}
	if int64(len(body)) > h.maxBodyBytes {
		return nil, badRequest("view: request body too large", nil)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return core.Record{}, nil
	}
	payload := core.Record{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, badRequest("view: request body must be a JSON object", err)
	}
	return payload, nil
}

func writeEnvelope(w http.ResponseWriter, env core.Envelope) {
	status := env.Status()
	if status == 0 {
		status = http.StatusOK
	}
	if text, ok := env.Text(); ok {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, text)
		return
	}
	if env.Data() == nil {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, status, env.Data())
}

type errorBody struct {
	Error errorPayload `json:"error"`
}

type errorPayload struct {
	Code    string              `json:"code,omitempty"`
	Message string              `json:"message"`
	Fields  map[string][]string `json:"fields,omitempty"`
}

func (h *handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	payload := errorPayload{Message: err.Error()}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		if rich.Code > 0 {
			status = rich.Code
		}
		payload.Code = rich.TextCode
		payload.Message = rich.Message
	}
	if core.IsValidationError(err) {
		status = http.StatusBadRequest
		payload.Fields = core.ValidationMessages(err)
	}

	logger := h.logger.WithContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("view request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	} else {
		logger.Debug("view request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, errorBody{Error: payload})
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func badRequest(message string, cause error) error {
	if cause == nil {
		return goerrors.New(message, goerrors.CategoryBadInput).
			WithCode(http.StatusBadRequest).
			WithTextCode(core.ResourceErrorBadInput)
	}
	return goerrors.Wrap(cause, goerrors.CategoryBadInput, message).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.ResourceErrorBadInput)
}

// flattenQuery keeps the first value of each query parameter.
func flattenQuery(r *http.Request) map[string]string {
	values := r.URL.Query()
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]string, len(values))
	for key, list := range values {
		if len(list) > 0 {
			out[key] = list[0]
		}
	}
	return out
}

func pathParams(r *http.Request) map[string]string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return nil
	}
	out := map[string]string{}
	for i, key := range rctx.URLParams.Keys {
		if key == "" || key == "*" || i >= len(rctx.URLParams.Values) {
			continue
		}
		out[key] = rctx.URLParams.Values[i]
	}
	return out
}
