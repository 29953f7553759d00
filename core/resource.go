package core

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

// Resource is a client-side proxy for one remote collection. Every operation
// performs a single blocking round trip and returns an Envelope; remote
// failures are reported through the envelope status, not as errors.
type Resource struct {
	config    ResourceConfig
	token     string
	transport Transport
	logger    Logger
	metrics   MetricsRecorder
}

type resourceBuilder struct {
	transport      Transport
	logger         Logger
	loggerProvider LoggerProvider
	metrics        MetricsRecorder
}

type Option func(*resourceBuilder)

func WithTransport(transport Transport) Option {
	return func(b *resourceBuilder) {
		b.transport = transport
	}
}

func WithLogger(logger Logger) Option {
	return func(b *resourceBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *resourceBuilder) {
		b.loggerProvider = provider
	}
}

func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(b *resourceBuilder) {
		b.metrics = recorder
	}
}

// NewResource binds config to a token and runtime dependencies. An empty
// token means no auth header is sent. Missing bindings are reported when an
// operation needs them.
func NewResource(config ResourceConfig, token string, opts ...Option) *Resource {
	builder := resourceBuilder{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	_, logger := glog.Resolve("resources", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	metrics := builder.metrics
	if metrics == nil {
		metrics = NopMetricsRecorder{}
	}

	return &Resource{
		config:    config.clone(),
		token:     strings.TrimSpace(token),
		transport: builder.transport,
		logger:    logger,
		metrics:   metrics,
	}
}

func (r *Resource) Config() ResourceConfig {
	if r == nil {
		return ResourceConfig{}
	}
	return r.config.clone()
}

func (r *Resource) Name() string {
	if r == nil {
		return ""
	}
	return r.config.Name
}

func (r *Resource) Token() string {
	if r == nil {
		return ""
	}
	return r.token
}

// URL joins the base URL, the collection and the given segments with a
// single "/" between parts. Empty segments are dropped, so URL("") == URL().
func (r *Resource) URL(segments ...string) string {
	if r == nil {
		return ""
	}
	return JoinURL(r.config.BaseURL, r.config.TrailingSlash, append([]string{r.config.Collection}, segments...)...)
}

// JoinURL is the URL builder used by Resource.URL.
func JoinURL(base string, trailingSlash bool, segments ...string) string {
	out := strings.TrimSpace(base)
	for _, segment := range segments {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		if out == "" {
			out = segment
			continue
		}
		out = strings.TrimRight(out, "/") + "/" + strings.TrimLeft(segment, "/")
	}
	if trailingSlash && out != "" && !strings.HasSuffix(out, "/") {
		out += "/"
	}
	return out
}

// Headers returns the static headers plus the auth header when a token is
// set. The auth header overrides a static header with the same name.
func (r *Resource) Headers() map[string]string {
	if r == nil {
		return map[string]string{}
	}
	headers := copyStringMap(r.config.Headers)
	if r.token != "" {
		headers[r.config.AuthHeaderName] = strings.TrimSpace(r.config.AuthHeaderPrefix + " " + r.token)
	}
	return headers
}

func (r *Resource) List(ctx context.Context, query map[string]string) (Envelope, error) {
	env, err := r.send(ctx, "list", http.MethodGet, r.URL(), query, nil, ActionGet)
	if err != nil {
		return Envelope{}, err
	}
	return r.paginate(ctx, env), nil
}

func (r *Resource) Retrieve(ctx context.Context, pk string, query map[string]string) (Envelope, error) {
	return r.send(ctx, "retrieve", http.MethodGet, r.URL(pk), query, nil, ActionGet)
}

// Get performs a GET against an arbitrary URL with the resource's headers.
func (r *Resource) Get(ctx context.Context, url string, query map[string]string) (Envelope, error) {
	return r.send(ctx, "get", http.MethodGet, url, query, nil, ActionGet)
}

func (r *Resource) Create(ctx context.Context, payload Record, query map[string]string) (Envelope, error) {
	if err := r.ready(); err != nil {
		return Envelope{}, err
	}
	body, err := r.validatedBody(ctx, payload, ActionCreate)
	if err != nil {
		r.observe(ctx, time.Now(), "create", http.MethodPost, r.URL(), 0, err)
		return Envelope{}, err
	}
	return r.send(ctx, "create", http.MethodPost, r.URL(), query, body, ActionCreate)
}

// Update sends a PUT, or a PATCH when partial is set.
func (r *Resource) Update(
	ctx context.Context,
	pk string,
	payload Record,
	query map[string]string,
	partial bool,
) (Envelope, error) {
	if err := r.ready(); err != nil {
		return Envelope{}, err
	}
	method := http.MethodPut
	action := ActionUpdate
	if partial {
		method = http.MethodPatch
		action = ActionPartialUpdate
	}
	body, err := r.validatedBody(ctx, payload, action)
	if err != nil {
		r.observe(ctx, time.Now(), "update", method, r.URL(pk), 0, err)
		return Envelope{}, err
	}
	return r.send(ctx, "update", method, r.URL(pk), query, body, ActionUpdate)
}

func (r *Resource) Destroy(ctx context.Context, pk string, query map[string]string) (Envelope, error) {
	return r.send(ctx, "destroy", http.MethodDelete, r.URL(pk), query, nil, ActionDelete)
}

// Mirror wraps the envelope data in a DataManager bound to store. For
// paginated list envelopes the page results become the batch.
func (r *Resource) Mirror(env Envelope, store LocalStore, opts ...ManagerOption) MirrorEnvelope {
	data := env.Data()
	if r != nil && r.config.Pagination != nil {
		if page, ok := data.(map[string]any); ok {
			if results, ok := page["results"].([]any); ok {
				data = results
			}
		}
	}
	options := []ManagerOption{}
	if r != nil {
		options = append(options,
			WithResourceName(r.config.Name),
			WithKeyField(r.config.PrimaryKeyField),
			WithManagerLogger(r.logger),
			WithManagerMetrics(r.metrics),
		)
	}
	options = append(options, opts...)
	return NewMirrorEnvelope(NewDataManager(data, store, options...), env.Status())
}

func (r *Resource) ready() error {
	if r == nil {
		return NewConfigurationError("core: resource is nil", nil)
	}
	if strings.TrimSpace(r.config.BaseURL) == "" {
		return NewConfigurationError("core: resource base url is required", map[string]any{
			"resource": r.config.Name,
		})
	}
	if r.transport == nil {
		return NewConfigurationError("core: resource transport is required", map[string]any{
			"resource": r.config.Name,
		})
	}
	return nil
}

func (r *Resource) resolveValidator(ctx context.Context) (Validator, error) {
	if r.config.ValidatorSelector != nil {
		rc, _ := RequestContextFrom(ctx)
		if selected := r.config.ValidatorSelector(ctx, rc); selected != nil {
			return selected, nil
		}
	}
	if r.config.Validator == nil {
		return nil, NewConfigurationError("core: resource validator is required for write operations", map[string]any{
			"resource": r.config.Name,
		})
	}
	return r.config.Validator, nil
}

func (r *Resource) validatedBody(ctx context.Context, payload Record, action Action) ([]byte, error) {
	validator, err := r.resolveValidator(ctx)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		payload = Record{}
	}
	normalized, err := validator.Validate(ctx, copyAnyMap(payload), action)
	if err != nil {
		return nil, WrapValidationError(err, "core: payload validation failed")
	}
	body, err := json.Marshal(normalized)
	if err != nil {
		return nil, newBadInputError("core: payload is not JSON encodable", map[string]any{
			"resource": r.config.Name,
			"error":    err.Error(),
		})
	}
	return body, nil
}

func (r *Resource) send(
	ctx context.Context,
	operation string,
	method string,
	url string,
	query map[string]string,
	body []byte,
	action Action,
) (Envelope, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	startedAt := time.Now()
	if err := r.ready(); err != nil {
		return Envelope{}, err
	}

	headers := r.Headers()
	if body != nil {
		headers["Content-Type"] = "application/json"
	}
	resp, err := r.transport.Send(ctx, TransportRequest{
		Method:  method,
		URL:     url,
		Headers: headers,
		Query:   copyStringMap(query),
		Body:    body,
	})
	if err != nil {
		var rich *goerrors.Error
		if !goerrors.As(err, &rich) {
			err = newTransportError(err, method, url)
		}
		r.observe(ctx, startedAt, operation, method, url, 0, err)
		return Envelope{}, err
	}

	if r.config.ServerErrorHook != nil {
		if hookErr := r.config.ServerErrorHook(ctx, resp); hookErr != nil {
			r.observe(ctx, startedAt, operation, method, url, resp.StatusCode, hookErr)
			return Envelope{}, hookErr
		}
	}

	decoded := DecodeBody(resp.Body)
	data := decoded.Data()
	if decoded.IsJSON() && r.config.ResponseMapper != nil {
		data = r.config.ResponseMapper(ctx, data, action)
	}
	r.observe(ctx, startedAt, operation, method, url, resp.StatusCode, nil)
	return NewEnvelope(data, resp.StatusCode), nil
}

// paginate runs successful list data through the pagination adapter. Error
// bodies and raw text pass through so the remote's message is preserved.
func (r *Resource) paginate(ctx context.Context, env Envelope) Envelope {
	if r.config.Pagination == nil || !env.IsSuccess() {
		return env
	}
	if _, isText := env.Text(); isText {
		return env
	}
	page, ok := r.config.Pagination.Paginate(ctx, env.Data())
	if !ok {
		return env
	}
	return NewEnvelope(page.Map(), env.Status())
}
