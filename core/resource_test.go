package core

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func newTestResource(t *testing.T, transport Transport, token string, options ...ConfigOption) *Resource {
	t.Helper()
	cfg := DefaultConfig()
	cfg.ExternalAPIURL = "https://api.example.com/v1"
	base := []ConfigOption{WithCollection("products")}
	config := NewResourceConfig(cfg, append(base, options...)...)
	return NewResource(config, token, WithTransport(transport), WithLogger(stubLogger{}))
}

func TestResourceList_PaginatedEnvelope(t *testing.T) {
	transport := newRecordingTransport(http.StatusOK,
		`{"count":2,"next":null,"previous":null,"results":[{"id":1,"name":"A"},{"id":2,"name":"B"}]}`)
	resource := newTestResource(t, transport, "", WithPagination(DefaultPagination()))

	env, err := resource.List(context.Background(), nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if env.Status() != http.StatusOK {
		t.Fatalf("expected status 200, got %d", env.Status())
	}
	page, ok := env.Record()
	if !ok {
		t.Fatalf("expected object data, got %T", env.Data())
	}
	results, ok := page["results"].([]any)
	if !ok || len(results) != 2 {
		t.Fatalf("expected two results, got %#v", page["results"])
	}
	first, _ := results[0].(map[string]any)
	if first["name"] != "A" {
		t.Fatalf("expected first result name A, got %#v", first["name"])
	}
	if page["next"] != "" || page["previous"] != "" {
		t.Fatalf("expected null links to default to empty strings, got %#v", page)
	}
	if page["count"] != 2 {
		t.Fatalf("expected count 2, got %#v", page["count"])
	}

	calls := transport.calls()
	if len(calls) != 1 || calls[0].Method != http.MethodGet {
		t.Fatalf("expected one GET, got %#v", calls)
	}
	if calls[0].URL != "https://api.example.com/v1/products" {
		t.Fatalf("unexpected list url %q", calls[0].URL)
	}
}

func TestResourceList_ErrorStatusSkipsPagination(t *testing.T) {
	transport := newRecordingTransport(http.StatusForbidden, `{"detail":"denied"}`)
	resource := newTestResource(t, transport, "", WithPagination(DefaultPagination()))

	env, err := resource.List(context.Background(), nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	record, ok := env.Record()
	if !ok || record["detail"] != "denied" {
		t.Fatalf("expected remote error body to pass through, got %#v", env.Data())
	}
	if env.IsSuccess() {
		t.Fatalf("expected non-success envelope")
	}
}

func TestResourceList_BareArrayWithoutPagination(t *testing.T) {
	transport := newRecordingTransport(http.StatusOK, `[{"id":1},{"id":2}]`)
	resource := newTestResource(t, transport, "")

	env, err := resource.List(context.Background(), map[string]string{"page": "2"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	records, ok := env.Records()
	if !ok || len(records) != 2 {
		t.Fatalf("expected two records, got %#v", env.Data())
	}
	if got := transport.calls()[0].Query["page"]; got != "2" {
		t.Fatalf("expected query to be forwarded, got %q", got)
	}
}

func TestResourceCreate_ServerErrorIsEnvelope(t *testing.T) {
	transport := newRecordingTransport(http.StatusInternalServerError, "Internal Server Error")
	resource := newTestResource(t, transport, "", WithValidator(NoopValidator{}))

	env, err := resource.Create(context.Background(), Record{"name": "X"}, nil)
	if err != nil {
		t.Fatalf("expected no error for remote failure, got %v", err)
	}
	if env.Status() != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", env.Status())
	}
	if text, ok := env.Text(); !ok || text != "Internal Server Error" {
		t.Fatalf("expected raw text body, got %#v", env.Data())
	}
}

func TestResourceCreate_InvalidPayloadNeverSends(t *testing.T) {
	transport := newRecordingTransport(http.StatusCreated, `{}`)
	resource := newTestResource(t, transport, "",
		WithValidator(RequiredFieldsValidator{Fields: []string{"name"}}))

	_, err := resource.Create(context.Background(), Record{"wrong": "input"}, nil)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	messages := ValidationMessages(err)
	if len(messages["name"]) != 1 || messages["name"][0] != "This field is required." {
		t.Fatalf("unexpected field errors %#v", messages)
	}
	if len(transport.calls()) != 0 {
		t.Fatalf("expected zero transport calls, got %d", len(transport.calls()))
	}
}

func TestResourceCreate_SendsNormalizedPayloadOnce(t *testing.T) {
	transport := newRecordingTransport(http.StatusCreated, `{"id":7,"name":"X"}`)
	normalizer := ValidatorFunc(func(_ context.Context, payload Record, action Action) (Record, error) {
		if action != ActionCreate {
			t.Fatalf("expected create action, got %s", action)
		}
		out := copyAnyMap(payload)
		out["slug"] = "x"
		return out, nil
	})
	resource := newTestResource(t, transport, "secret", WithValidator(normalizer))

	env, err := resource.Create(context.Background(), Record{"name": "X"}, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if env.Status() != http.StatusCreated {
		t.Fatalf("expected 201, got %d", env.Status())
	}

	calls := transport.calls()
	if len(calls) != 1 {
		t.Fatalf("expected exactly one request, got %d", len(calls))
	}
	if calls[0].Method != http.MethodPost {
		t.Fatalf("expected POST, got %s", calls[0].Method)
	}
	var sent map[string]any
	if err := json.Unmarshal(calls[0].Body, &sent); err != nil {
		t.Fatalf("decode sent body: %v", err)
	}
	if sent["name"] != "X" || sent["slug"] != "x" {
		t.Fatalf("expected normalized payload, got %#v", sent)
	}
	if calls[0].Headers["Authorization"] != "Bearer secret" {
		t.Fatalf("expected auth header, got %#v", calls[0].Headers)
	}
	if calls[0].Headers["Content-Type"] != "application/json" {
		t.Fatalf("expected json content type, got %#v", calls[0].Headers)
	}
}

func TestResourceWrite_RequiresValidator(t *testing.T) {
	transport := newRecordingTransport(http.StatusOK, `{}`)
	resource := newTestResource(t, transport, "")

	_, err := resource.Create(context.Background(), Record{"name": "X"}, nil)
	if !IsConfigurationError(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if len(transport.calls()) != 0 {
		t.Fatalf("expected no transport calls")
	}
}

func TestResource_RequiresBaseURLAndTransport(t *testing.T) {
	config := NewResourceConfig(DefaultConfig())
	resource := NewResource(config, "", WithTransport(newRecordingTransport(http.StatusOK, "")))
	if _, err := resource.List(context.Background(), nil); !IsConfigurationError(err) {
		t.Fatalf("expected configuration error for missing base url, got %v", err)
	}

	cfg := DefaultConfig()
	cfg.ExternalAPIURL = "https://api.example.com"
	resource = NewResource(NewResourceConfig(cfg), "")
	if _, err := resource.Retrieve(context.Background(), "1", nil); !IsConfigurationError(err) {
		t.Fatalf("expected configuration error for missing transport, got %v", err)
	}
}

func TestResourceUpdate_PutAndPatch(t *testing.T) {
	var actions []Action
	validator := ValidatorFunc(func(_ context.Context, payload Record, action Action) (Record, error) {
		actions = append(actions, action)
		return RequiredFieldsValidator{Fields: []string{"name"}}.Validate(context.Background(), payload, action)
	})
	transport := newRecordingTransport(http.StatusOK, `{"id":3}`)
	resource := newTestResource(t, transport, "", WithValidator(validator))

	if _, err := resource.Update(context.Background(), "3", Record{"name": "full"}, nil, false); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := resource.Update(context.Background(), "3", Record{"price": 10}, nil, true); err != nil {
		t.Fatalf("partial update: %v", err)
	}

	calls := transport.calls()
	if len(calls) != 2 {
		t.Fatalf("expected two requests, got %d", len(calls))
	}
	if calls[0].Method != http.MethodPut || calls[1].Method != http.MethodPatch {
		t.Fatalf("expected PUT then PATCH, got %s then %s", calls[0].Method, calls[1].Method)
	}
	if calls[0].URL != "https://api.example.com/v1/products/3" {
		t.Fatalf("unexpected update url %q", calls[0].URL)
	}
	if len(actions) != 2 || actions[0] != ActionUpdate || actions[1] != ActionPartialUpdate {
		t.Fatalf("unexpected validator actions %#v", actions)
	}
}

func TestResourceDestroy_NoValidation(t *testing.T) {
	transport := newRecordingTransport(http.StatusNoContent, "")
	resource := newTestResource(t, transport, "")

	env, err := resource.Destroy(context.Background(), "9", nil)
	if err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if env.Status() != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", env.Status())
	}
	if text, ok := env.Text(); !ok || text != "" {
		t.Fatalf("expected empty raw body, got %#v", env.Data())
	}
	calls := transport.calls()
	if len(calls) != 1 || calls[0].Method != http.MethodDelete || calls[0].Body != nil {
		t.Fatalf("expected bodiless DELETE, got %#v", calls)
	}
}

func TestResourceURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ExternalAPIURL = "https://api.example.com/v1/"
	plain := NewResource(NewResourceConfig(cfg), "")
	withCollection := NewResource(NewResourceConfig(cfg, WithCollection("/products/")), "")
	trailing := NewResource(NewResourceConfig(cfg, WithCollection("products"), WithTrailingSlash(true)), "")

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{name: "empty segment equals no segment", got: plain.URL(""), expected: plain.URL()},
		{name: "base kept as given", got: plain.URL(), expected: "https://api.example.com/v1/"},
		{name: "single slash join", got: plain.URL("/7"), expected: "https://api.example.com/v1/7"},
		{name: "collection", got: withCollection.URL(), expected: "https://api.example.com/v1/products"},
		{name: "collection and pk", got: withCollection.URL("", "7"), expected: "https://api.example.com/v1/products/7"},
		{name: "trailing slash", got: trailing.URL("7"), expected: "https://api.example.com/v1/products/7/"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, tc.got)
			}
		})
	}
}

func TestResourceHeaders(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ExternalAPIURL = "https://api.example.com"
	cfg.Headers = map[string]string{"X-Client": "resources", "Authorization": "static"}

	anonymous := NewResource(NewResourceConfig(cfg), "")
	if got := anonymous.Headers()["Authorization"]; got != "static" {
		t.Fatalf("expected static header without token, got %q", got)
	}

	bearer := NewResource(NewResourceConfig(cfg), "abc")
	if got := bearer.Headers()["Authorization"]; got != "Bearer abc" {
		t.Fatalf("expected auth header to win, got %q", got)
	}

	custom := NewResource(NewResourceConfig(cfg, WithAuthHeader("X-Api-Key", "")), "abc")
	headers := custom.Headers()
	if headers["X-Api-Key"] != "abc" {
		t.Fatalf("expected bare token without prefix, got %q", headers["X-Api-Key"])
	}
	if headers["X-Client"] != "resources" {
		t.Fatalf("expected static headers to be kept, got %#v", headers)
	}
}

func TestResource_ServerErrorHookAborts(t *testing.T) {
	sentinel := errors.New("maintenance")
	transport := newRecordingTransport(http.StatusServiceUnavailable, `{"detail":"down"}`)
	resource := newTestResource(t, transport, "", WithServerErrorHook(func(_ context.Context, resp TransportResponse) error {
		if resp.StatusCode == http.StatusServiceUnavailable {
			return sentinel
		}
		return nil
	}))

	_, err := resource.Retrieve(context.Background(), "1", nil)
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected hook error, got %v", err)
	}
}

func TestResource_ResponseMapperReceivesAction(t *testing.T) {
	transport := newRecordingTransport(http.StatusOK, `{"product_name":"A","sku":"1"}`)
	var seen Action
	mapper := func(ctx context.Context, data any, action Action) any {
		seen = action
		return NewTransformer(map[string]string{"product_name": "name"}).Transform(data)
	}
	resource := newTestResource(t, transport, "", WithResponseMapper(mapper))

	env, err := resource.Retrieve(context.Background(), "1", nil)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	record, _ := env.Record()
	if record["name"] != "A" || len(record) != 1 {
		t.Fatalf("expected mapped record, got %#v", record)
	}
	if seen != ActionGet {
		t.Fatalf("expected get action, got %q", seen)
	}
}

func TestResource_TransportFailureIsError(t *testing.T) {
	transport := newRecordingTransport(0, "")
	transport.err = errors.New("connection refused")
	resource := newTestResource(t, transport, "")

	_, err := resource.List(context.Background(), nil)
	if !IsTransportError(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestResource_ValidatorSelectorWins(t *testing.T) {
	transport := newRecordingTransport(http.StatusCreated, `{}`)
	strict := RequiredFieldsValidator{Fields: []string{"owner"}}
	resource := newTestResource(t, transport, "",
		WithValidator(NoopValidator{}),
		WithValidatorSelector(func(_ context.Context, rc RequestContext) Validator {
			if rc.Method == http.MethodPost {
				return strict
			}
			return nil
		}),
	)

	ctx := WithRequestContext(context.Background(), RequestContext{Method: http.MethodPost})
	if _, err := resource.Create(ctx, Record{"name": "X"}, nil); !IsValidationError(err) {
		t.Fatalf("expected selected validator to reject, got %v", err)
	}
	if _, err := resource.Create(context.Background(), Record{"name": "X"}, nil); err != nil {
		t.Fatalf("expected fallback validator to accept, got %v", err)
	}
	if len(transport.calls()) != 1 {
		t.Fatalf("expected one request, got %d", len(transport.calls()))
	}
}

func TestResource_Observability(t *testing.T) {
	metrics := &captureMetricsRecorder{}
	logger := newCaptureLogger()
	cfg := DefaultConfig()
	cfg.ExternalAPIURL = "https://api.example.com"
	resource := NewResource(NewResourceConfig(cfg, WithCollection("products")), "",
		WithTransport(newRecordingTransport(http.StatusOK, `[]`)),
		WithMetricsRecorder(metrics),
		WithLoggerProvider(stubLoggerProvider{logger: logger}),
		WithLogger(logger),
	)

	ctx := WithRequestContext(context.Background(), RequestContext{RequestID: "req_1"})
	if _, err := resource.List(ctx, nil); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !metrics.hasCounter("resources.list.total", "success") {
		t.Fatalf("expected resources.list.total success counter")
	}
	if !metrics.hasHistogram("resources.list.duration_ms") {
		t.Fatalf("expected resources.list.duration_ms histogram")
	}
	entry, ok := logger.find("info", "list succeeded")
	if !ok {
		t.Fatalf("expected list succeeded log")
	}
	if entry.fields["resource"] != "products" || entry.fields["request_id"] != "req_1" {
		t.Fatalf("unexpected log fields %#v", entry.fields)
	}
}

func TestResourceMirror_UsesPageResults(t *testing.T) {
	transport := newRecordingTransport(http.StatusOK,
		`{"count":2,"next":null,"previous":null,"results":[{"id":2,"name":"B"},{"id":1,"name":"A"}]}`)
	resource := newTestResource(t, transport, "", WithPagination(DefaultPagination()))
	env, err := resource.List(context.Background(), nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	store := newMemoryStore()
	mirror := resource.Mirror(env, store)
	if mirror.Status() != http.StatusOK {
		t.Fatalf("expected mirrored status 200, got %d", mirror.Status())
	}
	if err := mirror.Manager().Persist(context.Background()); err != nil {
		t.Fatalf("persist: %v", err)
	}
	count, _ := store.Count(context.Background(), "products")
	if count != 2 {
		t.Fatalf("expected two mirrored entities under products, got %d", count)
	}
	keys, err := mirror.Manager().Keys()
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 2 || keys[0] != "2" || keys[1] != "1" {
		t.Fatalf("unexpected keys %#v", keys)
	}
}
