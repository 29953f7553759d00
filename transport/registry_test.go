package transport

import (
	"context"
	"net/http"
	"testing"

	"github.com/goliatone/go-resources/core"
)

type staticAdapter struct {
	kind string
}

func (a staticAdapter) Kind() string { return a.kind }

func (a staticAdapter) Send(context.Context, core.TransportRequest) (core.TransportResponse, error) {
	return core.TransportResponse{StatusCode: http.StatusOK}, nil
}

func TestRegistry_RegisterGetAndKinds(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(staticAdapter{kind: "stub"}); err != nil {
		t.Fatalf("register stub adapter: %v", err)
	}
	if err := registry.RegisterFactory("custom", func(FactoryOptions) (Adapter, error) {
		return staticAdapter{kind: "custom"}, nil
	}); err != nil {
		t.Fatalf("register factory: %v", err)
	}

	if _, ok := registry.Get("STUB"); !ok {
		t.Fatalf("expected kind lookup to be case insensitive")
	}
	kinds := registry.Kinds()
	if len(kinds) != 2 || kinds[0] != "custom" || kinds[1] != "stub" {
		t.Fatalf("expected sorted kinds, got %#v", kinds)
	}
	if err := registry.Register(staticAdapter{kind: "stub"}); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}

func TestRegistry_BuildUnknownKind(t *testing.T) {
	_, err := NewRegistry().Build("soap", FactoryOptions{})
	if !core.IsConfigurationError(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestFromConfig(t *testing.T) {
	rest, err := FromConfig(core.TransportConfig{Kind: "rest", TimeoutMS: 1500, MaxBodyBytes: 64}, nil)
	if err != nil {
		t.Fatalf("rest from config: %v", err)
	}
	if rest.Kind() != KindREST {
		t.Fatalf("expected rest adapter, got %q", rest.Kind())
	}
	restAdapter := rest.(*RESTAdapter)
	if restAdapter.MaxResponseBodyBytes != 64 {
		t.Fatalf("expected body limit from config, got %d", restAdapter.MaxResponseBodyBytes)
	}
	if client := restAdapter.Client.(*http.Client); client.Timeout.Milliseconds() != 1500 {
		t.Fatalf("expected timeout from config, got %s", client.Timeout)
	}

	retrying, err := FromConfig(core.TransportConfig{RetryMax: 2}, nil)
	if err != nil {
		t.Fatalf("retryable from config: %v", err)
	}
	if retrying.Kind() != KindRetryable {
		t.Fatalf("expected retry_max to select the retryable adapter, got %q", retrying.Kind())
	}
}
