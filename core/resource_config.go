package core

import (
	"net/url"
	"strings"
)

// ResourceConfig is the immutable per-proxy configuration. Build it with
// NewResourceConfig; a Resource keeps its own copy.
type ResourceConfig struct {
	Name              string
	BaseURL           string
	Collection        string
	TrailingSlash     bool
	AuthHeaderName    string
	AuthHeaderPrefix  string
	Headers           map[string]string
	PrimaryKeyField   string
	Validator         Validator
	ValidatorSelector ValidatorSelector
	Pagination        Pagination
	ResponseMapper    ResponseMapper
	ServerErrorHook   ServerErrorHook
}

type ConfigOption func(*ResourceConfig)

func WithBaseURL(baseURL string) ConfigOption {
	return func(c *ResourceConfig) {
		c.BaseURL = strings.TrimSpace(baseURL)
	}
}

func WithName(name string) ConfigOption {
	return func(c *ResourceConfig) {
		c.Name = strings.TrimSpace(name)
	}
}

// WithCollection appends a collection path segment to the base URL.
func WithCollection(collection string) ConfigOption {
	return func(c *ResourceConfig) {
		c.Collection = strings.Trim(strings.TrimSpace(collection), "/")
	}
}

// WithModelCollection derives the collection segment from a model type name,
// e.g. "ProductCategory" becomes "product-categories".
func WithModelCollection(model string) ConfigOption {
	return WithCollection(CollectionSlug(model))
}

func WithTrailingSlash(enabled bool) ConfigOption {
	return func(c *ResourceConfig) {
		c.TrailingSlash = enabled
	}
}

func WithAuthHeader(name string, prefix string) ConfigOption {
	return func(c *ResourceConfig) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			c.AuthHeaderName = trimmed
		}
		c.AuthHeaderPrefix = strings.TrimSpace(prefix)
	}
}

func WithHeader(name string, value string) ConfigOption {
	return func(c *ResourceConfig) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		if c.Headers == nil {
			c.Headers = map[string]string{}
		}
		c.Headers[name] = value
	}
}

func WithPrimaryKeyField(field string) ConfigOption {
	return func(c *ResourceConfig) {
		if trimmed := strings.TrimSpace(field); trimmed != "" {
			c.PrimaryKeyField = trimmed
		}
	}
}

func WithValidator(validator Validator) ConfigOption {
	return func(c *ResourceConfig) {
		c.Validator = validator
	}
}

func WithValidatorSelector(selector ValidatorSelector) ConfigOption {
	return func(c *ResourceConfig) {
		c.ValidatorSelector = selector
	}
}

func WithPagination(pagination Pagination) ConfigOption {
	return func(c *ResourceConfig) {
		c.Pagination = pagination
	}
}

func WithResponseMapper(mapper ResponseMapper) ConfigOption {
	return func(c *ResourceConfig) {
		c.ResponseMapper = mapper
	}
}

func WithServerErrorHook(hook ServerErrorHook) ConfigOption {
	return func(c *ResourceConfig) {
		c.ServerErrorHook = hook
	}
}

// NewResourceConfig applies per-deployment defaults from cfg and then the
// given options.
func NewResourceConfig(cfg Config, options ...ConfigOption) ResourceConfig {
	out := ResourceConfig{
		BaseURL:          strings.TrimSpace(cfg.ExternalAPIURL),
		AuthHeaderName:   strings.TrimSpace(cfg.AuthHeaderName),
		AuthHeaderPrefix: strings.TrimSpace(cfg.AuthHeaderPrefix),
		PrimaryKeyField:  strings.TrimSpace(cfg.PrimaryKeyField),
		Headers:          copyStringMap(cfg.Headers),
	}
	if out.AuthHeaderName == "" {
		out.AuthHeaderName = DefaultAuthHeaderName
	}
	if out.PrimaryKeyField == "" {
		out.PrimaryKeyField = DefaultPrimaryKeyField
	}
	for _, option := range options {
		if option == nil {
			continue
		}
		option(&out)
	}
	if out.Name == "" {
		out.Name = deriveResourceName(out.BaseURL, out.Collection)
	}
	return out.clone()
}

func (c ResourceConfig) clone() ResourceConfig {
	out := c
	out.Headers = copyStringMap(c.Headers)
	return out
}

func deriveResourceName(baseURL string, collection string) string {
	if collection != "" {
		return collection
	}
	if parsed, err := url.Parse(baseURL); err == nil {
		segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
		for i := len(segments) - 1; i >= 0; i-- {
			if segment := strings.TrimSpace(segments[i]); segment != "" {
				return segment
			}
		}
		if parsed.Host != "" {
			return parsed.Host
		}
	}
	return "resource"
}
