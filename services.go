// Package resources is the entry point for proxying a remote REST collection
// and mirroring its records locally.
package resources

import (
	"github.com/goliatone/go-resources/core"
	"github.com/goliatone/go-resources/transport"
)

type Config = core.Config
type TransportConfig = core.TransportConfig
type PersistenceConfig = core.PersistenceConfig

type Resource = core.Resource
type ResourceConfig = core.ResourceConfig
type ConfigOption = core.ConfigOption
type Option = core.Option

type Envelope = core.Envelope
type Record = core.Record
type Action = core.Action

type Validator = core.Validator
type Pagination = core.Pagination
type LocalStore = core.LocalStore
type LocalEntity = core.LocalEntity

type DataManager = core.DataManager
type ManagerOption = core.ManagerOption
type GetLocalOptions = core.GetLocalOptions
type LocalResult = core.LocalResult

var (
	WithBaseURL           = core.WithBaseURL
	WithName              = core.WithName
	WithCollection        = core.WithCollection
	WithModelCollection   = core.WithModelCollection
	WithTrailingSlash     = core.WithTrailingSlash
	WithAuthHeader        = core.WithAuthHeader
	WithHeader            = core.WithHeader
	WithPrimaryKeyField   = core.WithPrimaryKeyField
	WithValidator         = core.WithValidator
	WithValidatorSelector = core.WithValidatorSelector
	WithPagination        = core.WithPagination
	WithResponseMapper    = core.WithResponseMapper
	WithServerErrorHook   = core.WithServerErrorHook

	WithTransport       = core.WithTransport
	WithLogger          = core.WithLogger
	WithLoggerProvider  = core.WithLoggerProvider
	WithMetricsRecorder = core.WithMetricsRecorder

	WithKeyField      = core.WithKeyField
	WithResourceName  = core.WithResourceName
	WithSaveValidator = core.WithSaveValidator
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewResourceConfig(cfg Config, opts ...ConfigOption) ResourceConfig {
	return core.NewResourceConfig(cfg, opts...)
}

// NewResource builds a resource that talks plain HTTP unless opts supply a
// transport.
func NewResource(config ResourceConfig, token string, opts ...Option) *Resource {
	all := make([]Option, 0, len(opts)+1)
	all = append(all, core.WithTransport(transport.NewRESTAdapter(nil)))
	all = append(all, opts...)
	return core.NewResource(config, token, all...)
}

// NewResourceFromConfig picks the transport from cfg.Transport, so a positive
// retry_max yields a retrying client.
func NewResourceFromConfig(cfg Config, token string, configOptions []ConfigOption, opts ...Option) (*Resource, error) {
	if err := cfg.Validate(); err != nil {
		return nil, core.NewConfigurationError(err.Error(), nil)
	}
	adapter, err := transport.FromConfig(cfg.Transport, nil)
	if err != nil {
		return nil, err
	}
	all := make([]Option, 0, len(opts)+1)
	all = append(all, core.WithTransport(adapter))
	all = append(all, opts...)
	return core.NewResource(core.NewResourceConfig(cfg, configOptions...), token, all...), nil
}

func NewDataManager(data any, store LocalStore, opts ...ManagerOption) *DataManager {
	return core.NewDataManager(data, store, opts...)
}
