package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	resources "github.com/goliatone/go-resources"
	"github.com/goliatone/go-resources/adapters/gologger"
	"github.com/goliatone/go-resources/core"
	sqlstore "github.com/goliatone/go-resources/store/sql"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

type cliOptions struct {
	configFile string
	url        string
	collection string
	token      string
	retries    int
	keyField   string
	mirror     bool
	local      bool
	paginated  bool
	dbDriver   string
	dbDSN      string
	output     string
}

func (o *cliOptions) register(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVarP(&o.configFile, "config", "c", "", "YAML config file")
	flags.StringVar(&o.url, "url", "", "remote API base URL (overrides external_api_url)")
	flags.StringVar(&o.collection, "collection", "", "collection path appended to the base URL")
	flags.StringVarP(&o.token, "token", "t", "", "token sent in the auth header")
	flags.IntVar(&o.retries, "retries", 0, "retry attempts for connection failures and 5xx responses")
	flags.StringVar(&o.keyField, "key-field", "", "primary key field of mirrored records")
	flags.BoolVar(&o.mirror, "mirror", false, "persist list/get results into the local store")
	flags.BoolVar(&o.paginated, "paginated", false, "treat list responses as {count, next, previous, results} pages")
	flags.BoolVar(&o.local, "local", false, "print the local read-back in batch order after mirroring")
	flags.StringVar(&o.dbDriver, "db-driver", "", "local store driver (sqlite3, postgres)")
	flags.StringVar(&o.dbDSN, "db-dsn", "", "local store DSN")
	flags.StringVarP(&o.output, "output", "o", outputTable, "output format (table, json)")
}

// loadConfig layers built-in defaults, the config file and the flags.
func (o *cliOptions) loadConfig(ctx context.Context) (core.Config, error) {
	raw := map[string]any{}
	if path := strings.TrimSpace(o.configFile); path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return core.Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(content, &raw); err != nil {
			return core.Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	runtime := core.Config{
		ExternalAPIURL:  strings.TrimSpace(o.url),
		PrimaryKeyField: strings.TrimSpace(o.keyField),
		Transport:       core.TransportConfig{RetryMax: o.retries},
		Persistence: core.PersistenceConfig{
			Driver: strings.TrimSpace(o.dbDriver),
			DSN:    strings.TrimSpace(o.dbDSN),
		},
	}
	provider := core.NewCfgxConfigProvider(core.StaticRawConfigLoader{Values: raw})
	return core.LoadConfig(ctx, provider, core.GoOptionsResolver{}, runtime)
}

func (o *cliOptions) configOptions() []core.ConfigOption {
	opts := []core.ConfigOption{core.WithValidator(core.NoopValidator{})}
	if collection := strings.TrimSpace(o.collection); collection != "" {
		opts = append(opts, core.WithCollection(collection))
	}
	if o.paginated {
		opts = append(opts, core.WithPagination(core.DefaultPagination()))
	}
	return opts
}

func (o *cliOptions) buildResource(cfg core.Config, extra ...core.Option) (*core.Resource, error) {
	opts := gologger.ResourceOptions("resourcectl", nil, nil)
	opts = append(opts, extra...)
	return resources.NewResourceFromConfig(cfg, o.token, o.configOptions(), opts...)
}

// mirrorEnvelope persists a successful envelope and optionally reads it back.
// It returns nil when nothing is to be printed.
func (o *cliOptions) mirrorEnvelope(ctx context.Context, cfg core.Config, resource *core.Resource, env core.Envelope) (*core.LocalResult, error) {
	if !o.mirror || !env.IsSuccess() {
		return nil, nil
	}
	mirror, err := sqlstore.Open(ctx, cfg.Persistence)
	if err != nil {
		return nil, err
	}
	defer func() { _ = mirror.Close() }()

	managed := resource.Mirror(env, mirror.Store())
	manager := managed.Manager()
	if err := manager.Persist(ctx); err != nil {
		return nil, err
	}
	if !o.local {
		return nil, nil
	}
	result, err := manager.GetLocal(ctx, core.GetLocalOptions{ExactOrder: true})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
