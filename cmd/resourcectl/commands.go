package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goliatone/go-resources/core"
	"github.com/spf13/cobra"
)

func newRootCommand(out io.Writer) *cobra.Command {
	opts := &cliOptions{}
	root := &cobra.Command{
		Use:   "resourcectl",
		Short: "Proxy a remote REST collection and mirror it locally",
		Long: `resourcectl runs CRUD operations against a remote collection that answers
with JSON, optionally mirroring the results into a local SQL store, and can
serve the collection over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	opts.register(root)

	root.AddCommand(
		newListCommand(opts),
		newGetCommand(opts),
		newCreateCommand(opts),
		newUpdateCommand(opts),
		newDeleteCommand(opts),
		newServeCommand(opts),
	)
	return root
}

type operationFunc func(ctx context.Context, resource *core.Resource) (core.Envelope, error)

// runOperation loads the config, performs op and renders the envelope. List
// and get results can be mirrored.
func runOperation(cmd *cobra.Command, opts *cliOptions, mirrorable bool, op operationFunc) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := opts.loadConfig(ctx)
	if err != nil {
		return err
	}
	resource, err := opts.buildResource(cfg)
	if err != nil {
		return err
	}
	env, err := op(ctx, resource)
	if err != nil {
		return err
	}
	if err := renderEnvelope(cmd.OutOrStdout(), env, opts.output); err != nil {
		return err
	}
	if !mirrorable {
		return nil
	}
	local, err := opts.mirrorEnvelope(ctx, cfg, resource, env)
	if err != nil {
		return err
	}
	if local != nil {
		return renderLocal(cmd.OutOrStdout(), *local, opts.output)
	}
	return nil
}

func newListCommand(opts *cliOptions) *cobra.Command {
	var query []string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, err := parseQuery(query)
			if err != nil {
				return err
			}
			return runOperation(cmd, opts, true, func(ctx context.Context, resource *core.Resource) (core.Envelope, error) {
				return resource.List(ctx, params)
			})
		},
	}
	cmd.Flags().StringArrayVarP(&query, "query", "q", nil, "query parameter as key=value (repeatable)")
	return cmd
}

func newGetCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get PK",
		Short: "Retrieve one item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, opts, true, func(ctx context.Context, resource *core.Resource) (core.Envelope, error) {
				return resource.Retrieve(ctx, args[0], nil)
			})
		},
	}
}

func newCreateCommand(opts *cliOptions) *cobra.Command {
	var data string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an item from a JSON object",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			payload, err := parsePayload(data)
			if err != nil {
				return err
			}
			return runOperation(cmd, opts, false, func(ctx context.Context, resource *core.Resource) (core.Envelope, error) {
				return resource.Create(ctx, payload, nil)
			})
		},
	}
	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON object to send")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func newUpdateCommand(opts *cliOptions) *cobra.Command {
	var (
		data    string
		partial bool
	)
	cmd := &cobra.Command{
		Use:   "update PK",
		Short: "Replace an item, or patch it with --partial",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := parsePayload(data)
			if err != nil {
				return err
			}
			return runOperation(cmd, opts, false, func(ctx context.Context, resource *core.Resource) (core.Envelope, error) {
				return resource.Update(ctx, args[0], payload, nil, partial)
			})
		},
	}
	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON object to send")
	cmd.Flags().BoolVar(&partial, "partial", false, "send a PATCH with only the given fields")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func newDeleteCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete PK",
		Short: "Delete an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, opts, false, func(ctx context.Context, resource *core.Resource) (core.Envelope, error) {
				return resource.Destroy(ctx, args[0], nil)
			})
		},
	}
}

func parsePayload(data string) (core.Record, error) {
	payload := core.Record{}
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return nil, fmt.Errorf("--data must be a JSON object: %w", err)
	}
	return payload, nil
}

func parseQuery(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid query %q, expected key=value", pair)
		}
		out[strings.TrimSpace(key)] = value
	}
	return out, nil
}
