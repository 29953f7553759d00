package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	resources "github.com/goliatone/go-resources"
	"github.com/goliatone/go-resources/adapters/gologger"
	promadapter "github.com/goliatone/go-resources/adapters/prometheus"
	"github.com/goliatone/go-resources/core"
	"github.com/goliatone/go-resources/transport"
	"github.com/goliatone/go-resources/view"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(opts *cliOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the collection over HTTP",
		Long: `serve exposes the configured collection under /{name}, forwarding the
caller's bearer token upstream, and publishes operation metrics on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cfg, err := opts.loadConfig(ctx)
			if err != nil {
				return err
			}
			handler, name, err := newServeHandler(cfg, opts, prometheus.NewRegistry())
			if err != nil {
				return err
			}
			return listenAndServe(addr, handler, name)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}

// newServeHandler registers the configured collection and mounts it next to
// the health and metrics endpoints. It returns the mount name.
func newServeHandler(cfg core.Config, opts *cliOptions, reg *prometheus.Registry) (http.Handler, string, error) {
	if err := cfg.Validate(); err != nil {
		return nil, "", core.NewConfigurationError(err.Error(), nil)
	}
	adapter, err := transport.FromConfig(cfg.Transport, nil)
	if err != nil {
		return nil, "", err
	}
	_, logger := gologger.Resolve("resourcectl", nil, nil)

	resourceConfig := core.NewResourceConfig(cfg, opts.configOptions()...)
	name := strings.TrimSpace(resourceConfig.Collection)
	if name == "" {
		name = core.DefaultResourceName
	}

	registry := resources.NewRegistry()
	if err := registry.Register(resources.Definition{
		Name:   name,
		Config: resourceConfig,
		Options: []core.Option{
			core.WithTransport(adapter),
			core.WithLogger(logger),
			core.WithMetricsRecorder(promadapter.NewRecorder(reg, "")),
		},
	}); err != nil {
		return nil, "", err
	}

	router := chi.NewRouter()
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	router.Route("/"+name, func(r chi.Router) {
		view.Mount(r, view.Endpoint{
			Factory: func(_ *http.Request, token string) (core.CRUD, error) {
				return registry.Build(name, token)
			},
			Tokens:       view.BearerTokenExtractor{},
			Logger:       logger,
			MaxBodyBytes: cfg.Transport.MaxBodyBytes,
		})
	})
	return router, name, nil
}

func listenAndServe(addr string, handler http.Handler, name string) error {
	_, logger := gologger.Resolve("resourcectl", nil, nil)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("resourcectl serving", "addr", addr, "resource", name)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	logger.Info("resourcectl stopped")
	return nil
}
