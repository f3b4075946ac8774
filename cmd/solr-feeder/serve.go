package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/totegamma/solr-feeder/internal/infra/providers"
	"github.com/totegamma/solr-feeder/internal/infra/repository"
	"github.com/totegamma/solr-feeder/internal/present/rest"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "serve",
		Short:        "Start the feed HTTP server",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), opts)
		},
	}
}

func serve(ctx context.Context, opts *rootOptions) error {
	conf, err := loadConfig(opts)
	if err != nil {
		return err
	}
	setupLogger(conf.Server)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if conf.Server.EnableTrace {
		shutdown, err := setupTraceProvider(ctx, conf.Server.TraceEndpoint)
		if err != nil {
			return err
		}
		defer shutdown(context.Background())
	}

	db, err := providers.NewDatabase(conf.Server)
	if err != nil {
		return err
	}

	rdb := providers.NewRedis(conf.Server)
	signalService := providers.NewSignalService(rdb, conf.Sync)

	solr := providers.NewSolrGateway(providers.NewClient(conf.Solr))
	names := providers.NewNamesUsecase(db, solr, signalService, conf.Solr)

	checks := []rest.HealthCheck{
		{Name: "postgres", Check: repository.NewNameRequestRepository(db).Ping},
		{Name: "solr", Check: func(ctx context.Context) error {
			return solr.Ping(ctx, conf.Solr.NamesCore, conf.Solr.ConflictsCore)
		}},
	}
	if rdb != nil {
		checks = append(checks, rest.HealthCheck{Name: "redis", Check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}

	var events rest.EventSource
	if signalService != nil {
		events = signalService
	}
	handler := rest.NewHandler(names, providers.NewKeyLock(conf), events, checks...)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(otelecho.Middleware(serviceName, otelecho.WithSkipper(func(c echo.Context) bool {
		return c.Path() == "/healthz"
	})))
	handler.RegisterRoutes(e)

	go func() {
		slog.Info("Starting server", slog.String("addr", conf.Server.ListenAddr), slog.String("module", "main"))
		if err := e.Start(conf.Server.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server stopped", slog.String("error", err.Error()), slog.String("module", "main"))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
