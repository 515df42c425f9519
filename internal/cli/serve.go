package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/grpcapi"
	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/httpapi"
	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/mcptools"
	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/observability"
	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/report"
)

func newServeCmd(opts *rootOptions, ver string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP and gRPC APIs",
		Long: `Serve the JSON HTTP API (with /healthz and /metrics) and the gRPC
FootprintService until SIGINT or SIGTERM, then drain both gracefully.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts, ver)
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions, ver string) error {
	cfg := opts.cfg
	logger := opts.logger

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		Endpoint:    cfg.Tracing.OTLPEndpoint,
		Environment: cfg.Tracing.Environment,
	}, ver)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		tctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(tctx); err != nil {
			logger.Error().Err(err).Msg("tracing shutdown failed")
		}
	}()

	metrics := observability.NewMetrics()

	publisher := newKafkaPublisher(cfg.Report.Kafka)
	if publisher != nil {
		logger.Info().
			Strs("brokers", cfg.Report.Kafka.Brokers).
			Str("topic", cfg.Report.Kafka.Topic).
			Msg("publishing reports to kafka")
		defer closePublisher(opts, publisher)
	}

	svc, err := opts.newService(metrics, publisher)
	if err != nil {
		return err
	}

	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.GRPC.Addr, err)
	}
	grpcServer := grpcapi.NewGRPCServer(grpcapi.NewServer(svc, logger, metrics))
	httpServer := httpapi.NewServer(cfg.HTTP.Addr, svc, cfg.HTTP.CORS, logger, metrics)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.Info().Str("addr", lis.Addr().String()).Msg("grpc server starting")
		return serveGRPC(grpcServer, lis)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")

		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(sctx); err != nil {
			logger.Error().Err(err).Msg("http shutdown failed")
		}
		grpcServer.GracefulStop()
		return nil
	})

	logger.Info().
		Str("version", ver).
		Str("http_addr", cfg.HTTP.Addr).
		Str("grpc_addr", cfg.GRPC.Addr).
		Bool("test_mode", cfg.TestMode).
		Msg("carbonfootprint serving")
	return g.Wait()
}

// serveGRPC runs srv on lis. A server stopped before or during Serve is a
// clean shutdown.
func serveGRPC(srv *grpc.Server, lis net.Listener) error {
	if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("grpc server: %w", err)
	}
	return nil
}

func closePublisher(opts *rootOptions, p report.Publisher) {
	if err := p.Close(); err != nil {
		opts.logger.Warn().Err(err).Msg("failed to close publisher")
	}
}

func newMCPCmd(opts *rootOptions, ver string) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the calculator as MCP tools on stdio",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			publisher := newKafkaPublisher(opts.cfg.Report.Kafka)
			if publisher != nil {
				defer closePublisher(opts, publisher)
			}
			svc, err := opts.newService(nil, publisher)
			if err != nil {
				return err
			}
			return mcptools.ServeStdio(mcptools.NewServer(svc, ver, opts.logger))
		},
	}
}
