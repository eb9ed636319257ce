package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	grpc_logging "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"

	v1 "github.com/KirkDiggler/spell-planner/internal/handlers/http/v1"
	"github.com/KirkDiggler/spell-planner/internal/orchestrators/catalog"
)

const (
	shutdownTimeout = 30 * time.Second
	// healthService is the gRPC health name reported for the planner
	healthService = "spellplanner.v1.Planner"
)

var (
	httpPort int
	grpcPort int
	preload  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and the gRPC health server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&httpPort, "http-port", 0, "HTTP port (overrides PLANNER_SERVER_HTTP_PORT)")
	serveCmd.Flags().IntVar(&grpcPort, "grpc-port", -1, "gRPC health port, 0 disables (overrides PLANNER_SERVER_GRPC_PORT)")
	serveCmd.Flags().BoolVar(&preload, "preload", false, "Load every class catalog before serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if httpPort == 0 {
		httpPort = a.cfg.Server.HTTPPort
	}
	if grpcPort < 0 {
		grpcPort = a.cfg.Server.GRPCPort
	}

	if preload {
		out, err := a.catalog.Preload(ctx, &catalog.PreloadInput{})
		if err != nil {
			return fmt.Errorf("failed to preload catalogs: %w", err)
		}
		slog.InfoContext(ctx, "catalogs preloaded", "classes", len(out.SpellCounts))
	}

	handler, err := v1.NewHandler(&v1.HandlerConfig{
		CharacterService: a.characters,
		CatalogService:   a.catalog,
		RequestTimeout:   timeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create http handler: %w", err)
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", httpPort),
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.InfoContext(gctx, "http server starting", "port", httpPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	var (
		grpcServer   *grpc.Server
		healthServer *health.Server
	)
	if grpcPort > 0 {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", grpcPort))
		if err != nil {
			return fmt.Errorf("failed to listen: %w", err)
		}

		grpcServer, healthServer = newGRPCServer()
		g.Go(func() error {
			slog.InfoContext(gctx, "grpc health server starting", "port", grpcPort)
			if err := grpcServer.Serve(lis); err != nil {
				return fmt.Errorf("failed to serve grpc: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down servers")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if healthServer != nil {
			healthServer.Shutdown()
		}
		if grpcServer != nil {
			stopGRPC(shutdownCtx, grpcServer)
		}
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newGRPCServer() (*grpc.Server, *health.Server) {
	logger := grpc_logging.LoggerFunc(logFunc)
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpc_logging.UnaryServerInterceptor(logger),
			grpc_recovery.UnaryServerInterceptor(),
		),
		grpc.ChainStreamInterceptor(
			grpc_logging.StreamServerInterceptor(logger),
			grpc_recovery.StreamServerInterceptor(),
		),
	)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(healthService, grpc_health_v1.HealthCheckResponse_SERVING)

	reflection.Register(srv)
	return srv, healthServer
}

func stopGRPC(ctx context.Context, srv *grpc.Server) {
	stopped := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(stopped)
	}()

	select {
	case <-ctx.Done():
		slog.Warn("graceful grpc shutdown timed out, forcing stop")
		srv.Stop()
	case <-stopped:
		slog.Info("grpc server stopped gracefully")
	}
}

func logFunc(ctx context.Context, level grpc_logging.Level, msg string, fields ...any) {
	slog.Log(ctx, slog.Level(level), msg, fields...)
}
