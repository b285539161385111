package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/bibbank/pricing-service/pkg/auth"
	"github.com/bibbank/pricing-service/pkg/observability"
)

// ServerOptions configures NewServer. A nil Validator disables
// authentication, which is only meant for local development.
type ServerOptions struct {
	Validator   auth.TokenValidator
	Credentials credentials.TransportCredentials
	Metrics     *observability.RequestMetrics
	Reflection  bool
}

// rolePolicy lists the methods that need more than an authenticated caller.
var rolePolicy = map[string][]string{
	MethodPublishRateConfig: {auth.RolePricingAdmin},
}

// Server wraps a gRPC server with the pricing handler registered.
type Server struct {
	gs     *grpc.Server
	health *health.Server
	logger *slog.Logger
}

func NewServer(handler PricingServiceServer, logger *slog.Logger, opts ServerOptions) *Server {
	interceptors := []grpc.UnaryServerInterceptor{observe(opts.Metrics, logger)}
	if opts.Validator != nil {
		interceptors = append(interceptors, auth.UnaryAuthInterceptor(opts.Validator, []string{
			"/grpc.health.v1.Health/Check",
			"/grpc.health.v1.Health/Watch",
		}, rolePolicy))
	} else {
		logger.Warn("gRPC authentication disabled")
	}

	serverOpts := []grpc.ServerOption{grpc.ChainUnaryInterceptor(interceptors...)}
	if opts.Credentials != nil {
		serverOpts = append(serverOpts, grpc.Creds(opts.Credentials))
		logger.Info("gRPC TLS enabled")
	} else {
		logger.Info("gRPC TLS not configured, running without TLS")
	}

	gs := grpc.NewServer(serverOpts...)

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(gs, healthSrv)
	healthSrv.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	if opts.Reflection {
		reflection.Register(gs)
	}

	RegisterPricingServiceServer(gs, handler)

	return &Server{gs: gs, health: healthSrv, logger: logger}
}

// SetServing flips the health status reported for the pricing service.
func (s *Server) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(ServiceName, st)
}

// Serve starts the gRPC server on the specified address.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.ServeListener(lis)
}

// ServeListener serves on an existing listener.
func (s *Server) ServeListener(lis net.Listener) error {
	s.logger.Info("gRPC server listening", "addr", lis.Addr().String())
	return s.gs.Serve(lis)
}

// GracefulStop stops the server gracefully.
func (s *Server) GracefulStop() {
	s.logger.Info("gRPC server shutting down")
	s.health.Shutdown()
	s.gs.GracefulStop()
}

// observe records one metric sample per call and logs failures.
func observe(metrics *observability.RequestMetrics, logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		metrics.Record(ctx, "grpc", info.FullMethod, code.String(), time.Since(start))
		if err != nil {
			logger.WarnContext(ctx, "gRPC call failed", "method", info.FullMethod, "code", code.String(), "error", err)
		}
		return resp, err
	}
}
