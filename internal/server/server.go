// Package server exposes bit generator sessions over gRPC.
package server

import (
	"context"
	"errors"
	"net"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// Server wraps a grpc.Server carrying the Generator and health services.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
	svc    *Service
	log    zerolog.Logger
}

// New registers svc and the standard health service on a new grpc.Server.
func New(svc *Service, log zerolog.Logger, opts ...grpc.ServerOption) *Server {
	opts = append([]grpc.ServerOption{
		grpc.ChainUnaryInterceptor(UnaryInterceptor(log)),
		grpc.ChainStreamInterceptor(StreamInterceptor(log)),
	}, opts...)
	gs := grpc.NewServer(opts...)
	hs := health.NewServer()
	RegisterGeneratorServer(gs, svc)
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return &Server{grpc: gs, health: hs, svc: svc, log: log}
}

// GRPC returns the underlying server.
func (s *Server) GRPC() *grpc.Server { return s.grpc }

// Serve serves on lis until ctx is cancelled, then marks the health service
// not serving and stops gracefully.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	s.log.Info().Str("addr", lis.Addr().String()).Msg("bitgen server listening")
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpc.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		s.health.Shutdown()
		s.grpc.GracefulStop()
		err := <-serveErr
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			s.log.Info().Int("sessions", s.svc.Len()).Msg("server stopped")
			return nil
		}
		return err
	case err := <-serveErr:
		return err
	}
}

// UnaryInterceptor logs every call and turns panics into Internal errors.
func UnaryInterceptor(log zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Str("method", info.FullMethod).Msg("handler panic")
				err = status.Errorf(codes.Internal, "internal error")
			}
			logCall(log, info.FullMethod, start, err)
		}()
		return handler(ctx, req)
	}
}

// StreamInterceptor is UnaryInterceptor for streaming calls.
func StreamInterceptor(log zerolog.Logger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) (err error) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Str("method", info.FullMethod).Msg("handler panic")
				err = status.Errorf(codes.Internal, "internal error")
			}
			logCall(log, info.FullMethod, start, err)
		}()
		return handler(srv, ss)
	}
}

func logCall(log zerolog.Logger, method string, start time.Time, err error) {
	code := status.Code(err)
	ev := log.Debug()
	switch code {
	case codes.OK, codes.NotFound, codes.InvalidArgument, codes.Canceled:
	default:
		ev = log.Warn().Err(err)
	}
	ev.Str("method", method).Str("code", code.String()).Dur("dur", time.Since(start)).Msg("rpc")
}
