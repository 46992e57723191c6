package grpc

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/andrescamacho/outpost-go/internal/application/logging"
	"github.com/andrescamacho/outpost-go/internal/application/mediator"
)

// DaemonServer serves GameService and the standard health service on a
// unix socket
type DaemonServer struct {
	listener   net.Listener
	socketPath string
	grpcServer *grpc.Server
	health     *health.Server
	logger     logging.Logger
}

// NewDaemonServer listens on socketPath. An existing socket file is
// replaced and the new one is readable by the owner only.
func NewDaemonServer(m mediator.Mediator, socketPath string, logger logging.Logger) (*DaemonServer, error) {
	// Remove existing socket file if present
	if err := os.RemoveAll(socketPath); err != nil {
		return nil, fmt.Errorf("failed to remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create unix socket listener: %w", err)
	}

	if err := os.Chmod(socketPath, 0600); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to set socket permissions: %w", err)
	}

	server := NewDaemonServerWithListener(m, listener, logger)
	server.socketPath = socketPath
	return server, nil
}

// NewDaemonServerWithListener serves on an existing listener
func NewDaemonServerWithListener(m mediator.Mediator, listener net.Listener, logger logging.Logger) *DaemonServer {
	if logger == nil {
		logger = logging.NoOp()
	}

	s := &DaemonServer{
		listener: listener,
		health:   health.NewServer(),
		logger:   logger,
	}
	s.grpcServer = grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))

	RegisterGameServiceServer(s.grpcServer, NewGameService(m))
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	return s
}

// Addr is the address the server listens on
func (s *DaemonServer) Addr() string {
	return s.listener.Addr().String()
}

// Start serves until ctx is cancelled, then drains in-flight calls for at
// most drainTimeout before forcing the server down
func (s *DaemonServer) Start(ctx context.Context, drainTimeout time.Duration) error {
	s.logger.Log("INFO", "Daemon server listening", map[string]interface{}{
		"address": s.Addr(),
	})

	errChan := make(chan error, 1)
	go func() {
		if err := s.grpcServer.Serve(s.listener); err != nil && err != grpc.ErrServerStopped {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
		close(errChan)
	}()

	select {
	case err, ok := <-errChan:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
		s.Stop(drainTimeout)
		return nil
	}
}

// Stop marks the service as not serving and stops gracefully. Calls still
// running after timeout are cut off.
func (s *DaemonServer) Stop(timeout time.Duration) {
	s.logger.Log("INFO", "Initiating graceful shutdown of gRPC server", nil)
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		s.logger.Log("WARNING", "Graceful shutdown timed out, forcing stop", map[string]interface{}{
			"timeout": timeout.String(),
		})
		s.grpcServer.Stop()
	}

	if s.socketPath != "" {
		_ = os.Remove(s.socketPath)
	}
}

// loggingInterceptor puts the daemon logger into the call context so the
// mediator middleware and handlers log through it
func (s *DaemonServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	ctx = logging.WithLogger(ctx, s.logger)
	start := time.Now()

	resp, err := handler(ctx, req)

	metadata := map[string]interface{}{
		"method":   info.FullMethod,
		"duration": time.Since(start).String(),
	}
	if err != nil {
		metadata["error"] = err.Error()
		s.logger.Log("WARNING", "RPC failed", metadata)
	} else {
		s.logger.Log("DEBUG", "RPC handled", metadata)
	}
	return resp, err
}
