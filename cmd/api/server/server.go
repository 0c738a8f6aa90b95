package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	ginhandler "user-auth-service/internal/adapter/gin/handler"
	ginrouter "user-auth-service/internal/adapter/gin/router"
	"user-auth-service/internal/adapter/grpc/middleware"
	"user-auth-service/internal/config"
	"user-auth-service/internal/usecase/user"
)

// Deps are the application services the transports expose.
type Deps struct {
	UserUC      user.Usecase
	GinHandler  *ginhandler.UserHandler
	RateLimiter *middleware.RateLimiter
	// ListAuth verifies bearer tokens on the list endpoints; nil leaves them public.
	ListAuth middleware.TokenVerifier
	// Readiness probes backing dependencies for GET /ready.
	Readiness map[string]ginrouter.ReadinessCheck
}

// Server struct holds all server dependencies
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	GRPC   *grpc.Server
	Gin    *http.Server

	grpcLis net.Listener
	ginLis  net.Listener
}

// New creates a new server instance
func New(cfg *config.Config, l *zap.Logger, deps Deps) *Server {
	return &Server{
		Config: cfg,
		Logger: l,
		GRPC:   SetupGRPC(deps, l),
		Gin:    SetupGinServer(deps, cfg.Logger.ServiceName, httpAddress(cfg), l),
	}
}

// Start binds both listeners and serves until one of the servers fails or
// both are shut down.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(ctx); err != nil {
		return err
	}
	return s.Serve()
}

// Listen binds the gRPC and HTTP listeners without serving.
func (s *Server) Listen(ctx context.Context) error {
	lc := net.ListenConfig{}

	grpcLis, err := lc.Listen(ctx, "tcp", grpcAddress(s.Config))
	if err != nil {
		return fmt.Errorf("failed to listen for gRPC: %w", err)
	}

	ginLis, err := lc.Listen(ctx, "tcp", s.Gin.Addr)
	if err != nil {
		_ = grpcLis.Close()
		return fmt.Errorf("failed to listen for HTTP: %w", err)
	}

	s.grpcLis, s.ginLis = grpcLis, ginLis
	return nil
}

// Serve runs both servers on the bound listeners.
func (s *Server) Serve() error {
	if s.grpcLis == nil || s.ginLis == nil {
		return errors.New("server is not listening")
	}

	var g errgroup.Group

	g.Go(func() error {
		s.Logger.Info("gRPC server running", zap.String("address", s.grpcLis.Addr().String()))
		if err := s.GRPC.Serve(s.grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("gRPC server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		s.Logger.Info("Gin REST API running", zap.String("address", s.ginLis.Addr().String()))
		if err := s.Gin.Serve(s.ginLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("gin server: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// GRPCAddr returns the bound gRPC address, or "" before Listen.
func (s *Server) GRPCAddr() string {
	if s.grpcLis == nil {
		return ""
	}
	return s.grpcLis.Addr().String()
}

// HTTPAddr returns the bound HTTP address, or "" before Listen.
func (s *Server) HTTPAddr() string {
	if s.ginLis == nil {
		return ""
	}
	return s.ginLis.Addr().String()
}

// Shutdown stops the HTTP server gracefully, then the gRPC server.
// gRPC falls back to a hard stop when ctx expires first.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if s.Gin != nil {
		s.Logger.Info("shutting down Gin server...")
		if err := s.Gin.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("gin shutdown: %w", err))
		}
	}

	if s.GRPC != nil {
		s.Logger.Info("shutting down gRPC server...")
		done := make(chan struct{})
		go func() {
			s.GRPC.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			s.GRPC.Stop()
			errs = append(errs, fmt.Errorf("gRPC graceful stop: %w", ctx.Err()))
		}
	}

	return errors.Join(errs...)
}

// grpcAddress returns the gRPC server address
func grpcAddress(cfg *config.Config) string {
	return ":" + cfg.App.GRPCPort
}

// httpAddress returns the HTTP server address
func httpAddress(cfg *config.Config) string {
	return ":" + cfg.App.HTTPPort
}
