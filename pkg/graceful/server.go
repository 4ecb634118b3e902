package graceful

import (
	"context"
	stdErrors "errors"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Server wraps http.Server with graceful shutdown capabilities.
type Server struct {
	httpServer      *http.Server
	log             *slog.Logger
	shutdownTimeout time.Duration
}

// NewServer constructs a graceful server wrapper.
func NewServer(log *slog.Logger, srv *http.Server, shutdownTimeout time.Duration) *Server {
	if log == nil {
		log = slog.Default()
	}

	return &Server{
		httpServer:      srv,
		log:             log,
		shutdownTimeout: shutdownTimeout,
	}
}

// ListenAndServe serves until ctx is canceled, then shuts down within the
// shutdown timeout. A listener failure is returned without waiting for ctx.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}

	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)

	go func() {
		s.log.Info("http server listening", slog.String("addr", ln.Addr().String()))
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err != nil && !stdErrors.Is(err, http.ErrServerClosed) {
			s.log.Error("http server error", slog.Any("error", err))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	s.log.Info("shutting down http server", slog.Duration("timeout", s.shutdownTimeout))

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.log.Error("http server shutdown error", slog.Any("error", err))
		return err
	}

	if err := <-errCh; err != nil && !stdErrors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
