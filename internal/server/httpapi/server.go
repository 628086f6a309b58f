package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/foldershare/internal/logging"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	Addr            string
	AdminAddr       string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Server runs the public API and, when AdminAddr is set, the admin listener.
type Server struct {
	public          *http.Server
	admin           *http.Server
	shutdownTimeout time.Duration
	logger          logging.Logger
}

func NewServer(opts Options, public, admin http.Handler, l logging.Logger) *Server {
	s := &Server{
		public:          newHTTPServer(opts.Addr, public, opts),
		shutdownTimeout: opts.ShutdownTimeout,
		logger:          l.With("module", "http_server"),
	}
	if opts.AdminAddr != "" && admin != nil {
		s.admin = newHTTPServer(opts.AdminAddr, admin, opts)
	}
	return s
}

func newHTTPServer(addr string, h http.Handler, opts Options) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: opts.ReadTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       opts.IdleTimeout,
	}
}

// Run serves until ctx is cancelled and then drains in-flight requests for
// at most the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return s.serve(gctx, s.public, "api") })
	if s.admin != nil {
		g.Go(func() error { return s.serve(gctx, s.admin, "admin") })
	}

	return g.Wait()
}

func (s *Server) serve(ctx context.Context, srv *http.Server, name string) error {
	listen, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...", "listener", name)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown", "listener", name, "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "listener", name, "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	return nil
}
