package httpsrv

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

type Server struct {
	srv    *http.Server
	router *http.ServeMux
}

type ServerOptions struct {
	MetricsHandler http.Handler
	MetricsPath    string
	// ReportHandler serves the latest sweep report, the route is skipped when nil.
	ReportHandler http.Handler
	ReportPath    string
}

func NewServer(addr string, opts ServerOptions) *Server {
	router := http.NewServeMux()

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}

	if opts.ReportPath == "" {
		opts.ReportPath = "/report"
	}

	router.Handle("GET /health", healthHandler())

	if opts.MetricsHandler != nil {
		router.Handle(opts.MetricsPath, opts.MetricsHandler)
	}

	if opts.ReportHandler != nil {
		router.Handle("GET "+opts.ReportPath, opts.ReportHandler)
	}

	return &Server{
		srv:    srv,
		router: router,
	}
}

func (s *Server) ListenAddr() string {
	return s.srv.Addr
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	err := s.srv.ListenAndServe()

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}

// Serve accepts connections on l, mostly useful with an ephemeral port.
func (s *Server) Serve(l net.Listener) error {
	err := s.srv.Serve(l)

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
