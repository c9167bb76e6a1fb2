package main

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"

	"github.com/vango-dev/vtree/internal/errors"
)

// metricsRouter exposes the registry at /metrics.
func metricsRouter(reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}).ServeHTTP)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	return r
}

// metricsServer serves metricsRouter on addr until Shutdown.
type metricsServer struct {
	srv  *http.Server
	addr string
	done chan error
}

func startMetricsServer(addr string, reg *prometheus.Registry, logger *slog.Logger) (*metricsServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.New(errors.CodeMetricsServer).Wrap(err)
	}

	s := &metricsServer{
		srv: &http.Server{
			Handler:           metricsRouter(reg),
			ReadHeaderTimeout: 5 * time.Second,
		},
		addr: ln.Addr().String(),
		done: make(chan error, 1),
	}
	go func() {
		err := s.srv.Serve(ln)
		if stderrors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.done <- err
	}()

	logger.Info("serving metrics", "addr", s.addr, "path", "/metrics")
	return s, nil
}

// Addr returns the address the server listens on.
func (s *metricsServer) Addr() string {
	return s.addr
}

// Shutdown stops the server and returns the error it stopped with, if any.
func (s *metricsServer) Shutdown(ctx context.Context) error {
	if err := s.srv.Shutdown(ctx); err != nil {
		return errors.New(errors.CodeMetricsServer).Wrap(err)
	}
	if err := <-s.done; err != nil {
		return errors.New(errors.CodeMetricsServer).Wrap(err)
	}
	return nil
}

// writeMetrics writes every metric in reg in the Prometheus text format.
func writeMetrics(w io.Writer, reg prometheus.Gatherer) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
