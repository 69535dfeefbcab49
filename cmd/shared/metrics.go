package shared

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"dominicbreuker/wscat/pkg/log"
	"dominicbreuker/wscat/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StartMetrics serves /metrics on addr until ctx is cancelled and returns
// the collector feeding it. An empty addr disables metrics.
func StartMetrics(ctx context.Context, addr string, logger *log.Logger) (metrics.Collector, error) {
	if addr == "" {
		return metrics.Noop(), nil
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector, err := metrics.NewPrometheusCollector(reg)
	if err != nil {
		return nil, fmt.Errorf("metrics.NewPrometheusCollector(): %w", err)
	}

	nl, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("net.Listen(tcp, %s): %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := server.Serve(nl); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorMsg("Serving metrics: %s", err)
		}
	}()
	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()

	logger.InfoMsg("Serving metrics on http://%s/metrics", nl.Addr())
	return collector, nil
}
