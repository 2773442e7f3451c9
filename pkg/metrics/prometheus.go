package metrics

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dbehnke/viterbi-decoder/pkg/logger"
)

// PrometheusConfig holds Prometheus server configuration.
type PrometheusConfig struct {
	Enabled bool
	Port    int
	Path    string
}

// PrometheusHandler handles Prometheus metrics HTTP requests.
type PrometheusHandler struct {
	collector *Collector
}

// NewPrometheusHandler creates a new Prometheus handler.
func NewPrometheusHandler(collector *Collector) *PrometheusHandler {
	return &PrometheusHandler{
		collector: collector,
	}
}

// ServeHTTP handles HTTP requests for metrics.
func (h *PrometheusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	var output strings.Builder

	output.WriteString("# HELP viterbi_decoders_active Number of currently active decoder instances\n")
	output.WriteString("# TYPE viterbi_decoders_active gauge\n")
	output.WriteString(fmt.Sprintf("viterbi_decoders_active %d\n", h.collector.GetActiveDecoders()))

	output.WriteString("# HELP viterbi_blocks_decoded_total Total blocks whose OUTPUT phase completed\n")
	output.WriteString("# TYPE viterbi_blocks_decoded_total counter\n")
	output.WriteString(fmt.Sprintf("viterbi_blocks_decoded_total %d\n", h.collector.GetBlocksDecoded()))

	output.WriteString("# HELP viterbi_blocks_terminated_total Total blocks decoded via zero-tail termination\n")
	output.WriteString("# TYPE viterbi_blocks_terminated_total counter\n")
	output.WriteString(fmt.Sprintf("viterbi_blocks_terminated_total %d\n", h.collector.GetBlocksTerminated()))

	output.WriteString("# HELP viterbi_blocks_spilled_total Total blocks whose output overflowed into the save buffer\n")
	output.WriteString("# TYPE viterbi_blocks_spilled_total counter\n")
	output.WriteString(fmt.Sprintf("viterbi_blocks_spilled_total %d\n", h.collector.GetBlocksSpilled()))

	output.WriteString("# HELP viterbi_symbols_consumed_total Total soft symbols consumed\n")
	output.WriteString("# TYPE viterbi_symbols_consumed_total counter\n")
	output.WriteString(fmt.Sprintf("viterbi_symbols_consumed_total %d\n", h.collector.GetSymbolsConsumed()))

	output.WriteString("# HELP viterbi_bits_produced_total Total decoded bits produced\n")
	output.WriteString("# TYPE viterbi_bits_produced_total counter\n")
	output.WriteString(fmt.Sprintf("viterbi_bits_produced_total %d\n", h.collector.GetBitsProduced()))

	output.WriteString("# HELP viterbi_decode_errors_total Total construction/argument errors\n")
	output.WriteString("# TYPE viterbi_decode_errors_total counter\n")
	output.WriteString(fmt.Sprintf("viterbi_decode_errors_total %d\n", h.collector.GetDecodeErrors()))

	w.Write([]byte(output.String()))
}

// PrometheusServer is an HTTP server for Prometheus metrics.
type PrometheusServer struct {
	config    PrometheusConfig
	collector *Collector
	log       *logger.Logger
	server    *http.Server
}

// NewPrometheusServer creates a new Prometheus metrics server.
func NewPrometheusServer(config PrometheusConfig, collector *Collector, log *logger.Logger) *PrometheusServer {
	if log == nil {
		log = logger.New(logger.Config{Level: "info", Format: "text"})
	}

	return &PrometheusServer{
		config:    config,
		collector: collector,
		log:       log.WithComponent("metrics"),
	}
}

// Start starts the Prometheus metrics server.
func (s *PrometheusServer) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.log.Info("Prometheus metrics server disabled")
		return nil
	}

	handler := NewPrometheusHandler(s.collector)
	mux := http.NewServeMux()
	mux.Handle(s.config.Path, handler)

	addr := fmt.Sprintf(":%d", s.config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	actualPort := listener.Addr().(*net.TCPAddr).Port

	s.server = &http.Server{
		Handler: mux,
	}

	s.log.Info("Starting Prometheus metrics server",
		logger.Int("port", actualPort),
		logger.String("path", s.config.Path))

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.log.Info("Shutting down Prometheus metrics server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics server shutdown error: %w", err)
		}
		return ctx.Err()
	case err := <-errChan:
		return err
	}
}

// Stop stops the Prometheus metrics server.
func (s *PrometheusServer) Stop() {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.server.Shutdown(ctx)
	}
}
