// Package collector implements an HTTP endpoint that accepts Reporting API
// uploads, decodes them leniently, and hands the well-formed reports to a
// Sink. Browsers POST report batches with content type
// application/reports+json; the collector answers 204 once the batch is
// stored.
package collector

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/reportstream/errors"
	"github.com/c360/reportstream/report"
)

// acceptedContentTypes are the media types the collector decodes.
// application/reports+json is what the Reporting API sends;
// application/json is accepted for NEL and manual uploads.
var acceptedContentTypes = map[string]bool{
	"application/reports+json": true,
	"application/json":         true,
}

// Collector accepts report uploads over HTTP and stores them in a Sink.
type Collector struct {
	config  Config
	sink    Sink
	logger  *slog.Logger
	metrics *Metrics
	retry   errors.RetryConfig

	running atomic.Bool
	server  *http.Server
	addr    atomic.Value // string, actual listen address once started
}

// New creates a collector serving cfg.Path. Metrics are registered with reg
// when reg is non-nil.
func New(cfg Config, sink Sink, logger *slog.Logger, reg prometheus.Registerer) (*Collector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		return nil, errors.WrapFatal(errors.ErrMissingConfig, "Collector", "New", "sink required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	metrics := NewMetrics()
	if reg != nil {
		if err := metrics.Register(reg); err != nil {
			return nil, errors.WrapFatal(err, "Collector", "New", "register metrics")
		}
	}

	return &Collector{
		config:  cfg,
		sink:    sink,
		logger:  logger.With("component", "collector"),
		metrics: metrics,
		retry:   errors.DefaultRetryConfig(),
	}, nil
}

// Handler returns the collector's HTTP handler. Useful for embedding the
// upload endpoint in an existing server or for tests; Start uses it too.
func (c *Collector) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(c.config.Path, c.handleUpload)
	mux.HandleFunc("/healthz", c.handleHealth)
	return mux
}

// Start begins listening on the configured address. It returns once the
// listener is bound; serving continues in a background goroutine.
func (c *Collector) Start(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return errors.WrapFatal(errors.ErrAlreadyStarted, "Collector", "Start", "already running")
	}

	listener, err := net.Listen("tcp", c.config.Addr)
	if err != nil {
		c.running.Store(false)
		return errors.WrapFatal(err, "Collector", "Start", "bind listener")
	}
	c.addr.Store(listener.Addr().String())

	c.server = &http.Server{
		Handler:           c.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	c.logger.Info("collector listening",
		"addr", listener.Addr().String(),
		"path", c.config.Path)

	go func() {
		if err := c.server.Serve(listener); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			c.logger.Error("collector server stopped", "error", err)
		}
	}()

	return nil
}

// Stop gracefully shuts the server down, bounded by the configured
// shutdown timeout.
func (c *Collector) Stop(ctx context.Context) error {
	if !c.running.CompareAndSwap(true, false) {
		return errors.WrapFatal(errors.ErrNotStarted, "Collector", "Stop", "not running")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, c.config.ShutdownTimeout)
	defer cancel()

	if err := c.server.Shutdown(shutdownCtx); err != nil {
		return errors.WrapTransient(err, "Collector", "Stop", "graceful shutdown")
	}
	c.logger.Info("collector stopped")
	return nil
}

// Addr returns the actual listen address once Start has bound the listener.
// Empty until then.
func (c *Collector) Addr() string {
	if v, ok := c.addr.Load().(string); ok {
		return v
	}
	return ""
}

func (c *Collector) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (c *Collector) handleUpload(w http.ResponseWriter, r *http.Request) {
	defer func() { _ = r.Body.Close() }()

	if r.Method != http.MethodPost {
		c.metrics.UploadsRejected.WithLabelValues("method").Inc()
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !contentTypeAccepted(r.Header.Get("Content-Type")) {
		c.metrics.UploadsRejected.WithLabelValues("content_type").Inc()
		http.Error(w, "unsupported content type", http.StatusUnsupportedMediaType)
		return
	}

	// Read one byte past the limit to distinguish "exactly at the limit"
	// from "over it".
	body, err := io.ReadAll(io.LimitReader(r.Body, c.config.MaxRequestSize+1))
	if err != nil {
		c.metrics.UploadsRejected.WithLabelValues("read").Inc()
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}
	if int64(len(body)) > c.config.MaxRequestSize {
		c.metrics.UploadsRejected.WithLabelValues("too_large").Inc()
		http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
		return
	}

	batchID := uuid.New().String()
	w.Header().Set("X-Batch-ID", batchID)

	reports, elemErrs, err := report.DecodeBatchLenient(body)
	if err != nil {
		c.metrics.UploadsRejected.WithLabelValues("malformed").Inc()
		c.logger.Warn("rejected malformed upload",
			"batch_id", batchID,
			"remote", r.RemoteAddr,
			"error", err)
		http.Error(w, "malformed report batch", http.StatusBadRequest)
		return
	}

	c.metrics.UploadsTotal.Inc()

	for _, elemErr := range elemErrs {
		c.metrics.ReportsDropped.WithLabelValues("invalid_envelope").Inc()
		c.logger.Warn("dropped report",
			"batch_id", batchID,
			"index", elemErr.Index,
			"error", elemErr.Err)
	}
	for _, rep := range reports {
		c.metrics.ReportsReceived.WithLabelValues(rep.Type).Inc()
	}

	if len(reports) == 0 {
		// Nothing usable, but the envelope was valid JSON. Per the
		// Reporting API the collector acknowledges anyway.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), c.config.StoreTimeout)
	defer cancel()

	if err := c.store(ctx, batchID, reports); err != nil {
		c.metrics.SinkFailures.Inc()
		c.logger.Error("failed to store batch",
			"batch_id", batchID,
			"reports", len(reports),
			"error", err)
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
		return
	}

	c.logger.Debug("stored batch",
		"batch_id", batchID,
		"reports", len(reports),
		"dropped", len(elemErrs))
	w.WriteHeader(http.StatusNoContent)
}

// store calls the sink, retrying transient failures with backoff until the
// retry budget or the context runs out.
func (c *Collector) store(ctx context.Context, batchID string, reports []report.BareReport) error {
	start := time.Now()
	defer func() {
		c.metrics.StoreDuration.Observe(time.Since(start).Seconds())
	}()

	var err error
	for attempt := 0; ; attempt++ {
		err = c.sink.Store(ctx, batchID, reports)
		if err == nil {
			return nil
		}
		if !c.retry.ShouldRetry(err, attempt) {
			return err
		}

		delay := c.retry.BackoffDelay(attempt)
		c.logger.Debug("retrying store",
			"batch_id", batchID,
			"attempt", attempt+1,
			"delay", delay,
			"error", err)

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", errors.ErrSinkUnavailable, ctx.Err())
		case <-time.After(delay):
		}
	}
}

func contentTypeAccepted(header string) bool {
	if header == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return false
	}
	return acceptedContentTypes[strings.ToLower(mediaType)]
}
