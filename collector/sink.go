package collector

import (
	"context"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/c360/reportstream/errors"
	"github.com/c360/reportstream/pkg/jsoncodec"
	"github.com/c360/reportstream/report"
)

// Sink receives decoded report batches from the collector. Implementations
// must be safe for concurrent use; the collector calls Store from multiple
// request goroutines.
type Sink interface {
	// Store persists one upload's reports. batchID identifies the upload
	// for correlation with logs. A transient-classified error makes the
	// collector retry the whole batch.
	Store(ctx context.Context, batchID string, reports []report.BareReport) error
}

// MemorySink accumulates reports in memory. Intended for tests and
// local development.
type MemorySink struct {
	mu      sync.Mutex
	reports []report.BareReport
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Store appends the batch to the in-memory buffer.
func (s *MemorySink) Store(_ context.Context, _ string, reports []report.BareReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, reports...)
	return nil
}

// Reports returns a copy of everything stored so far.
func (s *MemorySink) Reports() []report.BareReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]report.BareReport, len(s.reports))
	copy(out, s.reports)
	return out
}

// Len returns the number of stored reports.
func (s *MemorySink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports)
}

// NATSSink publishes each report to a NATS subject derived from its type:
// "<prefix>.<type>". Reports are published individually so downstream
// consumers can subscribe per report type.
type NATSSink struct {
	conn   *nats.Conn
	prefix string
}

// NewNATSSink creates a sink publishing on conn under the given subject
// prefix.
func NewNATSSink(conn *nats.Conn, prefix string) (*NATSSink, error) {
	if conn == nil {
		return nil, errors.WrapFatal(errors.ErrNoConnection, "NATSSink", "NewNATSSink", "nil connection")
	}
	if prefix == "" {
		return nil, errors.WrapFatal(errors.ErrMissingConfig, "NATSSink", "NewNATSSink", "subject prefix required")
	}
	return &NATSSink{conn: conn, prefix: prefix}, nil
}

// Store publishes the batch and flushes. Publish and flush failures are
// classified transient so the collector retries the batch.
func (s *NATSSink) Store(ctx context.Context, batchID string, reports []report.BareReport) error {
	if !s.conn.IsConnected() {
		return errors.WrapTransient(errors.ErrNoConnection, "NATSSink", "Store", "connection down")
	}

	for i, r := range reports {
		data, err := jsoncodec.Marshal(r)
		if err != nil {
			// Encoding a decoded report should not fail; treat as invalid
			// data rather than retrying.
			return errors.WrapInvalid(
				fmt.Errorf("batch %s element %d: %w", batchID, i, err),
				"NATSSink", "Store", "encode report")
		}

		subject := s.prefix + "." + r.Type
		if err := s.conn.Publish(subject, data); err != nil {
			return errors.WrapTransient(
				fmt.Errorf("batch %s subject %s: %w", batchID, subject, err),
				"NATSSink", "Store", "publish report")
		}
	}

	if err := s.conn.FlushWithContext(ctx); err != nil {
		return errors.WrapTransient(
			fmt.Errorf("batch %s: %w", batchID, err),
			"NATSSink", "Store", "flush connection")
	}
	return nil
}
