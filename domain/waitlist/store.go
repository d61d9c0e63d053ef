package waitlist

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/Vijayesvar/PLEDG-MF/internal/log"
	"github.com/Vijayesvar/PLEDG-MF/internal/storage"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

//go:generate mockgen -source=store.go -destination=mock_store.go -package=waitlist

const (
	tracerName           = "github.com/Vijayesvar/PLEDG-MF/domain/waitlist"
	defaultSnowflakeNode = 1
)

// Store is CRUD plus aggregation over the waitlist collection, which lives as
// one encoded blob in a single storage slot.
type Store interface {
	// List returns the whole collection in insertion order. A missing or
	// unreadable slot yields an empty list.
	List(ctx context.Context) []Record
	// Create appends a new pending record and persists the collection. If the
	// slot cannot be read it returns a *PersistenceError and writes nothing.
	Create(ctx context.Context, in Input) (Record, error)
	// Get reports false when no record has the id.
	Get(ctx context.Context, id int64) (Record, bool)
	// Update merges the patch into the record and stamps updatedAt. A missing id
	// is (Record{}, false, nil).
	Update(ctx context.Context, id int64, patch Patch) (Record, bool, error)
	// Delete removes the record if present and always rewrites the collection.
	// It reports whether that write succeeded, not whether a record matched.
	// An unreadable slot is left untouched and reported as false.
	Delete(ctx context.Context, id int64) bool
	// ClearAll removes the slot.
	ClearAll(ctx context.Context) bool
	FilterByStatus(ctx context.Context, status Status) []Record
	FilterByInterest(ctx context.Context, interest InterestType) []Record
	// Stats aggregates the collection as of now.
	Stats(ctx context.Context) Statistics
	// Export writes a 2-space indented JSON snapshot of the collection.
	Export(ctx context.Context, w io.Writer) error
	// ExportCSV writes the collection as CSV with a header row.
	ExportCSV(ctx context.Context, w io.Writer) error
}

type Option func(*store) error

// WithClock replaces time.Now, e.g. to pin the recent-submission window in tests.
func WithClock(now func() time.Time) Option {
	return func(s *store) error {
		s.now = now
		return nil
	}
}

func WithIDGenerator(ids IDGenerator) Option {
	return func(s *store) error {
		s.ids = ids
		return nil
	}
}

// WithSnowflakeNode picks the node id for the default generator (0-1023).
// Processes sharing one slot need distinct nodes.
func WithSnowflakeNode(node int64) Option {
	return func(s *store) error {
		ids, err := NewSnowflakeGenerator(node)
		if err != nil {
			return err
		}
		s.ids = ids
		return nil
	}
}

// WithMetrics registers the store's collectors on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(s *store) error {
		if reg == nil {
			return nil
		}
		m, err := newStoreMetrics(reg)
		if err != nil {
			return err
		}
		s.metrics = m
		return nil
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *store) error {
		s.tracer = tracer
		return nil
	}
}

type store struct {
	// mu serialises read-modify-write sequences against the slot.
	mu sync.Mutex

	slot    storage.Slot
	logger  *log.Logger
	now     func() time.Time
	ids     IDGenerator
	metrics *storeMetrics
	tracer  trace.Tracer
}

func NewStore(slot storage.Slot, logger *log.Logger, opts ...Option) (Store, error) {
	if slot == nil {
		return nil, errors.New("waitlist: store needs a slot")
	}
	if logger == nil {
		logger = log.NewLoggerWithJSONOutput()
	}

	s := &store{
		slot:   slot,
		logger: logger.With("slot", slot.Key()),
		now:    time.Now,
		tracer: otel.Tracer(tracerName),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if s.ids == nil {
		ids, err := NewSnowflakeGenerator(defaultSnowflakeNode)
		if err != nil {
			return nil, err
		}
		s.ids = ids
	}

	return s, nil
}

func (s *store) List(ctx context.Context) []Record {
	ctx, span := s.startSpan(ctx, "List")
	defer span.End()

	s.mu.Lock()
	records := s.load(ctx)
	s.mu.Unlock()

	span.SetAttributes(attribute.Int("waitlist.records", len(records)))
	s.metrics.observe("list", resultOK)
	return records
}

func (s *store) Create(ctx context.Context, in Input) (Record, error) {
	ctx, span := s.startSpan(ctx, "Create")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadForWrite(ctx)
	if err != nil {
		perr := &PersistenceError{Op: "create", Key: s.slot.Key(), Err: err}
		s.fail(ctx, span, "create", perr)
		return Record{}, perr
	}
	record := newRecord(s.nextID(records), in, s.stamp())
	records = append(records, record)

	if err := s.persist(ctx, records); err != nil {
		perr := &PersistenceError{Op: "create", Key: s.slot.Key(), Err: err}
		s.fail(ctx, span, "create", perr)
		return Record{}, perr
	}

	span.SetAttributes(attribute.Int64("waitlist.record_id", record.ID))
	s.metrics.observe("create", resultOK)
	s.metrics.setRecords(len(records))
	return record, nil
}

func (s *store) Get(ctx context.Context, id int64) (Record, bool) {
	ctx, span := s.startSpan(ctx, "Get", attribute.Int64("waitlist.record_id", id))
	defer span.End()

	s.mu.Lock()
	records := s.load(ctx)
	s.mu.Unlock()

	if i := indexOf(records, id); i >= 0 {
		s.metrics.observe("get", resultOK)
		return records[i], true
	}

	s.metrics.observe("get", resultAbsent)
	return Record{}, false
}

func (s *store) Update(ctx context.Context, id int64, patch Patch) (Record, bool, error) {
	ctx, span := s.startSpan(ctx, "Update", attribute.Int64("waitlist.record_id", id))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadForWrite(ctx)
	if err != nil {
		perr := &PersistenceError{Op: "update", Key: s.slot.Key(), Err: err}
		s.fail(ctx, span, "update", perr)
		return Record{}, false, perr
	}
	i := indexOf(records, id)
	if i < 0 {
		s.metrics.observe("update", resultAbsent)
		return Record{}, false, nil
	}

	records[i].apply(patch, s.stamp())

	if err := s.persist(ctx, records); err != nil {
		perr := &PersistenceError{Op: "update", Key: s.slot.Key(), Err: err}
		s.fail(ctx, span, "update", perr)
		return Record{}, false, perr
	}

	s.metrics.observe("update", resultOK)
	return records[i], true, nil
}

func (s *store) Delete(ctx context.Context, id int64) bool {
	ctx, span := s.startSpan(ctx, "Delete", attribute.Int64("waitlist.record_id", id))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadForWrite(ctx)
	if err != nil {
		s.fail(ctx, span, "delete", &PersistenceError{Op: "delete", Key: s.slot.Key(), Err: err})
		return false
	}
	kept := records[:0]
	for _, r := range records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}

	if err := s.persist(ctx, kept); err != nil {
		s.fail(ctx, span, "delete", &PersistenceError{Op: "delete", Key: s.slot.Key(), Err: err})
		return false
	}

	s.metrics.observe("delete", resultOK)
	s.metrics.setRecords(len(kept))
	return true
}

func (s *store) ClearAll(ctx context.Context) bool {
	ctx, span := s.startSpan(ctx, "ClearAll")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.slot.Remove(ctx); err != nil {
		s.fail(ctx, span, "clear", &PersistenceError{Op: "clear", Key: s.slot.Key(), Err: err})
		return false
	}

	s.metrics.observe("clear", resultOK)
	s.metrics.setRecords(0)
	return true
}

func (s *store) FilterByStatus(ctx context.Context, status Status) []Record {
	return filter(s.List(ctx), func(r Record) bool { return r.Status == status })
}

func (s *store) FilterByInterest(ctx context.Context, interest InterestType) []Record {
	return filter(s.List(ctx), func(r Record) bool { return r.InterestType == interest })
}

func (s *store) Stats(ctx context.Context) Statistics {
	return ComputeStatistics(s.List(ctx), s.now())
}

func (s *store) Export(ctx context.Context, w io.Writer) error {
	return writeJSONSnapshot(w, s.List(ctx))
}

func (s *store) ExportCSV(ctx context.Context, w io.Writer) error {
	return writeCSVSnapshot(w, s.List(ctx))
}

// load reads and decodes the slot for readers. Read and decode failures are
// logged and treated as an empty collection. Callers hold s.mu.
func (s *store) load(ctx context.Context) []Record {
	records, err := s.loadForWrite(ctx)
	if err != nil {
		s.logger.Error("Failed to read waitlist slot; treating as empty", "error", err)
		return []Record{}
	}
	return records
}

// loadForWrite returns the slot read error so a mutation never overwrites a
// collection it could not see. A malformed blob still reads as empty and is
// replaced by the next write. Callers hold s.mu.
func (s *store) loadForWrite(ctx context.Context) ([]Record, error) {
	data, present, err := s.slot.Read(ctx)
	if err != nil {
		s.metrics.observe("read", resultError)
		return nil, err
	}
	if !present || len(data) == 0 {
		s.metrics.setRecords(0)
		return []Record{}, nil
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		derr := &DecodeError{Key: s.slot.Key(), Err: err}
		s.logger.Error("Malformed waitlist data; treating as empty", "error", derr)
		s.metrics.observe("decode", resultError)
		return []Record{}, nil
	}
	if records == nil {
		records = []Record{}
	}

	s.metrics.setRecords(len(records))
	return records, nil
}

func (s *store) persist(ctx context.Context, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return s.slot.Write(ctx, data)
}

// nextID skips any id already present, e.g. from a blob written elsewhere.
func (s *store) nextID(records []Record) int64 {
	for {
		id := s.ids.NextID()
		if indexOf(records, id) < 0 {
			return id
		}
	}
}

func (s *store) startSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	attrs = append(attrs, attribute.String("waitlist.slot", s.slot.Key()))
	return s.tracer.Start(ctx, "waitlist.Store."+op, trace.WithAttributes(attrs...))
}

func (s *store) fail(ctx context.Context, span trace.Span, op string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.metrics.observe(op, resultError)
	log.GetLoggerInstanceFromContext(ctx, s.logger).Error("Waitlist write failed", "operation", op, "error", err)
}

// stamp is the store clock cut to the millisecond precision records keep.
func (s *store) stamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func indexOf(records []Record, id int64) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}

func filter(records []Record, keep func(Record) bool) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
