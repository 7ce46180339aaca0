package importers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultMaxFileSize = 10 << 20
	DefaultBatchSize   = 50
	DefaultMaxRetries  = 2
	DefaultRetryDelay  = 500 * time.Millisecond
	DefaultMaxErrors   = 50

	reasonCancelled = "import cancelled"
)

// Store persists records for one or more tables.
//
// FindByKey returns the stored columns of the row matching key. A nil key
// value matches a NULL column. InsertBatch writes all rows or none.
type Store interface {
	FindByKey(ctx context.Context, table string, key Key) (map[string]any, bool, error)
	InsertBatch(ctx context.Context, table string, rows []map[string]any) error
}

// Locker serialises runs per domain. Acquire returns ErrImportInProgress
// when another run holds the lock.
type Locker interface {
	Acquire(ctx context.Context, domain string) (release func(), err error)
}

// Config describes one domain.
type Config struct {
	Name   string
	Label  string
	Table  string
	Fields []FieldSpec
	Rules  []QualityRule
	Key    KeyFunc
	// CoreFields are compared when a stored row shares the natural key.
	CoreFields []string
	// LabelField names the field shown as the current record in progress.
	LabelField       string
	BatchSize        int
	FailureTolerance float64

	TemplateRows [][]string
}

// Targets returns the target field names in declaration order.
func (c Config) Targets() []string {
	targets := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		targets[i] = f.Target
	}
	return targets
}

// Options tune a run independently of the domain.
type Options struct {
	MaxFileSize int64
	BatchSize   int
	MaxRetries  int
	RetryDelay  time.Duration
	MaxErrors   int
	// FailureTolerance overrides the domain tolerance when non-zero.
	FailureTolerance float64
	Lock             Locker
}

func (o Options) withDefaults(cfg Config) Options {
	if o.MaxFileSize <= 0 {
		o.MaxFileSize = DefaultMaxFileSize
	}
	if o.BatchSize <= 0 {
		o.BatchSize = cfg.BatchSize
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.MaxErrors == 0 {
		o.MaxErrors = DefaultMaxErrors
	}
	if o.FailureTolerance == 0 {
		o.FailureTolerance = cfg.FailureTolerance
	}
	return o
}

// Source is the file being imported.
type Source struct {
	Name    string
	Content []byte
}

// Importer runs the pipeline for one domain. Runs are sequential; an
// Importer may be reused for several files but not concurrently.
type Importer struct {
	cfg    Config
	store  Store
	opts   Options
	mapper *Mapper
	scorer *Scorer
}

func NewImporter(cfg Config, store Store, opts Options) *Importer {
	return &Importer{
		cfg:    cfg,
		store:  store,
		opts:   opts.withDefaults(cfg),
		mapper: NewMapper(cfg.Fields),
		scorer: NewScorer(cfg.Rules),
	}
}

// Config returns the domain configuration.
func (imp *Importer) Config() Config { return imp.cfg }

type pending struct {
	rec    Record
	key    Key
	hasKey bool
	// followers are repeats of this row, reported once it is written.
	followers []Outcome
}

type run struct {
	imp      *Importer
	ctx      context.Context
	sink     ProgressSink
	src      Source
	batchID  string
	report   *Report
	detector *Detector
	total    int
	batches  int
	label    string
	phase    Phase

	batch  []pending
	claims map[string]int // key text -> index in batch
}

// Import reads content and persists its rows. Precondition failures return
// a *PreconditionError with a failed result. Cancellation of ctx stops the
// run between batches and returns the partial result with ctx.Err().
func (imp *Importer) Import(ctx context.Context, src Source, sink ProgressSink) (*Result, error) {
	if sink == nil {
		sink = NopSink{}
	}

	r := &run{imp: imp, ctx: ctx, sink: sink, src: src, phase: PhaseIdle}
	r.setPhase(PhaseValidating)

	reader, binding, err := imp.validate(src)
	if err != nil {
		return r.reject(err)
	}

	if imp.opts.Lock != nil {
		release, err := imp.opts.Lock.Acquire(ctx, imp.cfg.Name)
		if err != nil {
			if errors.Is(err, ErrImportInProgress) {
				return r.reject(precondition(ErrImportInProgress, imp.cfg.Name))
			}
			return r.reject(fmt.Errorf("failed to acquire import lock: %w", err))
		}
		defer release()
	}

	r.batchID = uuid.NewString()
	r.report = NewReport(r.batchID, imp.opts.MaxErrors, imp.opts.FailureTolerance)
	r.detector = NewDetector(imp.store, imp.cfg.Table, imp.cfg.Key, imp.cfg.CoreFields)
	r.total = CountRows(src.Content)

	log.Printf("[IMPORT] %s: starting batch %s for %q (%d rows, %s)", imp.cfg.Name, r.batchID, src.Name, r.total, reader.Encoding())
	if unmapped := binding.Unmapped(); len(unmapped) > 0 {
		log.Printf("[IMPORT] %s: ignoring unrecognised columns: %s", imp.cfg.Name, strings.Join(unmapped, ", "))
	}

	r.setPhase(PhaseStreaming)
	r.notify()
	cancelled := r.stream(reader, binding)

	r.setPhase(PhaseFinalizing)
	result := r.report.Finish(cancelled)
	r.setPhase(PhaseDone)
	r.notify()

	log.Printf("[IMPORT] %s: %s", imp.cfg.Name, result.Message)
	if cancelled {
		return result, ctx.Err()
	}
	return result, nil
}

func (imp *Importer) validate(src Source) (*RowReader, *Binding, error) {
	if isBlank(src.Content) {
		return nil, nil, precondition(ErrEmptyFile, "")
	}
	if int64(len(src.Content)) > imp.opts.MaxFileSize {
		return nil, nil, precondition(ErrFileTooLarge, fmt.Sprintf("%d bytes > %d bytes", len(src.Content), imp.opts.MaxFileSize))
	}

	reader, err := NewRowReader(src.Content)
	if err != nil {
		if errors.Is(err, ErrNoHeader) {
			return nil, nil, precondition(ErrNoHeader, "")
		}
		return nil, nil, precondition(ErrNoHeader, err.Error())
	}

	binding := imp.mapper.Bind(reader.Header())
	if binding.Mapped() == 0 {
		return nil, nil, precondition(ErrNoMappedColumns, strings.Join(reader.Header(), ", "))
	}

	defaults := make(map[string]bool)
	for _, f := range imp.cfg.Fields {
		if f.Default != "" {
			defaults[f.Target] = true
		}
	}
	var missing []string
	for _, field := range imp.scorer.HardRequired() {
		if !binding.Has(field) && !defaults[field] {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, nil, precondition(ErrMissingColumn, strings.Join(missing, ", "))
	}

	return reader, binding, nil
}

func (r *run) reject(err error) (*Result, error) {
	log.Printf("[IMPORT] %s: rejected %q: %v", r.imp.cfg.Name, r.src.Name, err)
	r.phase = PhaseDone
	return FailedResult(err), err
}

func (r *run) setPhase(p Phase) {
	r.phase = p
}

// stream processes every row and reports whether the run was cancelled.
func (r *run) stream(reader *RowReader, binding *Binding) bool {
	batchSize := r.imp.opts.BatchSize
	r.batch = make([]pending, 0, batchSize)
	r.claims = make(map[string]int)

	for {
		row, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			var rowErr *RowError
			if errors.As(err, &rowErr) {
				r.report.Add(Outcome{Row: rowErr.Line, Kind: Failed, Reason: rowErr.Err.Error()})
			} else {
				r.report.Add(Outcome{Kind: Failed, Reason: err.Error()})
			}
			continue
		}

		r.classify(binding, row)

		if len(r.batch) >= batchSize {
			if !r.flushPending() {
				return true
			}
		}
	}

	if len(r.batch) > 0 {
		return !r.flushPending()
	}
	return false
}

// flushPending writes the current batch unless the run was cancelled. It
// returns false when the run must stop.
func (r *run) flushPending() bool {
	defer r.resetBatch()
	if r.cancelled() {
		r.skipCancelled(r.batch)
		return false
	}
	return r.flush(r.batch)
}

func (r *run) resetBatch() {
	r.batch = r.batch[:0]
	clear(r.claims)
}

// classify runs one row through mapping, scoring and duplicate detection.
// A row to insert joins the current batch. A repeat of a row still waiting
// in the batch is attached to it and reported once that row is written.
func (r *run) classify(binding *Binding, row Row) {
	rec := r.imp.mapper.Map(binding, row)
	rec.Quality = r.imp.scorer.Score(rec)
	r.label = r.recordLabel(rec)

	if len(rec.Quality.HardMissing) > 0 {
		r.report.Add(Outcome{
			Row:    rec.Row,
			Kind:   Skipped,
			Reason: "missing required field: " + strings.Join(rec.Quality.HardMissing, ", "),
		})
		return
	}

	det := r.detector.Check(r.ctx, rec)
	var outcome Outcome
	switch det.Verdict {
	case Duplicate:
		outcome = Outcome{Row: rec.Row, Kind: DuplicateRow, Key: det.Key.String()}
	case Conflict:
		existing := "existing record"
		if det.InRun {
			existing = "earlier row"
		}
		outcome = Outcome{
			Row:      rec.Row,
			Kind:     Skipped,
			Conflict: true,
			Key:      det.Key.String(),
			Reason: fmt.Sprintf("conflicts with %s %s (differs in %s)",
				existing, det.Key.String(), strings.Join(det.Differences, ", ")),
		}
	case Unknown:
		log.Printf("[IMPORT] %s: duplicate lookup failed for line %d, inserting: %v", r.imp.cfg.Name, rec.Row, det.Err)
	}

	if det.Verdict == Duplicate || det.Verdict == Conflict {
		if idx, ok := r.claims[det.Key.String()]; ok && det.InRun {
			r.batch[idx].followers = append(r.batch[idx].followers, outcome)
			return
		}
		r.report.Add(outcome)
		return
	}

	if det.HasKey {
		r.detector.Remember(det.Key, rec)
		r.claims[det.Key.String()] = len(r.batch)
	}
	r.batch = append(r.batch, pending{rec: rec, key: det.Key, hasKey: det.HasKey})
}

func (r *run) recordLabel(rec Record) string {
	if r.imp.cfg.LabelField == "" {
		return fmt.Sprintf("line %d", rec.Row)
	}
	v := rec.Get(r.imp.cfg.LabelField)
	if v.IsNull() {
		return fmt.Sprintf("line %d", rec.Row)
	}
	return v.Raw
}

func (r *run) cancelled() bool {
	return r.ctx.Err() != nil
}

func (r *run) skipCancelled(batch []pending) {
	for _, p := range batch {
		if p.hasKey {
			r.detector.Forget(p.key)
		}
		r.report.Add(Outcome{Row: p.rec.Row, Kind: Skipped, Reason: reasonCancelled})
		for _, f := range p.followers {
			r.report.Add(Outcome{Row: f.Row, Kind: Skipped, Reason: reasonCancelled})
		}
	}
	r.notify()
}

// stored reports p as imported along with the repeats waiting on it.
func (r *run) stored(p pending) {
	r.report.Add(Outcome{Row: p.rec.Row, Kind: Imported})
	for _, f := range p.followers {
		r.report.Add(f)
	}
}

// rejected reports p as failed. Its repeats fail too since nothing with
// their key was written.
func (r *run) rejected(p pending, reason string) {
	if p.hasKey {
		r.detector.Forget(p.key)
	}
	r.report.Add(Outcome{Row: p.rec.Row, Kind: Failed, Reason: reason})
	for _, f := range p.followers {
		r.report.Add(Outcome{
			Row:    f.Row,
			Kind:   Failed,
			Key:    f.Key,
			Reason: fmt.Sprintf("not stored: line %d with the same key was rejected", p.rec.Row),
		})
	}
}

// flush writes one batch. It returns false when the run was cancelled
// while waiting to retry.
func (r *run) flush(batch []pending) bool {
	r.batches++
	targets := r.imp.cfg.Targets()
	rows := make([]map[string]any, len(batch))
	for i, p := range batch {
		rows[i] = p.rec.Columns(targets, r.batchID, r.src.Name)
	}

	err := r.insertWithRetry(rows)
	switch {
	case err == nil:
		for _, p := range batch {
			r.stored(p)
		}
	case r.cancelled():
		r.skipCancelled(batch)
		return false
	default:
		log.Printf("[IMPORT] %s: batch %d failed after %d retries, inserting rows individually: %v",
			r.imp.cfg.Name, r.batches, r.imp.opts.MaxRetries, err)
		r.insertRows(batch, rows)
	}

	r.notify()
	return true
}

func (r *run) insertWithRetry(rows []map[string]any) error {
	var err error
	for attempt := 0; attempt <= r.imp.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := r.imp.opts.RetryDelay * time.Duration(attempt)
			log.Printf("[IMPORT] %s: retrying batch %d in %s (attempt %d): %v", r.imp.cfg.Name, r.batches, delay, attempt, err)
			select {
			case <-r.ctx.Done():
				return r.ctx.Err()
			case <-time.After(delay):
			}
		}
		if err = r.imp.store.InsertBatch(r.ctx, r.imp.cfg.Table, rows); err == nil {
			return nil
		}
	}
	return err
}

func (r *run) insertRows(batch []pending, rows []map[string]any) {
	for i, p := range batch {
		if err := r.imp.store.InsertBatch(r.ctx, r.imp.cfg.Table, rows[i:i+1]); err != nil {
			r.rejected(p, "store rejected record: "+err.Error())
			continue
		}
		r.stored(p)
	}
}

func (r *run) notify() {
	processed := r.report.Processed()
	total := r.total
	if processed > total {
		total = processed
	}
	p := Progress{
		Processed:          processed,
		Total:              total,
		Percentage:         percentage(processed, total),
		CurrentRecordLabel: r.label,
		Phase:              r.phase,
		Batch:              r.batches,
	}
	if err := safeNotify(r.sink, p); err != nil {
		log.Printf("[IMPORT] %s: progress sink error ignored: %v", r.imp.cfg.Name, err)
	}
}
