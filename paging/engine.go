// Package paging turns continuation-driven API lists into lazy, pull-based
// sequences.
//
// An Engine fetches one batch at a time and only when the caller has consumed
// everything already fetched, so stopping after N items costs at most the
// unconsumed tail of the current batch. Requests are strictly sequential,
// each one resuming from the marker the previous response returned. An
// Engine is single-pass and single-consumer: concurrent calls to Next are a
// misuse and are not guarded. Cancel is the only method safe to call from
// another goroutine.
package paging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"net/url"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/olgasafonova/mediawiki-list-client/metrics"
	"github.com/olgasafonova/mediawiki-list-client/tracing"
)

// Query is the list-specific part of an enumeration.
type Query struct {
	// Name labels logs, metrics and spans, e.g. "allpages".
	Name string
	// Params is the base parameter set. The engine copies it once and never
	// mutates it.
	Params url.Values
	// LimitParam is the parameter carrying the batch size, e.g. "aplimit".
	LimitParam string
}

type config struct {
	size      int
	compat    CompatibilityOptions
	logger    *slog.Logger
	tracer    trace.Tracer
	onWarning func(Warning)
}

// Option configures an Engine.
type Option func(*config)

// WithPaginationSize sets the requested batch size. It is passed to the
// server unmodified; zero leaves the limit parameter out.
func WithPaginationSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.size = n
		}
	}
}

// WithCompatibility sets how repeated continuation markers are handled.
func WithCompatibility(opts CompatibilityOptions) Option {
	return func(c *config) {
		c.compat = opts
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithWarningHandler receives API warnings instead of the logger.
func WithWarningHandler(fn func(Warning)) Option {
	return func(c *config) {
		c.onWarning = fn
	}
}

// WithTracer sets the tracer used for fetch spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *config) {
		if t != nil {
			c.tracer = t
		}
	}
}

type state int

const (
	stateStart state = iota
	stateYielding
	stateDone
	stateFailed
)

// Engine is a lazy sequence of T backed by a paginated list.
type Engine[T any] struct {
	fetcher Fetcher
	query   Query
	decode  DecodeFunc[T]
	cfg     config
	runID   string
	logger  *slog.Logger

	store     *Store
	state     state
	pending   Transition
	escalated bool
	buf       []json.RawMessage
	pos       int
	fetches   int
	err       error

	life   context.Context
	cancel context.CancelFunc
}

// New creates an engine. Nothing is fetched until the first pull.
func New[T any](f Fetcher, q Query, decode DecodeFunc[T], opts ...Option) *Engine[T] {
	cfg := config{
		compat: DefaultCompatibility(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.tracer == nil {
		cfg.tracer = tracing.Tracer()
	}
	if q.Name == "" {
		q.Name = "list"
	}
	params := make(url.Values, len(q.Params))
	for k, vs := range q.Params {
		params[k] = append([]string(nil), vs...)
	}
	q.Params = params

	runID := uuid.NewString()
	life, cancel := context.WithCancel(context.Background())
	return &Engine[T]{
		fetcher: f,
		query:   q,
		decode:  decode,
		cfg:     cfg,
		runID:   runID,
		logger:  cfg.logger.With("list", q.Name, "run_id", runID),
		store:   NewStore(cfg.compat.HistoryWindow),
		life:    life,
		cancel:  cancel,
	}
}

// Next returns the next item, fetching a batch only when the current one is
// used up. It returns ErrDone at the end of the sequence. Any other error is
// terminal and returned again on every later call.
func (e *Engine[T]) Next(ctx context.Context) (T, error) {
	var zero T
	for {
		if e.err != nil {
			return zero, e.err
		}
		if e.state == stateDone {
			return zero, ErrDone
		}
		if e.life.Err() != nil {
			return zero, e.abort(context.Canceled)
		}
		if e.pos < len(e.buf) {
			return e.yield()
		}
		if err := e.refill(ctx); err != nil {
			return zero, err
		}
	}
}

// All returns the remaining items as a range-over-func sequence. Iteration
// stops at the end of the list or after the first error is yielded.
func (e *Engine[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			item, err := e.Next(ctx)
			if errors.Is(err, ErrDone) {
				return
			}
			if err != nil {
				yield(item, err)
				return
			}
			if !yield(item, nil) {
				return
			}
		}
	}
}

// Cancel aborts the enumeration, including a fetch in flight. It is
// idempotent. Later pulls return an error matching ErrCanceled.
func (e *Engine[T]) Cancel() {
	e.cancel()
}

// Exhausted reports whether the server signaled the end of the list.
func (e *Engine[T]) Exhausted() bool {
	return e.state == stateDone
}

// HasMore reports whether a later Next may still yield an item. It is false
// once the last batch is known to be consumed, even before Next has returned
// ErrDone, when the next Next can only raise a ContinuationLoopError, and
// after any terminal error.
func (e *Engine[T]) HasMore() bool {
	switch e.state {
	case stateStart:
		return e.life.Err() == nil
	case stateYielding:
		if e.life.Err() != nil {
			return false
		}
		if e.pos < len(e.buf) {
			return true
		}
		switch e.pending {
		case Completed:
			return false
		case Repeated:
			return !e.loopIsFatal()
		default:
			return true
		}
	default:
		return false
	}
}

// loopIsFatal reports whether a repeated marker ends the enumeration
// instead of earning one more fetch.
func (e *Engine[T]) loopIsFatal() bool {
	return e.cfg.compat.ContinuationLoop != FetchMore || e.escalated
}

// Fetches returns the number of batch requests issued so far.
func (e *Engine[T]) Fetches() int {
	return e.fetches
}

// RunID identifies this enumeration in logs and spans.
func (e *Engine[T]) RunID() string {
	return e.runID
}

func (e *Engine[T]) yield() (T, error) {
	var zero T
	idx := e.pos
	raw := e.buf[idx]
	e.pos++
	item, err := e.decode(raw)
	if err != nil {
		return zero, e.fail(&DecodeError{List: e.query.Name, Batch: e.fetches, Index: idx, Err: err}, "error")
	}
	metrics.ListItems.WithLabelValues(e.query.Name).Inc()
	return item, nil
}

// refill runs with an empty buffer and either fetches the next batch or
// moves the engine to a terminal state.
func (e *Engine[T]) refill(ctx context.Context) error {
	switch e.state {
	case stateStart:
		e.store.Reset()
	case stateYielding:
		switch e.pending {
		case Completed:
			e.state = stateDone
			e.buf = nil
			e.cancel()
			metrics.RecordEnumeration(e.query.Name, "done")
			e.logger.Debug("List enumeration complete", "fetches", e.fetches)
			return nil
		case Repeated:
			behavior := e.cfg.compat.ContinuationLoop
			if e.loopIsFatal() {
				metrics.RecordContinuationLoop(e.query.Name, behavior.String(), false)
				return e.fail(&ContinuationLoopError{
					List:     e.query.Name,
					Marker:   e.store.Current(),
					Fetches:  e.fetches,
					Behavior: behavior,
				}, "error")
			}
			e.escalated = true
			metrics.RecordContinuationLoop(e.query.Name, behavior.String(), true)
			e.logger.Warn("Continuation marker repeated, fetching again",
				"marker", e.store.Current().String(),
				"fetches", e.fetches)
		}
	}
	return e.fetch(ctx)
}

func (e *Engine[T]) fetch(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return e.abort(err)
	}

	marker := e.store.Current()
	fctx, stop := context.WithCancel(ctx)
	defer stop()
	unlink := context.AfterFunc(e.life, stop)
	defer unlink()

	e.fetches++
	fctx, span := e.cfg.tracer.Start(fctx, "paging.fetch")
	defer span.End()
	var markerText string
	if !marker.IsEmpty() {
		markerText = marker.String()
	}
	tracing.AddListAttributes(span, e.query.Name, e.runID, e.fetches, markerText)

	batch, err := e.fetcher.Fetch(fctx, Request{
		Params:     e.query.Params,
		LimitParam: e.query.LimitParam,
		Limit:      e.cfg.size,
		Marker:     marker,
	})
	if err != nil {
		metrics.RecordBatch(e.query.Name, 0, false)
		tracing.RecordError(span, err)
		span.SetStatus(codes.Error, err.Error())
		if e.life.Err() != nil {
			return e.abort(context.Canceled)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return e.abort(ctxErr)
		}
		return e.fail(err, "error")
	}
	span.SetStatus(codes.Ok, "")
	metrics.RecordBatch(e.query.Name, len(batch.Items), true)

	e.buf = batch.Items
	e.pos = 0
	e.state = stateYielding
	e.pending = e.store.Advance(batch.Next)
	if e.pending == Progressed {
		e.escalated = false
	}

	e.logger.Debug("Fetched batch",
		"batch", e.fetches,
		"items", len(batch.Items),
		"transition", e.pending.String())
	e.report(batch.Warnings)
	return nil
}

func (e *Engine[T]) report(warnings []Warning) {
	for _, w := range warnings {
		metrics.APIWarnings.WithLabelValues(e.query.Name, w.Module).Inc()
		if e.cfg.onWarning != nil {
			e.cfg.onWarning(w)
			continue
		}
		e.logger.Warn("API warning", "module", w.Module, "code", w.Code, "text", w.Text)
	}
}

// abort ends the enumeration after cancellation and drops resume state so
// the instance cannot be mistaken for a resumable one.
func (e *Engine[T]) abort(cause error) error {
	e.store.Reset()
	e.pending = Completed
	return e.fail(fmt.Errorf("%w: %w", ErrCanceled, cause), "canceled")
}

func (e *Engine[T]) fail(err error, outcome string) error {
	e.err = err
	e.state = stateFailed
	e.buf = nil
	e.pos = 0
	e.cancel()
	metrics.RecordEnumeration(e.query.Name, outcome)
	if outcome == "error" {
		e.logger.Warn("List enumeration failed", "fetches", e.fetches, "error", err)
	}
	return err
}

// Take yields at most n items of seq and stops pulling once it has them.
func Take[T any](seq iter.Seq2[T, error], n int) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		if n <= 0 {
			return
		}
		count := 0
		for item, err := range seq {
			if !yield(item, err) || err != nil {
				return
			}
			count++
			if count >= n {
				return
			}
		}
	}
}

// Collect drains seq into a slice. Items gathered before an error are returned with it.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var out []T
	for item, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, item)
	}
	return out, nil
}
