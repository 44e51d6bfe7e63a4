// Package engine runs a questionnaire session: it validates and records
// answers, walks the question graph, persists responses one save at a time
// and scores the session on completion.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/abhisek/acompana/internal/logger"
	"github.com/abhisek/acompana/internal/placeholder"
	"github.com/abhisek/acompana/internal/qgraph"
	"github.com/abhisek/acompana/internal/store"
)

// Option customizes an Engine.
type Option func(*Engine)

// WithScorer sets the scorer used when a scored questionnaire completes.
func WithScorer(s Scorer) Option { return func(e *Engine) { e.scorer = s } }

// WithLogger sets the logger. The default discards.
func WithLogger(l *logger.Logger) Option { return func(e *Engine) { e.log = l } }

// WithResolver sets the template resolver used by Resolve.
func WithResolver(r *placeholder.Resolver) Option { return func(e *Engine) { e.resolver = r } }

// WithNamesSink forwards captured names after they are saved.
func WithNamesSink(s NamesSink) Option { return func(e *Engine) { e.sink = s } }

// saveOp is a unit of persistence. Rows are written first, then the
// session is completed if complete is set. A failed op is kept for Retry
// with the parts that already succeeded removed.
type saveOp struct {
	rows     []store.ResponseRow
	step     qgraph.Step
	complete bool
	outcome  *Outcome
}

// Engine owns the state of one questionnaire session. All methods are safe
// for concurrent use; at most one save is in flight at a time.
type Engine struct {
	repo     store.Repository
	cfg      Config
	scorer   Scorer
	resolver *placeholder.Resolver
	sink     NamesSink
	log      *logger.Logger

	mu        sync.Mutex
	status    Status
	graph     *qgraph.Graph
	sessionID string
	current   *qgraph.Question
	answers   qgraph.Answers
	names     map[Field]string
	namesNew  bool
	outcome   *Outcome
	err       error
	fatal     bool
	pending   *saveOp
	loadAgain bool
	disposed  bool
}

// New creates an engine in the loading state. Call Load before anything else.
func New(repo store.Repository, cfg Config, opts ...Option) *Engine {
	if cfg.Captures == nil {
		cfg.Captures = DefaultCaptures()
	}
	if cfg.Progress == "" {
		cfg.Progress = ProgressAuto
	}
	e := &Engine{
		repo:    repo,
		cfg:     cfg,
		status:  StatusLoading,
		answers: make(qgraph.Answers),
		names:   make(map[Field]string),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logger.Nop()
	}
	if e.resolver == nil {
		e.resolver = placeholder.New(nil)
	}
	e.log = e.log.With("questionnaire_id", cfg.QuestionnaireID, "user_id", cfg.UserID)
	return e
}

// Load fetches and builds the graph, opens or resumes the user's session
// and positions the engine on the first unanswered question. Calling Load
// on a loaded engine is a no-op.
func (e *Engine) Load(ctx context.Context) error {
	e.mu.Lock()
	switch {
	case e.disposed:
		e.mu.Unlock()
		return ErrDisposed
	case e.graph != nil:
		e.mu.Unlock()
		return nil
	case e.fatal:
		err := e.err
		e.mu.Unlock()
		return err
	}
	e.status = StatusLoading
	e.err = nil
	e.loadAgain = false
	e.mu.Unlock()

	g, sessionID, rows, err := e.fetch(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return ErrDisposed
	}
	if err != nil {
		e.fail(err)
		e.loadAgain = !e.fatal
		e.log.Error("load failed", "error", err)
		return e.err
	}

	e.graph = g
	e.sessionID = sessionID
	e.log = e.log.With("session_id", sessionID)
	e.restore(rows)
	e.current = e.replay()
	e.status = StatusAnswering

	if e.current == nil {
		// Every answer is stored but the session was never closed.
		e.log.Warn("resumed session has no open question, completing")
		op := &saveOp{complete: true, step: qgraph.Step{Completed: true}, outcome: e.score()}
		e.status = StatusSaving
		e.mu.Unlock()
		err := e.persist(ctx, op)
		e.mu.Lock()
		return e.settle(op, err)
	}

	e.log.Info("session loaded", "answered", e.answers.Count(), "current", e.current.ID)
	return nil
}

func (e *Engine) fetch(ctx context.Context) (*qgraph.Graph, string, []store.ResponseRow, error) {
	rows, err := e.repo.LoadGraph(ctx, e.cfg.QuestionnaireID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, "", nil, err
	}
	if err != nil {
		return nil, "", nil, &TransientIOError{Op: "load questionnaire", Err: err}
	}
	g, err := qgraph.Build(rows)
	if err != nil {
		return nil, "", nil, err
	}
	sessionID, err := e.repo.GetOrCreateSession(ctx, e.cfg.UserID, e.cfg.QuestionnaireID)
	if err != nil {
		return nil, "", nil, &TransientIOError{Op: "open session", Err: err}
	}
	responses, err := e.repo.LoadResponses(ctx, sessionID)
	if err != nil {
		return nil, "", nil, &TransientIOError{Op: "load responses", Err: err}
	}
	return g, sessionID, responses, nil
}

// restore rebuilds the answer set from persisted rows. Rows that no longer
// fit the graph are dropped.
func (e *Engine) restore(rows []store.ResponseRow) {
	for _, row := range rows {
		q, ok := e.graph.Node(row.QuestionID)
		if !ok {
			e.log.Warn("dropping response for unknown question", "question_id", row.QuestionID)
			continue
		}
		a, err := qgraph.NewAnswer(q, qgraph.Selection{OptionIDs: row.OptionIDs, Text: row.Text})
		if err != nil {
			e.log.Warn("dropping stale response", "question_id", row.QuestionID, "error", err)
			continue
		}
		e.answers[q.ID] = a
		e.capture(q, a)
	}
}

// replay walks from the entry along recorded answers and returns the first
// question still needing an answer, or nil if the walk completes.
func (e *Engine) replay() *qgraph.Question {
	cur := e.graph.Entry()
	for range e.graph.Len() {
		a, ok := e.answers[cur.ID]
		if !ok || a.IsEmpty() {
			return cur
		}
		step, err := e.graph.Next(cur, a, e.answers, e.cfg.MaxSkips)
		if err != nil {
			return cur
		}
		if step.Completed {
			return nil
		}
		cur = step.Next
	}
	return cur
}

// Submit records the answer to questionID and advances. Any question of the
// graph may be answered, which allows going back; a re-answer replaces the
// earlier one. Shape errors return a *qgraph.ValidationError and leave the
// state untouched. A failed save keeps the answer in memory, moves to
// StatusError and returns a *TransientIOError; Retry or a new Submit resumes.
func (e *Engine) Submit(ctx context.Context, questionID string, sel qgraph.Selection) error {
	e.mu.Lock()
	if err := e.checkAnswerable(); err != nil {
		e.mu.Unlock()
		return err
	}

	q, ok := e.graph.Node(questionID)
	if !ok {
		e.mu.Unlock()
		return &qgraph.ValidationError{QuestionID: questionID, Reason: "question is not part of this questionnaire"}
	}
	a, err := qgraph.NewAnswer(q, sel)
	if err != nil {
		e.mu.Unlock()
		return err
	}

	answers := e.answers.Clone()
	answers[q.ID] = a
	step, err := e.graph.Next(q, a, answers, e.cfg.MaxSkips)
	if err != nil {
		var die *qgraph.DataIntegrityError
		if errors.As(err, &die) {
			e.fail(err)
		}
		e.mu.Unlock()
		return err
	}
	if step.SkipLimitHit {
		e.log.Warn("skip limit reached, showing hidden question", "question_id", step.Next.ID, "skipped", len(step.Skipped))
	}

	e.answers = answers
	e.capture(q, a)

	op := &saveOp{step: step, complete: step.Completed}
	if e.pending != nil {
		// Carry unsaved rows for other questions so nothing is lost.
		for _, row := range e.pending.rows {
			if row.QuestionID != q.ID {
				op.rows = append(op.rows, row)
			}
		}
	}
	op.rows = append(op.rows, e.row(a))
	if op.complete {
		op.outcome = e.score()
	}
	e.pending = nil
	e.err = nil
	e.status = StatusSaving
	e.mu.Unlock()

	err = e.persist(ctx, op)

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settle(op, err)
}

// Retry re-runs the operation that moved the engine to StatusError.
func (e *Engine) Retry(ctx context.Context) error {
	e.mu.Lock()
	switch {
	case e.disposed:
		e.mu.Unlock()
		return ErrDisposed
	case e.status == StatusSaving:
		e.mu.Unlock()
		return ErrBusy
	case e.status != StatusError || e.fatal:
		e.mu.Unlock()
		return ErrNothingToRetry
	case e.loadAgain:
		e.mu.Unlock()
		return e.Load(ctx)
	case e.pending == nil:
		e.mu.Unlock()
		return ErrNothingToRetry
	}
	op := e.pending
	e.pending = nil
	e.err = nil
	e.status = StatusSaving
	e.mu.Unlock()

	err := e.persist(ctx, op)

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settle(op, err)
}

// checkAnswerable must be called with mu held.
func (e *Engine) checkAnswerable() error {
	switch {
	case e.disposed:
		return ErrDisposed
	case e.fatal:
		return e.err
	case e.graph == nil:
		return ErrNotLoaded
	case e.status == StatusSaving:
		return ErrBusy
	case e.status == StatusCompleted:
		return ErrCompleted
	}
	return nil
}

// persist runs op against the repository without holding mu. The caller's
// cancellation is detached so a torn-down view does not abort a save.
func (e *Engine) persist(ctx context.Context, op *saveOp) error {
	ctx = context.WithoutCancel(ctx)

	if len(op.rows) > 0 {
		if err := e.repo.UpsertResponses(ctx, e.sessionID, op.rows); err != nil {
			return &TransientIOError{Op: "save answer", Err: err}
		}
		op.rows = nil
	}
	if op.complete {
		var score *int
		if op.outcome != nil {
			score = &op.outcome.Score
		}
		if err := e.repo.CompleteSession(ctx, e.sessionID, score); err != nil {
			return &TransientIOError{Op: "complete session", Err: err}
		}
	}
	return nil
}

// settle applies the result of persist. Must be called with mu held.
func (e *Engine) settle(op *saveOp, err error) error {
	if e.disposed {
		if err != nil {
			e.log.Warn("save failed after dispose", "error", err)
		}
		return err
	}
	if err != nil {
		e.pending = op
		e.fail(err)
		e.log.Error("save failed", "error", err)
		return err
	}

	if op.complete {
		e.status = StatusCompleted
		e.current = nil
		e.outcome = op.outcome
		e.log.Info("questionnaire completed", "answered", e.answers.Count())
	} else {
		e.status = StatusAnswering
		e.current = op.step.Next
	}
	e.forwardNames()
	return nil
}

// fail records err. Integrity errors and missing records are fatal. Must
// be called with mu held.
func (e *Engine) fail(err error) {
	e.status = StatusError
	e.err = err
	var die *qgraph.DataIntegrityError
	if errors.As(err, &die) || errors.Is(err, store.ErrNotFound) {
		e.fatal = true
		e.current = nil
	}
}

func (e *Engine) row(a qgraph.Answer) store.ResponseRow {
	return store.ResponseRow{
		SessionID:  e.sessionID,
		QuestionID: a.QuestionID,
		OptionIDs:  a.OptionIDs,
		Text:       a.Text,
		UpdatedAt:  time.Now().UTC(),
	}
}

// capture stores identity values from answers at configured positions.
func (e *Engine) capture(q *qgraph.Question, a qgraph.Answer) {
	pos := e.graph.Position(q.ID)
	for _, c := range e.cfg.Captures {
		if c.Position != pos {
			continue
		}
		if v := placeholder.Sanitize(q.Display(a)); v != "" && v != e.names[c.Field] {
			e.names[c.Field] = v
			e.namesNew = true
			e.log.Debug("name captured", "field", c.Field.String(), "captured_name", v)
		}
	}
}

func (e *Engine) forwardNames() {
	if e.sink == nil || !e.namesNew {
		return
	}
	e.namesNew = false
	own, cared := e.names[FieldOwnName], e.names[FieldCaredName]
	// The sink is local storage; keep it off the caller's context.
	if err := e.sink.SaveNames(context.Background(), own, cared); err != nil {
		e.log.Warn("saving captured names failed", "error", err)
	}
}

// score computes the outcome for scored questionnaires. Must be called
// with mu held.
func (e *Engine) score() *Outcome {
	if e.scorer == nil || !e.graph.Scored() {
		return nil
	}
	out, err := e.scorer.Score(e.graph, e.answers.Clone())
	if err != nil {
		e.log.Warn("scoring skipped", "error", err)
		return nil
	}
	return &out
}

// State returns a snapshot of the engine state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := State{
		Status:        e.status,
		SessionID:     e.sessionID,
		Current:       e.current,
		Answers:       e.answers.Clone(),
		AnsweredCount: e.answers.Count(),
		Err:           e.err,
		Retryable:     e.status == StatusError && !e.fatal && (e.pending != nil || e.loadAgain),
		OwnName:       e.names[FieldOwnName],
		CaredName:     e.names[FieldCaredName],
	}
	if e.outcome != nil {
		out := *e.outcome
		s.Outcome = &out
	}
	return s
}

// Graph returns the loaded graph, or nil.
func (e *Engine) Graph() *qgraph.Graph {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.graph
}

// Result returns the completion outcome, or nil if the questionnaire is not
// scored or not finished.
func (e *Engine) Result() *Outcome {
	return e.State().Outcome
}

// Progress reports how far the session has come. The graph-based total is
// an estimate and may change as branches are chosen.
func (e *Engine) Progress() Progress {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.graph == nil {
		return Progress{Mode: e.cfg.Progress}
	}
	mode := e.cfg.Progress
	if mode == ProgressAuto {
		mode = ProgressGraph
		if e.graph.IsLinear() {
			mode = ProgressLinear
		}
	}

	completed := e.status == StatusCompleted
	p := Progress{Mode: mode}
	switch mode {
	case ProgressLinear:
		if completed {
			total := e.graph.Linear("", e.answers).Total
			p.Linear = qgraph.LinearProgress{Current: total, Total: total}
		} else if e.current != nil {
			p.Linear = e.graph.Linear(e.current.ID, e.answers)
		}
	default:
		var cur string
		if e.current != nil {
			cur = e.current.ID
		}
		p.Graph = e.graph.Estimate(cur, e.answers, completed)
	}
	return p
}

// Resolve substitutes placeholders in text. Names captured in this session
// are consulted after any overrides the caller supplies.
func (e *Engine) Resolve(text string, ctx placeholder.Context) string {
	e.mu.Lock()
	captured := placeholder.Values{
		placeholder.KeyOwnName:   e.names[FieldOwnName],
		placeholder.KeyCaredName: e.names[FieldCaredName],
	}
	e.mu.Unlock()

	ctx.Overrides = placeholder.Chain{ctx.Overrides, captured}
	return e.resolver.Resolve(text, ctx)
}

// Dispose detaches the engine. A save still in flight completes but its
// result is not applied; later calls return ErrDisposed.
func (e *Engine) Dispose() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.disposed = true
}

func (e *Engine) String() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fmt.Sprintf("engine(%s, %s)", e.cfg.QuestionnaireID, e.status)
}
