package nlq

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/Chrisc1124/statpad/internal/apptype"
	"github.com/Chrisc1124/statpad/internal/logger"
	"github.com/Chrisc1124/statpad/internal/metrics"
)

// Store is the engine's full storage dependency: the lookups dispatch needs
// plus the name feed for the entity index.
type Store interface {
	StatsReader
	NameSource
}

// Options tune the engine. Zero values fall back to defaults.
type Options struct {
	// QueryTimeout bounds the store lookup of one query. Default 5s.
	QueryTimeout time.Duration
	// MaxCandidates caps the names listed in an ambiguity failure. Default 5.
	MaxCandidates int
}

// Engine owns the query pipeline and the live index snapshot.
type Engine struct {
	store       Store
	holder      *IndexHolder
	interpreter *Interpreter
	dispatcher  *Dispatcher
}

// NewEngine builds the initial entity index from store and wires the
// pipeline. It fails if the index cannot be loaded; an engine never runs
// without one.
func NewEngine(ctx context.Context, store Store, opts Options) (*Engine, error) {
	idx, err := BuildIndex(ctx, store)
	if err != nil {
		return nil, errors.Wrap(err, "build entity index")
	}
	holder := NewIndexHolder(idx)
	players, teams := idx.Counts()
	logger.Named("nlq").Infow("entity index built", "players", players, "teams", teams)
	return &Engine{
		store:       store,
		holder:      holder,
		interpreter: NewInterpreter(holder, opts.MaxCandidates),
		dispatcher:  NewDispatcher(store, opts.QueryTimeout),
	}, nil
}

// ProcessQuery answers one free-text question. Every outcome, including
// interpretation failures and store faults, comes back as an envelope;
// nothing escapes as an error.
func (e *Engine) ProcessQuery(ctx context.Context, text string) ResultEnvelope {
	q, err := e.interpreter.Interpret(text)
	if err != nil {
		qe, ok := AsQueryError(err)
		if !ok {
			qe = newUnrecognizedError()
		}
		metrics.Default().IncQueryTotal("none", qe.Kind.String())
		return ErrorEnvelope(text, qe.Error())
	}
	env := e.dispatcher.Dispatch(ctx, q, text)
	outcome := "ok"
	if env.Type == envelopeTypeError {
		outcome = "data_unavailable"
	}
	metrics.Default().IncQueryTotal(q.Kind.String(), outcome)
	return env
}

// Interpret exposes the typed interpretation of text without dispatching
// it, for callers that explain rather than answer.
func (e *Engine) Interpret(text string) (*Query, error) {
	return e.interpreter.Interpret(text)
}

// ResolveName maps free text to the canonical name of exactly one known
// entity of the given kind, through the same tiered matching queries use.
// Misses and ties come back as *QueryError values.
func (e *Engine) ResolveName(fragment string, kind apptype.EntityKind) (string, error) {
	res := NewResolver(e.holder.Current()).Resolve(fragment, kind)
	if !res.Found() {
		return "", newEntityNotFoundError(fragment, kind)
	}
	if !res.Unique() {
		return "", newAmbiguousEntityError(fragment, kind, res.CandidateNames(e.interpreter.maxCandidates))
	}
	return res.Best().Name, nil
}

// RefreshIndex rebuilds both name pools and atomically publishes the new
// snapshot. In-flight queries finish on the snapshot they started with.
func (e *Engine) RefreshIndex(ctx context.Context) (players, teams int, err error) {
	idx, err := BuildIndex(ctx, e.store)
	if err != nil {
		return 0, 0, errors.Wrap(err, "rebuild entity index")
	}
	e.holder.Swap(idx)
	players, teams = idx.Counts()
	logger.Named("nlq").Infow("entity index refreshed", "players", players, "teams", teams)
	return players, teams, nil
}

// IndexCounts reports the live snapshot's pool sizes.
func (e *Engine) IndexCounts() (players, teams int) {
	return e.holder.Current().Counts()
}
