package search

import (
	"context"
	"sync"
	"time"

	"go-bizops/internal/common/apperr"
	"go-bizops/internal/features/schema"

	"go.uber.org/zap"
)

type SessionState string

const (
	StateIdle      SessionState = "idle"
	StatePending   SessionState = "pending"
	StateExecuting SessionState = "executing"
	StateSettled   SessionState = "settled"
	StateErrored   SessionState = "errored"
)

const (
	DefaultDebounce = 300 * time.Millisecond
	DefaultPageSize = 50
)

// SessionOptions configures a live search session.
type SessionOptions struct {
	Debounce      time.Duration // quiet period; DefaultDebounce when zero
	PageSize      int           // DefaultPageSize when zero
	DefaultFilter *SearchFilter // applied on construction and ClearSearch
	OnResults     func(*SearchResult)
	OnError       func(error)
}

// Session owns the live query state for one search view. Rapid edits coalesce
// into a single executor invocation after a quiet period; results are applied
// in dispatch order, never completion order, so a slow early query can never
// overwrite a fresher one.
type Session struct {
	module   string
	mod      schema.Module
	registry *schema.Registry
	executor Executor
	log      *zap.Logger

	debounce  time.Duration
	onResults func(*SearchResult)
	onError   func(error)
	ctx       context.Context

	mu         sync.Mutex
	timer      *time.Timer
	seq        uint64 // last dispatched sequence number
	settledSeq uint64 // sequence of the last applied result
	query      SearchQuery
	defaults   SearchQuery
	state      SessionState
	result     *SearchResult
	err        error
	closed     bool
}

// NewSession creates a session for one module. The context bounds every
// executor call the session dispatches.
func NewSession(ctx context.Context, moduleName string, executor Executor, registry *schema.Registry, log *zap.Logger, opts SessionOptions) (*Session, error) {
	mod, ok := registry.Module(moduleName)
	if !ok {
		return nil, apperr.Validation("unknown module %q", moduleName)
	}

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if opts.DefaultFilter != nil {
		for _, c := range opts.DefaultFilter.Conditions {
			if err := ValidateCondition(mod, c); err != nil {
				return nil, err
			}
		}
	}

	defaults := SearchQuery{
		Query:     "",
		Filters:   opts.DefaultFilter.Clone(),
		SortOrder: "desc",
		Page:      1,
		PageSize:  pageSize,
		Highlight: true,
	}

	s := &Session{
		module:    moduleName,
		mod:       mod,
		registry:  registry,
		executor:  executor,
		log:       log,
		debounce:  debounce,
		onResults: opts.OnResults,
		onError:   opts.OnError,
		ctx:       ctx,
		query:     defaults.clone(),
		defaults:  defaults,
		state:     StateIdle,
	}

	// A configured default filter is live immediately.
	if !s.query.IsEmpty() {
		s.mu.Lock()
		s.scheduleLocked()
		s.mu.Unlock()
	}
	return s, nil
}

// Close stops the debounce timer; in-flight executions finish but their
// results are discarded.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// SetSearchText replaces the free-text term and resets to page 1.
func (s *Session) SetSearchText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query.Query = text
	s.query.Page = 1
	s.scheduleLocked()
}

// AddFilterCondition appends a condition, validated against the module
// schema before it can reach the store.
func (s *Session) AddFilterCondition(c FilterCondition) error {
	if err := ValidateCondition(s.mod, c); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.query.Filters == nil {
		s.query.Filters = &SearchFilter{Module: s.module, Logic: "AND"}
	} else {
		s.query.Filters = s.query.Filters.Clone()
	}
	s.query.Filters.Conditions = append(s.query.Filters.Conditions, c)
	s.query.Page = 1
	s.scheduleLocked()
	return nil
}

// RemoveFilterCondition removes the condition at index.
func (s *Session) RemoveFilterCondition(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.query.Filters == nil || index < 0 || index >= len(s.query.Filters.Conditions) {
		return apperr.Validation("no filter condition at index %d", index)
	}
	f := s.query.Filters.Clone()
	f.Conditions = append(f.Conditions[:index], f.Conditions[index+1:]...)
	s.query.Filters = f
	s.query.Page = 1
	s.scheduleLocked()
	return nil
}

// UpdateFilterCondition applies a partial update to the condition at index.
// Changing the field resets the operator to equals and clears both values,
// so a stale operator can never outlive a type change.
func (s *Session) UpdateFilterCondition(index int, patch ConditionPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.query.Filters == nil || index < 0 || index >= len(s.query.Filters.Conditions) {
		return apperr.Validation("no filter condition at index %d", index)
	}

	c := s.query.Filters.Conditions[index]
	if patch.Field != nil && *patch.Field != c.Field {
		c.Field = *patch.Field
		c.Operator = OpEquals
		c.Value = nil
		c.Value2 = nil
	}
	if patch.Operator != nil {
		c.Operator = *patch.Operator
	}
	if patch.Value != nil {
		c.Value = patch.Value
	}
	if patch.Value2 != nil {
		c.Value2 = patch.Value2
	}
	if err := ValidateCondition(s.mod, c); err != nil {
		return err
	}

	f := s.query.Filters.Clone()
	f.Conditions[index] = c
	s.query.Filters = f
	s.query.Page = 1
	s.scheduleLocked()
	return nil
}

// ClearFilters restores the construction-time default filter.
func (s *Session) ClearFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query.Filters = s.defaults.Filters.Clone()
	s.query.Page = 1
	s.scheduleLocked()
}

// SetSort changes ordering only; the page is left unchanged.
func (s *Session) SetSort(field, order string) error {
	if order == "" {
		order = "desc"
	}
	if order != "asc" && order != "desc" {
		return apperr.Validation("sort order must be asc or desc, got %q", order)
	}
	if field != "" {
		f, ok := s.mod.Field(field)
		if !ok {
			return apperr.Validation("unknown sort field %q in module %q", field, s.module)
		}
		if !f.Sortable {
			return apperr.Validation("field %q in module %q is not sortable", field, s.module)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.query.SortBy = field
	s.query.SortOrder = order
	s.scheduleLocked()
	return nil
}

// SetPage jumps to a page directly.
func (s *Session) SetPage(page int) error {
	if page < 1 {
		return apperr.Validation("page must be >= 1, got %d", page)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query.Page = page
	s.scheduleLocked()
	return nil
}

// ClearSearch resets the whole query to its construction defaults.
func (s *Session) ClearSearch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = s.defaults.clone()
	s.scheduleLocked()
}

// Refetch re-runs the current query immediately, bypassing the quiet period.
// Used after bulk mutations to reconcile the visible page.
func (s *Session) Refetch() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	s.fire()
}

// Results returns the last settled result. It stays visible through Errored
// states until a newer query settles.
func (s *Session) Results() *SearchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Err returns the error of the most recent failed execution, nil once a
// later execution settles.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) IsLoading() bool {
	st := s.State()
	return st == StatePending || st == StateExecuting
}

func (s *Session) SearchText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query.Query
}

// Query returns a snapshot of the working query.
func (s *Session) Query() SearchQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query.clone()
}

// scheduleLocked (re)starts the quiet-period timer. Restarting cancels a
// not-yet-fired invocation; an in-flight one is left to finish and its
// result is dropped as stale.
func (s *Session) scheduleLocked() {
	if s.closed {
		return
	}
	s.state = StatePending
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.fire)
}

func (s *Session) fire() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.query.IsEmpty() {
		// An entirely empty query never hits the store.
		s.state = StateIdle
		s.mu.Unlock()
		return
	}

	s.seq++
	mySeq := s.seq
	snapshot := s.query.clone()
	s.state = StateExecuting
	s.mu.Unlock()

	result, err := s.executor.Execute(s.ctx, snapshot, s.module)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	// Last query wins: an earlier-dispatched response is dropped once a newer
	// dispatch exists or has settled, regardless of arrival order.
	if mySeq != s.seq || mySeq <= s.settledSeq {
		if s.log != nil {
			s.log.Debug("dropping stale search result",
				zap.String("module", s.module),
				zap.Uint64("seq", mySeq),
				zap.Uint64("settled", s.settledSeq))
		}
		return
	}
	s.settledSeq = mySeq

	if err != nil {
		s.err = err
		// Keep the previous settled result visible through the error.
		if s.state == StateExecuting {
			s.state = StateErrored
		}
		if s.log != nil {
			s.log.Error("search failed", zap.String("module", s.module), zap.Error(err))
		}
		if s.onError != nil {
			s.onError(err)
		}
		return
	}

	s.err = nil
	s.result = result
	// An edit made while we were executing keeps the session Pending.
	if s.state == StateExecuting {
		s.state = StateSettled
	}
	if s.onResults != nil {
		s.onResults(result)
	}
}
