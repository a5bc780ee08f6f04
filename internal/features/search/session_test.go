package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go-bizops/internal/features/schema"

	"go.uber.org/zap"
)

type fakeExecutor struct {
	mu     sync.Mutex
	calls  []SearchQuery
	delays map[string]time.Duration
	errFor map[string]error
}

func (f *fakeExecutor) Execute(ctx context.Context, q SearchQuery, moduleName string) (*SearchResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	delay := f.delays[q.Query]
	err := f.errFor[q.Query]
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}
	return &SearchResult{
		Data:     []map[string]any{{"query": q.Query}},
		Total:    1,
		Page:     q.Page,
		PageSize: q.PageSize,
	}, nil
}

func (f *fakeExecutor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeExecutor) lastCall() SearchQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func newTestSession(t *testing.T, exec Executor, opts SessionOptions) *Session {
	t.Helper()
	reg, err := schema.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	if opts.Debounce == 0 {
		opts.Debounce = 40 * time.Millisecond
	}
	s, err := NewSession(context.Background(), "orders", exec, reg, zap.NewNop(), opts)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestSessionCoalescesRapidEdits(t *testing.T) {
	exec := &fakeExecutor{}
	s := newTestSession(t, exec, SessionOptions{})

	s.SetSearchText("b")
	s.SetSearchText("ba")
	s.SetSearchText("basmati")

	waitFor(t, time.Second, func() bool { return s.State() == StateSettled })

	if got := exec.callCount(); got != 1 {
		t.Errorf("executor called %d times, want 1", got)
	}
	if q := exec.lastCall(); q.Query != "basmati" {
		t.Errorf("executed query %q, want %q", q.Query, "basmati")
	}
}

func TestSessionEmptyQueryNeverDispatched(t *testing.T) {
	exec := &fakeExecutor{}
	s := newTestSession(t, exec, SessionOptions{})

	s.SetSearchText("rice")
	s.SetSearchText("")

	time.Sleep(200 * time.Millisecond)

	if got := exec.callCount(); got != 0 {
		t.Errorf("executor called %d times, want 0", got)
	}
	if st := s.State(); st != StateIdle {
		t.Errorf("state = %s, want idle", st)
	}
}

func TestSessionLastQueryWins(t *testing.T) {
	exec := &fakeExecutor{delays: map[string]time.Duration{
		"slow": 300 * time.Millisecond,
		"fast": 10 * time.Millisecond,
	}}
	s := newTestSession(t, exec, SessionOptions{Debounce: 30 * time.Millisecond})

	s.SetSearchText("slow")
	// Let the slow query dispatch, then supersede it while it is in flight.
	waitFor(t, time.Second, func() bool { return exec.callCount() == 1 })
	s.SetSearchText("fast")

	waitFor(t, time.Second, func() bool { return exec.callCount() == 2 })
	// Wait past the slow query's completion so its late result had the
	// chance to clobber the fresh one.
	time.Sleep(400 * time.Millisecond)

	result := s.Results()
	if result == nil {
		t.Fatal("no settled result")
	}
	if got := result.Data[0]["query"]; got != "fast" {
		t.Errorf("visible result is %q, want %q", got, "fast")
	}
	if st := s.State(); st != StateSettled {
		t.Errorf("state = %s, want settled", st)
	}
}

func TestSessionPageResetRules(t *testing.T) {
	exec := &fakeExecutor{}
	s := newTestSession(t, exec, SessionOptions{})

	s.SetSearchText("rice")
	if err := s.SetPage(5); err != nil {
		t.Fatalf("SetPage() error = %v", err)
	}

	// Sort changes keep the page.
	if err := s.SetSort("client", "asc"); err != nil {
		t.Fatalf("SetSort() error = %v", err)
	}
	if got := s.Query().Page; got != 5 {
		t.Errorf("page after sort change = %d, want 5", got)
	}

	// Text edits reset to the first page.
	s.SetSearchText("rice premium")
	if got := s.Query().Page; got != 1 {
		t.Errorf("page after text edit = %d, want 1", got)
	}

	// So do filter edits.
	if err := s.SetPage(3); err != nil {
		t.Fatalf("SetPage() error = %v", err)
	}
	err := s.AddFilterCondition(FilterCondition{Field: "status", Operator: OpEquals, Value: "pending"})
	if err != nil {
		t.Fatalf("AddFilterCondition() error = %v", err)
	}
	if got := s.Query().Page; got != 1 {
		t.Errorf("page after filter edit = %d, want 1", got)
	}
}

func TestSessionRejectsIllegalCondition(t *testing.T) {
	exec := &fakeExecutor{}
	s := newTestSession(t, exec, SessionOptions{})

	err := s.AddFilterCondition(FilterCondition{Field: "client", Operator: OpGreaterThan, Value: "A"})
	if err == nil {
		t.Fatal("expected validation error for illegal operator")
	}

	time.Sleep(150 * time.Millisecond)
	if got := exec.callCount(); got != 0 {
		t.Errorf("executor called %d times after rejected condition, want 0", got)
	}
}

func TestSessionFieldChangeResetsOperator(t *testing.T) {
	exec := &fakeExecutor{}
	s := newTestSession(t, exec, SessionOptions{})

	err := s.AddFilterCondition(FilterCondition{Field: "number_of_cases", Operator: OpGreaterThan, Value: 10})
	if err != nil {
		t.Fatalf("AddFilterCondition() error = %v", err)
	}

	// Switching to a text field would leave greater_than illegal; the change
	// must land with the operator reset instead of failing.
	field := "client"
	if err := s.UpdateFilterCondition(0, ConditionPatch{Field: &field}); err != nil {
		t.Fatalf("UpdateFilterCondition() error = %v", err)
	}

	c := s.Query().Filters.Conditions[0]
	if c.Field != "client" || c.Operator != OpEquals || c.Value != nil {
		t.Errorf("condition after field change = %+v, want client/equals/nil", c)
	}
}

func TestSessionClearSearchRestoresDefaults(t *testing.T) {
	exec := &fakeExecutor{}
	def := &SearchFilter{Module: "orders", Logic: "AND", Conditions: []FilterCondition{
		{Field: "status", Operator: OpNotEquals, Value: "archived"},
	}}
	s := newTestSession(t, exec, SessionOptions{DefaultFilter: def})

	// Default filter is live immediately.
	waitFor(t, time.Second, func() bool { return exec.callCount() == 1 })

	s.SetSearchText("rice")
	s.AddFilterCondition(FilterCondition{Field: "area", Operator: OpEquals, Value: "North"})
	s.ClearSearch()

	q := s.Query()
	if q.Query != "" {
		t.Errorf("query text = %q, want empty", q.Query)
	}
	if len(q.Filters.Conditions) != 1 || q.Filters.Conditions[0].Field != "status" {
		t.Errorf("filters = %+v, want the default filter", q.Filters)
	}
	if q.Page != 1 {
		t.Errorf("page = %d, want 1", q.Page)
	}
}

func TestSessionErrorKeepsPreviousResult(t *testing.T) {
	exec := &fakeExecutor{errFor: map[string]error{
		"bad": errors.New("store unavailable"),
	}}
	s := newTestSession(t, exec, SessionOptions{})

	s.SetSearchText("good")
	waitFor(t, time.Second, func() bool { return s.State() == StateSettled })

	s.SetSearchText("bad")
	waitFor(t, time.Second, func() bool { return s.State() == StateErrored })

	if s.Err() == nil {
		t.Error("expected an error after failed execution")
	}
	result := s.Results()
	if result == nil || result.Data[0]["query"] != "good" {
		t.Errorf("previous result not kept through error: %+v", result)
	}

	// A later successful query clears the error.
	s.SetSearchText("good")
	waitFor(t, time.Second, func() bool { return s.State() == StateSettled })
	if s.Err() != nil {
		t.Errorf("error not cleared after recovery: %v", s.Err())
	}
}

func TestSessionRefetchBypassesDebounce(t *testing.T) {
	exec := &fakeExecutor{}
	s := newTestSession(t, exec, SessionOptions{Debounce: 5 * time.Second})

	s.SetSearchText("rice")
	s.Refetch()

	waitFor(t, time.Second, func() bool { return exec.callCount() == 1 })

	if q := exec.lastCall(); q.Query != "rice" {
		t.Errorf("refetched query %q, want %q", q.Query, "rice")
	}
}

func TestSessionHooksFireOnSettleAndError(t *testing.T) {
	exec := &fakeExecutor{errFor: map[string]error{"bad": errors.New("store down")}}

	var mu sync.Mutex
	var gotResults []string
	var gotErrs []error
	s := newTestSession(t, exec, SessionOptions{
		OnResults: func(r *SearchResult) {
			mu.Lock()
			gotResults = append(gotResults, r.Data[0]["query"].(string))
			mu.Unlock()
		},
		OnError: func(err error) {
			mu.Lock()
			gotErrs = append(gotErrs, err)
			mu.Unlock()
		},
	})

	s.SetSearchText("good")
	waitFor(t, time.Second, func() bool { return s.State() == StateSettled })
	s.SetSearchText("bad")
	waitFor(t, time.Second, func() bool { return s.State() == StateErrored })

	mu.Lock()
	defer mu.Unlock()
	if len(gotResults) != 1 || gotResults[0] != "good" {
		t.Errorf("OnResults calls = %v, want one call for %q", gotResults, "good")
	}
	if len(gotErrs) != 1 {
		t.Fatalf("OnError calls = %d, want 1", len(gotErrs))
	}
}
