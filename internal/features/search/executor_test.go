package search

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"go-bizops/internal/common/apperr"
	"go-bizops/internal/features/schema"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeRecordRepo struct {
	data    []map[string]any
	total   int64
	listErr error

	lastFilter map[string]any
	lastLimit  int64
	lastOffset int64
	lastSortBy string
	lastOrder  int
}

func (f *fakeRecordRepo) List(ctx context.Context, moduleName string, filter map[string]any, limit, offset int64, sortBy string, sortOrder int) ([]map[string]any, error) {
	f.lastFilter = filter
	f.lastLimit = limit
	f.lastOffset = offset
	f.lastSortBy = sortBy
	f.lastOrder = sortOrder
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.data, nil
}

func (f *fakeRecordRepo) Count(ctx context.Context, moduleName string, filter map[string]any) (int64, error) {
	return f.total, nil
}

func (f *fakeRecordRepo) Get(ctx context.Context, moduleName, id string) (map[string]any, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeRecordRepo) Insert(ctx context.Context, moduleName string, data map[string]any) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeRecordRepo) Update(ctx context.Context, moduleName, id string, fields map[string]any) error {
	return errors.New("not implemented")
}

func (f *fakeRecordRepo) Delete(ctx context.Context, moduleName, id string) error {
	return errors.New("not implemented")
}

func containsPattern(value string) bson.M {
	return bson.M{"$regex": primitive.Regex{Pattern: value, Options: "i"}}
}

func TestCompileQueryFreeText(t *testing.T) {
	mod := testModule()

	tests := []struct {
		name  string
		query SearchQuery
		want  bson.M
	}{
		{
			name:  "plain text fans out over text fields",
			query: SearchQuery{Query: "basmati"},
			want: bson.M{"$or": []bson.M{
				{"client": containsPattern("basmati")},
				{"internal_code": containsPattern("basmati")},
			}},
		},
		{
			name:  "field prefix targets text field with contains",
			query: SearchQuery{Query: "client: Gupta"},
			want:  bson.M{"client": containsPattern("Gupta")},
		},
		{
			name:  "field prefix on select field is exact equality",
			query: SearchQuery{Query: "status:pending"},
			want:  bson.M{"status": "pending"},
		},
		{
			name:  "unknown prefix falls back to plain search",
			query: SearchQuery{Query: "nosuch:thing"},
			want: bson.M{"$or": []bson.M{
				{"client": containsPattern("nosuch:thing")},
				{"internal_code": containsPattern("nosuch:thing")},
			}},
		},
		{
			name:  "regex metacharacters are escaped",
			query: SearchQuery{Query: "client: A.B (Pvt)"},
			want:  bson.M{"client": containsPattern(`A\.B \(Pvt\)`)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompileQuery(mod, tt.query)
			if !reflect.DeepEqual(bson.M(got), tt.want) {
				t.Errorf("CompileQuery() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestCompileQueryFreeTextNoTextFields(t *testing.T) {
	mod := schema.Module{
		Name: "counters",
		Fields: []schema.Field{
			{Name: "count", Type: schema.FieldTypeNumber, Filterable: true},
		},
	}
	got := CompileQuery(mod, SearchQuery{Query: "anything"})
	want := bson.M{"_id": bson.M{"$exists": false}}
	if !reflect.DeepEqual(bson.M(got), want) {
		t.Errorf("CompileQuery() = %#v, want match-nothing %#v", got, want)
	}
}

func TestCompileQueryConditions(t *testing.T) {
	mod := testModule()

	tests := []struct {
		name  string
		query SearchQuery
		want  bson.M
	}{
		{
			name: "AND conditions",
			query: SearchQuery{Filters: &SearchFilter{Logic: "AND", Conditions: []FilterCondition{
				{Field: "status", Operator: OpEquals, Value: "pending"},
				{Field: "number_of_cases", Operator: OpGreaterThan, Value: 10},
			}}},
			want: bson.M{"$and": []bson.M{
				{"status": bson.M{"$eq": "pending"}},
				{"number_of_cases": bson.M{"$gt": 10}},
			}},
		},
		{
			name: "OR conditions",
			query: SearchQuery{Filters: &SearchFilter{Logic: "OR", Conditions: []FilterCondition{
				{Field: "status", Operator: OpEquals, Value: "pending"},
				{Field: "status", Operator: OpEquals, Value: "delivered"},
			}}},
			want: bson.M{"$or": []bson.M{
				{"status": bson.M{"$eq": "pending"}},
				{"status": bson.M{"$eq": "delivered"}},
			}},
		},
		{
			name: "between expands to gte and lte",
			query: SearchQuery{Filters: &SearchFilter{Logic: "AND", Conditions: []FilterCondition{
				{Field: "number_of_cases", Operator: OpBetween, Value: 10, Value2: 50},
			}}},
			want: bson.M{"$and": []bson.M{
				{"number_of_cases": bson.M{"$gte": 10, "$lte": 50}},
			}},
		},
		{
			name: "free text and conditions combine under $and",
			query: SearchQuery{
				Query: "client:Gupta",
				Filters: &SearchFilter{Logic: "AND", Conditions: []FilterCondition{
					{Field: "status", Operator: OpEquals, Value: "pending"},
				}},
			},
			want: bson.M{"$and": []bson.M{
				{"client": containsPattern("Gupta")},
				{"$and": []bson.M{{"status": bson.M{"$eq": "pending"}}}},
			}},
		},
		{
			name:  "empty query compiles to empty filter",
			query: SearchQuery{},
			want:  bson.M{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompileQuery(mod, tt.query)
			if !reflect.DeepEqual(bson.M(got), tt.want) {
				t.Errorf("CompileQuery() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestExecutePagination(t *testing.T) {
	reg, err := schema.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	repo := &fakeRecordRepo{total: 120}
	exec := NewExecutor(repo, reg)

	q := SearchQuery{Query: "basmati", Page: 3, PageSize: 25, SortOrder: "asc", SortBy: "client"}
	result, err := exec.Execute(context.Background(), q, "orders")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if repo.lastOffset != 50 {
		t.Errorf("offset = %d, want 50", repo.lastOffset)
	}
	if repo.lastLimit != 25 {
		t.Errorf("limit = %d, want 25", repo.lastLimit)
	}
	if repo.lastSortBy != "client" || repo.lastOrder != 1 {
		t.Errorf("sort = %s/%d, want client/1", repo.lastSortBy, repo.lastOrder)
	}
	if result.Total != 120 || result.Page != 3 || result.PageSize != 25 {
		t.Errorf("result meta = %d/%d/%d, want 120/3/25", result.Total, result.Page, result.PageSize)
	}
}

func TestExecuteDefaultsSortToNewestFirst(t *testing.T) {
	reg, _ := schema.NewRegistry()
	repo := &fakeRecordRepo{}
	exec := NewExecutor(repo, reg)

	q := SearchQuery{Query: "x", Page: 1, PageSize: 50}
	if _, err := exec.Execute(context.Background(), q, "orders"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if repo.lastSortBy != "created_at" || repo.lastOrder != -1 {
		t.Errorf("default sort = %s/%d, want created_at/-1", repo.lastSortBy, repo.lastOrder)
	}
}

func TestExecuteWrapsStoreErrors(t *testing.T) {
	reg, _ := schema.NewRegistry()
	repo := &fakeRecordRepo{listErr: errors.New("connection reset")}
	exec := NewExecutor(repo, reg)

	q := SearchQuery{Query: "x", Page: 1, PageSize: 50}
	_, err := exec.Execute(context.Background(), q, "orders")
	if err == nil {
		t.Fatal("Execute() expected error")
	}
	var rqe *apperr.RemoteQueryError
	if !errors.As(err, &rqe) {
		t.Errorf("error %v is not a RemoteQueryError", err)
	}
}

func TestExecuteRejectsInvalidQueryBeforeStore(t *testing.T) {
	reg, _ := schema.NewRegistry()
	repo := &fakeRecordRepo{}
	exec := NewExecutor(repo, reg)

	q := SearchQuery{
		Page: 1, PageSize: 50,
		Filters: &SearchFilter{Logic: "AND", Conditions: []FilterCondition{
			{Field: "client", Operator: OpGreaterThan, Value: "A"},
		}},
	}
	_, err := exec.Execute(context.Background(), q, "orders")
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error %v is not a ValidationError", err)
	}
	if repo.lastFilter != nil {
		t.Error("store was queried despite validation failure")
	}
}

func TestBuildHighlights(t *testing.T) {
	mod := testModule()
	data := []map[string]any{
		{"id": "a1", "client": "Gupta Rice Traders", "status": "pending"},
		{"id": "a2", "client": "Sharma Foods", "status": "pending"},
	}

	highlights := buildHighlights(mod, "rice", data)
	if highlights == nil {
		t.Fatal("expected highlights")
	}
	if _, ok := highlights["a1"]["client"]; !ok {
		t.Error("expected a snippet for a1.client")
	}
	if _, ok := highlights["a2"]; ok {
		t.Error("a2 does not contain the term, no snippet expected")
	}
}

func TestSnippetTruncation(t *testing.T) {
	long := "0123456789012345678901234567890 target 0123456789012345678901234567890"
	idx := 32
	got := snippet(long, idx, len("target"))
	if len(got) >= len(long) {
		t.Errorf("snippet did not truncate: %q", got)
	}
	if got[:len("…")] != "…" {
		t.Errorf("snippet missing leading ellipsis: %q", got)
	}
}

func TestSnippetKeepsRunesWhole(t *testing.T) {
	// The byte padding lands mid-rune on both sides of the match.
	val := strings.Repeat("è", 30) + " target " + strings.Repeat("é", 30)
	idx := strings.Index(val, "target")

	got := snippet(val, idx, len("target"))

	if !utf8.ValidString(got) {
		t.Fatalf("snippet split a rune: %q", got)
	}
	if !strings.Contains(got, "target") {
		t.Errorf("snippet lost the match: %q", got)
	}
}
