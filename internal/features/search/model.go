package search

// SearchOperator names one comparison in a filter condition. The set of
// operators legal for a condition depends on the declared type of its field.
type SearchOperator string

const (
	OpEquals             SearchOperator = "equals"
	OpNotEquals          SearchOperator = "not_equals"
	OpContains           SearchOperator = "contains"
	OpNotContains        SearchOperator = "not_contains"
	OpStartsWith         SearchOperator = "starts_with"
	OpEndsWith           SearchOperator = "ends_with"
	OpGreaterThan        SearchOperator = "greater_than"
	OpLessThan           SearchOperator = "less_than"
	OpGreaterThanOrEqual SearchOperator = "greater_than_or_equal"
	OpLessThanOrEqual    SearchOperator = "less_than_or_equal"
	OpBetween            SearchOperator = "between"
	OpIn                 SearchOperator = "in"
	OpNotIn              SearchOperator = "not_in"
	OpIsNull             SearchOperator = "is_null"
	OpIsNotNull          SearchOperator = "is_not_null"
)

// FilterCondition is one field/operator/value predicate. Value2 is populated
// only for the between operator.
type FilterCondition struct {
	Field    string         `json:"field" bson:"field"`
	Operator SearchOperator `json:"operator" bson:"operator"`
	Value    any            `json:"value" bson:"value"`
	Value2   any            `json:"value2,omitempty" bson:"value2,omitempty"`
}

// SearchFilter is a flat list of conditions combined by a single logic
// operator. Empty Conditions means no filtering.
type SearchFilter struct {
	Module     string            `json:"module" bson:"module"`
	Logic      string            `json:"logic" bson:"logic"` // "AND" or "OR"
	Conditions []FilterCondition `json:"conditions" bson:"conditions"`
}

// Clone returns a deep copy so superseded queries never share condition slices.
func (f *SearchFilter) Clone() *SearchFilter {
	if f == nil {
		return nil
	}
	out := &SearchFilter{Module: f.Module, Logic: f.Logic}
	out.Conditions = make([]FilterCondition, len(f.Conditions))
	copy(out.Conditions, f.Conditions)
	return out
}

// SearchQuery describes what subset of records, in what order, at what page.
// Instances are superseded, never mutated in place.
type SearchQuery struct {
	Query     string        `json:"query"`
	Filters   *SearchFilter `json:"filters,omitempty"`
	SortBy    string        `json:"sort_by,omitempty"`
	SortOrder string        `json:"sort_order"` // "asc" or "desc"
	Page      int           `json:"page"`
	PageSize  int           `json:"page_size"`
	Highlight bool          `json:"highlight"`
}

// IsEmpty reports whether the query has neither free text nor conditions.
// Empty queries are never dispatched to the store.
func (q SearchQuery) IsEmpty() bool {
	if q.Query != "" {
		return false
	}
	return q.Filters == nil || len(q.Filters.Conditions) == 0
}

func (q SearchQuery) clone() SearchQuery {
	out := q
	out.Filters = q.Filters.Clone()
	return out
}

// SearchResult is one settled page of matches.
type SearchResult struct {
	Data       []map[string]any             `json:"data"`
	Total      int64                        `json:"total"`
	Page       int                          `json:"page"`
	PageSize   int                          `json:"page_size"`
	Highlights map[string]map[string]string `json:"highlights,omitempty"` // record id -> field -> snippet
}

// ConditionPatch carries a partial update to one filter condition. A nil
// pointer leaves the corresponding part untouched.
type ConditionPatch struct {
	Field    *string         `json:"field,omitempty"`
	Operator *SearchOperator `json:"operator,omitempty"`
	Value    any             `json:"value,omitempty"`
	Value2   any             `json:"value2,omitempty"`
}
