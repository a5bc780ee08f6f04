package search

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go-bizops/internal/common/apperr"
	"go-bizops/internal/features/record"
	"go-bizops/internal/features/schema"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Executor turns a validated SearchQuery plus a module name into one page of
// matching records against the remote store.
type Executor interface {
	Execute(ctx context.Context, q SearchQuery, moduleName string) (*SearchResult, error)
}

type ExecutorImpl struct {
	Records  record.RecordRepository
	Registry *schema.Registry
}

func NewExecutor(records record.RecordRepository, registry *schema.Registry) Executor {
	return &ExecutorImpl{Records: records, Registry: registry}
}

func (e *ExecutorImpl) Execute(ctx context.Context, q SearchQuery, moduleName string) (*SearchResult, error) {
	if err := ValidateQuery(e.Registry, moduleName, q); err != nil {
		return nil, err
	}
	mod, _ := e.Registry.Module(moduleName)

	filter := CompileQuery(mod, q)

	total, err := e.Records.Count(ctx, moduleName, filter)
	if err != nil {
		return nil, apperr.RemoteQuery(moduleName, err)
	}

	sortOrder := -1
	if q.SortOrder == "asc" {
		sortOrder = 1
	}
	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}

	offset := int64(q.Page-1) * int64(q.PageSize)
	data, err := e.Records.List(ctx, moduleName, filter, int64(q.PageSize), offset, sortBy, sortOrder)
	if err != nil {
		return nil, apperr.RemoteQuery(moduleName, err)
	}

	result := &SearchResult{
		Data:     data,
		Total:    total,
		Page:     q.Page,
		PageSize: q.PageSize,
	}
	if q.Highlight && q.Query != "" {
		result.Highlights = buildHighlights(mod, q.Query, data)
	}
	return result, nil
}

// CompileQuery translates free text plus filter conditions into the store's
// filter document. The caller must have validated the query first.
func CompileQuery(mod schema.Module, q SearchQuery) map[string]any {
	var clauses []bson.M

	if text := strings.TrimSpace(q.Query); text != "" {
		clauses = append(clauses, compileFreeText(mod, text))
	}

	if q.Filters != nil && len(q.Filters.Conditions) > 0 {
		conds := make([]bson.M, 0, len(q.Filters.Conditions))
		for _, c := range q.Filters.Conditions {
			conds = append(conds, compileCondition(c))
		}
		if q.Filters.Logic == "OR" {
			clauses = append(clauses, bson.M{"$or": conds})
		} else {
			clauses = append(clauses, bson.M{"$and": conds})
		}
	}

	switch len(clauses) {
	case 0:
		return bson.M{}
	case 1:
		return clauses[0]
	default:
		return bson.M{"$and": clauses}
	}
}

// compileFreeText handles the field:value mini-syntax — split on the first
// colon, and when the left side names a filterable field the right side is
// matched against that field only. Anything else is a plain substring search
// fanned out over the module's text fields.
func compileFreeText(mod schema.Module, text string) bson.M {
	if i := strings.Index(text, ":"); i > 0 {
		name := strings.TrimSpace(text[:i])
		value := strings.TrimSpace(text[i+1:])
		if field, ok := mod.Field(name); ok && field.Filterable && value != "" {
			if field.Type == schema.FieldTypeText {
				return bson.M{name: containsRegex(value)}
			}
			return bson.M{name: value}
		}
	}

	var or []bson.M
	for _, f := range mod.TextFields() {
		or = append(or, bson.M{f.Name: containsRegex(text)})
	}
	if len(or) == 0 {
		// No text fields to search: match nothing rather than everything.
		return bson.M{"_id": bson.M{"$exists": false}}
	}
	return bson.M{"$or": or}
}

func compileCondition(c FilterCondition) bson.M {
	field := c.Field
	switch c.Operator {
	case OpEquals:
		return bson.M{field: bson.M{"$eq": c.Value}}
	case OpNotEquals:
		return bson.M{field: bson.M{"$ne": c.Value}}
	case OpContains:
		return bson.M{field: containsRegex(stringValue(c.Value))}
	case OpNotContains:
		return bson.M{field: bson.M{"$not": containsRegex(stringValue(c.Value))}}
	case OpStartsWith:
		return bson.M{field: bson.M{"$regex": primitive.Regex{Pattern: "^" + escapeRegex(stringValue(c.Value)), Options: "i"}}}
	case OpEndsWith:
		return bson.M{field: bson.M{"$regex": primitive.Regex{Pattern: escapeRegex(stringValue(c.Value)) + "$", Options: "i"}}}
	case OpGreaterThan:
		return bson.M{field: bson.M{"$gt": c.Value}}
	case OpLessThan:
		return bson.M{field: bson.M{"$lt": c.Value}}
	case OpGreaterThanOrEqual:
		return bson.M{field: bson.M{"$gte": c.Value}}
	case OpLessThanOrEqual:
		return bson.M{field: bson.M{"$lte": c.Value}}
	case OpBetween:
		return bson.M{field: bson.M{"$gte": c.Value, "$lte": c.Value2}}
	case OpIn:
		return bson.M{field: bson.M{"$in": listValue(c.Value)}}
	case OpNotIn:
		return bson.M{field: bson.M{"$nin": listValue(c.Value)}}
	case OpIsNull:
		return bson.M{field: bson.M{"$eq": nil}}
	case OpIsNotNull:
		return bson.M{field: bson.M{"$ne": nil}}
	default:
		return bson.M{field: bson.M{"$eq": c.Value}}
	}
}

func containsRegex(value string) bson.M {
	return bson.M{"$regex": primitive.Regex{Pattern: escapeRegex(value), Options: "i"}}
}

var regexSpecials = `\.+*?()|[]{}^$`

func escapeRegex(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(regexSpecials, r) {
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func stringValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func listValue(v any) []any {
	if list, ok := v.([]any); ok {
		return list
	}
	if list, ok := v.([]string); ok {
		out := make([]any, len(list))
		for i, s := range list {
			out[i] = s
		}
		return out
	}
	return []any{v}
}

// buildHighlights returns a snippet per matching text field per record. The
// term that produced the page is matched case-insensitively; field:value
// prefixes reuse only the value part.
func buildHighlights(mod schema.Module, term string, data []map[string]any) map[string]map[string]string {
	if i := strings.Index(term, ":"); i > 0 {
		if _, ok := mod.Field(strings.TrimSpace(term[:i])); ok {
			term = strings.TrimSpace(term[i+1:])
		}
	}
	lower := strings.ToLower(term)

	highlights := make(map[string]map[string]string)
	for _, rec := range data {
		id, _ := rec["id"].(string)
		if id == "" {
			continue
		}
		for _, f := range mod.TextFields() {
			val, ok := rec[f.Name].(string)
			if !ok {
				continue
			}
			if idx := strings.Index(strings.ToLower(val), lower); idx >= 0 {
				if highlights[id] == nil {
					highlights[id] = make(map[string]string)
				}
				highlights[id][f.Name] = snippet(val, idx, len(term))
			}
		}
	}
	if len(highlights) == 0 {
		return nil
	}
	return highlights
}

func snippet(val string, idx, length int) string {
	const pad = 20
	start := idx - pad
	if start < 0 {
		start = 0
	}
	end := idx + length + pad
	if end > len(val) {
		end = len(val)
	}
	// Padding is in bytes; pull the bounds back to rune starts so a
	// multi-byte character is never cut in half.
	for start > 0 && !utf8.RuneStart(val[start]) {
		start--
	}
	for end < len(val) && !utf8.RuneStart(val[end]) {
		end--
	}
	out := val[start:end]
	if start > 0 {
		out = "…" + out
	}
	if end < len(val) {
		out += "…"
	}
	return out
}
