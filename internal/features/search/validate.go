package search

import (
	"go-bizops/internal/common/apperr"
	"go-bizops/internal/features/schema"
)

// OperatorsForType returns the operator set legal for a field type.
func OperatorsForType(t schema.FieldType) []SearchOperator {
	switch t {
	case schema.FieldTypeText:
		return []SearchOperator{OpEquals, OpNotEquals, OpContains, OpNotContains, OpStartsWith, OpEndsWith, OpIsNull, OpIsNotNull}
	case schema.FieldTypeNumber, schema.FieldTypeDate:
		return []SearchOperator{OpEquals, OpNotEquals, OpGreaterThan, OpLessThan, OpGreaterThanOrEqual, OpLessThanOrEqual, OpBetween, OpIsNull, OpIsNotNull}
	case schema.FieldTypeBoolean:
		return []SearchOperator{OpEquals, OpIsNull, OpIsNotNull}
	case schema.FieldTypeSelect, schema.FieldTypeMultiSelect:
		return []SearchOperator{OpEquals, OpNotEquals, OpIn, OpNotIn, OpIsNull, OpIsNotNull}
	default:
		return []SearchOperator{OpEquals, OpNotEquals}
	}
}

func operatorLegal(t schema.FieldType, op SearchOperator) bool {
	for _, legal := range OperatorsForType(t) {
		if legal == op {
			return true
		}
	}
	return false
}

// ValidateCondition checks one condition against a module's schema. Violations
// are caller programming errors, surfaced before any remote call.
func ValidateCondition(mod schema.Module, c FilterCondition) error {
	field, ok := mod.Field(c.Field)
	if !ok {
		return apperr.Validation("unknown field %q in module %q", c.Field, mod.Name)
	}
	if !field.Filterable {
		return apperr.Validation("field %q in module %q is not filterable", c.Field, mod.Name)
	}
	if !operatorLegal(field.Type, c.Operator) {
		return apperr.Validation("operator %q is not legal for %s field %q", c.Operator, field.Type, c.Field)
	}
	if c.Operator == OpBetween && (c.Value == nil || c.Value2 == nil) {
		return apperr.Validation("between on field %q requires both bounds", c.Field)
	}
	return nil
}

// ValidateQuery checks a full query against the registry before dispatch.
func ValidateQuery(reg *schema.Registry, moduleName string, q SearchQuery) error {
	mod, ok := reg.Module(moduleName)
	if !ok {
		return apperr.Validation("unknown module %q", moduleName)
	}
	if q.Page < 1 {
		return apperr.Validation("page must be >= 1, got %d", q.Page)
	}
	if q.PageSize < 1 {
		return apperr.Validation("page size must be > 0, got %d", q.PageSize)
	}
	if q.SortOrder != "" && q.SortOrder != "asc" && q.SortOrder != "desc" {
		return apperr.Validation("sort order must be asc or desc, got %q", q.SortOrder)
	}
	if q.SortBy != "" {
		field, ok := mod.Field(q.SortBy)
		if !ok {
			return apperr.Validation("unknown sort field %q in module %q", q.SortBy, moduleName)
		}
		if !field.Sortable {
			return apperr.Validation("field %q in module %q is not sortable", q.SortBy, moduleName)
		}
	}
	if q.Filters != nil {
		if q.Filters.Logic != "" && q.Filters.Logic != "AND" && q.Filters.Logic != "OR" {
			return apperr.Validation("filter logic must be AND or OR, got %q", q.Filters.Logic)
		}
		for _, c := range q.Filters.Conditions {
			if err := ValidateCondition(mod, c); err != nil {
				return err
			}
		}
	}
	return nil
}
