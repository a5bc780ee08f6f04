package search

import (
	"testing"

	"go-bizops/internal/features/schema"
)

func testModule() schema.Module {
	return schema.Module{
		Name:  "orders",
		Label: "Orders",
		Fields: []schema.Field{
			{Name: "client", Label: "Client", Type: schema.FieldTypeText, Filterable: true, Sortable: true},
			{Name: "number_of_cases", Label: "Cases", Type: schema.FieldTypeNumber, Filterable: true, Sortable: true},
			{Name: "tentative_delivery_date", Label: "Delivery", Type: schema.FieldTypeDate, Filterable: true, Sortable: true},
			{Name: "urgent", Label: "Urgent", Type: schema.FieldTypeBoolean, Filterable: true},
			{Name: "status", Label: "Status", Type: schema.FieldTypeSelect, Filterable: true, Sortable: true,
				Options: []schema.SelectOption{{Label: "Pending", Value: "pending"}, {Label: "Delivered", Value: "delivered"}}},
			{Name: "internal_code", Label: "Internal Code", Type: schema.FieldTypeText, Filterable: false},
		},
	}
}

func TestOperatorLegality(t *testing.T) {
	tests := []struct {
		name    string
		cond    FilterCondition
		wantErr bool
	}{
		{"text contains", FilterCondition{Field: "client", Operator: OpContains, Value: "rice"}, false},
		{"text starts_with", FilterCondition{Field: "client", Operator: OpStartsWith, Value: "A"}, false},
		{"text greater_than illegal", FilterCondition{Field: "client", Operator: OpGreaterThan, Value: "A"}, true},
		{"text in illegal", FilterCondition{Field: "client", Operator: OpIn, Value: []any{"A"}}, true},
		{"number between", FilterCondition{Field: "number_of_cases", Operator: OpBetween, Value: 10, Value2: 50}, false},
		{"number contains illegal", FilterCondition{Field: "number_of_cases", Operator: OpContains, Value: "1"}, true},
		{"date less_than", FilterCondition{Field: "tentative_delivery_date", Operator: OpLessThan, Value: "2026-01-01"}, false},
		{"boolean equals", FilterCondition{Field: "urgent", Operator: OpEquals, Value: true}, false},
		{"boolean greater_than illegal", FilterCondition{Field: "urgent", Operator: OpGreaterThan, Value: true}, true},
		{"boolean is_null", FilterCondition{Field: "urgent", Operator: OpIsNull}, false},
		{"select in", FilterCondition{Field: "status", Operator: OpIn, Value: []any{"pending", "delivered"}}, false},
		{"select contains illegal", FilterCondition{Field: "status", Operator: OpContains, Value: "pen"}, true},
		{"unknown field", FilterCondition{Field: "nope", Operator: OpEquals, Value: 1}, true},
		{"not filterable", FilterCondition{Field: "internal_code", Operator: OpEquals, Value: "X"}, true},
		{"between missing upper bound", FilterCondition{Field: "number_of_cases", Operator: OpBetween, Value: 10}, true},
	}

	mod := testModule()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCondition(mod, tt.cond)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCondition() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOperatorsForTypeEveryTypeHasNullChecks(t *testing.T) {
	types := []schema.FieldType{
		schema.FieldTypeText,
		schema.FieldTypeNumber,
		schema.FieldTypeDate,
		schema.FieldTypeBoolean,
		schema.FieldTypeSelect,
		schema.FieldTypeMultiSelect,
	}
	for _, ft := range types {
		ops := OperatorsForType(ft)
		hasNull, hasNotNull := false, false
		for _, op := range ops {
			if op == OpIsNull {
				hasNull = true
			}
			if op == OpIsNotNull {
				hasNotNull = true
			}
		}
		if !hasNull || !hasNotNull {
			t.Errorf("type %s is missing null check operators", ft)
		}
	}
}

func TestValidateQuery(t *testing.T) {
	reg, err := schema.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	base := SearchQuery{Query: "basmati", Page: 1, PageSize: 50, SortOrder: "desc"}

	tests := []struct {
		name    string
		module  string
		mutate  func(q *SearchQuery)
		wantErr bool
	}{
		{"valid", "orders", func(q *SearchQuery) {}, false},
		{"unknown module", "widgets", func(q *SearchQuery) {}, true},
		{"zero page", "orders", func(q *SearchQuery) { q.Page = 0 }, true},
		{"zero page size", "orders", func(q *SearchQuery) { q.PageSize = 0 }, true},
		{"bad sort order", "orders", func(q *SearchQuery) { q.SortOrder = "upwards" }, true},
		{"unknown sort field", "orders", func(q *SearchQuery) { q.SortBy = "nope" }, true},
		{"bad logic", "orders", func(q *SearchQuery) {
			q.Filters = &SearchFilter{Logic: "XOR", Conditions: []FilterCondition{{Field: "client", Operator: OpEquals, Value: "A"}}}
		}, true},
		{"valid OR filter", "orders", func(q *SearchQuery) {
			q.Filters = &SearchFilter{Logic: "OR", Conditions: []FilterCondition{
				{Field: "client", Operator: OpContains, Value: "A"},
				{Field: "status", Operator: OpEquals, Value: "pending"},
			}}
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := base
			tt.mutate(&q)
			err := ValidateQuery(reg, tt.module, q)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateQuery() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
