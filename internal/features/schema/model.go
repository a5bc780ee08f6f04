package schema

type FieldType string

const (
	FieldTypeText        FieldType = "text"
	FieldTypeNumber      FieldType = "number"
	FieldTypeDate        FieldType = "date"
	FieldTypeBoolean     FieldType = "boolean"
	FieldTypeSelect      FieldType = "select"
	FieldTypeMultiSelect FieldType = "multiselect"
)

type SelectOption struct {
	Label string `json:"label" bson:"label"`
	Value string `json:"value" bson:"value"`
}

type Field struct {
	Name       string         `json:"name" bson:"name"`
	Label      string         `json:"label" bson:"label"`
	Type       FieldType      `json:"type" bson:"type"`
	Filterable bool           `json:"filterable" bson:"filterable"`
	Sortable   bool           `json:"sortable" bson:"sortable"`
	Options    []SelectOption `json:"options,omitempty" bson:"options,omitempty"` // For Select/MultiSelect
}

// Module declares one searchable collection and its field descriptors.
type Module struct {
	Name   string  `json:"name" bson:"name"` // Unique identifier (e.g. "orders")
	Label  string  `json:"label" bson:"label"`
	Fields []Field `json:"fields" bson:"fields"`
}

// Field returns the descriptor for a named field, if declared.
func (m Module) Field(name string) (Field, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// TextFields lists the text-typed fields free-text search fans out over.
func (m Module) TextFields() []Field {
	var out []Field
	for _, f := range m.Fields {
		if f.Type == FieldTypeText {
			out = append(out, f)
		}
	}
	return out
}
