package schema

import (
	"fmt"
)

// Registry maps module names to their field descriptor tables. It is built
// once at startup and read-only afterwards; unknown module/field lookups are
// a caller error, never a silent no-op.
type Registry struct {
	modules map[string]Module
	ordered []string
}

// NewRegistry builds and validates the portal's module catalogue.
func NewRegistry() (*Registry, error) {
	r := &Registry{modules: make(map[string]Module)}
	for _, m := range builtinModules() {
		if err := r.register(m); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) register(m Module) error {
	if m.Name == "" {
		return fmt.Errorf("module with empty name")
	}
	if _, dup := r.modules[m.Name]; dup {
		return fmt.Errorf("duplicate module %q", m.Name)
	}
	seen := make(map[string]bool, len(m.Fields))
	for _, f := range m.Fields {
		if f.Name == "" {
			return fmt.Errorf("module %q: field with empty name", m.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("module %q: duplicate field %q", m.Name, f.Name)
		}
		seen[f.Name] = true
		switch f.Type {
		case FieldTypeText, FieldTypeNumber, FieldTypeDate, FieldTypeBoolean:
		case FieldTypeSelect, FieldTypeMultiSelect:
			if len(f.Options) == 0 {
				return fmt.Errorf("module %q: select field %q has no options", m.Name, f.Name)
			}
		default:
			return fmt.Errorf("module %q: field %q has unknown type %q", m.Name, f.Name, f.Type)
		}
	}
	r.modules[m.Name] = m
	r.ordered = append(r.ordered, m.Name)
	return nil
}

// Module returns the descriptor table for a module name.
func (r *Registry) Module(name string) (Module, bool) {
	m, ok := r.modules[name]
	return m, ok
}

// Modules returns all registered modules in registration order.
func (r *Registry) Modules() []Module {
	out := make([]Module, 0, len(r.ordered))
	for _, name := range r.ordered {
		out = append(out, r.modules[name])
	}
	return out
}

func statusOptions(values ...string) []SelectOption {
	opts := make([]SelectOption, 0, len(values))
	for _, v := range values {
		opts = append(opts, SelectOption{Label: v, Value: v})
	}
	return opts
}

func builtinModules() []Module {
	return []Module{
		{
			Name:  "sales_transactions",
			Label: "Sales Transactions",
			Fields: []Field{
				{Name: "dealer", Label: "Dealer", Type: FieldTypeText, Filterable: true, Sortable: true},
				{Name: "area", Label: "Area", Type: FieldTypeText, Filterable: true, Sortable: true},
				{Name: "sku", Label: "SKU", Type: FieldTypeText, Filterable: true, Sortable: true},
				{Name: "cases", Label: "Cases", Type: FieldTypeNumber, Filterable: true, Sortable: true},
				{Name: "rate", Label: "Rate", Type: FieldTypeNumber, Filterable: true, Sortable: true},
				{Name: "amount", Label: "Amount", Type: FieldTypeNumber, Filterable: true, Sortable: true},
				{Name: "transaction_date", Label: "Transaction Date", Type: FieldTypeDate, Filterable: true, Sortable: true},
				{Name: "payment_status", Label: "Payment Status", Type: FieldTypeSelect, Filterable: true, Sortable: true,
					Options: statusOptions("paid", "partial", "unpaid")},
				{Name: "notes", Label: "Notes", Type: FieldTypeText, Filterable: true},
			},
		},
		{
			Name:  "orders",
			Label: "Orders",
			Fields: []Field{
				{Name: "client", Label: "Client", Type: FieldTypeText, Filterable: true, Sortable: true},
				{Name: "area", Label: "Area", Type: FieldTypeText, Filterable: true, Sortable: true},
				{Name: "sku", Label: "SKU", Type: FieldTypeText, Filterable: true, Sortable: true},
				{Name: "number_of_cases", Label: "Number of Cases", Type: FieldTypeNumber, Filterable: true, Sortable: true},
				{Name: "tentative_delivery_date", Label: "Tentative Delivery Date", Type: FieldTypeDate, Filterable: true, Sortable: true},
				{Name: "status", Label: "Status", Type: FieldTypeSelect, Filterable: true, Sortable: true,
					Options: statusOptions("pending", "in_production", "dispatched", "delivered", "archived")},
			},
		},
		{
			Name:  "customers",
			Label: "Customers",
			Fields: []Field{
				{Name: "name", Label: "Name", Type: FieldTypeText, Filterable: true, Sortable: true},
				{Name: "area", Label: "Area", Type: FieldTypeText, Filterable: true, Sortable: true},
				{Name: "phone", Label: "Phone", Type: FieldTypeText, Filterable: true},
				{Name: "email", Label: "Email", Type: FieldTypeText, Filterable: true},
				{Name: "outstanding_balance", Label: "Outstanding Balance", Type: FieldTypeNumber, Filterable: true, Sortable: true},
				{Name: "active", Label: "Active", Type: FieldTypeBoolean, Filterable: true},
			},
		},
		{
			Name:  "label_purchases",
			Label: "Label Purchases",
			Fields: []Field{
				{Name: "vendor", Label: "Vendor", Type: FieldTypeText, Filterable: true, Sortable: true},
				{Name: "label_type", Label: "Label Type", Type: FieldTypeText, Filterable: true, Sortable: true},
				{Name: "quantity", Label: "Quantity", Type: FieldTypeNumber, Filterable: true, Sortable: true},
				{Name: "rate", Label: "Rate", Type: FieldTypeNumber, Filterable: true, Sortable: true},
				{Name: "amount", Label: "Amount", Type: FieldTypeNumber, Filterable: true, Sortable: true},
				{Name: "purchase_date", Label: "Purchase Date", Type: FieldTypeDate, Filterable: true, Sortable: true},
				{Name: "payment_status", Label: "Payment Status", Type: FieldTypeSelect, Filterable: true, Sortable: true,
					Options: statusOptions("paid", "unpaid")},
			},
		},
		{
			Name:  "user_management",
			Label: "User Management",
			Fields: []Field{
				{Name: "username", Label: "Username", Type: FieldTypeText, Filterable: true, Sortable: true},
				{Name: "email", Label: "Email", Type: FieldTypeText, Filterable: true, Sortable: true},
				{Name: "role", Label: "Role", Type: FieldTypeSelect, Filterable: true, Sortable: true,
					Options: statusOptions("admin", "manager", "client")},
				{Name: "status", Label: "Status", Type: FieldTypeSelect, Filterable: true, Sortable: true,
					Options: statusOptions("active", "inactive", "pending")},
				{Name: "last_login", Label: "Last Login", Type: FieldTypeDate, Filterable: true, Sortable: true},
			},
		},
	}
}
