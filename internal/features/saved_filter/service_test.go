package saved_filter

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"go-bizops/internal/common/apperr"
	"go-bizops/internal/features/search"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"go-bizops/internal/features/schema"
)

type memFilterRepo struct {
	filters map[string]*SavedFilter
}

func newMemFilterRepo() *memFilterRepo {
	return &memFilterRepo{filters: make(map[string]*SavedFilter)}
}

func (r *memFilterRepo) Create(ctx context.Context, filter *SavedFilter) error {
	if filter.ID.IsZero() {
		filter.ID = primitive.NewObjectID()
	}
	filter.CreatedAt = time.Now()
	filter.UpdatedAt = time.Now()
	cp := *filter
	r.filters[filter.ID.Hex()] = &cp
	return nil
}

func (r *memFilterRepo) Get(ctx context.Context, id string) (*SavedFilter, error) {
	f, ok := r.filters[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *f
	return &cp, nil
}

func (r *memFilterRepo) Update(ctx context.Context, id string, set bson.M) (*SavedFilter, error) {
	f, ok := r.filters[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	for k, v := range set {
		switch k {
		case "name":
			f.Name = v.(string)
		case "description":
			f.Description = v.(string)
		case "filter":
			f.Filter = v.(search.SearchFilter)
		case "is_shared":
			f.IsShared = v.(bool)
		case "is_default":
			f.IsDefault = v.(bool)
		case "tags":
			f.Tags = v.([]string)
		}
	}
	f.UpdatedAt = time.Now()
	cp := *f
	return &cp, nil
}

func (r *memFilterRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.filters[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(r.filters, id)
	return nil
}

func (r *memFilterRepo) FindVisible(ctx context.Context, module, userID string, onlyDefault bool) ([]SavedFilter, error) {
	var out []SavedFilter
	for _, f := range r.filters {
		if module != "" && f.Module != module {
			continue
		}
		if !f.IsShared && f.CreatedBy != userID {
			continue
		}
		if onlyDefault && !f.IsDefault {
			continue
		}
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memFilterRepo) ClearDefault(ctx context.Context, module, userID, keepID string) error {
	for id, f := range r.filters {
		if f.Module != module || !f.IsDefault || id == keepID {
			continue
		}
		if f.CreatedBy == userID || f.IsShared {
			f.IsDefault = false
		}
	}
	return nil
}

func newTestService(t *testing.T) (SavedFilterService, *memFilterRepo) {
	t.Helper()
	reg, err := schema.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	repo := newMemFilterRepo()
	return NewSavedFilterService(repo, reg, zap.NewNop()), repo
}

func pendingFilter() search.SearchFilter {
	return search.SearchFilter{
		Module: "orders",
		Logic:  "AND",
		Conditions: []search.FilterCondition{
			{Field: "status", Operator: search.OpEquals, Value: "pending"},
		},
	}
}

func TestSaveRejectsBlankName(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Save(context.Background(), "   ", "orders", pendingFilter(), SaveOptions{}, "u1")
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error %v is not a ValidationError", err)
	}
}

func TestSaveRejectsAnonymousUser(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Save(context.Background(), "Pending", "orders", pendingFilter(), SaveOptions{}, "")
	var ae *apperr.AuthorizationError
	if !errors.As(err, &ae) {
		t.Fatalf("error %v is not an AuthorizationError", err)
	}
}

func TestSaveRejectsIllegalCondition(t *testing.T) {
	svc, _ := newTestService(t)

	filter := search.SearchFilter{Logic: "AND", Conditions: []search.FilterCondition{
		{Field: "client", Operator: search.OpGreaterThan, Value: "A"},
	}}
	_, err := svc.Save(context.Background(), "Bad", "orders", filter, SaveOptions{}, "u1")
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestDefaultFilterIsSingletonPerModule(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	first, err := svc.Save(ctx, "First", "orders", pendingFilter(), SaveOptions{IsDefault: true}, "u1")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	second, err := svc.Save(ctx, "Second", "orders", pendingFilter(), SaveOptions{IsDefault: true}, "u1")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, _ := repo.Get(ctx, first.ID.Hex())
	if got.IsDefault {
		t.Error("first filter is still default after a second default was saved")
	}

	def, err := svc.GetDefault(ctx, "orders", "u1")
	if err != nil {
		t.Fatalf("GetDefault() error = %v", err)
	}
	if def == nil || def.ID != second.ID {
		t.Errorf("GetDefault() = %+v, want the second filter", def)
	}
}

func TestSetDefaultViaUpdateClearsOthers(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	first, _ := svc.Save(ctx, "First", "orders", pendingFilter(), SaveOptions{IsDefault: true}, "u1")
	second, _ := svc.Save(ctx, "Second", "orders", pendingFilter(), SaveOptions{}, "u1")

	isDefault := true
	updated, err := svc.Update(ctx, second.ID.Hex(), UpdateFields{IsDefault: &isDefault}, "u1")
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !updated.IsDefault {
		t.Error("updated filter is not default")
	}

	got, _ := repo.Get(ctx, first.ID.Hex())
	if got.IsDefault {
		t.Error("previous default not cleared by update")
	}
}

func TestUpdateRequiresOwnership(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	saved, _ := svc.Save(ctx, "Mine", "orders", pendingFilter(), SaveOptions{IsShared: true}, "u1")

	name := "Hijacked"
	_, err := svc.Update(ctx, saved.ID.Hex(), UpdateFields{Name: &name}, "u2")
	var ae *apperr.AuthorizationError
	if !errors.As(err, &ae) {
		t.Fatalf("error %v is not an AuthorizationError", err)
	}
}

func TestDeleteRequiresOwnership(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	saved, _ := svc.Save(ctx, "Mine", "orders", pendingFilter(), SaveOptions{IsShared: true}, "u1")

	if err := svc.Delete(ctx, saved.ID.Hex(), "u2"); err == nil {
		t.Fatal("expected authorization error")
	}
	if _, err := repo.Get(ctx, saved.ID.Hex()); err != nil {
		t.Error("filter was deleted despite failed authorization")
	}

	if err := svc.Delete(ctx, saved.ID.Hex(), "u1"); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
}

func TestSharedFiltersVisibleToOthers(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	svc.Save(ctx, "Shared", "orders", pendingFilter(), SaveOptions{IsShared: true}, "u1")
	svc.Save(ctx, "Private", "orders", pendingFilter(), SaveOptions{}, "u1")

	visible, err := svc.List(ctx, "orders", "u2")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(visible) != 1 || visible[0].Name != "Shared" {
		t.Errorf("List() for other user = %+v, want only the shared filter", visible)
	}
}

func TestDuplicateResetsFlagsAndNamesCopy(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	original, _ := svc.Save(ctx, "Pending Orders", "orders", pendingFilter(),
		SaveOptions{Description: "my own words", IsShared: true, IsDefault: true,
			Tags: []string{"ops"}}, "u1")

	copyFilter, err := svc.Duplicate(ctx, original.ID.Hex(), "", "u2")
	if err != nil {
		t.Fatalf("Duplicate() error = %v", err)
	}

	if copyFilter.Name != "Copy of Pending Orders" {
		t.Errorf("name = %q, want %q", copyFilter.Name, "Copy of Pending Orders")
	}
	// The copy's description always points at the source, never the
	// original's own description.
	if copyFilter.Description != "Copy of Pending Orders" {
		t.Errorf("description = %q, want %q", copyFilter.Description, "Copy of Pending Orders")
	}
	if copyFilter.IsShared || copyFilter.IsDefault {
		t.Error("duplicate must start private and non-default")
	}
	if copyFilter.CreatedBy != "u2" {
		t.Errorf("created_by = %q, want the duplicating user", copyFilter.CreatedBy)
	}
	if len(copyFilter.Tags) != 1 || copyFilter.Tags[0] != "ops" {
		t.Errorf("tags = %v, want copied tags", copyFilter.Tags)
	}
	if len(copyFilter.Filter.Conditions) != 1 {
		t.Errorf("conditions not copied: %+v", copyFilter.Filter)
	}

	// The condition list is a deep copy: editing the duplicate must leave
	// the original untouched.
	copyFilter.Filter.Conditions[0].Value = "shipped"

	got, _ := svc.Get(ctx, original.ID.Hex())
	if !got.IsShared || !got.IsDefault {
		t.Error("original flags were modified by duplication")
	}
	if got.Description != "my own words" {
		t.Errorf("original description = %q, want it unchanged", got.Description)
	}
	if v := got.Filter.Conditions[0].Value; v != "pending" {
		t.Errorf("original condition value = %v, want %q", v, "pending")
	}
}

func TestGetDefaultNoneConfigured(t *testing.T) {
	svc, _ := newTestService(t)

	def, err := svc.GetDefault(context.Background(), "orders", "u1")
	if err != nil {
		t.Fatalf("GetDefault() error = %v", err)
	}
	if def != nil {
		t.Errorf("GetDefault() = %+v, want nil", def)
	}
}
