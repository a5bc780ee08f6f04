package saved_filter

import (
	"context"
	"errors"
	"strings"

	"go-bizops/internal/common/apperr"
	"go-bizops/internal/features/schema"
	"go-bizops/internal/features/search"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type SavedFilterService interface {
	List(ctx context.Context, module, userID string) ([]SavedFilter, error)
	Get(ctx context.Context, id string) (*SavedFilter, error)
	// GetDefault returns the default preset visible to the user for a module,
	// or nil when none is configured.
	GetDefault(ctx context.Context, module, userID string) (*SavedFilter, error)
	Save(ctx context.Context, name, module string, filter search.SearchFilter, opts SaveOptions, userID string) (*SavedFilter, error)
	Update(ctx context.Context, id string, fields UpdateFields, userID string) (*SavedFilter, error)
	Delete(ctx context.Context, id, userID string) error
	Duplicate(ctx context.Context, id, newName, userID string) (*SavedFilter, error)
}

type SavedFilterServiceImpl struct {
	FilterRepo SavedFilterRepository
	Registry   *schema.Registry
	Log        *zap.Logger
}

func NewSavedFilterService(filterRepo SavedFilterRepository, registry *schema.Registry, log *zap.Logger) SavedFilterService {
	return &SavedFilterServiceImpl{
		FilterRepo: filterRepo,
		Registry:   registry,
		Log:        log,
	}
}

func (s *SavedFilterServiceImpl) List(ctx context.Context, module, userID string) ([]SavedFilter, error) {
	return s.FilterRepo.FindVisible(ctx, module, userID, false)
}

func (s *SavedFilterServiceImpl) Get(ctx context.Context, id string) (*SavedFilter, error) {
	filter, err := s.FilterRepo.Get(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("saved filter")
	}
	return filter, err
}

func (s *SavedFilterServiceImpl) GetDefault(ctx context.Context, module, userID string) (*SavedFilter, error) {
	defaults, err := s.FilterRepo.FindVisible(ctx, module, userID, true)
	if err != nil {
		return nil, err
	}
	if len(defaults) == 0 {
		return nil, nil
	}
	// More than one can exist after a setDefault race; pick the newest.
	return &defaults[0], nil
}

func (s *SavedFilterServiceImpl) Save(ctx context.Context, name, module string, filter search.SearchFilter, opts SaveOptions, userID string) (*SavedFilter, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperr.Validation("filter name is required")
	}
	if userID == "" {
		return nil, apperr.Authorization("user required to save filters")
	}
	if err := s.validateFilter(module, filter); err != nil {
		return nil, err
	}

	if opts.IsDefault {
		// The store has no uniqueness constraint on defaults; the update
		// path clears the previous one before this insert lands.
		if err := s.FilterRepo.ClearDefault(ctx, module, userID, ""); err != nil {
			return nil, err
		}
	}

	tags := opts.Tags
	if tags == nil {
		tags = []string{}
	}
	saved := &SavedFilter{
		Name:        name,
		Description: opts.Description,
		Module:      module,
		Filter:      filter,
		IsShared:    opts.IsShared,
		IsDefault:   opts.IsDefault,
		CreatedBy:   userID,
		Tags:        tags,
	}
	if err := s.FilterRepo.Create(ctx, saved); err != nil {
		return nil, err
	}

	s.Log.Info("saved filter created",
		zap.String("module", module),
		zap.String("user_id", userID),
		zap.String("name", name))
	return saved, nil
}

func (s *SavedFilterServiceImpl) Update(ctx context.Context, id string, fields UpdateFields, userID string) (*SavedFilter, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.CreatedBy != userID {
		return nil, apperr.Authorization("only the creator can modify a saved filter")
	}

	set := bson.M{}
	if fields.Name != nil {
		if strings.TrimSpace(*fields.Name) == "" {
			return nil, apperr.Validation("filter name is required")
		}
		set["name"] = *fields.Name
	}
	if fields.Description != nil {
		set["description"] = *fields.Description
	}
	if fields.Filter != nil {
		if err := s.validateFilter(existing.Module, *fields.Filter); err != nil {
			return nil, err
		}
		set["filter"] = *fields.Filter
	}
	if fields.IsShared != nil {
		set["is_shared"] = *fields.IsShared
	}
	if fields.IsDefault != nil {
		set["is_default"] = *fields.IsDefault
		if *fields.IsDefault {
			if err := s.FilterRepo.ClearDefault(ctx, existing.Module, userID, id); err != nil {
				return nil, err
			}
		}
	}
	if fields.Tags != nil {
		set["tags"] = *fields.Tags
	}

	return s.FilterRepo.Update(ctx, id, set)
}

func (s *SavedFilterServiceImpl) Delete(ctx context.Context, id, userID string) error {
	// Ownership is checked by a read before the delete; not atomic against
	// a concurrent ownership change.
	filter, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if filter.CreatedBy != userID {
		return apperr.Authorization("only the creator can delete a saved filter")
	}

	return s.FilterRepo.Delete(ctx, id)
}

func (s *SavedFilterServiceImpl) Duplicate(ctx context.Context, id, newName, userID string) (*SavedFilter, error) {
	original, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(newName) == "" {
		newName = "Copy of " + original.Name
	}

	tags := make([]string, len(original.Tags))
	copy(tags, original.Tags)

	// The copy always starts private and non-default regardless of the
	// original's flags, and its description records what it was copied from.
	return s.Save(ctx, newName, original.Module, *original.Filter.Clone(), SaveOptions{
		Description: "Copy of " + original.Name,
		IsShared:    false,
		IsDefault:   false,
		Tags:        tags,
	}, userID)
}

func (s *SavedFilterServiceImpl) validateFilter(module string, filter search.SearchFilter) error {
	mod, ok := s.Registry.Module(module)
	if !ok {
		return apperr.Validation("unknown module %q", module)
	}
	if filter.Logic != "" && filter.Logic != "AND" && filter.Logic != "OR" {
		return apperr.Validation("filter logic must be AND or OR, got %q", filter.Logic)
	}
	for _, c := range filter.Conditions {
		if err := search.ValidateCondition(mod, c); err != nil {
			return err
		}
	}
	return nil
}
