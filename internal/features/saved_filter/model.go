package saved_filter

import (
	"time"

	"go-bizops/internal/features/search"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SavedFilter is a named filter/sort preset for one module. Shared filters
// are read-visible to every user of the module; mutation stays with the
// creator.
type SavedFilter struct {
	ID          primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Name        string              `json:"name" bson:"name"`
	Description string              `json:"description,omitempty" bson:"description,omitempty"`
	Module      string              `json:"module" bson:"module"`
	Filter      search.SearchFilter `json:"filter" bson:"filter"`
	IsShared    bool                `json:"is_shared" bson:"is_shared"`
	IsDefault   bool                `json:"is_default" bson:"is_default"`
	CreatedBy   string              `json:"created_by" bson:"created_by"`
	Tags        []string            `json:"tags" bson:"tags"`
	CreatedAt   time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at" bson:"updated_at"`
}

// SaveOptions carries the optional attributes of a new filter.
type SaveOptions struct {
	Description string   `json:"description"`
	IsShared    bool     `json:"is_shared"`
	IsDefault   bool     `json:"is_default"`
	Tags        []string `json:"tags"`
}

// UpdateFields is a partial update; nil pointers leave fields untouched.
type UpdateFields struct {
	Name        *string              `json:"name,omitempty"`
	Description *string              `json:"description,omitempty"`
	Filter      *search.SearchFilter `json:"filter,omitempty"`
	IsShared    *bool                `json:"is_shared,omitempty"`
	IsDefault   *bool                `json:"is_default,omitempty"`
	Tags        *[]string            `json:"tags,omitempty"`
}
