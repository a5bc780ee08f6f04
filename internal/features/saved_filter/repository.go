package saved_filter

import (
	"context"
	"time"

	"go-bizops/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SavedFilterRepository interface {
	Create(ctx context.Context, filter *SavedFilter) error
	Get(ctx context.Context, id string) (*SavedFilter, error)
	Update(ctx context.Context, id string, set bson.M) (*SavedFilter, error)
	Delete(ctx context.Context, id string) error
	// FindVisible returns filters owned by userID plus all shared filters;
	// with an empty userID only shared filters are returned.
	FindVisible(ctx context.Context, module, userID string, onlyDefault bool) ([]SavedFilter, error)
	// ClearDefault unsets is_default on every visible default for the
	// module/owner pair except the one with keepID (pass empty to clear all).
	ClearDefault(ctx context.Context, module, userID, keepID string) error
}

type SavedFilterRepositoryImpl struct {
	collection *mongo.Collection
}

func NewSavedFilterRepository(db *database.MongodbDB) SavedFilterRepository {
	return &SavedFilterRepositoryImpl{
		collection: db.DB.Collection("saved_filters"),
	}
}

func (r *SavedFilterRepositoryImpl) Create(ctx context.Context, filter *SavedFilter) error {
	if filter.ID.IsZero() {
		filter.ID = primitive.NewObjectID()
	}
	filter.CreatedAt = time.Now()
	filter.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, filter)
	return err
}

func (r *SavedFilterRepositoryImpl) Get(ctx context.Context, id string) (*SavedFilter, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var filter SavedFilter
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&filter)
	if err != nil {
		return nil, err
	}

	return &filter, nil
}

func (r *SavedFilterRepositoryImpl) Update(ctx context.Context, id string, set bson.M) (*SavedFilter, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	set["updated_at"] = time.Now()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated SavedFilter
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *SavedFilterRepositoryImpl) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	_, err = r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	return err
}

func (r *SavedFilterRepositoryImpl) FindVisible(ctx context.Context, module, userID string, onlyDefault bool) ([]SavedFilter, error) {
	query := bson.M{}
	if module != "" {
		query["module"] = module
	}
	if userID != "" {
		query["$or"] = []bson.M{
			{"created_by": userID},
			{"is_shared": true},
		}
	} else {
		query["is_shared"] = true
	}
	if onlyDefault {
		query["is_default"] = true
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var filters []SavedFilter
	if err = cursor.All(ctx, &filters); err != nil {
		return nil, err
	}

	return filters, nil
}

func (r *SavedFilterRepositoryImpl) ClearDefault(ctx context.Context, module, userID, keepID string) error {
	query := bson.M{
		"module":     module,
		"created_by": userID,
		"is_default": true,
	}
	if keepID != "" {
		if objID, err := primitive.ObjectIDFromHex(keepID); err == nil {
			query["_id"] = bson.M{"$ne": objID}
		}
	}

	_, err := r.collection.UpdateMany(ctx, query, bson.M{
		"$set": bson.M{"is_default": false, "updated_at": time.Now()},
	})
	return err
}
