package record

import (
	"context"
	"fmt"
	"time"

	"go-bizops/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RecordRepository is the generic tabular capability the search executor and
// the bulk mutation executor are written against: filter/sort/paginate reads
// plus single-row mutations, keyed by module name and row id. Nothing above
// this interface assumes a particular store.
type RecordRepository interface {
	List(ctx context.Context, moduleName string, filter map[string]any, limit, offset int64, sortBy string, sortOrder int) ([]map[string]any, error)
	Count(ctx context.Context, moduleName string, filter map[string]any) (int64, error)
	Get(ctx context.Context, moduleName, id string) (map[string]any, error)
	Insert(ctx context.Context, moduleName string, data map[string]any) (string, error)
	Update(ctx context.Context, moduleName, id string, fields map[string]any) error
	Delete(ctx context.Context, moduleName, id string) error
}

type RecordRepositoryImpl struct {
	db *mongo.Database
}

func NewRecordRepository(mongodb *database.MongodbDB) RecordRepository {
	return &RecordRepositoryImpl{db: mongodb.DB}
}

func (r *RecordRepositoryImpl) collection(moduleName string) *mongo.Collection {
	return r.db.Collection("module_" + moduleName)
}

func (r *RecordRepositoryImpl) List(ctx context.Context, moduleName string, filter map[string]any, limit, offset int64, sortBy string, sortOrder int) ([]map[string]any, error) {
	query := bson.M(filter)
	if query == nil {
		query = bson.M{}
	}

	opts := options.Find().SetLimit(limit).SetSkip(offset)
	if sortBy != "" {
		opts.SetSort(bson.D{{Key: sortBy, Value: sortOrder}})
	}

	cursor, err := r.collection(moduleName).Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []map[string]any
	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}

	for _, rec := range records {
		flattenID(rec)
	}
	return records, nil
}

func (r *RecordRepositoryImpl) Count(ctx context.Context, moduleName string, filter map[string]any) (int64, error) {
	query := bson.M(filter)
	if query == nil {
		query = bson.M{}
	}
	return r.collection(moduleName).CountDocuments(ctx, query)
}

func (r *RecordRepositoryImpl) Get(ctx context.Context, moduleName, id string) (map[string]any, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid record id %q: %w", id, err)
	}

	var rec map[string]any
	if err := r.collection(moduleName).FindOne(ctx, bson.M{"_id": objID}).Decode(&rec); err != nil {
		return nil, err
	}
	flattenID(rec)
	return rec, nil
}

func (r *RecordRepositoryImpl) Insert(ctx context.Context, moduleName string, data map[string]any) (string, error) {
	id := primitive.NewObjectID()
	doc := bson.M{"_id": id, "created_at": time.Now(), "updated_at": time.Now()}
	for k, v := range data {
		if k == "_id" || k == "id" {
			continue
		}
		doc[k] = v
	}

	if _, err := r.collection(moduleName).InsertOne(ctx, doc); err != nil {
		return "", err
	}
	return id.Hex(), nil
}

func (r *RecordRepositoryImpl) Update(ctx context.Context, moduleName, id string, fields map[string]any) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid record id %q: %w", id, err)
	}

	set := bson.M{"updated_at": time.Now()}
	for k, v := range fields {
		if k == "_id" || k == "id" {
			continue
		}
		set[k] = v
	}

	res, err := r.collection(moduleName).UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("record %s not found in %s", id, moduleName)
	}
	return nil
}

func (r *RecordRepositoryImpl) Delete(ctx context.Context, moduleName, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid record id %q: %w", id, err)
	}

	res, err := r.collection(moduleName).DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("record %s not found in %s", id, moduleName)
	}
	return nil
}

// flattenID rewrites the Mongo _id into a plain hex "id" key so callers and
// exports see store-neutral records.
func flattenID(rec map[string]any) {
	if oid, ok := rec["_id"].(primitive.ObjectID); ok {
		rec["id"] = oid.Hex()
		delete(rec, "_id")
	}
}
