package sync

import (
	"context"

	"go-bizops/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SyncLogRepository interface {
	Create(ctx context.Context, log *SyncLog) error
	Update(ctx context.Context, log *SyncLog) error
	List(ctx context.Context, module string, limit int64) ([]SyncLog, error)
	// LastSuccess returns the most recent successful run for the module, or
	// nil when the module has never synced.
	LastSuccess(ctx context.Context, module string) (*SyncLog, error)
}

type SyncLogRepositoryImpl struct {
	collection *mongo.Collection
}

func NewSyncLogRepository(db *database.MongodbDB) SyncLogRepository {
	return &SyncLogRepositoryImpl{
		collection: db.DB.Collection("sync_logs"),
	}
}

func (r *SyncLogRepositoryImpl) Create(ctx context.Context, log *SyncLog) error {
	if log.ID.IsZero() {
		log.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, log)
	return err
}

func (r *SyncLogRepositoryImpl) Update(ctx context.Context, log *SyncLog) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": log.ID}, log)
	return err
}

func (r *SyncLogRepositoryImpl) List(ctx context.Context, module string, limit int64) ([]SyncLog, error) {
	filter := bson.M{}
	if module != "" {
		filter["module"] = module
	}

	opts := options.Find().
		SetSort(bson.M{"start_time": -1}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []SyncLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *SyncLogRepositoryImpl) LastSuccess(ctx context.Context, module string) (*SyncLog, error) {
	opts := options.FindOne().SetSort(bson.M{"end_time": -1})

	var log SyncLog
	err := r.collection.FindOne(ctx, bson.M{"module": module, "status": "success"}, opts).Decode(&log)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &log, nil
}
