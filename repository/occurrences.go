package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"prepdaily/apperr"
	"prepdaily/model"
	"prepdaily/utils"
)

type OccurrencesRepo struct {
	MongoCollection *mongo.Collection
}

func GetOccurrencesRepo(db *mongo.Database, collectionName string) *OccurrencesRepo {
	return &OccurrencesRepo{MongoCollection: db.Collection(collectionName)}
}

func (r *OccurrencesRepo) FindByDay(ctx context.Context, userID string, dayStart, dayEnd time.Time) ([]*model.Occurrence, error) {
	timer := utils.TrackDBOperation("find", "occurrences")
	defer timer.ObserveDuration()

	filter := bson.M{
		"user_id": userID,
		"date":    bson.M{"$gte": dayStart, "$lt": dayEnd},
	}
	cursor, err := r.MongoCollection.Find(ctx, filter)
	if err != nil {
		utils.TrackError("database", "occurrence_fetch_failed")
		return nil, fmt.Errorf("find occurrences: %w", err)
	}
	defer cursor.Close(ctx)

	occurrences := []*model.Occurrence{}
	if err = cursor.All(ctx, &occurrences); err != nil {
		utils.TrackError("database", "occurrence_decode_failed")
		return nil, fmt.Errorf("decode occurrences: %w", err)
	}
	return occurrences, nil
}

func (r *OccurrencesRepo) GetOccurrence(ctx context.Context, userID, occurrenceID string) (*model.Occurrence, error) {
	timer := utils.TrackDBOperation("find", "occurrences")
	defer timer.ObserveDuration()

	return r.findOne(ctx, "get occurrence", bson.M{"_id": occurrenceID, "user_id": userID})
}

func (r *OccurrencesRepo) FindByKey(ctx context.Context, taskID, userID string, day time.Time) (*model.Occurrence, error) {
	timer := utils.TrackDBOperation("find", "occurrences")
	defer timer.ObserveDuration()

	return r.findOne(ctx, "find occurrence", bson.M{"task_id": taskID, "user_id": userID, "date": day})
}

// UpsertOnInsert relies on the unique (task_id, user_id, date) index. Two
// concurrent upserts may both miss the filter; the loser gets a duplicate
// key error, surfaced as a conflict.
func (r *OccurrencesRepo) UpsertOnInsert(ctx context.Context, occ *model.Occurrence) (*model.Occurrence, error) {
	timer := utils.TrackDBOperation("upsert", "occurrences")
	defer timer.ObserveDuration()

	filter := bson.M{"task_id": occ.TaskID, "user_id": occ.UserID, "date": occ.Date}
	update := bson.M{"$setOnInsert": occ}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var stored model.Occurrence
	err := r.MongoCollection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored)
	if mongo.IsDuplicateKeyError(err) {
		return nil, apperr.Conflict("upsert occurrence", err)
	}
	if err != nil {
		utils.TrackError("database", "occurrence_upsert_failed")
		return nil, fmt.Errorf("upsert occurrence: %w", err)
	}
	return &stored, nil
}

func (r *OccurrencesRepo) Increment(ctx context.Context, occurrenceID string, added, solved int) (*model.Occurrence, error) {
	timer := utils.TrackDBOperation("update", "occurrences")
	defer timer.ObserveDuration()

	update := bson.M{
		"$inc": bson.M{"added_count": added, "solved_count": solved},
		"$set": bson.M{"updated_at": time.Now()},
	}
	var occ model.Occurrence
	err := r.MongoCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": occurrenceID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&occ)
	if errors.Is(err, mongo.ErrNoDocuments) {
		utils.TrackError("database", "occurrence_not_found")
		return nil, apperr.NotFound("increment occurrence", "occurrence not found")
	}
	if err != nil {
		utils.TrackError("database", "occurrence_increment_failed")
		return nil, fmt.Errorf("increment occurrence: %w", err)
	}
	return &occ, nil
}

func (r *OccurrencesRepo) SetStatus(ctx context.Context, occurrenceID string, status model.OccurrenceStatus, added, solved int) (bool, error) {
	timer := utils.TrackDBOperation("update", "occurrences")
	defer timer.ObserveDuration()

	filter := bson.M{
		"_id":          occurrenceID,
		"added_count":  added,
		"solved_count": solved,
	}
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}}
	result, err := r.MongoCollection.UpdateOne(ctx, filter, update)
	if err != nil {
		utils.TrackError("database", "occurrence_status_failed")
		return false, fmt.Errorf("set occurrence status: %w", err)
	}
	return result.MatchedCount > 0, nil
}

func (r *OccurrencesRepo) DeleteByTask(ctx context.Context, userID, taskID string) (int64, error) {
	timer := utils.TrackDBOperation("delete", "occurrences")
	defer timer.ObserveDuration()

	result, err := r.MongoCollection.DeleteMany(ctx, bson.M{"task_id": taskID, "user_id": userID})
	if err != nil {
		utils.TrackError("database", "occurrence_deletion_failed")
		return 0, fmt.Errorf("delete occurrences: %w", err)
	}
	return result.DeletedCount, nil
}

func (r *OccurrencesRepo) findOne(ctx context.Context, op string, filter bson.M) (*model.Occurrence, error) {
	var occ model.Occurrence
	err := r.MongoCollection.FindOne(ctx, filter).Decode(&occ)
	if errors.Is(err, mongo.ErrNoDocuments) {
		utils.TrackError("database", "occurrence_not_found")
		return nil, apperr.NotFound(op, "occurrence not found")
	}
	if err != nil {
		utils.TrackError("database", "occurrence_lookup_failed")
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &occ, nil
}
