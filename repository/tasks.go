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

type TasksRepo struct {
	MongoCollection *mongo.Collection
}

func GetTasksRepo(db *mongo.Database, collectionName string) *TasksRepo {
	return &TasksRepo{MongoCollection: db.Collection(collectionName)}
}

func (r *TasksRepo) CreateTask(ctx context.Context, task *model.Task) error {
	timer := utils.TrackDBOperation("insert", "tasks")
	defer timer.ObserveDuration()

	if task.UserID == "" {
		utils.TrackError("database", "missing_user_id")
		return errors.New("user ID is required")
	}

	if _, err := r.MongoCollection.InsertOne(ctx, task); err != nil {
		utils.TrackError("database", "task_creation_failed")
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *TasksRepo) GetTask(ctx context.Context, userID, taskID string) (*model.Task, error) {
	timer := utils.TrackDBOperation("find", "tasks")
	defer timer.ObserveDuration()

	var task model.Task
	err := r.MongoCollection.FindOne(ctx, bson.M{"_id": taskID, "user_id": userID}).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		utils.TrackError("database", "task_not_found")
		return nil, apperr.NotFound("get task", "task not found")
	}
	if err != nil {
		utils.TrackError("database", "task_lookup_failed")
		return nil, fmt.Errorf("find task: %w", err)
	}
	return &task, nil
}

func (r *TasksRepo) ListTasks(ctx context.Context, userID string) ([]*model.Task, error) {
	timer := utils.TrackDBOperation("find", "tasks")
	defer timer.ObserveDuration()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, bson.M{"user_id": userID}, opts)
}

func (r *TasksRepo) FindRecurringCandidates(ctx context.Context, userID string, dayStart, dayEnd time.Time) ([]*model.Task, error) {
	timer := utils.TrackDBOperation("find", "tasks")
	defer timer.ObserveDuration()

	filter := bson.M{
		"user_id":               userID,
		"status":                model.TaskActive,
		"is_recurring":          true,
		"recurrence.start_date": bson.M{"$lt": dayEnd},
		"$or": bson.A{
			bson.M{"end_date": bson.M{"$exists": false}},
			bson.M{"end_date": nil},
			bson.M{"end_date": bson.M{"$gte": dayStart}},
		},
	}
	return r.find(ctx, filter, nil)
}

func (r *TasksRepo) UpdateTask(ctx context.Context, userID, taskID string, patch model.TaskPatch) (*model.Task, error) {
	timer := utils.TrackDBOperation("update", "tasks")
	defer timer.ObserveDuration()

	set := bson.M{"updated_at": time.Now()}
	unset := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.TargetCount != nil {
		set["target_count"] = *patch.TargetCount
	}
	if patch.Recurrence != nil {
		set["recurrence"] = patch.Recurrence
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.EndDate != nil {
		set["end_date"] = *patch.EndDate
	} else if patch.ClearEnd {
		unset["end_date"] = ""
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	var task model.Task
	err := r.MongoCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": taskID, "user_id": userID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		utils.TrackError("database", "task_not_found")
		return nil, apperr.NotFound("update task", "task not found")
	}
	if err != nil {
		utils.TrackError("database", "task_update_failed")
		return nil, fmt.Errorf("update task: %w", err)
	}
	return &task, nil
}

func (r *TasksRepo) DeleteTask(ctx context.Context, userID, taskID string) error {
	timer := utils.TrackDBOperation("delete", "tasks")
	defer timer.ObserveDuration()

	result, err := r.MongoCollection.DeleteOne(ctx, bson.M{"_id": taskID, "user_id": userID})
	if err != nil {
		utils.TrackError("database", "task_deletion_failed")
		return fmt.Errorf("delete task: %w", err)
	}
	if result.DeletedCount == 0 {
		utils.TrackError("database", "task_not_found")
		return apperr.NotFound("delete task", "task not found")
	}
	return nil
}

func (r *TasksRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Task, error) {
	var findOpts []*options.FindOptions
	if opts != nil {
		findOpts = append(findOpts, opts)
	}
	cursor, err := r.MongoCollection.Find(ctx, filter, findOpts...)
	if err != nil {
		utils.TrackError("database", "task_fetch_failed")
		return nil, fmt.Errorf("find tasks: %w", err)
	}
	defer cursor.Close(ctx)

	tasks := []*model.Task{}
	if err = cursor.All(ctx, &tasks); err != nil {
		utils.TrackError("database", "task_decode_failed")
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	return tasks, nil
}
