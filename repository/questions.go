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

type QuestionsRepo struct {
	MongoCollection *mongo.Collection
}

func GetQuestionsRepo(db *mongo.Database, collectionName string) *QuestionsRepo {
	return &QuestionsRepo{MongoCollection: db.Collection(collectionName)}
}

var (
	attachedCond = bson.M{"occurrence_id": bson.M{"$nin": bson.A{nil, ""}}}
	backlogCond  = bson.M{"occurrence_id": bson.M{"$in": bson.A{nil, ""}}}
)

// activeFilter scopes a single-question lookup to the owner and excludes
// soft-deleted rows. Extra conditions are merged in.
func activeFilter(userID, questionID string, conds ...bson.M) bson.M {
	filter := bson.M{
		"_id":        questionID,
		"user_id":    userID,
		"deleted_at": bson.M{"$exists": false},
	}
	for _, c := range conds {
		for k, v := range c {
			filter[k] = v
		}
	}
	return filter
}

func (r *QuestionsRepo) CreateQuestion(ctx context.Context, q *model.Question) error {
	timer := utils.TrackDBOperation("insert", "questions")
	defer timer.ObserveDuration()

	if q.UserID == "" {
		utils.TrackError("database", "missing_user_id")
		return errors.New("user ID is required")
	}
	if _, err := r.MongoCollection.InsertOne(ctx, q); err != nil {
		utils.TrackError("database", "question_creation_failed")
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}

func (r *QuestionsRepo) GetActive(ctx context.Context, userID, questionID string) (*model.Question, error) {
	timer := utils.TrackDBOperation("find", "questions")
	defer timer.ObserveDuration()

	var q model.Question
	err := r.MongoCollection.FindOne(ctx, activeFilter(userID, questionID)).Decode(&q)
	if errors.Is(err, mongo.ErrNoDocuments) {
		utils.TrackError("database", "question_not_found")
		return nil, apperr.NotFound("get question", "question not found")
	}
	if err != nil {
		utils.TrackError("database", "question_lookup_failed")
		return nil, fmt.Errorf("find question: %w", err)
	}
	return &q, nil
}

func (r *QuestionsRepo) FindActive(ctx context.Context, f model.QuestionFilter) ([]*model.Question, error) {
	timer := utils.TrackDBOperation("find", "questions")
	defer timer.ObserveDuration()

	filter := bson.M{
		"user_id":    f.UserID,
		"deleted_at": bson.M{"$exists": false},
	}
	if len(f.IDs) > 0 {
		filter["_id"] = bson.M{"$in": f.IDs}
	}
	if len(f.OccurrenceIDs) > 0 {
		filter["occurrence_id"] = bson.M{"$in": f.OccurrenceIDs}
	} else if f.BacklogOnly {
		filter["occurrence_id"] = backlogCond["occurrence_id"]
	}
	if f.TaskID != "" {
		filter["task_id"] = f.TaskID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Topic != "" {
		filter["topic"] = f.Topic
	}
	if f.Difficulty != "" {
		filter["difficulty"] = f.Difficulty
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	if f.DueBefore != nil {
		filter["next_review_at"] = bson.M{"$lte": *f.DueBefore}
		opts.SetSort(bson.D{{Key: "next_review_at", Value: 1}, {Key: "created_at", Value: 1}})
	}

	cursor, err := r.MongoCollection.Find(ctx, filter, opts)
	if err != nil {
		utils.TrackError("database", "question_fetch_failed")
		return nil, fmt.Errorf("find questions: %w", err)
	}
	defer cursor.Close(ctx)

	questions := []*model.Question{}
	if err = cursor.All(ctx, &questions); err != nil {
		utils.TrackError("database", "question_decode_failed")
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return questions, nil
}

func (r *QuestionsRepo) MarkSolved(ctx context.Context, userID, questionID string, at time.Time) (*model.Question, error) {
	update := bson.M{"$set": bson.M{
		"status":     model.QuestionSolved,
		"solved_at":  at,
		"updated_at": at,
	}}
	return r.transition(ctx, "solve question", "question is already solved",
		activeFilter(userID, questionID, bson.M{"status": model.QuestionPending}), update)
}

func (r *QuestionsRepo) MarkPending(ctx context.Context, userID, questionID string, at time.Time) (*model.Question, error) {
	update := bson.M{
		"$set": bson.M{
			"status":       model.QuestionPending,
			"review_count": 0,
			"updated_at":   at,
		},
		"$unset": bson.M{
			"solved_at":        "",
			"next_review_at":   "",
			"last_reviewed_at": "",
			"revisions":        "",
		},
	}
	return r.transition(ctx, "reset question", "only solved questions can be reset",
		activeFilter(userID, questionID, bson.M{"status": model.QuestionSolved}), update)
}

func (r *QuestionsRepo) ScheduleFirstReview(ctx context.Context, userID, questionID string, next time.Time) (bool, error) {
	timer := utils.TrackDBOperation("update", "questions")
	defer timer.ObserveDuration()

	filter := activeFilter(userID, questionID, bson.M{
		"status":         model.QuestionSolved,
		"review_count":   0,
		"next_review_at": bson.M{"$exists": false},
	})
	result, err := r.MongoCollection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"next_review_at": next}})
	if err != nil {
		utils.TrackError("database", "review_schedule_failed")
		return false, fmt.Errorf("schedule first review: %w", err)
	}
	return result.MatchedCount > 0, nil
}

func (r *QuestionsRepo) RecordReview(ctx context.Context, userID, questionID string, expectedCount int, at, next time.Time) (*model.Question, error) {
	timer := utils.TrackDBOperation("update", "questions")
	defer timer.ObserveDuration()

	filter := activeFilter(userID, questionID, bson.M{
		"status":       model.QuestionSolved,
		"review_count": expectedCount,
	})
	update := bson.M{
		"$inc": bson.M{"review_count": 1},
		"$set": bson.M{
			"last_reviewed_at": at,
			"next_review_at":   next,
			"updated_at":       at,
		},
		"$push": bson.M{"revisions": model.Revision{ReviewedAt: at, ReviewNumber: expectedCount + 1}},
	}

	var q model.Question
	err := r.MongoCollection.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&q)
	if err == nil {
		return &q, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		utils.TrackError("database", "review_record_failed")
		return nil, fmt.Errorf("record review: %w", err)
	}

	current, lerr := r.GetActive(ctx, userID, questionID)
	if lerr != nil {
		return nil, lerr
	}
	if current.Status != model.QuestionSolved {
		return nil, apperr.InvalidState("review question", "only solved questions can be reviewed")
	}
	return nil, apperr.Conflict("review question", fmt.Errorf("review count moved from %d to %d", expectedCount, current.ReviewCount))
}

func (r *QuestionsRepo) Attach(ctx context.Context, userID, questionID string, occ *model.Occurrence, at time.Time) (*model.Question, error) {
	update := bson.M{"$set": bson.M{
		"occurrence_id": occ.ID,
		"task_id":       occ.TaskID,
		"category":      occ.Category,
		"updated_at":    at,
	}}
	return r.transition(ctx, "move question", "question is already attached",
		activeFilter(userID, questionID, backlogCond), update)
}

func (r *QuestionsRepo) Detach(ctx context.Context, userID, questionID string, at time.Time) (*model.Question, error) {
	update := bson.M{
		"$set":   bson.M{"updated_at": at},
		"$unset": bson.M{"occurrence_id": "", "task_id": "", "category": ""},
	}
	return r.transition(ctx, "move question to backlog", "question is already in the backlog",
		activeFilter(userID, questionID, attachedCond), update)
}

func (r *QuestionsRepo) SoftDelete(ctx context.Context, userID, questionID string, at time.Time) (*model.Question, error) {
	update := bson.M{"$set": bson.M{"deleted_at": at, "updated_at": at}}
	return r.transition(ctx, "delete question", "", activeFilter(userID, questionID), update)
}

func (r *QuestionsRepo) SoftDeleteByTask(ctx context.Context, userID, taskID string, at time.Time) (int64, error) {
	timer := utils.TrackDBOperation("update", "questions")
	defer timer.ObserveDuration()

	filter := bson.M{
		"user_id":    userID,
		"task_id":    taskID,
		"deleted_at": bson.M{"$exists": false},
	}
	result, err := r.MongoCollection.UpdateMany(ctx, filter,
		bson.M{"$set": bson.M{"deleted_at": at, "updated_at": at}})
	if err != nil {
		utils.TrackError("database", "question_deletion_failed")
		return 0, fmt.Errorf("delete task questions: %w", err)
	}
	return result.ModifiedCount, nil
}

func (r *QuestionsRepo) UpdateContent(ctx context.Context, userID, questionID string, patch model.QuestionPatch, at time.Time) (*model.Question, error) {
	set := bson.M{"updated_at": at}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Link != nil {
		set["link"] = *patch.Link
	}
	if patch.Topic != nil {
		set["topic"] = *patch.Topic
	}
	if patch.Difficulty != nil {
		set["difficulty"] = *patch.Difficulty
	}
	if patch.Notes != nil {
		set["notes"] = *patch.Notes
	}
	if patch.Tags != nil {
		set["tags"] = patch.Tags
	}
	return r.updateAfter(ctx, "update question", userID, questionID, bson.M{"$set": set})
}

func (r *QuestionsRepo) SetStarred(ctx context.Context, userID, questionID string, starred bool, at time.Time) (*model.Question, error) {
	update := bson.M{"$set": bson.M{"starred": starred, "updated_at": at}}
	return r.updateAfter(ctx, "star question", userID, questionID, update)
}

// transition applies a conditional update and returns the row as it was.
// When nothing matched, a follow-up lookup tells a missing question apart
// from one in the wrong state.
func (r *QuestionsRepo) transition(ctx context.Context, op, stateMsg string, filter, update bson.M) (*model.Question, error) {
	timer := utils.TrackDBOperation("update", "questions")
	defer timer.ObserveDuration()

	var before model.Question
	err := r.MongoCollection.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.Before),
	).Decode(&before)
	if err == nil {
		return &before, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		utils.TrackError("database", "question_update_failed")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	userID, _ := filter["user_id"].(string)
	questionID, _ := filter["_id"].(string)
	if _, lerr := r.GetActive(ctx, userID, questionID); lerr != nil {
		return nil, lerr
	}
	utils.TrackError("database", "question_invalid_state")
	return nil, apperr.InvalidState(op, stateMsg)
}

func (r *QuestionsRepo) updateAfter(ctx context.Context, op, userID, questionID string, update bson.M) (*model.Question, error) {
	timer := utils.TrackDBOperation("update", "questions")
	defer timer.ObserveDuration()

	var q model.Question
	err := r.MongoCollection.FindOneAndUpdate(ctx, activeFilter(userID, questionID), update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&q)
	if errors.Is(err, mongo.ErrNoDocuments) {
		utils.TrackError("database", "question_not_found")
		return nil, apperr.NotFound(op, "question not found")
	}
	if err != nil {
		utils.TrackError("database", "question_update_failed")
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &q, nil
}
