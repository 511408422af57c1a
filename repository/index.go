package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collections names the three collections the store uses.
type Collections struct {
	Tasks       string
	Occurrences string
	Questions   string
}

func SetupIndexes(ctx context.Context, db *mongo.Database, names Collections) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tasksIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().
				SetName("user_tasks_date"),
		},
		// Recurring candidates lookup
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "is_recurring", Value: 1},
				{Key: "status", Value: 1},
			},
			Options: options.Index().
				SetName("user_recurring_tasks"),
		},
	}

	occurrencesIndexes := []mongo.IndexModel{
		// One occurrence per task per day
		{
			Keys: bson.D{
				{Key: "task_id", Value: 1},
				{Key: "user_id", Value: 1},
				{Key: "date", Value: 1},
			},
			Options: options.Index().
				SetName("task_user_date_unique").
				SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "date", Value: 1},
			},
			Options: options.Index().
				SetName("user_occurrences_date"),
		},
	}

	questionsIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "occurrence_id", Value: 1},
			},
			Options: options.Index().
				SetName("user_occurrence_questions"),
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "task_id", Value: 1},
			},
			Options: options.Index().
				SetName("user_task_questions"),
		},
		// Due review lookup
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "status", Value: 1},
				{Key: "next_review_at", Value: 1},
			},
			Options: options.Index().
				SetName("user_due_reviews"),
		},
	}

	if _, err := db.Collection(names.Tasks).Indexes().CreateMany(ctx, tasksIndexes); err != nil {
		return fmt.Errorf("failed to create tasks indexes: %w", err)
	}
	if _, err := db.Collection(names.Occurrences).Indexes().CreateMany(ctx, occurrencesIndexes); err != nil {
		return fmt.Errorf("failed to create occurrences indexes: %w", err)
	}
	if _, err := db.Collection(names.Questions).Indexes().CreateMany(ctx, questionsIndexes); err != nil {
		return fmt.Errorf("failed to create questions indexes: %w", err)
	}

	slog.Info("Successfully created all indexes", "database", db.Name())
	return nil
}
