package main

import (
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/mongo"

	"prepdaily/config"
	"prepdaily/repository"
	"prepdaily/usecase"
	"prepdaily/utils"
)

// app holds the process-wide dependencies shared by every command.
type app struct {
	cfg    *config.Config
	log    *slog.Logger
	client *mongo.Client
	db     *mongo.Database

	tasks     *usecase.TasksService
	daily     *usecase.DailyService
	questions *usecase.QuestionsService
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := cfg.NewLogger()
	slog.SetDefault(log)

	client, err := utils.ConnectMongo(ctx, cfg.MongoOptions())
	if err != nil {
		return nil, err
	}
	db := client.Database(cfg.Database.DatabaseName)
	log.Info("connected to MongoDB", "database", cfg.Database.DatabaseName)

	taskRepo := repository.GetTasksRepo(db, cfg.Database.TasksCollection)
	occRepo := repository.GetOccurrencesRepo(db, cfg.Database.OccurrencesCollection)
	questionRepo := repository.GetQuestionsRepo(db, cfg.Database.QuestionsCollection)

	daily := usecase.NewDailyService(taskRepo, occRepo, questionRepo, usecase.DailyOptions{
		MaxRangeDays: cfg.Engine.MaxRangeDays,
		Logger:       log,
	})
	ledger := usecase.NewCounterLedger(occRepo, log)
	reviews := usecase.NewReviewScheduler(questionRepo, cfg.Engine.ReviewIntervals, nil, log)

	return &app{
		cfg:       cfg,
		log:       log,
		client:    client,
		db:        db,
		daily:     daily,
		questions: usecase.NewQuestionsService(questionRepo, occRepo, ledger, reviews, nil, log),
		tasks:     usecase.NewTasksService(taskRepo, occRepo, questionRepo, daily, nil, log),
	}, nil
}

func (a *app) collections() repository.Collections {
	return repository.Collections{
		Tasks:       a.cfg.Database.TasksCollection,
		Occurrences: a.cfg.Database.OccurrencesCollection,
		Questions:   a.cfg.Database.QuestionsCollection,
	}
}

func (a *app) Close(ctx context.Context) {
	if err := a.client.Disconnect(ctx); err != nil {
		a.log.Warn("disconnect MongoDB", "error", err)
	}
}
