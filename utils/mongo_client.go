package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type MongoOptions struct {
	URI             string
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
	RetryWrites     bool
}

// ConnectMongo opens a client and verifies it with a ping.
func ConnectMongo(ctx context.Context, o MongoOptions) (*mongo.Client, error) {
	if o.URI == "" {
		return nil, errors.New("MongoDB URI is not set")
	}

	clientOptions := options.Client().
		ApplyURI(o.URI).
		SetRetryWrites(o.RetryWrites)
	if o.MaxPoolSize > 0 {
		clientOptions.SetMaxPoolSize(o.MaxPoolSize)
	}
	if o.MinPoolSize > 0 {
		clientOptions.SetMinPoolSize(o.MinPoolSize)
	}
	if o.MaxConnIdleTime > 0 {
		clientOptions.SetMaxConnIdleTime(o.MaxConnIdleTime)
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}
	return client, nil
}
