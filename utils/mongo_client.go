package utils

import (
	"context"
	"fmt"
	"time"

	"quicknotes/config"

	"github.com/avast/retry-go/v4"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewMongoClient connects and pings until the server answers or the retries
// are exhausted.
func NewMongoClient(ctx context.Context, cfg config.DatabaseConfig) (*mongo.Client, error) {
	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetMaxConnIdleTime(cfg.MaxConnIdleTime).
		SetRetryWrites(cfg.RetryWrites).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetPoolMonitor(MongoPoolMonitor())

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	attempts := cfg.ConnectRetries
	if attempts == 0 {
		attempts = 1
	}

	if err := retry.Do(
		func() error { return client.Ping(ctx, nil) },
		retry.Context(ctx),
		retry.Delay(300*time.Millisecond),
		retry.Attempts(attempts),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			log.WithFields(log.Fields{
				"attempt": attempt,
				"error":   err,
			}).Warn("failed ping to mongo")
		}),
	); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return client, nil
}
