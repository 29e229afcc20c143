// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package mongodb

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/qolzam/forum/internal/database/interfaces"
	"github.com/qolzam/forum/internal/database/observability"
	"github.com/qolzam/forum/internal/pkg/log"
	"github.com/qolzam/forum/internal/platform/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Client wraps a connected mongo client and the forum database.
type Client struct {
	client                *mongo.Client
	database              *mongo.Database
	forceNonTransactional bool
	metrics               *observability.MetricsCollector
}

// Connect creates a new MongoDB client and verifies the connection.
func Connect(ctx context.Context, cfg config.MongoDBConfig, forceNonTransactional bool) (*Client, error) {
	uri := buildConnectionURI(cfg)

	clientOptions := options.Client().ApplyURI(uri)

	if cfg.MaxPoolSize > 0 {
		clientOptions.SetMaxPoolSize(uint64(cfg.MaxPoolSize))
	}
	if cfg.MinPoolSize > 0 {
		clientOptions.SetMinPoolSize(uint64(cfg.MinPoolSize))
	}
	if cfg.ConnectTimeout > 0 {
		clientOptions.SetConnectTimeout(cfg.ConnectTimeout)
	}
	if cfg.ServerSelectionTimeout > 0 {
		clientOptions.SetServerSelectionTimeout(cfg.ServerSelectionTimeout)
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, interfaces.ErrConnectionFailed.Wrap(fmt.Errorf("failed to connect to MongoDB: %w", err))
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, interfaces.ErrConnectionFailed.Wrap(fmt.Errorf("failed to ping MongoDB: %w", err))
	}

	if forceNonTransactional {
		log.Warn("MongoDB transactions disabled; vote transitions rely on per-document atomic updates and reconciliation")
	}

	return &Client{
		client:                client,
		database:              client.Database(cfg.Database),
		forceNonTransactional: forceNonTransactional,
		metrics:               observability.GetGlobalMetrics(),
	}, nil
}

// buildConnectionURI builds MongoDB connection URI from config. An explicit URI wins.
func buildConnectionURI(cfg config.MongoDBConfig) string {
	if cfg.URI != "" {
		return cfg.URI
	}

	u := url.URL{
		Scheme: "mongodb",
		Host:   cfg.Host + ":" + strconv.Itoa(cfg.Port),
		Path:   "/",
	}
	if cfg.Username != "" && cfg.Password != "" {
		u.User = url.UserPassword(cfg.Username, cfg.Password)
	}

	query := url.Values{}
	if cfg.AuthDatabase != "" {
		query.Set("authSource", cfg.AuthDatabase)
	}
	if cfg.ReplicaSet != "" {
		query.Set("replicaSet", cfg.ReplicaSet)
	}
	if cfg.SSL {
		query.Set("ssl", "true")
	}
	u.RawQuery = query.Encode()

	return u.String()
}

// Database returns the forum database handle.
func (c *Client) Database() *mongo.Database {
	return c.database
}

// Collection returns a handle to the named collection.
func (c *Client) Collection(name string) *mongo.Collection {
	return c.database.Collection(name)
}

// WithTransaction executes fn within a transaction. Repositories must use the ctx passed
// to fn so their operations join the session. Transient errors are retried by the driver.
func (c *Client) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	start := time.Now()

	if c.forceNonTransactional {
		err := fn(ctx)
		c.metrics.ObserveTransaction(observability.OutcomeDirect, start)
		return err
	}

	session, err := c.client.StartSession()
	if err != nil {
		return interfaces.ErrTransactionFailed.Wrap(fmt.Errorf("failed to start session: %w", err))
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})

	switch {
	case err == nil:
		c.metrics.ObserveTransaction(observability.OutcomeCommitted, start)
		return nil
	case isWriteConflict(err):
		c.metrics.ObserveTransaction(observability.OutcomeConflict, start)
		return interfaces.ErrTransactionConflict.Wrap(err)
	default:
		c.metrics.ObserveTransaction(observability.OutcomeAborted, start)
		return err
	}
}

// Ping checks the connection to the primary.
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// TranslateError maps driver errors onto the shared repository errors.
func TranslateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return interfaces.ErrNoDocuments.Wrap(err)
	case mongo.IsDuplicateKeyError(err):
		return interfaces.ErrDuplicateKey.Wrap(err)
	case isWriteConflict(err):
		return interfaces.ErrTransactionConflict.Wrap(err)
	case mongo.IsNetworkError(err), mongo.IsTimeout(err):
		return interfaces.ErrConnectionFailed.Wrap(err)
	default:
		return err
	}
}

// writeConflictCode is the server's WriteConflict error code.
const writeConflictCode = 112

func isWriteConflict(err error) bool {
	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) {
		return serverErr.HasErrorCode(writeConflictCode)
	}
	return false
}
