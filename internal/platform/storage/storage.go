// Package storage opens the repositories the forum runs on, in MongoDB or in memory.
package storage

import (
	"context"
	"fmt"

	commentrepository "github.com/qolzam/forum/comments/repository"
	"github.com/qolzam/forum/internal/database/interfaces"
	"github.com/qolzam/forum/internal/database/mongodb"
	"github.com/qolzam/forum/internal/pkg/log"
	platformconfig "github.com/qolzam/forum/internal/platform/config"
	notificationrepository "github.com/qolzam/forum/notifications/repository"
	postrepository "github.com/qolzam/forum/posts/repository"
	userrepository "github.com/qolzam/forum/users/repository"
	voterepository "github.com/qolzam/forum/votes/repository"
)

// Backend bundles every repository with the transaction runner that spans them.
type Backend struct {
	Posts         postrepository.PostRepository
	Comments      commentrepository.CommentRepository
	Users         userrepository.UserRepository
	Votes         voterepository.VoteRepository
	Notifications notificationrepository.NotificationRepository
	Tx            interfaces.TxRunner

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// Open connects the backend selected by cfg.Database.Type. MongoDB indexes are created on open.
func Open(ctx context.Context, cfg *platformconfig.Config) (*Backend, error) {
	switch cfg.Database.Type {
	case platformconfig.DatabaseTypeMemory:
		log.Warn("DB_TYPE=memory: data is lost on restart")
		return &Backend{
			Posts:         postrepository.NewMemoryPostRepository(),
			Comments:      commentrepository.NewMemoryCommentRepository(),
			Users:         userrepository.NewMemoryUserRepository(),
			Votes:         voterepository.NewMemoryVoteRepository(),
			Notifications: notificationrepository.NewMemoryNotificationRepository(),
			Tx:            interfaces.Serialized(),
			ping:          func(context.Context) error { return nil },
			close:         func(context.Context) error { return nil },
		}, nil
	case platformconfig.DatabaseTypeMongoDB:
		client, err := mongodb.Connect(ctx, cfg.Database.Mongo, cfg.Database.ForceNonTransactional)
		if err != nil {
			return nil, err
		}
		b := &Backend{
			Posts:         postrepository.NewMongoPostRepository(client),
			Comments:      commentrepository.NewMongoCommentRepository(client),
			Users:         userrepository.NewMongoUserRepository(client),
			Votes:         voterepository.NewMongoVoteRepository(client),
			Notifications: notificationrepository.NewMongoNotificationRepository(client),
			Tx:            client,
			ping:          client.Ping,
			close:         client.Close,
		}
		if err := b.EnsureIndexes(ctx); err != nil {
			_ = client.Close(ctx)
			return nil, err
		}
		return b, nil
	}
	return nil, fmt.Errorf("unsupported database type %q", cfg.Database.Type)
}

// EnsureIndexes creates the indexes of every collection. It is a no-op in memory.
func (b *Backend) EnsureIndexes(ctx context.Context) error {
	for name, ensure := range map[string]func(context.Context) error{
		"posts":         b.Posts.EnsureIndexes,
		"comments":      b.Comments.EnsureIndexes,
		"users":         b.Users.EnsureIndexes,
		"votes":         b.Votes.EnsureIndexes,
		"notifications": b.Notifications.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", name, err)
		}
	}
	log.Info("MongoDB indexes ensured")
	return nil
}

// Ping checks the connection.
func (b *Backend) Ping(ctx context.Context) error {
	return b.ping(ctx)
}

// Close releases the connection.
func (b *Backend) Close(ctx context.Context) error {
	return b.close(ctx)
}
