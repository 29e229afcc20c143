package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/qolzam/forum/comments"
	commentHandlers "github.com/qolzam/forum/comments/handlers"
	commentServices "github.com/qolzam/forum/comments/services"
	"github.com/qolzam/forum/internal/cache"
	"github.com/qolzam/forum/internal/database/observability"
	"github.com/qolzam/forum/internal/middleware/requestid"
	"github.com/qolzam/forum/internal/pkg/log"
	platformconfig "github.com/qolzam/forum/internal/platform/config"
	"github.com/qolzam/forum/internal/platform/storage"
	"github.com/qolzam/forum/notifications"
	notificationHandlers "github.com/qolzam/forum/notifications/handlers"
	"github.com/qolzam/forum/notifications/publisher"
	notificationServices "github.com/qolzam/forum/notifications/services"
	"github.com/qolzam/forum/posts"
	postHandlers "github.com/qolzam/forum/posts/handlers"
	postServices "github.com/qolzam/forum/posts/services"
	"github.com/qolzam/forum/users"
	userHandlers "github.com/qolzam/forum/users/handlers"
	"github.com/qolzam/forum/votes"
	voteHandlers "github.com/qolzam/forum/votes/handlers"
	"github.com/qolzam/forum/votes/ranking"
	voteServices "github.com/qolzam/forum/votes/services"
	"github.com/qolzam/forum/votes/targets"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := platformconfig.LoadFromEnv()
	if err != nil {
		log.Error("Failed to load platform config: %v", err)
		os.Exit(1)
	}
	log.SetLevel(log.ParseLevel(cfg.Server.LogLevel))
	if cfg.Server.Debug {
		log.SetLevel(log.LevelDebug)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Error("server stopped: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *platformconfig.Config) error {
	metrics := observability.GetGlobalMetrics()

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Error("failed to close database: %v", err)
		}
	}()

	// --- Notifications ---
	sinks := []notificationServices.Sink{notificationServices.NewStoreSink(store.Notifications)}
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			// Notifications still land in the store.
			log.Warn("Redis unavailable, notifications will not be published: %v", err)
		} else {
			defer redisClient.Close()
			sinks = append(sinks, publisher.NewRedisSink(redisClient, cfg.Redis.NotificationChannel))
			log.Info("Publishing notifications to Redis channel %s", cfg.Redis.NotificationChannel)
		}
	}
	dispatcher := notificationServices.NewDispatcher(notificationServices.DispatcherConfig{
		QueueSize: cfg.Notifications.QueueSize,
		Workers:   cfg.Notifications.Workers,
	}, metrics, sinks...)
	var notifier voteServices.Notifier
	if cfg.Notifications.Enabled {
		dispatcher.Start()
		notifier = dispatcher
	}

	// --- Votable targets ---
	ranker := ranking.FromConfig(cfg.Ranking)
	registry := targets.NewRegistry(
		postServices.NewVoteTarget(store.Posts, ranker),
		commentServices.NewVoteTarget(store.Comments, ranker),
	)

	// --- Votes ---
	voteService := voteServices.NewVoteService(voteServices.Dependencies{
		Votes:      store.Votes,
		Targets:    registry,
		Tx:         store.Tx,
		Scores:     voteServices.NewScoreAccumulator(metrics),
		Reputation: voteServices.NewReputationPropagator(store.Users, metrics),
		Notifier:   notifier,
		Metrics:    metrics,
	})
	reconciler := voteServices.NewReconciler(store.Votes, store.Users, registry, store.Tx, metrics, voteServices.ReconcilerConfig{
		BatchSize: cfg.Reconcile.BatchSize,
		Interval:  cfg.Reconcile.Interval,
	})
	if cfg.Reconcile.Enabled {
		go reconciler.Start(ctx)
	}

	postService := postServices.NewPostService(store.Posts)
	commentService := commentServices.NewCommentService(store.Comments, postService)
	notificationService := notificationServices.NewNotificationService(store.Notifications)

	app := newApp(cfg)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/health", func(c *fiber.Ctx) error {
		if err := store.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable", "error": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	posts.RegisterRoutes(app, &posts.PostsHandlers{
		PostHandler: postHandlers.NewPostHandler(postService),
	}, cfg)
	comments.RegisterRoutes(app, &comments.CommentsHandlers{
		CommentHandler: commentHandlers.NewCommentHandler(commentService),
	}, cfg)
	users.RegisterRoutes(app, &users.UsersHandlers{
		UserHandler: userHandlers.NewUserHandler(store.Users),
	}, cfg)
	notifications.RegisterRoutes(app, &notifications.NotificationsHandlers{
		NotificationHandler: notificationHandlers.NewNotificationHandler(notificationService),
	}, cfg)
	votes.RegisterRoutes(app, &votes.VotesHandlers{
		VoteHandler: voteHandlers.NewVoteHandler(voteService, reconciler),
	}, cfg)

	listenErr := make(chan error, 1)
	go func() {
		log.Info("Starting forum API server on %s (database: %s)", cfg.Server.Address(), cfg.Database.Type)
		listenErr <- app.Listen(cfg.Server.Address())
	}()

	select {
	case err := <-listenErr:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Error("HTTP shutdown: %v", err)
	}
	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := dispatcher.Close(drainCtx); err != nil {
		log.Warn("notification queue not drained: %v", err)
	}
	return nil
}

func newApp(cfg *platformconfig.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: cfg.Server.BodyLimit,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			log.ErrorWithContext(c.UserContext(), "[ErrorHandler] Path: %s, Error: %v, Code: %d", c.Path(), err, code)

			// If response already set by handler, don't override it
			if len(c.Response().Body()) > 0 {
				return nil
			}

			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	// CORS Configuration for Browser Direct Access
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.WebDomain,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods:     "GET, POST, PUT, DELETE, PATCH, OPTIONS",
	}))
	return app
}
