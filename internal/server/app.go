package server

import (
	"context"
	"errors"
	"fmt"
	"io"

	"todoapi/internal/classifier"
	"todoapi/internal/config"
	"todoapi/internal/database"
	"todoapi/internal/logging"
	"todoapi/internal/repositories"
	"todoapi/internal/services"
	"todoapi/internal/storage"
	"todoapi/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/streadway/amqp"
)

// uploadOverhead leaves room for multipart framing around the largest
// accepted image.
const uploadOverhead = 1 << 20

// App is a fully wired server and the resources it owns.
type App struct {
	HTTP *fiber.App

	closers []func() error
}

// Build wires storage, messaging, services and handlers for cfg. The caller
// must Close the returned App.
func Build(ctx context.Context, cfg *config.Config, logger logging.Logger, accessLog io.Writer) (*App, error) {
	a := &App{}

	users, todos, err := a.openRepositories(cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	var events services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Logger: logger})
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, mq.Close)
		events = mq

		if err := mq.ConsumeEvents(AuditHandler(logger)); err != nil {
			a.Close()
			return nil, err
		}
		logger.Info(ctx, "event publishing enabled", "exchange", rabbitmq.DefaultExchange)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	tokens, err := services.NewTokenService(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.JWTExpire)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.HTTP = New(Deps{
		Users:         services.NewUserService(users, events, logger),
		Todos:         services.NewTodoService(todos, users, events, logger),
		Images:        services.NewImageService(store, classifier.NewCentroidClassifier(nil), cfg.MaxUploadBytes, logger),
		Tokens:        tokens,
		Logger:        logger,
		BodyLimit:     int(cfg.MaxUploadBytes) + uploadOverhead,
		AccessLog:     accessLog,
		EventsEnabled: events != nil,
	})
	return a, nil
}

func (a *App) openRepositories(cfg *config.Config, logger logging.Logger) (repositories.UserRepository, repositories.TodoRepository, error) {
	if cfg.DBDriver == "memory" {
		todos := repositories.NewMemoryTodoRepository()
		return repositories.NewMemoryUserRepository(todos), todos, nil
	}

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN, logger)
	if err != nil {
		return nil, nil, err
	}
	a.closers = append(a.closers, func() error { return database.Close(db) })
	logger.Info(context.Background(), "database ready", "driver", cfg.DBDriver)

	return repositories.NewGORMUserRepository(db), repositories.NewGORMTodoRepository(db), nil
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageDriver {
	case "s3":
		return storage.NewS3Store(ctx, storage.S3Options{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
		})
	case "local":
		return storage.NewLocalStore(cfg.StorageDir)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

// Close releases owned resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// AuditHandler logs every domain event delivered to the audit queue.
// Undecodable messages are rejected.
func AuditHandler(logger logging.Logger) func(amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		ev, err := rabbitmq.DecodeEvent(msg.Body)
		if err != nil {
			return err
		}
		logger.Info(context.Background(), "audit event",
			"type", ev.Type, "occurred_at", ev.OccurredAt, "data", ev.Data)
		return nil
	}
}
