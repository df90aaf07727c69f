package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	redisAdapter "github.com/newsnet/backend/internal/adapter/cache/redis"
	mongoAdapter "github.com/newsnet/backend/internal/adapter/mongo"
	natsAdapter "github.com/newsnet/backend/internal/adapter/nats"
	"github.com/newsnet/backend/internal/config"
	"github.com/newsnet/backend/internal/mailer"
	"github.com/newsnet/backend/internal/port/cache"
	httpPort "github.com/newsnet/backend/internal/port/http"
	"github.com/newsnet/backend/internal/token"
	"github.com/newsnet/backend/internal/usecase"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	mongoClient, err := mongoAdapter.NewMongoDBConnection(&cfg.Mongo)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Error("Failed to disconnect MongoDB", zap.Error(err))
		}
	}()
	logger.Info("Successfully connected to MongoDB")

	// The news cache and the event publisher are optional: the service runs
	// without them, just slower and quieter.
	var cacheRepo cache.CacheRepository
	if redisClient, err := redisAdapter.NewRedisClient(&cfg.Redis, logger); err != nil {
		logger.Warn("Redis unavailable, running without news cache", zap.Error(err))
	} else {
		defer redisClient.Close()
		cacheRepo = redisAdapter.NewRedisCacheRepository(redisClient, logger)
	}

	var publisher usecase.NewsEventPublisher
	if natsPublisher, err := natsAdapter.NewNATSPublisher(&cfg.NATS, logger); err != nil {
		logger.Warn("NATS unavailable, running without event publishing", zap.Error(err))
	} else {
		defer natsPublisher.Close()
		publisher = natsPublisher
	}

	userRepo := mongoAdapter.NewUserMongoRepository(mongoClient, cfg.Mongo.Database, logger)
	newsRepo := mongoAdapter.NewNewsMongoRepository(mongoClient, cfg.Mongo.Database)

	tokenManager := token.NewManager(cfg.JWT.Secret, cfg.JWT.TokenTTL)
	mailService := newMailer(&cfg.Mailer, logger)

	authUsecase := usecase.NewAuthUsecase(userRepo, mailService, tokenManager, logger)
	userUsecase := usecase.NewUserUsecase(userRepo, newsRepo, logger)
	newsUsecase := usecase.NewNewsUsecase(newsRepo, publisher, cacheRepo, logger)

	userHandler := httpPort.NewUserHandler(authUsecase, userUsecase, logger)
	newsHandler := httpPort.NewNewsHandler(newsUsecase, logger)
	router := httpPort.NewRouter(userHandler, newsHandler, tokenManager, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	logger.Info("Starting NewsNet HTTP server", zap.String("address", addr))
	if err := http.ListenAndServe(addr, router); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}
}

func newMailer(cfg *config.MailerConfig, logger *zap.Logger) mailer.Mailer {
	switch cfg.Provider {
	case "smtp":
		if cfg.SMTPHost != "" {
			return mailer.NewSMTPMailerService(
				cfg.SMTPHost, cfg.SMTPPort,
				cfg.SMTPUsername, cfg.SMTPPassword,
				cfg.SenderEmail, cfg.SenderName,
				logger,
			)
		}
	case "mailersend":
		if cfg.MailerSendAPIKey != "" {
			return mailer.NewMailerSendService(cfg.MailerSendAPIKey, cfg.SenderEmail, cfg.SenderName, logger)
		}
	}
	logger.Warn("No email transport configured, verification codes will only be logged")
	return mailer.NewLogMailerService(logger)
}
