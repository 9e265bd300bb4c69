package bootstrap

import (
	"context"
	"log"
	"os"

	"auth-service/internal/config"
	"auth-service/internal/database"
	"auth-service/internal/handlers"
	"auth-service/internal/mailer"
	"auth-service/internal/repository"
	"auth-service/internal/services"
	"auth-service/internal/utils"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// AppContext holds everything main needs after wiring.
type AppContext struct {
	Config       *config.Config
	Logger       *zap.Logger
	Sugar        *zap.SugaredLogger
	Mongo        *mongo.Client
	TokenManager *utils.TokenManager
	Users        repository.UserRepository
	Tokens       repository.TokenRepository
	Handler      *handlers.Handler
}

type CleanupFn func(context.Context)

// Init loads config, connects the stores and wires the service graph.
func Init() (*AppContext, CleanupFn, error) {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}

	logger := utils.NewLogger(cfg.App.Env)
	sugar := logger.Sugar()
	sugar.Infof("Starting auth-service in %s environment", cfg.App.Env)

	db, mongoClient, err := database.ConnectMongo(cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.ConnectTimeout, sugar)
	if err != nil {
		return nil, nil, err
	}

	users := repository.NewMongoUserRepo(db, cfg.Mongo.UserCollection)
	tokens := repository.NewMongoTokenRepo(db, cfg.Mongo.TokenCollection)

	tm := utils.NewTokenManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.Issuer,
		cfg.JWT.AccessTTL,
		cfg.JWT.RefreshTTL,
		cfg.JWT.ResetLinkTTL,
	)

	mail := mailer.NewBrevoMailer(cfg.Mail.APIKey, cfg.Mail.SenderEmail, cfg.Mail.SenderName, sugar)
	if !mail.IsConfigured() {
		sugar.Warn("Mailer not fully configured. Outgoing emails will be skipped.")
	}

	svc := services.NewAuthService(users, tokens, tm, mail, services.Options{
		ClientURL:   cfg.App.ClientURL,
		AdminEmails: cfg.IsAdminEmail,
	}, sugar)
	h := handlers.NewHandler(svc, cfg.App.UploadDir, cfg.IsProduction(), logger)

	app := &AppContext{
		Config:       cfg,
		Logger:       logger,
		Sugar:        sugar,
		Mongo:        mongoClient,
		TokenManager: tm,
		Users:        users,
		Tokens:       tokens,
		Handler:      h,
	}

	cleanup := func(ctx context.Context) {
		if cerr := logger.Sync(); cerr != nil {
			log.Printf("Logger sync error: %v", cerr)
		}
		if cerr := mongoClient.Disconnect(ctx); cerr != nil {
			sugar.Errorf("MongoDB disconnect error: %v", cerr)
		}
	}
	return app, cleanup, nil
}
