package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"quicknotes/config"
	"quicknotes/handler"
	"quicknotes/logging"
	"quicknotes/middleware"
	"quicknotes/model"
	"quicknotes/repository"
	"quicknotes/services"
	"quicknotes/usecase"
	"quicknotes/utils"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("run app: %v", err)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Parse()
	if err != nil {
		return fmt.Errorf("parse cfg: %w", err)
	}

	logCloser := logging.Setup(logging.Params{
		LogFileName:   cfg.App.LogFile,
		LogLevel:      cfg.App.LogLevel,
		LogFormatJSON: cfg.App.LogJSON,
	})
	defer logCloser.Close()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := utils.InitValidator(); err != nil {
		return fmt.Errorf("init validator: %w", err)
	}

	checks := map[string]handler.Pinger{}

	store, closeStore, err := openStore(ctx, cfg, checks)
	if err != nil {
		return err
	}
	defer closeStore()

	var blacklist *services.RedisTokenBlacklist
	if cfg.Redis.Enabled {
		blacklist, err = services.NewTokenBlacklist(ctx, cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("init token blacklist: %w", err)
		}
		defer blacklist.Close()
		checks["redis"] = blacklist
	}

	authenticate, err := sessionMiddleware(cfg, blacklist)
	if err != nil {
		return err
	}

	accessor := services.ContextSessionAccessor{}
	sessions := &handler.SessionHandler{Sessions: accessor, CookieName: cfg.Auth.CookieName}
	if blacklist != nil {
		sessions.Revoker = blacklist
	}

	health := handler.NewHealthHandler(cfg.Store.Backend, checks)
	if cfg.Store.Backend == config.StoreMongo {
		health.PoolStats = utils.GetMongoMetrics
	}

	router := handler.SetupRouter(handler.RouterConfig{
		Notes:          handler.NewNotesHandler(usecase.NewNotesService(store, accessor)),
		Sessions:       sessions,
		Health:         health,
		Authenticate:   authenticate,
		Accessor:       accessor,
		AllowedOrigins: []string{cfg.HTTP.AllowedOrigin},
		MaxBodyBytes:   cfg.HTTP.MaxBodyBytes,
	})

	if err := runServer(ctx, cfg.HTTP, router); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("wait app stop: %w", err)
	}
	return nil
}

func openStore(ctx context.Context, cfg config.Config, checks map[string]handler.Pinger) (usecase.NotesStore, func(), error) {
	if cfg.Store.Backend == config.StoreMemory {
		log.Warn("using in-memory note store, notes are lost on restart")
		return repository.NewMemoryNotesRepo(), func() {}, nil
	}

	client, err := utils.NewMongoClient(ctx, cfg.Mongo)
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	closeFn := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			log.WithError(err).Warn("mongo disconnect failed")
		}
	}

	if err := repository.SetupIndexes(ctx, client.Database(cfg.Mongo.DatabaseName)); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("setup indexes: %w", err)
	}

	repo := repository.GetNotesRepo(client, cfg.Mongo.DatabaseName)
	checks["mongo"] = repo
	return repo, closeFn, nil
}

func sessionMiddleware(cfg config.Config, blacklist *services.RedisTokenBlacklist) (gin.HandlerFunc, error) {
	if cfg.App.DevUser != "" {
		log.WithField("user_id", cfg.App.DevUser).Warn("signing every request in as the development user")
		return middleware.StaticSessionMiddleware(&model.Session{UserID: cfg.App.DevUser}), nil
	}

	verifier, err := services.NewTokenVerifier(cfg.Auth.JWTSecret,
		services.WithIssuer(cfg.Auth.Issuer),
		services.WithLeeway(cfg.Auth.Leeway),
	)
	if err != nil {
		return nil, fmt.Errorf("init token verifier: %w", err)
	}

	opts := middleware.SessionOptions{Verifier: verifier, CookieName: cfg.Auth.CookieName}
	if blacklist != nil {
		opts.Revocations = blacklist
	}
	return middleware.SessionMiddleware(opts), nil
}
