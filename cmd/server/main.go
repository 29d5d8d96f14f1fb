package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/wuwenbin0122/goal-planner/internal/api"
	"github.com/wuwenbin0122/goal-planner/internal/conversation"
	"github.com/wuwenbin0122/goal-planner/internal/db"
	"github.com/wuwenbin0122/goal-planner/internal/llm"
	"github.com/wuwenbin0122/goal-planner/internal/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("config: no .env file loaded: %v", err)
	}

	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("config: failed to load: %v", err)
	}

	logger, err := utils.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("logger: failed to initialise: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	if cfg.OpenRouter.APIKey == "" {
		sugar.Warn("OPENROUTER_API_KEY is not set; strategy and chat requests will fail until it is configured")
	}

	ctx := context.Background()

	store, closeStore, err := openStore(ctx, cfg, sugar)
	if err != nil {
		sugar.Fatalf("conversation store: %v", err)
	}
	defer closeStore()

	gateway := llm.NewClient(llm.Config{
		Endpoint: cfg.OpenRouter.Endpoint,
		APIKey:   cfg.OpenRouter.APIKey,
		Model:    cfg.OpenRouter.Model,
		Referer:  cfg.OpenRouter.Referer,
		Title:    cfg.OpenRouter.Title,
		Timeout:  cfg.OpenRouter.Timeout,
	}, sugar.Named("llm"))

	chat := conversation.NewService(store, gateway, sugar.Named("conversation"))

	router, err := api.NewRouter(api.NewHandler(gateway, chat, sugar.Named("api")), sugar.Named("http"))
	if err != nil {
		sugar.Fatalf("router: %v", err)
	}

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.OpenRouter.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sugar.Infow("server listening", "addr", server.Addr, "backend", cfg.Conversation.Backend, "model", cfg.OpenRouter.Model)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalf("server crashed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		sugar.Warnf("graceful shutdown failed: %v", err)
	}

	sugar.Info("server stopped cleanly")
}

// openStore connects the configured conversation backend and returns it with
// its cleanup func.
func openStore(ctx context.Context, cfg *utils.Config, logger *zap.SugaredLogger) (conversation.Store, func(), error) {
	switch cfg.Conversation.Backend {
	case utils.BackendRedis:
		client, err := db.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return conversation.NewRedisStore(client, cfg.Conversation.TTL), func() {
			if err := client.Close(); err != nil {
				logger.Warnf("redis: close error: %v", err)
			}
		}, nil

	case utils.BackendMongo:
		mongoStore, err := db.NewMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, err
		}
		if err := mongoStore.EnsureCollections(ctx); err != nil {
			_ = mongoStore.Close(context.Background())
			return nil, nil, err
		}
		return conversation.NewMongoStore(mongoStore.Conversations), func() {
			if err := mongoStore.Close(context.Background()); err != nil {
				logger.Warnf("mongo: close error: %v", err)
			}
		}, nil

	case utils.BackendPostgres:
		postgres, err := db.NewPostgres(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.Ping(ctx); err != nil {
			postgres.Close()
			return nil, nil, err
		}
		if err := postgres.EnsureSchema(ctx); err != nil {
			postgres.Close()
			return nil, nil, err
		}
		return conversation.NewPostgresStore(postgres.Pool), postgres.Close, nil

	default:
		store, err := conversation.NewMemoryStore(cfg.Conversation.Capacity)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}
