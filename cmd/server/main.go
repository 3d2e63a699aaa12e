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

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Skufu/healthassistant/internal/chat"
	"github.com/Skufu/healthassistant/internal/config"
	"github.com/Skufu/healthassistant/internal/diagnosis"
	"github.com/Skufu/healthassistant/internal/logging"
	"github.com/Skufu/healthassistant/internal/model"
	"github.com/Skufu/healthassistant/internal/outcome"
	"github.com/Skufu/healthassistant/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	logger, err := logging.New(cfg.GinMode, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	opener, err := model.NewOnnxOpener(model.Config{
		RuntimeLib: cfg.OnnxRuntimeLib,
		InputName:  cfg.ModelInputName,
		OutputName: cfg.ModelOutputName,
	})
	if err != nil {
		logger.Fatal("onnxruntime init failed", zap.Error(err))
	}

	modelsDir := model.DetectDir(cfg.ModelsDir)
	store, err := model.Load(opener, modelsDir, diagnosis.Schemas())
	if err != nil {
		logger.Fatal("model load failed", zap.String("dir", modelsDir), zap.Error(err))
	}
	defer store.Close()
	logger.Info("models loaded", zap.String("dir", modelsDir))

	serviceOpts := []diagnosis.Option{diagnosis.WithLogger(logger)}
	var (
		db      web.HealthChecker
		counter web.OutcomeCounter
	)
	if cfg.EnableDB {
		pool, err := outcome.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("database connection failed", zap.Error(err))
		}
		defer pool.Close()

		if err := outcome.Migrate(pool); err != nil {
			logger.Fatal("database migration failed", zap.Error(err))
		}

		outcomes := outcome.New(pool)
		serviceOpts = append(serviceOpts, diagnosis.WithRecorder(outcomes))
		db, counter = pool, outcomes
	}

	service := diagnosis.NewService(store.Predictors(), serviceOpts...)
	relay := newRelay(cfg, logger)

	router, err := web.NewRouter(web.NewHandler(service, relay, counter, logger), db, logger)
	if err != nil {
		logger.Fatal("router setup failed", zap.Error(err))
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      writeTimeout(cfg.ChatTimeout),
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("server listening", zap.String("port", cfg.Port), zap.String("chat_provider", cfg.ChatProvider))
	waitForShutdown(server, logger)
}

func newRelay(cfg *config.Config, logger *zap.Logger) *chat.Relay {
	dial := chat.OpenAIDialer(cfg.ChatModel)
	if cfg.ChatProvider == config.ProviderGemini {
		dial = chat.GeminiDialer(cfg.ChatModel)
	}
	return chat.NewRelay(dial, cfg.CredentialEnv(),
		chat.WithTimeout(cfg.ChatTimeout),
		chat.WithLogger(logger),
	)
}

// writeTimeout leaves room for the chat call to finish before the response is cut off.
func writeTimeout(chatTimeout time.Duration) time.Duration {
	if chatTimeout <= 0 {
		return 0
	}
	return chatTimeout + 15*time.Second
}

func waitForShutdown(server *http.Server, logger *zap.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
