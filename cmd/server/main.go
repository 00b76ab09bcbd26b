package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/zaqqye/gazetrack_backend/internal/bootstrap"
	"github.com/zaqqye/gazetrack_backend/internal/config"
	"github.com/zaqqye/gazetrack_backend/internal/database"
	"github.com/zaqqye/gazetrack_backend/internal/logging"
	"github.com/zaqqye/gazetrack_backend/internal/routes"
	"github.com/zaqqye/gazetrack_backend/internal/ws"
)

func main() {
	// Load .env (non-fatal if missing in production)
	_ = godotenv.Load()

	root, err := os.Getwd()
	if err != nil {
		log.Fatalf("could not determine working directory: %v", err)
	}
	configDir := os.Getenv("GAZETRACK_CONFIG_DIR")
	if configDir == "" {
		configDir = root
	}

	cfg, err := config.Load(configDir, nil)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	logger, err := logging.Init(root, cfg.Logging)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer logger.Sync()
	// reload once the logger exists so file changes get reported
	if cfg, err = config.Load(configDir, logger); err != nil {
		logger.Fatal("config load failed", zap.Error(err))
	}

	db, err := database.Connect(cfg, root, logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("database migration failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bootstrap.SeedAdmin(ctx, db, cfg.Admin, logger); err != nil {
		logger.Fatal("admin seed failed", zap.Error(err))
	}
	study, err := bootstrap.EnsureStudy(ctx, db, cfg.Study, logger)
	if err != nil {
		logger.Fatal("study setup failed", zap.Error(err))
	}

	hub := ws.NewMonitoringHub(logger)
	go hub.Run(ctx)

	r := gin.New()
	if err := routes.Register(r, routes.Deps{DB: db, Cfg: cfg, Log: logger, Hub: hub, ActiveStudy: study}); err != nil {
		logger.Fatal("route setup failed", zap.Error(err))
	}

	port := cfg.Server.Port
	if port == "" {
		port = "5001"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		var err error
		if cfg.Server.TLSCertFile != "" && cfg.Server.TLSKeyFile != "" {
			logger.Info("Starting HTTPS server", zap.String("addr", srv.Addr))
			err = srv.ListenAndServeTLS(resolve(root, cfg.Server.TLSCertFile), resolve(root, cfg.Server.TLSKeyFile))
		} else {
			logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server exited with error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func resolve(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
