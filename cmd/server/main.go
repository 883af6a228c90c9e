package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/lumenhr/bonus-approval/internal/config"
	httpadapter "github.com/lumenhr/bonus-approval/internal/interfaces/http"
	"github.com/lumenhr/bonus-approval/internal/application/service"
	"github.com/lumenhr/bonus-approval/internal/infrastructure/persistence/repository"
	"github.com/lumenhr/bonus-approval/internal/infrastructure/persistence/sqlite"
	"github.com/lumenhr/bonus-approval/pkg/database"
	"github.com/lumenhr/bonus-approval/pkg/utils"
)

func main() {
	// Load environment overrides before the config file
	_ = gotenv.Load()

	cfg, err := config.Load(configPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting bonus approval service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	db, err := database.Open(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.Run(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Storage layer
	txManager := sqlite.NewDB(db, logger)
	employeeRepo := repository.NewEmployeeRepository(db, logger)
	levelRepo := repository.NewApprovalLevelRepository(db, logger)

	// Application services
	serviceLogger := &zapLoggerAdapter{sugar: logger.Sugar()}
	bonusService := service.NewBonusService(employeeRepo, levelRepo, txManager, serviceLogger)
	approvalService := service.NewApprovalService(employeeRepo, levelRepo, txManager, serviceLogger)
	bulkService := service.NewBulkService(employeeRepo, levelRepo, txManager, serviceLogger)
	exportService := service.NewExportService(employeeRepo, approvalService, serviceLogger)

	server := httpadapter.NewServer(httpadapter.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		JWTSecret:    cfg.Auth.JWTSecret,
		JWTIssuer:    cfg.Auth.Issuer,
	}, bonusService, approvalService, bulkService, exportService, serviceLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}

	logger.Info("Shutdown complete")
}

func configPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "configs/config.yaml"
}

// zapLoggerAdapter adapts zap to the narrow Logger interface the
// application layer depends on.
type zapLoggerAdapter struct {
	sugar *zap.SugaredLogger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.sugar.Infow(msg, keysAndValues...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.sugar.Errorw(msg, keysAndValues...)
}
