// Command import loads a legacy roster spreadsheet into the database,
// resolving supervisor and approver names to employee ids.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/lumenhr/bonus-approval/internal/config"
	"github.com/lumenhr/bonus-approval/internal/importer"
	"github.com/lumenhr/bonus-approval/internal/infrastructure/persistence/repository"
	"github.com/lumenhr/bonus-approval/pkg/database"
	"github.com/lumenhr/bonus-approval/pkg/utils"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	rosterPath := flag.String("file", "", "path to the roster .xlsx file")
	flag.Parse()

	if *rosterPath == "" {
		fmt.Fprintln(os.Stderr, "usage: import -file roster.xlsx [-config configs/config.yaml]")
		os.Exit(2)
	}

	_ = gotenv.Load()

	cfg, err := config.Load(*configPath)
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

	if err := database.NewMigrator(db, logger).Run(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	rows, err := importer.ReadRoster(*rosterPath)
	if err != nil {
		logger.Fatal("Failed to read roster", zap.String("file", *rosterPath), zap.Error(err))
	}

	repo := repository.NewEmployeeRepository(db, logger)
	report, err := importer.NewImporter(repo, logger).Import(context.Background(), rows)
	if err != nil {
		logger.Fatal("Import failed", zap.Error(err))
	}

	fmt.Printf("Imported %d employees\n", report.Imported)
	for _, e := range report.Errors {
		fmt.Printf("  unresolved: %s\n", e)
	}
	if len(report.Errors) > 0 {
		os.Exit(1)
	}
}
