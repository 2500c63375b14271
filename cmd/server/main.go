package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/crestfield/lecturer-claims/internal/advisor"
	"github.com/crestfield/lecturer-claims/internal/config"
	"github.com/crestfield/lecturer-claims/internal/document"
	httpiface "github.com/crestfield/lecturer-claims/internal/interfaces/http"
	"github.com/crestfield/lecturer-claims/internal/notify"
	"github.com/crestfield/lecturer-claims/internal/report"
	"github.com/crestfield/lecturer-claims/internal/repository"
	"github.com/crestfield/lecturer-claims/internal/submission"
	"github.com/crestfield/lecturer-claims/internal/validation"
	"github.com/crestfield/lecturer-claims/internal/workflow"
	"github.com/crestfield/lecturer-claims/pkg/database"
	"github.com/crestfield/lecturer-claims/pkg/utils"
)

func main() {
	// .env is optional; real deployments set the variables directly.
	gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
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

	logger.Info("Starting Lecturer Claim Management System",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	db, err := database.Open(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	claimRepo := repository.NewClaimRepository(db.DB, logger)
	userRepo := repository.NewUserRepository(db.DB, logger)
	documentRepo := repository.NewDocumentRepository(db.DB, logger)
	notificationRepo := repository.NewNotificationRepository(db.DB, logger)

	validator := validation.NewEngine(userRepo, documentRepo, claimRepo, logger)
	engine := workflow.NewEngine(claimRepo, userRepo, validator, logger)
	submissions := submission.NewService(claimRepo, userRepo, validator, logger)
	documents := document.NewService(documentRepo, claimRepo, cfg.Documents.StorageDir, logger)
	reports := report.NewGenerator(claimRepo, userRepo, cfg.Reports.OutputDir, logger)

	var sender notify.Sender
	if cfg.Lark.Enabled() {
		sender = notify.NewLarkSender(cfg.Lark.AppID, cfg.Lark.AppSecret, logger)
		logger.Info("Lark notification delivery enabled")
	} else {
		sender = notify.NewLogSender(logger)
		logger.Info("Lark credentials not configured, notifications will be logged only")
	}
	dispatcher := notify.NewDispatcher(notificationRepo, userRepo, sender, logger)

	var reviewAdvisor httpiface.AdvisorService
	if cfg.OpenAI.Enabled() {
		reviewAdvisor = advisor.New(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.Temperature, logger)
		logger.Info("Review advisor enabled", zap.String("model", cfg.OpenAI.Model))
	}

	handlers := httpiface.NewHandlers(
		submissions,
		documents,
		engine,
		validator,
		claimRepo,
		userRepo,
		reports,
		dispatcher,
		reviewAdvisor,
		logger,
	)

	server := httpiface.NewServer(httpiface.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, handlers, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("Server exited with error", zap.Error(err))
	}

	logger.Info("Shutdown complete")
}
