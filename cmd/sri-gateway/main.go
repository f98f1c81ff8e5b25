package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	auditpg "github.com/yamgooo/sri-client-go/internal/adapters/audit/postgres"
	documenthttp "github.com/yamgooo/sri-client-go/internal/adapters/http/document"
	healthhttp "github.com/yamgooo/sri-client-go/internal/adapters/http/health"
	taxpayerhttp "github.com/yamgooo/sri-client-go/internal/adapters/http/taxpayer"
	"github.com/yamgooo/sri-client-go/internal/adapters/sri/registry"
	"github.com/yamgooo/sri-client-go/internal/adapters/sri/session"
	"github.com/yamgooo/sri-client-go/internal/adapters/sri/soap"
	appdocument "github.com/yamgooo/sri-client-go/internal/application/document"
	apphealth "github.com/yamgooo/sri-client-go/internal/application/health"
	apptaxpayer "github.com/yamgooo/sri-client-go/internal/application/taxpayer"
	"github.com/yamgooo/sri-client-go/internal/core/audit"
	"github.com/yamgooo/sri-client-go/internal/infrastructure/config"
	"github.com/yamgooo/sri-client-go/internal/infrastructure/database"
	httpx "github.com/yamgooo/sri-client-go/internal/infrastructure/http"
	"github.com/yamgooo/sri-client-go/internal/infrastructure/http/server"
	"github.com/yamgooo/sri-client-go/internal/infrastructure/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "service stopped: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.App.Name, cfg.Log.Level, cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The audit trail is optional: without a reachable database the gateway
	// still serves SRI traffic, it just skips persistence.
	var auditRepo audit.Repository
	var pool *pgxpool.Pool
	if cfg.Database.Host != "" && cfg.Database.Database != "" {
		p, err := database.NewPool(ctx, database.Config{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			Database:        cfg.Database.Database,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			SSLMode:         cfg.Database.SSLMode,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			log.Warn("Failed to connect to database, audit trail will be disabled",
				"error", err,
				"host", cfg.Database.Host,
				"database", cfg.Database.Database,
			)
		} else if err := database.RunMigrations(ctx, p, log); err != nil {
			p.Close()
			log.Warn("Failed to run migrations, audit trail will be disabled", "error", err)
		} else {
			pool = p
			defer pool.Close()
			auditRepo = auditpg.NewRepository(pool, log)
			log.Info("Database connection established", "database", cfg.Database.Database)
		}
	} else {
		log.Info("Database not configured, audit trail will be disabled",
			"audit_enabled_config", cfg.Audit.Enabled,
		)
	}

	auditEnabled := cfg.Audit.Enabled && auditRepo != nil
	if cfg.Audit.Enabled && auditRepo == nil {
		log.Warn("Audit trail disabled: database connection required",
			"audit_enabled_config", cfg.Audit.Enabled,
		)
	}

	tracedClient := httpx.NewTracedClient(&httpx.TracedClientConfig{
		Timeout:         cfg.SRI.Service.Timeout(),
		AuditEnabled:    auditEnabled,
		LogRequestBody:  cfg.Audit.LogRequestBody,
		LogResponseBody: cfg.Audit.LogResponseBody,
		MaxBodySize:     cfg.Audit.MaxBodySize,
	}, log, auditRepo, "sri")

	acquirer := session.NewAcquirer(cfg.SRI.CaptchaBaseURL, tracedClient, log)
	solver := session.NewSolver(cfg.SRI.CaptchaBaseURL, tracedClient, log)
	reg := registry.NewClient(cfg.SRI.CatastroBaseURL, cfg.SRI.CedulaBaseURL, tracedClient, log)
	taxpayerService := apptaxpayer.NewService(acquirer, solver, reg, log)

	// The submitter applies the retry policy's timeout per attempt, and the
	// policy is reconfigurable at runtime. No client-level timeout here, or
	// the startup value would keep capping attempts.
	soapClient := httpx.NewTracedClient(&httpx.TracedClientConfig{
		AuditEnabled:    auditEnabled,
		LogRequestBody:  cfg.Audit.LogRequestBody,
		LogResponseBody: cfg.Audit.LogResponseBody,
		MaxBodySize:     cfg.Audit.MaxBodySize,
	}, log, auditRepo, "sri")
	submitter := soap.NewSubmitter(soap.Endpoints{
		ReceptionTest:           cfg.SRI.ReceptionURLTest,
		ReceptionProduction:     cfg.SRI.ReceptionURLProduction,
		AuthorizationTest:       cfg.SRI.AuthorizationURLTest,
		AuthorizationProduction: cfg.SRI.AuthorizationURLProduction,
	}, soapClient, log)
	documentService, err := appdocument.NewService(submitter, cfg.SRI.Service, log)
	if err != nil {
		return fmt.Errorf("create document service: %w", err)
	}

	healthService := apphealth.NewService(apphealth.Metadata{
		Service:     cfg.App.Name,
		Version:     cfg.App.Version,
		Environment: cfg.App.Environment,
	})
	if pool != nil {
		healthService.RegisterCheck("database", pool.Ping)
	}

	srv, err := server.New(server.Options{
		HTTP:     cfg.HTTP,
		Auth:     cfg.Auth,
		Logger:   log,
		Taxpayer: taxpayerhttp.NewHandler(taxpayerService),
		Document: documenthttp.NewHandler(documentService, log),
		Health:   healthhttp.NewHandler(healthService),
	})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}
	defer srv.Close()

	log.Info("Starting HTTP server", "port", cfg.HTTP.Port)
	return srv.Run(ctx)
}
