package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/sop-architect/backend/internal/api"
	"github.com/sop-architect/backend/internal/config"
	"github.com/sop-architect/backend/internal/logging"
	"github.com/sop-architect/backend/internal/mcp"
	"github.com/sop-architect/backend/internal/repository"
	"github.com/sop-architect/backend/internal/services"
	"github.com/sop-architect/backend/internal/upload"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	logger := logging.NewLogger()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger.Info("Starting SOP Architect backend")

	dbPool, err := initDatabase(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer dbPool.Close()

	store := repository.NewPostgresStore(dbPool)
	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	logger.Info("Database connected")

	var llm services.LLMClient
	if cfg.LLM.Enabled {
		llm = services.NewOpenAIChatClient(cfg.LLM.APIBase, cfg.LLM.APIKey, cfg.LLM.Model)
		logger.Info("LLM analysis enabled", "model", cfg.LLM.Model)
	} else {
		logger.Info("LLM analysis disabled")
	}

	statusService := services.NewStatusService(store)
	protocolService := services.NewProtocolService(store)

	server := &api.Server{
		Workflows: services.NewWorkflowService(store),
		Tasks:     services.NewTaskService(store, store),
		Steps:     services.NewStepService(store, store),
		Notes:     services.NewNoteService(store, store),
		Examples:  services.NewExampleService(store, store),
		Templates: services.NewTemplateService(store, store, store),
		Status:    statusService,
		Protocol:  protocolService,
		Analysis:  services.NewAnalysisService(store, llm),
		Uploads:   upload.NewService(cfg.Upload.Dir, cfg.Upload.MaxSize),
	}

	logger.Info("Service layer initialized")

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(otelecho.Middleware("sop-architect"))

	server.RegisterRoutes(e)
	logger.Info("REST API handlers mounted")

	mcpServer := mcp.NewServer(statusService, protocolService)
	mcpHandlers := http.NewServeMux()
	mcp.MountHTTPHandlers(mcpHandlers, mcpServer.GetMCPServer())
	e.Any("/mcp", echo.WrapHandler(mcpHandlers))
	e.Any("/mcp/*", echo.WrapHandler(mcpHandlers))
	logger.Info("MCP protocol handlers mounted")

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdown:
		logger.Info("Shutdown signal received: %v", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error: %v", err)
			if err := httpServer.Close(); err != nil {
				logger.Error("Server close error: %v", err)
			}
		}

		logger.Info("Server stopped gracefully")
	}
	return nil
}

func initDatabase(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*pgxpool.Pool, error) {
	logger.Debug("Initializing database connection")

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
