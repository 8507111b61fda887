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
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/medkit/medkit/internal/config"
	"github.com/medkit/medkit/internal/domain/drug"
	"github.com/medkit/medkit/internal/domain/patient"
	"github.com/medkit/medkit/internal/domain/scheduling"
	"github.com/medkit/medkit/internal/domain/triage"
	"github.com/medkit/medkit/internal/platform/auth"
	"github.com/medkit/medkit/internal/platform/db"
	"github.com/medkit/medkit/internal/platform/middleware"
	"github.com/medkit/medkit/internal/platform/seed"
	"github.com/medkit/medkit/internal/registry"
	"github.com/medkit/medkit/internal/transport/httpapi"
	"github.com/medkit/medkit/internal/transport/mcp"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "medkit-server",
		Short: "Clinical tool demonstration server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(mcpCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server (sse or stdio per MCP_TRANSPORT)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCP()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo dataset (idempotent)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := seed.New(pool).Run(ctx); err != nil {
				return fmt.Errorf("seed failed: %w", err)
			}
			fmt.Println("Demo data seeded.")
			return nil
		},
	}
}

type services struct {
	patient    *patient.Service
	drug       *drug.Service
	triage     *triage.Service
	scheduling *scheduling.Service
}

// buildRegistry wires the domain services and registers the twelve tools.
func buildRegistry(pool *pgxpool.Pool) (*registry.Registry, *services) {
	patientSvc := patient.NewService(
		patient.NewPatientRepoPG(pool),
		patient.NewVitalsRepoPG(pool),
		patient.NewProfileRepoPG(pool),
		patient.NewLinkRepoPG(pool),
	)
	drugSvc := drug.NewService(
		drug.NewDrugRepoPG(pool),
		drug.NewInteractionRepoPG(pool),
		drug.NewAlternativeRepoPG(pool),
		patientSvc,
	)
	triageSvc := triage.NewService(triage.NewDocRepoPG(pool))
	schedulingSvc := scheduling.NewService(
		scheduling.NewSlotRepoPG(pool),
		scheduling.NewAppointmentRepoPG(pool),
		patientSvc,
	)

	reg := registry.New()
	patientSvc.RegisterTools(reg)
	drugSvc.RegisterTools(reg)
	triageSvc.RegisterTools(reg)
	schedulingSvc.RegisterTools(reg)

	return reg, &services{
		patient:    patientSvc,
		drug:       drugSvc,
		triage:     triageSvc,
		scheduling: schedulingSvc,
	}
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	reg, svcs := buildRegistry(pool)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// The tool shim and health endpoints stay open; the REST API group is
	// authenticated and rate limited.
	shim := httpapi.NewShim(reg)
	shim.RegisterRoutes(e)
	e.GET("/health/db", db.HealthHandler(pool))

	apiV1 := e.Group("/api/v1")
	switch cfg.ResolvedAuthMode() {
	case auth.ModeDev:
		apiV1.Use(auth.DevMiddleware())
	case auth.ModeJWT:
		apiV1.Use(auth.JWTMiddleware(auth.JWTConfig{Secret: cfg.JWTSecret}))
	default:
		apiV1.Use(auth.BearerMiddleware(cfg.BearerToken))
	}

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	patient.NewHandler(svcs.patient).RegisterRoutes(apiV1)
	drug.NewHandler(svcs.drug).RegisterRoutes(apiV1)
	triage.NewHandler(svcs.triage).RegisterRoutes(apiV1)
	scheduling.NewHandler(svcs.scheduling).RegisterRoutes(apiV1)

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		var err error
		if cfg.TLSEnabled {
			err = e.StartTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = e.Start(addr)
		}
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

func runMCP() error {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	reg, _ := buildRegistry(pool)
	srv := mcp.NewServer("medkit", reg)

	if cfg.MCPTransport == "stdio" {
		return srv.RunStdio()
	}
	return srv.RunSSE(cfg.MCPHost + ":" + cfg.MCPPort)
}
