package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/project-sy789/coffeeorder-sub000/internal/api"
	"github.com/project-sy789/coffeeorder-sub000/internal/config"
	"github.com/project-sy789/coffeeorder-sub000/internal/database"
	"github.com/project-sy789/coffeeorder-sub000/internal/logger"
	"github.com/project-sy789/coffeeorder-sub000/internal/migrations"
	"github.com/project-sy789/coffeeorder-sub000/internal/pos"
	"github.com/project-sy789/coffeeorder-sub000/internal/realtime"
	"github.com/project-sy789/coffeeorder-sub000/internal/seed"
	"github.com/project-sy789/coffeeorder-sub000/internal/store"
)

const hubBuffer = 256

var (
	serveNoMigrate bool
	serveDemo      bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the POS API server",
	Long:  "Opens the database, applies pending migrations, seeds an empty database and serves the REST API and event stream until interrupted",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(false)
		exitOnError(err)

		lg := logger.New("coffeeorder", cfg.LogLevel)
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := serve(ctx, cfg, lg); err != nil {
			lg.Error("server_failed", err, nil)
			os.Exit(1)
		}
	},
}

func serve(ctx context.Context, cfg *config.Config, lg *logger.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	db, err := database.Open(ctx, cfg, lg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	memory := cfg.IsMemory()
	if memory {
		lg.Warn("memory_database", map[string]any{"detail": "data is lost when the process exits"})
	}
	// An in-memory database starts empty, so it is always migrated.
	if !serveNoMigrate || memory {
		n, err := migrations.Apply(ctx, db, cfg.MigrationTable)
		if err != nil {
			return err
		}
		lg.Info("migrations_applied", map[string]any{"count": n})
	}

	st := store.New(db)
	res, err := seed.Run(ctx, st, seed.SeedConfig{
		AdminUsername: cfg.Admin.Username,
		AdminPassword: cfg.Admin.Password,
		DemoMenu:      serveDemo || memory,
	})
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if res.AdminCreated {
		lg.Info("admin_created", map[string]any{"username": cfg.Admin.Username})
	}

	hub := realtime.NewHub(lg, hubBuffer)
	defer hub.Close()
	if cfg.RabbitMQ.URL != "" {
		sink, err := realtime.DialAMQP(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			return err
		}
		hub.AddSink(sink)
		lg.Info("rabbitmq_connected", map[string]any{"exchange": cfg.RabbitMQ.Exchange})
	}

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	svc := pos.NewService(st, hub, loc, lg)
	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: api.NewRouter(api.Options{
			Store:          st,
			Service:        svc,
			Hub:            hub,
			Logger:         lg,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			Memory:         memory,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          lg.StdLog("http_server_error"),
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info("server_started", map[string]any{"addr": cfg.Server.Addr, "timezone": cfg.Timezone})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	lg.Info("server_stopping", nil)
	// Event streams only end when their subscription closes.
	hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	lg.Info("server_stopped", nil)
	return nil
}

func init() {
	serveCmd.Flags().BoolVar(&serveNoMigrate, "no-migrate", false, "do not apply pending migrations on start")
	serveCmd.Flags().BoolVar(&serveDemo, "demo", false, "add the sample menu when the catalog is empty")
	rootCmd.AddCommand(serveCmd)
}
