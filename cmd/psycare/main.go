package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/psycare/psycare/auth"
	"github.com/psycare/psycare/internal/config"
	"github.com/psycare/psycare/internal/db"
	"github.com/psycare/psycare/internal/policy"
	"github.com/psycare/psycare/internal/ratelimit"
	"github.com/psycare/psycare/internal/server"
	"github.com/psycare/psycare/internal/services"
	"github.com/psycare/psycare/internal/store"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"gorm.io/gorm"
)

func main() {
	// Load environment variables from .env file
	_ = godotenv.Load()

	root := &cli.Command{
		Name:  "psycare",
		Usage: "Patient and therapist companion server",
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			createTherapistCommand(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runServer(ctx)
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		logrus.WithError(err).Fatal("psycare failed")
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP server",
		Action: func(ctx context.Context, c *cli.Command) error {
			return runServer(ctx)
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply database migrations and exit",
		Action: func(ctx context.Context, c *cli.Command) error {
			_, conn, err := bootstrap()
			if err != nil {
				return err
			}
			if err := db.Migrate(conn); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			logrus.Info("migrations completed")
			return nil
		},
	}
}

func createTherapistCommand() *cli.Command {
	return &cli.Command{
		Name:  "create-therapist",
		Usage: "Provision a therapist account",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "name", Required: true, Usage: "display name"},
			&cli.StringFlag{Name: "password", Required: true},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, conn, err := bootstrap()
			if err != nil {
				return err
			}
			if cfg.App.Migrations {
				if err := db.Migrate(conn); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
			}
			s := store.New(conn)
			svc := services.New(s, policy.NewAccess(s), services.Options{})
			u, err := svc.Accounts.CreateTherapist(ctx, c.String("email"), c.String("name"), c.String("password"))
			if err != nil {
				var se *services.Error
				if errors.As(err, &se) && se.Fields != nil {
					return fmt.Errorf("create therapist: %s %v", se.Reason, se.Fields)
				}
				return fmt.Errorf("create therapist: %w", err)
			}
			fmt.Printf("therapist %s created (id %d)\n", u.Email, u.ID)
			return nil
		},
	}
}

// bootstrap loads configuration, sets up logging and opens the database.
func bootstrap() (*config.Config, *gorm.DB, error) {
	cfg := config.Load()
	setupLogging(cfg.App)
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	conn, err := db.Open(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return cfg, conn, nil
}

func setupLogging(app config.AppConfig) {
	if app.Production() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(app.LogLevel)
	if err != nil {
		logrus.WithField("level", app.LogLevel).Warn("unknown LOG_LEVEL, using info")
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

func runServer(ctx context.Context) error {
	cfg, conn, err := bootstrap()
	if err != nil {
		return err
	}

	if cfg.App.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.App.SentryDSN, Environment: cfg.App.Env}); err != nil {
			logrus.WithError(err).Warn("sentry disabled")
		}
		defer sentry.Flush(2 * time.Second)
	}

	// Run migrations on startup if enabled
	if cfg.App.Migrations {
		if err := db.Migrate(conn); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logrus.Info("migrations completed")
	}

	limiter := ratelimit.New(cfg.Login, cfg.Redis)
	if rl, ok := limiter.(*ratelimit.RedisLimiter); ok {
		defer rl.Close()
	}

	sessions := auth.NewSessions(cfg.Session.Secret, cfg.Session.TTL())
	sessions.SetSecureCookie(cfg.App.Production())

	app := server.NewApp(server.Deps{
		Store:    store.New(conn),
		Sessions: sessions,
		Limiter:  limiter,
		Options:  services.Options{AllowTherapistRegister: cfg.App.AllowTherapistRegister},
	})

	// Create server with config timeouts
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.WithFields(logrus.Fields{"port": cfg.Server.Port, "env": cfg.App.Env, "driver": cfg.Database.Driver}).Info("server starting")
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		logrus.WithField("signal", sig.String()).Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logrus.Info("server stopped gracefully")
	return nil
}
