// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2023-2025 OTPGate

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
	slogformatter "github.com/samber/slog-formatter"

	dbm "github.com/otpgate/otpgate-api/db"
	"github.com/otpgate/otpgate-api/internal/auth/enrollment"
	"github.com/otpgate/otpgate-api/internal/auth/secret"
	"github.com/otpgate/otpgate-api/internal/checks"
	"github.com/otpgate/otpgate-api/internal/config"
	"github.com/otpgate/otpgate-api/internal/cron"
	"github.com/otpgate/otpgate-api/internal/globals"
	"github.com/otpgate/otpgate-api/internal/mail"
	"github.com/otpgate/otpgate-api/internal/telemetry"
	"github.com/otpgate/otpgate-api/models"
	"github.com/otpgate/otpgate-api/routes"
)

var (
	Version     = "0.0.1-dev"
	BuildDate   string
	BuildCommit string
)

func init() {
	configPath := flag.String("config", "", "path to configuration file")
	migrateUpOne := flag.Bool("migrate-up1", false, "run database migrations up by one and then exit")
	migrateDownOne := flag.Bool("migrate-down1", false, "run database migrations down by one and then exit")
	listMigrationFlag := flag.Bool("list-migrations", false, "list all SQL migrations and then exit")
	viewMigrationFlag := flag.String("view-migration", "", "view a specific SQL migration and then exit")
	versionFlag := flag.Bool("version", false, "print version and exit")

	flag.Parse()

	if *versionFlag {
		if BuildCommit == "" {
			BuildCommit = "unknown"
		}

		fmt.Printf("Version %s %s %s\n", Version, BuildCommit, BuildDate)
		os.Exit(0)
	}

	// Initialize configuration
	config.InitConfig(*configPath)

	if *listMigrationFlag {
		files, err := dbm.ListMigrations()
		if err != nil {
			globals.LogAndExit(err.Error(), 1)
		}
		globals.LogAndExit(strings.Join(files, "\n"), 0)
	}

	if *viewMigrationFlag != "" {
		sqlFile := dbm.ViewMigration(*viewMigrationFlag)
		globals.LogAndExit(string(sqlFile), 0)
	}

	if *migrateUpOne && *migrateDownOne {
		globals.LogAndExit("cannot run migrations for both up and down at the same time", 1)
	}

	mgrHandler, err := dbm.NewMigrationHandler()
	if err != nil {
		globals.LogAndExit(err.Error(), 1)
	}

	if *migrateUpOne {
		mgrHandler.MigrationStep(1)
	}

	if *migrateDownOne {
		mgrHandler.MigrationStep(-1)
	}

	// Run db migrations
	if config.DatabaseAutoMigration.GetBool() {
		if err := mgrHandler.RunMigrations(); err != nil {
			log.Fatalf("Migrations failed: %s", err)
		}
	}
}

func run() error {
	ctx := context.Background()

	// Structured logging with normalized error and timestamp attributes
	slog.SetDefault(slog.New(
		slogformatter.NewFormatterHandler(
			slogformatter.TimezoneConverter(time.UTC),
			slogformatter.ErrorFormatter("error"),
		)(slog.NewJSONHandler(os.Stdout, nil)),
	))

	// Connect to database
	pool, err := pgxpool.New(ctx, config.GetDbURI())
	if err != nil {
		log.Fatalf("failed to connect to the postgres database: %s", err)
	}
	defer pool.Close()
	db := models.New(pool)
	log.Info("Successfully connected to the postgres database")

	// Connect to redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", config.RedisHost.GetString(), config.RedisPort.GetString()),
		Password: config.RedisPassword.GetString(),
		DB:       config.RedisDatabase.GetInt(),
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect to the redis database: %s", err)
	}
	defer func(rdb *redis.Client) {
		if err := rdb.Close(); err != nil {
			log.Errorf("failed to close redis client: %s", err)
		}
	}(rdb)
	log.Info("Successfully connected to redis")

	// Create service
	service := models.NewService(db)

	// Initialize checks
	checks.InitChecks(ctx, service)

	// Mail workers
	if config.ServiceMailEnabled.GetBool() {
		mail.MailQueue = make(chan mail.Mail, 100)
		mailErr := make(chan error, 100)
		go mail.MailWorker(mail.MailQueue, mailErr, config.ServiceMailWorkers.GetInt())
		go func() {
			for err := range mailErr {
				log.Errorf("failed to send mail: %s", err)
			}
		}()
	}

	// Expired enrollment cleanup
	cronService, err := cron.NewService(cron.LoadServiceConfigFromViper(), nil)
	if err != nil {
		log.Fatalf("failed to create cron service: %s", err)
	}
	if cronService.IsEnabled() {
		enc, err := secret.NewEncryption()
		if err != nil {
			log.Warnf("seed encryption unavailable: %s", err)
		}
		cfg, err := enrollment.LoadConfigFromViper()
		if err != nil {
			log.Fatalf("invalid enrollment config: %s", err)
		}
		manager := enrollment.NewManager(service, enc, cfg)
		if err := cronService.SetupEnrollmentCleanup(manager, cron.LoadServiceConfigFromViper()); err != nil {
			log.Fatalf("failed to schedule enrollment cleanup: %s", err)
		}
		if err := cronService.Start(); err != nil {
			log.Fatalf("failed to start cron service: %s", err)
		}
		defer cronService.Stop()
	}

	// Telemetry (traces and metrics)
	telemetryProvider, err := telemetry.Initialize(ctx)
	if err != nil {
		log.Warnf("telemetry disabled: %s", err)
	}
	if telemetryProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := telemetryProvider.Shutdown(shutdownCtx); err != nil {
				log.Errorf("failed to shut down telemetry: %s", err)
			}
		}()
	}

	// Initialize echo and load routes
	e := routes.NewEcho()
	routeService := routes.NewRouteServiceWithTelemetry(e, service, pool, rdb, telemetryProvider)

	// Graceful shutdown on SIGINT/SIGTERM
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Errorf("failed to shut down server: %s", err)
		}
	}()

	return routes.LoadRoutes(routeService)
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
