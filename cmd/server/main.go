package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/db"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/administrator"
	adminhandler "github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/administrator/handler"
	adminmetrics "github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/administrator/metrics"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/athlete"
	athletehandler "github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/athlete/handler"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/audit"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/coach"
	coachhandler "github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/coach/handler"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/enrollment"
	enrollmenthandler "github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/enrollment/handler"
	enrollmentmetrics "github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/enrollment/metrics"
	httpapi "github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/http"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/person/cache"
	personclient "github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/person/client"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/person/merge"
	personmetrics "github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/person/metrics"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/person/resolver"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/person/token"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/platform/config"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/platform/httpserver"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/platform/kafka/consumer"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/platform/kafka/producer"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/platform/logger"
	platformmetrics "github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/platform/metrics"
	platformredis "github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/platform/redis"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/studentvol"
	studentvolhandler "github.com/AnderssonLeandro09/baloncesto-backend-sub000/internal/studentvol/handler"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/platform/middleware/auth"
	"github.com/AnderssonLeandro09/baloncesto-backend-sub000/pkg/platform/tx"
)

// main wires the dependency graph and owns the process lifecycle: storage,
// the user module client stack, the audit pipeline, and the HTTP surface.
// Business logic lives in the internal service packages.
func main() {
	// .env keeps local runs aligned with docker-compose; absence is fine.
	_ = godotenv.Load()

	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	// Background workers hang off this context. It is cancelled only after
	// the HTTP server has drained, so in-flight requests can still record
	// audit events.
	ctx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	database, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		fatal(log, "database unavailable", err)
	}
	defer database.Close()

	if err := db.Apply(ctx, database); err != nil {
		fatal(log, "schema migration failed", err)
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		// The snapshot cache degrades to request scope without Redis.
		log.Warn("redis unavailable, shared snapshot cache disabled", "error", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	userClient, err := personclient.New(cfg.UserModule.BaseURL,
		personclient.WithTimeout(cfg.UserModule.RequestTimeout),
		personclient.WithLogger(log),
	)
	if err != nil {
		fatal(log, "user module client", err)
	}

	fetcherOpts := []cache.Option{cache.WithLogger(log)}
	if redisClient != nil {
		fetcherOpts = append(fetcherOpts, cache.WithSharedStore(cache.NewRedisStore(redisClient), cfg.Redis.SnapshotTTL))
	}
	snapshots, err := cache.NewCachingFetcher(userClient, fetcherOpts...)
	if err != nil {
		fatal(log, "snapshot cache", err)
	}

	personMx := personmetrics.New()
	merger, err := merge.New(snapshots, merge.WithLogger(log), merge.WithMetrics(personMx))
	if err != nil {
		fatal(log, "snapshot merger", err)
	}

	ids, err := resolver.New(userClient, resolver.WithLogger(log), resolver.WithMetrics(personMx))
	if err != nil {
		fatal(log, "identity resolver", err)
	}

	var tokens *token.Provider
	if cfg.UserModule.AdminEmail != "" && cfg.UserModule.AdminPassword != "" {
		tokens, err = token.New(userClient, cfg.UserModule.AdminEmail, cfg.UserModule.AdminPassword, token.WithLogger(log))
		if err != nil {
			fatal(log, "user module service account", err)
		}
	}

	recorder := audit.NewRecorder(audit.WithLogger(log))
	auditWorker := audit.NewWorker(audit.NewPostgresStore(database), recorder.Inbox(), log)

	var background sync.WaitGroup
	background.Add(1)
	go func() {
		defer background.Done()
		if err := auditWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("audit worker stopped", "error", err)
		}
	}()

	if len(cfg.Kafka.Brokers) > 0 {
		auditProducer, err := producer.New(cfg.Kafka.Brokers, log)
		if err != nil {
			fatal(log, "kafka producer", err)
		}
		defer auditProducer.Close()

		if err := auditProducer.EnsureTopics(ctx, audit.Topic); err != nil {
			fatal(log, "kafka topics", err)
		}

		relay := audit.NewRelay(database, auditProducer, log, audit.WithRelayInterval(cfg.Kafka.PollInterval))
		background.Add(1)
		go func() {
			defer background.Done()
			if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("audit relay stopped", "error", err)
			}
		}()

		auditConsumer, err := consumer.New(cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroup, []string{audit.Topic}, audit.NewMaterializer(database, log), log)
		if err != nil {
			fatal(log, "kafka consumer", err)
		}
		defer auditConsumer.Close()
		background.Add(1)
		go func() {
			defer background.Done()
			if err := auditConsumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("audit consumer stopped", "error", err)
			}
		}()
	} else {
		log.Info("kafka disabled, audit events accumulate in the outbox")
	}

	admins, err := administrator.New(administrator.NewPostgresStore(database), ids, merger, userClient,
		administrator.WithLogger(log),
		administrator.WithMetrics(adminmetrics.New()),
		administrator.WithAudit(recorder),
	)
	if err != nil {
		fatal(log, "administrator service", err)
	}

	coaches, err := coach.New(coach.NewPostgresStore(database), ids, merger, userClient,
		coach.WithLogger(log),
		coach.WithAudit(recorder),
	)
	if err != nil {
		fatal(log, "coach service", err)
	}

	volunteers, err := studentvol.New(studentvol.NewPostgresStore(database), ids, merger, userClient,
		studentvol.WithLogger(log),
		studentvol.WithAudit(recorder),
	)
	if err != nil {
		fatal(log, "student volunteer service", err)
	}

	athleteStore := athlete.NewPostgresStore(database)
	athletes, err := athlete.New(athleteStore, merger, athlete.WithLogger(log))
	if err != nil {
		fatal(log, "athlete service", err)
	}

	enrollments, err := enrollment.New(athleteStore, enrollment.NewPostgresStore(database), ids, merger, userClient, tx.NewRunner(database),
		enrollment.WithLogger(log),
		enrollment.WithAudit(recorder),
		enrollment.WithMetrics(enrollmentmetrics.New()),
	)
	if err != nil {
		fatal(log, "enrollment service", err)
	}

	// A nil *Client inside a non-nil interface would defeat the nil checks
	// in the health handler, so only wrap what actually exists.
	var cachePinger httpapi.Pinger
	if redisClient != nil {
		cachePinger = redisClient
	}
	var upstream httpapi.TokenSource
	if tokens != nil {
		upstream = tokens
	}

	router := httpapi.New(httpapi.Deps{
		Logger:         log,
		Validator:      auth.NewValidator(cfg.Server.JWTSigningKey),
		HTTPMetrics:    platformmetrics.NewHTTP(),
		Health:         httpapi.NewHealth(database, cachePinger, upstream),
		Administrators: adminhandler.New(admins, log),
		Coaches:        coachhandler.New(coaches, log),
		Volunteers:     studentvolhandler.New(volunteers, log),
		Athletes:       athletehandler.New(athletes, log),
		Enrollments:    enrollmenthandler.New(enrollments, log),
	})

	srv := httpserver.New(cfg.Server.Addr, router)

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		fatal(log, "server error", err)
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}

	// Requests are drained; now stop the audit worker, relay, and consumer.
	stopWorkers()
	background.Wait()
}

// openDatabase connects, applies the pool limits, and verifies connectivity
// before the rest of the graph wires up.
func openDatabase(ctx context.Context, cfg config.Database) (*sql.DB, error) {
	database, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	database.SetMaxOpenConns(cfg.MaxOpenConns)
	database.SetMaxIdleConns(cfg.MaxIdleConns)
	database.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := database.PingContext(pingCtx); err != nil {
		database.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return database, nil
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}
