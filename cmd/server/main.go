package main // Entry point package

import (
	"context"       // shutdown and startup deadlines
	"database/sql"  // DB handle returned by openDB
	"log"           // Logging library
	"net/http"      // ErrServerClosed
	"os"            // signal plumbing
	"os/signal"     // graceful shutdown on SIGINT/SIGTERM
	"strings"       // CORS origin list
	"syscall"       // SIGTERM
	"time"          // startup and shutdown timeouts

	"github.com/labstack/echo/v4"                   // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware" // Echo's stock middleware

	"github.com/iliyamo/exam-seat-allocation/internal/config"     // Internal config loader
	"github.com/iliyamo/exam-seat-allocation/internal/database"   // DB open and migrations
	"github.com/iliyamo/exam-seat-allocation/internal/handler"    // HTTP handlers
	"github.com/iliyamo/exam-seat-allocation/internal/middleware" // auth, cache and rate limit
	"github.com/iliyamo/exam-seat-allocation/internal/model"      // identity modes
	"github.com/iliyamo/exam-seat-allocation/internal/queue"      // RabbitMQ events
	"github.com/iliyamo/exam-seat-allocation/internal/repository" // seat store
	"github.com/iliyamo/exam-seat-allocation/internal/router"     // Internal router setup
	"github.com/iliyamo/exam-seat-allocation/internal/service"    // reconciliation and lookup
)

func main() {
	cfg := config.Load() // Load environment config

	dialect, err := database.ParseDialect(cfg.DBDriver)
	if err != nil {
		log.Fatal(err)
	}
	db, err := openDB(cfg, dialect)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if err := database.Migrate(startCtx, db, dialect); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	mode, ok := model.ParseIdentityMode(cfg.IdentityMode)
	if !ok {
		log.Fatalf("unknown IDENTITY_MODE %q (want roll_branch or roll_branch_year)", cfg.IdentityMode)
	}
	seats := repository.NewSeatRepo(db, dialect, mode)
	if err := seats.EnsureIdentity(startCtx, cfg.IdentityMigrate); err != nil {
		log.Fatalf("identity: %v", err)
	}
	cancel()

	rolls, err := service.NewRollFormatter(cfg.RollFormat, cfg.RollPadWidth)
	if err != nil {
		log.Fatal(err)
	}

	// A nil *Publisher must not be stored in the interface or the service
	// would see a non-nil publisher.
	var events service.EventPublisher
	brokerURL := queue.BrokerURL()
	if p := queue.NewPublisher(brokerURL); p != nil {
		events = p
	}
	svc := service.NewSeats(seats, rolls, events, cfg.MaxRangeSize)

	if cfg.AuditConsumer && brokerURL != "" {
		go func() {
			if err := queue.StartAuditConsumer(ctx, brokerURL, cfg.AuditLogPath); err != nil && ctx.Err() == nil {
				log.Printf("audit-consumer: stopped: %v", err)
			}
		}()
	}

	rdb := config.NewRedisClient()
	if rdb != nil {
		defer rdb.Close()
	}
	cacheCfg := config.LoadCacheConfig()
	rlCfg := config.LoadRateLimitConfig()

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()
	e.Use(echomw.RequestID())
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: splitOrigins(cfg.CORSAllowOrigins),
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization, middleware.AdminKeyHeader},
	}))

	router.RegisterRoutes(e) // Register application routes
	router.RegisterSeats(e,
		handler.NewSeatHandler(svc, handler.StatusFlags{
			DBConfigured:        cfg.DBConfigured(),
			AdminAuthConfigured: cfg.AdminAuthConfigured(),
			BrokerConfigured:    brokerURL != "",
		}, cacheCfg, rdb),
		router.SeatGuards{
			RateLimit: middleware.NewTokenBucket(rlCfg, rdb),
			Cache:     middleware.NewRedisCache(cacheCfg, rdb),
			Admin:     middleware.AdminAuth(cfg.AdminAPIKey, cfg.JWTSecret),
		})
	router.RegisterAdmin(e, handler.NewAuthHandler(cfg), cfg.JWTSecret)

	addr := ":" + cfg.Port                                                                    // Address string with port
	log.Printf("listening on %s (env=%s, db=%s, identity=%s)", addr, cfg.Env, dialect, mode) // Print startup info

	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed { // Start HTTP server
			log.Fatal(err) // Log and exit if server fails
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

func openDB(cfg config.Config, d database.Dialect) (*sql.DB, error) {
	if d == database.SQLite {
		return database.OpenSQLite(cfg.SQLitePath)
	}
	return database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		out = []string{"*"}
	}
	return out
}
