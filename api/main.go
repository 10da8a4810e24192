package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	_ "github.com/rogerio-castellano/stock-notifier/docs"
	"github.com/rogerio-castellano/stock-notifier/internal/auth"
	"github.com/rogerio-castellano/stock-notifier/internal/billing"
	"github.com/rogerio-castellano/stock-notifier/internal/config"
	"github.com/rogerio-castellano/stock-notifier/internal/db"
	"github.com/rogerio-castellano/stock-notifier/internal/events"
	api "github.com/rogerio-castellano/stock-notifier/internal/http"
	"github.com/rogerio-castellano/stock-notifier/internal/http/handlers"
	rl "github.com/rogerio-castellano/stock-notifier/internal/http/rate_limiter"
	"github.com/rogerio-castellano/stock-notifier/internal/lastseen"
	"github.com/rogerio-castellano/stock-notifier/internal/logging"
	"github.com/rogerio-castellano/stock-notifier/internal/metrics"
	"github.com/rogerio-castellano/stock-notifier/internal/notify"
	"github.com/rogerio-castellano/stock-notifier/internal/redissvc"
	"github.com/rogerio-castellano/stock-notifier/internal/repo"
	"github.com/rogerio-castellano/stock-notifier/internal/scheduler"
	"github.com/rogerio-castellano/stock-notifier/internal/sms"
)

type repositories struct {
	products      repo.ProductRepository
	movements     repo.MovementRepository
	users         repo.UserRepository
	notifications repo.NotificationRepository
	bills         repo.BillRepository
	metrics       repo.MetricsRepository
}

func postgresRepositories(ctx context.Context, dsn string) (repositories, func(), error) {
	database, err := db.Connect(ctx, dsn)
	if err != nil {
		return repositories{}, nil, err
	}
	if err := db.EnsureSchema(ctx, database); err != nil {
		database.Close()
		return repositories{}, nil, err
	}
	return repositories{
		products:      repo.NewPostgresProductRepository(database),
		movements:     repo.NewPostgresMovementRepository(database),
		users:         repo.NewPostgresUserRepository(database),
		notifications: repo.NewPostgresNotificationRepository(database),
		bills:         repo.NewPostgresBillRepository(database),
		metrics:       repo.NewPostgresMetricsRepository(database),
	}, func() { database.Close() }, nil
}

func memoryRepositories() repositories {
	products := repo.NewInMemoryProductRepository()
	notifications := repo.NewInMemoryNotificationRepository()
	bills := repo.NewInMemoryBillRepository()
	m := repo.NewInMemoryMetricsRepository()
	m.SetRepositories(products, bills, notifications)
	return repositories{
		products:      products,
		movements:     repo.NewInMemoryMovementRepository(),
		users:         repo.NewInMemoryUserRepository(),
		notifications: notifications,
		bills:         bills,
		metrics:       m,
	}
}

// @title Stock Notifier API
// @version 1.0
// @description Inventory, billing and SMS expiry/reorder notifications.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("could not load configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel)
	auth.SetSecret(cfg.JWTSecret)
	rl.Configure(cfg.RateLimitRPS, cfg.RateLimitBurst)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repos := memoryRepositories()
	if cfg.DatabaseURL != "" {
		var closeDB func()
		repos, closeDB, err = postgresRepositories(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("could not connect to database", "error", err)
			os.Exit(1)
		}
		defer closeDB()
	} else {
		slog.Warn("DATABASE_URL not set, using in-memory storage")
	}

	var throttle, activity lastseen.Store = lastseen.NewMemoryStore(), lastseen.NewMemoryStore()
	if cfg.RedisAddr != "" {
		redisService, err := redissvc.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			slog.Error("could not connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisService.Close()
		throttle = lastseen.NewRedisStore(redisService.Rdb(), lastseen.DefaultTTL)
		activity = lastseen.NewRedisStore(redisService.Rdb(), 2*billing.SweepSuppression)
	}

	var sender sms.Sender = sms.Disabled{}
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" && cfg.TwilioPhoneNumber != "" {
		sender = sms.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioBaseURL)
	} else {
		slog.Warn("twilio credentials missing, notifications will be recorded without SMS")
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaNotificationTopic, "stock-notifier", 1024)
		kp.Start(context.Background())
		defer kp.Close()
		publisher = kp
	}

	dispatcher := notify.NewDispatcher(notify.Deps{
		Products:      repos.products,
		Notifications: repos.notifications,
		Users:         repos.users,
		SMS:           sender,
		Throttle:      throttle,
		Events:        publisher,
		Metrics:       metrics.NewSweeps(prometheus.DefaultRegisterer),
		From:          cfg.TwilioPhoneNumber,
	})
	billingService := billing.NewService(billing.Deps{
		Bills:     repos.bills,
		Products:  repos.products,
		Movements: repos.movements,
		Reorder:   dispatcher,
		Activity:  activity,
	})

	handlers.SetProductRepo(repos.products)
	handlers.SetMovementRepo(repos.movements)
	handlers.SetUserRepo(repos.users)
	handlers.SetMetricsRepo(repos.metrics)
	handlers.SetDispatcher(dispatcher)
	handlers.SetBillingService(billingService)

	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		scheduler.New(dispatcher, billingService, cfg.NotifyInterval).Start(ctx)
	}()
	go rl.StartVisitorCleanupLoop(ctx)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(prometheus.DefaultGatherer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("graceful shutdown failed", "error", err)
	}
	// Stop the sweeps before the deferred publisher close.
	cancel()
	<-schedulerDone
}
