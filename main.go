package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"event-ticketing/cmd"
	"event-ticketing/internal/data/memstore"
	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/notify"
	"event-ticketing/internal/wire"
	"event-ticketing/internal/worker"
	"event-ticketing/pkg/database"
	"event-ticketing/pkg/signedlink"
	"event-ticketing/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.String("db_driver", config.Database.Driver),
		zap.Bool("debug", config.App.Debug),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clock := utils.SystemClock()

	repos, closeRepos := openRepository(config, clock, logger)
	defer closeRepos()

	if config.Redis.URL != "" {
		opts, err := redis.ParseURL(config.Redis.URL)
		if err != nil {
			logger.Fatal("Invalid REDIS_URL", zap.Error(err))
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis unreachable, voucher cache will fall back to the database", zap.Error(err))
		}
		repos.Voucher = repository.NewCachedVoucherRepository(repos.Voucher, rdb, config.Redis.CacheTTL, logger)
		logger.Info("Voucher cache enabled")
	}

	var notifier notify.Notifier = notify.NewLogNotifier(logger)
	if config.Email.Host != "" {
		notifier = notify.NewMailNotifier(config.Email, logger)
		logger.Info("SMTP notifier enabled", zap.String("host", config.Email.Host))
	}

	var bus notify.EventBus = notify.NewLogBus(logger)
	if config.AMQP.URL != "" {
		amqpBus, err := notify.NewAMQPBus(config.AMQP.URL, config.AMQP.Exchange, logger)
		if err != nil {
			logger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer amqpBus.Close()
		bus = amqpBus
		logger.Info("RabbitMQ event bus enabled", zap.String("exchange", config.AMQP.Exchange))
	}

	dispatcher := notify.NewDispatcher(notifier, bus,
		config.Worker.NotifyWorkers, config.Worker.NotifyBuffer, config.Worker.DeliverTimeout, logger)
	dispatcher.Start()

	signer, err := signedlink.NewSigner(config.Link.Secret, config.Link.TTL, config.App.PublicBaseURL, clock)
	if err != nil {
		logger.Fatal("Failed to create link signer", zap.Error(err))
	}

	app := wire.Wiring(repos, signer, dispatcher, clock, logger)

	sweeper := worker.NewTransferSweeper(app.Service.Transfer, config.Worker.SweepInterval, logger)
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		sweeper.Run(ctx)
	}()

	if err := cmd.APIServer(ctx, app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
	}

	stop()
	<-sweepDone

	drainCtx, cancel := context.WithTimeout(context.Background(), config.Worker.DeliverTimeout)
	defer cancel()
	if err := dispatcher.Stop(drainCtx); err != nil {
		logger.Warn("Dispatcher did not drain", zap.Error(err))
	}

	logger.Info("Shutdown complete")
}

// openRepository returns repositories for the configured driver and a close func.
func openRepository(config *utils.Config, clock utils.Clock, logger *zap.Logger) (*repository.Repository, func()) {
	if config.Database.Driver == "memory" {
		store := memstore.New(clock)
		store.SeedDemo(logger)
		logger.Warn("Using in-memory store, data is lost on exit")
		return store.Repository(), func() {}
	}

	if config.Database.AutoMigrate {
		if err := database.Migrate(config.Database, logger); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	logger.Info("Database connected successfully")

	return repository.NewRepository(db, logger), db.Close
}
