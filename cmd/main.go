package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/YelzhanWeb/restaurant/internal/adapter/logger"
	"github.com/YelzhanWeb/restaurant/internal/adapter/memory"
	"github.com/YelzhanWeb/restaurant/internal/adapter/postgres"
	"github.com/YelzhanWeb/restaurant/internal/adapter/rabbitmq"
	"github.com/YelzhanWeb/restaurant/internal/adapter/tracing"
	"github.com/YelzhanWeb/restaurant/internal/app/order"
	"github.com/YelzhanWeb/restaurant/internal/app/registry"
	"github.com/YelzhanWeb/restaurant/internal/app/reservation"
	"github.com/YelzhanWeb/restaurant/internal/app/timeline"
	"github.com/YelzhanWeb/restaurant/internal/config"
	"github.com/YelzhanWeb/restaurant/internal/domain"
	"github.com/YelzhanWeb/restaurant/internal/interfaces"

	amqpAdapter "github.com/YelzhanWeb/restaurant/internal/adapter/amqp"
	httpAdapter "github.com/YelzhanWeb/restaurant/internal/adapter/http"

	"github.com/redis/go-redis/v9"
)

type repositories struct {
	tables       interfaces.TableRepository
	reservations interfaces.ReservationRepository
	orders       interfaces.OrderRepository
	timeline     interfaces.TimelineRepository
}

func main() {
	mode := flag.String("mode", "api", "Service mode: api, notification-subscriber, migrate")
	configPath := flag.String("config", "config.yaml", "Path to the YAML config file")
	port := flag.Int("port", 0, "HTTP port (overrides app.port)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.App.Port = *port
	}

	lgr := logger.New(*mode, cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, *mode)
	if err != nil {
		lgr.Error("tracing_init_failed", "Failed to initialise tracing", "startup", nil, err)
		os.Exit(1)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(flushCtx)
	}()

	switch *mode {
	case "api":
		err = runAPI(ctx, cfg, lgr)
	case "notification-subscriber":
		err = runNotificationSubscriber(ctx, cfg, lgr)
	case "migrate":
		err = runMigrate(ctx, cfg, lgr)
	default:
		err = fmt.Errorf("invalid mode: %s", *mode)
	}
	if err != nil {
		lgr.Error("service_failed", "Service stopped with error", "runtime", map[string]interface{}{
			"mode": *mode,
		}, err)
		os.Exit(1)
	}
}

func runAPI(ctx context.Context, cfg *config.Config, lgr logger.Logger) error {
	loc, err := cfg.App.Location()
	if err != nil {
		return err
	}
	taxRate, err := cfg.Orders.TaxRateDecimal()
	if err != nil {
		return err
	}

	repos, closeStore, err := openStore(ctx, cfg, lgr)
	if err != nil {
		return err
	}
	defer closeStore()

	var publisher interfaces.MessagePublisher = interfaces.NopPublisher{}
	if cfg.RabbitMQ.Enabled() {
		mqConn, err := rabbitmq.Connect(cfg.RabbitMQ)
		if err != nil {
			return err
		}
		defer mqConn.Close()
		publisher = rabbitmq.NewPublisher(mqConn)

		lgr.Info("rabbitmq_connected", "Connected to RabbitMQ", "startup", map[string]interface{}{
			"host": cfg.RabbitMQ.Host,
		})
	}

	var idem httpAdapter.IdempotencyStore
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			lgr.Error("redis_unavailable", "Redis ping failed, idempotency checks will be skipped until it recovers", "startup", nil, err)
		}
		idem = httpAdapter.NewRedisIdempotencyStore(rdb, time.Duration(cfg.Redis.IdempotencyTTLSeconds)*time.Second)
	}

	services := httpAdapter.Services{
		Registry:     registry.NewService(repos.tables, lgr, loc),
		Reservations: reservation.NewService(repos.tables, repos.reservations, publisher, lgr),
		Orders: order.NewService(repos.orders, publisher, lgr, order.Pricing{
			TaxRate:     taxRate,
			DeliveryFee: domain.FlatDeliveryFee(cfg.Orders.DeliveryFeeCents),
		}),
		Timeline: timeline.NewService(repos.timeline, lgr),
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      httpAdapter.NewRouter(services, idem, lgr),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	lgr.Info("service_started", fmt.Sprintf("Restaurant API started on port %d", cfg.App.Port), "startup", map[string]interface{}{
		"port":  cfg.App.Port,
		"store": cfg.App.Store,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	lgr.Info("shutdown_initiated", "Shutting down Restaurant API", "shutdown", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.Config, lgr logger.Logger) (repositories, func(), error) {
	if cfg.App.Store == "memory" {
		store := memory.NewStore()
		lgr.Info("store_selected", "Using in-memory store", "startup", nil)
		return repositories{
			tables:       store.Tables(),
			reservations: store.Reservations(),
			orders:       store.Orders(),
			timeline:     store.Timeline(),
		}, func() {}, nil
	}

	db, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		return repositories{}, nil, err
	}

	lgr.Info("db_connected", "Connected to PostgreSQL database", "startup", map[string]interface{}{
		"host": cfg.Database.Host,
		"db":   cfg.Database.Database,
	})

	return repositories{
		tables:       postgres.NewTableRepository(db),
		reservations: postgres.NewReservationRepository(db),
		orders:       postgres.NewOrderRepository(db),
		timeline:     postgres.NewTimelineRepository(db),
	}, db.Close, nil
}

func runNotificationSubscriber(ctx context.Context, cfg *config.Config, lgr logger.Logger) error {
	if !cfg.RabbitMQ.Enabled() {
		return fmt.Errorf("rabbitmq.host is required for notification-subscriber mode")
	}

	mqConn, err := rabbitmq.Connect(cfg.RabbitMQ)
	if err != nil {
		return err
	}
	defer mqConn.Close()

	consumer := rabbitmq.NewConsumer(mqConn, lgr)
	handler := amqpAdapter.NewNotificationHandler(lgr, os.Stdout)

	lgr.Info("service_started", "Notification Subscriber started", "startup", nil)

	err = consumer.ConsumeNotifications(ctx, handler.HandleNotification)
	lgr.Info("shutdown_initiated", "Shutting down Notification Subscriber", "shutdown", nil)
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func runMigrate(ctx context.Context, cfg *config.Config, lgr logger.Logger) error {
	db, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}
	lgr.Info("migrations_applied", "Database schema is up to date", "startup", map[string]interface{}{
		"db": cfg.Database.Database,
	})
	return nil
}
