package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	identityhandler "testadmin/internal/identity/handler"
	"testadmin/internal/identity/idnumber"
	identitymetrics "testadmin/internal/identity/metrics"
	identityservice "testadmin/internal/identity/service"
	"testadmin/internal/platform/config"
	"testadmin/internal/platform/database"
	"testadmin/internal/platform/health"
	"testadmin/internal/platform/httpserver"
	"testadmin/internal/platform/kafka"
	"testadmin/internal/platform/kafka/producer"
	"testadmin/internal/platform/logger"
	"testadmin/internal/platform/metrics"
	"testadmin/internal/platform/redis"
	"testadmin/internal/platform/tracer"
	"testadmin/internal/registration/events"
	registrationhandler "testadmin/internal/registration/handler"
	registrationmetrics "testadmin/internal/registration/metrics"
	registrationservice "testadmin/internal/registration/service"
	"testadmin/internal/registration/store/applicant"
	"testadmin/internal/registration/store/idempotency"
	httptransport "testadmin/internal/transport/http"
	"testadmin/migrations"
	"testadmin/pkg/platform/middleware/request"
)

const redisStatsInterval = 15 * time.Second

// main wires dependencies and runs the server until SIGINT or SIGTERM.
// Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	log.Info("initializing testadmin",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"postgres", cfg.Database.URL != "",
		"redis", cfg.Redis.URL != "",
		"kafka", len(cfg.Kafka.Brokers) > 0,
	)

	reg := metrics.NewRegistry()
	healthHandler := health.New(cfg.Environment)
	group, ctx := errgroup.WithContext(ctx)

	validator := idnumber.NewValidator(validatorOptions(cfg.Identity)...)
	identitySvc := identityservice.New(validator, log,
		identityservice.WithMetrics(identitymetrics.New(reg)),
		identityservice.WithTracer(tracer.NewOTel(otel.Tracer("testadmin/identity"))),
	)
	log.Info("id number validator configured",
		"century_pivot", int(validator.Pivot()),
		"foreign_min_length", validator.ForeignPolicy().MinLength,
		"foreign_max_length", validator.ForeignPolicy().MaxLength,
	)

	applicants, closeDB, err := newApplicantStore(ctx, cfg, reg, healthHandler, log)
	if err != nil {
		return err
	}
	defer closeDB()

	idem, closeRedis, err := newIdempotencyStore(ctx, cfg, reg, healthHandler, group, log)
	if err != nil {
		return err
	}
	defer closeRedis()

	regMetrics := registrationmetrics.New(reg)
	publisher, closeKafka, err := newPublisher(ctx, cfg, regMetrics, healthHandler, log)
	if err != nil {
		return err
	}
	defer closeKafka()

	registrationSvc := registrationservice.New(applicants, idem, identitySvc, log,
		registrationservice.WithPublisher(publisher),
		registrationservice.WithMetrics(regMetrics),
		registrationservice.WithTracer(tracer.NewOTel(otel.Tracer("testadmin/registration"))),
		registrationservice.WithMinAge(cfg.Registration.MinAge),
		registrationservice.WithIdempotencyTTL(cfg.Registration.IdempotencyTTL),
	)

	if cfg.AdminToken == "" {
		log.Warn("ADMIN_TOKEN not set; admin routes will answer 503")
	}
	router := httptransport.NewRouter(httptransport.Deps{
		Logger:         log,
		Identity:       identityhandler.New(identitySvc, log),
		Registration:   registrationhandler.New(registrationSvc, log),
		Health:         healthHandler,
		Registry:       reg,
		RequestMetrics: request.NewMetrics(reg),
		AdminToken:     cfg.AdminToken,
	})

	srv := httpserver.New(cfg.Addr, router)
	group.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		return httpserver.Run(ctx, srv)
	})

	return group.Wait()
}

func validatorOptions(cfg config.IdentityConfig) []idnumber.Option {
	opts := []idnumber.Option{
		idnumber.WithReferenceYear(time.Now().Year()),
		idnumber.WithForeignLengthBounds(cfg.ForeignMinLength, cfg.ForeignMaxLength),
	}
	if cfg.CenturyPivot != config.PivotDerivedFromClock {
		opts = append(opts, idnumber.WithCenturyPivot(cfg.CenturyPivot))
	}
	return opts
}

func newApplicantStore(ctx context.Context, cfg config.Server, reg prometheus.Registerer, h *health.Handler, log *slog.Logger) (registrationservice.ApplicantStore, func(), error) {
	pool, err := database.New(ctx, database.DefaultConfig(cfg.Database.URL))
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if pool == nil {
		log.Info("DATABASE_URL not set; using in-memory applicant store")
		return applicant.NewInMemory(), func() {}, nil
	}
	if err := database.Migrate(ctx, pool.DB(), migrations.FS); err != nil {
		_ = pool.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	if err := pool.RegisterMetrics(reg); err != nil {
		log.Warn("failed to register postgres pool metrics", "error", err)
	}
	h.RegisterCheck("postgres", pool.Health)
	return applicant.NewPostgres(pool.DB()), func() {
		if err := pool.Close(); err != nil {
			log.Warn("failed to close postgres pool", "error", err)
		}
	}, nil
}

func newIdempotencyStore(ctx context.Context, cfg config.Server, reg prometheus.Registerer, h *health.Handler, group *errgroup.Group, log *slog.Logger) (registrationservice.IdempotencyStore, func(), error) {
	client, err := redis.New(ctx, cfg.Redis, redis.NewPoolMetrics(reg))
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	if client == nil {
		log.Info("REDIS_URL not set; using in-memory idempotency store")
		return idempotency.NewInMemory(), func() {}, nil
	}
	h.RegisterCheck("redis", client.Health)
	group.Go(func() error {
		return client.RunPoolStatsLoop(ctx, redisStatsInterval)
	})
	return idempotency.NewRedis(client.Client), func() {
		if err := client.Close(); err != nil {
			log.Warn("failed to close redis client", "error", err)
		}
	}, nil
}

func newPublisher(ctx context.Context, cfg config.Server, m *registrationmetrics.Metrics, h *health.Handler, log *slog.Logger) (registrationservice.Publisher, func(), error) {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Info("KAFKA_BROKERS not set; applicant events are discarded")
		return events.Noop{}, func() {}, nil
	}
	topic := kafka.TopicConfig{Name: cfg.Kafka.ApplicantTopic, Partitions: 3, ReplicationFactor: 1}
	if err := kafka.EnsureTopics(ctx, cfg.Kafka.Brokers, topic); err != nil {
		// Brokers may enforce their own provisioning; publishing still works.
		log.Warn("failed to ensure kafka topic", "topic", topic.Name, "error", err)
	}

	prodCfg := kafka.DefaultProducerConfig(cfg.Kafka.Brokers)
	prodCfg.ClientID = "testadmin"
	prod, err := producer.New(prodCfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("create kafka producer: %w", err)
	}
	h.RegisterCheck("kafka", prod.Health)
	return events.NewKafka(prod, topic.Name, log, events.WithMetrics(m)), func() {
		if err := prod.Close(); err != nil {
			log.Warn("failed to close kafka producer", "error", err)
		}
	}, nil
}
