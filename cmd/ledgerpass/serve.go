package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"ledgerpass/internal/audit"
	auditkafka "ledgerpass/internal/audit/kafka"
	auditpg "ledgerpass/internal/audit/postgres"
	jwttoken "ledgerpass/internal/jwt_token"
	"ledgerpass/internal/ledger"
	"ledgerpass/internal/platform/config"
	"ledgerpass/internal/platform/httpserver"
	platformmetrics "ledgerpass/internal/platform/metrics"
	"ledgerpass/internal/platform/postgres"
	platformredis "ledgerpass/internal/platform/redis"
	"ledgerpass/internal/registry/handler"
	registrymetrics "ledgerpass/internal/registry/metrics"
	"ledgerpass/internal/registry/service"
	"ledgerpass/internal/registry/store"
	"ledgerpass/internal/registry/store/cache"
	"ledgerpass/internal/registry/store/memory"
	registrypg "ledgerpass/internal/registry/store/postgres"
	"ledgerpass/pkg/domain"
	"ledgerpass/pkg/platform/circuit"
	"ledgerpass/pkg/platform/httputil"
	"ledgerpass/pkg/platform/middleware/metadata"
	"ledgerpass/pkg/platform/middleware/request"
	"ledgerpass/pkg/platform/middleware/requesttime"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the ledger node and registry API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := commonRun()
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log)
		},
	}
}

type registryStore interface {
	store.Store
	store.Tx
	store.Tip
}

// serve wires the node and blocks until ctx is cancelled or a component
// fails.
func serve(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	st, db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	g, ctx := errgroup.WithContext(ctx)

	publisherOpts := []audit.PublisherOption{audit.WithLogger(log)}
	if len(cfg.Kafka.Brokers) > 0 {
		sink, err := auditkafka.NewSink(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		defer sink.Close()
		if err := sink.EnsureTopic(ctx, cfg.Kafka.Partitions, cfg.Kafka.ReplicationFactor); err != nil {
			return err
		}
		forward := make(chan audit.Event, cfg.Kafka.QueueSize)
		publisherOpts = append(publisherOpts, audit.WithForwarding(forward))
		worker := audit.NewWorker(sink, forward, log)
		g.Go(func() error { return worker.Run(ctx) })
		log.Info("audit forwarding to kafka", "topic", cfg.Kafka.Topic, "brokers", cfg.Kafka.Brokers)
	}
	var auditStore audit.Store = audit.NewInMemoryStore()
	if db != nil {
		auditStore = auditpg.New(db)
	}
	publisher := audit.NewPublisher(auditStore, publisherOpts...)

	serviceOpts := []service.Option{
		service.WithLogger(log),
		service.WithAuditPublisher(publisher),
		service.WithMetrics(registrymetrics.New(reg)),
	}
	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		passportCache := cache.NewGuardedCache(
			cache.NewRedisPassportCache(redisClient, cache.WithTTL(cfg.Redis.CacheTTL)),
			circuit.New("passport-cache"),
			log,
		)
		serviceOpts = append(serviceOpts, service.WithCache(passportCache))
		log.Info("passport cache enabled", "ttl", cfg.Redis.CacheTTL)
	}
	registry := service.New(cfg.OwnerPrincipal(), st, st, serviceOpts...)
	if err := registry.SyncAuthorityGauge(ctx); err != nil {
		return err
	}

	chain, err := ledger.Open(ctx, registry, st,
		ledger.WithLogger(log),
		ledger.WithMetrics(ledger.NewMetrics(reg)),
		ledger.WithGenesisHeight(domain.Height(cfg.Ledger.GenesisHeight)),
		ledger.WithAutoMine(cfg.Ledger.AutoMine),
	)
	if err != nil {
		return err
	}
	if !cfg.Ledger.AutoMine {
		producer := ledger.NewProducer(chain, cfg.Ledger.BlockInterval, log)
		g.Go(func() error { return producer.Run(ctx) })
	}

	router := newRouter(cfg, log, reg, registry, chain, db, redisClient)
	srv := httpserver.New(cfg.Server, router)
	g.Go(func() error { return httpserver.Run(ctx, srv, cfg.Server.ShutdownTimeout, log) })

	log.Info("ledgerpass node started",
		"owner", registry.Owner(),
		"storage", cfg.Storage.Driver,
		"height", chain.Height(),
		"auto_mine", cfg.Ledger.AutoMine,
	)
	return g.Wait()
}

func openStore(ctx context.Context, cfg *config.Config) (registryStore, *sql.DB, error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		db, err := postgres.Open(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := registrypg.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return registrypg.New(db), db, nil
	case config.StorageMemory:
		return memory.New(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}

func newRouter(
	cfg *config.Config,
	log *slog.Logger,
	reg *prometheus.Registry,
	registry *service.Service,
	chain *ledger.Chain,
	db *sql.DB,
	redisClient *platformredis.Client,
) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(request.Recovery(log))
	r.Use(request.Logger(log))
	r.Use(platformmetrics.NewHTTP(reg).Middleware)

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		status := map[string]any{"status": "ok", "height": chain.Height()}
		code := http.StatusOK
		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				status["status"], status["postgres"] = "degraded", err.Error()
				code = http.StatusServiceUnavailable
			}
		}
		if redisClient != nil {
			if err := redisClient.Health(ctx); err != nil {
				// the cache is optional, reads fall through to the store
				status["redis"] = err.Error()
			}
		}
		httputil.WriteJSON(w, code, status)
	})

	jwtSvc := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience)
	h := handler.New(registry, chain, jwttoken.NewJWTServiceAdapter(jwtSvc), log,
		handler.WithAdminToken(cfg.Server.AdminToken))
	h.Register(r)
	return r
}
