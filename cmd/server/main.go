// Command server runs the soko request gate: the edge service that decides,
// once per page request, whether to serve, localize, authenticate, onboard
// or deny, and proxies allowed requests to the application upstream.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"soko/internal/access"
	"soko/internal/gate"
	gatemetrics "soko/internal/gate/metrics"
	"soko/internal/locale"
	"soko/internal/platform/config"
	"soko/internal/platform/httpserver"
	"soko/internal/platform/logger"
	"soko/internal/platform/postgres"
	"soko/internal/platform/redis"
	"soko/internal/session"
	sessionstore "soko/internal/session/store"
	httptransport "soko/internal/transport/http"
	"soko/internal/userctx"
	audit "soko/pkg/platform/audit"
	"soko/pkg/platform/audit/publisher"
	"soko/pkg/platform/audit/relay"
	auditmemory "soko/pkg/platform/audit/store/memory"
	auditpostgres "soko/pkg/platform/audit/store/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Without backend configuration no decision can be made; refuse
		// to start rather than fail on every request.
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	locales, err := locale.New(cfg.Locales)
	if err != nil {
		log.Error("invalid locale configuration", "error", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}

	db, err := postgres.Open(cfg.Postgres)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}

	var sessions sessionstore.Store
	if redisClient != nil {
		sessions = sessionstore.NewRedis(redisClient.Client)
		log.Info("session store: redis")
	} else {
		sessions = sessionstore.NewMemory()
		log.Warn("session store: in-memory, sessions are lost on restart")
	}
	resolver := session.NewResolver(sessions, cfg.Session.SigningKey, cfg.Session.AccessTTL, log)

	var auditStore audit.Store
	if db != nil {
		auditStore = auditpostgres.New(db)
	} else {
		auditStore = auditmemory.NewInMemoryStore()
	}
	auditPub := publisher.NewPublisher(auditStore, publisher.WithAsyncBuffer(1024))
	defer auditPub.Close()

	engine := gate.New(
		locales,
		gate.DefaultPolicy(access.DefaultTable(), access.DefaultLandingTable()),
		resolver,
		userctx.NewClient(cfg.DataService),
		auditPub,
		gatemetrics.New(),
		log,
	)

	app, err := httptransport.NewAppHandler(cfg.Upstream, log)
	if err != nil {
		log.Error("invalid upstream configuration", "error", err)
		os.Exit(1)
	}

	deps := httptransport.Deps{
		Gate:   engine,
		App:    app,
		Logger: log,
	}
	if redisClient != nil {
		deps.Redis = redisClient
	}
	if db != nil {
		deps.Postgres = postgres.Health{DB: db}
	}
	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(deps))

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("gate listening", "addr", cfg.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if db != nil && len(cfg.Kafka.Brokers) > 0 {
		outboxRelay, err := relay.New(ctx, db, cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			log.Error("kafka relay setup failed", "error", err)
			os.Exit(1)
		}
		defer outboxRelay.Close()

		group.Go(func() error {
			log.Info("audit relay running", "topic", cfg.Kafka.Topic)
			if err := outboxRelay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
