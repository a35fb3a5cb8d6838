package main

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	_ "github.com/joho/godotenv/autoload"

	"github.com/example/clipstream/internal/platform/analytics"
	"github.com/example/clipstream/internal/platform/auth"
	"github.com/example/clipstream/internal/platform/config"
	"github.com/example/clipstream/internal/platform/db"
	"github.com/example/clipstream/internal/platform/httpserver"
	"github.com/example/clipstream/internal/platform/logging"
	"github.com/example/clipstream/internal/platform/metrics"
	"github.com/example/clipstream/internal/platform/natsconn"
	"github.com/example/clipstream/internal/platform/run"
	"github.com/example/clipstream/services/content/internal/handlers"
	"github.com/example/clipstream/services/content/internal/store"
	"github.com/example/clipstream/services/content/internal/worker"
)

// contentStore is the full persistence surface behind the service. Both
// backends implement it; production picks Postgres.
type contentStore interface {
	store.VideoStore
	store.TweetStore
	store.CommentStore
	store.EngagementStore
	store.SubscriptionStore
	store.ProfileStore
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logging.New(cfg.LogLevel, cfg.ServiceName)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	st, ready, closeStore := initStore(log)
	if closeStore != nil {
		defer closeStore()
	}

	verifier := auth.JWTVerifier{Secret: []byte(cfg.JWTSecret)}

	var events *analytics.Publisher
	nc, err := natsconn.Connect(natsconn.Options{})
	if err != nil {
		log.Warn("nats unavailable, analytics disabled", zap.Error(err))
	} else {
		defer nc.Close()
		js, err := nc.JetStream()
		if err != nil {
			log.Warn("jetstream unavailable, analytics disabled", zap.Error(err))
		} else {
			events = analytics.New(js, log)
		}
	}

	r := chi.NewRouter()
	httpserver.SetupRouter(r, httpserver.RouterConfig{
		ReadyFunc:   ready,
		Middlewares: []func(http.Handler) http.Handler{metrics.Middleware},
	})
	r.Handle("/metrics", metrics.Handler())
	handlers.Register(r, verifier, handlers.Deps{
		Videos:     st,
		Tweets:     st,
		Comments:   st,
		Engagement: st,
		Subs:       st,
		Profiles:   st,
		Analytics:  events,
	})

	srv := httpserver.New(httpserver.Options{
		Addr:        cfg.HTTP.Addr,
		ServiceName: cfg.ServiceName,
		Logger:      log,
		Router:      r,
	})

	runner := run.New(log)
	code := runner.WithSignals(func(ctx context.Context) error {
		if nc != nil {
			go worker.StartAuditConsumer(ctx, nc, log)
		}
		go func() {
			<-ctx.Done()
			_ = srv.Shutdown(context.Background())
		}()
		return srv.Start(log)
	})

	log.Info("exit", zap.Int("code", code))
	run.Exit(code)
}

// initStore selects the persistence backend. Production requires a
// working Postgres connection; development falls back to the in-memory
// store when DATABASE_URL is absent or unreachable.
func initStore(log *zap.Logger) (contentStore, func() error, func()) {
	pool, err := db.Open(context.Background())
	if err != nil {
		if config.IsProduction() {
			log.Error("postgres is required in production", zap.Error(err))
			_ = log.Sync()
			run.Exit(1)
		}
		log.Warn("postgres unavailable, using in-memory store (development only)", zap.Error(err))
		return store.NewInMemoryStore(), nil, nil
	}

	pg := store.NewPostgresStore(pool)
	log.Info("connected to postgres")
	return pg, func() error { return pg.Ping(context.Background()) }, pool.Close
}
