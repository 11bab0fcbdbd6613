package bootstrap

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/katchitechstudio/nouvs-backend/internal/application"
	"github.com/katchitechstudio/nouvs-backend/internal/config"
	"github.com/katchitechstudio/nouvs-backend/internal/domain"
	"github.com/katchitechstudio/nouvs-backend/internal/infrastructure/cache"
	"github.com/katchitechstudio/nouvs-backend/internal/infrastructure/logx"
	"github.com/katchitechstudio/nouvs-backend/internal/infrastructure/pg"
	"github.com/katchitechstudio/nouvs-backend/internal/infrastructure/provider"
	"github.com/katchitechstudio/nouvs-backend/internal/infrastructure/worker"
)

type Repos struct {
	Quotes application.QuoteRepo
	Logs   application.UpdateLogRepo
	News   application.NewsRepo
	UoW    application.UnitOfWork

	DB *pg.DB
}

// BuildRepos connects to Postgres, applies migrations and returns the
// repository set plus a cleanup function.
func BuildRepos(ctx context.Context, cfg config.Config) (Repos, func(), error) {
	log := logx.L()
	if cfg.DatabaseURL == "" {
		return Repos{}, func() {}, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return Repos{}, func() {}, err
	}
	if err := pg.RunMigrations(ctx, db); err != nil {
		db.Close()
		return Repos{}, func() {}, err
	}
	cleanup := func() {
		log.Info("closing pg")
		db.Close()
	}
	return Repos{
		Quotes: pg.NewQuoteRepo(db),
		Logs:   pg.NewUpdateLogRepo(db),
		News:   pg.NewNewsRepo(db),
		UoW:    &pg.UnitOfWork{Pool: db.Pool},
		DB:     db,
	}, cleanup, nil
}

// BuildCache selects the read cache backend: "redis", "memory" or "none".
func BuildCache(cfg config.Config) (application.ReadCache, func()) {
	switch cfg.CacheBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return cache.NewRedis(client, cfg.CacheTTL), func() { _ = client.Close() }
	case "memory":
		return cache.NewMemory(cfg.CacheTTL), func() {}
	default:
		return application.NoopCache{}, func() {}
	}
}

// BuildSources returns the rate and news sources. Without a provider token
// the static development payload is served.
func BuildSources(cfg config.Config) (application.RateSource, application.NewsSource) {
	if cfg.CollectAPIToken == "" {
		logx.L().Warn("no provider token configured, serving static payloads")
		fake := provider.NewFake()
		return fake, fake
	}
	api := provider.NewCollectAPI(cfg.CollectAPIBase, cfg.CollectAPIToken, cfg.ProviderTimeout)
	return api, api
}

func BuildUpdater(cfg config.Config, repos Repos, readCache application.ReadCache,
	rates application.RateSource, news application.NewsSource) *application.Updater {
	return application.NewUpdater(
		repos.Quotes, repos.Logs, repos.News, rates, news, repos.UoW, readCache,
		application.TrackedAssets{
			ReferenceCurrency: cfg.ReferenceCurrency,
			CurrencyCodes:     cfg.CurrencyCodes,
			GoldFormats:       cfg.GoldFormats,
			SilverFormats:     cfg.SilverFormats,
			// Both provider endpoints quote one asset unit in reference units.
			CurrencyShape: domain.Shape{Convention: domain.ConventionDirect},
			MetalShape:    domain.Shape{Convention: domain.ConventionDirect},
		},
		application.NewsPipeline{
			Country:    cfg.NewsCountry,
			Categories: cfg.NewsCategories,
			Sources:    cfg.NewsSources,
			Retention:  cfg.NewsRetention,
		},
		application.WithLogger(logx.L()),
		application.WithRetention(application.Retention{
			History: cfg.HistoryRetention,
			News:    cfg.NewsRetention,
		}),
	)
}

func BuildService(repos Repos, readCache application.ReadCache) *application.MarketService {
	return application.NewMarketService(repos.Quotes, repos.News, repos.Logs, readCache)
}

func BuildScheduler(cfg config.Config, updater *application.Updater) application.Worker {
	return &worker.Scheduler{
		Updater:          updater,
		MarketEvery:      cfg.MarketInterval,
		NewsEvery:        cfg.NewsInterval,
		MaintenanceEvery: cfg.MaintenanceInterval,
		RunOnStart:       true,
		Log:              logx.L(),
	}
}
