package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/katchitechstudio/nouvs-backend/internal/domain"
)

// TrackedAssets is the static allow-list configuration for the numeric
// pipelines.
type TrackedAssets struct {
	ReferenceCurrency string
	CurrencyCodes     []string
	GoldFormats       []string
	SilverFormats     []string

	// Per-endpoint rate encodings. The zero value is the direct convention,
	// which matches the provider endpoints wired in bootstrap.
	CurrencyShape domain.Shape
	MetalShape    domain.Shape
}

// NewsPipeline configures the non-numeric sibling pipeline.
type NewsPipeline struct {
	Country    string
	Categories []string
	Sources    []string
	Retention  time.Duration
}

// Retention bounds applied by the maintenance sweep.
type Retention struct {
	History time.Duration
	News    time.Duration
}

// Updater orchestrates the fetch-normalize-commit sequence for each asset
// class. Stages run in a fixed order and are isolated: a failing stage is
// logged to update_logs and the next stage still runs. Concurrent cycles are
// safe because the writer relies on per-key atomic upserts and per-class
// transactions, not on any global lock; overlapping runs resolve to
// last-writer-wins on updated_at.
type Updater struct {
	quotes     QuoteRepo
	logs       UpdateLogRepo
	news       NewsRepo
	rates      RateSource
	newsSource NewsSource
	uow        UnitOfWork
	cache      ReadCache
	tracked    TrackedAssets
	newsCfg    NewsPipeline
	retention  Retention
	clock      Clock
	log        *zap.Logger
}

type UpdaterOption func(*Updater)

func WithClock(c Clock) UpdaterOption        { return func(u *Updater) { u.clock = c } }
func WithLogger(l *zap.Logger) UpdaterOption { return func(u *Updater) { u.log = l } }
func WithRetention(r Retention) UpdaterOption {
	return func(u *Updater) { u.retention = r }
}

func NewUpdater(
	quotes QuoteRepo,
	logs UpdateLogRepo,
	news NewsRepo,
	rates RateSource,
	newsSource NewsSource,
	uow UnitOfWork,
	cache ReadCache,
	tracked TrackedAssets,
	newsCfg NewsPipeline,
	opts ...UpdaterOption,
) *Updater {
	u := &Updater{
		quotes:     quotes,
		logs:       logs,
		news:       news,
		rates:      rates,
		newsSource: newsSource,
		uow:        uow,
		cache:      cache,
		tracked:    tracked,
		newsCfg:    newsCfg,
	}
	for _, opt := range opts {
		opt(u)
	}
	if u.uow == nil {
		u.uow = NoopUoW{}
	}
	if u.cache == nil {
		u.cache = NoopCache{}
	}
	if u.clock == nil {
		u.clock = realClock{}
	}
	if u.log == nil {
		u.log = zap.NewNop()
	}
	if u.retention.History <= 0 {
		u.retention.History = 30 * 24 * time.Hour
	}
	if u.retention.News <= 0 {
		u.retention.News = 7 * 24 * time.Hour
	}
	return u
}

// TargetAll runs every stage.
const TargetAll = "all"

// RunCycle runs the requested stage, or all four in order. The returned
// report always covers every attempted stage; stage failures never surface
// as an error from RunCycle. The only error case is an unknown target.
func (u *Updater) RunCycle(ctx context.Context, target string) (CycleReport, error) {
	var classes []domain.AssetClass
	switch target {
	case TargetAll, "":
		classes = []domain.AssetClass{domain.ClassCurrency, domain.ClassGold, domain.ClassSilver, domain.ClassNews}
	default:
		c, ok := domain.ParseAssetClass(target)
		if !ok {
			return CycleReport{}, fmt.Errorf("%w: unknown asset class %q", ErrBadRequest, target)
		}
		classes = []domain.AssetClass{c}
	}

	report := CycleReport{StartedAt: u.clock.Now()}
	for _, class := range classes {
		report.Stages = append(report.Stages, u.runStage(ctx, class))
	}
	report.FinishedAt = u.clock.Now()
	return report, nil
}

func (u *Updater) runStage(ctx context.Context, class domain.AssetClass) StageResult {
	log := u.log.With(zap.String("class", string(class)))
	log.Info("update_cycle.stage_start")

	var added, skipped int
	var err error
	switch class {
	case domain.ClassCurrency:
		added, skipped, err = u.updateCurrencies(ctx)
	case domain.ClassGold:
		added, skipped, err = u.updateMetal(ctx, domain.ClassGold)
	case domain.ClassSilver:
		added, skipped, err = u.updateMetal(ctx, domain.ClassSilver)
	case domain.ClassNews:
		added, skipped, err = u.updateNews(ctx)
	}

	now := u.clock.Now()
	if err != nil {
		log.Warn("update_cycle.stage_failed", zap.Error(err))
		u.appendLog(ctx, domain.UpdateLog{Class: class, Status: domain.UpdateStatusError, Message: err.Error(), CreatedAt: now})
		return StageResult{Class: class, Status: domain.UpdateStatusError, Error: err.Error()}
	}
	log.Info("update_cycle.stage_done", zap.Int("added", added), zap.Int("skipped", skipped))
	u.appendLog(ctx, domain.UpdateLog{Class: class, Status: domain.UpdateStatusSuccess, Message: fmt.Sprintf("%d items updated", added), CreatedAt: now})
	return StageResult{Class: class, Status: domain.UpdateStatusSuccess, Added: added, Skipped: skipped}
}

func (u *Updater) appendLog(ctx context.Context, l domain.UpdateLog) {
	if err := u.logs.Append(ctx, l); err != nil {
		u.log.Warn("update_log.append_failed", zap.Error(err))
	}
}

func (u *Updater) updateCurrencies(ctx context.Context) (added, skipped int, err error) {
	raw, err := u.rates.CurrencyRates(ctx)
	if err != nil {
		return 0, 0, err
	}
	ref := u.tracked.ReferenceCurrency
	refRate, ok := domain.FindReferenceRate(raw, ref)
	if !ok {
		return 0, 0, fmt.Errorf("reference rate for %s missing from provider payload", ref)
	}
	quotes, dropped := domain.NormalizeCurrencies(raw, u.tracked.CurrencyCodes, ref, refRate, u.tracked.CurrencyShape)
	for _, d := range dropped {
		u.log.Warn("normalize.record_dropped",
			zap.String("class", string(domain.ClassCurrency)),
			zap.String("key", d.Code),
			zap.String("raw_rate", string(d.Rate)),
		)
	}
	added, skipped, err = u.commitQuotes(ctx, domain.ClassCurrency, quotes)
	return added, skipped + len(dropped), err
}

func (u *Updater) updateMetal(ctx context.Context, class domain.AssetClass) (added, skipped int, err error) {
	var raw []domain.RawMetalQuote
	var tracked []string
	if class == domain.ClassGold {
		raw, err = u.rates.GoldQuotes(ctx)
		tracked = u.tracked.GoldFormats
	} else {
		raw, err = u.rates.SilverQuotes(ctx)
		tracked = u.tracked.SilverFormats
	}
	if err != nil {
		return 0, 0, err
	}
	quotes, dropped := domain.NormalizeMetals(raw, tracked, u.tracked.MetalShape)
	for _, d := range dropped {
		u.log.Warn("normalize.record_dropped",
			zap.String("class", string(class)),
			zap.String("key", d.Name),
			zap.String("buying", string(d.Buying)),
			zap.String("selling", string(d.Selling)),
		)
	}
	added, skipped, err = u.commitQuotes(ctx, class, quotes)
	return added, skipped + len(dropped), err
}

// commitQuotes writes one asset class's snapshot: for each normalized quote an
// atomic per-key upsert plus one append-only history row, all inside a single
// transaction so the new snapshot becomes visible all-or-nothing. Each item
// runs in its own nested unit of work (a savepoint on Postgres), so a failing
// statement rolls back only that item and the rest of the batch still commits.
// Only a transaction-level failure aborts the batch, leaving the previous
// snapshot intact.
func (u *Updater) commitQuotes(ctx context.Context, class domain.AssetClass, quotes []domain.NormalizedQuote) (added, skipped int, err error) {
	if len(quotes) == 0 {
		return 0, 0, nil
	}
	now := u.clock.Now()
	err = u.uow.Do(ctx, func(ctx context.Context) error {
		for _, q := range quotes {
			itemErr := u.uow.Do(ctx, func(ctx context.Context) error {
				return u.commitQuote(ctx, class, q, now)
			})
			if itemErr != nil {
				u.log.Warn("commit.item_skipped", zap.String("class", string(class)), zap.String("key", q.Key), zap.Error(itemErr))
				skipped++
				continue
			}
			added++
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	u.cache.InvalidateClass(ctx, class)
	return added, skipped, nil
}

func (u *Updater) commitQuote(ctx context.Context, class domain.AssetClass, q domain.NormalizedQuote, now time.Time) error {
	prev := 0.0
	cur, err := u.quotes.GetCurrent(ctx, class, q.Key)
	switch {
	case err == nil:
		prev = cur.Rate
	case errors.Is(err, domain.ErrNotFound):
		// first-ever observation; change stays 0
	default:
		return err
	}
	if err := u.quotes.Upsert(ctx, domain.AssetQuote{
		Class:         class,
		Key:           q.Key,
		DisplayName:   q.DisplayName,
		Buying:        q.Buying,
		Selling:       q.Selling,
		Rate:          q.Rate,
		ChangePercent: domain.PercentChange(prev, q.Rate),
		UpdatedAt:     now,
	}); err != nil {
		return err
	}
	return u.quotes.AppendHistory(ctx, domain.HistoryPoint{
		Class:      class,
		Key:        q.Key,
		Rate:       q.Rate,
		RecordedAt: now,
	})
}

func (u *Updater) updateNews(ctx context.Context) (added, skipped int, err error) {
	if len(u.newsCfg.Categories) == 0 {
		return 0, 0, nil
	}
	// Category rotation by wall-clock hour spreads the categories over the day.
	category := u.newsCfg.Categories[u.clock.Now().Hour()%len(u.newsCfg.Categories)]
	items, err := u.newsSource.Latest(ctx, u.newsCfg.Country, category)
	if err != nil {
		return 0, 0, err
	}
	allow := make(map[string]bool, len(u.newsCfg.Sources))
	for _, s := range u.newsCfg.Sources {
		allow[s] = true
	}
	err = u.uow.Do(ctx, func(ctx context.Context) error {
		for _, item := range items {
			if !allow[item.Source] {
				continue
			}
			item.Category = category
			insErr := u.uow.Do(ctx, func(ctx context.Context) error {
				inserted, err := u.news.Insert(ctx, item)
				if err != nil {
					return err
				}
				if inserted {
					added++
				}
				return nil
			})
			if insErr != nil {
				u.log.Warn("news.item_skipped", zap.String("title", item.Title), zap.Error(insErr))
				skipped++
			}
		}
		cutoff := u.clock.Now().Add(-u.newsCfg.Retention)
		deleted, err := u.news.DeleteBefore(ctx, cutoff)
		if err != nil {
			return err
		}
		if deleted > 0 {
			u.log.Info("news.retention_sweep", zap.Int64("deleted", deleted))
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	u.cache.InvalidateClass(ctx, domain.ClassNews)
	return added, skipped, nil
}

// Maintenance removes history and news rows past the retention bounds. It runs
// on its own long-interval ticker and is independent from ingestion: a failure
// here never blocks or corrupts the update cycle.
func (u *Updater) Maintenance(ctx context.Context) error {
	now := u.clock.Now()
	deleted, err := u.quotes.DeleteHistoryBefore(ctx, now.Add(-u.retention.History))
	if err != nil {
		return fmt.Errorf("history retention sweep: %w", err)
	}
	newsDeleted, err := u.news.DeleteBefore(ctx, now.Add(-u.retention.News))
	if err != nil {
		return fmt.Errorf("news retention sweep: %w", err)
	}
	u.log.Info("maintenance.done",
		zap.Int64("history_deleted", deleted),
		zap.Int64("news_deleted", newsDeleted),
	)
	return nil
}
