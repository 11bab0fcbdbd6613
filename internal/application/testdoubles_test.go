package application

import (
	"context"
	"sync"
	"time"

	"github.com/katchitechstudio/nouvs-backend/internal/domain"
)

type fakeClock struct{ t time.Time }

func (f fakeClock) Now() time.Time { return f.t }

type quoteKey struct {
	class domain.AssetClass
	key   string
}

type fakeQuoteRepo struct {
	mu      sync.Mutex
	store   map[quoteKey]domain.AssetQuote
	history []domain.HistoryPoint
	err     error
	errKeys map[quoteKey]error
}

func newFakeQuoteRepo() *fakeQuoteRepo {
	return &fakeQuoteRepo{store: map[quoteKey]domain.AssetQuote{}, errKeys: map[quoteKey]error{}}
}

func (f *fakeQuoteRepo) GetCurrent(_ context.Context, class domain.AssetClass, key string) (domain.AssetQuote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.AssetQuote{}, f.err
	}
	q, ok := f.store[quoteKey{class, key}]
	if !ok {
		return domain.AssetQuote{}, domain.ErrNotFound
	}
	return q, nil
}

func (f *fakeQuoteRepo) ListCurrent(_ context.Context, class domain.AssetClass) ([]domain.AssetQuote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.AssetQuote
	for k, q := range f.store {
		if k.class == class {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeQuoteRepo) Upsert(_ context.Context, q domain.AssetQuote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if err := f.errKeys[quoteKey{q.Class, q.Key}]; err != nil {
		return err
	}
	f.store[quoteKey{q.Class, q.Key}] = q
	return nil
}

func (f *fakeQuoteRepo) AppendHistory(_ context.Context, p domain.HistoryPoint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.history = append(f.history, p)
	return nil
}

func (f *fakeQuoteRepo) HistorySince(_ context.Context, class domain.AssetClass, key string, since time.Time) ([]domain.HistoryPoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.HistoryPoint
	for _, p := range f.history {
		if p.Class == class && p.Key == key && !p.RecordedAt.Before(since) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeQuoteRepo) DeleteHistoryBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.history[:0]
	var deleted int64
	for _, p := range f.history {
		if p.RecordedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, p)
	}
	f.history = kept
	return deleted, nil
}

func (f *fakeQuoteRepo) historyCount(class domain.AssetClass) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.history {
		if p.Class == class {
			n++
		}
	}
	return n
}

type fakeUpdateLogRepo struct {
	mu   sync.Mutex
	logs []domain.UpdateLog
}

func (f *fakeUpdateLogRepo) Append(_ context.Context, l domain.UpdateLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, l)
	return nil
}

func (f *fakeUpdateLogRepo) Recent(_ context.Context, limit int) ([]domain.UpdateLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.logs) < limit {
		limit = len(f.logs)
	}
	return f.logs[len(f.logs)-limit:], nil
}

type fakeNewsRepo struct {
	mu      sync.Mutex
	byTitle map[string]domain.NewsItem
	deleted int64
}

func newFakeNewsRepo() *fakeNewsRepo { return &fakeNewsRepo{byTitle: map[string]domain.NewsItem{}} }

func (f *fakeNewsRepo) Insert(_ context.Context, item domain.NewsItem) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byTitle[item.Title]; ok {
		return false, nil
	}
	f.byTitle[item.Title] = item
	return true, nil
}

func (f *fakeNewsRepo) List(_ context.Context, filter NewsFilter) ([]domain.NewsItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.NewsItem
	for _, item := range f.byTitle {
		if filter.Category != "" && item.Category != filter.Category {
			continue
		}
		if filter.Source != "" && item.Source != filter.Source {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (f *fakeNewsRepo) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for title, item := range f.byTitle {
		if item.PublishedAt.Before(cutoff) {
			delete(f.byTitle, title)
			n++
		}
	}
	f.deleted += n
	return n, nil
}

type fakeRateSource struct {
	currencies []domain.RawQuote
	gold       []domain.RawMetalQuote
	silver     []domain.RawMetalQuote

	currencyErr error
	goldErr     error
	silverErr   error
}

func (f *fakeRateSource) CurrencyRates(context.Context) ([]domain.RawQuote, error) {
	return f.currencies, f.currencyErr
}

func (f *fakeRateSource) GoldQuotes(context.Context) ([]domain.RawMetalQuote, error) {
	return f.gold, f.goldErr
}

func (f *fakeRateSource) SilverQuotes(context.Context) ([]domain.RawMetalQuote, error) {
	return f.silver, f.silverErr
}

type fakeNewsSource struct {
	items []domain.NewsItem
	err   error
}

func (f *fakeNewsSource) Latest(context.Context, string, string) ([]domain.NewsItem, error) {
	return f.items, f.err
}

type fakeCache struct {
	mu          sync.Mutex
	store       map[string]string
	invalidated []domain.AssetClass
}

func newFakeCache() *fakeCache { return &fakeCache{store: map[string]string{}} }

func (f *fakeCache) Get(_ context.Context, key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.store[key]
	return v, ok
}

func (f *fakeCache) Set(_ context.Context, key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.store[key] = value
}

func (f *fakeCache) InvalidateClass(_ context.Context, class domain.AssetClass) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, class)
	for k := range f.store {
		if len(k) >= len(class) && k[:len(class)] == string(class) {
			delete(f.store, k)
		}
	}
}
