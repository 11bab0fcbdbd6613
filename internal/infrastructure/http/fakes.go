package httpserver

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/katchitechstudio/nouvs-backend/internal/application"
	"github.com/katchitechstudio/nouvs-backend/internal/domain"
	"github.com/katchitechstudio/nouvs-backend/internal/infrastructure/provider"
)

var _ application.QuoteRepo = (*memQuoteRepo)(nil)
var _ application.UpdateLogRepo = (*memUpdateLogRepo)(nil)
var _ application.NewsRepo = (*memNewsRepo)(nil)

type quoteKey struct {
	class domain.AssetClass
	key   string
}

type memQuoteRepo struct {
	mu      sync.RWMutex
	current map[quoteKey]domain.AssetQuote
	history []domain.HistoryPoint
}

func newMemQuoteRepo() *memQuoteRepo {
	return &memQuoteRepo{current: map[quoteKey]domain.AssetQuote{}}
}

func (m *memQuoteRepo) GetCurrent(_ context.Context, class domain.AssetClass, key string) (domain.AssetQuote, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.current[quoteKey{class, key}]
	if !ok {
		return domain.AssetQuote{}, domain.ErrNotFound
	}
	return q, nil
}

func (m *memQuoteRepo) ListCurrent(_ context.Context, class domain.AssetClass) ([]domain.AssetQuote, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.AssetQuote
	for k, q := range m.current {
		if k.class == class {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *memQuoteRepo) Upsert(_ context.Context, q domain.AssetQuote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current[quoteKey{q.Class, q.Key}] = q
	return nil
}

func (m *memQuoteRepo) AppendHistory(_ context.Context, p domain.HistoryPoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = int64(len(m.history) + 1)
	m.history = append(m.history, p)
	return nil
}

func (m *memQuoteRepo) HistorySince(_ context.Context, class domain.AssetClass, key string, since time.Time) ([]domain.HistoryPoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.HistoryPoint
	for _, p := range m.history {
		if p.Class == class && p.Key == key && !p.RecordedAt.Before(since) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecordedAt.After(out[j].RecordedAt) })
	return out, nil
}

func (m *memQuoteRepo) DeleteHistoryBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []domain.HistoryPoint
	var deleted int64
	for _, p := range m.history {
		if p.RecordedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, p)
	}
	m.history = kept
	return deleted, nil
}

type memUpdateLogRepo struct {
	mu   sync.RWMutex
	logs []domain.UpdateLog
}

func (m *memUpdateLogRepo) Append(_ context.Context, l domain.UpdateLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.ID = int64(len(m.logs) + 1)
	m.logs = append(m.logs, l)
	return nil
}

func (m *memUpdateLogRepo) Recent(_ context.Context, limit int) ([]domain.UpdateLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := append([]domain.UpdateLog(nil), m.logs...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memNewsRepo struct {
	mu      sync.RWMutex
	byTitle map[string]domain.NewsItem
	nextID  int64
}

func newMemNewsRepo() *memNewsRepo { return &memNewsRepo{byTitle: map[string]domain.NewsItem{}} }

func (m *memNewsRepo) Insert(_ context.Context, item domain.NewsItem) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byTitle[item.Title]; ok {
		return false, nil
	}
	m.nextID++
	item.ID = m.nextID
	m.byTitle[item.Title] = item
	return true, nil
}

func (m *memNewsRepo) List(_ context.Context, f application.NewsFilter) ([]domain.NewsItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.NewsItem
	for _, n := range m.byTitle {
		if f.Category != "" && n.Category != f.Category {
			continue
		}
		if f.Source != "" && !strings.EqualFold(n.Source, f.Source) {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PublishedAt.After(out[j].PublishedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *memNewsRepo) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted int64
	for title, n := range m.byTitle {
		if n.PublishedAt.Before(cutoff) {
			delete(m.byTitle, title)
			deleted++
		}
	}
	return deleted, nil
}

// NewInMemoryServer wires a full router over in-memory repositories and the
// static development provider. Used in tests and for token-less local runs.
func NewInMemoryServer() http.Handler {
	quotes := newMemQuoteRepo()
	logs := &memUpdateLogRepo{}
	news := newMemNewsRepo()
	fake := provider.NewFake()

	tracked := application.TrackedAssets{
		ReferenceCurrency: "TRY",
		CurrencyCodes:     []string{"TRY", "USD", "EUR", "GBP"},
		GoldFormats:       []string{"Gram Altın", "Çeyrek Altın"},
		SilverFormats:     []string{"Gümüş"},
	}
	newsCfg := application.NewsPipeline{
		Country:    "tr",
		Categories: []string{"general", "economy"},
		Sources:    []string{"NTV", "CNN"},
		Retention:  7 * 24 * time.Hour,
	}

	updater := application.NewUpdater(quotes, logs, news, fake, fake,
		application.NoopUoW{}, application.NoopCache{}, tracked, newsCfg)
	svc := application.NewMarketService(quotes, news, logs, application.NoopCache{})

	return NewRouter(NewServer(svc, updater))
}
