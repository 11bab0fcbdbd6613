package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/katchitechstudio/nouvs-backend/internal/domain"
)

// MarketService serves read queries over the committed snapshot, through the
// read cache. It never blocks on a running update cycle: readers always see
// the last successfully committed state.
type MarketService struct {
	quotes QuoteRepo
	news   NewsRepo
	logs   UpdateLogRepo
	cache  ReadCache
	clock  Clock
}

type ServiceOption func(*MarketService)

func WithServiceClock(c Clock) ServiceOption { return func(s *MarketService) { s.clock = c } }

func NewMarketService(quotes QuoteRepo, news NewsRepo, logs UpdateLogRepo, cache ReadCache, opts ...ServiceOption) *MarketService {
	s := &MarketService{quotes: quotes, news: news, logs: logs, cache: cache}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = NoopCache{}
	}
	if s.clock == nil {
		s.clock = realClock{}
	}
	return s
}

func normalizeKey(class domain.AssetClass, key string) string {
	if class == domain.ClassCurrency {
		return strings.ToUpper(key)
	}
	return key
}

func (s *MarketService) GetCurrent(ctx context.Context, class domain.AssetClass, key string) (domain.AssetQuote, error) {
	if !class.Numeric() {
		return domain.AssetQuote{}, domain.ErrUnsupportedClass
	}
	key = normalizeKey(class, key)
	ck := cacheKey(class, "one", key)
	var out domain.AssetQuote
	if hit, ok := s.cache.Get(ctx, ck); ok {
		if err := json.Unmarshal([]byte(hit), &out); err == nil {
			return out, nil
		}
	}
	out, err := s.quotes.GetCurrent(ctx, class, key)
	if err != nil {
		return domain.AssetQuote{}, err
	}
	s.cacheSet(ctx, ck, out)
	return out, nil
}

func (s *MarketService) ListCurrent(ctx context.Context, class domain.AssetClass) ([]domain.AssetQuote, error) {
	if !class.Numeric() {
		return nil, domain.ErrUnsupportedClass
	}
	ck := cacheKey(class, "all")
	if hit, ok := s.cache.Get(ctx, ck); ok {
		var out []domain.AssetQuote
		if err := json.Unmarshal([]byte(hit), &out); err == nil {
			return out, nil
		}
	}
	out, err := s.quotes.ListCurrent(ctx, class)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, ck, out)
	return out, nil
}

func (s *MarketService) History(ctx context.Context, class domain.AssetClass, key string, sinceDays int) ([]domain.HistoryPoint, error) {
	if !class.Numeric() {
		return nil, domain.ErrUnsupportedClass
	}
	if sinceDays <= 0 {
		sinceDays = 7
	}
	key = normalizeKey(class, key)
	ck := cacheKey(class, "history", key, fmt.Sprint(sinceDays))
	if hit, ok := s.cache.Get(ctx, ck); ok {
		var out []domain.HistoryPoint
		if err := json.Unmarshal([]byte(hit), &out); err == nil {
			return out, nil
		}
	}
	since := s.clock.Now().Add(-time.Duration(sinceDays) * 24 * time.Hour)
	out, err := s.quotes.HistorySince(ctx, class, key, since)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, domain.ErrNotFound
	}
	s.cacheSet(ctx, ck, out)
	return out, nil
}

func (s *MarketService) News(ctx context.Context, f NewsFilter) ([]domain.NewsItem, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}
	ck := cacheKey(domain.ClassNews, "list", f.Category, f.Source, fmt.Sprint(f.Limit))
	if hit, ok := s.cache.Get(ctx, ck); ok {
		var out []domain.NewsItem
		if err := json.Unmarshal([]byte(hit), &out); err == nil {
			return out, nil
		}
	}
	out, err := s.news.List(ctx, f)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, ck, out)
	return out, nil
}

func (s *MarketService) RecentUpdateLogs(ctx context.Context, limit int) ([]domain.UpdateLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.logs.Recent(ctx, limit)
}

func (s *MarketService) cacheSet(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.cache.Set(ctx, key, string(b))
}

// cacheKey builds keys of the form "<class>:<part>:<part>..." so that
// InvalidateClass can drop everything under one class prefix.
func cacheKey(class domain.AssetClass, parts ...string) string {
	return string(class) + ":" + strings.Join(parts, ":")
}

// IsNotFound reports whether err maps to a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound) || errors.Is(err, ErrNotFound)
}
