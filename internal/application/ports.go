package application

import (
	"context"
	"time"

	"github.com/katchitechstudio/nouvs-backend/internal/domain"
)

// QuoteRepo is the sole persistence surface for current quotes and their
// append-only history. Implementations must join the transaction carried in
// ctx by UnitOfWork.Do when one is present.
type QuoteRepo interface {
	GetCurrent(ctx context.Context, class domain.AssetClass, key string) (domain.AssetQuote, error)
	ListCurrent(ctx context.Context, class domain.AssetClass) ([]domain.AssetQuote, error)
	Upsert(ctx context.Context, q domain.AssetQuote) error
	AppendHistory(ctx context.Context, p domain.HistoryPoint) error
	HistorySince(ctx context.Context, class domain.AssetClass, key string, since time.Time) ([]domain.HistoryPoint, error)
	DeleteHistoryBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type UpdateLogRepo interface {
	Append(ctx context.Context, l domain.UpdateLog) error
	Recent(ctx context.Context, limit int) ([]domain.UpdateLog, error)
}

type NewsFilter struct {
	Category string
	Source   string
	Limit    int
}

type NewsRepo interface {
	// Insert stores the item unless an item with the same title exists.
	// Returns true when a new row was written.
	Insert(ctx context.Context, item domain.NewsItem) (bool, error)
	List(ctx context.Context, f NewsFilter) ([]domain.NewsItem, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// RateSource fetches raw provider payloads for the numeric asset classes.
type RateSource interface {
	CurrencyRates(ctx context.Context) ([]domain.RawQuote, error)
	GoldQuotes(ctx context.Context) ([]domain.RawMetalQuote, error)
	SilverQuotes(ctx context.Context) ([]domain.RawMetalQuote, error)
}

type NewsSource interface {
	Latest(ctx context.Context, country, category string) ([]domain.NewsItem, error)
}

// ReadCache is a best-effort TTL cache in front of read queries. Errors are
// absorbed by implementations; a miss and a failure look the same.
type ReadCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
	InvalidateClass(ctx context.Context, class domain.AssetClass)
}

// NoopCache disables read caching.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (string, bool)          { return "", false }
func (NoopCache) Set(context.Context, string, string)                 {}
func (NoopCache) InvalidateClass(context.Context, domain.AssetClass)  {}

// Worker represents a background processor.
// Implementations must run until the context is canceled.
type Worker interface {
	Start(ctx context.Context)
}
