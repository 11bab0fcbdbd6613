package provider

import (
	"context"
	"time"

	"github.com/katchitechstudio/nouvs-backend/internal/application"
	"github.com/katchitechstudio/nouvs-backend/internal/domain"
)

// Ensure Fake implements both source ports.
var _ application.RateSource = (*Fake)(nil)
var _ application.NewsSource = (*Fake)(nil)

// Fake serves a static payload; used for local development when no provider
// token is configured.
type Fake struct{}

func NewFake() *Fake { return &Fake{} }

func (f *Fake) CurrencyRates(context.Context) ([]domain.RawQuote, error) {
	return []domain.RawQuote{
		{Code: "TRY", Name: "Turkish Lira", Rate: "0.025"},
		{Code: "USD", Name: "US Dollar", Rate: "1"},
		{Code: "EUR", Name: "Euro", Rate: "1.08"},
		{Code: "GBP", Name: "Pound Sterling", Rate: "1.27"},
	}, nil
}

func (f *Fake) GoldQuotes(context.Context) ([]domain.RawMetalQuote, error) {
	return []domain.RawMetalQuote{
		{Name: "Gram Altın", Buying: "5802.52", Selling: "5803.31"},
		{Name: "Çeyrek Altın", Buying: "9450.00", Selling: "9530.00"},
	}, nil
}

func (f *Fake) SilverQuotes(context.Context) ([]domain.RawMetalQuote, error) {
	return []domain.RawMetalQuote{
		{Name: "Gümüş", Buying: "70.5", Selling: "71.1"},
	}, nil
}

func (f *Fake) Latest(_ context.Context, _, category string) ([]domain.NewsItem, error) {
	return []domain.NewsItem{
		{
			Title:       "Örnek haber",
			Description: "Yerel geliştirme için sabit içerik",
			Source:      "NTV",
			Category:    category,
			PublishedAt: time.Now().UTC(),
		},
	}, nil
}
