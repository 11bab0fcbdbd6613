package provider_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/katchitechstudio/nouvs-backend/internal/infrastructure/httpx"
	"github.com/katchitechstudio/nouvs-backend/internal/infrastructure/provider"
)

type rtFunc func(*http.Request) *http.Response

func (f rtFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r), nil }

func clientWith(resBody string, code int) (*provider.CollectAPI, *http.Request) {
	var captured http.Request
	c := provider.NewCollectAPI("http://example.com", "t0ken", 2*time.Second)
	c.Client = &httpx.Client{
		AuthHeader: "apikey t0ken",
		HTTP: &http.Client{
			Timeout: 2 * time.Second,
			Transport: rtFunc(func(r *http.Request) *http.Response {
				captured = *r
				return &http.Response{
					StatusCode: code,
					Body:       io.NopCloser(strings.NewReader(resBody)),
					Header:     make(http.Header),
					Request:    r,
				}
			}),
		},
	}
	return c, &captured
}

func TestCurrencyRates_HappyPath(t *testing.T) {
	body := `{"success": true, "result": {"base": "USD", "data": [
        {"code": "TRY", "name": "Turkish Lira", "rate": 0.025},
        {"code": "EUR", "name": "Euro", "rate": "1,08"}
    ]}}`
	c, captured := clientWith(body, 200)

	raw, err := c.CurrencyRates(context.Background())
	require.NoError(t, err)
	require.Len(t, raw, 2)
	require.Equal(t, "TRY", raw[0].Code)

	d, err := raw[1].Rate.Decimal()
	require.NoError(t, err)
	require.InDelta(t, 1.08, d.InexactFloat64(), 1e-9)

	require.Equal(t, "apikey t0ken", captured.Header.Get("Authorization"))
	require.Equal(t, "/economy/currencyToAllv1", captured.URL.Path)
	require.Equal(t, "USD", captured.URL.Query().Get("base"))
}

func TestCurrencyRates_ProviderRejected(t *testing.T) {
	c, _ := clientWith(`{"success": false, "message": "quota exceeded"}`, 200)
	_, err := c.CurrencyRates(context.Background())
	require.Error(t, err)
	kind, ok := provider.KindOf(err)
	require.True(t, ok)
	require.Equal(t, provider.FailureProviderRejected, kind)
	require.Contains(t, err.Error(), "quota exceeded")
}

func TestCurrencyRates_HTTPStatus(t *testing.T) {
	c, _ := clientWith(`unauthorized`, 401)
	_, err := c.CurrencyRates(context.Background())
	require.Error(t, err)
	kind, ok := provider.KindOf(err)
	require.True(t, ok)
	require.Equal(t, provider.FailureHTTPStatus, kind)
}

func TestCurrencyRates_MalformedBody(t *testing.T) {
	c, _ := clientWith(`{"success": tru`, 200)
	_, err := c.CurrencyRates(context.Background())
	require.Error(t, err)
	kind, ok := provider.KindOf(err)
	require.True(t, ok)
	require.Equal(t, provider.FailureMalformedBody, kind)
}

func TestGoldQuotes_List(t *testing.T) {
	body := `{"success": true, "result": [
        {"name": "Gram Altın", "buying": 5802.52, "selling": 5803.31},
        {"name": "ONS Altın", "buying": "3400,5", "selling": "3401,2"}
    ]}`
	c, captured := clientWith(body, 200)

	raw, err := c.GoldQuotes(context.Background())
	require.NoError(t, err)
	require.Len(t, raw, 2)
	require.Equal(t, "/economy/goldPrice", captured.URL.Path)
}

func TestSilverQuotes_SingleObjectResult(t *testing.T) {
	// silverPrice returns a bare object, not a list.
	body := `{"success": true, "result": {"name": "Gümüş", "buying": 70.5, "selling": 71.1}}`
	c, _ := clientWith(body, 200)

	raw, err := c.SilverQuotes(context.Background())
	require.NoError(t, err)
	require.Len(t, raw, 1)
	require.Equal(t, "Gümüş", raw[0].Name)
}

func TestLatestNews(t *testing.T) {
	body := `{"success": true, "result": [
        {"name": "Başlık", "description": "d", "image": "i", "url": "u", "source": " NTV ", "date": "2025-06-01 09:30:00"}
    ]}`
	c, captured := clientWith(body, 200)

	items, err := c.Latest(context.Background(), "tr", "economy")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "Başlık", items[0].Title)
	require.Equal(t, "NTV", items[0].Source)
	require.Equal(t, "economy", items[0].Category)
	require.Equal(t, time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC), items[0].PublishedAt)

	require.Equal(t, "/news/getNews", captured.URL.Path)
	require.Equal(t, "economy", captured.URL.Query().Get("tag"))
}
