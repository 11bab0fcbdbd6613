package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/katchitechstudio/nouvs-backend/internal/application"
	"github.com/katchitechstudio/nouvs-backend/internal/domain"
	"github.com/katchitechstudio/nouvs-backend/internal/infrastructure/httpx"
)

const (
	currencyToAllPath = "/economy/currencyToAllv1"
	goldPricePath     = "/economy/goldPrice"
	silverPricePath   = "/economy/silverPrice"
	getNewsPath       = "/news/getNews"

	// providerBase is the base currency CollectAPI quotes against. The
	// reference-currency cross rate is derived downstream in normalization.
	providerBase = "USD"

	defaultSampleCount = 50
	defaultTimeout     = 10 * time.Second
)

// CollectAPI talks to the CollectAPI economy and news endpoints. Every call
// carries the account token in the Authorization header and is bounded by
// Timeout so a stalled provider cannot block the scheduler past its tick.
type CollectAPI struct {
	BaseURL string
	Timeout time.Duration
	Client  *httpx.Client
}

var _ application.RateSource = (*CollectAPI)(nil)
var _ application.NewsSource = (*CollectAPI)(nil)

func NewCollectAPI(baseURL, token string, timeout time.Duration) *CollectAPI {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &CollectAPI{
		BaseURL: baseURL,
		Timeout: timeout,
		Client: &httpx.Client{
			HTTP:       &http.Client{Timeout: timeout},
			AuthHeader: "apikey " + token,
		},
	}
}

type currencyResp struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Result  struct {
		Base string            `json:"base"`
		Data []domain.RawQuote `json:"data"`
	} `json:"result"`
}

func (c *CollectAPI) CurrencyRates(ctx context.Context) ([]domain.RawQuote, error) {
	q := url.Values{}
	q.Set("base", providerBase)
	q.Set("int", strconv.Itoa(defaultSampleCount))
	var body currencyResp
	if err := c.getJSON(ctx, currencyToAllPath, q, &body); err != nil {
		return nil, err
	}
	if !body.Success {
		return nil, rejected(currencyToAllPath, body.Message)
	}
	return body.Result.Data, nil
}

type metalResp struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	// Result is a list for goldPrice but a single object for silverPrice.
	Result json.RawMessage `json:"result"`
}

func (c *CollectAPI) GoldQuotes(ctx context.Context) ([]domain.RawMetalQuote, error) {
	return c.metalQuotes(ctx, goldPricePath)
}

func (c *CollectAPI) SilverQuotes(ctx context.Context) ([]domain.RawMetalQuote, error) {
	return c.metalQuotes(ctx, silverPricePath)
}

func (c *CollectAPI) metalQuotes(ctx context.Context, path string) ([]domain.RawMetalQuote, error) {
	var body metalResp
	if err := c.getJSON(ctx, path, nil, &body); err != nil {
		return nil, err
	}
	if !body.Success {
		return nil, rejected(path, body.Message)
	}
	var list []domain.RawMetalQuote
	if err := json.Unmarshal(body.Result, &list); err == nil {
		return list, nil
	}
	var one domain.RawMetalQuote
	if err := json.Unmarshal(body.Result, &one); err != nil {
		return nil, malformed(path, fmt.Errorf("result is neither list nor object: %w", err))
	}
	return []domain.RawMetalQuote{one}, nil
}

type newsResp struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Result  []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Image       string `json:"image"`
		URL         string `json:"url"`
		Source      string `json:"source"`
		Date        string `json:"date"`
	} `json:"result"`
}

func (c *CollectAPI) Latest(ctx context.Context, country, category string) ([]domain.NewsItem, error) {
	q := url.Values{}
	q.Set("country", country)
	q.Set("tag", category)
	var body newsResp
	if err := c.getJSON(ctx, getNewsPath, q, &body); err != nil {
		return nil, err
	}
	if !body.Success {
		return nil, rejected(getNewsPath, body.Message)
	}
	out := make([]domain.NewsItem, 0, len(body.Result))
	for _, r := range body.Result {
		out = append(out, domain.NewsItem{
			Title:       r.Name,
			Description: r.Description,
			Image:       r.Image,
			Source:      strings.TrimSpace(r.Source),
			URL:         r.URL,
			Category:    category,
			PublishedAt: parseNewsDate(r.Date),
		})
	}
	return out, nil
}

// parseNewsDate tolerates the date formats CollectAPI has been observed to
// emit; an unparsable date falls back to the fetch time rather than dropping
// the item.
func parseNewsDate(s string) time.Time {
	layouts := []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"02.01.2006 15:04",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.UTC()
		}
	}
	return time.Now().UTC()
}

func (c *CollectAPI) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("collectapi: invalid base url: %w", err)
	}
	u.Path = path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("collectapi: create request: %w", err)
	}
	if err := c.Client.DoJSON(ctx, req, out); err != nil {
		return classify(path, err)
	}
	return nil
}
