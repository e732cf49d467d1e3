package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// HermesClient fetches price samples from a Pyth Hermes-compatible HTTP API.
type HermesClient struct {
	baseURL    string
	httpClient *http.Client
	delay      time.Duration
	maxRetries int
}

// NewHermesClient creates a new Hermes API client.
func NewHermesClient(baseURL string, delay time.Duration, maxRetries int) *HermesClient {
	return &HermesClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		delay:      delay,
		maxRetries: maxRetries,
	}
}

type hermesFeed struct {
	ID    string `json:"id"`
	Price struct {
		Price       string `json:"price"`
		Conf        string `json:"conf"`
		Expo        int32  `json:"expo"`
		PublishTime int64  `json:"publish_time"`
	} `json:"price"`
}

// QueryPrice resolves the reference to a current sample. Stub references are
// answered locally; feed references hit the Hermes latest-price endpoint.
func (c *HermesClient) QueryPrice(ctx context.Context, ref Ref) (Price, error) {
	if ref.Kind == RefKindStub {
		return resolveStub(ref)
	}

	endpoint := fmt.Sprintf("%s/api/latest_price_feeds?ids[]=%s", c.baseURL, url.QueryEscape(ref.FeedID))
	body, err := c.fetchWithRetry(ctx, endpoint)
	if err != nil {
		return Price{}, err
	}

	var feeds []hermesFeed
	if err := json.Unmarshal(body, &feeds); err != nil {
		return Price{}, fmt.Errorf("parsing Hermes response: %w", err)
	}
	if len(feeds) == 0 {
		return Price{}, fmt.Errorf("feed %s: %w", ref.FeedID, ErrNoPrice)
	}

	raw := feeds[0].Price
	mantissa, err := strconv.ParseInt(raw.Price, 10, 64)
	if err != nil {
		return Price{}, fmt.Errorf("parsing price mantissa %q: %w", raw.Price, err)
	}
	conf, err := strconv.ParseUint(raw.Conf, 10, 64)
	if err != nil {
		return Price{}, fmt.Errorf("parsing price confidence %q: %w", raw.Conf, err)
	}

	return Price{
		Mantissa:    mantissa,
		Expo:        raw.Expo,
		Conf:        conf,
		PublishTime: raw.PublishTime,
	}, nil
}

func (c *HermesClient) fetchWithRetry(ctx context.Context, endpoint string) ([]byte, error) {
	var lastErr error
	for attempt := range c.maxRetries + 1 {
		if attempt > 0 {
			baseDelay := c.delay
			if baseDelay == 0 {
				baseDelay = time.Second
			}
			delay := baseDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("creating Hermes request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("Hermes request failed: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading Hermes response: %w", err)
		}

		if resp.StatusCode == http.StatusOK {
			return body, nil
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("Hermes HTTP %d (attempt %d/%d)", resp.StatusCode, attempt+1, c.maxRetries+1)
			continue
		}

		return nil, fmt.Errorf("Hermes HTTP %d: %s", resp.StatusCode, string(body))
	}

	return nil, lastErr
}
