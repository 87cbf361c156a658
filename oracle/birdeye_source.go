// oracle/birdeye_source.go
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	gate_errors "github.com/dev-mohitbeniwal/tokengate/errors"
)

// BirdeyeSource queries the Birdeye portfolio API as the secondary source.
// A mint missing from the returned portfolio is indeterminate, not zero:
// the indexer omits tokens it has not indexed, so the oracle falls through
// to the next source.
type BirdeyeSource struct {
	baseURL string
	client  *http.Client
}

func NewBirdeyeSource(baseURL string, timeout time.Duration) *BirdeyeSource {
	return &BirdeyeSource{baseURL: baseURL, client: newHTTPClient(timeout)}
}

func (s *BirdeyeSource) Name() string { return "birdeye" }

type birdeyePortfolioResponse struct {
	Data *struct {
		Tokens []struct {
			Mint  string  `json:"mint"`
			Value float64 `json:"value"`
		} `json:"tokens"`
	} `json:"data"`
}

func (s *BirdeyeSource) Fetch(ctx context.Context, wallet, mint string) (float64, error) {
	endpoint := fmt.Sprintf("%s/public/portfolio?wallet=%s", s.baseURL, url.QueryEscape(wallet))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return 0, gate_errors.ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return 0, unexpectedStatus(s.Name(), resp.StatusCode)
	}

	var parsed birdeyePortfolioResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("decode birdeye response: %w", err)
	}
	if parsed.Data == nil {
		return 0, fmt.Errorf("%s: response missing data", s.Name())
	}

	for _, token := range parsed.Data.Tokens {
		if token.Mint == mint {
			return token.Value, nil
		}
	}
	return 0, errTokenNotListed
}
