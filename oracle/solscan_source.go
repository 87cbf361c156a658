// oracle/solscan_source.go
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

// SolscanSource queries the Solscan account tokens API as the tertiary
// source. Same indeterminate-absence semantics as Birdeye.
type SolscanSource struct {
	baseURL string
	client  *http.Client
}

func NewSolscanSource(baseURL string, timeout time.Duration) *SolscanSource {
	return &SolscanSource{baseURL: baseURL, client: newHTTPClient(timeout)}
}

func (s *SolscanSource) Name() string { return "solscan" }

type solscanTokensResponse struct {
	Data []struct {
		Mint        string `json:"mint"`
		TokenAmount struct {
			UIAmount *float64 `json:"uiAmount"`
		} `json:"tokenAmount"`
	} `json:"data"`
}

func (s *SolscanSource) Fetch(ctx context.Context, wallet, mint string) (float64, error) {
	endpoint := fmt.Sprintf("%s/account/tokens?account=%s", s.baseURL, url.QueryEscape(wallet))

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

	var parsed solscanTokensResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("decode solscan response: %w", err)
	}
	if parsed.Data == nil {
		return 0, fmt.Errorf("%s: response missing data", s.Name())
	}

	for _, token := range parsed.Data {
		if token.Mint == mint {
			if token.TokenAmount.UIAmount == nil {
				return 0, nil
			}
			return *token.TokenAmount.UIAmount, nil
		}
	}
	return 0, errTokenNotListed
}
