// oracle/rpc_source.go
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	gate_errors "github.com/dev-mohitbeniwal/tokengate/errors"
	logger "github.com/dev-mohitbeniwal/tokengate/logging"
)

// RPCSource queries a Solana JSON-RPC node with getTokenAccountsByOwner.
// It is the primary source: no API key, and an empty account list is a
// definitive zero balance.
type RPCSource struct {
	url    string
	client *http.Client
}

func NewRPCSource(url string, timeout time.Duration) *RPCSource {
	return &RPCSource{url: url, client: newHTTPClient(timeout)}
}

func (s *RPCSource) Name() string { return "solana-rpc" }

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcTokenAccountsResponse struct {
	Result *struct {
		Value []struct {
			Account struct {
				Data struct {
					Parsed struct {
						Info struct {
							TokenAmount struct {
								UIAmount *float64 `json:"uiAmount"`
							} `json:"tokenAmount"`
						} `json:"info"`
					} `json:"parsed"`
				} `json:"data"`
			} `json:"account"`
		} `json:"value"`
	} `json:"result"`
}

func (s *RPCSource) Fetch(ctx context.Context, wallet, mint string) (float64, error) {
	payload := rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "getTokenAccountsByOwner",
		Params: []interface{}{
			wallet,
			map[string]string{"mint": mint},
			map[string]string{"encoding": "jsonParsed"},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("marshal rpc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

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

	var parsed rpcTokenAccountsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("decode rpc response: %w", err)
	}
	if parsed.Result == nil {
		return 0, fmt.Errorf("%s: response missing result", s.Name())
	}

	// No token account for this mint: a definitive zero balance.
	if len(parsed.Result.Value) == 0 {
		logger.Debug("No token accounts found via RPC", zap.String("wallet", wallet))
		return 0, nil
	}

	amount := parsed.Result.Value[0].Account.Data.Parsed.Info.TokenAmount.UIAmount
	if amount == nil {
		return 0, nil
	}
	return *amount, nil
}
