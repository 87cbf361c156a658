// oracle/source.go
package oracle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// BalanceSource is one upstream service capable of answering a balance
// query. A successful fetch returns the token balance for the wallet;
// a wallet with no account for the mint is a successful zero, not an
// error. Rate limiting surfaces as gate_errors.ErrRateLimited so the
// oracle can skip to the next source. Each call is attempted exactly
// once; the source's HTTP client carries its own bounded timeout.
type BalanceSource interface {
	Name() string
	Fetch(ctx context.Context, wallet, mint string) (float64, error)
}

// errTokenNotListed marks an indexer response that simply does not list
// the mint. Unlike the RPC's empty account list it is not a definitive
// zero (indexers omit dust and unindexed tokens), so the oracle treats it
// as a source failure and falls through.
var errTokenNotListed = errors.New("token not listed in source response")

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func unexpectedStatus(source string, code int) error {
	return fmt.Errorf("%s: unexpected status %d", source, code)
}
