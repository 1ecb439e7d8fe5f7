package tokenclaim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// SolanaClient queries a Solana JSON-RPC endpoint.
type SolanaClient struct {
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

type SolanaConfig struct {
	Endpoint          string
	RequestsPerSecond float64
	Timeout           time.Duration
	HTTPClient        *http.Client
}

func NewSolanaClient(cfg SolanaConfig) *SolanaClient {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &SolanaClient{
		endpoint:   cfg.Endpoint,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, 1),
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

// HasPositiveBalance reports whether owner holds any token account for mint
// with a strictly positive raw amount.
func (c *SolanaClient) HasPositiveBalance(ctx context.Context, owner, mint string) (bool, error) {
	body, err := c.call(ctx, "getParsedTokenAccountsByOwner", []any{
		owner,
		map[string]string{"mint": mint},
		map[string]string{"encoding": "jsonParsed"},
	})
	if err != nil {
		return false, err
	}

	accounts := gjson.GetBytes(body, "result.value")
	if !accounts.IsArray() {
		return false, fmt.Errorf("getParsedTokenAccountsByOwner: unexpected result shape")
	}

	held := false
	accounts.ForEach(func(_, account gjson.Result) bool {
		if positive(account.Get("account.data.parsed.info.tokenAmount.amount").String()) {
			held = true
			return false
		}
		return true
	})
	return held, nil
}

func positive(amount string) bool {
	n, ok := new(big.Int).SetString(amount, 10)
	return ok && n.Sign() > 0
}

func (c *SolanaClient) call(ctx context.Context, method string, params []any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}

	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      uuid.NewString(),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: encode request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: rpc returned status %d", method, resp.StatusCode)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%s: invalid json response", method)
	}
	if rpcErr := gjson.GetBytes(body, "error"); rpcErr.Exists() {
		return nil, fmt.Errorf("%s: rpc error %d: %s", method,
			rpcErr.Get("code").Int(), rpcErr.Get("message").String())
	}
	return body, nil
}
