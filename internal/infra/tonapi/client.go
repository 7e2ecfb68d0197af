// Package tonapi implements the provider API client over the TONAPI v2
// REST surface.
package tonapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/openton/tonkit/internal/core/domain"
	"github.com/openton/tonkit/internal/syncing/metrics"
)

// Network selects the provider endpoint.
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
)

// BaseURL returns the provider host for the network.
func (n Network) BaseURL() string {
	if n == NetworkTestnet {
		return "https://testnet.tonapi.io"
	}
	return "https://tonapi.io"
}

// Config holds provider client configuration.
type Config struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

// Client is the TONAPI REST client.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *slog.Logger
}

// NewClient creates a provider client.
func NewClient(cfg Config, log *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = NetworkMainnet.BaseURL()
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// GetAccount fetches the balance snapshot of an address.
func (c *Client) GetAccount(ctx context.Context, address string) (*domain.Account, error) {
	var payload accountPayload
	if err := c.get(ctx, "getAccount", "/v2/accounts/"+url.PathEscape(address), nil, &payload); err != nil {
		return nil, err
	}
	return &domain.Account{
		Address: normalizeOr(payload.Address),
		Balance: big.NewInt(payload.Balance),
		Status:  mapAccountStatus(payload.Status),
	}, nil
}

// GetAccountJettonBalances fetches the full jetton balance set of an
// address.
func (c *Client) GetAccountJettonBalances(ctx context.Context, address string) ([]domain.JettonBalance, error) {
	var payload jettonBalancesPayload
	if err := c.get(ctx, "getJettonBalances", "/v2/accounts/"+url.PathEscape(address)+"/jettons", nil, &payload); err != nil {
		return nil, err
	}

	out := make([]domain.JettonBalance, 0, len(payload.Balances))
	for _, b := range payload.Balances {
		balance, err := parseAmount(b.Balance)
		if err != nil {
			c.log.Warn("Dropping jetton balance with invalid amount",
				"jetton", b.Jetton.Address, "error", err)
			continue
		}
		jetton := mapJetton(b.Jetton)
		out = append(out, domain.JettonBalance{
			JettonAddress: jetton.Address,
			Jetton:        jetton,
			Balance:       balance,
			WalletAddress: normalizeOr(b.WalletAddress.Address),
		})
	}
	return out, nil
}

// GetEvents fetches one page of account events, newest first. beforeLt
// bounds lt exclusively from above; startTimestamp bounds timestamps
// inclusively from below.
func (c *Client) GetEvents(ctx context.Context, address string, beforeLt *int64, startTimestamp *int64, limit int) ([]*domain.Event, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	if beforeLt != nil {
		query.Set("before_lt", strconv.FormatInt(*beforeLt, 10))
	}
	if startTimestamp != nil {
		query.Set("start_date", strconv.FormatInt(*startTimestamp, 10))
	}

	var payload eventsPayload
	if err := c.get(ctx, "getEvents", "/v2/accounts/"+url.PathEscape(address)+"/events", query, &payload); err != nil {
		return nil, err
	}

	events := make([]*domain.Event, 0, len(payload.Events))
	for i := range payload.Events {
		event, ok := mapEvent(&payload.Events[i], c.log)
		if !ok {
			c.log.Warn("Discarding event with no parseable actions",
				"event_id", payload.Events[i].EventID)
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

// GetJettonInfo fetches the metadata of one jetton master.
func (c *Client) GetJettonInfo(ctx context.Context, address string) (*domain.Jetton, error) {
	var payload struct {
		Metadata jettonPreviewPayload `json:"metadata"`
	}
	if err := c.get(ctx, "getJettonInfo", "/v2/jettons/"+url.PathEscape(address), nil, &payload); err != nil {
		return nil, err
	}
	jetton := mapJetton(payload.Metadata)
	if jetton.Address == "" {
		jetton.Address = normalizeOr(address)
	}
	return &jetton, nil
}

// GetAccountSeqno fetches the wallet sequence number.
func (c *Client) GetAccountSeqno(ctx context.Context, address string) (uint32, error) {
	var payload seqnoPayload
	if err := c.get(ctx, "getSeqno", "/v2/wallet/"+url.PathEscape(address)+"/seqno", nil, &payload); err != nil {
		return 0, err
	}
	return payload.Seqno, nil
}

// GetRawTime fetches the provider's view of unix time.
func (c *Client) GetRawTime(ctx context.Context) (int64, error) {
	var payload rawTimePayload
	if err := c.get(ctx, "getRawTime", "/v2/liteserver/get_time", nil, &payload); err != nil {
		return 0, err
	}
	return payload.Time, nil
}

// EstimateFee runs a dry-run emulation of a signed message blob.
func (c *Client) EstimateFee(ctx context.Context, boc string) (*domain.EmulateResult, error) {
	body, _ := json.Marshal(map[string]string{"boc": boc})

	var payload emulatePayload
	if err := c.post(ctx, "emulate", "/v2/events/emulate", body, &payload); err != nil {
		return nil, err
	}

	fee := payload.Trace.Transaction.TotalFees
	if fee == 0 && payload.Event.Extra < 0 {
		fee = -payload.Event.Extra
	}

	result := &domain.EmulateResult{TotalFee: big.NewInt(fee)}
	if event, ok := mapEvent(&payload.Event, c.log); ok {
		result.Event = event
	}
	return result, nil
}

// Send submits a signed message blob to the network.
func (c *Client) Send(ctx context.Context, boc string) error {
	body, _ := json.Marshal(map[string]string{"boc": boc})
	return c.post(ctx, "send", "/v2/blockchain/message", body, nil)
}

func (c *Client) get(ctx context.Context, method, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return c.do(method, req, out)
}

func (c *Client) post(ctx context.Context, method, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(method, req, out)
}

func (c *Client) do(method string, req *http.Request, out any) error {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.APILatency.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues(method, "error").Inc()
		return fmt.Errorf("request %s failed: %w", method, err)
	}
	defer resp.Body.Close()

	metrics.APIRequestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("request %s failed to read body: %w", method, err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorPayload
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("request %s failed: status %d: %s", method, resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("request %s failed: status %d", method, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("request %s failed to decode response: %w", method, err)
	}
	return nil
}

func mapAccountStatus(s string) domain.AccountStatus {
	switch s {
	case "nonexist":
		return domain.AccountStatusNonexist
	case "uninit":
		return domain.AccountStatusUninit
	case "active":
		return domain.AccountStatusActive
	case "frozen":
		return domain.AccountStatusFrozen
	default:
		return domain.AccountStatusUnknown
	}
}
