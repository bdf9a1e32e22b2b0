package custody

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/relayer-service/relayer_service/internal/domain/entities"
)

const defaultTimeout = 30 * time.Second

// Config represents custody client configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the custody service over HTTP. Every call is a
// single attempt: the host transaction is all-or-nothing, so retrying
// value movement is the caller's decision, never this client's.
type Client struct {
	config         Config
	httpClient     *http.Client
	circuitBreaker *gobreaker.CircuitBreaker
	logger         *zap.Logger
}

// NewClient creates a new custody client
func NewClient(config Config, logger *zap.Logger) *Client {
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}

	cbSettings := gobreaker.Settings{
		Name:        "CustodyAPI",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Custody circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &Client{
		config:         config,
		httpClient:     &http.Client{Timeout: config.Timeout},
		circuitBreaker: gobreaker.NewCircuitBreaker(cbSettings),
		logger:         logger,
	}
}

func (c *Client) TokenDecimals(ctx context.Context, mint entities.Address) (uint8, error) {
	var resp mintInfoResponse
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/v1/mints/%s", mint), nil, &resp); err != nil {
		return 0, fmt.Errorf("mint info lookup failed: %w", err)
	}
	return resp.Decimals, nil
}

func (c *Client) Transfer(ctx context.Context, mint, from, to entities.Address, amount uint64) error {
	req := transferRequest{Mint: mint, From: from, To: to, Amount: amount}
	if err := c.doRequest(ctx, http.MethodPost, "/v1/transfers", req, nil); err != nil {
		return fmt.Errorf("custody transfer failed: %w", err)
	}
	return nil
}

func (c *Client) TransferNative(ctx context.Context, from, to entities.Address, amount uint64) error {
	req := transferRequest{From: from, To: to, Amount: amount}
	if err := c.doRequest(ctx, http.MethodPost, "/v1/transfers/native", req, nil); err != nil {
		return fmt.Errorf("native transfer failed: %w", err)
	}
	return nil
}

func (c *Client) Approve(ctx context.Context, mint, delegate entities.Address, amount uint64) error {
	req := approveRequest{Mint: mint, Delegate: delegate, Amount: amount}
	if err := c.doRequest(ctx, http.MethodPost, "/v1/approvals", req, nil); err != nil {
		return fmt.Errorf("custody approve failed: %w", err)
	}
	return nil
}

func (c *Client) OpenEscrow(ctx context.Context, mint entities.Address, escrowKey string) (entities.Address, error) {
	req := escrowRequest{Mint: mint, EscrowKey: escrowKey}
	var resp escrowResponse
	if err := c.doRequest(ctx, http.MethodPost, "/v1/escrows", req, &resp); err != nil {
		return entities.ZeroAddress, fmt.Errorf("open escrow failed: %w", err)
	}
	return resp.Address, nil
}

func (c *Client) CloseEscrow(ctx context.Context, escrowKey string, destination entities.Address) error {
	req := escrowCloseRequest{EscrowKey: escrowKey, Destination: destination}
	if err := c.doRequest(ctx, http.MethodPost, "/v1/escrows/close", req, nil); err != nil {
		return fmt.Errorf("close escrow failed: %w", err)
	}
	return nil
}

func (c *Client) WrapNative(ctx context.Context, escrowKey string, amount uint64) error {
	req := wrapRequest{EscrowKey: escrowKey, Amount: amount}
	if err := c.doRequest(ctx, http.MethodPost, "/v1/wrap", req, nil); err != nil {
		return fmt.Errorf("wrap native failed: %w", err)
	}
	return nil
}

func (c *Client) UnwrapNative(ctx context.Context, escrowKey string, destination entities.Address) error {
	req := escrowCloseRequest{EscrowKey: escrowKey, Destination: destination}
	if err := c.doRequest(ctx, http.MethodPost, "/v1/unwrap", req, nil); err != nil {
		return fmt.Errorf("unwrap native failed: %w", err)
	}
	return nil
}

func (c *Client) MintWrapped(ctx context.Context, mint, to entities.Address, amount uint64) error {
	req := mintRequest{Mint: mint, To: to, Amount: amount}
	if err := c.doRequest(ctx, http.MethodPost, "/v1/mint", req, nil); err != nil {
		return fmt.Errorf("mint wrapped failed: %w", err)
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, method, endpoint string, body, response interface{}) error {
	_, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		return nil, c.doRequestInternal(ctx, method, endpoint, body, response)
	})
	return err
}

func (c *Client) doRequestInternal(ctx context.Context, method, endpoint string, body, response interface{}) error {
	fullURL := c.config.BaseURL + endpoint

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = strings.NewReader(string(payload))
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp ErrorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Message != "" {
			errResp.StatusCode = resp.StatusCode
			return &errResp
		}
		return fmt.Errorf("API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	if response != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, response); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}
