package tokenbridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/relayer-service/relayer_service/internal/domain/entities"
)

const (
	defaultTimeout       = 30 * time.Second
	maxRetries           = 3
	maxRequestsPerSecond = 25
)

// Config represents bridge client configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to a token bridge node over HTTP.
type Client struct {
	config         Config
	httpClient     *http.Client
	circuitBreaker *gobreaker.CircuitBreaker
	rateLimiter    *rate.Limiter
	logger         *zap.Logger
}

// NewClient creates a new token bridge client
func NewClient(config Config, logger *zap.Logger) *Client {
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}

	cbSettings := gobreaker.Settings{
		Name:        "TokenBridgeAPI",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info("Token bridge circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &Client{
		config:         config,
		httpClient:     &http.Client{Timeout: config.Timeout},
		circuitBreaker: gobreaker.NewCircuitBreaker(cbSettings),
		rateLimiter:    rate.NewLimiter(rate.Limit(maxRequestsPerSecond), 1),
		logger:         logger,
	}
}

// PostMessageWithPayload publishes an outbound transfer message
func (c *Client) PostMessageWithPayload(ctx context.Context, req *PostMessageRequest) (*PostedMessage, error) {
	var resp PostedMessage
	if err := c.doRequest(ctx, http.MethodPost, "/v1/messages", req, &resp); err != nil {
		return nil, fmt.Errorf("post message failed: %w", err)
	}
	return &resp, nil
}

// GetAttestedTransfer fetches a verified inbound transfer by message id
func (c *Client) GetAttestedTransfer(ctx context.Context, messageID string) (*AttestedTransfer, error) {
	endpoint := fmt.Sprintf("/v1/transfers/%s", messageID)
	var resp AttestedTransfer
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		if apiErr, ok := err.(*ErrorResponse); ok && apiErr.IsNotFound() {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("get attested transfer failed: %w", err)
	}
	return &resp, nil
}

// IsClaimed reports whether a transfer has already been redeemed
func (c *Client) IsClaimed(ctx context.Context, messageHash string) (bool, error) {
	endpoint := fmt.Sprintf("/v1/claims/%s", messageHash)
	var resp claimResponse
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return false, fmt.Errorf("claim lookup failed: %w", err)
	}
	return resp.Claimed, nil
}

// ForeignEndpoint looks up the bridge's registered endpoint for a chain
func (c *Client) ForeignEndpoint(ctx context.Context, chain uint16) (*ForeignEndpoint, error) {
	endpoint := fmt.Sprintf("/v1/endpoints/%d", chain)
	var resp ForeignEndpoint
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, fmt.Errorf("foreign endpoint lookup failed: %w", err)
	}
	return &resp, nil
}

// ListPendingForRedeemer returns attested, unclaimed transfers for a redeemer
func (c *Client) ListPendingForRedeemer(ctx context.Context, redeemer entities.Address) ([]*AttestedTransfer, error) {
	endpoint := fmt.Sprintf("/v1/transfers?redeemer=%s&claimed=false", redeemer)
	var resp attestedTransfersResponse
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, fmt.Errorf("list pending transfers failed: %w", err)
	}
	return resp.Transfers, nil
}

func (c *Client) doRequest(ctx context.Context, method, endpoint string, body, response interface{}) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	_, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		return nil, c.doRequestInternal(ctx, method, endpoint, body, response)
	})
	return err
}

func (c *Client) doRequestInternal(ctx context.Context, method, endpoint string, body, response interface{}) error {
	fullURL := c.config.BaseURL + endpoint

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			// POSTs move value; never replay them blindly.
			if method != http.MethodGet {
				break
			}
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read body: %w", err)
			continue
		}

		// Retry on 5xx
		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error: status %d", resp.StatusCode)
			continue
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
	return lastErr
}
