package kassa

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/kassakit/kassakit/observe"
)

// Token returns the bearer token the client currently holds.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) tokenKey() string {
	return tokenKeyPrefix + c.appID
}

// initToken adopts a cached token when one exists, with no network call;
// otherwise it performs a full refresh.
func (c *Client) initToken(ctx context.Context) error {
	if value, ok := c.cache.Get(ctx, c.tokenKey()); ok {
		c.mu.Lock()
		c.token = string(value)
		c.mu.Unlock()
		return nil
	}

	_, err := c.refreshToken(ctx)
	return err
}

// refreshToken requests a new token from the issuing endpoint, stores it as
// current, and writes it through to the cache. Concurrent callers racing the
// same expiry share one issuing call. The server is the sole authority on
// token validity; no expiry is tracked locally.
func (c *Client) refreshToken(ctx context.Context) (string, error) {
	value, err, _ := c.sf.Do("refresh", func() (any, error) {
		token, err := c.issueToken(ctx)
		c.metrics.RecordTokenRefresh(ctx, err)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.token = token
		c.mu.Unlock()

		if err := c.cache.Set(ctx, c.tokenKey(), []byte(token)); err != nil {
			// The token itself is valid; a dead cache only costs the next
			// process a refresh.
			c.logger.Warn(ctx, "failed to persist token", observe.Field{Key: "error", Value: err.Error()})
		}
		return token, nil
	})
	if err != nil {
		return "", err
	}
	return value.(string), nil
}

// issueToken performs the self-signed GET against the Token resource and
// extracts the token field. No retry at this layer.
func (c *Client) issueToken(ctx context.Context) (string, error) {
	params := map[string]any{
		"app_id": c.appID,
		"nonce":  c.nonce,
	}

	resp, err := c.send(ctx, http.MethodGet, "Token", params)
	if err != nil {
		return "", err
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusInternalServerError:
		c.logger.Critical(ctx, "token issuing failed",
			observe.Field{Key: "status_code", Value: resp.StatusCode},
			observe.Field{Key: "body", Value: string(resp.Body)},
		)
		return "", &ServerError{StatusCode: resp.StatusCode, Body: resp.Body}
	default:
		c.logger.Error(ctx, "unexpected status from token issuing",
			observe.Field{Key: "status_code", Value: resp.StatusCode},
			observe.Field{Key: "body", Value: string(resp.Body)},
		)
		return "", &ProtocolError{StatusCode: resp.StatusCode, Body: resp.Body}
	}

	var issued struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp.Body, &issued); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if issued.Token == "" {
		return "", ErrNoToken
	}
	return issued.Token, nil
}
