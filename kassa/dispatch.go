package kassa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kassakit/kassakit/observe"
	"github.com/kassakit/kassakit/sign"
)

// apiResponse is a fully read response from the remote service.
type apiResponse struct {
	StatusCode int
	Body       []byte
}

// get dispatches a signed GET and returns the parsed body. On 401 the token
// is refreshed as a side effect, but the 401 body is still what the caller
// gets back; GET does not retry. The asymmetry with post is part of the
// external contract.
func (c *Client) get(ctx context.Context, operation, resource string, params map[string]any) (map[string]any, error) {
	meta := observe.CallMeta{Operation: operation, Resource: resource, Method: http.MethodGet}
	ctx, span := c.tracer.StartSpan(ctx, meta)
	start := time.Now()

	body, status, err := c.doGet(ctx, resource, params)

	c.metrics.RecordCall(ctx, meta, status, time.Since(start), err)
	c.tracer.EndSpan(span, status, err)
	return body, err
}

// post dispatches a signed POST and returns the parsed body. On 401 the
// token is refreshed, injected into the parameters, and the request is
// re-signed and resent exactly once; the retry's body is returned whatever
// its status.
func (c *Client) post(ctx context.Context, operation, resource string, params map[string]any) (map[string]any, error) {
	meta := observe.CallMeta{Operation: operation, Resource: resource, Method: http.MethodPost}
	ctx, span := c.tracer.StartSpan(ctx, meta)
	start := time.Now()

	body, status, err := c.doPost(ctx, resource, params)

	c.metrics.RecordCall(ctx, meta, status, time.Since(start), err)
	c.tracer.EndSpan(span, status, err)
	return body, err
}

func (c *Client) doGet(ctx context.Context, resource string, params map[string]any) (map[string]any, int, error) {
	resp, err := c.send(ctx, http.MethodGet, resource, params)
	if err != nil {
		return nil, 0, err
	}

	if _, err := c.interpretStatus(ctx, resource, resp); err != nil {
		return nil, resp.StatusCode, err
	}

	body, err := parseBody(resp)
	return body, resp.StatusCode, err
}

func (c *Client) doPost(ctx context.Context, resource string, params map[string]any) (map[string]any, int, error) {
	resp, err := c.send(ctx, http.MethodPost, resource, params)
	if err != nil {
		return nil, 0, err
	}

	refreshed, err := c.interpretStatus(ctx, resource, resp)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	if refreshed {
		params["token"] = c.Token()
		retry, err := c.send(ctx, http.MethodPost, resource, params)
		if err != nil {
			return nil, 0, err
		}
		body, err := parseBody(retry)
		return body, retry.StatusCode, err
	}

	body, err := parseBody(resp)
	return body, resp.StatusCode, err
}

// interpretStatus applies the shared status rule. 200/400/422 are terminal:
// the body is meaningful either way and 400/422 carry application-level
// rejections, not errors. 401 refreshes the token synchronously and reports
// refreshed=true; whether to resend is the caller's decision. 500 and
// anything unrecognized become errors carrying the raw response.
func (c *Client) interpretStatus(ctx context.Context, resource string, resp *apiResponse) (refreshed bool, err error) {
	switch resp.StatusCode {
	case http.StatusOK, http.StatusBadRequest, http.StatusUnprocessableEntity:
		return false, nil

	case http.StatusUnauthorized:
		c.logger.Debug(ctx, "token expired, refreshing",
			observe.Field{Key: "status_code", Value: resp.StatusCode},
			observe.Field{Key: "resource", Value: resource},
			observe.Field{Key: "body", Value: string(resp.Body)},
		)
		if _, err := c.refreshToken(ctx); err != nil {
			return false, err
		}
		return true, nil

	case http.StatusInternalServerError:
		c.logger.Critical(ctx, "server error",
			observe.Field{Key: "status_code", Value: resp.StatusCode},
			observe.Field{Key: "resource", Value: resource},
			observe.Field{Key: "body", Value: string(resp.Body)},
		)
		return false, &ServerError{StatusCode: resp.StatusCode, Body: resp.Body}

	default:
		c.logger.Error(ctx, "unexpected status",
			observe.Field{Key: "status_code", Value: resp.StatusCode},
			observe.Field{Key: "resource", Value: resource},
			observe.Field{Key: "body", Value: string(resp.Body)},
		)
		return false, &ProtocolError{StatusCode: resp.StatusCode, Body: resp.Body}
	}
}

// send signs params, builds the request, and executes it through the
// transport. Every request carries a "sign" header computed over exactly the
// parameters being sent. Transport errors pass through unwrapped.
func (c *Client) send(ctx context.Context, method, resource string, params map[string]any) (*apiResponse, error) {
	signature, err := sign.Digest(params, c.secret, c.newHash)
	if err != nil {
		return nil, err
	}

	endpoint := c.account + "/" + resource

	var req *http.Request
	switch method {
	case http.MethodGet:
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		query := url.Values{}
		for key, value := range params {
			query.Set(key, queryValue(value))
		}
		req.URL.RawQuery = query.Encode()

	default:
		body, cerr := sign.Canonical(params)
		if cerr != nil {
			return nil, cerr
		}
		req, err = http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("sign", signature)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return &apiResponse{StatusCode: resp.StatusCode, Body: body}, nil
}

// queryValue renders a parameter for the query string. Strings pass through;
// anything structured is sent as its JSON form.
func queryValue(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return string(encoded)
}

// parseBody decodes the response JSON into a generic mapping. An empty body
// decodes to an empty mapping.
func parseBody(resp *apiResponse) (map[string]any, error) {
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return map[string]any{}, nil
	}

	var body map[string]any
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return body, nil
}
