package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/archiveone/panchat/pkg/errcode"
)

// Client is the typed client for the hosted data API. All reads and
// writes of the messaging subsystem go through it.
type Client struct {
	baseURL    string
	httpClient *client.Client
	token      string
}

// ClientOption is a function to configure the client
type ClientOption func(*Client)

// WithHertzClient sets a custom Hertz client
func WithHertzClient(httpClient *client.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithToken sets the bearer token attached to every request
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// NewClient creates a new API client
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	httpClient, err := client.NewClient(
		client.WithDialTimeout(10*time.Second),
		client.WithClientReadTimeout(30*time.Second),
		client.WithWriteTimeout(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http client: %w", err)
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// SetToken replaces the bearer token
func (c *Client) SetToken(token string) {
	c.token = token
}

// envelope is the standard API response wrapper
type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data,omitempty"`
}

// do sends the prepared request and decodes the envelope into result
func (c *Client) do(ctx context.Context, req *protocol.Request, result interface{}) error {
	resp := &protocol.Response{}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	if err := c.httpClient.Do(ctx, req, resp); err != nil {
		return errcode.ErrNetwork.Wrap(err)
	}

	var apiResp envelope
	if err := json.Unmarshal(resp.Body(), &apiResp); err != nil {
		return errcode.ErrNetwork.Wrap(fmt.Errorf("decode response: %w", err))
	}

	if apiResp.Code != 0 {
		return errcode.New(apiResp.Code, apiResp.Msg)
	}

	if result != nil && apiResp.Data != nil {
		if err := json.Unmarshal(apiResp.Data, result); err != nil {
			return errcode.ErrNetwork.Wrap(fmt.Errorf("decode response data: %w", err))
		}
	}

	return nil
}

// get makes a GET request with query parameters
func (c *Client) get(ctx context.Context, path string, params map[string]string, result interface{}) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		query := url.Values{}
		for k, v := range params {
			query.Set(k, v)
		}
		reqURL += "?" + query.Encode()
	}

	req := &protocol.Request{}
	req.SetMethod(consts.MethodGet)
	req.SetRequestURI(reqURL)

	return c.do(ctx, req, result)
}

// post makes a POST request with a JSON body
func (c *Client) post(ctx context.Context, path string, body interface{}, result interface{}) error {
	req := &protocol.Request{}
	req.SetMethod(consts.MethodPost)
	req.SetRequestURI(c.baseURL + path)
	req.Header.Set("Content-Type", "application/json")

	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return errcode.ErrInvalidParam.Wrap(err)
		}
		req.SetBody(jsonBody)
	}

	return c.do(ctx, req, result)
}

// postRaw makes a POST request with an opaque binary body
func (c *Client) postRaw(ctx context.Context, path string, params map[string]string, contentType string, body []byte, result interface{}) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		query := url.Values{}
		for k, v := range params {
			query.Set(k, v)
		}
		reqURL += "?" + query.Encode()
	}

	req := &protocol.Request{}
	req.SetMethod(consts.MethodPost)
	req.SetRequestURI(reqURL)
	req.Header.Set("Content-Type", contentType)
	req.SetBody(body)

	return c.do(ctx, req, result)
}
