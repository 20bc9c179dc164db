package api

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/imroc/req/v3"

	"github.com/dimasma0305/filelist/internal/filelist/config"
)

// Client polls a running service over HTTP
type Client struct {
	URL    string
	Client *req.Client
}

// Snapshot is the payload returned by GET /api/snapshot
type Snapshot struct {
	Data     []byte
	Length   int
	Sequence uint64
	Codec    string
}

// NewClient creates a client for the service at baseURL
func NewClient(baseURL string) *Client {
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	return &Client{
		URL: strings.TrimRight(baseURL, "/"),
		Client: req.C().
			SetUserAgent("filelist-client").
			SetTimeout(30*time.Second).
			SetCommonRetryCount(2).
			SetCommonRetryBackoffInterval(100*time.Millisecond, time.Second),
	}
}

func (c *Client) check(resp *req.Response, err error, errBody *ErrorBody) error {
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if resp.IsErrorState() {
		if errBody.Error != "" {
			return fmt.Errorf("%s (%d): %s", resp.Request.RawURL, resp.StatusCode, errBody.Error)
		}
		return fmt.Errorf("%s: unexpected status %d", resp.Request.RawURL, resp.StatusCode)
	}
	return nil
}

// Snapshot fetches the compressed snapshot and its valid length
func (c *Client) Snapshot(ctx context.Context) (*Snapshot, error) {
	var errBody ErrorBody
	resp, err := c.Client.R().
		SetContext(ctx).
		SetErrorResult(&errBody).
		Get(c.URL + "/api/snapshot")
	if err := c.check(resp, err, &errBody); err != nil {
		return nil, err
	}

	length, err := strconv.Atoi(resp.GetHeader(HeaderValidLength))
	if err != nil {
		return nil, fmt.Errorf("invalid %s header: %w", HeaderValidLength, err)
	}
	sequence, _ := strconv.ParseUint(resp.GetHeader(HeaderSequence), 10, 64)

	data := resp.Bytes()
	if length > len(data) {
		return nil, fmt.Errorf("short snapshot: %d of %d bytes", len(data), length)
	}
	return &Snapshot{
		Data:     data[:length],
		Length:   length,
		Sequence: sequence,
		Codec:    resp.GetHeader(HeaderCodec),
	}, nil
}

// Names fetches the decoded list of published names
func (c *Client) Names(ctx context.Context) ([]string, error) {
	var names []string
	var errBody ErrorBody
	resp, err := c.Client.R().
		SetContext(ctx).
		SetSuccessResult(&names).
		SetErrorResult(&errBody).
		Get(c.URL + "/api/snapshot/names")
	if err := c.check(resp, err, &errBody); err != nil {
		return nil, err
	}
	return names, nil
}

// Config fetches the current configuration
func (c *Client) Config(ctx context.Context) (config.Configuration, error) {
	var cfg config.Configuration
	var errBody ErrorBody
	resp, err := c.Client.R().
		SetContext(ctx).
		SetSuccessResult(&cfg).
		SetErrorResult(&errBody).
		Get(c.URL + "/api/config")
	return cfg, c.check(resp, err, &errBody)
}

// SetConfig applies a partial configuration write
func (c *Client) SetConfig(ctx context.Context, patch ConfigPatch) (*ConfigResponse, error) {
	var out ConfigResponse
	var errBody ErrorBody
	resp, err := c.Client.R().
		SetContext(ctx).
		SetBodyJsonMarshal(&patch).
		SetSuccessResult(&out).
		SetErrorResult(&errBody).
		Put(c.URL + "/api/config")
	if err := c.check(resp, err, &errBody); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh triggers a manual refresh
func (c *Client) Refresh(ctx context.Context) (*RefreshReport, error) {
	var out RefreshReport
	resp, err := c.Client.R().
		SetContext(ctx).
		SetSuccessResult(&out).
		SetErrorResult(&out).
		Post(c.URL + "/api/refresh")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.IsErrorState() {
		return &out, fmt.Errorf("refresh failed (%d): %s", resp.StatusCode, out.Error)
	}
	return &out, nil
}
