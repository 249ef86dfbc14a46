// Package bridge implements health.Source over HTTP against a companion
// process that owns the device's health data.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/steady/internal/constants"
	"github.com/julianstephens/steady/internal/health"
	"github.com/julianstephens/steady/internal/keyring"
	"github.com/julianstephens/steady/internal/models"
)

type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// New returns a client for baseURL authenticating with the token stored in
// the keyring, if any.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		Token:   keyring.Lookup(keyring.AccountHealthToken, ""),
	}
}

type statusResponse struct {
	Available  bool `json:"available"`
	Authorized bool `json:"authorized"`
}

type authorizeResponse struct {
	Granted bool `json:"granted"`
}

func (c *Client) baseURL() string {
	return strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: constants.HealthBridgeTimeout}
}

func (c *Client) do(ctx context.Context, method, path string, out any) error {
	base := c.baseURL()
	if base == "" {
		return health.ErrUnavailable
	}

	var body io.Reader
	if method == http.MethodPost {
		body = bytes.NewReader([]byte("{}"))
	}
	req, err := http.NewRequestWithContext(ctx, method, base+path, body)
	if err != nil {
		return fmt.Errorf("create health bridge request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("execute health bridge request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read health bridge response: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return health.ErrNotAuthorized
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("health bridge request %s failed with status %d", path, resp.StatusCode)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode health bridge response: %w", err)
	}
	return nil
}

// IsAvailable reports whether the bridge answers and has a health capability.
func (c *Client) IsAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	var st statusResponse
	if err := c.do(ctx, http.MethodGet, "/v1/status", &st); err != nil {
		return false
	}
	return st.Available
}

func (c *Client) CheckAuthorization(ctx context.Context) (bool, error) {
	var st statusResponse
	if err := c.do(ctx, http.MethodGet, "/v1/status", &st); err != nil {
		return false, err
	}
	return st.Authorized, nil
}

func (c *Client) RequestPermissions(ctx context.Context) (bool, error) {
	var resp authorizeResponse
	if err := c.do(ctx, http.MethodPost, "/v1/authorize", &resp); err != nil {
		return false, err
	}
	return resp.Granted, nil
}

func (c *Client) TodayMetrics(ctx context.Context) (models.HealthMetrics, error) {
	var m models.HealthMetrics
	if err := c.do(ctx, http.MethodGet, "/v1/metrics/today", &m); err != nil {
		return models.HealthMetrics{}, err
	}
	return m, nil
}

func (c *Client) MetricHistory(ctx context.Context, key models.MetricKey, days int) ([]models.MetricPoint, error) {
	path := fmt.Sprintf("/v1/metrics/%s/history?days=%s", url.PathEscape(string(key)), strconv.Itoa(days))
	var points []models.MetricPoint
	if err := c.do(ctx, http.MethodGet, path, &points); err != nil {
		return nil, err
	}
	return points, nil
}

var _ health.Source = (*Client)(nil)
