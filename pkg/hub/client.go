package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/hubpanel/pkg/device"
	"github.com/urmzd/hubpanel/pkg/rule"
)

// DefaultTimeout bounds a single hub request.
const DefaultTimeout = 10 * time.Second

// Client talks to the hub's REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a client for the hub at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the hub address the client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) IsConfigured() bool {
	return c.baseURL != ""
}

type actionRequest struct {
	DeviceID string `json:"device_id"`
	Action   string `json:"action"`
	Value    any    `json:"value,omitempty"`
}

type renameRequest struct {
	NewName string `json:"new_name"`
}

type listDevicesResponse struct {
	Devices []device.Device `json:"devices"`
}

type listGroupsResponse struct {
	Groups []device.Group `json:"groups"`
}

type listRulesResponse struct {
	Rules []json.RawMessage `json:"rules"`
}

type logsResponse struct {
	Logs []string `json:"logs"`
}

type errorBody struct {
	Detail  any    `json:"detail"`
	Message string `json:"message"`
}

func (c *Client) ListDevices(ctx context.Context) ([]device.Device, error) {
	var resp listDevicesResponse
	if err := c.do(ctx, http.MethodGet, "/devices", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Devices == nil {
		resp.Devices = []device.Device{}
	}
	return resp.Devices, nil
}

func (c *Client) SendAction(ctx context.Context, targetID, action string, value any) error {
	return c.do(ctx, http.MethodPost, "/devices/action", actionRequest{
		DeviceID: targetID,
		Action:   action,
		Value:    value,
	}, nil)
}

func (c *Client) RenameDevice(ctx context.Context, id, newName string) error {
	return c.do(ctx, http.MethodPut, "/devices/"+url.PathEscape(id)+"/rename", renameRequest{NewName: newName}, nil)
}

func (c *Client) RemoveDevice(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/devices/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListGroups(ctx context.Context) ([]device.Group, error) {
	var resp listGroupsResponse
	if err := c.do(ctx, http.MethodGet, "/groups", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Groups == nil {
		resp.Groups = []device.Group{}
	}
	return resp.Groups, nil
}

func (c *Client) CreateGroup(ctx context.Context, g device.Group) error {
	if g.Members == nil {
		g.Members = []string{}
	}
	return c.do(ctx, http.MethodPost, "/groups", g, nil)
}

func (c *Client) DeleteGroup(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/groups/"+url.PathEscape(id), nil, nil)
}

func (c *Client) AddGroupMember(ctx context.Context, groupID, deviceID string) error {
	return c.do(ctx, http.MethodPost, memberPath(groupID, deviceID), nil, nil)
}

func (c *Client) RemoveGroupMember(ctx context.Context, groupID, deviceID string) error {
	return c.do(ctx, http.MethodDelete, memberPath(groupID, deviceID), nil, nil)
}

func memberPath(groupID, deviceID string) string {
	return "/groups/" + url.PathEscape(groupID) + "/devices/" + url.PathEscape(deviceID)
}

// ListRules decodes rules one by one; a record the panel cannot represent is
// logged and skipped rather than failing the whole list.
func (c *Client) ListRules(ctx context.Context) ([]rule.Rule, error) {
	var resp listRulesResponse
	if err := c.do(ctx, http.MethodGet, "/rules", nil, &resp); err != nil {
		return nil, err
	}
	rules := make([]rule.Rule, 0, len(resp.Rules))
	for _, raw := range resp.Rules {
		var r rule.Rule
		if err := json.Unmarshal(raw, &r); err != nil {
			log.Warn().Err(err).RawJSON("rule", raw).Msg("Skipping unreadable rule")
			continue
		}
		rules = append(rules, r)
	}
	return rules, nil
}

func (c *Client) CreateRule(ctx context.Context, r rule.Rule) error {
	return c.do(ctx, http.MethodPost, "/rules", r, nil)
}

func (c *Client) UpdateRule(ctx context.Context, r rule.Rule) error {
	return c.do(ctx, http.MethodPut, "/rules/"+url.PathEscape(r.ID), r, nil)
}

func (c *Client) DeleteRule(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/rules/"+url.PathEscape(id), nil, nil)
}

func (c *Client) SetPairing(ctx context.Context, enable bool) error {
	return c.do(ctx, http.MethodPost, "/system/pairing/"+strconv.FormatBool(enable), nil, nil)
}

func (c *Client) Logs(ctx context.Context, lines int) ([]string, error) {
	var resp logsResponse
	path := "/logs?lines=" + strconv.Itoa(lines)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Logs == nil {
		resp.Logs = []string{}
	}
	return resp.Logs, nil
}

// do performs one request. Transport failures wrap device.ErrNetwork;
// non-2xx answers become *device.RejectionError.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if !c.IsConfigured() {
		return device.ErrNotConnected
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("method", method).Str("path", path).Msg("hub request failed")
		return fmt.Errorf("%w: %s %s: %v", device.ErrNetwork, method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", device.ErrNetwork, err)
	}

	log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("hub request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &device.RejectionError{Status: resp.StatusCode, Detail: detail(data)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

// detail extracts the human-readable message from a hub error body.
// FastAPI-style validation errors carry a list; the first msg is used.
func detail(data []byte) string {
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	switch d := body.Detail.(type) {
	case string:
		return d
	case []any:
		for _, item := range d {
			if m, ok := item.(map[string]any); ok {
				if msg, ok := m["msg"].(string); ok {
					return msg
				}
			}
		}
	}
	return body.Message
}

// IsRejection reports whether err is a hub rejection with the given status.
func IsRejection(err error, status int) bool {
	var rej *device.RejectionError
	return errors.As(err, &rej) && rej.Status == status
}
