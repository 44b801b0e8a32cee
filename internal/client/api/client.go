// Package api is the HTTP client for the member console server. It mirrors
// the server surface and maps response codes back onto the shared error
// taxonomy in internal/common.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"member_console/internal/app/service"
	"member_console/internal/common"
	"member_console/internal/domain/model"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// SetToken attaches a bearer token to all subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) Register(ctx context.Context, email, password, name string) (*model.Account, error) {
	account := &model.Account{}
	req := service.RegisterRequest{Email: email, Password: password, Name: name}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", req, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Login authenticates and returns the issued token with the account
// summary. A 403 is decoded into *common.NotApprovedError.
func (c *Client) Login(ctx context.Context, email, password string) (string, *model.Account, error) {
	resp := &service.AuthResponse{}
	req := service.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", req, resp); err != nil {
		return "", nil, err
	}
	c.token = resp.Token
	return resp.Token, resp.User, nil
}

func (c *Client) Me(ctx context.Context) (*model.Account, error) {
	account := &model.Account{}
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (c *Client) ListUsers(ctx context.Context, status string) ([]model.Account, error) {
	path := "/api/users"
	if status != "" {
		path += "?status=" + status
	}
	accounts := []model.Account{}
	if err := c.do(ctx, http.MethodGet, path, nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (c *Client) ChangeStatus(ctx context.Context, accountID, status string) (*model.Account, error) {
	account := &model.Account{}
	req := struct {
		Status string `json:"status"`
	}{Status: status}
	if err := c.do(ctx, http.MethodPatch, "/api/users/"+accountID+"/status", req, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (c *Client) Stats(ctx context.Context) (*service.StatusStats, error) {
	stats := &service.StatusStats{}
	if err := c.do(ctx, http.MethodGet, "/api/users/stats", nil, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned %d: %w", resp.StatusCode, common.ErrInternalServer)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return c.responseError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// responseError turns a non-2xx response into a sentinel from
// internal/common, keeping the server's message as context.
func (c *Client) responseError(resp *http.Response) error {
	payload := struct {
		Error string                   `json:"error"`
		User  *common.NotApprovedError `json:"user"`
	}{}
	_ = json.NewDecoder(resp.Body).Decode(&payload)

	if resp.StatusCode == http.StatusForbidden && payload.User != nil {
		return payload.User
	}

	var sentinel error
	switch resp.StatusCode {
	case http.StatusBadRequest:
		sentinel = common.ErrBadRequest
	case http.StatusUnauthorized:
		sentinel = common.ErrUnauthorized
	case http.StatusForbidden:
		sentinel = common.ErrForbidden
	case http.StatusNotFound:
		sentinel = common.ErrNotFound
	case http.StatusConflict:
		sentinel = common.ErrEmailTaken
	default:
		sentinel = common.ErrInternalServer
	}

	if payload.Error == "" {
		return sentinel
	}
	return fmt.Errorf("%s: %w", payload.Error, sentinel)
}
