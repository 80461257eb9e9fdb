package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/sundaram/internal/api"
	"github.com/dmitrijs2005/sundaram/internal/common"
	"github.com/dmitrijs2005/sundaram/internal/signature"
)

type HTTPClient struct {
	signer
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// statusError turns an error response into the matching common sentinel.
func statusError(status int, detail string) error {
	var sentinel error
	switch status {
	case http.StatusUnauthorized:
		sentinel = common.ErrorUnauthorized
	case http.StatusConflict:
		sentinel = common.ErrorConflict
	case http.StatusNotFound:
		sentinel = common.ErrorNotFound
	case http.StatusBadRequest:
		sentinel = common.ErrorBadRequest
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		sentinel = ErrUnavailable
	default:
		sentinel = common.ErrorInternal
	}
	if detail == "" {
		return sentinel
	}
	return common.Detail(sentinel, "%s", detail)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any, signed bool) error {
	var raw []byte
	if in != nil {
		var err error
		if raw, err = json.Marshal(in); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	if signed {
		body, err := signature.CanonicalBody(raw)
		if err != nil {
			return err
		}
		sig, token, err := c.sign(body)
		if err != nil {
			return err
		}
		req.Header.Set(common.SignatureHeaderName, sig)
		if token != "" {
			req.Header.Set(common.SessionTokenHeaderName, token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e api.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return statusError(resp.StatusCode, e.Detail)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	var out api.PingResponse
	return c.do(ctx, http.MethodGet, "/healthz", nil, &out, false)
}

func (c *HTTPClient) Register(ctx context.Context, login, email, password string) (*api.SessionResponse, error) {
	out := &api.SessionResponse{}
	req := api.RegisterRequest{Login: login, Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/users/register", req, out, false); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) Authenticate(ctx context.Context, login, password string) (*api.SessionResponse, error) {
	out := &api.SessionResponse{}
	req := api.AuthenticateRequest{Login: login, Password: password}
	if err := c.do(ctx, http.MethodPost, "/users/authenticate", req, out, false); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) ChangePassword(ctx context.Context, oldPassword, newPassword string) (*api.ChangePasswordResponse, error) {
	out := &api.ChangePasswordResponse{}
	req := api.ChangePasswordRequest{OldPassword: oldPassword, NewPassword: newPassword}
	if err := c.do(ctx, http.MethodPatch, "/users/password", req, out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) Generate(ctx context.Context, limit int) (*api.GenerateResponse, error) {
	out := &api.GenerateResponse{}
	if err := c.do(ctx, http.MethodPost, "/sundaram/generate", api.GenerateRequest{Limit: limit}, out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetCurrent(ctx context.Context) (*api.CurrentResponse, error) {
	out := &api.CurrentResponse{}
	if err := c.do(ctx, http.MethodGet, "/sundaram/current", nil, out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) DeleteCurrent(ctx context.Context) (*api.DeleteCurrentResponse, error) {
	out := &api.DeleteCurrentResponse{}
	if err := c.do(ctx, http.MethodDelete, "/sundaram/current", nil, out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) SaveParams(ctx context.Context, name string, limit int) (*api.SaveParamsResponse, error) {
	out := &api.SaveParamsResponse{}
	req := api.SaveParamsRequest{Name: name, Limit: limit}
	if err := c.do(ctx, http.MethodPost, "/sundaram/save_params", req, out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) ListSavedParams(ctx context.Context) (*api.SavedParamsResponse, error) {
	out := &api.SavedParamsResponse{}
	if err := c.do(ctx, http.MethodGet, "/sundaram/saved_params", nil, out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) DeleteSavedParams(ctx context.Context, name string) (*api.DeleteSavedResponse, error) {
	out := &api.DeleteSavedResponse{}
	if err := c.do(ctx, http.MethodDelete, "/sundaram/saved_params/"+url.PathEscape(name), nil, out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetHistory(ctx context.Context) (*api.HistoryResponse, error) {
	out := &api.HistoryResponse{}
	if err := c.do(ctx, http.MethodGet, "/users/history", nil, out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) DeleteHistory(ctx context.Context) (*api.MessageResponse, error) {
	out := &api.MessageResponse{}
	if err := c.do(ctx, http.MethodDelete, "/users/history", nil, out, true); err != nil {
		return nil, err
	}
	return out, nil
}
