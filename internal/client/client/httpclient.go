package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/securedrive/internal/api"
	"github.com/dmitrijs2005/securedrive/internal/common"
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 4 << 10

type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
}

// NewHTTPClient returns a client for the server at baseURL. A zero timeout
// leaves requests bounded only by their context.
func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("server url %q must be absolute", baseURL)
	}
	return &HTTPClient{baseURL: u, http: &http.Client{Timeout: timeout}}, nil
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	var resp api.PingResponse
	return c.doJSON(ctx, http.MethodGet, "/api/ping", "", nil, &resp)
}

func (c *HTTPClient) Register(ctx context.Context, req *api.RegisterRequest) error {
	var resp api.RegisterResponse
	return c.doJSON(ctx, http.MethodPost, "/api/register", "", req, &resp)
}

func (c *HTTPClient) GetWrappedKey(ctx context.Context, email string) (*api.WrappedKeyResponse, error) {
	var resp api.WrappedKeyResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/get-wrapped-key", "", &api.WrappedKeyRequest{Email: email}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Login(ctx context.Context, email string, authKey []byte) (string, error) {
	var resp api.LoginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/login", "", &api.LoginRequest{Email: email, AuthKey: authKey}, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("%w: empty token in login response", common.ErrorInternal)
	}
	return resp.Token, nil
}

func (c *HTTPClient) Logout(ctx context.Context, token string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/logout", token, nil, nil)
}

// Upload sends the blob and its key material as one multipart request.
func (c *HTTPClient) Upload(ctx context.Context, token string, meta *api.UploadMeta, blob []byte) (*api.UploadResponse, error) {
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshal meta: %w", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField(api.UploadMetaField, string(metaJSON)); err != nil {
		return nil, err
	}
	// the real name is inside the envelope; the form only carries a placeholder
	fw, err := mw.CreateFormFile(api.UploadFileField, "blob")
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(blob); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/upload", token, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp api.UploadResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) List(ctx context.Context, token string) ([]api.ArtifactMeta, error) {
	var resp []api.ArtifactMeta
	if err := c.doJSON(ctx, http.MethodGet, "/api/files", token, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *HTTPClient) Meta(ctx context.Context, token, name string) (*api.ArtifactMeta, error) {
	var resp api.ArtifactMeta
	if err := c.doJSON(ctx, http.MethodGet, "/api/meta/"+url.PathEscape(name), token, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Download(ctx context.Context, token, name string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/download/"+url.PathEscape(name), token, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return nil, mapTransportError(err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, statusError(res)
	}
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, mapTransportError(err)
	}
	return data, nil
}

func (c *HTTPClient) Delete(ctx context.Context, token, name string) error {
	var resp api.DeleteResponse
	if err := c.doJSON(ctx, http.MethodDelete, "/api/delete/"+url.PathEscape(name), token, nil, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%w: delete not acknowledged", common.ErrorInternal)
	}
	return nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, token, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path, token string, body io.Reader) (*http.Request, error) {
	u := c.baseURL.String() + path
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}
	return req, nil
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	res, err := c.http.Do(req)
	if err != nil {
		return mapTransportError(err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return statusError(res)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", common.ErrorInternal, err)
	}
	return nil
}

// statusError turns a non-2xx response into a sentinel error carrying the
// server's error text.
func statusError(res *http.Response) error {
	var e api.ErrorResponse
	_ = json.NewDecoder(io.LimitReader(res.Body, maxErrorBody)).Decode(&e)
	msg := e.Error
	if msg == "" {
		msg = http.StatusText(res.StatusCode)
	}
	return fmt.Errorf("%w: %s", sentinelForStatus(res.StatusCode), msg)
}

func sentinelForStatus(code int) error {
	switch code {
	case http.StatusBadRequest:
		return common.ErrorInvalidInput
	case http.StatusUnauthorized:
		return common.ErrorUnauthorized
	case http.StatusForbidden:
		return common.ErrorForbidden
	case http.StatusNotFound:
		return common.ErrorNotFound
	case http.StatusConflict:
		return common.ErrorConflict
	case http.StatusRequestEntityTooLarge:
		return ErrTooLarge
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return ErrUnavailable
	default:
		return common.ErrorInternal
	}
}

func mapTransportError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
