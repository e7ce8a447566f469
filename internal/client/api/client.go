package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/iudanet/villabook/internal/client/events"
	"github.com/iudanet/villabook/internal/client/locale"
	"github.com/iudanet/villabook/internal/client/storage"
	"github.com/iudanet/villabook/pkg/api"
)

// DefaultTimeout ограничивает каждый сетевой вызов клиента
const DefaultTimeout = 30 * time.Second

// Navigator redirects the user interface to another entry point.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// Publisher broadcasts application events. *events.Bus implements it.
type Publisher interface {
	Publish(e events.Event)
}

// LocaleFunc returns the current UI locale.
type LocaleFunc func() string

// RequestConfig задает дополнительные параметры одного запроса
type RequestConfig struct {
	Headers http.Header
	Query   url.Values
	// SkipAuthRefresh disables the refresh-and-retry path; used by login and register.
	SkipAuthRefresh bool
}

// Client представляет HTTP клиент с bearer-аутентификацией и прозрачным
// обновлением access token.
type Client struct {
	httpClient    *http.Client
	refreshClient *http.Client
	store         storage.CredentialStore
	publisher     Publisher
	navigator     Navigator
	locale        LocaleFunc
	logger        *slog.Logger
	group         singleflight.Group
	baseURL       string
	timeout       time.Duration

	mu    sync.RWMutex
	token tokenState
}

// tokenState снимок токена; epoch растет при каждой смене значения
type tokenState struct {
	value string
	epoch uint64
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient sets the transport used for regular requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithCredentialStore sets the storage read and written by the refresh routine.
func WithCredentialStore(s storage.CredentialStore) Option {
	return func(c *Client) { c.store = s }
}

// WithPublisher sets the bus that receives auth:failure events.
func WithPublisher(p Publisher) Option {
	return func(c *Client) { c.publisher = p }
}

// WithNavigator sets the redirect target for irrecoverable auth failures.
func WithNavigator(n Navigator) Option {
	return func(c *Client) { c.navigator = n }
}

// WithLocale sets the accessor of the current locale.
func WithLocale(f LocaleFunc) Option {
	return func(c *Client) { c.locale = f }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient создает новый API клиент
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultTimeout,
		locale:  func() string { return locale.Default },
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	// Запрос обновления токена идет мимо перехватчиков и настроек httpClient
	c.refreshClient = &http.Client{}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	c.logger = c.logger.With(slog.String("component", "api_client"))

	return c
}

// SetAuthToken replaces the held access token. Empty token means none.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	if c.token.value != token {
		c.token.value = token
		c.token.epoch++
	}
	c.mu.Unlock()
}

// ClearAuthToken equals SetAuthToken("").
func (c *Client) ClearAuthToken() {
	c.SetAuthToken("")
}

// AuthToken returns the held access token.
func (c *Client) AuthToken() string {
	return c.snapshot().value
}

func (c *Client) snapshot() tokenState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type response struct {
	body   []byte
	status int
}

// Do выполняет запрос и возвращает тело успешного (2xx) ответа.
// На 401 запрос повторяется не более одного раза после обновления токена.
func (c *Client) Do(ctx context.Context, method, path string, body any, cfg *RequestConfig) ([]byte, error) {
	if cfg == nil {
		cfg = &RequestConfig{}
	}
	op := method + " " + path

	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, unexpectedError(op, "failed to marshal request body", err)
		}
		payload = data
	}

	sent := c.snapshot()
	resp, err := c.send(ctx, op, method, path, payload, cfg, sent.value)
	if err != nil {
		return nil, err
	}

	if resp.status == http.StatusUnauthorized && !cfg.SkipAuthRefresh {
		c.logger.DebugContext(ctx, "access token rejected", slog.String("op", op))

		token, err := c.tokenForRetry(ctx, sent)
		if err != nil {
			return nil, err
		}

		resp, err = c.send(ctx, op, method, path, payload, cfg, token)
		if err != nil {
			return nil, err
		}
	}

	if resp.status < 200 || resp.status >= 300 {
		return nil, httpError(op, resp.status, resp.body)
	}
	return resp.body, nil
}

func (c *Client) send(ctx context.Context, op, method, path string, payload []byte, cfg *RequestConfig, token string) (*response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target, err := c.url(path, cfg.Query)
	if err != nil {
		return nil, unexpectedError(op, "invalid request url", err)
	}

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, unexpectedError(op, "failed to create request", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, values := range cfg.Headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Тело читается под тем же таймаутом
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(op, err)
	}

	return &response{status: resp.StatusCode, body: respBody}, nil
}

func (c *Client) url(path string, query url.Values) (string, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return "", err
	}
	if len(query) > 0 {
		q := u.Query()
		for key, values := range query {
			for _, v := range values {
				q.Add(key, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// Get выполняет GET и нормализует ответ в конверт.
func Get[T any](ctx context.Context, c *Client, path string, cfg *RequestConfig) (*api.Envelope[T], error) {
	return call[T](ctx, c, http.MethodGet, path, nil, cfg)
}

// Post выполняет POST с JSON-телом.
func Post[T any](ctx context.Context, c *Client, path string, body any, cfg *RequestConfig) (*api.Envelope[T], error) {
	return call[T](ctx, c, http.MethodPost, path, body, cfg)
}

// Put выполняет PUT с JSON-телом.
func Put[T any](ctx context.Context, c *Client, path string, body any, cfg *RequestConfig) (*api.Envelope[T], error) {
	return call[T](ctx, c, http.MethodPut, path, body, cfg)
}

// Patch выполняет PATCH с JSON-телом.
func Patch[T any](ctx context.Context, c *Client, path string, body any, cfg *RequestConfig) (*api.Envelope[T], error) {
	return call[T](ctx, c, http.MethodPatch, path, body, cfg)
}

// Delete выполняет DELETE.
func Delete[T any](ctx context.Context, c *Client, path string, cfg *RequestConfig) (*api.Envelope[T], error) {
	return call[T](ctx, c, http.MethodDelete, path, nil, cfg)
}

func call[T any](ctx context.Context, c *Client, method, path string, body any, cfg *RequestConfig) (*api.Envelope[T], error) {
	raw, err := c.Do(ctx, method, path, body, cfg)
	if err != nil {
		return nil, err
	}

	env, err := decodeEnvelope[T](raw)
	if err != nil {
		return nil, unexpectedError(method+" "+path, "invalid response body", err)
	}
	return env, nil
}
