package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/iudanet/villabook/internal/client/events"
	"github.com/iudanet/villabook/internal/client/locale"
	"github.com/iudanet/villabook/internal/client/storage"
	"github.com/iudanet/villabook/pkg/api"
)

// RefreshPath is the token-refresh endpoint relative to the base URL.
const RefreshPath = "/auth/refresh-token"

const refreshKey = "refresh"

const refreshOp = "POST " + RefreshPath

var (
	errNoRefreshToken = errors.New("no refresh token stored")
	errSessionEnded   = errors.New("session ended while request was in flight")
)

// tokenForRetry возвращает токен для повторной отправки запроса,
// отклоненного с 401. sent - токен, с которым ушел исходный запрос.
func (c *Client) tokenForRetry(ctx context.Context, sent tokenState) (string, error) {
	if token, changed, err := c.changedSince(sent); changed {
		return token, err
	}

	ch := c.group.DoChan(refreshKey, func() (any, error) {
		// Обновление не зависит от отмены контекста инициатора:
		// его результат ждут и другие запросы.
		return c.refresh(context.WithoutCancel(ctx), sent)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", transportError(refreshOp, ctx.Err())
	}
}

// changedSince reports whether the held token changed after sent was taken.
// A newer token is reused as is; a cleared one means the session already
// ended (failed refresh or logout) and must not start another refresh.
func (c *Client) changedSince(sent tokenState) (string, bool, error) {
	cur := c.snapshot()
	if cur.epoch == sent.epoch {
		return "", false, nil
	}
	if cur.value == "" {
		return "", true, &Error{Kind: KindAuthRefresh, Op: refreshOp, Message: "session expired", Err: errSessionEnded}
	}
	return cur.value, true, nil
}

// refresh runs at most once at a time per client.
func (c *Client) refresh(ctx context.Context, sent tokenState) (string, error) {
	// Предыдущее обновление могло завершиться между проверкой и DoChan
	if token, changed, err := c.changedSince(sent); changed {
		return token, err
	}

	token, err := c.exchange(ctx, sent.epoch)
	if errors.Is(err, errSessionEnded) {
		// logout во время обновления: сессию не воскрешаем и не рассылаем auth:failure
		c.logger.DebugContext(ctx, "refresh result discarded, session ended")
		return "", err
	}
	if err != nil {
		c.logger.WarnContext(ctx, "token refresh failed", slog.Any("error", err))
		c.handleAuthFailure(ctx)
		return "", err
	}

	c.logger.DebugContext(ctx, "access token refreshed")
	return token, nil
}

// exchange обменивает сохраненный refresh token на новую пару токенов.
// epoch - эпоха токена на момент начала обновления.
func (c *Client) exchange(ctx context.Context, epoch uint64) (string, error) {
	if c.store == nil {
		return "", &Error{Kind: KindAuthRefresh, Op: refreshOp, Message: "no credential storage", Err: errNoRefreshToken}
	}

	creds, err := c.store.GetCredentials(ctx)
	if err != nil && !errors.Is(err, storage.ErrAuthNotFound) {
		return "", &Error{Kind: KindAuthRefresh, Op: refreshOp, Message: "failed to read credentials", Err: err}
	}
	if creds == nil || creds.RefreshToken == "" {
		return "", &Error{Kind: KindAuthRefresh, Op: refreshOp, Message: "session expired", Err: errNoRefreshToken}
	}

	auth, err := c.postRefresh(ctx, creds.RefreshToken)
	if err != nil {
		return "", err
	}

	next := &storage.Credentials{
		User:         auth.User,
		AccessToken:  auth.AccessToken,
		RefreshToken: auth.RefreshToken,
	}
	if next.User == nil {
		next.User = creds.User
	}
	if next.RefreshToken == "" {
		next.RefreshToken = creds.RefreshToken
	}

	if err := c.commitRefresh(ctx, epoch, next); err != nil {
		return "", err
	}
	return auth.AccessToken, nil
}

// commitRefresh сохраняет и выставляет новую пару, только если токен не
// менялся с начала обновления. Сохранение идет под c.mu, поэтому logout
// (ClearAuthToken, затем DeleteCredentials) либо видит новую пару и
// удаляет ее, либо сдвигает эпоху раньше и пара отбрасывается.
func (c *Client) commitRefresh(ctx context.Context, epoch uint64, next *storage.Credentials) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token.epoch != epoch {
		return &Error{Kind: KindAuthRefresh, Op: refreshOp, Message: "session expired", Err: errSessionEnded}
	}

	// Новый токен валиден даже если сохранить его не удалось
	if err := c.store.SaveCredentials(ctx, next); err != nil {
		c.logger.ErrorContext(ctx, "failed to persist refreshed credentials", slog.Any("error", err))
	}

	if c.token.value != next.AccessToken {
		c.token.value = next.AccessToken
		c.token.epoch++
	}
	return nil
}

func (c *Client) postRefresh(ctx context.Context, refreshToken string) (*api.AuthResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(api.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, &Error{Kind: KindAuthRefresh, Op: refreshOp, Message: "failed to marshal request body", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+RefreshPath, bytes.NewReader(payload))
	if err != nil {
		return nil, &Error{Kind: KindAuthRefresh, Op: refreshOp, Message: "failed to create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.refreshClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindAuthRefresh, Op: refreshOp, Message: "refresh request failed", Err: transportError(refreshOp, err)}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindAuthRefresh, Op: refreshOp, Message: "refresh request failed", Err: transportError(refreshOp, err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{
			Kind:       KindAuthRefresh,
			Op:         refreshOp,
			StatusCode: resp.StatusCode,
			Message:    extractMessage(body, resp.StatusCode),
		}
	}

	env, err := decodeEnvelope[api.AuthResponse](body)
	if err != nil {
		return nil, &Error{Kind: KindAuthRefresh, Op: refreshOp, Message: "invalid refresh response", Err: err}
	}
	if !env.Success || env.Data.AccessToken == "" {
		msg := env.Message
		if msg == "" {
			msg = "refresh rejected"
		}
		return nil, &Error{Kind: KindAuthRefresh, Op: refreshOp, StatusCode: resp.StatusCode, Message: msg}
	}

	return &env.Data, nil
}

// handleAuthFailure стирает учетные данные, рассылает auth:failure и
// отправляет пользователя на страницу входа. Вызывается один раз на
// неудачное обновление, а не на каждый ожидающий запрос.
func (c *Client) handleAuthFailure(ctx context.Context) {
	if c.store != nil {
		if err := c.store.DeleteCredentials(ctx); err != nil {
			c.logger.ErrorContext(ctx, "failed to delete credentials", slog.Any("error", err))
		}
	}
	c.ClearAuthToken()

	if c.publisher != nil {
		c.publisher.Publish(events.Event{
			Name:   events.AuthFailure,
			Reason: events.ReasonTokenRefreshFailed,
		})
	}
	if c.navigator != nil {
		c.navigator.Navigate(locale.LoginPath(c.locale()))
	}
}
