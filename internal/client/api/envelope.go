package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"github.com/iudanet/villabook/pkg/api"
)

const defaultSuccessMessage = "Success"

// decodeEnvelope приводит тело ответа к виду {success, message, data}.
// Тело считается конвертом, если это JSON-объект с ключом success.
// Любое другое тело целиком становится data успешного ответа.
func decodeEnvelope[T any](body []byte) (*api.Envelope[T], error) {
	env := &api.Envelope[T]{}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		env.Success = true
		env.Message = defaultSuccessMessage
		return env, nil
	}

	if gjson.ValidBytes(trimmed) {
		parsed := gjson.ParseBytes(trimmed)
		if parsed.IsObject() && parsed.Get("success").Exists() {
			if err := json.Unmarshal(trimmed, env); err != nil {
				return nil, fmt.Errorf("failed to decode envelope: %w", err)
			}
			return env, nil
		}
	}

	if err := json.Unmarshal(trimmed, &env.Data); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	env.Success = true
	env.Message = defaultSuccessMessage
	return env, nil
}

// extractMessage достает текст ошибки из тела ответа в порядке:
// строка, message, error, errors[0], detail.
func extractMessage(body []byte, status int) string {
	fallback := fmt.Sprintf("Request failed with status %d", status)

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return fallback
	}

	if !gjson.ValidBytes(trimmed) {
		return sanitizeBody(trimmed)
	}

	parsed := gjson.ParseBytes(trimmed)
	if parsed.Type == gjson.String {
		if parsed.Str != "" {
			return parsed.Str
		}
		return fallback
	}
	if !parsed.IsObject() {
		return fallback
	}

	for _, key := range []string{"message", "error"} {
		if v := parsed.Get(key); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}

	first := parsed.Get("errors.0")
	switch {
	case first.Type == gjson.String && first.Str != "":
		return first.Str
	case first.IsObject():
		if msg := first.Get("message"); msg.Type == gjson.String && msg.Str != "" {
			return msg.Str
		}
	}

	if v := parsed.Get("detail"); v.Type == gjson.String && v.Str != "" {
		return v.Str
	}

	return fallback
}

// sanitizeBody trims a plain-text body and drops control characters.
func sanitizeBody(body []byte) string {
	const maxLen = 256
	if len(body) > maxLen {
		body = body[:maxLen]
	}

	var b strings.Builder
	for len(body) > 0 {
		r, size := utf8.DecodeRune(body)
		switch {
		case r == utf8.RuneError && size <= 1:
			b.WriteByte('?')
		case r < 0x20 && r != '\t':
			b.WriteByte(' ')
		default:
			b.Write(body[:size])
		}
		body = body[size:]
	}
	return strings.TrimSpace(b.String())
}

// dataOf returns env.Data, or a KindHTTP error when a 2xx response
// carried success=false.
func dataOf[T any](op string, env *api.Envelope[T]) (T, error) {
	if !env.Success {
		var zero T
		msg := env.Message
		if msg == "" {
			msg = "request was not successful"
		}
		return zero, &Error{Kind: KindHTTP, Op: op, StatusCode: http.StatusOK, Message: msg}
	}
	return env.Data, nil
}
