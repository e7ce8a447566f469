package api

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/villabook/pkg/api"
)

func TestExtractMessage(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		want   string
		status int
	}{
		{name: "message field", body: `{"message":"M"}`, status: 400, want: "M"},
		{name: "error field without message", body: `{"error":"E"}`, status: 400, want: "E"},
		{name: "message wins over error", body: `{"message":"M","error":"E"}`, status: 400, want: "M"},
		{name: "first of errors", body: `{"errors":["X","Y"]}`, status: 422, want: "X"},
		{name: "errors objects", body: `{"errors":[{"field":"email","message":"Email is invalid"}]}`, status: 422, want: "Email is invalid"},
		{name: "error wins over errors", body: `{"error":"E","errors":["X"]}`, status: 422, want: "E"},
		{name: "detail", body: `{"detail":"D"}`, status: 500, want: "D"},
		{name: "json string body", body: `"Not allowed"`, status: 403, want: "Not allowed"},
		{name: "plain text body", body: "Bad Gateway\n", status: 502, want: "Bad Gateway"},
		{name: "empty message falls through", body: `{"message":"","error":"E"}`, status: 400, want: "E"},
		{name: "non-string message ignored", body: `{"message":{"code":1}}`, status: 400, want: "Request failed with status 400"},
		{name: "none of the fields", body: `{"foo":"bar"}`, status: 404, want: "Request failed with status 404"},
		{name: "empty body", body: "", status: 500, want: "Request failed with status 500"},
		{name: "json array", body: `["X"]`, status: 400, want: "Request failed with status 400"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractMessage([]byte(tt.body), tt.status))
		})
	}
}

func TestSanitizeBody(t *testing.T) {
	long := strings.Repeat("a", 1000)
	assert.Len(t, sanitizeBody([]byte(long)), 256)
	assert.Equal(t, "line one line two", sanitizeBody([]byte("line one\nline two")))
	assert.Equal(t, "bad ? byte", sanitizeBody([]byte("bad \xff byte")))
}

func TestDecodeEnvelope(t *testing.T) {
	t.Run("envelope passthrough", func(t *testing.T) {
		env, err := decodeEnvelope[api.Villa]([]byte(`{"success":true,"message":"Villa found","data":{"id":"v1","name":"Azure"}}`))
		require.NoError(t, err)
		assert.True(t, env.Success)
		assert.Equal(t, "Villa found", env.Message)
		assert.Equal(t, "Azure", env.Data.Name)
	})

	t.Run("unsuccessful envelope returned as is", func(t *testing.T) {
		env, err := decodeEnvelope[api.Villa]([]byte(`{"success":false,"message":"Maintenance"}`))
		require.NoError(t, err)
		assert.False(t, env.Success)
		assert.Equal(t, "Maintenance", env.Message)
	})

	t.Run("bare object wrapped", func(t *testing.T) {
		env, err := decodeEnvelope[api.Villa]([]byte(`{"id":"v1","name":"Azure"}`))
		require.NoError(t, err)
		assert.True(t, env.Success)
		assert.Equal(t, "Success", env.Message)
		assert.Equal(t, "v1", env.Data.ID)
	})

	t.Run("bare array wrapped", func(t *testing.T) {
		env, err := decodeEnvelope[[]api.Villa]([]byte(`[{"id":"v1"},{"id":"v2"}]`))
		require.NoError(t, err)
		assert.True(t, env.Success)
		assert.Len(t, env.Data, 2)
	})

	t.Run("empty body", func(t *testing.T) {
		env, err := decodeEnvelope[*api.User]([]byte("  "))
		require.NoError(t, err)
		assert.True(t, env.Success)
		assert.Nil(t, env.Data)
	})

	t.Run("data key without success is data", func(t *testing.T) {
		env, err := decodeEnvelope[map[string]any]([]byte(`{"data":1}`))
		require.NoError(t, err)
		assert.Equal(t, float64(1), env.Data["data"])
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := decodeEnvelope[api.Villa]([]byte(`{"id":`))
		require.Error(t, err)
	})
}

func TestDataOf(t *testing.T) {
	v, err := dataOf("GET /x", &api.Envelope[int]{Success: true, Data: 7})
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = dataOf("GET /x", &api.Envelope[int]{Success: false, Message: "Maintenance"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHTTP)
	assert.Contains(t, err.Error(), "Maintenance")
}
