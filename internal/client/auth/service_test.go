package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/villabook/internal/client/storage"
	pkgapi "github.com/iudanet/villabook/pkg/api"
)

// mockCredentialStore implements storage.CredentialStore for testing
type mockCredentialStore struct {
	data      *storage.Credentials
	saveErr   error
	getErr    error
	deleteErr error
	deleted   bool
}

func (m *mockCredentialStore) GetCredentials(_ context.Context) (*storage.Credentials, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.data == nil {
		return nil, storage.ErrAuthNotFound
	}
	c := *m.data
	return &c, nil
}

func (m *mockCredentialStore) SaveCredentials(_ context.Context, creds *storage.Credentials) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	c := *creds
	m.data = &c
	return nil
}

func (m *mockCredentialStore) DeleteCredentials(_ context.Context) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = true
	m.data = nil
	return nil
}

// mockAPIClient implements APIClient for testing
type mockAPIClient struct {
	authResp    *pkgapi.AuthResponse
	authErr     error
	logoutErr   error
	lastLogin   pkgapi.LoginRequest
	lastReg     pkgapi.RegisterRequest
	token       string
	logoutCalls int
}

func (m *mockAPIClient) Register(_ context.Context, req pkgapi.RegisterRequest) (*pkgapi.AuthResponse, error) {
	m.lastReg = req
	return m.authResp, m.authErr
}

func (m *mockAPIClient) Login(_ context.Context, req pkgapi.LoginRequest) (*pkgapi.AuthResponse, error) {
	m.lastLogin = req
	return m.authResp, m.authErr
}

func (m *mockAPIClient) Logout(_ context.Context) error {
	m.logoutCalls++
	return m.logoutErr
}

func (m *mockAPIClient) SetAuthToken(token string) { m.token = token }
func (m *mockAPIClient) ClearAuthToken()           { m.token = "" }

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func authResponse() *pkgapi.AuthResponse {
	return &pkgapi.AuthResponse{
		AccessToken:  "A1",
		RefreshToken: "R1",
		ExpiresIn:    900,
		User:         &pkgapi.User{ID: "u1", Name: "Ana", Email: "ana@example.com"},
	}
}

func TestAuthService_Login(t *testing.T) {
	client := &mockAPIClient{authResp: authResponse()}
	store := &mockCredentialStore{}
	svc := NewService(client, store, setupTestLogger())

	user, err := svc.Login(context.Background(), "  Ana@Example.com ", "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	assert.Equal(t, "ana@example.com", client.lastLogin.Email)
	assert.Equal(t, "A1", client.token)
	require.NotNil(t, store.data)
	assert.Equal(t, "A1", store.data.AccessToken)
	assert.Equal(t, "R1", store.data.RefreshToken)
	assert.Equal(t, "Ana", store.data.User.Name)
}

func TestAuthService_Login_Errors(t *testing.T) {
	tests := []struct {
		client   *mockAPIClient
		store    *mockCredentialStore
		name     string
		email    string
		password string
		errMsg   string
	}{
		{
			name:     "invalid email",
			client:   &mockAPIClient{},
			store:    &mockCredentialStore{},
			email:    "not-an-email",
			password: "secret-pass",
			errMsg:   "invalid email",
		},
		{
			name:     "empty password",
			client:   &mockAPIClient{},
			store:    &mockCredentialStore{},
			email:    "ana@example.com",
			password: "",
			errMsg:   "invalid password",
		},
		{
			name:     "server rejects",
			client:   &mockAPIClient{authErr: errors.New("invalid email or password")},
			store:    &mockCredentialStore{},
			email:    "ana@example.com",
			password: "wrong-pass",
			errMsg:   "login failed",
		},
		{
			name:     "no tokens in response",
			client:   &mockAPIClient{authResp: &pkgapi.AuthResponse{}},
			store:    &mockCredentialStore{},
			email:    "ana@example.com",
			password: "secret-pass",
			errMsg:   "does not contain tokens",
		},
		{
			name:     "save fails",
			client:   &mockAPIClient{authResp: authResponse()},
			store:    &mockCredentialStore{saveErr: errors.New("disk full")},
			email:    "ana@example.com",
			password: "secret-pass",
			errMsg:   "failed to save credentials",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.client, tt.store, setupTestLogger())

			_, err := svc.Login(context.Background(), tt.email, tt.password)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.Empty(t, tt.client.token)
		})
	}
}

func TestAuthService_Register(t *testing.T) {
	client := &mockAPIClient{authResp: authResponse()}
	store := &mockCredentialStore{}
	svc := NewService(client, store, setupTestLogger())

	user, err := svc.Register(context.Background(), "Ana", "ana@example.com", "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, "Ana", client.lastReg.Name)
	assert.Equal(t, "A1", client.token)
	assert.NotNil(t, store.data)
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc := NewService(&mockAPIClient{}, &mockCredentialStore{}, setupTestLogger())
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "ana@example.com", "secret-pass")
	assert.ErrorContains(t, err, "invalid name")

	_, err = svc.Register(ctx, "Ana", "ana", "secret-pass")
	assert.ErrorContains(t, err, "invalid email")

	_, err = svc.Register(ctx, "Ana", "ana@example.com", "short")
	assert.ErrorContains(t, err, "invalid password")
}

func TestAuthService_Logout(t *testing.T) {
	t.Run("server ok", func(t *testing.T) {
		client := &mockAPIClient{token: "A1"}
		store := &mockCredentialStore{data: &storage.Credentials{AccessToken: "A1", RefreshToken: "R1"}}
		svc := NewService(client, store, setupTestLogger())

		require.NoError(t, svc.Logout(context.Background()))
		assert.Equal(t, 1, client.logoutCalls)
		assert.Empty(t, client.token)
		assert.True(t, store.deleted)
	})

	t.Run("server unreachable", func(t *testing.T) {
		client := &mockAPIClient{token: "A1", logoutErr: errors.New("network error")}
		store := &mockCredentialStore{data: &storage.Credentials{AccessToken: "A1", RefreshToken: "R1"}}
		svc := NewService(client, store, setupTestLogger())

		require.NoError(t, svc.Logout(context.Background()))
		assert.Empty(t, client.token)
		assert.Nil(t, store.data)
	})

	t.Run("delete fails", func(t *testing.T) {
		store := &mockCredentialStore{deleteErr: errors.New("locked")}
		svc := NewService(&mockAPIClient{}, store, setupTestLogger())

		err := svc.Logout(context.Background())
		assert.ErrorContains(t, err, "failed to delete credentials")
	})
}

func TestAuthService_Restore(t *testing.T) {
	t.Run("stored session", func(t *testing.T) {
		client := &mockAPIClient{}
		store := &mockCredentialStore{data: &storage.Credentials{
			AccessToken:  "A1",
			RefreshToken: "R1",
			User:         &pkgapi.User{Email: "ana@example.com"},
		}}
		svc := NewService(client, store, setupTestLogger())

		st, err := svc.Restore(context.Background())
		require.NoError(t, err)
		assert.True(t, st.Authenticated)
		assert.Equal(t, "ana@example.com", st.User.Email)
		assert.Equal(t, "A1", client.token)
	})

	t.Run("no session", func(t *testing.T) {
		client := &mockAPIClient{}
		svc := NewService(client, &mockCredentialStore{}, setupTestLogger())

		st, err := svc.Restore(context.Background())
		require.NoError(t, err)
		assert.False(t, st.Authenticated)
		assert.Empty(t, client.token)
	})

	t.Run("storage error", func(t *testing.T) {
		svc := NewService(&mockAPIClient{}, &mockCredentialStore{getErr: errors.New("corrupted")}, setupTestLogger())

		_, err := svc.Restore(context.Background())
		assert.ErrorContains(t, err, "failed to load credentials")
	})
}

func TestAuthService_Status(t *testing.T) {
	client := &mockAPIClient{}
	store := &mockCredentialStore{data: &storage.Credentials{AccessToken: "A1", RefreshToken: "R1"}}
	svc := NewService(client, store, setupTestLogger())

	st, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, st.Authenticated)
	assert.Empty(t, client.token, "status must not touch the client")
}
