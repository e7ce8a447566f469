package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iudanet/villabook/internal/client/events"
	"github.com/iudanet/villabook/internal/client/storage"
	"github.com/iudanet/villabook/pkg/api"
)

// mockCredentialStore in-memory реализация storage.CredentialStore
type mockCredentialStore struct {
	creds      *storage.Credentials
	saveErr    error
	mu         sync.Mutex
	saveCalls  int
	deleteCall int
}

func (m *mockCredentialStore) GetCredentials(_ context.Context) (*storage.Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.creds == nil {
		return nil, storage.ErrAuthNotFound
	}
	c := *m.creds
	return &c, nil
}

func (m *mockCredentialStore) SaveCredentials(_ context.Context, creds *storage.Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCalls++
	if m.saveErr != nil {
		return m.saveErr
	}
	c := *creds
	m.creds = &c
	return nil
}

func (m *mockCredentialStore) DeleteCredentials(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCall++
	m.creds = nil
	return nil
}

func (m *mockCredentialStore) snapshot() (*storage.Credentials, int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creds, m.saveCalls, m.deleteCall
}

// recordingNavigator запоминает все переходы
type recordingNavigator struct {
	mu    sync.Mutex
	paths []string
}

func (n *recordingNavigator) Navigate(path string) {
	n.mu.Lock()
	n.paths = append(n.paths, path)
	n.mu.Unlock()
}

func (n *recordingNavigator) Paths() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}

type fixture struct {
	client *Client
	store  *mockCredentialStore
	nav    *recordingNavigator
	events *[]events.Event
	mu     *sync.Mutex
}

func (f *fixture) published() []events.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]events.Event(nil), (*f.events)...)
}

func newFixture(t *testing.T, baseURL string, opts ...Option) *fixture {
	t.Helper()

	store := &mockCredentialStore{}
	nav := &recordingNavigator{}
	bus := events.NewBus()

	var mu sync.Mutex
	var got []events.Event
	unsubscribe := bus.Subscribe(events.AuthFailure, func(e events.Event) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
	})
	t.Cleanup(unsubscribe)

	all := append([]Option{
		WithCredentialStore(store),
		WithPublisher(bus),
		WithNavigator(nav),
		WithLocale(func() string { return "fr" }),
	}, opts...)

	return &fixture{
		client: NewClient(baseURL, all...),
		store:  store,
		nav:    nav,
		events: &got,
		mu:     &mu,
	}
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func refreshOK(access, refresh string) api.Envelope[api.AuthResponse] {
	return api.Envelope[api.AuthResponse]{
		Success: true,
		Message: "Token refreshed",
		Data: api.AuthResponse{
			AccessToken:  access,
			RefreshToken: refresh,
			User:         &api.User{ID: "user-1", Email: "guest@example.com"},
			ExpiresIn:    900,
		},
	}
}
