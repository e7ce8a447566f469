package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iudanet/villabook/internal/models"
	"github.com/iudanet/villabook/internal/server/middleware"
	"github.com/iudanet/villabook/internal/server/storage"
	"github.com/iudanet/villabook/pkg/api"
)

// mockUserStorage is a mock implementation of UserStorage for testing
type mockUserStorage struct {
	users           map[string]*models.User // email -> User
	createError     error
	getUserError    error
	updateError     error
	updateLastLogin func(ctx context.Context, userID string, loginTime time.Time) error
}

func newMockUserStorage(users ...*models.User) *mockUserStorage {
	m := &mockUserStorage{users: make(map[string]*models.User)}
	for _, u := range users {
		m.users[u.Email] = u
	}
	return m
}

func (m *mockUserStorage) CreateUser(ctx context.Context, user *models.User) error {
	if m.createError != nil {
		return m.createError
	}
	if _, exists := m.users[user.Email]; exists {
		return storage.ErrUserAlreadyExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.getUserError != nil {
		return nil, m.getUserError
	}
	user, ok := m.users[email]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserStorage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if m.getUserError != nil {
		return nil, m.getUserError
	}
	for _, user := range m.users {
		if user.ID == id {
			cp := *user
			return &cp, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (m *mockUserStorage) UpdateUser(ctx context.Context, user *models.User) error {
	if m.updateError != nil {
		return m.updateError
	}
	for email, u := range m.users {
		if u.ID == user.ID {
			u.Name = user.Name
			u.Phone = user.Phone
			m.users[email] = u
			return nil
		}
	}
	return storage.ErrUserNotFound
}

func (m *mockUserStorage) UpdateLastLogin(ctx context.Context, userID string, loginTime time.Time) error {
	if m.updateLastLogin != nil {
		return m.updateLastLogin(ctx, userID, loginTime)
	}
	return nil
}

// mockTokenStorage is a mock implementation of TokenStorage for testing
type mockTokenStorage struct {
	tokens      map[string]*models.RefreshToken // hash -> RefreshToken
	saveError   error
	getError    error
	deleteError error
	saved       []*models.RefreshToken
	deleted     []string
}

func newMockTokenStorage() *mockTokenStorage {
	return &mockTokenStorage{tokens: make(map[string]*models.RefreshToken)}
}

func (m *mockTokenStorage) SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.saveError != nil {
		return m.saveError
	}
	m.tokens[token.TokenHash] = token
	m.saved = append(m.saved, token)
	return nil
}

func (m *mockTokenStorage) GetRefreshToken(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	rt, ok := m.tokens[tokenHash]
	if !ok {
		return nil, storage.ErrTokenNotFound
	}
	return rt, nil
}

func (m *mockTokenStorage) DeleteRefreshToken(ctx context.Context, tokenHash string) error {
	if m.deleteError != nil {
		return m.deleteError
	}
	if _, ok := m.tokens[tokenHash]; !ok {
		return storage.ErrTokenNotFound
	}
	delete(m.tokens, tokenHash)
	m.deleted = append(m.deleted, tokenHash)
	return nil
}

func (m *mockTokenStorage) DeleteUserTokens(ctx context.Context, userID string) (int, error) {
	if m.deleteError != nil {
		return 0, m.deleteError
	}
	n := 0
	for hash, token := range m.tokens {
		if token.UserID == userID {
			delete(m.tokens, hash)
			n++
		}
	}
	return n, nil
}

func (m *mockTokenStorage) DeleteExpiredTokens(ctx context.Context, now time.Time) (int, error) {
	n := 0
	for hash, token := range m.tokens {
		if token.Expired(now) {
			delete(m.tokens, hash)
			n++
		}
	}
	return n, nil
}

// mockVillaStorage is a mock implementation of VillaStorage for testing
type mockVillaStorage struct {
	villas    map[string]*models.Villa
	listError error
	getError  error
	lastQuery models.VillaFilter
}

func newMockVillaStorage(villas ...*models.Villa) *mockVillaStorage {
	m := &mockVillaStorage{villas: make(map[string]*models.Villa)}
	for _, v := range villas {
		m.villas[v.ID] = v
	}
	return m
}

func (m *mockVillaStorage) ListVillas(ctx context.Context, filter models.VillaFilter) ([]*models.Villa, error) {
	m.lastQuery = filter
	if m.listError != nil {
		return nil, m.listError
	}
	var out []*models.Villa
	for _, v := range m.villas {
		if filter.MinGuests > 0 && v.MaxGuests < filter.MinGuests {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (m *mockVillaStorage) GetVilla(ctx context.Context, id string) (*models.Villa, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	v, ok := m.villas[id]
	if !ok {
		return nil, storage.ErrVillaNotFound
	}
	return v, nil
}

// mockBookingStorage is a mock implementation of BookingStorage for testing
type mockBookingStorage struct {
	bookings    map[string]*models.Booking
	createError error
	listError   error
	cancelled   []string
}

func newMockBookingStorage(bookings ...*models.Booking) *mockBookingStorage {
	m := &mockBookingStorage{bookings: make(map[string]*models.Booking)}
	for _, b := range bookings {
		m.bookings[b.ID] = b
	}
	return m
}

func (m *mockBookingStorage) CreateBooking(ctx context.Context, booking *models.Booking) error {
	if m.createError != nil {
		return m.createError
	}
	m.bookings[booking.ID] = booking
	return nil
}

func (m *mockBookingStorage) ListUserBookings(ctx context.Context, userID string) ([]*models.Booking, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	var out []*models.Booking
	for _, b := range m.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockBookingStorage) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	b, ok := m.bookings[id]
	if !ok {
		return nil, storage.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *mockBookingStorage) CancelBooking(ctx context.Context, id string, updatedAt time.Time) error {
	b, ok := m.bookings[id]
	if !ok {
		return storage.ErrBookingNotFound
	}
	b.Status = api.BookingStatusCancelled
	b.UpdatedAt = updatedAt
	m.cancelled = append(m.cancelled, id)
	return nil
}

// stubIssuer выдает предсказуемые access token
type stubIssuer struct {
	err    error
	issued []string
}

func (s *stubIssuer) GenerateAccessToken(userID, role string) (string, int64, error) {
	if s.err != nil {
		return "", 0, s.err
	}
	s.issued = append(s.issued, userID)
	return "access-" + userID, 900, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newRequest строит запрос с JSON-телом; body типа string отправляется как есть
func newRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func asUser(req *http.Request, userID, role string) *http.Request {
	return req.WithContext(middleware.WithUser(req.Context(), userID, role))
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) api.Envelope[T] {
	t.Helper()
	var env api.Envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}
