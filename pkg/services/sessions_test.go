package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"property-leads/pkg/form"
	"property-leads/pkg/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeCollector records payloads and returns err
type fakeCollector struct {
	mu       sync.Mutex
	payloads []models.LeadPayload
	err      error
}

func (f *fakeCollector) Submit(ctx context.Context, payload models.LeadPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, payload)
	return f.err
}

func (f *fakeCollector) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

func newTestStore(t *testing.T, collector form.Collector, ttl time.Duration) *SessionStore {
	t.Helper()
	store := NewSessionStore(func() *form.Controller {
		return form.NewController(collector)
	}, ttl, zap.NewNop())
	t.Cleanup(store.Close)
	return store
}

var validLead = map[string]string{
	"firstName":       "Jane",
	"lastName":        "Doe",
	"phoneNumber":     "0412345678",
	"emailAddress":    "jane@example.com",
	"propertyAddress": "1 Main St",
	"planningSelling": "yes",
	"sellingSoon":     "less-than-1-month",
}

func TestSessionStore_CreateAndGet(t *testing.T) {
	store := newTestStore(t, &fakeCollector{}, time.Hour)

	session := store.Create()
	require.NotEmpty(t, session.ID)

	got, err := store.Get(session.ID)
	require.NoError(t, err)
	assert.Same(t, session, got)
	assert.Equal(t, models.StatusIdle, got.Controller.Status())

	other := store.Create()
	assert.NotEqual(t, session.ID, other.ID)
	assert.Equal(t, 2, store.Len())
}

func TestSessionStore_UnknownSession(t *testing.T) {
	store := newTestStore(t, &fakeCollector{}, time.Hour)

	_, err := store.Get("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, store.Delete("missing"), ErrSessionNotFound)
}

func TestSessionStore_Delete(t *testing.T) {
	store := newTestStore(t, &fakeCollector{}, time.Hour)
	session := store.Create()

	require.NoError(t, store.Delete(session.ID))
	_, err := store.Get(session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStore_ExpiryIsSliding(t *testing.T) {
	store := newTestStore(t, &fakeCollector{}, time.Hour)
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	store.mu.Lock()
	store.now = func() time.Time { return now }
	store.mu.Unlock()

	session := store.Create()

	now = now.Add(45 * time.Minute)
	_, err := store.Get(session.ID)
	require.NoError(t, err)

	now = now.Add(45 * time.Minute)
	_, err = store.Get(session.ID)
	require.NoError(t, err)

	now = now.Add(61 * time.Minute)
	_, err = store.Get(session.ID)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, 0, store.Len())
}

func TestSessionStore_SweeperPurgesExpired(t *testing.T) {
	store := newTestStore(t, &fakeCollector{}, 20*time.Millisecond)
	store.Create()
	store.Create()

	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 10*time.Millisecond)
}

func TestSessionStore_SetField(t *testing.T) {
	store := newTestStore(t, &fakeCollector{}, time.Hour)
	session := store.Create()

	view, err := store.SetField(session.ID, "firstName", "Jane")
	require.NoError(t, err)
	assert.Equal(t, "Jane", view.Values.FirstName)

	_, err = store.SetField(session.ID, "middleName", "Q")
	assert.ErrorIs(t, err, models.ErrUnknownField)

	_, err = store.SetField(session.ID, "sellingSoon", "tomorrow")
	assert.ErrorIs(t, err, models.ErrInvalidValue)

	_, err = store.SetField("missing", "firstName", "Jane")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStore_SubmitFlow(t *testing.T) {
	collector := &fakeCollector{}
	store := newTestStore(t, collector, time.Hour)
	session := store.Create()

	view, err := store.Submit(context.Background(), session.ID)
	assert.ErrorIs(t, err, form.ErrValidation)
	assert.Len(t, view.Errors, 6)

	for name, value := range validLead {
		view, err = store.SetField(session.ID, name, value)
		require.NoError(t, err)
	}
	assert.Empty(t, view.Errors)

	view, err = store.Submit(context.Background(), session.ID)
	require.NoError(t, err)
	assert.True(t, view.ShowSuccess)
	assert.Equal(t, 1, collector.calls())

	// The success view stays available until the session goes away.
	got, err := store.Get(session.ID)
	require.NoError(t, err)
	assert.True(t, got.Controller.View().ShowSuccess)
}

func TestSessionStore_SubmitTransportFailure(t *testing.T) {
	collector := &fakeCollector{err: errors.New("connection refused")}
	store := newTestStore(t, collector, time.Hour)
	session := store.Create()
	for name, value := range validLead {
		_, err := store.SetField(session.ID, name, value)
		require.NoError(t, err)
	}

	view, err := store.Submit(context.Background(), session.ID)
	assert.ErrorIs(t, err, form.ErrCollectorFailure)
	assert.Equal(t, models.StatusIdle, view.Status)
	assert.Equal(t, form.FailureMessage, view.SubmitMessage)
	assert.Equal(t, "Jane", view.Values.FirstName)
}

func TestSessionStore_CloseIsIdempotent(t *testing.T) {
	store := NewSessionStore(func() *form.Controller { return nil }, time.Hour, zap.NewNop())
	store.Close()
	store.Close()
}
