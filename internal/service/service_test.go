package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/scan-token-service/internal/auth"
	"github.com/spec-kit/scan-token-service/internal/domain"
	"github.com/spec-kit/scan-token-service/internal/events"
	"github.com/spec-kit/scan-token-service/internal/observability"
)

var scanTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type memoryStore struct {
	mu     sync.Mutex
	events []domain.ScanEvent
	err    error
}

func (m *memoryStore) Create(_ context.Context, event *domain.ScanEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, *event)
	return nil
}

func (m *memoryStore) ListByDevice(_ context.Context, deviceID string, limit int) ([]domain.ScanEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ScanEvent
	for i := len(m.events) - 1; i >= 0 && len(out) < limit; i-- {
		if m.events[i].DeviceID == deviceID {
			out = append(out, m.events[i])
		}
	}
	return out, nil
}

type memoryHistory struct {
	memoryStore
	recentErr error
}

func (m *memoryHistory) Push(ctx context.Context, event *domain.ScanEvent) error {
	return m.Create(ctx, event)
}

func (m *memoryHistory) Recent(ctx context.Context, deviceID string, limit int) ([]domain.ScanEvent, error) {
	if m.recentErr != nil {
		return nil, m.recentErr
	}
	return m.ListByDevice(ctx, deviceID, limit)
}

type memoryIssuances struct {
	mu      sync.Mutex
	records []domain.TokenIssuance
}

func (m *memoryIssuances) Create(_ context.Context, issuance *domain.TokenIssuance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, *issuance)
	return nil
}

type fixture struct {
	tokens    *auth.TokenService
	scans     *ScanService
	issuer    *TokenService
	store     *memoryStore
	issuances *memoryIssuances
	history   *memoryHistory
	metrics   *observability.Metrics
}

func newFixture(t *testing.T, required []string, ratePerMinute int) *fixture {
	t.Helper()
	now := func() time.Time { return scanTime }
	tokens, err := auth.NewTokenService([]byte("scan-secret"), auth.WithClock(now))
	require.NoError(t, err)

	dispatcher := events.NewInMemoryDispatcher(nil)
	store := &memoryStore{}
	issuances := &memoryIssuances{}
	history := &memoryHistory{}
	metrics := observability.NewMetrics()
	NewScanRecorder(dispatcher, store, issuances, history, nil).RegisterHandlers()

	return &fixture{
		tokens: tokens,
		scans: NewScanService(ScanDependencies{
			Verifier:       tokens,
			History:        history,
			Limiter:        NewRateLimiter(ratePerMinute, time.Minute, now),
			Dispatcher:     dispatcher,
			Metrics:        metrics,
			RequiredClaims: required,
			Now:            now,
		}),
		issuer: NewTokenService(TokenDependencies{
			Tokens:     tokens,
			Dispatcher: dispatcher,
			Metrics:    metrics,
		}),
		store:     store,
		issuances: issuances,
		history:   history,
		metrics:   metrics,
	}
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	f := newFixture(t, nil, 0)
	ctx := context.Background()

	issued, err := f.issuer.Issue(ctx, auth.Claims{"sub": "visitor-1"})
	require.NoError(t, err)
	assert.True(t, issued.IssuedAt.Equal(scanTime))
	assert.True(t, issued.ExpiresAt.Equal(scanTime.Add(time.Hour)))

	verified, err := f.issuer.Verify(ctx, issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "visitor-1", verified.Claims["sub"])

	_, err = f.issuer.Verify(ctx, "bad")
	assert.ErrorIs(t, err, auth.ErrMalformedToken)

	require.Len(t, f.issuances.records, 1)
	record := f.issuances.records[0]
	assert.Equal(t, []string{"sub"}, record.ClaimNames)
	assert.True(t, record.IssuedAt.Equal(scanTime))
	assert.True(t, record.ExpiresAt.Equal(issued.ExpiresAt))
	assert.NotEmpty(t, record.ID)

	snap := f.metrics.Snapshot()
	assert.Equal(t, int64(1), snap.TokenOperations["issue|ok"])
	assert.Equal(t, int64(1), snap.TokenOperations["verify|ok"])
	assert.Equal(t, int64(1), snap.TokenOperations["verify|malformed_token"])
}

func TestScanService_VerifiesQRCode(t *testing.T) {
	f := newFixture(t, []string{"sub"}, 0)
	token, err := f.tokens.Issue(auth.Claims{"sub": "visitor-1", "room": "B12"})
	require.NoError(t, err)

	result, err := f.scans.Scan(context.Background(), ScanInput{
		Format:   "QR_CODE",
		RawValue: "  " + token + "\n",
		DeviceID: "device-1",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ScanOutcomeVerified, result.Event.Outcome)
	assert.Equal(t, "B12", result.Verified.Claims["room"])
	assert.Equal(t, scanTime, result.Event.ScannedAt)

	require.Len(t, f.store.events, 1)
	assert.Equal(t, result.Event.ID, f.store.events[0].ID)

	recent, err := f.scans.History(context.Background(), "device-1", 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, domain.ScanOutcomeVerified, recent[0].Outcome)
}

func TestScanService_IgnoresOtherFormats(t *testing.T) {
	f := newFixture(t, nil, 0)

	result, err := f.scans.Scan(context.Background(), ScanInput{Format: "EAN_13", RawValue: "4006381333931"})
	require.NoError(t, err)
	assert.Equal(t, domain.ScanOutcomeIgnored, result.Event.Outcome)
	assert.Equal(t, anonymousDevice, result.Event.DeviceID)
	assert.Nil(t, result.Verified)
	assert.Equal(t, int64(1), f.metrics.Snapshot().Scans["ignored"])
}

func TestScanService_RejectsInvalidTokens(t *testing.T) {
	f := newFixture(t, nil, 0)
	other, err := auth.NewTokenService([]byte("other-secret"), auth.WithClock(func() time.Time { return scanTime }))
	require.NoError(t, err)
	foreign, err := other.Issue(auth.Claims{"sub": "intruder"})
	require.NoError(t, err)

	cases := []struct {
		raw    string
		want   error
		reason string
	}{
		{"not-a-token", auth.ErrMalformedToken, "malformed_token"},
		{foreign, auth.ErrSignatureMismatch, "signature_mismatch"},
	}
	for _, tc := range cases {
		result, err := f.scans.Scan(context.Background(), ScanInput{Format: "QR_CODE", RawValue: tc.raw, DeviceID: "device-2"})
		assert.ErrorIs(t, err, tc.want)
		assert.Nil(t, result)
	}

	require.Len(t, f.store.events, 2)
	assert.Equal(t, domain.ScanOutcomeRejected, f.store.events[0].Outcome)
	assert.Equal(t, "malformed_token", f.store.events[0].Reason)
	assert.Equal(t, "signature_mismatch", f.store.events[1].Reason)
	assert.Nil(t, f.store.events[1].Claims)
}

func TestScanService_RequiredClaims(t *testing.T) {
	f := newFixture(t, []string{"sub", "event"}, 0)
	token, err := f.tokens.Issue(auth.Claims{"sub": "visitor-1"})
	require.NoError(t, err)

	_, err = f.scans.Scan(context.Background(), ScanInput{Format: "QR_CODE", RawValue: token})
	require.ErrorIs(t, err, ErrMissingClaims)

	var missing *MissingClaimsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"event"}, missing.Missing)
	assert.Equal(t, "missing_claims", f.store.events[0].Reason)
}

func TestScanService_RateLimited(t *testing.T) {
	f := newFixture(t, nil, 2)
	in := ScanInput{Format: "CODE_128", RawValue: "x", DeviceID: "device-3"}

	for i := 0; i < 2; i++ {
		_, err := f.scans.Scan(context.Background(), in)
		require.NoError(t, err)
	}
	_, err := f.scans.Scan(context.Background(), in)
	assert.True(t, IsRateLimitError(err))

	_, err = f.scans.Scan(context.Background(), ScanInput{Format: "CODE_128", DeviceID: "device-4"})
	assert.NoError(t, err)
}

func TestScanService_HistoryUnavailable(t *testing.T) {
	svc := NewScanService(ScanDependencies{})
	_, err := svc.History(context.Background(), "device-1", 5)
	assert.ErrorIs(t, err, ErrHistoryUnavailable)
}

func TestScanService_HistoryFromStoreWithoutCache(t *testing.T) {
	now := func() time.Time { return scanTime }
	tokens, err := auth.NewTokenService([]byte("scan-secret"), auth.WithClock(now))
	require.NoError(t, err)

	dispatcher := events.NewInMemoryDispatcher(nil)
	store := &memoryStore{}
	NewScanRecorder(dispatcher, store, nil, nil, nil).RegisterHandlers()
	svc := NewScanService(ScanDependencies{
		Verifier:   tokens,
		Store:      store,
		Dispatcher: dispatcher,
		Now:        now,
	})

	token, err := tokens.Issue(auth.Claims{"sub": "visitor-1"})
	require.NoError(t, err)
	_, err = svc.Scan(context.Background(), ScanInput{Format: "QR_CODE", RawValue: token, DeviceID: "device-5"})
	require.NoError(t, err)
	_, err = svc.Scan(context.Background(), ScanInput{Format: "EAN_13", RawValue: "1", DeviceID: "device-5"})
	require.NoError(t, err)

	recent, err := svc.History(context.Background(), "device-5", 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, domain.ScanOutcomeIgnored, recent[0].Outcome)
	assert.Equal(t, domain.ScanOutcomeVerified, recent[1].Outcome)
}

func TestScanService_HistoryFallsBackWhenCacheFails(t *testing.T) {
	store := &memoryStore{events: []domain.ScanEvent{{ID: "s1", DeviceID: "device-6"}}}
	history := &memoryHistory{recentErr: errors.New("redis down")}
	svc := NewScanService(ScanDependencies{History: history, Store: store})

	recent, err := svc.History(context.Background(), "device-6", 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "s1", recent[0].ID)

	cacheOnly := NewScanService(ScanDependencies{History: history})
	_, err = cacheOnly.History(context.Background(), "device-6", 5)
	assert.ErrorContains(t, err, "redis down")
}

func TestScanRecorder_StoreFailureStillPushesHistory(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher(nil)
	store := &memoryStore{err: errors.New("db down")}
	history := &memoryHistory{}
	NewScanRecorder(dispatcher, store, nil, history, nil).RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{
		ID:      "e1",
		Type:    events.EventScanCompleted,
		Payload: events.ScanCompletedPayload{Scan: domain.ScanEvent{ID: "s1", DeviceID: "d"}},
	})
	assert.ErrorContains(t, err, "db down")
	assert.Len(t, history.events, 1)
}

func TestRateLimiter_SlidingWindow(t *testing.T) {
	now := scanTime
	limiter := NewRateLimiter(2, time.Minute, func() time.Time { return now })

	require.NoError(t, limiter.Allow("k"))
	now = now.Add(30 * time.Second)
	require.NoError(t, limiter.Allow("k"))

	err := limiter.Allow("k")
	var rle *RateLimitError
	require.True(t, errors.As(err, &rle))
	assert.Equal(t, 2, rle.Max)

	now = now.Add(31 * time.Second)
	assert.NoError(t, limiter.Allow("k"))

	var disabled *RateLimiter
	assert.NoError(t, disabled.Allow("k"))
}

func TestRateLimiter_ForgetsIdleKeys(t *testing.T) {
	now := scanTime
	limiter := NewRateLimiter(5, time.Minute, func() time.Time { return now })

	for i := 0; i < 1000; i++ {
		require.NoError(t, limiter.Allow("device-"+strconv.Itoa(i)))
	}
	assert.Len(t, limiter.timestamps, 1000)

	now = now.Add(time.Hour)
	require.NoError(t, limiter.Allow("fresh"))
	assert.Len(t, limiter.timestamps, 1)
	assert.Contains(t, limiter.timestamps, "fresh")
}
