package statussync

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Harsha29-kns/scorecraft-backend/models"
	"github.com/Harsha29-kns/scorecraft-backend/realtime"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDeriveFlags(t *testing.T) {
	now := time.Date(2026, 2, 14, 9, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	cases := []struct {
		name       string
		status     models.RegistrationStatus
		wantOpen   bool
		wantPct    float64
		wantRemain time.Duration
	}{
		{
			name:     "open below limit",
			status:   models.RegistrationStatus{Count: 10, Limit: 60},
			wantOpen: true,
			wantPct:  float64(10) / 60 * 100,
		},
		{
			name:     "closed at limit regardless of open time",
			status:   models.RegistrationStatus{Count: 60, Limit: 60, IsClosed: true, OpenTime: &past},
			wantOpen: false,
			wantPct:  100,
		},
		{
			// Даже если сервер по какой-то причине не выставил флаг,
			// локальный пересчёт не открывает регистрацию при count >= limit.
			name:     "count over limit without server flag",
			status:   models.RegistrationStatus{Count: 61, Limit: 60},
			wantOpen: false,
			wantPct:  100,
		},
		{
			name:     "server flag wins over local recomputation",
			status:   models.RegistrationStatus{Count: 1, Limit: 60, IsClosed: true},
			wantOpen: false,
			wantPct:  float64(1) / 60 * 100,
		},
		{
			name:       "future open time gates with countdown",
			status:     models.RegistrationStatus{Count: 0, Limit: 60, OpenTime: &future},
			wantOpen:   false,
			wantRemain: time.Hour,
		},
		{
			name:     "past open time does not gate",
			status:   models.RegistrationStatus{Count: 0, Limit: 60, OpenTime: &past},
			wantOpen: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DeriveFlags(&tc.status, now)
			require.Equal(t, tc.wantOpen, got.IsOpen)
			require.InDelta(t, tc.wantPct, got.PercentFull, 0.0001)
			require.Equal(t, tc.wantRemain, got.TimeRemaining)
		})
	}
}

func TestCacheUnknownBeforeFirstSnapshot(t *testing.T) {
	cache := NewCache(newFakeBroadcaster(), testLogger())
	defer cache.Close()

	_, ok := cache.Status()
	require.False(t, ok, "состояние должно быть неизвестным до первого снапшота")

	_, ok = cache.Flags(time.Now())
	require.False(t, ok)
}

func TestCacheSnapshotReplacesWhole(t *testing.T) {
	bc := newFakeBroadcaster()
	cache := NewCache(bc, testLogger())
	defer cache.Close()

	bc.push(realtime.EventRegistrationStatus, models.RegistrationStatus{Version: 1, Count: 59, Limit: 60})
	status, ok := cache.Status()
	require.True(t, ok)
	require.False(t, status.IsClosed)

	// Шестидесятая команда: следующий снапшот закрывает регистрацию.
	bc.push(realtime.EventRegistrationStatus, models.RegistrationStatus{Version: 2, Count: 60, Limit: 60, IsClosed: true})
	status, ok = cache.Status()
	require.True(t, ok)
	require.True(t, status.IsClosed)
	require.Equal(t, 60, status.Count)

	flags, ok := cache.Flags(time.Now())
	require.True(t, ok)
	require.False(t, flags.IsOpen)
}

func TestCacheDropsStaleSnapshot(t *testing.T) {
	bc := newFakeBroadcaster()
	cache := NewCache(bc, testLogger())
	defer cache.Close()

	bc.push(realtime.EventRegistrationStatus, models.RegistrationStatus{Version: 5, Count: 40, Limit: 60})
	// Задержавшийся в транспорте снапшот со старой версией.
	bc.push(realtime.EventRegistrationStatus, models.RegistrationStatus{Version: 3, Count: 10, Limit: 60})

	status, ok := cache.Status()
	require.True(t, ok)
	require.Equal(t, int64(5), status.Version)
	require.Equal(t, 40, status.Count)
}

func TestCacheRequestSnapshotIdempotent(t *testing.T) {
	bc := newFakeBroadcaster()
	cache := NewCache(bc, testLogger())
	defer cache.Close()

	cache.RequestSnapshot()
	cache.RequestSnapshot()
	cache.RequestSnapshot()

	// Повторные запросы не плодят подписки: по одной на событие.
	require.Equal(t, 1, bc.subscriberCount(realtime.EventRegistrationStatus))
	require.Equal(t, 1, bc.subscriberCount(realtime.EventDomainData))
	require.Equal(t, 3, bc.emitCount(realtime.IntentCheck))

	bc.push(realtime.EventRegistrationStatus, models.RegistrationStatus{Version: 1, Count: 5, Limit: 60})
	status, ok := cache.Status()
	require.True(t, ok)
	require.Equal(t, 5, status.Count)
}

func TestCacheDomainsSnapshot(t *testing.T) {
	bc := newFakeBroadcaster()
	cache := NewCache(bc, testLogger())
	defer cache.Close()

	bc.push(realtime.EventDomainData, []models.Domain{
		{ID: 1, Name: "AI/ML", Slots: 3},
		{ID: 2, Name: "FinTech", Slots: 0},
	})

	domains := cache.Domains()
	require.Len(t, domains, 2)
	require.Equal(t, 0, domains[1].Slots)

	// Снапшот заменяет список целиком.
	bc.push(realtime.EventDomainData, []models.Domain{{ID: 3, Name: "IoT", Slots: 5}})
	domains = cache.Domains()
	require.Len(t, domains, 1)
	require.Equal(t, "IoT", domains[0].Name)
}

func TestCacheCloseUnsubscribes(t *testing.T) {
	bc := newFakeBroadcaster()
	cache := NewCache(bc, testLogger())

	cache.Close()
	require.Equal(t, 0, bc.subscriberCount(realtime.EventRegistrationStatus))

	// Сообщения после teardown кэша не касаются.
	bc.push(realtime.EventRegistrationStatus, models.RegistrationStatus{Version: 1, Count: 5, Limit: 60})
	_, ok := cache.Status()
	require.False(t, ok)
}
