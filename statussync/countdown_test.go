package statussync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTickBreakdownAndFlooring(t *testing.T) {
	base := time.Date(2026, 2, 14, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name        string
		until       time.Duration
		want        Remaining
		wantElapsed bool
	}{
		{name: "five seconds", until: 5 * time.Second, want: Remaining{Seconds: 5}},
		// Усечение вниз: 5.9 секунды — это всё ещё 5 на табло.
		{name: "floors sub-second remainder", until: 5900 * time.Millisecond, want: Remaining{Seconds: 5}},
		{name: "full breakdown", until: 49*time.Hour + 3*time.Minute + 7*time.Second, want: Remaining{Days: 2, Hours: 1, Minutes: 3, Seconds: 7}},
		{name: "exactly zero", until: 0, want: Remaining{}, wantElapsed: true},
		{name: "already past", until: -3 * time.Second, want: Remaining{}, wantElapsed: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, elapsed := Tick(base.Add(tc.until), base)
			require.Equal(t, tc.want, got)
			require.Equal(t, tc.wantElapsed, elapsed)
		})
	}
}

func TestRemainingString(t *testing.T) {
	require.Equal(t, "00:00:00:05", Remaining{Seconds: 5}.String())
	require.Equal(t, "02:01:03:07", Remaining{Days: 2, Hours: 1, Minutes: 3, Seconds: 7}.String())
}

func TestTickStrictlyDecreasing(t *testing.T) {
	base := time.Date(2026, 2, 14, 9, 0, 0, 0, time.UTC)
	openTime := base.Add(5 * time.Second)

	prev := 6
	for i := 0; i < 5; i++ {
		now := base.Add(time.Duration(i) * time.Second)
		got, elapsed := Tick(openTime, now)
		require.False(t, elapsed)
		require.Less(t, got.Seconds, prev)
		require.GreaterOrEqual(t, got.Seconds, 0)
		prev = got.Seconds
	}

	_, elapsed := Tick(openTime, base.Add(5*time.Second))
	require.True(t, elapsed)
}

func TestCountdownFiresElapsedExactlyOnce(t *testing.T) {
	base := time.Date(2026, 2, 14, 9, 0, 0, 0, time.UTC)
	now := base

	var ticks []Remaining
	snapshots := 0

	c := NewCountdown(base.Add(3*time.Second),
		func(r Remaining) { ticks = append(ticks, r) },
		func() { snapshots++ },
	)
	c.now = func() time.Time { return now }

	// Прокручиваем часы вручную, по кадру за секунду.
	for i := 0; i <= 6; i++ {
		now = base.Add(time.Duration(i) * time.Second)
		c.step()
	}

	require.Equal(t, 7, len(ticks))
	require.Equal(t, Remaining{Seconds: 3}, ticks[0])
	require.Equal(t, Remaining{}, ticks[3])
	// Переход нуля сигнализируется один раз, не на каждом тике после.
	require.Equal(t, 1, snapshots)
}

func TestCountdownStopIsIdempotent(t *testing.T) {
	c := NewCountdown(time.Now().Add(time.Hour), nil, nil)
	c.Start()
	c.Stop()
	c.Stop()
}
