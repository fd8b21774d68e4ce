package models

import (
	"testing"
	"time"
)

func TestDomainWindowOpen(t *testing.T) {
	now := time.Date(2026, 2, 14, 9, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	cases := []struct {
		name     string
		settings RegistrationSettings
		want     bool
	}{
		{name: "no open time scheduled", settings: RegistrationSettings{}, want: false},
		{name: "open time in the future", settings: RegistrationSettings{DomainOpenTime: &future}, want: false},
		{name: "open time reached", settings: RegistrationSettings{DomainOpenTime: &past}, want: true},
		{name: "open time exactly now", settings: RegistrationSettings{DomainOpenTime: &now}, want: true},
		// Явное закрытие администратором перекрывает таймер.
		{name: "explicitly closed", settings: RegistrationSettings{DomainOpenTime: &past, DomainsClosed: true}, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.settings.DomainWindowOpen(now); got != tc.want {
				t.Fatalf("want %v, got %v", tc.want, got)
			}
		})
	}
}
