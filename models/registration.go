package models

import "time"

// RegistrationSettings — административные настройки окна регистрации,
// хранятся одной строкой в БД.
type RegistrationSettings struct {
	Limit       int        `json:"limit" db:"reg_limit"`
	ForceClosed bool       `json:"force_closed" db:"force_closed"`
	OpenTime    *time.Time `json:"open_time,omitempty" db:"open_time"`

	// Окно выбора доменов управляется отдельно от окна регистрации.
	DomainOpenTime *time.Time `json:"domain_open_time,omitempty" db:"domain_open_time"`
	DomainsClosed  bool       `json:"domains_closed" db:"domains_closed"`

	Version int64 `json:"version" db:"version"`
}

// DomainWindowOpen сообщает, открыт ли выбор доменов в момент now.
// Явное закрытие администратором имеет приоритет над таймером.
func (s *RegistrationSettings) DomainWindowOpen(now time.Time) bool {
	if s.DomainsClosed {
		return false
	}
	if s.DomainOpenTime == nil {
		return false
	}
	return !now.Before(*s.DomainOpenTime)
}

// RegistrationStatus — снапшот состояния регистрации, рассылаемый клиентам.
// IsClosed вычисляется только на сервере: count >= limit либо явное
// закрытие администратором. Version монотонно растёт при каждой мутации,
// клиенты отбрасывают снапшоты со старой версией.
type RegistrationStatus struct {
	Version  int64      `json:"version"`
	Count    int        `json:"count"`
	Limit    int        `json:"limit"`
	IsClosed bool       `json:"isClosed"`
	OpenTime *time.Time `json:"openTime,omitempty"`
}
