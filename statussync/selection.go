package statussync

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/Harsha29-kns/scorecraft-backend/models"
	"github.com/Harsha29-kns/scorecraft-backend/realtime"
)

var (
	// ErrSelectionPending — заявка уже отправлена и ждёт ответа сервера.
	ErrSelectionPending = errors.New("domain selection is already pending")
	// ErrSelectionConfirmed — выбор подтверждён и из клиента не меняется.
	ErrSelectionConfirmed = errors.New("domain selection is already confirmed")
	// ErrDomainHasNoSlots — у домена нет свободных слотов по последнему
	// снапшоту; заявка не отправляется вовсе.
	ErrDomainHasNoSlots = errors.New("domain has no free slots")
	// ErrDomainUnknown — домена нет в последнем снапшоте.
	ErrDomainUnknown = errors.New("domain is not present in the latest snapshot")
)

// SelectionState — состояние заявки команды на домен.
type SelectionState int

const (
	SelectionIdle SelectionState = iota
	SelectionPending
	SelectionConfirmed
)

type selectionRequest struct {
	TeamID   int `json:"team_id"`
	DomainID int `json:"domain_id"`
}

// Selection проводит заявку команды на домен через подтверждение
// сервера. Победителя в гонке за последний слот определяет сервер;
// клиент никогда не подтверждает выбор оптимистично.
type Selection struct {
	bc     Broadcaster
	logger *slog.Logger

	// OnConfirmed вызывается с обновлённым состоянием команды после
	// подтверждения. OnRejected — после отказа «слот занят»; список
	// доменов к этому моменту уже обновлён отдельным броадкастом.
	OnConfirmed func(team *models.Team)
	OnRejected  func()

	mu    sync.Mutex
	state SelectionState
	unsub func()
}

// NewSelection подписывается на ответы по заявкам. В состоянии
// Confirmed объект терминален: смена домена — только через оператора.
func NewSelection(bc Broadcaster, logger *slog.Logger) *Selection {
	s := &Selection{bc: bc, logger: logger}
	s.unsub = bc.Subscribe(realtime.EventDomainSelected, s.onResult)
	return s
}

// Submit отправляет заявку на домен. Домен сверяется с последним
// снапшотом: полный (slots == 0) блокируется локально, без похода в
// сеть. Повторные вызовы до ответа сервера отклоняются.
func (s *Selection) Submit(teamID, domainID int, domains []models.Domain) error {
	var found *models.Domain
	for i := range domains {
		if domains[i].ID == domainID {
			found = &domains[i]
			break
		}
	}
	if found == nil {
		return ErrDomainUnknown
	}
	if found.Slots <= 0 {
		return ErrDomainHasNoSlots
	}

	s.mu.Lock()
	switch s.state {
	case SelectionPending:
		s.mu.Unlock()
		return ErrSelectionPending
	case SelectionConfirmed:
		s.mu.Unlock()
		return ErrSelectionConfirmed
	}
	s.state = SelectionPending
	s.mu.Unlock()

	if err := s.bc.Emit(realtime.IntentSelectDomain, selectionRequest{TeamID: teamID, DomainID: domainID}); err != nil {
		// Заявка не ушла — возвращаемся в исходное состояние.
		s.mu.Lock()
		s.state = SelectionIdle
		s.mu.Unlock()
		return err
	}

	return nil
}

func (s *Selection) onResult(payload json.RawMessage) {
	// Отказ приходит строкой-маркером, подтверждение — объектом команды.
	var marker string
	if err := json.Unmarshal(payload, &marker); err == nil {
		if marker == realtime.SelectionRejectedFull {
			s.reject()
		}
		return
	}

	var failure struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(payload, &failure); err == nil && failure.Error != "" {
		s.logger.Warn("domain selection rejected", "reason", failure.Error)
		s.reject()
		return
	}

	var team models.Team
	if err := json.Unmarshal(payload, &team); err != nil {
		s.logger.Error("malformed selection confirmation", "error", err)
		return
	}

	s.mu.Lock()
	if s.state != SelectionPending {
		// Ответ после teardown или чужое подтверждение — игнорируем.
		s.mu.Unlock()
		return
	}
	s.state = SelectionConfirmed
	s.mu.Unlock()

	if s.OnConfirmed != nil {
		s.OnConfirmed(&team)
	}
}

func (s *Selection) reject() {
	s.mu.Lock()
	if s.state != SelectionPending {
		s.mu.Unlock()
		return
	}
	s.state = SelectionIdle
	s.mu.Unlock()

	if s.OnRejected != nil {
		s.OnRejected()
	}
}

// State возвращает текущее состояние заявки.
func (s *Selection) State() SelectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close отписывает объект от канала.
func (s *Selection) Close() {
	if s.unsub != nil {
		s.unsub()
		s.unsub = nil
	}
}
