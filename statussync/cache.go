package statussync

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/Harsha29-kns/scorecraft-backend/models"
	"github.com/Harsha29-kns/scorecraft-backend/realtime"
)

// Flags — производные флаги для отрисовки. Чистая производная от
// снапшота и часов, нигде не хранится.
type Flags struct {
	IsOpen        bool
	PercentFull   float64
	TimeRemaining time.Duration
}

// DeriveFlags вычисляет флаги из снапшота. Не мутирует status.
// IsClosed сервера авторитетен: локальный пересчёт count/limit служит
// только подстраховкой и никогда не открывает то, что сервер закрыл.
func DeriveFlags(status *models.RegistrationStatus, now time.Time) Flags {
	var flags Flags
	if status == nil {
		return flags
	}

	if status.OpenTime != nil && now.Before(*status.OpenTime) {
		flags.TimeRemaining = status.OpenTime.Sub(now)
	}

	flags.IsOpen = !status.IsClosed &&
		status.Count < status.Limit &&
		flags.TimeRemaining == 0

	if status.Limit > 0 {
		flags.PercentFull = float64(status.Count) / float64(status.Limit) * 100
		if flags.PercentFull > 100 {
			flags.PercentFull = 100
		}
	}

	return flags
}

// Cache — локальная копия последнего снапшота регистрации и списка
// доменов. Снапшот заменяется целиком, частичных слияний нет.
// Пока снапшот не получен, состояние явно «неизвестно» — кэш никогда
// не подставляет «открыто» или «закрыто» по умолчанию.
type Cache struct {
	bc     Broadcaster
	logger *slog.Logger

	mu      sync.Mutex
	status  *models.RegistrationStatus
	domains []models.Domain
	unsubs  []func()
}

// NewCache подписывается на события снапшотов. Подписка выполняется
// один раз, сколько бы раз потом ни вызывался RequestSnapshot.
func NewCache(bc Broadcaster, logger *slog.Logger) *Cache {
	c := &Cache{bc: bc, logger: logger}
	c.unsubs = append(c.unsubs,
		bc.Subscribe(realtime.EventRegistrationStatus, c.onStatus),
		bc.Subscribe(realtime.EventDomainData, c.onDomains),
	)
	return c
}

// RequestSnapshot запрашивает свежий снапшот. Идемпотентен: безопасно
// вызывать при каждом входе во view, результат придёт броадкастом.
func (c *Cache) RequestSnapshot() {
	if err := c.bc.Emit(realtime.IntentCheck, nil); err != nil {
		c.logger.Error("failed to request registration snapshot", "error", err)
	}
	if err := c.bc.Emit(realtime.IntentDomainData, nil); err != nil {
		c.logger.Error("failed to request domain snapshot", "error", err)
	}
}

func (c *Cache) onStatus(payload json.RawMessage) {
	var status models.RegistrationStatus
	if err := json.Unmarshal(payload, &status); err != nil {
		c.logger.Error("malformed registration snapshot", "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Снапшот со старой версией пришёл не по порядку — отбрасываем,
	// последняя версия уже применена.
	if c.status != nil && status.Version < c.status.Version {
		c.logger.Warn("stale registration snapshot dropped",
			"got", status.Version, "have", c.status.Version)
		return
	}
	c.status = &status
}

func (c *Cache) onDomains(payload json.RawMessage) {
	var domains []models.Domain
	if err := json.Unmarshal(payload, &domains); err != nil {
		c.logger.Error("malformed domain snapshot", "error", err)
		return
	}

	c.mu.Lock()
	c.domains = domains
	c.mu.Unlock()
}

// Status возвращает последний снапшот; ok == false, пока не получен
// ни один снапшот (состояние «неизвестно»).
func (c *Cache) Status() (status *models.RegistrationStatus, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == nil {
		return nil, false
	}
	snapshot := *c.status
	return &snapshot, true
}

// Domains возвращает последний список доменов (копию).
func (c *Cache) Domains() []models.Domain {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Domain, len(c.domains))
	copy(out, c.domains)
	return out
}

// Flags — производные флаги от текущего снапшота; ok == false, пока
// состояние неизвестно.
func (c *Cache) Flags(now time.Time) (Flags, bool) {
	status, ok := c.Status()
	if !ok {
		return Flags{}, false
	}
	return DeriveFlags(status, now), true
}

// Close отписывает кэш от канала. После Close приходящие сообщения
// кэша не касаются.
func (c *Cache) Close() {
	for _, unsub := range c.unsubs {
		unsub()
	}
	c.unsubs = nil
}
