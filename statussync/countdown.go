package statussync

import (
	"fmt"
	"sync"
	"time"
)

// Remaining — разбивка оставшегося времени для отображения.
// Всегда усечение вниз: «00:00:00:00» не показывается раньше времени.
type Remaining struct {
	Days    int
	Hours   int
	Minutes int
	Seconds int
}

func (r Remaining) String() string {
	return fmt.Sprintf("%02d:%02d:%02d:%02d", r.Days, r.Hours, r.Minutes, r.Seconds)
}

// Tick вычисляет остаток до openTime на момент now. elapsed == true,
// когда момент уже наступил; в этом случае остаток нулевой.
func Tick(openTime, now time.Time) (Remaining, bool) {
	diff := openTime.Sub(now)
	if diff <= 0 {
		return Remaining{}, true
	}

	total := int(diff / time.Second)
	return Remaining{
		Days:    total / 86400,
		Hours:   total % 86400 / 3600,
		Minutes: total % 3600 / 60,
		Seconds: total % 60,
	}, false
}

// Countdown ведёт посекундный отсчёт до openTime. При пересечении нуля
// ровно один раз вызывает onElapsed — обычно это RequestSnapshot кэша:
// открытие окна подтверждает сервер, а не локальные часы.
type Countdown struct {
	openTime  time.Time
	onTick    func(Remaining)
	onElapsed func()
	now       func() time.Time

	mu      sync.Mutex
	elapsed bool
	done    chan struct{}
	once    sync.Once
}

// NewCountdown создаёт отсчёт. onTick может быть nil, если нужен только
// сигнал истечения.
func NewCountdown(openTime time.Time, onTick func(Remaining), onElapsed func()) *Countdown {
	return &Countdown{
		openTime:  openTime,
		onTick:    onTick,
		onElapsed: onElapsed,
		now:       time.Now,
		done:      make(chan struct{}),
	}
}

// Start запускает посекундный тикер. Отсчёт обязан быть остановлен
// через Stop при уходе из view, иначе горутина и тикер утекут.
func (c *Countdown) Start() {
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		c.step() // первый кадр сразу, не через секунду
		for {
			select {
			case <-ticker.C:
				c.step()
			case <-c.done:
				return
			}
		}
	}()
}

func (c *Countdown) step() {
	remaining, elapsed := Tick(c.openTime, c.now())

	if c.onTick != nil {
		c.onTick(remaining)
	}

	if !elapsed {
		return
	}

	c.mu.Lock()
	fire := !c.elapsed
	c.elapsed = true
	c.mu.Unlock()

	if fire && c.onElapsed != nil {
		c.onElapsed()
	}
}

// Stop останавливает отсчёт. Повторные вызовы безопасны.
func (c *Countdown) Stop() {
	c.once.Do(func() { close(c.done) })
}
