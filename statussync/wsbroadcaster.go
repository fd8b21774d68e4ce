package statussync

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const emitWriteWait = 10 * time.Second

// envelope повторяет формат сообщений хаба: тип события плюс полезная
// нагрузка.
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type subscriber struct {
	id      int
	handler func(payload json.RawMessage)
}

// WSBroadcaster — реализация Broadcaster поверх одного websocket
// соединения. Создаётся один раз при старте приложения.
type WSBroadcaster struct {
	conn   *websocket.Conn
	logger *slog.Logger

	writeMu sync.Mutex // gorilla допускает одного писателя

	mu     sync.RWMutex
	nextID int
	subs   map[string][]subscriber

	done chan struct{}
	once sync.Once
}

// Dial подключается к источнику состояния и запускает цикл чтения.
func Dial(ctx context.Context, url string, logger *slog.Logger) (*WSBroadcaster, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	b := &WSBroadcaster{
		conn:   conn,
		logger: logger,
		subs:   make(map[string][]subscriber),
		done:   make(chan struct{}),
	}
	go b.readLoop()
	return b, nil
}

func (b *WSBroadcaster) readLoop() {
	for {
		_, raw, err := b.conn.ReadMessage()
		if err != nil {
			select {
			case <-b.done:
				// Ожидаемое завершение после Disconnect.
			default:
				b.logger.Error("broadcast channel read failed", "error", err)
			}
			return
		}

		var msg envelope
		if err := json.Unmarshal(raw, &msg); err != nil {
			b.logger.Error("malformed broadcast message", "error", err)
			continue
		}

		b.mu.RLock()
		handlers := make([]func(json.RawMessage), 0, len(b.subs[msg.Type]))
		for _, sub := range b.subs[msg.Type] {
			handlers = append(handlers, sub.handler)
		}
		b.mu.RUnlock()

		// Обработчики вызываются вне блокировки: из них можно
		// подписываться и отписываться.
		for _, handler := range handlers {
			handler(msg.Payload)
		}
	}
}

func (b *WSBroadcaster) Subscribe(event string, handler func(payload json.RawMessage)) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[event] = append(b.subs[event], subscriber{id: id, handler: handler})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subs[event]
		for i, sub := range subs {
			if sub.id == id {
				b.subs[event] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		if len(b.subs[event]) == 0 {
			delete(b.subs, event)
		}
	}
}

func (b *WSBroadcaster) Emit(event string, payload interface{}) error {
	raw, err := json.Marshal(struct {
		Type    string      `json:"type"`
		Payload interface{} `json:"payload,omitempty"`
	}{Type: event, Payload: payload})
	if err != nil {
		return err
	}

	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	b.conn.SetWriteDeadline(time.Now().Add(emitWriteWait))
	return b.conn.WriteMessage(websocket.TextMessage, raw)
}

func (b *WSBroadcaster) Disconnect() error {
	var err error
	b.once.Do(func() {
		close(b.done)

		b.writeMu.Lock()
		b.conn.SetWriteDeadline(time.Now().Add(emitWriteWait))
		b.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		b.writeMu.Unlock()

		err = b.conn.Close()
	})
	return err
}
