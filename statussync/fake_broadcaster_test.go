package statussync

import (
	"encoding/json"
	"sync"
)

// fakeBroadcaster реализует Broadcaster в памяти: подписки хранятся
// локально, push разыгрывает входящий броадкаст.
type fakeBroadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]func(json.RawMessage)

	// emitted — журнал отправленных интентов в порядке отправки.
	emitted []fakeEmit
	// onEmit, если задан, играет роль источника состояния: получает
	// каждый интент и может тут же ответить через push.
	onEmit func(event string, payload interface{})
}

type fakeEmit struct {
	event   string
	payload interface{}
}

func newFakeBroadcaster() *fakeBroadcaster {
	return &fakeBroadcaster{subs: make(map[string]map[int]func(json.RawMessage))}
}

func (f *fakeBroadcaster) Subscribe(event string, handler func(payload json.RawMessage)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := f.nextID
	if f.subs[event] == nil {
		f.subs[event] = make(map[int]func(json.RawMessage))
	}
	f.subs[event][id] = handler

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs[event], id)
	}
}

func (f *fakeBroadcaster) Emit(event string, payload interface{}) error {
	f.mu.Lock()
	f.emitted = append(f.emitted, fakeEmit{event: event, payload: payload})
	onEmit := f.onEmit
	f.mu.Unlock()

	if onEmit != nil {
		onEmit(event, payload)
	}
	return nil
}

func (f *fakeBroadcaster) Disconnect() error { return nil }

// push доставляет событие всем подписчикам, как это сделал бы сервер.
func (f *fakeBroadcaster) push(event string, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}

	f.mu.Lock()
	handlers := make([]func(json.RawMessage), 0, len(f.subs[event]))
	for _, h := range f.subs[event] {
		handlers = append(handlers, h)
	}
	f.mu.Unlock()

	for _, h := range handlers {
		h(raw)
	}
}

func (f *fakeBroadcaster) emitCount(event string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.emitted {
		if e.event == event {
			n++
		}
	}
	return n
}

func (f *fakeBroadcaster) subscriberCount(event string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[event])
}
