// Package statussync — клиентская сторона протокола синхронизации
// статуса регистрации и выбора доменов. Держит локальный кэш последнего
// снапшота, ведёт обратный отсчёт до открытия окна и проводит заявку
// команды на домен через подтверждение сервера.
package statussync

import "encoding/json"

// Broadcaster — единственная точка контакта с каналом вещания.
// Одно соединение создаётся при старте приложения и передаётся по
// ссылке всем потребителям; компоненты не открывают свои соединения.
type Broadcaster interface {
	// Subscribe регистрирует обработчик события и возвращает функцию
	// отписки. Обработчики одного события вызываются в порядке подписки.
	Subscribe(event string, handler func(payload json.RawMessage)) (unsubscribe func())

	// Emit отправляет интент источнику состояния. Fire-and-forget:
	// результат приходит броадкастом, не возвращаемым значением.
	Emit(event string, payload interface{}) error

	Disconnect() error
}
