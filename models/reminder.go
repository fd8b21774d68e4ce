package models

import "time"

// Reminder — объявление администратора. Рассылается всем подключённым
// клиентам и сохраняется, чтобы поздно подключившиеся получили историю.
type Reminder struct {
	ID        int       `json:"id" db:"id"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"time" db:"created_at"`
}
