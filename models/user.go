package models

import "time"

// UserRole — роль оператора системы.
type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleVolunteer UserRole = "volunteer"
)

// User — учётная запись оператора (администратор или волонтёр,
// отмечающий посещаемость и оценки).
type User struct {
	ID           int       `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         UserRole  `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
