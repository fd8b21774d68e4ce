package models

// Domain — трек хакатона с ограниченным числом слотов.
// Slots — оставшаяся ёмкость; 0 означает, что трек заполнен.
type Domain struct {
	ID          int    `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Slots       int    `json:"slots" db:"slots"`
	Description string `json:"description" db:"description"`
}
