package models

import "time"

// Issue — запрос помощи от команды организаторам.
type Issue struct {
	ID         int        `json:"id" db:"id"`
	TeamID     int        `json:"team_id" db:"team_id"`
	Text       string     `json:"text" db:"text"`
	Resolved   bool       `json:"resolved" db:"resolved"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty" db:"resolved_at"`
}
