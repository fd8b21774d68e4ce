package models

import "time"

// Review — оценки команды за один раунд ревью. Максимумы по критериям
// фиксированы регламентом мероприятия, см. константы Max* ниже.
type Review struct {
	ID             int       `json:"id" db:"id"`
	TeamID         int       `json:"team_id" db:"team_id"`
	Round          int       `json:"round" db:"round"`
	Implementation int       `json:"implementation" db:"implementation"`
	Innovation     int       `json:"innovation" db:"innovation"`
	UserExperience int       `json:"user_experience" db:"user_experience"`
	Impact         int       `json:"impact" db:"impact"`
	Presentation   int       `json:"presentation" db:"presentation"`
	Completion     int       `json:"completion" db:"completion"`
	Total          int       `json:"total" db:"total"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// ReviewRounds — количество раундов ревью.
const ReviewRounds = 2

// Максимальные баллы по критериям.
const (
	MaxImplementation = 15
	MaxInnovation     = 10
	MaxUserExperience = 10
	MaxImpact         = 10
	MaxPresentation   = 10
	MaxCompletion     = 5
)
