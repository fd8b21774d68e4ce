package models

import "time"

// Team представляет зарегистрированную команду хакатона.
type Team struct {
	ID        int     `json:"id" db:"id"`
	Name      string  `json:"name" db:"name"`
	LeadName  string  `json:"lead_name" db:"lead_name"`
	LeadEmail string  `json:"lead_email" db:"lead_email"`
	Passcode  string  `json:"-" db:"passcode"`
	DomainID  *int    `json:"domain_id,omitempty" db:"domain_id"`
	Sector    *string `json:"sector,omitempty" db:"sector"`

	// Постановка задачи принимается от команды один раз и больше не меняется.
	ProblemStatement *string `json:"problem_statement,omitempty" db:"problem_statement"`

	// Payment proof submitted at registration time.
	PaymentUPI      string  `json:"payment_upi" db:"payment_upi"`
	PaymentTxnID    string  `json:"payment_txn_id" db:"payment_txn_id"`
	PaymentProofKey *string `json:"-" db:"payment_proof_key"`
	PaymentProofURL *string `json:"payment_proof_url,omitempty" db:"-"`
	Verified        bool    `json:"verified" db:"verified"`

	PhotoKey *string `json:"-" db:"photo_key"`
	PhotoURL *string `json:"photo_url,omitempty" db:"-"`

	GameScore int       `json:"game_score" db:"game_score"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Связанные сущности (подгружаются отдельно).
	Domain  *Domain      `json:"domain,omitempty" db:"-"`
	Members []TeamMember `json:"members,omitempty" db:"-"`
	Issues  []Issue      `json:"issues,omitempty" db:"-"`
	Reviews []Review     `json:"reviews,omitempty" db:"-"`
}

// TeamMember — участник команды. Лидер хранится той же строкой с is_lead = true.
type TeamMember struct {
	ID                 int     `json:"id" db:"id"`
	TeamID             int     `json:"team_id" db:"team_id"`
	Name               string  `json:"name" db:"name"`
	RegistrationNumber string  `json:"registration_number" db:"registration_number"`
	HostelBlock        string  `json:"hostel_block" db:"hostel_block"`
	Room               *string `json:"room,omitempty" db:"room"`
	IsLead             bool    `json:"is_lead" db:"is_lead"`

	Attendance []Attendance `json:"attendance,omitempty" db:"-"`
}

// DayScholar — значение hostel_block для участников, живущих вне кампуса.
// Для них номер комнаты не требуется.
const DayScholar = "Day's Scholar"

// MaxProblemStatementLen — лимит длины постановки задачи в символах.
const MaxProblemStatementLen = 200
