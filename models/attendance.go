package models

import "time"

// AttendanceSessions — число перекличек за время хакатона.
const AttendanceSessions = 4

// Attendance — отметка участника на одной из сессий.
type Attendance struct {
	ID       int       `json:"id" db:"id"`
	MemberID int       `json:"member_id" db:"member_id"`
	Session  int       `json:"session" db:"session"`
	Present  bool      `json:"present" db:"present"`
	MarkedAt time.Time `json:"marked_at" db:"marked_at"`
}
