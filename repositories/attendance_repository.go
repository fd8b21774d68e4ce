package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Harsha29-kns/scorecraft-backend/models"
	"github.com/lib/pq"
)

var ErrAttendanceMemberInvalid = errors.New("attendance member conflict or invalid")

type AttendanceRepository interface {
	// Mark отмечает участника на сессии. Повторная отметка той же сессии
	// перезаписывает предыдущую (upsert).
	Mark(ctx context.Context, att *models.Attendance) error
}

type postgresAttendanceRepository struct {
	db *sql.DB
}

func NewPostgresAttendanceRepository(db *sql.DB) AttendanceRepository {
	return &postgresAttendanceRepository{db: db}
}

func (r *postgresAttendanceRepository) Mark(ctx context.Context, att *models.Attendance) error {
	query := `
		INSERT INTO attendance (member_id, session, present, marked_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (member_id, session)
		DO UPDATE SET present = EXCLUDED.present, marked_at = NOW()
		RETURNING id, marked_at`

	err := r.db.QueryRowContext(ctx, query, att.MemberID, att.Session, att.Present).
		Scan(&att.ID, &att.MarkedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrAttendanceMemberInvalid
		}
		return err
	}
	return nil
}
