package repositories

import (
	"context"
	"database/sql"

	"github.com/Harsha29-kns/scorecraft-backend/models"
)

type ReminderRepository interface {
	Create(ctx context.Context, reminder *models.Reminder) error
	// ListRecent возвращает последние limit объявлений, новые первыми.
	ListRecent(ctx context.Context, limit int) ([]*models.Reminder, error)
}

type postgresReminderRepository struct {
	db *sql.DB
}

func NewPostgresReminderRepository(db *sql.DB) ReminderRepository {
	return &postgresReminderRepository{db: db}
}

func (r *postgresReminderRepository) Create(ctx context.Context, reminder *models.Reminder) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO reminders (message)
		VALUES ($1)
		RETURNING id, created_at`, reminder.Message,
	).Scan(&reminder.ID, &reminder.CreatedAt)
}

func (r *postgresReminderRepository) ListRecent(ctx context.Context, limit int) ([]*models.Reminder, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, message, created_at
		FROM reminders
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reminders := make([]*models.Reminder, 0)
	for rows.Next() {
		reminder := &models.Reminder{}
		if err := rows.Scan(&reminder.ID, &reminder.Message, &reminder.CreatedAt); err != nil {
			return nil, err
		}
		reminders = append(reminders, reminder)
	}
	return reminders, rows.Err()
}
