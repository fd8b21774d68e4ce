package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Harsha29-kns/scorecraft-backend/models"
	"github.com/lib/pq"
)

var ErrReviewTeamInvalid = errors.New("review team conflict or invalid")

type ReviewRepository interface {
	// Upsert сохраняет оценки раунда; повторная отправка того же раунда
	// перезаписывает предыдущие оценки.
	Upsert(ctx context.Context, review *models.Review) error
}

type postgresReviewRepository struct {
	db *sql.DB
}

func NewPostgresReviewRepository(db *sql.DB) ReviewRepository {
	return &postgresReviewRepository{db: db}
}

func (r *postgresReviewRepository) Upsert(ctx context.Context, review *models.Review) error {
	query := `
		INSERT INTO reviews (team_id, round, implementation, innovation, user_experience, impact, presentation, completion, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (team_id, round)
		DO UPDATE SET
			implementation = EXCLUDED.implementation,
			innovation = EXCLUDED.innovation,
			user_experience = EXCLUDED.user_experience,
			impact = EXCLUDED.impact,
			presentation = EXCLUDED.presentation,
			completion = EXCLUDED.completion,
			total = EXCLUDED.total
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		review.TeamID,
		review.Round,
		review.Implementation,
		review.Innovation,
		review.UserExperience,
		review.Impact,
		review.Presentation,
		review.Completion,
		review.Total,
	).Scan(&review.ID, &review.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrReviewTeamInvalid
		}
		return err
	}
	return nil
}
