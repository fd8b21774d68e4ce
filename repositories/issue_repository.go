package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Harsha29-kns/scorecraft-backend/models"
	"github.com/lib/pq"
)

var (
	ErrIssueNotFound    = errors.New("issue not found")
	ErrIssueTeamInvalid = errors.New("issue team conflict or invalid")
)

type IssueRepository interface {
	Create(ctx context.Context, issue *models.Issue) error
	ListOpen(ctx context.Context) ([]*models.Issue, error)
	Resolve(ctx context.Context, id int) error
}

type postgresIssueRepository struct {
	db *sql.DB
}

func NewPostgresIssueRepository(db *sql.DB) IssueRepository {
	return &postgresIssueRepository{db: db}
}

func (r *postgresIssueRepository) Create(ctx context.Context, issue *models.Issue) error {
	query := `
		INSERT INTO issues (team_id, text)
		VALUES ($1, $2)
		RETURNING id, resolved, created_at`

	err := r.db.QueryRowContext(ctx, query, issue.TeamID, issue.Text).
		Scan(&issue.ID, &issue.Resolved, &issue.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrIssueTeamInvalid
		}
		return err
	}
	return nil
}

func (r *postgresIssueRepository) ListOpen(ctx context.Context) ([]*models.Issue, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, team_id, text, resolved, created_at, resolved_at
		FROM issues
		WHERE resolved = FALSE
		ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	issues := make([]*models.Issue, 0)
	for rows.Next() {
		issue := &models.Issue{}
		if err := rows.Scan(&issue.ID, &issue.TeamID, &issue.Text, &issue.Resolved, &issue.CreatedAt, &issue.ResolvedAt); err != nil {
			return nil, err
		}
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}

func (r *postgresIssueRepository) Resolve(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE issues
		SET resolved = TRUE, resolved_at = NOW()
		WHERE id = $1 AND resolved = FALSE`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrIssueNotFound)
}
