package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Harsha29-kns/scorecraft-backend/models"
	"github.com/lib/pq"
)

var (
	ErrTeamNotFound      = errors.New("team not found")
	ErrTeamNameConflict  = errors.New("team name conflict")
	ErrTeamDomainInvalid = errors.New("team domain conflict or invalid")
	// ErrTeamDomainAlreadySet возвращается условным присвоением домена,
	// когда параллельная заявка той же команды успела раньше.
	ErrTeamDomainAlreadySet = errors.New("team domain already set")
	// ErrTeamStatementAlreadySet — постановка задачи принимается один раз.
	ErrTeamStatementAlreadySet = errors.New("team problem statement already set")
)

type TeamRepository interface {
	// Create создает команду вместе со всеми участниками одной транзакцией
	// (через переданный exec). Заполняет ID и CreatedAt команды и ID участников.
	Create(ctx context.Context, exec SQLExecutor, team *models.Team) error

	GetByID(ctx context.Context, id int) (*models.Team, error)
	GetByPasscode(ctx context.Context, passcode string) (*models.Team, error)
	// GetWithDetails возвращает команду с участниками, посещаемостью,
	// обращениями и оценками.
	GetWithDetails(ctx context.Context, id int) (*models.Team, error)
	List(ctx context.Context) ([]*models.Team, error)

	// Count возвращает число зарегистрированных команд. Принимает exec,
	// чтобы сервис мог читать счётчик внутри транзакции регистрации.
	Count(ctx context.Context, exec SQLExecutor) (int, error)

	SetDomain(ctx context.Context, exec SQLExecutor, teamID, domainID int) error
	// SetDomainIfUnset присваивает домен, только если он ещё не выбран.
	// Условие в самом UPDATE: две конкурентные заявки одной команды не
	// могут пройти обе, проигравшая получает ErrTeamDomainAlreadySet.
	SetDomainIfUnset(ctx context.Context, exec SQLExecutor, teamID, domainID int) error
	// SetProblemStatement сохраняет постановку задачи команды. Повторная
	// отправка отклоняется с ErrTeamStatementAlreadySet.
	SetProblemStatement(ctx context.Context, teamID int, text string) error
	SetSector(ctx context.Context, teamID int, sector string) error
	SetVerified(ctx context.Context, teamID int, verified bool) error
	SetPhotoKey(ctx context.Context, teamID int, key string) error
	SetGameScore(ctx context.Context, teamID int, score int) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

const teamColumns = `id, name, lead_name, lead_email, passcode, domain_id, sector, problem_statement,
	payment_upi, payment_txn_id, payment_proof_key, verified, photo_key, game_score, created_at`

func scanTeam(scanner interface{ Scan(...any) error }) (*models.Team, error) {
	team := &models.Team{}
	err := scanner.Scan(
		&team.ID,
		&team.Name,
		&team.LeadName,
		&team.LeadEmail,
		&team.Passcode,
		&team.DomainID,
		&team.Sector,
		&team.ProblemStatement,
		&team.PaymentUPI,
		&team.PaymentTxnID,
		&team.PaymentProofKey,
		&team.Verified,
		&team.PhotoKey,
		&team.GameScore,
		&team.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return team, nil
}

func (r *postgresTeamRepository) Create(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	query := `
		INSERT INTO teams (name, lead_name, lead_email, passcode, payment_upi, payment_txn_id, payment_proof_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		team.Name,
		team.LeadName,
		team.LeadEmail,
		team.Passcode,
		team.PaymentUPI,
		team.PaymentTxnID,
		team.PaymentProofKey,
	).Scan(&team.ID, &team.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "teams_name_key" {
				return ErrTeamNameConflict
			}
		}
		return err
	}

	memberQuery := `
		INSERT INTO team_members (team_id, name, registration_number, hostel_block, room, is_lead)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	for i := range team.Members {
		m := &team.Members[i]
		m.TeamID = team.ID
		if err := exec.QueryRowContext(ctx, memberQuery,
			m.TeamID, m.Name, m.RegistrationNumber, m.HostelBlock, m.Room, m.IsLead,
		).Scan(&m.ID); err != nil {
			return fmt.Errorf("failed to insert team member %q: %w", m.Name, err)
		}
	}

	return nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`

	team, err := scanTeam(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return team, nil
}

func (r *postgresTeamRepository) GetByPasscode(ctx context.Context, passcode string) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE passcode = $1`

	team, err := scanTeam(r.db.QueryRowContext(ctx, query, passcode))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return team, nil
}

func (r *postgresTeamRepository) GetWithDetails(ctx context.Context, id int) (*models.Team, error) {
	team, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if team.DomainID != nil {
		domain := &models.Domain{}
		err = r.db.QueryRowContext(ctx,
			`SELECT id, name, slots, description FROM domains WHERE id = $1`, *team.DomainID,
		).Scan(&domain.ID, &domain.Name, &domain.Slots, &domain.Description)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		if err == nil {
			team.Domain = domain
		}
	}

	members, err := r.listMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	team.Members = members

	issues, err := r.listIssues(ctx, id)
	if err != nil {
		return nil, err
	}
	team.Issues = issues

	reviews, err := r.listReviews(ctx, id)
	if err != nil {
		return nil, err
	}
	team.Reviews = reviews

	return team, nil
}

func (r *postgresTeamRepository) listMembers(ctx context.Context, teamID int) ([]models.TeamMember, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, team_id, name, registration_number, hostel_block, room, is_lead
		FROM team_members
		WHERE team_id = $1
		ORDER BY is_lead DESC, id`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]models.TeamMember, 0)
	memberIndex := make(map[int]int)
	for rows.Next() {
		var m models.TeamMember
		if err := rows.Scan(&m.ID, &m.TeamID, &m.Name, &m.RegistrationNumber, &m.HostelBlock, &m.Room, &m.IsLead); err != nil {
			return nil, err
		}
		memberIndex[m.ID] = len(members)
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	attRows, err := r.db.QueryContext(ctx, `
		SELECT a.id, a.member_id, a.session, a.present, a.marked_at
		FROM attendance a
		JOIN team_members m ON m.id = a.member_id
		WHERE m.team_id = $1
		ORDER BY a.session`, teamID)
	if err != nil {
		return nil, err
	}
	defer attRows.Close()

	for attRows.Next() {
		var a models.Attendance
		if err := attRows.Scan(&a.ID, &a.MemberID, &a.Session, &a.Present, &a.MarkedAt); err != nil {
			return nil, err
		}
		if idx, ok := memberIndex[a.MemberID]; ok {
			members[idx].Attendance = append(members[idx].Attendance, a)
		}
	}
	if err := attRows.Err(); err != nil {
		return nil, err
	}

	return members, nil
}

func (r *postgresTeamRepository) listIssues(ctx context.Context, teamID int) ([]models.Issue, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, team_id, text, resolved, created_at, resolved_at
		FROM issues
		WHERE team_id = $1
		ORDER BY created_at DESC`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	issues := make([]models.Issue, 0)
	for rows.Next() {
		var is models.Issue
		if err := rows.Scan(&is.ID, &is.TeamID, &is.Text, &is.Resolved, &is.CreatedAt, &is.ResolvedAt); err != nil {
			return nil, err
		}
		issues = append(issues, is)
	}
	return issues, rows.Err()
}

func (r *postgresTeamRepository) listReviews(ctx context.Context, teamID int) ([]models.Review, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, team_id, round, implementation, innovation, user_experience, impact, presentation, completion, total, created_at
		FROM reviews
		WHERE team_id = $1
		ORDER BY round`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := make([]models.Review, 0)
	for rows.Next() {
		var rv models.Review
		if err := rows.Scan(&rv.ID, &rv.TeamID, &rv.Round, &rv.Implementation, &rv.Innovation,
			&rv.UserExperience, &rv.Impact, &rv.Presentation, &rv.Completion, &rv.Total, &rv.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}

func (r *postgresTeamRepository) List(ctx context.Context) ([]*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, team := range teams {
		members, err := r.listMembers(ctx, team.ID)
		if err != nil {
			return nil, err
		}
		team.Members = members
	}

	return teams, nil
}

func (r *postgresTeamRepository) Count(ctx context.Context, exec SQLExecutor) (int, error) {
	if exec == nil {
		exec = r.db
	}
	var count int
	if err := exec.QueryRowContext(ctx, `SELECT COUNT(*) FROM teams`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count teams: %w", err)
	}
	return count, nil
}

func (r *postgresTeamRepository) SetDomain(ctx context.Context, exec SQLExecutor, teamID, domainID int) error {
	if exec == nil {
		exec = r.db
	}
	result, err := exec.ExecContext(ctx, `UPDATE teams SET domain_id = $1 WHERE id = $2`, domainID, teamID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrTeamDomainInvalid
		}
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) SetDomainIfUnset(ctx context.Context, exec SQLExecutor, teamID, domainID int) error {
	if exec == nil {
		exec = r.db
	}
	result, err := exec.ExecContext(ctx,
		`UPDATE teams SET domain_id = $1 WHERE id = $2 AND domain_id IS NULL`, domainID, teamID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrTeamDomainInvalid
		}
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		// Либо команды нет, либо домен уже присвоен конкурентной заявкой.
		var exists bool
		if err := exec.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM teams WHERE id = $1)`, teamID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrTeamNotFound
		}
		return ErrTeamDomainAlreadySet
	}
	return nil
}

func (r *postgresTeamRepository) SetProblemStatement(ctx context.Context, teamID int, text string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE teams SET problem_statement = $1 WHERE id = $2 AND problem_statement IS NULL`, text, teamID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM teams WHERE id = $1)`, teamID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrTeamNotFound
		}
		return ErrTeamStatementAlreadySet
	}
	return nil
}

func (r *postgresTeamRepository) SetSector(ctx context.Context, teamID int, sector string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE teams SET sector = $1 WHERE id = $2`, sector, teamID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) SetVerified(ctx context.Context, teamID int, verified bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE teams SET verified = $1 WHERE id = $2`, verified, teamID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) SetPhotoKey(ctx context.Context, teamID int, key string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE teams SET photo_key = $1 WHERE id = $2`, key, teamID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) SetGameScore(ctx context.Context, teamID int, score int) error {
	result, err := r.db.ExecContext(ctx, `UPDATE teams SET game_score = $1 WHERE id = $2`, score, teamID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}
