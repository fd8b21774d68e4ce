package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Harsha29-kns/scorecraft-backend/models"
	"github.com/lib/pq"
)

var (
	ErrDomainNotFound     = errors.New("domain not found")
	ErrDomainNameConflict = errors.New("domain name conflict")
	// ErrDomainFull возвращается, когда попытка занять слот не прошла,
	// потому что свободных слотов не осталось.
	ErrDomainFull = errors.New("domain has no free slots")
)

type DomainRepository interface {
	Create(ctx context.Context, domain *models.Domain) error
	Update(ctx context.Context, domain *models.Domain) error
	Delete(ctx context.Context, id int) error
	GetByID(ctx context.Context, id int) (*models.Domain, error)
	List(ctx context.Context) ([]*models.Domain, error)

	// ClaimSlot атомарно уменьшает число свободных слотов домена.
	// Ровно один из конкурирующих вызовов получает последний слот;
	// остальные получают ErrDomainFull. Принимает exec, чтобы захват
	// участвовал в транзакции выбора домена.
	ClaimSlot(ctx context.Context, exec SQLExecutor, id int) error

	// ReleaseSlot возвращает слот (админ переназначил команду).
	ReleaseSlot(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresDomainRepository struct {
	db *sql.DB
}

func NewPostgresDomainRepository(db *sql.DB) DomainRepository {
	return &postgresDomainRepository{db: db}
}

func (r *postgresDomainRepository) Create(ctx context.Context, domain *models.Domain) error {
	query := `
		INSERT INTO domains (name, slots, description)
		VALUES ($1, $2, $3)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query, domain.Name, domain.Slots, domain.Description).Scan(&domain.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrDomainNameConflict
		}
		return err
	}
	return nil
}

func (r *postgresDomainRepository) Update(ctx context.Context, domain *models.Domain) error {
	query := `UPDATE domains SET name = $1, slots = $2, description = $3 WHERE id = $4`

	result, err := r.db.ExecContext(ctx, query, domain.Name, domain.Slots, domain.Description, domain.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrDomainNameConflict
		}
		return err
	}
	return checkAffectedRows(result, ErrDomainNotFound)
}

func (r *postgresDomainRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM domains WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrDomainNotFound)
}

func (r *postgresDomainRepository) GetByID(ctx context.Context, id int) (*models.Domain, error) {
	domain := &models.Domain{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, slots, description FROM domains WHERE id = $1`, id,
	).Scan(&domain.ID, &domain.Name, &domain.Slots, &domain.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDomainNotFound
		}
		return nil, err
	}
	return domain, nil
}

func (r *postgresDomainRepository) List(ctx context.Context) ([]*models.Domain, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, slots, description FROM domains ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	domains := make([]*models.Domain, 0)
	for rows.Next() {
		domain := &models.Domain{}
		if err := rows.Scan(&domain.ID, &domain.Name, &domain.Slots, &domain.Description); err != nil {
			return nil, err
		}
		domains = append(domains, domain)
	}
	return domains, rows.Err()
}

func (r *postgresDomainRepository) ClaimSlot(ctx context.Context, exec SQLExecutor, id int) error {
	if exec == nil {
		exec = r.db
	}
	// Условие slots > 0 делает захват атомарным: проигравшие конкурентные
	// запросы не затронут ни одной строки.
	result, err := exec.ExecContext(ctx, `UPDATE domains SET slots = slots - 1 WHERE id = $1 AND slots > 0`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		// Либо домена нет, либо слоты закончились.
		var exists bool
		if err := exec.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM domains WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrDomainNotFound
		}
		return ErrDomainFull
	}
	return nil
}

func (r *postgresDomainRepository) ReleaseSlot(ctx context.Context, exec SQLExecutor, id int) error {
	if exec == nil {
		exec = r.db
	}
	result, err := exec.ExecContext(ctx, `UPDATE domains SET slots = slots + 1 WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrDomainNotFound)
}
