package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Harsha29-kns/scorecraft-backend/models"
)

var ErrSettingsNotFound = errors.New("registration settings not found")

// SettingsRepository хранит единственную строку настроек окна регистрации.
// Каждая мутация инкрементирует version, чтобы клиенты могли отбрасывать
// устаревшие снапшоты.
type SettingsRepository interface {
	Get(ctx context.Context, exec SQLExecutor) (*models.RegistrationSettings, error)
	SetLimit(ctx context.Context, limit int) (*models.RegistrationSettings, error)
	SetOpenTime(ctx context.Context, openTime *time.Time) (*models.RegistrationSettings, error)
	SetForceClosed(ctx context.Context, closed bool) (*models.RegistrationSettings, error)
	SetDomainOpenTime(ctx context.Context, openTime *time.Time) (*models.RegistrationSettings, error)
	SetDomainsClosed(ctx context.Context, closed bool) (*models.RegistrationSettings, error)
	// BumpVersion инкрементирует версию без изменения настроек
	// (вызывается в транзакции регистрации, когда меняется count).
	BumpVersion(ctx context.Context, exec SQLExecutor) (*models.RegistrationSettings, error)
}

type postgresSettingsRepository struct {
	db *sql.DB
}

func NewPostgresSettingsRepository(db *sql.DB) SettingsRepository {
	return &postgresSettingsRepository{db: db}
}

const settingsColumns = `reg_limit, force_closed, open_time, domain_open_time, domains_closed, version`

func (r *postgresSettingsRepository) scan(row *sql.Row) (*models.RegistrationSettings, error) {
	s := &models.RegistrationSettings{}
	err := row.Scan(&s.Limit, &s.ForceClosed, &s.OpenTime, &s.DomainOpenTime, &s.DomainsClosed, &s.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSettingsNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *postgresSettingsRepository) Get(ctx context.Context, exec SQLExecutor) (*models.RegistrationSettings, error) {
	if exec == nil {
		exec = r.db
	}
	return r.scan(exec.QueryRowContext(ctx, `SELECT `+settingsColumns+` FROM registration_settings WHERE id = 1`))
}

func (r *postgresSettingsRepository) SetLimit(ctx context.Context, limit int) (*models.RegistrationSettings, error) {
	return r.scan(r.db.QueryRowContext(ctx, `
		UPDATE registration_settings
		SET reg_limit = $1, version = version + 1
		WHERE id = 1
		RETURNING `+settingsColumns, limit))
}

func (r *postgresSettingsRepository) SetOpenTime(ctx context.Context, openTime *time.Time) (*models.RegistrationSettings, error) {
	return r.scan(r.db.QueryRowContext(ctx, `
		UPDATE registration_settings
		SET open_time = $1, version = version + 1
		WHERE id = 1
		RETURNING `+settingsColumns, openTime))
}

func (r *postgresSettingsRepository) SetForceClosed(ctx context.Context, closed bool) (*models.RegistrationSettings, error) {
	return r.scan(r.db.QueryRowContext(ctx, `
		UPDATE registration_settings
		SET force_closed = $1, version = version + 1
		WHERE id = 1
		RETURNING `+settingsColumns, closed))
}

func (r *postgresSettingsRepository) SetDomainOpenTime(ctx context.Context, openTime *time.Time) (*models.RegistrationSettings, error) {
	return r.scan(r.db.QueryRowContext(ctx, `
		UPDATE registration_settings
		SET domain_open_time = $1, domains_closed = FALSE, version = version + 1
		WHERE id = 1
		RETURNING `+settingsColumns, openTime))
}

func (r *postgresSettingsRepository) SetDomainsClosed(ctx context.Context, closed bool) (*models.RegistrationSettings, error) {
	return r.scan(r.db.QueryRowContext(ctx, `
		UPDATE registration_settings
		SET domains_closed = $1, version = version + 1
		WHERE id = 1
		RETURNING `+settingsColumns, closed))
}

func (r *postgresSettingsRepository) BumpVersion(ctx context.Context, exec SQLExecutor) (*models.RegistrationSettings, error) {
	if exec == nil {
		exec = r.db
	}
	return r.scan(exec.QueryRowContext(ctx, `
		UPDATE registration_settings
		SET version = version + 1
		WHERE id = 1
		RETURNING `+settingsColumns))
}
