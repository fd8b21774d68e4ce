package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Harsha29-kns/scorecraft-backend/models"
	"github.com/redis/go-redis/v9"
)

const presentationKey = "content:ppt"

// PresentationRepository хранит текущий шаблон презентации в Redis,
// чтобы поздно подключившиеся клиенты получили его в server:loadData.
type PresentationRepository interface {
	Set(ctx context.Context, tpl *models.PresentationTemplate) error
	// Get возвращает nil без ошибки, если шаблон ещё не рассылался.
	Get(ctx context.Context) (*models.PresentationTemplate, error)
}

type redisPresentationRepository struct {
	client *redis.Client
}

func NewRedisPresentationRepository(client *redis.Client) PresentationRepository {
	return &redisPresentationRepository{client: client}
}

func (r *redisPresentationRepository) Set(ctx context.Context, tpl *models.PresentationTemplate) error {
	data, err := json.Marshal(tpl)
	if err != nil {
		return fmt.Errorf("failed to marshal presentation template: %w", err)
	}
	if err := r.client.Set(ctx, presentationKey, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store presentation template: %w", err)
	}
	return nil
}

func (r *redisPresentationRepository) Get(ctx context.Context) (*models.PresentationTemplate, error) {
	data, err := r.client.Get(ctx, presentationKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load presentation template: %w", err)
	}
	tpl := &models.PresentationTemplate{}
	if err := json.Unmarshal(data, tpl); err != nil {
		return nil, fmt.Errorf("failed to unmarshal presentation template: %w", err)
	}
	return tpl, nil
}
