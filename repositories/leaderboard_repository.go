package repositories

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const leaderboardKey = "leaderboard:game"

// LeaderboardEntry — строка таблицы лидеров по игровому счёту.
type LeaderboardEntry struct {
	TeamID    int    `json:"team_id"`
	TeamName  string `json:"team_name"`
	GameScore int    `json:"game_score"`
}

// LeaderboardRepository кэширует игровые очки команд в Redis sorted set,
// чтобы топ-N отдавался без обращения к Postgres на каждое обновление.
type LeaderboardRepository interface {
	SetScore(ctx context.Context, teamID int, teamName string, score int) error
	Top(ctx context.Context, n int) ([]LeaderboardEntry, error)
}

type redisLeaderboardRepository struct {
	client *redis.Client
}

func NewRedisLeaderboardRepository(client *redis.Client) LeaderboardRepository {
	return &redisLeaderboardRepository{client: client}
}

func (r *redisLeaderboardRepository) SetScore(ctx context.Context, teamID int, teamName string, score int) error {
	member := memberFor(teamID)
	pipe := r.client.TxPipeline()
	pipe.ZAdd(ctx, leaderboardKey, redis.Z{Score: float64(score), Member: member})
	pipe.HSet(ctx, leaderboardKey+":names", member, teamName)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to update leaderboard for team %d: %w", teamID, err)
	}
	return nil
}

func (r *redisLeaderboardRepository) Top(ctx context.Context, n int) ([]LeaderboardEntry, error) {
	zs, err := r.client.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}

	entries := make([]LeaderboardEntry, 0, len(zs))
	for _, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		teamID, err := strconv.Atoi(member)
		if err != nil {
			continue
		}
		name, err := r.client.HGet(ctx, leaderboardKey+":names", member).Result()
		if err != nil && err != redis.Nil {
			return nil, fmt.Errorf("failed to read leaderboard name for team %d: %w", teamID, err)
		}
		entries = append(entries, LeaderboardEntry{
			TeamID:    teamID,
			TeamName:  name,
			GameScore: int(z.Score),
		})
	}
	return entries, nil
}

func memberFor(teamID int) string {
	return strconv.Itoa(teamID)
}
