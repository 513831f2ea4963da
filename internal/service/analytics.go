package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"SportsSync/internal/model"
	"SportsSync/internal/repository"

	"github.com/sirupsen/logrus"
)

const (
	// TieRuleTeam2 平局记为 team2 胜（沿用历史口径）
	TieRuleTeam2 = "team2"
	// TieRuleIgnore 平局只计入总场次，不记胜负
	TieRuleIgnore = "ignore"

	headToHeadLastGames = 5
	defaultTrendGames   = 10
)

// HeadToHeadStats 两队交手统计，以 team1 视角
type HeadToHeadStats struct {
	TotalGames    int               `json:"total_games"`
	Team1Wins     int               `json:"team1_wins"`
	Team2Wins     int               `json:"team2_wins"`
	AvgScoreTeam1 float64           `json:"avg_score_team1"`
	AvgScoreTeam2 float64           `json:"avg_score_team2"`
	LastGames     []*model.TeamGame `json:"last_games"`
}

// PlayerTrend 球员按日期倒序的逐场数据
type PlayerTrend struct {
	PlayerID string             `json:"player_id"`
	Name     string             `json:"name"`
	Games    []model.PlayerGame `json:"games"`
}

// AnalyticsService 基于时序库与图库的只读统计
type AnalyticsService struct {
	games   repository.GameRepository
	graph   repository.GraphRepository
	tieRule string
	logger  *logrus.Logger
}

func NewAnalyticsService(games repository.GameRepository, graph repository.GraphRepository, tieRule string, logger *logrus.Logger) *AnalyticsService {
	rule := strings.ToLower(strings.TrimSpace(tieRule))
	if rule != TieRuleIgnore {
		rule = TieRuleTeam2
	}
	return &AnalyticsService{games: games, graph: graph, tieRule: rule, logger: logger}
}

// HeadToHead 扫描 team1 分区中对手为 team2 的全部行
func (s *AnalyticsService) HeadToHead(ctx context.Context, team1ID, team2ID string) (*HeadToHeadStats, error) {
	rows, err := s.games.GetHeadToHeadRows(ctx, team1ID, team2ID)
	if err != nil {
		return nil, fmt.Errorf("查询交手记录失败: %w", err)
	}

	stats := &HeadToHeadStats{LastGames: make([]*model.TeamGame, 0, headToHeadLastGames)}
	var sum1, sum2 int
	for _, r := range rows {
		stats.TotalGames++
		switch {
		case r.TeamScore > r.OpponentScore:
			stats.Team1Wins++
		case r.TeamScore < r.OpponentScore:
			stats.Team2Wins++
		case s.tieRule == TieRuleTeam2:
			stats.Team2Wins++
		}
		sum1 += r.TeamScore
		sum2 += r.OpponentScore
		if len(stats.LastGames) < headToHeadLastGames {
			stats.LastGames = append(stats.LastGames, r)
		}
	}
	if stats.TotalGames > 0 {
		stats.AvgScoreTeam1 = float64(sum1) / float64(stats.TotalGames)
		stats.AvgScoreTeam2 = float64(sum2) / float64(stats.TotalGames)
	}
	return stats, nil
}

// TeamPerformanceTrend 球队最近 lastN 场（默认 10）
func (s *AnalyticsService) TeamPerformanceTrend(ctx context.Context, teamID string, lastN int) ([]*model.TeamGame, error) {
	if lastN <= 0 {
		lastN = defaultTrendGames
	}
	rows, err := s.games.GetLatestGamesByTeam(ctx, teamID, lastN)
	if err != nil {
		return nil, fmt.Errorf("查询球队近期比赛失败: %w", err)
	}
	return rows, nil
}

// PlayerPerformanceTrend 球员不存在时 found=false
func (s *AnalyticsService) PlayerPerformanceTrend(ctx context.Context, playerID string) (*PlayerTrend, bool, error) {
	player, err := s.graph.PlayerTrend(ctx, playerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	games := player.ParticipatedIn
	if games == nil {
		games = []model.PlayerGame{}
	}
	return &PlayerTrend{PlayerID: player.PlayerID, Name: player.Name, Games: games}, true, nil
}
