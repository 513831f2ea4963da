package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"SportsSync/internal/model"
	"SportsSync/internal/repository"

	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidPlayer = errors.New("球员信息无效")
	ErrTeamNotFound  = errors.New("球队不存在")
)

// PlayerService 图库中球员、效力关系与出场记录的维护
type PlayerService struct {
	graph  repository.GraphRepository
	teams  repository.TeamRepository
	games  repository.GameRepository
	logger *logrus.Logger
}

func NewPlayerService(graph repository.GraphRepository, teams repository.TeamRepository, games repository.GameRepository, logger *logrus.Logger) *PlayerService {
	return &PlayerService{graph: graph, teams: teams, games: games, logger: logger}
}

// RegisterPlayer 按 player_id upsert 球员节点
func (s *PlayerService) RegisterPlayer(ctx context.Context, p *model.Player) (*model.Player, error) {
	p.PlayerID = strings.TrimSpace(p.PlayerID)
	p.Name = model.CleanName(p.Name)
	if p.PlayerID == "" || p.Name == "" {
		return nil, fmt.Errorf("%w: player_id 和 name 不能为空", ErrInvalidPlayer)
	}
	if _, err := s.graph.UpsertPlayer(ctx, p); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"player_id": p.PlayerID, "uid": p.UID}).Info("球员已写入图库")
	return p, nil
}

// LinkToTeam 追加一条效力关系；球队须已存在于文档库
func (s *PlayerService) LinkToTeam(ctx context.Context, playerID, teamName string, since time.Time) error {
	player, err := s.graph.GetPlayer(ctx, playerID)
	if err != nil {
		return err
	}
	team, err := s.teams.GetTeamByName(ctx, model.CleanName(teamName))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrTeamNotFound, teamName)
		}
		return err
	}
	teamUID, err := s.graph.UpsertTeamNode(ctx, team.TeamID, team.TeamName)
	if err != nil {
		return err
	}
	if since.IsZero() {
		since = time.Now().UTC()
	}
	return s.graph.LinkPlayerToTeam(ctx, player.UID, teamUID, since)
}

// RecordGame 记录球员在某场比赛的数据；比赛节点按需从时序库补建
func (s *PlayerService) RecordGame(ctx context.Context, playerID, gameID, stats string) error {
	player, err := s.graph.GetPlayer(ctx, playerID)
	if err != nil {
		return err
	}
	game, err := s.games.GetGame(ctx, gameID)
	if err != nil {
		return err
	}
	t1, err := s.graph.UpsertTeamNode(ctx, game.Team1ID, game.Team1Name)
	if err != nil {
		return err
	}
	t2, err := s.graph.UpsertTeamNode(ctx, game.Team2ID, game.Team2Name)
	if err != nil {
		return err
	}
	gameUID, err := s.graph.UpsertGameNode(ctx, game, t1, t2)
	if err != nil {
		return err
	}
	return s.graph.RecordParticipation(ctx, player.UID, gameUID, stats)
}

func (s *PlayerService) ListPlayers(ctx context.Context, filter model.PlayerFilter, skip, limit int) ([]model.Player, error) {
	return s.graph.QueryPlayers(ctx, filter, skip, limit)
}

func (s *PlayerService) GetPlayer(ctx context.Context, playerID string) (*model.Player, error) {
	return s.graph.GetPlayer(ctx, playerID)
}

func (s *PlayerService) PlayerGames(ctx context.Context, playerID string, dr *repository.DateRange) ([]model.PlayerGame, error) {
	return s.graph.QueryPlayerGames(ctx, playerID, dr)
}

func (s *PlayerService) SearchPlayers(ctx context.Context, name string, limit int) ([]model.Player, error) {
	return s.graph.SearchPlayers(ctx, name, limit)
}
