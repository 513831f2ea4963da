package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"SportsSync/internal/model"
	"SportsSync/internal/repository"
)

// QueryService 比赛与球队的只读查询
type QueryService struct {
	games repository.GameRepository
	teams repository.TeamRepository
}

func NewQueryService(games repository.GameRepository, teams repository.TeamRepository) *QueryService {
	return &QueryService{games: games, teams: teams}
}

func (s *QueryService) GetGame(ctx context.Context, gameID string) (*model.Game, error) {
	return s.games.GetGame(ctx, gameID)
}

func (s *QueryService) Highlights(ctx context.Context, gameID string) (string, error) {
	return s.games.GetHighlights(ctx, gameID)
}

func (s *QueryService) ListTeams(ctx context.Context, conference string, skip, limit int) ([]*model.Team, error) {
	var filter repository.TeamFilter
	if conference != "" {
		c, ok := model.ParseConference(conference)
		if !ok {
			return nil, fmt.Errorf("%w: %s", model.ErrUnknownConference, conference)
		}
		filter.Conference = c
	}
	return s.teams.ListTeams(ctx, filter, skip, limit)
}

// GetTeam 按队名查询，未命中时把参数当作 team_id 再查一次
func (s *QueryService) GetTeam(ctx context.Context, nameOrID string) (*model.Team, error) {
	team, err := s.teams.GetTeamByName(ctx, model.CleanName(nameOrID))
	if !errors.Is(err, repository.ErrNotFound) {
		return team, err
	}
	return s.teams.GetTeamByTeamID(ctx, strings.TrimSpace(nameOrID))
}

func (s *QueryService) SearchTeams(ctx context.Context, name string, limit int) ([]*model.Team, error) {
	return s.teams.SearchTeams(ctx, name, limit)
}

// TeamGames 按队名查球队分区；文档库里没有该队时仍按派生ID查询
func (s *QueryService) TeamGames(ctx context.Context, teamName string, dr *repository.DateRange) ([]*model.TeamGame, error) {
	teamID := model.TeamID(teamName)
	team, err := s.teams.GetTeamByName(ctx, model.CleanName(teamName))
	switch {
	case err == nil:
		teamID = team.TeamID
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}
	return s.games.GetGamesByTeam(ctx, teamID, dr)
}
