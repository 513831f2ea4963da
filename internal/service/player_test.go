package service

import (
	"context"
	"testing"
	"time"

	"SportsSync/internal/model"
	"SportsSync/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlayerFixture(t *testing.T) (*PlayerService, *fakeGraph, *fakeGameRepo, repository.TeamRepository) {
	t.Helper()
	graph := newFakeGraph()
	games := newFakeGameRepo()
	teams := repository.NewTeamRepository(newTestDB(t))
	return NewPlayerService(graph, teams, games, quietLogger()), graph, games, teams
}

func TestRegisterPlayer_Validates(t *testing.T) {
	svc, graph, _, _ := newPlayerFixture(t)

	_, err := svc.RegisterPlayer(context.Background(), &model.Player{PlayerID: " ", Name: "x"})
	assert.ErrorIs(t, err, ErrInvalidPlayer)

	p, err := svc.RegisterPlayer(context.Background(), &model.Player{PlayerID: "p-23", Name: "  LeBron   James ", Position: "F"})
	require.NoError(t, err)
	assert.Equal(t, "LeBron James", p.Name)
	assert.NotEmpty(t, p.UID)

	again, err := svc.RegisterPlayer(context.Background(), &model.Player{PlayerID: "p-23", Name: "LeBron James"})
	require.NoError(t, err)
	assert.Equal(t, p.UID, again.UID)
	assert.Len(t, graph.players, 1)
}

func TestLinkToTeam(t *testing.T) {
	svc, graph, _, teams := newPlayerFixture(t)
	ctx := context.Background()

	err := svc.LinkToTeam(ctx, "p-404", "Lakers", time.Time{})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = svc.RegisterPlayer(ctx, &model.Player{PlayerID: "p-23", Name: "LeBron James"})
	require.NoError(t, err)

	err = svc.LinkToTeam(ctx, "p-23", "Lakers", time.Time{})
	assert.ErrorIs(t, err, ErrTeamNotFound)

	require.NoError(t, teams.UpsertTeam(ctx, &model.Team{
		TeamID: model.TeamID("Lakers"), TeamName: "Lakers", Conference: model.ConferenceWestern, Position: 9,
	}))
	require.NoError(t, svc.LinkToTeam(ctx, "p-23", "Lakers", time.Date(2018, 7, 1, 0, 0, 0, 0, time.UTC)))
	require.Len(t, graph.links, 1)
	assert.Equal(t, graph.players["p-23"].UID+"->"+graph.teamNodes[model.TeamID("Lakers")], graph.links[0])
}

func TestRecordGame_CreatesGameNodeFromTimeSeries(t *testing.T) {
	svc, graph, games, _ := newPlayerFixture(t)
	ctx := context.Background()

	_, err := svc.RegisterPlayer(ctx, &model.Player{PlayerID: "p-23", Name: "LeBron James"})
	require.NoError(t, err)
	assert.ErrorIs(t, svc.RecordGame(ctx, "p-23", "game-1", `{"pts":30}`), repository.ErrNotFound)

	require.NoError(t, games.PutGame(ctx, &model.Game{
		Date: gameDay, GameID: "game-1", Stage: "FINAL",
		Team1ID: model.TeamID("Lakers"), Team1Name: "Lakers", Team1Score: 102,
		Team2ID: model.TeamID("Celtics"), Team2Name: "Celtics", Team2Score: 98,
	}))
	require.NoError(t, svc.RecordGame(ctx, "p-23", "game-1", `{"pts":30}`))

	assert.Len(t, graph.teamNodes, 2)
	require.Contains(t, graph.gameNodes, "game-1")
	require.Len(t, graph.participated, 1)
	assert.Equal(t, graph.players["p-23"].UID+"->"+graph.gameNodes["game-1"]+`:{"pts":30}`, graph.participated[0])
}
