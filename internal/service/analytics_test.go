package service

import (
	"context"
	"testing"
	"time"

	"SportsSync/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedHeadToHead(t *testing.T, repo *fakeGameRepo, scores [][2]int) {
	t.Helper()
	for i, s := range scores {
		g := &model.Game{
			Date:       gameDay.AddDate(0, 0, -i),
			GameID:     "h2h-" + string(rune('a'+i)),
			Stage:      "FINAL",
			Team1ID:    model.TeamID("Lakers"),
			Team1Name:  "Lakers",
			Team1Score: s[0],
			Team2ID:    model.TeamID("Celtics"),
			Team2Name:  "Celtics",
			Team2Score: s[1],
		}
		require.NoError(t, repo.PutGame(context.Background(), g))
	}
}

func TestHeadToHead_TieRules(t *testing.T) {
	repo := newFakeGameRepo()
	seedHeadToHead(t, repo, [][2]int{{110, 100}, {95, 99}, {100, 100}})
	lakers, celtics := model.TeamID("Lakers"), model.TeamID("Celtics")

	legacy := NewAnalyticsService(repo, newFakeGraph(), "", quietLogger())
	stats, err := legacy.HeadToHead(context.Background(), lakers, celtics)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalGames)
	assert.Equal(t, 1, stats.Team1Wins)
	assert.Equal(t, 2, stats.Team2Wins)
	assert.InDelta(t, 305.0/3, stats.AvgScoreTeam1, 1e-9)
	assert.InDelta(t, 299.0/3, stats.AvgScoreTeam2, 1e-9)

	ignore := NewAnalyticsService(repo, newFakeGraph(), "IGNORE", quietLogger())
	stats, err = ignore.HeadToHead(context.Background(), lakers, celtics)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalGames)
	assert.Equal(t, 1, stats.Team1Wins)
	assert.Equal(t, 1, stats.Team2Wins)
}

func TestHeadToHead_LastGamesCappedAtFive(t *testing.T) {
	repo := newFakeGameRepo()
	seedHeadToHead(t, repo, [][2]int{{1, 0}, {2, 0}, {3, 0}, {4, 0}, {5, 0}, {6, 0}, {7, 0}})

	svc := NewAnalyticsService(repo, newFakeGraph(), TieRuleTeam2, quietLogger())
	stats, err := svc.HeadToHead(context.Background(), model.TeamID("Lakers"), model.TeamID("Celtics"))
	require.NoError(t, err)
	assert.Equal(t, 7, stats.TotalGames)
	require.Len(t, stats.LastGames, 5)
	// 日期倒序，最近一场在前
	assert.Equal(t, 1, stats.LastGames[0].TeamScore)
	assert.True(t, stats.LastGames[0].Date.After(stats.LastGames[4].Date))
}

func TestHeadToHead_NoGames(t *testing.T) {
	svc := NewAnalyticsService(newFakeGameRepo(), newFakeGraph(), TieRuleTeam2, quietLogger())
	stats, err := svc.HeadToHead(context.Background(), model.TeamID("Lakers"), model.TeamID("Celtics"))
	require.NoError(t, err)
	assert.Zero(t, stats.TotalGames)
	assert.Zero(t, stats.AvgScoreTeam1)
	assert.Zero(t, stats.AvgScoreTeam2)
	assert.NotNil(t, stats.LastGames)
	assert.Empty(t, stats.LastGames)
}

func TestTeamPerformanceTrend_DefaultsToTen(t *testing.T) {
	repo := newFakeGameRepo()
	scores := make([][2]int, 12)
	for i := range scores {
		scores[i] = [2]int{100 + i, 90}
	}
	seedHeadToHead(t, repo, scores)
	svc := NewAnalyticsService(repo, newFakeGraph(), "", quietLogger())

	rows, err := svc.TeamPerformanceTrend(context.Background(), model.TeamID("Lakers"), 0)
	require.NoError(t, err)
	assert.Len(t, rows, 10)

	rows, err = svc.TeamPerformanceTrend(context.Background(), model.TeamID("Lakers"), 3)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestPlayerPerformanceTrend(t *testing.T) {
	graph := newFakeGraph()
	svc := NewAnalyticsService(newFakeGameRepo(), graph, "", quietLogger())

	_, found, err := svc.PlayerPerformanceTrend(context.Background(), "p-404")
	require.NoError(t, err)
	assert.False(t, found)

	_, err = graph.UpsertPlayer(context.Background(), &model.Player{PlayerID: "p-23", Name: "LeBron James"})
	require.NoError(t, err)
	trend, found, err := svc.PlayerPerformanceTrend(context.Background(), "p-23")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "LeBron James", trend.Name)
	assert.NotNil(t, trend.Games)
	assert.Empty(t, trend.Games)

	d := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	graph.trends["p-23"] = []model.PlayerGame{{GameID: "g1", Date: &d, Stats: `{"pts":31}`}}
	graph.trendCalls = 0
	trend, _, err = svc.PlayerPerformanceTrend(context.Background(), "p-23")
	require.NoError(t, err)
	require.Len(t, trend.Games, 1)
	assert.Equal(t, `{"pts":31}`, trend.Games[0].Stats)
	assert.Equal(t, "p-23", trend.PlayerID)
	assert.Equal(t, 1, graph.trendCalls, "name and games come from one traversal")
}
