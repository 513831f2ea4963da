package filesource

import (
	"context"
	"io"
	"testing"
	"time"

	"SportsSync/internal/config"
	"SportsSync/internal/model"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdapter(t *testing.T) *Adapter {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	src, err := New(&config.LiveConfig{FilePath: "testdata/fixture.json"}, nil, logger)
	require.NoError(t, err)
	return src.(*Adapter)
}

func TestFetchGames(t *testing.T) {
	a := newAdapter(t)
	a.now = func() time.Time { return time.Date(2024, 1, 15, 22, 0, 0, 0, time.UTC) }

	games, err := a.FetchGames(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "Lakers", games[0].Teams[0].Name)

	other := time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)
	games, err = a.FetchGames(context.Background(), &other)
	require.NoError(t, err)
	assert.Empty(t, games)
}

func TestFetchTeams_NormalisesConferences(t *testing.T) {
	a := newAdapter(t)

	teams, err := a.FetchTeams(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, teams, 2)

	byName := map[string]model.Conference{}
	for _, raw := range teams {
		team, _, err := raw.ToTeam()
		require.NoError(t, err)
		byName[team.TeamName] = team.Conference
	}
	assert.Equal(t, model.ConferenceWestern, byName["Lakers"])
	assert.Equal(t, model.ConferenceEastern, byName["Celtics"])
}

func TestNew_RequiresPath(t *testing.T) {
	_, err := New(&config.LiveConfig{}, nil, logrus.New())
	assert.Error(t, err)
}
