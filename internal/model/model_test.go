package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := ParseGameDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestGameTeamViews_AreMirrors(t *testing.T) {
	g := &Game{
		Date:       time.Date(2024, 1, 15, 20, 30, 0, 0, time.UTC),
		GameID:     "g-1",
		Stage:      "FINAL",
		Team1ID:    TeamID("Lakers"),
		Team1Name:  "Lakers",
		Team1Score: 100,
		Team2ID:    TeamID("Celtics"),
		Team2Name:  "Celtics",
		Team2Score: 98,
	}

	views := g.TeamViews()
	lakers, celtics := views[0], views[1]

	assert.Equal(t, g.Team1ID, lakers.TeamID)
	assert.Equal(t, g.Team2ID, lakers.OpponentTeamID)
	assert.Equal(t, "Celtics", lakers.OpponentTeamName)
	assert.Equal(t, 100, lakers.TeamScore)
	assert.Equal(t, 98, lakers.OpponentScore)

	assert.Equal(t, "Lakers", celtics.OpponentTeamName)
	assert.Equal(t, 98, celtics.TeamScore)
	assert.Equal(t, 100, celtics.OpponentScore)

	assert.Equal(t, lakers.GameID, celtics.GameID)
	assert.Equal(t, lakers.TeamID, celtics.OpponentTeamID)
	assert.Equal(t, celtics.TeamID, lakers.OpponentTeamID)
	assert.Equal(t, day("2024-01-15"), lakers.Date, "team rows carry the day, not the time")
}

func TestGameValidate(t *testing.T) {
	base := Game{GameID: "g", Date: day("2024-01-15"), Team1ID: "a", Team2ID: "b"}
	require.NoError(t, base.Validate())

	same := base
	same.Team2ID = "a"
	assert.ErrorIs(t, same.Validate(), ErrInvalidGame)

	neg := base
	neg.Team1Score = -1
	assert.ErrorIs(t, neg.Validate(), ErrInvalidGame)

	noID := base
	noID.GameID = ""
	assert.ErrorIs(t, noID.Validate(), ErrInvalidGame)
}

func TestRawGameToGame(t *testing.T) {
	var raw RawGame
	require.NoError(t, json.Unmarshal([]byte(`{
		"teams": [{"name": " Lakers ", "score": 100}, {"name": "Celtics", "score": "98"}],
		"stage": "FINAL",
		"video_highlights": {"link": "https://example.com/hl"}
	}`), &raw))

	g, err := raw.ToGame(time.Date(2024, 1, 15, 23, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "Lakers", g.Team1Name)
	assert.Equal(t, 100, g.Team1Score)
	assert.Equal(t, 98, g.Team2Score)
	assert.Equal(t, "FINAL", g.Stage)
	assert.Equal(t, "https://example.com/hl", g.HighlightVideoLink)
	assert.Equal(t, TeamID("lakers"), g.Team1ID)
	assert.Equal(t, day("2024-01-15"), g.Date)
	assert.Empty(t, g.GameID)
}

func TestRawGameToGame_Defaults(t *testing.T) {
	raw := RawGame{Teams: []RawGameTeam{{Name: "Heat"}, {Name: "Knicks"}}}

	g, err := raw.ToGame(day("2024-02-01"))
	require.NoError(t, err)
	assert.Equal(t, DefaultStage, g.Stage)
	assert.Zero(t, g.Team1Score)
	assert.Zero(t, g.Team2Score)
}

func TestRawGameToGame_Invalid(t *testing.T) {
	cases := map[string]RawGame{
		"one team":   {Teams: []RawGameTeam{{Name: "Heat"}}},
		"empty name": {Teams: []RawGameTeam{{Name: ""}, {Name: "Knicks"}}},
		"bad score":  {Teams: []RawGameTeam{{Name: "Heat", Score: "ten"}, {Name: "Knicks"}}},
		"negative":   {Teams: []RawGameTeam{{Name: "Heat", Score: "-3"}, {Name: "Knicks"}}},
		"same team":  {Teams: []RawGameTeam{{Name: "Heat"}, {Name: "heat"}}},
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := raw.ToGame(day("2024-02-01"))
			assert.ErrorIs(t, err, ErrInvalidRawGame)
		})
	}
}

func TestRawTeamToTeam(t *testing.T) {
	raw := RawTeam{
		Position:    "1",
		Name:        "Celtics",
		Conference:  "Eastern Conference",
		Wins:        "37",
		Losses:      "10",
		GamesBehind: "-",
		ConfRecord:  "22-5",
		HomeRecord:  "20-2",
		AwayRecord:  "17-8",
		Last10:      "8-2",
		Streak:      "W3",
	}

	team, fields, err := raw.ToTeam()
	require.NoError(t, err)

	assert.Equal(t, ConferenceEastern, team.Conference)
	assert.Equal(t, 0.0, team.GamesBehind)
	assert.Equal(t, 1, team.Position)
	assert.Equal(t, 37, team.Wins)
	assert.Equal(t, TeamID("Celtics"), team.TeamID)
	assert.ElementsMatch(t, TeamMutableColumns, fields)
}

func TestRawTeamToTeam_OnlyNameAndConference(t *testing.T) {
	team, fields, err := (&RawTeam{Name: "Lakers", Conference: "Western Conference"}).ToTeam()
	require.NoError(t, err)

	assert.Equal(t, ConferenceWestern, team.Conference)
	assert.Equal(t, "Lakers", team.TeamName)
	assert.Equal(t, []string{"team_id", "conference", "updated_at"}, fields)

	_, fields, err = (&RawTeam{Name: "Lakers", Conference: "West", Wins: " 40 ", Streak: "L1"}).ToTeam()
	require.NoError(t, err)
	assert.Equal(t, []string{"team_id", "conference", "wins", "streak", "updated_at"}, fields)
}

func TestRawTeamToTeam_Errors(t *testing.T) {
	_, _, err := (&RawTeam{Name: "Lakers", Conference: "Pacific Division", Position: "1", Wins: "1", Losses: "1"}).ToTeam()
	assert.ErrorIs(t, err, ErrUnknownConference)

	_, _, err = (&RawTeam{Name: "Lakers", Conference: "West", Position: "0", Wins: "1", Losses: "1"}).ToTeam()
	assert.ErrorIs(t, err, ErrInvalidRawTeam)

	_, _, err = (&RawTeam{Name: "Lakers", Conference: "West", Position: "3", Wins: "x", Losses: "1"}).ToTeam()
	assert.ErrorIs(t, err, ErrInvalidRawTeam)

	_, _, err = (&RawTeam{Name: "Lakers", Conference: "West", Losses: "-2"}).ToTeam()
	assert.ErrorIs(t, err, ErrInvalidRawTeam)

	_, _, err = (&RawTeam{Name: "Lakers", Conference: "West", GamesBehind: "n/a"}).ToTeam()
	assert.ErrorIs(t, err, ErrInvalidRawTeam)
}

func TestParseGamesBehind(t *testing.T) {
	for in, want := range map[string]float64{"-": 0, "": 0, " 2.5 ": 2.5, "10": 10} {
		got, err := ParseGamesBehind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseGamesBehind("n/a")
	assert.Error(t, err)
}

func TestParseConference(t *testing.T) {
	cases := []struct {
		in   string
		want Conference
		ok   bool
	}{
		{"Eastern Conference", ConferenceEastern, true},
		{"Western Conference", ConferenceWestern, true},
		{"east", ConferenceEastern, true},
		{"WEST", ConferenceWestern, true},
		{"EASTERN", ConferenceEastern, true},
		{"Atlantic", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := ParseConference(c.in)
		assert.Equal(t, c.ok, ok, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestNormalizeNameAndTeamID(t *testing.T) {
	assert.Equal(t, "los angeles lakers", NormalizeName("  Los   Angeles LAKERS "))
	assert.Equal(t, TeamID("Los Angeles Lakers"), TeamID("los angeles  lakers"))
	assert.NotEqual(t, TeamID("Lakers"), TeamID("Clippers"))
	assert.Equal(t, DedupKey(day("2024-01-15"), "Lakers", "Celtics"), DedupKey(day("2024-01-15"), "LAKERS", " celtics"))
}

func TestDedupKey_IgnoresOrientation(t *testing.T) {
	assert.Equal(t, DedupKey(day("2024-01-15"), "Lakers", "Celtics"), DedupKey(day("2024-01-15"), " celtics ", "LAKERS"))
	assert.NotEqual(t, DedupKey(day("2024-01-15"), "Lakers", "Celtics"), DedupKey(day("2024-01-15"), "Lakers", "Knicks"))
	assert.NotEqual(t, DedupKey(day("2024-01-15"), "Lakers", "Celtics"), DedupKey(day("2024-01-16"), "Lakers", "Celtics"))

	g := &Game{Date: day("2024-01-15").Add(20 * time.Hour), Team1Name: "Celtics", Team2Name: "Lakers"}
	assert.Equal(t, DedupKey(day("2024-01-15"), "Lakers", "Celtics"), g.DedupKey())
}

func TestFlexString(t *testing.T) {
	var v struct {
		A FlexString `json:"a"`
		B FlexString `json:"b"`
		C FlexString `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 12, "b": "7", "c": null}`), &v))
	assert.Equal(t, FlexString("12"), v.A)
	assert.Equal(t, FlexString("7"), v.B)
	assert.Equal(t, FlexString(""), v.C)
}

func TestPlayerCurrentTeam(t *testing.T) {
	early := time.Date(2022, 7, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2024, 2, 8, 0, 0, 0, 0, time.UTC)
	p := Player{PlaysFor: []PlayerTeam{
		{TeamID: "old", Since: &early},
		{TeamID: "unknown"},
		{TeamID: "new", Since: &late},
	}}

	require.NotNil(t, p.CurrentTeam())
	assert.Equal(t, "new", p.CurrentTeam().TeamID)

	assert.Nil(t, (&Player{}).CurrentTeam())
}
