package service

import (
	"context"
	stdjson "encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"SportsSync/internal/model"
	"SportsSync/internal/repository"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Team{}, &model.User{}, &model.Favorite{}, &model.Notification{}))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// fakeSource 固定返回 games/teams，可注入错误
type fakeSource struct {
	mu        sync.Mutex
	games     []model.RawGame
	teams     []model.RawTeam
	err       error
	gameCalls int
	teamCalls int
	lastDate  *time.Time
}

func (f *fakeSource) GetName() string { return "fake" }

func (f *fakeSource) FetchGames(_ context.Context, date *time.Time) ([]model.RawGame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gameCalls++
	f.lastDate = date
	if f.err != nil {
		return nil, f.err
	}
	return append([]model.RawGame(nil), f.games...), nil
}

func (f *fakeSource) FetchTeams(_ context.Context, _ string) ([]model.RawTeam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.teamCalls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]model.RawTeam(nil), f.teams...), nil
}

func (f *fakeSource) setGames(games ...model.RawGame) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.games = games
}

func (f *fakeSource) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gameCalls, f.teamCalls
}

func rawGame(team1 string, score1 int, team2 string, score2 int, stage string) model.RawGame {
	return model.RawGame{
		Teams: []model.RawGameTeam{
			{Name: team1, Score: model.FlexString(fmt.Sprint(score1))},
			{Name: team2, Score: model.FlexString(fmt.Sprint(score2))},
		},
		Stage: stage,
	}
}

type rowWrite struct {
	gameID string
	row    repository.RowKind
}

// fakeGameRepo 内存版时序库，按 (game_id,row) 注入写失败
type fakeGameRepo struct {
	mu      sync.Mutex
	byDate  map[string]map[string]*model.Game
	byTeam  map[string]map[string]*model.TeamGame
	failOn  map[rowWrite]error
	writes  []rowWrite
	readErr error
}

func newFakeGameRepo() *fakeGameRepo {
	return &fakeGameRepo{
		byDate: map[string]map[string]*model.Game{},
		byTeam: map[string]map[string]*model.TeamGame{},
		failOn: map[rowWrite]error{},
	}
}

func (f *fakeGameRepo) PutGame(ctx context.Context, game *model.Game) error {
	return f.PutGameRows(ctx, game, repository.AllGameRows...)
}

func (f *fakeGameRepo) PutGameRows(_ context.Context, game *model.Game, rows ...repository.RowKind) error {
	if err := game.Validate(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	views := game.TeamViews()
	var pw *repository.PartialWriteError
	for _, row := range rows {
		w := rowWrite{gameID: game.GameID, row: row}
		if err := f.failOn[w]; err != nil {
			if pw == nil {
				pw = &repository.PartialWriteError{GameID: game.GameID}
			}
			pw.Rows = append(pw.Rows, row)
			pw.Errs = append(pw.Errs, err)
			continue
		}
		f.writes = append(f.writes, w)
		switch row {
		case repository.RowByDate:
			key := model.GameDay(game.Date).Format(model.DateLayout)
			if f.byDate[key] == nil {
				f.byDate[key] = map[string]*model.Game{}
			}
			g := *game
			f.byDate[key][game.GameID] = &g
		case repository.RowByTeam1:
			f.putTeamRow(views[0])
		case repository.RowByTeam2:
			f.putTeamRow(views[1])
		}
	}
	if pw != nil {
		return pw
	}
	return nil
}

func (f *fakeGameRepo) putTeamRow(tg model.TeamGame) {
	if f.byTeam[tg.TeamID] == nil {
		f.byTeam[tg.TeamID] = map[string]*model.TeamGame{}
	}
	f.byTeam[tg.TeamID][tg.GameID] = &tg
}

func (f *fakeGameRepo) GetGamesByDate(_ context.Context, date time.Time) ([]*model.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	var out []*model.Game
	for _, g := range f.byDate[model.GameDay(date).Format(model.DateLayout)] {
		c := *g
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GameID < out[j].GameID })
	return out, nil
}

func (f *fakeGameRepo) GetGamesByDateRange(ctx context.Context, from time.Time, days int) ([]*model.Game, error) {
	var out []*model.Game
	for i := 0; i < days; i++ {
		games, err := f.GetGamesByDate(ctx, from.AddDate(0, 0, i))
		if err != nil {
			return nil, err
		}
		out = append(out, games...)
	}
	return out, nil
}

func (f *fakeGameRepo) GetGamesByTeam(_ context.Context, teamID string, dr *repository.DateRange) ([]*model.TeamGame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	var out []*model.TeamGame
	for _, tg := range f.byTeam[teamID] {
		if inRange(dr, tg.Date) {
			c := *tg
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].GameID < out[j].GameID
	})
	return out, nil
}

func (f *fakeGameRepo) GetLatestGamesByTeam(ctx context.Context, teamID string, limit int) ([]*model.TeamGame, error) {
	rows, err := f.GetGamesByTeam(ctx, teamID, nil)
	if err != nil {
		return nil, err
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (f *fakeGameRepo) GetHeadToHeadRows(ctx context.Context, teamID, opponentID string) ([]*model.TeamGame, error) {
	rows, err := f.GetGamesByTeam(ctx, teamID, nil)
	if err != nil {
		return nil, err
	}
	var out []*model.TeamGame
	for _, r := range rows {
		if r.OpponentTeamID == opponentID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeGameRepo) GetGame(_ context.Context, gameID string) (*model.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, day := range f.byDate {
		if g, ok := day[gameID]; ok {
			c := *g
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeGameRepo) GetHighlights(ctx context.Context, gameID string) (string, error) {
	g, err := f.GetGame(ctx, gameID)
	if err != nil {
		return "", err
	}
	if g.HighlightVideoLink == "" {
		return "", repository.ErrNotFound
	}
	return g.HighlightVideoLink, nil
}

func (f *fakeGameRepo) teamRowCount(teamID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byTeam[teamID])
}

func (f *fakeGameRepo) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

// fakeGraph 内存版图库，只覆盖服务层用到的行为
type fakeGraph struct {
	players      map[string]*model.Player
	trends       map[string][]model.PlayerGame
	teamNodes    map[string]string
	gameNodes    map[string]string
	links        []string
	participated []string
	nextUID      int
	trendCalls   int
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{
		players:   map[string]*model.Player{},
		trends:    map[string][]model.PlayerGame{},
		teamNodes: map[string]string{},
		gameNodes: map[string]string{},
	}
}

func (f *fakeGraph) uid() string {
	f.nextUID++
	return fmt.Sprintf("0x%x", f.nextUID)
}

func (f *fakeGraph) ApplySchema(context.Context) error { return nil }

func (f *fakeGraph) UpsertPlayer(_ context.Context, p *model.Player) (string, error) {
	if existing, ok := f.players[p.PlayerID]; ok {
		p.UID = existing.UID
	} else {
		p.UID = f.uid()
	}
	c := *p
	f.players[p.PlayerID] = &c
	return p.UID, nil
}

func (f *fakeGraph) UpsertTeamNode(_ context.Context, teamID, _ string) (string, error) {
	if uid, ok := f.teamNodes[teamID]; ok {
		return uid, nil
	}
	uid := f.uid()
	f.teamNodes[teamID] = uid
	return uid, nil
}

func (f *fakeGraph) UpsertGameNode(_ context.Context, game *model.Game, _, _ string) (string, error) {
	if uid, ok := f.gameNodes[game.GameID]; ok {
		return uid, nil
	}
	uid := f.uid()
	f.gameNodes[game.GameID] = uid
	return uid, nil
}

func (f *fakeGraph) LinkPlayerToTeam(_ context.Context, playerUID, teamUID string, _ time.Time) error {
	f.links = append(f.links, playerUID+"->"+teamUID)
	return nil
}

func (f *fakeGraph) RecordParticipation(_ context.Context, playerUID, gameUID, stats string) error {
	f.participated = append(f.participated, playerUID+"->"+gameUID+":"+stats)
	return nil
}

func (f *fakeGraph) QueryPlayers(context.Context, model.PlayerFilter, int, int) ([]model.Player, error) {
	var out []model.Player
	for _, p := range f.players {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeGraph) SearchPlayers(context.Context, string, int) ([]model.Player, error) {
	return nil, nil
}

func (f *fakeGraph) GetPlayer(_ context.Context, playerID string) (*model.Player, error) {
	p, ok := f.players[playerID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (f *fakeGraph) QueryPlayerGames(ctx context.Context, playerID string, _ *repository.DateRange) ([]model.PlayerGame, error) {
	p, err := f.PlayerTrend(ctx, playerID)
	if err != nil {
		return nil, err
	}
	return p.ParticipatedIn, nil
}

func (f *fakeGraph) PlayerTrend(_ context.Context, playerID string) (*model.Player, error) {
	f.trendCalls++
	p, ok := f.players[playerID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *p
	c.ParticipatedIn = f.trends[playerID]
	return &c, nil
}

func (f *fakeGraph) ExecuteQuery(context.Context, string, map[string]string) (map[string]stdjson.RawMessage, error) {
	return nil, nil
}

// inRange 与仓储的 date 闭区间条件一致（按天比较）
func inRange(dr *repository.DateRange, t time.Time) bool {
	if dr == nil {
		return true
	}
	d := model.GameDay(t)
	if !dr.From.IsZero() && d.Before(model.GameDay(dr.From)) {
		return false
	}
	return dr.To.IsZero() || !d.After(model.GameDay(dr.To))
}
