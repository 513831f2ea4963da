package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"SportsSync/internal/model"

	"github.com/gocql/gocql"
)

// GameRepository 比赛时序库（Cassandra）。
// 一场比赛落三行：gamedetails(date, game_id) + teamgames(team1_id, date, game_id) + teamgames(team2_id, date, game_id)
type GameRepository interface {
	// PutGame 依次写入三行（无跨行事务）；部分失败返回 *PartialWriteError
	PutGame(ctx context.Context, game *model.Game) error
	// PutGameRows 只写入指定行，供部分失败后补写
	PutGameRows(ctx context.Context, game *model.Game, rows ...RowKind) error
	// GetGamesByDate 单个日期分区内的全部比赛，分区内无序
	GetGamesByDate(ctx context.Context, date time.Time) ([]*model.Game, error)
	// GetGamesByDateRange 从 from 起连续 days 天，逐个分区读取
	GetGamesByDateRange(ctx context.Context, from time.Time, days int) ([]*model.Game, error)
	// GetGamesByTeam 球队分区，按日期倒序；dr 非空时作为 date 聚簇列的闭区间条件下推到查询
	GetGamesByTeam(ctx context.Context, teamID string, dr *DateRange) ([]*model.TeamGame, error)
	// GetLatestGamesByTeam 球队最近 limit 场
	GetLatestGamesByTeam(ctx context.Context, teamID string, limit int) ([]*model.TeamGame, error)
	// GetHeadToHeadRows 球队分区内对手为 opponentID 的行
	GetHeadToHeadRows(ctx context.Context, teamID, opponentID string) ([]*model.TeamGame, error)
	// GetGame 按 game_id 查询；game_id 不是分区键，需全表 ALLOW FILTERING 扫描，O(分区数)
	GetGame(ctx context.Context, gameID string) (*model.Game, error)
	// GetHighlights 按 game_id 查集锦链接，同样是非索引的全分区扫描
	GetHighlights(ctx context.Context, gameID string) (string, error)
}

// DateRange 闭区间日期过滤，零值一端表示不限
type DateRange struct {
	From time.Time
	To   time.Time
}

const (
	gameDetailsColumns = `date, game_id, stage, team1_id, team1_name, team1_score, team2_id, team2_name, team2_score, highlight_video_link`
	teamGamesColumns   = `team_id, date, game_id, opponent_team_id, opponent_team_name, team_score, opponent_score, highlight_video_link`

	insertGameDetailsCQL = `INSERT INTO gamedetails (` + gameDetailsColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	insertTeamGameCQL    = `INSERT INTO teamgames (` + teamGamesColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	selectGamesByDateCQL    = `SELECT ` + gameDetailsColumns + ` FROM gamedetails WHERE date = ?`
	selectGameByIDCQL       = `SELECT ` + gameDetailsColumns + ` FROM gamedetails WHERE game_id = ? LIMIT 1 ALLOW FILTERING`
	selectHighlightsCQL     = `SELECT highlight_video_link FROM gamedetails WHERE game_id = ? LIMIT 1 ALLOW FILTERING`
	selectTeamGamesCQL      = `SELECT ` + teamGamesColumns + ` FROM teamgames WHERE team_id = ?`
	selectLatestTeamGameCQL = `SELECT ` + teamGamesColumns + ` FROM teamgames WHERE team_id = ? ORDER BY date DESC LIMIT ?`
	selectHeadToHeadCQL     = `SELECT ` + teamGamesColumns + ` FROM teamgames WHERE team_id = ? AND opponent_team_id = ? ALLOW FILTERING`
)

type gameRepository struct {
	session cqlSession
}

// NewGameRepository 基于进程级共享的 gocql 会话创建仓储
func NewGameRepository(session *gocql.Session) GameRepository {
	return &gameRepository{session: gocqlSession{session: session}}
}

func (r *gameRepository) PutGame(ctx context.Context, game *model.Game) error {
	return r.PutGameRows(ctx, game, AllGameRows...)
}

func (r *gameRepository) PutGameRows(ctx context.Context, game *model.Game, rows ...RowKind) error {
	if err := game.Validate(); err != nil {
		return err
	}
	views := game.TeamViews()
	var failed *PartialWriteError
	// 按顺序逐行写；某行失败不影响后续行，最后统一汇报
	for _, row := range rows {
		var err error
		switch row {
		case RowByDate:
			err = r.session.exec(ctx, insertGameDetailsCQL,
				model.GameDay(game.Date), game.GameID, game.Stage,
				game.Team1ID, game.Team1Name, game.Team1Score,
				game.Team2ID, game.Team2Name, game.Team2Score,
				game.HighlightVideoLink)
		case RowByTeam1:
			err = r.insertTeamGame(ctx, &views[0])
		case RowByTeam2:
			err = r.insertTeamGame(ctx, &views[1])
		default:
			err = fmt.Errorf("未知的行类型: %s", row)
		}
		if err != nil {
			if failed == nil {
				failed = &PartialWriteError{GameID: game.GameID}
			}
			failed.Rows = append(failed.Rows, row)
			failed.Errs = append(failed.Errs, err)
		}
	}
	if failed != nil {
		return failed
	}
	return nil
}

func (r *gameRepository) insertTeamGame(ctx context.Context, tg *model.TeamGame) error {
	return r.session.exec(ctx, insertTeamGameCQL,
		tg.TeamID, tg.Date, tg.GameID,
		tg.OpponentTeamID, tg.OpponentTeamName,
		tg.TeamScore, tg.OpponentScore, tg.HighlightVideoLink)
}

func (r *gameRepository) GetGamesByDate(ctx context.Context, date time.Time) ([]*model.Game, error) {
	return r.scanGames(r.session.iter(ctx, selectGamesByDateCQL, model.GameDay(date)))
}

func (r *gameRepository) GetGamesByDateRange(ctx context.Context, from time.Time, days int) ([]*model.Game, error) {
	if days <= 0 {
		days = 1
	}
	start := model.GameDay(from)
	var games []*model.Game
	for i := 0; i < days; i++ {
		list, err := r.GetGamesByDate(ctx, start.AddDate(0, 0, i))
		if err != nil {
			return nil, err
		}
		games = append(games, list...)
	}
	return games, nil
}

func (r *gameRepository) GetGamesByTeam(ctx context.Context, teamID string, dr *DateRange) ([]*model.TeamGame, error) {
	stmt, args := teamGamesQuery(teamID, dr)
	return r.scanTeamGames(r.session.iter(ctx, stmt, args...))
}

// teamGamesQuery 按 date 聚簇列限定分区切片；起止同一天时用等值条件
func teamGamesQuery(teamID string, dr *DateRange) (string, []interface{}) {
	stmt, args := selectTeamGamesCQL, []interface{}{teamID}
	if dr == nil {
		return stmt, args
	}
	from, to := model.GameDay(dr.From), model.GameDay(dr.To)
	if !dr.From.IsZero() && !dr.To.IsZero() && from.Equal(to) {
		return stmt + ` AND date = ?`, append(args, from)
	}
	if !dr.From.IsZero() {
		stmt += ` AND date >= ?`
		args = append(args, from)
	}
	if !dr.To.IsZero() {
		stmt += ` AND date <= ?`
		args = append(args, to)
	}
	return stmt, args
}

func (r *gameRepository) GetLatestGamesByTeam(ctx context.Context, teamID string, limit int) ([]*model.TeamGame, error) {
	if limit <= 0 {
		limit = 10
	}
	return r.scanTeamGames(r.session.iter(ctx, selectLatestTeamGameCQL, teamID, limit))
}

func (r *gameRepository) GetHeadToHeadRows(ctx context.Context, teamID, opponentID string) ([]*model.TeamGame, error) {
	return r.scanTeamGames(r.session.iter(ctx, selectHeadToHeadCQL, teamID, opponentID))
}

func (r *gameRepository) GetGame(ctx context.Context, gameID string) (*model.Game, error) {
	games, err := r.scanGames(r.session.iter(ctx, selectGameByIDCQL, gameID))
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, ErrNotFound
	}
	return games[0], nil
}

func (r *gameRepository) GetHighlights(ctx context.Context, gameID string) (string, error) {
	it := r.session.iter(ctx, selectHighlightsCQL, gameID)
	var link string
	found := it.Scan(&link)
	if err := it.Close(); err != nil {
		return "", fmt.Errorf("查询集锦失败: %w", err)
	}
	if !found || link == "" {
		return "", ErrNotFound
	}
	return link, nil
}

// scanGames 读取 gamedetails 行，迭代器总会被关闭
func (r *gameRepository) scanGames(it rowIter) ([]*model.Game, error) {
	var games []*model.Game
	for {
		g := &model.Game{}
		if !it.Scan(&g.Date, &g.GameID, &g.Stage,
			&g.Team1ID, &g.Team1Name, &g.Team1Score,
			&g.Team2ID, &g.Team2Name, &g.Team2Score,
			&g.HighlightVideoLink) {
			break
		}
		games = append(games, g)
	}
	if err := it.Close(); err != nil {
		return nil, fmt.Errorf("读取gamedetails失败: %w", err)
	}
	return games, nil
}

func (r *gameRepository) scanTeamGames(it rowIter) ([]*model.TeamGame, error) {
	var rows []*model.TeamGame
	for {
		tg := &model.TeamGame{}
		if !it.Scan(&tg.TeamID, &tg.Date, &tg.GameID,
			&tg.OpponentTeamID, &tg.OpponentTeamName,
			&tg.TeamScore, &tg.OpponentScore, &tg.HighlightVideoLink) {
			break
		}
		rows = append(rows, tg)
	}
	if err := it.Close(); err != nil {
		return nil, fmt.Errorf("读取teamgames失败: %w", err)
	}
	return rows, nil
}

// IsPartialWrite 是否为三行写入的部分失败
func IsPartialWrite(err error) (*PartialWriteError, bool) {
	var pw *PartialWriteError
	if errors.As(err, &pw) {
		return pw, true
	}
	return nil, false
}
