package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"SportsSync/internal/interfaces"
	"SportsSync/internal/metrics"
	"SportsSync/internal/model"
	"SportsSync/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// GameSyncResult 一次比赛同步的统计
type GameSyncResult struct {
	Date        string `json:"date"`
	Fetched     int    `json:"fetched"`
	Inserted    int    `json:"inserted"`
	Updated     int    `json:"updated"`
	Skipped     int    `json:"skipped"` // 已存在且无变化
	Failed      int    `json:"failed"`
	SourceError string `json:"source_error,omitempty"`
}

// TeamSyncResult 一次积分榜同步的统计
type TeamSyncResult struct {
	Fetched     int    `json:"fetched"`
	Upserted    int    `json:"upserted"`
	Skipped     int    `json:"skipped"` // 分区无法识别
	Failed      int    `json:"failed"`
	SourceError string `json:"source_error,omitempty"`
}

// GameNotifier 新比赛入库后的通知钩子
type GameNotifier interface {
	NotifyGameInserted(ctx context.Context, game *model.Game) error
}

// ReconcileService 把数据源的候选记录合并进时序库与文档库。
// 按自然键 (日期, 双方规范化队名) 去重，重复拉取不会产生新行
type ReconcileService struct {
	source   interfaces.LiveIngestSource
	games    repository.GameRepository
	teams    repository.TeamRepository
	notifier GameNotifier
	metrics  *metrics.Metrics
	logger   *logrus.Logger
	now      func() time.Time
	newID    func() string
}

// NewReconcileService notifier 与 m 可为 nil
func NewReconcileService(
	source interfaces.LiveIngestSource,
	games repository.GameRepository,
	teams repository.TeamRepository,
	notifier GameNotifier,
	m *metrics.Metrics,
	logger *logrus.Logger,
) *ReconcileService {
	return &ReconcileService{
		source:   source,
		games:    games,
		teams:    teams,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// SyncGames 拉取并合并指定日期（nil 为当天 UTC）的比赛。
// 数据源失败只记录在结果里，不返回错误；返回错误仅表示读取已有数据失败
func (s *ReconcileService) SyncGames(ctx context.Context, date *time.Time) (*GameSyncResult, error) {
	day := model.GameDay(s.now().UTC())
	if date != nil {
		day = model.GameDay(*date)
	}
	res := &GameSyncResult{Date: day.Format(model.DateLayout)}

	raws := s.fetchGames(ctx, date, res)
	res.Fetched = len(raws)
	if len(raws) == 0 {
		return res, nil
	}

	candidates := s.collapseCandidates(raws, day, res)
	if len(candidates) == 0 {
		s.metrics.RecordReconcile("games", 0, 0, 0, res.Failed)
		return res, nil
	}

	// 日期分区每批只读一次
	stored, err := s.games.GetGamesByDate(ctx, day)
	if err != nil {
		return res, fmt.Errorf("读取%s已有比赛失败: %w", res.Date, err)
	}
	idx := newDayIndex(stored)

	for _, cand := range candidates {
		outcome, err := s.reconcileGame(ctx, cand, day, idx)
		if err != nil {
			res.Failed++
			fields := logrus.Fields{
				"date":  res.Date,
				"team1": cand.Team1Name,
				"team2": cand.Team2Name,
			}
			if pw, ok := repository.IsPartialWrite(err); ok {
				s.metrics.IncPartialWrite()
				fields["failed_rows"] = pw.FailedRows()
				fields["game_id"] = pw.GameID
			}
			s.logger.WithError(err).WithFields(fields).Warn("比赛合并失败，跳过")
			continue
		}
		switch outcome {
		case outcomeInserted:
			res.Inserted++
		case outcomeUpdated:
			res.Updated++
		default:
			res.Skipped++
		}
	}

	s.metrics.RecordReconcile("games", res.Inserted, res.Updated, res.Skipped, res.Failed)
	s.logger.WithFields(logrus.Fields{
		"date":     res.Date,
		"fetched":  res.Fetched,
		"inserted": res.Inserted,
		"updated":  res.Updated,
		"skipped":  res.Skipped,
		"failed":   res.Failed,
	}).Info("比赛同步完成")
	return res, nil
}

func (s *ReconcileService) fetchGames(ctx context.Context, date *time.Time, res *GameSyncResult) []model.RawGame {
	start := time.Now()
	raws, err := s.source.FetchGames(ctx, date)
	switch {
	case err != nil:
		s.metrics.ObserveFetch(s.source.GetName(), "games", "error", time.Since(start))
		res.SourceError = err.Error()
		s.logger.WithError(err).WithField("source", s.source.GetName()).Warn("拉取比赛失败，按无候选处理")
		return nil
	case len(raws) == 0:
		s.metrics.ObserveFetch(s.source.GetName(), "games", "empty", time.Since(start))
	default:
		s.metrics.ObserveFetch(s.source.GetName(), "games", "ok", time.Since(start))
	}
	return raws
}

// collapseCandidates 校验并转换候选；同一批次内同一场比赛（不论主客顺序）只保留最后一条
func (s *ReconcileService) collapseCandidates(raws []model.RawGame, day time.Time, res *GameSyncResult) []*model.Game {
	var order []string
	byKey := make(map[string]*model.Game, len(raws))
	for i := range raws {
		g, err := raws[i].ToGame(day)
		if err != nil {
			res.Failed++
			s.logger.WithError(err).WithField("index", i).Warn("数据源比赛无效，跳过")
			continue
		}
		key := g.DedupKey()
		if _, seen := byKey[key]; !seen {
			order = append(order, key)
		}
		byKey[key] = g
	}
	out := make([]*model.Game, 0, len(order))
	for _, k := range order {
		out = append(out, byKey[k])
	}
	return out
}

type reconcileOutcome int

const (
	outcomeSkipped reconcileOutcome = iota
	outcomeInserted
	outcomeUpdated
)

func (s *ReconcileService) reconcileGame(ctx context.Context, cand *model.Game, day time.Time, idx *dayIndex) (reconcileOutcome, error) {
	row1, err := s.findTeamRow(ctx, cand.Team1ID, day, cand.Team2Name)
	if err != nil {
		return outcomeSkipped, err
	}
	row2, err := s.findTeamRow(ctx, cand.Team2ID, day, cand.Team1Name)
	if err != nil {
		return outcomeSkipped, err
	}

	var gameID string
	switch {
	case row1 != nil:
		gameID = row1.GameID
	case row2 != nil:
		gameID = row2.GameID
	default:
		if g := idx.byKey[cand.DedupKey()]; g != nil {
			gameID = g.GameID
		}
	}

	if gameID == "" {
		cand.GameID = s.newID()
		if err := s.games.PutGame(ctx, cand); err != nil {
			return outcomeSkipped, err
		}
		idx.add(cand)
		s.notify(ctx, cand)
		return outcomeInserted, nil
	}

	existing := idx.byID[gameID]
	merged := mergeGame(existing, cand, gameID)
	teamRows := map[string]*model.TeamGame{}
	if row1 != nil && row1.GameID == gameID {
		teamRows[cand.Team1ID] = row1
	}
	if row2 != nil && row2.GameID == gameID {
		teamRows[cand.Team2ID] = row2
	}

	rows := staleRows(merged, existing, teamRows)
	if len(rows) == 0 {
		return outcomeSkipped, nil
	}
	if err := s.games.PutGameRows(ctx, merged, rows...); err != nil {
		return outcomeSkipped, err
	}
	idx.add(merged)
	return outcomeUpdated, nil
}

// findTeamRow 在球队分区中找出当天对手为 opponentName 的行
func (s *ReconcileService) findTeamRow(ctx context.Context, teamID string, day time.Time, opponentName string) (*model.TeamGame, error) {
	rows, err := s.games.GetGamesByTeam(ctx, teamID, &repository.DateRange{From: day, To: day})
	if err != nil {
		return nil, fmt.Errorf("读取球队分区失败: %w", err)
	}
	want := model.NormalizeName(opponentName)
	for _, r := range rows {
		if model.NormalizeName(r.OpponentTeamName) == want {
			return r, nil
		}
	}
	return nil, nil
}

// mergeGame 已有行的主客顺序优先，只更新比分、状态和（非空的）集锦链接
func mergeGame(existing, cand *model.Game, gameID string) *model.Game {
	if existing == nil {
		g := *cand
		g.GameID = gameID
		return &g
	}
	g := *existing
	if own, opp, ok := cand.ScoreFor(existing.Team1Name); ok {
		g.Team1Score, g.Team2Score = own, opp
	} else {
		g.Team1Score, g.Team2Score = cand.Team1Score, cand.Team2Score
	}
	g.Stage = cand.Stage
	if cand.HighlightVideoLink != "" {
		g.HighlightVideoLink = cand.HighlightVideoLink
	}
	return &g
}

// staleRows 缺失或内容过期、需要重写的行
func staleRows(target, existing *model.Game, teamRows map[string]*model.TeamGame) []repository.RowKind {
	var rows []repository.RowKind
	if existing == nil || !sameGameRow(existing, target) {
		rows = append(rows, repository.RowByDate)
	}
	views := target.TeamViews()
	if r := teamRows[target.Team1ID]; r == nil || !sameTeamRow(r, &views[0]) {
		rows = append(rows, repository.RowByTeam1)
	}
	if r := teamRows[target.Team2ID]; r == nil || !sameTeamRow(r, &views[1]) {
		rows = append(rows, repository.RowByTeam2)
	}
	return rows
}

func sameGameRow(a, b *model.Game) bool {
	return a.GameID == b.GameID &&
		a.Stage == b.Stage &&
		a.Team1ID == b.Team1ID && a.Team2ID == b.Team2ID &&
		a.Team1Name == b.Team1Name && a.Team2Name == b.Team2Name &&
		a.Team1Score == b.Team1Score && a.Team2Score == b.Team2Score &&
		a.HighlightVideoLink == b.HighlightVideoLink
}

func sameTeamRow(a, b *model.TeamGame) bool {
	return a.GameID == b.GameID &&
		a.OpponentTeamID == b.OpponentTeamID &&
		a.OpponentTeamName == b.OpponentTeamName &&
		a.TeamScore == b.TeamScore &&
		a.OpponentScore == b.OpponentScore &&
		a.HighlightVideoLink == b.HighlightVideoLink
}

func (s *ReconcileService) notify(ctx context.Context, g *model.Game) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyGameInserted(ctx, g); err != nil {
		s.logger.WithError(err).WithField("game_id", g.GameID).Warn("发送收藏球队比赛通知失败")
	}
}

// SyncTeams 拉取积分榜并按 team_name upsert；conference 为空表示全部分区
func (s *ReconcileService) SyncTeams(ctx context.Context, conference string) (*TeamSyncResult, error) {
	if conference != "" {
		if _, ok := model.ParseConference(conference); !ok {
			return nil, fmt.Errorf("%w: %s", model.ErrUnknownConference, conference)
		}
	}
	res := &TeamSyncResult{}
	start := time.Now()
	raws, err := s.source.FetchTeams(ctx, conference)
	if err != nil {
		s.metrics.ObserveFetch(s.source.GetName(), "teams", "error", time.Since(start))
		res.SourceError = err.Error()
		s.logger.WithError(err).WithField("source", s.source.GetName()).Warn("拉取积分榜失败，按无候选处理")
		return res, nil
	}
	result := "ok"
	if len(raws) == 0 {
		result = "empty"
	}
	s.metrics.ObserveFetch(s.source.GetName(), "teams", result, time.Since(start))
	res.Fetched = len(raws)

	type teamUpsert struct {
		team   *model.Team
		fields []string
	}
	var order []string
	byName := make(map[string]teamUpsert, len(raws))
	for i := range raws {
		team, fields, err := raws[i].ToTeam()
		if err != nil {
			if errors.Is(err, model.ErrUnknownConference) {
				res.Skipped++
			} else {
				res.Failed++
			}
			s.logger.WithError(err).WithField("name", raws[i].Name).Warn("数据源球队无效，跳过")
			continue
		}
		if _, seen := byName[team.TeamName]; !seen {
			order = append(order, team.TeamName)
		}
		byName[team.TeamName] = teamUpsert{team: team, fields: fields}
	}

	for _, name := range order {
		u := byName[name]
		if err := s.teams.UpsertTeam(ctx, u.team, u.fields...); err != nil {
			res.Failed++
			s.logger.WithError(err).WithField("team", name).Warn("保存球队失败，跳过")
			continue
		}
		res.Upserted++
	}

	s.metrics.RecordReconcile("teams", 0, res.Upserted, res.Skipped, res.Failed)
	s.logger.WithFields(logrus.Fields{
		"conference": conference,
		"fetched":    res.Fetched,
		"upserted":   res.Upserted,
		"skipped":    res.Skipped,
		"failed":     res.Failed,
	}).Info("积分榜同步完成")
	return res, nil
}

// GamesForDate 先合并数据源，再返回库中该日期的比赛（数据源不可用时即为已有数据）
func (s *ReconcileService) GamesForDate(ctx context.Context, date time.Time) ([]*model.Game, error) {
	if _, err := s.SyncGames(ctx, &date); err != nil {
		s.logger.WithError(err).Warn("同步比赛失败，返回已有数据")
	}
	return s.games.GetGamesByDate(ctx, model.GameDay(date))
}

// GamesForDateRange 单日时走 GamesForDate 合并数据源；多日只读库
func (s *ReconcileService) GamesForDateRange(ctx context.Context, from time.Time, days int) ([]*model.Game, error) {
	if days <= 1 {
		return s.GamesForDate(ctx, from)
	}
	return s.games.GetGamesByDateRange(ctx, model.GameDay(from), days)
}

// Standings 先合并积分榜，再返回库中排名
func (s *ReconcileService) Standings(ctx context.Context, conference string) ([]*model.Team, error) {
	var conf model.Conference
	if conference != "" {
		c, ok := model.ParseConference(conference)
		if !ok {
			return nil, fmt.Errorf("%w: %s", model.ErrUnknownConference, conference)
		}
		conf = c
	}
	if _, err := s.SyncTeams(ctx, conference); err != nil {
		s.logger.WithError(err).Warn("同步积分榜失败，返回已有数据")
	}
	return s.teams.ListStandings(ctx, conf)
}

// dayIndex 一个日期分区的已有比赛，按 game_id 与 DedupKey 索引
type dayIndex struct {
	byID  map[string]*model.Game
	byKey map[string]*model.Game
}

func newDayIndex(games []*model.Game) *dayIndex {
	idx := &dayIndex{
		byID:  make(map[string]*model.Game, len(games)),
		byKey: make(map[string]*model.Game, len(games)),
	}
	for _, g := range games {
		idx.add(g)
	}
	return idx
}

func (i *dayIndex) add(g *model.Game) {
	i.byID[g.GameID] = g
	i.byKey[g.DedupKey()] = g
}
