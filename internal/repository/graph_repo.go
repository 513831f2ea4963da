package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"SportsSync/internal/model"

	"github.com/dgraph-io/dgo/v230"
	"github.com/dgraph-io/dgo/v230/protos/api"
)

// GraphRepository 球员/球队/比赛关系图（Dgraph）
type GraphRepository interface {
	ApplySchema(ctx context.Context) error
	UpsertPlayer(ctx context.Context, player *model.Player) (string, error)
	UpsertTeamNode(ctx context.Context, teamID, name string) (string, error)
	UpsertGameNode(ctx context.Context, game *model.Game, team1UID, team2UID string) (string, error)
	// LinkPlayerToTeam 追加 plays_for 边，不删除历史边
	LinkPlayerToTeam(ctx context.Context, playerUID, teamUID string, since time.Time) error
	RecordParticipation(ctx context.Context, playerUID, gameUID, stats string) error
	QueryPlayers(ctx context.Context, filter model.PlayerFilter, offset, limit int) ([]model.Player, error)
	SearchPlayers(ctx context.Context, name string, limit int) ([]model.Player, error)
	GetPlayer(ctx context.Context, playerID string) (*model.Player, error)
	QueryPlayerGames(ctx context.Context, playerID string, dr *DateRange) ([]model.PlayerGame, error)
	// PlayerTrend 球员及其按日期倒序的 participated_in（带 stats），不存在时返回 ErrNotFound
	PlayerTrend(ctx context.Context, playerID string) (*model.Player, error)
	// ExecuteQuery 只读事务执行任意 DQL，按顶层 block 名返回原始 JSON
	ExecuteQuery(ctx context.Context, query string, vars map[string]string) (map[string]json.RawMessage, error)
}

type graphRepository struct {
	client dgraphClient
}

func NewGraphRepository(dg *dgo.Dgraph) GraphRepository {
	return &graphRepository{client: dgoClient{dg: dg}}
}

func (r *graphRepository) ApplySchema(ctx context.Context) error {
	if err := r.client.alter(ctx, &api.Operation{Schema: graphSchema}); err != nil {
		return fmt.Errorf("初始化Dgraph schema失败: %w", err)
	}
	return nil
}

func (r *graphRepository) ExecuteQuery(ctx context.Context, query string, vars map[string]string) (map[string]json.RawMessage, error) {
	txn := r.client.newReadOnlyTxn()
	defer func() { _ = txn.Discard(ctx) }()

	resp, err := txn.QueryWithVars(ctx, query, vars)
	if err != nil {
		return nil, fmt.Errorf("执行DQL查询失败: %w", err)
	}
	out := map[string]json.RawMessage{}
	if len(resp.GetJson()) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(resp.GetJson(), &out); err != nil {
		return nil, fmt.Errorf("解析DQL结果失败: %w", err)
	}
	return out, nil
}

func (r *graphRepository) run(ctx context.Context, q dqlQuery, block string, dest interface{}) error {
	res, err := r.ExecuteQuery(ctx, q.Query, q.Vars)
	if err != nil {
		return err
	}
	raw, ok := res[block]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("解析%s失败: %w", block, err)
	}
	return nil
}

func (r *graphRepository) QueryPlayers(ctx context.Context, filter model.PlayerFilter, offset, limit int) ([]model.Player, error) {
	offset, limit = normalizePage(offset, limit)
	var players []model.Player
	if err := r.run(ctx, buildPlayersQuery(filter, offset, limit), "players", &players); err != nil {
		return nil, err
	}
	return players, nil
}

func (r *graphRepository) SearchPlayers(ctx context.Context, name string, limit int) ([]model.Player, error) {
	_, limit = normalizePage(0, limit)
	var players []model.Player
	if err := r.run(ctx, buildSearchPlayersQuery(name, limit), "players", &players); err != nil {
		return nil, err
	}
	return players, nil
}

func (r *graphRepository) GetPlayer(ctx context.Context, playerID string) (*model.Player, error) {
	return r.onePlayer(ctx, buildPlayerQuery(playerID))
}

func (r *graphRepository) QueryPlayerGames(ctx context.Context, playerID string, dr *DateRange) ([]model.PlayerGame, error) {
	p, err := r.onePlayer(ctx, buildPlayerGamesQuery(playerID, dr))
	if err != nil {
		return nil, err
	}
	return p.ParticipatedIn, nil
}

func (r *graphRepository) PlayerTrend(ctx context.Context, playerID string) (*model.Player, error) {
	return r.onePlayer(ctx, buildPlayerTrendQuery(playerID))
}

func (r *graphRepository) onePlayer(ctx context.Context, q dqlQuery) (*model.Player, error) {
	var players []model.Player
	if err := r.run(ctx, q, "player", &players); err != nil {
		return nil, err
	}
	if len(players) == 0 {
		return nil, ErrNotFound
	}
	return &players[0], nil
}

func (r *graphRepository) UpsertPlayer(ctx context.Context, player *model.Player) (string, error) {
	if strings.TrimSpace(player.PlayerID) == "" {
		return "", errors.New("player_id 不能为空")
	}
	doc := map[string]interface{}{
		"uid":          "uid(v)",
		"dgraph.type":  "Player",
		"player_id":    player.PlayerID,
		"name":         player.Name,
		"position":     player.Position,
		"season_stats": player.SeasonStats,
	}
	uid, err := r.upsert(ctx, "player_id", player.PlayerID, doc)
	if err != nil {
		return "", fmt.Errorf("写入球员%s失败: %w", player.PlayerID, err)
	}
	player.UID = uid
	return uid, nil
}

func (r *graphRepository) UpsertTeamNode(ctx context.Context, teamID, name string) (string, error) {
	doc := map[string]interface{}{
		"uid":         "uid(v)",
		"dgraph.type": "Team",
		"team_id":     teamID,
		"name":        name,
	}
	uid, err := r.upsert(ctx, "team_id", teamID, doc)
	if err != nil {
		return "", fmt.Errorf("写入球队节点%s失败: %w", name, err)
	}
	return uid, nil
}

// UpsertGameNode 写入比赛节点，并在两支球队上追加 competed_in 边
func (r *graphRepository) UpsertGameNode(ctx context.Context, game *model.Game, team1UID, team2UID string) (string, error) {
	doc := []map[string]interface{}{
		{
			"uid":         "uid(v)",
			"dgraph.type": "Game",
			"game_id":     game.GameID,
			"date":        model.GameDay(game.Date).Format(time.RFC3339),
			"stage":       game.Stage,
			"team1_score": game.Team1Score,
			"team2_score": game.Team2Score,
			"team1":       map[string]string{"uid": team1UID},
			"team2":       map[string]string{"uid": team2UID},
		},
		{"uid": team1UID, "competed_in": []map[string]string{{"uid": "uid(v)"}}},
		{"uid": team2UID, "competed_in": []map[string]string{{"uid": "uid(v)"}}},
	}
	uid, err := r.upsert(ctx, "game_id", game.GameID, doc)
	if err != nil {
		return "", fmt.Errorf("写入比赛节点%s失败: %w", game.GameID, err)
	}
	return uid, nil
}

func (r *graphRepository) LinkPlayerToTeam(ctx context.Context, playerUID, teamUID string, since time.Time) error {
	doc := []map[string]interface{}{
		{
			"uid": playerUID,
			"plays_for": []map[string]string{{
				"uid":             teamUID,
				"plays_for|since": since.UTC().Format(time.RFC3339),
			}},
		},
		{"uid": teamUID, "has_players": []map[string]string{{"uid": playerUID}}},
	}
	return r.mutate(ctx, doc)
}

func (r *graphRepository) RecordParticipation(ctx context.Context, playerUID, gameUID, stats string) error {
	doc := []map[string]interface{}{
		{
			"uid": playerUID,
			"participated_in": []map[string]string{{
				"uid":                   gameUID,
				"participated_in|stats": stats,
			}},
		},
		{"uid": gameUID, "players": []map[string]string{{"uid": playerUID}}},
	}
	return r.mutate(ctx, doc)
}

func (r *graphRepository) mutate(ctx context.Context, doc interface{}) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	txn := r.client.newTxn()
	defer func() { _ = txn.Discard(ctx) }()

	if _, err := txn.Mutate(ctx, &api.Mutation{SetJson: body, CommitNow: true}); err != nil {
		return fmt.Errorf("Dgraph写入失败: %w", err)
	}
	return nil
}

// upsert 以 predicate=key 为唯一键执行 upsert 块，返回节点 uid
func (r *graphRepository) upsert(ctx context.Context, predicate, key string, doc interface{}) (string, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	txn := r.client.newTxn()
	defer func() { _ = txn.Discard(ctx) }()

	resp, err := txn.Do(ctx, &api.Request{
		Query:     upsertByKeyQuery(predicate),
		Vars:      map[string]string{"$key": key},
		Mutations: []*api.Mutation{{SetJson: body}},
		CommitNow: true,
	})
	if err != nil {
		return "", err
	}

	// 已存在时从查询结果取 uid，新建时从 Uids 取
	var existing struct {
		Q []struct {
			UID string `json:"uid"`
		} `json:"q"`
	}
	if len(resp.GetJson()) > 0 {
		if err := json.Unmarshal(resp.GetJson(), &existing); err != nil {
			return "", fmt.Errorf("解析upsert结果失败: %w", err)
		}
		if len(existing.Q) > 0 && existing.Q[0].UID != "" {
			return existing.Q[0].UID, nil
		}
	}
	if uid := resp.GetUids()["uid(v)"]; uid != "" {
		return uid, nil
	}
	return "", errors.New("upsert 未返回 uid")
}

func normalizePage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	return offset, limit
}
