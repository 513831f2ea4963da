package repository

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"SportsSync/internal/model"
)

const (
	playerFields = `uid
		player_id
		name
		position
		season_stats`
	teamRefFields = `uid
			team_id
			name`
	gameFields = `uid
			game_id
			date
			stage
			team1 { uid team_id name }
			team2 { uid team_id name }`
)

// dqlQuery 构造好的查询与变量，变量值一律为字符串（dgo 要求）
type dqlQuery struct {
	Query string
	Vars  map[string]string
}

// buildPlayersQuery 球员列表：存在的筛选条件取交集，没有条件时为 has(player_id)
func buildPlayersQuery(f model.PlayerFilter, offset, limit int) dqlQuery {
	vars := map[string]string{
		"$offset": strconv.Itoa(offset),
		"$limit":  strconv.Itoa(limit),
	}
	params := []string{"$offset: int", "$limit: int"}
	var filters []string
	var blocks []string

	if f.Position != "" {
		params = append(params, "$position: string")
		vars["$position"] = f.Position
		filters = append(filters, "eq(position, $position)")
	}
	if f.TeamID != "" {
		params = append(params, "$team_id: string")
		vars["$team_id"] = f.TeamID
		blocks = append(blocks, "\tvar(func: eq(team_id, $team_id)) { team as uid }\n")
		filters = append(filters, "uid_in(plays_for, uid(team))")
	}
	if len(filters) == 0 {
		filters = append(filters, "has(player_id)")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "query players(%s) {\n", strings.Join(params, ", "))
	for _, blk := range blocks {
		b.WriteString(blk)
	}
	fmt.Fprintf(&b, "\tplayers(func: type(Player), offset: $offset, first: $limit) @filter(%s) {\n", strings.Join(filters, " AND "))
	fmt.Fprintf(&b, "\t\t%s\n", playerFields)
	fmt.Fprintf(&b, "\t\tplays_for @facets(since) {\n\t\t\t%s\n\t\t}\n", teamRefFields)
	b.WriteString("\t}\n}\n")
	return dqlQuery{Query: b.String(), Vars: vars}
}

// buildPlayerQuery 单个球员及其球队、比赛
func buildPlayerQuery(playerID string) dqlQuery {
	var b strings.Builder
	b.WriteString("query player($player_id: string) {\n")
	b.WriteString("\tplayer(func: eq(player_id, $player_id)) @filter(type(Player)) {\n")
	fmt.Fprintf(&b, "\t\t%s\n", playerFields)
	fmt.Fprintf(&b, "\t\tplays_for @facets(since) {\n\t\t\t%s\n\t\t}\n", teamRefFields)
	fmt.Fprintf(&b, "\t\tparticipated_in (orderdesc: date) @facets(stats) {\n\t\t\t%s\n\t\t}\n", gameFields)
	b.WriteString("\t}\n}\n")
	return dqlQuery{Query: b.String(), Vars: map[string]string{"$player_id": playerID}}
}

// buildPlayerGamesQuery 球员参赛记录，dr 两端可选，均缺省时为 has(game_id)
func buildPlayerGamesQuery(playerID string, dr *DateRange) dqlQuery {
	vars := map[string]string{"$player_id": playerID}
	params := []string{"$player_id: string"}
	var filters []string
	if dr != nil && !dr.From.IsZero() {
		params = append(params, "$start: string")
		vars["$start"] = model.GameDay(dr.From).Format(time.RFC3339)
		filters = append(filters, "ge(date, $start)")
	}
	if dr != nil && !dr.To.IsZero() {
		params = append(params, "$end: string")
		// 含当天整天
		vars["$end"] = model.GameDay(dr.To).Add(24*time.Hour - time.Second).Format(time.RFC3339)
		filters = append(filters, "le(date, $end)")
	}
	if len(filters) == 0 {
		filters = append(filters, "has(game_id)")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "query player_games(%s) {\n", strings.Join(params, ", "))
	b.WriteString("\tplayer(func: eq(player_id, $player_id)) @filter(type(Player)) {\n")
	b.WriteString("\t\tuid\n\t\tplayer_id\n")
	fmt.Fprintf(&b, "\t\tparticipated_in (orderdesc: date) @facets(stats) @filter(%s) {\n\t\t\t%s\n\t\t}\n",
		strings.Join(filters, " AND "), gameFields)
	b.WriteString("\t}\n}\n")
	return dqlQuery{Query: b.String(), Vars: vars}
}

// buildPlayerTrendQuery 赛季走势：球员基本信息加按日期倒序的 stats facet，一次往返
func buildPlayerTrendQuery(playerID string) dqlQuery {
	q := `query player_trend($player_id: string) {
	player(func: eq(player_id, $player_id)) @filter(type(Player)) {
		uid
		player_id
		name
		participated_in (orderdesc: date) @facets(stats) {
			game_id
			date
		}
	}
}
`
	return dqlQuery{Query: q, Vars: map[string]string{"$player_id": playerID}}
}

// buildSearchPlayersQuery 名字不区分大小写模糊匹配。
// trigram 索引要求至少 3 个字符，更短时退化为精确匹配
func buildSearchPlayersQuery(name string, limit int) dqlQuery {
	name = strings.TrimSpace(name)
	vars := map[string]string{"$limit": strconv.Itoa(limit)}
	var fn string
	var params string
	if len([]rune(name)) < 3 {
		vars["$name"] = name
		params = "$limit: int, $name: string"
		fn = "eq(name, $name)"
	} else {
		// regexp 不支持变量，需要转义后内联
		pattern := strings.ReplaceAll(regexp.QuoteMeta(name), "/", `\/`)
		params = "$limit: int"
		fn = fmt.Sprintf("regexp(name, /%s/i)", pattern)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "query search_players(%s) {\n", params)
	fmt.Fprintf(&b, "\tplayers(func: %s, first: $limit) @filter(type(Player)) {\n", fn)
	fmt.Fprintf(&b, "\t\t%s\n", playerFields)
	fmt.Fprintf(&b, "\t\tplays_for @facets(since) {\n\t\t\t%s\n\t\t}\n", teamRefFields)
	b.WriteString("\t}\n}\n")
	return dqlQuery{Query: b.String(), Vars: vars}
}

// upsertByKeyQuery upsert 块的查询部分：按唯一键找已有节点绑定到变量 v，q 块回显其 uid
func upsertByKeyQuery(predicate string) string {
	return fmt.Sprintf("query q($key: string) {\n\tv as var(func: eq(%s, $key))\n\tq(func: uid(v)) {\n\t\tuid\n\t}\n}\n", predicate)
}
