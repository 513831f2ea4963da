package model

import "time"

// Player 图库中的球员节点（字段名与 Dgraph 谓词一致）
type Player struct {
	UID            string       `json:"uid,omitempty"`
	PlayerID       string       `json:"player_id"`
	Name           string       `json:"name"`
	Position       string       `json:"position"`
	SeasonStats    string       `json:"season_stats,omitempty"` // 赛季数据，序列化后的不透明字符串
	PlaysFor       []PlayerTeam `json:"plays_for,omitempty"`
	ParticipatedIn []PlayerGame `json:"participated_in,omitempty"`
}

// PlayerTeam plays_for 边及其 since facet
type PlayerTeam struct {
	UID    string     `json:"uid,omitempty"`
	TeamID string     `json:"team_id,omitempty"`
	Name   string     `json:"name,omitempty"`
	Since  *time.Time `json:"plays_for|since,omitempty"`
}

// PlayerGame participated_in 边及其 stats facet
type PlayerGame struct {
	UID    string        `json:"uid,omitempty"`
	GameID string        `json:"game_id,omitempty"`
	Date   *time.Time    `json:"date,omitempty"`
	Stage  string        `json:"stage,omitempty"`
	Team1  *GraphTeamRef `json:"team1,omitempty"`
	Team2  *GraphTeamRef `json:"team2,omitempty"`
	Stats  string        `json:"participated_in|stats,omitempty"`
}

// GraphTeamRef 比赛节点上的球队引用
type GraphTeamRef struct {
	UID    string `json:"uid,omitempty"`
	TeamID string `json:"team_id,omitempty"`
	Name   string `json:"name,omitempty"`
}

// PlayerFilter 球员列表筛选，空值表示不过滤
type PlayerFilter struct {
	Position string
	TeamID   string
}

// CurrentTeam 当前效力球队：since 最晚的那条 plays_for 边（图库不维护，由调用方判断）
func (p *Player) CurrentTeam() *PlayerTeam {
	var cur *PlayerTeam
	for i := range p.PlaysFor {
		t := &p.PlaysFor[i]
		if cur == nil {
			cur = t
			continue
		}
		switch {
		case t.Since == nil:
		case cur.Since == nil, t.Since.After(*cur.Since):
			cur = t
		}
	}
	return cur
}
