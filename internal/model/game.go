package model

import (
	"fmt"
	"time"
)

// DateLayout 比赛日期格式（只到天）
const DateLayout = "2006-01-02"

// DefaultStage 数据源未给出状态时的默认值
const DefaultStage = "SCHEDULED"

// Game 比赛（gamedetails 按日期分区视图的一行）
// 业务唯一键为 (date, team1_name, team2_name)，game_id 为代理键
type Game struct {
	Date               time.Time `json:"date"`
	GameID             string    `json:"game_id"`
	Stage              string    `json:"stage"`
	Team1ID            string    `json:"team1_id"`
	Team1Name          string    `json:"team1_name"`
	Team1Score         int       `json:"team1_score"`
	Team2ID            string    `json:"team2_id"`
	Team2Name          string    `json:"team2_name"`
	Team2Score         int       `json:"team2_score"`
	HighlightVideoLink string    `json:"highlight_video_link,omitempty"`
}

// TeamGame teamgames 按球队分区视图的一行（对手视角已展开）
type TeamGame struct {
	TeamID             string    `json:"team_id"`
	Date               time.Time `json:"date"`
	GameID             string    `json:"game_id"`
	OpponentTeamID     string    `json:"opponent_team_id"`
	OpponentTeamName   string    `json:"opponent_team_name"`
	TeamScore          int       `json:"team_score"`
	OpponentScore      int       `json:"opponent_score"`
	HighlightVideoLink string    `json:"highlight_video_link,omitempty"`
}

// GameDay 截断到 UTC 零点，作为日期分区键
func GameDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseGameDay 解析 2006-01-02 格式日期
func ParseGameDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("日期格式错误(%s): %w", s, err)
	}
	return t, nil
}

// DedupKey 业务唯一键：日期 + 双方规范化队名
func (g *Game) DedupKey() string {
	return DedupKey(g.Date, g.Team1Name, g.Team2Name)
}

// DedupKey 同场比赛判定键，与主客顺序无关
func DedupKey(date time.Time, team1, team2 string) string {
	n1, n2 := NormalizeName(team1), NormalizeName(team2)
	if n2 < n1 {
		n1, n2 = n2, n1
	}
	return GameDay(date).Format(DateLayout) + "|" + n1 + "|" + n2
}

// Validate 入库前校验
func (g *Game) Validate() error {
	switch {
	case g.GameID == "":
		return fmt.Errorf("%w: game_id 为空", ErrInvalidGame)
	case g.Date.IsZero():
		return fmt.Errorf("%w: date 为空", ErrInvalidGame)
	case g.Team1ID == "" || g.Team2ID == "":
		return fmt.Errorf("%w: team id 为空", ErrInvalidGame)
	case g.Team1ID == g.Team2ID:
		return fmt.Errorf("%w: 双方为同一支球队 %s", ErrInvalidGame, g.Team1Name)
	case g.Team1Score < 0 || g.Team2Score < 0:
		return fmt.Errorf("%w: 比分不能为负", ErrInvalidGame)
	}
	return nil
}

// TeamViews 展开为两条 teamgames 行：[0] 属于 team1，[1] 属于 team2
// 每行存对手的 id/名称，team_score 为本队得分
func (g *Game) TeamViews() [2]TeamGame {
	day := GameDay(g.Date)
	return [2]TeamGame{
		{
			TeamID:             g.Team1ID,
			Date:               day,
			GameID:             g.GameID,
			OpponentTeamID:     g.Team2ID,
			OpponentTeamName:   g.Team2Name,
			TeamScore:          g.Team1Score,
			OpponentScore:      g.Team2Score,
			HighlightVideoLink: g.HighlightVideoLink,
		},
		{
			TeamID:             g.Team2ID,
			Date:               day,
			GameID:             g.GameID,
			OpponentTeamID:     g.Team1ID,
			OpponentTeamName:   g.Team1Name,
			TeamScore:          g.Team2Score,
			OpponentScore:      g.Team1Score,
			HighlightVideoLink: g.HighlightVideoLink,
		},
	}
}

// ScoreFor 按球队名取本场得分及对手得分；队名不属于本场时 ok=false
func (g *Game) ScoreFor(teamName string) (own, opponent int, ok bool) {
	n := NormalizeName(teamName)
	switch n {
	case NormalizeName(g.Team1Name):
		return g.Team1Score, g.Team2Score, true
	case NormalizeName(g.Team2Name):
		return g.Team2Score, g.Team1Score, true
	}
	return 0, 0, false
}
