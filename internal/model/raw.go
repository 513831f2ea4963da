package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FlexString 兼容数据源里数字/字符串混用的字段（如 "score": 102 或 "score": "102"）
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	*f = FlexString(data)
	return nil
}

// RawGameTeam 原始比赛中的一方
type RawGameTeam struct {
	Name  string     `json:"name"`
	Score FlexString `json:"score"`
}

// RawHighlights 原始集锦
type RawHighlights struct {
	Link string `json:"link"`
}

// RawGame 数据源返回的非结构化比赛
type RawGame struct {
	Teams           []RawGameTeam  `json:"teams"`
	Stage           string         `json:"stage"`
	VideoHighlights *RawHighlights `json:"video_highlights,omitempty"`
}

// RawTeam 数据源返回的原始战绩行，全部为字符串
type RawTeam struct {
	Position    FlexString `json:"pos"`
	Name        string     `json:"name"`
	Conference  string     `json:"conference"` // 分区标题原文
	Wins        FlexString `json:"w"`
	Losses      FlexString `json:"l"`
	GamesBehind FlexString `json:"gb"`
	ConfRecord  string     `json:"conf"`
	HomeRecord  string     `json:"home"`
	AwayRecord  string     `json:"away"`
	Last10      string     `json:"l10"`
	Streak      string     `json:"strk"`
}

// ToGame 转换为比赛；game_id 由调用方在去重后分配
func (r *RawGame) ToGame(date time.Time) (*Game, error) {
	if len(r.Teams) < 2 {
		return nil, fmt.Errorf("%w: 需要两支球队，实际%d", ErrInvalidRawGame, len(r.Teams))
	}
	t1, t2 := r.Teams[0], r.Teams[1]
	name1, name2 := CleanName(t1.Name), CleanName(t2.Name)
	if name1 == "" || name2 == "" {
		return nil, fmt.Errorf("%w: 队名为空", ErrInvalidRawGame)
	}
	if NormalizeName(name1) == NormalizeName(name2) {
		return nil, fmt.Errorf("%w: 双方队名相同 %s", ErrInvalidRawGame, name1)
	}
	s1, err := parseScore(t1.Score)
	if err != nil {
		return nil, fmt.Errorf("%w: %s 比分: %v", ErrInvalidRawGame, name1, err)
	}
	s2, err := parseScore(t2.Score)
	if err != nil {
		return nil, fmt.Errorf("%w: %s 比分: %v", ErrInvalidRawGame, name2, err)
	}
	stage := strings.TrimSpace(r.Stage)
	if stage == "" {
		stage = DefaultStage
	}
	g := &Game{
		Date:       GameDay(date),
		Stage:      stage,
		Team1ID:    TeamID(name1),
		Team1Name:  name1,
		Team1Score: s1,
		Team2ID:    TeamID(name2),
		Team2Name:  name2,
		Team2Score: s2,
	}
	if r.VideoHighlights != nil {
		g.HighlightVideoLink = strings.TrimSpace(r.VideoHighlights.Link)
	}
	return g, nil
}

// 缺失比分按0处理（未开赛）
func parseScore(v FlexString) (int, error) {
	s := strings.TrimSpace(string(v))
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("比分为负: %d", n)
	}
	return n, nil
}

// ToTeam 转换为球队文档；分区按词表规范化，无法识别时返回 ErrUnknownConference
// 空字段视为未提供，不参与 upsert 覆盖；fields 为实际出现的列
func (r *RawTeam) ToTeam() (*Team, []string, error) {
	name := CleanName(r.Name)
	if name == "" {
		return nil, nil, fmt.Errorf("%w: 队名为空", ErrInvalidRawTeam)
	}
	conf, ok := ParseConference(r.Conference)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q (%s)", ErrUnknownConference, r.Conference, name)
	}
	team := &Team{TeamID: TeamID(name), TeamName: name, Conference: conf}
	fields := []string{"team_id", "conference"}

	counts := []struct {
		v      FlexString
		column string
		label  string
		dst    *int
		min    int
	}{
		{r.Position, "position", "排名", &team.Position, 1},
		{r.Wins, "wins", "胜场", &team.Wins, 0},
		{r.Losses, "losses", "负场", &team.Losses, 0},
	}
	for _, c := range counts {
		if isBlank(c.v) {
			continue
		}
		n, err := parseCount(c.v)
		if err != nil || n < c.min {
			return nil, nil, fmt.Errorf("%w: %s %s %q", ErrInvalidRawTeam, name, c.label, c.v)
		}
		*c.dst = n
		fields = append(fields, c.column)
	}
	if !isBlank(r.GamesBehind) {
		gb, err := ParseGamesBehind(string(r.GamesBehind))
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s 胜差 %q", ErrInvalidRawTeam, name, r.GamesBehind)
		}
		team.GamesBehind = gb
		fields = append(fields, "games_behind")
	}

	records := []struct {
		v      string
		column string
		dst    *string
	}{
		{r.ConfRecord, "conf_record", &team.ConfRecord},
		{r.HomeRecord, "home_record", &team.HomeRecord},
		{r.AwayRecord, "away_record", &team.AwayRecord},
		{r.Last10, "last_10", &team.Last10},
		{r.Streak, "streak", &team.Streak},
	}
	for _, rec := range records {
		if v := strings.TrimSpace(rec.v); v != "" {
			*rec.dst = v
			fields = append(fields, rec.column)
		}
	}
	return team, append(fields, "updated_at"), nil
}

func isBlank(v FlexString) bool {
	return strings.TrimSpace(string(v)) == ""
}

func parseCount(v FlexString) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(string(v)))
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("不能为负: %d", n)
	}
	return n, nil
}

// ParseGamesBehind 胜差；榜首为 "-" 或空，按0处理
func ParseGamesBehind(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" || s == "—" {
		return 0, nil
	}
	gb, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if gb < 0 {
		return 0, fmt.Errorf("胜差为负: %v", gb)
	}
	return gb, nil
}
