package model

import (
	"strings"
	"time"
)

// Conference 分区枚举
type Conference string

const (
	ConferenceEastern Conference = "EASTERN"
	ConferenceWestern Conference = "WESTERN"
)

// ParseConference 按固定词表把自由文本（如分区标题 "Western Conference"）映射为分区枚举
// 含 eastern/east → EASTERN，含 western/west → WESTERN；其他返回 false
func ParseConference(text string) (Conference, bool) {
	s := strings.ToLower(strings.TrimSpace(text))
	switch {
	case s == "":
		return "", false
	case strings.Contains(s, "eastern"), strings.Contains(s, "east"):
		return ConferenceEastern, true
	case strings.Contains(s, "western"), strings.Contains(s, "west"):
		return ConferenceWestern, true
	}
	return "", false
}

// Team 球队战绩文档（以 team_name 唯一）
type Team struct {
	ID          uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TeamID      string     `gorm:"column:team_id;type:varchar(64);index;not null" json:"team_id"`
	TeamName    string     `gorm:"column:team_name;type:varchar(128);uniqueIndex;not null" json:"team_name"`
	Conference  Conference `gorm:"column:conference;type:varchar(16);not null;index:idx_teams_conference_position,priority:1" json:"conference"`
	Position    int        `gorm:"column:position;type:int;not null;index:idx_teams_conference_position,priority:2" json:"position"`
	Wins        int        `gorm:"column:wins;type:int;default:0" json:"wins"`
	Losses      int        `gorm:"column:losses;type:int;default:0" json:"losses"`
	GamesBehind float64    `gorm:"column:games_behind;type:numeric(6,1);default:0" json:"games_behind"`
	ConfRecord  string     `gorm:"column:conf_record;type:varchar(16)" json:"conf_record"`
	HomeRecord  string     `gorm:"column:home_record;type:varchar(16)" json:"home_record"`
	AwayRecord  string     `gorm:"column:away_record;type:varchar(16)" json:"away_record"`
	Last10      string     `gorm:"column:last_10;type:varchar(16)" json:"last_10"`
	Streak      string     `gorm:"column:streak;type:varchar(32)" json:"streak"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Team) TableName() string { return "teams" }

// TeamMutableColumns upsert 时可被覆盖的战绩字段
var TeamMutableColumns = []string{
	"team_id", "conference", "position", "wins", "losses", "games_behind",
	"conf_record", "home_record", "away_record", "last_10", "streak", "updated_at",
}
