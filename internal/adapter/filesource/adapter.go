// Package filesource 从本地 JSON 文件读取比赛与积分榜，用于离线回放和联调
package filesource

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"SportsSync/internal/adapter"
	"SportsSync/internal/config"
	"SportsSync/internal/interfaces"
	"SportsSync/internal/model"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

const SourceName = "file"

func init() {
	adapter.Register(SourceName, New)
}

// fixture 文件结构：games 按日期(2006-01-02)分组，standings 与 SerpAPI 分区形态一致
type fixture struct {
	Games     map[string][]model.RawGame `json:"games"`
	Standings []struct {
		Title string          `json:"title"`
		Teams []model.RawTeam `json:"teams"`
	} `json:"standings"`
}

type Adapter struct {
	path   string
	logger *logrus.Logger
	now    func() time.Time
}

func New(cfg *config.LiveConfig, _ interfaces.ResponseCache, logger *logrus.Logger) (interfaces.LiveIngestSource, error) {
	if cfg.FilePath == "" {
		return nil, errors.New("live.file_path 未配置")
	}
	return &Adapter{path: cfg.FilePath, logger: logger, now: time.Now}, nil
}

func (a *Adapter) GetName() string { return SourceName }

// load 每次调用都重新读取文件，便于联调时直接修改
func (a *Adapter) load() (*fixture, error) {
	raw, err := os.ReadFile(a.path)
	if err != nil {
		return nil, fmt.Errorf("读取数据文件失败: %w", err)
	}
	var f fixture
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(raw, &f); err != nil {
		a.logger.WithError(err).WithField("path", a.path).Warn("数据文件格式无法识别，按空结果处理")
		return &fixture{}, nil
	}
	return &f, nil
}

func (a *Adapter) FetchGames(_ context.Context, date *time.Time) ([]model.RawGame, error) {
	f, err := a.load()
	if err != nil {
		return nil, err
	}
	day := a.now().UTC()
	if date != nil {
		day = *date
	}
	games := f.Games[model.GameDay(day).Format(model.DateLayout)]
	if games == nil {
		games = []model.RawGame{}
	}
	return games, nil
}

func (a *Adapter) FetchTeams(_ context.Context, conference string) ([]model.RawTeam, error) {
	var want model.Conference
	if conference != "" {
		c, ok := model.ParseConference(conference)
		if !ok {
			return nil, fmt.Errorf("%w: %s", model.ErrUnknownConference, conference)
		}
		want = c
	}
	f, err := a.load()
	if err != nil {
		return nil, err
	}
	teams := []model.RawTeam{}
	for _, section := range f.Standings {
		conf, ok := model.ParseConference(section.Title)
		if !ok {
			a.logger.WithField("title", section.Title).Warn("无法识别的积分榜分区，已跳过")
			continue
		}
		if want != "" && conf != want {
			continue
		}
		for _, t := range section.Teams {
			if t.Conference == "" {
				t.Conference = section.Title
			}
			teams = append(teams, t)
		}
	}
	return teams, nil
}
