// Package serpapi 基于 SerpAPI（Google 体育卡片）的实时数据源
package serpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"SportsSync/internal/adapter"
	"SportsSync/internal/config"
	"SportsSync/internal/interfaces"
	"SportsSync/internal/model"
	"SportsSync/internal/utils/httpclient"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	SourceName     = "serpapi"
	defaultBaseURL = "https://serpapi.com/search.json"
	maxBodySize    = 4 << 20
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func init() {
	adapter.Register(SourceName, New)
}

type Adapter struct {
	cfg        *config.LiveConfig
	baseURL    string
	httpClient *http.Client
	cache      interfaces.ResponseCache
	logger     *logrus.Logger
	flight     singleflight.Group
	now        func() time.Time
}

// New 创建 SerpAPI 数据源；cache 为 nil 时每次都请求上游
func New(cfg *config.LiveConfig, cache interfaces.ResponseCache, logger *logrus.Logger) (interfaces.LiveIngestSource, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("SERPAPI_API_KEY 未配置")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Adapter{
		cfg:        cfg,
		baseURL:    baseURL,
		httpClient: httpclient.NewHTTPClient(cfg, logger),
		cache:      cache,
		logger:     logger,
		now:        time.Now,
	}, nil
}

func (a *Adapter) GetName() string {
	return SourceName
}

func (a *Adapter) league() string {
	if a.cfg.League == "" {
		return "NBA"
	}
	return a.cfg.League
}

// FetchGames date 为 nil 时查询"今天"的比赛
func (a *Adapter) FetchGames(ctx context.Context, date *time.Time) ([]model.RawGame, error) {
	q := a.league() + " games today"
	if date != nil {
		q = fmt.Sprintf("%s games on %s", a.league(), date.Format(model.DateLayout))
	}
	raw, err := a.search(ctx, q)
	if err != nil {
		return nil, err
	}

	var env gamesEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		a.logger.WithError(err).WithField("q", q).Warn("SerpAPI比赛响应无法解析，按空结果处理")
		return []model.RawGame{}, nil
	}
	if env.Error != "" {
		return nil, fmt.Errorf("SerpAPI返回错误: %s", env.Error)
	}
	if env.SportsResults == nil {
		a.logger.WithField("q", q).Info("SerpAPI响应中没有sports_results")
		return []model.RawGame{}, nil
	}
	games := env.SportsResults.Games
	if games == nil {
		games = []model.RawGame{}
	}
	return games, nil
}

// FetchTeams 积分榜按分区标题归类；无法识别的标题跳过并告警
func (a *Adapter) FetchTeams(ctx context.Context, conference string) ([]model.RawTeam, error) {
	var want model.Conference
	if conference != "" {
		c, ok := model.ParseConference(conference)
		if !ok {
			return nil, fmt.Errorf("%w: %s", model.ErrUnknownConference, conference)
		}
		want = c
	}

	q := a.league() + " standings"
	raw, err := a.search(ctx, q)
	if err != nil {
		return nil, err
	}

	var env standingsEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		a.logger.WithError(err).WithField("q", q).Warn("SerpAPI积分榜响应无法解析，按空结果处理")
		return []model.RawTeam{}, nil
	}
	if env.Error != "" {
		return nil, fmt.Errorf("SerpAPI返回错误: %s", env.Error)
	}
	teams := []model.RawTeam{}
	if env.SportsResults == nil {
		a.logger.WithField("q", q).Info("SerpAPI响应中没有sports_results")
		return teams, nil
	}
	for _, section := range env.SportsResults.Standings {
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

// search 同一查询的并发请求合并为一次；只缓存不带 error 字段的响应
func (a *Adapter) search(ctx context.Context, q string) ([]byte, error) {
	key := SourceName + ":" + strings.ToLower(q)
	if a.cache != nil {
		if raw, ok := a.cache.Get(key); ok {
			if providerError(raw) == "" {
				return raw, nil
			}
			if err := a.cache.Delete(key); err != nil {
				a.logger.WithError(err).Warn("删除响应缓存失败")
			}
		}
	}

	out, err, shared := a.flight.Do(key, func() (interface{}, error) {
		raw, err := a.doRequest(ctx, q)
		if err != nil {
			return nil, err
		}
		if a.cache == nil {
			return raw, nil
		}
		if msg := providerError(raw); msg != "" {
			a.logger.WithFields(logrus.Fields{"q": q, "error": msg}).Warn("SerpAPI返回错误，不写入缓存")
			return raw, nil
		}
		if err := a.cache.Set(key, raw); err != nil {
			a.logger.WithError(err).Warn("写入响应缓存失败")
		}
		return raw, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		a.logger.WithField("q", q).Debug("合并了并发的SerpAPI请求")
	}
	return out.([]byte), nil
}

// providerError 响应信封里的 error 字段；无法解析时返回空串，交给调用方按结构处理
func providerError(raw []byte) string {
	var env struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return ""
	}
	return env.Error
}

func (a *Adapter) doRequest(ctx context.Context, q string) ([]byte, error) {
	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", q)
	params.Set("api_key", a.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("构建请求失败: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := a.now()
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求SerpAPI失败: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("读取SerpAPI响应失败: %w", err)
	}
	a.logger.WithFields(logrus.Fields{
		"q":       q,
		"status":  resp.StatusCode,
		"elapsed": a.now().Sub(start).String(),
	}).Debug("SerpAPI请求完成")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("SerpAPI状态码%d: %s", resp.StatusCode, abbreviate(raw))
	}
	return raw, nil
}

func abbreviate(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
