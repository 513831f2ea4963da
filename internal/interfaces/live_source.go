package interfaces

import (
	"context"
	"time"

	"SportsSync/internal/config"
	"SportsSync/internal/model"

	"github.com/sirupsen/logrus"
)

// LiveIngestSource 实时比赛/积分榜数据源。
// 返回的是未校验的原始记录；响应结构无法识别时返回空切片和 nil，而不是错误
type LiveIngestSource interface {
	// GetName 数据源名称（日志与指标标签）
	GetName() string
	// FetchGames 拉取指定日期的比赛，date 为 nil 时由数据源决定（通常为当天）
	FetchGames(ctx context.Context, date *time.Time) ([]model.RawGame, error)
	// FetchTeams 拉取积分榜，conference 为空时返回全部分区
	FetchTeams(ctx context.Context, conference string) ([]model.RawTeam, error)
}

// ResponseCache 数据源原始响应缓存，未命中返回 false
type ResponseCache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
	Delete(key string) error
}

// Factory 数据源工厂函数签名；cache 可为 nil
type Factory func(cfg *config.LiveConfig, cache ResponseCache, logger *logrus.Logger) (LiveIngestSource, error)
