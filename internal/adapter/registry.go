package adapter

import (
	"fmt"

	"SportsSync/internal/config"
	"SportsSync/internal/interfaces"

	"github.com/sirupsen/logrus"
)

// NewLiveSource 按 cfg.Source 从工厂注册表创建数据源。
// 对应的数据源包需要被导入（init 中注册）
func NewLiveSource(cfg *config.LiveConfig, cache interfaces.ResponseCache, logger *logrus.Logger) (interfaces.LiveIngestSource, error) {
	factory, ok := GetFactory(cfg.Source)
	if !ok {
		return nil, fmt.Errorf("未找到数据源%s的工厂函数（已注册：%v）", cfg.Source, ListFactories())
	}
	src, err := factory(cfg, cache, logger)
	if err != nil {
		return nil, fmt.Errorf("初始化数据源%s失败: %w", cfg.Source, err)
	}
	if src == nil {
		return nil, fmt.Errorf("数据源%s的工厂函数返回nil", cfg.Source)
	}
	logger.WithFields(logrus.Fields{
		"source": src.GetName(),
		"league": cfg.League,
	}).Info("实时数据源初始化成功")
	return src, nil
}
