package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultPollInterval = 10 * time.Minute

// Poller 定时对当天比赛和积分榜执行一次合并
type Poller struct {
	reconcile *ReconcileService
	interval  time.Duration
	logger    *logrus.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewPoller(reconcile *ReconcileService, interval time.Duration, logger *logrus.Logger) *Poller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Poller{reconcile: reconcile, interval: interval, logger: logger}
}

// Start 后台运行，启动时立即执行一轮；Stop 或 ctx 取消后退出
func (p *Poller) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		p.logger.Infof("定时同步已启动，间隔 %v", p.interval)
		p.runOnce(ctx)
		for {
			select {
			case <-ticker.C:
				p.runOnce(ctx)
			case <-ctx.Done():
				p.logger.Info("定时同步已停止")
				return
			}
		}
	}()
}

func (p *Poller) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

func (p *Poller) runOnce(ctx context.Context) {
	if _, err := p.reconcile.SyncGames(ctx, nil); err != nil {
		p.logger.WithError(err).Warn("定时同步比赛失败")
	}
	if ctx.Err() != nil {
		return
	}
	if _, err := p.reconcile.SyncTeams(ctx, ""); err != nil {
		p.logger.WithError(err).Warn("定时同步积分榜失败")
	}
}
