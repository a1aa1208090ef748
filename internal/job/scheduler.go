package job

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"dhs-academy/backend/config"
	"dhs-academy/backend/internal/repository"
)

// jobTimeout 单次任务执行上限
const jobTimeout = 4 * time.Minute

// Scheduler 定时任务调度器
type Scheduler struct {
	cron   *cron.Cron
	repo   *repository.Repository
	cfg    config.JobConfig
	logger *zap.Logger
}

// NewScheduler 创建调度器并注册全部任务；上一轮未结束时跳过本轮
func NewScheduler(cfg config.JobConfig, repo *repository.Repository, logger *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		repo:   repo,
		cfg:    cfg,
		logger: logger,
	}

	if cfg.LoginCleanupSpec != "" {
		if _, err := s.cron.AddFunc(cfg.LoginCleanupSpec, s.runLoginCleanup); err != nil {
			return nil, fmt.Errorf("注册登录记录清理任务失败: %w", err)
		}
	}
	return s, nil
}

// Start 启动调度（非阻塞）
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("定时任务已启动",
		zap.String("login_cleanup_spec", s.cfg.LoginCleanupSpec),
		zap.Int("retention_days", s.cfg.LoginAttemptRetention),
	)
}

// Stop 停止调度并等待正在执行的任务结束，或直到 ctx 超时
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("等待定时任务结束超时")
	}
}

func (s *Scheduler) runLoginCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := CleanupLoginAttempts(ctx, s.repo.LoginAttempt, s.cfg.LoginAttemptRetention, s.logger); err != nil {
		s.logger.Error("登录记录清理失败", zap.Error(err))
	}
}
