package job

import (
	"context"
	"time"

	"go.uber.org/zap"

	"dhs-academy/backend/internal/repository"
)

// defaultRetentionDays 配置缺失或非法时的保留天数
const defaultRetentionDays = 30

// CleanupLoginAttempts 删除早于保留期的登录尝试记录，返回删除行数
//
// 调度器与 dhsctl cleanup-logins 共用
func CleanupLoginAttempts(ctx context.Context, repo repository.LoginAttemptRepository, retentionDays int, logger *zap.Logger) (int64, error) {
	if retentionDays <= 0 {
		retentionDays = defaultRetentionDays
	}
	before := time.Now().AddDate(0, 0, -retentionDays)

	deleted, err := repo.DeleteBefore(ctx, before)
	if err != nil {
		return 0, err
	}

	logger.Info("登录记录清理完成",
		zap.Int64("deleted", deleted),
		zap.Time("before", before),
	)
	return deleted, nil
}
