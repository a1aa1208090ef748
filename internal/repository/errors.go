package repository

import (
	"gorm.io/gorm"

	pkgerrors "dhs-academy/backend/pkg/errors"
)

// affected 将条件更新的影响行数转换为错误：0 行即状态已变化
func affected(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrStaleState
	}
	return nil
}
