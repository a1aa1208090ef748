package errors

import "errors"

// ErrStaleState 条件更新未命中：记录状态已被其他操作修改（如邀请已使用、参赛已批改）
var ErrStaleState = errors.New("记录状态已被其他操作修改，请刷新后重试")
