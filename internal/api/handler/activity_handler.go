package handler

import (
	"github.com/gin-gonic/gin"

	"dhs-academy/backend/internal/dto"
	"dhs-academy/backend/internal/service"
	"dhs-academy/backend/pkg/response"
)

// ActivityHandler 审计日志 HTTP 处理器
type ActivityHandler struct {
	activitySvc service.ActivityService
}

// NewActivityHandler 创建 ActivityHandler
func NewActivityHandler(activitySvc service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activitySvc: activitySvc}
}

// ListLogs 审计日志列表
// GET /api/v1/activity-logs
func (h *ActivityHandler) ListLogs(c *gin.Context) {
	var req dto.ActivityLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.InvalidParams(c)
		return
	}

	logs, total, err := h.activitySvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, logs, total, req.GetPage(), req.GetPageSize())
}
