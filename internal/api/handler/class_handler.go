package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"dhs-academy/backend/internal/dto"
	"dhs-academy/backend/internal/service"
	"dhs-academy/backend/pkg/response"
)

// ClassHandler 班级 HTTP 处理器
type ClassHandler struct {
	classSvc service.ClassService
}

// NewClassHandler 创建 ClassHandler
func NewClassHandler(classSvc service.ClassService) *ClassHandler {
	return &ClassHandler{classSvc: classSvc}
}

// CreateClass 新建班级（成功后异步推送 Webhook）
// POST /api/v1/classes
func (h *ClassHandler) CreateClass(c *gin.Context) {
	var req dto.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	class, err := h.classSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.Created(c, class)
}

// ListClasses 班级列表
// GET /api/v1/classes
func (h *ClassHandler) ListClasses(c *gin.Context) {
	var req dto.ClassListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.InvalidParams(c)
		return
	}

	list, total, err := h.classSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetClass 班级详情
// GET /api/v1/classes/:id
func (h *ClassHandler) GetClass(c *gin.Context) {
	class, err := h.classSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, class)
}

// UpdateClass 更新班级
// PUT /api/v1/classes/:id
func (h *ClassHandler) UpdateClass(c *gin.Context) {
	var req dto.UpdateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	class, err := h.classSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, class)
}

// DeleteClass 删除班级
// DELETE /api/v1/classes/:id
func (h *ClassHandler) DeleteClass(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.classSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, nil)
}

// AddCandidate 加入候选人
// POST /api/v1/classes/:id/candidates
func (h *ClassHandler) AddCandidate(c *gin.Context) {
	var req dto.ClassMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	class, err := h.classSvc.AddCandidate(c.Request.Context(), c.Param("id"), req.CandidateID, callerID)
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, class)
}

// RemoveCandidate 移出候选人
// DELETE /api/v1/classes/:id/candidates/:candidateId
func (h *ClassHandler) RemoveCandidate(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	class, err := h.classSvc.RemoveCandidate(c.Request.Context(), c.Param("id"), c.Param("candidateId"), callerID)
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, class)
}

// ChangeStatus 结束或取消班级
// PUT /api/v1/classes/:id/status
func (h *ClassHandler) ChangeStatus(c *gin.Context) {
	var req dto.ClassStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	class, err := h.classSvc.ChangeStatus(c.Request.Context(), c.Param("id"), req.Status, callerID)
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, class)
}

func (h *ClassHandler) handleClassError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrClassNotFound):
		response.NotFound(c, 15001, "Classe introuvable")
	case errors.Is(err, service.ErrClassNotActive):
		response.Conflict(c, 15002, "La classe est clôturée")
	case errors.Is(err, service.ErrClassInvalidStatus):
		response.BadRequest(c, 15003, "Changement de statut invalide")
	case errors.Is(err, service.ErrInstructorNotFound):
		response.BadRequest(c, 15004, "Instructeur introuvable ou désactivé")
	case errors.Is(err, service.ErrCandidateAlreadyInClass):
		response.Conflict(c, 15005, "Le candidat fait déjà partie de la classe")
	case errors.Is(err, service.ErrCandidateNotInClass):
		response.NotFound(c, 15006, "Le candidat ne fait pas partie de la classe")
	case errors.Is(err, service.ErrCandidateNotFound):
		response.NotFound(c, 14001, "Candidat introuvable")
	default:
		response.InternalError(c)
	}
}
