package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"dhs-academy/backend/internal/dto"
	"dhs-academy/backend/internal/service"
	"dhs-academy/backend/pkg/response"
)

// CurriculumHandler 培训大纲 HTTP 处理器
type CurriculumHandler struct {
	curriculumSvc service.CurriculumService
}

// NewCurriculumHandler 创建 CurriculumHandler
func NewCurriculumHandler(curriculumSvc service.CurriculumService) *CurriculumHandler {
	return &CurriculumHandler{curriculumSvc: curriculumSvc}
}

// GetTree 模块及子模块树
// GET /api/v1/curriculum
func (h *CurriculumHandler) GetTree(c *gin.Context) {
	modules, err := h.curriculumSvc.GetTree(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": modules})
}

// CreateModule 新建模块
// POST /api/v1/curriculum/modules
func (h *CurriculumHandler) CreateModule(c *gin.Context) {
	var req dto.CreateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	module, err := h.curriculumSvc.CreateModule(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleCurriculumError(c, err)
		return
	}

	response.Created(c, module)
}

// UpdateModule 更新模块
// PUT /api/v1/curriculum/modules/:id
func (h *CurriculumHandler) UpdateModule(c *gin.Context) {
	var req dto.UpdateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	module, err := h.curriculumSvc.UpdateModule(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleCurriculumError(c, err)
		return
	}

	response.OK(c, module)
}

// DeleteModule 删除模块（须先删除子模块）
// DELETE /api/v1/curriculum/modules/:id
func (h *CurriculumHandler) DeleteModule(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.curriculumSvc.DeleteModule(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleCurriculumError(c, err)
		return
	}

	response.OK(c, nil)
}

// CreateSubModule 在模块下新建子模块
// POST /api/v1/curriculum/modules/:id/submodules
func (h *CurriculumHandler) CreateSubModule(c *gin.Context) {
	var req dto.CreateSubModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	sub, err := h.curriculumSvc.CreateSubModule(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleCurriculumError(c, err)
		return
	}

	response.Created(c, sub)
}

// UpdateSubModule 更新子模块
// PUT /api/v1/curriculum/submodules/:id
func (h *CurriculumHandler) UpdateSubModule(c *gin.Context) {
	var req dto.UpdateSubModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	sub, err := h.curriculumSvc.UpdateSubModule(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleCurriculumError(c, err)
		return
	}

	response.OK(c, sub)
}

// DeleteSubModule 删除子模块
// DELETE /api/v1/curriculum/submodules/:id
func (h *CurriculumHandler) DeleteSubModule(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.curriculumSvc.DeleteSubModule(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleCurriculumError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *CurriculumHandler) handleCurriculumError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrModuleNotFound):
		response.NotFound(c, 13001, "Module introuvable")
	case errors.Is(err, service.ErrSubModuleNotFound):
		response.NotFound(c, 13002, "Sous-module introuvable")
	case errors.Is(err, service.ErrModuleHasSubModules):
		response.Conflict(c, 13003, "Le module contient encore des sous-modules")
	case errors.Is(err, service.ErrInvalidSubModuleMax):
		response.BadRequest(c, 13004, "La note maximale doit être supérieure à 0")
	case errors.Is(err, service.ErrSubModuleHasScores):
		response.Conflict(c, 13005, "Des notes sont enregistrées pour ce sous-module")
	case errors.Is(err, service.ErrMaxBelowScores):
		response.Conflict(c, 13006, "La note maximale est inférieure à une note déjà enregistrée")
	default:
		response.InternalError(c)
	}
}
