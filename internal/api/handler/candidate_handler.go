package handler

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"dhs-academy/backend/internal/dto"
	"dhs-academy/backend/internal/service"
	"dhs-academy/backend/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CandidateHandler 候选人、评分与认证 HTTP 处理器
type CandidateHandler struct {
	candidateSvc service.CandidateService
	exportSvc    service.ExportService
}

// NewCandidateHandler 创建 CandidateHandler
func NewCandidateHandler(candidateSvc service.CandidateService, exportSvc service.ExportService) *CandidateHandler {
	return &CandidateHandler{candidateSvc: candidateSvc, exportSvc: exportSvc}
}

// CreateCandidate 新建候选人
// POST /api/v1/candidates
func (h *CandidateHandler) CreateCandidate(c *gin.Context) {
	var req dto.CreateCandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	candidate, err := h.candidateSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleCandidateError(c, err)
		return
	}

	response.Created(c, candidate)
}

// ListCandidates 候选人列表
// GET /api/v1/candidates
func (h *CandidateHandler) ListCandidates(c *gin.Context) {
	var req dto.CandidateListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.InvalidParams(c)
		return
	}

	list, total, err := h.candidateSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetCandidate 候选人详情
// GET /api/v1/candidates/:id
func (h *CandidateHandler) GetCandidate(c *gin.Context) {
	candidate, err := h.candidateSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleCandidateError(c, err)
		return
	}

	response.OK(c, candidate)
}

// UpdateCandidate 更新候选人
// PUT /api/v1/candidates/:id
func (h *CandidateHandler) UpdateCandidate(c *gin.Context) {
	var req dto.UpdateCandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	candidate, err := h.candidateSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleCandidateError(c, err)
		return
	}

	response.OK(c, candidate)
}

// DeleteCandidate 删除候选人（软删除）
// DELETE /api/v1/candidates/:id
func (h *CandidateHandler) DeleteCandidate(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.candidateSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleCandidateError(c, err)
		return
	}

	response.OK(c, nil)
}

// GetProgress 候选人进度明细
// GET /api/v1/candidates/:id/progress
func (h *CandidateHandler) GetProgress(c *gin.Context) {
	progress, err := h.candidateSvc.Progress(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleCandidateError(c, err)
		return
	}

	response.OK(c, progress)
}

// ListScores 候选人评分
// GET /api/v1/candidates/:id/scores
func (h *CandidateHandler) ListScores(c *gin.Context) {
	scores, err := h.candidateSvc.ListScores(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleCandidateError(c, err)
		return
	}

	response.OK(c, gin.H{"list": scores})
}

// RecordScore 录入或覆盖子模块评分
// PUT /api/v1/candidates/:id/scores
func (h *CandidateHandler) RecordScore(c *gin.Context) {
	var req dto.RecordScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	score, err := h.candidateSvc.RecordScore(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleCandidateError(c, err)
		return
	}

	response.OK(c, score)
}

// DeleteScore 删除子模块评分
// DELETE /api/v1/candidates/:id/scores/:subModuleId
func (h *CandidateHandler) DeleteScore(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.candidateSvc.DeleteScore(c.Request.Context(), c.Param("id"), c.Param("subModuleId"), callerID); err != nil {
		h.handleCandidateError(c, err)
		return
	}

	response.OK(c, nil)
}

// SetAppreciation 模块评语
// PUT /api/v1/candidates/:id/appreciations
func (h *CandidateHandler) SetAppreciation(c *gin.Context) {
	var req dto.SetAppreciationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	appreciation, err := h.candidateSvc.SetAppreciation(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleCandidateError(c, err)
		return
	}

	response.OK(c, appreciation)
}

// Certify 认证候选人
// POST /api/v1/candidates/:id/certify
func (h *CandidateHandler) Certify(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	candidate, err := h.candidateSvc.Certify(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		h.handleCandidateError(c, err)
		return
	}

	response.OK(c, candidate)
}

// ListEligible 达到认证门槛且未认证的候选人
// GET /api/v1/candidates/eligible
func (h *CandidateHandler) ListEligible(c *gin.Context) {
	list, err := h.candidateSvc.ListEligible(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// ExportProgress 导出全部候选人进度
// GET /api/v1/candidates/export
func (h *CandidateHandler) ExportProgress(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportCandidateProgress(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrExportNoCandidates) {
			response.NotFound(c, 14006, "Aucun candidat à exporter")
			return
		}
		response.InternalError(c)
		return
	}

	writeXLSX(c, buf, filename)
}

func (h *CandidateHandler) handleCandidateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCandidateNotFound):
		response.NotFound(c, 14001, "Candidat introuvable")
	case errors.Is(err, service.ErrCandidateNotEligible):
		response.BadRequest(c, 14002, "La progression du candidat est inférieure à 80 %")
	case errors.Is(err, service.ErrCandidateAlreadyCertified):
		response.Conflict(c, 14003, "Candidat déjà certifié")
	case errors.Is(err, service.ErrScoreOutOfRange):
		response.BadRequest(c, 14004, "La note dépasse le barème du sous-module")
	case errors.Is(err, service.ErrScoreNotFound):
		response.NotFound(c, 14005, "Note introuvable")
	case errors.Is(err, service.ErrSubModuleNotFound):
		response.NotFound(c, 13002, "Sous-module introuvable")
	case errors.Is(err, service.ErrModuleNotFound):
		response.NotFound(c, 13001, "Module introuvable")
	default:
		response.InternalError(c)
	}
}

// writeXLSX 以附件形式写出 Excel 文件
func writeXLSX(c *gin.Context, buf *bytes.Buffer, filename string) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
