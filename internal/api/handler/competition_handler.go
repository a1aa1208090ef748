package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"dhs-academy/backend/internal/dto"
	"dhs-academy/backend/internal/service"
	"dhs-academy/backend/pkg/response"
)

// CompetitionHandler 竞赛管理、批改与公开参赛 HTTP 处理器
type CompetitionHandler struct {
	competitionSvc service.CompetitionService
	exportSvc      service.ExportService
}

// NewCompetitionHandler 创建 CompetitionHandler
func NewCompetitionHandler(competitionSvc service.CompetitionService, exportSvc service.ExportService) *CompetitionHandler {
	return &CompetitionHandler{competitionSvc: competitionSvc, exportSvc: exportSvc}
}

// ═══════════════════════════════════════════════════════════
// 管理端
// ═══════════════════════════════════════════════════════════

// CreateCompetition POST /api/v1/competitions
func (h *CompetitionHandler) CreateCompetition(c *gin.Context) {
	var req dto.CreateCompetitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	comp, err := h.competitionSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleCompetitionError(c, err)
		return
	}
	response.Created(c, comp)
}

// ListCompetitions GET /api/v1/competitions
func (h *CompetitionHandler) ListCompetitions(c *gin.Context) {
	var req dto.CompetitionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.InvalidParams(c)
		return
	}

	list, total, err := h.competitionSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetCompetition GET /api/v1/competitions/:id（含答案）
func (h *CompetitionHandler) GetCompetition(c *gin.Context) {
	comp, err := h.competitionSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleCompetitionError(c, err)
		return
	}
	response.OK(c, comp)
}

// UpdateCompetition PUT /api/v1/competitions/:id
func (h *CompetitionHandler) UpdateCompetition(c *gin.Context) {
	var req dto.UpdateCompetitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	comp, err := h.competitionSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleCompetitionError(c, err)
		return
	}
	response.OK(c, comp)
}

// DeleteCompetition DELETE /api/v1/competitions/:id
func (h *CompetitionHandler) DeleteCompetition(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if err := h.competitionSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleCompetitionError(c, err)
		return
	}
	response.OK(c, nil)
}

// ChangeStatus PUT /api/v1/competitions/:id/status
func (h *CompetitionHandler) ChangeStatus(c *gin.Context) {
	var req dto.CompetitionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	comp, err := h.competitionSvc.ChangeStatus(c.Request.Context(), c.Param("id"), req.Status, callerID)
	if err != nil {
		h.handleCompetitionError(c, err)
		return
	}
	response.OK(c, comp)
}

// AddQuestion POST /api/v1/competitions/:id/questions
func (h *CompetitionHandler) AddQuestion(c *gin.Context) {
	var req dto.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	q, err := h.competitionSvc.AddQuestion(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleCompetitionError(c, err)
		return
	}
	response.Created(c, q)
}

// UpdateQuestion PUT /api/v1/questions/:id
func (h *CompetitionHandler) UpdateQuestion(c *gin.Context) {
	var req dto.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	q, err := h.competitionSvc.UpdateQuestion(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleCompetitionError(c, err)
		return
	}
	response.OK(c, q)
}

// DeleteQuestion DELETE /api/v1/questions/:id
func (h *CompetitionHandler) DeleteQuestion(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if err := h.competitionSvc.DeleteQuestion(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleCompetitionError(c, err)
		return
	}
	response.OK(c, nil)
}

// ListParticipations GET /api/v1/competitions/:id/participations
func (h *CompetitionHandler) ListParticipations(c *gin.Context) {
	var req dto.ParticipationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.InvalidParams(c)
		return
	}

	list, total, err := h.competitionSvc.ListParticipations(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleCompetitionError(c, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetParticipation GET /api/v1/participations/:id
func (h *CompetitionHandler) GetParticipation(c *gin.Context) {
	p, err := h.competitionSvc.GetParticipation(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleCompetitionError(c, err)
		return
	}
	response.OK(c, p)
}

// AcceptParticipation 通过批改（可附人工给分）
// POST /api/v1/participations/:id/accept
func (h *CompetitionHandler) AcceptParticipation(c *gin.Context) {
	var req dto.AcceptParticipationRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.InvalidParams(c)
			return
		}
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	p, err := h.competitionSvc.Accept(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleCompetitionError(c, err)
		return
	}
	response.OK(c, p)
}

// RejectParticipation POST /api/v1/participations/:id/reject
func (h *CompetitionHandler) RejectParticipation(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	p, err := h.competitionSvc.Reject(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		h.handleCompetitionError(c, err)
		return
	}
	response.OK(c, p)
}

// ExportResults GET /api/v1/competitions/:id/export
func (h *CompetitionHandler) ExportResults(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportCompetitionResults(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleCompetitionError(c, err)
		return
	}
	writeXLSX(c, buf, filename)
}

// ═══════════════════════════════════════════════════════════
// 公开端
// ═══════════════════════════════════════════════════════════

// ListPublic GET /api/v1/public/competitions
func (h *CompetitionHandler) ListPublic(c *gin.Context) {
	list, err := h.competitionSvc.ListOpenPublic(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// GetPublic GET /api/v1/public/competitions/:id
func (h *CompetitionHandler) GetPublic(c *gin.Context) {
	comp, err := h.competitionSvc.GetPublic(c.Request.Context(), c.Param("id"), participantFromContext(c))
	if err != nil {
		h.handleCompetitionError(c, err)
		return
	}
	response.OK(c, comp)
}

// Submit POST /api/v1/public/competitions/:id/participations
func (h *CompetitionHandler) Submit(c *gin.Context) {
	var req dto.SubmitParticipationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c)
		return
	}

	result, err := h.competitionSvc.Submit(c.Request.Context(), c.Param("id"), &req, participantFromContext(c))
	if err != nil {
		h.handleCompetitionError(c, err)
		return
	}
	response.Created(c, result)
}

// GetResult GET /api/v1/public/participations/:id
func (h *CompetitionHandler) GetResult(c *gin.Context) {
	result, err := h.competitionSvc.GetResult(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleCompetitionError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *CompetitionHandler) handleCompetitionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCompetitionNotFound):
		response.NotFound(c, 19001, "Compétition introuvable")
	case errors.Is(err, service.ErrCompetitionNotDraft):
		response.Conflict(c, 19002, "La compétition est publiée, les questions ne sont plus modifiables")
	case errors.Is(err, service.ErrCompetitionNotOpen):
		response.Conflict(c, 19003, "La compétition n'est pas ouverte")
	case errors.Is(err, service.ErrCompetitionInvalidStatus):
		response.BadRequest(c, 19004, "Changement de statut invalide")
	case errors.Is(err, service.ErrCompetitionNoQuestions):
		response.BadRequest(c, 19005, "La compétition ne contient aucune question")
	case errors.Is(err, service.ErrCompetitionInvalidWindow):
		response.BadRequest(c, 19006, "La date d'ouverture doit précéder la date de clôture")
	case errors.Is(err, service.ErrQuestionNotFound):
		response.NotFound(c, 19007, "Question introuvable")
	case errors.Is(err, service.ErrQuestionInvalid):
		response.BadRequest(c, 19008, "Configuration de question invalide")
	case errors.Is(err, service.ErrCorrectionOutOfRange):
		response.BadRequest(c, 19009, "Note de correction hors barème")
	case errors.Is(err, service.ErrParticipationNotFound):
		response.NotFound(c, 19010, "Participation introuvable")
	case errors.Is(err, service.ErrParticipationAlreadyResolved):
		response.Conflict(c, 19011, "Participation déjà corrigée")
	case errors.Is(err, service.ErrParticipantRequired):
		response.Unauthorized(c, 19012, "Connexion par invitation requise")
	case errors.Is(err, service.ErrAlreadyParticipated):
		response.Conflict(c, 19013, "Cette invitation a déjà été utilisée pour participer")
	case errors.Is(err, service.ErrParticipantNameRequired):
		response.BadRequest(c, 19014, "Le nom du participant est requis")
	default:
		response.InternalError(c)
	}
}
