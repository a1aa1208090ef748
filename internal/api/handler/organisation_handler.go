package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"dhs-academy/backend/internal/dto"
	"dhs-academy/backend/internal/service"
	"dhs-academy/backend/pkg/response"
)

// OrganisationHandler 机构、职级、警员与处分 HTTP 处理器
type OrganisationHandler struct {
	agencySvc service.AgencyService
	agentSvc  service.AgentService
}

// NewOrganisationHandler 创建 OrganisationHandler
func NewOrganisationHandler(agencySvc service.AgencyService, agentSvc service.AgentService) *OrganisationHandler {
	return &OrganisationHandler{agencySvc: agencySvc, agentSvc: agentSvc}
}

// ── 机构 ──

// ListAgencies GET /api/v1/agencies
func (h *OrganisationHandler) ListAgencies(c *gin.Context) {
	list, err := h.agencySvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// GetAgency GET /api/v1/agencies/:id
func (h *OrganisationHandler) GetAgency(c *gin.Context) {
	agency, err := h.agencySvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleOrganisationError(c, err)
		return
	}
	response.OK(c, agency)
}

// CreateAgency POST /api/v1/agencies
func (h *OrganisationHandler) CreateAgency(c *gin.Context) {
	var req dto.CreateAgencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	agency, err := h.agencySvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleOrganisationError(c, err)
		return
	}
	response.Created(c, agency)
}

// UpdateAgency PUT /api/v1/agencies/:id
func (h *OrganisationHandler) UpdateAgency(c *gin.Context) {
	var req dto.UpdateAgencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	agency, err := h.agencySvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleOrganisationError(c, err)
		return
	}
	response.OK(c, agency)
}

// DeleteAgency DELETE /api/v1/agencies/:id
func (h *OrganisationHandler) DeleteAgency(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if err := h.agencySvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleOrganisationError(c, err)
		return
	}
	response.OK(c, nil)
}

// ── 职级 ──

// ListGrades GET /api/v1/agencies/:id/grades
func (h *OrganisationHandler) ListGrades(c *gin.Context) {
	list, err := h.agencySvc.ListGrades(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleOrganisationError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// CreateGrade POST /api/v1/agencies/:id/grades
func (h *OrganisationHandler) CreateGrade(c *gin.Context) {
	var req dto.CreateGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	grade, err := h.agencySvc.CreateGrade(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleOrganisationError(c, err)
		return
	}
	response.Created(c, grade)
}

// UpdateGrade PUT /api/v1/grades/:id
func (h *OrganisationHandler) UpdateGrade(c *gin.Context) {
	var req dto.UpdateGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	grade, err := h.agencySvc.UpdateGrade(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleOrganisationError(c, err)
		return
	}
	response.OK(c, grade)
}

// DeleteGrade DELETE /api/v1/grades/:id
func (h *OrganisationHandler) DeleteGrade(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if err := h.agencySvc.DeleteGrade(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleOrganisationError(c, err)
		return
	}
	response.OK(c, nil)
}

// ── 警员 ──

// ListAgents GET /api/v1/agents
func (h *OrganisationHandler) ListAgents(c *gin.Context) {
	var req dto.AgentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.InvalidParams(c)
		return
	}

	list, total, err := h.agentSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetAgent GET /api/v1/agents/:id
func (h *OrganisationHandler) GetAgent(c *gin.Context) {
	agent, err := h.agentSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleOrganisationError(c, err)
		return
	}
	response.OK(c, agent)
}

// CreateAgent POST /api/v1/agents
func (h *OrganisationHandler) CreateAgent(c *gin.Context) {
	var req dto.CreateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	agent, err := h.agentSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleOrganisationError(c, err)
		return
	}
	response.Created(c, agent)
}

// UpdateAgent PUT /api/v1/agents/:id
func (h *OrganisationHandler) UpdateAgent(c *gin.Context) {
	var req dto.UpdateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	agent, err := h.agentSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleOrganisationError(c, err)
		return
	}
	response.OK(c, agent)
}

// ChangeAgentStatus PUT /api/v1/agents/:id/status
func (h *OrganisationHandler) ChangeAgentStatus(c *gin.Context) {
	var req dto.AgentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.agentSvc.ChangeStatus(c.Request.Context(), c.Param("id"), req.Status, callerID); err != nil {
		h.handleOrganisationError(c, err)
		return
	}
	response.OK(c, nil)
}

// ── 处分 ──

// ListDiscipline GET /api/v1/agents/:id/discipline
func (h *OrganisationHandler) ListDiscipline(c *gin.Context) {
	list, err := h.agentSvc.ListDiscipline(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleOrganisationError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// IssueDiscipline POST /api/v1/agents/:id/discipline
func (h *OrganisationHandler) IssueDiscipline(c *gin.Context) {
	var req dto.IssueDisciplineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	record, err := h.agentSvc.IssueDiscipline(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleOrganisationError(c, err)
		return
	}
	response.Created(c, record)
}

func (h *OrganisationHandler) handleOrganisationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAgencyNotFound):
		response.NotFound(c, 16001, "Agence introuvable")
	case errors.Is(err, service.ErrAgencyNameExists):
		response.Conflict(c, 16002, "Une agence porte déjà ce nom")
	case errors.Is(err, service.ErrAgencyHasAgents):
		response.Conflict(c, 16003, "L'agence compte encore des agents")
	case errors.Is(err, service.ErrGradeNotFound):
		response.NotFound(c, 16004, "Grade introuvable")
	case errors.Is(err, service.ErrGradeHasAgents):
		response.Conflict(c, 16005, "Le grade est encore attribué à des agents")
	case errors.Is(err, service.ErrAgentNotFound):
		response.NotFound(c, 17001, "Agent introuvable")
	case errors.Is(err, service.ErrBadgeNumberExists):
		response.Conflict(c, 17002, "Ce matricule est déjà attribué")
	case errors.Is(err, service.ErrGradeNotInAgency):
		response.BadRequest(c, 17003, "Le grade n'appartient pas à cette agence")
	case errors.Is(err, service.ErrAgentTerminated):
		response.Conflict(c, 17004, "L'agent a été révoqué")
	case errors.Is(err, service.ErrSuspensionNeedsEndsAt):
		response.BadRequest(c, 17005, "Une suspension doit préciser sa date de fin")
	case errors.Is(err, service.ErrCandidateNotFound):
		response.NotFound(c, 14001, "Candidat introuvable")
	default:
		response.InternalError(c)
	}
}
