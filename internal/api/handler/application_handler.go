package handler

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"dhs-academy/backend/internal/dto"
	"dhs-academy/backend/internal/model"
	"dhs-academy/backend/internal/service"
	"dhs-academy/backend/pkg/response"
)

// ApplicationHandler 申请表单与申请审核 HTTP 处理器
type ApplicationHandler struct {
	applicationSvc service.ApplicationService
}

// NewApplicationHandler 创建 ApplicationHandler
func NewApplicationHandler(applicationSvc service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applicationSvc: applicationSvc}
}

// ── 表单（管理端） ──

// CreateForm POST /api/v1/forms
func (h *ApplicationHandler) CreateForm(c *gin.Context) {
	var req dto.CreateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	form, err := h.applicationSvc.CreateForm(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleApplicationError(c, err)
		return
	}
	response.Created(c, form)
}

// ListForms GET /api/v1/forms
func (h *ApplicationHandler) ListForms(c *gin.Context) {
	list, err := h.applicationSvc.ListForms(c.Request.Context(), false)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// GetForm GET /api/v1/forms/:id
func (h *ApplicationHandler) GetForm(c *gin.Context) {
	form, err := h.applicationSvc.GetForm(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleApplicationError(c, err)
		return
	}
	response.OK(c, form)
}

// UpdateForm PUT /api/v1/forms/:id
func (h *ApplicationHandler) UpdateForm(c *gin.Context) {
	var req dto.UpdateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	form, err := h.applicationSvc.UpdateForm(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleApplicationError(c, err)
		return
	}
	response.OK(c, form)
}

// DeleteForm DELETE /api/v1/forms/:id
func (h *ApplicationHandler) DeleteForm(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if err := h.applicationSvc.DeleteForm(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleApplicationError(c, err)
		return
	}
	response.OK(c, nil)
}

// ── 申请（管理端） ──

// ListApplications GET /api/v1/applications
func (h *ApplicationHandler) ListApplications(c *gin.Context) {
	var req dto.ApplicationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.InvalidParams(c)
		return
	}

	list, total, err := h.applicationSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetApplication GET /api/v1/applications/:id
func (h *ApplicationHandler) GetApplication(c *gin.Context) {
	app, err := h.applicationSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleApplicationError(c, err)
		return
	}
	response.OK(c, app)
}

// AcceptApplication 通过申请并创建候选人
// POST /api/v1/applications/:id/accept
func (h *ApplicationHandler) AcceptApplication(c *gin.Context) {
	h.review(c, h.applicationSvc.Accept)
}

// RejectApplication POST /api/v1/applications/:id/reject
func (h *ApplicationHandler) RejectApplication(c *gin.Context) {
	h.review(c, h.applicationSvc.Reject)
}

func (h *ApplicationHandler) review(c *gin.Context, fn func(context.Context, string, *dto.ReviewApplicationRequest, string) (*model.Application, error)) {
	var req dto.ReviewApplicationRequest
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

	app, err := fn(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleApplicationError(c, err)
		return
	}
	response.OK(c, app)
}

// ── 公开端 ──

// ListOpenForms GET /api/v1/public/forms
func (h *ApplicationHandler) ListOpenForms(c *gin.Context) {
	list, err := h.applicationSvc.ListForms(c.Request.Context(), true)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// GetOpenForm GET /api/v1/public/forms/:id
func (h *ApplicationHandler) GetOpenForm(c *gin.Context) {
	form, err := h.applicationSvc.GetOpenForm(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleApplicationError(c, err)
		return
	}
	response.OK(c, form)
}

// Submit POST /api/v1/public/forms/:id/applications
func (h *ApplicationHandler) Submit(c *gin.Context) {
	var req dto.SubmitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.InvalidParams(c)
		return
	}

	result, err := h.applicationSvc.Submit(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleApplicationError(c, err)
		return
	}
	response.Created(c, result)
}

func (h *ApplicationHandler) handleApplicationError(c *gin.Context, err error) {
	var verr *service.ApplicationValidationError
	if errors.As(err, &verr) {
		response.ErrorWithDetails(c, http.StatusBadRequest, 21005, "Le formulaire contient des erreurs", fieldDetails(verr.Fields))
		return
	}

	switch {
	case errors.Is(err, service.ErrFormNotFound):
		response.NotFound(c, 21001, "Formulaire introuvable")
	case errors.Is(err, service.ErrFormClosed):
		response.Conflict(c, 21002, "Le formulaire n'accepte plus de candidatures")
	case errors.Is(err, service.ErrFormInvalid):
		response.BadRequest(c, 21003, "Définition de formulaire invalide")
	case errors.Is(err, service.ErrApplicationNotFound):
		response.NotFound(c, 21004, "Candidature introuvable")
	case errors.Is(err, service.ErrApplicationInvalid):
		response.BadRequest(c, 21005, "Le formulaire contient des erreurs")
	case errors.Is(err, service.ErrApplicationAlreadyReviewed):
		response.Conflict(c, 21006, "Candidature déjà traitée")
	default:
		response.InternalError(c)
	}
}

// fieldDetails 按字段 key 排序拼接校验错误，如 "age: ...; contact: ..."
func fieldDetails(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fields[k])
	}
	return strings.Join(parts, "; ")
}
