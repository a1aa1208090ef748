package handler

import "dhs-academy/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Activity     *ActivityHandler
	Curriculum   *CurriculumHandler
	Candidate    *CandidateHandler
	Class        *ClassHandler
	Organisation *OrganisationHandler
	Message      *MessageHandler
	Competition  *CompetitionHandler
	Invitation   *InvitationHandler
	Application  *ApplicationHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth),
		User:         NewUserHandler(svc.User),
		Activity:     NewActivityHandler(svc.Activity),
		Curriculum:   NewCurriculumHandler(svc.Curriculum),
		Candidate:    NewCandidateHandler(svc.Candidate, svc.Export),
		Class:        NewClassHandler(svc.Class),
		Organisation: NewOrganisationHandler(svc.Agency, svc.Agent),
		Message:      NewMessageHandler(svc.Message),
		Competition:  NewCompetitionHandler(svc.Competition, svc.Export),
		Invitation:   NewInvitationHandler(svc.Invitation),
		Application:  NewApplicationHandler(svc.Application),
	}
}
