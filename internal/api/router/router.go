package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dhs-academy/backend/config"
	"dhs-academy/backend/internal/api/handler"
	"dhs-academy/backend/internal/api/middleware"
	"dhs-academy/backend/internal/model"
	"dhs-academy/backend/pkg/jwt"
	"dhs-academy/backend/pkg/redis"
)

// 角色组：instructor < direction < admin
var (
	staff     = []string{model.RoleInstructor, model.RoleDirection, model.RoleAdmin}
	direction = []string{model.RoleDirection, model.RoleAdmin}
	admin     = []string{model.RoleAdmin}
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时黑名单与限流均降级放行
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	if cfg.Server.MaxBodyBytes > 0 {
		r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))
	}

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	var blacklist middleware.TokenBlacklist
	if rdb != nil {
		blacklist = rdb
	}
	loginLimit := middleware.RateLimit(rdb, cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", loginLimit, h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 公开接口：竞赛参赛与申请表单
		public := v1.Group("/public")
		{
			public.POST("/invitations/login", loginLimit, h.Invitation.Login)

			competitions := public.Group("/competitions", middleware.ParticipantAuth(jwtMgr))
			{
				competitions.GET("", h.Competition.ListPublic)
				competitions.GET("/:id", h.Competition.GetPublic)
				competitions.POST("/:id/participations", h.Competition.Submit)
			}
			public.GET("/participations/:id", h.Competition.GetResult)

			public.GET("/forms", h.Application.ListOpenForms)
			public.GET("/forms/:id", h.Application.GetOpenForm)
			public.POST("/forms/:id/applications", h.Application.Submit)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, blacklist))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 工作人员
			users := authorized.Group("/users")
			{
				users.GET("", middleware.RoleAuth(direction...), h.User.ListUsers)
				users.GET("/:id", middleware.RoleAuth(direction...), h.User.GetUser)
				users.POST("", middleware.RoleAuth(admin...), h.User.CreateUser)
				users.PUT("/:id", middleware.RoleAuth(admin...), h.User.UpdateUser)
				users.PUT("/:id/role", middleware.RoleAuth(admin...), h.User.AssignRole)
				users.POST("/:id/reset-password", middleware.RoleAuth(admin...), h.User.ResetPassword)
			}

			// 审计日志
			authorized.GET("/activity-logs", middleware.RoleAuth(direction...), h.Activity.ListLogs)

			// 培训大纲
			curriculum := authorized.Group("/curriculum")
			{
				curriculum.GET("", middleware.RoleAuth(staff...), h.Curriculum.GetTree)
				curriculum.POST("/modules", middleware.RoleAuth(direction...), h.Curriculum.CreateModule)
				curriculum.PUT("/modules/:id", middleware.RoleAuth(direction...), h.Curriculum.UpdateModule)
				curriculum.DELETE("/modules/:id", middleware.RoleAuth(direction...), h.Curriculum.DeleteModule)
				curriculum.POST("/modules/:id/submodules", middleware.RoleAuth(direction...), h.Curriculum.CreateSubModule)
				curriculum.PUT("/submodules/:id", middleware.RoleAuth(direction...), h.Curriculum.UpdateSubModule)
				curriculum.DELETE("/submodules/:id", middleware.RoleAuth(direction...), h.Curriculum.DeleteSubModule)
			}

			// 候选人、评分与认证
			candidates := authorized.Group("/candidates")
			{
				candidates.GET("", middleware.RoleAuth(staff...), h.Candidate.ListCandidates)
				candidates.GET("/eligible", middleware.RoleAuth(direction...), h.Candidate.ListEligible)
				candidates.GET("/export", middleware.RoleAuth(direction...), h.Candidate.ExportProgress)
				candidates.POST("", middleware.RoleAuth(direction...), h.Candidate.CreateCandidate)
				candidates.GET("/:id", middleware.RoleAuth(staff...), h.Candidate.GetCandidate)
				candidates.PUT("/:id", middleware.RoleAuth(direction...), h.Candidate.UpdateCandidate)
				candidates.DELETE("/:id", middleware.RoleAuth(direction...), h.Candidate.DeleteCandidate)
				candidates.GET("/:id/progress", middleware.RoleAuth(staff...), h.Candidate.GetProgress)
				candidates.GET("/:id/scores", middleware.RoleAuth(staff...), h.Candidate.ListScores)
				candidates.PUT("/:id/scores", middleware.RoleAuth(staff...), h.Candidate.RecordScore)
				candidates.DELETE("/:id/scores/:subModuleId", middleware.RoleAuth(staff...), h.Candidate.DeleteScore)
				candidates.PUT("/:id/appreciations", middleware.RoleAuth(staff...), h.Candidate.SetAppreciation)
				candidates.POST("/:id/certify", middleware.RoleAuth(direction...), h.Candidate.Certify)
			}

			// 班级
			classes := authorized.Group("/classes", middleware.RoleAuth(staff...))
			{
				classes.GET("", h.Class.ListClasses)
				classes.GET("/:id", h.Class.GetClass)
				classes.POST("", h.Class.CreateClass)
				classes.PUT("/:id", h.Class.UpdateClass)
				classes.DELETE("/:id", middleware.RoleAuth(direction...), h.Class.DeleteClass)
				classes.POST("/:id/candidates", h.Class.AddCandidate)
				classes.DELETE("/:id/candidates/:candidateId", h.Class.RemoveCandidate)
				classes.PUT("/:id/status", h.Class.ChangeStatus)
			}

			// 机构与职级
			agencies := authorized.Group("/agencies")
			{
				agencies.GET("", middleware.RoleAuth(staff...), h.Organisation.ListAgencies)
				agencies.GET("/:id", middleware.RoleAuth(staff...), h.Organisation.GetAgency)
				agencies.POST("", middleware.RoleAuth(direction...), h.Organisation.CreateAgency)
				agencies.PUT("/:id", middleware.RoleAuth(direction...), h.Organisation.UpdateAgency)
				agencies.DELETE("/:id", middleware.RoleAuth(direction...), h.Organisation.DeleteAgency)
				agencies.GET("/:id/grades", middleware.RoleAuth(staff...), h.Organisation.ListGrades)
				agencies.POST("/:id/grades", middleware.RoleAuth(direction...), h.Organisation.CreateGrade)
			}
			grades := authorized.Group("/grades", middleware.RoleAuth(direction...))
			{
				grades.PUT("/:id", h.Organisation.UpdateGrade)
				grades.DELETE("/:id", h.Organisation.DeleteGrade)
			}

			// 警员与处分
			agents := authorized.Group("/agents")
			{
				agents.GET("", middleware.RoleAuth(staff...), h.Organisation.ListAgents)
				agents.GET("/:id", middleware.RoleAuth(staff...), h.Organisation.GetAgent)
				agents.POST("", middleware.RoleAuth(direction...), h.Organisation.CreateAgent)
				agents.PUT("/:id", middleware.RoleAuth(direction...), h.Organisation.UpdateAgent)
				agents.PUT("/:id/status", middleware.RoleAuth(direction...), h.Organisation.ChangeAgentStatus)
				agents.GET("/:id/discipline", middleware.RoleAuth(direction...), h.Organisation.ListDiscipline)
				agents.POST("/:id/discipline", middleware.RoleAuth(direction...), h.Organisation.IssueDiscipline)
			}

			// 内部消息
			messages := authorized.Group("/messages")
			{
				messages.POST("", h.Message.Send)
				messages.GET("/inbox", h.Message.Inbox)
				messages.GET("/outbox", h.Message.Outbox)
				messages.GET("/unread-count", h.Message.UnreadCount)
				messages.GET("/:id", h.Message.Get)
				messages.PUT("/:id/read", h.Message.MarkRead)
			}

			// 竞赛、题目、邀请与批改
			competitions := authorized.Group("/competitions", middleware.RoleAuth(direction...))
			{
				competitions.GET("", h.Competition.ListCompetitions)
				competitions.POST("", h.Competition.CreateCompetition)
				competitions.GET("/:id", h.Competition.GetCompetition)
				competitions.PUT("/:id", h.Competition.UpdateCompetition)
				competitions.DELETE("/:id", h.Competition.DeleteCompetition)
				competitions.PUT("/:id/status", h.Competition.ChangeStatus)
				competitions.POST("/:id/questions", h.Competition.AddQuestion)
				competitions.GET("/:id/participations", h.Competition.ListParticipations)
				competitions.GET("/:id/export", h.Competition.ExportResults)
				competitions.POST("/:id/invitations", h.Invitation.Issue)
				competitions.GET("/:id/invitations", h.Invitation.List)
			}
			questions := authorized.Group("/questions", middleware.RoleAuth(direction...))
			{
				questions.PUT("/:id", h.Competition.UpdateQuestion)
				questions.DELETE("/:id", h.Competition.DeleteQuestion)
			}
			participations := authorized.Group("/participations", middleware.RoleAuth(direction...))
			{
				participations.GET("/:id", h.Competition.GetParticipation)
				participations.POST("/:id/accept", h.Competition.AcceptParticipation)
				participations.POST("/:id/reject", h.Competition.RejectParticipation)
			}

			// 申请表单与审核
			forms := authorized.Group("/forms", middleware.RoleAuth(direction...))
			{
				forms.GET("", h.Application.ListForms)
				forms.POST("", h.Application.CreateForm)
				forms.GET("/:id", h.Application.GetForm)
				forms.PUT("/:id", h.Application.UpdateForm)
				forms.DELETE("/:id", h.Application.DeleteForm)
			}
			applications := authorized.Group("/applications", middleware.RoleAuth(direction...))
			{
				applications.GET("", h.Application.ListApplications)
				applications.GET("/:id", h.Application.GetApplication)
				applications.POST("/:id/accept", h.Application.AcceptApplication)
				applications.POST("/:id/reject", h.Application.RejectApplication)
			}
		}
	}

	return r
}
