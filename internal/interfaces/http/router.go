package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/scottring/compliant-connect-sub001/internal/application/admin"
	"github.com/scottring/compliant-connect-sub001/internal/application/auth"
	"github.com/scottring/compliant-connect-sub001/internal/application/company"
	"github.com/scottring/compliant-connect-sub001/internal/application/invite"
	"github.com/scottring/compliant-connect-sub001/internal/application/notify"
	"github.com/scottring/compliant-connect-sub001/internal/application/pir"
	"github.com/scottring/compliant-connect-sub001/internal/application/question"
	"github.com/scottring/compliant-connect-sub001/internal/domain/repository"
)

// RouterDeps dependencies for the router.
type RouterDeps struct {
	AuthUC          *auth.UseCase
	CompanyUC       *company.UseCase
	QuestionUC      *question.UseCase
	PIRUC           *pir.UseCase
	ExportUC        *pir.ExportUseCase
	InviteUC        *invite.UseCase
	ResetUC         *admin.ResetUseCase
	Dispatcher      *notify.Dispatcher
	PIRRepo         repository.PIRRequestRepository
	JWTSecret       string
	MaxUploadSizeMB int
	EnableDebug     bool
}

// Router registers the API routes.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (public)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Invitation accept (public, the token is the credential)
	inviteHandler := NewInviteHandler(deps.InviteUC)
	api.Post("/invitations/accept", inviteHandler.Accept)

	// Protected routes (require Bearer token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	protected.Get("/auth/me", authHandler.Me)
	protected.Post("/auth/refresh", authHandler.Refresh)
	protected.Post("/auth/switch-company", authHandler.SwitchCompany)

	// Companies
	companies := protected.Group("/companies")
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	companies.Post("/", companyHandler.Create)
	companies.Get("/", companyHandler.List)
	companies.Get("/:id", companyHandler.GetByID)
	companies.Put("/:id", companyHandler.Update)
	companies.Get("/:id/members", companyHandler.ListMembers)
	companies.Put("/:id/members/:userId/role", companyHandler.UpdateMemberRole)

	// Question bank
	questionHandler := NewQuestionHandler(deps.QuestionUC, deps.MaxUploadSizeMB)
	questions := protected.Group("/questions")
	questions.Post("/", questionHandler.Create)
	questions.Get("/", questionHandler.List)
	questions.Post("/import", questionHandler.ImportCSV)
	questions.Get("/:id", questionHandler.Get)

	tags := protected.Group("/tags")
	tags.Post("/", questionHandler.CreateTag)
	tags.Get("/", questionHandler.ListTags)

	sections := protected.Group("/sections")
	sections.Post("/", questionHandler.CreateSection)
	sections.Get("/", questionHandler.ListSections)

	// Product Information Requests
	pirHandler := NewPIRHandler(deps.PIRUC, deps.ExportUC)
	pirs := protected.Group("/pirs")
	pirs.Post("/", pirHandler.Create)
	pirs.Get("/outbound", pirHandler.ListOutbound)
	pirs.Get("/inbound", pirHandler.ListInbound)
	pirs.Get("/:id", pirHandler.Get)
	pirs.Post("/:id/send", pirHandler.Send)
	pirs.Put("/:id/answers", pirHandler.SaveAnswer)
	pirs.Post("/:id/answers/:responseId/approve", pirHandler.ApproveAnswer)
	pirs.Post("/:id/submit", pirHandler.Submit)
	pirs.Post("/:id/review", pirHandler.StartReview)
	pirs.Post("/:id/review/complete", pirHandler.CompleteReview)
	pirs.Post("/:id/flags", pirHandler.FlagAnswer)
	pirs.Post("/:id/resubmit", pirHandler.Resubmit)
	pirs.Post("/:id/cancel", pirHandler.Cancel)
	pirs.Get("/:id/report.pdf", pirHandler.ExportPDF)
	pirs.Get("/:id/export.xml", pirHandler.ExportXML)

	responses := protected.Group("/responses")
	responses.Post("/:responseId/comments", pirHandler.AddComment)
	responses.Get("/:responseId/comments", pirHandler.ListComments)

	// Supplier invitations (sending requires a session)
	protected.Post("/invitations", inviteHandler.Invite)

	// Notifications (legacy manual surface)
	notificationHandler := NewNotificationHandler(deps.PIRRepo, deps.Dispatcher)
	protected.Post("/notifications", notificationHandler.Send)

	// Admin tooling, only mounted outside locked-down deployments
	if deps.EnableDebug {
		adminHandler := NewAdminHandler(deps.ResetUC)
		protected.Post("/admin/reset", RequireRole("admin", "owner"), adminHandler.Reset)
	}
}
