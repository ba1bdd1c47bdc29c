package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/scottring/compliant-connect-sub001/internal/application/admin"
	"github.com/scottring/compliant-connect-sub001/internal/application/auth"
	"github.com/scottring/compliant-connect-sub001/internal/application/company"
	"github.com/scottring/compliant-connect-sub001/internal/application/invite"
	"github.com/scottring/compliant-connect-sub001/internal/application/notify"
	"github.com/scottring/compliant-connect-sub001/internal/application/onboarding"
	apppir "github.com/scottring/compliant-connect-sub001/internal/application/pir"
	"github.com/scottring/compliant-connect-sub001/internal/application/question"
	"github.com/scottring/compliant-connect-sub001/internal/infrastructure/email"
	infrapdf "github.com/scottring/compliant-connect-sub001/internal/infrastructure/pdf"
	"github.com/scottring/compliant-connect-sub001/internal/infrastructure/postgres"
	"github.com/scottring/compliant-connect-sub001/internal/infrastructure/xmlexport"
	httpRouter "github.com/scottring/compliant-connect-sub001/internal/interfaces/http"
	"github.com/scottring/compliant-connect-sub001/pkg/config"
	"github.com/scottring/compliant-connect-sub001/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("starting application")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("PostgreSQL connection")
	}
	defer pool.Close()

	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	profileRepo := postgres.NewProfileRepository(pool)
	membershipRepo := postgres.NewMembershipRepository(pool)
	questionRepo := postgres.NewQuestionRepository(pool)
	tagRepo := postgres.NewTagRepository(pool)
	sectionRepo := postgres.NewSectionRepository(pool)
	pirRepo := postgres.NewPIRRequestRepository(pool)
	responseRepo := postgres.NewPIRResponseRepository(pool)
	invitationRepo := postgres.NewInvitationRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	sender := email.NewSender(cfg.Notify, log)
	dispatcher := notify.NewDispatcher(companyRepo, sender, log, cfg.Notify.BaseURL)

	bootstrapUC := onboarding.NewBootstrapUseCase(membershipRepo, profileRepo, txRunner, log)
	authUC := auth.NewUseCase(userRepo, profileRepo, membershipRepo, companyRepo, bootstrapUC, cfg.JWT, log)
	companyUC := company.NewUseCase(companyRepo, membershipRepo, txRunner)
	questionUC := question.NewUseCase(questionRepo, tagRepo, sectionRepo, txRunner, log)
	pirUC := apppir.NewUseCase(pirRepo, responseRepo, questionRepo, companyRepo, dispatcher, log)
	exportUC := apppir.NewExportUseCase(pirRepo, responseRepo, questionRepo, companyRepo,
		infrapdf.NewReportGenerator(), xmlexport.NewPackageBuilder())
	inviteUC := invite.NewUseCase(invitationRepo, userRepo, profileRepo, companyRepo,
		membershipRepo, txRunner, dispatcher, cfg.JWT, log)
	resetUC := admin.NewResetUseCase(postgres.NewResetStore(pool), cfg.App.Env, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * time.Duration(cfg.Features.APITimeoutSeconds),
		WriteTimeout: time.Second * time.Duration(cfg.Features.APITimeoutSeconds),
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI locally: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    cfg.App.Name + " API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:          authUC,
		CompanyUC:       companyUC,
		QuestionUC:      questionUC,
		PIRUC:           pirUC,
		ExportUC:        exportUC,
		InviteUC:        inviteUC,
		ResetUC:         resetUC,
		Dispatcher:      dispatcher,
		PIRRepo:         pirRepo,
		JWTSecret:       cfg.JWT.Secret,
		MaxUploadSizeMB: cfg.Features.MaxUploadSizeMB,
		EnableDebug:     cfg.Features.EnableDebugTools,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("HTTP server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutdown signal received, closing server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	log.Info().Msg("application stopped")
}
