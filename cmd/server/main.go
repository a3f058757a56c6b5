package main

import (
	"context"

	"crewdesk/internal/config"
	"crewdesk/internal/database"
	"crewdesk/internal/handlers"
	"crewdesk/internal/logging"
	"crewdesk/internal/services"
	"crewdesk/internal/web"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	// 2. Init DB
	db, err := database.InitDB(cfg, log)
	if err != nil {
		log.Fatalf("Failed to init DB: %v", err)
	}

	// 3. Services
	policy, ok := services.PolicyByName(cfg.IntakePolicy)
	if !ok {
		log.Fatalf("Unknown intake policy %q", cfg.IntakePolicy)
	}
	applicants := services.NewCachedApplicants(services.NewApplicantStore(db, policy, log), cfg.CacheTTL)
	settings := services.NewSettingsStore(db)

	var bucket services.Bucket
	switch cfg.StorageBackend {
	case config.StorageHTTP:
		bucket = services.NewHTTPBucket(cfg.StorageURL, cfg.StorageBucket, cfg.StorageKey)
	default:
		bucket = &services.LocalBucket{Dir: cfg.UploadDir, BaseURL: cfg.PublicBaseURL}
	}
	photos := services.NewPhotoUploader(bucket, cfg.MaxPhotoBytes, log)

	var notifier services.Notifier = services.NopNotifier{}
	if cfg.TelegramEnabled() {
		tg, err := services.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID, cfg.PublicBaseURL)
		if err != nil {
			log.WithError(err).Warn("Telegram alerts disabled")
		} else {
			notifier = tg
		}
	}
	intake := services.NewIntakeService(applicants, photos, notifier, log)

	var interviewer services.Interviewer = services.NopInterviewer{}
	if cfg.InterviewEnabled() {
		vi, err := services.NewVertexInterviewer(context.Background(), cfg.InterviewProject, cfg.InterviewLocation, cfg.InterviewModel)
		if err != nil {
			log.WithError(err).Warn("Skills interview disabled")
		} else {
			defer vi.Close()
			interviewer = vi
		}
	}
	interviews := services.NewInterviewService(db, applicants, interviewer, cfg.InterviewMaxAnswers, log)

	// 4. HTTP Server & HTML Renderer
	renderer, err := web.NewTemplateRenderer(cfg.TemplateDir)
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer
	e.Use(middleware.RequestID())
	e.Use(web.RequestLogger(log))
	e.Use(middleware.Recover())

	if cfg.StorageBackend == config.StorageLocal {
		e.Static("/uploads", cfg.UploadDir)
	}

	admin := e.Group("/admin", web.AdminAuth(cfg.AdminUser, cfg.AdminPassword))
	h := handlers.NewHandler(cfg.SiteName, applicants, settings, intake, interviews, log)
	handlers.RegisterRoutes(e, admin, web.SubmitLimiter(cfg.SubmitRate, cfg.SubmitBurst), h)

	log.WithFields(logrus.Fields{
		"addr":      cfg.ListenAddr,
		"policy":    cfg.IntakePolicy,
		"db":        cfg.DBDriver,
		"interview": interviews.Enabled(),
	}).Infof("%s starting...", cfg.SiteName)
	if err := e.Start(cfg.ListenAddr); err != nil {
		log.Fatal(err)
	}
}
