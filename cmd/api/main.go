package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"insurance_intake_backend/internal/agencyzoom"
	"insurance_intake_backend/internal/ams360"
	"insurance_intake_backend/internal/chat"
	chatservice "insurance_intake_backend/internal/chat/service"
	"insurance_intake_backend/internal/config"
	"insurance_intake_backend/internal/crm"
	"insurance_intake_backend/internal/email"
	"insurance_intake_backend/internal/events"
	apphttp "insurance_intake_backend/internal/http"
	"insurance_intake_backend/internal/http/router"
	"insurance_intake_backend/internal/intake"
	"insurance_intake_backend/internal/notification"
	"insurance_intake_backend/internal/tools"
	"insurance_intake_backend/platform/ai/openaichat"
	"insurance_intake_backend/platform/logger"
	"insurance_intake_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	archive, err := intake.NewArchive(cfg.IntakeDataDir)
	if err != nil {
		log.Error("failed to initialize intake archive", "error", err)
		panic("failed to initialize intake archive: " + err.Error())
	}
	log.Info("intake archive initialized", "dir", archive.Dir())

	amsClient := ams360.NewClient(ams360.Config{
		BaseURL:   cfg.AMS360BaseURL,
		AgencyNo:  cfg.AMS360AgencyNo,
		LoginID:   cfg.AMS360LoginID,
		Password:  cfg.AMS360Password,
		TicketTTL: cfg.AMS360TicketTTL,
	}, log)
	if !amsClient.Configured() {
		log.Warn("ams360 credentials not configured; policy lookups disabled")
	}

	zoomClient := agencyzoom.NewClient(agencyzoom.Config{
		APIKey:   cfg.AgencyZoomAPIKey,
		BaseURL:  cfg.AgencyZoomBaseURL,
		AgencyID: cfg.AgencyZoomAgencyID,
	}, log)
	if !zoomClient.Configured() {
		log.Warn("agencyzoom api key not configured; crm submission disabled")
	}

	model := openaichat.New(openaichat.Config{
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		Model:       cfg.OpenAIModel,
		Temperature: cfg.Temperature,
	})

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	var leads intake.LeadSubmitter
	if zoomClient.Configured() {
		leads = crm.NewAdapter(zoomClient, log)
	}
	intakeSvc := intake.NewService(val, archive, leads, eventBus, log)

	registry := tools.NewRegistry(intakeSvc, amsClient, zoomClient, log)

	store := chatservice.NewThreadStore(chatservice.SystemPrompt, cfg.ThreadTTL, log)
	chatModule := chat.NewModule(chat.Deps{
		Model:      model,
		Dispatcher: registry,
		Bus:        eventBus,
		Validator:  val,
		Logger:     log,
		Config: chatservice.Config{
			MaxToolRounds: cfg.MaxToolRounds,
			TurnTimeout:   cfg.TurnTimeout,
		},
		Store: store,
	})
	go chatModule.RunJanitor(ctx)

	// Notification module subscribes to domain events (not HTTP-facing)
	var sender email.Sender
	if cfg.EmailEnabled {
		sender = email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.EmailFromAddress, cfg.EmailFromName)
	} else {
		log.Warn("email disabled; quote confirmations will not be sent")
	}
	notificationModule := notification.NewModule(sender, log)
	notificationModule.RegisterHandlers(eventBus)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:        cfg,
		Logger:        log,
		EventBus:      eventBus,
		ActiveThreads: chatModule.Service().ActiveThreads,
		Modules: []apphttp.Module{
			chatModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}
