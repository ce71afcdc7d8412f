package main

import (
	"context"

	firebase "firebase.google.com/go/v4"
	"github.com/sirupsen/logrus"

	api "leadbook-backend/cmd/api"
	authdomain "leadbook-backend/internal/auth/domain"
	authRepo "leadbook-backend/internal/auth/repository"
	authUsecase "leadbook-backend/internal/auth/usecase"
	"leadbook-backend/internal/catalog"
	dashboardUsecase "leadbook-backend/internal/dashboard/usecase"
	leadRepo "leadbook-backend/internal/lead/repository"
	leadScheduler "leadbook-backend/internal/lead/scheduler"
	leadUsecase "leadbook-backend/internal/lead/usecase"
	tododomain "leadbook-backend/internal/todo/domain"
	todoRepo "leadbook-backend/internal/todo/repository"
	todoScheduler "leadbook-backend/internal/todo/scheduler"
	todoUsecase "leadbook-backend/internal/todo/usecase"
	"leadbook-backend/pkg/config"
	"leadbook-backend/pkg/database"
	"leadbook-backend/pkg/docstore"
	"leadbook-backend/pkg/fcm"
	"leadbook-backend/pkg/firebaseapp"
	"leadbook-backend/pkg/logger"
	"leadbook-backend/pkg/sse"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log := logger.For("main")

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(&authdomain.User{}, &authdomain.RefreshToken{}, &authdomain.FCMToken{}, &tododomain.BannerDismissal{}); err != nil {
		log.WithError(err).Fatal("Failed to migrate database")
	}

	// Firebase backs the document store, push notifications and ID-token sign-in
	var app *firebase.App
	if cfg.FirebaseProjectID != "" {
		app, err = firebaseapp.New(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentials)
		if err != nil {
			log.WithError(err).Fatal("Failed to initialize Firebase")
		}
	} else {
		log.Warn("FIREBASE_PROJECT_ID not configured, Firebase features disabled")
	}

	store := openStore(ctx, cfg, app, log)
	defer store.Close()

	// Initialize repositories (dependency injection)
	userRepo := authRepo.NewUserRepository(db)
	fcmTokenRepo := authRepo.NewFCMTokenRepository(db)
	leadRepository := leadRepo.NewLeadRepository(store)
	todoRepository := todoRepo.NewTodoRepository(store)
	dismissalRepo := todoRepo.NewDismissalRepository(db)

	// Initialize SSE Manager
	sseManager := sse.NewManager()
	go sseManager.Run()
	defer sseManager.Stop()

	// Initialize use cases (dependency injection)
	var verifier authUsecase.TokenVerifier
	if app != nil {
		authClient, err := app.Auth(ctx)
		if err != nil {
			log.WithError(err).Warn("Failed to initialize Firebase Auth, ID-token sign-in disabled")
		} else {
			verifier = authClient
		}
	}
	authUsecaseInstance := authUsecase.NewAuthUsecase(userRepo, fcmTokenRepo, verifier, cfg)
	if err := authUsecaseInstance.EnsureAdmin(cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.WithError(err).Fatal("Failed to ensure admin account")
	}

	cat := catalog.New(cfg.LeadAccounts, cfg.LeadQueryTypes, cfg.LeadBrands)
	leadUsecaseInstance := leadUsecase.NewLeadUsecase(leadRepository, cat, nil, cfg.Location)
	todoUsecaseInstance := todoUsecase.NewTodoUsecase(todoRepository, dismissalRepo, nil, cfg.Location)
	dashboardUsecaseInstance := dashboardUsecase.NewDashboardUsecase(leadUsecaseInstance, todoUsecaseInstance, nil, cfg.Location)

	// Background schedulers
	var notifier leadScheduler.Notifier
	if app != nil {
		fcmClient, err := fcm.NewClient(ctx, app)
		if err != nil {
			log.WithError(err).Warn("Failed to initialize FCM client, follow-up reminders disabled")
		} else {
			notifier = fcmClient
		}
	}
	reminders := leadScheduler.NewFollowUpReminderScheduler(leadRepository, fcmTokenRepo, notifier, sseManager, cfg.ReminderInterval)
	reminders.Start()
	defer reminders.Stop()

	rollover := todoScheduler.NewRolloverScheduler(todoUsecaseInstance, sseManager, cfg.RolloverInterval)
	rollover.Start()
	defer rollover.Stop()

	// Initialize HTTP handler
	handler := api.NewHandler(authUsecaseInstance, leadUsecaseInstance, todoUsecaseInstance, dashboardUsecaseInstance, sseManager, cfg)

	// Start server
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("Failed to start server")
	}
}

func openStore(ctx context.Context, cfg *config.Config, app *firebase.App, log *logrus.Entry) docstore.Store {
	if cfg.UseFirestore() && app != nil {
		store, err := docstore.NewFirestoreStore(ctx, app)
		if err != nil {
			log.WithError(err).Fatal("Failed to open Firestore")
		}
		return store
	}

	log.Warn("Using in-memory document store, leads and todos are lost on restart")
	return docstore.NewMemoryStore()
}
