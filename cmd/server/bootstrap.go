package main

import (
	"gorm.io/gorm"

	"github.com/BorisNikolic/timeline-app-sub001/internal/config"
	"github.com/BorisNikolic/timeline-app-sub001/internal/handlers"
	"github.com/BorisNikolic/timeline-app-sub001/internal/models"
	"github.com/BorisNikolic/timeline-app-sub001/internal/services"
	"github.com/BorisNikolic/timeline-app-sub001/internal/utils"
	"github.com/BorisNikolic/timeline-app-sub001/pkg/logger"
)

// appServices holds the initialized services and handlers the router needs.
type appServices struct {
	db                *gorm.DB
	timelineService   *services.TimelineService
	invitationSweeper *services.InvitationSweeper

	authHandler        *handlers.AuthHandler
	timelineHandler    *handlers.TimelineHandler
	memberHandler      *handlers.MemberHandler
	invitationHandler  *handlers.InvitationHandler
	eventHandler       *handlers.EventHandler
	categoryHandler    *handlers.CategoryHandler
	preferencesHandler *handlers.PreferencesHandler
}

// bootstrap initializes all application dependencies: database, services,
// schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	db, err := models.Open(&cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := models.AutoMigrate(db); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	preferencesService := services.NewPreferencesService(db)
	memberService := services.NewMemberService(db, preferencesService)
	timelineService := services.NewTimelineService(db)
	emailService := services.NewEmailService(&cfg.Email, cfg.App.BaseURL)
	invitationService := services.NewInvitationService(db, emailService, cfg.JWT.ExpireHour)
	authService := services.NewAuthService(db, &cfg.JWT)
	eventService := services.NewEventService(db)
	categoryService := services.NewCategoryService(db)

	sweeper := services.NewInvitationSweeper(invitationService)
	sweeper.StartScheduler()

	return &appServices{
		db:                db,
		timelineService:   timelineService,
		invitationSweeper: sweeper,

		authHandler:        handlers.NewAuthHandler(authService),
		timelineHandler:    handlers.NewTimelineHandler(timelineService),
		memberHandler:      handlers.NewMemberHandler(memberService),
		invitationHandler:  handlers.NewInvitationHandler(invitationService),
		eventHandler:       handlers.NewEventHandler(eventService),
		categoryHandler:    handlers.NewCategoryHandler(categoryService),
		preferencesHandler: handlers.NewPreferencesHandler(preferencesService),
	}
}

// shutdown gracefully stops schedulers and closes the database.
func (s *appServices) shutdown() {
	s.invitationSweeper.StopScheduler()

	if err := models.Close(s.db); err != nil {
		logger.Errorf("Failed to close database: %v", err)
	}
	logger.Infof("Shutdown complete")
}
