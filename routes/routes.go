package routes

import (
	"github.com/gorilla/mux"

	"knowledgehub/handlers"
	"knowledgehub/middleware"
	"knowledgehub/models"
	"knowledgehub/websocket"
)

// HTTP method constants for better maintainability
var (
	MethodsGetOnly  = []string{"GET", "OPTIONS"}
	MethodsPostOnly = []string{"POST", "OPTIONS"}
	MethodsPutOnly  = []string{"PUT", "OPTIONS"}
)

// Role allow-lists used across route groups.
var (
	reviewerTier = []string{models.RoleChampion, models.RoleAdministrator, models.RoleGovernance}
	adminTier    = []string{models.RoleAdministrator, models.RoleGovernance}
)

func RegisterRoutes(r *mux.Router) {
	// ====================
	// HEALTH CHECK (Public)
	// ====================
	r.HandleFunc("/health", handlers.HealthCheck).Methods(MethodsGetOnly...)

	// ====================
	// AUTHENTICATION ROUTES (Public - No auth required)
	// ====================
	r.HandleFunc("/api/auth/register", handlers.Register).Methods(MethodsPostOnly...)
	r.HandleFunc("/api/auth/login", handlers.Login).Methods(MethodsPostOnly...)

	// ====================
	// WEBSOCKET (token checked during upgrade)
	// ====================
	r.HandleFunc("/ws", middleware.WebSocketAuth(websocket.ServeWS))

	// ====================
	// PROTECTED API ROUTES (Require authentication)
	// ====================
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.AuthMiddleware)

	// Account
	api.HandleFunc("/auth/me", handlers.GetCurrentUser).Methods(MethodsGetOnly...)
	api.HandleFunc("/auth/change-password", handlers.ChangePassword).Methods(MethodsPostOnly...)

	// ====================
	// KNOWLEDGE ITEMS
	// ====================
	api.HandleFunc("/knowledge", handlers.CreateKnowledgeItem).Methods(MethodsPostOnly...)
	api.HandleFunc("/knowledge", handlers.ListKnowledgeItems).Methods(MethodsGetOnly...)
	api.HandleFunc("/knowledge/{id}", handlers.GetKnowledgeItem).Methods(MethodsGetOnly...)
	api.HandleFunc("/knowledge/{id}", handlers.UpdateKnowledgeItem).Methods(MethodsPutOnly...)
	api.HandleFunc("/knowledge/{id}/archive", handlers.ArchiveKnowledgeItem).Methods(MethodsPutOnly...)
	api.HandleFunc("/knowledge/{id}/view", handlers.RecordKnowledgeView).Methods(MethodsPostOnly...)
	api.HandleFunc("/knowledge/{id}/download", handlers.RecordKnowledgeDownload).Methods(MethodsPostOnly...)

	// Review decisions by item (reviewer tier)
	review := api.PathPrefix("/knowledge").Subrouter()
	review.Use(middleware.RequireRoles(reviewerTier...))
	review.HandleFunc("/{id}/approve", handlers.ApproveKnowledgeItem).Methods(MethodsPutOnly...)
	review.HandleFunc("/{id}/reject", handlers.RejectKnowledgeItem).Methods(MethodsPutOnly...)
	review.HandleFunc("/{id}/revision", handlers.RequestKnowledgeRevision).Methods(MethodsPutOnly...)

	// ====================
	// VALIDATION WORKFLOWS (reviewer tier)
	// ====================
	validations := api.PathPrefix("/validations").Subrouter()
	validations.Use(middleware.RequireRoles(reviewerTier...))
	validations.HandleFunc("", handlers.CreateValidation).Methods(MethodsPostOnly...)
	validations.HandleFunc("", handlers.ListValidations).Methods(MethodsGetOnly...)
	validations.HandleFunc("/stats", handlers.GetValidationStats).Methods(MethodsGetOnly...)
	validations.HandleFunc("/{id}", handlers.GetValidation).Methods(MethodsGetOnly...)
	validations.HandleFunc("/{id}", handlers.UpdateValidation).Methods(MethodsPutOnly...)

	reassign := api.PathPrefix("/validations").Subrouter()
	reassign.Use(middleware.RequireRoles(adminTier...))
	reassign.HandleFunc("/{id}/reassign", handlers.ReassignValidation).Methods(MethodsPutOnly...)

	// ====================
	// LEADERBOARD
	// ====================
	api.HandleFunc("/leaderboard", handlers.GetLeaderboard).Methods(MethodsGetOnly...)
	api.HandleFunc("/leaderboard/me", handlers.GetMyLeaderboardEntry).Methods(MethodsGetOnly...)

	// ====================
	// AUDIT LOG (admin tier)
	// ====================
	audit := api.PathPrefix("/audit").Subrouter()
	audit.Use(middleware.RequireRoles(adminTier...))
	audit.HandleFunc("", handlers.ListAuditLogs).Methods(MethodsGetOnly...)
	audit.HandleFunc("/stats", handlers.GetAuditStats).Methods(MethodsGetOnly...)
	audit.HandleFunc("/content/{id}", handlers.GetContentAuditTrail).Methods(MethodsGetOnly...)

	// ====================
	// MENTORSHIP
	// ====================
	api.HandleFunc("/mentorships", handlers.CreateMentorship).Methods(MethodsPostOnly...)
	api.HandleFunc("/mentorships", handlers.ListMentorships).Methods(MethodsGetOnly...)
	api.HandleFunc("/mentorships/{id}", handlers.UpdateMentorship).Methods(MethodsPutOnly...)

	// ====================
	// TRAINING
	// ====================
	api.HandleFunc("/training/modules", handlers.ListTrainingModules).Methods(MethodsGetOnly...)
	api.HandleFunc("/training/progress", handlers.UpdateTrainingProgress).Methods(MethodsPutOnly...)

	trainingAdmin := api.PathPrefix("/training").Subrouter()
	trainingAdmin.Use(middleware.RequireRoles(adminTier...))
	trainingAdmin.HandleFunc("/modules", handlers.CreateTrainingModule).Methods(MethodsPostOnly...)

	// ====================
	// MIGRATION (admin tier)
	// ====================
	migrations := api.PathPrefix("/migrations").Subrouter()
	migrations.Use(middleware.RequireRoles(adminTier...))
	migrations.HandleFunc("", handlers.RunMigration).Methods(MethodsPostOnly...)
	migrations.HandleFunc("", handlers.ListMigrations).Methods(MethodsGetOnly...)

	// ====================
	// SETTINGS (admin tier)
	// ====================
	settings := api.PathPrefix("/settings").Subrouter()
	settings.Use(middleware.RequireRoles(adminTier...))
	settings.HandleFunc("", handlers.GetSettings).Methods(MethodsGetOnly...)
	settings.HandleFunc("", handlers.UpdateSettings).Methods(MethodsPutOnly...)
}
