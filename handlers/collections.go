// handlers/collections.go
package handlers

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"knowledgehub/config"
)

var (
	mongoClient *mongo.Client
	appConfig   *config.Config

	userCollection             *mongo.Collection
	knowledgeCollection        *mongo.Collection
	validationCollection       *mongo.Collection
	auditLogCollection         *mongo.Collection
	leaderboardCollection      *mongo.Collection
	mentorshipCollection       *mongo.Collection
	trainingModuleCollection   *mongo.Collection
	trainingProgressCollection *mongo.Collection
	migrationCollection        *mongo.Collection
	settingsCollection         *mongo.Collection
)

// InitCollections binds the handler package to its collections. Called once
// from main after the database connection is up.
func InitCollections(client *mongo.Client, cfg *config.Config) {
	mongoClient = client
	appConfig = cfg

	db := client.Database(cfg.DatabaseName)
	userCollection = db.Collection("users")
	knowledgeCollection = db.Collection("knowledge_items")
	validationCollection = db.Collection("validation_workflows")
	auditLogCollection = db.Collection("audit_logs")
	leaderboardCollection = db.Collection("leaderboard")
	mentorshipCollection = db.Collection("mentorships")
	trainingModuleCollection = db.Collection("training_modules")
	trainingProgressCollection = db.Collection("training_progress")
	migrationCollection = db.Collection("migrations")
	settingsCollection = db.Collection("settings")
}

// actor is the authenticated user taken from the request context.
type actor struct {
	ID   primitive.ObjectID
	Name string
	Role string
}

func actorFromRequest(r *http.Request) (actor, bool) {
	idStr, ok := r.Context().Value("userID").(string)
	if !ok || idStr == "" {
		return actor{}, false
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		return actor{}, false
	}
	name, _ := r.Context().Value("userName").(string)
	role, _ := r.Context().Value("userRole").(string)
	return actor{ID: id, Name: name, Role: role}, true
}
