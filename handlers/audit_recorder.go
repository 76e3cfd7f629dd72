// handlers/audit_recorder.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"knowledgehub/models"
	"knowledgehub/websocket"
)

// Audit actions. Validation actions are keyed VALIDATION_<STATUS>.
const (
	AuditKnowledgeCreated  = "KNOWLEDGE_CREATED"
	AuditKnowledgeUpdated  = "KNOWLEDGE_UPDATED"
	AuditKnowledgeArchived = "KNOWLEDGE_ARCHIVED"
	AuditValidationCreated = "VALIDATION_CREATED"
	AuditUserRegistered    = "USER_REGISTERED"
	AuditPasswordChanged   = "PASSWORD_CHANGED"
	AuditMentorshipCreated = "MENTORSHIP_CREATED"
	AuditMentorshipUpdated = "MENTORSHIP_UPDATED"
	AuditTrainingCreated   = "TRAINING_MODULE_CREATED"
	AuditMigrationRun      = "MIGRATION_RUN"
	AuditSettingsUpdated   = "SETTINGS_UPDATED"
)

// validationAuditAction maps a workflow status to its audit action key.
func validationAuditAction(status string) string {
	switch status {
	case models.ValidationApproved:
		return "VALIDATION_APPROVED"
	case models.ValidationRejected:
		return "VALIDATION_REJECTED"
	case models.ValidationRevisionRequested:
		return "VALIDATION_REVISION_REQUESTED"
	case models.ValidationInReview:
		return "VALIDATION_IN_REVIEW"
	case models.ValidationPending:
		return "VALIDATION_REASSIGNED"
	default:
		return "VALIDATION_" + status
	}
}

// recordAudit appends an audit entry. Logging failure never fails the
// caller's operation; errors only reach the operator log. This is the one
// deliberate never-fail-the-primary-path rule in the system.
func recordAudit(ctx context.Context, r *http.Request, action, targetModel string, target primitive.ObjectID, details bson.M) {
	act, ok := actorFromRequest(r)
	if !ok {
		logrus.Warnf("recordAudit: no actor in context for action %s", action)
		return
	}

	entry := models.AuditLog{
		ID:          primitive.NewObjectID(),
		Action:      action,
		Actor:       act.ID,
		ActorName:   act.Name,
		ActorRole:   act.Role,
		Target:      target,
		TargetModel: targetModel,
		Details:     details,
		IPAddress:   r.RemoteAddr,
		Timestamp:   time.Now().UTC(),
	}

	if auditLogCollection == nil {
		logrus.Warn("recordAudit: audit collection not initialized")
		return
	}
	if _, err := auditLogCollection.InsertOne(ctx, entry); err != nil {
		logrus.Errorf("Failed to write audit log for %s: %v", action, err)
		return
	}
	websocket.SendAuditRecorded(entry)
}
