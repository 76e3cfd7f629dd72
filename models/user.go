// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles. Role is the sole authorization axis; there are no per-resource ACLs.
const (
	RoleConsultant     = "Consultant"
	RoleChampion       = "Knowledge Champion"
	RoleProjectManager = "Project Manager"
	RoleAdministrator  = "Administrator"
	RoleGovernance     = "Governance Council"
)

type User struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username        string             `bson:"username" json:"username"`
	Email           string             `bson:"email" json:"email"`
	PasswordHash    string             `bson:"passwordHash" json:"-"`
	Role            string             `bson:"role" json:"role"`
	Skills          []string           `bson:"skills,omitempty" json:"skills,omitempty"`
	Region          string             `bson:"region,omitempty" json:"region,omitempty"`
	PromotionStatus string             `bson:"promotionStatus,omitempty" json:"promotionStatus,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
}

// IsAdminTier reports whether the role can administer workflows (reassign
// reviewers, read audit logs, manage settings).
func IsAdminTier(role string) bool {
	return role == RoleAdministrator || role == RoleGovernance
}

// IsReviewerTier reports whether the role can see the full review queue and
// act on validations.
func IsReviewerTier(role string) bool {
	return role == RoleChampion || IsAdminTier(role)
}

// ValidRole reports whether role is one of the five known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleConsultant, RoleChampion, RoleProjectManager, RoleAdministrator, RoleGovernance:
		return true
	}
	return false
}
