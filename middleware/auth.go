// middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"knowledgehub/config"
	"knowledgehub/models"
	"knowledgehub/utils"
)

var (
	cfg            *config.Config
	userCollection *mongo.Collection
)

// Init wires the middleware package to the config object and the users
// collection. Called once from main.
func Init(c *config.Config, client *mongo.Client) {
	cfg = c
	userCollection = client.Database(c.DatabaseName).Collection("users")
}

// AuthMiddleware validates the bearer token, loads the acting user and
// injects userID/userName/userRole into the request context.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// WebSocket upgrades authenticate via query token in the handler.
		if r.Header.Get("Upgrade") == "websocket" {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondWithError(w, http.StatusUnauthorized, "Missing or invalid Authorization header")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := utils.ValidateJWT(cfg, tokenString)
		if err != nil {
			logrus.Debugf("AuthMiddleware: JWT validation failed: %v", err)
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID in token")
			return
		}

		var user models.User
		err = userCollection.FindOne(r.Context(), bson.M{"_id": userID}).Decode(&user)
		if err != nil {
			logrus.Debugf("AuthMiddleware: user %s not found: %v", claims.UserID, err)
			utils.RespondWithError(w, http.StatusUnauthorized, "User not found")
			return
		}

		ctx := context.WithValue(r.Context(), "userID", user.ID.Hex())
		ctx = context.WithValue(ctx, "userName", user.Username)
		ctx = context.WithValue(ctx, "userRole", user.Role)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles gates a route on a static role allow-list. A request passes
// iff the authenticated user's role is a member. An empty list means any
// authenticated role.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := r.Context().Value("userRole").(string)
			if !ok || role == "" {
				utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			if !RoleAllowed(role, roles) {
				utils.RespondWithError(w, http.StatusForbidden, "Insufficient role for this operation")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WebSocketAuth authenticates an upgrade request via the token query
// parameter, since browsers cannot set an Authorization header on a
// WebSocket handshake.
func WebSocketAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString := r.URL.Query().Get("token")
		if tokenString == "" {
			utils.RespondWithError(w, http.StatusUnauthorized, "Missing token")
			return
		}
		claims, err := utils.ValidateJWT(cfg, tokenString)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), "userID", claims.UserID)
		ctx = context.WithValue(ctx, "userName", claims.Username)
		ctx = context.WithValue(ctx, "userRole", claims.Role)

		next(w, r.WithContext(ctx))
	}
}

// RoleAllowed is the membership check behind RequireRoles, split out so the
// rule itself is testable.
func RoleAllowed(role string, allowList []string) bool {
	if len(allowList) == 0 {
		return role != ""
	}
	for _, allowed := range allowList {
		if role == allowed {
			return true
		}
	}
	return false
}
