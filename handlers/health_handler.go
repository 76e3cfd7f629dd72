// handlers/health_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/mongo/readpref"

	"knowledgehub/utils"
)

// HealthCheck reports service liveness and database reachability.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	overall := "ok"
	dbStatus := "up"
	status := http.StatusOK
	if err := mongoClient.Ping(ctx, readpref.Primary()); err != nil {
		overall = "degraded"
		dbStatus = "down"
		status = http.StatusServiceUnavailable
	}

	utils.RespondWithJSON(w, status, map[string]interface{}{
		"status":   overall,
		"database": dbStatus,
		"time":     time.Now().UTC().Format(time.RFC3339),
	})
}
