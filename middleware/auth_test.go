package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"knowledgehub/models"
)

func TestRoleAllowed(t *testing.T) {
	adminTier := []string{models.RoleAdministrator, models.RoleGovernance}
	reviewerTier := []string{models.RoleChampion, models.RoleAdministrator, models.RoleGovernance}

	tests := []struct {
		name      string
		role      string
		allowList []string
		want      bool
	}{
		{"admin on admin list", models.RoleAdministrator, adminTier, true},
		{"governance on admin list", models.RoleGovernance, adminTier, true},
		{"champion not on admin list", models.RoleChampion, adminTier, false},
		{"consultant not on admin list", models.RoleConsultant, adminTier, false},
		{"champion on reviewer list", models.RoleChampion, reviewerTier, true},
		{"project manager not on reviewer list", models.RoleProjectManager, reviewerTier, false},
		{"empty list admits any role", models.RoleConsultant, nil, true},
		{"empty list rejects empty role", "", nil, false},
		{"unknown role rejected", "Intern", reviewerTier, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RoleAllowed(tt.role, tt.allowList))
		})
	}
}

func TestRequireRoles(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	adminOnly := RequireRoles(models.RoleAdministrator, models.RoleGovernance)(next)
	anyRole := RequireRoles()(next)

	request := func(role string) *http.Request {
		r := httptest.NewRequest("GET", "/api/audit", nil)
		if role != "" {
			r = r.WithContext(context.WithValue(r.Context(), "userRole", role))
		}
		return r
	}

	tests := []struct {
		name    string
		handler http.Handler
		role    string
		want    int
	}{
		{"no role in context", adminOnly, "", http.StatusUnauthorized},
		{"consultant blocked", adminOnly, models.RoleConsultant, http.StatusForbidden},
		{"champion blocked", adminOnly, models.RoleChampion, http.StatusForbidden},
		{"administrator passes", adminOnly, models.RoleAdministrator, http.StatusOK},
		{"governance passes", adminOnly, models.RoleGovernance, http.StatusOK},
		{"empty list admits any role", anyRole, models.RoleConsultant, http.StatusOK},
		{"empty list still needs auth", anyRole, "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler.ServeHTTP(rec, request(tt.role))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
