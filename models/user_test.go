package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleTiers(t *testing.T) {
	assert.True(t, IsAdminTier(RoleAdministrator))
	assert.True(t, IsAdminTier(RoleGovernance))
	assert.False(t, IsAdminTier(RoleChampion))
	assert.False(t, IsAdminTier(RoleConsultant))
	assert.False(t, IsAdminTier(RoleProjectManager))

	assert.True(t, IsReviewerTier(RoleChampion))
	assert.True(t, IsReviewerTier(RoleAdministrator))
	assert.True(t, IsReviewerTier(RoleGovernance))
	assert.False(t, IsReviewerTier(RoleConsultant))
	assert.False(t, IsReviewerTier(RoleProjectManager))
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleConsultant, RoleChampion, RoleProjectManager, RoleAdministrator, RoleGovernance} {
		assert.True(t, ValidRole(role), role)
	}
	assert.False(t, ValidRole(""))
	assert.False(t, ValidRole("Intern"))
	assert.False(t, ValidRole("consultant"))
}
