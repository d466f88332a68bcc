package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJWTClaims_Roles(t *testing.T) {
	claims := JWTClaims{}
	claims.RealmAccess.Roles = []string{"AGENT", "offline_access"}
	claims.ResourceAccess = map[string]ResourceRoles{
		"qcb-portal": {Roles: []string{"ADMIN", "AGENT"}},
		"account":    {Roles: []string{"manage-account"}},
	}

	roles := claims.Roles("qcb-portal")
	assert.Equal(t, []Role{"AGENT", "offline_access", "ADMIN"}, roles)

	roles = claims.Roles("unknown-client")
	assert.Equal(t, []Role{"AGENT", "offline_access"}, roles)
}

func TestJWTClaims_Principal(t *testing.T) {
	claims := JWTClaims{PreferredUsername: "rahim", Name: "Rahim Uddin"}
	claims.Subject = "user-1"
	claims.RealmAccess.Roles = []string{"AUTHENTICATOR"}

	p := claims.Principal("qcb-portal")
	assert.Equal(t, "user-1", p.UserID)
	assert.Equal(t, "rahim", p.Username)
	assert.True(t, p.HasRole(RoleAuthenticator))
	assert.False(t, p.HasRole(RoleAdmin))
	assert.True(t, p.HasAnyRole(DecisionRoles...))
}

func TestPrincipal_NilHasNoRoles(t *testing.T) {
	var p *Principal
	assert.False(t, p.HasRole(RoleAdmin))
	assert.False(t, p.HasAnyRole(RoleAdmin, RoleAgent))
}
