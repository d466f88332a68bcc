package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the identity provider token claims we read
type JWTClaims struct {
	jwt.RegisteredClaims
	AZP         string `json:"azp"`
	RealmAccess struct {
		Roles []string `json:"roles"`
	} `json:"realm_access"`
	ResourceAccess    map[string]ResourceRoles `json:"resource_access"`
	Name              string                   `json:"name"`
	PreferredUsername string                   `json:"preferred_username"`
	Email             string                   `json:"email"`
}

// ResourceRoles lists the roles granted for one client
type ResourceRoles struct {
	Roles []string `json:"roles"`
}

// Roles merges realm roles with the roles granted for clientID
func (c *JWTClaims) Roles(clientID string) []Role {
	seen := map[Role]bool{}
	var roles []Role
	add := func(values []string) {
		for _, v := range values {
			r := Role(v)
			if !seen[r] {
				seen[r] = true
				roles = append(roles, r)
			}
		}
	}
	add(c.RealmAccess.Roles)
	if res, ok := c.ResourceAccess[clientID]; ok {
		add(res.Roles)
	}
	return roles
}

// Principal converts the claims into the request principal
func (c *JWTClaims) Principal(clientID string) *Principal {
	return &Principal{
		UserID:   c.Subject,
		Username: c.PreferredUsername,
		Name:     c.Name,
		Roles:    c.Roles(clientID),
	}
}
