package auth

import (
	"crypto/subtle"

	"github.com/2beens/gymquest/pkg"
)

var _ Checker = (*TokenChecker)(nil)

type Checker interface {
	IsApp(token string) bool
	IsAdmin(token string) bool
}

// TokenChecker validates the shared app token and the admin token against its bcrypt hash.
type TokenChecker struct {
	appToken       string
	adminTokenHash string
}

func NewTokenChecker(appToken, adminTokenHash string) *TokenChecker {
	return &TokenChecker{
		appToken:       appToken,
		adminTokenHash: adminTokenHash,
	}
}

func (c *TokenChecker) IsApp(token string) bool {
	if c.appToken == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(c.appToken), []byte(token)) == 1
}

func (c *TokenChecker) IsAdmin(token string) bool {
	if c.adminTokenHash == "" || token == "" {
		return false
	}
	return pkg.CheckPasswordHash(token, c.adminTokenHash)
}
