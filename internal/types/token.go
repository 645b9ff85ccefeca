package types

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims represents the claims in a JWT token
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	IsAdmin  bool      `json:"is_admin"`
}

// Identity returns the acting identity described by the claims.
func (c *TokenClaims) Identity() *Identity {
	return &Identity{
		UserID:   c.UserID,
		Username: c.Username,
		IsAdmin:  c.IsAdmin,
	}
}

// Identity is the authenticated caller of a request. A nil *Identity is an
// anonymous caller.
type Identity struct {
	UserID   uuid.UUID
	Username string
	IsAdmin  bool
}

// CanModify reports whether the identity may mutate a resource owned by ownerID.
func (i *Identity) CanModify(ownerID uuid.UUID) bool {
	return i != nil && (i.IsAdmin || i.UserID == ownerID)
}

// TokenResponse is returned by the login endpoint.
type TokenResponse struct {
	AuthToken string `json:"auth_token"`
}
