package models

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const RoleSeller = "seller"

// Claims is the JWT payload issued by the identity service.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) IsSeller() bool {
	return c != nil && c.Role == RoleSeller
}
