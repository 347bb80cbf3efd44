package utils

import (
	"fmt"
	"time"

	"assetvault/internal/config"
	"assetvault/internal/models"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// Claims is the token payload consumed by the authorization engine.
// Permissions holds the MODULE_ACTION codes computed at login time from
// the user's role; asset permissions are never embedded because they are
// looked up live.
type Claims struct {
	UserID          string   `json:"id"`
	Role            string   `json:"role"`
	UserType        string   `json:"userType"`
	PartnerCategory string   `json:"partnerCategory,omitempty"`
	Permissions     []string `json:"permissions"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the distinguished Admin role is present.
func (c *Claims) IsAdmin() bool {
	return c.Role == models.RoleAdmin
}

// HasPermission reports whether the token carries the given module
// permission code.
func (c *Claims) HasPermission(code string) bool {
	for _, p := range c.Permissions {
		if p == code {
			return true
		}
	}
	return false
}

// GenerateJWT signs a token for the user with the module permission codes
// resolved from their role.
func GenerateJWT(user models.User, permissionCodes []string, cfg config.JWTConfig) (string, error) {
	roleName := ""
	if user.Role != nil {
		roleName = user.Role.Name
	}

	now := time.Now()
	claims := Claims{
		UserID:          user.ID,
		Role:            roleName,
		UserType:        user.UserType,
		PartnerCategory: user.PartnerCategory,
		Permissions:     permissionCodes,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.Secret))
}

// ParseJWT parses and validates a token. Only HS256 is accepted; `none`
// and every other algorithm are rejected to block algorithm-confusion
// attacks. Issuer and audience must match the configured values.
func ParseJWT(tokenString string, cfg config.JWTConfig) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}

	if !claims.VerifyIssuer(cfg.Issuer, true) {
		return nil, fmt.Errorf("invalid token issuer")
	}
	if !claims.VerifyAudience(cfg.Audience, true) {
		return nil, fmt.Errorf("invalid token audience")
	}

	return claims, nil
}
