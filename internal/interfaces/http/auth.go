package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/lumenhr/bonus-approval/internal/domain/entity"
)

const identityKey = "caller_identity"

// CallerIdentity is the verified identity of the requester, extracted
// from the bearer token issued by the upstream identity service.
type CallerIdentity struct {
	EmployeeID string
	Role       entity.Role
}

// identityClaims are the JWT claims this service understands.
type identityClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// identityMiddleware verifies the bearer token and stores the caller
// identity in the request context. Requests without a valid token are
// rejected before reaching any handler.
func identityMiddleware(secret, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "missing bearer token",
			})
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims := &identityClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(secret), nil
		}, jwt.WithIssuer(issuer))
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "invalid token",
			})
			return
		}

		role := entity.Role(claims.Role)
		if !role.IsValid() {
			role = entity.RoleEmployee
		}

		c.Set(identityKey, CallerIdentity{
			EmployeeID: claims.Subject,
			Role:       role,
		})
		c.Next()
	}
}

// callerFrom returns the verified identity stored by identityMiddleware.
func callerFrom(c *gin.Context) CallerIdentity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(CallerIdentity); ok {
			return id
		}
	}
	return CallerIdentity{}
}
