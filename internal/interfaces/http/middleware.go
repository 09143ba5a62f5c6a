package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys set by AuthMiddleware for downstream handlers.
const (
	ctxUserID   = "user_id"
	ctxTenantID = "tenant_id"
	ctxStoreID  = "store_id"
	ctxRoles    = "roles"
)

// Claims is the JWT payload issued by the identity service.
type Claims struct {
	UserID   string   `json:"user_id"`
	TenantID string   `json:"tenant_id"`
	StoreID  string   `json:"store_id,omitempty"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates the bearer token and stashes tenant identity in
// the request context. Every /api route runs behind it.
func AuthMiddleware(secret string) gin.HandlerFunc {
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
		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "invalid token",
			})
			return
		}

		if claims.UserID == "" || claims.TenantID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "token missing identity claims",
			})
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxTenantID, claims.TenantID)
		c.Set(ctxStoreID, claims.StoreID)
		c.Set(ctxRoles, claims.Roles)
		c.Next()
	}
}

// userID returns the authenticated user's ID.
func userID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// tenantID returns the authenticated user's tenant.
func tenantID(c *gin.Context) string {
	return c.GetString(ctxTenantID)
}
