package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"feriaocr/pkg/apitoken"
)

func jwtAuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") || len(authHeader) < 8 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			return
		}
		claims, err := apitoken.Parse(secret, authHeader[7:])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set("client", claims.Subject)
		if claims.Role != "" {
			c.Set("role", claims.Role)
		}
		c.Next()
	}
}
