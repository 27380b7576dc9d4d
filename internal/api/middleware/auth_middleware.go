package middleware

import (
	"net/http"
	"strings"

	"porteria_local/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	AuthorizationHeaderKey  = "Authorization"
	AuthorizationTypeBearer = "Bearer"
	UserIDKey               = "usuarioID"
	UserRolKey              = "usuarioRol"
)

type AuthMiddleware struct {
	authService *service.AuthService
}

func NewAuthMiddleware(authService *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthorizationHeaderKey)
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Falta el header de autorización"})
			return
		}

		fields := strings.Fields(authHeader)
		if len(fields) < 2 || !strings.EqualFold(fields[0], AuthorizationTypeBearer) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Formato de autorización inválido"})
			return
		}

		claims, err := m.authService.ValidateToken(fields[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token inválido o vencido"})
			return
		}

		sub, _ := claims["sub"].(string)
		rol, _ := claims["rol"].(string)
		c.Set(UserIDKey, sub)
		c.Set(UserRolKey, rol)
		c.Next()
	}
}

func (m *AuthMiddleware) AuthorizeRol(rolesPermitidos ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rolVal, exists := c.Get(UserRolKey)
		rol, ok := rolVal.(string)
		if !exists || !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Sin permiso (falta rol)"})
			return
		}
		for _, permitido := range rolesPermitidos {
			if rol == permitido {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Sin permiso (rol no autorizado)"})
	}
}
