package handler

import (
	"errors"
	"net/http"

	"porteria_local/internal/domain"
	"porteria_local/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(as *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

// POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var dto domain.LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos inválidos: " + err.Error()})
		return
	}

	respuesta, err := h.authService.Login(c.Request.Context(), dto)
	if err != nil {
		if errors.Is(err, service.ErrCredencialesInvalidas) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Usuario o clave incorrecta"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, respuesta)
}

// GET /api/usuarios — solo admin.
func (h *AuthHandler) Usuarios(c *gin.Context) {
	usuarios, err := h.authService.Usuarios(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if usuarios == nil {
		usuarios = []domain.Usuario{}
	}
	c.JSON(http.StatusOK, usuarios)
}
