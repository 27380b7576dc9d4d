package handler

import (
	"errors"
	"net/http"

	"porteria_local/internal/domain"
	"porteria_local/internal/repository"
	"porteria_local/internal/service"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	registroService *service.RegistroService
}

func NewDashboardHandler(rs *service.RegistroService) *DashboardHandler {
	return &DashboardHandler{registroService: rs}
}

// GET /api/dashboard/stats
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.registroService.DashboardStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GET /api/dashboard/activos
func (h *DashboardHandler) Activos(c *gin.Context) {
	activos, err := h.registroService.Activos(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if activos == nil {
		activos = []domain.Registro{}
	}
	c.JSON(http.StatusOK, activos)
}

// GET /api/verificar-cupo/:categoria
func (h *DashboardHandler) VerificarCupo(c *gin.Context) {
	cupo, err := h.registroService.VerificarCupo(c.Request.Context(), c.Param("categoria"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Categoría no existe"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cupo)
}

// GET /api/categorias
func (h *DashboardHandler) Categorias(c *gin.Context) {
	categorias, err := h.registroService.Categorias(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, categorias)
}
