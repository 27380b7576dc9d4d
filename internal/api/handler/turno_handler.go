package handler

import (
	"errors"
	"net/http"
	"strconv"

	"porteria_local/internal/domain"
	"porteria_local/internal/repository"
	"porteria_local/internal/service"

	"github.com/gin-gonic/gin"
)

type TurnoHandler struct {
	turnoService *service.TurnoService
}

func NewTurnoHandler(ts *service.TurnoService) *TurnoHandler {
	return &TurnoHandler{turnoService: ts}
}

// POST /api/turnos/abrir
func (h *TurnoHandler) Abrir(c *gin.Context) {
	var dto domain.AbrirTurnoDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "usuario_id requerido"})
		return
	}

	turno, err := h.turnoService.Abrir(c.Request.Context(), dto)
	if err != nil {
		if errors.Is(err, service.ErrTurnoYaAbierto) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "turno_id": turno.ID})
}

// GET /api/turnos/resumen-actual?turno_id=
func (h *TurnoHandler) ResumenActual(c *gin.Context) {
	turnoID, err := strconv.ParseInt(c.Query("turno_id"), 10, 64)
	if err != nil || turnoID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Falta turno_id"})
		return
	}

	resumen, err := h.turnoService.Resumen(c.Request.Context(), turnoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Turno no existe"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resumen)
}

// POST /api/turnos/cerrar
func (h *TurnoHandler) Cerrar(c *gin.Context) {
	var dto domain.CerrarTurnoDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "turno_id requerido"})
		return
	}

	if err := h.turnoService.Cerrar(c.Request.Context(), dto.TurnoID); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Turno no existe"})
		case errors.Is(err, service.ErrTurnoNoAbierto):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
