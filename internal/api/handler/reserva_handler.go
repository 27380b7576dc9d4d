package handler

import (
	"errors"
	"net/http"

	"porteria_local/internal/domain"
	"porteria_local/internal/repository"
	"porteria_local/internal/service"

	"github.com/gin-gonic/gin"
)

type ReservaHandler struct {
	reservaService *service.ReservaService
}

func NewReservaHandler(rs *service.ReservaService) *ReservaHandler {
	return &ReservaHandler{reservaService: rs}
}

// GET /api/reservas/buscar/:placa
func (h *ReservaHandler) BuscarPorPlaca(c *gin.Context) {
	reserva, err := h.reservaService.BuscarPorPlaca(c.Request.Context(), c.Param("placa"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReservasNoDisponible):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Módulo de reservas no disponible"})
		case errors.Is(err, domain.ErrPlacaInvalida):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "No hay reserva pendiente"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, reserva)
}

// GET /api/reservas/pendientes
func (h *ReservaHandler) Pendientes(c *gin.Context) {
	reservas, err := h.reservaService.Pendientes(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrReservasNoDisponible) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Módulo de reservas no disponible"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if reservas == nil {
		reservas = []domain.Reserva{}
	}
	c.JSON(http.StatusOK, reservas)
}

// DELETE /api/reservas/liberar/:id
func (h *ReservaHandler) Liberar(c *gin.Context) {
	if err := h.reservaService.Liberar(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrReservasNoDisponible) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Módulo de reservas no disponible"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
