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

type RegistroHandler struct {
	registroService *service.RegistroService
}

func NewRegistroHandler(rs *service.RegistroService) *RegistroHandler {
	return &RegistroHandler{registroService: rs}
}

// POST /api/ingreso
func (h *RegistroHandler) Ingresar(c *gin.Context) {
	var dto domain.IngresoDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos inválidos: " + err.Error()})
		return
	}

	reg, err := h.registroService.Ingresar(c.Request.Context(), dto)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPlacaInvalida):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrDuplicateEntry), errors.Is(err, service.ErrSinCupo):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "id": reg.ID, "puesto": reg.Puesto})
}

// GET /api/vehiculo/:placa
func (h *RegistroHandler) ConsultarPorPlaca(c *gin.Context) {
	vehiculo, err := h.registroService.ConsultarPorPlaca(c.Request.Context(), c.Param("placa"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPlacaInvalida):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehículo no encontrado o ya salió."})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, vehiculo)
}

// GET /api/calcular/:id
func (h *RegistroHandler) Calcular(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}
	minutos, total, err := h.registroService.CalcularPorID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No encontrado"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"duracion_minutos": minutos, "total": total})
}

// POST /api/procesar-pago
func (h *RegistroHandler) ProcesarPago(c *gin.Context) {
	var dto domain.PagoDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos inválidos: " + err.Error()})
		return
	}

	if err := h.registroService.ProcesarPago(c.Request.Context(), dto); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Registro no existe"})
		case errors.Is(err, service.ErrRegistroNoActivo):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DELETE /api/registros/:id — liberación manual sin cobro.
func (h *RegistroHandler) Liberar(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}
	if err := h.registroService.Liberar(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Registro no existe o ya salió"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GET /api/historial?placa&inicio&fin&offset&limit
func (h *RegistroHandler) Historial(c *gin.Context) {
	var filtro domain.HistorialFiltroDTO
	if err := c.ShouldBindQuery(&filtro); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Filtros inválidos: " + err.Error()})
		return
	}
	registros, err := h.registroService.Historial(c.Request.Context(), filtro)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if registros == nil {
		registros = []domain.Registro{}
	}
	c.JSON(http.StatusOK, registros)
}
