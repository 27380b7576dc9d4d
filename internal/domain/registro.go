package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"gopkg.in/guregu/null.v4"
)

// Estados de un registro de vehículo. Un registro nunca se borra físicamente,
// solo cambia de estado.
const (
	RegistroActivo     = "ACTIVO"
	RegistroFinalizado = "FINALIZADO"
	RegistroLiberado   = "LIBERADO"
)

type Registro struct {
	ID          int64       `json:"id"`
	Placa       string      `json:"placa"`
	CategoriaID string      `json:"categoria_id"`
	Puesto      string      `json:"puesto"`
	Color       string      `json:"color"`
	Entrada     time.Time   `json:"entrada"`
	Salida      null.Time   `json:"salida"`
	TotalPagado null.Float  `json:"total_pagado"`
	MetodoPago  null.String `json:"metodo_pago"`
	IDTurno     int64       `json:"id_turno"`
	Estado      string      `json:"estado"`
	IDReserva   null.String `json:"id_reserva"`

	// Rellenado por los joins de listado; no es una columna propia.
	CategoriaNombre string `json:"categoria_nombre,omitempty"`
}

var ErrPlacaInvalida = errors.New("placa inválida")

var placaValida = regexp.MustCompile(`^[A-Z0-9]+$`)

// NormalizarPlaca lleva la placa a mayúsculas sin guiones ni espacios.
// Rechaza placas vacías o con caracteres no alfanuméricos.
func NormalizarPlaca(placa string) (string, error) {
	p := strings.ToUpper(strings.TrimSpace(placa))
	p = strings.ReplaceAll(p, "-", "")
	p = strings.ReplaceAll(p, " ", "")
	if p == "" || !placaValida.MatchString(p) {
		return "", ErrPlacaInvalida
	}
	return p, nil
}

type IngresoDTO struct {
	Placa         string `json:"placa" binding:"required"`
	CategoriaID   string `json:"categoria_id" binding:"required"`
	Color         string `json:"color" binding:"required"`
	IDTurno       int64  `json:"id_turno" binding:"required"`
	IDReserva     string `json:"id_reserva"`
	PuestoReserva string `json:"puesto_reserva"`
}

type PagoDTO struct {
	ID          int64   `json:"id" binding:"required"`
	TotalPagado float64 `json:"total_pagado"`
	MetodoPago  string  `json:"metodo_pago" binding:"required"`
	IDTurno     int64   `json:"id_turno" binding:"required"`
}

type HistorialFiltroDTO struct {
	Placa  string `form:"placa"`
	Inicio string `form:"inicio"`
	Fin    string `form:"fin"`
	Offset int    `form:"offset"`
	Limit  int    `form:"limit"`
}

// VehiculoActivoDTO es la respuesta de la consulta por placa: el registro más
// el total calculado al momento de la consulta. El valor que se cobra es el
// que llega en el pago, no este.
type VehiculoActivoDTO struct {
	Registro
	TarifaMinuto   float64 `json:"tarifa_minuto"`
	TarifaHora     float64 `json:"tarifa_hora"`
	MinutosTotales int64   `json:"minutos_totales"`
	TotalPagar     int64   `json:"total_pagar"`
}

type OcupacionCategoria struct {
	Actual int `json:"actual"`
	Max    int `json:"max"`
}

type DashboardStatsDTO struct {
	Ocupacion        map[string]OcupacionCategoria `json:"ocupacion"`
	IngresosHoy      float64                       `json:"ingresosHoy"`
	VehiculosActivos int                           `json:"vehiculosActivos"`
}
