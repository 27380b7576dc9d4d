package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

const (
	TurnoAbierto = "ABIERTO"
	TurnoCerrado = "CERRADO"
)

// BaseInicialPorDefecto se usa cuando el operador abre turno sin indicar base.
const BaseInicialPorDefecto = 50000

type Turno struct {
	ID                  int64     `json:"id"`
	UsuarioID           string    `json:"usuario_id"`
	HoraApertura        time.Time `json:"hora_apertura"`
	HoraCierre          null.Time `json:"hora_cierre"`
	BaseInicial         float64   `json:"base_inicial"`
	TotalEfectivo       float64   `json:"total_efectivo"`
	TotalDigital        float64   `json:"total_digital"`
	VehiculosIngresados int       `json:"vehiculos_ingresados"`
	VehiculosSalidos    int       `json:"vehiculos_salidos"`
	Estado              string    `json:"estado"`
}

type AbrirTurnoDTO struct {
	UsuarioID   string  `json:"usuario_id" binding:"required"`
	BaseInicial float64 `json:"base_inicial"`
}

type CerrarTurnoDTO struct {
	TurnoID int64 `json:"turno_id" binding:"required"`
}

// ResumenTurnoDTO es el resumen en vivo del turno. Los totales se calculan
// sobre los registros FINALIZADOS atribuidos al turno; los pendientes son los
// vehículos ACTIVOS de todo el patio, sin importar qué turno los ingresó.
type ResumenTurnoDTO struct {
	ID                  int64     `json:"id"`
	UsuarioID           string    `json:"usuario_id"`
	HoraApertura        time.Time `json:"hora_apertura"`
	HoraCierre          null.Time `json:"hora_cierre"`
	BaseInicial         float64   `json:"base_inicial"`
	Estado              string    `json:"estado"`
	TotalEfectivo       float64   `json:"total_efectivo"`
	TotalDigital        float64   `json:"total_digital"`
	TotalRecaudado      float64   `json:"total_recaudado"`
	VehiculosIngresados int       `json:"vehiculos_ingresados"`
	VehiculosSalidos    int       `json:"vehiculos_salidos"`
	VehiculosPendientes int       `json:"vehiculos_pendientes"`
}
