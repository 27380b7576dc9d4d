package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

// Estados de una reserva en la base externa. Este sistema solo lee y hace
// transiciones acotadas; las reservas las crea el sitio web.
const (
	ReservaPendiente  = "Pendiente"
	ReservaEnSitio    = "En Sitio"
	ReservaFinalizada = "Finalizada"
	ReservaCancelada  = "Cancelada"
	ReservaExpirada   = "Expirada"
)

type Reserva struct {
	ID              string    `json:"id_reserva"`
	Placa           string    `json:"placa"`
	TipoVehiculo    string    `json:"tipo_vehiculo"`
	Color           string    `json:"color"`
	FechaRegistro   time.Time `json:"fecha_registro"`
	FechaExpiracion null.Time `json:"fecha_expiracion"`
	Estado          string    `json:"estado"`
}

// MapeoTipoVehiculo traduce la etiqueta de categoría del sitio de reservas al
// id de categoría local. Toda etiqueta esperada debe tener exactamente una
// entrada; las taxonomías de ambos sistemas divergen por su cuenta.
var MapeoTipoVehiculo = map[string]string{
	"Automóvil":   "liviano",
	"Carro":       "liviano",
	"Moto":        "moto",
	"Motocicleta": "moto",
	"Otro":        "otros",
	"Pesado":      "otros",
}

// MapeoEtiquetaReserva traduce la etiqueta externa al nombre que muestra la
// UI de la portería. Las etiquetas sin entrada pasan tal cual.
var MapeoEtiquetaReserva = map[string]string{
	"Automóvil": "Carro",
	"Otro":      "Otros",
}

type ReservaEncontradaDTO struct {
	Existe       bool      `json:"existe"`
	IDReserva    string    `json:"id_reserva"`
	Placa        string    `json:"placa"`
	Categoria    string    `json:"categoria"`
	CategoriaID  string    `json:"categoria_id"`
	Color        string    `json:"color"`
	FechaReserva time.Time `json:"fecha_reserva"`
}
