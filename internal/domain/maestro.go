package domain

// Cargas que se envían al servidor maestro. Todos los envíos son best-effort:
// si el maestro está caído el evento se pierde y su tablero queda desfasado
// hasta el siguiente envío.

type MovimientoMaestro struct {
	EventoID        string  `json:"evento_id"`
	ID              int64   `json:"id"`
	Placa           string  `json:"placa"`
	TipoVehiculo    string  `json:"tipo_vehiculo,omitempty"`
	Entrada         string  `json:"entrada"`
	Salida          string  `json:"salida,omitempty"`
	TotalPagado     float64 `json:"total_pagado,omitempty"`
	MetodoPago      string  `json:"metodo_pago,omitempty"`
	UsuarioNombre   string  `json:"usuario_nombre"`
	DuracionMinutos int64   `json:"duracion_minutos,omitempty"`
	PorteriaID      string  `json:"porteria_id"`
}

type EstadoPatioMaestro struct {
	EventoID         string         `json:"evento_id"`
	IngresosHoy      float64        `json:"ingresos_hoy"`
	OcupacionTotal   int            `json:"ocupacion_total"`
	DetalleOcupacion map[string]int `json:"detalle_ocupacion"`
}

type CierreTurnoMaestro struct {
	PorteriaTurnoID        int64   `json:"porteria_turno_id"`
	UsuarioNombre          string  `json:"usuario_nombre"`
	HoraApertura           string  `json:"hora_apertura"`
	HoraCierre             string  `json:"hora_cierre"`
	BaseInicial            float64 `json:"base_inicial"`
	TotalEfectivoSistema   float64 `json:"total_efectivo_sistema"`
	TotalDigitalSistema    float64 `json:"total_digital_sistema"`
	TotalEfectivoReportado float64 `json:"total_efectivo_reportado"`
	TotalDigitalReportado  float64 `json:"total_digital_reportado"`
	TotalEnCaja            float64 `json:"total_en_caja"`
	Observaciones          string  `json:"observaciones"`
}
