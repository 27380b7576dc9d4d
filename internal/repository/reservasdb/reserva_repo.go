package reservasdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"porteria_local/internal/domain"
	"porteria_local/internal/repository"
)

type pgReservaRepository struct {
	db *sql.DB
}

func NewReservaRepository(db *sql.DB) repository.ReservaRepository {
	return &pgReservaRepository{db: db}
}

// PendientesPorPlaca trae todas las reservas Pendientes de la placa ya
// normalizada (mayúsculas, sin guiones ni espacios); la placa en la base web
// puede venir con cualquier formato. La ventana de recencia y el desempate la
// decide el servicio, no esta consulta.
func (r *pgReservaRepository) PendientesPorPlaca(ctx context.Context, placaNormalizada string) ([]domain.Reserva, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id_reserva, placa, tipo_vehiculo, color, fecha_registro, fecha_expiracion, estado
		 FROM reservas
		 WHERE REPLACE(REPLACE(UPPER(placa), '-', ''), ' ', '') = $1
		   AND estado = 'Pendiente'`,
		placaNormalizada)
	if err != nil {
		return nil, fmt.Errorf("ReservaRepository.PendientesPorPlaca: %w", err)
	}
	defer rows.Close()

	var reservas []domain.Reserva
	for rows.Next() {
		var res domain.Reserva
		if err := rows.Scan(&res.ID, &res.Placa, &res.TipoVehiculo, &res.Color,
			&res.FechaRegistro, &res.FechaExpiracion, &res.Estado); err != nil {
			return nil, fmt.Errorf("error escaneando reserva: %w", err)
		}
		reservas = append(reservas, res)
	}
	return reservas, rows.Err()
}

func (r *pgReservaRepository) Pendientes(ctx context.Context) ([]domain.Reserva, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id_reserva, placa, tipo_vehiculo, color, fecha_registro, fecha_expiracion, estado
		 FROM reservas
		 WHERE estado = 'Pendiente'
		 ORDER BY fecha_registro ASC`)
	if err != nil {
		return nil, fmt.Errorf("ReservaRepository.Pendientes: %w", err)
	}
	defer rows.Close()

	var reservas []domain.Reserva
	for rows.Next() {
		var res domain.Reserva
		if err := rows.Scan(&res.ID, &res.Placa, &res.TipoVehiculo, &res.Color,
			&res.FechaRegistro, &res.FechaExpiracion, &res.Estado); err != nil {
			return nil, fmt.Errorf("error escaneando reserva: %w", err)
		}
		reservas = append(reservas, res)
	}
	return reservas, rows.Err()
}

// ActualizarEstado solo transiciona reservas aún Pendientes; repetir la
// operación sobre una reserva terminal no hace nada y no es un error.
func (r *pgReservaRepository) ActualizarEstado(ctx context.Context, id string, estado string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE reservas SET estado = $1 WHERE id_reserva = $2 AND estado = 'Pendiente'`,
		estado, id)
	if err != nil {
		return fmt.Errorf("ReservaRepository.ActualizarEstado: %w", err)
	}
	return nil
}

func (r *pgReservaRepository) MarcarEnSitio(ctx context.Context, id string) error {
	return r.ActualizarEstado(ctx, id, domain.ReservaEnSitio)
}

// FinalizarPorPlaca escribe sobre las columnas que el sitio web ya conoce:
// estado y total_pagado. La tabla no tiene columna de salida.
func (r *pgReservaRepository) FinalizarPorPlaca(ctx context.Context, placa string, totalPagado float64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE reservas
		 SET estado = $1, total_pagado = $2
		 WHERE REPLACE(REPLACE(UPPER(placa), '-', ''), ' ', '') = $3 AND estado = $4`,
		domain.ReservaFinalizada, totalPagado, placa, domain.ReservaEnSitio)
	if err != nil {
		return fmt.Errorf("ReservaRepository.FinalizarPorPlaca: %w", err)
	}
	return nil
}

func (r *pgReservaRepository) ExpirarVencidas(ctx context.Context, ahora time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reservas SET estado = $1 WHERE estado = 'Pendiente' AND fecha_expiracion < $2`,
		domain.ReservaExpirada, ahora)
	if err != nil {
		return 0, fmt.Errorf("ReservaRepository.ExpirarVencidas: %w", err)
	}
	return res.RowsAffected()
}
