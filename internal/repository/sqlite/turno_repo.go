package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"porteria_local/internal/domain"
	"porteria_local/internal/repository"
)

type sqliteTurnoRepository struct {
	db *sql.DB
}

func NewTurnoRepository(db *sql.DB) repository.TurnoRepository {
	return &sqliteTurnoRepository{db: db}
}

func (r *sqliteTurnoRepository) Abrir(ctx context.Context, usuarioID string, baseInicial float64) (*domain.Turno, error) {
	apertura := time.Now()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO turnos (usuario_id, hora_apertura, base_inicial, estado) VALUES (?, ?, ?, 'ABIERTO')`,
		usuarioID, apertura, baseInicial)
	if err != nil {
		if mapped := mapError(err); errors.Is(mapped, repository.ErrDuplicateEntry) {
			return nil, mapped
		}
		return nil, fmt.Errorf("TurnoRepository.Abrir: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("TurnoRepository.Abrir (id): %w", err)
	}
	return &domain.Turno{
		ID:           id,
		UsuarioID:    usuarioID,
		HoraApertura: apertura,
		BaseInicial:  baseInicial,
		Estado:       domain.TurnoAbierto,
	}, nil
}

const turnoColumnas = `id, usuario_id, hora_apertura, hora_cierre, base_inicial,
	total_efectivo, total_digital, vehiculos_ingresados, vehiculos_salidos, estado`

func scanTurno(row *sql.Row) (*domain.Turno, error) {
	t := &domain.Turno{}
	err := row.Scan(&t.ID, &t.UsuarioID, &t.HoraApertura, &t.HoraCierre, &t.BaseInicial,
		&t.TotalEfectivo, &t.TotalDigital, &t.VehiculosIngresados, &t.VehiculosSalidos, &t.Estado)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *sqliteTurnoRepository) FindByID(ctx context.Context, id int64) (*domain.Turno, error) {
	t, err := scanTurno(r.db.QueryRowContext(ctx,
		`SELECT `+turnoColumnas+` FROM turnos WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("TurnoRepository.FindByID: %w", err)
	}
	return t, nil
}

func (r *sqliteTurnoRepository) FindAbiertoByUsuario(ctx context.Context, usuarioID string) (*domain.Turno, error) {
	t, err := scanTurno(r.db.QueryRowContext(ctx,
		`SELECT `+turnoColumnas+` FROM turnos WHERE usuario_id = ? AND estado = 'ABIERTO'`, usuarioID))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("TurnoRepository.FindAbiertoByUsuario: %w", err)
	}
	return t, nil
}

func (r *sqliteTurnoRepository) Cerrar(ctx context.Context, id int64, cierre time.Time, efectivo, digital float64, ingresados, salidos int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE turnos
		 SET hora_cierre = ?, total_efectivo = ?, total_digital = ?,
		     vehiculos_ingresados = ?, vehiculos_salidos = ?, estado = 'CERRADO'
		 WHERE id = ? AND estado = 'ABIERTO'`,
		cierre, efectivo, digital, ingresados, salidos, id)
	if err != nil {
		return fmt.Errorf("TurnoRepository.Cerrar: %w", err)
	}
	return exigirFila(res)
}

func (r *sqliteTurnoRepository) NombreEmpleado(ctx context.Context, turnoID int64) (string, error) {
	var nombre string
	err := r.db.QueryRowContext(ctx,
		`SELECT u.nombre FROM turnos t JOIN usuarios u ON t.usuario_id = u.id WHERE t.id = ?`,
		turnoID).Scan(&nombre)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", repository.ErrNotFound
		}
		return "", fmt.Errorf("TurnoRepository.NombreEmpleado: %w", err)
	}
	return nombre, nil
}
