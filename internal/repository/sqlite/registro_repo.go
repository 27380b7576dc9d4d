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

type sqliteRegistroRepository struct {
	db *sql.DB
}

func NewRegistroRepository(db *sql.DB) repository.RegistroRepository {
	return &sqliteRegistroRepository{db: db}
}

const registroColumnas = `r.id, r.placa, r.categoria_id, r.puesto, r.color, r.entrada,
	r.salida, r.total_pagado, r.metodo_pago, r.id_turno, r.estado, r.id_reserva`

func scanRegistro(row interface{ Scan(...any) error }, reg *domain.Registro, conNombre bool) error {
	dest := []any{
		&reg.ID, &reg.Placa, &reg.CategoriaID, &reg.Puesto, &reg.Color, &reg.Entrada,
		&reg.Salida, &reg.TotalPagado, &reg.MetodoPago, &reg.IDTurno, &reg.Estado, &reg.IDReserva,
	}
	if conNombre {
		dest = append(dest, &reg.CategoriaNombre)
	}
	return row.Scan(dest...)
}

func (r *sqliteRegistroRepository) Create(ctx context.Context, reg *domain.Registro) (*domain.Registro, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO registros (placa, categoria_id, puesto, color, entrada, id_turno, estado, id_reserva)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		reg.Placa, reg.CategoriaID, reg.Puesto, reg.Color, reg.Entrada, reg.IDTurno, reg.Estado, reg.IDReserva,
	)
	if err != nil {
		if mapped := mapError(err); errors.Is(mapped, repository.ErrDuplicateEntry) {
			return nil, mapped
		}
		return nil, fmt.Errorf("RegistroRepository.Create: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("RegistroRepository.Create (id): %w", err)
	}
	reg.ID = id
	return reg, nil
}

func (r *sqliteRegistroRepository) FindByID(ctx context.Context, id int64) (*domain.Registro, error) {
	reg := &domain.Registro{}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+registroColumnas+` FROM registros r WHERE r.id = ?`, id)
	if err := scanRegistro(row, reg, false); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("RegistroRepository.FindByID: %w", err)
	}
	return reg, nil
}

func (r *sqliteRegistroRepository) FindActivoByPlaca(ctx context.Context, placa string) (*domain.Registro, error) {
	reg := &domain.Registro{}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+registroColumnas+`, c.nombre
		 FROM registros r JOIN categorias c ON r.categoria_id = c.id
		 WHERE r.placa = ? AND r.estado = 'ACTIVO'`, placa)
	if err := scanRegistro(row, reg, true); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("RegistroRepository.FindActivoByPlaca: %w", err)
	}
	return reg, nil
}

func (r *sqliteRegistroRepository) Activos(ctx context.Context) ([]domain.Registro, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+registroColumnas+`, c.nombre
		 FROM registros r JOIN categorias c ON r.categoria_id = c.id
		 WHERE r.estado = 'ACTIVO'
		 ORDER BY r.entrada DESC`)
	if err != nil {
		return nil, fmt.Errorf("RegistroRepository.Activos: %w", err)
	}
	defer rows.Close()
	return collectRegistros(rows, true)
}

func (r *sqliteRegistroRepository) Historial(ctx context.Context, filtro domain.HistorialFiltroDTO) ([]domain.Registro, error) {
	query := `SELECT ` + registroColumnas + `, IFNULL(c.nombre, '')
		 FROM registros r LEFT JOIN categorias c ON r.categoria_id = c.id
		 WHERE 1=1`
	var args []any
	if filtro.Placa != "" {
		query += ` AND r.placa LIKE ?`
		args = append(args, "%"+filtro.Placa+"%")
	}
	if filtro.Inicio != "" {
		query += ` AND r.entrada >= ?`
		args = append(args, filtro.Inicio+" 00:00:00")
	}
	if filtro.Fin != "" {
		query += ` AND r.entrada <= ?`
		args = append(args, filtro.Fin+" 23:59:59")
	}
	limit := filtro.Limit
	if limit <= 0 {
		limit = 50
	}
	query += ` ORDER BY r.entrada DESC LIMIT ? OFFSET ?`
	args = append(args, limit, filtro.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("RegistroRepository.Historial: %w", err)
	}
	defer rows.Close()
	return collectRegistros(rows, true)
}

func collectRegistros(rows *sql.Rows, conNombre bool) ([]domain.Registro, error) {
	var registros []domain.Registro
	for rows.Next() {
		var reg domain.Registro
		if err := scanRegistro(rows, &reg, conNombre); err != nil {
			return nil, fmt.Errorf("error escaneando registro: %w", err)
		}
		registros = append(registros, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error recorriendo registros: %w", err)
	}
	return registros, nil
}

func (r *sqliteRegistroRepository) Finalizar(ctx context.Context, id int64, salida time.Time, total float64, metodo string, turnoID int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE registros
		 SET salida = ?, total_pagado = ?, metodo_pago = ?, estado = 'FINALIZADO', id_turno = ?
		 WHERE id = ? AND estado = 'ACTIVO'`,
		salida, total, metodo, turnoID, id)
	if err != nil {
		return fmt.Errorf("RegistroRepository.Finalizar: %w", err)
	}
	return exigirFila(res)
}

func (r *sqliteRegistroRepository) Liberar(ctx context.Context, id int64, salida time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE registros
		 SET salida = ?, total_pagado = 0, estado = 'LIBERADO'
		 WHERE id = ? AND estado = 'ACTIVO'`,
		salida, id)
	if err != nil {
		return fmt.Errorf("RegistroRepository.Liberar: %w", err)
	}
	return exigirFila(res)
}

func exigirFila(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *sqliteRegistroRepository) PuestosActivosByCategoria(ctx context.Context, categoriaID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT puesto FROM registros WHERE categoria_id = ? AND estado = 'ACTIVO'`, categoriaID)
	if err != nil {
		return nil, fmt.Errorf("RegistroRepository.PuestosActivosByCategoria: %w", err)
	}
	defer rows.Close()

	var puestos []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		puestos = append(puestos, p)
	}
	return puestos, rows.Err()
}

func (r *sqliteRegistroRepository) CountActivosByCategoria(ctx context.Context, categoriaID string) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registros WHERE categoria_id = ? AND estado = 'ACTIVO'`, categoriaID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("RegistroRepository.CountActivosByCategoria: %w", err)
	}
	return total, nil
}

func (r *sqliteRegistroRepository) CountActivos(ctx context.Context) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registros WHERE estado = 'ACTIVO'`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("RegistroRepository.CountActivos: %w", err)
	}
	return total, nil
}

func (r *sqliteRegistroRepository) OcupacionPorCategoria(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.nombre, COUNT(r.id)
		 FROM categorias c
		 LEFT JOIN registros r ON c.id = r.categoria_id AND r.estado = 'ACTIVO'
		 GROUP BY c.id`)
	if err != nil {
		return nil, fmt.Errorf("RegistroRepository.OcupacionPorCategoria: %w", err)
	}
	defer rows.Close()

	detalle := make(map[string]int)
	for rows.Next() {
		var nombre string
		var actual int
		if err := rows.Scan(&nombre, &actual); err != nil {
			return nil, err
		}
		detalle[nombre] = actual
	}
	return detalle, rows.Err()
}

func (r *sqliteRegistroRepository) IngresosHoy(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx,
		`SELECT IFNULL(SUM(total_pagado), 0) FROM registros
		 WHERE estado != 'ACTIVO' AND date(salida) = date('now', 'localtime')`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("RegistroRepository.IngresosHoy: %w", err)
	}
	return total, nil
}

func (r *sqliteRegistroRepository) TotalesTurno(ctx context.Context, turnoID int64) (float64, float64, int, int, error) {
	var efectivo, digital float64
	var ingresados, salidos int
	err := r.db.QueryRowContext(ctx,
		`SELECT
			(SELECT IFNULL(SUM(total_pagado), 0) FROM registros
				WHERE id_turno = ? AND LOWER(metodo_pago) = 'efectivo' AND estado = 'FINALIZADO'),
			(SELECT IFNULL(SUM(total_pagado), 0) FROM registros
				WHERE id_turno = ? AND LOWER(metodo_pago) != 'efectivo' AND estado = 'FINALIZADO'),
			(SELECT COUNT(*) FROM registros WHERE id_turno = ?),
			(SELECT COUNT(*) FROM registros WHERE id_turno = ? AND estado = 'FINALIZADO')`,
		turnoID, turnoID, turnoID, turnoID,
	).Scan(&efectivo, &digital, &ingresados, &salidos)
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("RegistroRepository.TotalesTurno: %w", err)
	}
	return efectivo, digital, ingresados, salidos, nil
}
