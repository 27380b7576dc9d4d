package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"porteria_local/internal/domain"
	"porteria_local/internal/repository"
)

type sqliteCategoriaRepository struct {
	db *sql.DB
}

func NewCategoriaRepository(db *sql.DB) repository.CategoriaRepository {
	return &sqliteCategoriaRepository{db: db}
}

func (r *sqliteCategoriaRepository) FindAll(ctx context.Context) ([]domain.Categoria, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, nombre, tarifa_minuto, tarifa_hora, capacidad_max, prefijo FROM categorias`)
	if err != nil {
		return nil, fmt.Errorf("CategoriaRepository.FindAll: %w", err)
	}
	defer rows.Close()

	var categorias []domain.Categoria
	for rows.Next() {
		var c domain.Categoria
		if err := rows.Scan(&c.ID, &c.Nombre, &c.TarifaMinuto, &c.TarifaHora, &c.CapacidadMax, &c.Prefijo); err != nil {
			return nil, fmt.Errorf("error escaneando categoría: %w", err)
		}
		categorias = append(categorias, c)
	}
	return categorias, rows.Err()
}

func (r *sqliteCategoriaRepository) FindByID(ctx context.Context, id string) (*domain.Categoria, error) {
	c := &domain.Categoria{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, nombre, tarifa_minuto, tarifa_hora, capacidad_max, prefijo FROM categorias WHERE id = ?`,
		id).Scan(&c.ID, &c.Nombre, &c.TarifaMinuto, &c.TarifaHora, &c.CapacidadMax, &c.Prefijo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("CategoriaRepository.FindByID: %w", err)
	}
	return c, nil
}

func (r *sqliteCategoriaRepository) ActualizarTarifas(ctx context.Context, id string, minuto, hora float64, capacidad int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categorias SET tarifa_minuto = ?, tarifa_hora = ?, capacidad_max = ? WHERE id = ?`,
		minuto, hora, capacidad, id)
	if err != nil {
		return fmt.Errorf("CategoriaRepository.ActualizarTarifas: %w", err)
	}
	return exigirFila(res)
}
