package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"porteria_local/internal/domain"
	"porteria_local/internal/repository"
)

type sqliteUsuarioRepository struct {
	db *sql.DB
}

func NewUsuarioRepository(db *sql.DB) repository.UsuarioRepository {
	return &sqliteUsuarioRepository{db: db}
}

func (r *sqliteUsuarioRepository) FindByUsuario(ctx context.Context, usuario string) (*domain.Usuario, error) {
	u := &domain.Usuario{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, usuario, password, rol, nombre FROM usuarios WHERE usuario = ?`,
		usuario).Scan(&u.ID, &u.Usuario, &u.Password, &u.Rol, &u.Nombre)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("UsuarioRepository.FindByUsuario: %w", err)
	}
	return u, nil
}

func (r *sqliteUsuarioRepository) FindAll(ctx context.Context) ([]domain.Usuario, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, usuario, rol, nombre FROM usuarios`)
	if err != nil {
		return nil, fmt.Errorf("UsuarioRepository.FindAll: %w", err)
	}
	defer rows.Close()

	var usuarios []domain.Usuario
	for rows.Next() {
		var u domain.Usuario
		if err := rows.Scan(&u.ID, &u.Usuario, &u.Rol, &u.Nombre); err != nil {
			return nil, fmt.Errorf("error escaneando usuario: %w", err)
		}
		usuarios = append(usuarios, u)
	}
	return usuarios, rows.Err()
}

func (r *sqliteUsuarioRepository) Upsert(ctx context.Context, u *domain.Usuario) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO usuarios (id, nombre, usuario, rol, password) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Nombre, u.Usuario, u.Rol, u.Password)
	if err != nil {
		return fmt.Errorf("UsuarioRepository.Upsert: %w", err)
	}
	return nil
}
