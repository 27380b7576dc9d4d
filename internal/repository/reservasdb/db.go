// Package reservasdb accede a la base de reservas del sitio web. La base
// pertenece a otro sistema: este paquete solo lee la tabla reservas y
// actualiza estado, montos y fechas, nunca toca el esquema.
package reservasdb

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func NewDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("error abriendo la base de reservas: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error de ping a la base de reservas: %w", err)
	}
	return db, nil
}
