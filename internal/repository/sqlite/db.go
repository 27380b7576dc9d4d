package sqlite

import (
	"database/sql"
	"fmt"
	"log"
	"strings"

	"porteria_local/internal/domain"
	"porteria_local/internal/repository"

	_ "modernc.org/sqlite"
)

// NewDB abre la base local, aplica el esquema y deja las categorías oficiales
// en su sitio. La base es propiedad exclusiva de este proceso.
func NewDB(path string) (*sql.DB, error) {
	// _time_format=sqlite guarda los DATETIME en el formato que entienden
	// date() y los comparadores de fecha de SQLite.
	if !strings.Contains(path, "?") {
		path += "?_time_format=sqlite"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error abriendo la base local: %w", err)
	}
	// Un solo escritor: evita SQLITE_BUSY y mantiene una única base en :memory:.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error de ping a la base local: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := sembrarCategorias(db); err != nil {
		db.Close()
		return nil, err
	}

	log.Println("[SQLITE] Base de datos inicializada y categorías limpias.")
	return db, nil
}

func migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS usuarios (
			id TEXT PRIMARY KEY,
			usuario TEXT UNIQUE,
			password TEXT,
			rol TEXT,
			nombre TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS categorias (
			id TEXT PRIMARY KEY,
			nombre TEXT,
			tarifa_minuto REAL,
			tarifa_hora REAL,
			capacidad_max INTEGER DEFAULT 100,
			prefijo TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS turnos (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			usuario_id TEXT,
			hora_apertura DATETIME NOT NULL,
			hora_cierre DATETIME,
			base_inicial REAL DEFAULT 50000,
			total_efectivo REAL DEFAULT 0,
			total_digital REAL DEFAULT 0,
			vehiculos_ingresados INTEGER DEFAULT 0,
			vehiculos_salidos INTEGER DEFAULT 0,
			estado TEXT DEFAULT 'ABIERTO'
		)`,
		`CREATE TABLE IF NOT EXISTS registros (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			placa TEXT NOT NULL,
			categoria_id TEXT,
			puesto TEXT,
			color TEXT,
			entrada DATETIME NOT NULL,
			salida DATETIME,
			total_pagado REAL,
			metodo_pago TEXT,
			id_turno INTEGER,
			estado TEXT DEFAULT 'ACTIVO',
			id_reserva TEXT
		)`,
		// Guardas de unicidad sobre el estado vivo: dos ingresos concurrentes
		// con la misma placa o el mismo puesto deben fallar, no duplicarse.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_registros_placa_activa
			ON registros(placa) WHERE estado = 'ACTIVO'`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_registros_puesto_activo
			ON registros(categoria_id, puesto) WHERE estado = 'ACTIVO'`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_turnos_abierto
			ON turnos(usuario_id) WHERE estado = 'ABIERTO'`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("error aplicando esquema: %w", err)
		}
	}
	return nil
}

func sembrarCategorias(db *sql.DB) error {
	if _, err := db.Exec(`DELETE FROM categorias WHERE id NOT IN ('moto', 'liviano', 'otros')`); err != nil {
		return fmt.Errorf("error limpiando categorías: %w", err)
	}
	for _, c := range domain.CategoriasOficiales {
		_, err := db.Exec(
			`INSERT INTO categorias (id, nombre, tarifa_minuto, tarifa_hora, capacidad_max, prefijo)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET nombre = excluded.nombre, prefijo = excluded.prefijo`,
			c.ID, c.Nombre, c.TarifaMinuto, c.TarifaHora, c.CapacidadMax, c.Prefijo,
		)
		if err != nil {
			return fmt.Errorf("error sembrando categoría %s: %w", c.ID, err)
		}
	}
	return nil
}

// mapError traduce las violaciones de unicidad del driver al sentinel del
// paquete repository.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return repository.ErrDuplicateEntry
	}
	return err
}
