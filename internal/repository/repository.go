package repository

import (
	"context"
	"errors"
	"time"

	"porteria_local/internal/domain"
)

var ErrNotFound = errors.New("no se encontró el registro")
var ErrDuplicateEntry = errors.New("el registro ya existe")

type RegistroRepository interface {
	Create(ctx context.Context, reg *domain.Registro) (*domain.Registro, error)
	FindByID(ctx context.Context, id int64) (*domain.Registro, error)
	FindActivoByPlaca(ctx context.Context, placa string) (*domain.Registro, error)
	Activos(ctx context.Context) ([]domain.Registro, error)
	Historial(ctx context.Context, filtro domain.HistorialFiltroDTO) ([]domain.Registro, error)

	// Finalizar solo aplica sobre registros ACTIVOS; si el registro ya salió
	// devuelve ErrNotFound.
	Finalizar(ctx context.Context, id int64, salida time.Time, total float64, metodo string, turnoID int64) error
	Liberar(ctx context.Context, id int64, salida time.Time) error

	PuestosActivosByCategoria(ctx context.Context, categoriaID string) ([]string, error)
	CountActivosByCategoria(ctx context.Context, categoriaID string) (int, error)
	CountActivos(ctx context.Context) (int, error)
	OcupacionPorCategoria(ctx context.Context) (map[string]int, error)
	IngresosHoy(ctx context.Context) (float64, error)
	TotalesTurno(ctx context.Context, turnoID int64) (efectivo, digital float64, ingresados, salidos int, err error)
}

type TurnoRepository interface {
	Abrir(ctx context.Context, usuarioID string, baseInicial float64) (*domain.Turno, error)
	FindByID(ctx context.Context, id int64) (*domain.Turno, error)
	FindAbiertoByUsuario(ctx context.Context, usuarioID string) (*domain.Turno, error)
	Cerrar(ctx context.Context, id int64, cierre time.Time, efectivo, digital float64, ingresados, salidos int) error
	// NombreEmpleado resuelve el nombre del operador dueño del turno.
	NombreEmpleado(ctx context.Context, turnoID int64) (string, error)
}

type CategoriaRepository interface {
	FindAll(ctx context.Context) ([]domain.Categoria, error)
	FindByID(ctx context.Context, id string) (*domain.Categoria, error)
	ActualizarTarifas(ctx context.Context, id string, minuto, hora float64, capacidad int) error
}

type UsuarioRepository interface {
	FindByUsuario(ctx context.Context, usuario string) (*domain.Usuario, error)
	FindAll(ctx context.Context) ([]domain.Usuario, error)
	Upsert(ctx context.Context, u *domain.Usuario) error
}

// ReservaRepository habla con la base de reservas web, que pertenece a otro
// sistema: solo lecturas y actualizaciones de estado/montos sobre la tabla
// reservas, nunca cambios de esquema. Los cortes de tiempo (ventana de
// búsqueda, expiración) los decide el servicio y llegan como argumentos.
type ReservaRepository interface {
	PendientesPorPlaca(ctx context.Context, placaNormalizada string) ([]domain.Reserva, error)
	Pendientes(ctx context.Context) ([]domain.Reserva, error)
	ActualizarEstado(ctx context.Context, id string, estado string) error
	MarcarEnSitio(ctx context.Context, id string) error
	FinalizarPorPlaca(ctx context.Context, placa string, totalPagado float64) error
	ExpirarVencidas(ctx context.Context, ahora time.Time) (int64, error)
}
