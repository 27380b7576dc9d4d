package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"porteria_local/internal/domain"
	"porteria_local/internal/repository"

	"gopkg.in/guregu/null.v4"
)

var ErrSinCupo = errors.New("no hay cupo disponible en la categoría")
var ErrRegistroNoActivo = errors.New("el registro no está activo")

// RegistroService maneja el ciclo de vida de la estadía de un vehículo:
// ACTIVO al ingresar, FINALIZADO al pagar, LIBERADO por liberación manual.
type RegistroService struct {
	registroRepo  repository.RegistroRepository
	categoriaRepo repository.CategoriaRepository
	reservas      *ReservaService
	sync          *SyncService
}

func NewRegistroService(
	registroRepo repository.RegistroRepository,
	categoriaRepo repository.CategoriaRepository,
	reservas *ReservaService,
	sync *SyncService,
) *RegistroService {
	return &RegistroService{
		registroRepo:  registroRepo,
		categoriaRepo: categoriaRepo,
		reservas:      reservas,
		sync:          sync,
	}
}

// Ingresar registra la entrada de un vehículo: valida la placa, rechaza
// duplicados activos, bloquea si la categoría está llena y asigna puesto.
// La transición de la reserva vinculada es un efecto best-effort posterior al
// insert, no una transacción con él.
func (s *RegistroService) Ingresar(ctx context.Context, dto domain.IngresoDTO) (*domain.Registro, error) {
	placa, err := domain.NormalizarPlaca(dto.Placa)
	if err != nil {
		return nil, err
	}

	cat, err := s.categoriaRepo.FindByID(ctx, dto.CategoriaID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: la categoría '%s' no existe", repository.ErrNotFound, dto.CategoriaID)
		}
		return nil, fmt.Errorf("error consultando la categoría: %w", err)
	}

	existente, err := s.registroRepo.FindActivoByPlaca(ctx, placa)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("error verificando placa activa: %w", err)
	}
	if existente != nil {
		return nil, fmt.Errorf("%w: el vehículo '%s' ya está dentro", repository.ErrDuplicateEntry, placa)
	}

	ocupados, err := s.registroRepo.CountActivosByCategoria(ctx, cat.ID)
	if err != nil {
		return nil, fmt.Errorf("error consultando ocupación: %w", err)
	}
	if ocupados >= cat.CapacidadMax {
		return nil, fmt.Errorf("%w: '%s' está llena (%d/%d)", ErrSinCupo, cat.Nombre, ocupados, cat.CapacidadMax)
	}

	puesto := dto.PuestoReserva
	if puesto == "" {
		puesto, err = s.asignarPuesto(ctx, cat)
		if err != nil {
			return nil, err
		}
	}

	reg := &domain.Registro{
		Placa:       placa,
		CategoriaID: cat.ID,
		Puesto:      puesto,
		Color:       dto.Color,
		Entrada:     time.Now(),
		IDTurno:     dto.IDTurno,
		Estado:      domain.RegistroActivo,
	}
	if dto.IDReserva != "" {
		reg.IDReserva = null.StringFrom(dto.IDReserva)
	}

	creado, err := s.registroRepo.Create(ctx, reg)
	if err != nil {
		// Los índices parciales convierten la carrera de dos ingresos
		// simultáneos en un conflicto limpio. Puede chocar la placa o el
		// puesto; si la placa no está dentro el choque fue por el puesto.
		if errors.Is(err, repository.ErrDuplicateEntry) {
			if _, lookupErr := s.registroRepo.FindActivoByPlaca(ctx, placa); errors.Is(lookupErr, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: el puesto '%s' ya está ocupado", repository.ErrDuplicateEntry, puesto)
			}
			return nil, fmt.Errorf("%w: el vehículo '%s' ya está dentro", repository.ErrDuplicateEntry, placa)
		}
		return nil, fmt.Errorf("error creando el registro: %w", err)
	}

	if dto.IDReserva != "" && s.reservas.Disponible() {
		go s.reservas.MarcarEnSitio(dto.IDReserva)
	}
	if s.sync != nil {
		s.sync.NotificarIngreso(creado)
	}
	return creado, nil
}

// asignarPuesto busca el número más bajo sin usar dentro del prefijo de la
// categoría. Los puestos liberados se reutilizan.
func (s *RegistroService) asignarPuesto(ctx context.Context, cat *domain.Categoria) (string, error) {
	puestos, err := s.registroRepo.PuestosActivosByCategoria(ctx, cat.ID)
	if err != nil {
		return "", fmt.Errorf("error consultando puestos ocupados: %w", err)
	}

	usados := make(map[int]bool, len(puestos))
	for _, p := range puestos {
		resto := strings.TrimPrefix(p, cat.Prefijo+"-")
		if n, err := strconv.Atoi(resto); err == nil {
			usados[n] = true
		}
	}
	for n := 1; n <= cat.CapacidadMax; n++ {
		if !usados[n] {
			return fmt.Sprintf("%s-%d", cat.Prefijo, n), nil
		}
	}
	return "", fmt.Errorf("%w: sin puestos libres en '%s'", ErrSinCupo, cat.Nombre)
}

// ProcesarPago finaliza un registro activo. El total se cobra tal como llega
// (clavado a cero si es negativo), no se recalcula.
func (s *RegistroService) ProcesarPago(ctx context.Context, dto domain.PagoDTO) error {
	reg, err := s.registroRepo.FindByID(ctx, dto.ID)
	if err != nil {
		return err
	}
	if reg.Estado != domain.RegistroActivo {
		return fmt.Errorf("%w: el registro %d ya salió", ErrRegistroNoActivo, reg.ID)
	}

	total := dto.TotalPagado
	if total < 0 {
		total = 0
	}
	salida := time.Now()

	if err := s.registroRepo.Finalizar(ctx, reg.ID, salida, total, dto.MetodoPago, dto.IDTurno); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: el registro %d ya salió", ErrRegistroNoActivo, reg.ID)
		}
		return fmt.Errorf("error finalizando el registro: %w", err)
	}

	if reg.IDReserva.Valid && s.reservas.Disponible() {
		go s.reservas.FinalizarPorPlaca(reg.Placa, total)
	}
	if s.sync != nil {
		reg.IDTurno = dto.IDTurno
		s.sync.NotificarSalida(reg, salida, total, dto.MetodoPago)
	}
	return nil
}

// Liberar es la salida administrativa: sin cobro, sin importar el tiempo
// transcurrido. Siempre persiste total 0.
func (s *RegistroService) Liberar(ctx context.Context, id int64) error {
	if err := s.registroRepo.Liberar(ctx, id, time.Now()); err != nil {
		return err
	}
	if s.sync != nil {
		s.sync.NotificarEstadoPatio()
	}
	return nil
}

// ConsultarPorPlaca devuelve el registro activo de la placa con el total a
// pagar calculado al momento de la consulta.
func (s *RegistroService) ConsultarPorPlaca(ctx context.Context, placa string) (*domain.VehiculoActivoDTO, error) {
	normalizada, err := domain.NormalizarPlaca(placa)
	if err != nil {
		return nil, err
	}
	reg, err := s.registroRepo.FindActivoByPlaca(ctx, normalizada)
	if err != nil {
		return nil, err
	}
	cat, err := s.categoriaRepo.FindByID(ctx, reg.CategoriaID)
	if err != nil {
		return nil, fmt.Errorf("error consultando la categoría del registro: %w", err)
	}

	minutos, total := CalcularTarifa(reg.Entrada, time.Now(), cat.TarifaMinuto, cat.TarifaHora)
	return &domain.VehiculoActivoDTO{
		Registro:       *reg,
		TarifaMinuto:   cat.TarifaMinuto,
		TarifaHora:     cat.TarifaHora,
		MinutosTotales: minutos,
		TotalPagar:     total,
	}, nil
}

// CalcularPorID calcula la tarifa de un registro por id, para la pantalla de
// cobro.
func (s *RegistroService) CalcularPorID(ctx context.Context, id int64) (int64, int64, error) {
	reg, err := s.registroRepo.FindByID(ctx, id)
	if err != nil {
		return 0, 0, err
	}
	cat, err := s.categoriaRepo.FindByID(ctx, reg.CategoriaID)
	if err != nil {
		return 0, 0, fmt.Errorf("error consultando la categoría del registro: %w", err)
	}
	minutos, total := CalcularTarifa(reg.Entrada, time.Now(), cat.TarifaMinuto, cat.TarifaHora)
	return minutos, total, nil
}

func (s *RegistroService) Activos(ctx context.Context) ([]domain.Registro, error) {
	return s.registroRepo.Activos(ctx)
}

func (s *RegistroService) Historial(ctx context.Context, filtro domain.HistorialFiltroDTO) ([]domain.Registro, error) {
	if filtro.Placa != "" {
		filtro.Placa = strings.ToUpper(strings.TrimSpace(filtro.Placa))
	}
	return s.registroRepo.Historial(ctx, filtro)
}

func (s *RegistroService) VerificarCupo(ctx context.Context, categoriaID string) (*domain.CupoDTO, error) {
	cat, err := s.categoriaRepo.FindByID(ctx, categoriaID)
	if err != nil {
		return nil, err
	}
	ocupados, err := s.registroRepo.CountActivosByCategoria(ctx, cat.ID)
	if err != nil {
		return nil, fmt.Errorf("error consultando ocupación: %w", err)
	}
	return &domain.CupoDTO{
		CapacidadMax: cat.CapacidadMax,
		Ocupados:     ocupados,
		Disponible:   cat.CapacidadMax - ocupados,
	}, nil
}

func (s *RegistroService) Categorias(ctx context.Context) ([]domain.Categoria, error) {
	return s.categoriaRepo.FindAll(ctx)
}

// DashboardStats arma la ocupación por categoría, los ingresos del día y el
// total de vehículos en el patio.
func (s *RegistroService) DashboardStats(ctx context.Context) (*domain.DashboardStatsDTO, error) {
	categorias, err := s.categoriaRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	ocupacion := make(map[string]domain.OcupacionCategoria, len(categorias))
	for _, cat := range categorias {
		actual, err := s.registroRepo.CountActivosByCategoria(ctx, cat.ID)
		if err != nil {
			return nil, err
		}
		ocupacion[cat.Nombre] = domain.OcupacionCategoria{Actual: actual, Max: cat.CapacidadMax}
	}

	ingresos, err := s.registroRepo.IngresosHoy(ctx)
	if err != nil {
		return nil, err
	}
	activos, err := s.registroRepo.CountActivos(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.DashboardStatsDTO{
		Ocupacion:        ocupacion,
		IngresosHoy:      ingresos,
		VehiculosActivos: activos,
	}, nil
}
