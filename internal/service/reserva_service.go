package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"porteria_local/internal/domain"
	"porteria_local/internal/repository"
)

var ErrReservasNoDisponible = errors.New("módulo de reservas no disponible")

// VentanaReservaReciente acota la búsqueda por placa: una reserva Pendiente
// más vieja que esto no se ofrece en el ingreso, aunque siga Pendiente en la
// base web hasta que la barra el barrido de expiración.
const VentanaReservaReciente = 2 * time.Hour

// ReservaService es el puente con la base de reservas web. Si la base no
// estaba accesible al arrancar, el servicio queda degradado: cada operación
// devuelve ErrReservasNoDisponible y la operación del patio sigue su curso.
type ReservaService struct {
	repo repository.ReservaRepository
}

func NewReservaService(repo repository.ReservaRepository) *ReservaService {
	return &ReservaService{repo: repo}
}

func (s *ReservaService) Disponible() bool {
	return s != nil && s.repo != nil
}

// BuscarPorPlaca busca una reserva Pendiente reciente para la placa y traduce
// la categoría del vocabulario externo al local. Si hay varias Pendientes
// dentro de la ventana gana la de registro más reciente.
func (s *ReservaService) BuscarPorPlaca(ctx context.Context, placa string) (*domain.ReservaEncontradaDTO, error) {
	if !s.Disponible() {
		return nil, ErrReservasNoDisponible
	}
	normalizada, err := domain.NormalizarPlaca(placa)
	if err != nil {
		return nil, err
	}
	candidatas, err := s.repo.PendientesPorPlaca(ctx, normalizada)
	if err != nil {
		return nil, err
	}

	corte := time.Now().Add(-VentanaReservaReciente)
	var res *domain.Reserva
	for i := range candidatas {
		c := &candidatas[i]
		if c.FechaRegistro.Before(corte) {
			continue
		}
		if res == nil || c.FechaRegistro.After(res.FechaRegistro) {
			res = c
		}
	}
	if res == nil {
		return nil, repository.ErrNotFound
	}

	categoria := res.TipoVehiculo
	if etiqueta, ok := domain.MapeoEtiquetaReserva[categoria]; ok {
		categoria = etiqueta
	}
	return &domain.ReservaEncontradaDTO{
		Existe:       true,
		IDReserva:    res.ID,
		Placa:        res.Placa,
		Categoria:    categoria,
		CategoriaID:  domain.MapeoTipoVehiculo[res.TipoVehiculo],
		Color:        res.Color,
		FechaReserva: res.FechaRegistro,
	}, nil
}

func (s *ReservaService) Pendientes(ctx context.Context) ([]domain.Reserva, error) {
	if !s.Disponible() {
		return nil, ErrReservasNoDisponible
	}
	return s.repo.Pendientes(ctx)
}

// Liberar cancela una reserva Pendiente. Cancelar una reserva ya terminal es
// un no-op exitoso.
func (s *ReservaService) Liberar(ctx context.Context, id string) error {
	if !s.Disponible() {
		return ErrReservasNoDisponible
	}
	return s.repo.ActualizarEstado(ctx, id, domain.ReservaCancelada)
}

// MarcarEnSitio y FinalizarPorPlaca son efectos best-effort de ingreso y
// pago: el fallo se registra y no toca el resultado local.
func (s *ReservaService) MarcarEnSitio(id string) {
	if !s.Disponible() {
		return
	}
	if err := s.repo.MarcarEnSitio(context.Background(), id); err != nil {
		log.Printf("[RESERVAS] No se pudo marcar en sitio la reserva %s: %v", id, err)
	}
}

func (s *ReservaService) FinalizarPorPlaca(placa string, total float64) {
	if !s.Disponible() {
		return
	}
	if err := s.repo.FinalizarPorPlaca(context.Background(), placa, total); err != nil {
		log.Printf("[RESERVAS] No se pudo finalizar la reserva de la placa %s: %v", placa, err)
	}
}

// ExpirarVencidas pasa a Expirada toda reserva Pendiente cuya fecha de
// expiración quedó antes del instante actual; una expiración futura nunca se
// toca. La corre un timer; no bloquea el flujo de ingreso.
func (s *ReservaService) ExpirarVencidas(ctx context.Context) error {
	if !s.Disponible() {
		return ErrReservasNoDisponible
	}
	n, err := s.repo.ExpirarVencidas(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("error expirando reservas vencidas: %w", err)
	}
	if n > 0 {
		log.Printf("[RESERVAS] %d reservas vencidas expiradas.", n)
	}
	return nil
}
