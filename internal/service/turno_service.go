package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"porteria_local/internal/domain"
	"porteria_local/internal/repository"
)

var ErrTurnoYaAbierto = errors.New("el operador ya tiene un turno abierto")
var ErrTurnoNoAbierto = errors.New("el turno no está abierto")

// TurnoService lleva la contabilidad de caja del operador: base de apertura,
// totales efectivo/digital y conteos de vehículos del turno.
type TurnoService struct {
	turnoRepo    repository.TurnoRepository
	registroRepo repository.RegistroRepository
	sync         *SyncService
	porteriaID   string
}

func NewTurnoService(
	turnoRepo repository.TurnoRepository,
	registroRepo repository.RegistroRepository,
	sync *SyncService,
	porteriaID string,
) *TurnoService {
	return &TurnoService{
		turnoRepo:    turnoRepo,
		registroRepo: registroRepo,
		sync:         sync,
		porteriaID:   porteriaID,
	}
}

// Abrir crea un turno ABIERTO. Un operador no puede tener dos turnos abiertos:
// hay una verificación previa y un índice parcial que cierra la carrera.
func (s *TurnoService) Abrir(ctx context.Context, dto domain.AbrirTurnoDTO) (*domain.Turno, error) {
	base := dto.BaseInicial
	if base <= 0 {
		base = domain.BaseInicialPorDefecto
	}

	abierto, err := s.turnoRepo.FindAbiertoByUsuario(ctx, dto.UsuarioID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("error verificando turnos abiertos: %w", err)
	}
	if abierto != nil {
		return nil, fmt.Errorf("%w (turno %d)", ErrTurnoYaAbierto, abierto.ID)
	}

	turno, err := s.turnoRepo.Abrir(ctx, dto.UsuarioID, base)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, ErrTurnoYaAbierto
		}
		return nil, fmt.Errorf("error abriendo el turno: %w", err)
	}
	return turno, nil
}

// Resumen calcula las cifras en vivo del turno. Los pendientes son los
// vehículos ACTIVOS de todo el patio, no los del turno: responde "cuántos
// carros hay ahora", sin importar quién los ingresó.
func (s *TurnoService) Resumen(ctx context.Context, turnoID int64) (*domain.ResumenTurnoDTO, error) {
	turno, err := s.turnoRepo.FindByID(ctx, turnoID)
	if err != nil {
		return nil, err
	}

	efectivo, digital, ingresados, salidos, err := s.registroRepo.TotalesTurno(ctx, turnoID)
	if err != nil {
		return nil, err
	}
	pendientes, err := s.registroRepo.CountActivos(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.ResumenTurnoDTO{
		ID:                  turno.ID,
		UsuarioID:           turno.UsuarioID,
		HoraApertura:        turno.HoraApertura,
		HoraCierre:          turno.HoraCierre,
		BaseInicial:         turno.BaseInicial,
		Estado:              turno.Estado,
		TotalEfectivo:       efectivo,
		TotalDigital:        digital,
		TotalRecaudado:      efectivo + digital,
		VehiculosIngresados: ingresados,
		VehiculosSalidos:    salidos,
		VehiculosPendientes: pendientes,
	}, nil
}

// Cerrar congela los totales del turno, lo marca CERRADO y reporta el cierre
// al maestro. El cierre es irreversible; no existe reapertura.
func (s *TurnoService) Cerrar(ctx context.Context, turnoID int64) error {
	turno, err := s.turnoRepo.FindByID(ctx, turnoID)
	if err != nil {
		return err
	}
	if turno.Estado != domain.TurnoAbierto {
		return fmt.Errorf("%w: turno %d", ErrTurnoNoAbierto, turnoID)
	}

	efectivo, digital, ingresados, salidos, err := s.registroRepo.TotalesTurno(ctx, turnoID)
	if err != nil {
		return err
	}

	cierre := time.Now()
	if err := s.turnoRepo.Cerrar(ctx, turnoID, cierre, efectivo, digital, ingresados, salidos); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: turno %d", ErrTurnoNoAbierto, turnoID)
		}
		return fmt.Errorf("error cerrando el turno: %w", err)
	}

	if s.sync != nil {
		nombre, err := s.turnoRepo.NombreEmpleado(ctx, turnoID)
		if err != nil || nombre == "" {
			nombre = "Sistema"
		}
		ventas := efectivo + digital
		s.sync.ReportarCierre(domain.CierreTurnoMaestro{
			PorteriaTurnoID:        turnoID,
			UsuarioNombre:          nombre,
			HoraApertura:           turno.HoraApertura.Format(time.RFC3339),
			HoraCierre:             cierre.Format(time.RFC3339),
			BaseInicial:            turno.BaseInicial,
			TotalEfectivoSistema:   efectivo,
			TotalDigitalSistema:    digital,
			TotalEfectivoReportado: efectivo,
			TotalDigitalReportado:  digital,
			TotalEnCaja:            ventas + turno.BaseInicial,
			Observaciones:          "Cierre desde " + s.porteriaID,
		})
	}
	return nil
}
